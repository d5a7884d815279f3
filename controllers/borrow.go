package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookswap-api/apperror"
	"bookswap-api/authentication"
	"bookswap-api/environment"
	"bookswap-api/helpers"
	"bookswap-api/models"
)

// AddBorrow records a borrow between the session user (lender) and another user
func AddBorrow(c *gin.Context) {

	var apiError ErrorResponse

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	data := struct {
		To    string   `json:"to" binding:"required"`
		Books []string `json:"books" binding:"required"`
	}{}

	if err := c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	var borrow models.Borrow
	borrow.From = helpers.ObjectID(userID)
	borrow.To = helpers.ObjectID(data.To)
	for _, bookID := range data.Books {
		borrow.Books = append(borrow.Books, helpers.ObjectID(bookID))
	}

	cleaned, err := environment.Env.BorrowModel.Validate(borrow)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	id, err := environment.Env.BorrowModel.CreateBorrow(cleaned)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Created{id})
}

// GetBorrow returns a borrow to its participants or an admin
func GetBorrow(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	borrow, err := environment.Env.BorrowModel.GetBorrow(c.Param("id"))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	userOID := helpers.ObjectID(userID)
	if borrow.From != userOID && borrow.To != userOID && !isAdmin(userID) {
		c.Status(http.StatusForbidden)
		return
	}

	c.JSON(http.StatusOK, borrow)
}

// ListBorrows returns all borrows (admin only, guarded by the route)
func ListBorrows(c *gin.Context) {

	borrows, err := environment.Env.BorrowModel.ListBorrows(getPaginator(c))
	if err != nil {
		// nothing found (not an error to the client)
		if err == apperror.ErrNoData {
			c.Status(http.StatusNoContent)
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, borrows)
}

// ListMyBorrows returns the borrows the session user takes part in
func ListMyBorrows(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	borrows, err := environment.Env.BorrowModel.ListBorrowsByUser(helpers.ObjectID(userID))
	if err != nil {
		// nothing found (not an error to the client)
		if err == apperror.ErrNoData {
			c.Status(http.StatusNoContent)
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, borrows)
}

// ModifyBorrow updates the verified flag and/or the book list.
// only the participants or an admin may do that
func ModifyBorrow(c *gin.Context) {

	var apiError ErrorResponse

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	data := struct {
		Verified *bool     `json:"verified"`
		Books    *[]string `json:"books"`
	}{}

	if err := c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	if data.Verified == nil && data.Books == nil {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	borrow, err := environment.Env.BorrowModel.GetBorrow(c.Param("id"))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	userOID := helpers.ObjectID(userID)
	if borrow.From != userOID && borrow.To != userOID && !isAdmin(userID) {
		c.Status(http.StatusForbidden)
		return
	}

	var books []primitive.ObjectID
	if data.Books != nil {
		if len(*data.Books) == 0 {
			status, apiError := HandleError(models.ErrBorrowNoBooks)
			c.JSON(status, apiError)
			return
		}
		for _, bookID := range *data.Books {
			books = append(books, helpers.ObjectID(bookID))
		}
	}

	updated, err := environment.Env.BorrowModel.ModifyBorrow(c.Param("id"), data.Verified, books)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteBorrow removes a borrow and its back-references on both users
// (admin only, guarded by the route). rates given against it are kept
func DeleteBorrow(c *gin.Context) {

	err := environment.Env.BorrowModel.DeleteBorrow(c.Param("id"))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}
