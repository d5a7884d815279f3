package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookswap-api/apperror"
	"bookswap-api/authentication"
	"bookswap-api/authorization"
	"bookswap-api/environment"
	"bookswap-api/helpers"
	"bookswap-api/models"
)

// AddBook adds a book to the session user's shelf
func AddBook(c *gin.Context) {

	var (
		err      error
		data     models.Book
		apiError ErrorResponse
	)

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	// use "shouldBind" not all fields are required in this context
	if err = c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	book, err := environment.Env.BookModel.Validate(data)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// the uploader is taken from the session, not the request
	book.Uploader = helpers.ObjectID(userID)

	id, err := environment.Env.BookModel.CreateBook(book)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Created{id})
}

// ListBooks returns the catalog, optionally filtered
// format => http://localhost:3000/books?keyword=tolkien&forBorrow=true&skip=0&limit=10
func ListBooks(c *gin.Context) {

	paginator := getPaginator(c)
	forBorrowOnly := c.Query("forBorrow") == "true"

	books, err := environment.Env.BookModel.SearchBooks(paginator, forBorrowOnly)
	if err != nil {
		// nothing found (not an error to the client)
		if err == apperror.ErrNoData {
			if paginator.Keyword != "" {
				environment.Env.Tracker.SaveSearch(paginator.Keyword, 0)
			}
			c.Status(http.StatusNoContent)
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	if paginator.Keyword != "" {
		environment.Env.Tracker.SaveSearch(paginator.Keyword, len(books))
	}

	c.JSON(http.StatusOK, books)
}

// GetBook returns the specified book
func GetBook(c *gin.Context) {

	var id = c.Param("id")

	// service is public, a session is optional here
	userID, _ := authentication.Authenticate(c.Request)

	book, err := environment.Env.BookModel.GetBook(id)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// count profile visits, page refreshes don't count
	if environment.Env.Requests.Continue(c.ClientIP(), id) {
		environment.Env.Tracker.SaveVisitor("book", id, userID)
	}

	c.JSON(http.StatusOK, book)
}

// DeleteBook removes a book. only the uploader or an admin may do that
func DeleteBook(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	err = environment.Env.BookModel.DeleteBook(c.Param("id"), helpers.ObjectID(userID),
		allowed(userID, authorization.OpBookDeleteAny))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}
