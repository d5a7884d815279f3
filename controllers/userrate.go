package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bookswap-api/apperror"
	"bookswap-api/authentication"
	"bookswap-api/authorization"
	"bookswap-api/environment"
	"bookswap-api/helpers"
)

// RateUser lets the session user rate the other participant of a verified borrow
func RateUser(c *gin.Context) {

	var apiError ErrorResponse

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	data := struct {
		Borrow  string `json:"borrow" binding:"required"`
		Rate    *bool  `json:"rate" binding:"required"`
		Comment string `json:"comment"`
	}{}

	if err := c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	rate, err := environment.Env.UserRateModel.CreateUserRate(
		helpers.ObjectID(userID), helpers.ObjectID(c.Param("id")),
		data.Borrow, *data.Rate, strings.TrimSpace(data.Comment))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, rate)
}

// GetUserRate returns a single rating
func GetUserRate(c *gin.Context) {

	_, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	rate, err := environment.Env.UserRateModel.GetUserRate(c.Param("rateId"))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, rate)
}

// ListUserRates returns the ratings a user gave or received
// format => http://localhost:3000/users/:id/rates?direction=to
func ListUserRates(c *gin.Context) {

	_, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	direction := c.Query("direction")
	if direction == "" {
		direction = "to"
	}

	rates, err := environment.Env.UserRateModel.ListUserRates(helpers.ObjectID(c.Param("id")), direction)
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

	c.JSON(http.StatusOK, rates)
}

// ListBorrowRates returns the ratings given against a borrow
func ListBorrowRates(c *gin.Context) {

	_, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	rates, err := environment.Env.UserRateModel.ListByBorrow(c.Param("id"))
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

	c.JSON(http.StatusOK, rates)
}

// ListAllUserRates returns every rating (admin only, guarded by the route)
func ListAllUserRates(c *gin.Context) {

	rates, err := environment.Env.UserRateModel.ListAll(getPaginator(c))
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

	c.JSON(http.StatusOK, rates)
}

// ModifyUserRate changes a rating. members may only change those they gave,
// admins may change any
func ModifyUserRate(c *gin.Context) {

	var apiError ErrorResponse

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	data := struct {
		Rate    *bool   `json:"rate"`
		Comment *string `json:"comment"`
	}{}

	if err := c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	if data.Rate == nil && data.Comment == nil {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	err = environment.Env.UserRateModel.ModifyUserRate(
		c.Param("id"), c.Param("rateId"), helpers.ObjectID(userID),
		data.Rate, data.Comment, allowed(userID, authorization.OpUserRateAdmin))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}

// DeleteUserRate removes a rating and all three back-references.
// members may only remove those they gave, admins may remove any
func DeleteUserRate(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	err = environment.Env.UserRateModel.DeleteUserRate(
		c.Param("id"), c.Param("rateId"), helpers.ObjectID(userID),
		allowed(userID, authorization.OpUserRateAdmin))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}
