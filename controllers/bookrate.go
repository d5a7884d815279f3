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

// GetBookRates returns all ratings of a book (public)
func GetBookRates(c *gin.Context) {

	rates, err := environment.Env.BookModel.GetBookRates(c.Param("id"))
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

// RateBook adds the session user's rating to a book (one per user)
func RateBook(c *gin.Context) {

	var apiError ErrorResponse

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	data := struct {
		Rate    int32  `json:"rate" binding:"required"`
		Comment string `json:"comment"`
	}{}

	if err := c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	if data.Rate < 1 || data.Rate > 5 {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	rate, err := environment.Env.BookModel.RateBook(
		c.Param("id"), helpers.ObjectID(userID), data.Rate, strings.TrimSpace(data.Comment))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, rate)
}

// ModifyBookRate changes a rating. members may only change their own,
// admins may change any
func ModifyBookRate(c *gin.Context) {

	var apiError ErrorResponse

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	data := struct {
		Rate    int32  `json:"rate" binding:"required"`
		Comment string `json:"comment"`
	}{}

	if err := c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	if data.Rate < 1 || data.Rate > 5 {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	err = environment.Env.BookModel.ModifyBookRate(
		c.Param("id"), c.Param("rateId"), helpers.ObjectID(userID),
		data.Rate, strings.TrimSpace(data.Comment),
		allowed(userID, authorization.OpBookRateAdmin))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}

// DeleteBookRate removes a rating and the rater's back-reference.
// members may only remove their own, admins may remove any
func DeleteBookRate(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	err = environment.Env.BookModel.DeleteBookRate(
		c.Param("id"), c.Param("rateId"), helpers.ObjectID(userID),
		allowed(userID, authorization.OpBookRateAdmin))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}
