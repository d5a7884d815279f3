package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookswap-api/apperror"
	"bookswap-api/authentication"
	"bookswap-api/environment"
	"bookswap-api/helpers"
)

// StartConversation opens a conversation with another user, seeded with a
// first message
func StartConversation(c *gin.Context) {

	var apiError ErrorResponse

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	data := struct {
		To      string `json:"to" binding:"required"`
		Content string `json:"content" binding:"required"`
	}{}

	if err := c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	content, err := environment.Env.MessageModel.Validate(data.Content)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	id, err := environment.Env.MessageModel.CreateConversation(
		helpers.ObjectID(userID), helpers.ObjectID(data.To), content)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Created{id})
}

// SendMessage appends a message to a conversation the session user is part of
func SendMessage(c *gin.Context) {

	var apiError ErrorResponse

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	data := struct {
		Content string `json:"content" binding:"required"`
	}{}

	if err := c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	content, err := environment.Env.MessageModel.Validate(data.Content)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	id, err := environment.Env.MessageModel.AppendMessage(
		c.Param("id"), helpers.ObjectID(userID), content)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, Created{id})
}

// MarkConversationSeen flags all messages of a conversation as seen by the
// session user
func MarkConversationSeen(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	err = environment.Env.MessageModel.MarkSeen(c.Param("id"), helpers.ObjectID(userID))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}

// ListConversations returns the session user's conversations
func ListConversations(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	conversations, err := environment.Env.MessageModel.ListConversations(helpers.ObjectID(userID))
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

	c.JSON(http.StatusOK, conversations)
}
