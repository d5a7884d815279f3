package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookswap-api/apperror"
	"bookswap-api/authentication"
	"bookswap-api/environment"
	"bookswap-api/helpers"
)

// ListNotifications returns the session user's notifications
func ListNotifications(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	notifications, err := environment.Env.NotificationModel.ListNotifications(helpers.ObjectID(userID))
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

	c.JSON(http.StatusOK, notifications)
}

// SendNotification pushes a notification onto another user's list
// (admin only, guarded by the route). the referenced document must exist
func SendNotification(c *gin.Context) {

	var apiError ErrorResponse

	creds := getCredentials(c)

	data := struct {
		To       string `json:"to" binding:"required"`
		DocID    string `json:"docId" binding:"required"`
		DocType  string `json:"docType" binding:"required"`
		NotiType string `json:"notiType" binding:"required"`
	}{}

	if err := c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	err := environment.Env.NotificationModel.CreateNotification(
		helpers.ObjectID(data.To), creds.UserID,
		helpers.ObjectID(data.DocID), data.DocType, data.NotiType)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}

// MarkNotificationSeen flags one of the session user's notifications as seen.
// marking twice is not an error
func MarkNotificationSeen(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	err = environment.Env.NotificationModel.MarkSeen(helpers.ObjectID(userID), c.Param("id"))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}

// DeleteNotification removes one of the session user's notifications
func DeleteNotification(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	err = environment.Env.NotificationModel.DeleteNotification(helpers.ObjectID(userID), c.Param("id"))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}
