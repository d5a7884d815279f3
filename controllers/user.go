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

// GetUser returns a user's profile. members may only read their own,
// admins may read anyone's
func GetUser(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.JSON(http.StatusUnauthorized, authentication.ErrUnauthorized.Error())
		return
	}

	requestedID := c.Param("id")
	if requestedID != userID {
		creds, ok := authorizationCredentials(userID)
		if !ok || !creds.IsAdmin() {
			c.Status(http.StatusForbidden)
			return
		}
	}

	user, err := environment.Env.UserModel.GetUserByID(requestedID)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	user.Password = ""

	c.JSON(http.StatusOK, user)
}

// ListUsers returns the reduced user list (admin only, guarded by the route)
func ListUsers(c *gin.Context) {

	paginator := getPaginator(c)

	users, err := environment.Env.UserModel.ListUsers(paginator)
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

	c.JSON(http.StatusOK, users)
}

// UpdateProfile changes the editable profile fields of the session's user.
// username, password and role can not be changed here
func UpdateProfile(c *gin.Context) {

	var apiError ErrorResponse

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.JSON(http.StatusUnauthorized, authentication.ErrUnauthorized.Error())
		return
	}

	data := struct {
		Fullname *string `json:"fullname"`
		Picture  *string `json:"picture"`
		EMail    *string `json:"email"`
	}{}

	if err := c.ShouldBindJSON(&data); err != nil {
		apiError.Code = InvalidJSON
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	patch := make(map[string]interface{})
	if data.Fullname != nil {
		patch["fullname"] = strings.TrimSpace(*data.Fullname)
	}
	if data.Picture != nil {
		patch["picture"] = *data.Picture
	}
	if data.EMail != nil {
		patch["email"] = strings.TrimSpace(*data.EMail)
	}

	if len(patch) == 0 {
		apiError.Code = InvalidRequest
		apiError.Message = apiError.String(apiError.Code)
		c.JSON(http.StatusUnprocessableEntity, apiError)
		return
	}

	user, err := environment.Env.UserModel.UpdateProfile(helpers.ObjectID(userID), patch)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	user.Password = ""

	c.JSON(http.StatusOK, user)
}

// DeleteUser removes an account. members may only delete their own,
// admins may delete anyone's. documents referencing the user are kept
func DeleteUser(c *gin.Context) {

	userID, err := authentication.Authenticate(c.Request)
	if err != nil {
		c.JSON(http.StatusUnauthorized, authentication.ErrUnauthorized.Error())
		return
	}

	requestedID := c.Param("id")
	if requestedID != userID && !allowed(userID, authorization.OpUserDeleteAny) {
		c.Status(http.StatusForbidden)
		return
	}

	err = environment.Env.UserModel.DeleteUser(helpers.ObjectID(requestedID))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	// registry entries of the deleted account expire on their own
	c.Status(http.StatusOK)
}
