package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"bookswap-api/authorization"
	"bookswap-api/helpers"
)

// Created returns the ID of a newly created document
type Created struct {
	ID string `json:"id"`
}

// getPaginator reads the common list query parameters (skip, limit, sortBy,
// sortDir, keyword) into a paginator. Missing or malformed values fall back
// to the defaults
func getPaginator(c *gin.Context) *helpers.Paginator {

	paginator := helpers.Paginator{}

	if skip, err := strconv.ParseInt(c.Query("skip"), 10, 64); err == nil {
		paginator.Skip = skip
	}
	if limit, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil {
		paginator.Limit = limit
	}
	paginator.SortBy = c.Query("sortBy")
	if c.Query("sortDir") == "asc" {
		paginator.SortDir = 1
	}
	paginator.Keyword = c.Query("keyword")

	return &paginator
}

// getCredentials reads the session credentials stored by the authorization
// middleware. Handlers behind the middleware may assume they are present
func getCredentials(c *gin.Context) *authorization.Credentials {

	creds, _ := c.Get(authorization.ContextCredentials)

	return creds.(*authorization.Credentials)
}

// authorizationCredentials loads the role information for routes that decide
// between self-service and admin behaviour inside the handler
func authorizationCredentials(userID string) (*authorization.Credentials, bool) {

	return authorization.Guard.GetCredentials(helpers.ObjectID(userID))
}

// isAdmin is the handler-level shortcut over authorizationCredentials
func isAdmin(userID string) bool {

	creds, ok := authorizationCredentials(userID)

	return ok && creds.IsAdmin()
}

// allowed checks an acting user against the policy table for operations that
// are decided inside the handler (self-service routes with an admin surface)
func allowed(userID string, operation string) bool {

	creds, ok := authorizationCredentials(userID)

	return ok && authorization.Allowed(operation, creds.RoleCode)
}
