package authorization

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookswap-api/authentication"
	"bookswap-api/helpers"
	"bookswap-api/lookups"
)

// Per-operation permission table. Roles are tagged codes (lookups.URuser/URadmin),
// not free-form strings, so a typo cannot silently widen access.

// Operation names used as policy keys
const (
	OpBorrowListAll    = "borrow.listAll"
	OpBorrowDelete     = "borrow.delete"
	OpBookDeleteAny    = "book.deleteAny"
	OpUserListAll      = "user.listAll"
	OpUserDeleteAny    = "user.deleteAny"
	OpUserRateAdmin    = "userRate.admin"
	OpBookRateAdmin    = "bookRate.admin"
	OpVisitorStats     = "stats.visitors"
	OpMonitorRequests  = "monitor.requests"
	OpNotificationSend = "notification.send"
)

// policy lists the roles allowed to run an operation.
// operations missing from the table are member-level (any authenticated user)
var policy = map[string][]int32{
	OpBorrowListAll:    {lookups.URadmin},
	OpBorrowDelete:     {lookups.URadmin},
	OpBookDeleteAny:    {lookups.URadmin},
	OpUserListAll:      {lookups.URadmin},
	OpUserDeleteAny:    {lookups.URadmin},
	OpUserRateAdmin:    {lookups.URadmin},
	OpBookRateAdmin:    {lookups.URadmin},
	OpVisitorStats:     {lookups.URadmin},
	OpMonitorRequests:  {lookups.URadmin},
	OpNotificationSend: {lookups.URuser, lookups.URadmin},
}

// Allowed checks a role against the policy table
func Allowed(operation string, roleCode int32) bool {
	roles, found := policy[operation]
	if !found {
		// member-level operation
		return true
	}

	for _, r := range roles {
		if r == roleCode {
			return true
		}
	}

	return false
}

// the key under which the credentials are attached to the gin context
const ContextCredentials = "credentials"

// instance wired by the environment package
var Guard = &Credentials{}

// RequireRole authenticates the request, loads the acting user's credentials
// and rejects the request unless the policy admits its role.
// fails closed: a token without a (still) existing user is Unauthorized
func RequireRole(operation string) gin.HandlerFunc {
	return func(c *gin.Context) {

		userID, err := authentication.Authenticate(c.Request)
		if err != nil {
			c.JSON(http.StatusUnauthorized, authentication.ErrNotLoggedIn.Error())
			c.Abort()
			return
		}

		credentials, found := Guard.GetCredentials(helpers.ObjectID(userID))
		if !found {
			c.JSON(http.StatusUnauthorized, authentication.ErrUnauthorized.Error())
			c.Abort()
			return
		}

		if !Allowed(operation, credentials.RoleCode) {
			c.Status(http.StatusForbidden)
			c.Abort()
			return
		}

		// downstream handlers may read the projection instead of querying again
		c.Set(ContextCredentials, credentials)
		c.Next()
	}
}
