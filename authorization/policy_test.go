package authorization

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bookswap-api/lookups"
)

func TestAllowed_AdminOperations(t *testing.T) {
	adminOnly := []string{
		OpBorrowListAll,
		OpBorrowDelete,
		OpBookDeleteAny,
		OpUserListAll,
		OpUserDeleteAny,
		OpUserRateAdmin,
		OpBookRateAdmin,
		OpVisitorStats,
		OpMonitorRequests,
	}

	for _, op := range adminOnly {
		assert.True(t, Allowed(op, lookups.URadmin), op)
		assert.False(t, Allowed(op, lookups.URuser), op)
	}
}

func TestAllowed_MemberOperations(t *testing.T) {
	// notifications may be sent by any authenticated user
	assert.True(t, Allowed(OpNotificationSend, lookups.URuser))
	assert.True(t, Allowed(OpNotificationSend, lookups.URadmin))
}

func TestAllowed_UnknownOperation(t *testing.T) {
	// operations missing from the table are member-level
	assert.True(t, Allowed("book.read", lookups.URuser))
}

func TestAllowed_UnknownRole(t *testing.T) {
	// a role code outside the registry gets nothing admin-gated
	assert.False(t, Allowed(OpUserListAll, 42))
}

func TestIsAdmin(t *testing.T) {
	admin := Credentials{RoleCode: lookups.URadmin}
	member := Credentials{RoleCode: lookups.URuser}

	assert.True(t, admin.IsAdmin())
	assert.False(t, member.IsAdmin())
}
