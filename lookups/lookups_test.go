package lookups

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserRole(t *testing.T) {
	assert.Equal(t, "user", UserRole(URuser))
	assert.Equal(t, "admin", UserRole(URadmin))
	assert.Equal(t, "", UserRole(42))
}

func TestLookupType(t *testing.T) {
	assert.Equal(t, "user role", LookupType(LTuserRole))
	assert.Equal(t, "document type", LookupType(LTdocType))
	assert.Equal(t, "notification type", LookupType(LTnotiType))
	assert.Equal(t, "book category", LookupType(LTcategory))
	assert.Equal(t, "", LookupType(42))
}

func TestDocTypeValid(t *testing.T) {
	assert.True(t, DocTypeValid(DTborrow))
	assert.True(t, DocTypeValid(DTuserRate))
	assert.False(t, DocTypeValid("book"))
	assert.False(t, DocTypeValid(""))
}

func TestNotiTypeValid(t *testing.T) {
	for _, nt := range []string{NTcreate, NTupdate, NTdelete, NTverify} {
		assert.True(t, NotiTypeValid(nt))
	}
	assert.False(t, NotiTypeValid("seen"))
	assert.False(t, NotiTypeValid(""))
}
