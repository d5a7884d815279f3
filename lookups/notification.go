package lookups

// Notifications reference documents of other collections polymorphically.
// The doc type tells which collection the referenced id lives in.
const (
	DTborrow   = "borrow"
	DTuserRate = "user_rate"
)

// Actions a notification can report
const (
	NTcreate = "create"
	NTupdate = "update"
	NTdelete = "delete"
	NTverify = "verify"
)

// DocTypeValid checks a given doc type against the registry
func DocTypeValid(value string) bool {
	return value == DTborrow || value == DTuserRate
}

// NotiTypeValid checks a given noti type against the registry
func NotiTypeValid(value string) bool {
	switch value {
	case NTcreate, NTupdate, NTdelete, NTverify:
		return true
	}
	return false
}
