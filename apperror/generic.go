package apperror

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrNoData          = Error("no records found")
	ErrMultipleRecords = Error("mulitple records found")
	ErrIDNotValid      = Error("invalid document id")
	ErrRecordChanged   = Error("write conflict")
	ErrDenied          = Error("not allowed") // eg. upd/del not allowed
	// a dependent write did not report the expected modified count;
	// earlier writes of the same routine are NOT rolled back
	ErrUpdateFailed = Error("document update failed")
)
