package controllers

import (
	"fmt"
	"net/http"

	"bookswap-api/apperror"
	"bookswap-api/models"
)

// ErrorResponse is the standardized error structure which may be returned by any API
type ErrorResponse struct {
	Code    int32  `json:"code"`
	Message string `json:"msg"`
}

// HandleError encodes the std ErrorResponse.
// partial-write failures (UpdateFailed) are reported with the same shape as
// up-front rejections, even though the store state differs by then
func HandleError(err error) (httpStatus int, apiError ErrorResponse) {

	if err == nil {
		apiError.Code = 0
		apiError.Message = ""

		return 0, apiError
	}

	fmt.Println(err)
	switch err {
	// system
	case apperror.ErrMultipleRecords:
		apiError.Code = MultipleRecords
		httpStatus = http.StatusInternalServerError
	case apperror.ErrRecordChanged:
		apiError.Code = RecordChanged
		httpStatus = http.StatusInternalServerError
	case apperror.ErrUpdateFailed:
		apiError.Code = UpdateFailed
		httpStatus = http.StatusInternalServerError
	// permissions
	case apperror.ErrDenied:
		apiError.Code = ActionDenied
		httpStatus = http.StatusForbidden
	// ids
	case apperror.ErrIDNotValid:
		apiError.Code = IDNotValid
		httpStatus = http.StatusNotFound
	case apperror.ErrNoData:
		apiError.Code = NothingFound
		httpStatus = http.StatusNotFound
	// user
	case models.ErrUserNameNotAvailable:
		apiError.Code = UserNameTaken
		httpStatus = http.StatusConflict
	case models.ErrEMailAddressTaken:
		apiError.Code = EMailAddressTaken
		httpStatus = http.StatusConflict
	case models.ErrInvalidUser:
		apiError.Code = UserNotFound
		httpStatus = http.StatusNotFound
	case models.ErrInvalidPassword:
		apiError.Code = InvalidPassword
		httpStatus = http.StatusBadRequest
	// book & book rates
	case models.ErrBookNotFound:
		apiError.Code = BookNotFound
		httpStatus = http.StatusNotFound
	case models.ErrBookTitleMissing:
		apiError.Code = BookTitleMissing
		httpStatus = http.StatusBadRequest
	case models.ErrAlreadyRated:
		apiError.Code = AlreadyRated
		httpStatus = http.StatusConflict
	case models.ErrBookRateNotOwned:
		apiError.Code = BookRateNotOwned
		httpStatus = http.StatusBadRequest
	// borrow & user rates
	case models.ErrBorrowNotFound:
		apiError.Code = BorrowNotFound
		httpStatus = http.StatusNotFound
	case models.ErrBorrowNoBooks:
		apiError.Code = BorrowNoBooks
		httpStatus = http.StatusBadRequest
	case models.ErrBorrowNotVerified:
		apiError.Code = BorrowNotVerified
		httpStatus = http.StatusBadRequest
	case models.ErrUserRateNotFound:
		apiError.Code = UserRateNotFound
		httpStatus = http.StatusNotFound
	case models.ErrUserRateNotOwned:
		apiError.Code = UserRateNotOwned
		httpStatus = http.StatusBadRequest
	// notification
	case models.ErrNotificationNotFound:
		apiError.Code = NotificationNotFound
		httpStatus = http.StatusNotFound
	case models.ErrInvalidDocType:
		apiError.Code = InvalidDocType
		httpStatus = http.StatusBadRequest
	case models.ErrInvalidNotiType:
		apiError.Code = InvalidNotiType
		httpStatus = http.StatusBadRequest
	case models.ErrReferencedDocMissing:
		apiError.Code = ReferencedDocMissing
		httpStatus = http.StatusNotFound
	// message
	case models.ErrMessageEmpty:
		apiError.Code = MessageEmpty
		httpStatus = http.StatusBadRequest
	case models.ErrConversationNotFound:
		apiError.Code = ConversationNotFound
		httpStatus = http.StatusNotFound
	case models.ErrConversationNotMember:
		apiError.Code = ConversationNotMember
		httpStatus = http.StatusBadRequest
	default:
		apiError.Code = SystemError
		httpStatus = http.StatusInternalServerError
	}

	apiError.Message = apiError.String(apiError.Code)

	return httpStatus, apiError
}

// Application Error Codes (API Errors)
const (
	// client/api
	InvalidJSON int32 = (10000 + iota)
	InvalidRequest
	InvalidLogin
	// generic system
	MultipleRecords
	RecordChanged
	ActionDenied
	UpdateFailed
	IDNotValid
	NothingFound
	// user
	UserNameTaken
	EMailAddressTaken
	UserNotFound
	InvalidPassword
	// book & book rates
	BookNotFound
	BookTitleMissing
	AlreadyRated
	BookRateNotOwned
	// borrow & user rates
	BorrowNotFound
	BorrowNoBooks
	BorrowNotVerified
	UserRateNotFound
	UserRateNotOwned
	// notification
	NotificationNotFound
	InvalidDocType
	InvalidNotiType
	ReferencedDocMissing
	// message
	MessageEmpty
	ConversationNotFound
	ConversationNotMember
	SystemError = 99999
)

func (er ErrorResponse) String(code int32) string {
	msg := ""
	switch code {
	// common (system)
	case InvalidJSON:
		msg = "Invalid JSON"
	case InvalidRequest:
		msg = "Invalid Request" // JSON was correct, data was not
	case InvalidLogin:
		msg = "invalid user name or password"
	case MultipleRecords:
		msg = "multiple records found"
	case RecordChanged:
		msg = "record changed by another user"
	case ActionDenied:
		msg = "update/delete action not allowed"
	case UpdateFailed:
		msg = "document update failed"
	case IDNotValid:
		msg = "invalid document id"
	case NothingFound:
		msg = "no records found"
	// user
	case UserNameTaken:
		msg = "user name is not available"
	case EMailAddressTaken:
		msg = "email-address is already used"
	case UserNotFound:
		msg = "user does not exist"
	case InvalidPassword:
		msg = "password does not meet rules"
	// book & book rates
	case BookNotFound:
		msg = "book does not exist"
	case BookTitleMissing:
		msg = "book title is required"
	case AlreadyRated:
		msg = "already rated"
	case BookRateNotOwned:
		msg = "you do not have book rate to update"
	// borrow & user rates
	case BorrowNotFound:
		msg = "borrow does not exist"
	case BorrowNoBooks:
		msg = "borrow requires at least one book"
	case BorrowNotVerified:
		msg = "cannot rate if borrow is not verified"
	case UserRateNotFound:
		msg = "user rate does not exist"
	case UserRateNotOwned:
		msg = "you do not have user rate to update"
	// notification
	case NotificationNotFound:
		msg = "notification does not exist"
	case InvalidDocType:
		msg = "invalid document type"
	case InvalidNotiType:
		msg = "invalid notification type"
	case ReferencedDocMissing:
		msg = "referenced document does not exist"
	// message
	case MessageEmpty:
		msg = "message content is required"
	case ConversationNotFound:
		msg = "conversation does not exist"
	case ConversationNotMember:
		msg = "user is not part of the conversation"
	case SystemError:
		msg = "Server Problem"
	}

	return msg
}
