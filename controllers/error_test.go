package controllers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"bookswap-api/apperror"
	"bookswap-api/models"
)

func TestHandleError_Nil(t *testing.T) {
	status, apiError := HandleError(nil)

	assert.Equal(t, 0, status)
	assert.Equal(t, int32(0), apiError.Code)
	assert.Empty(t, apiError.Message)
}

func TestHandleError_Statuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   int32
	}{
		// conflicts
		{models.ErrAlreadyRated, http.StatusConflict, AlreadyRated},
		{models.ErrUserNameNotAvailable, http.StatusConflict, UserNameTaken},
		{models.ErrEMailAddressTaken, http.StatusConflict, EMailAddressTaken},
		// business rules
		{models.ErrBorrowNotVerified, http.StatusBadRequest, BorrowNotVerified},
		{models.ErrBorrowNoBooks, http.StatusBadRequest, BorrowNoBooks},
		{models.ErrBookTitleMissing, http.StatusBadRequest, BookTitleMissing},
		{models.ErrBookRateNotOwned, http.StatusBadRequest, BookRateNotOwned},
		{models.ErrUserRateNotOwned, http.StatusBadRequest, UserRateNotOwned},
		{models.ErrInvalidDocType, http.StatusBadRequest, InvalidDocType},
		{models.ErrInvalidNotiType, http.StatusBadRequest, InvalidNotiType},
		{models.ErrMessageEmpty, http.StatusBadRequest, MessageEmpty},
		{models.ErrConversationNotMember, http.StatusBadRequest, ConversationNotMember},
		// missing documents
		{models.ErrBookNotFound, http.StatusNotFound, BookNotFound},
		{models.ErrBorrowNotFound, http.StatusNotFound, BorrowNotFound},
		{models.ErrUserRateNotFound, http.StatusNotFound, UserRateNotFound},
		{models.ErrNotificationNotFound, http.StatusNotFound, NotificationNotFound},
		{models.ErrReferencedDocMissing, http.StatusNotFound, ReferencedDocMissing},
		{models.ErrInvalidUser, http.StatusNotFound, UserNotFound},
		{apperror.ErrIDNotValid, http.StatusNotFound, IDNotValid},
		// permissions
		{apperror.ErrDenied, http.StatusForbidden, ActionDenied},
		// system
		{apperror.ErrUpdateFailed, http.StatusInternalServerError, UpdateFailed},
		{apperror.ErrMultipleRecords, http.StatusInternalServerError, MultipleRecords},
	}

	for _, c := range cases {
		status, apiError := HandleError(c.err)
		assert.Equal(t, c.status, status, c.err.Error())
		assert.Equal(t, c.code, apiError.Code, c.err.Error())
		assert.NotEmpty(t, apiError.Message, c.err.Error())
	}
}

// a write that fails halfway reports the same response shape as an up-front
// rejection - the client cannot tell the store state from the body alone
func TestHandleError_PartialWriteShape(t *testing.T) {
	sPartial, ePartial := HandleError(apperror.ErrUpdateFailed)
	sReject, eReject := HandleError(models.ErrBorrowNotVerified)

	assert.NotEqual(t, sPartial, sReject)
	assert.IsType(t, eReject, ePartial)
	assert.NotEmpty(t, ePartial.Message)
}

func TestHandleError_Unknown(t *testing.T) {
	status, apiError := HandleError(errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, int32(SystemError), apiError.Code)
	assert.Equal(t, "Server Problem", apiError.Message)
}
