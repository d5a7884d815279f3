package models

import (
	"errors"
)

// custom error types (generic types found in apperror package)

// user
var (
	ErrUserNameNotAvailable = errors.New("user name is not available")
	ErrEMailAddressTaken    = errors.New("email-address is already used")
	ErrInvalidUser          = errors.New("invalid user name or password")
	ErrInvalidPassword      = errors.New("password does not meet rules")
)

// book & book rates
var (
	ErrBookNotFound     = errors.New("book does not exist")
	ErrBookTitleMissing = errors.New("book title is required")
	ErrAlreadyRated     = errors.New("already rated")
	ErrBookRateNotOwned = errors.New("you do not have book rate to update")
)

// borrow & user rates
var (
	ErrBorrowNotFound    = errors.New("borrow does not exist")
	ErrBorrowNoBooks     = errors.New("borrow requires at least one book")
	ErrBorrowNotVerified = errors.New("cannot rate if borrow is not verified")
	ErrUserRateNotFound  = errors.New("user rate does not exist")
	ErrUserRateNotOwned  = errors.New("you do not have user rate to update")
)

// notification
var (
	ErrNotificationNotFound = errors.New("notification does not exist")
	ErrInvalidDocType       = errors.New("invalid document type")
	ErrInvalidNotiType      = errors.New("invalid notification type")
	ErrReferencedDocMissing = errors.New("referenced document does not exist")
)

// message
var (
	ErrMessageEmpty          = errors.New("message content is required")
	ErrConversationNotFound  = errors.New("conversation does not exist")
	ErrConversationNotMember = errors.New("user is not part of the conversation")
)
