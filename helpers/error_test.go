package helpers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapError(t *testing.T) {
	cause := errors.New("connection reset")

	err := WrapError(cause, "models.GetBook")

	assert.EqualError(t, err, "models.GetBook: connection reset")
	assert.True(t, errors.Is(err, cause))
}
