package helpers

import "fmt"

// StoreError carries an error raised by one of the stores (mongo, redis,
// influx) together with the place it surfaced, usually via FuncName
type StoreError struct {
	Origin string
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Origin, e.Err)
}

// Unwrap exposes the store's error to errors.Is/As
func (e *StoreError) Unwrap() error {
	return e.Err
}

// WrapError tags a store error with its origin before it bubbles up
func WrapError(err error, origin string) *StoreError {
	return &StoreError{
		Origin: origin,
		Err:    err,
	}
}
