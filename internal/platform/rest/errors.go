package rest

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by GetOne when the id does not exist upstream.
var ErrNotFound = errors.New("entity not found")

// BusinessError is an isSuccess=false envelope carried over a successful
// HTTP response. The backend message is surfaced to the user verbatim; local
// state is left untouched.
type BusinessError struct {
	Message string
}

func (e *BusinessError) Error() string {
	if e.Message == "" {
		return "request rejected by backend"
	}
	return e.Message
}

// TransportError is a network failure, an auth rejection, or a non-2xx
// response without a decodable envelope. It is surfaced generically.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.Status > 0:
		return fmt.Sprintf("transport failure (status %d): %v", e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("transport failure: %v", e.Err)
	default:
		return fmt.Sprintf("transport failure (status %d)", e.Status)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsBusiness reports whether err is a backend business rejection.
func IsBusiness(err error) bool {
	var be *BusinessError
	return errors.As(err, &be)
}
