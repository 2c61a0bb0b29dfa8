package inventory

import (
	"errors"
	"fmt"
)

// ErrMissingID is returned when an operation needs an item id and none was given.
// No request is sent in that case.
var ErrMissingID = &ValidationError{Field: "id", Message: "item id must be provided"}

// ValidationError reports a caller mistake detected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// TransportError wraps any network or HTTP failure talking to the inventory API.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("inventory %s: http status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("inventory %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err was caused by the inventory API being unreachable or failing.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsValidation reports whether err was rejected locally.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
