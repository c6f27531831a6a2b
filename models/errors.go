package models

import "errors"

// ErrNotFound signals an unknown property or config ID. The API layer maps
// it to a 404; it is never retried.
var ErrNotFound = errors.New("not found")

// ValidationError rejects a request before any persistence write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
