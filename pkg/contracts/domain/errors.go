package domain

import "errors"

// ErrInvalidInput is the sentinel wrapped by every ValidationError.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError represents an input validation failure on a single field
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	// Err is the underlying sentinel, ErrInvalidInput when unset.
	Err error `json:"-"`
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return ve.Field + ": " + ve.Message
}

// Unwrap exposes the sentinel so callers can use errors.Is.
func (ve ValidationError) Unwrap() error {
	if ve.Err != nil {
		return ve.Err
	}
	return ErrInvalidInput
}

// ErrNotFound is wrapped by every lookup failure for a named resource.
var ErrNotFound = errors.New("not found")
