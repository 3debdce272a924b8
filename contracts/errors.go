package contracts

import (
	"errors"
	"fmt"
)

var (
	// ErrUninitializedField is wrapped by UninitializedFieldError
	ErrUninitializedField = errors.New("message: field read before it was set")
	// ErrDeserializationShape is wrapped by DeserializationShapeError
	ErrDeserializationShape = errors.New("message: payload has the wrong shape")
	// ErrInvalidText is wrapped by InvalidTextError
	ErrInvalidText = errors.New("message: value is not valid UTF-8")
	// ErrNilMessage is returned when a nil *BatchMessage is encoded
	ErrNilMessage = errors.New("message: message cannot be nil")
)

// UninitializedFieldError reports a required field that was read before
// its setter was ever called
type UninitializedFieldError struct {
	Field string
}

func (e *UninitializedFieldError) Error() string {
	return fmt.Sprintf("message: %s must be set before it is read", e.Field)
}

func (e *UninitializedFieldError) Unwrap() error {
	return ErrUninitializedField
}

// DeserializationShapeError reports a payload that does not match the
// canonical message representation
type DeserializationShapeError struct {
	Key    string
	Reason string
	Err    error
}

func (e *DeserializationShapeError) Error() string {
	msg := "message: invalid payload"
	if e.Key != "" {
		msg += fmt.Sprintf(": key %q", e.Key)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DeserializationShapeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDeserializationShape, e.Err}
	}
	return []error{ErrDeserializationShape}
}

// InvalidTextError reports a string value that a text encoding such as
// JSON cannot carry unchanged
type InvalidTextError struct {
	Key string
}

func (e *InvalidTextError) Error() string {
	return fmt.Sprintf("message: %s is not valid UTF-8", e.Key)
}

func (e *InvalidTextError) Unwrap() error {
	return ErrInvalidText
}
