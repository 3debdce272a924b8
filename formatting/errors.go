package formatting

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormatter is wrapped by UnknownFormatterError
	ErrUnknownFormatter = errors.New("formatting: unknown formatter")
	// ErrFormatterContractViolation is wrapped by FormatterContractViolationError
	ErrFormatterContractViolation = errors.New("formatting: formatter contract violation")
)

// UnknownFormatterError reports a formatter name with no registration
type UnknownFormatterError struct {
	Name string
}

func (e *UnknownFormatterError) Error() string {
	return fmt.Sprintf("formatting: given format %q does not exist", e.Name)
}

func (e *UnknownFormatterError) Unwrap() error {
	return ErrUnknownFormatter
}

// FormatterContractViolationError reports a registered type that does not
// implement Formatter
type FormatterContractViolationError struct {
	Name string
	Type string
}

func (e *FormatterContractViolationError) Error() string {
	return fmt.Sprintf("formatting: %s registered as %q does not implement Formatter", e.Type, e.Name)
}

func (e *FormatterContractViolationError) Unwrap() error {
	return ErrFormatterContractViolation
}
