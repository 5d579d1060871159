// Package diagnostic defines the path-qualified errors produced while
// converting values to and from documents.
package diagnostic

import (
	"errors"
	"fmt"

	"tagged-serde/internal/common"
)

// CodeEnum classifies a conversion failure.
type CodeEnum int

const (
	_ CodeEnum = iota

	CodeTypeMismatch    // node kind differs from what the target type requires
	CodeSizeMismatch    // fixed-size array or tuple arity differs
	CodeMissingField    // required member is absent
	CodeFormatViolation // value has the right kind but fails a grammar or range check
	CodeConfiguration   // directive used on an incompatible type

	// CodeTotal is a constant that represents the total number of codes defined
	CodeTotal = int(iota)
)

// Sentinels matched by errors.Is against any *Error of the same code.
var (
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrSizeMismatch    = errors.New("size mismatch")
	ErrMissingField    = errors.New("missing field")
	ErrFormatViolation = errors.New("format violation")
	ErrConfiguration   = errors.New("configuration error")
)

// String returns a human-readable code name.
func (c CodeEnum) String() string {
	switch c {
	case CodeTypeMismatch:
		return "type mismatch"
	case CodeSizeMismatch:
		return "size mismatch"
	case CodeMissingField:
		return "missing field"
	case CodeFormatViolation:
		return "format violation"
	case CodeConfiguration:
		return "configuration"
	default:
		return common.UnknownStr
	}
}

func (c CodeEnum) sentinel() error {
	switch c {
	case CodeTypeMismatch:
		return ErrTypeMismatch
	case CodeSizeMismatch:
		return ErrSizeMismatch
	case CodeMissingField:
		return ErrMissingField
	case CodeFormatViolation:
		return ErrFormatViolation
	case CodeConfiguration:
		return ErrConfiguration
	default:
		return nil
	}
}

// Error is a conversion failure located by the path from the document root.
type Error struct {
	Code    CodeEnum
	Message string
	// Path names the failing location, root first.
	Path Path
	// Expected and Actual are set for type mismatches.
	Expected string
	Actual   string
	// Cause is the underlying error, if the failure came from elsewhere.
	Cause error
}

func (e *Error) Error() string {
	return "error at " + e.Path.String() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	s := e.Code.sentinel()
	return s != nil && s == target
}

// TypeMismatch reports a node of kind actual where expected was required.
func TypeMismatch(expected, actual string) *Error {
	return &Error{
		Code:     CodeTypeMismatch,
		Message:  fmt.Sprintf("type mismatch: expected `%s` got `%s`", expected, actual),
		Expected: expected,
		Actual:   actual,
	}
}

// SizeMismatch reports a sequence of actual elements where expected were required.
func SizeMismatch(expected, actual int) *Error {
	return &Error{
		Code:    CodeSizeMismatch,
		Message: fmt.Sprintf("size mismatch: expected `%d` got `%d`", expected, actual),
	}
}

// MissingField reports an absent required member. The caller adds the key.
func MissingField() *Error {
	return &Error{Code: CodeMissingField, Message: "missing field"}
}

func FormatViolation(format string, args ...any) *Error {
	return &Error{Code: CodeFormatViolation, Message: fmt.Sprintf(format, args...)}
}

func Configuration(format string, args ...any) *Error {
	return &Error{Code: CodeConfiguration, Message: fmt.Sprintf(format, args...)}
}

// Wrap turns err into an *Error. Foreign errors become format violations
// that keep err as their cause.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{Code: CodeFormatViolation, Message: err.Error(), Cause: err}
}

// WithKey prepends a ".key" segment to the path of err.
func WithKey(err error, key string) error {
	if err == nil {
		return nil
	}

	e := Wrap(err)
	e.Path = append(Path{{Key: key}}, e.Path...)

	return e
}

// WithIndex prepends a "[i]" segment to the path of err.
func WithIndex(err error, i int) error {
	if err == nil {
		return nil
	}

	e := Wrap(err)
	e.Path = append(Path{{Index: i, IsIndex: true}}, e.Path...)

	return e
}

// CodeOf returns the code of err, or zero for errors that are not an *Error.
func CodeOf(err error) CodeEnum {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return 0
}
