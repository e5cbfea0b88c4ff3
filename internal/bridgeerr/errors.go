// Package bridgeerr classifies every failure the bridge can report to the host.
//
// Each class has a sentinel error so callers can test with errors.Is, and
// *Error carries the details the host needs to recover (which entity was
// missing, which SDK code was returned).
package bridgeerr

import (
	"errors"
	"fmt"
)

// Code is the wire identifier of an error class.
type Code string

const (
	CodeMalformedInput   Code = "MALFORMED_INPUT"
	CodeInvalidEnumValue Code = "INVALID_ENUM_VALUE"
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeCacheMiss        Code = "CACHE_MISS"
	CodeSDKOperation     Code = "SDK_OPERATION_ERROR"
	CodeStaleSession     Code = "STALE_SESSION"
	CodeInternal         Code = "INTERNAL"
)

var (
	ErrMalformedInput   = errors.New("malformed input")
	ErrInvalidEnumValue = errors.New("invalid enum value")
	ErrValidation       = errors.New("validation error")
	ErrCacheMiss        = errors.New("cache miss")
	ErrSDKOperation     = errors.New("sdk operation failed")
	// ErrStaleSession never reaches the host; stale pushes are dropped.
	ErrStaleSession = errors.New("stale session")
)

var sentinels = map[Code]error{
	CodeMalformedInput:   ErrMalformedInput,
	CodeInvalidEnumValue: ErrInvalidEnumValue,
	CodeValidation:       ErrValidation,
	CodeCacheMiss:        ErrCacheMiss,
	CodeSDKOperation:     ErrSDKOperation,
	CodeStaleSession:     ErrStaleSession,
}

// Error is a classified bridge error.
type Error struct {
	Code    Code
	Op      string
	Message string

	// Kind and ID identify the missing entity of a CacheMiss.
	Kind string
	ID   string

	// SDKCode is the native error code of an SdkOperationError.
	SDKCode int

	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

// Unwrap exposes both the class sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s, ok := sentinels[e.Code]; ok {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func Malformed(field, format string, args ...any) *Error {
	return &Error{
		Code:    CodeMalformedInput,
		Message: fmt.Sprintf("field %q: %s", field, fmt.Sprintf(format, args...)),
	}
}

func InvalidEnum(field string, value any) *Error {
	return &Error{
		Code:    CodeInvalidEnumValue,
		Message: fmt.Sprintf("field %q: unrecognized value %v", field, value),
	}
}

func Validation(op, format string, args ...any) *Error {
	return &Error{
		Code:    CodeValidation,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// Invalid reclassifies a decode failure as a ValidationError of op while
// keeping the original error reachable through errors.Is.
func Invalid(op string, cause error) *Error {
	return &Error{
		Code: CodeValidation,
		Op:   op,
		Err:  cause,
	}
}

func CacheMiss(kind, id string) *Error {
	return &Error{
		Code:    CodeCacheMiss,
		Kind:    kind,
		ID:      id,
		Message: fmt.Sprintf("%s %s not found, fetch it first", kind, id),
	}
}

// SDKCoder is implemented by native SDK errors that carry a numeric code.
type SDKCoder interface {
	SDKCode() int
}

// SDK wraps a failure reported by the native SDK. The SDK's message is kept
// verbatim.
func SDK(op string, err error) *Error {
	e := &Error{
		Code: CodeSDKOperation,
		Op:   op,
		Err:  err,
	}
	var coder SDKCoder
	if errors.As(err, &coder) {
		e.SDKCode = coder.SDKCode()
	}
	return e
}

// CodeOf returns the class of err, or CodeInternal for unclassified errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
