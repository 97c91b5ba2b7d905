// Package errors defines the coded errors shared by composer-lsp.
//
// Every failure that crosses a package boundary carries a [Code]. The editor
// adapter uses the code to decide between answering null (see [Recoverable])
// and failing the request; the message without the code prefix is what
// users see in window/logMessage.
//
// Codes are grouped by prefix: INVALID_* for input that could not be decoded
// or validated, NO_* and *_NOT_FOUND for lookups with nothing to return,
// network codes for registry transport failures.
//
//	err := errors.New(errors.ErrCodeNoDependency, "no dependency on line %d", line)
//	if errors.Recoverable(err) {
//	    // answer null
//	}
//
//	err = errors.Wrap(errors.ErrCodeInvalidManifest, cause, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeNotManifest       Code = "NOT_A_MANIFEST"
	ErrCodeInvalidManifest   Code = "INVALID_MANIFEST"
	ErrCodeInvalidLock       Code = "INVALID_LOCK"
	ErrCodeInvalidPackage    Code = "INVALID_PACKAGE"
	ErrCodeInvalidConstraint Code = "INVALID_CONSTRAINT"

	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeNoDependency    Code = "NO_DEPENDENCY"
	ErrCodePackageNotFound Code = "PACKAGE_NOT_FOUND"
	ErrCodeNoRelease       Code = "NO_RELEASE"
	ErrCodeNoDocument      Code = "NO_DOCUMENT"

	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	ErrCodeCommandFailed Code = "COMMAND_FAILED"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error carries a Code, a message for users and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message and no cause.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err's code, as returned by [GetCode], is code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode returns the code of the first *Error in err's chain. Without one,
// a [RateLimitedError] in the chain yields ErrCodeRateLimited; otherwise "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl.Code()
	}
	return ""
}

// UserMessage returns the message of the first *Error in err's chain,
// without code or cause, falling back to err.Error().
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Recoverable reports whether err describes a lookup miss that should be
// logged rather than reported as a failed request: no dependency on the
// queried line, no registry data, or no usable release.
func Recoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeNoDependency, ErrCodePackageNotFound, ErrCodeNoRelease, ErrCodeNoDocument:
		return true
	}
	return false
}

// RateLimitedError is returned for a 429 response. RetryAfter holds the
// seconds from the Retry-After header, 0 when absent.
type RateLimitedError struct {
	RetryAfter int
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns ErrCodeRateLimited.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
