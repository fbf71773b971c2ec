// internal/errors/errors.go
package errors

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// WithStackTrace wraps err in an Error carrying the stack trace. An error
// that already has one is returned as is. A nil error stays nil.
func WithStackTrace(err error) error {
	if err == nil {
		return nil
	}

	return goerrors.Wrap(err, 1)
}

// WithStackTraceAndPrefix is WithStackTrace with the formatted message
// prepended to the error text.
func WithStackTraceAndPrefix(err error, message string, args ...any) error {
	if err == nil {
		return nil
	}

	return goerrors.WrapPrefix(err, fmt.Sprintf(message, args...), 1)
}

// PrintErrorWithStackTrace renders err including its stack trace when it has one.
func PrintErrorWithStackTrace(err error) string {
	if err == nil {
		return ""
	}

	switch underlyingErr := err.(type) {
	case *goerrors.Error:
		return underlyingErr.ErrorStack()
	default:
		return err.Error()
	}
}

// Recover converts a panic into an error and hands it to onPanic.
// Only useful as a deferred call.
func Recover(onPanic func(cause error)) {
	if rec := recover(); rec != nil {
		err, isError := rec.(error)
		if !isError {
			err = fmt.Errorf("%v", rec)
		}
		onPanic(WithStackTraceAndPrefix(err, "worker panicked"))
	}
}
