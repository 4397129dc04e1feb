package pkg

// Sentinel errors shared by the stamp command and its subpackages.
// These errors can be tested using errors.Is for reliable error checking.

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Error represents a chain of errors, innermost first.
type Error []error

// ErrReadInput is returned when reading a template or data source fails.
//
// This error should be wrapped with the underlying I/O error
// to preserve the error chain.
var ErrReadInput = MakeErrorf("failed to read input")

// ErrWriteOutput is returned when writing expanded output fails.
var ErrWriteOutput = MakeErrorf("failed to write output")

// ErrTemplateNotFound is returned when a named template cannot be located in
// any directory of the template search path.
var ErrTemplateNotFound = MakeErrorf("template not found")

// ErrInvalidFormat is returned when an invalid format is specified.
//
// This error should be wrapped with additional context that specifies the
// invalid format along with a list of valid formats.
var ErrInvalidFormat = MakeErrorf("invalid format")

// ErrJSONMarshal is returned when JSON marshaling fails.
var ErrJSONMarshal = MakeErrorf("JSON marshal error")

// ErrYAMLMarshal is returned when YAML marshaling fails.
var ErrYAMLMarshal = MakeErrorf("YAML marshal error")

// ErrCreateDir is returned when a configuration or cache directory cannot be
// created.
var ErrCreateDir = MakeErrorf("failed to create directory")

// ErrTimeout is returned when pending deferred values do not settle before the
// configured deadline.
var ErrTimeout = MakeErrorf("timed out waiting for deferred values")

// MakeError constructs an Error from the given errors.
// The errors are stored in the order they are provided:
// the first argument is the innermost error in the chain.
// Nil is returned if no errors are provided.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted error message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error returns the messages of all errors in the chain joined by ": ",
// most recently wrapped first.
func (e Error) Error() string {
	msg := make([]string, 0, len(e))
	for i := len(e) - 1; i >= 0; i-- {
		msg = append(msg, e[i].Error())
	}

	return strings.Join(msg, ": ")
}

// Wrap appends one or more errors to a copy of the receiver and returns the
// result. The receiver is never modified, so sentinels may be wrapped freely.
func (e Error) Wrap(err ...error) Error {
	out := make(Error, 0, len(e)+len(err))
	out = append(out, e...)

	for _, x := range err {
		switch x := x.(type) {
		case nil:
		case Error:
			out = append(out, x...)
		default:
			out = append(out, x)
		}
	}

	return out
}

// Wrapf appends a formatted error to a copy of the receiver.
func (e Error) Wrapf(format string, args ...any) Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// Unwrap returns the slice of errors contained in the receiver.
func (e Error) Unwrap() []error {
	return e
}

// Is reports whether target is an Error whose chain is a prefix of the
// receiver's chain. This lets a wrapped sentinel match the sentinel itself.
func (e Error) Is(target error) bool {
	var t Error
	if !errors.As(target, &t) || len(t) == 0 || len(t) > len(e) {
		return false
	}

	for i := range t {
		if !sameError(t[i], e[i]) {
			return false
		}
	}

	return true
}

func sameError(a, b error) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil || !ta.Comparable() {
		return false
	}

	return a == b
}

// UnwrapErrors recursively unwraps an error chain and returns a slice
// containing all errors in the chain, starting from the innermost error.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	chain := Error{}

	if e, ok := err.(interface{ Unwrap() []error }); ok {
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}

		return chain
	} else if e, ok := err.(interface{ Unwrap() error }); ok {
		chain = append(chain, UnwrapErrors(e.Unwrap())...)
	}

	return append(chain, err)
}
