package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// ArgumentError reports a caller bug (ex: a non-positive limit). It is never clamped away.
type ArgumentError struct {
	Arg string
	msg string
}

func NewArgumentError(arg, msg string) error {
	return &ArgumentError{Arg: arg, msg: msg}
}

func (err *ArgumentError) Error() string {
	if err.Arg == "" {
		return "invalid argument: " + err.msg
	}
	return "invalid argument " + err.Arg + ": " + err.msg
}

func IsArgumentError(err error) bool {
	_, ok := errors.Cause(err).(*ArgumentError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
