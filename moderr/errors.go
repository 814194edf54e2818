// Package moderr defines the error taxonomy shared by the case ledger
// and the restriction registry. Callers branch on the error code, not
// on message text.
package moderr

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeValidation  Code = "VALIDATION"
	CodeNotFound    Code = "NOT_FOUND"
	CodeConflict    Code = "CONFLICT"
	CodeGateway     Code = "GATEWAY"
	CodePersistence Code = "PERSISTENCE"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(format string, args ...any) error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

func Gateway(msg string, err error) error {
	return &Error{Code: CodeGateway, Message: msg, Err: err}
}

func Persistence(msg string, err error) error {
	return &Error{Code: CodePersistence, Message: msg, Err: err}
}

func is(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

func IsValidation(err error) bool  { return is(err, CodeValidation) }
func IsNotFound(err error) bool    { return is(err, CodeNotFound) }
func IsConflict(err error) bool    { return is(err, CodeConflict) }
func IsGateway(err error) bool     { return is(err, CodeGateway) }
func IsPersistence(err error) bool { return is(err, CodePersistence) }
