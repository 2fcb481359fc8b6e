// Package contract defines the fatal errors raised when a caller breaks an
// API precondition or the built-in environment is malformed.
//
// Contract violations are programming errors, so most operations report them
// by panicking with a *Error. API edges that must not panic (such as registry
// construction) use Recover to turn the panic back into a returned error.
package contract

import (
	"errors"
	"fmt"
	"maps"
)

// Code represents a machine-readable failure category.
type Code string

const (
	CodeMissingBuiltin      Code = "missing_builtin"
	CodeWrongClassifierKind Code = "wrong_classifier_kind"
	CodeArgumentCount       Code = "argument_count"
	CodeRecursiveEvaluation Code = "recursive_evaluation"
	CodeUninitialized       Code = "uninitialized"
	CodeAlreadyInitialized  Code = "already_initialized"
	CodeFragmentCount       Code = "fragment_count"
	CodeInvalidMetadata     Code = "invalid_metadata"
	CodeInvalidName         Code = "invalid_name"
	CodeNotArray            Code = "not_array"
	CodeInvalidArgument     Code = "invalid_argument"
	CodeUnsupportedRuntime  Code = "unsupported_runtime"
)

// Error is a contract violation with a code and a message naming the
// offending entity.
type Error struct {
	Code    Code
	Message string
	Details map[string]any

	// Entity is the rendered name of the class, type or package the
	// violation is about. Empty when the error is not about one entity.
	Entity string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates a new contract error.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Errorf creates a new contract error with a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetail returns a copy of e with key set to value in its details.
func (e *Error) WithDetail(key string, value any) *Error {
	c := *e
	c.Details = maps.Clone(e.Details)
	if c.Details == nil {
		c.Details = make(map[string]any, 1)
	}
	c.Details[key] = value
	return &c
}

// About returns an error whose message is format applied to entity and then
// args, with Entity set to entity's rendering.
//
//	contract.About(contract.CodeMissingBuiltin, fq, "built-in class %s is not found")
func About(code Code, entity fmt.Stringer, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, append([]any{entity}, args...)...),
		Entity:  entity.String(),
	}
}

// Fail panics with a formatted contract error.
func Fail(code Code, format string, args ...any) {
	panic(Errorf(code, format, args...))
}

// FailAbout panics with the error About returns.
func FailAbout(code Code, entity fmt.Stringer, format string, args ...any) {
	panic(About(code, entity, format, args...))
}

// Check panics with a formatted contract error unless cond holds.
func Check(cond bool, code Code, format string, args ...any) {
	if !cond {
		Fail(code, format, args...)
	}
}

// Recover runs fn and returns the contract error it panicked with, if any.
// Panics carrying anything other than a *Error are propagated unchanged.
func Recover(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ce, ok := r.(*Error)
		if !ok {
			panic(r)
		}
		err = ce
	}()
	fn()
	return nil
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// EntityOf returns the entity of the first *Error in err's chain, or "".
func EntityOf(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Entity
	}
	return ""
}
