package bashrserr

import (
	"fmt"
	"runtime"

	"github.com/pkg/errors"
)

// Error is a Code-tagged error carrying the underlying cause and, for
// kinds worth post-mortem debugging, a captured stack trace. Immutable
// once built except for the Details accumulators below.
type Error struct {
	Code    Code
	Msg     string
	Err     error
	Stack   string
	Details []string
}

// New builds an Error, capturing a stack trace for the kinds a user would
// want one for when reporting a bug (RuleInternalError, Internal — the
// two kinds that indicate a bashrs defect rather than bad input).
func New(code Code, msg string, underlying error) *Error {
	e := &Error{Code: code, Msg: msg, Err: underlying}
	if code == RuleInternalError || code == Internal {
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		e.Stack = string(buf[:n])
	}
	return e
}

// Wrap wraps err under code using pkg/errors so Cause()/StackTrace()
// keep working through the chain, recording msg as this layer's
// context.
func Wrap(code Code, msg string, err error) *Error {
	return New(code, msg, errors.Wrap(err, msg))
}

// AddDetail appends a free-form detail string (e.g. "assumed unset" for
// a SafeWithAssumptions fix that wasn't applied) to e.
func (e *Error) AddDetail(msg string) *Error {
	e.Details = append(e.Details, msg)
	return e
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Msg, e.Err.Error())
}

func (e *Error) Unwrap() error { return e.Err }

// Cause returns the root cause of e by delegating to pkg/errors.Cause,
// unwrapping through any errors.Wrap layers underneath.
func (e *Error) Cause() error {
	if e.Err == nil {
		return e
	}
	return errors.Cause(e.Err)
}

// IsCode reports whether err is (or wraps) a *bashrsErr.Error with the
// given code.
func IsCode(err error, code Code) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// As is a thin re-export of errors.As so callers need only import this
// package when they want to inspect a wrapped *Error.
func As(err error, target any) bool {
	return errors.As(err, target)
}
