package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Error is a coded error carrying the operation that failed and optional
// key/value context such as the file or target involved.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Context map[string]string
	Err     error
}

// New creates an error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with the given code and a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with a code and message. It returns nil if err is nil.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// WithOp sets the operation name.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithContext adds a key/value pair to the error context.
func (e *Error) WithContext(key, value string) *Error {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Code))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Context) > 0 {
		keys := slices.Sorted(maps.Keys(e.Context))
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%s", k, e.Context[k])
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by code, so errors.Is(err, errors.New(code, ""))
// works as a code check.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// CodeOf returns the code of the outermost *Error in err's chain, or
// CodeUnknown when there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// HasCode reports whether any *Error in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// Retryable reports whether any *Error in err's chain carries a code for
// which IsRetryable holds.
func Retryable(err error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && IsRetryable(e.Code) {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// ContextValue returns the context value stored under key by the outermost
// *Error in err's chain.
func ContextValue(err error, key string) (string, bool) {
	var e *Error
	if !stderrors.As(err, &e) {
		return "", false
	}
	v, ok := e.Context[key]
	return v, ok
}
