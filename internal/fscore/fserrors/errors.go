// Package fserrors implements a fixed error taxonomy, a structured error
// envelope, and mapping of platform errors at the edges of the system.
package fserrors

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
)

// Code is one of the fixed error codes exposed to callers.
type Code string

// The fixed error code set. Each has an associated suggestion string that is
// always attached when the code is constructed via New.
const (
	AccessDenied Code = "E_ACCESS_DENIED"
	NotFound     Code = "E_NOT_FOUND"
	NotFile      Code = "E_NOT_FILE"
	NotDirectory Code = "E_NOT_DIRECTORY"
	TooLarge     Code = "E_TOO_LARGE"
	InvalidInput Code = "E_INVALID_INPUT"
	Unknown      Code = "E_UNKNOWN"
)

var suggestions = map[Code]string{
	AccessDenied: "request a path inside one of the configured allowed roots",
	NotFound:     "check that the path exists and is spelled correctly",
	NotFile:      "the path refers to a directory; supply a file path instead",
	NotDirectory: "the path refers to a file; supply a directory path instead",
	TooLarge:     "reduce the requested size or raise the applicable size limit",
	InvalidInput: "check the request arguments against the operation's contract",
	Unknown:      "an unexpected error occurred; consult the cause for detail",
}

// Error is the structured error value returned by every facade. It
// implements the standard error interface so it can be propagated with
// ordinary Go control flow, while still carrying the fields the
// caller-visible envelope requires.
type Error struct {
	Code       Code
	Message    string
	Path       string
	Suggestion string
	Cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap allows errors.Is/errors.As to see through to the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New constructs an *Error with the code's fixed suggestion attached.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Suggestion: suggestions[code]}
}

// Newf is like New but formats the message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// WithPath returns a copy of e with Path set.
func (e *Error) WithPath(path string) *Error {
	clone := *e
	clone.Path = path
	return &clone
}

// WithCause returns a copy of e with Cause set.
func (e *Error) WithCause(cause error) *Error {
	clone := *e
	clone.Cause = cause
	return &clone
}

// TooLargef constructs an E_TOO_LARGE error whose message includes
// human-readable byte counts, e.g. "127 MB exceeds the 10 MB limit".
func TooLargef(path string, actual, limit int64) *Error {
	return New(TooLarge, fmt.Sprintf(
		"%s exceeds the %s limit",
		humanize.Bytes(uint64(actual)), humanize.Bytes(uint64(limit)),
	)).WithPath(path)
}

// FromOSError maps a platform error raised by the os/io packages onto the
// fixed taxonomy: ENOENT→NotFound, EACCES/EPERM→AccessDenied,
// EEXIST→InvalidInput, EISDIR/ENOTDIR→NotFile/NotDirectory, everything
// else→Unknown.
func FromOSError(path string, err error) *Error {
	if err == nil {
		return nil
	}

	// Unwrap to find the underlying cause if the error was wrapped with
	// github.com/pkg/errors or fmt.Errorf("...: %w", err).
	cause := err
	type causer interface{ Cause() error }
	for {
		if c, ok := cause.(causer); ok && c.Cause() != nil {
			cause = c.Cause()
			continue
		}
		if unwrapped := errors.Unwrap(cause); unwrapped != nil {
			cause = unwrapped
			continue
		}
		break
	}

	switch {
	case errors.Is(cause, os.ErrNotExist):
		return New(NotFound, "no such file or directory").WithPath(path).WithCause(err)
	case errors.Is(cause, os.ErrPermission):
		return New(AccessDenied, "permission denied").WithPath(path).WithCause(err)
	case errors.Is(cause, os.ErrExist):
		return New(InvalidInput, "path already exists").WithPath(path).WithCause(err)
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		switch pathErr.Err.Error() {
		case "is a directory":
			return New(NotFile, "expected a file but found a directory").WithPath(path).WithCause(err)
		case "not a directory":
			return New(NotDirectory, "expected a directory but found a file").WithPath(path).WithCause(err)
		}
	}

	return New(Unknown, cause.Error()).WithPath(path).WithCause(err)
}
