package git

import (
	"errors"
	"fmt"
)

// Sentinel errors that can be checked with errors.Is(). They wrap the
// underlying go-git errors while providing a stable API for consumers.

// ErrRepositoryNotFound is returned when no repository exists at or above
// the requested working directory.
var ErrRepositoryNotFound = errors.New("repository does not exist")

// ErrDetachedHead is returned when HEAD does not point at a branch.
var ErrDetachedHead = errors.New("HEAD is detached")


// ErrRemoteMissing is returned when the requested remote is not configured.
var ErrRemoteMissing = errors.New("remote does not exist")

// ErrInvalidRef is returned when a reference name or revision specification
// is malformed or empty.
var ErrInvalidRef = errors.New("invalid reference")

// ErrResolveFailed is returned when a revision specification cannot be resolved
// to a commit (e.g., branch/tag doesn't exist, invalid SHA).
var ErrResolveFailed = errors.New("cannot resolve revision")

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps an error with formatted additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
