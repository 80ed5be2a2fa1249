package errors

import (
	"fmt"
	"io/fs"

	crdb "github.com/cockroachdb/errors"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid input, configuration, etc.).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, permissions, etc.).
	ExitSystem = 2

	// ExitFatal indicates the save slot may be inconsistent and needs manual recovery.
	ExitFatal = 3
)

// Error kinds. Every failure surfaced by the core wraps exactly one of these
// so callers can branch with [Is].
var (
	// ErrPathNotFound indicates a required file or directory does not exist.
	ErrPathNotFound = crdb.New("path not found")

	// ErrAlreadyExists indicates a destination that must be absent already exists.
	ErrAlreadyExists = crdb.New("already exists")

	// ErrPermissionDenied indicates the filesystem rejected the operation.
	ErrPermissionDenied = crdb.New("permission denied")

	// ErrIO indicates any other filesystem failure.
	ErrIO = crdb.New("i/o failure")

	// ErrParse indicates the settings file could not be parsed.
	ErrParse = crdb.New("parse error")

	// ErrUserCancelled indicates the user supplied empty input to cancel.
	ErrUserCancelled = crdb.New("cancelled by user")

	// ErrFatalInconsistency indicates a failed restore could not be rolled back.
	ErrFatalInconsistency = crdb.New("fatal inconsistency")

	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = crdb.New("invalid configuration")
)

// Re-exported helpers so callers only need a single errors import.
var (
	New      = crdb.New
	Newf     = crdb.Newf
	Errorf   = crdb.Errorf
	Wrap     = crdb.Wrap
	Wrapf    = crdb.Wrapf
	Is       = crdb.Is
	As       = crdb.As
	Mark     = crdb.Mark
	WithHint = crdb.WithHint
)

// Classify marks err with the error kind matching its underlying cause.
// Errors already carrying a kind are returned unchanged. Nil stays nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{
		ErrPathNotFound, ErrAlreadyExists, ErrPermissionDenied, ErrIO,
		ErrParse, ErrUserCancelled, ErrFatalInconsistency,
	} {
		if crdb.Is(err, kind) {
			return err
		}
	}
	switch {
	case crdb.Is(err, fs.ErrNotExist):
		return crdb.Mark(err, ErrPathNotFound)
	case crdb.Is(err, fs.ErrExist):
		return crdb.Mark(err, ErrAlreadyExists)
	case crdb.Is(err, fs.ErrPermission):
		return crdb.Mark(err, ErrPermissionDenied)
	default:
		return crdb.Mark(err, ErrIO)
	}
}

// Kind returns a short name for the error kind carried by err, or "" if none.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case crdb.Is(err, ErrFatalInconsistency):
		return "fatal_inconsistency"
	case crdb.Is(err, ErrUserCancelled):
		return "user_cancelled"
	case crdb.Is(err, ErrPathNotFound):
		return "path_not_found"
	case crdb.Is(err, ErrAlreadyExists):
		return "already_exists"
	case crdb.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case crdb.Is(err, ErrParse):
		return "parse_error"
	case crdb.Is(err, ErrIO):
		return "io_error"
	default:
		return ""
	}
}

// ExitError wraps an error with an exit code and optional suggestion for CLI applications.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
// If err is nil, the returned ExitError will have a nil Err field.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// FromKind builds an ExitError whose code follows the kind carried by err.
// Fatal inconsistencies get ExitFatal; user-caused kinds get ExitUser;
// everything else is a system error.
func FromKind(err error) *ExitError {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if crdb.As(err, &exitErr) {
		return exitErr
	}
	switch {
	case crdb.Is(err, ErrFatalInconsistency):
		return &ExitError{Err: err, Code: ExitFatal,
			Suggestion: "Do not delete the TEMP backup; copy it back into save00 by hand"}
	case crdb.Is(err, ErrPathNotFound), crdb.Is(err, ErrAlreadyExists),
		crdb.Is(err, ErrUserCancelled), crdb.Is(err, ErrParse), crdb.Is(err, ErrInvalidConfig):
		return &ExitError{Err: err, Code: ExitUser, Suggestion: "Run: nsm doctor"}
	default:
		return &ExitError{Err: err, Code: ExitSystem}
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}
