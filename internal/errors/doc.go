// Package errors provides error handling conventions for the nsm CLI.
//
// It re-exports the github.com/cockroachdb/errors constructors so packages
// need a single import, defines the error kinds every core failure is marked
// with, and an ExitError type for CLI exit code handling.
//
// # Error Kinds
//
// Kinds are sentinel errors checked with [Is]:
//
//	if errors.Is(err, nsmerrors.ErrFatalInconsistency) {
//	    // save slot may be damaged, TEMP backup is the only good copy
//	}
//
// [Classify] maps raw filesystem errors (fs.ErrNotExist, fs.ErrExist,
// fs.ErrPermission) onto the matching kind.
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (bad input, missing backup, etc.)
//   - ExitSystem (2): System-related error (I/O, permissions, etc.)
//   - ExitFatal (3): Restore could not be rolled back
package errors
