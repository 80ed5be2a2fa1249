package backup

import (
	"iter"

	"github.com/thoreinstein/nsm/internal/copier"
	"github.com/thoreinstein/nsm/internal/errors"
)

// TempLabel is the label of the safety snapshot taken during a restore.
const TempLabel = "TEMP"

// TimestampLayout renders backup timestamps (YYYYMMDDHHMMSS).
const TimestampLayout = "20060102150405"

// Sentinel errors for backup operations.
var (
	// ErrTempBackupExists indicates a previous restore left its snapshot behind.
	ErrTempBackupExists = errors.Mark(errors.New("temporary backup already exists"), errors.ErrAlreadyExists)

	// ErrInvalidLabel indicates a label that would not produce a direct child of the saves folder.
	ErrInvalidLabel = errors.Mark(errors.New("invalid backup label"), errors.ErrInvalidConfig)

	// ErrInvalidName indicates a backup name outside the saves folder or without the prefix.
	ErrInvalidName = errors.Mark(errors.New("invalid backup name"), errors.ErrPathNotFound)
)

// TreeCopier copies a directory tree, streaming progress.
// copier.Engine is the production implementation.
type TreeCopier interface {
	Tree(src, dst string) iter.Seq2[copier.Progress, error]
}

// Status is the end state of a user-level operation.
type Status int

// Operation statuses.
const (
	StatusDone Status = iota
	StatusCancelled
	StatusFailed
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	case StatusFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Outcome reports what a Manager operation did.
type Outcome struct {
	Status Status

	// Name is the backup the operation acted on, if any.
	Name string

	// Path is the absolute path of that backup.
	Path string

	// Err explains a non-Done status. For StatusCancelled it is
	// errors.ErrUserCancelled.
	Err error

	// TempRemoved is set by a successful Restore once its snapshot of the
	// save slot has been deleted. It stays false when there was no save
	// slot to snapshot or the snapshot could not be removed.
	TempRemoved bool
}

// OK reports whether the operation completed.
func (o Outcome) OK() bool {
	return o.Status == StatusDone
}

func outcomeFromErr(name, path string, err error) Outcome {
	switch {
	case err == nil:
		return Outcome{Status: StatusDone, Name: name, Path: path}
	case errors.Is(err, errors.ErrFatalInconsistency):
		return Outcome{Status: StatusFatal, Name: name, Path: path, Err: err}
	case errors.Is(err, errors.ErrUserCancelled):
		return Outcome{Status: StatusCancelled, Name: name, Path: path, Err: err}
	default:
		return Outcome{Status: StatusFailed, Name: name, Path: path, Err: err}
	}
}

func drain(c TreeCopier, src, dst string, progress func(copier.Progress)) error {
	for p, err := range c.Tree(src, dst) {
		if err != nil {
			return err
		}
		if progress != nil {
			progress(p)
		}
	}
	return nil
}
