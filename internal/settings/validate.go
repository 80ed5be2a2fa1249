package settings

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/paths"
)

// Validation errors for settings values.
var (
	// ErrEmptyValue indicates a required key has no value.
	ErrEmptyValue = errors.Mark(errors.New("value is empty"), errors.ErrInvalidConfig)

	// ErrInvalidPrefix indicates a backup prefix that would not name a direct child directory.
	ErrInvalidPrefix = errors.Mark(errors.New("backup prefix must not contain path separators"), errors.ErrInvalidConfig)

	// ErrPrefixShadowsSaveSlot indicates a prefix the save slot name starts
	// with, which would make the save slot look like a backup.
	ErrPrefixShadowsSaveSlot = errors.Mark(errors.New("backup prefix matches the save slot"), errors.ErrInvalidConfig)

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.Mark(errors.New("invalid path"), errors.ErrInvalidConfig)

	// ErrNotDirectory indicates a path that must be a directory is not one.
	ErrNotDirectory = errors.Mark(errors.New("not a directory"), errors.ErrPathNotFound)

	// ErrNotFile indicates a path that must be a regular file is not one.
	ErrNotFile = errors.Mark(errors.New("not a file"), errors.ErrPathNotFound)
)

// Validate checks that the values are well formed. It does not touch the
// filesystem. Returns nil if valid, or every problem found.
func (s *Settings) Validate() []error {
	var errs []error

	if s.SavesFolder == "" {
		errs = append(errs, &FieldError{Key: KeySavesFolder, Err: ErrEmptyValue})
	} else if err := validatePath(s.SavesFolder); err != nil {
		errs = append(errs, &FieldError{Key: KeySavesFolder, Value: s.SavesFolder, Err: err})
	}

	for _, kv := range []struct{ key, value string }{
		{KeyProxyExe, s.ProxyExe},
		{KeyGameExe, s.GameExe},
	} {
		if err := validatePath(kv.value); err != nil {
			errs = append(errs, &FieldError{Key: kv.key, Value: kv.value, Err: err})
		}
	}

	if err := ValidatePrefix(s.BackupPrefix); err != nil {
		errs = append(errs, &FieldError{Key: KeyBackupPrefix, Value: s.BackupPrefix, Err: err})
	}

	return errs
}

// ValidatePrefix reports whether every name built from prefix stays a
// direct child of the saves folder and can never match the save slot.
func ValidatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return ErrEmptyValue
	case strings.ContainsAny(prefix, `/\`), strings.Contains(prefix, ".."):
		return ErrInvalidPrefix
	case strings.HasPrefix(paths.SaveSlotName, prefix):
		return ErrPrefixShadowsSaveSlot
	}
	return nil
}

// RequireDir returns nil if path is an existing directory.
func RequireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(errors.Classify(err), "checking %s", path)
	}
	if !info.IsDir() {
		return errors.Wrapf(ErrNotDirectory, "%s", path)
	}
	return nil
}

// RequireFile returns nil if path is an existing regular file.
func RequireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(errors.Classify(err), "checking %s", path)
	}
	if !info.Mode().IsRegular() {
		return errors.Wrapf(ErrNotFile, "%s", path)
	}
	return nil
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid for optional keys
	if path == "" {
		return nil
	}

	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// FieldError represents an error for a specific settings key.
type FieldError struct {
	Key   string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return e.Key + ": " + e.Err.Error()
	}
	return e.Key + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
