package config

import (
	"path/filepath"
	"strings"

	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/logging"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates a config version this build does not read.
	ErrUnsupportedVersion = errors.Mark(errors.New("unsupported config version"), errors.ErrInvalidConfig)

	// ErrInvalidLogFormat indicates an unrecognized log format.
	ErrInvalidLogFormat = errors.Mark(errors.New("invalid log format"), errors.ErrInvalidConfig)

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.Mark(errors.New("invalid path"), errors.ErrInvalidConfig)
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.Mark(errors.New("config is nil"), errors.ErrInvalidConfig)}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, errors.Wrapf(ErrUnsupportedVersion, "%d", cfg.Version))
	}

	switch logging.Format(strings.ToLower(cfg.LogFormat)) {
	case logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, &FieldError{Field: KeyLogFormat, Value: cfg.LogFormat, Err: ErrInvalidLogFormat})
	}

	for _, f := range []struct{ field, path string }{
		{KeySettingsFile, cfg.SettingsFile},
		{KeyLogFile, cfg.LogFile},
	} {
		if err := validatePath(f.path); err != nil {
			errs = append(errs, &FieldError{Field: f.field, Value: f.path, Err: err})
		}
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	// Check for null bytes which are never valid in paths
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// FieldError represents an error for a specific config field.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
