// Package config provides configuration management for nsm using Viper.
package config

import (
	"io/fs"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/paths"
	"github.com/thoreinstein/nsm/pkg/fileutil"
)

// Keys understood in config.yaml and as NSM_* environment variables.
const (
	KeyVersion      = "version"
	KeySettingsFile = "settings_file"
	KeyLogFile      = "log_file"
	KeyLogFormat    = "log_format"
)

// Config represents the top-level configuration structure.
type Config struct {
	Version      int    `mapstructure:"version" yaml:"version"`
	SettingsFile string `mapstructure:"settings_file" yaml:"settings_file"`
	LogFile      string `mapstructure:"log_file" yaml:"log_file"`
	LogFormat    string `mapstructure:"log_format" yaml:"log_format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version:      1,
		SettingsFile: paths.SettingsFile(),
		LogFile:      paths.LogFile(),
		LogFormat:    "text",
	}
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
// Any state from an earlier Init is discarded.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix("NSM")
	viper.AutomaticEnv()

	d := Default()
	viper.SetDefault(KeyVersion, d.Version)
	viper.SetDefault(KeySettingsFile, d.SettingsFile)
	viper.SetDefault(KeyLogFile, d.LogFile)
	viper.SetDefault(KeyLogFormat, d.LogFormat)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations and falls back to
// defaults when nothing is found.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// implicit load, defaults are fine
		case errors.As(err, &notFound), errors.Is(err, fs.ErrNotExist):
			return nil, errors.Wrapf(errors.Mark(err, errors.ErrPathNotFound), "config file not found at %s", path)
		default:
			return nil, errors.Wrap(errors.Mark(err, errors.ErrInvalidConfig), "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.Mark(err, errors.ErrInvalidConfig), "unmarshaling config")
	}
	cfg.SettingsFile = paths.ExpandHome(cfg.SettingsFile)
	cfg.LogFile = paths.ExpandHome(cfg.LogFile)

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errs[0], "validating config")
	}

	return &cfg, nil
}

// ConfigFileUsed returns the file Load read from, or "" if defaults were used.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}

// WriteDefault writes the default configuration to path, creating parent
// directories. An existing file is left alone and reported as ErrAlreadyExists.
func WriteDefault(path string) error {
	if _, err := fileutil.ReadFileWithLimit(path, fileutil.DefaultReadLimit); err == nil {
		return errors.Wrapf(errors.ErrAlreadyExists, "config file %s", path)
	}
	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return errors.Wrap(errors.Classify(err), "creating config directory")
	}
	if err := fileutil.AtomicWriteYAML(path, Default()); err != nil {
		return errors.Wrap(err, "writing default config")
	}
	return nil
}
