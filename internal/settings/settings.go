package settings

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/paths"
	"github.com/thoreinstein/nsm/pkg/fileutil"
)

// Known keys.
const (
	KeySavesFolder  = "path_to_noita_saves_folder"
	KeyProxyExe     = "path_to_noita_mp_proxy"
	KeyGameExe      = "path_to_noita_exe"
	KeyBackupPrefix = "backup_prefix"
)

// DefaultBackupPrefix marks a directory in the saves folder as a backup.
const DefaultBackupPrefix = "BACKUP_"

var knownKeys = []string{KeySavesFolder, KeyProxyExe, KeyGameExe, KeyBackupPrefix}

// KnownKeys returns the recognized keys in file order.
func KnownKeys() []string {
	return slices.Clone(knownKeys)
}

// IsKnown reports whether key is one of the recognized keys.
func IsKnown(key string) bool {
	return slices.Contains(knownKeys, key)
}

// Settings is the active key/value mapping.
type Settings struct {
	SavesFolder  string
	ProxyExe     string
	GameExe      string
	BackupPrefix string

	// Extra holds unknown keys read from disk.
	Extra map[string]string
}

// Defaults returns the built-in mapping.
func Defaults() *Settings {
	return &Settings{
		SavesFolder:  paths.DefaultSavesFolder(),
		ProxyExe:     paths.DefaultProxyExe(),
		GameExe:      paths.DefaultGameExe,
		BackupPrefix: DefaultBackupPrefix,
	}
}

// Clone returns a deep copy of s.
func (s *Settings) Clone() *Settings {
	c := *s
	c.Extra = maps.Clone(s.Extra)
	return &c
}

// SaveSlot returns the active save directory.
func (s *Settings) SaveSlot() string {
	return paths.SaveSlot(s.SavesFolder)
}

// Get returns the value stored under key.
func (s *Settings) Get(key string) (string, bool) {
	switch key {
	case KeySavesFolder:
		return s.SavesFolder, true
	case KeyProxyExe:
		return s.ProxyExe, true
	case KeyGameExe:
		return s.GameExe, true
	case KeyBackupPrefix:
		return s.BackupPrefix, true
	}
	v, ok := s.Extra[key]
	return v, ok
}

// Set stores value under key. Keys and values that could not be read back
// from the file, and backup prefixes that could reach outside the saves
// folder or match the save slot, are rejected with ErrInvalidConfig.
func (s *Settings) Set(key, value string) error {
	if err := checkEntry(key, value); err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	if key == KeyBackupPrefix {
		if err := ValidatePrefix(value); err != nil {
			return &FieldError{Key: key, Value: value, Err: err}
		}
	}

	switch key {
	case KeySavesFolder:
		s.SavesFolder = value
	case KeyProxyExe:
		s.ProxyExe = value
	case KeyGameExe:
		s.GameExe = value
	case KeyBackupPrefix:
		s.BackupPrefix = value
	default:
		if s.Extra == nil {
			s.Extra = make(map[string]string)
		}
		s.Extra[key] = value
	}
	return nil
}

// Reset restores the built-in defaults, dropping unknown keys.
func (s *Settings) Reset() {
	*s = *Defaults()
}

// Keys returns every key in file order: known keys first, then unknown
// keys sorted.
func (s *Settings) Keys() []string {
	keys := KnownKeys()
	return append(keys, slices.Sorted(maps.Keys(s.Extra))...)
}

// Map returns the mapping as a plain map.
func (s *Settings) Map() map[string]string {
	m := make(map[string]string, len(knownKeys)+len(s.Extra))
	for _, k := range s.Keys() {
		m[k], _ = s.Get(k)
	}
	return m
}

// Marshal renders the settings file.
func (s *Settings) Marshal() []byte {
	var buf bytes.Buffer
	for _, k := range s.Keys() {
		v, _ := s.Get(k)
		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(v)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Save writes the settings file to path atomically.
func (s *Settings) Save(path string) error {
	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return errors.Wrapf(errors.Classify(err), "creating settings directory for %s", path)
	}
	if err := fileutil.AtomicWriteFile(path, s.Marshal(), 0o644); err != nil {
		return errors.Wrapf(errors.Classify(err), "saving settings to %s", path)
	}
	return nil
}

// Parse reads a settings file. Keys missing from the file keep their
// defaults. Any malformed line fails the whole parse with ErrParse.
func Parse(r io.Reader) (*Settings, error) {
	s := Defaults()
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok || strings.Contains(value, "=") || key == "" {
			return nil, errors.Wrapf(errors.ErrParse, "line %d: want key=value, got %q", lineNo, line)
		}
		if err := s.Set(key, value); err != nil {
			return nil, errors.Wrapf(errors.ErrParse, "line %d: %v", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.Classify(err), "reading settings")
	}
	return s, nil
}

// Load reads the settings file at path. It always returns usable settings:
// when the file is missing, too large or malformed it returns Defaults
// together with the error explaining why. Callers usually log that error
// and carry on.
func Load(path string) (*Settings, error) {
	data, err := fileutil.ReadFileWithLimit(path, fileutil.DefaultReadLimit)
	if err != nil {
		return Defaults(), errors.Wrapf(errors.Classify(err), "loading settings from %s", path)
	}

	s, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Defaults(), errors.Wrapf(err, "loading settings from %s", path)
	}
	return s, nil
}

// LogValue implements slog.LogValuer.
func (s *Settings) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("saves_folder", s.SavesFolder),
		slog.String("backup_prefix", s.BackupPrefix),
		slog.Int("extra_keys", len(s.Extra)),
	)
}

func checkEntry(key, value string) error {
	switch {
	case key == "":
		return errors.Wrap(errors.ErrInvalidConfig, "empty key")
	case strings.ContainsAny(key, "=\r\n"):
		return errors.Wrapf(errors.ErrInvalidConfig, "key %q contains '=' or a line break", key)
	case strings.ContainsAny(value, "=\r\n"):
		return errors.Wrapf(errors.ErrInvalidConfig, "value for %s contains '=' or a line break", key)
	}
	return nil
}
