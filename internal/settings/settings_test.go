package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/nsm/internal/errors"
)

func TestDefaults(t *testing.T) {
	s := Defaults()

	for _, k := range KnownKeys() {
		v, ok := s.Get(k)
		assert.True(t, ok, "key %s missing", k)
		assert.NotEmpty(t, v, "key %s empty", k)
	}
	assert.Equal(t, DefaultBackupPrefix, s.BackupPrefix)
	assert.True(t, strings.HasSuffix(s.SavesFolder, "AppData/LocalLow/Nolla_Games_Noita"), s.SavesFolder)
	assert.Equal(t, s.SavesFolder+"/NoitaMPProxy.exe", s.ProxyExe)
	assert.Empty(t, s.Validate())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, s *Settings)
	}{
		{
			name:  "all keys",
			input: "path_to_noita_saves_folder=/games/noita\npath_to_noita_mp_proxy=/games/proxy.exe\npath_to_noita_exe=/games/noita.exe\nbackup_prefix=BK_\n",
			check: func(t *testing.T, s *Settings) {
				assert.Equal(t, "/games/noita", s.SavesFolder)
				assert.Equal(t, "/games/proxy.exe", s.ProxyExe)
				assert.Equal(t, "/games/noita.exe", s.GameExe)
				assert.Equal(t, "BK_", s.BackupPrefix)
			},
		},
		{
			name:  "partial file keeps defaults",
			input: "backup_prefix=OLD_\n",
			check: func(t *testing.T, s *Settings) {
				assert.Equal(t, "OLD_", s.BackupPrefix)
				assert.Equal(t, Defaults().SavesFolder, s.SavesFolder)
			},
		},
		{
			name:  "values trimmed and CRLF tolerated",
			input: "backup_prefix=  X_  \r\n\r\n",
			check: func(t *testing.T, s *Settings) {
				assert.Equal(t, "X_", s.BackupPrefix)
			},
		},
		{
			name:  "unknown keys preserved",
			input: "theme=dark\nbackup_prefix=B_\n",
			check: func(t *testing.T, s *Settings) {
				v, ok := s.Get("theme")
				assert.True(t, ok)
				assert.Equal(t, "dark", v)
			},
		},
		{name: "line without separator", input: "backup_prefix=B_\ngarbage\n", wantErr: true},
		{name: "two separators", input: "backup_prefix=a=b\n", wantErr: true},
		{name: "empty prefix", input: "backup_prefix=\n", wantErr: true},
		{name: "escaping prefix", input: "backup_prefix=../ESC_\n", wantErr: true},
		{name: "prefix matching save slot", input: "backup_prefix=save\n", wantErr: true},
		{name: "empty key", input: "=value\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse(strings.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrParse), "got %v", err)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestLoad_Fallback(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		s, err := Load(filepath.Join(dir, "nope.txt"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrPathNotFound))
		assert.Equal(t, Defaults(), s)
	})

	t.Run("malformed file yields exactly the defaults", func(t *testing.T) {
		p := filepath.Join(dir, "bad.txt")
		// the good first line must not leak into the result
		require.NoError(t, os.WriteFile(p, []byte("backup_prefix=LEAK_\nnot a pair\n"), 0o644))

		s, err := Load(p)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrParse))
		assert.Equal(t, Defaults(), s)
	})
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "variables.txt")

	s := Defaults()
	require.NoError(t, s.Set(KeySavesFolder, "/srv/noita"))
	require.NoError(t, s.Set("zeta", "1"))
	require.NoError(t, s.Set("alpha", "2"))
	require.NoError(t, s.Save(p))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "path_to_noita_saves_folder=/srv/noita", lines[0])
	assert.Equal(t, "backup_prefix=BACKUP_", lines[3])
	assert.Equal(t, "alpha=2", lines[4])
	assert.Equal(t, "zeta=1", lines[5])

	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestSet_Rejects(t *testing.T) {
	s := Defaults()
	for _, tc := range []struct{ key, value string }{
		{"", "x"},
		{"a=b", "x"},
		{"k", "x=y"},
		{"k", "line\nbreak"},
	} {
		err := s.Set(tc.key, tc.value)
		require.Error(t, err, "Set(%q, %q)", tc.key, tc.value)
		assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
	}
	assert.Nil(t, s.Extra)
}

func TestSet_RejectsUnsafePrefix(t *testing.T) {
	tests := []struct {
		prefix  string
		wantErr error
	}{
		{"", ErrEmptyValue},
		{"   ", ErrEmptyValue},
		{"../ESC_", ErrInvalidPrefix},
		{`a\b_`, ErrInvalidPrefix},
		{"..", ErrInvalidPrefix},
		{"save", ErrPrefixShadowsSaveSlot},
		{"s", ErrPrefixShadowsSaveSlot},
		{"save00", ErrPrefixShadowsSaveSlot},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			s := Defaults()
			err := s.Set(KeyBackupPrefix, tt.prefix)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
			assert.Equal(t, DefaultBackupPrefix, s.BackupPrefix)
		})
	}
}

func TestReset(t *testing.T) {
	s := Defaults()
	require.NoError(t, s.Set(KeyBackupPrefix, "Z_"))
	require.NoError(t, s.Set("extra", "v"))

	s.Reset()
	assert.Equal(t, Defaults(), s)
}

func TestClone(t *testing.T) {
	s := Defaults()
	require.NoError(t, s.Set("extra", "v"))

	c := s.Clone()
	require.NoError(t, c.Set("extra", "changed"))
	c.BackupPrefix = "C_"

	v, _ := s.Get("extra")
	assert.Equal(t, "v", v)
	assert.Equal(t, DefaultBackupPrefix, s.BackupPrefix)
}
