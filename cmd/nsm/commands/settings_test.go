package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/nsm/internal/editor"
	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/logging"
	"github.com/thoreinstein/nsm/internal/settings"
)

func TestSettingsList(t *testing.T) {
	root := useSaves(t)
	var buf bytes.Buffer
	require.NoError(t, runSettingsListWithWriter(&buf, current))
	assert.Contains(t, buf.String(), settings.KeySavesFolder+"="+root+"\n")
	assert.Contains(t, buf.String(), "backup_prefix=BACKUP_\n")
}

func TestSettingsGet(t *testing.T) {
	useSaves(t)
	var buf bytes.Buffer
	require.NoError(t, runSettingsGetWithWriter(&buf, current, settings.KeyBackupPrefix))
	assert.Equal(t, "BACKUP_\n", buf.String())

	err := runSettingsGetWithWriter(&buf, current, "nope")
	require.Error(t, err)
	var exitErr *errors.ExitError
	assert.True(t, errors.As(err, &exitErr))
}

func TestSettingsSet(t *testing.T) {
	useSaves(t)
	var buf bytes.Buffer

	require.NoError(t, runSettingsSetWithWriter(&buf, current, settingsPath(), settings.KeyBackupPrefix, " SNAP_ "))
	assert.Equal(t, "Set backup_prefix = SNAP_\n", buf.String())

	loaded, err := settings.Load(settingsPath())
	require.NoError(t, err)
	assert.Equal(t, "SNAP_", loaded.BackupPrefix)

	t.Run("unknown keys are kept", func(t *testing.T) {
		require.NoError(t, runSettingsSetWithWriter(&buf, current, settingsPath(), "theme", "dark"))
		loaded, err := settings.Load(settingsPath())
		require.NoError(t, err)
		assert.Equal(t, "dark", loaded.Extra["theme"])
	})

	t.Run("value with equals is rejected", func(t *testing.T) {
		err := runSettingsSetWithWriter(&buf, current, settingsPath(), settings.KeyGameExe, "a=b")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
	})

	t.Run("unsafe prefix is rejected and not saved", func(t *testing.T) {
		for _, prefix := range []string{"", "save", "../ESC_"} {
			err := runSettingsSetWithWriter(&buf, current, settingsPath(), settings.KeyBackupPrefix, prefix)
			require.Error(t, err, "prefix %q", prefix)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
		}
		assert.Equal(t, "SNAP_", current.BackupPrefix)
		loaded, err := settings.Load(settingsPath())
		require.NoError(t, err)
		assert.Equal(t, "SNAP_", loaded.BackupPrefix)
	})
}

func TestSettingsReset(t *testing.T) {
	useSaves(t)
	current.BackupPrefix = "OLD_"
	var buf bytes.Buffer

	require.NoError(t, runSettingsResetWithWriter(&buf, current, settingsPath()))
	assert.Equal(t, settings.Defaults(), current)

	loaded, err := settings.Load(settingsPath())
	require.NoError(t, err)
	assert.Equal(t, settings.DefaultBackupPrefix, loaded.BackupPrefix)
}

func TestSettingsExport(t *testing.T) {
	useSaves(t)

	tests := []struct {
		format string
		want   string
	}{
		{"yaml", "backup_prefix: BACKUP_"},
		{"toml", "backup_prefix = "},
		{"json", `"backup_prefix": "BACKUP_"`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, runSettingsExportWithWriter(&buf, current, tt.format))
			assert.Contains(t, buf.String(), tt.want)
		})
	}

	var buf bytes.Buffer
	assert.Error(t, runSettingsExportWithWriter(&buf, current, "ini"))
}

func TestSettingsEdit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as the editor")
	}
	useSaves(t)
	dir := t.TempDir()

	script := filepath.Join(dir, "editor.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho 'backup_prefix=ED_' > \"$1\"\n"), 0o755))

	var buf bytes.Buffer
	e := &editor.Editor{Command: script, Logger: logging.ForTest(t)}
	require.NoError(t, runSettingsEditWithWriter(t.Context(), &buf, e, settingsPath()))
	assert.Equal(t, "ED_", current.BackupPrefix)
	assert.Contains(t, buf.String(), "Location: "+settingsPath())

	t.Run("malformed result is a user error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.sh")
		require.NoError(t, os.WriteFile(bad, []byte("#!/bin/sh\necho 'oops' > \"$1\"\n"), 0o755))

		err := runSettingsEditWithWriter(t.Context(), &buf, &editor.Editor{Command: bad, Logger: logging.ForTest(t)}, settingsPath())
		require.Error(t, err)
		assert.Equal(t, errors.ExitUser, Report(&bytes.Buffer{}, err))
		assert.Equal(t, "ED_", current.BackupPrefix, "settings in memory survive a bad edit")
	})
}
