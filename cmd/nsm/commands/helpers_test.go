package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/nsm/internal/backup"
	"github.com/thoreinstein/nsm/internal/cli/prompt"
	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/logging"
	"github.com/thoreinstein/nsm/internal/settings"
)

// useSaves points the package settings at a fresh saves folder whose
// save00 holds player.xml, and the settings file at a temp path.
func useSaves(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	slot := filepath.Join(root, "save00")
	require.NoError(t, os.MkdirAll(slot, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(slot, "player.xml"), []byte("current"), 0o644))

	origCurrent, origFlag := current, settingsFlag
	t.Cleanup(func() { current, settingsFlag = origCurrent, origFlag })

	current = settings.Defaults()
	current.SavesFolder = root
	settingsFlag = filepath.Join(t.TempDir(), "variables.txt")
	return root
}

func addBackup(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "player.xml"), []byte(content), 0o644))
}

func testManager(t *testing.T, w *bytes.Buffer) *backup.Manager {
	t.Helper()
	return newManager(w, logging.ForTest(t))
}

func testPrompter(input string, w *bytes.Buffer) *prompt.Prompter {
	return prompt.NewPrompterWithIO(strings.NewReader(input), w)
}

func TestReport(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  []string
	}{
		{
			name:     "nil",
			err:      nil,
			wantCode: errors.ExitSuccess,
		},
		{
			name:     "user error with suggestion",
			err:      errors.Wrap(errors.ErrPathNotFound, "backup BACKUP_x"),
			wantCode: errors.ExitUser,
			wantOut:  []string{"Error: backup BACKUP_x: path not found", "Run: nsm doctor"},
		},
		{
			name:     "system error",
			err:      errors.Mark(errors.New("disk on fire"), errors.ErrIO),
			wantCode: errors.ExitSystem,
			wantOut:  []string{"Error: disk on fire"},
		},
		{
			name: "fatal restore",
			err: &backup.RestoreError{
				Backup:      "BACKUP_a_20240101000000",
				TempPath:    "/saves/BACKUP_TEMP",
				Cause:       errors.New("copy failed"),
				RollbackErr: errors.New("rollback failed"),
			},
			wantCode: errors.ExitFatal,
			wantOut:  []string{"FATAL", "/saves/BACKUP_TEMP", "Do not delete it."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.Equal(t, tt.wantCode, Report(&buf, tt.err))
			for _, s := range tt.wantOut {
				assert.Contains(t, buf.String(), s)
			}
			if tt.err == nil {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestRestorable(t *testing.T) {
	useSaves(t)
	var buf bytes.Buffer
	mgr := testManager(t, &buf)

	names := []string{"BACKUP_TEMP", "BACKUP_a_20240101000000"}
	assert.Equal(t, []string{"BACKUP_a_20240101000000"}, restorable(mgr, names))
	assert.Len(t, names, 2, "input must not be modified")
}

func TestPickBackup_Numbered(t *testing.T) {
	var buf bytes.Buffer
	p := testPrompter("3\n2\n", &buf)

	name, err := pickBackup(p, "BACKUP_", []string{"BACKUP_a", "BACKUP_b"}, "activate", false)
	require.NoError(t, err)
	assert.Equal(t, "BACKUP_b", name)
	assert.Contains(t, buf.String(), "Choose a backup to activate:")
	assert.Contains(t, buf.String(), "Invalid choice, please try again.")
}

func TestPickBackup_Exit(t *testing.T) {
	var buf bytes.Buffer
	p := testPrompter("X\n", &buf)

	_, err := pickBackup(p, "BACKUP_", []string{"BACKUP_a"}, "delete", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUserCancelled))
	assert.NoError(t, cancelled(&buf, err))
	assert.Contains(t, buf.String(), "Cancelled.")
}

func TestPickBackup_Empty(t *testing.T) {
	var buf bytes.Buffer
	_, err := pickBackup(testPrompter("", &buf), "BACKUP_", nil, "activate", false)
	assert.True(t, errors.Is(err, errors.ErrPathNotFound))
}
