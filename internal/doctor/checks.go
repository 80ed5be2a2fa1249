package doctor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/thoreinstein/nsm/internal/backup"
	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/settings"
)

// Default returns the standard checks for the settings file at path and the
// settings loaded from it.
func Default(path string, s *settings.Settings) []Check {
	return []Check{
		NewSettingsFileCheck(path),
		NewSavesFolderCheck(s),
		NewSaveSlotCheck(s),
		NewTempBackupCheck(s),
		NewBackupsCheck(s),
		NewExecutableCheck(settings.KeyGameExe, s.GameExe),
		NewExecutableCheck(settings.KeyProxyExe, s.ProxyExe),
		NewGameProcessCheck(s.GameExe),
		NewDiskSpaceCheck(s),
	}
}

// SettingsFileCheck validates the settings file and can write a default one.
type SettingsFileCheck struct {
	path    string
	missing bool
}

var (
	_ Check = (*SettingsFileCheck)(nil)
	_ Fixer = (*SettingsFileCheck)(nil)
)

// NewSettingsFileCheck creates a check of the settings file at path.
func NewSettingsFileCheck(path string) *SettingsFileCheck {
	return &SettingsFileCheck{path: path}
}

// Name returns the unique identifier for this check.
func (c *SettingsFileCheck) Name() string { return "settings-file" }

// Category returns the grouping for this check.
func (c *SettingsFileCheck) Category() string { return "settings" }

// Run loads and validates the settings file.
func (c *SettingsFileCheck) Run(context.Context) *CheckResult {
	res := &CheckResult{Name: c.Name(), Category: c.Category(), Details: map[string]any{"path": c.path}}

	s, err := settings.Load(c.path)
	c.missing = errors.Is(err, errors.ErrPathNotFound)
	switch {
	case c.missing:
		res.Status = SeverityInfo
		res.Message = "settings file not found; built-in defaults are used"
		res.Fixable = true
		res.FixHint = "run: nsm doctor --fix (writes the defaults)"
		return res
	case errors.Is(err, errors.ErrParse):
		res.Status = SeverityWarning
		res.Message = fmt.Sprintf("settings file is malformed, defaults are used: %v", err)
		res.FixHint = "every line must be key=value; fix it or run: nsm settings reset"
		return res
	case err != nil:
		res.Status = SeverityError
		res.Message = fmt.Sprintf("cannot read settings file: %v", err)
		return res
	}

	if errs := s.Validate(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		res.Status = SeverityError
		res.Message = strings.Join(msgs, "; ")
		res.FixHint = "run: nsm settings set <key> <value>"
		return res
	}

	res.Status = SeverityPass
	res.Message = "settings file is valid"
	res.Details["unknown_keys"] = len(s.Extra)
	return res
}

// CanFix reports whether the last Run found no settings file.
func (c *SettingsFileCheck) CanFix() bool {
	return c.missing
}

// Fix writes the default settings file.
func (c *SettingsFileCheck) Fix() []FixResult {
	if !c.missing {
		return nil
	}
	if err := settings.Defaults().Save(c.path); err != nil {
		return []FixResult{{Path: c.path, Description: "writing default settings", Error: err}}
	}
	c.missing = false
	return []FixResult{{Path: c.path, Fixed: true, Description: "wrote default settings"}}
}

// SavesFolderCheck verifies the saves folder exists.
type SavesFolderCheck struct {
	settings *settings.Settings
}

var _ Check = (*SavesFolderCheck)(nil)

// NewSavesFolderCheck creates a saves folder check.
func NewSavesFolderCheck(s *settings.Settings) *SavesFolderCheck {
	return &SavesFolderCheck{settings: s}
}

// Name returns the unique identifier for this check.
func (c *SavesFolderCheck) Name() string { return "saves-folder" }

// Category returns the grouping for this check.
func (c *SavesFolderCheck) Category() string { return "saves" }

// Run checks the configured saves folder.
func (c *SavesFolderCheck) Run(context.Context) *CheckResult {
	dir := c.settings.SavesFolder
	res := &CheckResult{Name: c.Name(), Category: c.Category(), Details: map[string]any{"path": dir}}

	if err := settings.RequireDir(dir); err != nil {
		res.Status = SeverityError
		res.Message = fmt.Sprintf("saves folder unusable: %v", err)
		res.FixHint = "run: nsm settings set " + settings.KeySavesFolder + " <folder>"
		return res
	}
	res.Status = SeverityPass
	res.Message = "saves folder found"
	return res
}

// SaveSlotCheck verifies the active save slot exists.
type SaveSlotCheck struct {
	settings *settings.Settings
}

var _ Check = (*SaveSlotCheck)(nil)

// NewSaveSlotCheck creates a save slot check.
func NewSaveSlotCheck(s *settings.Settings) *SaveSlotCheck {
	return &SaveSlotCheck{settings: s}
}

// Name returns the unique identifier for this check.
func (c *SaveSlotCheck) Name() string { return "save-slot" }

// Category returns the grouping for this check.
func (c *SaveSlotCheck) Category() string { return "saves" }

// Run checks for save00.
func (c *SaveSlotCheck) Run(context.Context) *CheckResult {
	slot := c.settings.SaveSlot()
	res := &CheckResult{Name: c.Name(), Category: c.Category(), Details: map[string]any{"path": slot}}

	n, size, err := treeStats(slot)
	if err != nil {
		res.Status = SeverityWarning
		res.Message = "no active save slot; there is nothing to back up yet"
		res.FixHint = "start a new game in Noita once to create save00"
		return res
	}
	res.Status = SeverityPass
	res.Message = fmt.Sprintf("save slot has %d files (%s)", n, humanize.IBytes(size))
	res.Details["files"] = n
	res.Details["bytes"] = size
	return res
}

// TempBackupCheck looks for a snapshot left behind by an interrupted or
// rolled back restore.
type TempBackupCheck struct {
	settings *settings.Settings
}

var _ Check = (*TempBackupCheck)(nil)

// NewTempBackupCheck creates a leftover snapshot check.
func NewTempBackupCheck(s *settings.Settings) *TempBackupCheck {
	return &TempBackupCheck{settings: s}
}

// Name returns the unique identifier for this check.
func (c *TempBackupCheck) Name() string { return "temp-backup" }

// Category returns the grouping for this check.
func (c *TempBackupCheck) Category() string { return "saves" }

// Run checks for <prefix>TEMP.
func (c *TempBackupCheck) Run(context.Context) *CheckResult {
	name := backup.TempName(c.settings.BackupPrefix)
	path := filepath.Join(c.settings.SavesFolder, name)
	res := &CheckResult{Name: c.Name(), Category: c.Category(), Details: map[string]any{"path": path}}

	if _, err := os.Lstat(path); err != nil {
		res.Status = SeverityPass
		res.Message = "no leftover restore snapshot"
		return res
	}
	res.Status = SeverityWarning
	res.Message = "a previous restore left its snapshot behind; restores are refused until it is removed"
	res.FixHint = "check that save00 is intact, then run: nsm backup delete " + name
	return res
}

// BackupsCheck counts the backups in the saves folder.
type BackupsCheck struct {
	settings *settings.Settings
}

var _ Check = (*BackupsCheck)(nil)

// NewBackupsCheck creates a backup inventory check.
func NewBackupsCheck(s *settings.Settings) *BackupsCheck {
	return &BackupsCheck{settings: s}
}

// Name returns the unique identifier for this check.
func (c *BackupsCheck) Name() string { return "backups" }

// Category returns the grouping for this check.
func (c *BackupsCheck) Category() string { return "saves" }

// Run lists the backups.
func (c *BackupsCheck) Run(context.Context) *CheckResult {
	res := &CheckResult{Name: c.Name(), Category: c.Category()}

	names, err := backup.List(c.settings.SavesFolder, c.settings.BackupPrefix)
	if err != nil {
		res.Status = SeverityInfo
		res.Message = "backups not listed: saves folder unavailable"
		return res
	}
	names = slices.DeleteFunc(names, func(n string) bool {
		return n == backup.TempName(c.settings.BackupPrefix)
	})

	res.Status = SeverityInfo
	res.Message = fmt.Sprintf("%d backup(s) found", len(names))
	res.Details = map[string]any{"count": len(names)}
	if len(names) > 0 {
		res.Details["latest_by_name"] = names[len(names)-1]
	}
	return res
}

// ExecutableCheck verifies a configured executable exists.
type ExecutableCheck struct {
	key  string
	path string
}

var _ Check = (*ExecutableCheck)(nil)

// NewExecutableCheck creates a check of the executable stored under key.
func NewExecutableCheck(key, path string) *ExecutableCheck {
	return &ExecutableCheck{key: key, path: path}
}

// Name returns the unique identifier for this check.
func (c *ExecutableCheck) Name() string {
	return "executable:" + c.key
}

// Category returns the grouping for this check.
func (c *ExecutableCheck) Category() string { return "launch" }

// Run stats the executable.
func (c *ExecutableCheck) Run(context.Context) *CheckResult {
	res := &CheckResult{Name: c.Name(), Category: c.Category(), Details: map[string]any{"path": c.path}}

	if err := settings.RequireFile(c.path); err != nil {
		// launching is optional, so this never blocks backups
		res.Status = SeverityWarning
		res.Message = "executable not found; launching it will fail"
		res.FixHint = "run: nsm settings set " + c.key + " <path>"
		return res
	}
	res.Status = SeverityPass
	res.Message = "executable found"
	return res
}

// ProcessLister returns the names of running processes.
type ProcessLister func(ctx context.Context) ([]string, error)

// GameProcessCheck warns when the game is running, since it rewrites the
// save slot while it runs and on exit.
type GameProcessCheck struct {
	names []string
	list  ProcessLister
}

var _ Check = (*GameProcessCheck)(nil)

// NewGameProcessCheck creates a running-game check. gameExe adds the
// configured executable's name to the names looked for.
func NewGameProcessCheck(gameExe string) *GameProcessCheck {
	names := []string{"noita.exe", "noita", "noita_dev.exe"}
	if base := filepath.Base(filepath.FromSlash(gameExe)); gameExe != "" && !slices.Contains(names, strings.ToLower(base)) {
		names = append(names, strings.ToLower(base))
	}
	return &GameProcessCheck{names: names, list: runningProcesses}
}

// WithLister replaces the process source.
func (c *GameProcessCheck) WithLister(l ProcessLister) *GameProcessCheck {
	c.list = l
	return c
}

// Name returns the unique identifier for this check.
func (c *GameProcessCheck) Name() string { return "game-running" }

// Category returns the grouping for this check.
func (c *GameProcessCheck) Category() string { return "system" }

// Run scans the process table.
func (c *GameProcessCheck) Run(ctx context.Context) *CheckResult {
	res := &CheckResult{Name: c.Name(), Category: c.Category()}

	procs, err := c.list(ctx)
	if err != nil {
		res.Status = SeverityInfo
		res.Message = fmt.Sprintf("could not list processes: %v", err)
		return res
	}

	for _, p := range procs {
		if slices.Contains(c.names, strings.ToLower(p)) {
			res.Status = SeverityWarning
			res.Message = fmt.Sprintf("%s is running; it may overwrite save00 after a restore", p)
			res.FixHint = "quit the game before creating or restoring backups"
			res.Details = map[string]any{"process": p}
			return res
		}
	}
	res.Status = SeverityPass
	res.Message = "game is not running"
	return res
}

func runningProcesses(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing processes")
	}
	names := make([]string, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			// processes exit while we iterate
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// FreeSpaceFunc returns the free bytes on the filesystem holding path.
type FreeSpaceFunc func(ctx context.Context, path string) (uint64, error)

// DiskSpaceCheck compares free space in the saves folder against the size
// of the save slot. A backup needs one slot's worth of space; a restore
// needs a second one for the snapshot.
type DiskSpaceCheck struct {
	settings *settings.Settings
	free     FreeSpaceFunc
}

var _ Check = (*DiskSpaceCheck)(nil)

// NewDiskSpaceCheck creates a free space check.
func NewDiskSpaceCheck(s *settings.Settings) *DiskSpaceCheck {
	return &DiskSpaceCheck{settings: s, free: freeSpace}
}

// WithFreeSpace replaces the free space source.
func (c *DiskSpaceCheck) WithFreeSpace(f FreeSpaceFunc) *DiskSpaceCheck {
	c.free = f
	return c
}

// Name returns the unique identifier for this check.
func (c *DiskSpaceCheck) Name() string { return "disk-space" }

// Category returns the grouping for this check.
func (c *DiskSpaceCheck) Category() string { return "system" }

// Run measures the slot and the free space.
func (c *DiskSpaceCheck) Run(ctx context.Context) *CheckResult {
	res := &CheckResult{Name: c.Name(), Category: c.Category()}

	_, need, err := treeStats(c.settings.SaveSlot())
	if err != nil {
		res.Status = SeverityInfo
		res.Message = "no save slot to measure"
		return res
	}
	free, err := c.free(ctx, c.settings.SavesFolder)
	if err != nil {
		res.Status = SeverityInfo
		res.Message = fmt.Sprintf("could not read free space: %v", err)
		return res
	}

	res.Details = map[string]any{"free_bytes": free, "slot_bytes": need}
	switch {
	case free < need:
		res.Status = SeverityError
		res.Message = fmt.Sprintf("only %s free, a backup needs %s", humanize.IBytes(free), humanize.IBytes(need))
		res.FixHint = "delete old backups: nsm backup delete <name>"
	case free < 2*need:
		res.Status = SeverityWarning
		res.Message = fmt.Sprintf("only %s free, a restore needs %s", humanize.IBytes(free), humanize.IBytes(2*need))
		res.FixHint = "delete old backups: nsm backup delete <name>"
	default:
		res.Status = SeverityPass
		res.Message = fmt.Sprintf("%s free", humanize.IBytes(free))
	}
	return res
}

func freeSpace(ctx context.Context, path string) (uint64, error) {
	u, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, errors.Wrapf(err, "disk usage of %s", path)
	}
	return u.Free, nil
}

// treeStats returns the file count and total size under root.
func treeStats(root string) (files int, size uint64, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files++
		size += uint64(info.Size())
		return nil
	})
	return files, size, err
}
