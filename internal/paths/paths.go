package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName names the per-user directories nsm creates.
const AppName = "nsm"

// Environment overrides for the per-user directories.
const (
	EnvConfigDir = "NSM_CONFIG_DIR"
	EnvStateDir  = "NSM_STATE_DIR"
)

// File names inside the per-user directories.
const (
	SettingsFileName = "variables.txt"
	LogFileName      = "noita_save_manager.log"
	ConfigFileName   = "config.yaml"
)

// Game layout.
const (
	// SaveSlotName is the active save directory inside the saves folder.
	SaveSlotName = "save00"

	// DefaultGameExe is where Steam installs Noita on Windows.
	DefaultGameExe = "C:/Program Files (x86)/Steam/steamapps/common/Noita/noita.exe"

	proxyExeName = "NoitaMPProxy.exe"
)

// ErrHomeDirNotFound indicates the user's home directory could not be determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm (0700) is used.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// Home returns the user's home directory, or "" if it cannot be determined.
// Use ResolveHome for proper error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigDir returns the nsm configuration directory.
// $NSM_CONFIG_DIR wins; otherwise <XDG_CONFIG_HOME>/nsm.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.ConfigHome, AppName)
}

// StateDir returns the directory holding the diagnostic log.
// $NSM_STATE_DIR wins; otherwise <XDG_STATE_HOME>/nsm.
func StateDir() string {
	if dir := os.Getenv(EnvStateDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.StateHome, AppName)
}

// SettingsFile returns the default location of the key=value settings file.
func SettingsFile() string {
	return filepath.Join(ConfigDir(), SettingsFileName)
}

// LogFile returns the default location of the append-only diagnostic log.
func LogFile() string {
	return filepath.Join(StateDir(), LogFileName)
}

// DefaultSavesFolder returns where Noita keeps its saves on Windows:
// <home>/AppData/LocalLow/Nolla_Games_Noita.
func DefaultSavesFolder() string {
	return filepath.ToSlash(filepath.Join(Home(), "AppData", "LocalLow", "Nolla_Games_Noita"))
}

// DefaultProxyExe returns the default location of the multiplayer proxy.
func DefaultProxyExe() string {
	return DefaultSavesFolder() + "/" + proxyExeName
}

// SaveSlot returns the active save directory inside savesFolder.
func SaveSlot(savesFolder string) string {
	return filepath.Join(savesFolder, SaveSlotName)
}

// CleanInput normalizes a path typed or dragged into a terminal: it trims
// whitespace and one pair of surrounding quotes, then expands a leading ~.
func CleanInput(p string) string {
	p = strings.TrimSpace(p)
	if len(p) >= 2 {
		if (p[0] == '"' && p[len(p)-1] == '"') || (p[0] == '\'' && p[len(p)-1] == '\'') {
			p = p[1 : len(p)-1]
		}
	}
	return ExpandHome(p)
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home := Home()
	if home == "" {
		return p
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}
