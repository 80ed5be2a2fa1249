package backup

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/paths"
	"github.com/thoreinstein/nsm/internal/settings"
)

// List returns the names of every direct child directory of root that
// starts with prefix, sorted lexicographically ascending.
//
// The order is chronological only among backups that share a label:
// "BACKUP_b_2023..." sorts after "BACKUP_a_2024...".
func List(root, prefix string) ([]string, error) {
	if err := checkPrefix(prefix); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(errors.Classify(err), "reading saves folder %s", root)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.Name() == paths.SaveSlotName || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		if !isDir(filepath.Join(root, entry.Name()), entry) {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)
	return names, nil
}

// Resolve returns the path of the backup called name inside root. It
// rejects the save slot, names without the prefix and names that are not a
// single path element. An unsafe prefix rejects every name.
func Resolve(root, prefix, name string) (string, error) {
	if err := checkPrefix(prefix); err != nil {
		return "", errors.Mark(err, ErrInvalidName)
	}
	switch {
	case name == "", name == ".", name == "..":
		return "", errors.Wrapf(ErrInvalidName, "%q", name)
	case strings.ContainsAny(name, `/\`) || filepath.Base(name) != name:
		return "", errors.Wrapf(ErrInvalidName, "%q is not a direct child of the saves folder", name)
	case name == paths.SaveSlotName:
		return "", errors.Wrapf(ErrInvalidName, "%q is the save slot", name)
	case !strings.HasPrefix(name, prefix):
		return "", errors.Wrapf(ErrInvalidName, "%q does not start with %q", name, prefix)
	}
	return filepath.Join(root, name), nil
}

func checkPrefix(prefix string) error {
	if err := settings.ValidatePrefix(prefix); err != nil {
		return errors.Wrapf(err, "backup prefix %q", prefix)
	}
	return nil
}

// Delete removes the backup directory called name. No snapshot is taken.
func Delete(root, prefix, name string) error {
	path, err := Resolve(root, prefix, name)
	if err != nil {
		return err
	}

	info, err := os.Lstat(path)
	if err != nil {
		return errors.Wrapf(errors.Classify(err), "backup %s", name)
	}
	if !info.IsDir() {
		return errors.Wrapf(errors.ErrPathNotFound, "backup %s is not a directory", name)
	}

	if err := os.RemoveAll(path); err != nil {
		return errors.Wrapf(errors.Classify(err), "deleting backup %s", name)
	}
	return nil
}

func exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, errors.Classify(err)
	}
}

func isDir(path string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
