package backup

import (
	"strings"
	"time"

	"github.com/thoreinstein/nsm/internal/errors"
)

// NameBackup returns "<prefix><label>_<YYYYMMDDHHMMSS>" with now rendered
// in local time. Callers treat an empty label as a cancellation and never
// call NameBackup with one.
func NameBackup(prefix, label string, now time.Time) string {
	return prefix + label + "_" + now.Local().Format(TimestampLayout)
}

// TempName returns the reserved name of the restore snapshot.
func TempName(prefix string) string {
	return prefix + TempLabel
}

// ValidateLabel rejects labels that would escape the saves folder or could
// not be typed back into a menu.
func ValidateLabel(label string) error {
	switch {
	case label == "":
		return errors.ErrUserCancelled
	case strings.ContainsAny(label, `/\`):
		return errors.Wrapf(ErrInvalidLabel, "%q contains a path separator", label)
	case strings.Contains(label, ".."):
		return errors.Wrapf(ErrInvalidLabel, "%q contains '..'", label)
	case strings.ContainsAny(label, "\x00\r\n\t"):
		return errors.Wrapf(ErrInvalidLabel, "%q contains control characters", label)
	}
	return nil
}

// ParseName splits a backup name into its label and timestamp. ok is false
// for names that do not follow the NameBackup layout, such as the restore
// snapshot.
func ParseName(prefix, name string) (label string, created time.Time, ok bool) {
	rest, found := strings.CutPrefix(name, prefix)
	if !found {
		return "", time.Time{}, false
	}
	i := strings.LastIndexByte(rest, '_')
	if i < 0 || len(rest)-i-1 != len(TimestampLayout) {
		return "", time.Time{}, false
	}
	ts, err := time.ParseInLocation(TimestampLayout, rest[i+1:], time.Local)
	if err != nil {
		return "", time.Time{}, false
	}
	return rest[:i], ts, true
}
