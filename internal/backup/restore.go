package backup

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/thoreinstein/nsm/internal/copier"
	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/paths"
)

// Phase is a state of a single restore attempt.
type Phase int

// Restore phases.
const (
	PhaseIdle Phase = iota
	PhaseSnapshotting
	PhaseReplacing
	PhaseRollingBack
	PhaseDone
	PhaseFatal
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSnapshotting:
		return "snapshotting"
	case PhaseReplacing:
		return "replacing"
	case PhaseRollingBack:
		return "rolling_back"
	case PhaseDone:
		return "done"
	case PhaseFatal:
		return "fatal"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// RestoreError reports a restore that failed after the save slot was touched.
type RestoreError struct {
	// Backup is the name of the backup that was being restored.
	Backup string

	// TempPath is the snapshot of the save slot taken before replacing it.
	// Empty when there was no save slot to snapshot.
	TempPath string

	// Rolled is true when the save slot was put back to its previous state.
	Rolled bool

	// Cause is the failure that triggered the rollback.
	Cause error

	// RollbackErr is the failure of the rollback itself, when Rolled is false.
	RollbackErr error
}

func (e *RestoreError) Error() string {
	if e.Rolled {
		return fmt.Sprintf("restoring %s failed, previous save put back: %v", e.Backup, e.Cause)
	}
	if e.TempPath == "" {
		return fmt.Sprintf("restoring %s failed and rollback failed (%v): %v; the save slot may be inconsistent",
			e.Backup, e.RollbackErr, e.Cause)
	}
	return fmt.Sprintf("restoring %s failed and rollback failed (%v): %v; the only complete copy of the save is %s",
		e.Backup, e.RollbackErr, e.Cause, e.TempPath)
}

func (e *RestoreError) Unwrap() error {
	return e.Cause
}

// Is marks a failed rollback as a fatal inconsistency.
func (e *RestoreError) Is(target error) bool {
	return !e.Rolled && target == errors.ErrFatalInconsistency
}

// Restorer runs restore attempts against one saves folder.
type Restorer struct {
	// Root is the saves folder.
	Root string

	// Prefix identifies backups inside Root.
	Prefix string

	// Copier defaults to copier.Engine.
	Copier TreeCopier

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Observer, if set, is called on every phase change.
	Observer func(Phase)

	// Progress, if set, receives copy progress for every phase.
	Progress func(Phase, copier.Progress)
}

type attempt struct {
	*Restorer
	log      *slog.Logger
	phase    Phase
	name     string
	slot     string
	temp     string
	snapshot bool
}

// Restore replaces the save slot with the backup called name.
//
// It returns nil on success. Failures before the save slot is removed are
// returned as ordinary errors and leave the slot untouched. Failures after
// are returned as *RestoreError.
func (r *Restorer) Restore(name string) error {
	backupPath, err := Resolve(r.Root, r.Prefix, name)
	if err != nil {
		return err
	}

	a := &attempt{
		Restorer: r,
		log:      r.logger().With("attempt", uuid.NewString(), "backup", name),
		name:     name,
		slot:     paths.SaveSlot(r.Root),
		temp:     filepath.Join(r.Root, TempName(r.Prefix)),
	}

	if err := a.preflight(backupPath); err != nil {
		a.log.Warn("restore refused", "error", err)
		return err
	}

	if err := a.takeSnapshot(); err != nil {
		a.transition(PhaseFatal)
		a.log.Error("snapshot failed, save slot untouched", "error", err)
		return err
	}

	if err := a.replace(backupPath); err != nil {
		a.log.Error("replace failed", "error", err)
		return a.rollback(err)
	}

	a.transition(PhaseDone)
	if a.snapshot {
		if err := os.RemoveAll(a.temp); err != nil {
			// The restore itself succeeded; doctor reports the leftover.
			a.log.Warn("removing snapshot failed", "path", a.temp, "error", err)
		}
	}
	a.log.Info("save restored", "slot", a.slot)
	return nil
}

func (r *Restorer) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Restorer) treeCopier() TreeCopier {
	if r.Copier != nil {
		return r.Copier
	}
	return copier.Engine{}
}

func (a *attempt) transition(to Phase) {
	a.log.Info("restore transition", "from", a.phase.String(), "to", to.String())
	a.phase = to
	if a.Observer != nil {
		a.Observer(to)
	}
}

func (a *attempt) copyTree(src, dst string) error {
	phase := a.phase
	return drain(a.treeCopier(), src, dst, func(p copier.Progress) {
		if a.Progress != nil {
			a.Progress(phase, p)
		}
	})
}

func (a *attempt) preflight(backupPath string) error {
	if a.name == TempName(a.Prefix) {
		return errors.Wrapf(ErrInvalidName, "%s is the restore snapshot; copy it by hand", a.name)
	}

	info, err := os.Stat(backupPath)
	if err != nil {
		return errors.Wrapf(errors.Classify(err), "backup %s", a.name)
	}
	if !info.IsDir() {
		return errors.Wrapf(errors.ErrPathNotFound, "backup %s is not a directory", a.name)
	}

	found, err := exists(a.temp)
	if err != nil {
		return errors.Wrapf(err, "checking %s", a.temp)
	}
	if found {
		return errors.WithHint(
			errors.Wrapf(ErrTempBackupExists, "%s", a.temp),
			"check that save00 is intact, then delete "+filepath.Base(a.temp))
	}
	return nil
}

func (a *attempt) takeSnapshot() error {
	a.transition(PhaseSnapshotting)

	found, err := exists(a.slot)
	if err != nil {
		return errors.Wrapf(err, "checking save slot %s", a.slot)
	}
	if !found {
		a.log.Info("no save slot to snapshot", "slot", a.slot)
		return nil
	}

	if err := a.copyTree(a.slot, a.temp); err != nil {
		// a half-written snapshot is not evidence of anything
		if rmErr := os.RemoveAll(a.temp); rmErr != nil {
			a.log.Warn("removing partial snapshot failed", "path", a.temp, "error", rmErr)
		}
		return errors.Wrap(err, "snapshotting save slot")
	}
	a.snapshot = true
	return nil
}

func (a *attempt) replace(backupPath string) error {
	a.transition(PhaseReplacing)

	if err := os.RemoveAll(a.slot); err != nil {
		return errors.Wrapf(errors.Classify(err), "removing save slot %s", a.slot)
	}
	if err := a.copyTree(backupPath, a.slot); err != nil {
		return errors.Wrapf(err, "copying %s into save slot", a.name)
	}
	return nil
}

func (a *attempt) rollback(cause error) error {
	a.transition(PhaseRollingBack)

	rerr := &RestoreError{Backup: a.name, Cause: cause}
	if a.snapshot {
		rerr.TempPath = a.temp
	}

	if err := os.RemoveAll(a.slot); err != nil {
		return a.fatal(rerr, errors.Wrapf(errors.Classify(err), "clearing save slot %s", a.slot))
	}

	if a.snapshot {
		if err := a.copyTree(a.temp, a.slot); err != nil {
			return a.fatal(rerr, errors.Wrap(err, "copying snapshot back"))
		}
	}

	rerr.Rolled = true
	a.transition(PhaseDone)
	a.log.Warn("restore rolled back", "snapshot", rerr.TempPath)
	return rerr
}

func (a *attempt) fatal(rerr *RestoreError, err error) error {
	rerr.RollbackErr = err
	a.transition(PhaseFatal)
	a.log.Error("rollback failed, save slot may be inconsistent",
		"snapshot", rerr.TempPath, "cause", rerr.Cause, "error", err)
	return rerr
}
