package backup

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/thoreinstein/nsm/internal/copier"
	"github.com/thoreinstein/nsm/internal/errors"
	"github.com/thoreinstein/nsm/internal/settings"
)

// Manager performs backup operations against the folders named in a
// settings value.
type Manager struct {
	settings *settings.Settings
	copier   TreeCopier
	logger   *slog.Logger
	progress func(copier.Progress)
	observer func(Phase)
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithCopier replaces the copy engine, mainly for fault injection in tests.
func WithCopier(c TreeCopier) Option {
	return func(m *Manager) {
		if c != nil {
			m.copier = c
		}
	}
}

// WithLogger sets the logger transitions and errors are written to.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithProgress sets the sink for copy progress events.
func WithProgress(fn func(copier.Progress)) Option {
	return func(m *Manager) {
		m.progress = fn
	}
}

// WithObserver sets the callback for restore phase changes.
func WithObserver(fn func(Phase)) Option {
	return func(m *Manager) {
		m.observer = fn
	}
}

// WithClock sets the time source used to name backups.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a Manager for s. The Manager keeps a reference to s, so
// later changes to the settings apply to later operations.
func NewManager(s *settings.Settings, opts ...Option) *Manager {
	m := &Manager{
		settings: s,
		copier:   copier.Engine{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Root returns the saves folder.
func (m *Manager) Root() string {
	return m.settings.SavesFolder
}

// Prefix returns the backup name prefix.
func (m *Manager) Prefix() string {
	return m.settings.BackupPrefix
}

// Create copies the save slot into a new backup labelled label. An empty
// label cancels without touching the filesystem.
func (m *Manager) Create(label string) Outcome {
	label = strings.TrimSpace(label)
	if label == "" {
		m.logger.Info("backup cancelled, empty label")
		return Outcome{Status: StatusCancelled, Err: errors.ErrUserCancelled}
	}
	if err := ValidateLabel(label); err != nil {
		m.logger.Warn("backup refused", "label", label, "error", err)
		return outcomeFromErr("", "", err)
	}

	name := NameBackup(m.Prefix(), label, m.now())
	dst, err := Resolve(m.Root(), m.Prefix(), name)
	if err != nil {
		m.logger.Warn("backup refused", "backup", name, "error", err)
		return outcomeFromErr(name, "", err)
	}
	slot := m.settings.SaveSlot()
	log := m.logger.With("backup", name)

	found, err := exists(dst)
	if err == nil && found {
		err = errors.Wrapf(errors.ErrAlreadyExists, "backup %s", name)
	}
	if err != nil {
		log.Error("backup failed", "error", err)
		return outcomeFromErr(name, dst, err)
	}

	log.Info("creating backup", "from", slot)
	if err := drain(m.copier, slot, dst, m.progress); err != nil {
		// dst was checked absent above, so anything there is ours
		if rmErr := os.RemoveAll(dst); rmErr != nil {
			log.Warn("removing partial backup failed", "path", dst, "error", rmErr)
		}
		log.Error("backup failed", "error", err)
		return outcomeFromErr(name, dst, errors.Wrapf(err, "creating backup %s", name))
	}

	log.Info("backup created", "path", dst)
	return Outcome{Status: StatusDone, Name: name, Path: dst}
}

// List returns the backups in the saves folder, sorted lexicographically.
// The restore snapshot is included when present.
func (m *Manager) List() ([]string, error) {
	names, err := List(m.Root(), m.Prefix())
	if err != nil {
		m.logger.Error("listing backups failed", "error", err)
		return nil, err
	}
	return names, nil
}

// Restore replaces the save slot with the backup called name.
func (m *Manager) Restore(name string) Outcome {
	r := &Restorer{
		Root:     m.Root(),
		Prefix:   m.Prefix(),
		Copier:   m.copier,
		Logger:   m.logger,
		Observer: m.observer,
	}
	if m.progress != nil {
		r.Progress = func(_ Phase, p copier.Progress) { m.progress(p) }
	}

	// a restore only succeeds when no snapshot was lying around, so a slot
	// present now means a snapshot will be taken
	hadSlot, _ := exists(m.settings.SaveSlot())

	path := filepath.Join(m.Root(), name)
	out := outcomeFromErr(name, path, r.Restore(name))
	if out.OK() && hadSlot {
		left, err := exists(m.TempPath())
		out.TempRemoved = err == nil && !left
	}
	return out
}

// Delete removes the backup called name. Confirmation is the caller's job.
func (m *Manager) Delete(name string) Outcome {
	path := filepath.Join(m.Root(), name)
	if err := Delete(m.Root(), m.Prefix(), name); err != nil {
		m.logger.Error("delete failed", "backup", name, "error", err)
		return outcomeFromErr(name, path, err)
	}
	m.logger.Info("backup deleted", "backup", name, "path", path)
	return Outcome{Status: StatusDone, Name: name, Path: path}
}

// TempPath returns where a restore snapshot would live.
func (m *Manager) TempPath() string {
	return filepath.Join(m.Root(), TempName(m.Prefix()))
}
