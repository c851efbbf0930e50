// Package safefile implements the backup-write-rollback protocol shared
// by note and canvas mutations: snapshot before mutating, restore the
// snapshot if the write fails, remove it once the write commits.
package safefile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AshwinHegde/obsidian-mcp/internal/apperr"
	"github.com/AshwinHegde/obsidian-mcp/internal/storage"
)

const backupSuffix = ".backup"

// IsArtifact reports whether name is a transient backup file. Walkers
// and the vault watcher use this to keep artifacts out of results.
func IsArtifact(name string) bool {
	return strings.HasSuffix(name, backupSuffix)
}

// Mutator performs guarded mutations on absolute file paths. Paths are
// expected to have passed the path guard already.
type Mutator struct {
	grace  time.Duration
	logger *slog.Logger

	// write is swappable so tests can inject write failures.
	write func(abs string, content []byte) error
}

// New creates a Mutator. grace is how long a delete's backup survives
// before the deferred cleanup removes it.
func New(logger *slog.Logger, grace time.Duration) *Mutator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mutator{
		grace:  grace,
		logger: logger,
		write:  storage.WriteFileAtomic,
	}
}

// Create writes a new file, creating parent directories. It fails with
// apperr.ErrAlreadyExists when the target is present; nothing exists
// yet to protect, so no snapshot is taken.
func (m *Mutator) Create(abs string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("safefile: mkdir: %w", err)
	}
	if _, err := os.Stat(abs); err == nil {
		return fmt.Errorf("%s: %w", abs, apperr.ErrAlreadyExists)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("safefile: stat: %w", err)
	}
	if err := m.write(abs, content); err != nil {
		return fmt.Errorf("safefile: create %s: %w", abs, err)
	}
	return nil
}

// Edit applies transform to the current file contents under backup
// protection. The transform runs before the snapshot is taken, so a
// transform failure has zero side effects.
func (m *Mutator) Edit(abs string, transform func([]byte) ([]byte, error)) error {
	cur, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", abs, apperr.ErrNotFound)
		}
		return fmt.Errorf("safefile: read %s: %w", abs, err)
	}

	next, err := transform(cur)
	if err != nil {
		return err
	}

	bak, err := m.snapshot(abs, cur)
	if err != nil {
		return err
	}

	if err := m.write(abs, next); err != nil {
		return m.restore(abs, bak, fmt.Errorf("safefile: write %s: %w", abs, err))
	}

	if err := os.Remove(bak); err != nil {
		m.logger.Warn("backup cleanup failed", slog.String("backup", bak), slog.String("error", err.Error()))
	}
	return nil
}

// Delete snapshots and unlinks the file. The backup is removed by a
// detached cleanup after the grace delay; its failure is logged only.
func (m *Mutator) Delete(abs string) error {
	cur, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", abs, apperr.ErrNotFound)
		}
		return fmt.Errorf("safefile: read %s: %w", abs, err)
	}

	bak, err := m.snapshot(abs, cur)
	if err != nil {
		return err
	}

	if err := os.Remove(abs); err != nil {
		return m.restore(abs, bak, fmt.Errorf("safefile: delete %s: %w", abs, err))
	}

	go m.cleanupBackup(bak)
	return nil
}

// snapshot copies content to a uniquely-named backup sibling of abs.
func (m *Mutator) snapshot(abs string, content []byte) (string, error) {
	ts := time.Now().UTC().Format("20060102T150405")
	bak := fmt.Sprintf("%s.%s-%s%s", abs, ts, uuid.New().String()[:8], backupSuffix)
	if err := os.WriteFile(bak, content, 0o644); err != nil {
		return "", fmt.Errorf("safefile: snapshot %s: %w", abs, err)
	}
	return bak, nil
}

// restore copies the backup back over the target. Rename removes the
// backup in the same step; if it fails the backup path is preserved and
// reported through RollbackError.
func (m *Mutator) restore(abs, bak string, cause error) error {
	if rbErr := os.Rename(bak, abs); rbErr != nil {
		return &apperr.RollbackError{BackupPath: bak, MutateErr: cause, RestoreErr: rbErr}
	}
	return cause
}

func (m *Mutator) cleanupBackup(bak string) {
	time.Sleep(m.grace)
	if err := os.Remove(bak); err != nil && !os.IsNotExist(err) {
		m.logger.Warn("delayed backup cleanup failed", slog.String("backup", bak), slog.String("error", err.Error()))
	}
}
