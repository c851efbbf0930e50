package safefile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AshwinHegde/obsidian-mcp/internal/apperr"
)

func testMutator(t *testing.T) *Mutator {
	t.Helper()
	return New(nil, 50*time.Millisecond)
}

func backups(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*"+backupSuffix))
	if err != nil {
		t.Fatal(err)
	}
	return matches
}

func TestCreate(t *testing.T) {
	m := testMutator(t)
	dir := t.TempDir()
	target := filepath.Join(dir, "sub", "daily.md")

	if err := m.Create(target, []byte("# Today")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil || string(got) != "# Today" {
		t.Errorf("content = %q, err = %v", got, err)
	}

	err = m.Create(target, []byte("again"))
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("second create err = %v, want ErrAlreadyExists", err)
	}
}

func TestEditCommitsAndRemovesBackup(t *testing.T) {
	m := testMutator(t)
	dir := t.TempDir()
	target := filepath.Join(dir, "note.md")
	_ = os.WriteFile(target, []byte("old"), 0o644)

	err := m.Edit(target, func(cur []byte) ([]byte, error) {
		return append(cur, []byte(" new")...), nil
	})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	got, _ := os.ReadFile(target)
	if string(got) != "old new" {
		t.Errorf("content = %q", got)
	}
	if b := backups(t, dir); len(b) != 0 {
		t.Errorf("leftover backups: %v", b)
	}
}

func TestEditMissingTarget(t *testing.T) {
	m := testMutator(t)
	err := m.Edit(filepath.Join(t.TempDir(), "nope.md"), func(b []byte) ([]byte, error) { return b, nil })
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestEditTransformFailureHasNoSideEffects(t *testing.T) {
	m := testMutator(t)
	dir := t.TempDir()
	target := filepath.Join(dir, "note.md")
	_ = os.WriteFile(target, []byte("original"), 0o644)

	boom := errors.New("boom")
	err := m.Edit(target, func([]byte) ([]byte, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	got, _ := os.ReadFile(target)
	if string(got) != "original" {
		t.Errorf("content = %q", got)
	}
	if b := backups(t, dir); len(b) != 0 {
		t.Errorf("backups after transform failure: %v", b)
	}
}

func TestEditWriteFailureRollsBack(t *testing.T) {
	m := testMutator(t)
	dir := t.TempDir()
	target := filepath.Join(dir, "note.md")
	_ = os.WriteFile(target, []byte("precious bytes"), 0o644)

	// Simulate an I/O failure after a successful snapshot: corrupt the
	// target, then fail.
	m.write = func(abs string, content []byte) error {
		_ = os.WriteFile(abs, []byte("partial garbage"), 0o644)
		return fmt.Errorf("disk full")
	}

	err := m.Edit(target, func(cur []byte) ([]byte, error) {
		return []byte("replacement"), nil
	})
	if err == nil {
		t.Fatal("expected error")
	}
	var rb *apperr.RollbackError
	if errors.As(err, &rb) {
		t.Fatalf("rollback should have succeeded, got %v", err)
	}

	got, _ := os.ReadFile(target)
	if string(got) != "precious bytes" {
		t.Errorf("content after rollback = %q, want original", got)
	}
	if b := backups(t, dir); len(b) != 0 {
		t.Errorf("backups after rollback: %v", b)
	}
}

func TestRollbackFailurePreservesBackup(t *testing.T) {
	m := testMutator(t)
	dir := t.TempDir()
	target := filepath.Join(dir, "note.md")
	_ = os.WriteFile(target, []byte("data"), 0o644)

	// Fail the write, then make the restore rename fail too by removing
	// the backup out from under it.
	m.write = func(abs string, content []byte) error {
		for _, b := range backups(t, dir) {
			bad := b + ".moved"
			_ = os.Rename(b, bad)
			t.Cleanup(func() { _ = os.Remove(bad) })
		}
		return fmt.Errorf("disk full")
	}

	err := m.Edit(target, func(cur []byte) ([]byte, error) { return []byte("x"), nil })
	var rb *apperr.RollbackError
	if !errors.As(err, &rb) {
		t.Fatalf("err = %v, want RollbackError", err)
	}
	if rb.BackupPath == "" {
		t.Error("RollbackError must name the backup path")
	}
}

func TestDeleteRemovesTargetAndEventuallyBackup(t *testing.T) {
	m := testMutator(t)
	dir := t.TempDir()
	target := filepath.Join(dir, "note.md")
	_ = os.WriteFile(target, []byte("bye"), 0o644)

	if err := m.Delete(target); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Error("target still exists")
	}

	// Backup survives the grace window, then goes away.
	if b := backups(t, dir); len(b) != 1 {
		t.Fatalf("backups right after delete = %v, want 1", b)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(backups(t, dir)) == 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Errorf("backup not cleaned up: %v", backups(t, dir))
}

func TestDeleteMissingTarget(t *testing.T) {
	m := testMutator(t)
	err := m.Delete(filepath.Join(t.TempDir(), "nope.md"))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestIsArtifact(t *testing.T) {
	if !IsArtifact("note.md.20250101T000000-abcd1234.backup") {
		t.Error("backup name not detected")
	}
	if IsArtifact("note.md") {
		t.Error("plain note detected as artifact")
	}
}
