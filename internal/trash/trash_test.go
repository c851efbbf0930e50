package trash

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/AshwinHegde/obsidian-mcp/internal/apperr"
)

func TestArchive(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "board.canvas"), []byte(`{"nodes":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	entry, err := Archive(root, "", "board.canvas", "cleanup")
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}

	if matched, _ := regexp.MatchString(`^board_\d{8}T\d{6}\.canvas$`, entry); !matched {
		t.Errorf("entry name %q does not match board_<timestamp>.canvas", entry)
	}
	if _, err := os.Stat(filepath.Join(root, "board.canvas")); !os.IsNotExist(err) {
		t.Error("original still exists")
	}

	moved := filepath.Join(root, DefaultDir, entry)
	data, err := os.ReadFile(moved)
	if err != nil || string(data) != `{"nodes":[]}` {
		t.Errorf("moved content = %q, err = %v", data, err)
	}

	var meta Meta
	raw, err := os.ReadFile(moved + metaSuffix)
	if err != nil {
		t.Fatalf("sidecar: %v", err)
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		t.Fatalf("sidecar json: %v", err)
	}
	if meta.OriginalPath != "board.canvas" {
		t.Errorf("originalPath = %q", meta.OriginalPath)
	}
	if meta.Reason != "cleanup" {
		t.Errorf("reason = %q", meta.Reason)
	}
	if meta.DeletedAt == "" {
		t.Error("deletedAt empty")
	}
}

func TestArchiveNestedPathKeepsRelativeOriginal(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "projects", "a.md")
	_ = os.MkdirAll(filepath.Dir(nested), 0o755)
	_ = os.WriteFile(nested, []byte("x"), 0o644)

	entry, err := Archive(root, "", "projects/a.md", "")
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	raw, _ := os.ReadFile(filepath.Join(root, DefaultDir, entry+metaSuffix))
	var meta Meta
	_ = json.Unmarshal(raw, &meta)
	if meta.OriginalPath != "projects/a.md" {
		t.Errorf("originalPath = %q", meta.OriginalPath)
	}
	if meta.Reason != "" {
		t.Errorf("reason should be omitted, got %q", meta.Reason)
	}
}

func TestArchiveCollision(t *testing.T) {
	root := t.TempDir()
	_ = os.WriteFile(filepath.Join(root, "a.md"), []byte("1"), 0o644)
	e1, err := Archive(root, "", "a.md", "")
	if err != nil {
		t.Fatal(err)
	}
	_ = os.WriteFile(filepath.Join(root, "a.md"), []byte("2"), 0o644)
	e2, err := Archive(root, "", "a.md", "")
	if err != nil {
		t.Fatal(err)
	}
	if e1 == e2 {
		t.Errorf("colliding entry names: %q", e1)
	}
}

func TestArchiveMissing(t *testing.T) {
	root := t.TempDir()
	_, err := Archive(root, "", "ghost.md", "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestArchiveEscapeRejected(t *testing.T) {
	root := t.TempDir()
	_, err := Archive(root, "", "../outside.md", "")
	if !errors.Is(err, apperr.ErrPathEscape) {
		t.Errorf("err = %v, want ErrPathEscape", err)
	}
}

func TestPurge(t *testing.T) {
	root := t.TempDir()
	_ = os.WriteFile(filepath.Join(root, "gone.md"), []byte("x"), 0o644)

	if err := Purge(root, "gone.md"); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "gone.md")); !os.IsNotExist(err) {
		t.Error("file still exists")
	}
	if entries, _ := os.ReadDir(filepath.Join(root, DefaultDir)); len(entries) != 0 {
		t.Errorf("purge left trash artifacts: %v", entries)
	}

	if err := Purge(root, "gone.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second purge err = %v, want ErrNotFound", err)
	}
}
