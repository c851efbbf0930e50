package pathguard

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/AshwinHegde/obsidian-mcp/internal/apperr"
)

func TestResolveInsideRoot(t *testing.T) {
	root := t.TempDir()
	cases := []string{
		"note.md",
		"folder/note.md",
		"a/b/../c.md",
		"",
		".",
	}
	for _, rel := range cases {
		abs, err := Resolve(root, rel)
		if err != nil {
			t.Errorf("Resolve(%q): %v", rel, err)
			continue
		}
		if abs != root && !filepath.IsAbs(abs) {
			t.Errorf("Resolve(%q) = %q, not absolute", rel, abs)
		}
	}
}

func TestResolveEscapeRejected(t *testing.T) {
	root := t.TempDir()
	cases := []string{
		"../outside.md",
		"../../etc/passwd",
		"folder/../../outside.md",
		"/etc/shadow",
	}
	for _, rel := range cases {
		_, err := Resolve(root, rel)
		if !errors.Is(err, apperr.ErrPathEscape) {
			t.Errorf("Resolve(%q) err = %v, want ErrPathEscape", rel, err)
		}
	}
}

func TestResolveSymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks not reliable on windows CI")
	}
	root := t.TempDir()
	outside := t.TempDir()
	link := filepath.Join(root, "sneaky")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlink: %v", err)
	}
	if _, err := Resolve(root, "sneaky/secret.md"); !errors.Is(err, apperr.ErrPathEscape) {
		t.Errorf("symlink escape err = %v, want ErrPathEscape", err)
	}
}

func TestResolveNonExistentTail(t *testing.T) {
	// Paths that do not exist yet must still resolve (create operations).
	root := t.TempDir()
	abs, err := Resolve(root, "new/deep/note.md")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if abs != filepath.Join(root, "new", "deep", "note.md") {
		t.Errorf("abs = %q", abs)
	}
}

func TestCheckFilename(t *testing.T) {
	for _, name := range []string{"note.md", "board.canvas", "a b.md", "x"} {
		if err := CheckFilename(name); err != nil {
			t.Errorf("CheckFilename(%q): %v", name, err)
		}
	}
	for _, name := range []string{"", ".", "..", "a/b.md", `a\b.md`, "../up.md"} {
		if err := CheckFilename(name); !errors.Is(err, apperr.ErrInvalidParams) {
			t.Errorf("CheckFilename(%q) err = %v, want ErrInvalidParams", name, err)
		}
	}
}

func TestEnsureExt(t *testing.T) {
	if got := EnsureExt("daily", ".md"); got != "daily.md" {
		t.Errorf("got %q", got)
	}
	if got := EnsureExt("daily.md", ".md"); got != "daily.md" {
		t.Errorf("got %q", got)
	}
	if got := EnsureExt("board", ".canvas"); got != "board.canvas" {
		t.Errorf("got %q", got)
	}
	if got := EnsureExt("Board.CANVAS", ".canvas"); got != "Board.CANVAS" {
		t.Errorf("got %q", got)
	}
	if got := EnsureExt("Daily.MD", ".md"); got != "Daily.MD" {
		t.Errorf("got %q", got)
	}
	if got := EnsureExt("archive.md.bak", ".md"); got != "archive.md.bak.md" {
		t.Errorf("got %q", got)
	}
}
