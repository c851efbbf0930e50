// Package pathguard resolves vault-relative paths and rejects anything
// that escapes the vault root: absolute inputs, traversal segments, and
// symlinks pointing outside the root.
package pathguard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AshwinHegde/obsidian-mcp/internal/apperr"
)

// Resolve joins rel against root and returns the normalized absolute path.
// It fails with apperr.ErrPathEscape when the result is not root itself or
// a descendant of root after cleaning and symlink resolution.
func Resolve(root, rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("absolute paths not allowed: %s: %w", rel, apperr.ErrPathEscape)
	}
	joined := filepath.Join(root, filepath.Clean(rel))
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", rel, err)
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("resolve root %s: %w", root, err)
	}
	if !within(root, abs) && !within(realRoot, abs) {
		return "", fmt.Errorf("%s: %w", rel, apperr.ErrPathEscape)
	}
	// A symlink inside the vault can still point outside it. Resolve the
	// deepest existing ancestor and re-check containment.
	real, err := resolveExisting(abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", rel, err)
	}
	if !within(realRoot, real) {
		return "", fmt.Errorf("%s: %w", rel, apperr.ErrPathEscape)
	}
	return abs, nil
}

// CheckFilename enforces the stricter rule for filename-only fields:
// non-empty and no path separators of either flavor.
func CheckFilename(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("filename is empty: %w", apperr.ErrInvalidParams)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("filename %q must not contain path separators: %w", name, apperr.ErrInvalidParams)
	}
	return nil
}

// EnsureExt appends ext to name unless it already carries it. The
// comparison ignores case so "Board.CANVAS" is left alone.
func EnsureExt(name, ext string) string {
	if strings.EqualFold(filepath.Ext(name), ext) {
		return name
	}
	return name + ext
}

func within(root, p string) bool {
	return p == root || strings.HasPrefix(p, root+string(os.PathSeparator))
}

// resolveExisting walks up from abs until EvalSymlinks succeeds, then
// re-joins the non-existent remainder onto the resolved prefix.
func resolveExisting(abs string) (string, error) {
	suffix := ""
	cur := abs
	for {
		real, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(real, suffix), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		suffix = filepath.Join(filepath.Base(cur), suffix)
		cur = parent
	}
}
