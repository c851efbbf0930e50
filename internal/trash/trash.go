// Package trash implements the soft-delete protocol: files move into a
// vault-local trash directory with a timestamped name and a metadata
// sidecar instead of being unlinked.
package trash

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AshwinHegde/obsidian-mcp/internal/apperr"
	"github.com/AshwinHegde/obsidian-mcp/internal/pathguard"
)

// DefaultDir is the trash directory name inside each vault root.
const DefaultDir = ".trash"

const metaSuffix = ".meta.json"

// Meta is the sidecar record written next to each trashed file.
type Meta struct {
	OriginalPath string `json:"originalPath"`
	DeletedAt    string `json:"deletedAt"`
	Reason       string `json:"reason,omitempty"`
}

// Archive moves the file at rel (relative to root) into the vault's
// trash directory and writes its metadata sidecar. It returns the trash
// entry name. If either half fails the other is undone, so no
// half-trashed artifact is ever left behind.
func Archive(root, trashDir, rel, reason string) (string, error) {
	if trashDir == "" {
		trashDir = DefaultDir
	}
	abs, err := pathguard.Resolve(root, rel)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", rel, apperr.ErrNotFound)
		}
		return "", fmt.Errorf("trash: stat %s: %w", rel, err)
	}

	dir := filepath.Join(root, trashDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("trash: mkdir: %w", err)
	}

	entry := entryName(dir, filepath.Base(abs))
	dst := filepath.Join(dir, entry)
	if err := os.Rename(abs, dst); err != nil {
		return "", fmt.Errorf("trash: move %s: %w", rel, err)
	}

	meta := Meta{
		OriginalPath: filepath.ToSlash(rel),
		DeletedAt:    time.Now().UTC().Format(time.RFC3339),
		Reason:       reason,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err == nil {
		err = os.WriteFile(dst+metaSuffix, data, 0o644)
	}
	if err != nil {
		// Undo the move rather than leave a trash entry with no record.
		if undoErr := os.Rename(dst, abs); undoErr != nil {
			return "", fmt.Errorf("trash: sidecar failed (%v) and restore failed: %w", err, undoErr)
		}
		return "", fmt.Errorf("trash: write sidecar for %s: %w", rel, err)
	}

	return entry, nil
}

// Purge permanently removes the file at rel. No trace is retained.
func Purge(root, rel string) error {
	abs, err := pathguard.Resolve(root, rel)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", rel, apperr.ErrNotFound)
		}
		return fmt.Errorf("trash: purge %s: %w", rel, err)
	}
	return nil
}

// entryName builds a collision-resistant trash name from the original
// base name and a filesystem-safe timestamp: "board_20250101T120000.canvas".
func entryName(dir, base string) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	ts := time.Now().UTC().Format("20060102T150405")
	name := fmt.Sprintf("%s_%s%s", stem, ts, ext)
	if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
		name = fmt.Sprintf("%s_%s-%s%s", stem, ts, uuid.New().String()[:8], ext)
	}
	return name
}
