// Package watcher observes a vault directory tree and reports note and
// canvas file changes.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/AshwinHegde/obsidian-mcp/internal/safefile"
	"github.com/AshwinHegde/obsidian-mcp/internal/vault"
)

// EventCallback is called for each observed file change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the vault root and processes file
// change events until ctx is cancelled. Only .md and .canvas files are
// reported; hidden entries (the trash directory included) and backup
// artifacts are ignored.
//
// New directories created at runtime are automatically added to the
// watch list. fsnotify fires Rename on the old path only; the new path
// arrives as a separate Create event in its watched directory, so a
// rename surfaces as a delete plus a create.
func Watch(ctx context.Context, v *vault.Vault, logger *slog.Logger, cb EventCallback) error {
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, v.Root); err != nil {
		return err
	}

	logger.Info("watcher: started",
		slog.String("vault", v.Name),
		slog.String("root", v.Root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped", slog.String("vault", v.Name))
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name
			if hidden(v.Root, absPath) {
				continue
			}

			// New directories need to be added to the watcher, and any
			// files already inside them reported.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					reportNewDir(v.Root, absPath, logger, cb)
					continue
				}
			}

			if !watched(absPath) {
				continue
			}

			rel, relErr := filepath.Rel(v.Root, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			var kind string
			switch {
			case ev.Op&fsnotify.Create != 0:
				kind = "created"
			case ev.Op&fsnotify.Write != 0:
				kind = "updated"
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				kind = "deleted"
			default:
				continue
			}

			logger.Debug("watcher: event",
				slog.String("vault", v.Name),
				slog.String("path", rel),
				slog.String("op", kind))
			if cb != nil {
				cb(kind, rel)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reportNewDir reports files already present in a newly created
// directory, e.g. one moved into the vault wholesale.
func reportNewDir(root, dirPath string, logger *slog.Logger, cb EventCallback) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !watched(path) || hidden(root, path) {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		logger.Debug("watcher: found in new dir", slog.String("path", rel))
		if cb != nil {
			cb("created", rel)
		}
		return nil
	})
}

// watched reports whether the file is one the watcher cares about.
func watched(path string) bool {
	name := filepath.Base(path)
	if safefile.IsArtifact(name) {
		return false
	}
	return strings.HasSuffix(name, ".md") || strings.HasSuffix(name, ".canvas")
}

// hidden reports whether any path element under root starts with a dot.
// This keeps the trash directory and editor metadata out of the stream.
func hidden(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// addDirsRecursive adds root and all its non-hidden subdirectories to
// the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
