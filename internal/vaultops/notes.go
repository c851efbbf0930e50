package vaultops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/AshwinHegde/obsidian-mcp/internal/apperr"
	"github.com/AshwinHegde/obsidian-mcp/internal/parser"
	"github.com/AshwinHegde/obsidian-mcp/internal/pathguard"
	"github.com/AshwinHegde/obsidian-mcp/internal/trash"
	"github.com/AshwinHegde/obsidian-mcp/internal/vault"
)

// Note edit operations.
const (
	OpAppend  = "append"
	OpPrepend = "prepend"
	OpReplace = "replace"
	OpDelete  = "delete"
)

// CreateNote creates a new markdown note. The filename is suffixed with
// .md if needed; intermediate folders are created.
func (s *Service) CreateNote(_ context.Context, vaultName, folder, filename, content string) (*Result, error) {
	t, err := s.resolveFile(vaultName, folder, filename, NoteExt)
	if err != nil {
		return nil, err
	}
	if err := s.mut.Create(t.abs, []byte(content)); err != nil {
		return nil, err
	}
	return ok("create-note", t.abs, "created note %s in vault %s", t.rel, t.vault.Name), nil
}

// ReadNote returns the raw contents of a note.
func (s *Service) ReadNote(_ context.Context, vaultName, folder, filename string) (string, error) {
	t, err := s.resolveFile(vaultName, folder, filename, NoteExt)
	if err != nil {
		return "", err
	}
	data, err := t.vault.Store.Read(t.rel)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("note %s: %w", t.rel, apperr.ErrNotFound)
		}
		return "", err
	}
	return string(data), nil
}

// EditNote mutates an existing note under backup protection. Operation
// delete unlinks the note (its backup survives a short grace window).
func (s *Service) EditNote(_ context.Context, vaultName, folder, filename, operation, content string) (*Result, error) {
	if err := validation.Validate(operation,
		validation.Required,
		validation.In(OpAppend, OpPrepend, OpReplace, OpDelete),
	); err != nil {
		return nil, fmt.Errorf("operation %q: %v: %w", operation, err, apperr.ErrInvalidParams)
	}

	t, err := s.resolveFile(vaultName, folder, filename, NoteExt)
	if err != nil {
		return nil, err
	}

	if operation == OpDelete {
		if err := s.mut.Delete(t.abs); err != nil {
			return nil, noteNotFound(err, t.rel)
		}
		return ok("edit-note", t.abs, "deleted note %s", t.rel), nil
	}

	err = s.mut.Edit(t.abs, func(cur []byte) ([]byte, error) {
		switch operation {
		case OpAppend:
			return joinBlocks(string(cur), content), nil
		case OpPrepend:
			return joinBlocksReversed(content, string(cur)), nil
		default:
			return []byte(content), nil
		}
	})
	if err != nil {
		return nil, noteNotFound(err, t.rel)
	}
	return ok("edit-note", t.abs, "applied %s to note %s", operation, t.rel), nil
}

// DeleteNote soft-deletes a note into the vault trash, or permanently
// removes it when permanent is set.
func (s *Service) DeleteNote(_ context.Context, vaultName, folder, filename, reason string, permanent bool) (*Result, error) {
	t, err := s.resolveFile(vaultName, folder, filename, NoteExt)
	if err != nil {
		return nil, err
	}
	return s.deleteFile(t, "delete-note", reason, permanent)
}

// MoveNote renames a note within its vault and rewrites wikilinks in
// other notes that pointed at it. Both source and destination are
// vault-relative paths and may contain folders.
func (s *Service) MoveNote(_ context.Context, vaultName, source, destination string) (*Result, error) {
	src, err := s.resolvePath(vaultName, pathguard.EnsureExt(source, NoteExt))
	if err != nil {
		return nil, err
	}
	dst, err := s.resolvePath(vaultName, pathguard.EnsureExt(destination, NoteExt))
	if err != nil {
		return nil, err
	}

	store := src.vault.Store
	if exists, err := store.Exists(src.rel); err != nil {
		return nil, err
	} else if !exists {
		return nil, fmt.Errorf("note %s: %w", src.rel, apperr.ErrNotFound)
	}
	if exists, err := store.Exists(dst.rel); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("note %s: %w", dst.rel, apperr.ErrAlreadyExists)
	}

	if err := store.Move(src.rel, dst.rel); err != nil {
		return nil, err
	}

	updated := s.rewriteBacklinks(src.vault, src.rel, dst.rel)
	return ok("move-note", dst.abs, "moved %s to %s (%d notes with updated links)", src.rel, dst.rel, updated), nil
}

// CreateDirectory creates a directory (with parents) inside the vault.
func (s *Service) CreateDirectory(_ context.Context, vaultName, relPath string) (*Result, error) {
	if relPath == "" {
		return nil, fmt.Errorf("path is empty: %w", apperr.ErrInvalidParams)
	}
	t, err := s.resolvePath(vaultName, relPath)
	if err != nil {
		return nil, err
	}
	if err := t.vault.Store.MkdirAll(t.rel); err != nil {
		return nil, err
	}
	return ok("create-directory", t.abs, "created directory %s", t.rel), nil
}

// ListNotes returns the relative paths of all notes under folder.
func (s *Service) ListNotes(_ context.Context, vaultName, folder string) ([]string, error) {
	v, err := s.reg.Resolve(vaultName)
	if err != nil {
		return nil, err
	}
	infos, err := v.Store.List(folder, NoteExt)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(infos))
	for i, fi := range infos {
		paths[i] = filepath.ToSlash(fi.Path)
	}
	return paths, nil
}

// deleteFile archives or purges one resolved target.
func (s *Service) deleteFile(t *target, op, reason string, permanent bool) (*Result, error) {
	if permanent {
		if err := trash.Purge(t.vault.Root, t.rel); err != nil {
			return nil, err
		}
		return ok(op, t.abs, "permanently deleted %s", t.rel), nil
	}
	entry, err := trash.Archive(t.vault.Root, s.trashDir, t.rel, reason)
	if err != nil {
		return nil, err
	}
	return ok(op, t.abs, "moved %s to trash as %s", t.rel, entry), nil
}

// rewriteBacklinks walks the vault's notes and repoints wikilinks from
// the old note path to the new one. Per-file failures are logged and
// skipped; the move itself has already committed.
func (s *Service) rewriteBacklinks(v *vault.Vault, oldRel, newRel string) int {
	newTarget := strings.TrimSuffix(filepath.ToSlash(newRel), NoteExt)
	oldPath := strings.TrimSuffix(filepath.ToSlash(oldRel), NoteExt)
	oldTargets := []string{oldPath}
	if stem := filepath.Base(oldPath); stem != oldPath {
		oldTargets = append(oldTargets, stem)
	}

	files, err := v.Store.List("", NoteExt)
	if err != nil {
		s.logger.Warn("backlink scan failed", slog.String("vault", v.Name), slog.String("error", err.Error()))
		return 0
	}

	updated := 0
	for _, fi := range files {
		if fi.Path == newRel {
			continue
		}
		data, err := v.Store.Read(fi.Path)
		if err != nil {
			s.logger.Warn("backlink read failed", slog.String("path", fi.Path), slog.String("error", err.Error()))
			continue
		}
		content := string(data)
		total := 0
		for _, old := range oldTargets {
			var n int
			content, n = parser.RewriteLinks(content, old, newTarget)
			total += n
		}
		if total == 0 {
			continue
		}
		if err := v.Store.Write(fi.Path, []byte(content)); err != nil {
			s.logger.Warn("backlink rewrite failed", slog.String("path", fi.Path), slog.String("error", err.Error()))
			continue
		}
		updated++
	}
	return updated
}

// joinBlocks appends added after existing with a blank-line separator,
// trimming the existing content's outer whitespace first.
func joinBlocks(existing, added string) []byte {
	cur := strings.TrimSpace(existing)
	if cur == "" {
		return []byte(added)
	}
	return []byte(cur + "\n\n" + added)
}

// joinBlocksReversed prepends added before existing, symmetric to
// joinBlocks.
func joinBlocksReversed(added, existing string) []byte {
	cur := strings.TrimSpace(existing)
	if cur == "" {
		return []byte(added)
	}
	return []byte(added + "\n\n" + cur)
}

// noteNotFound rewraps a safefile not-found error with the logical
// resource name instead of the absolute path.
func noteNotFound(err error, rel string) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("note %s: %w", rel, apperr.ErrNotFound)
	}
	return err
}
