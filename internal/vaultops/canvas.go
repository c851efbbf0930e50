package vaultops

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/AshwinHegde/obsidian-mcp/internal/apperr"
	"github.com/AshwinHegde/obsidian-mcp/internal/canvas"
)

// CreateCanvas validates content against the canvas schema and creates
// the file. The caller's original text is persisted verbatim.
func (s *Service) CreateCanvas(_ context.Context, vaultName, folder, filename, content string) (*Result, error) {
	if err := validateCanvas(content); err != nil {
		return nil, err
	}
	t, err := s.resolveFile(vaultName, folder, filename, CanvasExt)
	if err != nil {
		return nil, err
	}
	if err := s.mut.Create(t.abs, []byte(content)); err != nil {
		return nil, err
	}
	return ok("create-canvas", t.abs, "created canvas %s in vault %s", t.rel, t.vault.Name), nil
}

// ReadCanvas returns the raw canvas JSON text. The stored bytes are
// returned untouched so a write/read round-trip is byte-identical.
func (s *Service) ReadCanvas(_ context.Context, vaultName, folder, filename string) (string, error) {
	t, err := s.resolveFile(vaultName, folder, filename, CanvasExt)
	if err != nil {
		return "", err
	}
	data, err := t.vault.Store.Read(t.rel)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("canvas %s: %w", t.rel, apperr.ErrNotFound)
		}
		return "", err
	}
	return string(data), nil
}

// EditCanvas replaces an existing canvas with schema-valid content
// under backup protection. Replace is the only supported operation.
func (s *Service) EditCanvas(_ context.Context, vaultName, folder, filename, operation, content string) (*Result, error) {
	if operation != OpReplace {
		return nil, fmt.Errorf("canvas edit supports only %q, got %q: %w", OpReplace, operation, apperr.ErrInvalidParams)
	}
	if err := validateCanvas(content); err != nil {
		return nil, err
	}
	t, err := s.resolveFile(vaultName, folder, filename, CanvasExt)
	if err != nil {
		return nil, err
	}
	err = s.mut.Edit(t.abs, func([]byte) ([]byte, error) {
		return []byte(content), nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("canvas %s: %w", t.rel, apperr.ErrNotFound)
		}
		return nil, err
	}
	return ok("edit-canvas", t.abs, "replaced canvas %s", t.rel), nil
}

// DeleteCanvas soft-deletes a canvas into the vault trash, or
// permanently removes it when permanent is set.
func (s *Service) DeleteCanvas(_ context.Context, vaultName, folder, filename, reason string, permanent bool) (*Result, error) {
	t, err := s.resolveFile(vaultName, folder, filename, CanvasExt)
	if err != nil {
		return nil, err
	}
	return s.deleteFile(t, "delete-canvas", reason, permanent)
}

// validateCanvas is the authoritative pre-write schema check.
func validateCanvas(content string) error {
	if _, err := canvas.Parse([]byte(content)); err != nil {
		return fmt.Errorf("%v: %w", err, apperr.ErrInvalidParams)
	}
	return nil
}
