// Package vaultops implements the tool operations: thin orchestrators
// composing the registry, path guard, safe mutator, and trash archiver
// per call. Each call touches exactly one logical target.
package vaultops

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/AshwinHegde/obsidian-mcp/internal/pathguard"
	"github.com/AshwinHegde/obsidian-mcp/internal/safefile"
	"github.com/AshwinHegde/obsidian-mcp/internal/vault"
)

// File extensions auto-appended to bare filenames.
const (
	NoteExt   = ".md"
	CanvasExt = ".canvas"
)

// Result is the structured outcome of a mutating operation.
type Result struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Path      string `json:"path"`
	Operation string `json:"operation"`
}

// Service coordinates vault operations for the tool surface.
type Service struct {
	reg      *vault.Registry
	mut      *safefile.Mutator
	trashDir string
	logger   *slog.Logger
}

// New creates a Service. trashDir is the vault-local trash directory
// name ("" uses the default).
func New(reg *vault.Registry, mut *safefile.Mutator, trashDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{reg: reg, mut: mut, trashDir: trashDir, logger: logger}
}

// VaultNames returns all configured vault names.
func (s *Service) VaultNames() []string {
	return s.reg.Names()
}

// target is a resolved (vault, relative path, absolute path) triple.
type target struct {
	vault *vault.Vault
	rel   string
	abs   string
}

// resolveFile resolves a filename + optional folder pair. The filename
// must not contain path separators; the folder may.
func (s *Service) resolveFile(vaultName, folder, filename, ext string) (*target, error) {
	if err := pathguard.CheckFilename(filename); err != nil {
		return nil, err
	}
	return s.resolvePath(vaultName, join(folder, pathguard.EnsureExt(filename, ext)))
}

// resolvePath resolves a vault-relative path that may contain segments.
func (s *Service) resolvePath(vaultName, rel string) (*target, error) {
	v, err := s.reg.Resolve(vaultName)
	if err != nil {
		return nil, err
	}
	abs, err := pathguard.Resolve(v.Root, rel)
	if err != nil {
		return nil, err
	}
	return &target{vault: v, rel: rel, abs: abs}, nil
}

func join(folder, filename string) string {
	if folder == "" {
		return filename
	}
	return filepath.Join(folder, filename)
}

func ok(op, path, format string, args ...any) *Result {
	return &Result{
		Success:   true,
		Message:   fmt.Sprintf(format, args...),
		Path:      path,
		Operation: op,
	}
}
