// Package vault implements the process-wide registry mapping vault names
// to their root directories.
package vault

import (
	"fmt"
	"path/filepath"

	"github.com/AshwinHegde/obsidian-mcp/internal/apperr"
	"github.com/AshwinHegde/obsidian-mcp/internal/storage"
)

// Vault is a named root directory with its storage provider.
type Vault struct {
	Name  string
	Root  string
	Store storage.Provider
}

// Registry is the immutable name → vault mapping built at startup.
type Registry struct {
	byName map[string]*Vault
	names  []string // configuration order
}

// NewRegistry builds a registry from an ordered list of root directories.
// Each vault's display name is its base directory name; duplicate names
// get a numeric suffix in configuration order ("notes", "notes-2", ...).
// Every root must already exist as a directory.
func NewRegistry(roots []string) (*Registry, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("vault: at least one vault root is required")
	}
	r := &Registry{byName: make(map[string]*Vault, len(roots))}
	for _, root := range roots {
		store, err := storage.NewFS(root)
		if err != nil {
			return nil, fmt.Errorf("vault %s: %w", root, err)
		}
		name := filepath.Base(store.Root())
		for n := 2; ; n++ {
			if _, taken := r.byName[name]; !taken {
				break
			}
			name = fmt.Sprintf("%s-%d", filepath.Base(store.Root()), n)
		}
		v := &Vault{Name: name, Root: store.Root(), Store: store}
		r.byName[name] = v
		r.names = append(r.names, name)
	}
	return r, nil
}

// Resolve returns the vault registered under name.
func (r *Registry) Resolve(name string) (*Vault, error) {
	v, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, apperr.ErrVaultNotFound)
	}
	return v, nil
}

// Names returns all configured vault names in configuration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// All returns every registered vault in configuration order.
func (r *Registry) All() []*Vault {
	out := make([]*Vault, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.byName[n])
	}
	return out
}
