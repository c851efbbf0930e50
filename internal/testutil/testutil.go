// Package testutil provides shared test helpers for setting up vaults
// and registries.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AshwinHegde/obsidian-mcp/internal/vault"
)

// TestVault creates a temporary vault directory named name and returns
// a registry containing only that vault.
func TestVault(t *testing.T, name string) (*vault.Registry, *vault.Vault) {
	t.Helper()
	root := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	reg, err := vault.NewRegistry([]string{root})
	if err != nil {
		t.Fatal(err)
	}
	v, err := reg.Resolve(name)
	if err != nil {
		t.Fatal(err)
	}
	return reg, v
}

// TestRegistry creates one temporary vault per name and returns the
// registry over all of them.
func TestRegistry(t *testing.T, names ...string) *vault.Registry {
	t.Helper()
	base := t.TempDir()
	roots := make([]string, len(names))
	for i, n := range names {
		roots[i] = filepath.Join(base, n)
		if err := os.MkdirAll(roots[i], 0o755); err != nil {
			t.Fatal(err)
		}
	}
	reg, err := vault.NewRegistry(roots)
	if err != nil {
		t.Fatal(err)
	}
	return reg
}
