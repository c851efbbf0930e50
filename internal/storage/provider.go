// Package storage defines the per-vault file-system abstraction.
package storage

import "time"

// FileInfo is a lightweight record returned by list operations.
type FileInfo struct {
	Path      string    `json:"path"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for vault file operations. All paths are
// relative to the vault root and validated for containment before use.
type Provider interface {
	// Root returns the absolute vault root path.
	Root() string
	// List returns files under dir whose name carries one of exts
	// (every file when exts is empty). Dot-prefixed directories and
	// files are skipped, which keeps trash and backup artifacts out.
	List(dir string, exts ...string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parents.
	Write(path string, content []byte) error
	// Exists reports whether a file or directory exists at path.
	Exists(path string) (bool, error)
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath, creating parents of newPath.
	Move(oldPath, newPath string) error
	// MkdirAll creates the directory at path with any parents.
	MkdirAll(path string) error
}
