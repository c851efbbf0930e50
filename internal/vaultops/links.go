package vaultops

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AshwinHegde/obsidian-mcp/internal/parser"
	"github.com/AshwinHegde/obsidian-mcp/internal/pathguard"
)

// TagCount is one tag with the number of notes carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Backlinks returns the vault-relative paths of notes containing a
// wikilink to the note at path. Links may use the full path or the bare
// stem form. Unreadable notes are logged and skipped.
func (s *Service) Backlinks(_ context.Context, vaultName, path string) ([]string, error) {
	t, err := s.resolvePath(vaultName, pathguard.EnsureExt(path, NoteExt))
	if err != nil {
		return nil, err
	}

	target := strings.TrimSuffix(filepath.ToSlash(t.rel), NoteExt)
	targets := map[string]struct{}{target: {}}
	if stem := filepath.Base(target); stem != target {
		targets[stem] = struct{}{}
	}

	files, err := t.vault.Store.List("", NoteExt)
	if err != nil {
		return nil, err
	}

	self := filepath.ToSlash(t.rel)
	var out []string
	for _, fi := range files {
		rel := filepath.ToSlash(fi.Path)
		if rel == self {
			continue
		}
		data, err := t.vault.Store.Read(fi.Path)
		if err != nil {
			s.logger.Warn("backlinks: read failed",
				slog.String("path", rel), slog.String("error", err.Error()))
			continue
		}
		for _, link := range parser.Links(string(data)) {
			if _, ok := targets[link]; ok {
				out = append(out, rel)
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// ListTags collects frontmatter and inline tags across the vault's
// notes (optionally scoped to folder), counting the notes each tag
// appears in. Results are sorted by tag name.
func (s *Service) ListTags(_ context.Context, vaultName, folder string) ([]TagCount, error) {
	v, err := s.reg.Resolve(vaultName)
	if err != nil {
		return nil, err
	}
	files, err := v.Store.List(folder, NoteExt)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, fi := range files {
		data, err := v.Store.Read(fi.Path)
		if err != nil {
			s.logger.Warn("tags: read failed",
				slog.String("path", filepath.ToSlash(fi.Path)), slog.String("error", err.Error()))
			continue
		}
		for _, tag := range parser.Tags(data) {
			counts[tag]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out, nil
}
