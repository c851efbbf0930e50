package vaultops

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/AshwinHegde/obsidian-mcp/internal/apperr"
)

// Search types.
const (
	SearchContent  = "content"
	SearchFilename = "filename"
	SearchBoth     = "both"
)

// SearchOptions narrows a vault search.
type SearchOptions struct {
	// Path restricts the search to a vault subfolder.
	Path string
	// CaseSensitive matches the query exactly; default folds case.
	CaseSensitive bool
	// Type is one of content, filename, both. Empty means content.
	Type string
}

// SearchMatch is one matching line within a file.
type SearchMatch struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// SearchResult groups the matches found in one file. A filename-only
// hit has no matches.
type SearchResult struct {
	File    string        `json:"file"`
	Matches []SearchMatch `json:"matches,omitempty"`
}

// Search scans the vault's notes and canvases for a substring match.
// Unreadable files are logged and skipped; the call only fails when the
// walk itself fails or every candidate errored with zero results.
func (s *Service) Search(_ context.Context, vaultName, query string, opts SearchOptions) ([]SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("query is empty: %w", apperr.ErrInvalidParams)
	}
	searchType := opts.Type
	if searchType == "" {
		searchType = SearchContent
	}
	if err := validation.Validate(searchType, validation.In(SearchContent, SearchFilename, SearchBoth)); err != nil {
		return nil, fmt.Errorf("searchType %q: %v: %w", opts.Type, err, apperr.ErrInvalidParams)
	}

	v, err := s.reg.Resolve(vaultName)
	if err != nil {
		return nil, err
	}

	files, err := v.Store.List(opts.Path, NoteExt, CanvasExt)
	if err != nil {
		return nil, err
	}

	needle := query
	if !opts.CaseSensitive {
		needle = strings.ToLower(needle)
	}
	contains := func(hay string) bool {
		if !opts.CaseSensitive {
			hay = strings.ToLower(hay)
		}
		return strings.Contains(hay, needle)
	}

	var results []SearchResult
	readErrs := 0
	for _, fi := range files {
		rel := filepath.ToSlash(fi.Path)

		if searchType != SearchContent && contains(rel) {
			results = append(results, SearchResult{File: rel})
			if searchType == SearchFilename {
				continue
			}
		}
		if searchType == SearchFilename {
			continue
		}

		data, err := v.Store.Read(fi.Path)
		if err != nil {
			readErrs++
			s.logger.Warn("search: read failed",
				slog.String("path", rel), slog.String("error", err.Error()))
			continue
		}

		var matches []SearchMatch
		for i, line := range strings.Split(string(data), "\n") {
			if contains(line) {
				matches = append(matches, SearchMatch{Line: i + 1, Text: line})
			}
		}
		if len(matches) == 0 {
			continue
		}
		if n := len(results); n > 0 && results[n-1].File == rel {
			results[n-1].Matches = matches
			continue
		}
		results = append(results, SearchResult{File: rel, Matches: matches})
	}

	if len(results) == 0 && readErrs > 0 {
		return nil, fmt.Errorf("search: no usable results, %d files unreadable", readErrs)
	}
	return results, nil
}
