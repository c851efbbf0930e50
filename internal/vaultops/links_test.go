package vaultops

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/AshwinHegde/obsidian-mcp/internal/apperr"
)

func TestBacklinks(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	seed := map[string]string{
		"target":    "the note everyone links to",
		"by-stem":   "see [[target]] for details",
		"by-path":   "see [[target|the target]] too",
		"unrelated": "links to [[other]] only",
	}
	for name, body := range seed {
		if _, err := svc.CreateNote(ctx, "main", "", name, body); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.CreateNote(ctx, "main", "sub", "nested", "deep link to [[target]]"); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Backlinks(ctx, "main", "target")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	want := []string{"by-path.md", "by-stem.md", "sub/nested.md"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("backlinks = %v, want %v", got, want)
	}
}

func TestBacklinksMatchesFullPath(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "main", "projects", "plan", "the plan"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateNote(ctx, "main", "", "index", "see [[projects/plan]]"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateNote(ctx, "main", "", "loose", "see [[plan]]"); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Backlinks(ctx, "main", "projects/plan")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	want := []string{"index.md", "loose.md"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("backlinks = %v, want %v", got, want)
	}
}

func TestBacklinksNone(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	if _, err := svc.CreateNote(ctx, "main", "", "lonely", "no one links here"); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Backlinks(ctx, "main", "lonely")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("backlinks = %v, want none", got)
	}
}

func TestBacklinksUnknownVault(t *testing.T) {
	svc, _ := testService(t)
	_, err := svc.Backlinks(context.Background(), "nope", "a")
	if !errors.Is(err, apperr.ErrVaultNotFound) {
		t.Errorf("err = %v, want ErrVaultNotFound", err)
	}
}

func TestListTags(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	seed := map[string]string{
		"fm":     "---\ntags:\n  - project\n  - draft\n---\nbody",
		"inline": "working on #project today",
		"both":   "---\ntags:\n  - draft\n---\nstill #draft here", // dedup within a note
		"plain":  "no tags at all",
	}
	for name, body := range seed {
		if _, err := svc.CreateNote(ctx, "main", "", name, body); err != nil {
			t.Fatal(err)
		}
	}

	got, err := svc.ListTags(ctx, "main", "")
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	want := []TagCount{
		{Tag: "draft", Count: 2},
		{Tag: "project", Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tags = %v, want %v", got, want)
	}
}

func TestListTagsScopedFolder(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()
	if _, err := svc.CreateNote(ctx, "main", "work", "a", "#meeting notes"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateNote(ctx, "main", "", "b", "#personal stuff"); err != nil {
		t.Fatal(err)
	}

	got, err := svc.ListTags(ctx, "main", "work")
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	want := []TagCount{{Tag: "meeting", Count: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tags = %v, want %v", got, want)
	}
}
