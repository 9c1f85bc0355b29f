package migrator

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nyxaria/kmfetch/internal/pathengine"
	"github.com/nyxaria/kmfetch/pkg/models"
)

func mkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestGeneratePlan_SimpleRename(t *testing.T) {
	root := t.TempDir()
	artist := models.Artist{ID: "a1", Service: "patreon", UserID: "1", Name: "alice"}
	posts := []models.Post{{ID: "p1", Title: "hello", Published: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}}

	oldCfg := models.Config{ArtistFolderTemplate: "{service}/{name}", PostFolderTemplate: "{id}"}
	newCfg := models.Config{ArtistFolderTemplate: "{service}/{name}", PostFolderTemplate: "{id}_{title}"}

	paths := pathengine.New()
	oldPath := filepath.Join(root, "patreon", "alice", "p1")
	mkdirAll(t, oldPath)

	m := New()
	plan := m.GeneratePlan(paths, root, artist, oldCfg, newCfg, posts)

	if len(plan.Mappings) != 1 {
		t.Fatalf("expected 1 mapping, got %d: %+v", len(plan.Mappings), plan)
	}
	if plan.Mappings[0].OldPath != oldPath {
		t.Errorf("unexpected old path: %s", plan.Mappings[0].OldPath)
	}
}

func TestGeneratePlan_DropsMissingSource(t *testing.T) {
	root := t.TempDir()
	artist := models.Artist{ID: "a1", Service: "patreon", UserID: "1", Name: "alice"}
	posts := []models.Post{{ID: "p1", Published: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}}
	cfg := models.Config{ArtistFolderTemplate: "{service}/{name}", PostFolderTemplate: "{id}"}

	m := New()
	plan := m.GeneratePlan(pathengine.New(), root, artist, cfg, cfg, posts)

	if len(plan.Mappings) != 0 {
		t.Errorf("expected no mappings when source doesn't exist")
	}
	if len(plan.Skipped) != 1 || plan.Skipped[0].Reason != "Source not found" {
		t.Errorf("expected a single 'Source not found' skip, got %+v", plan.Skipped)
	}
}

func TestGeneratePlan_SkipsIdenticalPaths(t *testing.T) {
	root := t.TempDir()
	artist := models.Artist{ID: "a1", Service: "patreon", UserID: "1", Name: "alice"}
	posts := []models.Post{{ID: "p1", Published: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}}
	cfg := models.Config{ArtistFolderTemplate: "{service}/{name}", PostFolderTemplate: "{id}"}

	mkdirAll(t, filepath.Join(root, "patreon", "alice", "p1"))

	m := New()
	plan := m.GeneratePlan(pathengine.New(), root, artist, cfg, cfg, posts)

	if len(plan.Mappings) != 0 {
		t.Errorf("expected no mappings when old==new")
	}
	if len(plan.Skipped) != 1 {
		t.Errorf("expected one skip for identical paths, got %+v", plan.Skipped)
	}
}

func TestGeneratePlan_ManyToOneCollisionInNewProjection(t *testing.T) {
	root := t.TempDir()
	artist := models.Artist{ID: "a1", Service: "patreon", UserID: "1", Name: "alice"}
	posts := []models.Post{
		{ID: "p1", Title: "same", Published: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "p2", Title: "same", Published: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	oldCfg := models.Config{ArtistFolderTemplate: "{service}/{name}", PostFolderTemplate: "{id}"}
	newCfg := models.Config{ArtistFolderTemplate: "{service}/{name}", PostFolderTemplate: "{title}"}

	mkdirAll(t, filepath.Join(root, "patreon", "alice", "p1"))
	mkdirAll(t, filepath.Join(root, "patreon", "alice", "p2"))

	m := New()
	plan := m.GeneratePlan(pathengine.New(), root, artist, oldCfg, newCfg, posts)

	if len(plan.Mappings) != 0 {
		t.Errorf("expected both posts to conflict on the same new path, got mappings %+v", plan.Mappings)
	}
	if len(plan.Conflicts) != 2 {
		t.Errorf("expected 2 conflicts, got %+v", plan.Conflicts)
	}
}

func TestExecute_RenamesAndToleratesFailures(t *testing.T) {
	root := t.TempDir()
	oldPath := filepath.Join(root, "old")
	newPath := filepath.Join(root, "nested", "new")
	mkdirAll(t, oldPath)

	plan := MigrationPlan{Mappings: []Mapping{
		{PostID: "p1", OldPath: oldPath, NewPath: newPath},
		{PostID: "p2", OldPath: filepath.Join(root, "missing"), NewPath: filepath.Join(root, "also-missing")},
	}}

	m := New()
	result := m.Execute(plan)

	if len(result.Succeeded) != 1 || result.Succeeded[0].PostID != "p1" {
		t.Errorf("expected p1 to succeed, got %+v", result.Succeeded)
	}
	if len(result.Failed) != 1 || result.Failed[0].PostID != "p2" {
		t.Errorf("expected p2 to fail without aborting the batch, got %+v", result.Failed)
	}
	if _, err := os.Stat(newPath); err != nil {
		t.Errorf("expected renamed directory to exist at %s", newPath)
	}
}
