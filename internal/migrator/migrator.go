// Package migrator computes and executes rename plans when an artist's
// path templates change (§4.7), reusing storage.Archiver for a
// pre-migration snapshot of the affected tree.
package migrator

import (
	"os"
	"path/filepath"

	"github.com/nyxaria/kmfetch/internal/kerrors"
	"github.com/nyxaria/kmfetch/internal/pathengine"
	"github.com/nyxaria/kmfetch/internal/storage"
	"github.com/nyxaria/kmfetch/pkg/models"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "migrator")

// Mapping is a single accepted rename: OldPath must exist, NewPath must not.
type Mapping struct {
	PostID  string
	OldPath string
	NewPath string
}

// Skipped is a post left out of the plan, with the reason why.
type Skipped struct {
	PostID string
	Reason string
}

// MigrationPlan is the output of GeneratePlan.
type MigrationPlan struct {
	Mappings  []Mapping
	Conflicts []Skipped
	Skipped   []Skipped
}

// Migrator computes and executes rename plans for a single artist's post
// folders, given the old and new rendered path per post.
type Migrator struct {
	archiver *storage.Archiver
}

// New returns a Migrator backed by a fresh Archiver.
func New() *Migrator {
	return &Migrator{archiver: storage.NewArchiver()}
}

// postPath is one cached post's rendered destination path under a
// particular config.
type postPath struct {
	PostID string
	Path   string
}

// renderPaths computes each post's absolute post-folder path under cfg,
// rooted at rootDir, using the artist's own override-merged config.
func renderPaths(paths *pathengine.Engine, rootDir string, artist models.Artist, cfg models.Config, posts []models.Post) []postPath {
	artistFolder := paths.FormatArtistFolder(pathengine.ArtistParams{
		Service: artist.Service,
		Name:    artist.Name,
		Alias:   artist.Alias,
		UserID:  artist.UserID,
	}, cfg.ArtistFolderTemplate)

	out := make([]postPath, len(posts))
	for i, p := range posts {
		postFolder := paths.FormatPostFolder(pathengine.PostParams{
			ID:        p.ID,
			User:      artist.UserID,
			Service:   artist.Service,
			Title:     p.Title,
			Published: p.Published,
		}, cfg.PostFolderTemplate, cfg.DateFormat)
		out[i] = postPath{PostID: p.ID, Path: filepath.Join(rootDir, artistFolder, postFolder)}
	}
	return out
}

// GeneratePlan implements §4.7's four-step algorithm for post folders.
func (m *Migrator) GeneratePlan(paths *pathengine.Engine, rootDir string, artist models.Artist, oldConfig, newConfig models.Config, posts []models.Post) MigrationPlan {
	oldPaths := renderPaths(paths, rootDir, artist, oldConfig, posts)
	newPaths := renderPaths(paths, rootDir, artist, newConfig, posts)

	plan := MigrationPlan{}

	oldByID := make(map[string]string, len(oldPaths))
	newByID := make(map[string]string, len(newPaths))
	for _, p := range oldPaths {
		oldByID[p.PostID] = p.Path
	}
	for _, p := range newPaths {
		newByID[p.PostID] = p.Path
	}

	// Step 2: drop posts whose old path doesn't exist.
	var surviving []string
	for _, p := range posts {
		old := oldByID[p.ID]
		if _, err := os.Stat(old); err != nil {
			plan.Skipped = append(plan.Skipped, Skipped{PostID: p.ID, Reason: "Source not found"})
			continue
		}
		surviving = append(surviving, p.ID)
	}

	// Step 3: detect many-to-one collisions in both projections.
	oldGroups := groupBy(surviving, oldByID)
	newGroups := groupBy(surviving, newByID)
	conflicted := make(map[string]bool)
	for _, ids := range oldGroups {
		if len(ids) > 1 {
			for _, id := range ids {
				conflicted[id] = true
			}
		}
	}
	for _, ids := range newGroups {
		if len(ids) > 1 {
			for _, id := range ids {
				conflicted[id] = true
			}
		}
	}

	var clean []string
	for _, id := range surviving {
		if conflicted[id] {
			plan.Conflicts = append(plan.Conflicts, Skipped{PostID: id, Reason: "Path collision with another post"})
			continue
		}
		clean = append(clean, id)
	}

	// Step 4: 1:1 mappings, skipping no-ops and target-exists collisions.
	for _, id := range clean {
		oldPath, newPath := oldByID[id], newByID[id]
		if oldPath == newPath {
			plan.Skipped = append(plan.Skipped, Skipped{PostID: id, Reason: "Old and new path are identical"})
			continue
		}
		if _, err := os.Stat(newPath); err == nil {
			plan.Skipped = append(plan.Skipped, Skipped{PostID: id, Reason: "Target already exists"})
			continue
		}
		plan.Mappings = append(plan.Mappings, Mapping{PostID: id, OldPath: oldPath, NewPath: newPath})
	}

	return plan
}

func groupBy(ids []string, pathByID map[string]string) map[string][]string {
	groups := make(map[string][]string)
	for _, id := range ids {
		p := pathByID[id]
		groups[p] = append(groups[p], id)
	}
	return groups
}

// ExecutionResult reports per-mapping rename outcomes.
type ExecutionResult struct {
	Succeeded []Mapping
	Failed    []Skipped
}

// Execute renames each mapping in plan one by one, creating parent
// directories as needed; a single failure never aborts the batch.
func (m *Migrator) Execute(plan MigrationPlan) ExecutionResult {
	var result ExecutionResult
	for _, mapping := range plan.Mappings {
		if err := os.MkdirAll(filepath.Dir(mapping.NewPath), 0o755); err != nil {
			result.Failed = append(result.Failed, Skipped{PostID: mapping.PostID, Reason: err.Error()})
			continue
		}
		if err := os.Rename(mapping.OldPath, mapping.NewPath); err != nil {
			result.Failed = append(result.Failed, Skipped{PostID: mapping.PostID, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, mapping)
	}
	log.WithField("succeeded", len(result.Succeeded)).WithField("failed", len(result.Failed)).Info("migration executed")
	return result
}

// Backup snapshots dir into destFile before a migration runs against it.
func (m *Migrator) Backup(dir, destFile string) error {
	if err := m.archiver.CreateTarGz(dir, destFile); err != nil {
		return kerrors.New(kerrors.LocalIO, "migrator.Backup", err)
	}
	return nil
}
