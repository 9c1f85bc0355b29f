// Package validator audits the whole corpus for rendered-path collisions
// across three levels — artist folder, post folder, file path — and
// maintains an on-disk per-artist ignore store so a known, accepted
// collision doesn't keep surfacing (§4.8).
package validator

import (
	"path/filepath"

	"github.com/nyxaria/kmfetch/internal/downloader"
	"github.com/nyxaria/kmfetch/internal/pathengine"
	"github.com/nyxaria/kmfetch/pkg/models"
)

// Levels selects which of the three uniqueness checks to run.
type Levels struct {
	ArtistUnique bool
	PostUnique   bool
	FileUnique   bool
}

// ArtistCorpus is one artist plus its cached posts and files, the unit
// the audit walks.
type ArtistCorpus struct {
	Artist models.Artist
	Posts  []models.Post
}

// Conflict is one rendered absolute path shared by two or more owners.
type Conflict struct {
	Level  string   // "artist", "post", or "file"
	Path   string
	Owners []string // artist ids (artist level) or post ids (post/file level)
}

// Validator renders every corpus path with the same pathengine.Engine the
// downloader uses, applying the artist's template and date-format
// overrides. It does not pass the artist's last_date, does not apply the
// artist's rename_images_only override, and names files from the raw
// attachment names, so an audit can differ from what download_artist
// writes when templates or files depend on those.
type Validator struct {
	paths   *pathengine.Engine
	rootDir string
}

// New returns a Validator rooted at rootDir.
func New(paths *pathengine.Engine, rootDir string) *Validator {
	return &Validator{paths: paths, rootDir: rootDir}
}

// Audit renders every enabled level across corpus and groups by absolute
// path; any group of size >= 2 is a Conflict.
func (v *Validator) Audit(corpus []ArtistCorpus, cfg models.Config, levels Levels) []Conflict {
	artistGroups := make(map[string][]string)
	postGroups := make(map[string][]string)
	fileGroups := make(map[string][]string)

	for _, ac := range corpus {
		artistFolder := v.paths.FormatArtistFolder(pathengine.ArtistParams{
			Service: ac.Artist.Service,
			Name:    ac.Artist.Name,
			Alias:   ac.Artist.Alias,
			UserID:  ac.Artist.UserID,
		}, effectiveTemplate(cfg.ArtistFolderTemplate, ac.Artist.Config.ArtistFolderTemplate))
		artistPath := filepath.Join(v.rootDir, artistFolder)

		if levels.ArtistUnique {
			artistGroups[artistPath] = append(artistGroups[artistPath], ac.Artist.ID)
		}

		for _, p := range ac.Posts {
			postFolder := v.paths.FormatPostFolder(pathengine.PostParams{
				ID:        p.ID,
				User:      ac.Artist.UserID,
				Service:   ac.Artist.Service,
				Title:     p.Title,
				Published: p.Published,
			}, effectiveTemplate(cfg.PostFolderTemplate, ac.Artist.Config.PostFolderTemplate), effectiveTemplate(cfg.DateFormat, ac.Artist.Config.DateFormat))
			postPath := filepath.Join(artistPath, postFolder)

			if levels.PostUnique {
				postGroups[postPath] = append(postGroups[postPath], p.ID)
			}

			if levels.FileUnique {
				originals := make([]pathengine.OriginalFile, 0, len(p.AllFiles()))
				for _, f := range p.AllFiles() {
					originals = append(originals, pathengine.OriginalFile{Name: f.Name, Ext: filepath.Ext(f.Name)})
				}
				names := v.paths.FormatFilesNames(originals, effectiveTemplate(cfg.FileNameTemplate, ac.Artist.Config.FileNameTemplate), cfg.RenameImagesOnly, downloader.ImageExtensions)
				for _, name := range names {
					filePath := filepath.Join(postPath, name)
					fileGroups[filePath] = append(fileGroups[filePath], p.ID)
				}
			}
		}
	}

	var conflicts []Conflict
	conflicts = append(conflicts, collectConflicts("artist", artistGroups)...)
	conflicts = append(conflicts, collectConflicts("post", postGroups)...)
	conflicts = append(conflicts, collectConflicts("file", fileGroups)...)
	return conflicts
}

func effectiveTemplate(global, override string) string {
	if override != "" {
		return override
	}
	return global
}

func collectConflicts(level string, groups map[string][]string) []Conflict {
	var out []Conflict
	for path, owners := range groups {
		if len(owners) >= 2 {
			out = append(out, Conflict{Level: level, Path: path, Owners: owners})
		}
	}
	return out
}

// relPath returns path relative to v.rootDir, falling back to path itself
// if it isn't rooted there.
func (v *Validator) relPath(path string) string {
	rel, err := filepath.Rel(v.rootDir, path)
	if err != nil {
		return path
	}
	return rel
}
