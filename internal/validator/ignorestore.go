package validator

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/nyxaria/kmfetch/pkg/models"
)

// artistRecord is one artist's persisted conflict/ignore state.
type artistRecord struct {
	Conflicts []string `json:"conflicts"`
	Ignores   []string `json:"ignores"`
}

// Store is the on-disk ignore store: artist id -> {conflicts, ignores},
// both as paths relative to the Validator's rootDir.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a Store backed by path, which need not exist yet.
func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) load() (map[string]artistRecord, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]artistRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	var records map[string]artistRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) save(records map[string]artistRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// conflictsByArtist maps each conflict onto the artist id(s) it
// implicates: directly for artist-level conflicts, and via the post-id ->
// artist-id lookup built from corpus for post/file-level conflicts.
func conflictsByArtist(conflicts []Conflict, corpus []ArtistCorpus, v *Validator) map[string]map[string]bool {
	postToArtist := make(map[string]string)
	for _, ac := range corpus {
		for _, p := range ac.Posts {
			postToArtist[p.ID] = ac.Artist.ID
		}
	}

	out := make(map[string]map[string]bool)
	addTo := func(artistID, relPath string) {
		if out[artistID] == nil {
			out[artistID] = make(map[string]bool)
		}
		out[artistID][relPath] = true
	}

	for _, c := range conflicts {
		rel := v.relPath(c.Path)
		if c.Level == "artist" {
			for _, ownerID := range c.Owners {
				addTo(ownerID, rel)
			}
			continue
		}
		for _, postID := range c.Owners {
			if artistID, ok := postToArtist[postID]; ok {
				addTo(artistID, rel)
			}
		}
	}
	return out
}

// Validate implements §4.8's three-step reconciliation: compute all
// conflicts, subtract previously-ignored paths, then rewrite the store so
// stale ignores (paths that no longer conflict) are garbage-collected.
func (v *Validator) Validate(corpus []ArtistCorpus, cfg models.Config, levels Levels, store *Store) ([]Conflict, int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	conflicts := v.Audit(corpus, cfg, levels)

	records, err := store.load()
	if err != nil {
		return nil, 0, err
	}

	byArtist := conflictsByArtist(conflicts, corpus, v)

	ignoredPaths := make(map[string]bool)
	for artistID, rec := range records {
		for _, ignoredRel := range rec.Ignores {
			ignoredPaths[artistID+"\x00"+ignoredRel] = true
		}
	}

	var filtered []Conflict
	for _, c := range conflicts {
		rel := v.relPath(c.Path)
		keep := false
		owners := c.Owners
		for _, ownerID := range owners {
			artistID := ownerID
			if c.Level != "artist" {
				artistID = artistOf(corpus, ownerID)
			}
			if !ignoredPaths[artistID+"\x00"+rel] {
				keep = true
			}
		}
		if keep {
			filtered = append(filtered, c)
		}
	}

	newRecords := make(map[string]artistRecord, len(byArtist))
	for _, ac := range corpus {
		relConflicts := make([]string, 0, len(byArtist[ac.Artist.ID]))
		for rel := range byArtist[ac.Artist.ID] {
			relConflicts = append(relConflicts, rel)
		}
		var retainedIgnores []string
		if prev, ok := records[ac.Artist.ID]; ok {
			stillConflicting := byArtist[ac.Artist.ID]
			for _, ignoredRel := range prev.Ignores {
				if stillConflicting[ignoredRel] {
					retainedIgnores = append(retainedIgnores, ignoredRel)
				}
			}
		}
		newRecords[ac.Artist.ID] = artistRecord{Conflicts: relConflicts, Ignores: retainedIgnores}
	}

	if err := store.save(newRecords); err != nil {
		return nil, 0, err
	}

	return filtered, len(filtered), nil
}

// Ignore records relPath as an accepted conflict for artistID, so
// subsequent Validate calls drop it from the returned conflict set for as
// long as it keeps conflicting.
func (s *Store) Ignore(artistID, relPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load()
	if err != nil {
		return err
	}
	rec := records[artistID]
	for _, existing := range rec.Ignores {
		if existing == relPath {
			return nil
		}
	}
	rec.Ignores = append(rec.Ignores, relPath)
	records[artistID] = rec
	return s.save(records)
}

func artistOf(corpus []ArtistCorpus, postID string) string {
	for _, ac := range corpus {
		for _, p := range ac.Posts {
			if p.ID == postID {
				return ac.Artist.ID
			}
		}
	}
	return ""
}
