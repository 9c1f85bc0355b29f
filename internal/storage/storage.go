// Package storage owns the durable artist/config/history documents (§4.1):
// a principal artists.json array, an optional fragment directory merged
// at load time, a single config.json, and an append-only history.json.
// All read/write pairs are atomic with respect to each other under one
// coarse mutex, matching the teacher's internal/storage file-locking
// discipline (per-path mutex around a stat-then-write sequence) scaled up
// to "the whole small document" since these documents are tiny JSON blobs,
// not multi-megabyte payloads.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/nyxaria/kmfetch/pkg/models"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "storage")

const historyCap = 1000

// Storage is the durable owner of artists, the global config, and the
// command history log.
type Storage struct {
	dataDir string
	mu      sync.Mutex
}

// New returns a Storage rooted at dataDir, creating it if necessary.
func New(dataDir string) (*Storage, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(dataDir, "artists"), 0o755); err != nil {
		return nil, fmt.Errorf("storage: create fragment dir: %w", err)
	}
	return &Storage{dataDir: dataDir}, nil
}

func (s *Storage) artistsPath() string        { return filepath.Join(s.dataDir, "artists.json") }
func (s *Storage) fragmentDir() string        { return filepath.Join(s.dataDir, "artists") }
func (s *Storage) configPath() string         { return filepath.Join(s.dataDir, "config.json") }
func (s *Storage) historyPath() string        { return filepath.Join(s.dataDir, "history.json") }

func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: marshal: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("storage: rename: %w", err)
	}
	return nil
}

func readJSONOrZero(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("storage: read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// fragmentSource records which physical file an artist was loaded from,
// so a later SaveArtist can mutate that file in place instead of forking
// a new copy into the principal document.
type fragmentSource struct {
	path    string // "" means "principal document"
	isArray bool
}

// loadAllLocked merges the principal artists.json with every fragment
// under artists/, principal records winning on id collision, and returns
// each artist alongside the file it was sourced from.
func (s *Storage) loadAllLocked() (map[string]models.Artist, map[string]fragmentSource, error) {
	sources := make(map[string]fragmentSource)
	merged := make(map[string]models.Artist)

	var fragFiles []string
	entries, err := os.ReadDir(s.fragmentDir())
	if err == nil {
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
				fragFiles = append(fragFiles, filepath.Join(s.fragmentDir(), e.Name()))
			}
		}
	}
	sort.Strings(fragFiles)

	for _, path := range fragFiles {
		artists, isArray, ferr := readFragment(path)
		if ferr != nil {
			log.WithError(ferr).WithField("file", path).Warn("skipping unreadable artist fragment")
			continue
		}
		for _, a := range artists {
			merged[a.ID] = a
			sources[a.ID] = fragmentSource{path: path, isArray: isArray}
		}
	}

	var principal []models.Artist
	if err := readJSONOrZero(s.artistsPath(), &principal); err != nil {
		return nil, nil, err
	}
	for _, a := range principal {
		merged[a.ID] = a
		sources[a.ID] = fragmentSource{path: ""}
	}

	return merged, sources, nil
}

func readFragment(path string) ([]models.Artist, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	var list []models.Artist
	if err := json.Unmarshal(data, &list); err == nil {
		return list, true, nil
	}
	var single models.Artist
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, false, fmt.Errorf("fragment %s is neither an artist object nor an array: %w", path, err)
	}
	return []models.Artist{single}, false, nil
}

// ListArtists returns every known artist, principal and fragment-sourced.
func (s *Storage) ListArtists() ([]models.Artist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged, _, err := s.loadAllLocked()
	if err != nil {
		return nil, err
	}
	out := make([]models.Artist, 0, len(merged))
	for _, a := range merged {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetArtist returns a single artist by id.
func (s *Storage) GetArtist(id string) (models.Artist, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged, _, err := s.loadAllLocked()
	if err != nil {
		return models.Artist{}, false, err
	}
	a, ok := merged[id]
	return a, ok, nil
}

// SaveArtist upserts an artist. If the artist was previously sourced from
// a fragment file, that fragment is rewritten in place; otherwise the
// principal document is rewritten.
func (s *Storage) SaveArtist(a models.Artist) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, sources, err := s.loadAllLocked()
	if err != nil {
		return err
	}
	merged[a.ID] = a

	src, existed := sources[a.ID]
	if existed && src.path != "" {
		return s.rewriteFragmentLocked(src, a)
	}

	var principal []models.Artist
	if err := readJSONOrZero(s.artistsPath(), &principal); err != nil {
		return err
	}
	found := false
	for i := range principal {
		if principal[i].ID == a.ID {
			principal[i] = a
			found = true
			break
		}
	}
	if !found {
		principal = append(principal, a)
	}
	return atomicWriteJSON(s.artistsPath(), principal)
}

func (s *Storage) rewriteFragmentLocked(src fragmentSource, updated models.Artist) error {
	artists, isArray, err := readFragment(src.path)
	if err != nil {
		return err
	}
	for i := range artists {
		if artists[i].ID == updated.ID {
			artists[i] = updated
		}
	}
	if isArray {
		return atomicWriteJSON(src.path, artists)
	}
	if len(artists) != 1 {
		return fmt.Errorf("storage: fragment %s expected single-object shape, found %d entries", src.path, len(artists))
	}
	return atomicWriteJSON(src.path, artists[0])
}

// RemoveArtist deletes an artist from whichever document it lives in.
func (s *Storage) RemoveArtist(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, sources, err := s.loadAllLocked()
	if err != nil {
		return err
	}
	src, ok := sources[id]
	if !ok {
		return nil
	}
	if src.path == "" {
		var principal []models.Artist
		if err := readJSONOrZero(s.artistsPath(), &principal); err != nil {
			return err
		}
		out := principal[:0:0]
		for _, a := range principal {
			if a.ID != id {
				out = append(out, a)
			}
		}
		return atomicWriteJSON(s.artistsPath(), out)
	}
	artists, isArray, err := readFragment(src.path)
	if err != nil {
		return err
	}
	if !isArray {
		return os.Remove(src.path)
	}
	out := artists[:0:0]
	for _, a := range artists {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return atomicWriteJSON(src.path, out)
}

// LoadConfig returns the global Config, or a default one if none exists.
func (s *Storage) LoadConfig() (models.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := models.DefaultConfig()
	if err := readJSONOrZero(s.configPath(), &cfg); err != nil {
		return models.Config{}, err
	}
	return cfg, nil
}

// SaveConfig persists the global Config.
func (s *Storage) SaveConfig(cfg models.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return atomicWriteJSON(s.configPath(), cfg)
}

// AppendHistory appends a record to the bounded history log, assigning it
// a fresh id if one was not already set. The log is capped at historyCap
// entries, evicting the oldest first.
func (s *Storage) AppendHistory(rec models.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	var history []models.HistoryRecord
	if err := readJSONOrZero(s.historyPath(), &history); err != nil {
		return err
	}
	history = append(history, rec)
	if len(history) > historyCap {
		history = history[len(history)-historyCap:]
	}
	return atomicWriteJSON(s.historyPath(), history)
}

// RecentHistory returns the n most recent history records, newest last.
func (s *Storage) RecentHistory(n int) ([]models.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var history []models.HistoryRecord
	if err := readJSONOrZero(s.historyPath(), &history); err != nil {
		return nil, err
	}
	if n <= 0 || n >= len(history) {
		return history, nil
	}
	return history[len(history)-n:], nil
}
