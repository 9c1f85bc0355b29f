// Package cache implements the per-artist durable post record: profile,
// ordered post list, and content tri-state, persisted as small JSON
// documents guarded by one mutex shared by every artist's documents
// (mirrors the single coarse mutex storage.Storage uses for its own
// documents).
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/nyxaria/kmfetch/pkg/models"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "cache")

// postRecord is the on-disk shape of a cached post: the remote Post plus
// the local download bookkeeping fields that never travel over the wire.
type postRecord struct {
	models.Post
	Done         bool         `json:"done"`
	FailedFiles  []string     `json:"failed_files,omitempty"`
	ContentState ContentState `json:"content_state"`
}

// Stats summarizes a single artist's cached post set.
type Stats struct {
	Total  int `json:"total"`
	Done   int `json:"done"`
	Pending int `json:"pending"`
	Failed int `json:"failed"`
}

// Cache owns the on-disk per-artist profile and post documents under one
// directory, guarded by a single mutex (file writes are small enough that
// finer-grained locking buys nothing, matching storage.Storage's choice).
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New returns a Cache rooted at dir, creating it if necessary.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) profilePath(artistID string) string {
	return filepath.Join(c.dir, artistID+"_profile.json")
}

func (c *Cache) postsPath(artistID string) string {
	return filepath.Join(c.dir, artistID+"_posts.json")
}

// atomicWriteJSON writes v to path via a temp-file-plus-rename, matching
// the teacher's per-file atomic-write discipline in internal/storage.
func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: marshal: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("cache: write temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cache: rename: %w", err)
	}
	return nil
}

func readJSON(path string, v interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: read: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("cache: decode %s: %w", path, err)
	}
	return true, nil
}

// LoadProfile returns the cached profile for an artist, or the zero value
// and false if none has been fetched yet.
func (c *Cache) LoadProfile(artistID string) (models.Profile, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var p models.Profile
	ok, err := readJSON(c.profilePath(artistID), &p)
	return p, ok, err
}

// SaveProfile persists the profile for an artist.
func (c *Cache) SaveProfile(artistID string, p models.Profile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return atomicWriteJSON(c.profilePath(artistID), p)
}

// LoadPosts returns the cached post list for an artist in on-disk order.
func (c *Cache) LoadPosts(artistID string) ([]models.Post, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	recs, err := c.loadRecordsLocked(artistID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Post, len(recs))
	for i, r := range recs {
		out[i] = r.Post
	}
	return out, nil
}

func (c *Cache) loadRecordsLocked(artistID string) ([]postRecord, error) {
	var recs []postRecord
	if _, err := readJSON(c.postsPath(artistID), &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *Cache) saveRecordsLocked(artistID string, recs []postRecord) error {
	return atomicWriteJSON(c.postsPath(artistID), recs)
}

// SavePosts overwrites the cached post list wholesale, marking every post
// undone. Callers that want to preserve done/failed_files state across a
// remote refresh should use MergePosts instead.
func (c *Cache) SavePosts(artistID string, posts []models.Post) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	recs := make([]postRecord, len(posts))
	for i, p := range posts {
		recs[i] = postRecord{Post: p}
	}
	return c.saveRecordsLocked(artistID, recs)
}

// MergePosts reconciles a freshly-fetched remote post list against the
// cached one: existing posts (matched by id) keep their Done/FailedFiles/
// ContentState and take the remote Post fields; newly-seen posts are added
// as not-done, except that when the artist had no cached posts, a post
// published at or before newArtistWatermark is added as done. The merged
// list follows remote order, and cached posts missing from remote are
// dropped. wasEmpty reports whether the artist had no cached posts before
// this merge.
func (c *Cache) MergePosts(artistID string, remote []models.Post, newArtistWatermark *time.Time) (wasEmpty bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, err := c.loadRecordsLocked(artistID)
	if err != nil {
		return false, err
	}
	wasEmpty = len(existing) == 0

	byID := make(map[string]postRecord, len(existing))
	for _, r := range existing {
		byID[r.ID] = r
	}

	merged := make([]postRecord, 0, len(remote))
	for _, p := range remote {
		if old, ok := byID[p.ID]; ok {
			old.Post = p
			merged = append(merged, old)
			continue
		}
		rec := postRecord{Post: p, Done: false}
		if wasEmpty && newArtistWatermark != nil && !p.Published.After(*newArtistWatermark) {
			rec.Done = true
		}
		merged = append(merged, rec)
	}
	return wasEmpty, c.saveRecordsLocked(artistID, merged)
}

// GetContentState returns the cached content tri-state for one post, or
// ContentUnset if the post has never had its content fetched.
func (c *Cache) GetContentState(artistID, postID string) (ContentState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	recs, err := c.loadRecordsLocked(artistID)
	if err != nil {
		return ContentUnset, err
	}
	for _, r := range recs {
		if r.ID == postID {
			return r.ContentState, nil
		}
	}
	return ContentUnset, nil
}

// UpdatePost sets the done flag, failed-files list, and optionally the
// content state for one post.
func (c *Cache) UpdatePost(artistID, postID string, done bool, failedFiles []string, content *ContentState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	recs, err := c.loadRecordsLocked(artistID)
	if err != nil {
		return err
	}
	found := false
	for i := range recs {
		if recs[i].ID != postID {
			continue
		}
		recs[i].Done = done
		recs[i].FailedFiles = failedFiles
		if content != nil {
			recs[i].ContentState = *content
		}
		found = true
		break
	}
	if !found {
		return fmt.Errorf("cache: update_post: post %s not found for artist %s", postID, artistID)
	}
	return c.saveRecordsLocked(artistID, recs)
}

// ResetPost clears done/failed_files for a single post so it is re-fetched.
func (c *Cache) ResetPost(artistID, postID string) error {
	return c.UpdatePost(artistID, postID, false, nil, nil)
}

// GetUndone returns posts that are not done or still carry failed files.
func (c *Cache) GetUndone(artistID string) ([]models.Post, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	recs, err := c.loadRecordsLocked(artistID)
	if err != nil {
		return nil, err
	}
	var out []models.Post
	for _, r := range recs {
		if !r.Done || len(r.FailedFiles) > 0 {
			out = append(out, r.Post)
		}
	}
	return out, nil
}

// ResetAfterDate resets every post (date == nil) or every post published
// strictly after date, so the next run re-downloads it.
func (c *Cache) ResetAfterDate(artistID string, date *time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	recs, err := c.loadRecordsLocked(artistID)
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range recs {
		if date == nil || recs[i].Published.After(*date) {
			recs[i].Done = false
			recs[i].FailedFiles = nil
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return n, c.saveRecordsLocked(artistID, recs)
}

// HasNew reports whether the remote reports more posts than are cached.
func (c *Cache) HasNew(artistID string, remoteCount int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	recs, err := c.loadRecordsLocked(artistID)
	if err != nil {
		return false, err
	}
	return remoteCount > len(recs), nil
}

// DeduplicatePosts drops later duplicates by id, keeping the first
// occurrence and its position, and returns the number removed.
func (c *Cache) DeduplicatePosts(artistID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	recs, err := c.loadRecordsLocked(artistID)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(recs))
	out := recs[:0:0]
	removed := 0
	for _, r := range recs {
		if seen[r.ID] {
			removed++
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	if removed == 0 {
		return 0, nil
	}
	if err := c.saveRecordsLocked(artistID, out); err != nil {
		return 0, err
	}
	return removed, nil
}

// FullUpdate is one post's refreshed remote content, as fetched by
// update_posts_full.
type FullUpdate struct {
	Post          models.Post
	FilesChanged  bool
}

// ApplyFullUpdates overwrites the named posts' content/file/attachments
// with the fetched remote copy, clearing done when FilesChanged is set, in
// a single batched persist (§4.5.3's "saves are batched at the end").
func (c *Cache) ApplyFullUpdates(artistID string, updates map[string]FullUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	recs, err := c.loadRecordsLocked(artistID)
	if err != nil {
		return err
	}
	changed := false
	for i := range recs {
		u, ok := updates[recs[i].ID]
		if !ok {
			continue
		}
		recs[i].Post = u.Post
		if u.FilesChanged {
			recs[i].Done = false
		}
		changed = true
	}
	if !changed {
		return nil
	}
	return c.saveRecordsLocked(artistID, recs)
}

// StatsFor computes the {total, done, pending, failed} summary for an artist.
func (c *Cache) StatsFor(artistID string) (Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	recs, err := c.loadRecordsLocked(artistID)
	if err != nil {
		return Stats{}, err
	}
	s := Stats{Total: len(recs)}
	for _, r := range recs {
		switch {
		case r.Done:
			s.Done++
		case len(r.FailedFiles) > 0:
			s.Failed++
		default:
			s.Pending++
		}
	}
	return s, nil
}

// SortByPublished returns posts ordered ascending by Published, used by
// watermark recomputation (it never mutates the cache itself).
func SortByPublished(posts []models.Post) []models.Post {
	out := make([]models.Post, len(posts))
	copy(out, posts)
	sort.Slice(out, func(i, j int) bool { return out[i].Published.Before(out[j].Published) })
	return out
}
