package models

import (
	"encoding/json"
	"time"
)

// FileRef identifies a single downloadable attachment on a post, either the
// post's primary "file" or one of its "attachments".
type FileRef struct {
	Name string `json:"name"`
	Path string `json:"path"` // remote path/URL as reported by the source
}

// Post is a single content item belonging to an Artist.
type Post struct {
	ID          string          `json:"id"`
	ArtistID    string          `json:"artist_id"`
	User        string          `json:"user"`
	Service     string          `json:"service"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Added       string          `json:"added,omitempty"` // raw remote timestamp, never reparsed
	Published   time.Time       `json:"published"`
	Edited      *time.Time      `json:"edited,omitempty"`
	File        *FileRef        `json:"file,omitempty"`
	Attachments []FileRef       `json:"attachments,omitempty"`
	Embed       json.RawMessage `json:"embed,omitempty"`       // opaque pass-through, never interpreted
	SharedFile  json.RawMessage `json:"shared_file,omitempty"` // opaque pass-through, never interpreted
}

// HasFiles reports whether the post carries any downloadable content.
func (p Post) HasFiles() bool {
	return p.File != nil || len(p.Attachments) > 0
}

// AllFiles returns the primary file (if any) followed by attachments, in
// the fixed order used for deterministic naming (§4.5.7).
func (p Post) AllFiles() []FileRef {
	out := make([]FileRef, 0, len(p.Attachments)+1)
	if p.File != nil {
		out = append(out, *p.File)
	}
	out = append(out, p.Attachments...)
	return out
}

// Profile is the artist-level metadata reported by the remote source,
// distinct from the locally-tracked Artist record.
type Profile struct {
	ArtistID string `json:"artist_id"`
	Name     string `json:"name"`
	Service  string `json:"service"`
	Indexed  time.Time `json:"indexed"`
	PostCount int `json:"post_count"`
}
