package filter

import (
	"testing"
	"time"

	"github.com/nyxaria/kmfetch/pkg/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestPostFilter_Keywords(t *testing.T) {
	tests := []struct {
		name string
		cfg  models.FilterConfig
		post models.Post
		want bool
	}{
		{
			name: "include keyword present",
			cfg:  models.FilterConfig{IncludeKeywords: []string{"art"}},
			post: models.Post{Title: "New Artwork"},
			want: true,
		},
		{
			name: "include keyword absent",
			cfg:  models.FilterConfig{IncludeKeywords: []string{"sculpture"}},
			post: models.Post{Title: "New Artwork"},
			want: false,
		},
		{
			name: "exclude keyword present drops post",
			cfg:  models.FilterConfig{ExcludeKeywords: []string{"wip"}},
			post: models.Post{Title: "WIP sketch"},
			want: false,
		},
		{
			name: "require all keywords, only one present",
			cfg:  models.FilterConfig{IncludeKeywords: []string{"art", "sketch"}, RequireAllKeywords: true},
			post: models.Post{Title: "art piece"},
			want: false,
		},
		{
			name: "require all keywords, both present",
			cfg:  models.FilterConfig{IncludeKeywords: []string{"art", "sketch"}, RequireAllKeywords: true},
			post: models.Post{Title: "art sketch"},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.cfg)
			if got := f.Passes(tt.post); got != tt.want {
				t.Errorf("Passes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPostFilter_RequireFilesAndAttachments(t *testing.T) {
	withFile := models.Post{File: &models.FileRef{Name: "a.png", Path: "/a.png"}}
	empty := models.Post{}
	withAttachment := models.Post{Attachments: []models.FileRef{{Name: "b.png", Path: "/b.png"}}}

	f := New(models.FilterConfig{RequireFiles: true})
	if !f.Passes(withFile) {
		t.Error("expected post with file to pass require_files")
	}
	if f.Passes(empty) {
		t.Error("expected empty post to fail require_files")
	}

	f2 := New(models.FilterConfig{RequireAttachments: true})
	if f2.Passes(withFile) {
		t.Error("expected file-only post to fail require_attachments")
	}
	if !f2.Passes(withAttachment) {
		t.Error("expected post with attachment to pass require_attachments")
	}
}

func TestPostFilter_PublishedRange(t *testing.T) {
	after := day("2024-06-01")
	before := day("2024-07-01")
	f := New(models.FilterConfig{PublishedAfter: &after, PublishedBefore: &before})

	tests := []struct {
		name string
		post models.Post
		want bool
	}{
		{"before range", models.Post{Published: day("2024-05-01")}, false},
		{"in range", models.Post{Published: day("2024-06-15")}, true},
		{"after range", models.Post{Published: day("2024-07-15")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Passes(tt.post); got != tt.want {
				t.Errorf("Passes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPostFilter_ZeroConfigPassesEverything(t *testing.T) {
	f := New(models.FilterConfig{})
	if !f.Passes(models.Post{}) {
		t.Error("zero-value filter should not constrain anything")
	}
}

func TestMerge_ArtistOverridesGlobalKeyByKey(t *testing.T) {
	global := models.FilterConfig{
		IncludeKeywords: []string{"global"},
		RequireFiles:    true,
	}
	artist := models.FilterConfig{
		ExcludeKeywords: []string{"skip-me"},
	}
	merged := Merge(global, artist)
	if len(merged.IncludeKeywords) != 1 || merged.IncludeKeywords[0] != "global" {
		t.Errorf("expected global include_keywords to survive, got %v", merged.IncludeKeywords)
	}
	if !merged.RequireFiles {
		t.Error("expected global require_files to survive merge")
	}
	if len(merged.ExcludeKeywords) != 1 || merged.ExcludeKeywords[0] != "skip-me" {
		t.Errorf("expected artist exclude_keywords to apply, got %v", merged.ExcludeKeywords)
	}
}
