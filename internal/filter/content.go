// Package filter evaluates the declarative post filter (§4.6 C9): a set of
// named predicates, all of which must hold (AND across keys), with absent
// keys never constraining. Adapted from the teacher's ContentFilter, which
// used the same "construct from config, then one AND-combined Should*
// method" shape for HTTP-response-level filtering; here the predicates are
// post-level instead of response-level.
package filter

import (
	"strings"

	"github.com/nyxaria/kmfetch/pkg/models"
)

// PostFilter evaluates a compiled models.FilterConfig against posts.
type PostFilter struct {
	cfg models.FilterConfig
}

// New compiles a PostFilter from its declarative configuration.
func New(cfg models.FilterConfig) *PostFilter {
	return &PostFilter{cfg: cfg}
}

// Merge combines a global filter with an artist-level override: the
// artist's value wins key-by-key (a non-zero artist field replaces the
// global one; zero-value fields inherit the global setting), per §4.5.1
// step 4 ("global filter merged with artist filter, artist wins
// key-by-key").
func Merge(global, artist models.FilterConfig) models.FilterConfig {
	out := global
	if len(artist.IncludeKeywords) > 0 {
		out.IncludeKeywords = artist.IncludeKeywords
	}
	if len(artist.ExcludeKeywords) > 0 {
		out.ExcludeKeywords = artist.ExcludeKeywords
	}
	if artist.RequireAllKeywords {
		out.RequireAllKeywords = artist.RequireAllKeywords
	}
	if artist.RequireFiles {
		out.RequireFiles = artist.RequireFiles
	}
	if artist.RequireAttachments {
		out.RequireAttachments = artist.RequireAttachments
	}
	if artist.PublishedAfter != nil {
		out.PublishedAfter = artist.PublishedAfter
	}
	if artist.PublishedBefore != nil {
		out.PublishedBefore = artist.PublishedBefore
	}
	return out
}

// Passes reports whether post satisfies every configured predicate.
func (f *PostFilter) Passes(p models.Post) bool {
	if f == nil || f.cfg.IsZero() {
		return true
	}
	haystack := strings.ToLower(p.Title + " " + p.Content)

	if len(f.cfg.IncludeKeywords) > 0 && !containsAny(haystack, f.cfg.IncludeKeywords) {
		return false
	}
	if len(f.cfg.ExcludeKeywords) > 0 && containsAny(haystack, f.cfg.ExcludeKeywords) {
		return false
	}
	if f.cfg.RequireAllKeywords && len(f.cfg.IncludeKeywords) > 0 && !containsAll(haystack, f.cfg.IncludeKeywords) {
		return false
	}
	if f.cfg.RequireFiles && !p.HasFiles() {
		return false
	}
	if f.cfg.RequireAttachments && len(p.Attachments) == 0 {
		return false
	}
	published := datePrefix(p.Published)
	if f.cfg.PublishedAfter != nil && published <= datePrefix(*f.cfg.PublishedAfter) {
		return false
	}
	if f.cfg.PublishedBefore != nil && published >= datePrefix(*f.cfg.PublishedBefore) {
		return false
	}
	return true
}

func datePrefix(t interface{ Format(string) string }) string {
	return t.Format("2006-01-02")
}

func containsAny(haystack string, keywords []string) bool {
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func containsAll(haystack string, keywords []string) bool {
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if !strings.Contains(haystack, strings.ToLower(k)) {
			return false
		}
	}
	return true
}
