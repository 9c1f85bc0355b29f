package models

import "time"

// FilterConfig is the declarative, serializable shape of a post filter
// (§4.6 C9 Filters). internal/filter compiles this into AND-combined
// predicates; Artist.Filter and Config.Filter both use this type, and
// filter.Merge lets each non-zero artist-level field replace the global one.
type FilterConfig struct {
	IncludeKeywords  []string   `json:"include_keywords,omitempty"`
	ExcludeKeywords  []string   `json:"exclude_keywords,omitempty"`
	RequireAllKeywords bool     `json:"require_all_keywords,omitempty"`
	RequireFiles     bool       `json:"require_files,omitempty"`
	RequireAttachments bool     `json:"require_attachments,omitempty"`
	PublishedAfter   *time.Time `json:"published_after,omitempty"`
	PublishedBefore  *time.Time `json:"published_before,omitempty"`
}

// IsZero reports whether the filter has no constraints configured.
func (f FilterConfig) IsZero() bool {
	return len(f.IncludeKeywords) == 0 && len(f.ExcludeKeywords) == 0 &&
		!f.RequireFiles && !f.RequireAttachments &&
		f.PublishedAfter == nil && f.PublishedBefore == nil
}
