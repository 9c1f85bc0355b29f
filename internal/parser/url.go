// Package parser holds small URL utilities used by the HTTP client for
// logging and diagnostics. The teacher's batch-file URL
// list parsing (ParseURLsFromFile, ParseURLsFromStdin) and its filename-
// synthesis helpers are dropped here — this module's local filenames come
// from rendered path templates (internal/pathengine.Sanitize), not from
// guessing at a URL's basename, and artists are enqueued by id over the
// command shell rather than read from a URL list file. See DESIGN.md.
package parser

import (
	"net/url"
)

// HostnameFromURL extracts the hostname (with port, if present) from a
// URL, for use as a structured-logging field alongside artist/post/task
// ids. Returns "unknown" for an unparsable or host-less URL.
func HostnameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	if parsed.Host == "" {
		return "unknown"
	}
	return parsed.Host
}

// PathFromURL extracts the path component from a URL. Returns "" for an
// unparsable or host-less URL.
func PathFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return parsed.Path
}
