package downloader

import (
	"net/url"
	"strings"

	"github.com/nyxaria/kmfetch/pkg/models"
)

// extractedFile is one resolved, downloadable URL taken off a post (§4.5.7).
type extractedFile struct {
	URL  string
	Name string
}

// extractFiles resolves a post's file list against baseURL: the principal
// file first (name falls back to "file"), then attachments (name falls
// back to "attachment"), dropping any entry whose resolved URL is empty.
// A path is treated as relative, and prefixed with baseURL, whenever it
// fails to parse as an absolute URL with its own scheme.
func extractFiles(baseURL string, post models.Post) []extractedFile {
	var out []extractedFile
	refs := post.AllFiles()
	for i, ref := range refs {
		if ref.Path == "" {
			continue
		}
		name := ref.Name
		if name == "" {
			if i == 0 && post.File != nil && ref == *post.File {
				name = "file"
			} else {
				name = "attachment"
			}
		}
		out = append(out, extractedFile{URL: resolveURL(baseURL, ref.Path), Name: name})
	}
	return out
}

// resolveURL prepends baseURL to path when path has no scheme of its own.
func resolveURL(baseURL, path string) string {
	if isAbsoluteURL(path) {
		return path
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
	}
	ref, err := url.Parse(path)
	if err != nil {
		return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
	}
	return base.ResolveReference(ref).String()
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}
