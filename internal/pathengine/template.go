// Package pathengine renders artist-folder, post-folder, and file-name
// path components from templates, sanitizing every substituted value so
// the result is always a legal path component (§4.3).
package pathengine

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ArtistParams is the substitution set for format_artist_folder.
type ArtistParams struct {
	Service  string
	Name     string
	Alias    string
	UserID   string
	LastDate time.Time
}

// PostParams is the substitution set for format_post_folder.
type PostParams struct {
	ID        string
	User      string
	Service   string
	Title     string
	Published time.Time
}

// FileParams is the substitution set for format_file_name.
type FileParams struct {
	Idx      int // zero-padded width-3 index, rendered as "index"
	Name     string
	Filename string
}

// Hooks are the statically-typed stand-ins for the dynamic plugin-reload
// points the Design Notes call for: rather than loading code by name at
// call time, each is a configurable function value the caller installs
// once (typically wired from internal/pluginreloader), left nil to mean
// "no override".
type Hooks struct {
	RewriteArtist func(ArtistParams) ArtistParams
	RewritePost   func(PostParams) PostParams
	RewriteFile   func(FileParams) FileParams
}

// Engine renders path components from templates using an optional set of
// plugin hooks.
type Engine struct {
	Hooks Hooks
}

// New returns an Engine with no hooks installed.
func New() *Engine { return &Engine{} }

// FormatArtistFolder substitutes {service, name, alias, user_id, last_date}
// into template. If alias is empty it falls back to name; last_date is
// truncated to its date prefix.
func (e *Engine) FormatArtistFolder(p ArtistParams, template string) string {
	if e.Hooks.RewriteArtist != nil {
		p = e.Hooks.RewriteArtist(p)
	}
	alias := p.Alias
	if alias == "" {
		alias = p.Name
	}
	lastDate := ""
	if !p.LastDate.IsZero() {
		lastDate = p.LastDate.Format("2006-01-02")
	}
	return substitute(template, map[string]string{
		"service":   Sanitize(p.Service),
		"name":      Sanitize(p.Name),
		"alias":     Sanitize(alias),
		"user_id":   Sanitize(p.UserID),
		"last_date": Sanitize(lastDate),
	})
}

// FormatPostFolder substitutes {id, user, service, title, published} into
// template. published is formatted with dateFormat ("2006-01-02" when
// empty); a zero time renders as "unknown". published arrives already
// parsed, so no text is reparsed here.
func (e *Engine) FormatPostFolder(p PostParams, template, dateFormat string) string {
	if e.Hooks.RewritePost != nil {
		p = e.Hooks.RewritePost(p)
	}
	published := formatPublished(p.Published, dateFormat)
	return substitute(template, map[string]string{
		"id":        Sanitize(p.ID),
		"user":      Sanitize(p.User),
		"service":   Sanitize(p.Service),
		"title":     Sanitize(p.Title),
		"published": Sanitize(published),
	})
}

func formatPublished(t time.Time, dateFormat string) string {
	if t.IsZero() {
		return "unknown"
	}
	raw := t.Format(time.RFC3339)
	if dateFormat == "" {
		dateFormat = "2006-01-02"
	}
	formatted := t.Format(dateFormat)
	if formatted != "" {
		return formatted
	}
	if len(raw) > 10 {
		return raw[:10]
	}
	return raw
}

// FormatFileName substitutes {idx, index, name, filename} into template.
// If the rendered name lacks an extension and the original filename has
// one, the original extension is appended.
func (e *Engine) FormatFileName(p FileParams, template string) string {
	if e.Hooks.RewriteFile != nil {
		p = e.Hooks.RewriteFile(p)
	}
	out := substitute(template, map[string]string{
		"idx":      strconv.Itoa(p.Idx),
		"index":    fmt.Sprintf("%03d", p.Idx),
		"name":     p.Name,
		"filename": p.Filename,
	})
	rendered := Sanitize(out)
	if filepath.Ext(rendered) == "" {
		if origExt := filepath.Ext(p.Filename); origExt != "" {
			rendered += origExt
		}
	}
	return rendered
}

// OriginalFile is one input to FormatFilesNames: the name as reported by
// the source and the extension used for the image-only check.
type OriginalFile struct {
	Name string
	Ext  string // lowercase, including the leading dot, e.g. ".png"
}

// FormatFilesNames drives per-file naming with two counters: a global
// index i and an image-only index j. When renameImagesOnly is set and a
// file's extension is not in imageExtensions, the sanitized original name
// passes through unchanged; otherwise the file is rendered through
// template using j (image-only mode, image file) or i (otherwise). j only
// advances for image files.
func (e *Engine) FormatFilesNames(originals []OriginalFile, template string, renameImagesOnly bool, imageExtensions map[string]bool) []string {
	out := make([]string, len(originals))
	i, j := 0, 0
	for idx, f := range originals {
		isImage := imageExtensions[strings.ToLower(f.Ext)]
		if renameImagesOnly && !isImage {
			out[idx] = Sanitize(f.Name)
			i++
			continue
		}
		useIdx := i
		if renameImagesOnly && isImage {
			useIdx = j
		}
		out[idx] = e.FormatFileName(FileParams{Idx: useIdx, Name: f.Name, Filename: f.Name}, template)
		i++
		if isImage {
			j++
		}
	}
	return out
}

func substitute(template string, values map[string]string) string {
	out := template
	for k, v := range values {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}
