// Package pluginreloader is the file-path-addressed loader spec §4.10
// describes: it re-reads its source file on every Lookup and hands back
// the named entry, so editing the file picks up immediately with no
// restart. Grounded on internal/watcher.FileWatcher's "open, read,
// compare" shape, generalized from hash-polling for change detection to
// unconditional re-read-per-lookup, since the spec calls for picking up
// an edit on the very next lookup rather than on the next poll tick.
package pluginreloader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "pluginreloader")

// NotFoundError is the "not found / not callable" condition the spec
// requires callers to translate into a user-visible warning, never a
// fatal error.
type NotFoundError struct {
	Name string
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pluginreloader: %q not found or not callable in %s", e.Name, e.Path)
}

// Loader re-reads a JSON document of named entries from path on every
// Lookup. Each entry may be any JSON value; callers unmarshal it into
// whatever shape they expect (a path-rewrite rule, a shell command spec).
type Loader struct {
	path string
}

// New returns a Loader reading from path. The file need not exist yet —
// a missing file behaves as if it defined no entries.
func New(path string) *Loader {
	return &Loader{path: path}
}

// Lookup re-reads path and returns the raw JSON for name, or a
// *NotFoundError if the file is missing, malformed, or lacks the key.
func (l *Loader) Lookup(name string) (json.RawMessage, error) {
	entries, err := l.readAll()
	if err != nil {
		log.WithError(err).WithField("path", l.path).Warn("pluginreloader: failed to read source file")
		return nil, &NotFoundError{Name: name, Path: l.path}
	}
	raw, ok := entries[name]
	if !ok {
		return nil, &NotFoundError{Name: name, Path: l.path}
	}
	return raw, nil
}

// LookupInto looks up name and unmarshals it into out.
func (l *Loader) LookupInto(name string, out interface{}) error {
	raw, err := l.Lookup(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &NotFoundError{Name: name, Path: l.path}
	}
	return nil
}

func (l *Loader) readAll() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
