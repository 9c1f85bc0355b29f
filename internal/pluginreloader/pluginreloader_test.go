package pluginreloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nyxaria/kmfetch/internal/pathengine"
)

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hooks.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLookup_MissingFileIsNotFoundNotFatal(t *testing.T) {
	loader := New(filepath.Join(t.TempDir(), "does-not-exist.json"))
	_, err := loader.Lookup("anything")
	if _, ok := err.(*NotFoundError); !ok {
		t.Fatalf("expected *NotFoundError for a missing file, got %v", err)
	}
}

func TestLookup_MissingKeyIsNotFound(t *testing.T) {
	path := writeSource(t, `{"other": {"field": "name"}}`)
	loader := New(path)
	_, err := loader.Lookup("rewrite_artist")
	if _, ok := err.(*NotFoundError); !ok {
		t.Fatalf("expected *NotFoundError for an absent key, got %v", err)
	}
}

func TestLookup_PicksUpEditWithoutRestart(t *testing.T) {
	path := writeSource(t, `{"greeting": "hello"}`)
	loader := New(path)

	var first string
	if err := loader.LookupInto("greeting", &first); err != nil || first != "hello" {
		t.Fatalf("expected %q, got %q err=%v", "hello", first, err)
	}

	if err := os.WriteFile(path, []byte(`{"greeting": "goodbye"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	var second string
	if err := loader.LookupInto("greeting", &second); err != nil || second != "goodbye" {
		t.Fatalf("expected the edited value %q on the very next lookup, got %q err=%v", "goodbye", second, err)
	}
}

func TestWireHooks_AppliesArtistNameRewrite(t *testing.T) {
	path := writeSource(t, `{"rewrite_artist": {"field": "name", "find": "_", "replace": " "}}`)
	loader := New(path)
	hooks := WireHooks(loader, DefaultHookNames)

	out := hooks.RewriteArtist(pathengine.ArtistParams{Name: "jane_doe"})
	if out.Name != "jane doe" {
		t.Errorf("expected rewritten name %q, got %q", "jane doe", out.Name)
	}
}

func TestWireHooks_MissingEntryLeavesParamsUnchanged(t *testing.T) {
	path := writeSource(t, `{}`)
	loader := New(path)
	hooks := WireHooks(loader, DefaultHookNames)

	out := hooks.RewriteArtist(pathengine.ArtistParams{Name: "jane_doe"})
	if out.Name != "jane_doe" {
		t.Errorf("expected unchanged name when no hook is defined, got %q", out.Name)
	}
}
