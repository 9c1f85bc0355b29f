package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nyxaria/kmfetch/pkg/models"
)

func TestStorage_SaveAndGetArtist(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	a := models.Artist{ID: "patreon_1", Service: "patreon", UserID: "1", Name: "Example"}
	if err := s.SaveArtist(a); err != nil {
		t.Fatalf("SaveArtist() error = %v", err)
	}
	got, ok, err := s.GetArtist("patreon_1")
	if err != nil || !ok {
		t.Fatalf("GetArtist() = %v, %v, %v", got, ok, err)
	}
	if got.Name != "Example" {
		t.Errorf("Name = %q, want %q", got.Name, "Example")
	}
}

func TestStorage_FragmentMergeAndInPlaceUpdate(t *testing.T) {
	dir := t.TempDir()
	fragPath := filepath.Join(dir, "artists", "imported.json")
	if err := os.MkdirAll(filepath.Join(dir, "artists"), 0o755); err != nil {
		t.Fatal(err)
	}
	frag := `[{"id":"fanbox_2","service":"fanbox","user_id":"2","name":"Fragmented"}]`
	if err := os.WriteFile(fragPath, []byte(frag), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	a, ok, err := s.GetArtist("fanbox_2")
	if err != nil || !ok {
		t.Fatalf("expected fragment-sourced artist to be visible, got ok=%v err=%v", ok, err)
	}
	a.Name = "Renamed"
	if err := s.SaveArtist(a); err != nil {
		t.Fatalf("SaveArtist() error = %v", err)
	}

	// The principal document must stay empty; the fragment must be updated in place.
	principalData, _ := os.ReadFile(filepath.Join(dir, "artists.json"))
	if len(principalData) != 0 {
		var principal []models.Artist
		_ = principalData
		if err := readJSONOrZero(filepath.Join(dir, "artists.json"), &principal); err == nil && len(principal) != 0 {
			t.Errorf("expected principal document to remain empty, found %d entries", len(principal))
		}
	}
	updatedFrag, err := os.ReadFile(fragPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(updatedFrag), "Renamed") {
		t.Errorf("expected fragment file to contain updated name, got %s", updatedFrag)
	}
}

func TestStorage_AppendAndRecentHistory(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if err := s.AppendHistory(models.HistoryRecord{Command: "queue_manual", Success: true}); err != nil {
			t.Fatalf("AppendHistory() error = %v", err)
		}
	}
	recent, err := s.RecentHistory(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Errorf("RecentHistory(2) returned %d records, want 2", len(recent))
	}
}

func TestStorage_ConfigDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := s.LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxConcurrentArtists == 0 {
		t.Error("expected default config to have a nonzero MaxConcurrentArtists")
	}
}
