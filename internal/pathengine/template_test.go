package pathengine

import (
	"strings"
	"testing"
	"time"
)

func TestFormatPostFolder_SanitizesValueBeforeInterpolation(t *testing.T) {
	e := New()
	got := e.FormatPostFolder(PostParams{
		ID:      "1",
		User:    "1",
		Service: "patreon",
		Title:   "../../etc/passwd",
	}, "{service}/{title}", "")

	if strings.Count(got, "/") != 1 {
		t.Fatalf("title traversal produced a nested path, got %q", got)
	}
	want := "patreon/／..／etc／passwd"
	if got != want {
		t.Fatalf("FormatPostFolder = %q, want %q", got, want)
	}
}

func TestFormatArtistFolder_AliasFallsBackToName(t *testing.T) {
	e := New()
	got := e.FormatArtistFolder(ArtistParams{Service: "patreon", Name: "artist", UserID: "1"}, "{service}_{alias}")
	if got != "patreon_artist" {
		t.Fatalf("FormatArtistFolder = %q, want patreon_artist", got)
	}
}

func TestFormatArtistFolder_LastDateTruncatedToDate(t *testing.T) {
	e := New()
	last := time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)
	got := e.FormatArtistFolder(ArtistParams{Service: "patreon", Name: "artist", UserID: "1", LastDate: last}, "{last_date}")
	if got != "2024-06-01" {
		t.Fatalf("FormatArtistFolder = %q, want 2024-06-01", got)
	}
}

func TestFormatArtistFolder_AppliesRewriteHook(t *testing.T) {
	e := New()
	e.Hooks.RewriteArtist = func(p ArtistParams) ArtistParams {
		p.Name = "overridden"
		return p
	}
	got := e.FormatArtistFolder(ArtistParams{Service: "patreon", Name: "original", UserID: "1"}, "{name}")
	if got != "overridden" {
		t.Fatalf("FormatArtistFolder = %q, want overridden", got)
	}
}

func TestFormatPostFolder_PublishedDefaultsFormatWhenEmpty(t *testing.T) {
	e := New()
	published := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	got := e.FormatPostFolder(PostParams{ID: "1", Published: published}, "{published}", "")
	if got != "2024-06-01" {
		t.Fatalf("FormatPostFolder = %q, want 2024-06-01", got)
	}
}

func TestFormatPostFolder_UnknownWhenPublishedZero(t *testing.T) {
	e := New()
	got := e.FormatPostFolder(PostParams{ID: "1"}, "{published}", "2006-01-02")
	if got != "unknown" {
		t.Fatalf("FormatPostFolder = %q, want unknown", got)
	}
}

func TestFormatFileName_AppendsOriginalExtensionWhenMissing(t *testing.T) {
	e := New()
	got := e.FormatFileName(FileParams{Idx: 0, Name: "cover", Filename: "cover.png"}, "{name}")
	if got != "cover.png" {
		t.Fatalf("FormatFileName = %q, want cover.png", got)
	}
}

func TestFormatFileName_KeepsTemplateExtension(t *testing.T) {
	e := New()
	got := e.FormatFileName(FileParams{Idx: 2, Name: "cover", Filename: "cover.png"}, "{index}_{name}.jpg")
	if got != "002_cover.jpg" {
		t.Fatalf("FormatFileName = %q, want 002_cover.jpg", got)
	}
}

func TestFormatFilesNames_RenameImagesOnlySkipsNonImages(t *testing.T) {
	e := New()
	originals := []OriginalFile{
		{Name: "readme.txt", Ext: ".txt"},
		{Name: "a.png", Ext: ".png"},
		{Name: "b.png", Ext: ".png"},
	}
	imageExt := map[string]bool{".png": true}
	got := e.FormatFilesNames(originals, "{index}_{name}", true, imageExt)

	if got[0] != "readme.txt" {
		t.Fatalf("non-image name = %q, want passthrough readme.txt", got[0])
	}
	if got[1] != "000_a.png" || got[2] != "001_b.png" {
		t.Fatalf("image indices = %v, want 000_a.png/001_b.png", got[1:])
	}
}
