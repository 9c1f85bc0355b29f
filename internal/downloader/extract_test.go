package downloader

import (
	"testing"

	"github.com/nyxaria/kmfetch/pkg/models"
)

func TestExtractFiles_PrincipalFirstThenAttachments(t *testing.T) {
	post := models.Post{
		File:        &models.FileRef{Name: "main.png", Path: "/data/main.png"},
		Attachments: []models.FileRef{{Name: "", Path: "/data/extra.zip"}, {Path: ""}},
	}
	files := extractFiles("https://example.test", post)
	if len(files) != 2 {
		t.Fatalf("expected empty-path attachment dropped, got %d: %+v", len(files), files)
	}
	if files[0].Name != "main.png" || files[0].URL != "https://example.test/data/main.png" {
		t.Errorf("unexpected principal file: %+v", files[0])
	}
	if files[1].Name != "attachment" {
		t.Errorf("expected nameless attachment to fall back to %q, got %q", "attachment", files[1].Name)
	}
}

func TestExtractFiles_AbsoluteURLPassesThrough(t *testing.T) {
	post := models.Post{File: &models.FileRef{Name: "f.png", Path: "https://cdn.example/f.png"}}
	files := extractFiles("https://example.test", post)
	if len(files) != 1 || files[0].URL != "https://cdn.example/f.png" {
		t.Errorf("expected absolute URL to pass through unchanged, got %+v", files)
	}
}

func TestExtractFiles_NoFilesYieldsEmpty(t *testing.T) {
	files := extractFiles("https://example.test", models.Post{})
	if len(files) != 0 {
		t.Errorf("expected no files, got %+v", files)
	}
}
