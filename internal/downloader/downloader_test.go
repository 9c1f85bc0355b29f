package downloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nyxaria/kmfetch/internal/cache"
	"github.com/nyxaria/kmfetch/internal/httpclient"
	"github.com/nyxaria/kmfetch/internal/pathengine"
	"github.com/nyxaria/kmfetch/internal/storage"
	"github.com/nyxaria/kmfetch/pkg/models"
)

// fakeRemote is an in-memory RemoteClient stand-in so the pipeline can be
// exercised without a real HTTP session.
type fakeRemote struct {
	profile    models.Profile
	allPosts   []models.Post
	postsByID  map[string]models.Post
	base       string
	downloaded []string
	failURLs   map[string]bool
}

func newFakeRemote(base string) *fakeRemote {
	return &fakeRemote{base: base, postsByID: map[string]models.Post{}, failURLs: map[string]bool{}}
}

func (f *fakeRemote) GetProfile(_ context.Context, _, _ string) (models.Profile, error) {
	return f.profile, nil
}

func (f *fakeRemote) GetAllPosts(_ context.Context, _, _ string) ([]models.Post, error) {
	return f.allPosts, nil
}

func (f *fakeRemote) GetPost(_ context.Context, _, _, postID string) (models.Post, error) {
	return f.postsByID[postID], nil
}

func (f *fakeRemote) DownloadFile(_ context.Context, url, destPath string, cb httpclient.Callbacks) (bool, error) {
	if f.failURLs[url] {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(destPath, []byte("data"), 0o644); err != nil {
		return false, err
	}
	f.downloaded = append(f.downloaded, url)
	return true, nil
}

func (f *fakeRemote) BaseURL() string { return f.base }

func newTestDownloader(t *testing.T, remote RemoteClient) (*Downloader, *cache.Cache, *storage.Storage) {
	t.Helper()
	root := t.TempDir()
	c, err := cache.New(filepath.Join(root, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	s, err := storage.New(filepath.Join(root, "data"))
	if err != nil {
		t.Fatal(err)
	}
	cfg := models.DefaultConfig()
	d := New(remote, c, s, pathengine.New(), filepath.Join(root, "downloads"), cfg)
	return d, c, s
}

func mkPost(id string, published time.Time, fileName string) models.Post {
	var f *models.FileRef
	if fileName != "" {
		f = &models.FileRef{Name: fileName, Path: "/data/" + fileName}
	}
	return models.Post{ID: id, Title: "post " + id, Published: published, File: f}
}

func TestUpdatePostsBasic_SkipsWhenCountsMatch(t *testing.T) {
	remote := newFakeRemote("https://example.test")
	remote.profile = models.Profile{PostCount: 0}
	d, _, _ := newTestDownloader(t, remote)

	changed, err := d.UpdatePostsBasic(context.Background(), models.Artist{ID: "a1", Service: "patreon", UserID: "1"})
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Errorf("expected no change when profile.post_count matches cached length")
	}
}

func TestUpdatePostsBasic_MergesAndAppliesWatermark(t *testing.T) {
	remote := newFakeRemote("https://example.test")
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	old := mkPost("p1", now.AddDate(0, 0, -5), "a.png")
	newer := mkPost("p2", now.AddDate(0, 0, 5), "b.png")
	remote.allPosts = []models.Post{old, newer}
	remote.profile = models.Profile{PostCount: 2}

	d, c, _ := newTestDownloader(t, remote)
	artist := models.Artist{ID: "a1", Service: "patreon", UserID: "1", LastDate: &now}

	changed, err := d.UpdatePostsBasic(context.Background(), artist)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatalf("expected update_posts_basic to report a change")
	}

	undone, err := c.GetUndone("a1")
	if err != nil {
		t.Fatal(err)
	}
	if len(undone) != 1 || undone[0].ID != "p2" {
		t.Errorf("expected only p2 (published after last_date) to remain undone, got %+v", undone)
	}
}

func TestDownloadArtist_DownloadsFilesAndAdvancesWatermark(t *testing.T) {
	remote := newFakeRemote("https://example.test")
	p1 := mkPost("p1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "one.png")
	p2 := mkPost("p2", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "two.png")
	remote.allPosts = []models.Post{p1, p2}
	remote.profile = models.Profile{PostCount: 2}

	d, _, s := newTestDownloader(t, remote)
	artist := models.Artist{ID: "a1", Service: "patreon", UserID: "1"}
	if err := s.SaveArtist(artist); err != nil {
		t.Fatal(err)
	}

	result, err := d.DownloadArtist(context.Background(), artist, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Errorf("expected successful artist result, got %+v", result)
	}
	if result.PostsDownloaded != 2 {
		t.Errorf("expected 2 posts downloaded, got %d", result.PostsDownloaded)
	}
	if result.NewLastDate == nil || !result.NewLastDate.Equal(p2.Published) {
		t.Errorf("expected watermark to advance to p2's published date, got %v", result.NewLastDate)
	}
	if len(remote.downloaded) != 2 {
		t.Errorf("expected 2 files downloaded, got %d: %v", len(remote.downloaded), remote.downloaded)
	}
}

func TestDownloadArtist_SkipsCompletedOrIgnored(t *testing.T) {
	remote := newFakeRemote("https://example.test")
	d, _, _ := newTestDownloader(t, remote)

	result, err := d.DownloadArtist(context.Background(), models.Artist{ID: "a1", Completed: true}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.PostsDownloaded != 0 {
		t.Errorf("expected completed artist to be skipped entirely")
	}

	result, err = d.DownloadArtist(context.Background(), models.Artist{ID: "a2", Ignore: true}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.PostsDownloaded != 0 {
		t.Errorf("expected ignored artist to be skipped entirely")
	}
}

func TestDownloadArtist_RerunIsIdempotent(t *testing.T) {
	remote := newFakeRemote("https://example.test")
	p1 := mkPost("p1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "one.png")
	remote.allPosts = []models.Post{p1}
	remote.profile = models.Profile{PostCount: 1}

	d, _, s := newTestDownloader(t, remote)
	artist := models.Artist{ID: "a1", Service: "patreon", UserID: "1"}
	s.SaveArtist(artist)

	first, err := d.DownloadArtist(context.Background(), artist, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	artist.LastDate = first.NewLastDate

	second, err := d.DownloadArtist(context.Background(), artist, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if second.PostsDownloaded != 0 {
		t.Errorf("expected idempotent rerun to find nothing left in the working set, got %d", second.PostsDownloaded)
	}
}

func TestUpdatePostsFull_DetectsNewFilesAndResetsDone(t *testing.T) {
	remote := newFakeRemote("https://example.test")
	base := mkPost("p1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "one.png")
	remote.allPosts = []models.Post{base}
	remote.profile = models.Profile{PostCount: 1}

	d, c, _ := newTestDownloader(t, remote)
	artist := models.Artist{ID: "a1", Service: "patreon", UserID: "1"}
	if _, err := d.UpdatePostsBasic(context.Background(), artist); err != nil {
		t.Fatal(err)
	}
	if err := c.UpdatePost("a1", "p1", true, nil, nil); err != nil {
		t.Fatal(err)
	}

	withAttachment := base
	withAttachment.Attachments = []models.FileRef{{Name: "extra.png", Path: "/data/extra.png"}}
	remote.postsByID["p1"] = withAttachment

	changed, err := d.UpdatePostsFull(context.Background(), artist)
	if err != nil {
		t.Fatal(err)
	}
	if changed != 1 {
		t.Errorf("expected 1 post with a detected file change, got %d", changed)
	}

	undone, err := c.GetUndone("a1")
	if err != nil {
		t.Fatal(err)
	}
	if len(undone) != 1 {
		t.Errorf("expected the post to be marked undone after a new attachment appeared, got %+v", undone)
	}
}
