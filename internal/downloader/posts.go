package downloader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nyxaria/kmfetch/internal/cache"
	"github.com/nyxaria/kmfetch/internal/httpclient"
	"github.com/nyxaria/kmfetch/internal/kerrors"
	"github.com/nyxaria/kmfetch/internal/pathengine"
	"github.com/nyxaria/kmfetch/pkg/models"
)

const noContentSentinel = "no content"

// UpdatePostsBasic implements §4.5.2: reconcile the cached post list
// against the remote one, short-circuiting when nothing changed.
func (d *Downloader) UpdatePostsBasic(ctx context.Context, artist models.Artist) (bool, error) {
	profile, err := d.client.GetProfile(ctx, artist.Service, artist.UserID)
	if err != nil {
		return false, err
	}

	cached, err := d.cache.LoadPosts(artist.ID)
	if err != nil {
		return false, err
	}
	if profile.PostCount == len(cached) {
		return false, nil
	}

	remote, err := d.client.GetAllPosts(ctx, artist.Service, artist.UserID)
	if err != nil {
		return false, err
	}
	deduped := dedupPosts(remote)
	if len(deduped) == len(cached) {
		return false, nil
	}

	if _, err := d.cache.MergePosts(artist.ID, deduped, artist.LastDate); err != nil {
		return false, err
	}
	if err := d.cache.SaveProfile(artist.ID, profile); err != nil {
		return false, err
	}
	return true, nil
}

// dedupPosts drops later duplicates by id, keeping first occurrence order.
func dedupPosts(posts []models.Post) []models.Post {
	seen := make(map[string]bool, len(posts))
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

// UpdatePostsFull implements §4.5.3: re-fetch every cached post
// individually, bounded by max_concurrent_posts, and batch the resulting
// changes into a single persist.
func (d *Downloader) UpdatePostsFull(ctx context.Context, artist models.Artist) (int, error) {
	cached, err := d.cache.LoadPosts(artist.ID)
	if err != nil {
		return 0, err
	}

	var mu sync.Mutex
	updates := make(map[string]cache.FullUpdate, len(cached))

	err = fanOutBounded(ctx, d.maxConcurrentPosts, cached, func(gctx context.Context, local models.Post) error {
		remote, err := d.client.GetPost(gctx, artist.Service, artist.UserID, local.ID)
		if err != nil {
			return err
		}
		changed := filesChanged(local, remote)
		mu.Lock()
		updates[local.ID] = cache.FullUpdate{Post: remote, FilesChanged: changed}
		mu.Unlock()
		return nil
	})
	if err != nil {
		return 0, err
	}

	changedCount := 0
	for _, u := range updates {
		if u.FilesChanged {
			changedCount++
		}
	}
	if err := d.cache.ApplyFullUpdates(artist.ID, updates); err != nil {
		return 0, err
	}
	return changedCount, nil
}

// filesChanged reports whether remote's file set contains an item not
// present in local's file set, by {name, path} membership. Local is
// treated as a superset, so removals on the remote side never count.
func filesChanged(local, remote models.Post) bool {
	have := make(map[models.FileRef]bool)
	for _, f := range local.AllFiles() {
		have[f] = true
	}
	for _, f := range remote.AllFiles() {
		if !have[f] {
			return true
		}
	}
	return false
}

// DownloadPosts implements §4.5.4: bounded fan-out over posts, aggregating
// into a PostsResult under a mutex.
func (d *Downloader) DownloadPosts(ctx context.Context, artist models.Artist, posts []models.Post) (models.PostsResult, error) {
	var mu sync.Mutex
	result := models.PostsResult{}

	_ = fanOutBounded(ctx, d.maxConcurrentPosts, posts, func(gctx context.Context, post models.Post) error {
		pr := d.downloadOnePost(gctx, artist, post)

		mu.Lock()
		if pr.Success {
			result.Succeeded = append(result.Succeeded, pr)
		} else {
			result.Failed = append(result.Failed, pr)
		}
		mu.Unlock()

		d.notifyPostDone(artist, post, pr)
		return nil
	})

	return result, nil
}

// downloadOnePost wraps downloadPost with the §4.5.4 pre-checks
// (cancellation, lazy full-fetch when content is missing) and persists
// the outcome to the cache.
func (d *Downloader) downloadOnePost(ctx context.Context, artist models.Artist, post models.Post) models.PostResult {
	ec := resolveConfig(d.cfg, artist.Config)

	if ctx.Err() != nil {
		return models.PostResult{PostID: post.ID, Success: false}
	}

	if !post.HasFiles() && ec.saveContent {
		state, _ := d.cache.GetContentState(artist.ID, post.ID)
		if !state.IsSet() {
			full, err := d.client.GetPost(ctx, artist.Service, artist.UserID, post.ID)
			if err == nil {
				post = full
			}
		}
	}

	result, err := d.DownloadPost(ctx, artist, post)
	if err != nil && !kerrors.Is(err, kerrors.Cancelled) {
		result.Success = false
	}

	var contentState *cache.ContentState
	if ec.saveContent {
		var cs cache.ContentState
		if post.Content == "" {
			cs = cache.ContentEmpty()
		} else {
			cs = cache.ContentText(post.Content)
		}
		contentState = &cs
	}

	if result.Success {
		_ = d.cache.UpdatePost(artist.ID, post.ID, true, nil, contentState)
	} else {
		_ = d.cache.UpdatePost(artist.ID, post.ID, false, result.FilesFailed, contentState)
	}
	return result
}

// DownloadPost implements §4.5.5.
func (d *Downloader) DownloadPost(ctx context.Context, artist models.Artist, post models.Post) (models.PostResult, error) {
	ec := resolveConfig(d.cfg, artist.Config)
	result := models.PostResult{PostID: post.ID, Success: true}

	files := extractFiles(d.client.BaseURL(), post)
	if len(files) == 0 && !ec.saveEmptyPosts && !ec.saveContent {
		return result, nil
	}

	artistFolder := d.paths.FormatArtistFolder(pathengine.ArtistParams{
		Service:  artist.Service,
		Name:     artist.Name,
		Alias:    artist.Alias,
		UserID:   artist.UserID,
		LastDate: derefTime(artist.LastDate),
	}, ec.artistFolderTemplate)
	postFolder := d.paths.FormatPostFolder(pathengine.PostParams{
		ID:        post.ID,
		User:      artist.UserID,
		Service:   artist.Service,
		Title:     post.Title,
		Published: post.Published,
	}, ec.postFolderTemplate, ec.dateFormat)

	destDir := filepath.Join(d.rootDir, artistFolder, postFolder)
	if err := ensureDir(destDir); err != nil {
		return models.PostResult{PostID: post.ID, Success: false}, err
	}

	if ec.saveContent && post.Content != "" && !strings.EqualFold(strings.TrimSpace(post.Content), noContentSentinel) {
		contentPath := filepath.Join(destDir, "content.txt")
		if err := os.WriteFile(contentPath, []byte(post.Content), 0o644); err != nil {
			return models.PostResult{PostID: post.ID, Success: false}, kerrors.New(kerrors.LocalIO, "DownloadPost:content", err)
		}
	}

	if len(files) == 0 {
		return result, nil
	}

	originals := make([]pathengine.OriginalFile, len(files))
	for i, f := range files {
		originals[i] = pathengine.OriginalFile{Name: f.Name, Ext: strings.ToLower(filepath.Ext(f.Name))}
	}
	names := d.paths.FormatFilesNames(originals, ec.fileNameTemplate, ec.renameImagesOnly, ImageExtensions)

	var mu sync.Mutex
	_ = fanOutBounded(ctx, d.maxConcurrentFiles, indices(len(files)), func(gctx context.Context, i int) error {
		f := files[i]
		destPath := filepath.Join(destDir, names[i])
		ok, err := d.client.DownloadFile(gctx, f.URL, destPath, httpclient.Callbacks{})

		mu.Lock()
		defer mu.Unlock()
		if ok && err == nil {
			result.FilesDownloaded++
		} else {
			result.FilesFailed = append(result.FilesFailed, f.Name)
		}
		return nil
	})

	result.Success = len(result.FilesFailed) == 0
	return result, nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// ImageExtensions lists the lowercase, dot-prefixed extensions treated as
// images by rename_images_only (§4.5.7), shared with internal/validator so
// an audit's predicted paths match what DownloadPost actually writes.
var ImageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".bmp": true,
}
