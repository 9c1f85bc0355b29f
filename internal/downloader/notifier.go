package downloader

import "github.com/nyxaria/kmfetch/pkg/models"

// Notifier receives progress callbacks at artist/post boundaries so an
// external console or shell can render live status (original_source/
// src/notifier.py), mirrored from the teacher's ProgressCallback in
// internal/downloader/downloader.go. Optional and nil-safe: every call
// site goes through the notify* helpers below rather than calling the
// interface directly.
type Notifier interface {
	OnArtistStart(artist models.Artist)
	OnArtistDone(artist models.Artist, result models.ArtistResult)
	OnPostDone(artist models.Artist, post models.Post, result models.PostResult)
}

func (d *Downloader) notifyArtistStart(a models.Artist) {
	if d.notifier != nil {
		d.notifier.OnArtistStart(a)
	}
}

func (d *Downloader) notifyArtistDone(a models.Artist, r models.ArtistResult) {
	if d.notifier != nil {
		d.notifier.OnArtistDone(a, r)
	}
}

func (d *Downloader) notifyPostDone(a models.Artist, p models.Post, r models.PostResult) {
	if d.notifier != nil {
		d.notifier.OnPostDone(a, p, r)
	}
}
