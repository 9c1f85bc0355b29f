// Package notifier provides the console-backed implementation of
// internal/downloader.Notifier: the operator-facing progress feed that
// original_source/src/notifier.py drives the shell's live status display
// from. Wired at the composition root via Downloader.SetNotifier; renders
// through internal/ui's colorized console helpers rather than the
// structured logger, since this is operator narration, not a log record.
package notifier

import (
	"fmt"

	"github.com/nyxaria/kmfetch/internal/ui"
	"github.com/nyxaria/kmfetch/pkg/models"
)

// Console prints artist/post progress to stdout as the pipeline runs.
type Console struct {
	quiet bool
}

// NewConsole returns a Console. When quiet is true, only failures are
// printed — a running daemon doesn't need a line per successful post.
func NewConsole(quiet bool) *Console {
	return &Console{quiet: quiet}
}

func (c *Console) OnArtistStart(artist models.Artist) {
	if c.quiet {
		return
	}
	ui.Info(fmt.Sprintf("%s (%s/%s): starting", artist.Name, artist.Service, artist.UserID))
}

func (c *Console) OnArtistDone(artist models.Artist, result models.ArtistResult) {
	if result.Success && result.PostsFailed == 0 {
		if c.quiet {
			return
		}
		ui.Success(fmt.Sprintf("%s: %d posts downloaded", artist.Name, result.PostsDownloaded))
		return
	}
	ui.Warning(fmt.Sprintf("%s: %d downloaded, %d failed", artist.Name, result.PostsDownloaded, result.PostsFailed))
}

func (c *Console) OnPostDone(artist models.Artist, post models.Post, result models.PostResult) {
	if result.Success {
		if c.quiet {
			return
		}
		ui.Info(fmt.Sprintf("  %s/%s: %d files", artist.Name, post.ID, result.FilesDownloaded))
		return
	}
	ui.Error(fmt.Sprintf("  %s/%s: %d files failed", artist.Name, post.ID, len(result.FilesFailed)))
}
