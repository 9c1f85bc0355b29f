package notifier

import (
	"testing"

	"github.com/nyxaria/kmfetch/pkg/models"
)

func TestConsole_DoesNotPanicOnAnyCallback(t *testing.T) {
	c := NewConsole(false)
	artist := models.Artist{ID: "patreon_123", Service: "patreon", UserID: "123", Name: "Someone"}
	post := models.Post{ID: "p1", ArtistID: "patreon_123"}

	c.OnArtistStart(artist)
	c.OnArtistDone(artist, models.ArtistResult{Success: true, PostsDownloaded: 3})
	c.OnArtistDone(artist, models.ArtistResult{Success: false, PostsFailed: 1, FailedPosts: []string{"p1"}})
	c.OnPostDone(artist, post, models.PostResult{Success: true, FilesDownloaded: 2})
	c.OnPostDone(artist, post, models.PostResult{Success: false, FilesFailed: []string{"a.jpg"}})
}

func TestConsole_QuietSuppressesSuccessOnly(t *testing.T) {
	c := NewConsole(true)
	artist := models.Artist{ID: "patreon_123", Service: "patreon", UserID: "123", Name: "Someone"}

	c.OnArtistStart(artist)
	c.OnArtistDone(artist, models.ArtistResult{Success: true})
	c.OnArtistDone(artist, models.ArtistResult{Success: false, PostsFailed: 2})
}
