package models

import "time"

// ArtistRunSummary is the console-facing view of one download_artist call —
// the operator console renderer and the reporter both work off this shape
// rather than the raw ArtistResult, the same way the teacher's
// DownloadResult paired one URL with its outcome for the table/report
// writers, generalized here from "one URL" to "one artist run".
type ArtistRunSummary struct {
	ArtistID   string
	ArtistName string
	Service    string
	Result     ArtistResult
	Duration   time.Duration
}

// Summary returns (posts downloaded, posts failed), mirroring the
// teacher's (downloaded, errors) shape.
func (s *ArtistRunSummary) Summary() (downloaded, failed int) {
	return s.Result.PostsDownloaded, s.Result.PostsFailed
}

// IsSuccess reports whether the run completed with no post failures.
func (s *ArtistRunSummary) IsSuccess() bool {
	return s.Result.Success && s.Result.PostsFailed == 0
}
