package models

import "time"

// TaskKind distinguishes the unit of work a DownloadTask represents.
type TaskKind string

const (
	TaskDownloadArtist TaskKind = "download_artist"
	TaskUpdatePostsBasic TaskKind = "update_posts_basic"
	TaskUpdatePostsFull  TaskKind = "update_posts_full"
)

// TaskStatus is the lifecycle state of a DownloadTask.
type TaskStatus string

const (
	TaskQueued    TaskStatus = "queued"
	TaskRunning   TaskStatus = "running"
	TaskDone      TaskStatus = "done"
	TaskFailed    TaskStatus = "failed"
	TaskCancelled TaskStatus = "cancelled"
)

// DownloadTask is one unit of scheduled work, tracked from enqueue through
// completion for the status surface (§6 shell `tasks`, §3).
type DownloadTask struct {
	ID        string     `json:"id"`
	Kind      TaskKind   `json:"kind"`
	ArtistID  string     `json:"artist_id"`
	Status    TaskStatus `json:"status"`
	Enqueued  time.Time  `json:"enqueued"`
	Started   *time.Time `json:"started,omitempty"`
	Finished  *time.Time `json:"finished,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// QueueStatus is a point-in-time snapshot of the Scheduler's dispatcher.
type QueueStatus struct {
	Queued  []DownloadTask `json:"queued"`
	Running []DownloadTask `json:"running"`
}

// PostResult is the outcome of downloading a single post's files.
type PostResult struct {
	PostID          string   `json:"post_id"`
	Success         bool     `json:"success"`
	FilesDownloaded int      `json:"files_downloaded"`
	FilesFailed     []string `json:"files_failed,omitempty"`
}

// PostsResult aggregates PostResult across a batch (§4.5.5 download_posts).
type PostsResult struct {
	Succeeded   []PostResult `json:"succeeded"`
	Failed      []PostResult `json:"failed"`
}

// ArtistResult is the outcome of a full download_artist run (§4.5.4).
type ArtistResult struct {
	ArtistID        string     `json:"artist_id"`
	Success         bool       `json:"success"`
	PostsDownloaded int        `json:"posts_downloaded"`
	PostsFailed     int        `json:"posts_failed"`
	FailedPosts     []string   `json:"failed_posts,omitempty"`
	NewLastDate     *time.Time `json:"new_last_date,omitempty"`
}
