package models

import "time"

// TimerType selects how a per-artist or global schedule recurs.
type TimerType string

const (
	TimerDaily   TimerType = "daily"
	TimerWeekly  TimerType = "weekly"
	TimerMonthly TimerType = "monthly"
)

// Timer describes a recurring scheduled fetch, e.g. {daily, "03:00"}.
type Timer struct {
	Type TimerType `json:"type"`
	Time string    `json:"time"` // "HH:MM"
	Day  int       `json:"day,omitempty"` // weekday (0=Sunday) for weekly, day-of-month for monthly
}

// ArtistConfig holds per-artist overrides of the global Config's template
// strings and behavior flags. Zero-value fields mean "inherit global".
type ArtistConfig struct {
	ArtistFolderTemplate string `json:"artist_folder_template,omitempty"`
	PostFolderTemplate   string `json:"post_folder_template,omitempty"`
	FileNameTemplate     string `json:"file_name_template,omitempty"`
	DateFormat           string `json:"date_format,omitempty"`
	SaveContent          *bool  `json:"save_content,omitempty"`
	SaveEmptyPosts       *bool  `json:"save_empty_posts,omitempty"`
	RenameImagesOnly     *bool  `json:"rename_images_only,omitempty"`
}

// Artist is the persistent identity of a tracked creator.
type Artist struct {
	ID        string        `json:"id"` // conventionally "service_userId"
	Service   string        `json:"service"`
	UserID    string        `json:"user_id"`
	Name      string        `json:"name"`
	Alias     string        `json:"alias,omitempty"`
	URL       string        `json:"url,omitempty"`
	LastDate  *time.Time    `json:"last_date,omitempty"`
	Ignore    bool          `json:"ignore"`
	Completed bool          `json:"completed"`
	Timer     *Timer        `json:"timer,omitempty"`
	Config    ArtistConfig  `json:"config"`
	Filter    FilterConfig  `json:"filter"`
}

// Clone returns a deep-enough copy safe to mutate independently of the
// original (LastDate and Timer are copied by value through new pointers).
func (a Artist) Clone() Artist {
	c := a
	if a.LastDate != nil {
		t := *a.LastDate
		c.LastDate = &t
	}
	if a.Timer != nil {
		tm := *a.Timer
		c.Timer = &tm
	}
	return c
}
