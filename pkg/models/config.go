package models

// ProxyPair is one proxy endpoint for plain HTTP and TLS traffic.
type ProxyPair struct {
	HTTP  string `json:"http,omitempty"`
	HTTPS string `json:"https,omitempty"`
}

// Config is the persistent domain configuration document (<data>/config.json),
// distinct from the process-bootstrap flags in internal/config.
type Config struct {
	ArtistFolderTemplate string      `json:"artist_folder_template"`
	PostFolderTemplate   string      `json:"post_folder_template"`
	FileNameTemplate     string      `json:"file_name_template"`
	DateFormat           string      `json:"date_format"`
	SaveContent          bool        `json:"save_content"`
	SaveEmptyPosts       bool        `json:"save_empty_posts"`
	RenameImagesOnly     bool        `json:"rename_images_only"`

	MaxConcurrentArtists int `json:"max_concurrent_artists"`
	MaxConcurrentPosts   int `json:"max_concurrent_posts"`
	MaxConcurrentFiles   int `json:"max_concurrent_files"`

	RequestsPerSecond float64 `json:"requests_per_second"`
	RetryBaseDelayMS  int     `json:"retry_base_delay_ms"`

	Filter FilterConfig `json:"filter"`

	Proxies []ProxyPair `json:"proxies,omitempty"`

	// GlobalTimer is the fallback schedule used for artists with no
	// per-artist timer of their own (§4.6: "artist.timer overrides global").
	GlobalTimer *Timer `json:"global_timer,omitempty"`
}

// DefaultConfig returns the baseline configuration a fresh install starts
// from, mirroring the teacher's flag-default pattern in internal/config.
func DefaultConfig() Config {
	return Config{
		ArtistFolderTemplate: "{service}/{name}",
		PostFolderTemplate:   "{id}_{title}",
		FileNameTemplate:     "{index}_{filename}",
		DateFormat:           "2006-01-02",
		SaveContent:          true,
		SaveEmptyPosts:       false,
		RenameImagesOnly:     false,
		MaxConcurrentArtists: 2,
		MaxConcurrentPosts:   4,
		MaxConcurrentFiles:   4,
		RequestsPerSecond:    2.0,
		RetryBaseDelayMS:     500,
	}
}
