// Package config holds the process-bootstrap flags this process needs
// before it can open its data directory and load the domain Config
// document (pkg/models.Config, loaded/saved by internal/storage): where
// to keep state, how many workers to run, and which port to host the
// single-instance RPC bridge on. Grounded on the teacher's flag-based
// Load() with long/short flag pairs and OS-env fallbacks.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds process bootstrap configuration.
type Config struct {
	DataDir     string // Root directory for artist/config/history state
	CacheDir    string // Root directory for post cache documents
	DownloadDir string // Root directory for downloaded payloads
	LogDir      string // Directory for log file output; empty logs to stderr
	LogLevel    string // logrus level name: debug, info, warn, error

	Workers            int // Scheduler worker-pool cap (concurrent artists)
	MaxConcurrentPosts int // Parsed only; the downloader reads max_concurrent_posts from config.json
	MaxConcurrentFiles int // Parsed only; the downloader reads max_concurrent_files from config.json

	RequestTimeout time.Duration
	RetryAttempts  int

	RPCEnabled bool
	RPCPort    int

	PluginSourcePath string // internal/pluginreloader source document
	IgnoreStorePath  string // internal/validator ignore store document

	BaseURL string // remote content host, e.g. https://kemono.cr

	// Authentication options, applied to the remote host session
	AuthBearer   string
	AuthBasic    string
	AuthHeader   string
	HeadersFile  string
	CookiesFile  string
	CookieString string
	UserAgent    string
}

// Load parses command line flags and environment variables into a Config.
func Load() *Config {
	cfg := &Config{}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: kmfetch [options]\n")
		fmt.Fprintf(os.Stderr, "\nBootstrap Options:\n")
		fmt.Fprintf(os.Stderr, "  --data, -d string        Data directory (default: ./data)\n")
		fmt.Fprintf(os.Stderr, "  --cache string           Cache directory (default: <data>/cache)\n")
		fmt.Fprintf(os.Stderr, "  --downloads string       Download directory (default: <data>/downloads)\n")
		fmt.Fprintf(os.Stderr, "  --log-dir string         Log file directory (stderr if unset)\n")
		fmt.Fprintf(os.Stderr, "  --log-level string       debug, info, warn, error (default: info)\n")
		fmt.Fprintf(os.Stderr, "  --workers, -w int        Scheduler worker-pool cap (default: 4)\n")
		fmt.Fprintf(os.Stderr, "  --max-posts int          Accepted but not applied; see max_concurrent_posts in config.json (default: 4)\n")
		fmt.Fprintf(os.Stderr, "  --max-files int          Accepted but not applied; see max_concurrent_files in config.json (default: 4)\n")
		fmt.Fprintf(os.Stderr, "  --timeout duration       Accepted but not applied; the HTTP client uses fixed timeouts (default: 30s)\n")
		fmt.Fprintf(os.Stderr, "  --retry int              Accepted but not applied; network calls retry until cancelled (default: 3)\n")
		fmt.Fprintf(os.Stderr, "  --base-url string        Remote content host (default: https://kemono.cr)\n")
		fmt.Fprintf(os.Stderr, "\nRPC Options:\n")
		fmt.Fprintf(os.Stderr, "  --rpc                    Enable the single-instance RPC bridge (default: true)\n")
		fmt.Fprintf(os.Stderr, "  --rpc-port int           RPC bridge TCP port (default: 18861)\n")
		fmt.Fprintf(os.Stderr, "\nAuthentication Options:\n")
		fmt.Fprintf(os.Stderr, "  --auth-bearer string     Bearer token for the remote host session\n")
		fmt.Fprintf(os.Stderr, "  --auth-basic string      Basic auth (format: username:password)\n")
		fmt.Fprintf(os.Stderr, "  --auth-header string     Custom Authorization header value\n")
		fmt.Fprintf(os.Stderr, "  --headers-file string    File with custom headers (format: 'Name: value')\n")
		fmt.Fprintf(os.Stderr, "  --cookies-file string    File with cookies (format: 'name=value')\n")
		fmt.Fprintf(os.Stderr, "  --cookie string          Cookie string (format: 'name1=value1; name2=value2')\n")
		fmt.Fprintf(os.Stderr, "  --user-agent string      Custom User-Agent header\n")
	}

	flag.StringVar(&cfg.DataDir, "d", getEnvOrDefault("KMFETCH_DATA_DIR", "./data"), "Data directory [shorthand]")
	flag.StringVar(&cfg.DataDir, "data", getEnvOrDefault("KMFETCH_DATA_DIR", "./data"), "Data directory")
	flag.StringVar(&cfg.CacheDir, "cache", getEnvOrDefault("KMFETCH_CACHE_DIR", ""), "Cache directory (default: <data>/cache)")
	flag.StringVar(&cfg.DownloadDir, "downloads", getEnvOrDefault("KMFETCH_DOWNLOAD_DIR", ""), "Download directory (default: <data>/downloads)")
	flag.StringVar(&cfg.LogDir, "log-dir", getEnvOrDefault("KMFETCH_LOG_DIR", ""), "Log file directory (stderr if unset)")
	flag.StringVar(&cfg.LogLevel, "log-level", getEnvOrDefault("KMFETCH_LOG_LEVEL", "info"), "Log level")

	flag.IntVar(&cfg.Workers, "w", getEnvIntOrDefault("KMFETCH_WORKERS", 4), "Worker-pool cap [shorthand]")
	flag.IntVar(&cfg.Workers, "workers", getEnvIntOrDefault("KMFETCH_WORKERS", 4), "Worker-pool cap")
	flag.IntVar(&cfg.MaxConcurrentPosts, "max-posts", getEnvIntOrDefault("KMFETCH_MAX_POSTS", 4), "Max concurrent posts per artist")
	flag.IntVar(&cfg.MaxConcurrentFiles, "max-files", getEnvIntOrDefault("KMFETCH_MAX_FILES", 4), "Max concurrent files per post")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", getEnvDurationOrDefault("KMFETCH_TIMEOUT", 30*time.Second), "HTTP request timeout")
	flag.IntVar(&cfg.RetryAttempts, "retry", getEnvIntOrDefault("KMFETCH_RETRY", 3), "Retry attempts")
	flag.StringVar(&cfg.BaseURL, "base-url", getEnvOrDefault("KMFETCH_BASE_URL", "https://kemono.cr"), "Remote content host")

	flag.BoolVar(&cfg.RPCEnabled, "rpc", true, "Enable the single-instance RPC bridge")
	flag.IntVar(&cfg.RPCPort, "rpc-port", getEnvIntOrDefault("KMFETCH_RPC_PORT", 18861), "RPC bridge TCP port")

	flag.StringVar(&cfg.AuthBearer, "auth-bearer", getEnvOrDefault("KMFETCH_AUTH_BEARER", ""), "Bearer token")
	flag.StringVar(&cfg.AuthBasic, "auth-basic", getEnvOrDefault("KMFETCH_AUTH_BASIC", ""), "Basic auth (username:password)")
	flag.StringVar(&cfg.AuthHeader, "auth-header", getEnvOrDefault("KMFETCH_AUTH_HEADER", ""), "Custom Authorization header value")
	flag.StringVar(&cfg.HeadersFile, "headers-file", "", "File with custom headers")
	flag.StringVar(&cfg.CookiesFile, "cookies-file", "", "File with cookies")
	flag.StringVar(&cfg.CookieString, "cookie", getEnvOrDefault("KMFETCH_COOKIE", ""), "Cookie string")
	flag.StringVar(&cfg.UserAgent, "user-agent", getEnvOrDefault("KMFETCH_USER_AGENT", ""), "Custom User-Agent header")

	flag.Parse()

	if cfg.CacheDir == "" {
		cfg.CacheDir = cfg.DataDir + "/cache"
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = cfg.DataDir + "/downloads"
	}
	if cfg.PluginSourcePath == "" {
		cfg.PluginSourcePath = cfg.DataDir + "/hooks.json"
	}
	if cfg.IgnoreStorePath == "" {
		cfg.IgnoreStorePath = cfg.DataDir + "/ignores.json"
	}

	return cfg
}

// Validate checks if the configuration is usable, clamping recoverable
// fields to sane minimums rather than failing outright.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return ErrMissingDataDir
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.MaxConcurrentPosts < 1 {
		c.MaxConcurrentPosts = 1
	}
	if c.MaxConcurrentFiles < 1 {
		c.MaxConcurrentFiles = 1
	}
	if c.RequestTimeout < time.Second {
		c.RequestTimeout = time.Second
	}
	if c.RPCPort <= 0 {
		c.RPCPort = 18861
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
