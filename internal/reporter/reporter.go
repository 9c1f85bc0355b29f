// Package reporter collects ArtistRunSummary values across a batch of
// download_artist calls and writes a text report, the same shape as the
// teacher's per-URL report writer generalized from one row per URL to one
// row per artist run. This is a console/report concern distinct from
// storage.Storage's persistent history log (§4.1 append_history) — the
// two overlap in purpose but not lifetime: the reporter exists for one
// shell invocation, the history log survives restarts.
package reporter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/nyxaria/kmfetch/pkg/models"
)

// Reporter collects and generates reports from artist run summaries.
type Reporter struct {
	results []models.ArtistRunSummary
	mu      sync.Mutex
}

// New creates a new Reporter instance.
func New() *Reporter {
	return &Reporter{
		results: make([]models.ArtistRunSummary, 0),
	}
}

// Add adds one artist run summary to the reporter (thread-safe).
func (r *Reporter) Add(result models.ArtistRunSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

// AddBatch adds multiple results at once (thread-safe).
func (r *Reporter) AddBatch(results []models.ArtistRunSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, results...)
}

// Generate creates a text report file.
func (r *Reporter) Generate(outputPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "Run Report\n")
	fmt.Fprintf(file, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "Total artists: %d\n", len(r.results))
	fmt.Fprintf(file, "%s\n\n", separator(60))

	stats := r.calculateStats()
	fmt.Fprintf(file, "Statistics:\n")
	fmt.Fprintf(file, "  Successful: %d\n", stats.Successful)
	fmt.Fprintf(file, "  Failed: %d\n", stats.Failed)
	fmt.Fprintf(file, "  Posts downloaded: %d\n", stats.PostsDownloaded)
	fmt.Fprintf(file, "  Posts failed: %d\n", stats.PostsFailed)
	fmt.Fprintf(file, "  Average duration: %v\n", stats.AvgDuration)
	fmt.Fprintf(file, "%s\n\n", separator(60))

	fmt.Fprintf(file, "Detailed Results:\n\n")

	sortedResults := make([]models.ArtistRunSummary, len(r.results))
	copy(sortedResults, r.results)
	sort.Slice(sortedResults, func(i, j int) bool {
		return sortedResults[i].ArtistID < sortedResults[j].ArtistID
	})

	for i, result := range sortedResults {
		fmt.Fprintf(file, "[%d] Artist: %s (%s/%s)\n", i+1, result.ArtistID, result.Service, result.ArtistName)
		fmt.Fprintf(file, "    Duration: %v\n", result.Duration)
		fmt.Fprintf(file, "    Posts downloaded: %d\n", result.Result.PostsDownloaded)
		fmt.Fprintf(file, "    Posts failed: %d\n", result.Result.PostsFailed)

		for _, postID := range result.Result.FailedPosts {
			fmt.Fprintf(file, "      - post %s\n", postID)
		}

		fmt.Fprintf(file, "\n")
	}

	return nil
}

// Stats holds aggregated statistics.
type Stats struct {
	Successful      int
	Failed          int
	PostsDownloaded int
	PostsFailed     int
	AvgDuration     time.Duration
}

func (r *Reporter) calculateStats() Stats {
	stats := Stats{}
	var totalDuration time.Duration

	for _, result := range r.results {
		if result.IsSuccess() {
			stats.Successful++
		} else {
			stats.Failed++
		}

		stats.PostsDownloaded += result.Result.PostsDownloaded
		stats.PostsFailed += result.Result.PostsFailed
		totalDuration += result.Duration
	}

	if len(r.results) > 0 {
		stats.AvgDuration = totalDuration / time.Duration(len(r.results))
	}

	return stats
}

// GetResults returns a copy of all results (thread-safe).
func (r *Reporter) GetResults() []models.ArtistRunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	results := make([]models.ArtistRunSummary, len(r.results))
	copy(results, r.results)
	return results
}

func separator(length int) string {
	result := ""
	for i := 0; i < length; i++ {
		result += "="
	}
	return result
}
