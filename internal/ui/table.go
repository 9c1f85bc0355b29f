package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/nyxaria/kmfetch/pkg/models"
)

// ArtistResultsTable renders a batch of ArtistRunSummary values, the same
// fixed-width box-drawing layout the teacher used for per-URL results,
// generalized from one row per URL to one row per artist run.
type ArtistResultsTable struct {
	results []models.ArtistRunSummary
}

// NewArtistResultsTable creates a new results table.
func NewArtistResultsTable(results []models.ArtistRunSummary) *ArtistResultsTable {
	return &ArtistResultsTable{results: results}
}

// Render renders the results table.
func (rt *ArtistResultsTable) Render() string {
	if len(rt.results) == 0 {
		return "No results to display"
	}

	var sb strings.Builder

	nameWidth := 28
	postsWidth := 14
	timeWidth := 10
	statusWidth := 8

	sb.WriteString("┌" + strings.Repeat("─", nameWidth+2) +
		"┬" + strings.Repeat("─", postsWidth+2) +
		"┬" + strings.Repeat("─", timeWidth+2) +
		"┬" + strings.Repeat("─", statusWidth+2) + "┐\n")

	sb.WriteString(fmt.Sprintf("│ %-*s │ %-*s │ %-*s │ %-*s │\n",
		nameWidth, "Artist",
		postsWidth, "Posts",
		timeWidth, "Time",
		statusWidth, "Status"))

	sb.WriteString("├" + strings.Repeat("─", nameWidth+2) +
		"┼" + strings.Repeat("─", postsWidth+2) +
		"┼" + strings.Repeat("─", timeWidth+2) +
		"┼" + strings.Repeat("─", statusWidth+2) + "┤\n")

	displayCount := len(rt.results)
	if displayCount > 20 {
		displayCount = 20
	}

	for i := 0; i < displayCount; i++ {
		r := rt.results[i]

		name := fmt.Sprintf("%s/%s", r.Service, r.ArtistName)
		if len(name) > nameWidth {
			name = name[:nameWidth-3] + "..."
		}

		posts := fmt.Sprintf("%d/%d", r.Result.PostsDownloaded, r.Result.PostsDownloaded+r.Result.PostsFailed)
		duration := formatDuration(r.Duration)

		status := "✓"
		statusColor := ColorGreen
		if !r.IsSuccess() {
			status = "✗"
			statusColor = ColorRed
		}

		sb.WriteString(fmt.Sprintf("│ %-*s │ %-*s │ %-*s │ %s%-*s%s │\n",
			nameWidth, name,
			postsWidth, posts,
			timeWidth, duration,
			statusColor, statusWidth, status, ColorReset))
	}

	sb.WriteString("└" + strings.Repeat("─", nameWidth+2) +
		"┴" + strings.Repeat("─", postsWidth+2) +
		"┴" + strings.Repeat("─", timeWidth+2) +
		"┴" + strings.Repeat("─", statusWidth+2) + "┘\n")

	if len(rt.results) > displayCount {
		sb.WriteString(fmt.Sprintf("\n... and %d more results (see recent history)\n",
			len(rt.results)-displayCount))
	}

	return sb.String()
}

// RenderSummary renders an aggregate summary across a batch of artist runs.
func RenderSummary(results []models.ArtistRunSummary, elapsed time.Duration) string {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("═", 60) + "\n")
	sb.WriteString(Colorize("Run Summary", ColorCyan) + "\n")
	sb.WriteString(strings.Repeat("═", 60) + "\n\n")

	total := len(results)
	successful := 0
	var postsDownloaded, postsFailed int

	for _, r := range results {
		if r.IsSuccess() {
			successful++
		}
		postsDownloaded += r.Result.PostsDownloaded
		postsFailed += r.Result.PostsFailed
	}
	failed := total - successful

	sb.WriteString(fmt.Sprintf("Duration: %s\n", Colorize(formatDuration(elapsed), ColorYellow)))
	if total > 0 {
		successRate := float64(successful) / float64(total) * 100
		sb.WriteString(fmt.Sprintf("Artists: %s (%s)\n",
			Colorize(fmt.Sprintf("%d/%d", successful, total), ColorGreen),
			Colorize(fmt.Sprintf("%.1f%%", successRate), ColorGreen)))
	}
	if failed > 0 {
		sb.WriteString(fmt.Sprintf("Artists with failures: %s\n", Colorize(fmt.Sprintf("%d", failed), ColorRed)))
	}

	sb.WriteString(fmt.Sprintf("Posts downloaded: %d\n", postsDownloaded))
	if postsFailed > 0 {
		sb.WriteString(fmt.Sprintf("Posts failed: %s\n", Colorize(fmt.Sprintf("%d", postsFailed), ColorRed)))
	}

	sb.WriteString(strings.Repeat("═", 60) + "\n")

	return sb.String()
}
