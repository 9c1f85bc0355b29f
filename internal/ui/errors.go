package ui

import (
	"fmt"
	"strings"

	"github.com/nyxaria/kmfetch/internal/kerrors"
)

// FriendlyError wraps an error with user-friendly messages and suggestions,
// the same presentation wrapper the teacher used for its download errors,
// now keyed off kerrors.Kind instead of ad-hoc string sniffing.
type FriendlyError struct {
	Title       string
	Description string
	Suggestion  string
	Example     string
	OriginalErr error
}

// Error implements error interface
func (fe *FriendlyError) Error() string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(Colorize("✗ "+fe.Title, ColorRed) + "\n\n")

	if fe.Description != "" {
		sb.WriteString(fe.Description + "\n\n")
	}

	if fe.Suggestion != "" {
		sb.WriteString(Colorize("Suggestion:", ColorYellow) + "\n")
		sb.WriteString("   " + fe.Suggestion + "\n\n")
	}

	if fe.Example != "" {
		sb.WriteString(Colorize("Example:", ColorCyan) + "\n")
		sb.WriteString("   " + fe.Example + "\n\n")
	}

	if fe.OriginalErr != nil {
		sb.WriteString(Colorize("Technical details:", ColorWhite) + "\n")
		sb.WriteString("   " + fe.OriginalErr.Error() + "\n")
	}

	return sb.String()
}

// WrapPipelineError turns a kerrors.Error from any pipeline level into a
// FriendlyError for the operator console, picking the message by Kind.
func WrapPipelineError(artistID string, err error) *FriendlyError {
	switch {
	case kerrors.Is(err, kerrors.NetworkTransient):
		return &FriendlyError{
			Title:       "Network error",
			Description: fmt.Sprintf("Artist %s: a request to the remote host failed.", artistID),
			Suggestion:  "This is usually transient; the retry wrapper will keep retrying until cancelled.",
			OriginalErr: err,
		}
	case kerrors.Is(err, kerrors.RemoteNotFound):
		return &FriendlyError{
			Title:       "Artist or post not found",
			Description: fmt.Sprintf("Artist %s: the remote host returned a not-found response.", artistID),
			Suggestion:  "Check the service/user id is still valid, or mark the artist ignored.",
			OriginalErr: err,
		}
	case kerrors.Is(err, kerrors.RemoteMalformed):
		return &FriendlyError{
			Title:       "Unexpected response shape",
			Description: fmt.Sprintf("Artist %s: the remote host's response could not be parsed.", artistID),
			Suggestion:  "The remote API may have changed; file this as a compatibility issue.",
			OriginalErr: err,
		}
	case kerrors.Is(err, kerrors.LocalIO):
		return WrapPermissionError("the configured data/cache directory", err)
	case kerrors.Is(err, kerrors.ConfigInvalid):
		return &FriendlyError{
			Title:       "Invalid configuration",
			Description: err.Error(),
			Suggestion:  "Check config.json under the data directory, or the values passed to the editor command.",
			OriginalErr: err,
		}
	default:
		return &FriendlyError{
			Title:       "Unexpected error",
			Description: fmt.Sprintf("Artist %s failed for an unclassified reason.", artistID),
			OriginalErr: err,
		}
	}
}

// WrapPermissionError creates a friendly error for local filesystem issues.
func WrapPermissionError(path string, err error) *FriendlyError {
	return &FriendlyError{
		Title:       "Local storage error",
		Description: fmt.Sprintf("Cannot write to: %s", path),
		Suggestion:  "Make sure the process has write permissions for the configured data/cache directories.",
		OriginalErr: err,
	}
}

// PrintUsageHint prints a helpful hint for the interactive shell.
func PrintUsageHint() {
	fmt.Println(Colorize("\nQuick Start:", ColorCyan))
	fmt.Println("   list                         — show tracked artists")
	fmt.Println("   download_artist:id=patreon_123 — enqueue a fetch")
	fmt.Println("   tasks                        — show the queue/running status")
	fmt.Println(Colorize("   For the full command catalogue: help", ColorYellow))
	fmt.Println()
}
