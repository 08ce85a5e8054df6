package tasks

import (
	"fmt"

	"github.com/desertthunder/plsplit/internal/models"
)

// ProgressUpdate represents a progress event during a split.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	Classify
	CreatePlaylist
	ResetPlaylist
	WritePlaylist
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case Classify:
		return "classify"
	case CreatePlaylist:
		return "create_playlist"
	case ResetPlaylist:
		return "reset_playlist"
	case WritePlaylist:
		return "write_playlist"
	case Done:
		return "done"
	default:
		return ""
	}
}

func fetchingSourceUpdate(id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Message: fmt.Sprintf("Fetching origin playlist %s...", id),
	}
}

func fetchedPageUpdate(fetched, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    fetched,
		Total:   total,
		Message: fmt.Sprintf("Fetched %d/%d tracks", fetched, total),
	}
}

func classifyUpdate(step, total int, mode models.SplitMode) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Classify,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Splitting tracks by %s", step, total, mode),
	}
}

func createPlaylistUpdate(step, total int, pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", pl.Name, pl.ID),
		Data:    pl,
	}
}

func resetPlaylistUpdate(step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResetPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Clearing playlist %s...", step, total, id),
	}
}

func writeChunkUpdate(step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WritePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Writing playlist %s", step, total, id),
	}
}

func doneUpdate(result *SplitResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Split done: %d tracks into %d playlists", result.TotalTracks, result.Written()),
		Data:    result,
	}
}
