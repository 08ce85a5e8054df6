package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/plsplit/internal/services"
)

const (
	// DefaultBatchSize is the number of tracks appended per call when none is configured.
	DefaultBatchSize = 50

	// DefaultPlaceholder is the track used to empty a playlist on catalogs without [services.Clearer].
	DefaultPlaceholder = "4RWkW7tGWseUu1T9LzpEBP"
)

// Writer empties destination playlists and fills them in batches.
type Writer struct {
	catalog     services.Catalog
	batchSize   int
	placeholder string

	// OnChunk, when set, is called after each appended chunk.
	OnChunk func(playlistID string, step, total int)
}

// NewWriter clamps batchSize to (0, catalog.BatchLimit()] and falls back to the defaults for zero values.
func NewWriter(catalog services.Catalog, batchSize int, placeholder string) *Writer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if limit := catalog.BatchLimit(); limit > 0 && batchSize > limit {
		batchSize = limit
	}
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &Writer{catalog: catalog, batchSize: batchSize, placeholder: placeholder}
}

func (w *Writer) BatchSize() int {
	return w.batchSize
}

// ChunkTracks splits ids into consecutive slices of at most size elements.
func ChunkTracks(ids []string, size int) [][]string {
	if size <= 0 || len(ids) == 0 {
		return nil
	}

	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// ResetPlaylist leaves playlistID empty.
//
// Without a [services.Clearer], the playlist is replaced by the placeholder track which is then removed.
func (w *Writer) ResetPlaylist(ctx context.Context, playlistID string) error {
	if clearer, ok := w.catalog.(services.Clearer); ok {
		if err := clearer.ClearItems(ctx, playlistID); err != nil {
			return fmt.Errorf("clear playlist %s: %w", playlistID, err)
		}
		return nil
	}

	placeholder := []string{w.placeholder}
	if err := w.catalog.ReplaceItems(ctx, playlistID, placeholder); err != nil {
		return fmt.Errorf("reset playlist %s: %w", playlistID, err)
	}
	if err := w.catalog.RemoveAllOccurrences(ctx, playlistID, placeholder); err != nil {
		return fmt.Errorf("reset playlist %s: %w", playlistID, err)
	}
	return nil
}

// WritePlaylist resets playlistID and appends trackIDs in order, one call per chunk.
func (w *Writer) WritePlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if err := w.ResetPlaylist(ctx, playlistID); err != nil {
		return err
	}

	chunks := ChunkTracks(trackIDs, w.batchSize)
	for i, chunk := range chunks {
		if err := w.catalog.AddItems(ctx, playlistID, chunk); err != nil {
			return fmt.Errorf("write playlist %s chunk %d/%d: %w", playlistID, i+1, len(chunks), err)
		}
		if w.OnChunk != nil {
			w.OnChunk(playlistID, i+1, len(chunks))
		}
	}
	return nil
}
