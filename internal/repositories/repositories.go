// package repositories provides the SQLite persistence layer for cached catalog lookups.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/plsplit/internal/models"
)

// AlbumLabelRepository caches album labels across runs.
//
// It satisfies classifier.LabelStore so label-mode splits can skip albums seen in earlier runs.
type AlbumLabelRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewAlbumLabelRepository creates a new AlbumLabelRepository with the given database connection
func NewAlbumLabelRepository(db *sql.DB) *AlbumLabelRepository {
	return &AlbumLabelRepository{db: db, now: time.Now}
}

// GetLabel returns the cached label of albumID. ok is false when the album has not been cached.
func (r *AlbumLabelRepository) GetLabel(ctx context.Context, albumID string) (string, bool, error) {
	var label string
	err := r.db.QueryRowContext(ctx, `SELECT label FROM album_labels WHERE album_id = ?`, albumID).Scan(&label)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("failed to get album label: %w", err)
	}
	return label, true, nil
}

// PutLabel inserts or replaces the label of albumID.
func (r *AlbumLabelRepository) PutLabel(ctx context.Context, albumID, label string) error {
	if albumID == "" {
		return fmt.Errorf("album id is required")
	}

	query := `
		INSERT INTO album_labels (album_id, label, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(album_id) DO UPDATE SET label = excluded.label, fetched_at = excluded.fetched_at
	`

	if _, err := r.db.ExecContext(ctx, query, albumID, label, r.now().UTC()); err != nil {
		return fmt.Errorf("failed to store album label: %w", err)
	}
	return nil
}

// List returns every cached album ordered by label, then album id.
func (r *AlbumLabelRepository) List(ctx context.Context) ([]models.AlbumLabel, error) {
	query := `
		SELECT album_id, label, fetched_at
		FROM album_labels
		ORDER BY label, album_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list album labels: %w", err)
	}
	defer rows.Close()

	var labels []models.AlbumLabel
	for rows.Next() {
		var l models.AlbumLabel
		if err := rows.Scan(&l.AlbumID, &l.Label, &l.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan album label: %w", err)
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// Summary counts cached albums per label, most albums first.
func (r *AlbumLabelRepository) Summary(ctx context.Context) ([]models.LabelCount, error) {
	query := `
		SELECT label, COUNT(*) AS albums
		FROM album_labels
		GROUP BY label
		ORDER BY albums DESC, label
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize album labels: %w", err)
	}
	defer rows.Close()

	var counts []models.LabelCount
	for rows.Next() {
		var c models.LabelCount
		if err := rows.Scan(&c.Label, &c.Albums); err != nil {
			return nil, fmt.Errorf("failed to scan label count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// Count returns the number of cached albums.
func (r *AlbumLabelRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM album_labels`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count album labels: %w", err)
	}
	return n, nil
}

// Clear removes every cached album and returns how many were removed.
func (r *AlbumLabelRepository) Clear(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM album_labels`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear album labels: %w", err)
	}
	return result.RowsAffected()
}

// Prune removes albums fetched before cutoff.
func (r *AlbumLabelRepository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM album_labels WHERE fetched_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune album labels: %w", err)
	}
	return result.RowsAffected()
}
