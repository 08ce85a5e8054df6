package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/plsplit/internal/models"
	"github.com/desertthunder/plsplit/internal/services"
)

// FetchAll reads every page of a playlist, in order.
//
// onPage, when non-nil, is called after each page with the running count and the reported total.
func FetchAll(ctx context.Context, catalog services.Catalog, playlistID string, onPage func(fetched, total int)) ([]models.Track, error) {
	page, err := catalog.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("fetch playlist %s: %w", playlistID, err)
	}

	tracks := append([]models.Track(nil), page.Items...)
	if onPage != nil {
		onPage(len(tracks), page.Total)
	}

	for page.Next != "" {
		cursor := page.Next
		if page, err = catalog.GetNextPage(ctx, cursor); err != nil {
			return nil, fmt.Errorf("fetch playlist %s page %q: %w", playlistID, cursor, err)
		}

		tracks = append(tracks, page.Items...)
		if onPage != nil {
			onPage(len(tracks), page.Total)
		}
	}

	return tracks, nil
}
