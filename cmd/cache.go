package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/plsplit/internal/formatter"
	"github.com/desertthunder/plsplit/internal/repositories"
	"github.com/desertthunder/plsplit/internal/shared"
	"github.com/urfave/cli/v3"
)

// openLabelCache opens the configured database and returns its label repository with a close func.
func (r *Runner) openLabelCache() (*repositories.AlbumLabelRepository, func(), error) {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open label cache: %w", err)
	}

	closeFn := func() {
		if err := db.Close(); err != nil {
			r.logger.Warn("failed to close label cache", "error", err)
		}
	}
	return repositories.NewAlbumLabelRepository(db), closeFn, nil
}

// CacheLabels shows the album labels cached by persistent label lookups.
func (r *Runner) CacheLabels(ctx context.Context, cmd *cli.Command) error {
	repo, closeFn, err := r.openLabelCache()
	if err != nil {
		return err
	}
	defer closeFn()

	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if cmd.Bool("albums") {
		labels, err := repo.List(ctx)
		if err != nil {
			return err
		}
		if useJSON {
			return r.writeJSON(labels, pretty)
		}

		r.writePlain("%d cached albums:\n\n", len(labels))
		for _, l := range labels {
			r.writePlain("%s  %s  (%s)\n", l.AlbumID, l.Label, l.FetchedAt.Format(time.DateTime))
		}
		return nil
	}

	counts, err := repo.Summary(ctx)
	if err != nil {
		return err
	}
	if useJSON {
		return r.writeJSON(counts, pretty)
	}

	total, err := repo.Count(ctx)
	if err != nil {
		return err
	}

	r.writePlain("%d cached albums across %d labels\n", total, len(counts))
	if len(counts) > 0 {
		r.writePlain("%s\n", formatter.RenderLabels(counts))
	}
	return nil
}

// CacheClear removes cached labels, all of them or only those older than --older-than.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	repo, closeFn, err := r.openLabelCache()
	if err != nil {
		return err
	}
	defer closeFn()

	var removed int64
	if age := cmd.Duration("older-than"); age > 0 {
		removed, err = repo.Prune(ctx, time.Now().Add(-age))
	} else {
		removed, err = repo.Clear(ctx)
	}
	if err != nil {
		return err
	}

	r.logger.Info("label cache cleared", "removed", removed)
	r.writePlain("✓ Removed %d cached labels\n", removed)
	return nil
}
