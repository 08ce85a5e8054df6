package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plsplit/internal/formatter"
	"github.com/desertthunder/plsplit/internal/models"
	"github.com/desertthunder/plsplit/internal/repositories"
	"github.com/desertthunder/plsplit/internal/services"
	"github.com/desertthunder/plsplit/internal/shared"
	"github.com/desertthunder/plsplit/internal/tasks"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/plsplit-tui.log"

// SplitRun clears and rewrites the destination playlists.
func (r *Runner) SplitRun(ctx context.Context, cmd *cli.Command) error {
	return r.split(ctx, cmd, false)
}

// SplitPlan classifies the origin playlist and reports the buckets without writing anything.
func (r *Runner) SplitPlan(ctx context.Context, cmd *cli.Command) error {
	return r.split(ctx, cmd, true)
}

func (r *Runner) split(ctx context.Context, cmd *cli.Command, dryRun bool) error {
	useTUI := cmd.Bool("tui")

	cfg, err := buildSplitConfig(cmd, useTUI)
	if err != nil {
		return err
	}

	if err := r.requireCatalog(); err != nil {
		return err
	}

	logger := r.logger
	if useTUI {
		if logger, err = shared.NewFileLogger(tuiLogPath); err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		shared.SetLogLevel(logger, r.logger.GetLevel())
	}

	opts, closeFn, err := r.engineOptions(cmd, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	engine := tasks.NewSplitEngine(r.catalog, opts)

	var result *tasks.SplitResult
	if useTUI {
		result, err = r.runTUI(ctx, engine, cfg, dryRun)
	} else {
		result, err = runEngine(ctx, engine, cfg, dryRun)
		if result == nil && err != nil {
			if reauthed, authErr := r.handleSpotifyAuthError(ctx, err); reauthed {
				if authErr != nil {
					return authErr
				}
				result, err = runEngine(ctx, engine, cfg, dryRun)
			}
		}
	}

	if result != nil {
		if outErr := r.writeSplitResult(cmd, result, useTUI); outErr != nil && err == nil {
			err = outErr
		}
	}
	return err
}

func runEngine(ctx context.Context, engine *tasks.SplitEngine, cfg tasks.SplitConfig, dryRun bool) (*tasks.SplitResult, error) {
	if dryRun {
		return engine.Plan(ctx, cfg, nil)
	}
	return engine.Split(ctx, cfg, nil)
}

// buildSplitConfig turns the split flags into a configuration. The origin may be left empty when it is picked in the TUI.
func buildSplitConfig(cmd *cli.Command, allowNoOrigin bool) (tasks.SplitConfig, error) {
	mode, specs, err := poolSpecs(cmd)
	if err != nil {
		return tasks.SplitConfig{}, err
	}

	pools := make([]models.Pool, 0, len(specs))
	for _, spec := range specs {
		keys := spec.Keys
		if mode == models.SplitByArtist {
			if keys, err = services.ParseIDs("artist", keys); err != nil {
				return tasks.SplitConfig{}, err
			}
		}
		pools = append(pools, models.NewPool(spec.Name, keys...))
	}

	b := tasks.NewSplit().By(mode, pools...)

	var origin string
	if ref := cmd.String("playlist"); ref != "" {
		if origin, err = services.ParseID("playlist", ref); err != nil {
			return tasks.SplitConfig{}, err
		}
		b.Playlist(origin)
	} else if !allowNoOrigin {
		return tasks.SplitConfig{}, fmt.Errorf("%w: --playlist", shared.ErrMissingArgument)
	}

	if refs := splitList(cmd.StringSlice("into")); len(refs) > 0 {
		targets, err := services.ParseIDs("playlist", refs)
		if err != nil {
			return tasks.SplitConfig{}, err
		}
		b.Into(targets...)
	}

	if origin != "" {
		return b.Config()
	}

	cfg, err := b.Draft()
	if err != nil {
		return tasks.SplitConfig{}, err
	}
	// everything but the origin must already be valid
	probe := cfg
	probe.Origin = "-"
	if err := probe.Validate(); err != nil {
		return tasks.SplitConfig{}, err
	}
	return cfg, nil
}

// poolSpecs reads the split mode and pools from --pools-file and/or --by and --pool.
func poolSpecs(cmd *cli.Command) (models.SplitMode, []shared.PoolSpec, error) {
	var modeName string
	var specs []shared.PoolSpec

	flags := cmd.StringSlice("pool")
	path := cmd.String("pools-file")

	switch {
	case path != "" && len(flags) > 0:
		return models.SplitUnset, nil, fmt.Errorf("%w: use either --pool or --pools-file", shared.ErrInvalidFlag)
	case path != "":
		pf, err := shared.LoadPools(path)
		if err != nil {
			return models.SplitUnset, nil, err
		}
		modeName, specs = pf.Mode, pf.Pools
	default:
		for _, value := range flags {
			spec, err := shared.ParsePoolFlag(value)
			if err != nil {
				return models.SplitUnset, nil, err
			}
			specs = append(specs, spec)
		}
	}

	if by := cmd.String("by"); by != "" {
		modeName = by
	}
	if modeName == "" {
		return models.SplitUnset, specs, nil
	}

	mode, err := models.ParseSplitMode(modeName)
	if err != nil {
		return models.SplitUnset, nil, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	return mode, specs, nil
}

// splitList flattens repeated, comma-separated flag values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// engineOptions merges the split flags over the [split] config section.
// The returned func releases the label cache opened for the persistent policy.
func (r *Runner) engineOptions(cmd *cli.Command, logger *log.Logger) (tasks.EngineOptions, func(), error) {
	opts := tasks.EngineOptions{
		BatchSize:      r.config.Split.BatchSize,
		Placeholder:    r.config.Split.PlaceholderTrack,
		PlaylistPrefix: r.config.Split.PlaylistPrefix,
		LabelLookup:    r.config.Split.LabelLookup,
		Logger:         logger,
	}
	noop := func() {}

	if n := cmd.Int("batch-size"); n != 0 {
		if n < 0 {
			return opts, noop, fmt.Errorf("%w: --batch-size must be positive", shared.ErrInvalidFlag)
		}
		opts.BatchSize = n
	}

	if policy := cmd.String("label-lookup"); policy != "" {
		switch policy {
		case shared.LabelLookupPerTrack, shared.LabelLookupCached, shared.LabelLookupPersistent:
			opts.LabelLookup = policy
		default:
			return opts, noop, fmt.Errorf("%w: unknown --label-lookup %q", shared.ErrInvalidFlag, policy)
		}
	}

	if opts.LabelLookup != shared.LabelLookupPersistent {
		return opts, noop, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return opts, noop, fmt.Errorf("failed to open label cache: %w", err)
	}

	opts.LabelStore = repositories.NewAlbumLabelRepository(db)
	return opts, func() {
		if err := db.Close(); err != nil {
			r.logger.Warn("failed to close label cache", "error", err)
		}
	}, nil
}

// writeSplitResult prints result and writes the --report file. The TUI already showed the table.
func (r *Runner) writeSplitResult(cmd *cli.Command, result *tasks.SplitResult, fromTUI bool) error {
	if path := cmd.String("report"); path != "" {
		written, err := formatter.WriteReport(result, path)
		if err != nil {
			return err
		}
		r.logger.Info("report written", "path", written)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}
	if fromTUI {
		return nil
	}

	title := "Split"
	if result.DryRun {
		title = "Plan"
	}
	if err := r.writePlain("%s %s: %d tracks by %s\n", title, result.Origin, result.TotalTracks, result.Mode); err != nil {
		return err
	}
	if err := r.writePlain("%s\n", formatter.RenderTable(result)); err != nil {
		return err
	}
	if n := len(result.Dropped); n > 0 {
		return r.writePlain("⚠ %d unmatched tracks had no destination\n", n)
	}
	return nil
}
