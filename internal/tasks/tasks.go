package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plsplit/internal/classifier"
	"github.com/desertthunder/plsplit/internal/models"
	"github.com/desertthunder/plsplit/internal/services"
	"github.com/desertthunder/plsplit/internal/shared"
)

// BucketResult describes one destination of a split.
type BucketResult struct {
	Index      int      `json:"index"`
	Pool       string   `json:"pool"`
	PlaylistID string   `json:"playlist_id,omitempty"`
	Created    bool     `json:"created"`
	Overflow   bool     `json:"overflow"`
	TrackIDs   []string `json:"track_ids"`
}

// SplitResult contains all data from a split or plan.
type SplitResult struct {
	RunID       string           `json:"run_id"`
	Origin      string           `json:"origin"`
	Mode        models.SplitMode `json:"mode"`
	TotalTracks int              `json:"total_tracks"`
	Buckets     []BucketResult   `json:"buckets"`
	Dropped     []string         `json:"dropped,omitempty"`
	DryRun      bool             `json:"dry_run"`
}

// Written returns the number of buckets with a destination playlist.
func (r *SplitResult) Written() int {
	n := 0
	for _, b := range r.Buckets {
		if b.PlaylistID != "" {
			n++
		}
	}
	return n
}

// EngineOptions configures a [SplitEngine]. Zero values fall back to package defaults.
type EngineOptions struct {
	BatchSize      int
	Placeholder    string
	PlaylistPrefix string
	LabelLookup    string               // one of the shared.LabelLookup* policies
	LabelStore     classifier.LabelStore // backing store for the persistent policy
	Logger         *log.Logger
}

// SplitEngine runs splits against a [services.Catalog].
type SplitEngine struct {
	catalog services.Catalog
	writer  *Writer
	opts    EngineOptions
	logger  *log.Logger
}

// NewSplitEngine creates a new SplitEngine with the provided catalog.
func NewSplitEngine(catalog services.Catalog, opts EngineOptions) *SplitEngine {
	if opts.PlaylistPrefix == "" {
		opts.PlaylistPrefix = "Split"
	}
	if opts.LabelLookup == "" {
		opts.LabelLookup = shared.LabelLookupPerTrack
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &SplitEngine{
		catalog: catalog,
		writer:  NewWriter(catalog, opts.BatchSize, opts.Placeholder),
		opts:    opts,
		logger:  logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *SplitEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Plan fetches and classifies the origin playlist without writing anything.
func (e *SplitEngine) Plan(ctx context.Context, cfg SplitConfig, progress chan<- ProgressUpdate) (*SplitResult, error) {
	result, _, err := e.prepare(ctx, cfg, progress)
	if err != nil {
		return nil, err
	}
	result.DryRun = true
	e.sendProgress(progress, doneUpdate(result))
	return result, nil
}

// Split fetches the origin playlist, buckets its tracks, then clears and rewrites each destination in bucket order.
//
// Destinations are created just before their bucket is written when cfg.Targets is empty.
// Nothing is rolled back on failure; the first error is returned.
func (e *SplitEngine) Split(ctx context.Context, cfg SplitConfig, progress chan<- ProgressUpdate) (*SplitResult, error) {
	result, logger, err := e.prepare(ctx, cfg, progress)
	if err != nil {
		return nil, err
	}

	if len(result.Dropped) > 0 {
		logger.Warn("no destination for unmatched tracks, dropping them", "count", len(result.Dropped))
	}

	var ownerID string
	total := len(result.Buckets)

	for i := range result.Buckets {
		bucket := &result.Buckets[i]
		if bucket.Overflow && cfg.OverflowDropped() {
			continue
		}

		if bucket.PlaylistID == "" {
			if ownerID == "" {
				if ownerID, err = e.catalog.GetCurrentUserID(ctx); err != nil {
					return result, fmt.Errorf("resolve playlist owner: %w", err)
				}
			}

			created, err := e.catalog.CreatePlaylist(ctx, ownerID, e.playlistName(bucket))
			if err != nil {
				return result, fmt.Errorf("create playlist for bucket %d: %w", bucket.Index, err)
			}

			bucket.PlaylistID = created.ID
			bucket.Created = true
			logger.Info("created playlist", "bucket", bucket.Index, "playlist", created.ID, "name", created.Name)
			e.sendProgress(progress, createPlaylistUpdate(i+1, total, created))
		}

		e.sendProgress(progress, resetPlaylistUpdate(i+1, total, bucket.PlaylistID))
		e.writer.OnChunk = func(id string, step, chunks int) {
			e.sendProgress(progress, writeChunkUpdate(step, chunks, id))
		}

		if err := e.writer.WritePlaylist(ctx, bucket.PlaylistID, bucket.TrackIDs); err != nil {
			return result, fmt.Errorf("bucket %d: %w", bucket.Index, err)
		}
		logger.Info("wrote playlist", "bucket", bucket.Index, "playlist", bucket.PlaylistID, "tracks", len(bucket.TrackIDs))
	}

	e.writer.OnChunk = nil
	logger.Info("split done", "tracks", result.TotalTracks, "playlists", result.Written())
	e.sendProgress(progress, doneUpdate(result))
	return result, nil
}

// prepare validates cfg, fetches the origin and classifies it.
func (e *SplitEngine) prepare(ctx context.Context, cfg SplitConfig, progress chan<- ProgressUpdate) (*SplitResult, *log.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	runID := shared.GenerateID()
	logger := shared.WithLogger(e.logger, "run_id", runID)
	logger.Info("starting split", "origin", cfg.Origin, "mode", cfg.Mode, "pools", len(cfg.Pools), "targets", len(cfg.Targets))

	e.sendProgress(progress, fetchingSourceUpdate(cfg.Origin))
	tracks, err := FetchAll(ctx, e.catalog, cfg.Origin, func(fetched, total int) {
		e.sendProgress(progress, fetchedPageUpdate(fetched, total))
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("fetched origin", "tracks", len(tracks))

	classified, err := e.classify(ctx, cfg, tracks, progress)
	if err != nil {
		return nil, nil, err
	}

	result := &SplitResult{
		RunID:       runID,
		Origin:      cfg.Origin,
		Mode:        cfg.Mode,
		TotalTracks: len(tracks),
		Buckets:     make([]BucketResult, len(classified.Buckets)),
	}

	for i, ids := range classified.Buckets {
		bucket := BucketResult{Index: i, TrackIDs: ids, Overflow: i == classified.Overflow()}
		if !bucket.Overflow {
			bucket.Pool = cfg.Pools[i].Name
		}
		if i < len(cfg.Targets) {
			bucket.PlaylistID = cfg.Targets[i]
		}
		if bucket.TrackIDs == nil {
			bucket.TrackIDs = []string{}
		}
		result.Buckets[i] = bucket
		logger.Debug("classified bucket", "bucket", i, "tracks", len(ids))
	}

	if cfg.OverflowDropped() {
		result.Dropped = result.Buckets[classified.Overflow()].TrackIDs
	}

	return result, logger, nil
}

func (e *SplitEngine) classify(ctx context.Context, cfg SplitConfig, tracks []models.Track, progress chan<- ProgressUpdate) (*classifier.Result, error) {
	total := len(tracks)

	switch cfg.Mode {
	case models.SplitByArtist:
		result := classifier.ByArtist(tracks, cfg.Pools)
		e.sendProgress(progress, classifyUpdate(total, total, cfg.Mode))
		return result, nil
	case models.SplitByLabel:
		step := 0
		base := e.labelResolver()
		resolver := classifier.ResolverFunc(func(ctx context.Context, albumID string) (string, error) {
			step++
			e.sendProgress(progress, classifyUpdate(step, total, cfg.Mode))
			return base.AlbumLabel(ctx, albumID)
		})

		result, err := classifier.ByLabel(ctx, tracks, cfg.Pools, resolver)
		if err != nil {
			return nil, err
		}
		e.sendProgress(progress, classifyUpdate(total, total, cfg.Mode))
		return result, nil
	default:
		return nil, fmt.Errorf("%w: unsupported split mode %d", shared.ErrConfiguration, cfg.Mode)
	}
}

// labelResolver builds the album label lookup for the configured policy.
func (e *SplitEngine) labelResolver() classifier.LabelResolver {
	lookup := classifier.ResolverFunc(e.catalog.GetAlbumLabel)

	switch e.opts.LabelLookup {
	case shared.LabelLookupCached:
		return classifier.NewCachedResolver(lookup, classifier.NewMemoryStore())
	case shared.LabelLookupPersistent:
		if e.opts.LabelStore == nil {
			e.logger.Warn("persistent label lookup without a store, caching in memory")
		}
		return classifier.NewCachedResolver(lookup, e.opts.LabelStore)
	default:
		return lookup
	}
}

func (e *SplitEngine) playlistName(b *BucketResult) string {
	switch {
	case b.Overflow:
		return fmt.Sprintf("%s (unmatched)", e.opts.PlaylistPrefix)
	case b.Pool != "":
		return b.Pool
	default:
		return fmt.Sprintf("%s %d", e.opts.PlaylistPrefix, b.Index+1)
	}
}
