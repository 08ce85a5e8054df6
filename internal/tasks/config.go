package tasks

import (
	"errors"
	"fmt"

	"github.com/desertthunder/plsplit/internal/models"
	"github.com/desertthunder/plsplit/internal/shared"
)

// SplitConfig describes one split: where tracks come from, how they are matched and where they go.
//
// An empty Targets asks the engine to create one destination per bucket, overflow included.
type SplitConfig struct {
	Origin  string           `json:"origin"`
	Mode    models.SplitMode `json:"mode"`
	Pools   []models.Pool    `json:"-"`
	Targets []string         `json:"targets,omitempty"`
}

// Validate checks the settings a split needs before any catalog call is made.
func (c SplitConfig) Validate() error {
	if c.Origin == "" {
		return fmt.Errorf("%w: origin playlist not set", shared.ErrConfiguration)
	}
	if c.Mode == models.SplitUnset {
		return fmt.Errorf("%w: split mode not set", shared.ErrConfiguration)
	}
	if len(c.Pools) == 0 {
		return fmt.Errorf("%w: no pools given", shared.ErrConfiguration)
	}

	n := len(c.Pools)
	if t := len(c.Targets); t != 0 && t != n && t != n+1 {
		return fmt.Errorf("%w: got %d targets for %d pools (want %d or %d)", shared.ErrBucketCountMismatch, t, n, n, n+1)
	}

	// Each destination is reset before it is written, so a repeat would wipe an earlier bucket.
	seen := make(map[string]int, len(c.Targets))
	for i, id := range c.Targets {
		if j, ok := seen[id]; ok {
			return fmt.Errorf("%w: target %q used for buckets %d and %d", shared.ErrConfiguration, id, j, i)
		}
		seen[id] = i
	}
	return nil
}

// Buckets is the number of classification buckets, overflow included.
func (c SplitConfig) Buckets() int {
	return len(c.Pools) + 1
}

// OverflowDropped reports whether unmatched tracks have no destination.
func (c SplitConfig) OverflowDropped() bool {
	return len(c.Targets) != 0 && len(c.Targets) == len(c.Pools)
}

// SplitBuilder accumulates a [SplitConfig]. Each field may be set once.
type SplitBuilder struct {
	cfg  SplitConfig
	set  map[string]bool
	errs []error
}

// NewSplit starts an empty split.
func NewSplit() *SplitBuilder {
	return &SplitBuilder{set: make(map[string]bool)}
}

func (b *SplitBuilder) once(field string) bool {
	if b.set[field] {
		b.errs = append(b.errs, fmt.Errorf("%w: %s set more than once", shared.ErrConfiguration, field))
		return false
	}
	b.set[field] = true
	return true
}

// Playlist sets the origin playlist.
func (b *SplitBuilder) Playlist(origin string) *SplitBuilder {
	if b.once("playlist") {
		b.cfg.Origin = origin
	}
	return b
}

// By sets the split mode and its ordered pools.
func (b *SplitBuilder) By(mode models.SplitMode, pools ...models.Pool) *SplitBuilder {
	if b.once("by") {
		b.cfg.Mode = mode
		b.cfg.Pools = pools
	}
	return b
}

// Into sets the destination playlists.
func (b *SplitBuilder) Into(targets ...string) *SplitBuilder {
	if b.once("into") {
		b.cfg.Targets = targets
	}
	return b
}

// Draft returns the configuration built so far without validating it, for callers that fill in the origin later.
// The engine validates it before running.
func (b *SplitBuilder) Draft() (SplitConfig, error) {
	if err := errors.Join(b.errs...); err != nil {
		return SplitConfig{}, err
	}
	return b.cfg, nil
}

// Config returns the accumulated configuration, or every error collected while building it.
func (b *SplitBuilder) Config() (SplitConfig, error) {
	if err := errors.Join(b.errs...); err != nil {
		return SplitConfig{}, err
	}
	if err := b.cfg.Validate(); err != nil {
		return SplitConfig{}, err
	}
	return b.cfg, nil
}
