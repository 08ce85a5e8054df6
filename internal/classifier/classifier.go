// package classifier assigns tracks to ordered pools, first match wins, unmatched tracks go to the overflow bucket
package classifier

import (
	"context"
	"fmt"

	"github.com/desertthunder/plsplit/internal/models"
)

// Assignment places one track in one bucket. Bucket is in [0, len(pools)]; len(pools) is the overflow index.
type Assignment struct {
	TrackID string `json:"track_id"`
	Bucket  int    `json:"bucket"`
}

// Result holds the assignments in input order and the resulting len(pools)+1 buckets of track ids.
type Result struct {
	Assignments []Assignment `json:"assignments"`
	Buckets     [][]string   `json:"buckets"`
}

// Overflow returns the index of the unmatched bucket.
func (r *Result) Overflow() int {
	return len(r.Buckets) - 1
}

func newResult(pools, tracks int) *Result {
	return &Result{
		Assignments: make([]Assignment, 0, tracks),
		Buckets:     make([][]string, pools+1),
	}
}

func (r *Result) assign(trackID string, bucket int) {
	r.Assignments = append(r.Assignments, Assignment{TrackID: trackID, Bucket: bucket})
	r.Buckets[bucket] = append(r.Buckets[bucket], trackID)
}

// firstMatch returns the index of the first pool accepted by match, or len(pools).
func firstMatch(pools []models.Pool, match func(models.Pool) bool) int {
	for i, pool := range pools {
		if match(pool) {
			return i
		}
	}
	return len(pools)
}

// ByArtist buckets each track into the first pool sharing at least one of its artist ids.
func ByArtist(tracks []models.Track, pools []models.Pool) *Result {
	result := newResult(len(pools), len(tracks))
	for _, track := range tracks {
		bucket := firstMatch(pools, func(p models.Pool) bool { return p.Intersects(track.ArtistIDs) })
		result.assign(track.ID, bucket)
	}
	return result
}

// ByLabel buckets each track into the first pool containing its album's label.
//
// Labels are resolved one track at a time, in order. Tracks without an album are not looked up and land in overflow.
// The first resolver error aborts classification.
func ByLabel(ctx context.Context, tracks []models.Track, pools []models.Pool, resolver LabelResolver) (*Result, error) {
	result := newResult(len(pools), len(tracks))
	for _, track := range tracks {
		if track.AlbumID == "" {
			result.assign(track.ID, len(pools))
			continue
		}

		label, err := resolver.AlbumLabel(ctx, track.AlbumID)
		if err != nil {
			return nil, fmt.Errorf("resolve label for track %s (album %s): %w", track.ID, track.AlbumID, err)
		}

		bucket := firstMatch(pools, func(p models.Pool) bool { return p.Contains(label) })
		result.assign(track.ID, bucket)
	}
	return result, nil
}
