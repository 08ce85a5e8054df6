// Package classifier partitions tracks into the buckets of a split.
//
// Given N ordered pools, every track is assigned to exactly one of N+1 buckets: the index of the first pool it
// matches, or N (the overflow bucket) when it matches none. Partitions are stable: within a bucket, tracks keep
// their input order.
//
// # Artist Mode
//
// [ByArtist] matches when a pool shares at least one artist id with the track.
//
// # Label Mode
//
// [ByLabel] resolves each track's album label through a [LabelResolver] and matches on exact label equality.
// The plain resolver issues one lookup per track; wrap it in a [CachedResolver] to look each album up once.
package classifier
