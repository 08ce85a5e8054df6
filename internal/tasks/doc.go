// Package tasks splits one playlist into several with real-time progress reporting.
//
// # Core Operations
//
// [SplitEngine] exposes two operations:
//
//  1. [SplitEngine.Split] : full split
//     - Validates the [SplitConfig]
//     - Fetches every page of the origin playlist ([FetchAll])
//     - Buckets tracks by artist or by album label (package classifier)
//     - Creates missing destinations, then clears and rewrites each one in bucket order ([Writer])
//
//  2. [SplitEngine.Plan] : dry run
//     - Same fetch and classification, no playlist is created or written
//
// # Configuration
//
// A [SplitConfig] is a plain struct. [NewSplit] returns a [SplitBuilder] that sets each field once and
// reports repeated or missing fields from [SplitBuilder.Config].
//
// With no targets the engine creates len(pools)+1 playlists. With exactly len(pools) targets the unmatched
// tracks have nowhere to go and are reported in [SplitResult.Dropped].
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Label Lookups
//
// Label mode asks the catalog for one album per track by default. [EngineOptions.LabelLookup] switches to an
// in-memory cache or a persistent [classifier.LabelStore] (repositories.AlbumLabelRepository).
package tasks
