// Package models defines the plain data types passed between packages.
//
//   - [Track] : a playlist entry with its artist ids and album id
//   - [Playlist] : playlist metadata returned by the catalog
//   - [Pool] : an ordered group's set of matching keys
//   - [SplitMode] : artist or label classification
//   - [AlbumLabel] : a cached album label lookup
//
// Pools are ordered by their position in a slice; the position decides which pool wins when a track matches several.
package models
