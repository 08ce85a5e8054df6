// Package repositories implements SQLite persistence for cached catalog lookups.
//
// Key Implementations:
//   - [AlbumLabelRepository] : album id to label cache backing the persistent label lookup policy
//
// Repositories take a *sql.DB opened by shared.OpenDatabase, which applies the embedded migrations.
// Only lookups are cached; playlists and tracks always come from the catalog.
package repositories
