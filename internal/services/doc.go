// Package services defines the [Catalog] interface used by the split engine and implements it for Spotify.
//
// # Catalog Interface
//
// A split needs a small set of remote operations: paged playlist reads, album label lookups, playlist creation
// and three playlist write calls (replace, remove all occurrences, append). [Catalog] names exactly those, so
// the engine can be driven by the Spotify adapter or an in-memory double.
//
// Catalogs that can empty a playlist directly may also implement [Clearer].
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token refresh.
// Refreshed tokens are reported through [SpotifyService.SetTokenRefreshCallback] so the CLI can persist them.
//
// Requests pass through a [rate.Limiter]. A 429 response is retried after its Retry-After delay up to the
// configured retry count; any other non-2xx response becomes an [*APIError].
//
// # Error Handling
//
// [*APIError] matches sentinels from the shared package with [errors.Is]:
//   - [shared.ErrCatalog] : every API error
//   - [shared.ErrTokenExpired] : 401, reauthorization needed
//   - [shared.ErrPlaylistNotFound] : 404
//   - [shared.ErrServiceUnavailable] : 5xx
//
// # References
//
// [ParseID] accepts bare ids, spotify: URIs and open.spotify.com URLs for playlists, artists, albums and tracks.
package services
