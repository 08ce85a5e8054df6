package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/plsplit/internal/models"
	"github.com/desertthunder/plsplit/internal/shared"
	"golang.org/x/oauth2"
)

// Catalog is the remote music catalog a split reads from and writes to.
type Catalog interface {
	// GetPlaylist returns the first page of a playlist's tracks.
	GetPlaylist(ctx context.Context, playlistID string) (*Page, error)

	// GetNextPage follows a cursor returned in [Page.Next].
	GetNextPage(ctx context.Context, cursor string) (*Page, error)

	// GetAlbumLabel returns the publishing label of an album.
	GetAlbumLabel(ctx context.Context, albumID string) (string, error)

	// CreatePlaylist creates an empty playlist owned by ownerID.
	CreatePlaylist(ctx context.Context, ownerID, name string) (*models.Playlist, error)

	GetCurrentUserID(ctx context.Context) (string, error)

	// ReplaceItems sets the playlist contents to exactly trackIDs.
	ReplaceItems(ctx context.Context, playlistID string, trackIDs []string) error

	// RemoveAllOccurrences removes every occurrence of each of trackIDs.
	RemoveAllOccurrences(ctx context.Context, playlistID string, trackIDs []string) error

	// AddItems appends trackIDs to the playlist in order.
	AddItems(ctx context.Context, playlistID string, trackIDs []string) error

	// BatchLimit is the largest number of tracks a single write call accepts.
	BatchLimit() int
}

// Clearer is implemented by catalogs that can empty a playlist in one call.
type Clearer interface {
	ClearItems(ctx context.Context, playlistID string) error
}

// Page is one page of playlist tracks. An empty Next means there are no more pages.
type Page struct {
	Items []models.Track
	Next  string
	Total int
}

// OAuthService extends [Catalog] for providers using the authorization code flow.
type OAuthService interface {
	Catalog
	GetAuthURL(state string) string
	GetOAuthConfig() *oauth2.Config
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
	SetTokenRefreshCallback(callback func(*oauth2.Token))
	Token() *oauth2.Token
}

// APIError is a non-2xx response from the catalog API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog API error: status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("catalog API error: status %d: %s", e.StatusCode, e.Message)
}

// Is matches [shared.ErrCatalog] for every status plus a narrower sentinel where one applies.
func (e *APIError) Is(target error) bool {
	switch target {
	case shared.ErrCatalog:
		return true
	case shared.ErrTokenExpired, shared.ErrNotAuthenticated:
		return e.StatusCode == http.StatusUnauthorized
	case shared.ErrPlaylistNotFound:
		return e.StatusCode == http.StatusNotFound
	case shared.ErrServiceUnavailable:
		return e.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// IsAuthError reports whether err should send the user back through authorization.
func IsAuthError(err error) bool {
	return errors.Is(err, shared.ErrTokenExpired) || errors.Is(err, shared.ErrNotAuthenticated)
}

// ParseID extracts the bare id of kind ("playlist", "artist", "track", "album") from ref.
//
// Accepted forms:
//   - 37i9dQZF1DXcBWIGoYBM5M
//   - spotify:playlist:37i9dQZF1DXcBWIGoYBM5M
//   - https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=...
func ParseID(kind, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty %s reference", shared.ErrInvalidInput, kind)
	}

	if strings.HasPrefix(ref, "spotify:") {
		parts := strings.Split(ref, ":")
		if len(parts) < 3 || parts[len(parts)-2] != kind || parts[len(parts)-1] == "" {
			return "", fmt.Errorf("%w: %q is not a %s URI", shared.ErrInvalidInput, ref, kind)
		}
		return parts[len(parts)-1], nil
	}

	if strings.Contains(ref, "/") {
		if !strings.Contains(ref, "://") {
			ref = "https://" + ref
		}
		u, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}

		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i := 0; i < len(segments)-1; i++ {
			if segments[i] == kind && segments[i+1] != "" {
				return segments[i+1], nil
			}
		}
		return "", fmt.Errorf("%w: %q is not a %s URL", shared.ErrInvalidInput, ref, kind)
	}

	for _, r := range ref {
		if !isBase62(r) {
			return "", fmt.Errorf("%w: %q is not a %s id", shared.ErrInvalidInput, ref, kind)
		}
	}
	return ref, nil
}

// ParseIDs applies [ParseID] to each ref.
func ParseIDs(kind string, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := ParseID(kind, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func isBase62(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// TrackURI formats a track id as a catalog URI.
func TrackURI(id string) string {
	return "spotify:track:" + id
}
