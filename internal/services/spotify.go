// Spotify Web API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plsplit/internal/models"
	"github.com/desertthunder/plsplit/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// SpotifyBatchLimit is the most items the playlist item endpoints accept per call.
	SpotifyBatchLimit = 100

	defaultRedirectURI = "http://127.0.0.1:3000/callback"
	defaultRetryAfter  = time.Second
	defaultMaxWait     = time.Minute
	pageSize           = 100
)

// SpotifyScopes are the authorization scopes needed to read and rewrite playlists.
var SpotifyScopes = []string{
	"playlist-modify-private",
	"playlist-read-private",
	"playlist-modify-public",
	"user-read-private",
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Country     string `json:"country"`
	Product     string `json:"product"`
}

// SpotifyArtist is the simplified artist object embedded in tracks.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum is the album object. Label is only populated by the full album endpoint.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Label       string          `json:"label"`
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	URI         string          `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	IsLocal    bool            `json:"is_local"`
	Type       string          `json:"type"`
	URI        string          `json:"uri"`
}

// SpotifyPlaylistTrack represents a track within a playlist context. Track is null for removed items.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPlaylistTracks is the paging object returned by the playlist items endpoint.
type SpotifyPlaylistTracks struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type simplePlaylistTrack struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists and create responses).
type SpotifySimplePlaylist struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Owner       Owner               `json:"owner"`
	Public      bool                `json:"public"`
	Tracks      simplePlaylistTrack `json:"tracks"`
	URI         string              `json:"uri"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items  []SpotifySimplePlaylist `json:"items"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
	Next   *string                 `json:"next"`
}

type spotifyErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

type trackURIs struct {
	URIs []string `json:"uris"`
}

type trackRefs struct {
	Tracks []trackRef `json:"tracks"`
}

type trackRef struct {
	URI string `json:"uri"`
}

type createPlaylistBody struct {
	Name        string `json:"name"`
	Public      bool   `json:"public"`
	Description string `json:"description,omitempty"`
}

// SpotifyOption configures a [SpotifyService].
type SpotifyOption func(*SpotifyService)

// WithBaseURL points the service at another API root, used by tests.
func WithBaseURL(baseURL string) SpotifyOption {
	return func(s *SpotifyService) { s.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithTokenURL overrides the token endpoint used for exchange and refresh.
func WithTokenURL(tokenURL string) SpotifyOption {
	return func(s *SpotifyService) { s.config.Endpoint.TokenURL = tokenURL }
}

// WithRateLimit caps outgoing requests at rps per second. Zero or less disables the limiter.
func WithRateLimit(rps float64) SpotifyOption {
	return func(s *SpotifyService) {
		if rps <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithMaxRetries sets how many times a 429 response is retried.
func WithMaxRetries(n int) SpotifyOption {
	return func(s *SpotifyService) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithMaxRetryWait caps how long a single Retry-After may hold a request. Zero or less removes the cap.
func WithMaxRetryWait(d time.Duration) SpotifyOption {
	return func(s *SpotifyService) { s.maxRetryWait = d }
}

// WithPublicPlaylists makes created playlists public.
func WithPublicPlaylists(public bool) SpotifyOption {
	return func(s *SpotifyService) { s.public = public }
}

// WithLogger sets the logger used for retry and skip messages.
func WithLogger(logger *log.Logger) SpotifyOption {
	return func(s *SpotifyService) { s.logger = logger }
}

// SpotifyService implements [Catalog] and [OAuthService] for the Spotify Web API.
//
// Requests are serialised behind a rate limiter; 429 responses are retried after the advertised Retry-After.
type SpotifyService struct {
	config         *oauth2.Config
	token          *oauth2.Token
	httpClient     *http.Client
	baseURL        string
	limiter        *rate.Limiter
	maxRetries     int
	maxRetryWait   time.Duration
	public         bool
	logger         *log.Logger
	onTokenRefresh func(*oauth2.Token)
	mu             sync.Mutex
}

// NewSpotifyService creates a new Spotify service from "client_id", "client_secret" and "redirect_uri".
func NewSpotifyService(credentials map[string]string, opts ...SpotifyOption) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrCredentialsMissing)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrCredentialsMissing)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = defaultRedirectURI
	}

	s := &SpotifyService{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       SpotifyScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyAuthURL,
				TokenURL: spotifyTokenURL,
			},
		},
		httpClient:   http.DefaultClient,
		baseURL:      spotifyBaseURL,
		limiter:      rate.NewLimiter(rate.Limit(5), 1),
		maxRetries:   3,
		maxRetryWait: defaultMaxWait,
		logger:       log.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Login builds a [SpotifyService] from resolved credentials and authenticates it with a stored token.
//
// The returned service holds no resources to release; callers persist refreshed tokens through
// [SpotifyService.SetTokenRefreshCallback].
func Login(ctx context.Context, creds shared.Credentials, token *oauth2.Token, opts ...SpotifyOption) (*SpotifyService, error) {
	srv, err := NewSpotifyService(creds.Map(), opts...)
	if err != nil {
		return nil, err
	}

	if token == nil {
		return nil, fmt.Errorf("%w: run `plsplit spotify auth` first", shared.ErrNotAuthenticated)
	}

	if err := srv.OAuthenticate(ctx, token); err != nil {
		return nil, err
	}
	return srv, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate accepts either an "access_token" (optionally with "refresh_token") or an "auth_code" to exchange.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken := credentials["access_token"]; accessToken != "" {
		return s.OAuthenticate(ctx, &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
			TokenType:    "Bearer",
		})
	}

	if authCode := credentials["auth_code"]; authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrCredentialsMissing)
}

// OAuthenticate installs token and an HTTP client that refreshes it as needed.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrInvalidCredentials)
	}

	source := &refreshableTokenSource{
		source: s.config.TokenSource(context.WithoutCancel(ctx), token),
		last:   token.AccessToken,
		callback: func(t *oauth2.Token) {
			s.mu.Lock()
			s.token = t
			cb := s.onTokenRefresh
			s.mu.Unlock()
			if cb != nil {
				cb(t)
			}
		},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.httpClient = oauth2.NewClient(context.WithoutCancel(ctx), source)
	return nil
}

// SetTokenRefreshCallback registers a function invoked whenever the access token changes.
func (s *SpotifyService) SetTokenRefreshCallback(callback func(*oauth2.Token)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTokenRefresh = callback
}

// Token returns the most recent token, or nil before authentication.
func (s *SpotifyService) Token() *oauth2.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig exposes the OAuth2 configuration for the callback server.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

func (s *SpotifyService) BatchLimit() int {
	return SpotifyBatchLimit
}

// refreshableTokenSource wraps a token source and reports each new access token to callback.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)
	mu       sync.Mutex
	last     string
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	changed := token.AccessToken != r.last
	r.last = token.AccessToken
	r.mu.Unlock()

	if changed && r.callback != nil {
		r.callback(token)
	}
	return token, nil
}

// doRequest performs an authenticated request. endpoint is either a path under the API root or an absolute URL.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	s.mu.Lock()
	client, authed := s.httpClient, s.token != nil
	s.mu.Unlock()

	if !authed {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	apiURL := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		apiURL = s.baseURL + endpoint
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %s %s: %w", shared.ErrCatalog, method, endpoint, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < s.maxRetries {
			wait := s.retryWait(resp.Header.Get("Retry-After"))
			drain(resp)
			s.logger.Warn("rate limited, retrying", "endpoint", endpoint, "wait", wait, "attempt", attempt+1)

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			continue
		}

		return s.decodeResponse(resp, result)
	}
}

func (s *SpotifyService) decodeResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody spotifyErrorBody
		if data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil {
			if json.Unmarshal(data, &errBody) == nil && errBody.Error.Message != "" {
				apiErr.Message = errBody.Error.Message
			} else {
				apiErr.Message = strings.TrimSpace(string(data))
			}
		}
		return apiErr
	}

	if result == nil {
		drain(resp)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrCatalog, err)
	}
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(header string) time.Duration {
	if header == "" {
		return defaultRetryAfter
	}
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs < 0 {
		return defaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}

// retryWait is the Retry-After delay bounded by the configured maximum.
func (s *SpotifyService) retryWait(header string) time.Duration {
	wait := retryAfter(header)
	if s.maxRetryWait > 0 && wait > s.maxRetryWait {
		return s.maxRetryWait
	}
	return wait
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *SpotifyService) GetCurrentUserID(ctx context.Context) (string, error) {
	user, err := s.UserProfile(ctx)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// GetPlaylist fetches the first page of a playlist's items.
func (s *SpotifyService) GetPlaylist(ctx context.Context, playlistID string) (*Page, error) {
	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d", url.PathEscape(playlistID), pageSize)
	return s.fetchPage(ctx, endpoint)
}

// GetNextPage follows the absolute next URL of a previous page.
func (s *SpotifyService) GetNextPage(ctx context.Context, cursor string) (*Page, error) {
	if cursor == "" {
		return nil, fmt.Errorf("%w: empty page cursor", shared.ErrInvalidArgument)
	}
	return s.fetchPage(ctx, cursor)
}

func (s *SpotifyService) fetchPage(ctx context.Context, endpoint string) (*Page, error) {
	var response SpotifyPlaylistTracks
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	page := &Page{Items: make([]models.Track, 0, len(response.Items)), Total: response.Total}
	for _, item := range response.Items {
		if item.Track == nil || item.Track.ID == "" || item.Track.IsLocal {
			s.logger.Debug("skipping playlist item without catalog id", "added_at", item.AddedAt)
			continue
		}
		page.Items = append(page.Items, item.Track.toModel())
	}

	if response.Next != nil {
		page.Next = *response.Next
	}
	return page, nil
}

func (t *SpotifyTrack) toModel() models.Track {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		if a.ID != "" {
			artists = append(artists, a.ID)
		}
	}
	return models.Track{
		ID:        t.ID,
		Name:      t.Name,
		ArtistIDs: artists,
		AlbumID:   t.Album.ID,
	}
}

// GetAlbumLabel fetches the full album object and returns its label.
func (s *SpotifyService) GetAlbumLabel(ctx context.Context, albumID string) (string, error) {
	var album SpotifyAlbum
	if err := s.doRequest(ctx, http.MethodGet, "/albums/"+url.PathEscape(albumID), nil, &album); err != nil {
		return "", err
	}
	return album.Label, nil
}

// CreatePlaylist creates an empty playlist for ownerID.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, ownerID, name string) (*models.Playlist, error) {
	body := createPlaylistBody{Name: name, Public: s.public}

	var created SpotifySimplePlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(ownerID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &created); err != nil {
		return nil, err
	}

	return created.toModel(), nil
}

func (p *SpotifySimplePlaylist) toModel() *models.Playlist {
	return &models.Playlist{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.Owner.ID,
		TrackCount:  p.Tracks.Total,
		Public:      p.Public,
	}
}

// ReplaceItems overwrites the playlist with trackIDs.
func (s *SpotifyService) ReplaceItems(ctx context.Context, playlistID string, trackIDs []string) error {
	if err := checkBatch(trackIDs); err != nil {
		return err
	}
	return s.doRequest(ctx, http.MethodPut, itemsEndpoint(playlistID), trackURIs{URIs: uris(trackIDs)}, nil)
}

// AddItems appends trackIDs to the end of the playlist.
func (s *SpotifyService) AddItems(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}
	if err := checkBatch(trackIDs); err != nil {
		return err
	}
	return s.doRequest(ctx, http.MethodPost, itemsEndpoint(playlistID), trackURIs{URIs: uris(trackIDs)}, nil)
}

// RemoveAllOccurrences deletes every occurrence of trackIDs from the playlist.
func (s *SpotifyService) RemoveAllOccurrences(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}
	if err := checkBatch(trackIDs); err != nil {
		return err
	}

	refs := trackRefs{Tracks: make([]trackRef, 0, len(trackIDs))}
	for _, u := range uris(trackIDs) {
		refs.Tracks = append(refs.Tracks, trackRef{URI: u})
	}
	return s.doRequest(ctx, http.MethodDelete, itemsEndpoint(playlistID), refs, nil)
}

// UserPlaylists fetches one page of the current user's playlists.
func (s *SpotifyService) UserPlaylists(ctx context.Context, limit, offset int) (*SpotifyPaginatedPlaylists, error) {
	var response SpotifyPaginatedPlaylists
	endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// GetPlaylists retrieves all playlists for the authenticated user.
func (s *SpotifyService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	limit, offset := 50, 0

	for {
		response, err := s.UserPlaylists(ctx, limit, offset)
		if err != nil {
			return nil, err
		}

		for i := range response.Items {
			playlists = append(playlists, *response.Items[i].toModel())
		}

		if response.Next == nil || len(response.Items) == 0 {
			break
		}
		offset += limit
	}

	return playlists, nil
}

func itemsEndpoint(playlistID string) string {
	return fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
}

func uris(trackIDs []string) []string {
	out := make([]string, len(trackIDs))
	for i, id := range trackIDs {
		out[i] = TrackURI(id)
	}
	return out
}

func checkBatch(trackIDs []string) error {
	if len(trackIDs) > SpotifyBatchLimit {
		return fmt.Errorf("%w: %d tracks exceeds batch limit of %d", shared.ErrInvalidArgument, len(trackIDs), SpotifyBatchLimit)
	}
	return nil
}
