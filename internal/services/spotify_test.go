package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plsplit/internal/shared"
	"golang.org/x/oauth2"
)

var testCredentials = map[string]string{
	"client_id":     "test_client_id",
	"client_secret": "test_client_secret",
}

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

// apiRecorder serves canned responses keyed by "METHOD /path" and records every request.
type apiRecorder struct {
	mu        sync.Mutex
	requests  []recordedRequest
	responses map[string][]cannedResponse
}

type cannedResponse struct {
	status  int
	body    string
	headers map[string]string
}

func newAPIRecorder() *apiRecorder {
	return &apiRecorder{responses: make(map[string][]cannedResponse)}
}

func (a *apiRecorder) on(method, path string, status int, body string) *apiRecorder {
	key := method + " " + path
	a.responses[key] = append(a.responses[key], cannedResponse{status: status, body: body})
	return a
}

func (a *apiRecorder) onWithHeaders(method, path string, status int, body string, headers map[string]string) *apiRecorder {
	key := method + " " + path
	a.responses[key] = append(a.responses[key], cannedResponse{status: status, body: body, headers: headers})
	return a
}

func (a *apiRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	a.mu.Lock()
	a.requests = append(a.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Auth:   r.Header.Get("Authorization"),
		Body:   string(body),
	})
	key := r.Method + " " + r.URL.Path
	queue := a.responses[key]
	var resp cannedResponse
	if len(queue) > 0 {
		resp = queue[0]
		if len(queue) > 1 {
			a.responses[key] = queue[1:]
		}
	}
	a.mu.Unlock()

	if resp.status == 0 {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"status":404,"message":"no canned response"}}`)
		return
	}

	for k, v := range resp.headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	fmt.Fprint(w, resp.body)
}

func (a *apiRecorder) calls() []recordedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]recordedRequest(nil), a.requests...)
}

func newTestService(t *testing.T, api http.Handler, opts ...SpotifyOption) (*SpotifyService, *httptest.Server) {
	t.Helper()

	ts := httptest.NewServer(api)
	t.Cleanup(ts.Close)

	opts = append([]SpotifyOption{
		WithBaseURL(ts.URL + "/v1"),
		WithRateLimit(0),
		WithLogger(log.New(io.Discard)),
	}, opts...)

	srv, err := NewSpotifyService(testCredentials, opts...)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	if err := srv.OAuthenticate(context.Background(), &oauth2.Token{AccessToken: "test_token"}); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	return srv, ts
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
				"redirect_uri":  "http://127.0.0.1:9999/callback",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
			if srv.config.RedirectURL != "http://127.0.0.1:9999/callback" {
				t.Errorf("unexpected redirect URI %s", srv.config.RedirectURL)
			}
			if srv.BatchLimit() != SpotifyBatchLimit {
				t.Errorf("expected batch limit %d, got %d", SpotifyBatchLimit, srv.BatchLimit())
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_secret": "test_client_secret"})
			if !errors.Is(err, shared.ErrCredentialsMissing) {
				t.Errorf("expected ErrCredentialsMissing, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_id": "test_client_id"})
			if !errors.Is(err, shared.ErrCredentialsMissing) {
				t.Errorf("expected ErrCredentialsMissing, got %v", err)
			}
		})

		t.Run("Default Redirect URI", func(t *testing.T) {
			srv, err := NewSpotifyService(testCredentials)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.config.RedirectURL != defaultRedirectURI {
				t.Errorf("expected default redirect URI, got %s", srv.config.RedirectURL)
			}
		})
	})

	t.Run("Get AuthURL", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.GetAuthURL("test_state")

		for _, want := range []string{"accounts.spotify.com", "test_client_id", "test_state", "playlist-modify-private"} {
			if !strings.Contains(authURL, want) {
				t.Errorf("auth URL should contain %q: %s", want, authURL)
			}
		}

		if srv.GetOAuthConfig() != srv.config {
			t.Error("expected GetOAuthConfig to return the service config")
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		t.Run("WithAccessToken", func(t *testing.T) {
			err := srv.Authenticate(context.Background(), map[string]string{
				"access_token":  "test_access_token",
				"refresh_token": "test_refresh_token",
			})
			if err != nil {
				t.Errorf("expected no error with access token, got %v", err)
			}

			token := srv.Token()
			if token == nil {
				t.Fatal("expected token to be set")
			}
			if token.AccessToken != "test_access_token" || token.RefreshToken != "test_refresh_token" {
				t.Errorf("unexpected token %+v", token)
			}
		})

		t.Run("Missing Credentials", func(t *testing.T) {
			err := srv.Authenticate(context.Background(), map[string]string{})
			if !errors.Is(err, shared.ErrCredentialsMissing) {
				t.Errorf("expected ErrCredentialsMissing, got %v", err)
			}
		})

		t.Run("Empty token", func(t *testing.T) {
			err := srv.OAuthenticate(context.Background(), &oauth2.Token{})
			if !errors.Is(err, shared.ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	})

	t.Run("Login", func(t *testing.T) {
		creds := shared.Credentials{ClientID: "id", ClientSecret: "secret", RedirectURI: "http://127.0.0.1:3000/callback"}

		t.Run("with stored token", func(t *testing.T) {
			srv, err := Login(context.Background(), creds, &oauth2.Token{AccessToken: "stored"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Token().AccessToken != "stored" {
				t.Errorf("expected stored token, got %s", srv.Token().AccessToken)
			}
		})

		t.Run("without token", func(t *testing.T) {
			_, err := Login(context.Background(), creds, nil)
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})
	})

	t.Run("Catalog Interface", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		var _ Catalog = srv
		var _ OAuthService = srv
	})

	t.Run("Requires Authentication", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		if _, err := srv.GetCurrentUserID(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("SetTokenRefreshCallback", func(t *testing.T) {
		srv, err := NewSpotifyService(testCredentials)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		t.Run("sets callback successfully", func(t *testing.T) {
			srv.SetTokenRefreshCallback(func(token *oauth2.Token) {})

			if srv.onTokenRefresh == nil {
				t.Error("expected callback to be set")
			}
		})

		t.Run("can set nil callback", func(t *testing.T) {
			srv.SetTokenRefreshCallback(nil)
			if srv.onTokenRefresh != nil {
				t.Error("expected callback to be nil")
			}
		})
	})

	t.Run("refreshableTokenSource", func(t *testing.T) {
		t.Run("calls callback on first token fetch", func(t *testing.T) {
			var capturedToken *oauth2.Token

			source := &refreshableTokenSource{
				source: &mockTokenSource{token: &oauth2.Token{AccessToken: "test_token"}},
				callback: func(token *oauth2.Token) {
					capturedToken = token
				},
			}

			token, err := source.Token()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if capturedToken == nil || capturedToken.AccessToken != "test_token" {
				t.Errorf("expected callback with 'test_token', got %+v", capturedToken)
			}
			if token.AccessToken != "test_token" {
				t.Errorf("expected returned token to be 'test_token', got %s", token.AccessToken)
			}
		})

		t.Run("skips the token it was seeded with", func(t *testing.T) {
			callCount := 0
			mockSource := &mockTokenSource{token: &oauth2.Token{AccessToken: "token1"}}

			source := &refreshableTokenSource{
				source:   mockSource,
				last:     "token1",
				callback: func(token *oauth2.Token) { callCount++ },
			}

			_, _ = source.Token()
			if callCount != 0 {
				t.Errorf("expected no callback for the seeded token, got %d", callCount)
			}

			mockSource.token = &oauth2.Token{AccessToken: "token2"}
			token2, _ := source.Token()
			_, _ = source.Token()

			if callCount != 1 {
				t.Errorf("expected callback once after refresh, got %d", callCount)
			}
			if token2.AccessToken != "token2" {
				t.Errorf("expected new token, got %s", token2.AccessToken)
			}
		})

		t.Run("handles nil callback gracefully", func(t *testing.T) {
			source := &refreshableTokenSource{
				source: &mockTokenSource{token: &oauth2.Token{AccessToken: "test_token"}},
			}

			token, err := source.Token()
			if err != nil {
				t.Fatalf("expected no error with nil callback, got %v", err)
			}
			if token.AccessToken != "test_token" {
				t.Error("expected token to be returned despite nil callback")
			}
		})

		t.Run("propagates source errors", func(t *testing.T) {
			source := &refreshableTokenSource{
				source: &mockTokenSource{err: errors.New("token source error")},
				callback: func(token *oauth2.Token) {
					t.Error("callback should not be called on error")
				},
			}

			token, err := source.Token()
			if err == nil || !strings.Contains(err.Error(), "token source error") {
				t.Fatalf("expected source error, got %v", err)
			}
			if token != nil {
				t.Error("expected nil token on error")
			}
		})
	})

	t.Run("Token Refresh", func(t *testing.T) {
		tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"refreshed","token_type":"Bearer","expires_in":3600,"refresh_token":"r2"}`)
		}))
		defer tokenServer.Close()

		api := newAPIRecorder().on(http.MethodGet, "/v1/me", http.StatusOK, `{"id":"user1"}`)
		ts := httptest.NewServer(api)
		defer ts.Close()

		srv, err := NewSpotifyService(testCredentials,
			WithBaseURL(ts.URL+"/v1"), WithTokenURL(tokenServer.URL), WithRateLimit(0), WithLogger(log.New(io.Discard)))
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		var refreshed *oauth2.Token
		srv.SetTokenRefreshCallback(func(token *oauth2.Token) { refreshed = token })

		expired := &oauth2.Token{AccessToken: "stale", RefreshToken: "r1", Expiry: time.Now().Add(-time.Hour)}
		if err := srv.OAuthenticate(context.Background(), expired); err != nil {
			t.Fatalf("failed to authenticate: %v", err)
		}

		id, err := srv.GetCurrentUserID(context.Background())
		if err != nil {
			t.Fatalf("GetCurrentUserID() error = %v", err)
		}
		if id != "user1" {
			t.Errorf("expected user1, got %s", id)
		}

		if refreshed == nil || refreshed.AccessToken != "refreshed" {
			t.Fatalf("expected refresh callback with new token, got %+v", refreshed)
		}
		if srv.Token().AccessToken != "refreshed" {
			t.Errorf("expected service to hold the refreshed token, got %s", srv.Token().AccessToken)
		}
		if auth := api.calls()[0].Auth; auth != "Bearer refreshed" {
			t.Errorf("expected refreshed bearer token, got %q", auth)
		}
	})
}

func TestSpotifyCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("GetPlaylist and GetNextPage", func(t *testing.T) {
		api := newAPIRecorder()
		srv, ts := newTestService(t, api)

		api.on(http.MethodGet, "/v1/playlists/pl1/tracks", http.StatusOK, fmt.Sprintf(`{
			"total": 4,
			"next": "%s/v1/playlists/pl1/tracks?offset=100&limit=100",
			"items": [
				{"track": {"id": "t1", "name": "One", "artists": [{"id": "a1"}, {"id": "a2"}], "album": {"id": "al1"}}},
				{"track": null},
				{"track": {"id": "", "name": "Local", "is_local": true, "artists": [{"id": ""}], "album": {"id": ""}}}
			]
		}`, ts.URL))
		api.on(http.MethodGet, "/v1/playlists/pl1/tracks", http.StatusOK, `{
			"total": 4,
			"next": null,
			"items": [{"track": {"id": "t2", "artists": [{"id": "a3"}], "album": {"id": "al2"}}}]
		}`)

		first, err := srv.GetPlaylist(ctx, "pl1")
		if err != nil {
			t.Fatalf("GetPlaylist() error = %v", err)
		}
		if len(first.Items) != 1 {
			t.Fatalf("expected 1 usable item, got %d", len(first.Items))
		}
		if got := first.Items[0]; got.ID != "t1" || got.AlbumID != "al1" || len(got.ArtistIDs) != 2 {
			t.Errorf("unexpected track %+v", got)
		}
		if first.Next == "" {
			t.Fatal("expected next cursor")
		}

		second, err := srv.GetNextPage(ctx, first.Next)
		if err != nil {
			t.Fatalf("GetNextPage() error = %v", err)
		}
		if second.Next != "" {
			t.Errorf("expected empty cursor on last page, got %q", second.Next)
		}
		if len(second.Items) != 1 || second.Items[0].ID != "t2" {
			t.Errorf("unexpected second page %+v", second.Items)
		}

		calls := api.calls()
		if calls[0].Query != "limit=100" {
			t.Errorf("expected limit=100 on first page, got %q", calls[0].Query)
		}
		if calls[1].Query != "offset=100&limit=100" {
			t.Errorf("expected next URL to be followed verbatim, got %q", calls[1].Query)
		}
		if calls[0].Auth != "Bearer test_token" {
			t.Errorf("expected bearer auth, got %q", calls[0].Auth)
		}
	})

	t.Run("GetNextPage requires cursor", func(t *testing.T) {
		srv, _ := newTestService(t, newAPIRecorder())
		if _, err := srv.GetNextPage(ctx, ""); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("GetAlbumLabel", func(t *testing.T) {
		api := newAPIRecorder().on(http.MethodGet, "/v1/albums/al1", http.StatusOK, `{"id":"al1","label":"Warp Records"}`)
		srv, _ := newTestService(t, api)

		label, err := srv.GetAlbumLabel(ctx, "al1")
		if err != nil {
			t.Fatalf("GetAlbumLabel() error = %v", err)
		}
		if label != "Warp Records" {
			t.Errorf("expected 'Warp Records', got %q", label)
		}
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		api := newAPIRecorder().on(http.MethodPost, "/v1/users/user1/playlists", http.StatusCreated,
			`{"id":"new1","name":"Split 1","owner":{"id":"user1"},"public":false,"tracks":{"total":0}}`)
		srv, _ := newTestService(t, api)

		playlist, err := srv.CreatePlaylist(ctx, "user1", "Split 1")
		if err != nil {
			t.Fatalf("CreatePlaylist() error = %v", err)
		}
		if playlist.ID != "new1" || playlist.OwnerID != "user1" {
			t.Errorf("unexpected playlist %+v", playlist)
		}

		var body createPlaylistBody
		if err := json.Unmarshal([]byte(api.calls()[0].Body), &body); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if body.Name != "Split 1" || body.Public {
			t.Errorf("unexpected request body %+v", body)
		}
	})

	t.Run("Playlist item writes", func(t *testing.T) {
		api := newAPIRecorder().
			on(http.MethodPut, "/v1/playlists/pl1/tracks", http.StatusOK, `{"snapshot_id":"s1"}`).
			on(http.MethodDelete, "/v1/playlists/pl1/tracks", http.StatusOK, `{"snapshot_id":"s2"}`).
			on(http.MethodPost, "/v1/playlists/pl1/tracks", http.StatusCreated, `{"snapshot_id":"s3"}`)
		srv, _ := newTestService(t, api)

		if err := srv.ReplaceItems(ctx, "pl1", []string{"ph"}); err != nil {
			t.Fatalf("ReplaceItems() error = %v", err)
		}
		if err := srv.RemoveAllOccurrences(ctx, "pl1", []string{"ph"}); err != nil {
			t.Fatalf("RemoveAllOccurrences() error = %v", err)
		}
		if err := srv.AddItems(ctx, "pl1", []string{"t1", "t2"}); err != nil {
			t.Fatalf("AddItems() error = %v", err)
		}

		calls := api.calls()
		if len(calls) != 3 {
			t.Fatalf("expected 3 calls, got %d", len(calls))
		}

		want := []string{
			`{"uris":["spotify:track:ph"]}`,
			`{"tracks":[{"uri":"spotify:track:ph"}]}`,
			`{"uris":["spotify:track:t1","spotify:track:t2"]}`,
		}
		for i, call := range calls {
			if call.Body != want[i] {
				t.Errorf("call %d (%s) body = %s, want %s", i, call.Method, call.Body, want[i])
			}
		}
	})

	t.Run("Empty writes are skipped", func(t *testing.T) {
		api := newAPIRecorder()
		srv, _ := newTestService(t, api)

		if err := srv.AddItems(ctx, "pl1", nil); err != nil {
			t.Fatalf("AddItems() error = %v", err)
		}
		if err := srv.RemoveAllOccurrences(ctx, "pl1", nil); err != nil {
			t.Fatalf("RemoveAllOccurrences() error = %v", err)
		}
		if len(api.calls()) != 0 {
			t.Errorf("expected no requests, got %d", len(api.calls()))
		}
	})

	t.Run("Batch limit enforced", func(t *testing.T) {
		srv, _ := newTestService(t, newAPIRecorder())
		ids := make([]string, SpotifyBatchLimit+1)
		for i := range ids {
			ids[i] = fmt.Sprintf("t%d", i)
		}
		if err := srv.AddItems(ctx, "pl1", ids); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Retries 429 with Retry-After", func(t *testing.T) {
		api := newAPIRecorder().
			onWithHeaders(http.MethodGet, "/v1/albums/al1", http.StatusTooManyRequests, `{}`, map[string]string{"Retry-After": "0"}).
			onWithHeaders(http.MethodGet, "/v1/albums/al1", http.StatusTooManyRequests, `{}`, map[string]string{"Retry-After": "0"}).
			on(http.MethodGet, "/v1/albums/al1", http.StatusOK, `{"label":"XL"}`)
		srv, _ := newTestService(t, api, WithMaxRetries(3))

		label, err := srv.GetAlbumLabel(ctx, "al1")
		if err != nil {
			t.Fatalf("GetAlbumLabel() error = %v", err)
		}
		if label != "XL" {
			t.Errorf("expected XL, got %q", label)
		}
		if n := len(api.calls()); n != 3 {
			t.Errorf("expected 3 attempts, got %d", n)
		}
	})

	t.Run("Caps a long Retry-After", func(t *testing.T) {
		api := newAPIRecorder().
			onWithHeaders(http.MethodGet, "/v1/albums/al1", http.StatusTooManyRequests, `{}`, map[string]string{"Retry-After": "86400"}).
			on(http.MethodGet, "/v1/albums/al1", http.StatusOK, `{"label":"XL"}`)
		srv, _ := newTestService(t, api, WithMaxRetries(1), WithMaxRetryWait(time.Millisecond))

		start := time.Now()
		if _, err := srv.GetAlbumLabel(ctx, "al1"); err != nil {
			t.Fatalf("GetAlbumLabel() error = %v", err)
		}
		if elapsed := time.Since(start); elapsed > 5*time.Second {
			t.Errorf("retry waited %v", elapsed)
		}
	})

	t.Run("Gives up after max retries", func(t *testing.T) {
		api := newAPIRecorder().
			onWithHeaders(http.MethodGet, "/v1/albums/al1", http.StatusTooManyRequests,
				`{"error":{"status":429,"message":"API rate limit exceeded"}}`, map[string]string{"Retry-After": "0"})
		srv, _ := newTestService(t, api, WithMaxRetries(2))

		_, err := srv.GetAlbumLabel(ctx, "al1")

		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("expected 429 APIError, got %v", err)
		}
		if apiErr.Message != "API rate limit exceeded" {
			t.Errorf("unexpected message %q", apiErr.Message)
		}
		if n := len(api.calls()); n != 3 {
			t.Errorf("expected 3 attempts, got %d", n)
		}
	})

	t.Run("Unauthorized maps to ErrTokenExpired", func(t *testing.T) {
		api := newAPIRecorder().on(http.MethodGet, "/v1/me", http.StatusUnauthorized,
			`{"error":{"status":401,"message":"The access token expired"}}`)
		srv, _ := newTestService(t, api)

		_, err := srv.GetCurrentUserID(ctx)
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
		if !errors.Is(err, shared.ErrCatalog) {
			t.Errorf("expected ErrCatalog, got %v", err)
		}
	})

	t.Run("GetPlaylists pages until next is null", func(t *testing.T) {
		api := newAPIRecorder().
			on(http.MethodGet, "/v1/me/playlists", http.StatusOK,
				`{"items":[{"id":"p1","name":"One","tracks":{"total":3}}],"next":"more"}`).
			on(http.MethodGet, "/v1/me/playlists", http.StatusOK,
				`{"items":[{"id":"p2","name":"Two","tracks":{"total":5}}],"next":null}`)
		srv, _ := newTestService(t, api)

		playlists, err := srv.GetPlaylists(ctx)
		if err != nil {
			t.Fatalf("GetPlaylists() error = %v", err)
		}
		if len(playlists) != 2 || playlists[1].TrackCount != 5 {
			t.Errorf("unexpected playlists %+v", playlists)
		}
		if q := api.calls()[1].Query; q != "limit=50&offset=50" {
			t.Errorf("expected second page offset, got %q", q)
		}
	})
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", defaultRetryAfter},
		{"3", 3 * time.Second},
		{" 0 ", 0},
		{"soon", defaultRetryAfter},
		{"-1", defaultRetryAfter},
	}

	for _, tt := range tests {
		if got := retryAfter(tt.header); got != tt.want {
			t.Errorf("retryAfter(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestRetryWait(t *testing.T) {
	tests := []struct {
		name   string
		max    time.Duration
		header string
		want   time.Duration
	}{
		{"under the cap", time.Minute, "3", 3 * time.Second},
		{"over the cap", time.Minute, "3600", time.Minute},
		{"no cap", 0, "3600", time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &SpotifyService{maxRetryWait: tt.max}
			if got := srv.retryWait(tt.header); got != tt.want {
				t.Errorf("retryWait(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

// mockTokenSource implements [oauth2.TokenSource] for testing
type mockTokenSource struct {
	token *oauth2.Token
	err   error
}

func (m *mockTokenSource) Token() (*oauth2.Token, error) {
	return m.token, m.err
}
