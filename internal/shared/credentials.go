package shared

import (
	"fmt"
	"os"
	"strings"
)

// Environment variables consulted when a credential is not configured explicitly.
const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvRedirectURI  = "SPOTIFY_REDIRECT_URI"
)

// Credentials identifies the OAuth2 client used to log in to the catalog.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Map returns the credentials keyed the way services.NewSpotifyService expects.
func (c Credentials) Map() map[string]string {
	return map[string]string{
		"client_id":     c.ClientID,
		"client_secret": c.ClientSecret,
		"redirect_uri":  c.RedirectURI,
	}
}

// ResolveCredentials fills every field of explicit that is empty from the environment.
//
// getenv defaults to [os.Getenv]. Fields absent from both sources are reported with [ErrCredentialsMissing].
func ResolveCredentials(explicit Credentials, getenv func(string) string) (Credentials, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	pick := func(v, env string) string {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
		return strings.TrimSpace(getenv(env))
	}

	creds := Credentials{
		ClientID:     pick(explicit.ClientID, EnvClientID),
		ClientSecret: pick(explicit.ClientSecret, EnvClientSecret),
		RedirectURI:  pick(explicit.RedirectURI, EnvRedirectURI),
	}

	var missing []string
	if creds.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if creds.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if creds.RedirectURI == "" {
		missing = append(missing, "redirect_uri")
	}
	if len(missing) > 0 {
		return creds, fmt.Errorf("%w: %s (set them in config.toml or %s, %s, %s)",
			ErrCredentialsMissing, strings.Join(missing, ", "), EnvClientID, EnvClientSecret, EnvRedirectURI)
	}

	return creds, nil
}

// SpotifyCredentials extracts the explicitly configured client credentials.
func (c *Config) SpotifyCredentials() Credentials {
	return Credentials{
		ClientID:     c.Credentials.Spotify.ClientID,
		ClientSecret: c.Credentials.Spotify.ClientSecret,
		RedirectURI:  c.Credentials.Spotify.RedirectURI,
	}
}
