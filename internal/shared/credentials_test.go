package shared

import (
	"errors"
	"strings"
	"testing"
)

func TestResolveCredentials(t *testing.T) {
	env := func(vals map[string]string) func(string) string {
		return func(k string) string { return vals[k] }
	}

	tests := []struct {
		name     string
		explicit Credentials
		env      map[string]string
		want     Credentials
		wantErr  string
	}{
		{
			name:     "explicit only",
			explicit: Credentials{ClientID: "id", ClientSecret: "secret", RedirectURI: "http://localhost/cb"},
			want:     Credentials{ClientID: "id", ClientSecret: "secret", RedirectURI: "http://localhost/cb"},
		},
		{
			name: "environment only",
			env: map[string]string{
				EnvClientID:     "env-id",
				EnvClientSecret: "env-secret",
				EnvRedirectURI:  "http://env/cb",
			},
			want: Credentials{ClientID: "env-id", ClientSecret: "env-secret", RedirectURI: "http://env/cb"},
		},
		{
			name:     "explicit wins per field",
			explicit: Credentials{ClientID: "id"},
			env: map[string]string{
				EnvClientID:     "env-id",
				EnvClientSecret: "env-secret",
				EnvRedirectURI:  "http://env/cb",
			},
			want: Credentials{ClientID: "id", ClientSecret: "env-secret", RedirectURI: "http://env/cb"},
		},
		{
			name:     "missing redirect uri",
			explicit: Credentials{ClientID: "id", ClientSecret: "secret"},
			wantErr:  "redirect_uri",
		},
		{
			name:    "everything missing",
			wantErr: "client_id, client_secret, redirect_uri",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveCredentials(tt.explicit, env(tt.env))
			if tt.wantErr != "" {
				if !errors.Is(err, ErrCredentialsMissing) {
					t.Fatalf("expected ErrCredentialsMissing, got %v", err)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error %q should mention %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveCredentials() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
