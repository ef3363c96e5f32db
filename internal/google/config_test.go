package google

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const installedSecretJSON = `{
  "installed": {
    "client_id": "file-id.apps.googleusercontent.com",
    "client_secret": "file-secret",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "redirect_uris": ["http://localhost:9999/cb", "http://localhost"]
  }
}`

const webSecretJSON = `{
  "web": {
    "client_id": "web-id.apps.googleusercontent.com",
    "client_secret": "web-secret",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "redirect_uris": ["http://localhost:8085/oauth2callback"]
  }
}`

func writeSecretFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(".", name), []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestResolveConfigPriority(t *testing.T) {
	tests := []struct {
		name       string
		explicit   *ClientCredentials
		files      map[string]string
		envID      string
		envSecret  string
		wantID     string
		wantSecret string
		wantErr    bool
	}{
		{
			name:       "explicit wins over file and env",
			explicit:   &ClientCredentials{ClientID: "explicit-id", ClientSecret: "explicit-secret"},
			files:      map[string]string{"client_secret.json": installedSecretJSON},
			envID:      "env-id",
			envSecret:  "env-secret",
			wantID:     "explicit-id",
			wantSecret: "explicit-secret",
		},
		{
			name:       "file wins over env",
			files:      map[string]string{"client_secret.json": installedSecretJSON},
			envID:      "env-id",
			envSecret:  "env-secret",
			wantID:     "file-id.apps.googleusercontent.com",
			wantSecret: "file-secret",
		},
		{
			name:       "second candidate used when first absent",
			files:      map[string]string{"credentials.json": webSecretJSON},
			wantID:     "web-id.apps.googleusercontent.com",
			wantSecret: "web-secret",
		},
		{
			name:       "malformed file falls through to env",
			files:      map[string]string{"client_secret.json": "{not json"},
			envID:      "env-id",
			envSecret:  "env-secret",
			wantID:     "env-id",
			wantSecret: "env-secret",
		},
		{
			name:       "env only",
			envID:      "env-id",
			envSecret:  "env-secret",
			wantID:     "env-id",
			wantSecret: "env-secret",
		},
		{
			name:    "nothing anywhere is fatal",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("GOOGLE_CLIENT_ID", tt.envID)
			t.Setenv("GOOGLE_CLIENT_SECRET", tt.envSecret)
			for name, content := range tt.files {
				writeSecretFile(t, name, content)
			}

			conf, err := ResolveConfig(tt.explicit)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveConfig: %v", err)
			}
			if conf.ClientID != tt.wantID {
				t.Errorf("ClientID = %q, want %q", conf.ClientID, tt.wantID)
			}
			if conf.ClientSecret != tt.wantSecret {
				t.Errorf("ClientSecret = %q, want %q", conf.ClientSecret, tt.wantSecret)
			}
			if len(conf.Scopes) == 0 {
				t.Error("expected read-only scopes to be set")
			}
		})
	}
}

func TestResolveConfigRedirectURI(t *testing.T) {
	t.Run("first listed redirect URI from file", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("GOOGLE_CLIENT_ID", "")
		t.Setenv("GOOGLE_CLIENT_SECRET", "")
		writeSecretFile(t, "client_secret.json", installedSecretJSON)

		conf, err := ResolveConfig(nil)
		if err != nil {
			t.Fatalf("ResolveConfig: %v", err)
		}
		if conf.RedirectURL != "http://localhost:9999/cb" {
			t.Errorf("RedirectURL = %q, want first listed URI", conf.RedirectURL)
		}
	})

	t.Run("fixed localhost default without file", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("GOOGLE_CLIENT_ID", "env-id")
		t.Setenv("GOOGLE_CLIENT_SECRET", "env-secret")

		conf, err := ResolveConfig(nil)
		if err != nil {
			t.Fatalf("ResolveConfig: %v", err)
		}
		if conf.RedirectURL != DefaultRedirectURL {
			t.Errorf("RedirectURL = %q, want %q", conf.RedirectURL, DefaultRedirectURL)
		}
	})
}

func TestResolveConfigErrNoCredentials(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("GOOGLE_CLIENT_SECRET", "")

	_, err := ResolveConfig(nil)
	if err == nil {
		t.Fatal("expected ErrNoCredentials")
	}
	if !errors.Is(err, ErrNoCredentials) {
		t.Errorf("error %v is not ErrNoCredentials", err)
	}
}
