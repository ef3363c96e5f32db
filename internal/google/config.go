package google

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrNoCredentials is returned by ResolveConfig when every credential
// source has been exhausted. Callers treat it as fatal: without a client
// id and secret the server cannot authorize anything.
var ErrNoCredentials = errors.New("no Google OAuth client credentials found")

// DefaultRedirectURL is used when no credential source supplies a
// redirect URI. It points at the callback server's fixed listen address.
const DefaultRedirectURL = "http://" + CallbackAddr + callbackPath

// secretFileCandidates are the fixed locations probed for a client
// secret file, in order. Both the "installed" and "web" layouts that the
// Google Cloud console produces are accepted.
var secretFileCandidates = []string{
	"client_secret.json",
	"credentials.json",
}

// ClientCredentials is an explicit client id/secret override, usually
// populated from command-line flags.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
}

// ResolveConfig builds the OAuth2 configuration by merging credential
// sources per field, first match wins: explicit override, then a local
// client secret file, then environment variables. A candidate file that
// is missing or unparsable is skipped silently and resolution moves on;
// only ending up without a client id and secret returns ErrNoCredentials.
func ResolveConfig(explicit *ClientCredentials) (*oauth2.Config, error) {
	conf := &oauth2.Config{
		Endpoint: google.Endpoint,
		Scopes:   DefaultScopes,
	}

	if explicit != nil {
		conf.ClientID = explicit.ClientID
		conf.ClientSecret = explicit.ClientSecret
	}

	if fileConf := configFromSecretFile(); fileConf != nil {
		if conf.ClientID == "" {
			conf.ClientID = fileConf.ClientID
		}
		if conf.ClientSecret == "" {
			conf.ClientSecret = fileConf.ClientSecret
		}
		// ConfigFromJSON already picked the first listed redirect URI.
		conf.RedirectURL = fileConf.RedirectURL
	}

	if conf.ClientID == "" {
		conf.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if conf.ClientSecret == "" {
		conf.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}
	if conf.RedirectURL == "" {
		conf.RedirectURL = DefaultRedirectURL
	}

	if conf.ClientID == "" || conf.ClientSecret == "" {
		return nil, fmt.Errorf("%w: checked explicit flags, %v, and GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET",
			ErrNoCredentials, secretFileCandidates)
	}

	return conf, nil
}

// configFromSecretFile probes the candidate secret files and returns the
// first one that parses, or nil when none do.
func configFromSecretFile() *oauth2.Config {
	for _, path := range secretFileCandidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		conf, err := google.ConfigFromJSON(data, DefaultScopes...)
		if err != nil {
			continue
		}
		return conf
	}
	return nil
}
