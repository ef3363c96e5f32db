package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// tokenEndpoint fakes the provider's token endpoint. Each call sees the
// grant type the oauth2 transport actually sent.
func tokenEndpoint(t *testing.T, handler func(grantType string, w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		handler(r.FormValue("grant_type"), w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func grantJSON(w http.ResponseWriter, accessToken, refreshToken string) {
	w.Header().Set("Content-Type", "application/json")
	body := fmt.Sprintf(`{"access_token":%q,"token_type":"Bearer","expires_in":3600`, accessToken)
	if refreshToken != "" {
		body += fmt.Sprintf(`,"refresh_token":%q`, refreshToken)
	}
	body += "}"
	fmt.Fprint(w, body)
}

func grantDenied(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprint(w, `{"error":"invalid_grant"}`)
}

func newTestSession(t *testing.T, tokenURL string) *Session {
	t.Helper()
	conf := &oauth2.Config{
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		RedirectURL:  DefaultRedirectURL,
		Scopes:       DefaultScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  tokenURL + "/auth",
			TokenURL: tokenURL + "/token",
		},
	}
	store := NewTokenStoreAt(t.TempDir())
	return NewSession(conf, store)
}

func TestIsAuthenticated(t *testing.T) {
	tests := []struct {
		name  string
		token *oauth2.Token
		want  bool
	}{
		{name: "no token", token: nil, want: false},
		{name: "access token only", token: &oauth2.Token{AccessToken: "a"}, want: false},
		{name: "refresh token present", token: &oauth2.Token{RefreshToken: "r"}, want: true},
		{name: "expired access with refresh", token: &oauth2.Token{AccessToken: "a", RefreshToken: "r"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, "http://unused.invalid")
			s.token = tt.token
			assert.Equal(t, tt.want, s.IsAuthenticated())
		})
	}
}

func TestLoadTokens(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		s := newTestSession(t, "http://unused.invalid")
		assert.False(t, s.LoadTokens())
		assert.False(t, s.IsAuthenticated())
	})

	t.Run("persisted refresh token", func(t *testing.T) {
		s := newTestSession(t, "http://unused.invalid")
		require.NoError(t, s.store.Save(&oauth2.Token{AccessToken: "a", RefreshToken: "r"}))

		assert.True(t, s.LoadTokens())
		assert.True(t, s.IsAuthenticated())
	})

	t.Run("persisted token without refresh token", func(t *testing.T) {
		s := newTestSession(t, "http://unused.invalid")
		require.NoError(t, s.store.Save(&oauth2.Token{AccessToken: "a"}))

		assert.False(t, s.LoadTokens())
		assert.False(t, s.IsAuthenticated())
	})
}

func TestExchange(t *testing.T) {
	var gotCode string
	srv := tokenEndpoint(t, func(grantType string, w http.ResponseWriter, r *http.Request) {
		gotCode = r.FormValue("code")
		grantJSON(w, "fresh-access", "fresh-refresh")
	})

	s := newTestSession(t, srv.URL)
	require.NoError(t, s.Exchange(context.Background(), "one-time-code"))

	assert.Equal(t, "one-time-code", gotCode)
	assert.True(t, s.IsAuthenticated())

	persisted, err := s.store.Load()
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "fresh-access", persisted.AccessToken)
	assert.Equal(t, "fresh-refresh", persisted.RefreshToken)
}

func TestExchangeKeepsOldRefreshToken(t *testing.T) {
	srv := tokenEndpoint(t, func(grantType string, w http.ResponseWriter, r *http.Request) {
		grantJSON(w, "fresh-access", "")
	})

	s := newTestSession(t, srv.URL)
	s.token = &oauth2.Token{AccessToken: "old-access", RefreshToken: "old-refresh"}

	require.NoError(t, s.Exchange(context.Background(), "code"))
	assert.True(t, s.IsAuthenticated())

	persisted, err := s.store.Load()
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "fresh-access", persisted.AccessToken)
	assert.Equal(t, "old-refresh", persisted.RefreshToken, "re-authorization without refresh token must keep the previous one")
}

func TestExchangeFailure(t *testing.T) {
	srv := tokenEndpoint(t, func(grantType string, w http.ResponseWriter, r *http.Request) {
		grantDenied(w)
	})

	s := newTestSession(t, srv.URL)
	err := s.Exchange(context.Background(), "bad-code")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExchangeFailed)
	assert.False(t, s.IsAuthenticated())
}

func TestRefresh(t *testing.T) {
	srv := tokenEndpoint(t, func(grantType string, w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "refresh_token", grantType)
		assert.Equal(t, "seed-refresh", r.FormValue("refresh_token"))
		grantJSON(w, "minted-access", "")
	})

	s := newTestSession(t, srv.URL)
	s.token = &oauth2.Token{AccessToken: "stale-access", RefreshToken: "seed-refresh"}

	require.NoError(t, s.Refresh(context.Background()))
	assert.True(t, s.IsAuthenticated())

	st := s.Status()
	assert.True(t, st.HasAccessToken)

	persisted, err := s.store.Load()
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "minted-access", persisted.AccessToken)
	assert.Equal(t, "seed-refresh", persisted.RefreshToken)
}

func TestRefreshFailureDemotes(t *testing.T) {
	srv := tokenEndpoint(t, func(grantType string, w http.ResponseWriter, r *http.Request) {
		grantDenied(w)
	})

	s := newTestSession(t, srv.URL)
	s.token = &oauth2.Token{AccessToken: "a", RefreshToken: "revoked"}

	err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.False(t, s.IsAuthenticated(), "failed refresh must demote the session")
}

func TestRefreshWithoutToken(t *testing.T) {
	s := newTestSession(t, "http://unused.invalid")
	err := s.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestStatus(t *testing.T) {
	s := newTestSession(t, "http://unused.invalid")

	st := s.Status()
	assert.False(t, st.Authenticated)
	assert.False(t, st.HasAccessToken)
	assert.Equal(t, s.store.Path(), st.TokenPath)

	s.token = &oauth2.Token{AccessToken: "a", RefreshToken: "r"}
	st = s.Status()
	assert.True(t, st.Authenticated)
	assert.True(t, st.HasAccessToken)
}

// failingSource always errors, standing in for a revoked refresh token
// during a lazy refresh.
type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) {
	return nil, errors.New("invalid_grant")
}

func TestPersistingTokenSourceDemotesOnFailure(t *testing.T) {
	s := newTestSession(t, "http://unused.invalid")
	s.token = &oauth2.Token{AccessToken: "a", RefreshToken: "r"}

	src := &persistingTokenSource{session: s, src: failingSource{}}
	_, err := src.Token()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.False(t, s.IsAuthenticated())
}

type staticSource struct{ tok *oauth2.Token }

func (s staticSource) Token() (*oauth2.Token, error) { return s.tok, nil }

func TestPersistingTokenSourceWritesThrough(t *testing.T) {
	s := newTestSession(t, "http://unused.invalid")
	s.token = &oauth2.Token{AccessToken: "stale", RefreshToken: "r"}

	src := &persistingTokenSource{
		session: s,
		src:     staticSource{tok: &oauth2.Token{AccessToken: "rotated"}},
	}
	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "rotated", tok.AccessToken)

	persisted, err := s.store.Load()
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, "rotated", persisted.AccessToken)
	assert.Equal(t, "r", persisted.RefreshToken, "write-through must not lose the refresh token")
}
