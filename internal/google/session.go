package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/gdocs-mcp/internal/docs"
	"github.com/teemow/gdocs-mcp/internal/drive"
	"github.com/teemow/gdocs-mcp/internal/instrumentation"
	"github.com/teemow/gdocs-mcp/internal/sheets"
)

var (
	// ErrNotAuthenticated is returned by operations that need a refresh
	// token when the session does not hold one.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrExchangeFailed wraps a rejected or failed authorization code
	// exchange.
	ErrExchangeFailed = errors.New("authorization code exchange failed")

	// ErrRefreshFailed wraps a rejected or failed token refresh. The
	// session demotes itself to unauthenticated when this happens; a
	// fresh load or exchange is required to recover.
	ErrRefreshFailed = errors.New("token refresh failed")
)

// Session owns the OAuth2 configuration and the current token set. One
// Session is created at startup and passed explicitly to everything that
// needs credentials; it lives for the process lifetime.
//
// Authentication state is purely in-memory: the session is authenticated
// iff it holds a non-empty refresh token. Expiry is never inspected; the
// token source refreshes lazily on use and a failed refresh surfaces as
// a capability error.
//
// All token mutations (load, exchange, refresh, write-through after a
// lazy refresh) serialize on one mutex, so a stale token never clobbers
// a fresher one in the store.
type Session struct {
	conf    *oauth2.Config
	store   *TokenStore
	metrics *instrumentation.Metrics

	mu    sync.Mutex
	token *oauth2.Token
}

// NewSession creates a session from a resolved configuration and store.
func NewSession(conf *oauth2.Config, store *TokenStore) *Session {
	return &Session{conf: conf, store: store}
}

// noopMetrics is handed out by Metrics when no recorder is configured;
// its record methods are no-ops.
var noopMetrics = &instrumentation.Metrics{}

// SetMetrics attaches a metrics recorder. OAuth exchanges and refreshes
// are counted through it.
func (s *Session) SetMetrics(m *instrumentation.Metrics) {
	s.metrics = m
}

// Metrics returns the attached recorder, or a no-op one. Never nil.
func (s *Session) Metrics() *instrumentation.Metrics {
	if s.metrics == nil {
		return noopMetrics
	}
	return s.metrics
}

// AuthURL returns the authorization URL for the interactive flow. It
// requests offline access and forces the consent screen so a refresh
// token is issued even when the user has authorized before.
func (s *Session) AuthURL(state string) string {
	return s.conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades a one-time authorization code for a token set,
// installs it, and persists it.
func (s *Session) Exchange(ctx context.Context, code string) error {
	tok, err := s.conf.Exchange(ctx, code)
	if err != nil {
		s.Metrics().RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		return fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	s.Metrics().RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Some re-authorizations omit the refresh token; keep the old one.
	if tok.RefreshToken == "" && s.token != nil {
		tok.RefreshToken = s.token.RefreshToken
	}
	s.token = tok

	if err := s.store.Save(tok); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

// LoadTokens installs the persisted token set into the session. Returns
// false when the store is absent or the token has no refresh token;
// the session state is untouched in that case.
func (s *Session) LoadTokens() bool {
	tok, err := s.store.Load()
	if err != nil || tok == nil || tok.RefreshToken == "" {
		return false
	}

	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()
	return true
}

// Refresh mints a new access token from the stored refresh token and
// persists it. On failure the session becomes unauthenticated; the error
// is surfaced to the caller and never retried here.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == nil || s.token.RefreshToken == "" {
		return ErrNotAuthenticated
	}

	// Seed the source with only the refresh token to force a refresh
	// grant instead of reusing the cached access token.
	src := s.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: s.token.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		s.token = nil
		s.Metrics().RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultFailure)
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	s.Metrics().RecordOAuthTokenRefresh(ctx, instrumentation.OAuthResultSuccess)

	if tok.RefreshToken == "" {
		tok.RefreshToken = s.token.RefreshToken
	}
	s.token = tok

	if err := s.store.Save(tok); err != nil {
		return fmt.Errorf("persist refreshed token: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether the session holds a refresh token.
// In-memory only; no network call. An access token alone is not enough.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != nil && s.token.RefreshToken != ""
}

// Status is a secret-free snapshot of the session for status output.
type Status struct {
	Authenticated  bool
	HasAccessToken bool
	Expiry         time.Time
	TokenPath      string
}

// Status reports the current authentication state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{TokenPath: s.store.Path()}
	if s.token != nil {
		st.Authenticated = s.token.RefreshToken != ""
		st.HasAccessToken = s.token.AccessToken != ""
		st.Expiry = s.token.Expiry
	}
	return st
}

// DocsClient returns a Docs client bound to the session's current
// credentials. Never cached: tokens may rotate between calls.
func (s *Session) DocsClient(ctx context.Context) (*docs.Client, error) {
	httpClient, err := s.httpClient(ctx)
	if err != nil {
		return nil, err
	}
	return docs.NewClient(ctx, httpClient)
}

// SheetsClient returns a Sheets client bound to the session's current
// credentials.
func (s *Session) SheetsClient(ctx context.Context) (*sheets.Client, error) {
	httpClient, err := s.httpClient(ctx)
	if err != nil {
		return nil, err
	}
	return sheets.NewClient(ctx, httpClient)
}

// DriveClient returns a Drive client bound to the session's current
// credentials.
func (s *Session) DriveClient(ctx context.Context) (*drive.Client, error) {
	httpClient, err := s.httpClient(ctx)
	if err != nil {
		return nil, err
	}
	return drive.NewClient(ctx, httpClient)
}

// httpClient builds an authenticated HTTP client whose token source
// writes refreshed tokens back through the session.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func (s *Session) httpClient(ctx context.Context) (*http.Client, error) {
	s.mu.Lock()
	tok := s.token
	s.mu.Unlock()

	if tok == nil || tok.RefreshToken == "" {
		return nil, ErrNotAuthenticated
	}

	src := &persistingTokenSource{
		session: s,
		src:     s.conf.TokenSource(ctx, tok),
	}
	client := oauth2.NewClient(ctx, src)

	// Force HTTP/1.1 by disabling HTTP/2
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			ForceAttemptHTTP2: false,
		}
	}

	return client, nil
}

// install records a possibly refreshed token and persists it when the
// access token actually changed. Serialized with every other mutation.
// Reports whether a new access token was installed.
func (s *Session) install(tok *oauth2.Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tok.RefreshToken == "" && s.token != nil {
		tok.RefreshToken = s.token.RefreshToken
	}
	if s.token != nil && s.token.AccessToken == tok.AccessToken {
		return false
	}
	s.token = tok

	// Best effort: a failed write leaves the in-memory token usable and
	// the next successful mutation overwrites the file in full.
	_ = s.store.Save(tok)
	return true
}

// demote marks the session unauthenticated after a failed refresh.
func (s *Session) demote() {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
}

// persistingTokenSource wraps the oauth2 token source so tokens minted
// by lazy refresh are written back to the session and store.
type persistingTokenSource struct {
	session *Session
	src     oauth2.TokenSource
}

var _ oauth2.TokenSource = (*persistingTokenSource)(nil)

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		p.session.demote()
		p.session.Metrics().RecordOAuthTokenRefresh(context.Background(), instrumentation.OAuthResultFailure)
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	// Only count an actual refresh; the source returns the cached token
	// on most calls.
	if p.session.install(tok) {
		p.session.Metrics().RecordOAuthTokenRefresh(context.Background(), instrumentation.OAuthResultSuccess)
	}
	return tok, nil
}
