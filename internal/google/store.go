package google

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

const (
	// tokenFileName is the token file inside the credentials directory.
	tokenFileName = "google.token"

	// credentialsDirEnv overrides the credentials directory location.
	credentialsDirEnv = "GDOCS_MCP_CREDENTIALS_DIR"

	dirPerm  = 0o700
	filePerm = 0o600
)

// TokenStore persists the OAuth token set as a JSON file. Writes are full
// overwrites through a temp file in the same directory followed by a
// rename, so readers never observe a partially written token.
type TokenStore struct {
	path string
}

// CredentialsDir returns the directory holding persisted credentials:
// $GDOCS_MCP_CREDENTIALS_DIR when set, otherwise gdocs-mcp under the
// user cache directory.
func CredentialsDir() (string, error) {
	if dir := os.Getenv(credentialsDirEnv); dir != "" {
		return dir, nil
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve user cache dir: %w", err)
	}
	return filepath.Join(cache, "gdocs-mcp"), nil
}

// NewTokenStore creates a store rooted at the credentials directory.
func NewTokenStore() (*TokenStore, error) {
	dir, err := CredentialsDir()
	if err != nil {
		return nil, err
	}
	return NewTokenStoreAt(dir), nil
}

// NewTokenStoreAt creates a store rooted at an explicit directory.
func NewTokenStoreAt(dir string) *TokenStore {
	return &TokenStore{path: filepath.Join(dir, tokenFileName)}
}

// Path returns the token file location.
func (s *TokenStore) Path() string {
	return s.path
}

// Load reads the persisted token set. A missing, unreadable, or
// unparsable file is absent, not an error: callers treat absent as
// "unauthenticated" and move on.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, nil
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, nil
	}
	return &tok, nil
}

// Save persists the token set with a full-file overwrite. The containing
// directory is created if absent.
func (s *TokenStore) Save(tok *oauth2.Token) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tokenFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp token file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp token file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace token file: %w", err)
	}
	if err := os.Chmod(s.path, filePerm); err != nil {
		return fmt.Errorf("chmod token file: %w", err)
	}
	return nil
}
