// Package google owns the OAuth2 credential lifecycle for the server.
//
// It covers four concerns:
//   - resolving client credentials from explicit flags, a local client
//     secret file (client_secret.json or credentials.json, in either the
//     "installed" or "web" layout), or environment variables
//   - persisting the token set as a JSON file under the credentials
//     directory, with atomic full-file overwrites
//   - the Session, the single shared process-wide holder of the current
//     token set, with exchange, refresh, and per-call capability client
//     factories
//   - the ephemeral localhost callback server used once per interactive
//     authorization
//
// "Authenticated" means exactly one thing here: the session holds a
// non-empty refresh token. Expiry is never checked up front; access
// tokens are refreshed lazily on use.
package google
