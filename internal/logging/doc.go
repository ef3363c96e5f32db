// Package logging provides structured logging utilities for the gdocs-mcp server.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured JSON logging with slog
//   - Token sanitization for credential-adjacent log lines
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Install the process-wide handler once at startup (stderr for the stdio
// transport, so logs never mix with protocol output):
//
//	logger := logging.Setup(os.Stderr, slog.LevelInfo)
//
// Create a logger with standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "get_document")
//	logger.Info("document fetched",
//	    logging.Status("success"))
//
// Sanitize sensitive data before logging:
//
//	logger.Debug("token loaded",
//	    "access_token", logging.SanitizeToken(tok.AccessToken))
//
// # Security Considerations
//
// Tokens are never logged directly; SanitizeToken reduces them to a length
// indicator.
package logging
