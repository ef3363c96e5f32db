// Package server binds the JSON-RPC dispatcher to its transports.
//
// # Key Components
//
// Dispatcher implements the wire protocol: envelope validation, method
// routing, the authentication gate in front of tool execution, and the
// separation between transport errors (malformed envelopes, unknown
// methods) and error-flagged tool results (capability failures). Both
// transports feed it raw bytes through HandleMessage, so their
// observable behavior is identical.
//
// StdioServer is the persistent newline-framed binding used by MCP
// clients that spawn the server as a child process. It logs to stderr
// only; stdout belongs to the protocol stream.
//
// HTTPServer is the stateless binding: POST /rpc carries one message
// per request, GET /health answers liveness probes, GET / serves
// static server metadata.
//
// MetricsServer exposes Prometheus metrics on a dedicated port so the
// RPC surface never serves operational data. HealthChecker backs both
// the public /health endpoint and the probe set on the metrics port.
//
// ServerContext carries the shared OAuth session, the optional
// instrumentation collaborators, and the shutdown lifecycle.
package server
