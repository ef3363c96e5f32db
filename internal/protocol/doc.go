// Package protocol implements the JSON-RPC 2.0 / MCP wire layer.
//
// This package defines the envelope types (Request, Response, Error), the
// MCP result shapes (initialize, tools/list, tools/call), and validation
// helpers. The dispatcher in internal/server routes envelopes; this package
// only knows about their shape.
//
// Two normalization rules matter to callers:
//   - Envelope-level failures (bad JSON, wrong version tag, unknown method)
//     become transport errors with the reserved JSON-RPC codes.
//   - Capability failures inside a tool call become error-flagged
//     CallToolResult payloads inside a successful envelope, so the calling
//     agent can display them as ordinary tool output.
package protocol
