// Package docs retrieves Google Docs documents and flattens them to
// plain text.
//
// The client wraps the Docs API service on an authenticated HTTP client
// supplied by the caller. The converter renders document structure into
// a single text block: paragraphs and bullets as prose, table cells
// tab-joined with rows newline-joined, and section breaks marked, so
// tabular content stays legible after flattening.
package docs
