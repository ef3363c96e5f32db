// Package tools defines the server's tool catalog.
//
// The catalog is a fixed ordered list of five read-only tools over
// Google Docs, Sheets, and Drive. Each tool is a typed invocation
// struct; ParseCall validates raw arguments against the advertised
// JSON schema and produces the matching variant, and Execute runs it
// against the shared OAuth session. Document and spreadsheet arguments
// accept bare IDs or full browser URLs.
package tools
