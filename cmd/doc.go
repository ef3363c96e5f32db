// Package cmd implements the command-line interface for gdocs-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server over stdio or HTTP
//   - auth: Run the interactive Google OAuth authorization flow
//   - auth status: Show the current authorization status
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
