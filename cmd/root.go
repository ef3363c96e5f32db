package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the gdocs-mcp application
var rootCmd = &cobra.Command{
	Use:   "gdocs-mcp",
	Short: "MCP server for read access to Google Docs and Sheets",
	Long: `gdocs-mcp is an MCP (Model Context Protocol) server that gives AI
assistants read access to Google Docs, Sheets and Drive.

It can run as:
  - An MCP server over stdio (default)
  - An MCP server over HTTP

Run 'gdocs-mcp auth' once to authorize access to your Google account.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gdocs-mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
