package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the todoist-mcp application
var rootCmd = &cobra.Command{
	Use:   "todoist-mcp",
	Short: "MCP server for Todoist tasks and projects",
	Long: `todoist-mcp exposes the Todoist REST API to AI assistants through the
Model Context Protocol: tools to read and change tasks and projects, plain
text resources, and planning prompts.

It can run as:
  - An MCP server over stdio (default)
  - An MCP server over streamable HTTP
  - A CLI check of the configured API token`,
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
	rootCmd.SetVersionTemplate(`{{printf "todoist-mcp version %s\n" .Version}}`)

	// A missing .env is fine; real environment variables win over its values.
	_ = godotenv.Load()

	// If no subcommand is provided, run the MCP server over stdio
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
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
