package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the manymail application
var rootCmd = &cobra.Command{
	Use:   "manymail",
	Short: "Gmail for several accounts, behind one MCP server",
	Long: `manymail exposes one or many Gmail accounts through a single MCP
(Model Context Protocol) server. Reads fan out across every enabled
account and merge newest-first; writes always target one explicit
account.

It can run as:
  - An MCP server over stdio for AI assistants (manymail serve)
  - A CLI for managing the account registry (manymail accounts)`,
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
	rootCmd.SetVersionTemplate(`{{printf "manymail version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAccountsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
