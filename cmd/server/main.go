// Package main is the entry point for the curator task tracker. The binary
// serves the HTTP API and carries operator subcommands for migrations,
// token minting and dashboard inspection.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "server",
		Short: "Curator task assignment and reporting API",
		Long: `server runs the curator task tracker.

Configuration is read from config.yaml in the working directory, a .env file,
and UMT_* environment variables, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		serveCmd(),
		migrateCmd(),
		tokenCmd(),
		cardsCmd(),
		hashPasswordCmd(),
	)
	return root
}
