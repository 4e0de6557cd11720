package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tracked",
		Short: "Serve a change-tracked value over HTTP",
		Long: `tracked serves a single change-tracked JSON document.

Reads are free, writes go through a scoped mutation, and every change
is pushed to WebSocket watchers as an (old, new) pair:

  • GET  /value    read the document
  • PUT  /value    replace it (listeners fire only if it changed)
  • GET  /watch    WebSocket stream of change notifications
  • GET  /metrics  Prometheus metrics`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tracked %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
