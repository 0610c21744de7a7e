package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for xsearch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xsearch",
		Short: "Concurrent cursor-paginated search harvester",
		Long: `xsearch harvests search result pages from the X/Twitter GraphQL search
endpoint: one concurrent pagination loop per query, deduplication across
pages, and exponential backoff on transient failures.

It needs an authenticated cookie file carrying the ct0 and auth_token
cookies; acquiring those is up to you.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewSearchCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
