package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for dirharvest.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dirharvest",
		Short: "Harvest a category-organized business directory into JSON",
		Long: `dirharvest crawls a business directory organized by category.

It discovers every category on the directory root, walks each category's
paginated listing, enriches every listing with the fields of its detail
page, and writes a single JSON document keyed by category name.

Categories are crawled concurrently; pages within a category are fetched
in order so that records keep their source order.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
