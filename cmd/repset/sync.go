// ABOUTME: CLI command for pushing queued offline writes.
// ABOUTME: Drains the local badger queue in enqueue order against the store.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push queued offline writes",
	Long: `Push writes queued with --offline to the backend, oldest first.

A transport failure stops the push and leaves the failing write and
everything after it queued; run sync again once you are back online.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		queue, err := cfg.OpenOfflineQueue()
		if err != nil {
			return fmt.Errorf("failed to open offline queue: %w", err)
		}
		defer func() { _ = queue.Close() }()

		pending, err := queue.Pending()
		if err != nil {
			return fmt.Errorf("failed to count queued writes: %w", err)
		}
		if pending == 0 {
			fmt.Println("Nothing to push.")
			return nil
		}

		fmt.Printf("Pushing %d queued write(s)...\n", pending)
		if err := queue.Flush(cmd.Context(), store); err != nil {
			return fmt.Errorf("push failed: %w", err)
		}
		color.Green("✓ All queued writes pushed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
