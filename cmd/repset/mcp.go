// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio-based MCP server over the configured store.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/repset/repset/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants to log workouts, browse records and read the
feed through a standardized protocol. The server communicates via
stdin/stdout.

CONFIGURATION:

  {
    "mcpServers": {
      "repset": {
        "command": "repset",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  log_workout       Log a finished workout
  list_workouts     List recent workouts
  personal_records  Get personal record history
  search_exercises  Browse the exercise catalogue
  feed              Read the social feed
  like_workout      Like a workout
  follow_user       Follow another user
  notifications     List unread notifications

AVAILABLE RESOURCES:

  repset://profile   Profile and recent workouts
  repset://feed      Recent feed items
  repset://records   Personal record tables`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := currentUserID()
		if err != nil {
			return err
		}
		server, err := mcp.NewServer(store, userID)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
