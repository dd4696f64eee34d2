// ABOUTME: Root Cobra command for repset CLI.
// ABOUTME: Opens the configured document store via PersistentPre/PostRunE.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repset/repset/internal/config"
	"github.com/repset/repset/internal/docstore"
)

var (
	cfg   *config.Config
	store docstore.Store
)

var rootCmd = &cobra.Command{
	Use:   "repset",
	Short: "Workout tracking with a social feed",
	Long: `Repset is a CLI client for the repset workout network.

WORKOUTS:

  $ repset workout log "Push day" -e bench-press -s 8x80kg -s 8x80kg
  $ repset workout list                 # Recent sessions
  $ repset pr                           # Personal record tables
  $ repset pr bench-press               # Records for one exercise

SOCIAL:

  $ repset feed                         # What people you follow lifted
  $ repset follow ada                   # Follow a user
  $ repset like <workout-id>            # Like a workout from the feed
  $ repset gym leaderboard              # Your gym's volume ranking

OFFLINE:

  Writes made with --offline are queued locally and pushed in order:

  $ repset workout log "Hotel gym" --offline ...
  $ repset sync                         # Push queued writes

MCP INTEGRATION:

  Run 'repset mcp' to start the Model Context Protocol server for use
  with MCP-compatible AI assistants:

  {
    "mcpServers": {
      "repset": { "command": "repset", "args": ["mcp"] }
    }
  }

CONFIGURATION:

  Config lives at ~/.config/repset/config.json. Set "backend" to
  "firestore" with a "project_id" for real use; the default "memory"
  backend is for local experiments.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		store, err = cfg.OpenStore(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store != nil {
			return store.Close()
		}
		return nil
	},
}

// currentUserID resolves the signed-in user, failing loudly when the
// config has none.
func currentUserID() (string, error) {
	if cfg == nil || cfg.UserID == "" {
		return "", fmt.Errorf("no user configured: set user_id in %s", config.GetConfigPath())
	}
	return cfg.UserID, nil
}
