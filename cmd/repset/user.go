// ABOUTME: CLI commands for account setup and profile inspection.
// ABOUTME: Register creates the profile and pins its id in local config.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/repset/repset/internal/models"
	"github.com/repset/repset/internal/repository"
)

var (
	registerDisplayName string
	registerUnit        string
)

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create your profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]
		users := repository.NewUsers(store)

		if _, taken, err := users.GetByUsername(cmd.Context(), username); err != nil {
			return err
		} else if taken {
			return fmt.Errorf("username already taken: %s", username)
		}

		displayName := registerDisplayName
		if displayName == "" {
			displayName = username
		}
		user := models.NewUser(username, displayName)
		if registerUnit != "" {
			user.PreferredUnit = models.WeightUnit(registerUnit)
		}

		created, err := users.Create(cmd.Context(), user)
		if err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}

		cfg.UserID = created.ID
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("profile created but config save failed: %w", err)
		}

		color.Green("✓ Welcome, %s", created.Username)
		fmt.Printf("  ID: %s\n", created.ID)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := currentUserID()
		if err != nil {
			return err
		}
		users := repository.NewUsers(store)
		user, ok, err := users.Get(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("user not found: %s", userID)
		}

		fmt.Printf("Username: %s\n", user.Username)
		fmt.Printf("Display name: %s\n", user.DisplayName)
		fmt.Printf("Preferred unit: %s\n", user.PreferredUnit)
		fmt.Printf("Followers: %d, following: %d\n", user.FollowerCount, user.FollowingCount)
		if user.GymID != nil && *user.GymID != "" {
			fmt.Printf("Gym: %s\n", *user.GymID)
		}
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerDisplayName, "name", "", "display name (defaults to username)")
	registerCmd.Flags().StringVar(&registerUnit, "unit", "", "preferred weight unit: kg or lbs")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(whoamiCmd)
}
