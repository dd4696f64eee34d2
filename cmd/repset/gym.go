// ABOUTME: CLI commands for gyms: search, join, leaderboard.
// ABOUTME: Joining also pins the gym id on the user's profile.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/repset/repset/internal/repository"
)

var (
	gymCity  string
	gymLimit int
)

var gymCmd = &cobra.Command{
	Use:   "gym",
	Short: "Manage gym membership",
}

var gymSearchCmd = &cobra.Command{
	Use:   "search --city <city>",
	Short: "Find gyms in a city",
	RunE: func(cmd *cobra.Command, args []string) error {
		if gymCity == "" {
			return fmt.Errorf("--city is required")
		}
		gyms := repository.NewGyms(store)
		found, err := gyms.SearchByCity(cmd.Context(), gymCity, gymLimit)
		if err != nil {
			return fmt.Errorf("failed to search gyms: %w", err)
		}
		if len(found) == 0 {
			fmt.Println("No gyms found.")
			return nil
		}
		faint := color.New(color.Faint)
		for _, g := range found {
			fmt.Printf("%s %-32s %s (%d members)\n",
				faint.Sprint(shortID(g.ID)), g.Name, g.Address, g.MemberCount)
		}
		return nil
	},
}

var gymJoinCmd = &cobra.Command{
	Use:   "join <gym-id>",
	Short: "Join a gym",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := currentUserID()
		if err != nil {
			return err
		}
		gymID := args[0]

		gyms := repository.NewGyms(store)
		gym, ok, err := gyms.Get(cmd.Context(), gymID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("gym not found: %s", gymID)
		}

		users := repository.NewUsers(store)
		user, ok, err := users.Get(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("user not found: %s", userID)
		}

		members := repository.NewGymMembers(store).Bind(gymID)
		if _, err := members.Join(cmd.Context(), user); err != nil {
			return fmt.Errorf("failed to join gym: %w", err)
		}
		if _, err := users.Update(cmd.Context(), userID, map[string]any{"gymId": gymID}); err != nil {
			return fmt.Errorf("joined gym but failed to update profile: %w", err)
		}
		if _, err := gyms.Update(cmd.Context(), gymID, map[string]any{"memberCount": gym.MemberCount + 1}); err != nil {
			color.Yellow("⚠ Member count update failed: %v", err)
		}

		color.Green("✓ Joined %s", gym.Name)
		return nil
	},
}

var gymLeaderboardCmd = &cobra.Command{
	Use:     "leaderboard",
	Aliases: []string{"lb"},
	Short:   "Show your gym's volume leaderboard",
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
		if !ok || user.GymID == nil || *user.GymID == "" {
			return fmt.Errorf("join a gym first: repset gym join <gym-id>")
		}

		members := repository.NewGymMembers(store).Bind(*user.GymID)
		ranked, _, err := members.Leaderboard(cmd.Context(), gymLimit, repository.Cursor{})
		if err != nil {
			return fmt.Errorf("failed to load leaderboard: %w", err)
		}
		if len(ranked) == 0 {
			fmt.Println("No members yet.")
			return nil
		}

		for i, m := range ranked {
			line := fmt.Sprintf("%2d. %-16s %.1f kg over %d workouts",
				i+1, m.Username, m.TotalVolumeKg, m.WorkoutCount)
			if m.UserID == userID {
				color.Cyan("%s", line)
			} else {
				fmt.Println(line)
			}
		}
		return nil
	},
}

func init() {
	gymSearchCmd.Flags().StringVar(&gymCity, "city", "", "city to search in")
	gymSearchCmd.Flags().IntVarP(&gymLimit, "limit", "n", 20, "max number of results")
	gymLeaderboardCmd.Flags().IntVarP(&gymLimit, "limit", "n", 20, "max number of results")

	gymCmd.AddCommand(gymSearchCmd)
	gymCmd.AddCommand(gymJoinCmd)
	gymCmd.AddCommand(gymLeaderboardCmd)
	rootCmd.AddCommand(gymCmd)
}
