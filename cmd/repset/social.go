// ABOUTME: CLI commands for the social surface: feed, follow, like, comment.
// ABOUTME: All operate through the feed, follow and interaction repositories.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/repset/repset/internal/models"
	"github.com/repset/repset/internal/repository"
)

var (
	feedLimit     int
	feedFollowing bool
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the social feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		feed := repository.NewFeed(store)

		var items []*models.FeedItem
		var err error
		if feedFollowing {
			userID, uerr := currentUserID()
			if uerr != nil {
				return uerr
			}
			follows := repository.NewFollows(store)
			edges, ferr := follows.Following(cmd.Context(), userID, 1000)
			if ferr != nil {
				return ferr
			}
			authorIDs := make([]string, 0, len(edges))
			for _, e := range edges {
				authorIDs = append(authorIDs, e.FollowedID)
			}
			items, err = feed.ByAuthors(cmd.Context(), authorIDs, feedLimit)
		} else {
			items, _, err = feed.ListRecent(cmd.Context(), feedLimit, repository.Cursor{})
		}
		if err != nil {
			return fmt.Errorf("failed to read feed: %w", err)
		}
		if len(items) == 0 {
			fmt.Println("The feed is empty.")
			return nil
		}

		workoutIDs := make([]string, 0, len(items))
		for _, item := range items {
			workoutIDs = append(workoutIDs, item.WorkoutID)
		}
		likes := likeCounts(cmd, workoutIDs)

		faint := color.New(color.Faint)
		for _, item := range items {
			fmt.Printf("%s %s %-16s %-24s %d exercises, %.1f kg, %d likes\n",
				faint.Sprint(shortID(item.WorkoutID)),
				faint.Sprint(item.PerformedAt.Format("2006-01-02 15:04")),
				item.AuthorName,
				item.Title,
				item.ExerciseCount,
				item.TotalVolumeKg,
				likes[item.WorkoutID])
		}
		return nil
	},
}

// likeCounts batch-loads interaction docs; a failed load just renders
// zero likes.
func likeCounts(cmd *cobra.Command, workoutIDs []string) map[string]int {
	counts := make(map[string]int)
	interactions := repository.NewInteractions(store)
	docs, err := interactions.ForWorkouts(cmd.Context(), workoutIDs)
	if err != nil {
		return counts
	}
	for _, doc := range docs {
		counts[doc.WorkoutID] = len(doc.LikedBy)
	}
	return counts
}

var followCmd = &cobra.Command{
	Use:   "follow <username>",
	Short: "Follow a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := currentUserID()
		if err != nil {
			return err
		}
		users := repository.NewUsers(store)
		target, ok, err := users.GetByUsername(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("user not found: %s", args[0])
		}
		follows := repository.NewFollows(store)
		if _, err := follows.Follow(cmd.Context(), userID, target.ID); err != nil {
			return fmt.Errorf("failed to follow: %w", err)
		}
		color.Green("✓ Now following %s", target.Username)
		return nil
	},
}

var unfollowCmd = &cobra.Command{
	Use:   "unfollow <username>",
	Short: "Unfollow a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := currentUserID()
		if err != nil {
			return err
		}
		users := repository.NewUsers(store)
		target, ok, err := users.GetByUsername(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("user not found: %s", args[0])
		}
		follows := repository.NewFollows(store)
		if err := follows.Unfollow(cmd.Context(), userID, target.ID); err != nil {
			return fmt.Errorf("failed to unfollow: %w", err)
		}
		color.Green("✓ Unfollowed %s", target.Username)
		return nil
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <workout-id>",
	Short: "Like a workout from the feed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := currentUserID()
		if err != nil {
			return err
		}
		interactions := repository.NewInteractions(store)
		doc, err := interactions.Like(cmd.Context(), args[0], userID)
		if err != nil {
			return fmt.Errorf("failed to like: %w", err)
		}
		color.Green("✓ Liked (%d total)", len(doc.LikedBy))
		return nil
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment <workout-id> <text>...",
	Short: "Comment on a workout",
	Args:  cobra.MinimumNArgs(2),
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
		interactions := repository.NewInteractions(store)
		_, err = interactions.AddComment(cmd.Context(), args[0], models.Comment{
			UserID:   userID,
			Username: user.Username,
			Text:     strings.Join(args[1:], " "),
		})
		if err != nil {
			return fmt.Errorf("failed to comment: %w", err)
		}
		color.Green("✓ Comment posted")
		return nil
	},
}

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"inbox"},
	Short:   "Show unread notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := currentUserID()
		if err != nil {
			return err
		}
		inbox := repository.NewNotifications(store).Bind(userID)
		notes, err := inbox.Unread(cmd.Context(), 50)
		if err != nil {
			return fmt.Errorf("failed to list notifications: %w", err)
		}
		if len(notes) == 0 {
			fmt.Println("No unread notifications.")
			return nil
		}
		for _, n := range notes {
			fmt.Printf("  %s\n", repository.Describe(n))
			if _, err := inbox.MarkRead(cmd.Context(), n.ID); err != nil {
				color.Yellow("⚠ Failed to mark %s read: %v", shortID(n.ID), err)
			}
		}
		return nil
	},
}

func init() {
	feedCmd.Flags().IntVarP(&feedLimit, "limit", "n", 20, "max number of results")
	feedCmd.Flags().BoolVar(&feedFollowing, "following", false, "only people you follow")

	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(followCmd)
	rootCmd.AddCommand(unfollowCmd)
	rootCmd.AddCommand(likeCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(notificationsCmd)
}
