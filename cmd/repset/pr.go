// ABOUTME: CLI command for viewing personal record tables.
// ABOUTME: Prints per-bucket bests in the user's preferred unit.
package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/repset/repset/internal/models"
	"github.com/repset/repset/internal/repository"
)

var prCmd = &cobra.Command{
	Use:   "pr [exercise-id]",
	Short: "Show personal records",
	Long: `Show all-time personal records, optionally for one exercise.

Rep-based exercises keep one record per rep count; time-based exercises
keep a single longest-time record.`,
	Args: cobra.MaximumNArgs(1),
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
		unit := models.UnitKg
		if ok && user.PreferredUnit != "" {
			unit = user.PreferredUnit
		}

		records := repository.NewRecords(store).Bind(userID)
		var tables []*models.PersonalRecord
		if len(args) == 1 {
			pr, found, err := records.ForExercise(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				fmt.Println("No records for that exercise yet.")
				return nil
			}
			tables = append(tables, pr)
		} else {
			tables, err = records.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			if len(tables) == 0 {
				fmt.Println("No personal records yet.")
				return nil
			}
		}

		for _, pr := range tables {
			color.Cyan("%s", pr.ExerciseID)
			printRecordTable(pr, unit)
		}
		return nil
	},
}

func printRecordTable(pr *models.PersonalRecord, unit models.WeightUnit) {
	buckets := make([]int, 0, len(pr.Buckets))
	for key := range pr.Buckets {
		if n, err := strconv.Atoi(key); err == nil {
			buckets = append(buckets, n)
		}
	}
	sort.Ints(buckets)

	faint := color.New(color.Faint)
	for _, bucket := range buckets {
		best, ok := pr.Best(bucket)
		if !ok {
			continue
		}
		when := faint.Sprint(best.Date.Format("2006-01-02"))
		if pr.VolumeType == models.VolumeTime {
			if best.Seconds != nil {
				fmt.Printf("  longest: %.0fs  %s\n", *best.Seconds, when)
			}
			continue
		}
		if best.Weight == nil {
			continue
		}
		formatted, err := best.Weight.Format(unit, 2, false)
		if err != nil {
			continue
		}
		fmt.Printf("  %2d reps: %s %s  %s\n", bucket, formatted, unit, when)
	}
}

func init() {
	rootCmd.AddCommand(prCmd)
}
