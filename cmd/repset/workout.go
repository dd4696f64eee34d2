// ABOUTME: CLI commands for logging and listing workouts.
// ABOUTME: Set specs are parsed from compact RxWkg / RxWlbs / Ns strings.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/repset/repset/internal/models"
	"github.com/repset/repset/internal/repository"
)

var (
	workoutExercises []string
	workoutDuration  int
	workoutNotes     string
	workoutOffline   bool
	workoutLimit     int
)

var workoutCmd = &cobra.Command{
	Use:     "workout",
	Aliases: []string{"w"},
	Short:   "Manage workouts",
	Long: `Log and browse training sessions.

Each --exercise flag names a catalogue exercise and its sets:

  -e <exercise-id>:<set>,<set>,...

Set formats:

  8x80kg     8 reps at 80 kilograms
  5x185lbs   5 reps at 185 pounds
  60s        60 seconds (time-based exercises, e.g. plank)

Prefix a set with ! to mark it skipped (logged but not completed).

Examples:
  repset workout log "Push day" -e bench-press:8x80kg,8x80kg,6x85kg -d 55
  repset workout log "Core" -e plank:60s,45s --notes "short on time"`,
}

var workoutLogCmd = &cobra.Command{
	Use:   "log <name>",
	Short: "Log a finished workout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := currentUserID()
		if err != nil {
			return err
		}
		users := repository.NewUsers(store)
		author, ok, err := users.Get(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("user not found: %s", userID)
		}

		w := models.NewWorkout(userID, args[0])
		if workoutNotes != "" {
			w.Notes = &workoutNotes
		}
		w.DurationSec = workoutDuration * 60

		exercises := repository.NewExercises(store)
		for _, spec := range workoutExercises {
			we, err := parseExerciseSpec(cmd, exercises, spec)
			if err != nil {
				return err
			}
			w.Exercises = append(w.Exercises, we)
		}

		saver := repository.NewWorkoutSaver(store)
		var opts []repository.WriteOption
		if workoutOffline {
			queue, err := cfg.OpenOfflineQueue()
			if err != nil {
				return fmt.Errorf("failed to open offline queue: %w", err)
			}
			defer func() { _ = queue.Close() }()
			saver.WithQueue(queue)
			opts = append(opts, repository.WithOffline())
		}
		result, err := saver.Save(cmd.Context(), author, w, opts...)
		if err != nil {
			return fmt.Errorf("failed to save workout: %w", err)
		}

		color.Green("✓ Logged %q", result.Workout.Name)
		fmt.Printf("  ID: %s\n", result.Workout.ID)
		fmt.Printf("  Volume: %.1f kg\n", result.Workout.TotalVolumeKg())
		for exerciseID := range result.NewRecords {
			color.Yellow("  ★ New personal record on %s", exerciseID)
		}
		return nil
	},
}

var workoutListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent workouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := currentUserID()
		if err != nil {
			return err
		}
		workouts := repository.NewWorkouts(store).Bind(userID)
		found, _, err := workouts.ListRecent(cmd.Context(), workoutLimit, repository.Cursor{})
		if err != nil {
			return fmt.Errorf("failed to list workouts: %w", err)
		}
		if len(found) == 0 {
			fmt.Println("No workouts found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, w := range found {
			fmt.Printf("%s %s %-24s %d exercises, %.1f kg\n",
				faint.Sprint(shortID(w.ID)),
				faint.Sprint(w.PerformedAt.Format("2006-01-02 15:04")),
				w.Name,
				len(w.Exercises),
				w.TotalVolumeKg())
		}
		return nil
	},
}

// parseExerciseSpec resolves "exercise-id:set,set,..." against the
// catalogue and parses each set.
func parseExerciseSpec(cmd *cobra.Command, exercises *repository.Exercises, spec string) (models.WorkoutExercise, error) {
	exerciseID, setPart, ok := strings.Cut(spec, ":")
	if !ok || setPart == "" {
		return models.WorkoutExercise{}, fmt.Errorf("exercise spec %q needs the form <exercise-id>:<set>,...", spec)
	}
	entry, found, err := exercises.Get(cmd.Context(), exerciseID)
	if err != nil {
		return models.WorkoutExercise{}, err
	}
	if !found {
		return models.WorkoutExercise{}, fmt.Errorf("unknown exercise: %s", exerciseID)
	}

	we := models.WorkoutExercise{
		ExerciseID: entry.ID,
		Name:       entry.Name,
		VolumeType: entry.VolumeType,
	}
	for _, raw := range strings.Split(setPart, ",") {
		set, err := parseSet(raw, entry.VolumeType)
		if err != nil {
			return models.WorkoutExercise{}, fmt.Errorf("exercise %s: %w", exerciseID, err)
		}
		we.Sets = append(we.Sets, set)
	}
	return we, nil
}

func parseSet(raw string, vt models.VolumeType) (models.Set, error) {
	set := models.Set{Completed: true}
	if strings.HasPrefix(raw, "!") {
		set.Completed = false
		raw = raw[1:]
	}

	if vt == models.VolumeTime {
		secs, err := strconv.ParseFloat(strings.TrimSuffix(raw, "s"), 64)
		if err != nil {
			return models.Set{}, fmt.Errorf("invalid time set %q, want e.g. 60s", raw)
		}
		set.Seconds = &secs
		return set, nil
	}

	repPart, weightPart, ok := strings.Cut(raw, "x")
	if !ok {
		return models.Set{}, fmt.Errorf("invalid set %q, want e.g. 8x80kg", raw)
	}
	reps, err := strconv.Atoi(repPart)
	if err != nil || reps <= 0 {
		return models.Set{}, fmt.Errorf("invalid rep count in set %q", raw)
	}
	set.Reps = reps

	unit := models.UnitKg
	value := weightPart
	switch {
	case strings.HasSuffix(weightPart, "lbs"):
		unit = models.UnitLbs
		value = strings.TrimSuffix(weightPart, "lbs")
	case strings.HasSuffix(weightPart, "kg"):
		value = strings.TrimSuffix(weightPart, "kg")
	}
	magnitude, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return models.Set{}, fmt.Errorf("invalid weight in set %q", raw)
	}
	weight, err := models.NewWeight(magnitude, unit)
	if err != nil {
		return models.Set{}, err
	}
	set.Weight = &weight
	return set, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	workoutLogCmd.Flags().StringArrayVarP(&workoutExercises, "exercise", "e", nil, "exercise spec: <exercise-id>:<set>,...")
	workoutLogCmd.Flags().IntVarP(&workoutDuration, "duration", "d", 0, "duration in minutes")
	workoutLogCmd.Flags().StringVarP(&workoutNotes, "notes", "n", "", "workout notes")
	workoutLogCmd.Flags().BoolVar(&workoutOffline, "offline", false, "queue the write locally instead of pushing")

	workoutListCmd.Flags().IntVarP(&workoutLimit, "limit", "n", 20, "max number of results")

	workoutCmd.AddCommand(workoutLogCmd)
	workoutCmd.AddCommand(workoutListCmd)
	rootCmd.AddCommand(workoutCmd)
}
