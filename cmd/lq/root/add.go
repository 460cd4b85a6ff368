package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lifequest/internal/engine"
	"lifequest/internal/ui"
)

func newAddCmd() *cobra.Command {
	var diff int
	var category string
	var kind string
	var habitInterval string
	var routineID string
	var with []string
	var challengeID string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task (or habit/routine/challenge task)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			k, err := engine.ParseTaskKind(kind)
			if err != nil {
				return err
			}
			cat, ok := engine.ParseCategory(category)
			if !ok {
				return fmt.Errorf("unknown category: %q", category)
			}
			interval := engine.HabitInterval("")
			if k == engine.TaskKindHabit {
				if interval, err = engine.ParseHabitInterval(habitInterval); err != nil {
					return err
				}
			}

			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := svc.CreateTask(ctx, cfg.UserID, engine.CreateTaskInput{
				Kind:          k,
				Title:         args[0],
				Category:      cat,
				Difficulty:    engine.Difficulty(diff),
				HabitInterval: interval,
				RoutineID:     routineID,
				Participants:  with,
				ChallengeID:   challengeID,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n",
				ui.Good.Render(ui.IconPlus+" Added"),
				ui.KindIcon(string(k)),
				args[0],
				ui.Muted.Render(fmt.Sprintf("(%s %s, id %s)", ui.CategoryIcon(string(cat)), cat, shortID(id))))
			return nil
		},
	}

	cmd.Flags().IntVarP(&diff, "diff", "d", 1, "Difficulty (1-5)")
	cmd.Flags().StringVarP(&category, "category", "c", string(engine.DefaultCategory), "Category (physical|mental|intellectual|spiritual|financial|career|relationships)")
	cmd.Flags().StringVarP(&kind, "kind", "k", string(engine.TaskKindNormal), "Task kind (normal|habit|routine|challenge)")
	cmd.Flags().StringVar(&habitInterval, "interval", "daily", "Habit interval (daily|weekly|monthly)")
	cmd.Flags().StringVar(&routineID, "routine", "", "Join an existing routine id (routine tasks)")
	cmd.Flags().StringSliceVar(&with, "with", nil, "Other participants (routine tasks)")
	cmd.Flags().StringVar(&challengeID, "challenge", "", "Challenge id (challenge tasks)")

	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
