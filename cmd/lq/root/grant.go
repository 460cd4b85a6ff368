package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lifequest/internal/engine"
	"lifequest/internal/ui"
)

func newGrantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grant <category> <xp>",
		Short: "Grant XP to a category outside of task completion",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("category and xp are required")
			}
			if n, err := strconv.Atoi(args[1]); err != nil || n <= 0 {
				return errors.New("xp must be a positive integer")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cat, ok := engine.ParseCategory(args[0])
			if !ok {
				return fmt.Errorf("unknown category: %q", args[0])
			}
			amount, _ := strconv.Atoi(args[1])

			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			award, err := svc.AwardXP(ctx, cfg.UserID, map[engine.Category]int{cat: amount})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Good.Render(fmt.Sprintf("+%d XP", amount)), ui.CategoryIcon(string(cat)), cat)
			for _, id := range award.NewlyAwarded {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Gold.Render(ui.IconTrophy+" Badge earned: ")+id)
			}
			return nil
		},
	}

	return cmd
}

func newPrestigeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prestige <n>",
		Short: "Set the prestige counter",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("prestige value is required")
			}
			if n, err := strconv.Atoi(args[0]); err != nil || n < 0 {
				return errors.New("prestige must be a non-negative integer")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			n, _ := strconv.Atoi(args[0])
			svc, store, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := store.SetPrestige(ctx, cfg.UserID, n); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Prestige", n))
			for _, id := range svc.Achievements().Evaluate(ctx, cfg.UserID).NewlyAwarded {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Gold.Render(ui.IconTrophy+" Badge earned: ")+id)
			}
			return nil
		},
	}

	return cmd
}
