package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lifequest/internal/engine"
	"lifequest/internal/ui"
)

func newRolloverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollover",
		Short: "Make challenge tasks completed on earlier days available again",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, store, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			n, err := store.ResetChallenges(ctx, cfg.UserID, engine.DayKey(time.Now()))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d challenge task(s) reset\n", ui.Good.Render(ui.IconCalendar+" Rollover:"), n)
			return nil
		},
	}

	return cmd
}
