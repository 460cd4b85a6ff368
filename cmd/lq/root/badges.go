package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"lifequest/internal/ui"
)

func newBadgesCmd() *cobra.Command {
	var earnedOnly bool

	cmd := &cobra.Command{
		Use:   "badges",
		Short: "Show badges and progress toward them",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			// Pick up anything earned while evaluation was unavailable.
			award := svc.Achievements().Evaluate(ctx, cfg.UserID)
			for _, id := range award.NewlyAwarded {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Gold.Render(ui.IconTrophy+" Badge earned: ")+id)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, "Badges"))
			for _, p := range svc.Achievements().Progress(ctx, cfg.UserID) {
				if p.Earned {
					when := ""
					if p.EarnedAt != nil {
						when = p.EarnedAt.Local().Format("2006-01-02")
					}
					fmt.Fprintf(out, "%s %s %s %s\n", p.Badge.Icon, ui.Good.Render(p.Badge.Name), ui.Muted.Render(p.Badge.Description), ui.Muted.Render(when))
					continue
				}
				if earnedOnly {
					continue
				}
				fmt.Fprintf(out, "%s %s %s %s %s\n", ui.IconLock, p.Badge.Name, ui.ProgressBar(p.Progress, 10), ui.Percent(p.Progress), ui.Muted.Render(p.Badge.Description))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&earnedOnly, "earned", false, "Only show earned badges")
	return cmd
}
