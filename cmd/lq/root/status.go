package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"lifequest/internal/engine"
	"lifequest/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show levels, category progress and stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			st, err := svc.Status(ctx, cfg.UserID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			o := st.Overall

			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Status for "+cfg.UserID))
			fmt.Fprintln(out, ui.LabelValue("Level", o.Level))
			fmt.Fprintln(out, ui.LabelValue("XP", fmt.Sprintf("%d / %d %s %s", o.CurrentLevelXP, o.NextLevelXP, ui.ProgressBar(o.Progress, 20), ui.Percent(o.Progress))))
			if st.State.Prestige > 0 {
				fmt.Fprintln(out, ui.LabelValue("Prestige", st.State.Prestige))
			}
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render("📊 Categories"))
			for _, c := range st.Categories {
				fmt.Fprintf(out, "- %s %-13s L%-3d %s %s\n",
					ui.CategoryIcon(string(c.Category)), c.Category, c.Level,
					ui.ProgressBar(c.Progress, 14), ui.Muted.Render(fmt.Sprintf("%d to next", c.ToNext)))
			}
			fmt.Fprintln(out, "")

			s := st.State.Stats
			fmt.Fprintln(out, ui.H2.Render("📈 Stats"))
			fmt.Fprintf(out, "- %s %d %s\n", ui.Key.Render("Streak:"), s.CurrentStreak, ui.Muted.Render(fmt.Sprintf("(best %d)", s.BestStreak)))
			fmt.Fprintf(out, "- %s %d\n", ui.Key.Render("Tasks completed:"), s.TotalTasksCompleted)
			fmt.Fprintf(out, "- %s %d\n", ui.Key.Render("Routines completed:"), s.RoutinesCompleted)
			fmt.Fprintf(out, "- %s %d\n", ui.Key.Render("Challenges completed:"), len(s.ChallengesCompleted))
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render("🔓 Gates"))
			fmt.Fprintf(out, "- %s %d\n", ui.Key.Render("Max difficulty:"), engine.MaxDifficultyForLevel(o.Level))

			earned := 0
			for _, b := range st.Badges {
				if b.Earned {
					earned++
				}
			}
			fmt.Fprintf(out, "- %s %d/%d %s\n", ui.Key.Render("Badges:"), earned, len(st.Badges), ui.Muted.Render("(lq badges)"))
			return nil
		},
	}

	return cmd
}
