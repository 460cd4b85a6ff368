package root

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lifequest/internal/engine"
	"lifequest/internal/ui"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active tasks by kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, _, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.Load(ctx, cfg.UserID); err != nil {
				return err
			}
			cache := svc.Cache().Read()
			out := cmd.OutOrStdout()
			if cache.Len() == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No active tasks. Add one with: lq add \"title\""))
				return nil
			}

			section(out, "Tasks", len(cache.Normal))
			for _, t := range cache.Normal {
				taskLine(out, t, "")
			}
			section(out, "Habits", len(cache.Habit))
			for _, t := range cache.Habit {
				taskLine(out, t, string(t.Interval))
			}
			section(out, "Routines", len(cache.Routine))
			for _, t := range cache.Routine {
				note := fmt.Sprintf("%d participants", len(t.Participants))
				if t.IsCompleted {
					note += ", done by you today"
				}
				taskLine(out, t, note)
			}
			section(out, "Challenges", len(cache.Challenge))
			for _, t := range cache.Challenge {
				note := t.ChallengeID
				if t.IsCompleted {
					note += ", completed"
				}
				taskLine(out, t, note)
			}
			return nil
		},
	}

	return cmd
}

func section(out io.Writer, title string, n int) {
	if n == 0 {
		return
	}
	fmt.Fprintln(out, ui.H2.Render(fmt.Sprintf("%s (%d)", title, n)))
}

func taskLine(out io.Writer, ref engine.TaskRef, note string) {
	t := ref.Info()
	suffix := fmt.Sprintf("%s %s, d%d, %d XP", ui.CategoryIcon(string(t.Category)), t.Category, t.Difficulty, t.XPValue)
	if note != "" {
		suffix += ", " + note
	}
	fmt.Fprintf(out, "- %s %s %s %s\n", ui.Key.Render(shortID(t.ID)), ui.KindIcon(string(ref.Kind())), t.Title, ui.Muted.Render("("+suffix+")"))
}
