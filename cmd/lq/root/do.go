package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lifequest/internal/engine"
	"lifequest/internal/ui"
)

func newDoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "do <id>",
		Short: "Complete a task (id or unique id prefix)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
			}
			return nil
		},
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
			ref, err := resolveTask(svc.Cache().Read(), args[0])
			if err != nil {
				return err
			}
			before, err := svc.Status(ctx, cfg.UserID)
			if err != nil {
				return err
			}

			info := ref.Info()
			res, err := svc.CompleteTask(ctx, cfg.UserID, info.ID, ref.Kind())
			if err != nil {
				return err
			}

			after, err := svc.Status(ctx, cfg.UserID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n",
				ui.Good.Render(ui.IconDone+" Completed"),
				ui.KindIcon(string(ref.Kind())),
				info.Title,
				ui.Muted.Render(fmt.Sprintf("(+%d XP %s %s)", awardedXP(before, after, info.Category), ui.CategoryIcon(string(info.Category)), info.Category)))
			if after.Overall.Level > before.Overall.Level {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Gold.Render(fmt.Sprintf("%s LEVEL UP %d → %d", ui.IconBolt, before.Overall.Level, after.Overall.Level)))
			}
			for _, id := range res.Badges {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Gold.Render(ui.IconTrophy+" Badge earned: ")+id)
			}
			if !res.Refreshed {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render(ui.IconWarn+" Task list could not be refreshed"))
			}
			return nil
		},
	}

	return cmd
}

// awardedXP is the XP the store actually granted in c, which can differ from the task's planned
// value (habit decay).
func awardedXP(before, after *engine.Status, c engine.Category) int {
	return after.State.Categories[c].TotalXP() - before.State.Categories[c].TotalXP()
}

// resolveTask finds a cached task by exact id or unique id prefix.
func resolveTask(cache engine.ActiveTaskCache, arg string) (engine.TaskRef, error) {
	arg = strings.TrimSpace(arg)
	var matches []engine.TaskRef
	for _, ref := range allTasks(cache) {
		id := ref.Info().ID
		if id == arg {
			return ref, nil
		}
		if strings.HasPrefix(id, arg) {
			matches = append(matches, ref)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no active task matches %q", arg)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("id prefix %q is ambiguous (%d tasks)", arg, len(matches))
	}
}

func allTasks(cache engine.ActiveTaskCache) []engine.TaskRef {
	out := make([]engine.TaskRef, 0, cache.Len())
	for _, t := range cache.Normal {
		out = append(out, t)
	}
	for _, t := range cache.Habit {
		out = append(out, t)
	}
	for _, t := range cache.Routine {
		out = append(out, t)
	}
	for _, t := range cache.Challenge {
		out = append(out, t)
	}
	return out
}
