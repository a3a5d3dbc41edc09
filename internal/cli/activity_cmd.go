package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/akarolczak/critpath/internal/cli/formatter"
	"github.com/akarolczak/critpath/internal/domain"
	"github.com/spf13/cobra"
)

func newActivityCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Manage activities",
	}

	cmd.AddCommand(
		newActivityAddCmd(app),
		newActivityListCmd(app),
		newActivityInspectCmd(app),
		newActivityUpdateCmd(app),
		newActivityStartCmd(app),
		newActivityFinishCmd(app),
		newActivityProgressCmd(app),
		newActivityRemoveCmd(app),
	)

	return cmd
}

func newActivityAddCmd(app *App) *cobra.Command {
	var code, name, typeStr, unitStr, wbs string
	var duration float64

	cmd := &cobra.Command{
		Use:   "add SCHEDULE",
		Short: "Add an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}

			unit, err := domain.ParseDurationUnit(unitStr)
			if err != nil {
				return err
			}

			a := &domain.Activity{
				ScheduleID: scheduleID,
				Code:       code,
				Name:       name,
				Type:       domain.ActivityType(typeStr),
				Duration:   duration,
				Unit:       unit,
			}
			if wbs != "" {
				wbsID, err := resolveWbsNodeID(ctx, app, scheduleID, wbs)
				if err != nil {
					return err
				}
				a.WbsID = &wbsID
			}

			if err := app.Activities.Create(ctx, a); err != nil {
				return err
			}

			fmt.Printf("Added activity %s %s (%s)\n", a.Code, a.Name, formatter.DurationLabel(a.Duration, a.Unit))
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Activity code, e.g. A100")
	cmd.Flags().StringVar(&name, "name", "", "Activity name")
	cmd.Flags().StringVar(&typeStr, "type", "task", "Activity type (task|milestone|start_milestone|finish_milestone|summary)")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Duration in the given unit; milestones stay at 0")
	cmd.Flags().StringVar(&unitStr, "unit", "days", "Duration unit (hours|days|weeks|months)")
	cmd.Flags().StringVar(&wbs, "wbs", "", "WBS node (code or ID)")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newActivityListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list SCHEDULE",
		Short: "List activities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}

			acts, err := app.Activities.ListBySchedule(ctx, scheduleID)
			if err != nil {
				return err
			}
			if len(acts) == 0 {
				fmt.Println("No activities found.")
				return nil
			}

			fmt.Printf("%s\n", formatter.FormatActivityList(acts))
			return nil
		},
	}
}

func newActivityInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect SCHEDULE ACTIVITY",
		Short: "Show activity details and links",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			activityID, err := resolveActivityID(ctx, app, scheduleID, args[1])
			if err != nil {
				return err
			}
			a, err := app.Activities.GetByID(ctx, activityID)
			if err != nil {
				return err
			}

			rels, err := app.Relationships.ListByActivity(ctx, activityID)
			if err != nil {
				return err
			}

			fmt.Printf("%s\n", formatter.FormatActivityDetail(a, rels, activityCodes(ctx, app, scheduleID)))
			return nil
		},
	}
}

func newActivityUpdateCmd(app *App) *cobra.Command {
	var name, typeStr, unitStr, wbs string
	var duration float64
	var clearWbs bool

	cmd := &cobra.Command{
		Use:   "update SCHEDULE ACTIVITY",
		Short: "Update an activity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			activityID, err := resolveActivityID(ctx, app, scheduleID, args[1])
			if err != nil {
				return err
			}
			a, err := app.Activities.GetByID(ctx, activityID)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("name") {
				a.Name = name
			}
			if cmd.Flags().Changed("type") {
				a.Type = domain.ActivityType(typeStr)
			}
			if cmd.Flags().Changed("duration") {
				a.Duration = duration
			}
			if cmd.Flags().Changed("unit") {
				unit, err := domain.ParseDurationUnit(unitStr)
				if err != nil {
					return err
				}
				a.Unit = unit
			}
			if cmd.Flags().Changed("wbs") {
				wbsID, err := resolveWbsNodeID(ctx, app, scheduleID, wbs)
				if err != nil {
					return err
				}
				a.WbsID = &wbsID
			}
			if clearWbs {
				a.WbsID = nil
			}

			if err := app.Activities.Update(ctx, a); err != nil {
				return err
			}

			fmt.Printf("Updated activity %s %s\n", a.Code, a.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Activity name")
	cmd.Flags().StringVar(&typeStr, "type", "", "Activity type")
	cmd.Flags().Float64Var(&duration, "duration", 0, "Duration in the activity's unit")
	cmd.Flags().StringVar(&unitStr, "unit", "", "Duration unit (hours|days|weeks|months)")
	cmd.Flags().StringVar(&wbs, "wbs", "", "WBS node (code or ID)")
	cmd.Flags().BoolVar(&clearWbs, "clear-wbs", false, "Detach from its WBS node")

	return cmd
}

func newActivityStartCmd(app *App) *cobra.Command {
	var on time.Time

	cmd := &cobra.Command{
		Use:   "start SCHEDULE ACTIVITY",
		Short: "Record the actual start",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			activityID, err := resolveActivityID(ctx, app, scheduleID, args[1])
			if err != nil {
				return err
			}
			at := on
			if !cmd.Flags().Changed("on") {
				at = todayUTC()
			}

			if err := app.Activities.RecordStart(ctx, activityID, at); err != nil {
				return err
			}

			fmt.Printf("Recorded start of %s on %s\n", args[1], at.Format("2006-01-02"))
			return nil
		},
	}

	dateFlag(cmd.Flags(), &on, "on", "Actual start date (YYYY-MM-DD, default today)")

	return cmd
}

func newActivityFinishCmd(app *App) *cobra.Command {
	var on time.Time

	cmd := &cobra.Command{
		Use:   "finish SCHEDULE ACTIVITY",
		Short: "Record the actual finish",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			activityID, err := resolveActivityID(ctx, app, scheduleID, args[1])
			if err != nil {
				return err
			}
			at := on
			if !cmd.Flags().Changed("on") {
				at = todayUTC()
			}

			if err := app.Activities.RecordFinish(ctx, activityID, at); err != nil {
				return err
			}

			fmt.Printf("Recorded finish of %s on %s\n", args[1], at.Format("2006-01-02"))
			return nil
		},
	}

	dateFlag(cmd.Flags(), &on, "on", "Actual finish date (YYYY-MM-DD, default today)")

	return cmd
}

func newActivityProgressCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "progress SCHEDULE ACTIVITY PERCENT",
		Short: "Set percent complete",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			activityID, err := resolveActivityID(ctx, app, scheduleID, args[1])
			if err != nil {
				return err
			}
			pct, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid percent %q: %w", args[2], err)
			}

			if err := app.Activities.SetProgress(ctx, activityID, pct); err != nil {
				return err
			}

			fmt.Printf("Set %s to %s\n", args[1], formatter.RenderProgress(pct, 10))
			return nil
		},
	}
}

func newActivityRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove SCHEDULE ACTIVITY",
		Short: "Remove an activity and its links",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			activityID, err := resolveActivityID(ctx, app, scheduleID, args[1])
			if err != nil {
				return err
			}
			if err := app.Activities.Delete(ctx, activityID); err != nil {
				return err
			}
			fmt.Printf("Removed activity %s\n", args[1])
			return nil
		},
	}
}

// activityCodes builds an ID-to-code map for link display. Lookups that
// fail fall back to the raw ID, so display never blocks on a read error.
func activityCodes(ctx context.Context, app *App, scheduleID string) map[string]string {
	codes := make(map[string]string)
	acts, err := app.Activities.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return codes
	}
	for _, a := range acts {
		codes[a.ID] = a.Code
	}
	return codes
}

// todayUTC returns today truncated to UTC midnight.
func todayUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
