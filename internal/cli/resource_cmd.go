package cli

import (
	"context"
	"fmt"

	"github.com/akarolczak/critpath/internal/cli/formatter"
	"github.com/akarolczak/critpath/internal/domain"
	"github.com/spf13/cobra"
)

func newResourceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resource",
		Short: "Manage resources and assignments",
	}

	cmd.AddCommand(
		newResourceAddCmd(app),
		newResourceListCmd(app),
		newResourceUpdateCmd(app),
		newResourceRemoveCmd(app),
		newResourceAssignCmd(app),
		newResourceUnassignCmd(app),
		newResourceAssignmentsCmd(app),
	)

	return cmd
}

func newResourceAddCmd(app *App) *cobra.Command {
	var code, name, unit string

	cmd := &cobra.Command{
		Use:   "add SCHEDULE",
		Short: "Add a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}

			res := &domain.Resource{
				ScheduleID: scheduleID,
				Code:       code,
				Name:       name,
				UnitLabel:  unit,
			}
			if err := app.Resources.Create(ctx, res); err != nil {
				return err
			}

			fmt.Printf("Added resource %s %s (%s)\n", res.Code, res.Name, res.UnitLabel)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Resource code, e.g. CRANE")
	cmd.Flags().StringVar(&name, "name", "", "Resource name")
	cmd.Flags().StringVar(&unit, "unit", "hours", "What the units count, e.g. hours, m3, crew")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newResourceListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list SCHEDULE",
		Short: "List resources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}

			resources, err := app.Resources.ListBySchedule(ctx, scheduleID)
			if err != nil {
				return err
			}
			if len(resources) == 0 {
				fmt.Println("No resources found.")
				return nil
			}

			fmt.Printf("%s\n", formatter.FormatResourceList(resources))
			return nil
		},
	}
}

func newResourceUpdateCmd(app *App) *cobra.Command {
	var name, unit string

	cmd := &cobra.Command{
		Use:   "update SCHEDULE RESOURCE",
		Short: "Update a resource",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			resourceID, err := resolveResourceID(ctx, app, scheduleID, args[1])
			if err != nil {
				return err
			}
			res, err := app.Resources.GetByID(ctx, resourceID)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("name") {
				res.Name = name
			}
			if cmd.Flags().Changed("unit") {
				res.UnitLabel = unit
			}

			if err := app.Resources.Update(ctx, res); err != nil {
				return err
			}

			fmt.Printf("Updated resource %s %s\n", res.Code, res.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Resource name")
	cmd.Flags().StringVar(&unit, "unit", "", "What the units count")

	return cmd
}

func newResourceRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove SCHEDULE RESOURCE",
		Short: "Remove a resource and its assignments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			resourceID, err := resolveResourceID(ctx, app, scheduleID, args[1])
			if err != nil {
				return err
			}
			if err := app.Resources.Delete(ctx, resourceID); err != nil {
				return err
			}
			fmt.Printf("Removed resource %s\n", args[1])
			return nil
		},
	}
}

func newResourceAssignCmd(app *App) *cobra.Command {
	var planned, actual float64

	cmd := &cobra.Command{
		Use:   "assign SCHEDULE ACTIVITY RESOURCE",
		Short: "Assign a resource to an activity",
		Long: `Assign a resource to an activity with a planned quantity.

Assigning the same pair again overwrites the booked quantities, so the
command doubles as the way to log actual consumption.`,
		Args: cobra.ExactArgs(3),
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
			resourceID, err := resolveResourceID(ctx, app, scheduleID, args[2])
			if err != nil {
				return err
			}

			if err := app.Resources.Assign(ctx, activityID, resourceID, planned, actual); err != nil {
				return err
			}

			fmt.Printf("Assigned %s to %s (%s planned)\n", args[2], args[1], formatter.UnitsLabel(planned))
			return nil
		},
	}

	cmd.Flags().Float64Var(&planned, "planned", 0, "Planned units")
	cmd.Flags().Float64Var(&actual, "actual", 0, "Actual units consumed so far")
	_ = cmd.MarkFlagRequired("planned")

	return cmd
}

func newResourceUnassignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unassign SCHEDULE ACTIVITY RESOURCE",
		Short: "Remove an assignment",
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
			resourceID, err := resolveResourceID(ctx, app, scheduleID, args[2])
			if err != nil {
				return err
			}

			if err := app.Resources.Unassign(ctx, activityID, resourceID); err != nil {
				return err
			}

			fmt.Printf("Unassigned %s from %s\n", args[2], args[1])
			return nil
		},
	}
}

func newResourceAssignmentsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "assignments SCHEDULE ACTIVITY",
		Short: "List an activity's assignments",
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

			assignments, err := app.Resources.ListAssignmentsByActivity(ctx, activityID)
			if err != nil {
				return err
			}

			codes := make(map[string]string)
			resources, err := app.Resources.ListBySchedule(ctx, scheduleID)
			if err != nil {
				return err
			}
			for _, r := range resources {
				codes[r.ID] = r.Code
			}

			fmt.Printf("%s\n", formatter.FormatAssignmentList(a.Code, assignments, codes))
			return nil
		},
	}
}
