package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akarolczak/critpath/internal/calendar"
	"github.com/akarolczak/critpath/internal/cli/formatter"
	"github.com/akarolczak/critpath/internal/domain"
	"github.com/spf13/cobra"
)

func newScheduleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage schedules",
	}

	cmd.AddCommand(
		newScheduleAddCmd(app),
		newScheduleListCmd(app),
		newScheduleInspectCmd(app),
		newScheduleUpdateCmd(app),
		newScheduleCalendarCmd(app),
		newScheduleActivateCmd(app),
		newScheduleCompleteCmd(app),
		newScheduleArchiveCmd(app),
		newScheduleUnarchiveCmd(app),
		newScheduleRemoveCmd(app),
		newScheduleImportCmd(app),
	)

	return cmd
}

func newScheduleAddCmd(app *App) *cobra.Command {
	var code, name, desc, workdays string
	var start, end time.Time
	var holidays []time.Time

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := &domain.Schedule{
				Code:        strings.ToUpper(code),
				Name:        name,
				Description: desc,
				StartDate:   start,
				WorkingDays: workdays,
				Holidays:    holidays,
			}
			if cmd.Flags().Changed("end") {
				utc := end
				s.EndDate = &utc
			}

			if err := app.Schedules.Create(context.Background(), s); err != nil {
				return err
			}

			fmt.Printf("Created schedule %s [%s]\n", s.Name, s.Code)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Schedule code (2-8 uppercase letters + up to 4 digits, e.g. BRIDGE01)")
	cmd.Flags().StringVar(&name, "name", "", "Schedule name")
	cmd.Flags().StringVar(&desc, "desc", "", "Description")
	dateFlag(cmd.Flags(), &start, "start", "Project start date (YYYY-MM-DD)")
	dateFlag(cmd.Flags(), &end, "end", "Target end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&workdays, "workdays", "", "Working-day mask, Monday first (default 1111100)")
	dateListFlag(cmd.Flags(), &holidays, "holiday", "Holiday date (YYYY-MM-DD), repeatable")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func newScheduleListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			schedules, err := app.Schedules.List(context.Background(), all)
			if err != nil {
				return err
			}

			if len(schedules) == 0 {
				fmt.Println("No schedules found.")
				return nil
			}

			fmt.Printf("%s\n", formatter.FormatScheduleList(schedules))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include archived schedules")

	return cmd
}

func newScheduleInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect SCHEDULE",
		Short: "Show schedule details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			s, err := app.Schedules.GetByID(ctx, id)
			if err != nil {
				return err
			}

			fmt.Printf("%s\n", formatter.FormatScheduleDetail(s))
			return nil
		},
	}
}

func newScheduleUpdateCmd(app *App) *cobra.Command {
	var name, desc string
	var start, end time.Time
	var clearEnd bool

	cmd := &cobra.Command{
		Use:   "update SCHEDULE",
		Short: "Update a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			s, err := app.Schedules.GetByID(ctx, id)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("name") {
				s.Name = name
			}
			if cmd.Flags().Changed("desc") {
				s.Description = desc
			}
			if cmd.Flags().Changed("start") {
				s.StartDate = start
			}
			if cmd.Flags().Changed("end") {
				utc := end
				s.EndDate = &utc
			}
			if clearEnd {
				s.EndDate = nil
			}

			if err := app.Schedules.Update(ctx, s); err != nil {
				return err
			}

			fmt.Printf("Updated schedule %s [%s]\n", s.Name, s.Code)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Schedule name")
	cmd.Flags().StringVar(&desc, "desc", "", "Description")
	dateFlag(cmd.Flags(), &start, "start", "Project start date (YYYY-MM-DD)")
	dateFlag(cmd.Flags(), &end, "end", "Target end date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearEnd, "clear-end", false, "Remove the target end date")

	return cmd
}

func newScheduleCalendarCmd(app *App) *cobra.Command {
	var workdays, file string
	var holidays []time.Time

	cmd := &cobra.Command{
		Use:   "calendar SCHEDULE",
		Short: "Replace a schedule's working calendar",
		Long: `Replace a schedule's working-day mask and holiday list.

The calendar can be given inline with --workdays and repeated --holiday
flags, or loaded from a YAML file with --file:

    working_days: "1111100"
    holidays:
      - 2026-03-09
      - 2026-05-01

Computed dates are marked stale; run recompute to apply the new calendar.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			s, err := app.Schedules.GetByID(ctx, id)
			if err != nil {
				return err
			}

			mask := s.WorkingDays
			dates := s.Holidays

			if file != "" {
				if cmd.Flags().Changed("workdays") || cmd.Flags().Changed("holiday") {
					return fmt.Errorf("--file cannot be combined with --workdays or --holiday")
				}
				mask, dates, err = calendar.LoadFile(file)
				if err != nil {
					return err
				}
			} else {
				if cmd.Flags().Changed("workdays") {
					mask = workdays
				}
				if cmd.Flags().Changed("holiday") {
					dates = holidays
				}
			}

			if err := app.Schedules.UpdateCalendar(ctx, id, mask, dates); err != nil {
				return err
			}

			fmt.Printf("Updated calendar for %s (%d holidays)\n", s.Code, len(dates))
			return nil
		},
	}

	cmd.Flags().StringVar(&workdays, "workdays", "", "Working-day mask, Monday first (e.g. 1111110)")
	dateListFlag(cmd.Flags(), &holidays, "holiday", "Holiday date (YYYY-MM-DD), repeatable; replaces the current list")
	cmd.Flags().StringVar(&file, "file", "", "Load the calendar from a YAML file")

	return cmd
}

func newScheduleActivateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "activate SCHEDULE",
		Short: "Mark a schedule active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Schedules.Activate(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Activated schedule %s\n", args[0])
			return nil
		},
	}
}

func newScheduleCompleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "complete SCHEDULE",
		Short: "Mark a schedule completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Schedules.Complete(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Completed schedule %s\n", args[0])
			return nil
		},
	}
}

func newScheduleArchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive SCHEDULE",
		Short: "Archive a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Schedules.Archive(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Archived schedule %s\n", args[0])
			return nil
		},
	}
}

func newScheduleUnarchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unarchive SCHEDULE",
		Short: "Unarchive a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Schedules.Unarchive(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Unarchived schedule %s\n", args[0])
			return nil
		},
	}
}

func newScheduleRemoveCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "remove SCHEDULE",
		Short: "Remove a schedule and everything under it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Schedules.Delete(ctx, id, force); err != nil {
				return err
			}
			fmt.Printf("Removed schedule %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Remove even when the schedule is not archived")

	return cmd
}

func newScheduleImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a schedule from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Import.ImportSchedule(context.Background(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Imported schedule %s [%s]: %d wbs nodes, %d activities, %d links, %d resources, %d assignments\n",
				result.Schedule.Name, result.Schedule.Code,
				result.WbsCount, result.ActivityCount, result.RelationshipCount,
				result.ResourceCount, result.AssignmentCount)
			fmt.Println("Run recompute to calculate dates.")
			return nil
		},
	}
}
