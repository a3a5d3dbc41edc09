package cli

import (
	"context"
	"fmt"

	"github.com/akarolczak/critpath/internal/cli/formatter"
	"github.com/akarolczak/critpath/internal/domain"
	"github.com/spf13/cobra"
)

func newLinkCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Manage dependencies between activities",
	}

	cmd.AddCommand(
		newLinkAddCmd(app),
		newLinkListCmd(app),
		newLinkRemoveCmd(app),
	)

	return cmd
}

func newLinkAddCmd(app *App) *cobra.Command {
	var typeStr, lagUnitStr string
	var lag float64

	cmd := &cobra.Command{
		Use:   "add SCHEDULE PREDECESSOR SUCCESSOR",
		Short: "Link two activities",
		Long: `Link two activities with a typed dependency.

The type decides which dates the link ties together: FS (finish to start,
the default), SS (start to start), FF (finish to finish) or SF (start to
finish). A lag shifts the successor by that much working time; a negative
lag is a lead.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			predID, err := resolveActivityID(ctx, app, scheduleID, args[1])
			if err != nil {
				return err
			}
			succID, err := resolveActivityID(ctx, app, scheduleID, args[2])
			if err != nil {
				return err
			}

			relType, err := domain.ParseRelationshipType(typeStr)
			if err != nil {
				return err
			}
			lagUnit, err := domain.ParseDurationUnit(lagUnitStr)
			if err != nil {
				return err
			}

			rel := &domain.Relationship{
				ScheduleID:    scheduleID,
				PredecessorID: predID,
				SuccessorID:   succID,
				Type:          relType,
				Lag:           lag,
				LagUnit:       lagUnit,
			}
			if err := app.Relationships.Create(ctx, rel); err != nil {
				return err
			}

			fmt.Printf("Linked %s %s %s\n", args[1], rel.Type, args[2])
			return nil
		},
	}

	cmd.Flags().StringVar(&typeStr, "type", "FS", "Relationship type (FS|SS|FF|SF)")
	cmd.Flags().Float64Var(&lag, "lag", 0, "Lag in the given unit; negative for a lead")
	cmd.Flags().StringVar(&lagUnitStr, "lag-unit", "days", "Lag unit (hours|days|weeks|months)")

	return cmd
}

func newLinkListCmd(app *App) *cobra.Command {
	var activity string

	cmd := &cobra.Command{
		Use:   "list SCHEDULE",
		Short: "List links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}

			var rels []*domain.Relationship
			if activity != "" {
				activityID, err := resolveActivityID(ctx, app, scheduleID, activity)
				if err != nil {
					return err
				}
				rels, err = app.Relationships.ListByActivity(ctx, activityID)
				if err != nil {
					return err
				}
			} else {
				var err error
				rels, err = app.Relationships.ListBySchedule(ctx, scheduleID)
				if err != nil {
					return err
				}
			}

			fmt.Printf("%s\n", formatter.FormatRelationshipList(rels, activityCodes(ctx, app, scheduleID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&activity, "activity", "", "Only links touching this activity (code or ID)")

	return cmd
}

func newLinkRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove SCHEDULE PREDECESSOR SUCCESSOR",
		Short: "Remove the links between two activities",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			predID, err := resolveActivityID(ctx, app, scheduleID, args[1])
			if err != nil {
				return err
			}
			succID, err := resolveActivityID(ctx, app, scheduleID, args[2])
			if err != nil {
				return err
			}

			if err := app.Relationships.DeleteBetween(ctx, predID, succID); err != nil {
				return err
			}

			fmt.Printf("Removed links %s -> %s\n", args[1], args[2])
			return nil
		},
	}
}
