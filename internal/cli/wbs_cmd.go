package cli

import (
	"context"
	"fmt"

	"github.com/akarolczak/critpath/internal/cli/formatter"
	"github.com/akarolczak/critpath/internal/domain"
	"github.com/spf13/cobra"
)

func newWbsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wbs",
		Short: "Manage the work breakdown structure",
	}

	cmd.AddCommand(
		newWbsAddCmd(app),
		newWbsTreeCmd(app),
		newWbsUpdateCmd(app),
		newWbsMoveCmd(app),
		newWbsRemoveCmd(app),
	)

	return cmd
}

func newWbsAddCmd(app *App) *cobra.Command {
	var code, name, parent string

	cmd := &cobra.Command{
		Use:   "add SCHEDULE",
		Short: "Add a WBS node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}

			n := &domain.WbsNode{
				ScheduleID: scheduleID,
				Code:       code,
				Name:       name,
			}
			if parent != "" {
				parentID, err := resolveWbsNodeID(ctx, app, scheduleID, parent)
				if err != nil {
					return err
				}
				n.ParentID = &parentID
			}

			if err := app.Wbs.Create(ctx, n); err != nil {
				return err
			}

			fmt.Printf("Added WBS node %s %s\n", n.Code, n.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Outline code, e.g. 1.2.3")
	cmd.Flags().StringVar(&name, "name", "", "Node name")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent node (code or ID); omit for a top-level node")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newWbsTreeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tree SCHEDULE",
		Short: "Show the WBS tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}

			nodes, err := app.Wbs.ListBySchedule(ctx, scheduleID)
			if err != nil {
				return err
			}
			acts, err := app.Activities.ListBySchedule(ctx, scheduleID)
			if err != nil {
				return err
			}

			counts := make(map[string]int)
			for _, a := range acts {
				if a.WbsID != nil {
					counts[*a.WbsID]++
				}
			}

			fmt.Printf("%s\n", formatter.FormatWbsTree(nodes, counts))
			return nil
		},
	}
}

func newWbsUpdateCmd(app *App) *cobra.Command {
	var code, name string

	cmd := &cobra.Command{
		Use:   "update SCHEDULE NODE",
		Short: "Rename or recode a WBS node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			nodeID, err := resolveWbsNodeID(ctx, app, scheduleID, args[1])
			if err != nil {
				return err
			}
			n, err := app.Wbs.GetByID(ctx, nodeID)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("code") {
				n.Code = code
			}
			if cmd.Flags().Changed("name") {
				n.Name = name
			}

			if err := app.Wbs.Update(ctx, n); err != nil {
				return err
			}

			fmt.Printf("Updated WBS node %s %s\n", n.Code, n.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Outline code")
	cmd.Flags().StringVar(&name, "name", "", "Node name")

	return cmd
}

func newWbsMoveCmd(app *App) *cobra.Command {
	var parent string
	var toRoot bool

	cmd := &cobra.Command{
		Use:   "move SCHEDULE NODE",
		Short: "Reparent a WBS node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			nodeID, err := resolveWbsNodeID(ctx, app, scheduleID, args[1])
			if err != nil {
				return err
			}

			var newParent *string
			switch {
			case toRoot:
				newParent = nil
			case parent != "":
				parentID, err := resolveWbsNodeID(ctx, app, scheduleID, parent)
				if err != nil {
					return err
				}
				newParent = &parentID
			default:
				return fmt.Errorf("either --parent or --to-root is required")
			}

			if err := app.Wbs.Move(ctx, nodeID, newParent); err != nil {
				return err
			}

			fmt.Printf("Moved WBS node %s\n", args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "New parent node (code or ID)")
	cmd.Flags().BoolVar(&toRoot, "to-root", false, "Move to the top level")

	return cmd
}

func newWbsRemoveCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "remove SCHEDULE NODE",
		Short: "Remove a WBS node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}
			nodeID, err := resolveWbsNodeID(ctx, app, scheduleID, args[1])
			if err != nil {
				return err
			}
			if err := app.Wbs.Delete(ctx, nodeID, force); err != nil {
				return err
			}
			fmt.Printf("Removed WBS node %s\n", args[1])
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Remove even if the node still has children or activities")

	return cmd
}
