package cli

import (
	"context"
	"fmt"

	"github.com/akarolczak/critpath/internal/cli/formatter"
	"github.com/akarolczak/critpath/internal/contract"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status SCHEDULE",
		Short: "Show the schedule dashboard",
		Long: `Show the schedule dashboard: computed dates, float, the critical
path and anything drifting close to it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}

			resp, err := app.Status.GetStatus(ctx, contract.NewStatusRequest(scheduleID))
			if err != nil {
				return err
			}

			fmt.Printf("%s\n", formatter.FormatStatus(resp))
			return nil
		},
	}
}
