package cli

import (
	"context"
	"fmt"

	"github.com/akarolczak/critpath/internal/cli/formatter"
	"github.com/akarolczak/critpath/internal/contract"
	"github.com/spf13/cobra"
)

func newReportCmd(app *App) *cobra.Command {
	var timePhased bool
	var bucket string

	cmd := &cobra.Command{
		Use:   "report SCHEDULE",
		Short: "Show resource usage",
		Long: `Show resource usage: totals per resource, per activity and rolled up
the WBS. With --time-phased the planned units are spread over each
activity's computed dates and bucketed by day or week.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}

			req := contract.NewReportRequest(scheduleID)
			req.TimePhased = timePhased
			req.Bucket = bucket

			resp, err := app.Report.GetReport(ctx, req)
			if err != nil {
				return err
			}

			fmt.Printf("%s\n", formatter.FormatReport(resp))
			return nil
		},
	}

	cmd.Flags().BoolVar(&timePhased, "time-phased", false, "Add a bucketed usage profile")
	cmd.Flags().StringVar(&bucket, "bucket", "day", "Profile bucket (day|week)")

	return cmd
}
