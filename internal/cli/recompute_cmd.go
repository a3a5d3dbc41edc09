package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/akarolczak/critpath/internal/cli/formatter"
	"github.com/akarolczak/critpath/internal/contract"
	"github.com/spf13/cobra"
)

func newRecomputeCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "recompute SCHEDULE",
		Short: "Recompute the schedule's dates",
		Long: `Recompute planned and late dates for every activity.

The pass walks the dependency network forward for earliest dates and
backward for latest dates, then flags the zero-float chain as critical.
When nothing changed since the last pass the stored dates are kept as is;
--force recomputes anyway.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			scheduleID, err := resolveScheduleID(ctx, app, args[0])
			if err != nil {
				return err
			}

			req := contract.NewRecomputeRequest(scheduleID)
			req.Force = force

			stop := formatter.StartSpinner("Recomputing")
			resp, err := app.Recompute.Recompute(ctx, req)
			stop()
			if err != nil {
				var recErr *contract.RecomputeError
				if errors.As(err, &recErr) {
					fmt.Printf("%s\n", formatter.FormatRecomputeError(recErr))
				}
				return err
			}

			fmt.Printf("%s\n", formatter.FormatRecomputeResult(resp))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Recompute even when inputs are unchanged")

	return cmd
}
