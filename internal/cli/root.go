package cli

import (
	"github.com/akarolczak/critpath/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Schedules     service.ScheduleService
	Wbs           service.WbsService
	Activities    service.ActivityService
	Relationships service.RelationshipService
	Resources     service.ResourceService
	Recompute     service.RecomputeService
	Status        service.StatusService
	Report        service.ReportService
	Import        service.ImportService

	// IsInteractive reports whether stdin is a terminal. The explore
	// command refuses to start without one.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "critpath" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "critpath",
		Short: "Critical path scheduling for activity networks",
	}

	root.AddCommand(
		newScheduleCmd(app),
		newWbsCmd(app),
		newActivityCmd(app),
		newLinkCmd(app),
		newResourceCmd(app),
		newRecomputeCmd(app),
		newStatusCmd(app),
		newReportCmd(app),
		newExploreCmd(app),
		newWizardCmd(app),
	)

	return root
}
