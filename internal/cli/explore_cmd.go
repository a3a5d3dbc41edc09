package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newExploreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "Browse schedules interactively",
		Long: `Browse schedules in a full-screen terminal UI.

Pick a schedule to see its dashboard, scroll the activity table, narrow
it to the critical path with c, and recompute in place with r.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.IsInteractive != nil && !app.IsInteractive() {
				return fmt.Errorf("explore needs an interactive terminal")
			}

			p := tea.NewProgram(newExploreModel(app), tea.WithAltScreen())
			_, err := p.Run()
			return err
		},
	}
}
