package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akarolczak/critpath/internal/cli/formatter"
	"github.com/akarolczak/critpath/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newWizardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "wizard",
		Short: "Create a schedule step by step",
		Long: `Create a schedule through a short guided form: code, name, start
date and working week. Activities and links are added afterwards with
the activity and link commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.IsInteractive != nil && !app.IsInteractive() {
				return fmt.Errorf("wizard needs an interactive terminal")
			}
			return runWizard(app)
		},
	}
}

func runWizard(app *App) error {
	var code, name, description string
	var confirm bool

	start := time.Now().UTC().Format("2006-01-02")
	workdays := domain.DefaultWorkingDays

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Code").
				Description("2-8 uppercase letters, optionally followed by digits, e.g. BRIDGE1").
				Value(&code).
				Validate(validateScheduleCode),
			huh.NewInput().
				Title("Name").
				Value(&name).
				Validate(requireValue("name")),
			huh.NewInput().
				Title("Start date").
				Description("YYYY-MM-DD; no activity is scheduled earlier").
				Value(&start).
				Validate(validateISODate),
			huh.NewSelect[string]().
				Title("Working week").
				Options(
					huh.NewOption("Monday to Friday", "1111100"),
					huh.NewOption("Monday to Saturday", "1111110"),
					huh.NewOption("Every day", "1111111"),
				).
				Value(&workdays),
			huh.NewText().
				Title("Description").
				Lines(3).
				Value(&description),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Create this schedule?").
				Affirmative("Create").
				Negative("Cancel").
				Value(&confirm),
		),
	).WithTheme(critpathHuhTheme())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("Cancelled.")
			return nil
		}
		return err
	}
	if !confirm {
		fmt.Println("Cancelled.")
		return nil
	}

	startDate, err := time.Parse("2006-01-02", strings.TrimSpace(start))
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", start, err)
	}

	s := &domain.Schedule{
		Code:        strings.ToUpper(strings.TrimSpace(code)),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		StartDate:   startDate.UTC(),
		WorkingDays: workdays,
	}
	if err := app.Schedules.Create(context.Background(), s); err != nil {
		return err
	}

	fmt.Printf("Created schedule %s %s [%s]\n", s.Code, s.Name, s.ID)
	fmt.Println(formatter.Dim("Next: critpath activity add " + s.Code + " --code A100 --name \"First activity\" --duration 5"))
	return nil
}

func validateScheduleCode(s string) error {
	sched := domain.Schedule{Code: strings.ToUpper(strings.TrimSpace(s))}
	return sched.ValidateCode()
}

func validateISODate(s string) error {
	if _, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

func requireValue(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// critpathHuhTheme returns a custom huh theme using the existing Gruvbox
// palette.
func critpathHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}
