package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/akarolczak/critpath/internal/cli/formatter"
	"github.com/akarolczak/critpath/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// schedulesLoadedMsg signals that schedule list data has been loaded.
type schedulesLoadedMsg struct {
	schedules []*domain.Schedule
	err       error
}

// scheduleListView shows an interactive, navigable list of schedules.
type scheduleListView struct {
	state     *SharedState
	schedules []*domain.Schedule
	cursor    int
	loading   bool
	err       error

	// Filtering
	filtering bool
	filter    string
}

func newScheduleListView(state *SharedState) *scheduleListView {
	return &scheduleListView{
		state:   state,
		loading: true,
	}
}

func (v *scheduleListView) ID() ViewID { return ViewScheduleList }

func (v *scheduleListView) Title() string { return "Schedules" }

func (v *scheduleListView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	}
}

func (v *scheduleListView) Init() tea.Cmd {
	return v.loadSchedules()
}

func (v *scheduleListView) loadSchedules() tea.Cmd {
	app := v.state.App
	return func() tea.Msg {
		ctx := context.Background()
		schedules, err := app.Schedules.List(ctx, false)
		return schedulesLoadedMsg{schedules: schedules, err: err}
	}
}

func (v *scheduleListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case schedulesLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.err = msg.err
			return v, nil
		}
		v.schedules = msg.schedules
		return v, nil

	case tea.KeyMsg:
		if v.filtering {
			return v.updateFilter(msg)
		}
		return v.updateNormal(msg)
	}
	return v, nil
}

func (v *scheduleListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := v.visibleSchedules()

	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(visible)-1 {
			v.cursor++
		}
	case "enter":
		if v.cursor < len(visible) {
			s := visible[v.cursor]
			v.state.SetActiveSchedule(s)
			return v, pushView(newActivityBoardView(v.state))
		}
	case "/":
		v.filtering = true
		v.filter = ""
	}
	return v, nil
}

func (v *scheduleListView) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.filtering = false
		v.filter = ""
		v.cursor = 0
		return v, nil
	case tea.KeyEnter:
		v.filtering = false
		return v, nil
	case tea.KeyBackspace:
		if len(v.filter) > 0 {
			v.filter = v.filter[:len(v.filter)-1]
			v.cursor = 0
		}
	default:
		if len(msg.String()) == 1 {
			v.filter += msg.String()
			v.cursor = 0
		}
	}
	return v, nil
}

func (v *scheduleListView) visibleSchedules() []*domain.Schedule {
	if v.filter == "" {
		return v.schedules
	}
	lf := strings.ToLower(v.filter)
	var filtered []*domain.Schedule
	for _, s := range v.schedules {
		if strings.Contains(strings.ToLower(s.Name), lf) ||
			strings.Contains(strings.ToLower(s.Code), lf) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func (v *scheduleListView) View() string {
	if v.loading {
		return "\n  " + formatter.Dim("Loading schedules...")
	}
	if v.err != nil {
		return "\n  " + formatter.StyleRed.Render("Error: "+v.err.Error())
	}

	visible := v.visibleSchedules()

	var b strings.Builder
	b.WriteString("\n")

	if v.filtering {
		b.WriteString("  " + formatter.StyleYellow.Render("/") + " " + v.filter + "█\n\n")
	}

	if len(visible) == 0 {
		b.WriteString("  " + formatter.Dim("No schedules found.") + "\n")
		return b.String()
	}

	for i, s := range visible {
		cursor := "  "
		nameStyle := formatter.StyleFg
		if i == v.cursor {
			cursor = formatter.StyleGreen.Render("▸ ")
			nameStyle = formatter.StyleBold
		}

		target := formatter.Dim("–")
		if s.EndDate != nil {
			target = formatter.Dim(s.EndDate.Format("2006-01-02"))
		}
		stale := ""
		if s.NeedsRecompute {
			stale = "  " + formatter.StyleYellow.Render("(stale)")
		}

		b.WriteString(fmt.Sprintf("%s%-9s %s  %s  %s%s\n",
			cursor,
			formatter.StyleGreen.Render(s.Code),
			nameStyle.Render(padRight(s.Name, 24)),
			formatter.StatusPill(s.Status),
			target,
			stale,
		))
	}

	return b.String()
}

// padRight pads a string to a minimum width, truncating if needed.
func padRight(s string, width int) string {
	if len(s) > width {
		return s[:width-1] + "…"
	}
	return s + strings.Repeat(" ", width-len(s))
}
