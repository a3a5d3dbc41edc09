package cli

import (
	"context"
	"errors"

	"github.com/akarolczak/critpath/internal/cli/formatter"
	"github.com/akarolczak/critpath/internal/contract"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// statusLoadedMsg signals that the schedule dashboard has been loaded.
type statusLoadedMsg struct {
	resp *contract.StatusResponse
	err  error
}

// recomputeDoneMsg signals that an in-board recompute finished.
type recomputeDoneMsg struct {
	err error
}

// activityBoardView shows the computed dashboard of one schedule in a
// scrollable viewport. It can recompute in place and narrow the table to
// the critical path.
type activityBoardView struct {
	state *SharedState
	vp    viewport.Model

	resp         *contract.StatusResponse
	loading      bool
	recomputing  bool
	criticalOnly bool
	err          error
}

func newActivityBoardView(state *SharedState) *activityBoardView {
	vp := viewport.New(state.Width, state.ContentHeight())
	return &activityBoardView{
		state:   state,
		vp:      vp,
		loading: true,
	}
}

func (v *activityBoardView) ID() ViewID { return ViewActivityBoard }

func (v *activityBoardView) Title() string { return v.state.ActiveScheduleCode }

func (v *activityBoardView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "recompute")),
		key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "critical only")),
		key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑↓", "scroll")),
	}
}

func (v *activityBoardView) Init() tea.Cmd {
	return v.loadStatus()
}

func (v *activityBoardView) loadStatus() tea.Cmd {
	app := v.state.App
	scheduleID := v.state.ActiveScheduleID
	return func() tea.Msg {
		ctx := context.Background()
		resp, err := app.Status.GetStatus(ctx, contract.NewStatusRequest(scheduleID))
		return statusLoadedMsg{resp: resp, err: err}
	}
}

func (v *activityBoardView) runRecompute() tea.Cmd {
	app := v.state.App
	scheduleID := v.state.ActiveScheduleID
	return func() tea.Msg {
		ctx := context.Background()
		_, err := app.Recompute.Recompute(ctx, contract.NewRecomputeRequest(scheduleID))
		return recomputeDoneMsg{err: err}
	}
}

func (v *activityBoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.err = msg.err
			return v, nil
		}
		v.err = nil
		v.resp = msg.resp
		v.refreshContent()
		v.vp.GotoTop()
		return v, nil

	case recomputeDoneMsg:
		v.recomputing = false
		if msg.err != nil {
			// A structured recompute failure renders as the same block the
			// recompute command prints; dates on screen are still the old ones.
			var recErr *contract.RecomputeError
			if errors.As(msg.err, &recErr) {
				v.vp.SetContent(formatter.FormatRecomputeError(recErr))
				v.vp.GotoTop()
				return v, nil
			}
			v.err = msg.err
			return v, nil
		}
		v.loading = true
		return v, v.loadStatus()

	case tea.WindowSizeMsg:
		v.vp.Width = msg.Width
		v.vp.Height = v.state.ContentHeight()
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			if v.recomputing {
				return v, nil
			}
			v.recomputing = true
			return v, v.runRecompute()
		case "c":
			v.criticalOnly = !v.criticalOnly
			v.refreshContent()
			return v, nil
		}
		var cmd tea.Cmd
		v.vp, cmd = v.vp.Update(msg)
		return v, cmd
	}

	return v, nil
}

// refreshContent re-renders the dashboard into the viewport, honoring the
// critical-only toggle.
func (v *activityBoardView) refreshContent() {
	if v.resp == nil {
		return
	}
	resp := v.resp
	if v.criticalOnly {
		resp = criticalSubset(resp)
	}
	v.vp.SetContent(formatter.FormatStatus(resp))
}

// criticalSubset narrows a dashboard to its critical-path rows.
func criticalSubset(resp *contract.StatusResponse) *contract.StatusResponse {
	filtered := *resp
	var acts []contract.ActivityDateView
	for _, a := range resp.Activities {
		if a.Critical {
			acts = append(acts, a)
		}
	}
	filtered.Activities = acts
	filtered.NearCritical = nil
	return &filtered
}

func (v *activityBoardView) View() string {
	if v.loading {
		return "\n  " + formatter.Dim("Loading status...")
	}
	if v.err != nil {
		return "\n  " + formatter.StyleRed.Render("Error: "+v.err.Error())
	}
	if v.recomputing {
		return "\n  " + formatter.Dim("Recomputing...")
	}
	return v.vp.View()
}
