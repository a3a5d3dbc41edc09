package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/akarolczak/critpath/internal/contract"
)

// FormatRecomputeResult renders the outcome of a recompute pass.
func FormatRecomputeResult(resp *contract.RecomputeResponse) string {
	var b strings.Builder

	if resp.Unchanged {
		b.WriteString(StyleGreen.Render("✔ Up to date") + Dim(" (inputs unchanged since the last pass)") + "\n\n")
	} else {
		b.WriteString(StyleGreen.Render("✔ Recomputed") + "\n\n")
	}

	b.WriteString(fmt.Sprintf("%s  %s\n", Dim("SCHEDULE"), Bold(resp.ScheduleCode)))
	b.WriteString(fmt.Sprintf("%s  %d activities, %d changed\n", Dim("SCOPE   "), resp.ActivityCount, resp.ChangedActivities))
	if resp.ProjectStart != nil && resp.ProjectFinish != nil {
		b.WriteString(fmt.Sprintf("%s  %s → %s\n", Dim("SPAN    "),
			resp.ProjectStart.Format("2006-01-02"), Bold(resp.ProjectFinish.Format("2006-01-02"))))
	}
	b.WriteString(fmt.Sprintf("%s  %s\n", Dim("VERDICT "), FeasibilityPill(resp.Feasible)))

	if len(resp.CriticalCodes) > 0 {
		b.WriteString("\n" + Header("Critical path") + "\n")
		b.WriteString(StyleRed.Render(strings.Join(resp.CriticalCodes, " → ")) + "\n")
	}

	if len(resp.Warnings) > 0 {
		b.WriteString("\n")
		for _, w := range resp.Warnings {
			b.WriteString(StyleYellow.Render("  WARNING: "+w) + "\n")
		}
	}

	b.WriteString("\n" + Dim(fmt.Sprintf("Took %s", resp.Elapsed.Round(time.Millisecond))) + "\n")

	return RenderBox("Recompute", b.String())
}

// FormatRecomputeError renders a recompute failure. Stored dates are left
// untouched on every one of these, which is worth saying out loud.
func FormatRecomputeError(e *contract.RecomputeError) string {
	var b strings.Builder

	b.WriteString(StyleRedB.Render("✖ Recompute failed") + "  " + Dim(string(e.Code)) + "\n\n")
	b.WriteString(StyleFg.Render(e.Message) + "\n")

	if len(e.Cycle) > 0 {
		b.WriteString("\n" + Header("Cycle") + "\n")
		b.WriteString(StyleRed.Render(strings.Join(e.Cycle, " → ")) + "\n")
	}

	b.WriteString("\n" + Dim("Previously computed dates were not modified.") + "\n")

	return RenderBox("Recompute", b.String())
}
