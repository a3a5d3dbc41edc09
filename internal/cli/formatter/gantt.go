package formatter

import (
	"fmt"
	"strings"
	"time"
)

const (
	ganttBlock   = "█"
	ganttDiamond = "◆"
)

// GanttRow is one activity bar on the schedule timeline.
type GanttRow struct {
	Code      string
	Start     *time.Time
	End       *time.Time
	Critical  bool
	Milestone bool
}

// RenderGantt draws an ASCII timeline with one row per activity and one
// column per calendar day between start and end. Spans wider than maxWidth
// columns compress whole days into each column. Critical bars render red,
// the rest blue, and milestones render as a single diamond.
func RenderGantt(rows []GanttRow, start, end time.Time, maxWidth int) string {
	if len(rows) == 0 {
		return ""
	}
	if maxWidth < 10 {
		maxWidth = 10
	}

	days := daysBetween(start, end)
	if days < 1 {
		days = 1
	}
	daysPerCol := (days + maxWidth - 1) / maxWidth
	cols := (days + daysPerCol - 1) / daysPerCol

	gutter := 0
	for _, r := range rows {
		if len(r.Code) > gutter {
			gutter = len(r.Code)
		}
	}

	var b strings.Builder

	// Axis line: first and last date over the chart area.
	left := start.Format("2006-01-02")
	right := end.Format("2006-01-02")
	axis := left
	if gap := cols - len(left) - len(right); gap >= 1 {
		axis = left + strings.Repeat(" ", gap) + right
	}
	b.WriteString(strings.Repeat(" ", gutter+2) + Dim(axis) + "\n")

	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%-*s  ", gutter, r.Code))
		if r.Start == nil || r.End == nil {
			b.WriteString(Dim("(not scheduled)") + "\n")
			continue
		}

		startCol := daysBetween(start, *r.Start) / daysPerCol
		if startCol < 0 {
			startCol = 0
		}
		if startCol > cols-1 {
			startCol = cols - 1
		}
		endCol := (daysBetween(start, *r.End) + daysPerCol - 1) / daysPerCol
		if endCol > cols {
			endCol = cols
		}
		if endCol <= startCol {
			endCol = startCol + 1
		}

		style := StyleBlue
		if r.Critical {
			style = StyleRed
		}
		glyph := ganttBlock
		if r.Milestone {
			glyph = ganttDiamond
			endCol = startCol + 1
		}

		b.WriteString(strings.Repeat(" ", startCol))
		b.WriteString(style.Render(strings.Repeat(glyph, endCol-startCol)))
		b.WriteString("\n")
	}

	return b.String()
}

// daysBetween counts whole calendar days from a to b. Both ends are expected
// to be midnight UTC, which is how computed dates are stored.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
