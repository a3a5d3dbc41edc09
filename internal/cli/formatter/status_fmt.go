package formatter

import (
	"fmt"
	"strings"

	"github.com/akarolczak/critpath/internal/contract"
	"github.com/akarolczak/critpath/internal/domain"
)

const (
	statusProgressBarWidth = 8
	statusGanttWidth       = 44
)

// FormatStatus renders the full schedule dashboard: header card, activity
// table, timeline, critical path and warnings.
func FormatStatus(resp *contract.StatusResponse) string {
	var b strings.Builder

	sched := resp.Schedule

	// Header block.
	b.WriteString(StyleBold.Render(sched.Name) + "  " + Dim(sched.Code) + "\n")
	b.WriteString(StatusPill(domain.ScheduleStatus(sched.Status)) + "  " + FeasibilityPill(sched.Feasible) + "\n\n")

	b.WriteString(fmt.Sprintf("%s  %s", Dim("START"), sched.StartDate.Format("2006-01-02")))
	if sched.EndDate != nil {
		b.WriteString(fmt.Sprintf("   %s  %s", Dim("TARGET"), sched.EndDate.Format("2006-01-02")))
	}
	if sched.ProjectFinish != nil {
		b.WriteString(fmt.Sprintf("   %s  %s", Dim("FINISH"), Bold(sched.ProjectFinish.Format("2006-01-02"))))
	}
	b.WriteString("\n")

	c := sched.Counts
	b.WriteString(Dim(fmt.Sprintf("%d wbs · %d activities · %d milestones · %d links · %d resources",
		c.WbsNodes, c.Activities, c.Milestones, c.Relationships, c.Resources)) + "\n")

	if sched.ComputedAt != nil {
		b.WriteString(Dim("Computed "+HumanTimestamp(*sched.ComputedAt)) + "\n")
	}

	// Activity table.
	if len(resp.Activities) > 0 {
		b.WriteString("\n" + Header("Activities") + "\n")
		headers := []string{"", "CODE", "NAME", "WBS", "DUR", "START", "FINISH", "FLOAT", "PROGRESS"}
		rows := make([][]string, 0, len(resp.Activities))
		for _, a := range resp.Activities {
			rows = append(rows, []string{
				CriticalMark(a.Critical),
				Bold(a.Code),
				a.Name,
				Dim(orDash(a.WbsCode)),
				DurationLabel(a.Duration, domain.DurationUnit(a.DurationUnit)),
				DateISO(a.PlannedStart),
				DateISO(a.PlannedEnd),
				floatCell(a),
				RenderProgress(a.PercentComplete, statusProgressBarWidth),
			})
		}
		b.WriteString(RenderTable(headers, rows))
	}

	// Timeline.
	if sched.ProjectFinish != nil && len(resp.Activities) > 0 {
		ganttRows := make([]GanttRow, 0, len(resp.Activities))
		for _, a := range resp.Activities {
			ganttRows = append(ganttRows, GanttRow{
				Code:      a.Code,
				Start:     a.PlannedStart,
				End:       a.PlannedEnd,
				Critical:  a.Critical,
				Milestone: domain.ActivityType(a.Type).IsMilestone(),
			})
		}
		b.WriteString("\n" + Header("Timeline") + "\n")
		b.WriteString(RenderGantt(ganttRows, sched.StartDate, *sched.ProjectFinish, statusGanttWidth))
	}

	// Critical path.
	if len(resp.CriticalPath) > 0 {
		codes := make([]string, 0, len(resp.CriticalPath))
		for _, a := range resp.CriticalPath {
			codes = append(codes, a.Code)
		}
		b.WriteString("\n" + Header("Critical path") + "\n")
		b.WriteString(StyleRed.Render(strings.Join(codes, " → ")) + "\n")
	}

	// Near-critical list, closest to critical first.
	if len(resp.NearCritical) > 0 {
		b.WriteString("\n" + Header("Near critical") + "\n")
		for _, a := range resp.NearCritical {
			tf := 0.0
			if a.TotalFloat != nil {
				tf = *a.TotalFloat
			}
			label := FloatLabel(tf, domain.DurationUnit(a.DurationUnit), false)
			b.WriteString(fmt.Sprintf("  %s  %s  %s\n", label, a.Code, Dim(a.Name)))
		}
	}

	// Warnings.
	if len(resp.Warnings) > 0 {
		b.WriteString("\n")
		for _, w := range resp.Warnings {
			b.WriteString(StyleYellow.Render("  WARNING: "+w) + "\n")
		}
	}

	return RenderBox("Status", b.String())
}

func orDash(s string) string {
	if s == "" {
		return "–"
	}
	return s
}

func floatCell(a contract.ActivityDateView) string {
	if a.TotalFloat == nil {
		return Dim("–")
	}
	return FloatLabel(*a.TotalFloat, domain.DurationUnit(a.DurationUnit), a.Critical)
}
