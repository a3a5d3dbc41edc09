package formatter

import (
	"fmt"
	"strings"

	"github.com/akarolczak/critpath/internal/domain"
)

const listProgressBarWidth = 8

// FormatActivityList renders activities as a table inside a bordered box.
func FormatActivityList(acts []*domain.Activity) string {
	headers := []string{"", "CODE", "NAME", "TYPE", "DUR", "START", "FINISH", "FLOAT", "PROGRESS"}
	rows := make([][]string, 0, len(acts))

	for _, a := range acts {
		rows = append(rows, []string{
			CriticalMark(a.IsCritical),
			Bold(a.Code),
			a.Name,
			typeBadge(a.Type),
			DurationLabel(a.Duration, a.Unit),
			DateISO(a.PlannedStart),
			DateISO(a.PlannedEnd),
			activityFloatCell(a),
			RenderProgress(a.PercentComplete, listProgressBarWidth),
		})
	}

	return RenderBox("Activities", RenderTable(headers, rows))
}

// FormatActivityDetail renders one activity's card including its precedence
// links. codes maps activity IDs to display codes for the link lines.
func FormatActivityDetail(a *domain.Activity, rels []*domain.Relationship, codes map[string]string) string {
	var b strings.Builder

	b.WriteString(StyleBold.Render(a.Name) + "  " + Dim(a.Code) + "\n")
	b.WriteString(typeBadge(a.Type) + "\n\n")

	b.WriteString(fmt.Sprintf("%s  %s\n", Dim("ID      "), TruncID(a.ID)))
	b.WriteString(fmt.Sprintf("%s  %s\n", Dim("DURATION"), DurationLabel(a.Duration, a.Unit)))
	if a.PlannedStart != nil {
		b.WriteString(fmt.Sprintf("%s  %s → %s\n", Dim("PLANNED "), DateISO(a.PlannedStart), DateISO(a.PlannedEnd)))
	}
	if a.LateStart != nil {
		b.WriteString(fmt.Sprintf("%s  %s → %s\n", Dim("LATE    "), DateISO(a.LateStart), DateISO(a.LateEnd)))
	}
	if a.TotalFloat != nil {
		b.WriteString(fmt.Sprintf("%s  %s\n", Dim("FLOAT   "), FloatLabel(*a.TotalFloat, a.Unit, a.IsCritical)))
	}
	if a.IsCritical {
		b.WriteString(fmt.Sprintf("%s  %s\n", Dim("PATH    "), StyleRed.Render("critical")))
	}
	if a.ActualStart != nil {
		b.WriteString(fmt.Sprintf("%s  %s\n", Dim("STARTED "), HumanDate(*a.ActualStart)))
	}
	if a.ActualEnd != nil {
		b.WriteString(fmt.Sprintf("%s  %s\n", Dim("FINISHED"), HumanDate(*a.ActualEnd)))
	}
	b.WriteString(fmt.Sprintf("%s  %s\n", Dim("PROGRESS"), RenderProgress(a.PercentComplete, 12)))

	if len(rels) > 0 {
		b.WriteString("\n" + Header("Links") + "\n")
		for _, r := range rels {
			b.WriteString(relLine(a.ID, r, codes) + "\n")
		}
	}

	return RenderBox("Activity", b.String())
}

// relLine renders one precedence link from the perspective of the given
// activity: outgoing links point right, incoming point left.
func relLine(activityID string, r *domain.Relationship, codes map[string]string) string {
	lag := ""
	if r.Lag != 0 {
		lag = "  " + Dim(DurationLabel(r.Lag, r.LagUnit)+" lag")
	}

	kind := StylePurple.Render(string(r.Type))
	if r.PredecessorID == activityID {
		other := codes[r.SuccessorID]
		return fmt.Sprintf("  %s %s  %s%s", kind, Dim("→"), Bold(other), lag)
	}
	other := codes[r.PredecessorID]
	return fmt.Sprintf("  %s %s  %s%s", kind, Dim("←"), Bold(other), lag)
}

func typeBadge(t domain.ActivityType) string {
	switch {
	case t.IsMilestone():
		return StylePurple.Render("◆ milestone")
	case t == domain.ActivitySummary:
		return Dim("summary")
	default:
		return Dim("task")
	}
}

func activityFloatCell(a *domain.Activity) string {
	if a.TotalFloat == nil {
		return Dim("–")
	}
	return FloatLabel(*a.TotalFloat, a.Unit, a.IsCritical)
}
