package formatter

import (
	"fmt"
	"strings"

	"github.com/akarolczak/critpath/internal/contract"
)

const profileBarWidth = 24

// FormatReport renders resource usage totals, the per-activity and per-WBS
// rollups, and the optional time-phased profile.
func FormatReport(resp *contract.ReportResponse) string {
	var b strings.Builder

	b.WriteString(StyleBold.Render(resp.ScheduleCode) + "\n")
	b.WriteString(fmt.Sprintf("%s  %s planned, %s actual\n",
		Dim("TOTAL"), Bold(UnitsLabel(resp.PlannedUnits)), UnitsLabel(resp.ActualUnits)))

	if len(resp.Resources) > 0 {
		b.WriteString("\n" + Header("Resources") + "\n")
		headers := []string{"CODE", "NAME", "PLANNED", "ACTUAL", "UNIT"}
		rows := make([][]string, 0, len(resp.Resources))
		for _, r := range resp.Resources {
			rows = append(rows, []string{
				Bold(r.Code),
				r.Name,
				UnitsLabel(r.PlannedUnits),
				UnitsLabel(r.ActualUnits),
				Dim(r.UnitLabel),
			})
		}
		b.WriteString(RenderNumericTable(headers, rows, 2, 3))
	}

	if len(resp.Activities) > 0 {
		b.WriteString("\n" + Header("Activities") + "\n")
		headers := []string{"CODE", "NAME", "PLANNED", "ACTUAL"}
		var rows [][]string
		for _, a := range resp.Activities {
			rows = append(rows, []string{
				Bold(a.Code),
				a.Name,
				UnitsLabel(a.PlannedUnits),
				UnitsLabel(a.ActualUnits),
			})
			for _, r := range a.ByResource {
				rows = append(rows, []string{
					"",
					Dim("· " + r.Code),
					Dim(UnitsLabel(r.PlannedUnits)),
					Dim(UnitsLabel(r.ActualUnits)),
				})
			}
		}
		b.WriteString(RenderNumericTable(headers, rows, 2, 3))
	}

	if len(resp.Wbs) > 0 {
		b.WriteString("\n" + Header("WBS rollup") + "\n")
		headers := []string{"CODE", "NAME", "PLANNED", "ACTUAL"}
		rows := make([][]string, 0, len(resp.Wbs))
		for _, n := range resp.Wbs {
			indent := strings.Repeat("  ", n.Level-1)
			rows = append(rows, []string{
				Dim(indent + n.Code),
				indent + n.Name,
				UnitsLabel(n.PlannedUnits),
				UnitsLabel(n.ActualUnits),
			})
		}
		b.WriteString(RenderNumericTable(headers, rows, 2, 3))
	}

	if resp.Profile != nil && len(resp.Profile.Periods) > 0 {
		b.WriteString("\n" + Header("Usage by "+resp.Profile.Bucket) + "\n")
		b.WriteString(renderProfile(resp.Profile))
	}

	if len(resp.Warnings) > 0 {
		b.WriteString("\n")
		for _, w := range resp.Warnings {
			b.WriteString(StyleYellow.Render("  WARNING: "+w) + "\n")
		}
	}

	return RenderBox("Resource usage", b.String())
}

// renderProfile draws one bar per bucket, scaled to the busiest one.
func renderProfile(p *contract.UsageProfile) string {
	maxUnits := 0.0
	for _, period := range p.Periods {
		if period.PlannedUnits > maxUnits {
			maxUnits = period.PlannedUnits
		}
	}

	headers := []string{"PERIOD", "PLANNED", "ACTUAL", ""}
	rows := make([][]string, 0, len(p.Periods))
	for _, period := range p.Periods {
		bar := ""
		if maxUnits > 0 && period.PlannedUnits > 0 {
			n := int(period.PlannedUnits / maxUnits * profileBarWidth)
			if n < 1 {
				n = 1
			}
			bar = StyleBlue.Render(strings.Repeat(filledBlock, n))
		}
		rows = append(rows, []string{
			period.Label,
			UnitsLabel(period.PlannedUnits),
			UnitsLabel(period.ActualUnits),
			bar,
		})
	}

	return RenderNumericTable(headers, rows, 1, 2)
}
