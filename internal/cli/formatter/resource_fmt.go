package formatter

import (
	"github.com/akarolczak/critpath/internal/domain"
)

// FormatResourceList renders resources as a table inside a bordered box.
func FormatResourceList(resources []*domain.Resource) string {
	if len(resources) == 0 {
		return RenderBox("Resources", Dim("No resources yet"))
	}

	headers := []string{"ID", "CODE", "NAME", "UNIT"}
	rows := make([][]string, 0, len(resources))

	for _, r := range resources {
		rows = append(rows, []string{
			TruncID(r.ID),
			Bold(r.Code),
			r.Name,
			Dim(r.UnitLabel),
		})
	}

	return RenderBox("Resources", RenderTable(headers, rows))
}

// FormatAssignmentList renders one activity's resource bookings. codes maps
// resource IDs to display codes.
func FormatAssignmentList(activityCode string, assignments []*domain.ResourceAssignment, codes map[string]string) string {
	if len(assignments) == 0 {
		return RenderBox("Assignments", Dim("No resources assigned to "+activityCode))
	}

	headers := []string{"RESOURCE", "PLANNED", "ACTUAL"}
	rows := make([][]string, 0, len(assignments))

	for _, a := range assignments {
		rows = append(rows, []string{
			Bold(codes[a.ResourceID]),
			UnitsLabel(a.PlannedUnits),
			UnitsLabel(a.ActualUnits),
		})
	}

	return RenderBox("Assignments · "+activityCode, RenderNumericTable(headers, rows, 1, 2))
}
