package formatter

import (
	"github.com/akarolczak/critpath/internal/domain"
)

// FormatRelationshipList renders precedence links as a table. codes maps
// activity IDs to display codes.
func FormatRelationshipList(rels []*domain.Relationship, codes map[string]string) string {
	if len(rels) == 0 {
		return RenderBox("Links", Dim("No links yet"))
	}

	headers := []string{"ID", "PREDECESSOR", "TYPE", "SUCCESSOR", "LAG"}
	rows := make([][]string, 0, len(rels))

	for _, r := range rels {
		lag := Dim("–")
		if r.Lag != 0 {
			lag = DurationLabel(r.Lag, r.LagUnit)
		}
		rows = append(rows, []string{
			TruncID(r.ID),
			Bold(codes[r.PredecessorID]),
			StylePurple.Render(string(r.Type)),
			Bold(codes[r.SuccessorID]),
			lag,
		})
	}

	return RenderBox("Links", RenderTable(headers, rows))
}
