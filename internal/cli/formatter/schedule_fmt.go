package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/akarolczak/critpath/internal/domain"
)

// FormatScheduleList renders schedules as a table inside a bordered box.
func FormatScheduleList(schedules []*domain.Schedule) string {
	headers := []string{"ID", "CODE", "NAME", "STATUS", "START", "TARGET", "COMPUTED"}
	rows := make([][]string, 0, len(schedules))

	for _, s := range schedules {
		computed := StyleDim.Render("never")
		if s.ComputedAt != nil {
			computed = HumanTimestamp(*s.ComputedAt)
			if s.NeedsRecompute {
				computed += " " + StyleYellow.Render("(stale)")
			}
		}

		rows = append(rows, []string{
			TruncID(s.ID),
			Bold(s.Code),
			s.Name,
			StatusPill(s.Status),
			s.StartDate.Format("2006-01-02"),
			DateISO(s.EndDate),
			computed,
		})
	}

	return RenderBox("Schedules", RenderTable(headers, rows))
}

// FormatScheduleDetail renders one schedule's metadata card.
func FormatScheduleDetail(s *domain.Schedule) string {
	var b strings.Builder

	b.WriteString(StyleBold.Render(s.Name) + "\n")
	b.WriteString(Dim(s.Code) + "\n\n")

	b.WriteString(fmt.Sprintf("%s  %s\n", Dim("STATUS  "), StatusPill(s.Status)))
	b.WriteString(fmt.Sprintf("%s  %s\n", Dim("ID      "), TruncID(s.ID)))
	b.WriteString(fmt.Sprintf("%s  %s\n", Dim("START   "), StyleFg.Render(HumanDate(s.StartDate))))
	if s.EndDate != nil {
		b.WriteString(fmt.Sprintf("%s  %s\n", Dim("TARGET  "), StyleFg.Render(HumanDate(*s.EndDate))))
	}
	b.WriteString(fmt.Sprintf("%s  %s\n", Dim("WORKDAYS"), workingDaysLabel(s.WorkingDays)))
	if len(s.Holidays) > 0 {
		b.WriteString(fmt.Sprintf("%s  %s\n", Dim("HOLIDAYS"), holidaysLabel(s.Holidays)))
	}
	if s.ComputedAt != nil {
		b.WriteString(fmt.Sprintf("%s  %s\n", Dim("COMPUTED"), HumanTimestamp(*s.ComputedAt)))
	}

	if s.NeedsRecompute {
		b.WriteString("\n" + StyleYellow.Render("Inputs changed since the last recompute.") + "\n")
	}
	if s.Description != "" {
		b.WriteString("\n" + StyleFg.Render(s.Description) + "\n")
	}

	return RenderBox("Schedule", b.String())
}

// workingDaysLabel expands the Monday-first mask into day names.
func workingDaysLabel(mask string) string {
	names := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	var on []string
	for i := 0; i < len(mask) && i < 7; i++ {
		if mask[i] == '1' {
			on = append(on, names[i])
		}
	}
	if len(on) == 0 {
		return StyleRed.Render("none")
	}
	return strings.Join(on, " ")
}

// holidaysLabel lists the first few holidays and summarizes the rest.
func holidaysLabel(holidays []time.Time) string {
	const maxShown = 4
	var parts []string
	for i, h := range holidays {
		if i == maxShown {
			parts = append(parts, Dim(fmt.Sprintf("+%d more", len(holidays)-maxShown)))
			break
		}
		parts = append(parts, h.Format("2006-01-02"))
	}
	return strings.Join(parts, ", ")
}
