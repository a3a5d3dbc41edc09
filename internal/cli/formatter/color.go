package formatter

import (
	"fmt"
	"strings"

	"github.com/akarolczak/critpath/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
	StyleRedB   = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
)

// nearCriticalFloat is the float, in the activity's own duration unit, under
// which a non-critical activity is colored as worth watching.
const nearCriticalFloat = 5.0

// FloatStyle returns the style for a total float value: red on the critical
// path, yellow when there is little room, green otherwise.
func FloatStyle(totalFloat float64, critical bool) lipgloss.Style {
	switch {
	case critical:
		return StyleRed
	case totalFloat < nearCriticalFloat:
		return StyleYellow
	default:
		return StyleGreen
	}
}

// CriticalMark returns the marker shown next to critical-path activities.
func CriticalMark(critical bool) string {
	if critical {
		return StyleRedB.Render("●")
	}
	return StyleDim.Render("·")
}

// StatusPill returns a colored status indicator for a schedule status.
func StatusPill(status domain.ScheduleStatus) string {
	switch status {
	case domain.ScheduleDraft:
		return StyleBlue.Render("○ Draft")
	case domain.ScheduleActive:
		return StyleGreen.Render("● Active")
	case domain.ScheduleCompleted:
		return StyleDim.Render("✔ Completed")
	case domain.ScheduleArchived:
		return StyleDim.Render("✖ Archived")
	default:
		return StyleDim.Render(string(status))
	}
}

// FeasibilityPill renders the schedule-level verdict against the target end
// date. A nil verdict means there is no target to judge against.
func FeasibilityPill(feasible *bool) string {
	switch {
	case feasible == nil:
		return StyleDim.Render("– no target")
	case *feasible:
		return StyleGreen.Render("● ON TARGET")
	default:
		return StyleRed.Render("● LATE")
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
