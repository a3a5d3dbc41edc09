package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/akarolczak/critpath/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// DateISO formats a date as YYYY-MM-DD, the same shape the importer accepts.
// A nil date renders as a dimmed dash.
func DateISO(t *time.Time) string {
	if t == nil {
		return StyleDim.Render("–")
	}
	return t.Format("2006-01-02")
}

// HumanDate returns an absolute date in a compact readable form.
func HumanDate(t time.Time) string {
	return t.Format("Mon, Jan 2 2006")
}

// HumanTimestamp returns a relative timestamp for recent events and falls
// back to an absolute date for older ones.
func HumanTimestamp(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < 0:
		return t.Format("Jan 2, 2006")
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return t.Format("Jan 2, 2006")
	}
}

// DurationLabel formats a duration with its unit suffix, e.g. "3d" or "2.5h".
func DurationLabel(value float64, unit domain.DurationUnit) string {
	var suffix string
	switch unit {
	case domain.UnitHours:
		suffix = "h"
	case domain.UnitWeeks:
		suffix = "w"
	case domain.UnitMonths:
		suffix = "mo"
	default:
		suffix = "d"
	}
	return trimFloat(value) + suffix
}

// FloatLabel formats a total float with its unit suffix, colored by how much
// room the activity has.
func FloatLabel(totalFloat float64, unit domain.DurationUnit, critical bool) string {
	return FloatStyle(totalFloat, critical).Render(DurationLabel(totalFloat, unit))
}

// UnitsLabel formats a resource quantity without trailing zeros.
func UnitsLabel(v float64) string {
	return trimFloat(v)
}

// trimFloat renders a float to at most two decimals with no trailing zeros,
// "3" not "3.00" and "26.67" not "26.666666666666668".
func trimFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}
