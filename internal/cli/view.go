package cli

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewID identifies each view in the explore TUI.
type ViewID int

const (
	ViewScheduleList ViewID = iota
	ViewActivityBoard
)

// View is the interface all explore views implement. It extends tea.Model
// with navigation and help metadata.
type View interface {
	tea.Model
	ID() ViewID
	ShortHelp() []key.Binding // key hints shown in the bottom bar
	Title() string            // breadcrumb segment for this view
}
