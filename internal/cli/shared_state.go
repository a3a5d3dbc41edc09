package cli

import "github.com/akarolczak/critpath/internal/domain"

// SharedState holds context shared across all explore views via pointer.
type SharedState struct {
	App *App

	// Active schedule context
	ActiveScheduleID   string
	ActiveScheduleCode string
	ActiveScheduleName string

	// Terminal dimensions
	Width  int
	Height int
}

// SetActiveSchedule sets the active schedule context from a loaded schedule.
func (s *SharedState) SetActiveSchedule(sched *domain.Schedule) {
	s.ActiveScheduleID = sched.ID
	s.ActiveScheduleCode = sched.Code
	s.ActiveScheduleName = sched.Name
}

// ClearActiveSchedule resets the active schedule context.
func (s *SharedState) ClearActiveSchedule() {
	s.ActiveScheduleID = ""
	s.ActiveScheduleCode = ""
	s.ActiveScheduleName = ""
}

// ContentHeight returns the available height for view content, accounting
// for the header (2 lines: title + separator) and the status bar
// (2 lines: separator + hints).
func (s *SharedState) ContentHeight() int {
	h := s.Height - 4
	if h < 1 {
		return 1
	}
	return h
}
