package domain

import (
	"fmt"
	"regexp"
	"time"
)

var codePattern = regexp.MustCompile(`^[A-Z]{2,8}[0-9]{0,4}$`)

// DefaultWorkingDays is the Monday-first weekday mask for a standard
// five-day week.
const DefaultWorkingDays = "1111100"

type Schedule struct {
	ID          string
	Code        string
	Name        string
	Description string
	StartDate   time.Time  // scheduling anchor: no activity starts earlier
	EndDate     *time.Time // optional target finish, reported against, never enforced
	Status      ScheduleStatus

	// Calendar
	WorkingDays string      // 7-char Monday-first mask, '1' = working
	Holidays    []time.Time // date-only, treated as non-working

	// Recompute bookkeeping
	ComputedAt       *time.Time
	InputFingerprint string
	NeedsRecompute   bool

	ArchivedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidateCode checks that Code is non-empty and matches the required
// format: 2-8 uppercase letters optionally followed by up to 4 digits
// (e.g. BRIDGE, PLANT02).
func (s *Schedule) ValidateCode() error {
	if s.Code == "" {
		return fmt.Errorf("schedule code is required (use --code flag)")
	}
	if !codePattern.MatchString(s.Code) {
		return fmt.Errorf("schedule code %q must be 2-8 uppercase letters optionally followed by up to 4 digits (e.g. PLANT02)", s.Code)
	}
	return nil
}

// ValidateWorkingDays checks the weekday mask shape and rejects a mask with
// no working day at all, which would make every duration walk diverge.
func (s *Schedule) ValidateWorkingDays() error {
	if len(s.WorkingDays) != 7 {
		return fmt.Errorf("working days mask %q must be 7 characters, Monday first", s.WorkingDays)
	}
	working := 0
	for _, c := range s.WorkingDays {
		switch c {
		case '1':
			working++
		case '0':
		default:
			return fmt.Errorf("working days mask %q may only contain '0' and '1'", s.WorkingDays)
		}
	}
	if working == 0 {
		return fmt.Errorf("working days mask %q has no working day", s.WorkingDays)
	}
	return nil
}

// DisplayID returns the best short identifier for display.
// It prefers Code; if empty it truncates ID to 8 characters.
func (s *Schedule) DisplayID() string {
	if s.Code != "" {
		return s.Code
	}
	if len(s.ID) >= 8 {
		return s.ID[:8]
	}
	return s.ID
}

// IsEditable reports whether structural edits (activities, relationships,
// WBS, calendar) are accepted in the current status.
func (s *Schedule) IsEditable() bool {
	return s.Status == ScheduleDraft || s.Status == ScheduleActive
}

// Activate moves a draft schedule to active.
func (s *Schedule) Activate(now time.Time) error {
	if s.Status != ScheduleDraft {
		return InvalidTransitionError{From: s.Status, To: ScheduleActive}
	}
	s.Status = ScheduleActive
	s.UpdatedAt = now
	return nil
}

// Complete moves an active schedule to completed.
func (s *Schedule) Complete(now time.Time) error {
	if s.Status != ScheduleActive {
		return InvalidTransitionError{From: s.Status, To: ScheduleCompleted}
	}
	s.Status = ScheduleCompleted
	s.UpdatedAt = now
	return nil
}

// Archive is allowed from any non-archived status.
func (s *Schedule) Archive(now time.Time) error {
	if s.Status == ScheduleArchived {
		return InvalidTransitionError{From: s.Status, To: ScheduleArchived}
	}
	s.Status = ScheduleArchived
	s.ArchivedAt = &now
	s.UpdatedAt = now
	return nil
}

// Unarchive returns an archived schedule to draft. The pre-archive status is
// not tracked, so draft is the conservative landing state.
func (s *Schedule) Unarchive(now time.Time) error {
	if s.Status != ScheduleArchived {
		return InvalidTransitionError{From: s.Status, To: ScheduleDraft}
	}
	s.Status = ScheduleDraft
	s.ArchivedAt = nil
	s.UpdatedAt = now
	return nil
}
