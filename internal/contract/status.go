package contract

import "time"

// StatusRequest asks for a read-only snapshot of one schedule.
type StatusRequest struct {
	ScheduleID string

	// Now overrides the current time; nil means time.Now().UTC().
	Now *time.Time
}

// NewStatusRequest returns a status request with defaults.
func NewStatusRequest(scheduleID string) StatusRequest {
	return StatusRequest{ScheduleID: scheduleID, Now: nil}
}

// EntityCounts summarizes how much structure a schedule carries.
type EntityCounts struct {
	WbsNodes      int
	Activities    int
	Milestones    int
	Relationships int
	Resources     int
	Assignments   int
}

// ActivityDateView is one activity with its computed dates, as shown in
// status and recompute output. Date pointers are nil until the first
// successful recompute.
type ActivityDateView struct {
	ID              string
	Code            string
	Name            string
	Type            string
	Duration        float64
	DurationUnit    string
	WbsCode         string
	PlannedStart    *time.Time
	PlannedEnd      *time.Time
	LateStart       *time.Time
	LateEnd         *time.Time
	TotalFloat      *float64
	Critical        bool
	PercentComplete float64
	ActualStart     *time.Time
	ActualEnd       *time.Time
}

// ScheduleStatusView is the header block of a status report.
type ScheduleStatusView struct {
	ID             string
	Code           string
	Name           string
	Status         string
	StartDate      time.Time
	EndDate        *time.Time
	ComputedAt     *time.Time
	NeedsRecompute bool
	Counts         EntityCounts
	ProjectFinish  *time.Time

	// Feasible is nil when the schedule has no hard end date or has
	// never been computed.
	Feasible *bool
}

// StatusResponse is the full snapshot the status command renders.
type StatusResponse struct {
	GeneratedAt time.Time
	Schedule    ScheduleStatusView

	// Activities holds every activity ordered by planned start, then
	// code; uncomputed activities sort last.
	Activities []ActivityDateView

	// CriticalPath holds the critical activities ordered by planned
	// start. Empty until the first successful recompute.
	CriticalPath []ActivityDateView

	// NearCritical holds the lowest-float non-critical activities,
	// closest to critical first.
	NearCritical []ActivityDateView

	Warnings []string
}
