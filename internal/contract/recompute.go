// Package contract defines the request/response types and error codes for
// the use cases that span more than simple CRUD: recompute, status, usage
// reports and imports. CLI commands build requests, services return
// responses, and neither side needs the other's internals.
package contract

import (
	"time"
)

// RecomputeRequest asks for a full forward/backward pass over one schedule.
type RecomputeRequest struct {
	// ScheduleID is the resolved schedule UUID, never a code or prefix.
	ScheduleID string

	// Force recomputes even when the stored fingerprint says nothing
	// changed since the last pass.
	Force bool

	// Now overrides the current time; nil means time.Now().UTC().
	Now *time.Time
}

// NewRecomputeRequest returns a request with default settings.
func NewRecomputeRequest(scheduleID string) RecomputeRequest {
	return RecomputeRequest{
		ScheduleID: scheduleID,
		Force:      false,
		Now:        nil,
	}
}

// RecomputeResponse reports what a recompute pass did.
type RecomputeResponse struct {
	GeneratedAt  time.Time
	ScheduleID   string
	ScheduleCode string

	// Unchanged is true when the fingerprint matched and the pass was
	// skipped; every other field below is carried over from the stored
	// dates in that case.
	Unchanged bool

	ProjectStart  *time.Time
	ProjectFinish *time.Time

	// Feasible is nil when the schedule has no hard end date.
	Feasible *bool

	ActivityCount     int
	ChangedActivities int
	CriticalCount     int

	// CriticalCodes holds the codes of critical activities ordered by
	// early start.
	CriticalCodes []string
	CriticalIDs   []string

	Warnings []string
	Elapsed  time.Duration
}

// RecomputeErrorCode classifies why a recompute pass did not run or did
// not persist. On any of these the stored dates are left exactly as the
// previous successful pass wrote them.
type RecomputeErrorCode string

const (
	RecomputeEmptySchedule     RecomputeErrorCode = "EMPTY_SCHEDULE"
	RecomputeCycle             RecomputeErrorCode = "CYCLE"
	RecomputeWbsCycle          RecomputeErrorCode = "WBS_CYCLE"
	RecomputeDanglingReference RecomputeErrorCode = "DANGLING_REFERENCE"
	RecomputeInvalidDuration   RecomputeErrorCode = "INVALID_DURATION"
	RecomputeInvalidLag        RecomputeErrorCode = "INVALID_LAG"
	RecomputeNotRecomputable   RecomputeErrorCode = "NOT_RECOMPUTABLE"
	RecomputeInternalError     RecomputeErrorCode = "INTERNAL_ERROR"
)

// RecomputeError is the typed failure of the recompute use case.
type RecomputeError struct {
	Code    RecomputeErrorCode
	Message string

	// Cycle holds the offending activity codes when Code is CYCLE or
	// WBS_CYCLE, first element repeated at the end.
	Cycle []string
}

func (e *RecomputeError) Error() string {
	return string(e.Code) + ": " + e.Message
}
