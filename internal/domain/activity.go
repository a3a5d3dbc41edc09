package domain

import (
	"fmt"
	"math"
	"time"
)

type Activity struct {
	ID         string
	ScheduleID string
	WbsID      *string
	Code       string
	Name       string
	Type       ActivityType

	// Duration
	Duration float64
	Unit     DurationUnit

	// Computed by the scheduler; nil until the first successful recompute.
	PlannedStart *time.Time
	PlannedEnd   *time.Time
	LateStart    *time.Time
	LateEnd      *time.Time
	TotalFloat   *float64 // in the activity's own duration unit
	IsCritical   bool

	// Progress
	ActualStart     *time.Time
	ActualEnd       *time.Time
	PercentComplete float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectiveDuration is what the scheduler walks: milestones collapse to zero
// regardless of the stored value.
func (a *Activity) EffectiveDuration() float64 {
	if a.Type.IsMilestone() {
		return 0
	}
	return a.Duration
}

// Validate checks the fields the scheduler depends on. It returns typed
// input errors so a recompute can classify the failure.
func (a *Activity) Validate() error {
	if a.Duration < 0 || math.IsNaN(a.Duration) || math.IsInf(a.Duration, 0) {
		return InvalidDurationError{Activity: a.DisplayID(), Value: a.Duration, Reason: "must be a finite value >= 0"}
	}
	if a.Type.IsMilestone() && a.Duration != 0 {
		return InvalidDurationError{Activity: a.DisplayID(), Value: a.Duration, Reason: "milestones must have zero duration"}
	}
	if a.PercentComplete < 0 || a.PercentComplete > 100 {
		return fmt.Errorf("percent complete %g on activity %s must be between 0 and 100", a.PercentComplete, a.DisplayID())
	}
	return nil
}

// DisplayID returns the best short identifier for display.
func (a *Activity) DisplayID() string {
	if a.Code != "" {
		return a.Code
	}
	if len(a.ID) >= 8 {
		return a.ID[:8]
	}
	return a.ID
}

// RecordStart stamps the actual start. Idempotent: an existing actual start
// is kept.
func (a *Activity) RecordStart(at time.Time, now time.Time) {
	if a.ActualStart == nil {
		a.ActualStart = &at
	}
	if a.PercentComplete == 0 {
		a.PercentComplete = 1
	}
	a.UpdatedAt = now
}

// RecordFinish stamps the actual finish and forces completion. An activity
// cannot finish before it started.
func (a *Activity) RecordFinish(at time.Time, now time.Time) error {
	if a.ActualStart != nil && at.Before(*a.ActualStart) {
		return fmt.Errorf("actual finish %s is before actual start %s",
			at.Format("2006-01-02"), a.ActualStart.Format("2006-01-02"))
	}
	if a.ActualStart == nil {
		a.ActualStart = &at
	}
	a.ActualEnd = &at
	a.PercentComplete = 100
	a.UpdatedAt = now
	return nil
}

// SetProgress updates percent complete, clamping is the caller's job; out of
// range values are rejected.
func (a *Activity) SetProgress(pct float64, now time.Time) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("percent complete %g must be between 0 and 100", pct)
	}
	a.PercentComplete = pct
	a.UpdatedAt = now
	return nil
}

// ClearComputed drops all scheduler output fields. Used when structural
// edits invalidate previously computed dates without recomputing.
func (a *Activity) ClearComputed() {
	a.PlannedStart = nil
	a.PlannedEnd = nil
	a.LateStart = nil
	a.LateEnd = nil
	a.TotalFloat = nil
	a.IsCritical = false
}
