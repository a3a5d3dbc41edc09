package cpm

import (
	"fmt"
	"math"
	"time"

	"github.com/akarolczak/critpath/internal/calendar"
	"github.com/akarolczak/critpath/internal/domain"
	"github.com/akarolczak/critpath/internal/network"
)

// DefaultEpsilon bounds the float magnitude still treated as zero when
// flagging critical activities.
const DefaultEpsilon = 1e-9

// Input carries everything a schedule computation needs. The network must
// already resolve (no dangling references); Compute re-runs the cycle gate
// itself because a stale network is cheaper to reject than to debug.
type Input struct {
	Network  *network.Network
	Calendar *calendar.Calendar
	Start    time.Time  // anchor: no activity may start earlier
	End      *time.Time // optional target finish, used for feasibility reporting only
	Epsilon  float64    // <= 0 selects DefaultEpsilon
}

// ActivityDates is the computed schedule for one activity. EarlyFinish and
// LateFinish are exclusive boundaries: the first instant after the last
// working day the activity occupies.
type ActivityDates struct {
	ID          string
	EarlyStart  time.Time
	EarlyFinish time.Time
	LateStart   time.Time
	LateFinish  time.Time
	TotalFloat  float64 // in the activity's own duration unit
	Critical    bool
}

// Result is the full output of one computation. CriticalIDs is the critical
// subgraph as a set, ordered by activity code for reproducibility; no
// single-path tie-break is applied.
type Result struct {
	Dates         map[string]ActivityDates
	ProjectFinish time.Time
	CriticalIDs   []string
	Feasible      bool
	Warnings      []string
}

// Compute runs the forward and backward passes over an acyclic activity
// network and derives total float and the critical subgraph. It never
// mutates the input entities; persisting the result is the caller's job.
// Identical inputs produce bit-identical results.
func Compute(in Input) (*Result, error) {
	net := in.Network
	if net == nil || net.Len() == 0 {
		return nil, fmt.Errorf("network has no activities to schedule")
	}
	cal := in.Calendar
	if cal == nil {
		cal = calendar.Default()
	}
	eps := in.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}

	acts := net.Activities()
	for _, a := range acts {
		if err := a.Validate(); err != nil {
			return nil, err
		}
	}
	if cycle := net.Cycle(); len(cycle) > 0 {
		return nil, domain.CyclicDependencyError{Cycle: cycle}
	}
	topo, err := net.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	// Forward pass. Early start is the latest of the anchor and every
	// incoming constraint; finish-side constraints convert to start space by
	// walking the activity's own duration backward.
	es := make(map[string]time.Time, len(topo))
	ef := make(map[string]time.Time, len(topo))
	for _, a := range topo {
		start := in.Start
		for _, r := range net.Predecessors(a.ID) {
			var cand time.Time
			switch r.Type {
			case domain.StartToStart:
				cand = lagShift(cal, es[r.PredecessorID], r)
			case domain.FinishToFinish:
				cand = durationBack(cal, a, lagShift(cal, ef[r.PredecessorID], r))
			case domain.StartToFinish:
				cand = durationBack(cal, a, lagShift(cal, es[r.PredecessorID], r))
			default: // finish-to-start
				cand = lagShift(cal, ef[r.PredecessorID], r)
			}
			if cand.After(start) {
				start = cand
			}
		}
		if a.Unit != domain.UnitHours {
			start = cal.NextWorkingDay(start)
		}
		es[a.ID] = start
		ef[a.ID] = durationForward(cal, a, start)
	}

	projectFinish := in.Start
	for _, a := range topo {
		if ef[a.ID].After(projectFinish) {
			projectFinish = ef[a.ID]
		}
	}

	// Backward pass in reverse dependency order. Late finish is the earliest
	// of the project finish and every outgoing constraint; start-side
	// constraints convert to finish space by walking the duration forward.
	lf := make(map[string]time.Time, len(topo))
	ls := make(map[string]time.Time, len(topo))
	for i := len(topo) - 1; i >= 0; i-- {
		a := topo[i]
		finish := projectFinish
		for _, r := range net.Successors(a.ID) {
			var cand time.Time
			switch r.Type {
			case domain.StartToStart:
				cand = durationForward(cal, a, lagUnshift(cal, ls[r.SuccessorID], r))
			case domain.FinishToFinish:
				cand = lagUnshift(cal, lf[r.SuccessorID], r)
			case domain.StartToFinish:
				cand = durationForward(cal, a, lagUnshift(cal, lf[r.SuccessorID], r))
			default: // finish-to-start
				cand = lagUnshift(cal, ls[r.SuccessorID], r)
			}
			if cand.Before(finish) {
				finish = cand
			}
		}
		lf[a.ID] = finish
		ls[a.ID] = durationBack(cal, a, finish)
	}

	res := &Result{
		Dates:         make(map[string]ActivityDates, len(topo)),
		ProjectFinish: projectFinish,
		Feasible:      true,
	}
	for _, a := range acts {
		floatHours := cal.WorkingHoursBetween(es[a.ID], ls[a.ID])
		tf := calendar.HoursToUnit(floatHours, a.Unit)
		critical := math.Abs(tf) <= eps
		res.Dates[a.ID] = ActivityDates{
			ID:          a.ID,
			EarlyStart:  es[a.ID],
			EarlyFinish: ef[a.ID],
			LateStart:   ls[a.ID],
			LateFinish:  lf[a.ID],
			TotalFloat:  tf,
			Critical:    critical,
		}
		if critical {
			res.CriticalIDs = append(res.CriticalIDs, a.ID)
		}
	}

	if in.End != nil && projectFinish.After(*in.End) {
		res.Feasible = false
		late := cal.WorkingDaysBetween(*in.End, projectFinish)
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("projected finish %s misses the target %s by %d working days",
				projectFinish.Format("2006-01-02"), in.End.Format("2006-01-02"), late))
	}
	if net.Len() > 1 {
		for _, a := range acts {
			if len(net.Predecessors(a.ID)) == 0 && len(net.Successors(a.ID)) == 0 {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("activity %s has no relationships", a.DisplayID()))
			}
		}
	}

	return res, nil
}

// lagShift moves a predecessor boundary forward by the relationship lag.
// Negative lags walk backward, letting the successor lead its predecessor.
func lagShift(cal *calendar.Calendar, t time.Time, r *domain.Relationship) time.Time {
	if r.Lag == 0 {
		return t
	}
	return cal.AddDuration(t, r.Lag, r.LagUnit, calendar.Forward)
}

// lagUnshift is the backward-pass mirror of lagShift.
func lagUnshift(cal *calendar.Calendar, t time.Time, r *domain.Relationship) time.Time {
	if r.Lag == 0 {
		return t
	}
	return cal.AddDuration(t, r.Lag, r.LagUnit, calendar.Backward)
}

// durationForward walks an activity's duration from its start boundary to
// its finish boundary. Milestones collapse to the start instant.
func durationForward(cal *calendar.Calendar, a *domain.Activity, start time.Time) time.Time {
	return cal.AddDuration(start, a.EffectiveDuration(), a.Unit, calendar.Forward)
}

// durationBack converts a finish boundary to the matching start boundary.
func durationBack(cal *calendar.Calendar, a *domain.Activity, end time.Time) time.Time {
	return cal.AddDuration(end, a.EffectiveDuration(), a.Unit, calendar.Backward)
}
