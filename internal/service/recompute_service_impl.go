package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/akarolczak/critpath/internal/calendar"
	"github.com/akarolczak/critpath/internal/contract"
	"github.com/akarolczak/critpath/internal/cpm"
	"github.com/akarolczak/critpath/internal/db"
	"github.com/akarolczak/critpath/internal/domain"
	"github.com/akarolczak/critpath/internal/network"
	"github.com/akarolczak/critpath/internal/repository"
	"github.com/akarolczak/critpath/internal/wbs"
)

type recomputeService struct {
	schedules     repository.ScheduleRepo
	nodes         repository.WbsNodeRepo
	activities    repository.ActivityRepo
	relationships repository.RelationshipRepo
	uow           db.UnitOfWork
	observer      UseCaseObserver
}

func NewRecomputeService(
	schedules repository.ScheduleRepo,
	nodes repository.WbsNodeRepo,
	activities repository.ActivityRepo,
	relationships repository.RelationshipRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) RecomputeService {
	return &recomputeService{
		schedules:     schedules,
		nodes:         nodes,
		activities:    activities,
		relationships: relationships,
		uow:           uow,
		observer:      useCaseObserverOrNoop(observers),
	}
}

// Recompute runs the forward/backward pass over one schedule and persists
// the result atomically. Any validation or persistence failure leaves the
// previously stored dates exactly as they were. When the input fingerprint
// matches the last successful pass the stored dates are returned as-is.
func (s *recomputeService) Recompute(ctx context.Context, req contract.RecomputeRequest) (resp *contract.RecomputeResponse, err error) {
	startedAt := time.Now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "recompute",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"schedule_id": req.ScheduleID},
		})
	}()

	now := resolveNow(req.Now)

	sched, err := s.schedules.GetByID(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if sched.Status == domain.ScheduleCompleted || sched.Status == domain.ScheduleArchived {
		return nil, &contract.RecomputeError{
			Code:    contract.RecomputeNotRecomputable,
			Message: fmt.Sprintf("schedule %s is %s; recompute needs a draft or active schedule", sched.DisplayID(), sched.Status),
		}
	}

	acts, err := s.activities.ListBySchedule(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if len(acts) == 0 {
		return nil, &contract.RecomputeError{
			Code:    contract.RecomputeEmptySchedule,
			Message: fmt.Sprintf("schedule %s has no activities to schedule", sched.DisplayID()),
		}
	}
	rels, err := s.relationships.ListBySchedule(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}

	fingerprint, err := fingerprintInputs(sched, acts, rels)
	if err != nil {
		return nil, classifyRecomputeError(err, nil)
	}
	if !req.Force && sched.ComputedAt != nil && sched.InputFingerprint == fingerprint {
		// The dirty flag can be set even though nothing the scheduler reads
		// changed (a rename, a WBS edit). Clear it without recomputing.
		if sched.NeedsRecompute {
			if err := s.schedules.MarkComputed(ctx, sched.ID, *sched.ComputedAt, fingerprint); err != nil {
				return nil, err
			}
		}
		return s.unchangedResponse(sched, acts, now, startedAt), nil
	}

	// The scheduler itself never reads the WBS, but rollups do; a recompute
	// refuses to bless a schedule whose hierarchy is malformed.
	nodes, err := s.nodes.ListBySchedule(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	if _, err := wbs.Build(nodes); err != nil {
		return nil, classifyRecomputeError(err, nil)
	}

	for _, a := range acts {
		if err := a.Validate(); err != nil {
			return nil, classifyRecomputeError(err, nil)
		}
	}

	net, err := network.Build(acts, rels)
	if err != nil {
		return nil, classifyRecomputeError(err, nil)
	}
	if cycle := net.Cycle(); len(cycle) > 0 {
		return nil, classifyRecomputeError(domain.CyclicDependencyError{Cycle: cycle}, net)
	}

	cal, err := calendar.FromSchedule(sched)
	if err != nil {
		return nil, classifyRecomputeError(err, nil)
	}

	result, err := cpm.Compute(cpm.Input{
		Network:  net,
		Calendar: cal,
		Start:    sched.StartDate,
		End:      sched.EndDate,
	})
	if err != nil {
		return nil, classifyRecomputeError(err, net)
	}

	changed, err := s.persist(ctx, sched, acts, result, fingerprint, now)
	if err != nil {
		return nil, &contract.RecomputeError{
			Code:    contract.RecomputeInternalError,
			Message: fmt.Sprintf("persisting computed dates: %v", err),
		}
	}

	return s.freshResponse(sched, acts, net, result, changed, now, startedAt), nil
}

// persist writes every activity's computed dates and the schedule's
// fingerprint in a single transaction, so a failure rolls all of it back.
func (s *recomputeService) persist(ctx context.Context, sched *domain.Schedule, acts []*domain.Activity, result *cpm.Result, fingerprint string, now time.Time) (int, error) {
	changed := 0
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txActivities := repository.NewSQLiteActivityRepo(tx)
		txSchedules := repository.NewSQLiteScheduleRepo(tx)
		changed = 0
		for _, a := range acts {
			d, ok := result.Dates[a.ID]
			if !ok {
				return fmt.Errorf("no computed dates for activity %s", a.DisplayID())
			}
			if !computedDatesEqual(a, d) {
				changed++
			}
			es, ef := d.EarlyStart, d.EarlyFinish
			ls, lf := d.LateStart, d.LateFinish
			tf := d.TotalFloat
			a.PlannedStart = &es
			a.PlannedEnd = &ef
			a.LateStart = &ls
			a.LateEnd = &lf
			a.TotalFloat = &tf
			a.IsCritical = d.Critical
			a.UpdatedAt = now
			if err := txActivities.UpdateComputed(ctx, a); err != nil {
				return err
			}
		}
		return txSchedules.MarkComputed(ctx, sched.ID, now, fingerprint)
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

func (s *recomputeService) freshResponse(sched *domain.Schedule, acts []*domain.Activity, net *network.Network, result *cpm.Result, changed int, now time.Time, startedAt time.Time) *contract.RecomputeResponse {
	resp := &contract.RecomputeResponse{
		GeneratedAt:       now,
		ScheduleID:        sched.ID,
		ScheduleCode:      sched.Code,
		ProjectFinish:     timePtr(result.ProjectFinish),
		ActivityCount:     len(acts),
		ChangedActivities: changed,
		CriticalCount:     len(result.CriticalIDs),
		Warnings:          result.Warnings,
		Elapsed:           time.Since(startedAt),
	}
	for _, d := range result.Dates {
		if resp.ProjectStart == nil || d.EarlyStart.Before(*resp.ProjectStart) {
			resp.ProjectStart = timePtr(d.EarlyStart)
		}
	}
	if sched.EndDate != nil {
		feasible := result.Feasible
		resp.Feasible = &feasible
	}

	// CriticalIDs come code-ordered; a stable sort by early start keeps the
	// code order as tie-break.
	ids := append([]string(nil), result.CriticalIDs...)
	sort.SliceStable(ids, func(i, j int) bool {
		return result.Dates[ids[i]].EarlyStart.Before(result.Dates[ids[j]].EarlyStart)
	})
	resp.CriticalIDs = ids
	for _, id := range ids {
		if a, ok := net.Activity(id); ok {
			resp.CriticalCodes = append(resp.CriticalCodes, a.DisplayID())
		} else {
			resp.CriticalCodes = append(resp.CriticalCodes, id)
		}
	}
	return resp
}

// unchangedResponse reads the response entirely off the stored dates.
func (s *recomputeService) unchangedResponse(sched *domain.Schedule, acts []*domain.Activity, now time.Time, startedAt time.Time) *contract.RecomputeResponse {
	resp := &contract.RecomputeResponse{
		GeneratedAt:   now,
		ScheduleID:    sched.ID,
		ScheduleCode:  sched.Code,
		Unchanged:     true,
		ActivityCount: len(acts),
	}

	var critical []*domain.Activity
	for _, a := range acts {
		if a.PlannedStart != nil && (resp.ProjectStart == nil || a.PlannedStart.Before(*resp.ProjectStart)) {
			resp.ProjectStart = timePtr(*a.PlannedStart)
		}
		if a.PlannedEnd != nil && (resp.ProjectFinish == nil || a.PlannedEnd.After(*resp.ProjectFinish)) {
			resp.ProjectFinish = timePtr(*a.PlannedEnd)
		}
		if a.IsCritical {
			critical = append(critical, a)
		}
	}
	if sched.EndDate != nil && resp.ProjectFinish != nil {
		feasible := !resp.ProjectFinish.After(*sched.EndDate)
		resp.Feasible = &feasible
	}

	sort.SliceStable(critical, func(i, j int) bool {
		si, sj := critical[i].PlannedStart, critical[j].PlannedStart
		switch {
		case si == nil && sj == nil:
			return critical[i].Code < critical[j].Code
		case si == nil:
			return false
		case sj == nil:
			return true
		case si.Equal(*sj):
			return critical[i].Code < critical[j].Code
		default:
			return si.Before(*sj)
		}
	})
	resp.CriticalCount = len(critical)
	for _, a := range critical {
		resp.CriticalIDs = append(resp.CriticalIDs, a.ID)
		resp.CriticalCodes = append(resp.CriticalCodes, a.DisplayID())
	}
	resp.Elapsed = time.Since(startedAt)
	return resp
}

// classifyRecomputeError maps the engine's typed errors onto recompute error
// codes. Cycle ids are translated to activity codes when the network that
// produced them is at hand.
func classifyRecomputeError(err error, net *network.Network) error {
	var (
		cycErr  domain.CyclicDependencyError
		wbsErr  domain.WbsCycleError
		dangErr domain.DanglingReferenceError
		durErr  domain.InvalidDurationError
		lagErr  domain.InvalidLagError
		unscErr domain.UnscheduledPredecessorError
	)
	switch {
	case errors.As(err, &cycErr):
		cycle := displayCycle(cycErr.Cycle, net)
		return &contract.RecomputeError{
			Code:    contract.RecomputeCycle,
			Message: "dependency cycle: " + strings.Join(cycle, " -> "),
			Cycle:   cycle,
		}
	case errors.As(err, &wbsErr):
		return &contract.RecomputeError{
			Code:    contract.RecomputeWbsCycle,
			Message: err.Error(),
			Cycle:   wbsErr.Cycle,
		}
	case errors.As(err, &dangErr):
		return &contract.RecomputeError{Code: contract.RecomputeDanglingReference, Message: err.Error()}
	case errors.As(err, &durErr):
		return &contract.RecomputeError{Code: contract.RecomputeInvalidDuration, Message: err.Error()}
	case errors.As(err, &lagErr):
		return &contract.RecomputeError{Code: contract.RecomputeInvalidLag, Message: err.Error()}
	case errors.As(err, &unscErr):
		return &contract.RecomputeError{Code: contract.RecomputeCycle, Message: err.Error()}
	default:
		return &contract.RecomputeError{Code: contract.RecomputeInternalError, Message: err.Error()}
	}
}

// displayCycle swaps activity ids for their codes where they resolve.
func displayCycle(cycle []string, net *network.Network) []string {
	if net == nil {
		return cycle
	}
	out := make([]string, len(cycle))
	for i, id := range cycle {
		if a, ok := net.Activity(id); ok {
			out[i] = a.DisplayID()
		} else {
			out[i] = id
		}
	}
	return out
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func computedDatesEqual(a *domain.Activity, d cpm.ActivityDates) bool {
	if a.PlannedStart == nil || a.PlannedEnd == nil || a.LateStart == nil || a.LateEnd == nil || a.TotalFloat == nil {
		return false
	}
	return a.PlannedStart.Equal(d.EarlyStart) &&
		a.PlannedEnd.Equal(d.EarlyFinish) &&
		a.LateStart.Equal(d.LateStart) &&
		a.LateEnd.Equal(d.LateFinish) &&
		*a.TotalFloat == d.TotalFloat &&
		a.IsCritical == d.Critical
}
