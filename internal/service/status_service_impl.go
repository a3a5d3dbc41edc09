package service

import (
	"context"
	"sort"

	"github.com/akarolczak/critpath/internal/contract"
	"github.com/akarolczak/critpath/internal/repository"
)

// nearCriticalLimit caps the near-critical section of a status report.
const nearCriticalLimit = 5

type statusService struct {
	schedules     repository.ScheduleRepo
	nodes         repository.WbsNodeRepo
	activities    repository.ActivityRepo
	relationships repository.RelationshipRepo
	resources     repository.ResourceRepo
	assignments   repository.AssignmentRepo
}

func NewStatusService(
	schedules repository.ScheduleRepo,
	nodes repository.WbsNodeRepo,
	activities repository.ActivityRepo,
	relationships repository.RelationshipRepo,
	resources repository.ResourceRepo,
	assignments repository.AssignmentRepo,
) StatusService {
	return &statusService{
		schedules:     schedules,
		nodes:         nodes,
		activities:    activities,
		relationships: relationships,
		resources:     resources,
		assignments:   assignments,
	}
}

// GetStatus assembles a read-only snapshot: header, per-activity dates, the
// critical path and the activities closest to it. It never recomputes.
func (s *statusService) GetStatus(ctx context.Context, req contract.StatusRequest) (*contract.StatusResponse, error) {
	now := resolveNow(req.Now)

	sched, err := s.schedules.GetByID(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	nodes, err := s.nodes.ListBySchedule(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	acts, err := s.activities.ListBySchedule(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	rels, err := s.relationships.ListBySchedule(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	resources, err := s.resources.ListBySchedule(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListBySchedule(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}

	wbsCodes := make(map[string]string, len(nodes))
	for _, n := range nodes {
		wbsCodes[n.ID] = n.Code
	}

	milestones := 0
	views := make([]contract.ActivityDateView, 0, len(acts))
	for _, a := range acts {
		if a.Type.IsMilestone() {
			milestones++
		}
		wbsCode := ""
		if a.WbsID != nil {
			wbsCode = wbsCodes[*a.WbsID]
		}
		views = append(views, activityDateView(a, wbsCode))
	}
	sortViewsByPlannedStart(views)

	resp := &contract.StatusResponse{
		GeneratedAt: now,
		Schedule: contract.ScheduleStatusView{
			ID:             sched.ID,
			Code:           sched.Code,
			Name:           sched.Name,
			Status:         string(sched.Status),
			StartDate:      sched.StartDate,
			EndDate:        sched.EndDate,
			ComputedAt:     sched.ComputedAt,
			NeedsRecompute: sched.NeedsRecompute,
			Counts: contract.EntityCounts{
				WbsNodes:      len(nodes),
				Activities:    len(acts),
				Milestones:    milestones,
				Relationships: len(rels),
				Resources:     len(resources),
				Assignments:   len(assignments),
			},
		},
		Activities: views,
	}

	for _, v := range views {
		if v.PlannedEnd != nil && (resp.Schedule.ProjectFinish == nil || v.PlannedEnd.After(*resp.Schedule.ProjectFinish)) {
			resp.Schedule.ProjectFinish = v.PlannedEnd
		}
		if v.Critical {
			resp.CriticalPath = append(resp.CriticalPath, v)
		}
	}
	if sched.EndDate != nil && sched.ComputedAt != nil && resp.Schedule.ProjectFinish != nil {
		feasible := !resp.Schedule.ProjectFinish.After(*sched.EndDate)
		resp.Schedule.Feasible = &feasible
	}
	resp.NearCritical = nearCritical(views)

	if sched.ComputedAt == nil {
		resp.Warnings = append(resp.Warnings, "schedule has never been computed; run recompute to derive dates")
	} else if sched.NeedsRecompute {
		resp.Warnings = append(resp.Warnings, "schedule has pending changes; dates shown are from the last recompute")
	}

	return resp, nil
}

// nearCritical picks the non-critical activities with the smallest total
// float, closest first.
func nearCritical(views []contract.ActivityDateView) []contract.ActivityDateView {
	var out []contract.ActivityDateView
	for _, v := range views {
		if !v.Critical && v.TotalFloat != nil {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if *out[i].TotalFloat != *out[j].TotalFloat {
			return *out[i].TotalFloat < *out[j].TotalFloat
		}
		return out[i].Code < out[j].Code
	})
	if len(out) > nearCriticalLimit {
		out = out[:nearCriticalLimit]
	}
	return out
}
