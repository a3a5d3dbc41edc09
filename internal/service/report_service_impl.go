package service

import (
	"context"

	"github.com/akarolczak/critpath/internal/calendar"
	"github.com/akarolczak/critpath/internal/contract"
	"github.com/akarolczak/critpath/internal/domain"
	"github.com/akarolczak/critpath/internal/repository"
	"github.com/akarolczak/critpath/internal/rollup"
	"github.com/akarolczak/critpath/internal/wbs"
)

type reportService struct {
	schedules   repository.ScheduleRepo
	nodes       repository.WbsNodeRepo
	activities  repository.ActivityRepo
	resources   repository.ResourceRepo
	assignments repository.AssignmentRepo
}

func NewReportService(
	schedules repository.ScheduleRepo,
	nodes repository.WbsNodeRepo,
	activities repository.ActivityRepo,
	resources repository.ResourceRepo,
	assignments repository.AssignmentRepo,
) ReportService {
	return &reportService{
		schedules:   schedules,
		nodes:       nodes,
		activities:  activities,
		resources:   resources,
		assignments: assignments,
	}
}

// GetReport aggregates resource usage over one schedule: totals, per-entity
// breakdowns and, on request, a time-phased profile over the computed dates.
func (s *reportService) GetReport(ctx context.Context, req contract.ReportRequest) (*contract.ReportResponse, error) {
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
	resources, err := s.resources.ListBySchedule(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListBySchedule(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}

	tree, err := wbs.Build(nodes)
	if err != nil {
		return nil, err
	}
	cal, err := calendar.FromSchedule(sched)
	if err != nil {
		return nil, err
	}
	in := rollup.Input{
		Activities:  acts,
		Resources:   resources,
		Assignments: assignments,
		Tree:        tree,
		Calendar:    cal,
	}

	sum, err := rollup.Aggregate(in)
	if err != nil {
		return nil, err
	}

	actByID := make(map[string]*domain.Activity, len(acts))
	for _, a := range acts {
		actByID[a.ID] = a
	}
	resByID := make(map[string]*domain.Resource, len(resources))
	for _, r := range resources {
		resByID[r.ID] = r
	}

	resp := &contract.ReportResponse{
		GeneratedAt:  now,
		ScheduleID:   sched.ID,
		ScheduleCode: sched.Code,
		PlannedUnits: sum.PlannedUnits,
		ActualUnits:  sum.ActualUnits,
	}
	for _, rt := range sum.Resources {
		resp.Resources = append(resp.Resources, resourceUsageRow(rt, resByID))
	}
	for _, au := range sum.Activities {
		row := contract.ActivityUsageRow{
			ActivityID:   au.ActivityID,
			PlannedUnits: au.PlannedUnits,
			ActualUnits:  au.ActualUnits,
		}
		if a := actByID[au.ActivityID]; a != nil {
			row.Code = a.Code
			row.Name = a.Name
		}
		for _, rt := range au.ByResource {
			row.ByResource = append(row.ByResource, resourceUsageRow(rt, resByID))
		}
		resp.Activities = append(resp.Activities, row)
	}

	// Summary.Wbs comes children before parents; a report table reads top
	// down, so re-emit it in pre-order with levels attached.
	usageByNode := make(map[string]rollup.WbsUsage, len(sum.Wbs))
	for _, wu := range sum.Wbs {
		usageByNode[wu.NodeID] = wu
	}
	for _, n := range tree.PreOrder() {
		wu := usageByNode[n.ID]
		resp.Wbs = append(resp.Wbs, contract.WbsUsageRow{
			NodeID:       n.ID,
			Code:         n.Code,
			Name:         n.Name,
			Level:        n.Level,
			PlannedUnits: wu.PlannedUnits,
			ActualUnits:  wu.ActualUnits,
		})
	}

	if req.TimePhased {
		bucket, err := rollup.ParseBucket(req.Bucket)
		if err != nil {
			return nil, err
		}
		prof, err := rollup.TimePhased(in, bucket)
		if err != nil {
			return nil, err
		}
		profile := &contract.UsageProfile{Bucket: string(prof.Bucket)}
		for _, p := range prof.Periods {
			period := contract.UsagePeriodRow{
				Start:        p.Start,
				Label:        p.Label,
				PlannedUnits: p.PlannedUnits,
				ActualUnits:  p.ActualUnits,
			}
			for _, rt := range p.ByResource {
				period.ByResource = append(period.ByResource, resourceUsageRow(rt, resByID))
			}
			profile.Periods = append(profile.Periods, period)
		}
		resp.Profile = profile

		if sched.NeedsRecompute {
			resp.Warnings = append(resp.Warnings, "schedule has pending changes; the profile reflects the last computed dates")
		}
	}

	return resp, nil
}

// resourceUsageRow joins a rollup total with the resource's display fields.
func resourceUsageRow(rt rollup.ResourceTotal, resByID map[string]*domain.Resource) contract.ResourceUsageRow {
	row := contract.ResourceUsageRow{
		ResourceID:   rt.ResourceID,
		PlannedUnits: rt.PlannedUnits,
		ActualUnits:  rt.ActualUnits,
	}
	if r := resByID[rt.ResourceID]; r != nil {
		row.Code = r.Code
		row.Name = r.Name
		row.UnitLabel = r.UnitLabel
	}
	return row
}
