package service

import (
	"context"
	"testing"

	"github.com/akarolczak/critpath/internal/contract"
	"github.com/akarolczak/critpath/internal/domain"
	"github.com/akarolczak/critpath/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusService_Snapshot(t *testing.T) {
	schedules, nodes, activities, relationships, resources, assignments, uow := setupRepos(t)
	ctx := context.Background()

	recompute := NewRecomputeService(schedules, nodes, activities, relationships, uow)
	svc := NewStatusService(schedules, nodes, activities, relationships, resources, assignments)

	sched, acts := seedChain(t, ctx, schedules, activities, relationships)

	node := testutil.NewTestWbsNode(sched.ID, "Civil Works", testutil.WithWbsCode("1.1"))
	require.NoError(t, nodes.Create(ctx, node))
	acts[0].WbsID = &node.ID
	require.NoError(t, activities.Update(ctx, acts[0]))

	handover := testutil.NewTestMilestone(sched.ID, "M400")
	require.NoError(t, activities.Create(ctx, handover))
	require.NoError(t, relationships.Create(ctx, testutil.NewTestRelationship(sched.ID, acts[2].ID, handover.ID)))

	crew := testutil.NewTestResource(sched.ID, "CRW")
	require.NoError(t, resources.Create(ctx, crew))
	require.NoError(t, assignments.Upsert(ctx, testutil.NewTestAssignment(acts[0].ID, crew.ID, 120)))

	_, err := recompute.Recompute(ctx, contract.NewRecomputeRequest(sched.ID))
	require.NoError(t, err)

	resp, err := svc.GetStatus(ctx, contract.NewStatusRequest(sched.ID))
	require.NoError(t, err)

	assert.Equal(t, sched.Code, resp.Schedule.Code)
	counts := resp.Schedule.Counts
	assert.Equal(t, 1, counts.WbsNodes)
	assert.Equal(t, 4, counts.Activities)
	assert.Equal(t, 1, counts.Milestones)
	assert.Equal(t, 3, counts.Relationships)
	assert.Equal(t, 1, counts.Resources)
	assert.Equal(t, 1, counts.Assignments)
	assert.False(t, resp.Schedule.NeedsRecompute)
	assert.Nil(t, resp.Schedule.Feasible, "no end date, no verdict")
	require.NotNil(t, resp.Schedule.ProjectFinish)
	assert.True(t, resp.Schedule.ProjectFinish.Equal(march(13)), "the handover milestone adds no duration")
	assert.Empty(t, resp.Warnings)

	require.Len(t, resp.Activities, 4)
	codes := make([]string, 0, 4)
	for _, v := range resp.Activities {
		codes = append(codes, v.Code)
	}
	assert.Equal(t, []string{"A100", "B200", "C300", "M400"}, codes, "rows come in planned start order")
	assert.Equal(t, "1.1", resp.Activities[0].WbsCode, "wbs code joined onto the row")

	require.Len(t, resp.CriticalPath, 4, "whole chain plus the milestone is critical")
	assert.Equal(t, "A100", resp.CriticalPath[0].Code)
	assert.Equal(t, "M400", resp.CriticalPath[3].Code)
	assert.Empty(t, resp.NearCritical, "nothing floats on a single chain")
}

func TestStatusService_NeverComputedWarns(t *testing.T) {
	schedules, nodes, activities, relationships, resources, assignments, _ := setupRepos(t)
	ctx := context.Background()

	svc := NewStatusService(schedules, nodes, activities, relationships, resources, assignments)

	sched := testutil.NewTestSchedule("Blank")
	require.NoError(t, schedules.Create(ctx, sched))
	require.NoError(t, activities.Create(ctx, testutil.NewTestActivity(sched.ID, "A100")))

	resp, err := svc.GetStatus(ctx, contract.NewStatusRequest(sched.ID))
	require.NoError(t, err)

	assert.Nil(t, resp.Schedule.ProjectFinish)
	assert.Empty(t, resp.CriticalPath)
	require.Len(t, resp.Activities, 1)
	assert.Nil(t, resp.Activities[0].PlannedStart)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "never been computed")
}

func TestStatusService_PendingChangesWarn(t *testing.T) {
	schedules, nodes, activities, relationships, resources, assignments, uow := setupRepos(t)
	ctx := context.Background()

	recompute := NewRecomputeService(schedules, nodes, activities, relationships, uow)
	actSvc := NewActivityService(schedules, nodes, activities)
	svc := NewStatusService(schedules, nodes, activities, relationships, resources, assignments)

	sched, acts := seedChain(t, ctx, schedules, activities, relationships)
	_, err := recompute.Recompute(ctx, contract.NewRecomputeRequest(sched.ID))
	require.NoError(t, err)

	acts[0].Duration = 9
	require.NoError(t, actSvc.Update(ctx, acts[0]))

	resp, err := svc.GetStatus(ctx, contract.NewStatusRequest(sched.ID))
	require.NoError(t, err)

	assert.True(t, resp.Schedule.NeedsRecompute)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "pending changes")
	assert.True(t, resp.Activities[0].PlannedEnd.Equal(march(5)), "dates shown are still the last computed ones")
}

func TestStatusService_UncomputedActivitiesSortLast(t *testing.T) {
	schedules, nodes, activities, relationships, resources, assignments, uow := setupRepos(t)
	ctx := context.Background()

	recompute := NewRecomputeService(schedules, nodes, activities, relationships, uow)
	svc := NewStatusService(schedules, nodes, activities, relationships, resources, assignments)

	sched, _ := seedChain(t, ctx, schedules, activities, relationships)
	_, err := recompute.Recompute(ctx, contract.NewRecomputeRequest(sched.ID))
	require.NoError(t, err)

	// Added after the pass, so it has no dates yet.
	late := testutil.NewTestActivity(sched.ID, "AA50")
	require.NoError(t, activities.Create(ctx, late))

	resp, err := svc.GetStatus(ctx, contract.NewStatusRequest(sched.ID))
	require.NoError(t, err)

	require.Len(t, resp.Activities, 4)
	last := resp.Activities[3]
	assert.Equal(t, "AA50", last.Code, "undated rows sink below dated ones regardless of code")
	assert.Nil(t, last.PlannedStart)
}

func TestStatusService_NearCriticalClosestFirstAndCapped(t *testing.T) {
	schedules, nodes, activities, relationships, resources, assignments, uow := setupRepos(t)
	ctx := context.Background()

	recompute := NewRecomputeService(schedules, nodes, activities, relationships, uow)
	svc := NewStatusService(schedules, nodes, activities, relationships, resources, assignments)

	sched := testutil.NewTestSchedule("Fanned")
	require.NoError(t, schedules.Create(ctx, sched))

	// A 10-day spine and seven shorter parallel branches, all feeding one
	// sink. Branch k floats 10-k days.
	spine := testutil.NewTestActivity(sched.ID, "S100", testutil.WithDuration(10, domain.UnitDays))
	sink := testutil.NewTestActivity(sched.ID, "F900", testutil.WithDuration(1, domain.UnitDays))
	require.NoError(t, activities.Create(ctx, spine))
	require.NoError(t, activities.Create(ctx, sink))
	require.NoError(t, relationships.Create(ctx, testutil.NewTestRelationship(sched.ID, spine.ID, sink.ID)))
	for k := 1; k <= 7; k++ {
		branch := testutil.NewTestActivity(sched.ID, "B"+string(rune('0'+k))+"00",
			testutil.WithDuration(float64(k), domain.UnitDays))
		require.NoError(t, activities.Create(ctx, branch))
		require.NoError(t, relationships.Create(ctx, testutil.NewTestRelationship(sched.ID, branch.ID, sink.ID)))
	}

	_, err := recompute.Recompute(ctx, contract.NewRecomputeRequest(sched.ID))
	require.NoError(t, err)

	resp, err := svc.GetStatus(ctx, contract.NewStatusRequest(sched.ID))
	require.NoError(t, err)

	require.Len(t, resp.NearCritical, 5, "near-critical list is capped")
	got := make([]string, 0, 5)
	for _, v := range resp.NearCritical {
		got = append(got, v.Code)
	}
	assert.Equal(t, []string{"B700", "B600", "B500", "B400", "B300"}, got, "smallest float first")
	assert.Equal(t, 3.0, *resp.NearCritical[0].TotalFloat)
}

func TestStatusService_FeasibleVerdictWithEndDate(t *testing.T) {
	schedules, nodes, activities, relationships, resources, assignments, uow := setupRepos(t)
	ctx := context.Background()

	recompute := NewRecomputeService(schedules, nodes, activities, relationships, uow)
	svc := NewStatusService(schedules, nodes, activities, relationships, resources, assignments)

	sched := testutil.NewTestSchedule("Roomy", testutil.WithEndDate(march(31)))
	require.NoError(t, schedules.Create(ctx, sched))
	require.NoError(t, activities.Create(ctx, testutil.NewTestActivity(sched.ID, "A100", testutil.WithDuration(3, domain.UnitDays))))

	_, err := recompute.Recompute(ctx, contract.NewRecomputeRequest(sched.ID))
	require.NoError(t, err)

	resp, err := svc.GetStatus(ctx, contract.NewStatusRequest(sched.ID))
	require.NoError(t, err)

	require.NotNil(t, resp.Schedule.Feasible)
	assert.True(t, *resp.Schedule.Feasible)
}
