package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/akarolczak/critpath/internal/contract"
	"github.com/akarolczak/critpath/internal/domain"
	"github.com/akarolczak/critpath/internal/importer"
	"github.com/akarolczak/critpath/internal/repository"
	"github.com/akarolczak/critpath/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func validImportSchema() *importer.ImportSchema {
	return &importer.ImportSchema{
		Schedule: importer.ScheduleImport{
			Code:      "bridge01",
			Name:      "Bridge Replacement",
			StartDate: "2026-03-02",
		},
		Wbs: []importer.WbsImport{
			{Ref: "civil", Code: "1", Name: "Civil Works"},
			{Ref: "piling", ParentRef: strPtr("civil"), Code: "1.1", Name: "Piling", Chain: true},
		},
		Activities: []importer.ActivityImport{
			{Ref: "drive", WbsRef: strPtr("piling"), Code: "A100", Name: "Drive piles", Duration: floatPtr(3)},
			{Ref: "cap", WbsRef: strPtr("piling"), Code: "A200", Name: "Cap piles", Duration: floatPtr(2)},
			{Ref: "handover", WbsRef: strPtr("civil"), Code: "M900", Name: "Handover", Type: "milestone"},
		},
		Relationships: []importer.RelationshipImport{
			{PredecessorRef: "cap", SuccessorRef: "handover"},
		},
		Resources: []importer.ResourceImport{
			{Ref: "crew", Code: "CRW", Name: "Piling Crew"},
		},
		Assignments: []importer.AssignmentImport{
			{ActivityRef: "drive", ResourceRef: "crew", PlannedUnits: 120},
		},
	}
}

func TestImportSchedule_SuccessPath(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	schedules := repository.NewSQLiteScheduleRepo(database)
	nodes := repository.NewSQLiteWbsNodeRepo(database)
	activities := repository.NewSQLiteActivityRepo(database)
	relationships := repository.NewSQLiteRelationshipRepo(database)
	resources := repository.NewSQLiteResourceRepo(database)
	assignments := repository.NewSQLiteAssignmentRepo(database)
	ctx := context.Background()

	svc := NewImportService(schedules, uow)

	result, err := svc.ImportScheduleFromSchema(ctx, validImportSchema())
	require.NoError(t, err)

	assert.Equal(t, "BRIDGE01", result.Schedule.Code, "import uppercases the code")
	assert.Equal(t, domain.ScheduleDraft, result.Schedule.Status)
	assert.True(t, result.Schedule.NeedsRecompute)
	assert.Equal(t, 2, result.WbsCount)
	assert.Equal(t, 3, result.ActivityCount)
	assert.Equal(t, 2, result.RelationshipCount, "one explicit link plus one inferred from the chained group")
	assert.Equal(t, 1, result.ResourceCount)
	assert.Equal(t, 1, result.AssignmentCount)

	wbsNodes, err := nodes.ListBySchedule(ctx, result.Schedule.ID)
	require.NoError(t, err)
	assert.Len(t, wbsNodes, 2)
	acts, err := activities.ListBySchedule(ctx, result.Schedule.ID)
	require.NoError(t, err)
	assert.Len(t, acts, 3)
	rels, err := relationships.ListBySchedule(ctx, result.Schedule.ID)
	require.NoError(t, err)
	assert.Len(t, rels, 2)
	res, err := resources.ListBySchedule(ctx, result.Schedule.ID)
	require.NoError(t, err)
	assert.Len(t, res, 1)
	asgs, err := assignments.ListBySchedule(ctx, result.Schedule.ID)
	require.NoError(t, err)
	assert.Len(t, asgs, 1)
}

func TestImportSchedule_ThenRecompute(t *testing.T) {
	schedules, nodes, activities, relationships, _, _, uow := setupRepos(t)
	ctx := context.Background()

	importSvc := NewImportService(schedules, uow)
	recompute := NewRecomputeService(schedules, nodes, activities, relationships, uow)

	result, err := importSvc.ImportScheduleFromSchema(ctx, validImportSchema())
	require.NoError(t, err)

	resp, err := recompute.Recompute(ctx, contract.NewRecomputeRequest(result.Schedule.ID))
	require.NoError(t, err)

	assert.Equal(t, []string{"A100", "A200", "M900"}, resp.CriticalCodes)
	require.NotNil(t, resp.ProjectFinish)
	assert.True(t, resp.ProjectFinish.Equal(march(9)), "the handover milestone lands on the Monday after the piling chain")

	handover, err := activities.GetByCode(ctx, result.Schedule.ID, "M900")
	require.NoError(t, err)
	assert.True(t, handover.PlannedStart.Equal(*handover.PlannedEnd), "milestones occupy a single instant")
}

func TestImportSchedule_ValidationErrorsFolded(t *testing.T) {
	schedules, _, _, _, _, _, uow := setupRepos(t)
	ctx := context.Background()

	svc := NewImportService(schedules, uow)

	schema := validImportSchema()
	schema.Schedule.Name = ""
	schema.Schedule.StartDate = "03/02/2026"
	schema.Activities[0].WbsRef = strPtr("nowhere")

	_, err := svc.ImportScheduleFromSchema(ctx, schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import validation failed (3 errors):")
	assert.Contains(t, err.Error(), "schedule.name is required")
	assert.Contains(t, err.Error(), "invalid date format")
	assert.Contains(t, err.Error(), `ref "nowhere" not found`)
}

func TestImportSchedule_DuplicateCodeRejected(t *testing.T) {
	schedules, _, _, _, _, _, uow := setupRepos(t)
	ctx := context.Background()

	svc := NewImportService(schedules, uow)

	existing := testutil.NewTestSchedule("Already Here", testutil.WithScheduleCode("BRIDGE01"))
	require.NoError(t, schedules.Create(ctx, existing))

	_, err := svc.ImportScheduleFromSchema(ctx, validImportSchema())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `schedule code "BRIDGE01" already exists`)
}

func TestImportSchedule_RollbackOnActivityCreateFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	schedules := repository.NewSQLiteScheduleRepo(database)
	ctx := context.Background()

	// Exec calls in the import tx: #1 schedule, #2-#3 wbs nodes, #4-#6
	// activities. Fail on #5 so the schedule, both nodes and the first
	// activity are already written inside the tx.
	failUoW := &testutil.FaultyUoW{
		DB:     database,
		TripOn: 5,
		Err:    fmt.Errorf("injected activity create failure"),
	}

	svc := NewImportService(schedules, failUoW)

	_, err := svc.ImportScheduleFromSchema(ctx, validImportSchema())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected activity create failure")

	all, err := schedules.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, all, "no schedules should exist after rollback")
}

func TestImportSchedule_RollbackOnAssignmentFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	schedules := repository.NewSQLiteScheduleRepo(database)
	ctx := context.Background()

	// Exec calls: #1 schedule, #2-#3 wbs, #4-#6 activities, #7-#8
	// relationships, #9 resource, #10 assignment. Failing the very last
	// write must still erase everything.
	failUoW := &testutil.FaultyUoW{
		DB:     database,
		TripOn: 10,
		Err:    fmt.Errorf("injected assignment failure"),
	}

	svc := NewImportService(schedules, failUoW)

	_, err := svc.ImportScheduleFromSchema(ctx, validImportSchema())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected assignment failure")

	all, err := schedules.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, all, "no schedules should exist after rollback")
}

func TestImportSchedule_FromFile(t *testing.T) {
	schedules, _, activities, _, _, _, uow := setupRepos(t)
	ctx := context.Background()

	svc := NewImportService(schedules, uow)

	data, err := json.Marshal(validImportSchema())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "bridge.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	result, err := svc.ImportSchedule(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 3, result.ActivityCount)

	acts, err := activities.ListBySchedule(ctx, result.Schedule.ID)
	require.NoError(t, err)
	assert.Len(t, acts, 3)
}

func TestImportSchedule_MissingFile(t *testing.T) {
	schedules, _, _, _, _, _, uow := setupRepos(t)
	ctx := context.Background()

	svc := NewImportService(schedules, uow)

	_, err := svc.ImportSchedule(ctx, filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
