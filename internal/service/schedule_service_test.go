package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akarolczak/critpath/internal/db"
	"github.com/akarolczak/critpath/internal/domain"
	"github.com/akarolczak/critpath/internal/repository"
	"github.com/akarolczak/critpath/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helper to set up all repos from a test DB
func setupRepos(t *testing.T) (
	repository.ScheduleRepo,
	repository.WbsNodeRepo,
	repository.ActivityRepo,
	repository.RelationshipRepo,
	repository.ResourceRepo,
	repository.AssignmentRepo,
	db.UnitOfWork,
) {
	database := testutil.NewTestDB(t)
	return repository.NewSQLiteScheduleRepo(database),
		repository.NewSQLiteWbsNodeRepo(database),
		repository.NewSQLiteActivityRepo(database),
		repository.NewSQLiteRelationshipRepo(database),
		repository.NewSQLiteResourceRepo(database),
		repository.NewSQLiteAssignmentRepo(database),
		testutil.NewTestUoW(database)
}

func TestScheduleService_Create_Defaults(t *testing.T) {
	schedules, _, _, _, _, _, _ := setupRepos(t)
	ctx := context.Background()

	svc := NewScheduleService(schedules)

	sched := &domain.Schedule{
		Code:      "BRIDGE",
		Name:      "Bridge Construction",
		StartDate: testutil.FixedMonday,
	}
	require.NoError(t, svc.Create(ctx, sched))

	assert.NotEmpty(t, sched.ID, "UUID should be generated")
	assert.Equal(t, domain.ScheduleDraft, sched.Status)
	assert.Equal(t, domain.DefaultWorkingDays, sched.WorkingDays)
	assert.True(t, sched.NeedsRecompute, "a new schedule has never been computed")

	fetched, err := svc.GetByID(ctx, sched.ID)
	require.NoError(t, err)
	assert.Equal(t, "BRIDGE", fetched.Code)
	assert.Equal(t, "Bridge Construction", fetched.Name)
	assert.Equal(t, testutil.FixedMonday, fetched.StartDate)
}

func TestScheduleService_Create_InvalidCode(t *testing.T) {
	schedules, _, _, _, _, _, _ := setupRepos(t)
	ctx := context.Background()

	svc := NewScheduleService(schedules)

	tests := []struct {
		name string
		code string
	}{
		{"empty", ""},
		{"lowercase", "bridge"},
		{"single letter", "B"},
		{"too many letters", "BRIDGEWORKS"},
		{"too many digits", "BR12345"},
		{"digits first", "01BRIDGE"},
		{"special chars", "BR-01"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sched := &domain.Schedule{Code: tc.code, Name: "Test", StartDate: testutil.FixedMonday}
			err := svc.Create(ctx, sched)
			assert.Error(t, err, "code %q should be rejected", tc.code)
		})
	}
}

func TestScheduleService_Create_DuplicateCode(t *testing.T) {
	schedules, _, _, _, _, _, _ := setupRepos(t)
	ctx := context.Background()

	svc := NewScheduleService(schedules)

	first := &domain.Schedule{Code: "PLANT02", Name: "First", StartDate: testutil.FixedMonday}
	require.NoError(t, svc.Create(ctx, first))

	second := &domain.Schedule{Code: "PLANT02", Name: "Second", StartDate: testutil.FixedMonday}
	err := svc.Create(ctx, second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestScheduleService_Create_RequiresStartDate(t *testing.T) {
	schedules, _, _, _, _, _, _ := setupRepos(t)

	svc := NewScheduleService(schedules)

	sched := &domain.Schedule{Code: "NOSTART", Name: "No Anchor"}
	err := svc.Create(context.Background(), sched)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start date")
}

func TestScheduleService_Create_EndMustFollowStart(t *testing.T) {
	schedules, _, _, _, _, _, _ := setupRepos(t)

	svc := NewScheduleService(schedules)

	end := testutil.FixedMonday.AddDate(0, 0, -7)
	sched := &domain.Schedule{Code: "BACK", Name: "Backwards", StartDate: testutil.FixedMonday, EndDate: &end}
	err := svc.Create(context.Background(), sched)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be after start date")
}

func TestScheduleService_Update_RenameDoesNotMarkDirty(t *testing.T) {
	schedules, _, _, _, _, _, _ := setupRepos(t)
	ctx := context.Background()

	svc := NewScheduleService(schedules)

	sched := testutil.NewTestSchedule("Stable")
	require.NoError(t, schedules.Create(ctx, sched))
	require.NoError(t, schedules.MarkComputed(ctx, sched.ID, time.Now().UTC(), "fp"))

	loaded, err := svc.GetByID(ctx, sched.ID)
	require.NoError(t, err)
	loaded.Name = "Renamed"
	require.NoError(t, svc.Update(ctx, loaded))

	got, err := schedules.GetByID(ctx, sched.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.False(t, got.NeedsRecompute, "a rename never invalidates computed dates")
}

func TestScheduleService_Update_StartDateMarksDirty(t *testing.T) {
	schedules, _, _, _, _, _, _ := setupRepos(t)
	ctx := context.Background()

	svc := NewScheduleService(schedules)

	sched := testutil.NewTestSchedule("Anchored")
	require.NoError(t, schedules.Create(ctx, sched))
	require.NoError(t, schedules.MarkComputed(ctx, sched.ID, time.Now().UTC(), "fp"))

	loaded, err := svc.GetByID(ctx, sched.ID)
	require.NoError(t, err)
	loaded.StartDate = testutil.FixedMonday.AddDate(0, 0, 7)
	require.NoError(t, svc.Update(ctx, loaded))

	got, err := schedules.GetByID(ctx, sched.ID)
	require.NoError(t, err)
	assert.True(t, got.NeedsRecompute, "moving the anchor invalidates computed dates")
}

func TestScheduleService_UpdateCalendar(t *testing.T) {
	schedules, _, _, _, _, _, _ := setupRepos(t)
	ctx := context.Background()

	svc := NewScheduleService(schedules)

	sched := testutil.NewTestSchedule("Calendared")
	require.NoError(t, schedules.Create(ctx, sched))

	holiday := time.Date(2026, time.April, 6, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.UpdateCalendar(ctx, sched.ID, "1111110", []time.Time{holiday}))

	got, err := schedules.GetByID(ctx, sched.ID)
	require.NoError(t, err)
	assert.Equal(t, "1111110", got.WorkingDays)
	require.Len(t, got.Holidays, 1)
	assert.Equal(t, holiday, got.Holidays[0])
	assert.True(t, got.NeedsRecompute)
}

func TestScheduleService_UpdateCalendar_RejectsBadMask(t *testing.T) {
	schedules, _, _, _, _, _, _ := setupRepos(t)
	ctx := context.Background()

	svc := NewScheduleService(schedules)

	sched := testutil.NewTestSchedule("Masked")
	require.NoError(t, schedules.Create(ctx, sched))

	err := svc.UpdateCalendar(ctx, sched.ID, "0000000", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no working day")
}

func TestScheduleService_UpdateCalendar_CompletedScheduleRejected(t *testing.T) {
	schedules, _, _, _, _, _, _ := setupRepos(t)
	ctx := context.Background()

	svc := NewScheduleService(schedules)

	sched := testutil.NewTestSchedule("Done", testutil.WithScheduleStatus(domain.ScheduleCompleted))
	require.NoError(t, schedules.Create(ctx, sched))

	err := svc.UpdateCalendar(ctx, sched.ID, "1111110", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "structural edits require draft or active")
}

func TestScheduleService_Lifecycle(t *testing.T) {
	schedules, _, _, _, _, _, _ := setupRepos(t)
	ctx := context.Background()

	svc := NewScheduleService(schedules)

	sched := testutil.NewTestSchedule("Lifecycle")
	require.NoError(t, schedules.Create(ctx, sched))

	require.NoError(t, svc.Activate(ctx, sched.ID))
	got, err := schedules.GetByID(ctx, sched.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduleActive, got.Status)

	require.NoError(t, svc.Complete(ctx, sched.ID))
	got, err = schedules.GetByID(ctx, sched.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduleCompleted, got.Status)
}

func TestScheduleService_Lifecycle_InvalidTransition(t *testing.T) {
	schedules, _, _, _, _, _, _ := setupRepos(t)
	ctx := context.Background()

	svc := NewScheduleService(schedules)

	sched := testutil.NewTestSchedule("Draftling")
	require.NoError(t, schedules.Create(ctx, sched))

	err := svc.Complete(ctx, sched.ID)
	require.Error(t, err)
	var transErr domain.InvalidTransitionError
	require.True(t, errors.As(err, &transErr))
	assert.Equal(t, domain.ScheduleDraft, transErr.From)
	assert.Equal(t, domain.ScheduleCompleted, transErr.To)
}

func TestScheduleService_ArchiveAndUnarchive(t *testing.T) {
	schedules, _, _, _, _, _, _ := setupRepos(t)
	ctx := context.Background()

	svc := NewScheduleService(schedules)

	sched := testutil.NewTestSchedule("Shelved")
	require.NoError(t, schedules.Create(ctx, sched))

	require.NoError(t, svc.Archive(ctx, sched.ID))
	got, err := schedules.GetByID(ctx, sched.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduleArchived, got.Status)
	assert.NotNil(t, got.ArchivedAt)

	require.NoError(t, svc.Unarchive(ctx, sched.ID))
	got, err = schedules.GetByID(ctx, sched.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScheduleDraft, got.Status)
	assert.Nil(t, got.ArchivedAt)
}

func TestScheduleService_Delete_RequiresArchiveFirst(t *testing.T) {
	schedules, _, _, _, _, _, _ := setupRepos(t)
	ctx := context.Background()

	svc := NewScheduleService(schedules)

	sched := testutil.NewTestSchedule("Undeletable")
	require.NoError(t, schedules.Create(ctx, sched))

	err := svc.Delete(ctx, sched.ID, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "archived before deletion")

	_, err = svc.GetByID(ctx, sched.ID)
	require.NoError(t, err)
}

func TestScheduleService_Delete_ForceBypassesGuard(t *testing.T) {
	schedules, _, _, _, _, _, _ := setupRepos(t)
	ctx := context.Background()

	svc := NewScheduleService(schedules)

	sched := testutil.NewTestSchedule("Doomed")
	require.NoError(t, schedules.Create(ctx, sched))

	require.NoError(t, svc.Delete(ctx, sched.ID, true))

	_, err := svc.GetByID(ctx, sched.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}
