package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/akarolczak/critpath/internal/domain"
	"github.com/akarolczak/critpath/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// relTestEnv seeds a schedule with three activities and returns the repos.
func relTestEnv(t *testing.T) (context.Context, *SQLiteRelationshipRepo, *SQLiteActivityRepo, *domain.Schedule, [3]*domain.Activity) {
	t.Helper()
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	schedRepo := NewSQLiteScheduleRepo(db)
	actRepo := NewSQLiteActivityRepo(db)
	relRepo := NewSQLiteRelationshipRepo(db)

	sched := testutil.NewTestSchedule("Plant")
	require.NoError(t, schedRepo.Create(ctx, sched))

	var acts [3]*domain.Activity
	for i, code := range []string{"A100", "B200", "C300"} {
		acts[i] = testutil.NewTestActivity(sched.ID, code)
		require.NoError(t, actRepo.Create(ctx, acts[i]))
	}
	return ctx, relRepo, actRepo, sched, acts
}

func TestRelationshipRepo_CreateAndGet(t *testing.T) {
	ctx, repo, _, sched, acts := relTestEnv(t)

	rel := testutil.NewTestRelationship(sched.ID, acts[0].ID, acts[1].ID,
		testutil.WithRelType(domain.StartToStart),
		testutil.WithLag(-2, domain.UnitDays),
	)
	require.NoError(t, repo.Create(ctx, rel))

	got, err := repo.GetByID(ctx, rel.ID)
	require.NoError(t, err)
	assert.Equal(t, acts[0].ID, got.PredecessorID)
	assert.Equal(t, acts[1].ID, got.SuccessorID)
	assert.Equal(t, domain.StartToStart, got.Type)
	assert.Equal(t, -2.0, got.Lag)
	assert.Equal(t, domain.UnitDays, got.LagUnit)
}

func TestRelationshipRepo_GetByID_NotFound(t *testing.T) {
	ctx, repo, _, _, _ := relTestEnv(t)

	_, err := repo.GetByID(ctx, "no-such-id")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRelationshipRepo_ListBySchedule(t *testing.T) {
	ctx, repo, _, sched, acts := relTestEnv(t)

	require.NoError(t, repo.Create(ctx, testutil.NewTestRelationship(sched.ID, acts[0].ID, acts[1].ID)))
	require.NoError(t, repo.Create(ctx, testutil.NewTestRelationship(sched.ID, acts[1].ID, acts[2].ID)))

	rels, err := repo.ListBySchedule(ctx, sched.ID)
	require.NoError(t, err)
	assert.Len(t, rels, 2)
}

func TestRelationshipRepo_ListByActivity_BothEnds(t *testing.T) {
	ctx, repo, _, sched, acts := relTestEnv(t)

	require.NoError(t, repo.Create(ctx, testutil.NewTestRelationship(sched.ID, acts[0].ID, acts[1].ID)))
	require.NoError(t, repo.Create(ctx, testutil.NewTestRelationship(sched.ID, acts[1].ID, acts[2].ID)))

	rels, err := repo.ListByActivity(ctx, acts[1].ID)
	require.NoError(t, err)
	assert.Len(t, rels, 2, "the middle activity appears as successor of one link and predecessor of the other")

	rels, err = repo.ListByActivity(ctx, acts[0].ID)
	require.NoError(t, err)
	assert.Len(t, rels, 1)
}

func TestRelationshipRepo_DeleteBetween_RemovesAllTypes(t *testing.T) {
	ctx, repo, _, sched, acts := relTestEnv(t)

	require.NoError(t, repo.Create(ctx, testutil.NewTestRelationship(sched.ID, acts[0].ID, acts[1].ID,
		testutil.WithRelType(domain.FinishToStart))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestRelationship(sched.ID, acts[0].ID, acts[1].ID,
		testutil.WithRelType(domain.StartToStart))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestRelationship(sched.ID, acts[1].ID, acts[2].ID)))

	require.NoError(t, repo.DeleteBetween(ctx, acts[0].ID, acts[1].ID))

	rels, err := repo.ListBySchedule(ctx, sched.ID)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, acts[1].ID, rels[0].PredecessorID)
}

func TestRelationshipRepo_ActivityDeleteCascades(t *testing.T) {
	ctx, repo, actRepo, sched, acts := relTestEnv(t)

	require.NoError(t, repo.Create(ctx, testutil.NewTestRelationship(sched.ID, acts[0].ID, acts[1].ID)))
	require.NoError(t, actRepo.Delete(ctx, acts[0].ID))

	rels, err := repo.ListBySchedule(ctx, sched.ID)
	require.NoError(t, err)
	assert.Empty(t, rels, "deleting an endpoint activity should remove its relationships")
}
