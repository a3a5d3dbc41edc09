package network

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akarolczak/critpath/internal/domain"
)

func act(id, code string) *domain.Activity {
	return &domain.Activity{
		ID:         id,
		ScheduleID: "sched-1",
		Code:       code,
		Name:       "activity " + code,
		Type:       domain.ActivityTask,
		Duration:   1,
		Unit:       domain.UnitDays,
	}
}

func rel(pred, succ string) *domain.Relationship {
	return &domain.Relationship{
		ID:            pred + "->" + succ,
		ScheduleID:    "sched-1",
		PredecessorID: pred,
		SuccessorID:   succ,
		Type:          domain.FinishToStart,
	}
}

func actIDs(acts []*domain.Activity) []string {
	out := make([]string, len(acts))
	for i, a := range acts {
		out[i] = a.ID
	}
	return out
}

func TestBuild_IndexesEdges(t *testing.T) {
	n, err := Build(
		[]*domain.Activity{act("a", "A100"), act("b", "A200"), act("c", "A300")},
		[]*domain.Relationship{rel("a", "b"), rel("a", "c")},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, n.Len())
	assert.Len(t, n.Successors("a"), 2)
	assert.Len(t, n.Predecessors("b"), 1)
	assert.Empty(t, n.Predecessors("a"))
}

func TestBuild_ActivitiesSortedByCode(t *testing.T) {
	n, err := Build(
		[]*domain.Activity{act("x", "A300"), act("y", "A100"), act("z", "A200")},
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "z", "x"}, actIDs(n.Activities()))
}

func TestBuild_DanglingPredecessor(t *testing.T) {
	_, err := Build(
		[]*domain.Activity{act("b", "A200")},
		[]*domain.Relationship{rel("ghost", "b")},
	)
	require.Error(t, err)
	var dErr domain.DanglingReferenceError
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, "ghost", dErr.RefID)
	assert.True(t, domain.IsStructural(err))
}

func TestBuild_DanglingSuccessor(t *testing.T) {
	_, err := Build(
		[]*domain.Activity{act("a", "A100")},
		[]*domain.Relationship{rel("a", "ghost")},
	)
	require.Error(t, err)
	var dErr domain.DanglingReferenceError
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, "ghost", dErr.RefID)
}

func TestBuild_SelfLink(t *testing.T) {
	_, err := Build(
		[]*domain.Activity{act("a", "A100")},
		[]*domain.Relationship{rel("a", "a")},
	)
	require.Error(t, err)
	var cErr domain.CyclicDependencyError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, []string{"a", "a"}, cErr.Cycle)
}

func TestCycle_AcyclicReturnsNil(t *testing.T) {
	n, err := Build(
		[]*domain.Activity{act("a", "A100"), act("b", "A200"), act("c", "A300")},
		[]*domain.Relationship{rel("a", "b"), rel("b", "c"), rel("a", "c")},
	)
	require.NoError(t, err)
	assert.Nil(t, n.Cycle())
}

func TestCycle_TwoNode(t *testing.T) {
	n, err := Build(
		[]*domain.Activity{act("a", "A100"), act("b", "A200")},
		[]*domain.Relationship{rel("a", "b"), rel("b", "a")},
	)
	require.NoError(t, err)
	cycle := n.Cycle()
	require.Len(t, cycle, 3)
	assert.Equal(t, cycle[0], cycle[2], "start repeated at the end: %v", cycle)
}

func TestCycle_ReportsParticipantsOnly(t *testing.T) {
	// d -> a -> b -> c -> a: the cycle is a,b,c; d is upstream of it.
	n, err := Build(
		[]*domain.Activity{act("a", "A100"), act("b", "A200"), act("c", "A300"), act("d", "A050")},
		[]*domain.Relationship{rel("d", "a"), rel("a", "b"), rel("b", "c"), rel("c", "a")},
	)
	require.NoError(t, err)
	cycle := n.Cycle()
	require.Len(t, cycle, 4)
	assert.NotContains(t, cycle, "d")
	assert.Equal(t, cycle[0], cycle[len(cycle)-1])
}

func TestCycle_Deterministic(t *testing.T) {
	build := func() *Network {
		n, err := Build(
			[]*domain.Activity{act("a", "A100"), act("b", "A200"), act("c", "A300")},
			[]*domain.Relationship{rel("a", "b"), rel("b", "c"), rel("c", "a")},
		)
		require.NoError(t, err)
		return n
	}
	first := build().Cycle()
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, build().Cycle(), "iteration %d", i)
	}
}

func TestTopologicalOrder_LinearChain(t *testing.T) {
	n, err := Build(
		[]*domain.Activity{act("c", "A300"), act("a", "A100"), act("b", "A200")},
		[]*domain.Relationship{rel("a", "b"), rel("b", "c")},
	)
	require.NoError(t, err)
	order, err := n.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, actIDs(order))
}

func TestTopologicalOrder_TiesBrokenByCode(t *testing.T) {
	// a feeds both b and c; b and c are simultaneously ready and must come
	// out in code order.
	n, err := Build(
		[]*domain.Activity{act("a", "A100"), act("c", "A300"), act("b", "A200"), act("d", "A400")},
		[]*domain.Relationship{rel("a", "c"), rel("a", "b"), rel("b", "d"), rel("c", "d")},
	)
	require.NoError(t, err)
	order, err := n.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, actIDs(order))
}

func TestTopologicalOrder_IsolatedActivities(t *testing.T) {
	n, err := Build(
		[]*domain.Activity{act("b", "A200"), act("a", "A100")},
		nil,
	)
	require.NoError(t, err)
	order, err := n.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, actIDs(order))
}

func TestTopologicalOrder_CycleLeavesLeftovers(t *testing.T) {
	// Calling the walk without the cycle gate must fail loudly, not drop
	// activities.
	n, err := Build(
		[]*domain.Activity{act("a", "A100"), act("b", "A200")},
		[]*domain.Relationship{rel("a", "b"), rel("b", "a")},
	)
	require.NoError(t, err)
	_, err = n.TopologicalOrder()
	require.Error(t, err)
	var uErr domain.UnscheduledPredecessorError
	require.ErrorAs(t, err, &uErr)
	assert.ElementsMatch(t, []string{"a", "b"}, uErr.IDs)
}

// TestTopologicalOrder_Property_EdgesRespected builds random DAGs and checks
// that every predecessor appears before its successor.
func TestTopologicalOrder_Property_EdgesRespected(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 100; trial++ {
		count := rng.Intn(20) + 2
		acts := make([]*domain.Activity, count)
		for i := range acts {
			acts[i] = act(fmt.Sprintf("n%02d", i), fmt.Sprintf("A%03d", i))
		}
		// Edges only from lower to higher index: acyclic by construction.
		var rels []*domain.Relationship
		for i := 0; i < count; i++ {
			for j := i + 1; j < count; j++ {
				if rng.Intn(4) == 0 {
					rels = append(rels, rel(acts[i].ID, acts[j].ID))
				}
			}
		}

		n, err := Build(acts, rels)
		require.NoError(t, err)
		require.Nil(t, n.Cycle(), "trial %d", trial)

		order, err := n.TopologicalOrder()
		require.NoError(t, err, "trial %d", trial)
		require.Len(t, order, count, "trial %d", trial)

		pos := make(map[string]int, count)
		for i, a := range order {
			pos[a.ID] = i
		}
		for _, r := range rels {
			assert.Less(t, pos[r.PredecessorID], pos[r.SuccessorID],
				"trial %d: %s must precede %s", trial, r.PredecessorID, r.SuccessorID)
		}
	}
}
