package cpm

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akarolczak/critpath/internal/calendar"
	"github.com/akarolczak/critpath/internal/domain"
	"github.com/akarolczak/critpath/internal/network"
)

// March 2026: the 2nd is a Monday, the 6th a Friday.
func march(day int) time.Time {
	return time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
}

func task(id, code string, duration float64) *domain.Activity {
	return &domain.Activity{
		ID: id, ScheduleID: "s1", Code: code, Name: "activity " + code,
		Type: domain.ActivityTask, Duration: duration, Unit: domain.UnitDays,
	}
}

func hourTask(id, code string, hours float64) *domain.Activity {
	a := task(id, code, hours)
	a.Unit = domain.UnitHours
	return a
}

func milestone(id, code string) *domain.Activity {
	a := task(id, code, 0)
	a.Type = domain.ActivityMilestone
	return a
}

func link(pred, succ string, typ domain.RelationshipType, lag float64) *domain.Relationship {
	return &domain.Relationship{
		ID: pred + "->" + succ, ScheduleID: "s1",
		PredecessorID: pred, SuccessorID: succ,
		Type: typ, Lag: lag, LagUnit: domain.UnitDays,
	}
}

func mustBuild(t *testing.T, acts []*domain.Activity, rels []*domain.Relationship) *network.Network {
	t.Helper()
	n, err := network.Build(acts, rels)
	require.NoError(t, err)
	return n
}

func compute(t *testing.T, net *network.Network, start time.Time) *Result {
	t.Helper()
	res, err := Compute(Input{Network: net, Calendar: calendar.Default(), Start: start})
	require.NoError(t, err)
	return res
}

func TestCompute_LinearChain_DatesFollowDurations(t *testing.T) {
	net := mustBuild(t,
		[]*domain.Activity{task("a", "A100", 3), task("b", "A200", 2), task("c", "A300", 4)},
		[]*domain.Relationship{
			link("a", "b", domain.FinishToStart, 0),
			link("b", "c", domain.FinishToStart, 0),
		},
	)
	res := compute(t, net, march(2))

	a, b, c := res.Dates["a"], res.Dates["b"], res.Dates["c"]
	assert.Equal(t, march(2), a.EarlyStart)
	assert.Equal(t, march(5), a.EarlyFinish)
	assert.Equal(t, march(5), b.EarlyStart, "zero-lag FS successor starts at the predecessor finish boundary")
	assert.Equal(t, march(7), b.EarlyFinish)
	assert.Equal(t, march(9), c.EarlyStart, "start normalized off the weekend")
	assert.Equal(t, march(13), c.EarlyFinish)

	// 3+2+4 = 9 working days from Monday the 2nd end on Friday the 13th.
	assert.Equal(t, march(13), res.ProjectFinish)

	for id, d := range res.Dates {
		assert.Equal(t, 0.0, d.TotalFloat, "chain activity %s", id)
		assert.True(t, d.Critical, "chain activity %s", id)
	}
	assert.Equal(t, []string{"a", "b", "c"}, res.CriticalIDs)
}

func TestCompute_ParallelChains_LongerChainWins(t *testing.T) {
	// a -> b(2d) -> d and a -> c(5d) -> d: d waits for c, b floats 3 days.
	net := mustBuild(t,
		[]*domain.Activity{task("a", "A100", 1), task("b", "A200", 2), task("c", "A300", 5), task("d", "A400", 1)},
		[]*domain.Relationship{
			link("a", "b", domain.FinishToStart, 0),
			link("a", "c", domain.FinishToStart, 0),
			link("b", "d", domain.FinishToStart, 0),
			link("c", "d", domain.FinishToStart, 0),
		},
	)
	res := compute(t, net, march(2))

	assert.Equal(t, march(10), res.Dates["d"].EarlyStart, "joint successor starts at the max incoming constraint")
	assert.Equal(t, march(11), res.ProjectFinish)

	assert.Equal(t, 3.0, res.Dates["b"].TotalFloat, "short chain floats by the working-day difference")
	assert.False(t, res.Dates["b"].Critical)
	assert.Equal(t, 0.0, res.Dates["c"].TotalFloat)
	assert.Equal(t, []string{"a", "c", "d"}, res.CriticalIDs)
}

func TestCompute_CycleAborts(t *testing.T) {
	net := mustBuild(t,
		[]*domain.Activity{task("a", "A100", 1), task("b", "A200", 1)},
		[]*domain.Relationship{
			link("a", "b", domain.FinishToStart, 0),
			link("b", "a", domain.FinishToStart, 0),
		},
	)
	_, err := Compute(Input{Network: net, Calendar: calendar.Default(), Start: march(2)})
	require.Error(t, err)
	var cErr domain.CyclicDependencyError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, cErr.Cycle[0], cErr.Cycle[len(cErr.Cycle)-1])
	assert.True(t, domain.IsStructural(err))
}

func TestCompute_NegativeLag_SuccessorLeads(t *testing.T) {
	// b may start 2 working days before a finishes.
	net := mustBuild(t,
		[]*domain.Activity{task("a", "A100", 5), task("b", "A200", 2)},
		[]*domain.Relationship{link("a", "b", domain.FinishToStart, -2)},
	)
	res := compute(t, net, march(2))

	assert.Equal(t, march(7), res.Dates["a"].EarlyFinish)
	assert.Equal(t, march(5), res.Dates["b"].EarlyStart, "lead pulls the start 2 working days back")
	assert.Equal(t, march(7), res.Dates["b"].EarlyFinish)

	// The lead is honored symmetrically going backward: both stay critical.
	assert.Equal(t, 0.0, res.Dates["a"].TotalFloat)
	assert.Equal(t, 0.0, res.Dates["b"].TotalFloat)
}

func TestCompute_Idempotent_BitIdentical(t *testing.T) {
	build := func(seed int64) *Result {
		acts := []*domain.Activity{
			task("a", "A100", 3), task("b", "A200", 2), task("c", "A300", 5),
			task("d", "A400", 1), milestone("m", "M900"),
		}
		rels := []*domain.Relationship{
			link("a", "b", domain.FinishToStart, 0),
			link("a", "c", domain.StartToStart, 1),
			link("b", "d", domain.FinishToStart, -1),
			link("c", "d", domain.FinishToFinish, 2),
			link("d", "m", domain.FinishToStart, 0),
		}
		// Input order must not matter.
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(len(acts), func(i, j int) { acts[i], acts[j] = acts[j], acts[i] })
		rng.Shuffle(len(rels), func(i, j int) { rels[i], rels[j] = rels[j], rels[i] })

		res, err := Compute(Input{Network: mustBuild(t, acts, rels), Calendar: calendar.Default(), Start: march(2)})
		require.NoError(t, err)
		return res
	}

	first := build(1)
	for seed := int64(2); seed < 12; seed++ {
		require.Equal(t, first, build(seed), "seed %d", seed)
	}
}

func TestCompute_Milestone_StartEqualsFinish(t *testing.T) {
	net := mustBuild(t,
		[]*domain.Activity{task("a", "A100", 3), milestone("m", "M100")},
		[]*domain.Relationship{link("a", "m", domain.FinishToStart, 0)},
	)
	res := compute(t, net, march(2))

	m := res.Dates["m"]
	assert.Equal(t, m.EarlyStart, m.EarlyFinish)
	assert.Equal(t, march(5), m.EarlyStart)
	assert.True(t, m.Critical)
}

func TestCompute_FridayStartCrossesWeekend(t *testing.T) {
	net := mustBuild(t, []*domain.Activity{task("a", "A100", 5)}, nil)
	res := compute(t, net, march(6)) // Friday

	a := res.Dates["a"]
	assert.Equal(t, march(6), a.EarlyStart)
	assert.Equal(t, march(13), a.EarlyFinish, "5 working days from Friday span 7 calendar days")
	assert.Equal(t, 7.0, a.EarlyFinish.Sub(a.EarlyStart).Hours()/24)
}

func TestCompute_StartToStart(t *testing.T) {
	net := mustBuild(t,
		[]*domain.Activity{task("a", "A100", 3), task("b", "A200", 2)},
		[]*domain.Relationship{link("a", "b", domain.StartToStart, 1)},
	)
	res := compute(t, net, march(2))

	assert.Equal(t, march(3), res.Dates["b"].EarlyStart, "SS successor starts one working day after the predecessor start")
	assert.Equal(t, march(5), res.Dates["b"].EarlyFinish)
	assert.Equal(t, 0.0, res.Dates["a"].TotalFloat)
	assert.Equal(t, 0.0, res.Dates["b"].TotalFloat)
}

func TestCompute_FinishToFinish(t *testing.T) {
	net := mustBuild(t,
		[]*domain.Activity{task("a", "A100", 3), task("b", "A200", 1)},
		[]*domain.Relationship{link("a", "b", domain.FinishToFinish, 0)},
	)
	res := compute(t, net, march(2))

	assert.Equal(t, march(5), res.Dates["b"].EarlyFinish, "FF aligns the finishes")
	assert.Equal(t, march(4), res.Dates["b"].EarlyStart, "start derived by walking the duration back")
	assert.Equal(t, 0.0, res.Dates["b"].TotalFloat)
}

func TestCompute_StartToFinish(t *testing.T) {
	// b must finish 4 working days after a starts.
	net := mustBuild(t,
		[]*domain.Activity{task("a", "A100", 2), task("b", "A200", 3)},
		[]*domain.Relationship{link("a", "b", domain.StartToFinish, 4)},
	)
	res := compute(t, net, march(2))

	assert.Equal(t, march(6), res.Dates["b"].EarlyFinish)
	assert.Equal(t, march(3), res.Dates["b"].EarlyStart)
	assert.Equal(t, 0.0, res.Dates["b"].TotalFloat)
	assert.Equal(t, 0.0, res.Dates["a"].TotalFloat)
}

func TestCompute_HourDurationsRunOnWallClock(t *testing.T) {
	net := mustBuild(t,
		[]*domain.Activity{hourTask("a", "A100", 30), hourTask("b", "A200", 10)},
		[]*domain.Relationship{link("a", "b", domain.FinishToStart, 0)},
	)
	res := compute(t, net, march(6)) // Friday

	a, b := res.Dates["a"], res.Dates["b"]
	assert.Equal(t, march(6), a.EarlyStart)
	assert.Equal(t, march(7).Add(6*time.Hour), a.EarlyFinish, "30 wall hours run into Saturday")
	assert.Equal(t, a.EarlyFinish, b.EarlyStart, "hour activities are not snapped to working days")
	assert.Equal(t, b.EarlyStart.Add(10*time.Hour), b.EarlyFinish)
}

func TestCompute_EqualParallelChains_AllCritical(t *testing.T) {
	// Two equally long branches: the whole diamond is the critical subgraph,
	// no tie-break picks a single path.
	net := mustBuild(t,
		[]*domain.Activity{task("a", "A100", 1), task("b", "A200", 3), task("c", "A300", 3), task("d", "A400", 1)},
		[]*domain.Relationship{
			link("a", "b", domain.FinishToStart, 0),
			link("a", "c", domain.FinishToStart, 0),
			link("b", "d", domain.FinishToStart, 0),
			link("c", "d", domain.FinishToStart, 0),
		},
	)
	res := compute(t, net, march(2))
	assert.Equal(t, []string{"a", "b", "c", "d"}, res.CriticalIDs)
}

func TestCompute_ZeroDurationTask_IsValid(t *testing.T) {
	net := mustBuild(t, []*domain.Activity{task("a", "A100", 0)}, nil)
	res := compute(t, net, march(2))
	d := res.Dates["a"]
	assert.Equal(t, d.EarlyStart, d.EarlyFinish)
	assert.True(t, d.Critical)
}

func TestCompute_EmptyNetworkRejected(t *testing.T) {
	net := mustBuild(t, nil, nil)
	_, err := Compute(Input{Network: net, Calendar: calendar.Default(), Start: march(2)})
	require.Error(t, err)
}

func TestCompute_NegativeDurationRejected(t *testing.T) {
	net := mustBuild(t, []*domain.Activity{task("a", "A100", -2)}, nil)
	_, err := Compute(Input{Network: net, Calendar: calendar.Default(), Start: march(2)})
	require.Error(t, err)
	var dErr domain.InvalidDurationError
	require.ErrorAs(t, err, &dErr)
	assert.True(t, domain.IsInvalidInput(err))
}

func TestCompute_InfeasibleTargetReported(t *testing.T) {
	end := march(11)
	net := mustBuild(t,
		[]*domain.Activity{task("a", "A100", 3), task("b", "A200", 2), task("c", "A300", 4)},
		[]*domain.Relationship{
			link("a", "b", domain.FinishToStart, 0),
			link("b", "c", domain.FinishToStart, 0),
		},
	)
	res, err := Compute(Input{Network: net, Calendar: calendar.Default(), Start: march(2), End: &end})
	require.NoError(t, err)
	assert.False(t, res.Feasible)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "misses the target")
}

func TestCompute_FeasibleWhenTargetMet(t *testing.T) {
	end := march(13)
	net := mustBuild(t, []*domain.Activity{task("a", "A100", 5)}, nil)
	res, err := Compute(Input{Network: net, Calendar: calendar.Default(), Start: march(6), End: &end})
	require.NoError(t, err)
	assert.True(t, res.Feasible, "finish landing exactly on the target is feasible")
}

func TestCompute_IsolatedActivityWarned(t *testing.T) {
	net := mustBuild(t,
		[]*domain.Activity{task("a", "A100", 1), task("b", "A200", 1), task("c", "A300", 2)},
		[]*domain.Relationship{link("a", "b", domain.FinishToStart, 0)},
	)
	res := compute(t, net, march(2))
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "A300 has no relationships")
}

func TestCompute_SingleActivityNotWarned(t *testing.T) {
	net := mustBuild(t, []*domain.Activity{task("a", "A100", 1)}, nil)
	res := compute(t, net, march(2))
	assert.Empty(t, res.Warnings)
}

func TestCompute_WeekStartOnSaturdayNormalizes(t *testing.T) {
	net := mustBuild(t, []*domain.Activity{task("a", "A100", 2)}, nil)
	res := compute(t, net, march(7)) // Saturday
	assert.Equal(t, march(9), res.Dates["a"].EarlyStart, "anchor on a weekend moves to Monday")
	assert.Equal(t, march(11), res.Dates["a"].EarlyFinish)
}

// TestCompute_Property_ConstraintsHold generates random acyclic networks and
// checks the fundamental pass invariants on every activity.
func TestCompute_Property_ConstraintsHold(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cal := calendar.Default()

	for trial := 0; trial < 60; trial++ {
		count := rng.Intn(12) + 2
		acts := make([]*domain.Activity, count)
		for i := range acts {
			acts[i] = task(
				string(rune('a'+i)),
				"A"+string(rune('0'+i/10))+string(rune('0'+i%10)),
				float64(rng.Intn(8)),
			)
		}
		types := []domain.RelationshipType{
			domain.FinishToStart, domain.StartToStart,
			domain.FinishToFinish, domain.StartToFinish,
		}
		var rels []*domain.Relationship
		for i := 0; i < count; i++ {
			for j := i + 1; j < count; j++ {
				if rng.Intn(3) != 0 {
					continue
				}
				r := link(acts[i].ID, acts[j].ID, types[rng.Intn(len(types))], float64(rng.Intn(5)-1))
				rels = append(rels, r)
			}
		}

		res, err := Compute(Input{Network: mustBuild(t, acts, rels), Calendar: cal, Start: march(2)})
		require.NoError(t, err, "trial %d", trial)

		for _, a := range acts {
			d := res.Dates[a.ID]
			assert.False(t, d.EarlyFinish.Before(d.EarlyStart), "trial %d: EF before ES on %s", trial, a.Code)
			assert.False(t, d.LateFinish.Before(d.LateStart), "trial %d: LF before LS on %s", trial, a.Code)
			assert.False(t, d.EarlyStart.Before(march(2)), "trial %d: ES before anchor on %s", trial, a.Code)
			assert.False(t, res.ProjectFinish.Before(d.EarlyFinish), "trial %d: finish before EF of %s", trial, a.Code)
			// Float is measured in working time, so a late boundary landing
			// inside a weekend gap still reads as zero, never negative.
			assert.GreaterOrEqual(t, d.TotalFloat, 0.0, "trial %d: float on %s", trial, a.Code)
			assert.Equal(t, d.Critical, math.Abs(d.TotalFloat) <= DefaultEpsilon, "trial %d: critical flag on %s", trial, a.Code)
		}

		// Every FS edge holds: successor never starts before the lagged
		// predecessor finish.
		for _, r := range rels {
			if r.Type != domain.FinishToStart {
				continue
			}
			pred, succ := res.Dates[r.PredecessorID], res.Dates[r.SuccessorID]
			bound := cal.AddDuration(pred.EarlyFinish, r.Lag, r.LagUnit, calendar.Forward)
			assert.False(t, succ.EarlyStart.Before(bound),
				"trial %d: FS violated %s -> %s", trial, r.PredecessorID, r.SuccessorID)
		}
	}
}
