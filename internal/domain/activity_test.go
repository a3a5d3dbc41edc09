package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityValidate_NegativeDuration(t *testing.T) {
	a := &Activity{Code: "A100", Type: ActivityTask, Duration: -3, Unit: UnitDays}
	err := a.Validate()
	require.Error(t, err)
	var dErr InvalidDurationError
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, "A100", dErr.Activity)
	assert.True(t, IsInvalidInput(err))
	assert.False(t, IsStructural(err))
}

func TestActivityValidate_NonFiniteDuration(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		a := &Activity{Code: "A100", Type: ActivityTask, Duration: v, Unit: UnitDays}
		assert.Error(t, a.Validate(), "duration=%v", v)
	}
}

func TestActivityValidate_MilestoneWithDuration(t *testing.T) {
	a := &Activity{Code: "M1", Type: ActivityMilestone, Duration: 2, Unit: UnitDays}
	err := a.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "milestone")
}

func TestActivityValidate_ZeroDurationTaskIsFine(t *testing.T) {
	a := &Activity{Code: "A100", Type: ActivityTask, Duration: 0, Unit: UnitDays}
	assert.NoError(t, a.Validate())
}

func TestEffectiveDuration_MilestoneCollapsesToZero(t *testing.T) {
	for _, typ := range []ActivityType{ActivityMilestone, ActivityStartMilestone, ActivityFinishMilestone} {
		a := &Activity{Type: typ, Duration: 5}
		assert.Equal(t, 0.0, a.EffectiveDuration(), "type=%s", typ)
	}
	task := &Activity{Type: ActivityTask, Duration: 5}
	assert.Equal(t, 5.0, task.EffectiveDuration())
}

func TestRecordStart_Idempotent(t *testing.T) {
	first := testNow.Add(-48 * time.Hour)
	a := &Activity{Type: ActivityTask}
	a.RecordStart(first, testNow)
	require.NotNil(t, a.ActualStart)
	assert.Equal(t, first, *a.ActualStart)

	a.RecordStart(testNow, testNow)
	assert.Equal(t, first, *a.ActualStart, "existing actual start should be kept")
}

func TestRecordFinish_SetsCompletion(t *testing.T) {
	start := testNow.Add(-48 * time.Hour)
	a := &Activity{Type: ActivityTask, ActualStart: &start}
	require.NoError(t, a.RecordFinish(testNow, testNow))
	require.NotNil(t, a.ActualEnd)
	assert.Equal(t, testNow, *a.ActualEnd)
	assert.Equal(t, 100.0, a.PercentComplete)
}

func TestRecordFinish_BeforeStart(t *testing.T) {
	start := testNow
	a := &Activity{Type: ActivityTask, ActualStart: &start}
	err := a.RecordFinish(testNow.Add(-24*time.Hour), testNow)
	require.Error(t, err)
	assert.Nil(t, a.ActualEnd)
}

func TestRecordFinish_WithoutStartBackfillsIt(t *testing.T) {
	a := &Activity{Type: ActivityTask}
	require.NoError(t, a.RecordFinish(testNow, testNow))
	require.NotNil(t, a.ActualStart)
	assert.Equal(t, testNow, *a.ActualStart)
}

func TestSetProgress_Bounds(t *testing.T) {
	a := &Activity{Type: ActivityTask}
	require.NoError(t, a.SetProgress(55, testNow))
	assert.Equal(t, 55.0, a.PercentComplete)

	assert.Error(t, a.SetProgress(-1, testNow))
	assert.Error(t, a.SetProgress(101, testNow))
	assert.Equal(t, 55.0, a.PercentComplete, "rejected values should not stick")
}

func TestClearComputed(t *testing.T) {
	now := testNow
	f := 2.5
	a := &Activity{
		PlannedStart: &now, PlannedEnd: &now,
		LateStart: &now, LateEnd: &now,
		TotalFloat: &f, IsCritical: true,
	}
	a.ClearComputed()
	assert.Nil(t, a.PlannedStart)
	assert.Nil(t, a.PlannedEnd)
	assert.Nil(t, a.LateStart)
	assert.Nil(t, a.LateEnd)
	assert.Nil(t, a.TotalFloat)
	assert.False(t, a.IsCritical)
}

func TestRelationshipValidate_SelfLink(t *testing.T) {
	r := &Relationship{PredecessorID: "x", SuccessorID: "x", Type: FinishToStart}
	err := r.Validate()
	require.Error(t, err)
	var cErr CyclicDependencyError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, []string{"x", "x"}, cErr.Cycle)
	assert.True(t, IsStructural(err))
}

func TestRelationshipValidate_NegativeLagIsValid(t *testing.T) {
	r := &Relationship{PredecessorID: "a", SuccessorID: "b", Type: FinishToStart, Lag: -3}
	assert.NoError(t, r.Validate())
}

func TestRelationshipValidate_NonFiniteLag(t *testing.T) {
	r := &Relationship{PredecessorID: "a", SuccessorID: "b", Type: FinishToStart, Lag: math.NaN()}
	err := r.Validate()
	require.Error(t, err)
	var lErr InvalidLagError
	require.ErrorAs(t, err, &lErr)
	assert.True(t, IsInvalidInput(err))
}

func TestParseDurationUnit(t *testing.T) {
	cases := []struct {
		in   string
		want DurationUnit
	}{
		{"h", UnitHours}, {"hours", UnitHours},
		{"d", UnitDays}, {"days", UnitDays}, {"", UnitDays},
		{"w", UnitWeeks}, {"weeks", UnitWeeks},
		{"mo", UnitMonths}, {"months", UnitMonths},
	}
	for _, tc := range cases {
		got, err := ParseDurationUnit(tc.in)
		require.NoError(t, err, "in=%q", tc.in)
		assert.Equal(t, tc.want, got, "in=%q", tc.in)
	}
	_, err := ParseDurationUnit("fortnights")
	assert.Error(t, err)
}

func TestParseRelationshipType(t *testing.T) {
	for in, want := range map[string]RelationshipType{
		"FS": FinishToStart, "fs": FinishToStart, "": FinishToStart,
		"SS": StartToStart, "FF": FinishToFinish, "SF": StartToFinish,
	} {
		got, err := ParseRelationshipType(in)
		require.NoError(t, err, "in=%q", in)
		assert.Equal(t, want, got, "in=%q", in)
	}
	_, err := ParseRelationshipType("FSX")
	assert.Error(t, err)
}
