package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/akarolczak/critpath/internal/domain"
	"github.com/google/uuid"
)

var testCodeCounter atomic.Int64

// FixedMonday is the default schedule anchor: a Monday, so date assertions
// in tests stay stable regardless of when they run.
var FixedMonday = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

// Schedule options
type ScheduleOption func(*domain.Schedule)

func WithScheduleCode(code string) ScheduleOption {
	return func(s *domain.Schedule) {
		s.Code = code
	}
}

func WithScheduleStatus(st domain.ScheduleStatus) ScheduleOption {
	return func(s *domain.Schedule) {
		s.Status = st
	}
}

func WithStartDate(d time.Time) ScheduleOption {
	return func(s *domain.Schedule) {
		s.StartDate = d
	}
}

func WithEndDate(d time.Time) ScheduleOption {
	return func(s *domain.Schedule) {
		s.EndDate = &d
	}
}

func WithWorkingDays(mask string) ScheduleOption {
	return func(s *domain.Schedule) {
		s.WorkingDays = mask
	}
}

func WithHolidays(days ...time.Time) ScheduleOption {
	return func(s *domain.Schedule) {
		s.Holidays = days
	}
}

func defaultCode(name string) string {
	upper := strings.ToUpper(name)
	var letters []byte
	for i := 0; i < len(upper) && len(letters) < 3; i++ {
		if upper[i] >= 'A' && upper[i] <= 'Z' {
			letters = append(letters, upper[i])
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	n := testCodeCounter.Add(1)
	return fmt.Sprintf("%s%02d", string(letters), n)
}

func NewTestSchedule(name string, opts ...ScheduleOption) *domain.Schedule {
	now := time.Now().UTC()
	s := &domain.Schedule{
		ID:          uuid.New().String(),
		Code:        defaultCode(name),
		Name:        name,
		StartDate:   FixedMonday,
		Status:      domain.ScheduleDraft,
		WorkingDays: domain.DefaultWorkingDays,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WbsNode options
type WbsNodeOption func(*domain.WbsNode)

func WithWbsParent(parentID string, level int) WbsNodeOption {
	return func(n *domain.WbsNode) {
		n.ParentID = &parentID
		n.Level = level
	}
}

func WithWbsCode(code string) WbsNodeOption {
	return func(n *domain.WbsNode) {
		n.Code = code
	}
}

func WithSortOrder(i int) WbsNodeOption {
	return func(n *domain.WbsNode) {
		n.SortOrder = i
	}
}

func NewTestWbsNode(scheduleID, name string, opts ...WbsNodeOption) *domain.WbsNode {
	now := time.Now().UTC()
	n := &domain.WbsNode{
		ID:         uuid.New().String(),
		ScheduleID: scheduleID,
		Name:       name,
		Level:      1,
		SortOrder:  0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Activity options
type ActivityOption func(*domain.Activity)

func WithActivityType(t domain.ActivityType) ActivityOption {
	return func(a *domain.Activity) {
		a.Type = t
	}
}

func WithDuration(d float64, unit domain.DurationUnit) ActivityOption {
	return func(a *domain.Activity) {
		a.Duration = d
		a.Unit = unit
	}
}

func WithWbsID(id string) ActivityOption {
	return func(a *domain.Activity) {
		a.WbsID = &id
	}
}

func WithActivityName(name string) ActivityOption {
	return func(a *domain.Activity) {
		a.Name = name
	}
}

func WithPlannedDates(start, end time.Time) ActivityOption {
	return func(a *domain.Activity) {
		a.PlannedStart = &start
		a.PlannedEnd = &end
	}
}

func WithPercentComplete(pct float64) ActivityOption {
	return func(a *domain.Activity) {
		a.PercentComplete = pct
	}
}

func NewTestActivity(scheduleID, code string, opts ...ActivityOption) *domain.Activity {
	now := time.Now().UTC()
	a := &domain.Activity{
		ID:         uuid.New().String(),
		ScheduleID: scheduleID,
		Code:       code,
		Name:       "Activity " + code,
		Type:       domain.ActivityTask,
		Duration:   5,
		Unit:       domain.UnitDays,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewTestMilestone creates a zero-duration milestone activity.
func NewTestMilestone(scheduleID, code string, opts ...ActivityOption) *domain.Activity {
	a := NewTestActivity(scheduleID, code, WithActivityType(domain.ActivityMilestone), WithDuration(0, domain.UnitDays))
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Relationship options
type RelationshipOption func(*domain.Relationship)

func WithRelType(t domain.RelationshipType) RelationshipOption {
	return func(r *domain.Relationship) {
		r.Type = t
	}
}

func WithLag(lag float64, unit domain.DurationUnit) RelationshipOption {
	return func(r *domain.Relationship) {
		r.Lag = lag
		r.LagUnit = unit
	}
}

func NewTestRelationship(scheduleID, predecessorID, successorID string, opts ...RelationshipOption) *domain.Relationship {
	r := &domain.Relationship{
		ID:            uuid.New().String(),
		ScheduleID:    scheduleID,
		PredecessorID: predecessorID,
		SuccessorID:   successorID,
		Type:          domain.FinishToStart,
		Lag:           0,
		LagUnit:       domain.UnitDays,
		CreatedAt:     time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resource options
type ResourceOption func(*domain.Resource)

func WithUnitLabel(label string) ResourceOption {
	return func(r *domain.Resource) {
		r.UnitLabel = label
	}
}

func NewTestResource(scheduleID, code string, opts ...ResourceOption) *domain.Resource {
	now := time.Now().UTC()
	r := &domain.Resource{
		ID:         uuid.New().String(),
		ScheduleID: scheduleID,
		Code:       code,
		Name:       "Resource " + code,
		UnitLabel:  "hours",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Assignment options
type AssignmentOption func(*domain.ResourceAssignment)

func WithActualUnits(units float64) AssignmentOption {
	return func(a *domain.ResourceAssignment) {
		a.ActualUnits = units
	}
}

func NewTestAssignment(activityID, resourceID string, plannedUnits float64, opts ...AssignmentOption) *domain.ResourceAssignment {
	now := time.Now().UTC()
	a := &domain.ResourceAssignment{
		ID:           uuid.New().String(),
		ActivityID:   activityID,
		ResourceID:   resourceID,
		PlannedUnits: plannedUnits,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
