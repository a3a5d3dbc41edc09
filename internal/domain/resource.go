package domain

import "time"

type Resource struct {
	ID         string
	ScheduleID string
	Code       string
	Name       string
	UnitLabel  string // what Units counts: "hours", "m3", "crew"
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ResourceAssignment books a quantity of a resource against an activity.
// PlannedUnits is the budget; ActualUnits tracks consumption.
type ResourceAssignment struct {
	ID           string
	ActivityID   string
	ResourceID   string
	PlannedUnits float64
	ActualUnits  float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
