package domain

import "fmt"

type ScheduleStatus string

const (
	ScheduleDraft     ScheduleStatus = "draft"
	ScheduleActive    ScheduleStatus = "active"
	ScheduleCompleted ScheduleStatus = "completed"
	ScheduleArchived  ScheduleStatus = "archived"
)

type ActivityType string

const (
	ActivityTask            ActivityType = "task"
	ActivityMilestone       ActivityType = "milestone"
	ActivityStartMilestone  ActivityType = "start_milestone"
	ActivityFinishMilestone ActivityType = "finish_milestone"
	ActivitySummary         ActivityType = "summary"
)

// ValidActivityTypes is the canonical set of accepted activity type strings.
var ValidActivityTypes = map[string]bool{
	"task": true, "milestone": true, "start_milestone": true,
	"finish_milestone": true, "summary": true,
}

// IsMilestone reports whether the type is any of the milestone variants.
// Milestones carry zero duration and collapse to a single point in time.
func (t ActivityType) IsMilestone() bool {
	return t == ActivityMilestone || t == ActivityStartMilestone || t == ActivityFinishMilestone
}

type DurationUnit string

const (
	UnitHours  DurationUnit = "hours"
	UnitDays   DurationUnit = "days"
	UnitWeeks  DurationUnit = "weeks"
	UnitMonths DurationUnit = "months"
)

// ParseDurationUnit normalizes common unit spellings (h, d, day, wk, ...)
// to a canonical DurationUnit.
func ParseDurationUnit(s string) (DurationUnit, error) {
	switch s {
	case "h", "hr", "hrs", "hour", "hours":
		return UnitHours, nil
	case "d", "day", "days", "":
		return UnitDays, nil
	case "w", "wk", "wks", "week", "weeks":
		return UnitWeeks, nil
	case "mo", "mon", "month", "months":
		return UnitMonths, nil
	}
	return "", fmt.Errorf("unknown duration unit %q (use hours, days, weeks or months)", s)
}

type RelationshipType string

const (
	FinishToStart  RelationshipType = "FS"
	StartToStart   RelationshipType = "SS"
	FinishToFinish RelationshipType = "FF"
	StartToFinish  RelationshipType = "SF"
)

// ParseRelationshipType accepts the four standard precedence link codes in
// either case.
func ParseRelationshipType(s string) (RelationshipType, error) {
	switch s {
	case "FS", "fs", "":
		return FinishToStart, nil
	case "SS", "ss":
		return StartToStart, nil
	case "FF", "ff":
		return FinishToFinish, nil
	case "SF", "sf":
		return StartToFinish, nil
	}
	return "", fmt.Errorf("unknown relationship type %q (use FS, SS, FF or SF)", s)
}
