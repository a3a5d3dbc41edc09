package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// ImportSchema is the top-level JSON structure for schedule import.
type ImportSchema struct {
	Schedule      ScheduleImport       `json:"schedule"`
	Defaults      *DefaultsImport      `json:"defaults,omitempty"`
	Wbs           []WbsImport          `json:"wbs,omitempty"`
	Activities    []ActivityImport     `json:"activities"`
	Relationships []RelationshipImport `json:"relationships,omitempty"`
	Resources     []ResourceImport     `json:"resources,omitempty"`
	Assignments   []AssignmentImport   `json:"assignments,omitempty"`
}

// ScheduleImport defines the schedule-level fields in the import file.
type ScheduleImport struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	StartDate   string   `json:"start_date"`
	EndDate     *string  `json:"end_date,omitempty"`
	WorkingDays string   `json:"working_days,omitempty"`
	Holidays    []string `json:"holidays,omitempty"`
}

// DefaultsImport defines file-wide defaults that cascade to activities.
type DefaultsImport struct {
	ActivityType string   `json:"activity_type,omitempty"`
	Duration     *float64 `json:"duration,omitempty"`
	DurationUnit string   `json:"duration_unit,omitempty"`
}

// WbsImport defines one WBS node. Chain links the node's activities into a
// finish-to-start sequence in file order.
type WbsImport struct {
	Ref       string  `json:"ref"`
	ParentRef *string `json:"parent_ref,omitempty"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Chain     bool    `json:"chain,omitempty"`
}

// ActivityImport defines one activity in the import file.
type ActivityImport struct {
	Ref          string   `json:"ref"`
	WbsRef       *string  `json:"wbs_ref,omitempty"`
	Code         string   `json:"code,omitempty"`
	Name         string   `json:"name"`
	Type         string   `json:"type,omitempty"`
	Duration     *float64 `json:"duration,omitempty"`
	DurationUnit string   `json:"duration_unit,omitempty"`
}

// RelationshipImport defines a precedence link between two activities.
type RelationshipImport struct {
	PredecessorRef string   `json:"predecessor_ref"`
	SuccessorRef   string   `json:"successor_ref"`
	Type           string   `json:"type,omitempty"`
	Lag            *float64 `json:"lag,omitempty"`
	LagUnit        string   `json:"lag_unit,omitempty"`
}

// ResourceImport defines one resource in the import file.
type ResourceImport struct {
	Ref       string `json:"ref"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	UnitLabel string `json:"unit_label,omitempty"`
}

// AssignmentImport books units of a resource against an activity.
type AssignmentImport struct {
	ActivityRef  string   `json:"activity_ref"`
	ResourceRef  string   `json:"resource_ref"`
	PlannedUnits float64  `json:"planned_units"`
	ActualUnits  *float64 `json:"actual_units,omitempty"`
}

// LoadImportSchema reads and parses a schedule import JSON file.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var schema ImportSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}
