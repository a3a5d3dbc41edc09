package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptrStr(s string) *string     { return &s }
func ptrFloat(f float64) *float64 { return &f }

func validMinimalSchema() *ImportSchema {
	return &ImportSchema{
		Schedule: ScheduleImport{
			Code:      "BRIDGE01",
			Name:      "Bridge Construction",
			StartDate: "2026-03-02",
		},
		Activities: []ActivityImport{
			{Ref: "a1", Name: "Site Preparation", Code: "A100", Duration: ptrFloat(5)},
		},
	}
}

func validFullSchema() *ImportSchema {
	return &ImportSchema{
		Schedule: ScheduleImport{
			Code:        "PLANT02",
			Name:        "Plant Expansion",
			Description: "Phase 2 expansion",
			StartDate:   "2026-03-02",
			EndDate:     ptrStr("2026-09-30"),
			WorkingDays: "1111110",
			Holidays:    []string{"2026-04-06", "2026-05-01"},
		},
		Defaults: &DefaultsImport{ActivityType: "task", DurationUnit: "days"},
		Wbs: []WbsImport{
			{Ref: "civil", Code: "1", Name: "Civil Works"},
			{Ref: "found", ParentRef: ptrStr("civil"), Code: "1.1", Name: "Foundations", Chain: true},
			{Ref: "steel", Code: "2", Name: "Steel Structure"},
		},
		Activities: []ActivityImport{
			{Ref: "a1", WbsRef: ptrStr("found"), Code: "A100", Name: "Excavation", Duration: ptrFloat(10)},
			{Ref: "a2", WbsRef: ptrStr("found"), Code: "A110", Name: "Concrete Pour", Duration: ptrFloat(5)},
			{Ref: "a3", WbsRef: ptrStr("steel"), Code: "S100", Name: "Steel Erection", Duration: ptrFloat(15)},
			{Ref: "m1", Code: "M010", Name: "Foundations Complete", Type: "milestone"},
		},
		Relationships: []RelationshipImport{
			{PredecessorRef: "a2", SuccessorRef: "m1"},
			{PredecessorRef: "m1", SuccessorRef: "a3", Type: "SS", Lag: ptrFloat(2)},
		},
		Resources: []ResourceImport{
			{Ref: "crew", Code: "CRW", Name: "Site Crew", UnitLabel: "crew-days"},
		},
		Assignments: []AssignmentImport{
			{ActivityRef: "a1", ResourceRef: "crew", PlannedUnits: 40},
		},
	}
}

func hasErr(errs []error, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e.Error(), substr) {
			return true
		}
	}
	return false
}

func TestValidateImportSchema_ValidMinimal(t *testing.T) {
	errs := ValidateImportSchema(validMinimalSchema())
	assert.Empty(t, errs)
}

func TestValidateImportSchema_ValidFull(t *testing.T) {
	errs := ValidateImportSchema(validFullSchema())
	assert.Empty(t, errs)
}

func TestValidateImportSchema_MissingScheduleFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *ImportSchema)
		wantMsg string
	}{
		{"missing code", func(s *ImportSchema) { s.Schedule.Code = "" }, "schedule.code is required"},
		{"missing name", func(s *ImportSchema) { s.Schedule.Name = "" }, "schedule.name is required"},
		{"missing start_date", func(s *ImportSchema) { s.Schedule.StartDate = "" }, "schedule.start_date is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := validMinimalSchema()
			tc.mutate(s)
			errs := ValidateImportSchema(s)
			assert.NotEmpty(t, errs)
			assert.Contains(t, errs[0].Error(), tc.wantMsg)
		})
	}
}

func TestValidateImportSchema_BadScheduleCode(t *testing.T) {
	s := validMinimalSchema()
	s.Schedule.Code = "2026-BRIDGE"
	errs := ValidateImportSchema(s)
	assert.True(t, hasErr(errs, "schedule.code"), "expected code format error, got %v", errs)
}

func TestValidateImportSchema_BadWorkingDays(t *testing.T) {
	tests := []struct {
		name string
		mask string
	}{
		{"too short", "11111"},
		{"bad characters", "11111xx"},
		{"all zero", "0000000"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := validMinimalSchema()
			s.Schedule.WorkingDays = tc.mask
			errs := ValidateImportSchema(s)
			assert.True(t, hasErr(errs, "schedule.working_days"), "expected mask error, got %v", errs)
		})
	}
}

func TestValidateImportSchema_InvalidDates(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *ImportSchema)
		wantMsg string
	}{
		{"bad start_date", func(s *ImportSchema) { s.Schedule.StartDate = "not-a-date" }, "invalid date format"},
		{"bad end_date", func(s *ImportSchema) { s.Schedule.EndDate = ptrStr("not-a-date") }, "invalid date format"},
		{"end before start", func(s *ImportSchema) { s.Schedule.EndDate = ptrStr("2026-01-01") }, "must be after start_date"},
		{"bad holiday", func(s *ImportSchema) { s.Schedule.Holidays = []string{"bad"} }, "schedule.holidays[0]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := validMinimalSchema()
			tc.mutate(s)
			errs := ValidateImportSchema(s)
			assert.True(t, hasErr(errs, tc.wantMsg), "expected error containing %q, got %v", tc.wantMsg, errs)
		})
	}
}

func TestValidateImportSchema_DuplicateWbsRef(t *testing.T) {
	s := validFullSchema()
	s.Wbs = append(s.Wbs, WbsImport{Ref: "civil", Code: "3", Name: "Dup"})
	errs := ValidateImportSchema(s)
	assert.True(t, hasErr(errs, "duplicate ref"), "expected duplicate ref error, got %v", errs)
}

func TestValidateImportSchema_DuplicateActivityRef(t *testing.T) {
	s := validMinimalSchema()
	s.Activities = append(s.Activities, ActivityImport{Ref: "a1", Name: "Dup"})
	errs := ValidateImportSchema(s)
	assert.True(t, hasErr(errs, "duplicate ref"), "expected duplicate ref error, got %v", errs)
}

func TestValidateImportSchema_DuplicateActivityCode(t *testing.T) {
	s := validMinimalSchema()
	// Codes are case-insensitive, so a100 collides with A100.
	s.Activities = append(s.Activities, ActivityImport{Ref: "a2", Name: "Other", Code: "a100"})
	errs := ValidateImportSchema(s)
	assert.True(t, hasErr(errs, "duplicate code"), "expected duplicate code error, got %v", errs)
}

func TestValidateImportSchema_ParentRefMustAppearEarlier(t *testing.T) {
	s := validFullSchema()
	s.Wbs[0].ParentRef = ptrStr("steel")
	errs := ValidateImportSchema(s)
	assert.True(t, hasErr(errs, "must appear earlier"), "expected parent order error, got %v", errs)
}

func TestValidateImportSchema_SelfParent(t *testing.T) {
	s := validFullSchema()
	s.Wbs[0].ParentRef = ptrStr("civil")
	errs := ValidateImportSchema(s)
	assert.True(t, hasErr(errs, "cannot be its own parent"), "expected self-parent error, got %v", errs)
}

func TestValidateImportSchema_InvalidWbsRef(t *testing.T) {
	s := validMinimalSchema()
	s.Activities[0].WbsRef = ptrStr("nonexistent")
	errs := ValidateImportSchema(s)
	assert.True(t, hasErr(errs, "not found in wbs"), "expected wbs_ref error, got %v", errs)
}

func TestValidateImportSchema_InvalidRelationshipRef(t *testing.T) {
	s := validMinimalSchema()
	s.Relationships = []RelationshipImport{
		{PredecessorRef: "a1", SuccessorRef: "nonexistent"},
	}
	errs := ValidateImportSchema(s)
	assert.True(t, hasErr(errs, "not found in activities"), "expected successor_ref error, got %v", errs)
}

func TestValidateImportSchema_SelfDependency(t *testing.T) {
	s := validMinimalSchema()
	s.Relationships = []RelationshipImport{
		{PredecessorRef: "a1", SuccessorRef: "a1"},
	}
	errs := ValidateImportSchema(s)
	assert.True(t, hasErr(errs, "self-dependency"), "expected self-dependency error, got %v", errs)
}

func TestValidateImportSchema_CircularDependency(t *testing.T) {
	s := validMinimalSchema()
	s.Activities = append(s.Activities,
		ActivityImport{Ref: "a2", Name: "Task 2"},
		ActivityImport{Ref: "a3", Name: "Task 3"},
	)
	s.Relationships = []RelationshipImport{
		{PredecessorRef: "a1", SuccessorRef: "a2"},
		{PredecessorRef: "a2", SuccessorRef: "a3"},
		{PredecessorRef: "a3", SuccessorRef: "a1"},
	}
	errs := ValidateImportSchema(s)
	assert.True(t, hasErr(errs, "circular dependency"), "expected circular dependency error, got %v", errs)
}

func TestValidateImportSchema_CircularThroughChain(t *testing.T) {
	// The chained group links a1 -> a2; the explicit a2 -> a1 closes a
	// cycle that only shows up when both edge sets are considered.
	s := &ImportSchema{
		Schedule: ScheduleImport{Code: "LOOP01", Name: "Loop", StartDate: "2026-03-02"},
		Wbs: []WbsImport{
			{Ref: "g1", Code: "1", Name: "Group", Chain: true},
		},
		Activities: []ActivityImport{
			{Ref: "a1", WbsRef: ptrStr("g1"), Name: "First"},
			{Ref: "a2", WbsRef: ptrStr("g1"), Name: "Second"},
		},
		Relationships: []RelationshipImport{
			{PredecessorRef: "a2", SuccessorRef: "a1"},
		},
	}
	errs := ValidateImportSchema(s)
	assert.True(t, hasErr(errs, "circular dependency"), "expected circular dependency error, got %v", errs)
}

func TestValidateImportSchema_MilestoneWithDuration(t *testing.T) {
	s := validMinimalSchema()
	s.Activities = append(s.Activities, ActivityImport{
		Ref: "m1", Name: "Kickoff", Type: "milestone", Duration: ptrFloat(3),
	})
	errs := ValidateImportSchema(s)
	assert.True(t, hasErr(errs, "milestones must have zero duration"), "expected milestone duration error, got %v", errs)
}

func TestValidateImportSchema_MilestoneTypeFromDefaults(t *testing.T) {
	s := validMinimalSchema()
	s.Defaults = &DefaultsImport{ActivityType: "milestone"}
	s.Activities[0].Type = ""
	// a1 carries duration 5 and inherits the milestone type.
	errs := ValidateImportSchema(s)
	assert.True(t, hasErr(errs, "milestones must have zero duration"), "expected milestone duration error, got %v", errs)
}

func TestValidateImportSchema_InvalidEnums(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *ImportSchema)
		wantMsg string
	}{
		{"bad activity type", func(s *ImportSchema) { s.Activities[0].Type = "invalid" }, "invalid value"},
		{"bad duration unit", func(s *ImportSchema) { s.Activities[0].DurationUnit = "fortnights" }, "unknown duration unit"},
		{"bad defaults type", func(s *ImportSchema) { s.Defaults = &DefaultsImport{ActivityType: "invalid"} }, "invalid value"},
		{"bad relationship type", func(s *ImportSchema) {
			s.Activities = append(s.Activities, ActivityImport{Ref: "a2", Name: "Other"})
			s.Relationships = []RelationshipImport{{PredecessorRef: "a1", SuccessorRef: "a2", Type: "XX"}}
		}, "unknown relationship type"},
		{"bad lag unit", func(s *ImportSchema) {
			s.Activities = append(s.Activities, ActivityImport{Ref: "a2", Name: "Other"})
			s.Relationships = []RelationshipImport{{PredecessorRef: "a1", SuccessorRef: "a2", LagUnit: "bad"}}
		}, "unknown duration unit"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := validMinimalSchema()
			tc.mutate(s)
			errs := ValidateImportSchema(s)
			assert.True(t, hasErr(errs, tc.wantMsg), "expected error containing %q, got %v", tc.wantMsg, errs)
		})
	}
}

func TestValidateImportSchema_NegativeDuration(t *testing.T) {
	s := validMinimalSchema()
	s.Activities[0].Duration = ptrFloat(-1)
	errs := ValidateImportSchema(s)
	assert.True(t, hasErr(errs, "must be >= 0"), "expected negative duration error, got %v", errs)
}

func TestValidateImportSchema_AssignmentChecks(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *ImportSchema)
		wantMsg string
	}{
		{"unknown activity", func(s *ImportSchema) {
			s.Assignments = append(s.Assignments, AssignmentImport{ActivityRef: "ghost", ResourceRef: "crew", PlannedUnits: 1})
		}, "not found in activities"},
		{"unknown resource", func(s *ImportSchema) {
			s.Assignments = append(s.Assignments, AssignmentImport{ActivityRef: "a1", ResourceRef: "ghost", PlannedUnits: 1})
		}, "not found in resources"},
		{"duplicate pair", func(s *ImportSchema) {
			s.Assignments = append(s.Assignments, AssignmentImport{ActivityRef: "a1", ResourceRef: "crew", PlannedUnits: 2})
		}, "duplicate assignment"},
		{"negative planned", func(s *ImportSchema) {
			s.Assignments[0].PlannedUnits = -5
		}, "planned_units must be >= 0"},
		{"negative actual", func(s *ImportSchema) {
			s.Assignments[0].ActualUnits = ptrFloat(-1)
		}, "actual_units must be >= 0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := validFullSchema()
			tc.mutate(s)
			errs := ValidateImportSchema(s)
			assert.True(t, hasErr(errs, tc.wantMsg), "expected error containing %q, got %v", tc.wantMsg, errs)
		})
	}
}

func TestValidateImportSchema_ResourceChecks(t *testing.T) {
	s := validFullSchema()
	s.Resources = append(s.Resources,
		ResourceImport{Ref: "crew2", Code: "crw", Name: "Night Crew"},
		ResourceImport{Ref: "crew3", Name: "No Code"},
	)
	errs := ValidateImportSchema(s)
	assert.True(t, hasErr(errs, "duplicate code"), "expected duplicate code error, got %v", errs)
	assert.True(t, hasErr(errs, "resources[2].code is required"), "expected missing code error, got %v", errs)
}
