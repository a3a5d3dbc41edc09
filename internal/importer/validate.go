package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/akarolczak/critpath/internal/domain"
)

// ValidateImportSchema checks the import schema for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	errs = append(errs, validateSchedule(&schema.Schedule)...)
	errs = append(errs, validateDefaults(schema.Defaults)...)

	wbsRefs := make(map[string]bool)
	errs = append(errs, validateWbs(schema.Wbs, wbsRefs)...)

	actRefs := make(map[string]bool)
	errs = append(errs, validateActivities(schema.Activities, schema.Defaults, wbsRefs, actRefs)...)

	errs = append(errs, validateRelationships(schema, actRefs)...)

	resRefs := make(map[string]bool)
	errs = append(errs, validateResources(schema.Resources, resRefs)...)
	errs = append(errs, validateAssignments(schema.Assignments, actRefs, resRefs)...)

	return errs
}

func validateSchedule(s *ScheduleImport) []error {
	var errs []error

	if s.Code == "" {
		errs = append(errs, fmt.Errorf("schedule.code is required"))
	} else if err := (&domain.Schedule{Code: strings.ToUpper(s.Code)}).ValidateCode(); err != nil {
		errs = append(errs, fmt.Errorf("schedule.code: %v", err))
	}
	if s.Name == "" {
		errs = append(errs, fmt.Errorf("schedule.name is required"))
	}
	if s.StartDate == "" {
		errs = append(errs, fmt.Errorf("schedule.start_date is required"))
	} else if _, err := time.Parse("2006-01-02", s.StartDate); err != nil {
		errs = append(errs, fmt.Errorf("schedule.start_date: invalid date format %q (expected YYYY-MM-DD)", s.StartDate))
	}
	if s.EndDate != nil {
		if _, err := time.Parse("2006-01-02", *s.EndDate); err != nil {
			errs = append(errs, fmt.Errorf("schedule.end_date: invalid date format %q (expected YYYY-MM-DD)", *s.EndDate))
		} else if s.StartDate != "" {
			start, startErr := time.Parse("2006-01-02", s.StartDate)
			end, endErr := time.Parse("2006-01-02", *s.EndDate)
			if startErr == nil && endErr == nil && !end.After(start) {
				errs = append(errs, fmt.Errorf("schedule.end_date %q must be after start_date %q", *s.EndDate, s.StartDate))
			}
		}
	}
	if s.WorkingDays != "" {
		if err := (&domain.Schedule{WorkingDays: s.WorkingDays}).ValidateWorkingDays(); err != nil {
			errs = append(errs, fmt.Errorf("schedule.working_days: %v", err))
		}
	}
	for i, h := range s.Holidays {
		if _, err := time.Parse("2006-01-02", h); err != nil {
			errs = append(errs, fmt.Errorf("schedule.holidays[%d]: invalid date format %q (expected YYYY-MM-DD)", i, h))
		}
	}

	return errs
}

func validateDefaults(d *DefaultsImport) []error {
	if d == nil {
		return nil
	}
	var errs []error

	if d.ActivityType != "" && !domain.ValidActivityTypes[d.ActivityType] {
		errs = append(errs, fmt.Errorf("defaults.activity_type: invalid value %q", d.ActivityType))
	}
	if d.Duration != nil && *d.Duration < 0 {
		errs = append(errs, fmt.Errorf("defaults.duration must be >= 0"))
	}
	if d.DurationUnit != "" {
		if _, err := domain.ParseDurationUnit(d.DurationUnit); err != nil {
			errs = append(errs, fmt.Errorf("defaults.duration_unit: %v", err))
		}
	}

	return errs
}

func validateWbs(nodes []WbsImport, wbsRefs map[string]bool) []error {
	var errs []error

	for i, n := range nodes {
		prefix := fmt.Sprintf("wbs[%d]", i)

		if n.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if wbsRefs[n.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, n.Ref))
		} else {
			wbsRefs[n.Ref] = true
		}

		if n.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}

		if n.ParentRef != nil && *n.ParentRef != "" {
			if *n.ParentRef == n.Ref {
				errs = append(errs, fmt.Errorf("%s.parent_ref: node %q cannot be its own parent", prefix, n.Ref))
			} else if !wbsRefs[*n.ParentRef] {
				errs = append(errs, fmt.Errorf("%s.parent_ref: ref %q not found (must appear earlier in wbs list)", prefix, *n.ParentRef))
			}
		}
	}

	return errs
}

func validateActivities(items []ActivityImport, defaults *DefaultsImport, wbsRefs, actRefs map[string]bool) []error {
	var errs []error
	actCodes := make(map[string]bool)

	for i, a := range items {
		prefix := fmt.Sprintf("activities[%d]", i)

		if a.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if actRefs[a.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, a.Ref))
		} else {
			actRefs[a.Ref] = true
		}

		if a.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}

		if a.Code != "" {
			upper := strings.ToUpper(a.Code)
			if actCodes[upper] {
				errs = append(errs, fmt.Errorf("%s.code: duplicate code %q", prefix, a.Code))
			} else {
				actCodes[upper] = true
			}
		}

		if a.WbsRef != nil && *a.WbsRef != "" && !wbsRefs[*a.WbsRef] {
			errs = append(errs, fmt.Errorf("%s.wbs_ref: ref %q not found in wbs", prefix, *a.WbsRef))
		}

		actType := a.Type
		if actType == "" && defaults != nil {
			actType = defaults.ActivityType
		}
		if a.Type != "" && !domain.ValidActivityTypes[a.Type] {
			errs = append(errs, fmt.Errorf("%s.type: invalid value %q", prefix, a.Type))
		}

		if a.Duration != nil && *a.Duration < 0 {
			errs = append(errs, fmt.Errorf("%s.duration must be >= 0", prefix))
		}
		if a.Duration != nil && *a.Duration != 0 && domain.ActivityType(actType).IsMilestone() {
			errs = append(errs, fmt.Errorf("%s.duration: milestones must have zero duration", prefix))
		}
		if a.DurationUnit != "" {
			if _, err := domain.ParseDurationUnit(a.DurationUnit); err != nil {
				errs = append(errs, fmt.Errorf("%s.duration_unit: %v", prefix, err))
			}
		}
	}

	return errs
}

func validateRelationships(schema *ImportSchema, actRefs map[string]bool) []error {
	var errs []error

	for i, r := range schema.Relationships {
		prefix := fmt.Sprintf("relationships[%d]", i)

		if r.PredecessorRef == "" {
			errs = append(errs, fmt.Errorf("%s.predecessor_ref is required", prefix))
		} else if !actRefs[r.PredecessorRef] {
			errs = append(errs, fmt.Errorf("%s.predecessor_ref: ref %q not found in activities", prefix, r.PredecessorRef))
		}

		if r.SuccessorRef == "" {
			errs = append(errs, fmt.Errorf("%s.successor_ref is required", prefix))
		} else if !actRefs[r.SuccessorRef] {
			errs = append(errs, fmt.Errorf("%s.successor_ref: ref %q not found in activities", prefix, r.SuccessorRef))
		}

		if r.PredecessorRef != "" && r.SuccessorRef != "" && r.PredecessorRef == r.SuccessorRef {
			errs = append(errs, fmt.Errorf("%s: self-dependency (predecessor_ref == successor_ref == %q)", prefix, r.PredecessorRef))
		}

		if r.Type != "" {
			if _, err := domain.ParseRelationshipType(r.Type); err != nil {
				errs = append(errs, fmt.Errorf("%s.type: %v", prefix, err))
			}
		}
		if r.LagUnit != "" {
			if _, err := domain.ParseDurationUnit(r.LagUnit); err != nil {
				errs = append(errs, fmt.Errorf("%s.lag_unit: %v", prefix, err))
			}
		}
	}

	// Cycle check covers both explicit links and the ones a chained WBS
	// group will generate.
	edges := make([][2]string, 0, len(schema.Relationships))
	for _, r := range schema.Relationships {
		edges = append(edges, [2]string{r.PredecessorRef, r.SuccessorRef})
	}
	edges = append(edges, chainEdges(schema)...)
	if len(edges) > 1 {
		errs = append(errs, detectCycles(edges)...)
	}

	return errs
}

// chainEdges lists the predecessor/successor ref pairs that chained WBS
// groups will produce, so validation sees the same graph conversion builds.
func chainEdges(schema *ImportSchema) [][2]string {
	var edges [][2]string
	for _, n := range schema.Wbs {
		if !n.Chain {
			continue
		}
		prev := ""
		for _, a := range schema.Activities {
			if a.WbsRef == nil || *a.WbsRef != n.Ref || a.Ref == "" {
				continue
			}
			if prev != "" && prev != a.Ref {
				edges = append(edges, [2]string{prev, a.Ref})
			}
			prev = a.Ref
		}
	}
	return edges
}

func detectCycles(edges [][2]string) []error {
	graph := make(map[string][]string)
	nodes := make(map[string]bool)
	for _, e := range edges {
		if e[0] != "" && e[1] != "" && e[0] != e[1] {
			graph[e[0]] = append(graph[e[0]], e[1])
			nodes[e[0]] = true
			nodes[e[1]] = true
		}
	}

	const (
		white = 0 // unvisited
		gray  = 1 // in current path
		black = 2 // fully processed
	)

	color := make(map[string]int)
	var errs []error

	var visit func(node string) bool
	visit = func(node string) bool {
		color[node] = gray
		for _, neighbor := range graph[node] {
			if color[neighbor] == gray {
				errs = append(errs, fmt.Errorf("circular dependency detected involving %q and %q", node, neighbor))
				return true
			}
			if color[neighbor] == white {
				if visit(neighbor) {
					return true
				}
			}
		}
		color[node] = black
		return false
	}

	for node := range nodes {
		if color[node] == white {
			visit(node)
		}
	}

	return errs
}

func validateResources(resources []ResourceImport, resRefs map[string]bool) []error {
	var errs []error
	resCodes := make(map[string]bool)

	for i, r := range resources {
		prefix := fmt.Sprintf("resources[%d]", i)

		if r.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if resRefs[r.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, r.Ref))
		} else {
			resRefs[r.Ref] = true
		}

		if r.Code == "" {
			errs = append(errs, fmt.Errorf("%s.code is required", prefix))
		} else {
			upper := strings.ToUpper(r.Code)
			if resCodes[upper] {
				errs = append(errs, fmt.Errorf("%s.code: duplicate code %q", prefix, r.Code))
			} else {
				resCodes[upper] = true
			}
		}
		if r.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
	}

	return errs
}

func validateAssignments(assignments []AssignmentImport, actRefs, resRefs map[string]bool) []error {
	var errs []error
	pairs := make(map[string]bool)

	for i, a := range assignments {
		prefix := fmt.Sprintf("assignments[%d]", i)

		if a.ActivityRef == "" {
			errs = append(errs, fmt.Errorf("%s.activity_ref is required", prefix))
		} else if !actRefs[a.ActivityRef] {
			errs = append(errs, fmt.Errorf("%s.activity_ref: ref %q not found in activities", prefix, a.ActivityRef))
		}

		if a.ResourceRef == "" {
			errs = append(errs, fmt.Errorf("%s.resource_ref is required", prefix))
		} else if !resRefs[a.ResourceRef] {
			errs = append(errs, fmt.Errorf("%s.resource_ref: ref %q not found in resources", prefix, a.ResourceRef))
		}

		if a.ActivityRef != "" && a.ResourceRef != "" {
			key := a.ActivityRef + "\x00" + a.ResourceRef
			if pairs[key] {
				errs = append(errs, fmt.Errorf("%s: duplicate assignment of %q to %q", prefix, a.ResourceRef, a.ActivityRef))
			} else {
				pairs[key] = true
			}
		}

		if a.PlannedUnits < 0 {
			errs = append(errs, fmt.Errorf("%s.planned_units must be >= 0", prefix))
		}
		if a.ActualUnits != nil && *a.ActualUnits < 0 {
			errs = append(errs, fmt.Errorf("%s.actual_units must be >= 0", prefix))
		}
	}

	return errs
}
