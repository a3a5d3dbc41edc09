package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/akarolczak/critpath/internal/domain"
	"github.com/akarolczak/critpath/internal/generation"
	"github.com/google/uuid"
)

// GeneratedSchedule bundles the converted entities ready for persistence,
// in dependency order: schedule first, then WBS nodes, activities,
// relationships, resources and assignments.
type GeneratedSchedule struct {
	Schedule      *domain.Schedule
	WbsNodes      []*domain.WbsNode
	Activities    []*domain.Activity
	Relationships []*domain.Relationship
	Resources     []*domain.Resource
	Assignments   []*domain.ResourceAssignment
}

// Convert transforms a validated ImportSchema into domain objects ready for persistence.
// Call ValidateImportSchema first; Convert assumes the schema is valid.
func Convert(schema *ImportSchema) (*GeneratedSchedule, error) {
	now := time.Now().UTC()

	startDate, err := generation.ParseRequiredDate(schema.Schedule.StartDate, "schedule.start_date")
	if err != nil {
		return nil, err
	}
	endDate, err := generation.ParseOptionalDate(schema.Schedule.EndDate, "schedule.end_date")
	if err != nil {
		return nil, err
	}
	holidays := make([]time.Time, 0, len(schema.Schedule.Holidays))
	for _, h := range schema.Schedule.Holidays {
		day, err := generation.ParseRequiredDate(h, "schedule.holidays")
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, day)
	}

	workingDays := schema.Schedule.WorkingDays
	if workingDays == "" {
		workingDays = domain.DefaultWorkingDays
	}

	sched := &domain.Schedule{
		ID:             uuid.New().String(),
		Code:           strings.ToUpper(schema.Schedule.Code),
		Name:           schema.Schedule.Name,
		Description:    schema.Schedule.Description,
		StartDate:      startDate,
		EndDate:        endDate,
		Status:         domain.ScheduleDraft,
		WorkingDays:    workingDays,
		Holidays:       holidays,
		NeedsRecompute: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	refMap := make(map[string]string) // ref -> UUID

	// Convert WBS nodes; levels follow the parent chain, which validation
	// guarantees appears earlier in the list.
	nodes := make([]*domain.WbsNode, 0, len(schema.Wbs))
	levelByID := make(map[string]int, len(schema.Wbs))
	for _, n := range schema.Wbs {
		realID := uuid.New().String()
		refMap[n.Ref] = realID

		level := 1
		var parentID *string
		if n.ParentRef != nil && *n.ParentRef != "" {
			if pid, ok := refMap[*n.ParentRef]; ok {
				parentID = &pid
				level = levelByID[pid] + 1
			}
		}
		levelByID[realID] = level

		nodes = append(nodes, &domain.WbsNode{
			ID:         realID,
			ScheduleID: sched.ID,
			ParentID:   parentID,
			Code:       n.Code,
			Name:       n.Name,
			Level:      level,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	generation.AssignSortOrders(nodes)

	// Convert activities through the defaults cascade.
	var defaults generation.ActivityDefaultsInput
	if schema.Defaults != nil {
		defaults = generation.ActivityDefaultsInput{
			Type:         schema.Defaults.ActivityType,
			Duration:     schema.Defaults.Duration,
			DurationUnit: normalizeUnit(schema.Defaults.DurationUnit),
		}
	}

	activities := make([]*domain.Activity, 0, len(schema.Activities))
	for _, a := range schema.Activities {
		realID := uuid.New().String()
		refMap[a.Ref] = realID

		var wbsID *string
		if a.WbsRef != nil && *a.WbsRef != "" {
			wid, ok := refMap[*a.WbsRef]
			if !ok {
				return nil, fmt.Errorf("wbs_ref %q not found for activity %q", *a.WbsRef, a.Ref)
			}
			wbsID = &wid
		}

		resolved := generation.ResolveActivityDefaults(generation.ActivityDefaultsInput{
			Type:         a.Type,
			Duration:     a.Duration,
			DurationUnit: normalizeUnit(a.DurationUnit),
		}, defaults)

		activities = append(activities, &domain.Activity{
			ID:         realID,
			ScheduleID: sched.ID,
			WbsID:      wbsID,
			Code:       strings.ToUpper(a.Code),
			Name:       a.Name,
			Type:       resolved.Type,
			Duration:   resolved.Duration,
			Unit:       resolved.DurationUnit,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	// Convert explicit relationships, then fold in the chained groups.
	// An inferred link that duplicates an explicit one is dropped.
	seen := make(map[string]bool)
	relationships := make([]*domain.Relationship, 0, len(schema.Relationships))
	for _, r := range schema.Relationships {
		predID, ok := refMap[r.PredecessorRef]
		if !ok {
			return nil, fmt.Errorf("predecessor_ref %q not found", r.PredecessorRef)
		}
		succID, ok := refMap[r.SuccessorRef]
		if !ok {
			return nil, fmt.Errorf("successor_ref %q not found", r.SuccessorRef)
		}

		relType, err := domain.ParseRelationshipType(r.Type)
		if err != nil {
			return nil, fmt.Errorf("relationship %s -> %s: %w", r.PredecessorRef, r.SuccessorRef, err)
		}
		lagUnit, err := domain.ParseDurationUnit(r.LagUnit)
		if err != nil {
			return nil, fmt.Errorf("relationship %s -> %s: %w", r.PredecessorRef, r.SuccessorRef, err)
		}

		relationships = append(relationships, &domain.Relationship{
			ID:            uuid.New().String(),
			ScheduleID:    sched.ID,
			PredecessorID: predID,
			SuccessorID:   succID,
			Type:          relType,
			Lag:           domain.FirstFloat(0, r.Lag),
			LagUnit:       lagUnit,
			CreatedAt:     now,
		})
		seen[relKey(predID, succID, relType)] = true
	}

	for _, inferred := range chainRelationships(schema, refMap) {
		key := relKey(inferred.PredecessorID, inferred.SuccessorID, inferred.Type)
		if seen[key] {
			continue
		}
		seen[key] = true
		rel := inferred
		rel.ID = uuid.New().String()
		rel.ScheduleID = sched.ID
		rel.CreatedAt = now
		relationships = append(relationships, &rel)
	}

	// Convert resources and assignments.
	resources := make([]*domain.Resource, 0, len(schema.Resources))
	for _, r := range schema.Resources {
		realID := uuid.New().String()
		refMap[r.Ref] = realID

		unitLabel := r.UnitLabel
		if unitLabel == "" {
			unitLabel = "hours"
		}
		resources = append(resources, &domain.Resource{
			ID:         realID,
			ScheduleID: sched.ID,
			Code:       strings.ToUpper(r.Code),
			Name:       r.Name,
			UnitLabel:  unitLabel,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	assignments := make([]*domain.ResourceAssignment, 0, len(schema.Assignments))
	for _, a := range schema.Assignments {
		actID, ok := refMap[a.ActivityRef]
		if !ok {
			return nil, fmt.Errorf("activity_ref %q not found", a.ActivityRef)
		}
		resID, ok := refMap[a.ResourceRef]
		if !ok {
			return nil, fmt.Errorf("resource_ref %q not found", a.ResourceRef)
		}
		assignments = append(assignments, &domain.ResourceAssignment{
			ID:           uuid.New().String(),
			ActivityID:   actID,
			ResourceID:   resID,
			PlannedUnits: a.PlannedUnits,
			ActualUnits:  domain.FirstFloat(0, a.ActualUnits),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	return &GeneratedSchedule{
		Schedule:      sched,
		WbsNodes:      nodes,
		Activities:    activities,
		Relationships: relationships,
		Resources:     resources,
		Assignments:   assignments,
	}, nil
}

// chainRelationships builds the inferred finish-to-start links for every
// WBS group marked chain, in file order.
func chainRelationships(schema *ImportSchema, refMap map[string]string) []domain.Relationship {
	var candidates []generation.ChainCandidate
	for gi, n := range schema.Wbs {
		if !n.Chain {
			continue
		}
		pos := 0
		for _, a := range schema.Activities {
			if a.WbsRef == nil || *a.WbsRef != n.Ref {
				continue
			}
			candidates = append(candidates, generation.ChainCandidate{
				ActivityID: refMap[a.Ref],
				GroupOrder: gi,
				Pos:        pos,
			})
			pos++
		}
	}
	return generation.InferChainRelationships(candidates)
}

func relKey(predID, succID string, relType domain.RelationshipType) string {
	return predID + "\x00" + succID + "\x00" + string(relType)
}

func normalizeUnit(s string) string {
	if s == "" {
		return ""
	}
	u, err := domain.ParseDurationUnit(s)
	if err != nil {
		return s
	}
	return string(u)
}
