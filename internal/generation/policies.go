// Package generation holds the pure policies applied when building schedule
// entities from an import file: the defaults cascade for activities, chain
// inference, sibling ordering, and date parsing. Everything here is
// side-effect free so the importer and its tests can drive it directly.
package generation

import (
	"fmt"
	"sort"
	"time"

	"github.com/akarolczak/critpath/internal/domain"
)

const dateLayout = "2006-01-02"

// ActivityDefaultsInput carries the activity fields that participate in the
// defaults cascade. Empty strings and nil pointers mean "not set".
type ActivityDefaultsInput struct {
	Type         string
	Duration     *float64
	DurationUnit string
}

// ResolvedActivityDefaults is the outcome of the cascade, ready to copy
// onto a domain.Activity.
type ResolvedActivityDefaults struct {
	Type         domain.ActivityType
	Duration     float64
	DurationUnit domain.DurationUnit
}

// ResolveActivityDefaults applies the cascade: activity > defaults block >
// hardcoded (task, 1, days). A milestone never inherits the defaults-block
// duration; it stays at zero unless the activity sets one explicitly, which
// validation has already rejected.
func ResolveActivityDefaults(item, defaults ActivityDefaultsInput) ResolvedActivityDefaults {
	resolved := ResolvedActivityDefaults{
		Type: domain.ActivityType(domain.FirstNonEmpty(item.Type, defaults.Type, string(domain.ActivityTask))),
		DurationUnit: domain.DurationUnit(domain.FirstNonEmpty(
			item.DurationUnit,
			defaults.DurationUnit,
			string(domain.UnitDays),
		)),
	}
	if resolved.Type == domain.ActivityMilestone {
		resolved.Duration = domain.FirstFloat(0, item.Duration)
	} else {
		resolved.Duration = domain.FirstFloat(1, item.Duration, defaults.Duration)
	}
	return resolved
}

// ChainCandidate is one activity of a chained WBS group, identified by the
// group's position in the import file and the activity's position inside
// the group.
type ChainCandidate struct {
	ActivityID string
	GroupOrder int
	Pos        int
}

// InferChainRelationships links consecutive candidates of each group with a
// zero-lag finish-to-start relationship. Candidates are ordered by group
// and position first; groups never link to each other.
func InferChainRelationships(candidates []ChainCandidate) []domain.Relationship {
	if len(candidates) < 2 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].GroupOrder != candidates[j].GroupOrder {
			return candidates[i].GroupOrder < candidates[j].GroupOrder
		}
		return candidates[i].Pos < candidates[j].Pos
	})

	rels := make([]domain.Relationship, 0, len(candidates)-1)
	for i := 0; i < len(candidates)-1; i++ {
		if candidates[i].GroupOrder != candidates[i+1].GroupOrder {
			continue
		}
		predID := candidates[i].ActivityID
		succID := candidates[i+1].ActivityID
		if predID == "" || succID == "" || predID == succID {
			continue
		}
		rels = append(rels, domain.Relationship{
			PredecessorID: predID,
			SuccessorID:   succID,
			Type:          domain.FinishToStart,
			Lag:           0,
			LagUnit:       domain.UnitDays,
		})
	}
	return rels
}

// AssignSortOrders numbers WBS nodes per parent in list order, starting at
// 1, so the tree renders in the order the file wrote it.
func AssignSortOrders(nodes []*domain.WbsNode) {
	next := make(map[string]int, len(nodes))
	for _, node := range nodes {
		parent := ""
		if node.ParentID != nil {
			parent = *node.ParentID
		}
		next[parent]++
		node.SortOrder = next[parent]
	}
}

// ParseRequiredDate parses a required YYYY-MM-DD date with field-aware errors.
func ParseRequiredDate(value, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid date format %q (expected YYYY-MM-DD)", field, value)
	}
	return t, nil
}

// ParseOptionalDate parses an optional YYYY-MM-DD date with field-aware errors.
func ParseOptionalDate(value *string, field string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := ParseRequiredDate(*value, field)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
