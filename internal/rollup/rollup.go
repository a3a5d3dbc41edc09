// Package rollup aggregates resource assignments over a loaded schedule:
// totals per activity and per resource, subtree sums over the WBS, and
// time-phased profiles bucketed by day or ISO week. Everything here is a
// pure read; storage and recompute state are the caller's problem.
package rollup

import (
	"fmt"
	"sort"

	"github.com/akarolczak/critpath/internal/calendar"
	"github.com/akarolczak/critpath/internal/domain"
	"github.com/akarolczak/critpath/internal/wbs"
)

// Input carries the loaded slices of one schedule. Tree is optional; without
// it the WBS section of the summary stays empty. A nil Calendar means the
// default five-day week.
type Input struct {
	Activities  []*domain.Activity
	Resources   []*domain.Resource
	Assignments []*domain.ResourceAssignment
	Tree        *wbs.Tree
	Calendar    *calendar.Calendar
}

// ResourceTotal is the planned and actual unit sum for one resource.
type ResourceTotal struct {
	ResourceID   string
	PlannedUnits float64
	ActualUnits  float64
}

// ActivityUsage is one activity's assignment totals, with a per-resource
// breakdown sorted by resource code.
type ActivityUsage struct {
	ActivityID   string
	PlannedUnits float64
	ActualUnits  float64
	ByResource   []ResourceTotal
}

// WbsUsage is the subtree sum for one WBS node: its own activities plus
// every descendant's.
type WbsUsage struct {
	NodeID       string
	PlannedUnits float64
	ActualUnits  float64
}

// Summary is the full aggregation. Activities and Resources cover every
// entity in the input, zero rows included, sorted by code. Wbs is in rollup
// order (children before parents) so parents already contain their subtrees.
type Summary struct {
	Activities   []ActivityUsage
	Resources    []ResourceTotal
	Wbs          []WbsUsage
	PlannedUnits float64
	ActualUnits  float64
}

// Aggregate sums assignments per activity, per resource, and per WBS
// subtree. It fails with a DanglingReferenceError when an assignment points
// at an unknown activity or resource, or when an activity's wbs_id is not in
// the tree.
func Aggregate(in Input) (*Summary, error) {
	ix, err := buildIndexes(in)
	if err != nil {
		return nil, err
	}
	if err := validateAssignments(ix, in.Assignments); err != nil {
		return nil, err
	}

	perActivity := make(map[string]map[string]*ResourceTotal)
	perResource := make(map[string]*ResourceTotal, len(in.Resources))
	for _, r := range in.Resources {
		perResource[r.ID] = &ResourceTotal{ResourceID: r.ID}
	}

	sum := &Summary{}
	for _, asg := range in.Assignments {
		byRes := perActivity[asg.ActivityID]
		if byRes == nil {
			byRes = make(map[string]*ResourceTotal)
			perActivity[asg.ActivityID] = byRes
		}
		rt := byRes[asg.ResourceID]
		if rt == nil {
			rt = &ResourceTotal{ResourceID: asg.ResourceID}
			byRes[asg.ResourceID] = rt
		}
		rt.PlannedUnits += asg.PlannedUnits
		rt.ActualUnits += asg.ActualUnits
		perResource[asg.ResourceID].PlannedUnits += asg.PlannedUnits
		perResource[asg.ResourceID].ActualUnits += asg.ActualUnits
		sum.PlannedUnits += asg.PlannedUnits
		sum.ActualUnits += asg.ActualUnits
	}

	acts := append([]*domain.Activity{}, in.Activities...)
	sort.Slice(acts, func(i, j int) bool {
		if acts[i].Code != acts[j].Code {
			return acts[i].Code < acts[j].Code
		}
		return acts[i].ID < acts[j].ID
	})
	for _, a := range acts {
		usage := ActivityUsage{ActivityID: a.ID}
		for _, rt := range perActivity[a.ID] {
			usage.PlannedUnits += rt.PlannedUnits
			usage.ActualUnits += rt.ActualUnits
		}
		usage.ByResource = sortedTotals(perActivity[a.ID], ix.resources)
		sum.Activities = append(sum.Activities, usage)
	}

	resources := append([]*domain.Resource{}, in.Resources...)
	sort.Slice(resources, func(i, j int) bool {
		if resources[i].Code != resources[j].Code {
			return resources[i].Code < resources[j].Code
		}
		return resources[i].ID < resources[j].ID
	})
	for _, r := range resources {
		sum.Resources = append(sum.Resources, *perResource[r.ID])
	}

	if in.Tree != nil {
		wbsUsage, err := rollupWbs(in.Tree, acts, perActivity)
		if err != nil {
			return nil, err
		}
		sum.Wbs = wbsUsage
	}
	return sum, nil
}

// rollupWbs sums activity usage into WBS nodes, then folds children into
// parents in a single pass over the rollup order.
func rollupWbs(tree *wbs.Tree, acts []*domain.Activity, perActivity map[string]map[string]*ResourceTotal) ([]WbsUsage, error) {
	direct := make(map[string]*WbsUsage, tree.Len())
	for _, a := range acts {
		if a.WbsID == nil {
			continue
		}
		if _, ok := tree.Node(*a.WbsID); !ok {
			return nil, domain.DanglingReferenceError{Kind: "wbs node", RefID: *a.WbsID, Via: "activity " + a.Code}
		}
		u := direct[*a.WbsID]
		if u == nil {
			u = &WbsUsage{NodeID: *a.WbsID}
			direct[*a.WbsID] = u
		}
		for _, rt := range perActivity[a.ID] {
			u.PlannedUnits += rt.PlannedUnits
			u.ActualUnits += rt.ActualUnits
		}
	}

	totals := make(map[string]WbsUsage, tree.Len())
	out := make([]WbsUsage, 0, tree.Len())
	for _, n := range tree.RollupOrder() {
		u := WbsUsage{NodeID: n.ID}
		if d := direct[n.ID]; d != nil {
			u.PlannedUnits += d.PlannedUnits
			u.ActualUnits += d.ActualUnits
		}
		for _, child := range tree.Children(n.ID) {
			u.PlannedUnits += totals[child.ID].PlannedUnits
			u.ActualUnits += totals[child.ID].ActualUnits
		}
		totals[n.ID] = u
		out = append(out, u)
	}
	return out, nil
}

type indexes struct {
	activities map[string]*domain.Activity
	resources  map[string]*domain.Resource
}

func buildIndexes(in Input) (*indexes, error) {
	ix := &indexes{
		activities: make(map[string]*domain.Activity, len(in.Activities)),
		resources:  make(map[string]*domain.Resource, len(in.Resources)),
	}
	for _, a := range in.Activities {
		if _, dup := ix.activities[a.ID]; dup {
			return nil, fmt.Errorf("duplicate activity id %s", a.ID)
		}
		ix.activities[a.ID] = a
	}
	for _, r := range in.Resources {
		if _, dup := ix.resources[r.ID]; dup {
			return nil, fmt.Errorf("duplicate resource id %s", r.ID)
		}
		ix.resources[r.ID] = r
	}
	return ix, nil
}

func validateAssignments(ix *indexes, assignments []*domain.ResourceAssignment) error {
	for _, asg := range assignments {
		if _, ok := ix.activities[asg.ActivityID]; !ok {
			return domain.DanglingReferenceError{Kind: "activity", RefID: asg.ActivityID, Via: "resource assignment " + asg.ID}
		}
		if _, ok := ix.resources[asg.ResourceID]; !ok {
			return domain.DanglingReferenceError{Kind: "resource", RefID: asg.ResourceID, Via: "resource assignment " + asg.ID}
		}
	}
	return nil
}

// sortedTotals flattens a per-resource map into a slice ordered by resource
// code, then id.
func sortedTotals(m map[string]*ResourceTotal, resources map[string]*domain.Resource) []ResourceTotal {
	if len(m) == 0 {
		return nil
	}
	out := make([]ResourceTotal, 0, len(m))
	for _, rt := range m {
		out = append(out, *rt)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := resources[out[i].ResourceID].Code, resources[out[j].ResourceID].Code
		if ci != cj {
			return ci < cj
		}
		return out[i].ResourceID < out[j].ResourceID
	})
	return out
}
