package network

import (
	"fmt"
	"sort"

	"github.com/akarolczak/critpath/internal/domain"
)

// Network is the precedence graph over one schedule's activities. Edges are
// the typed, lagged relationships; the WBS plays no part here.
type Network struct {
	activities map[string]*domain.Activity
	order      []*domain.Activity // sorted by code then id
	preds      map[string][]*domain.Relationship
	succs      map[string][]*domain.Relationship
}

// Build indexes activities and relationships into a Network. Every
// relationship endpoint must resolve to a loaded activity; unknown ids fail
// with DanglingReferenceError and self-links with the one-node
// CyclicDependencyError. Edge lists keep the input order, which repositories
// return sorted by creation time, so walks are reproducible.
func Build(activities []*domain.Activity, rels []*domain.Relationship) (*Network, error) {
	n := &Network{
		activities: make(map[string]*domain.Activity, len(activities)),
		preds:      make(map[string][]*domain.Relationship),
		succs:      make(map[string][]*domain.Relationship),
	}
	for _, a := range activities {
		if _, dup := n.activities[a.ID]; dup {
			return nil, fmt.Errorf("duplicate activity id %s", a.ID)
		}
		n.activities[a.ID] = a
		n.order = append(n.order, a)
	}
	sort.Slice(n.order, func(i, j int) bool {
		if n.order[i].Code != n.order[j].Code {
			return n.order[i].Code < n.order[j].Code
		}
		return n.order[i].ID < n.order[j].ID
	})

	for _, r := range rels {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		pred, ok := n.activities[r.PredecessorID]
		if !ok {
			return nil, domain.DanglingReferenceError{Kind: "activity", RefID: r.PredecessorID, Via: relVia(r)}
		}
		succ, ok := n.activities[r.SuccessorID]
		if !ok {
			return nil, domain.DanglingReferenceError{Kind: "activity", RefID: r.SuccessorID, Via: relVia(r)}
		}
		n.preds[succ.ID] = append(n.preds[succ.ID], r)
		n.succs[pred.ID] = append(n.succs[pred.ID], r)
	}
	return n, nil
}

func relVia(r *domain.Relationship) string {
	return fmt.Sprintf("relationship %s -> %s (%s)", r.PredecessorID, r.SuccessorID, r.Type)
}

// Len returns the number of activities.
func (n *Network) Len() int {
	return len(n.activities)
}

// Activity looks up an activity by id.
func (n *Network) Activity(id string) (*domain.Activity, bool) {
	a, ok := n.activities[id]
	return a, ok
}

// Activities returns all activities sorted by code then id.
func (n *Network) Activities() []*domain.Activity {
	return append([]*domain.Activity{}, n.order...)
}

// Predecessors returns the incoming relationships of id in input order.
func (n *Network) Predecessors(id string) []*domain.Relationship {
	return n.preds[id]
}

// Successors returns the outgoing relationships of id in input order.
func (n *Network) Successors(id string) []*domain.Relationship {
	return n.succs[id]
}

// Cycle returns a relationship cycle as activity ids in walk order with the
// starting id repeated at the end, e.g. ["A", "B", "C", "A"], or nil when
// the graph is acyclic. The DFS seeds from activities in code order and
// follows successor edges in input order, so the same graph always reports
// the same cycle.
func (n *Network) Cycle() []string {
	const (
		white = iota // unvisited
		gray         // on the current DFS stack
		black        // fully explored
	)
	state := make(map[string]int, len(n.activities))
	onStack := make(map[string]int)
	var stack []string
	var cycle []string

	var dfs func(id string)
	dfs = func(id string) {
		if len(cycle) > 0 {
			return
		}
		state[id] = gray
		onStack[id] = len(stack)
		stack = append(stack, id)

		for _, r := range n.succs[id] {
			if len(cycle) > 0 {
				return
			}
			next := r.SuccessorID
			switch state[next] {
			case white:
				dfs(next)
			case gray:
				at := onStack[next]
				cycle = append([]string{}, stack[at:]...)
				cycle = append(cycle, next)
				return
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, id)
		state[id] = black
	}

	for _, a := range n.order {
		if state[a.ID] == white {
			dfs(a.ID)
			if len(cycle) > 0 {
				return cycle
			}
		}
	}
	return nil
}

// TopologicalOrder returns the activities in dependency order using Kahn's
// algorithm with a ready queue kept sorted by code then id, so equal graphs
// produce identical orders. When edges remain after the queue drains the
// leftover activities are reported through UnscheduledPredecessorError;
// behind the cycle gate this is unreachable, but a scheduling walk must
// never silently drop activities.
func (n *Network) TopologicalOrder() ([]*domain.Activity, error) {
	indegree := make(map[string]int, len(n.activities))
	for _, a := range n.order {
		indegree[a.ID] = len(n.preds[a.ID])
	}

	var ready []*domain.Activity
	for _, a := range n.order {
		if indegree[a.ID] == 0 {
			ready = append(ready, a) // n.order is already sorted
		}
	}

	out := make([]*domain.Activity, 0, len(n.activities))
	for len(ready) > 0 {
		a := ready[0]
		ready = ready[1:]
		out = append(out, a)

		for _, r := range n.succs[a.ID] {
			indegree[r.SuccessorID]--
			if indegree[r.SuccessorID] == 0 {
				ready = insertSorted(ready, n.activities[r.SuccessorID])
			}
		}
	}

	if len(out) != len(n.activities) {
		var leftover []string
		for _, a := range n.order {
			if indegree[a.ID] > 0 {
				leftover = append(leftover, a.ID)
			}
		}
		return nil, domain.UnscheduledPredecessorError{IDs: leftover}
	}
	return out, nil
}

// insertSorted places a into the ready queue keeping (code, id) order.
func insertSorted(queue []*domain.Activity, a *domain.Activity) []*domain.Activity {
	at := sort.Search(len(queue), func(i int) bool {
		if queue[i].Code != a.Code {
			return queue[i].Code > a.Code
		}
		return queue[i].ID > a.ID
	})
	queue = append(queue, nil)
	copy(queue[at+1:], queue[at:])
	queue[at] = a
	return queue
}
