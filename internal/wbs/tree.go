package wbs

import (
	"fmt"
	"sort"

	"github.com/akarolczak/critpath/internal/domain"
)

// Tree is an indexed WBS hierarchy for a single schedule. It is built once
// from the flat node list and read concurrently after that; no method
// mutates shared state.
type Tree struct {
	nodes    map[string]*domain.WbsNode
	children map[string][]*domain.WbsNode
	roots    []*domain.WbsNode
}

// Build indexes the flat node list into a tree. It fails with a
// DanglingReferenceError when a parent_id points nowhere, with a
// WbsCycleError when a parent chain loops, and with a plain error when the
// stored levels disagree with the actual depth (roots are level 1, children
// their parent plus one). The WBS never constrains scheduling; these checks
// only protect rollups and rendering.
func Build(nodes []*domain.WbsNode) (*Tree, error) {
	t := &Tree{
		nodes:    make(map[string]*domain.WbsNode, len(nodes)),
		children: make(map[string][]*domain.WbsNode),
	}
	for _, n := range nodes {
		if _, dup := t.nodes[n.ID]; dup {
			return nil, fmt.Errorf("duplicate wbs node id %s", n.ID)
		}
		t.nodes[n.ID] = n
	}

	for _, n := range nodes {
		if n.ParentID == nil {
			t.roots = append(t.roots, n)
			continue
		}
		if _, ok := t.nodes[*n.ParentID]; !ok {
			return nil, domain.DanglingReferenceError{Kind: "wbs node", RefID: *n.ParentID, Via: "wbs node " + n.Code}
		}
		t.children[*n.ParentID] = append(t.children[*n.ParentID], n)
	}

	if cycle := t.parentCycle(); len(cycle) > 0 {
		return nil, domain.WbsCycleError{Cycle: cycle}
	}

	sortSiblings(t.roots)
	for _, kids := range t.children {
		sortSiblings(kids)
	}

	if err := t.verifyLevels(); err != nil {
		return nil, err
	}
	return t, nil
}

// sortSiblings orders nodes by sort_order, then code, then id so every walk
// over the tree is reproducible.
func sortSiblings(nodes []*domain.WbsNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		if nodes[i].Code != nodes[j].Code {
			return nodes[i].Code < nodes[j].Code
		}
		return nodes[i].ID < nodes[j].ID
	})
}

// parentCycle walks every parent chain. A chain longer than the node count
// must revisit a node; the revisited segment is returned with the starting
// node repeated at the end, e.g. ["A", "B", "A"].
func (t *Tree) parentCycle() []string {
	ids := make([]string, 0, len(t.nodes))
	for id := range t.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	cleared := make(map[string]bool, len(t.nodes))
	for _, id := range ids {
		if cleared[id] {
			continue
		}
		seen := make(map[string]int)
		var path []string
		cur := t.nodes[id]
		for cur != nil {
			if at, ok := seen[cur.ID]; ok {
				cycle := append([]string{}, path[at:]...)
				return append(cycle, cur.ID)
			}
			if cleared[cur.ID] {
				break
			}
			seen[cur.ID] = len(path)
			path = append(path, cur.ID)
			if cur.ParentID == nil {
				break
			}
			cur = t.nodes[*cur.ParentID]
		}
		for _, pid := range path {
			cleared[pid] = true
		}
	}
	return nil
}

// verifyLevels checks stored levels against the actual tree depth.
func (t *Tree) verifyLevels() error {
	var check func(n *domain.WbsNode, depth int) error
	check = func(n *domain.WbsNode, depth int) error {
		if n.Level != depth {
			return fmt.Errorf("wbs node %s has level %d, expected %d from its position", n.Code, n.Level, depth)
		}
		for _, child := range t.children[n.ID] {
			if err := check(child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	for _, root := range t.roots {
		if err := check(root, 1); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node looks up a node by id.
func (t *Tree) Node(id string) (*domain.WbsNode, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Roots returns the top-level nodes in sibling order.
func (t *Tree) Roots() []*domain.WbsNode {
	return append([]*domain.WbsNode{}, t.roots...)
}

// Children returns the direct children of id in sibling order.
func (t *Tree) Children(id string) []*domain.WbsNode {
	return append([]*domain.WbsNode{}, t.children[id]...)
}

// RollupOrder returns every node with children preceding their parents
// (post-order), so a single pass can aggregate child totals into parents.
// The slice is freshly built on every call.
func (t *Tree) RollupOrder() []*domain.WbsNode {
	out := make([]*domain.WbsNode, 0, len(t.nodes))
	var walk func(n *domain.WbsNode)
	walk = func(n *domain.WbsNode) {
		for _, child := range t.children[n.ID] {
			walk(child)
		}
		out = append(out, n)
	}
	for _, root := range t.roots {
		walk(root)
	}
	return out
}

// PreOrder returns every node parent-first in sibling order, the shape
// tree rendering wants.
func (t *Tree) PreOrder() []*domain.WbsNode {
	out := make([]*domain.WbsNode, 0, len(t.nodes))
	var walk func(n *domain.WbsNode)
	walk = func(n *domain.WbsNode) {
		out = append(out, n)
		for _, child := range t.children[n.ID] {
			walk(child)
		}
	}
	for _, root := range t.roots {
		walk(root)
	}
	return out
}

// Subtree returns id's node and every descendant, parent-first.
func (t *Tree) Subtree(id string) ([]*domain.WbsNode, error) {
	root, ok := t.nodes[id]
	if !ok {
		return nil, domain.DanglingReferenceError{Kind: "wbs node", RefID: id}
	}
	out := []*domain.WbsNode{root}
	var walk func(n *domain.WbsNode)
	walk = func(n *domain.WbsNode) {
		for _, child := range t.children[n.ID] {
			out = append(out, child)
			walk(child)
		}
	}
	walk(root)
	return out, nil
}
