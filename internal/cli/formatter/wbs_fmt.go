package formatter

import (
	"fmt"
	"sort"

	"github.com/akarolczak/critpath/internal/domain"
)

// FormatWbsTree renders a schedule's WBS nodes as a tree. activityCounts
// maps node IDs to how many activities sit directly under each node.
func FormatWbsTree(nodes []*domain.WbsNode, activityCounts map[string]int) string {
	if len(nodes) == 0 {
		return RenderBox("WBS", Dim("No WBS nodes yet"))
	}

	children := make(map[string][]*domain.WbsNode)
	var roots []*domain.WbsNode
	for _, n := range nodes {
		if n.ParentID == nil {
			roots = append(roots, n)
		} else {
			children[*n.ParentID] = append(children[*n.ParentID], n)
		}
	}

	var items []TreeItem
	var walk func(ns []*domain.WbsNode)
	walk = func(ns []*domain.WbsNode) {
		sort.Slice(ns, func(i, j int) bool {
			if ns[i].SortOrder != ns[j].SortOrder {
				return ns[i].SortOrder < ns[j].SortOrder
			}
			return ns[i].Code < ns[j].Code
		})
		for i, n := range ns {
			detail := ""
			switch c := activityCounts[n.ID]; {
			case c == 1:
				detail = "1 activity"
			case c > 1:
				detail = fmt.Sprintf("%d activities", c)
			}

			items = append(items, TreeItem{
				Code:   n.Code,
				Name:   n.Name,
				Level:  n.Level,
				IsLast: i == len(ns)-1 && len(children[n.ID]) == 0,
				Detail: detail,
			})
			walk(children[n.ID])
		}
	}
	walk(roots)

	return RenderBox("WBS", RenderTree(items))
}
