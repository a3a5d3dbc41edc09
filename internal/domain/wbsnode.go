package domain

import "time"

type WbsNode struct {
	ID         string
	ScheduleID string
	ParentID   *string
	Code       string // outline code, e.g. "1.2.3"
	Name       string
	Level      int // root = 1, child = parent + 1
	SortOrder  int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsRoot reports whether the node sits at the top of its schedule's tree.
func (n *WbsNode) IsRoot() bool {
	return n.ParentID == nil
}
