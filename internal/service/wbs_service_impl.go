package service

import (
	"context"
	"fmt"
	"time"

	"github.com/akarolczak/critpath/internal/domain"
	"github.com/akarolczak/critpath/internal/repository"
	"github.com/google/uuid"
)

type wbsService struct {
	schedules  repository.ScheduleRepo
	nodes      repository.WbsNodeRepo
	activities repository.ActivityRepo
}

func NewWbsService(schedules repository.ScheduleRepo, nodes repository.WbsNodeRepo, activities repository.ActivityRepo) WbsService {
	return &wbsService{schedules: schedules, nodes: nodes, activities: activities}
}

func (s *wbsService) Create(ctx context.Context, n *domain.WbsNode) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	if n.Name == "" {
		return fmt.Errorf("wbs node name is required")
	}
	sched, err := s.schedules.GetByID(ctx, n.ScheduleID)
	if err != nil {
		return err
	}
	if err := ensureEditable(sched); err != nil {
		return err
	}

	if n.ParentID != nil {
		parent, err := s.nodes.GetByID(ctx, *n.ParentID)
		if err != nil {
			return fmt.Errorf("parent %s: %w", *n.ParentID, err)
		}
		if parent.ScheduleID != n.ScheduleID {
			return fmt.Errorf("parent wbs node %s belongs to a different schedule", parent.Code)
		}
		n.Level = parent.Level + 1
	} else {
		n.Level = 1
	}

	if n.SortOrder <= 0 {
		order, err := s.nextSortOrder(ctx, n.ScheduleID, n.ParentID, "")
		if err != nil {
			return err
		}
		n.SortOrder = order
	}

	if err := s.nodes.Create(ctx, n); err != nil {
		return err
	}
	return s.schedules.MarkDirty(ctx, n.ScheduleID)
}

func (s *wbsService) GetByID(ctx context.Context, id string) (*domain.WbsNode, error) {
	return s.nodes.GetByID(ctx, id)
}

func (s *wbsService) ListBySchedule(ctx context.Context, scheduleID string) ([]*domain.WbsNode, error) {
	return s.nodes.ListBySchedule(ctx, scheduleID)
}

// Update edits name, code and sort order. Parent and level come from the
// stored node; re-parenting goes through Move.
func (s *wbsService) Update(ctx context.Context, n *domain.WbsNode) error {
	current, err := s.nodes.GetByID(ctx, n.ID)
	if err != nil {
		return err
	}
	sched, err := s.schedules.GetByID(ctx, current.ScheduleID)
	if err != nil {
		return err
	}
	if err := ensureEditable(sched); err != nil {
		return err
	}
	if n.Name == "" {
		return fmt.Errorf("wbs node name is required")
	}

	n.ScheduleID = current.ScheduleID
	n.ParentID = current.ParentID
	n.Level = current.Level
	n.UpdatedAt = time.Now().UTC()
	if err := s.nodes.Update(ctx, n); err != nil {
		return err
	}
	return s.schedules.MarkDirty(ctx, current.ScheduleID)
}

func (s *wbsService) Move(ctx context.Context, id string, newParentID *string) error {
	node, err := s.nodes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	sched, err := s.schedules.GetByID(ctx, node.ScheduleID)
	if err != nil {
		return err
	}
	if err := ensureEditable(sched); err != nil {
		return err
	}

	newLevel := 1
	if newParentID != nil {
		if *newParentID == id {
			return fmt.Errorf("wbs node %s cannot be its own parent", node.Code)
		}
		parent, err := s.nodes.GetByID(ctx, *newParentID)
		if err != nil {
			return fmt.Errorf("parent %s: %w", *newParentID, err)
		}
		if parent.ScheduleID != node.ScheduleID {
			return fmt.Errorf("parent wbs node %s belongs to a different schedule", parent.Code)
		}
		if err := s.rejectDescendantParent(ctx, node, parent); err != nil {
			return err
		}
		newLevel = parent.Level + 1
	}

	order, err := s.nextSortOrder(ctx, node.ScheduleID, newParentID, node.ID)
	if err != nil {
		return err
	}

	delta := newLevel - node.Level
	node.ParentID = newParentID
	node.Level = newLevel
	node.SortOrder = order
	node.UpdatedAt = time.Now().UTC()
	if err := s.nodes.Update(ctx, node); err != nil {
		return err
	}
	if delta != 0 {
		if err := s.relevelDescendants(ctx, node, delta); err != nil {
			return err
		}
	}
	return s.schedules.MarkDirty(ctx, node.ScheduleID)
}

func (s *wbsService) Delete(ctx context.Context, id string, force bool) error {
	node, err := s.nodes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	sched, err := s.schedules.GetByID(ctx, node.ScheduleID)
	if err != nil {
		return err
	}
	if err := ensureEditable(sched); err != nil {
		return err
	}

	children, err := s.nodes.ListChildren(ctx, id)
	if err != nil {
		return err
	}
	attached, err := s.activities.ListByWbs(ctx, id)
	if err != nil {
		return err
	}
	if !force && (len(children) > 0 || len(attached) > 0) {
		return fmt.Errorf("wbs node %s is not empty: %d children, %d attached activities (use --force to override)",
			node.Code, len(children), len(attached))
	}

	if err := s.nodes.Delete(ctx, id); err != nil {
		return err
	}
	return s.schedules.MarkDirty(ctx, node.ScheduleID)
}

// rejectDescendantParent walks from the candidate parent up to the root and
// fails when it passes through the node being moved.
func (s *wbsService) rejectDescendantParent(ctx context.Context, node, parent *domain.WbsNode) error {
	cursor := parent
	for {
		if cursor.ID == node.ID {
			return fmt.Errorf("cannot move wbs node %s under its own descendant %s", node.Code, parent.Code)
		}
		if cursor.ParentID == nil {
			return nil
		}
		next, err := s.nodes.GetByID(ctx, *cursor.ParentID)
		if err != nil {
			return err
		}
		cursor = next
	}
}

// relevelDescendants shifts every node below the moved one by the level
// delta the move introduced.
func (s *wbsService) relevelDescendants(ctx context.Context, root *domain.WbsNode, delta int) error {
	all, err := s.nodes.ListBySchedule(ctx, root.ScheduleID)
	if err != nil {
		return err
	}
	childrenOf := make(map[string][]*domain.WbsNode)
	for _, n := range all {
		if n.ParentID != nil {
			childrenOf[*n.ParentID] = append(childrenOf[*n.ParentID], n)
		}
	}

	now := time.Now().UTC()
	queue := append([]*domain.WbsNode(nil), childrenOf[root.ID]...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		n.Level += delta
		n.UpdatedAt = now
		if err := s.nodes.Update(ctx, n); err != nil {
			return err
		}
		queue = append(queue, childrenOf[n.ID]...)
	}
	return nil
}

func (s *wbsService) nextSortOrder(ctx context.Context, scheduleID string, parentID *string, excludeID string) (int, error) {
	var siblings []*domain.WbsNode
	if parentID != nil {
		children, err := s.nodes.ListChildren(ctx, *parentID)
		if err != nil {
			return 0, err
		}
		siblings = children
	} else {
		all, err := s.nodes.ListBySchedule(ctx, scheduleID)
		if err != nil {
			return 0, err
		}
		for _, n := range all {
			if n.IsRoot() {
				siblings = append(siblings, n)
			}
		}
	}
	count := 0
	for _, n := range siblings {
		if n.ID != excludeID {
			count++
		}
	}
	return count + 1, nil
}
