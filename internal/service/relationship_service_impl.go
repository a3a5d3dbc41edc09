package service

import (
	"context"
	"fmt"
	"time"

	"github.com/akarolczak/critpath/internal/domain"
	"github.com/akarolczak/critpath/internal/network"
	"github.com/akarolczak/critpath/internal/repository"
	"github.com/google/uuid"
)

type relationshipService struct {
	schedules     repository.ScheduleRepo
	activities    repository.ActivityRepo
	relationships repository.RelationshipRepo
}

func NewRelationshipService(schedules repository.ScheduleRepo, activities repository.ActivityRepo, relationships repository.RelationshipRepo) RelationshipService {
	return &relationshipService{schedules: schedules, activities: activities, relationships: relationships}
}

// Create links two activities. The new edge is rejected when it would close
// a dependency cycle, so the stored graph stays schedulable at all times.
func (s *relationshipService) Create(ctx context.Context, rel *domain.Relationship) error {
	if rel.ID == "" {
		rel.ID = uuid.New().String()
	}
	rel.CreatedAt = time.Now().UTC()
	if rel.Type == "" {
		rel.Type = domain.FinishToStart
	}
	if rel.LagUnit == "" {
		rel.LagUnit = domain.UnitDays
	}
	if err := rel.Validate(); err != nil {
		return err
	}

	pred, err := s.activities.GetByID(ctx, rel.PredecessorID)
	if err != nil {
		return fmt.Errorf("predecessor %s: %w", rel.PredecessorID, err)
	}
	succ, err := s.activities.GetByID(ctx, rel.SuccessorID)
	if err != nil {
		return fmt.Errorf("successor %s: %w", rel.SuccessorID, err)
	}
	if pred.ScheduleID != succ.ScheduleID {
		return fmt.Errorf("activities %s and %s belong to different schedules", pred.DisplayID(), succ.DisplayID())
	}
	if rel.ScheduleID == "" {
		rel.ScheduleID = pred.ScheduleID
	} else if rel.ScheduleID != pred.ScheduleID {
		return fmt.Errorf("relationship schedule does not match activity schedule")
	}

	sched, err := s.schedules.GetByID(ctx, rel.ScheduleID)
	if err != nil {
		return err
	}
	if err := ensureEditable(sched); err != nil {
		return err
	}

	existing, err := s.relationships.ListByActivity(ctx, rel.PredecessorID)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.PredecessorID == rel.PredecessorID && e.SuccessorID == rel.SuccessorID && e.Type == rel.Type {
			return fmt.Errorf("%s relationship %s -> %s already exists", rel.Type, pred.DisplayID(), succ.DisplayID())
		}
	}

	if err := s.rejectCycle(ctx, rel); err != nil {
		return err
	}

	if err := s.relationships.Create(ctx, rel); err != nil {
		return err
	}
	return s.schedules.MarkDirty(ctx, rel.ScheduleID)
}

func (s *relationshipService) GetByID(ctx context.Context, id string) (*domain.Relationship, error) {
	return s.relationships.GetByID(ctx, id)
}

func (s *relationshipService) ListBySchedule(ctx context.Context, scheduleID string) ([]*domain.Relationship, error) {
	return s.relationships.ListBySchedule(ctx, scheduleID)
}

func (s *relationshipService) ListByActivity(ctx context.Context, activityID string) ([]*domain.Relationship, error) {
	return s.relationships.ListByActivity(ctx, activityID)
}

func (s *relationshipService) Delete(ctx context.Context, id string) error {
	rel, err := s.relationships.GetByID(ctx, id)
	if err != nil {
		return err
	}
	sched, err := s.schedules.GetByID(ctx, rel.ScheduleID)
	if err != nil {
		return err
	}
	if err := ensureEditable(sched); err != nil {
		return err
	}
	if err := s.relationships.Delete(ctx, id); err != nil {
		return err
	}
	return s.schedules.MarkDirty(ctx, rel.ScheduleID)
}

func (s *relationshipService) DeleteBetween(ctx context.Context, predecessorID, successorID string) error {
	pred, err := s.activities.GetByID(ctx, predecessorID)
	if err != nil {
		return fmt.Errorf("predecessor %s: %w", predecessorID, err)
	}
	sched, err := s.schedules.GetByID(ctx, pred.ScheduleID)
	if err != nil {
		return err
	}
	if err := ensureEditable(sched); err != nil {
		return err
	}
	if err := s.relationships.DeleteBetween(ctx, predecessorID, successorID); err != nil {
		return err
	}
	return s.schedules.MarkDirty(ctx, pred.ScheduleID)
}

// rejectCycle builds the schedule graph with the candidate edge folded in and
// fails with the cycle spelled out in activity codes.
func (s *relationshipService) rejectCycle(ctx context.Context, rel *domain.Relationship) error {
	acts, err := s.activities.ListBySchedule(ctx, rel.ScheduleID)
	if err != nil {
		return err
	}
	rels, err := s.relationships.ListBySchedule(ctx, rel.ScheduleID)
	if err != nil {
		return err
	}
	net, err := network.Build(acts, append(rels, rel))
	if err != nil {
		return err
	}
	cycle := net.Cycle()
	if cycle == nil {
		return nil
	}

	codes := make([]string, len(cycle))
	for i, id := range cycle {
		if a, ok := net.Activity(id); ok {
			codes[i] = a.DisplayID()
		} else {
			codes[i] = id
		}
	}
	return domain.CyclicDependencyError{Cycle: codes}
}
