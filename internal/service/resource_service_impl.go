package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akarolczak/critpath/internal/domain"
	"github.com/akarolczak/critpath/internal/repository"
	"github.com/google/uuid"
)

type resourceService struct {
	schedules   repository.ScheduleRepo
	activities  repository.ActivityRepo
	resources   repository.ResourceRepo
	assignments repository.AssignmentRepo
}

func NewResourceService(schedules repository.ScheduleRepo, activities repository.ActivityRepo, resources repository.ResourceRepo, assignments repository.AssignmentRepo) ResourceService {
	return &resourceService{schedules: schedules, activities: activities, resources: resources, assignments: assignments}
}

func (s *resourceService) Create(ctx context.Context, res *domain.Resource) error {
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	res.CreatedAt = now
	res.UpdatedAt = now
	res.Code = strings.ToUpper(res.Code)
	if res.UnitLabel == "" {
		res.UnitLabel = "hours"
	}

	if res.Code == "" {
		return fmt.Errorf("resource code is required")
	}
	if res.Name == "" {
		return fmt.Errorf("resource name is required")
	}
	if _, err := s.schedules.GetByID(ctx, res.ScheduleID); err != nil {
		return err
	}

	existing, err := s.resources.GetByCode(ctx, res.ScheduleID, res.Code)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if existing != nil {
		return fmt.Errorf("resource code %q already exists", res.Code)
	}

	return s.resources.Create(ctx, res)
}

func (s *resourceService) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	return s.resources.GetByID(ctx, id)
}

func (s *resourceService) GetByCode(ctx context.Context, scheduleID, code string) (*domain.Resource, error) {
	return s.resources.GetByCode(ctx, scheduleID, strings.ToUpper(code))
}

func (s *resourceService) ListBySchedule(ctx context.Context, scheduleID string) ([]*domain.Resource, error) {
	return s.resources.ListBySchedule(ctx, scheduleID)
}

func (s *resourceService) Update(ctx context.Context, res *domain.Resource) error {
	current, err := s.resources.GetByID(ctx, res.ID)
	if err != nil {
		return err
	}
	res.ScheduleID = current.ScheduleID
	res.Code = strings.ToUpper(res.Code)
	if res.Code == "" {
		return fmt.Errorf("resource code is required")
	}
	if res.Name == "" {
		return fmt.Errorf("resource name is required")
	}
	if res.Code != current.Code {
		existing, err := s.resources.GetByCode(ctx, res.ScheduleID, res.Code)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if existing != nil && existing.ID != res.ID {
			return fmt.Errorf("resource code %q already exists", res.Code)
		}
	}

	res.UpdatedAt = time.Now().UTC()
	return s.resources.Update(ctx, res)
}

func (s *resourceService) Delete(ctx context.Context, id string) error {
	if _, err := s.resources.GetByID(ctx, id); err != nil {
		return err
	}
	return s.resources.Delete(ctx, id)
}

// Assign books units of a resource against an activity. Repeating the pair
// replaces the booked quantities.
func (s *resourceService) Assign(ctx context.Context, activityID, resourceID string, plannedUnits, actualUnits float64) error {
	if plannedUnits < 0 {
		return fmt.Errorf("planned units %g must be >= 0", plannedUnits)
	}
	if actualUnits < 0 {
		return fmt.Errorf("actual units %g must be >= 0", actualUnits)
	}

	act, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		return fmt.Errorf("activity %s: %w", activityID, err)
	}
	res, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		return fmt.Errorf("resource %s: %w", resourceID, err)
	}
	if act.ScheduleID != res.ScheduleID {
		return fmt.Errorf("activity %s and resource %s belong to different schedules", act.DisplayID(), res.Code)
	}

	now := time.Now().UTC()
	a := &domain.ResourceAssignment{
		ID:           uuid.New().String(),
		ActivityID:   activityID,
		ResourceID:   resourceID,
		PlannedUnits: plannedUnits,
		ActualUnits:  actualUnits,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.assignments.Upsert(ctx, a)
}

func (s *resourceService) Unassign(ctx context.Context, activityID, resourceID string) error {
	if _, err := s.assignments.Get(ctx, activityID, resourceID); err != nil {
		return err
	}
	return s.assignments.Delete(ctx, activityID, resourceID)
}

func (s *resourceService) ListAssignmentsByActivity(ctx context.Context, activityID string) ([]*domain.ResourceAssignment, error) {
	return s.assignments.ListByActivity(ctx, activityID)
}
