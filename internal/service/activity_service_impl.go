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

type activityService struct {
	schedules  repository.ScheduleRepo
	nodes      repository.WbsNodeRepo
	activities repository.ActivityRepo
}

func NewActivityService(schedules repository.ScheduleRepo, nodes repository.WbsNodeRepo, activities repository.ActivityRepo) ActivityService {
	return &activityService{schedules: schedules, nodes: nodes, activities: activities}
}

func (s *activityService) Create(ctx context.Context, a *domain.Activity) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Type == "" {
		a.Type = domain.ActivityTask
	}
	if a.Unit == "" {
		a.Unit = domain.UnitDays
	}
	a.Code = strings.ToUpper(a.Code)

	if a.Name == "" {
		return fmt.Errorf("activity name is required")
	}
	if a.Code == "" {
		return fmt.Errorf("activity code is required")
	}
	if !domain.ValidActivityTypes[string(a.Type)] {
		return fmt.Errorf("invalid activity type %q", a.Type)
	}
	if err := a.Validate(); err != nil {
		return err
	}

	sched, err := s.schedules.GetByID(ctx, a.ScheduleID)
	if err != nil {
		return err
	}
	if err := ensureEditable(sched); err != nil {
		return err
	}
	if a.WbsID != nil {
		node, err := s.nodes.GetByID(ctx, *a.WbsID)
		if err != nil {
			return fmt.Errorf("wbs node %s: %w", *a.WbsID, err)
		}
		if node.ScheduleID != a.ScheduleID {
			return fmt.Errorf("wbs node %s belongs to a different schedule", node.Code)
		}
	}

	existing, err := s.activities.GetByCode(ctx, a.ScheduleID, a.Code)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if existing != nil {
		return fmt.Errorf("activity code %q already exists in schedule %s", a.Code, sched.DisplayID())
	}

	if err := s.activities.Create(ctx, a); err != nil {
		return err
	}
	return s.schedules.MarkDirty(ctx, a.ScheduleID)
}

func (s *activityService) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	return s.activities.GetByID(ctx, id)
}

func (s *activityService) GetByCode(ctx context.Context, scheduleID, code string) (*domain.Activity, error) {
	return s.activities.GetByCode(ctx, scheduleID, strings.ToUpper(code))
}

func (s *activityService) ListBySchedule(ctx context.Context, scheduleID string) ([]*domain.Activity, error) {
	return s.activities.ListBySchedule(ctx, scheduleID)
}

// Update persists user-edited fields. When the edit touches a field the
// scheduler reads, the schedule is marked for recompute.
func (s *activityService) Update(ctx context.Context, a *domain.Activity) error {
	current, err := s.activities.GetByID(ctx, a.ID)
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

	a.ScheduleID = current.ScheduleID
	a.Code = strings.ToUpper(a.Code)
	if a.Name == "" {
		return fmt.Errorf("activity name is required")
	}
	if !domain.ValidActivityTypes[string(a.Type)] {
		return fmt.Errorf("invalid activity type %q", a.Type)
	}
	if err := a.Validate(); err != nil {
		return err
	}
	if a.WbsID != nil {
		node, err := s.nodes.GetByID(ctx, *a.WbsID)
		if err != nil {
			return fmt.Errorf("wbs node %s: %w", *a.WbsID, err)
		}
		if node.ScheduleID != a.ScheduleID {
			return fmt.Errorf("wbs node %s belongs to a different schedule", node.Code)
		}
	}
	if a.Code != current.Code {
		existing, err := s.activities.GetByCode(ctx, a.ScheduleID, a.Code)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if existing != nil && existing.ID != a.ID {
			return fmt.Errorf("activity code %q already exists in schedule %s", a.Code, sched.DisplayID())
		}
	}

	a.UpdatedAt = time.Now().UTC()
	if err := s.activities.Update(ctx, a); err != nil {
		return err
	}
	if activityInputsChanged(current, a) {
		return s.schedules.MarkDirty(ctx, a.ScheduleID)
	}
	return nil
}

func (s *activityService) RecordStart(ctx context.Context, id string, at time.Time) error {
	a, err := s.activities.GetByID(ctx, id)
	if err != nil {
		return err
	}
	a.RecordStart(at, time.Now().UTC())
	return s.activities.Update(ctx, a)
}

func (s *activityService) RecordFinish(ctx context.Context, id string, at time.Time) error {
	a, err := s.activities.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := a.RecordFinish(at, time.Now().UTC()); err != nil {
		return err
	}
	return s.activities.Update(ctx, a)
}

func (s *activityService) SetProgress(ctx context.Context, id string, pct float64) error {
	a, err := s.activities.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := a.SetProgress(pct, time.Now().UTC()); err != nil {
		return err
	}
	return s.activities.Update(ctx, a)
}

func (s *activityService) Delete(ctx context.Context, id string) error {
	a, err := s.activities.GetByID(ctx, id)
	if err != nil {
		return err
	}
	sched, err := s.schedules.GetByID(ctx, a.ScheduleID)
	if err != nil {
		return err
	}
	if err := ensureEditable(sched); err != nil {
		return err
	}
	if err := s.activities.Delete(ctx, id); err != nil {
		return err
	}
	return s.schedules.MarkDirty(ctx, a.ScheduleID)
}

// activityInputsChanged reports whether an update touched a field that feeds
// the forward/backward pass. Progress and naming do not.
func activityInputsChanged(old, new *domain.Activity) bool {
	if old.Type != new.Type || old.Duration != new.Duration || old.Unit != new.Unit {
		return true
	}
	if (old.WbsID == nil) != (new.WbsID == nil) {
		return true
	}
	if old.WbsID != nil && new.WbsID != nil && *old.WbsID != *new.WbsID {
		return true
	}
	return false
}
