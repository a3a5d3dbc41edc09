package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akarolczak/critpath/internal/domain"
	"github.com/akarolczak/critpath/internal/repository"
	"github.com/google/uuid"
)

type scheduleService struct {
	schedules repository.ScheduleRepo
}

func NewScheduleService(schedules repository.ScheduleRepo) ScheduleService {
	return &scheduleService{schedules: schedules}
}

func (s *scheduleService) Create(ctx context.Context, sched *domain.Schedule) error {
	if sched.ID == "" {
		sched.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	sched.CreatedAt = now
	sched.UpdatedAt = now
	if sched.Status == "" {
		sched.Status = domain.ScheduleDraft
	}
	if sched.WorkingDays == "" {
		sched.WorkingDays = domain.DefaultWorkingDays
	}
	sched.NeedsRecompute = true

	if err := sched.ValidateCode(); err != nil {
		return err
	}
	if err := sched.ValidateWorkingDays(); err != nil {
		return err
	}
	if sched.StartDate.IsZero() {
		return fmt.Errorf("schedule start date is required")
	}
	if sched.EndDate != nil && !sched.EndDate.After(sched.StartDate) {
		return fmt.Errorf("schedule end date %s must be after start date %s",
			sched.EndDate.Format("2006-01-02"), sched.StartDate.Format("2006-01-02"))
	}

	existing, err := s.schedules.GetByCode(ctx, sched.Code)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if existing != nil {
		return fmt.Errorf("schedule code %q already exists", sched.Code)
	}

	return s.schedules.Create(ctx, sched)
}

func (s *scheduleService) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	return s.schedules.GetByID(ctx, id)
}

func (s *scheduleService) GetByCode(ctx context.Context, code string) (*domain.Schedule, error) {
	return s.schedules.GetByCode(ctx, code)
}

func (s *scheduleService) ListByIDPrefix(ctx context.Context, prefix string) ([]*domain.Schedule, error) {
	return s.schedules.ListByIDPrefix(ctx, prefix)
}

func (s *scheduleService) List(ctx context.Context, includeArchived bool) ([]*domain.Schedule, error) {
	return s.schedules.List(ctx, includeArchived)
}

// Update persists user-edited schedule fields. When a field the scheduler
// reads has changed, the schedule is marked for recompute.
func (s *scheduleService) Update(ctx context.Context, sched *domain.Schedule) error {
	current, err := s.schedules.GetByID(ctx, sched.ID)
	if err != nil {
		return err
	}
	if err := sched.ValidateCode(); err != nil {
		return err
	}
	if err := sched.ValidateWorkingDays(); err != nil {
		return err
	}
	if sched.EndDate != nil && !sched.EndDate.After(sched.StartDate) {
		return fmt.Errorf("schedule end date %s must be after start date %s",
			sched.EndDate.Format("2006-01-02"), sched.StartDate.Format("2006-01-02"))
	}

	sched.UpdatedAt = time.Now().UTC()
	if err := s.schedules.Update(ctx, sched); err != nil {
		return err
	}
	if schedulerInputsChanged(current, sched) {
		return s.schedules.MarkDirty(ctx, sched.ID)
	}
	return nil
}

func (s *scheduleService) UpdateCalendar(ctx context.Context, id, workingDays string, holidays []time.Time) error {
	sched, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := ensureEditable(sched); err != nil {
		return err
	}

	sched.WorkingDays = workingDays
	sched.Holidays = holidays
	if err := sched.ValidateWorkingDays(); err != nil {
		return err
	}

	sched.UpdatedAt = time.Now().UTC()
	if err := s.schedules.Update(ctx, sched); err != nil {
		return err
	}
	return s.schedules.MarkDirty(ctx, id)
}

func (s *scheduleService) Activate(ctx context.Context, id string) error {
	return s.transition(ctx, id, (*domain.Schedule).Activate)
}

func (s *scheduleService) Complete(ctx context.Context, id string) error {
	return s.transition(ctx, id, (*domain.Schedule).Complete)
}

func (s *scheduleService) Archive(ctx context.Context, id string) error {
	return s.transition(ctx, id, (*domain.Schedule).Archive)
}

func (s *scheduleService) Unarchive(ctx context.Context, id string) error {
	return s.transition(ctx, id, (*domain.Schedule).Unarchive)
}

func (s *scheduleService) Delete(ctx context.Context, id string, force bool) error {
	sched, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !force && sched.Status != domain.ScheduleArchived {
		return fmt.Errorf("schedule %s must be archived before deletion (use --force to override)", sched.DisplayID())
	}
	return s.schedules.Delete(ctx, id)
}

func (s *scheduleService) transition(ctx context.Context, id string, move func(*domain.Schedule, time.Time) error) error {
	sched, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := move(sched, time.Now().UTC()); err != nil {
		return err
	}
	return s.schedules.Update(ctx, sched)
}

// schedulerInputsChanged reports whether an update touched a field that
// feeds the forward/backward pass.
func schedulerInputsChanged(old, new *domain.Schedule) bool {
	if !old.StartDate.Equal(new.StartDate) {
		return true
	}
	if (old.EndDate == nil) != (new.EndDate == nil) {
		return true
	}
	if old.EndDate != nil && new.EndDate != nil && !old.EndDate.Equal(*new.EndDate) {
		return true
	}
	if old.WorkingDays != new.WorkingDays {
		return true
	}
	if len(old.Holidays) != len(new.Holidays) {
		return true
	}
	for i := range old.Holidays {
		if !old.Holidays[i].Equal(new.Holidays[i]) {
			return true
		}
	}
	return false
}
