package repository

import (
	"context"
	"errors"
	"time"

	"github.com/akarolczak/critpath/internal/domain"
)

// ErrNotFound is returned by lookups that match no row. Callers test for it
// with errors.Is.
var ErrNotFound = errors.New("not found")

type ScheduleRepo interface {
	Create(ctx context.Context, s *domain.Schedule) error
	GetByID(ctx context.Context, id string) (*domain.Schedule, error)
	GetByCode(ctx context.Context, code string) (*domain.Schedule, error)
	ListByIDPrefix(ctx context.Context, prefix string) ([]*domain.Schedule, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Schedule, error)
	Update(ctx context.Context, s *domain.Schedule) error
	MarkDirty(ctx context.Context, id string) error
	MarkComputed(ctx context.Context, id string, computedAt time.Time, fingerprint string) error
	Delete(ctx context.Context, id string) error
}

type WbsNodeRepo interface {
	Create(ctx context.Context, n *domain.WbsNode) error
	GetByID(ctx context.Context, id string) (*domain.WbsNode, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]*domain.WbsNode, error)
	ListChildren(ctx context.Context, parentID string) ([]*domain.WbsNode, error)
	Update(ctx context.Context, n *domain.WbsNode) error
	Delete(ctx context.Context, id string) error
}

type ActivityRepo interface {
	Create(ctx context.Context, a *domain.Activity) error
	GetByID(ctx context.Context, id string) (*domain.Activity, error)
	GetByCode(ctx context.Context, scheduleID, code string) (*domain.Activity, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]*domain.Activity, error)
	ListByWbs(ctx context.Context, wbsID string) ([]*domain.Activity, error)
	Update(ctx context.Context, a *domain.Activity) error
	// UpdateComputed persists only the scheduler outputs: planned and late
	// dates, total float, critical flag.
	UpdateComputed(ctx context.Context, a *domain.Activity) error
	ClearComputed(ctx context.Context, scheduleID string) error
	Delete(ctx context.Context, id string) error
}

type RelationshipRepo interface {
	Create(ctx context.Context, rel *domain.Relationship) error
	GetByID(ctx context.Context, id string) (*domain.Relationship, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]*domain.Relationship, error)
	ListByActivity(ctx context.Context, activityID string) ([]*domain.Relationship, error)
	Delete(ctx context.Context, id string) error
	DeleteBetween(ctx context.Context, predecessorID, successorID string) error
}

type ResourceRepo interface {
	Create(ctx context.Context, res *domain.Resource) error
	GetByID(ctx context.Context, id string) (*domain.Resource, error)
	GetByCode(ctx context.Context, scheduleID, code string) (*domain.Resource, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]*domain.Resource, error)
	Update(ctx context.Context, res *domain.Resource) error
	Delete(ctx context.Context, id string) error
}

type AssignmentRepo interface {
	// Upsert inserts the assignment or, when the (activity, resource) pair
	// already exists, replaces its planned and actual units.
	Upsert(ctx context.Context, a *domain.ResourceAssignment) error
	Get(ctx context.Context, activityID, resourceID string) (*domain.ResourceAssignment, error)
	ListByActivity(ctx context.Context, activityID string) ([]*domain.ResourceAssignment, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]*domain.ResourceAssignment, error)
	Delete(ctx context.Context, activityID, resourceID string) error
}
