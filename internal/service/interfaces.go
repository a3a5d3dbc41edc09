package service

import (
	"context"
	"time"

	"github.com/akarolczak/critpath/internal/contract"
	"github.com/akarolczak/critpath/internal/domain"
	"github.com/akarolczak/critpath/internal/importer"
)

type ScheduleService interface {
	Create(ctx context.Context, s *domain.Schedule) error
	GetByID(ctx context.Context, id string) (*domain.Schedule, error)
	GetByCode(ctx context.Context, code string) (*domain.Schedule, error)
	// ListByIDPrefix returns the schedules whose ID starts with prefix,
	// archived ones included. Callers use it to resolve shortened IDs.
	ListByIDPrefix(ctx context.Context, prefix string) ([]*domain.Schedule, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Schedule, error)
	Update(ctx context.Context, s *domain.Schedule) error
	// UpdateCalendar swaps the working-day mask and holiday list and marks
	// the schedule for recompute.
	UpdateCalendar(ctx context.Context, id, workingDays string, holidays []time.Time) error
	Activate(ctx context.Context, id string) error
	Complete(ctx context.Context, id string) error
	Archive(ctx context.Context, id string) error
	Unarchive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string, force bool) error
}

type WbsService interface {
	Create(ctx context.Context, n *domain.WbsNode) error
	GetByID(ctx context.Context, id string) (*domain.WbsNode, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]*domain.WbsNode, error)
	Update(ctx context.Context, n *domain.WbsNode) error
	// Move reparents a node (nil means to the root) and re-levels its
	// subtree. Moving a node under its own descendant is rejected.
	Move(ctx context.Context, id string, newParentID *string) error
	// Delete removes a node. Child nodes go with it; its activities stay
	// behind unparented. Without force a node that still has children or
	// activities is not deleted.
	Delete(ctx context.Context, id string, force bool) error
}

type ActivityService interface {
	Create(ctx context.Context, a *domain.Activity) error
	GetByID(ctx context.Context, id string) (*domain.Activity, error)
	GetByCode(ctx context.Context, scheduleID, code string) (*domain.Activity, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]*domain.Activity, error)
	Update(ctx context.Context, a *domain.Activity) error
	RecordStart(ctx context.Context, id string, at time.Time) error
	RecordFinish(ctx context.Context, id string, at time.Time) error
	SetProgress(ctx context.Context, id string, pct float64) error
	Delete(ctx context.Context, id string) error
}

type RelationshipService interface {
	Create(ctx context.Context, rel *domain.Relationship) error
	GetByID(ctx context.Context, id string) (*domain.Relationship, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]*domain.Relationship, error)
	ListByActivity(ctx context.Context, activityID string) ([]*domain.Relationship, error)
	Delete(ctx context.Context, id string) error
	DeleteBetween(ctx context.Context, predecessorID, successorID string) error
}

type ResourceService interface {
	Create(ctx context.Context, res *domain.Resource) error
	GetByID(ctx context.Context, id string) (*domain.Resource, error)
	GetByCode(ctx context.Context, scheduleID, code string) (*domain.Resource, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]*domain.Resource, error)
	Update(ctx context.Context, res *domain.Resource) error
	Delete(ctx context.Context, id string) error
	Assign(ctx context.Context, activityID, resourceID string, plannedUnits, actualUnits float64) error
	Unassign(ctx context.Context, activityID, resourceID string) error
	ListAssignmentsByActivity(ctx context.Context, activityID string) ([]*domain.ResourceAssignment, error)
}

type RecomputeService interface {
	Recompute(ctx context.Context, req contract.RecomputeRequest) (*contract.RecomputeResponse, error)
}

type StatusService interface {
	GetStatus(ctx context.Context, req contract.StatusRequest) (*contract.StatusResponse, error)
}

type ReportService interface {
	GetReport(ctx context.Context, req contract.ReportRequest) (*contract.ReportResponse, error)
}

// ImportResult holds the outcome of a schedule import.
type ImportResult struct {
	Schedule          *domain.Schedule
	WbsCount          int
	ActivityCount     int
	RelationshipCount int
	ResourceCount     int
	AssignmentCount   int
}

type ImportService interface {
	ImportSchedule(ctx context.Context, filePath string) (*ImportResult, error)
	ImportScheduleFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error)
}
