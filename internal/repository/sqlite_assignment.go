package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/akarolczak/critpath/internal/db"
	"github.com/akarolczak/critpath/internal/domain"
)

// assignmentColumns is the canonical SELECT column list for resource assignments.
const assignmentColumns = `id, activity_id, resource_id, planned_units, actual_units, created_at, updated_at`

// SQLiteAssignmentRepo implements AssignmentRepo using a SQLite database.
type SQLiteAssignmentRepo struct {
	db db.DBTX
}

// NewSQLiteAssignmentRepo creates a new SQLiteAssignmentRepo.
func NewSQLiteAssignmentRepo(conn db.DBTX) *SQLiteAssignmentRepo {
	return &SQLiteAssignmentRepo{db: conn}
}

// Upsert inserts the assignment or, when the (activity, resource) pair already
// exists, replaces its units. The original row id and created_at survive.
func (r *SQLiteAssignmentRepo) Upsert(ctx context.Context, asg *domain.ResourceAssignment) error {
	query := `INSERT INTO resource_assignments (id, activity_id, resource_id, planned_units, actual_units, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(activity_id, resource_id) DO UPDATE SET
			planned_units = excluded.planned_units,
			actual_units = excluded.actual_units,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		asg.ID,
		asg.ActivityID,
		asg.ResourceID,
		asg.PlannedUnits,
		asg.ActualUnits,
		asg.CreatedAt.Format(time.RFC3339),
		asg.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting resource assignment: %w", err)
	}
	return nil
}

func (r *SQLiteAssignmentRepo) Get(ctx context.Context, activityID, resourceID string) (*domain.ResourceAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM resource_assignments
		WHERE activity_id = ? AND resource_id = ?`
	row := r.db.QueryRowContext(ctx, query, activityID, resourceID)

	asg, err := scanAssignment(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("resource assignment: %w", ErrNotFound)
		}
		return nil, err
	}
	return asg, nil
}

func (r *SQLiteAssignmentRepo) ListByActivity(ctx context.Context, activityID string) ([]*domain.ResourceAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM resource_assignments
		WHERE activity_id = ? ORDER BY created_at, id`
	return r.list(ctx, query, activityID)
}

// ListBySchedule returns every assignment whose activity belongs to the schedule.
func (r *SQLiteAssignmentRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]*domain.ResourceAssignment, error) {
	query := `SELECT ra.id, ra.activity_id, ra.resource_id, ra.planned_units, ra.actual_units, ra.created_at, ra.updated_at
		FROM resource_assignments ra
		JOIN activities a ON a.id = ra.activity_id
		WHERE a.schedule_id = ?
		ORDER BY ra.created_at, ra.id`
	return r.list(ctx, query, scheduleID)
}

func (r *SQLiteAssignmentRepo) Delete(ctx context.Context, activityID, resourceID string) error {
	query := `DELETE FROM resource_assignments WHERE activity_id = ? AND resource_id = ?`
	_, err := r.db.ExecContext(ctx, query, activityID, resourceID)
	if err != nil {
		return fmt.Errorf("deleting resource assignment: %w", err)
	}
	return nil
}

func (r *SQLiteAssignmentRepo) list(ctx context.Context, query string, args ...any) ([]*domain.ResourceAssignment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing resource assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*domain.ResourceAssignment
	for rows.Next() {
		asg, err := scanAssignment(rows.Scan)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, asg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resource assignments: %w", err)
	}
	return assignments, nil
}

func scanAssignment(scan func(dest ...any) error) (*domain.ResourceAssignment, error) {
	var asg domain.ResourceAssignment
	var createdAtStr, updatedAtStr string

	err := scan(&asg.ID, &asg.ActivityID, &asg.ResourceID, &asg.PlannedUnits, &asg.ActualUnits, &createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning resource assignment: %w", err)
	}

	asg.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	asg.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &asg, nil
}
