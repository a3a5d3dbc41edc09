package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/akarolczak/critpath/internal/db"
	"github.com/akarolczak/critpath/internal/domain"
)

// relationshipColumns is the canonical SELECT column list for relationships.
const relationshipColumns = `id, schedule_id, predecessor_id, successor_id, rel_type, lag, lag_unit, created_at`

// SQLiteRelationshipRepo implements RelationshipRepo using a SQLite database.
type SQLiteRelationshipRepo struct {
	db db.DBTX
}

// NewSQLiteRelationshipRepo creates a new SQLiteRelationshipRepo.
func NewSQLiteRelationshipRepo(conn db.DBTX) *SQLiteRelationshipRepo {
	return &SQLiteRelationshipRepo{db: conn}
}

func (r *SQLiteRelationshipRepo) Create(ctx context.Context, rel *domain.Relationship) error {
	query := `INSERT INTO relationships (id, schedule_id, predecessor_id, successor_id, rel_type, lag, lag_unit, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rel.ID,
		rel.ScheduleID,
		rel.PredecessorID,
		rel.SuccessorID,
		string(rel.Type),
		rel.Lag,
		string(rel.LagUnit),
		rel.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting relationship: %w", err)
	}
	return nil
}

func (r *SQLiteRelationshipRepo) GetByID(ctx context.Context, id string) (*domain.Relationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM relationships WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	rel, err := scanRelationship(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("relationship: %w", ErrNotFound)
		}
		return nil, err
	}
	return rel, nil
}

func (r *SQLiteRelationshipRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]*domain.Relationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM relationships WHERE schedule_id = ? ORDER BY created_at, id`
	return r.list(ctx, query, scheduleID)
}

// ListByActivity returns relationships where the activity appears on either end.
func (r *SQLiteRelationshipRepo) ListByActivity(ctx context.Context, activityID string) ([]*domain.Relationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM relationships
		WHERE predecessor_id = ? OR successor_id = ? ORDER BY created_at, id`
	return r.list(ctx, query, activityID, activityID)
}

func (r *SQLiteRelationshipRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM relationships WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting relationship: %w", err)
	}
	return nil
}

// DeleteBetween removes every relationship from one activity to another,
// regardless of type.
func (r *SQLiteRelationshipRepo) DeleteBetween(ctx context.Context, predecessorID, successorID string) error {
	query := `DELETE FROM relationships WHERE predecessor_id = ? AND successor_id = ?`
	_, err := r.db.ExecContext(ctx, query, predecessorID, successorID)
	if err != nil {
		return fmt.Errorf("deleting relationships between activities: %w", err)
	}
	return nil
}

func (r *SQLiteRelationshipRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Relationship, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing relationships: %w", err)
	}
	defer rows.Close()

	var rels []*domain.Relationship
	for rows.Next() {
		rel, err := scanRelationship(rows.Scan)
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating relationships: %w", err)
	}
	return rels, nil
}

func scanRelationship(scan func(dest ...any) error) (*domain.Relationship, error) {
	var rel domain.Relationship
	var typeStr, lagUnitStr, createdAtStr string

	err := scan(
		&rel.ID, &rel.ScheduleID, &rel.PredecessorID, &rel.SuccessorID,
		&typeStr, &rel.Lag, &lagUnitStr, &createdAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning relationship: %w", err)
	}

	rel.Type = domain.RelationshipType(typeStr)
	rel.LagUnit = domain.DurationUnit(lagUnitStr)

	rel.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &rel, nil
}
