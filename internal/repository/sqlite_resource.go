package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/akarolczak/critpath/internal/db"
	"github.com/akarolczak/critpath/internal/domain"
)

// resourceColumns is the canonical SELECT column list for resources.
const resourceColumns = `id, schedule_id, code, name, unit_label, created_at, updated_at`

// SQLiteResourceRepo implements ResourceRepo using a SQLite database.
type SQLiteResourceRepo struct {
	db db.DBTX
}

// NewSQLiteResourceRepo creates a new SQLiteResourceRepo.
func NewSQLiteResourceRepo(conn db.DBTX) *SQLiteResourceRepo {
	return &SQLiteResourceRepo{db: conn}
}

func (r *SQLiteResourceRepo) Create(ctx context.Context, res *domain.Resource) error {
	query := `INSERT INTO resources (id, schedule_id, code, name, unit_label, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		res.ID,
		res.ScheduleID,
		res.Code,
		res.Name,
		res.UnitLabel,
		res.CreatedAt.Format(time.RFC3339),
		res.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting resource: %w", err)
	}
	return nil
}

func (r *SQLiteResourceRepo) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	res, err := scanResource(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("resource: %w", ErrNotFound)
		}
		return nil, err
	}
	return res, nil
}

func (r *SQLiteResourceRepo) GetByCode(ctx context.Context, scheduleID, code string) (*domain.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources
		WHERE schedule_id = ? AND code != '' AND UPPER(code) = UPPER(?)`
	row := r.db.QueryRowContext(ctx, query, scheduleID, code)

	res, err := scanResource(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("resource: %w", ErrNotFound)
		}
		return nil, err
	}
	return res, nil
}

func (r *SQLiteResourceRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]*domain.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE schedule_id = ? ORDER BY code, id`
	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}
	defer rows.Close()

	var resources []*domain.Resource
	for rows.Next() {
		res, err := scanResource(rows.Scan)
		if err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resources: %w", err)
	}
	return resources, nil
}

func (r *SQLiteResourceRepo) Update(ctx context.Context, res *domain.Resource) error {
	query := `UPDATE resources SET code = ?, name = ?, unit_label = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		res.Code,
		res.Name,
		res.UnitLabel,
		res.UpdatedAt.Format(time.RFC3339),
		res.ID,
	)
	if err != nil {
		return fmt.Errorf("updating resource: %w", err)
	}
	return nil
}

func (r *SQLiteResourceRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM resources WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting resource: %w", err)
	}
	return nil
}

func scanResource(scan func(dest ...any) error) (*domain.Resource, error) {
	var res domain.Resource
	var createdAtStr, updatedAtStr string

	err := scan(&res.ID, &res.ScheduleID, &res.Code, &res.Name, &res.UnitLabel, &createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning resource: %w", err)
	}

	res.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	res.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &res, nil
}
