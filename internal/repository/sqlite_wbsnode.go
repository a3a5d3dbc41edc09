package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/akarolczak/critpath/internal/db"
	"github.com/akarolczak/critpath/internal/domain"
)

// wbsNodeColumns is the canonical SELECT column list for wbs_nodes.
const wbsNodeColumns = `id, schedule_id, parent_id, code, name, level, sort_order, created_at, updated_at`

// SQLiteWbsNodeRepo implements WbsNodeRepo using a SQLite database.
type SQLiteWbsNodeRepo struct {
	db db.DBTX
}

// NewSQLiteWbsNodeRepo creates a new SQLiteWbsNodeRepo.
func NewSQLiteWbsNodeRepo(conn db.DBTX) *SQLiteWbsNodeRepo {
	return &SQLiteWbsNodeRepo{db: conn}
}

func (r *SQLiteWbsNodeRepo) Create(ctx context.Context, n *domain.WbsNode) error {
	query := `INSERT INTO wbs_nodes (id, schedule_id, parent_id, code, name, level, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.ScheduleID,
		n.ParentID, // *string: nil becomes SQL NULL
		n.Code,
		n.Name,
		n.Level,
		n.SortOrder,
		n.CreatedAt.Format(time.RFC3339),
		n.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting wbs node: %w", err)
	}
	return nil
}

func (r *SQLiteWbsNodeRepo) GetByID(ctx context.Context, id string) (*domain.WbsNode, error) {
	query := `SELECT ` + wbsNodeColumns + ` FROM wbs_nodes WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	n, err := scanWbsNode(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("wbs node: %w", ErrNotFound)
		}
		return nil, err
	}
	return n, nil
}

func (r *SQLiteWbsNodeRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]*domain.WbsNode, error) {
	query := `SELECT ` + wbsNodeColumns + ` FROM wbs_nodes WHERE schedule_id = ? ORDER BY level, sort_order, code, id`
	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("listing wbs nodes by schedule: %w", err)
	}
	defer rows.Close()
	return scanWbsNodes(rows)
}

func (r *SQLiteWbsNodeRepo) ListChildren(ctx context.Context, parentID string) ([]*domain.WbsNode, error) {
	query := `SELECT ` + wbsNodeColumns + ` FROM wbs_nodes WHERE parent_id = ? ORDER BY sort_order, code, id`
	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("listing child wbs nodes: %w", err)
	}
	defer rows.Close()
	return scanWbsNodes(rows)
}

func (r *SQLiteWbsNodeRepo) Update(ctx context.Context, n *domain.WbsNode) error {
	query := `UPDATE wbs_nodes SET parent_id = ?, code = ?, name = ?, level = ?, sort_order = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		n.ParentID,
		n.Code,
		n.Name,
		n.Level,
		n.SortOrder,
		n.UpdatedAt.Format(time.RFC3339),
		n.ID,
	)
	if err != nil {
		return fmt.Errorf("updating wbs node: %w", err)
	}
	return nil
}

func (r *SQLiteWbsNodeRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM wbs_nodes WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting wbs node: %w", err)
	}
	return nil
}

// scanWbsNode scans one node via any row's Scan function.
func scanWbsNode(scan func(dest ...any) error) (*domain.WbsNode, error) {
	var n domain.WbsNode
	var parentID sql.NullString
	var createdAtStr, updatedAtStr string

	if err := scan(
		&n.ID, &n.ScheduleID, &parentID, &n.Code, &n.Name,
		&n.Level, &n.SortOrder, &createdAtStr, &updatedAtStr,
	); err != nil {
		return nil, err
	}

	if parentID.Valid {
		n.ParentID = &parentID.String
	}
	var parseErr error
	n.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	n.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return &n, nil
}

func scanWbsNodes(rows *sql.Rows) ([]*domain.WbsNode, error) {
	var nodes []*domain.WbsNode
	for rows.Next() {
		n, err := scanWbsNode(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning wbs node row: %w", err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating wbs nodes: %w", err)
	}
	return nodes, nil
}
