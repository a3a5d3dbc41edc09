package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/akarolczak/critpath/internal/db"
	"github.com/akarolczak/critpath/internal/domain"
)

// activityColumns is the canonical SELECT column list for activities.
// Computed dates are stored as RFC3339 because hour-unit schedules carry
// clock times, not just dates.
const activityColumns = `id, schedule_id, wbs_id, code, name, activity_type, duration, duration_unit,
		planned_start, planned_end, late_start, late_end, total_float, is_critical,
		actual_start, actual_end, percent_complete, created_at, updated_at`

// SQLiteActivityRepo implements ActivityRepo using a SQLite database.
type SQLiteActivityRepo struct {
	db db.DBTX
}

// NewSQLiteActivityRepo creates a new SQLiteActivityRepo.
func NewSQLiteActivityRepo(conn db.DBTX) *SQLiteActivityRepo {
	return &SQLiteActivityRepo{db: conn}
}

func (r *SQLiteActivityRepo) Create(ctx context.Context, a *domain.Activity) error {
	query := `INSERT INTO activities (id, schedule_id, wbs_id, code, name, activity_type, duration, duration_unit,
		planned_start, planned_end, late_start, late_end, total_float, is_critical,
		actual_start, actual_end, percent_complete, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.ScheduleID,
		a.WbsID, // *string: nil becomes SQL NULL
		a.Code,
		a.Name,
		string(a.Type),
		a.Duration,
		string(a.Unit),
		timeArg(a.PlannedStart, time.RFC3339),
		timeArg(a.PlannedEnd, time.RFC3339),
		timeArg(a.LateStart, time.RFC3339),
		timeArg(a.LateEnd, time.RFC3339),
		floatArg(a.TotalFloat),
		boolArg(a.IsCritical),
		timeArg(a.ActualStart, time.RFC3339),
		timeArg(a.ActualEnd, time.RFC3339),
		a.PercentComplete,
		a.CreatedAt.Format(time.RFC3339),
		a.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

func (r *SQLiteActivityRepo) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return r.scanActivity(row)
}

func (r *SQLiteActivityRepo) GetByCode(ctx context.Context, scheduleID, code string) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities
		WHERE schedule_id = ? AND code != '' AND UPPER(code) = UPPER(?)`
	row := r.db.QueryRowContext(ctx, query, scheduleID, code)
	return r.scanActivity(row)
}

func (r *SQLiteActivityRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE schedule_id = ? ORDER BY code, id`
	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("listing activities by schedule: %w", err)
	}
	defer rows.Close()
	return r.scanActivities(rows)
}

func (r *SQLiteActivityRepo) ListByWbs(ctx context.Context, wbsID string) ([]*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE wbs_id = ? ORDER BY code, id`
	rows, err := r.db.QueryContext(ctx, query, wbsID)
	if err != nil {
		return nil, fmt.Errorf("listing activities by wbs node: %w", err)
	}
	defer rows.Close()
	return r.scanActivities(rows)
}

func (r *SQLiteActivityRepo) Update(ctx context.Context, a *domain.Activity) error {
	query := `UPDATE activities SET wbs_id = ?, code = ?, name = ?, activity_type = ?, duration = ?, duration_unit = ?,
		actual_start = ?, actual_end = ?, percent_complete = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		a.WbsID,
		a.Code,
		a.Name,
		string(a.Type),
		a.Duration,
		string(a.Unit),
		timeArg(a.ActualStart, time.RFC3339),
		timeArg(a.ActualEnd, time.RFC3339),
		a.PercentComplete,
		a.UpdatedAt.Format(time.RFC3339),
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating activity: %w", err)
	}
	return nil
}

// UpdateComputed persists the scheduler outputs and nothing else, so a
// recompute can never clobber user-entered fields.
func (r *SQLiteActivityRepo) UpdateComputed(ctx context.Context, a *domain.Activity) error {
	query := `UPDATE activities SET planned_start = ?, planned_end = ?, late_start = ?, late_end = ?,
		total_float = ?, is_critical = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		timeArg(a.PlannedStart, time.RFC3339),
		timeArg(a.PlannedEnd, time.RFC3339),
		timeArg(a.LateStart, time.RFC3339),
		timeArg(a.LateEnd, time.RFC3339),
		floatArg(a.TotalFloat),
		boolArg(a.IsCritical),
		a.UpdatedAt.Format(time.RFC3339),
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating computed activity dates: %w", err)
	}
	return nil
}

// ClearComputed wipes scheduler outputs for every activity of a schedule.
func (r *SQLiteActivityRepo) ClearComputed(ctx context.Context, scheduleID string) error {
	query := `UPDATE activities SET planned_start = NULL, planned_end = NULL, late_start = NULL, late_end = NULL,
		total_float = NULL, is_critical = 0, updated_at = ?
		WHERE schedule_id = ?`
	_, err := r.db.ExecContext(ctx, query, stampNow(), scheduleID)
	if err != nil {
		return fmt.Errorf("clearing computed activity dates: %w", err)
	}
	return nil
}

func (r *SQLiteActivityRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM activities WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}
	return nil
}

// scanActivity scans a single activity from a *sql.Row.
func (r *SQLiteActivityRepo) scanActivity(row *sql.Row) (*domain.Activity, error) {
	var a domain.Activity
	var typeStr, unitStr, createdAtStr, updatedAtStr string
	var wbsID sql.NullString
	var plannedStartStr, plannedEndStr, lateStartStr, lateEndStr sql.NullString
	var actualStartStr, actualEndStr sql.NullString
	var totalFloat sql.NullFloat64
	var isCriticalInt int

	err := row.Scan(
		&a.ID, &a.ScheduleID, &wbsID, &a.Code, &a.Name, &typeStr, &a.Duration, &unitStr,
		&plannedStartStr, &plannedEndStr, &lateStartStr, &lateEndStr, &totalFloat, &isCriticalInt,
		&actualStartStr, &actualEndStr, &a.PercentComplete, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("activity: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning activity: %w", err)
	}

	a.IsCritical = scanBool(isCriticalInt)
	return r.populateActivity(&a, typeStr, unitStr, createdAtStr, updatedAtStr, wbsID,
		plannedStartStr, plannedEndStr, lateStartStr, lateEndStr, actualStartStr, actualEndStr, totalFloat)
}

// scanActivities scans multiple activities from *sql.Rows.
func (r *SQLiteActivityRepo) scanActivities(rows *sql.Rows) ([]*domain.Activity, error) {
	var activities []*domain.Activity
	for rows.Next() {
		var a domain.Activity
		var typeStr, unitStr, createdAtStr, updatedAtStr string
		var wbsID sql.NullString
		var plannedStartStr, plannedEndStr, lateStartStr, lateEndStr sql.NullString
		var actualStartStr, actualEndStr sql.NullString
		var totalFloat sql.NullFloat64
		var isCriticalInt int

		err := rows.Scan(
			&a.ID, &a.ScheduleID, &wbsID, &a.Code, &a.Name, &typeStr, &a.Duration, &unitStr,
			&plannedStartStr, &plannedEndStr, &lateStartStr, &lateEndStr, &totalFloat, &isCriticalInt,
			&actualStartStr, &actualEndStr, &a.PercentComplete, &createdAtStr, &updatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning activity row: %w", err)
		}

		a.IsCritical = scanBool(isCriticalInt)
		act, err := r.populateActivity(&a, typeStr, unitStr, createdAtStr, updatedAtStr, wbsID,
			plannedStartStr, plannedEndStr, lateStartStr, lateEndStr, actualStartStr, actualEndStr, totalFloat)
		if err != nil {
			return nil, err
		}
		activities = append(activities, act)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}
	return activities, nil
}

// populateActivity fills in parsed fields on an Activity after scanning raw strings.
func (r *SQLiteActivityRepo) populateActivity(
	a *domain.Activity,
	typeStr, unitStr, createdAtStr, updatedAtStr string,
	wbsID sql.NullString,
	plannedStartStr, plannedEndStr, lateStartStr, lateEndStr, actualStartStr, actualEndStr sql.NullString,
	totalFloat sql.NullFloat64,
) (*domain.Activity, error) {
	a.Type = domain.ActivityType(typeStr)
	a.Unit = domain.DurationUnit(unitStr)

	if wbsID.Valid {
		a.WbsID = &wbsID.String
	}

	var parseErr error
	a.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	a.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}

	a.PlannedStart = scanTime(plannedStartStr, time.RFC3339)
	a.PlannedEnd = scanTime(plannedEndStr, time.RFC3339)
	a.LateStart = scanTime(lateStartStr, time.RFC3339)
	a.LateEnd = scanTime(lateEndStr, time.RFC3339)
	a.ActualStart = scanTime(actualStartStr, time.RFC3339)
	a.ActualEnd = scanTime(actualEndStr, time.RFC3339)

	if totalFloat.Valid {
		v := totalFloat.Float64
		a.TotalFloat = &v
	}

	return a, nil
}
