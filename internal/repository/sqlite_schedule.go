package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/akarolczak/critpath/internal/db"
	"github.com/akarolczak/critpath/internal/domain"
)

// scheduleColumns is the canonical SELECT column list for schedules.
const scheduleColumns = `id, code, name, description, start_date, end_date, status,
		working_days, holidays, computed_at, input_fingerprint, needs_recompute,
		archived_at, created_at, updated_at`

// SQLiteScheduleRepo implements ScheduleRepo using a SQLite database.
type SQLiteScheduleRepo struct {
	db db.DBTX
}

// NewSQLiteScheduleRepo creates a new SQLiteScheduleRepo.
func NewSQLiteScheduleRepo(conn db.DBTX) *SQLiteScheduleRepo {
	return &SQLiteScheduleRepo{db: conn}
}

func (r *SQLiteScheduleRepo) Create(ctx context.Context, s *domain.Schedule) error {
	holidays, err := holidaysToJSON(s.Holidays)
	if err != nil {
		return err
	}
	query := `INSERT INTO schedules (id, code, name, description, start_date, end_date, status,
		working_days, holidays, computed_at, input_fingerprint, needs_recompute,
		archived_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		s.ID,
		s.Code,
		s.Name,
		s.Description,
		s.StartDate.Format(dateLayout),
		timeArg(s.EndDate, dateLayout),
		string(s.Status),
		s.WorkingDays,
		holidays,
		timeArg(s.ComputedAt, time.RFC3339),
		s.InputFingerprint,
		boolArg(s.NeedsRecompute),
		timeArg(s.ArchivedAt, time.RFC3339),
		s.CreatedAt.Format(time.RFC3339),
		s.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting schedule: %w", err)
	}
	return nil
}

func (r *SQLiteScheduleRepo) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return r.scanSchedule(row)
}

func (r *SQLiteScheduleRepo) GetByCode(ctx context.Context, code string) (*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE code != '' AND UPPER(code) = UPPER(?)`
	row := r.db.QueryRowContext(ctx, query, code)
	return r.scanSchedule(row)
}

func (r *SQLiteScheduleRepo) ListByIDPrefix(ctx context.Context, prefix string) ([]*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id LIKE ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("listing schedules by id prefix: %w", err)
	}
	defer rows.Close()
	return r.scanSchedules(rows)
}

func (r *SQLiteScheduleRepo) List(ctx context.Context, includeArchived bool) ([]*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules ORDER BY created_at, id`
	if !includeArchived {
		query = `SELECT ` + scheduleColumns + ` FROM schedules WHERE archived_at IS NULL ORDER BY created_at, id`
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing schedules: %w", err)
	}
	defer rows.Close()
	return r.scanSchedules(rows)
}

func (r *SQLiteScheduleRepo) Update(ctx context.Context, s *domain.Schedule) error {
	holidays, err := holidaysToJSON(s.Holidays)
	if err != nil {
		return err
	}
	query := `UPDATE schedules SET code = ?, name = ?, description = ?, start_date = ?, end_date = ?,
		status = ?, working_days = ?, holidays = ?, archived_at = ?, updated_at = ?
		WHERE id = ?`
	_, err = r.db.ExecContext(ctx, query,
		s.Code,
		s.Name,
		s.Description,
		s.StartDate.Format(dateLayout),
		timeArg(s.EndDate, dateLayout),
		string(s.Status),
		s.WorkingDays,
		holidays,
		timeArg(s.ArchivedAt, time.RFC3339),
		s.UpdatedAt.Format(time.RFC3339),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating schedule: %w", err)
	}
	return nil
}

// MarkDirty flags the schedule for recompute. Called after every mutation
// that feeds the scheduler.
func (r *SQLiteScheduleRepo) MarkDirty(ctx context.Context, id string) error {
	query := `UPDATE schedules SET needs_recompute = 1, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, stampNow(), id)
	if err != nil {
		return fmt.Errorf("marking schedule dirty: %w", err)
	}
	return nil
}

// MarkComputed clears the dirty flag and records when and over which input
// fingerprint the dates were computed.
func (r *SQLiteScheduleRepo) MarkComputed(ctx context.Context, id string, computedAt time.Time, fingerprint string) error {
	query := `UPDATE schedules SET needs_recompute = 0, computed_at = ?, input_fingerprint = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		computedAt.UTC().Format(time.RFC3339),
		fingerprint,
		stampNow(),
		id,
	)
	if err != nil {
		return fmt.Errorf("marking schedule computed: %w", err)
	}
	return nil
}

func (r *SQLiteScheduleRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM schedules WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting schedule: %w", err)
	}
	return nil
}

// scanSchedule scans a single schedule from a *sql.Row.
func (r *SQLiteScheduleRepo) scanSchedule(row *sql.Row) (*domain.Schedule, error) {
	var s domain.Schedule
	var startDateStr, statusStr, holidaysStr, createdAtStr, updatedAtStr string
	var endDateStr, computedAtStr, archivedAtStr sql.NullString
	var needsRecomputeInt int

	err := row.Scan(
		&s.ID, &s.Code, &s.Name, &s.Description,
		&startDateStr, &endDateStr, &statusStr,
		&s.WorkingDays, &holidaysStr, &computedAtStr,
		&s.InputFingerprint, &needsRecomputeInt,
		&archivedAtStr, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("schedule: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning schedule: %w", err)
	}

	s.NeedsRecompute = scanBool(needsRecomputeInt)
	return r.populateSchedule(&s, startDateStr, statusStr, holidaysStr, createdAtStr, updatedAtStr,
		endDateStr, computedAtStr, archivedAtStr)
}

// scanSchedules scans multiple schedules from *sql.Rows.
func (r *SQLiteScheduleRepo) scanSchedules(rows *sql.Rows) ([]*domain.Schedule, error) {
	var schedules []*domain.Schedule
	for rows.Next() {
		var s domain.Schedule
		var startDateStr, statusStr, holidaysStr, createdAtStr, updatedAtStr string
		var endDateStr, computedAtStr, archivedAtStr sql.NullString
		var needsRecomputeInt int

		err := rows.Scan(
			&s.ID, &s.Code, &s.Name, &s.Description,
			&startDateStr, &endDateStr, &statusStr,
			&s.WorkingDays, &holidaysStr, &computedAtStr,
			&s.InputFingerprint, &needsRecomputeInt,
			&archivedAtStr, &createdAtStr, &updatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning schedule row: %w", err)
		}

		s.NeedsRecompute = scanBool(needsRecomputeInt)
		sched, err := r.populateSchedule(&s, startDateStr, statusStr, holidaysStr, createdAtStr, updatedAtStr,
			endDateStr, computedAtStr, archivedAtStr)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, sched)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schedules: %w", err)
	}
	return schedules, nil
}

// populateSchedule fills in parsed fields on a Schedule after scanning raw strings.
func (r *SQLiteScheduleRepo) populateSchedule(
	s *domain.Schedule,
	startDateStr, statusStr, holidaysStr, createdAtStr, updatedAtStr string,
	endDateStr, computedAtStr, archivedAtStr sql.NullString,
) (*domain.Schedule, error) {
	s.Status = domain.ScheduleStatus(statusStr)

	var parseErr error
	s.StartDate, parseErr = time.Parse(dateLayout, startDateStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing start_date: %w", parseErr)
	}
	s.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	s.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}

	s.Holidays, parseErr = holidaysFromJSON(holidaysStr)
	if parseErr != nil {
		return nil, parseErr
	}

	s.EndDate = scanTime(endDateStr, dateLayout)
	s.ComputedAt = scanTime(computedAtStr, time.RFC3339)
	s.ArchivedAt = scanTime(archivedAtStr, time.RFC3339)

	return s, nil
}

// holidaysToJSON serializes holiday dates as a JSON array of YYYY-MM-DD strings.
func holidaysToJSON(holidays []time.Time) (string, error) {
	strs := make([]string, 0, len(holidays))
	for _, h := range holidays {
		strs = append(strs, h.Format(dateLayout))
	}
	b, err := json.Marshal(strs)
	if err != nil {
		return "", fmt.Errorf("encoding holidays: %w", err)
	}
	return string(b), nil
}

func holidaysFromJSON(raw string) ([]time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	var strs []string
	if err := json.Unmarshal([]byte(raw), &strs); err != nil {
		return nil, fmt.Errorf("decoding holidays: %w", err)
	}
	if len(strs) == 0 {
		return nil, nil
	}
	out := make([]time.Time, 0, len(strs))
	for _, s := range strs {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("parsing holiday %q: %w", s, err)
		}
		out = append(out, t)
	}
	return out, nil
}
