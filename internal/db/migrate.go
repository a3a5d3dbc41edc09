package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateActivityTypeSummary(db); err != nil {
		return fmt.Errorf("migrating activities type constraint: %w", err)
	}
	if err := migrateBackfillWbsLevels(db); err != nil {
		return fmt.Errorf("backfilling wbs levels: %w", err)
	}
	return nil
}

// migrateActivityTypeSummary widens the activity_type CHECK on databases
// created before 'summary' activities existed. SQLite cannot alter a CHECK
// in place, so the table is rebuilt and renamed with foreign keys off.
func migrateActivityTypeSummary(db *sql.DB) error {
	ctx := context.Background()
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquiring db connection: %w", err)
	}
	defer conn.Close()

	var createSQL string
	if err := conn.QueryRowContext(ctx, `SELECT sql FROM sqlite_master WHERE type = 'table' AND name = 'activities'`).Scan(&createSQL); err != nil {
		return fmt.Errorf("loading activities schema: %w", err)
	}
	if strings.Contains(strings.ToLower(createSQL), "'summary'") {
		return nil
	}

	if _, err := conn.ExecContext(ctx, `PRAGMA foreign_keys = OFF`); err != nil {
		return fmt.Errorf("disabling foreign keys: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(ctx, `PRAGMA foreign_keys = ON`)
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting migration transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS activities_new`); err != nil {
		return fmt.Errorf("dropping stale activities_new: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `CREATE TABLE activities_new (
		id               TEXT PRIMARY KEY,
		schedule_id      TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		wbs_id           TEXT REFERENCES wbs_nodes(id) ON DELETE SET NULL,
		code             TEXT NOT NULL DEFAULT '',
		name             TEXT NOT NULL,
		activity_type    TEXT NOT NULL DEFAULT 'task'
		                 CHECK(activity_type IN ('task','milestone','start_milestone','finish_milestone','summary')),
		duration         REAL NOT NULL DEFAULT 0 CHECK(duration >= 0),
		duration_unit    TEXT NOT NULL DEFAULT 'days'
		                 CHECK(duration_unit IN ('hours','days','weeks','months')),
		planned_start    TEXT,
		planned_end      TEXT,
		late_start       TEXT,
		late_end         TEXT,
		total_float      REAL,
		is_critical      INTEGER NOT NULL DEFAULT 0,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL,
		actual_start     TEXT,
		actual_end       TEXT,
		percent_complete REAL NOT NULL DEFAULT 0
	)`); err != nil {
		return fmt.Errorf("creating activities_new: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO activities_new (
		id, schedule_id, wbs_id, code, name, activity_type, duration, duration_unit,
		planned_start, planned_end, late_start, late_end, total_float, is_critical,
		created_at, updated_at, actual_start, actual_end, percent_complete
	) SELECT
		id, schedule_id, wbs_id, code, name, activity_type, duration, duration_unit,
		planned_start, planned_end, late_start, late_end, total_float, is_critical,
		created_at, updated_at, actual_start, actual_end, percent_complete
	FROM activities`); err != nil {
		return fmt.Errorf("copying activities data: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DROP TABLE activities`); err != nil {
		return fmt.Errorf("dropping old activities: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `ALTER TABLE activities_new RENAME TO activities`); err != nil {
		return fmt.Errorf("renaming activities_new: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_activities_schedule ON activities(schedule_id)`); err != nil {
		return fmt.Errorf("recreating idx_activities_schedule: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_activities_wbs ON activities(wbs_id)`); err != nil {
		return fmt.Errorf("recreating idx_activities_wbs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing activities migration: %w", err)
	}
	committed = true

	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS schedules (
		id           TEXT PRIMARY KEY,
		code         TEXT NOT NULL DEFAULT '',
		name         TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		start_date   TEXT NOT NULL,
		end_date     TEXT,
		status       TEXT NOT NULL DEFAULT 'draft'
		             CHECK(status IN ('draft','active','completed','archived')),
		working_days TEXT NOT NULL DEFAULT '1111100',
		holidays     TEXT NOT NULL DEFAULT '[]',
		computed_at  TEXT,
		archived_at  TEXT,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_schedules_code ON schedules(code) WHERE code != ''`,

	`CREATE TABLE IF NOT EXISTS wbs_nodes (
		id          TEXT PRIMARY KEY,
		schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		parent_id   TEXT REFERENCES wbs_nodes(id) ON DELETE CASCADE,
		code        TEXT NOT NULL,
		name        TEXT NOT NULL,
		level       INTEGER NOT NULL DEFAULT 0,
		sort_order  INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_wbs_nodes_schedule ON wbs_nodes(schedule_id)`,
	`CREATE INDEX IF NOT EXISTS idx_wbs_nodes_parent ON wbs_nodes(parent_id)`,

	`CREATE TABLE IF NOT EXISTS activities (
		id            TEXT PRIMARY KEY,
		schedule_id   TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		wbs_id        TEXT REFERENCES wbs_nodes(id) ON DELETE SET NULL,
		code          TEXT NOT NULL DEFAULT '',
		name          TEXT NOT NULL,
		activity_type TEXT NOT NULL DEFAULT 'task'
		              CHECK(activity_type IN ('task','milestone','start_milestone','finish_milestone','summary')),
		duration      REAL NOT NULL DEFAULT 0 CHECK(duration >= 0),
		duration_unit TEXT NOT NULL DEFAULT 'days'
		              CHECK(duration_unit IN ('hours','days','weeks','months')),
		planned_start TEXT,
		planned_end   TEXT,
		late_start    TEXT,
		late_end      TEXT,
		total_float   REAL,
		is_critical   INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_activities_schedule ON activities(schedule_id)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_wbs ON activities(wbs_id)`,

	`CREATE TABLE IF NOT EXISTS relationships (
		id             TEXT PRIMARY KEY,
		schedule_id    TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		predecessor_id TEXT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
		successor_id   TEXT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
		rel_type       TEXT NOT NULL DEFAULT 'FS'
		               CHECK(rel_type IN ('FS','SS','FF','SF')),
		lag            REAL NOT NULL DEFAULT 0,
		lag_unit       TEXT NOT NULL DEFAULT 'days'
		               CHECK(lag_unit IN ('hours','days','weeks','months')),
		created_at     TEXT NOT NULL,
		UNIQUE(predecessor_id, successor_id, rel_type)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_relationships_schedule ON relationships(schedule_id)`,
	`CREATE INDEX IF NOT EXISTS idx_relationships_predecessor ON relationships(predecessor_id)`,
	`CREATE INDEX IF NOT EXISTS idx_relationships_successor ON relationships(successor_id)`,

	`CREATE TABLE IF NOT EXISTS resources (
		id          TEXT PRIMARY KEY,
		schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		code        TEXT NOT NULL DEFAULT '',
		name        TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_resources_schedule ON resources(schedule_id)`,

	`CREATE TABLE IF NOT EXISTS resource_assignments (
		id            TEXT PRIMARY KEY,
		activity_id   TEXT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
		resource_id   TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
		planned_units REAL NOT NULL DEFAULT 0,
		actual_units  REAL NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL,
		UNIQUE(activity_id, resource_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_assignments_activity ON resource_assignments(activity_id)`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_resource ON resource_assignments(resource_id)`,

	// Recompute bookkeeping: fingerprint of the last computed input set and
	// the dirty flag set by every mutation.
	`ALTER TABLE schedules ADD COLUMN input_fingerprint TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE schedules ADD COLUMN needs_recompute INTEGER NOT NULL DEFAULT 1`,

	// Progress tracking on activities
	`ALTER TABLE activities ADD COLUMN actual_start TEXT`,
	`ALTER TABLE activities ADD COLUMN actual_end TEXT`,
	`ALTER TABLE activities ADD COLUMN percent_complete REAL NOT NULL DEFAULT 0`,

	// Display unit for resource quantities ("hrs", "m3", ...)
	`ALTER TABLE resources ADD COLUMN unit_label TEXT NOT NULL DEFAULT ''`,
}

// migrateBackfillWbsLevels derives level from the parent chain for rows
// still carrying the legacy default of 0. Roots are level 1, children their
// parent plus one. Idempotent: a database with no zero levels is untouched.
func migrateBackfillWbsLevels(db *sql.DB) error {
	ctx := context.Background()

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wbs_nodes WHERE level = 0`).Scan(&count); err != nil {
		return fmt.Errorf("checking wbs_nodes levels: %w", err)
	}
	if count == 0 {
		return nil
	}

	rows, err := db.QueryContext(ctx, `SELECT id, parent_id FROM wbs_nodes ORDER BY id`)
	if err != nil {
		return fmt.Errorf("listing wbs nodes: %w", err)
	}
	parents := make(map[string]*string)
	for rows.Next() {
		var id string
		var parent sql.NullString
		if err := rows.Scan(&id, &parent); err != nil {
			rows.Close()
			return fmt.Errorf("scanning wbs node: %w", err)
		}
		if parent.Valid {
			p := parent.String
			parents[id] = &p
		} else {
			parents[id] = nil
		}
	}
	rows.Close()

	levels := make(map[string]int, len(parents))
	var depth func(id string, hops int) int
	depth = func(id string, hops int) int {
		if lvl, ok := levels[id]; ok {
			return lvl
		}
		// Hops bounded by the node count; a looping chain gets level 1
		// and is reported properly at load time.
		if hops > len(parents) {
			return 1
		}
		p := parents[id]
		if p == nil {
			levels[id] = 1
			return 1
		}
		lvl := depth(*p, hops+1) + 1
		levels[id] = lvl
		return lvl
	}

	for id := range parents {
		depth(id, 0)
	}
	for id, lvl := range levels {
		if _, err := db.ExecContext(ctx,
			`UPDATE wbs_nodes SET level = ? WHERE id = ? AND level = 0`, lvl, id); err != nil {
			return fmt.Errorf("updating wbs node level: %w", err)
		}
	}
	return nil
}
