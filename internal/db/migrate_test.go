package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// seedSchedule inserts a minimal schedule row for tests that need a parent.
func seedSchedule(t *testing.T, db *sql.DB, id, code string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO schedules (id, code, name, start_date, status, created_at, updated_at)
		VALUES (?, ?, 'Test Schedule', '2026-03-02', 'draft', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`, id, code)
	require.NoError(t, err)
}

func seedActivity(t *testing.T, db *sql.DB, id, scheduleID string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO activities (id, schedule_id, code, name, activity_type, duration, duration_unit, created_at, updated_at)
		VALUES (?, ?, '', 'Task', 'task', 1, 'days', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`, id, scheduleID)
	require.NoError(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	// A second run must succeed without error.
	err := Migrate(db)
	require.NoError(t, err)

	// Third time for good measure.
	err = Migrate(db)
	require.NoError(t, err)
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{"schedules", "wbs_nodes", "activities", "relationships", "resources", "resource_assignments"}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_schedules_code",
		"idx_wbs_nodes_schedule",
		"idx_wbs_nodes_parent",
		"idx_activities_schedule",
		"idx_activities_wbs",
		"idx_relationships_schedule",
		"idx_relationships_predecessor",
		"idx_relationships_successor",
		"idx_resources_schedule",
		"idx_assignments_activity",
		"idx_assignments_resource",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk)
	require.NoError(t, err)
	assert.Equal(t, 1, fk, "foreign keys should be enabled")
}

func TestMigrate_WALModeRequested(t *testing.T) {
	// In-memory SQLite uses "memory" journal mode; WAL only applies to file DBs.
	// This test verifies OpenDB issues the PRAGMA (a no-op for :memory:).
	db := openTestDB(t)

	var mode string
	err := db.QueryRow(`PRAGMA journal_mode`).Scan(&mode)
	require.NoError(t, err)
	assert.Equal(t, "memory", mode)
}

func TestMigrate_ActivityTypeIncludesSummary(t *testing.T) {
	db := openTestDB(t)

	var createSQL string
	err := db.QueryRow(`SELECT sql FROM sqlite_master WHERE type='table' AND name='activities'`).Scan(&createSQL)
	require.NoError(t, err)
	assert.Contains(t, createSQL, "'summary'", "activities type CHECK should include 'summary'")
}

func TestMigrate_ActivityTypeSummary_Idempotent(t *testing.T) {
	db := openTestDB(t)

	// Rerunning against an already-migrated table must not error.
	err := migrateActivityTypeSummary(db)
	require.NoError(t, err)
}

func TestMigrate_SchedulesRecomputeColumns(t *testing.T) {
	db := openTestDB(t)

	rows, err := db.Query(`PRAGMA table_info(schedules)`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var cid int
		var name, typ string
		var notNull, pk int
		var dflt sql.NullString
		require.NoError(t, rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk))
		found[name] = true
	}
	assert.True(t, found["input_fingerprint"], "schedules should have input_fingerprint column")
	assert.True(t, found["needs_recompute"], "schedules should have needs_recompute column")
}

func TestMigrate_NewScheduleNeedsRecompute(t *testing.T) {
	db := openTestDB(t)
	seedSchedule(t, db, "s1", "BRIDGE")

	var needs int
	err := db.QueryRow(`SELECT needs_recompute FROM schedules WHERE id = 's1'`).Scan(&needs)
	require.NoError(t, err)
	assert.Equal(t, 1, needs, "a schedule that was never computed starts dirty")
}

func TestMigrate_ScheduleStatusCheckConstraint(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO schedules (id, code, name, start_date, status, created_at, updated_at)
		VALUES ('s1', 'TST', 'Test', '2026-03-02', 'INVALID', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`)
	assert.Error(t, err, "invalid schedule status should be rejected by CHECK constraint")
}

func TestMigrate_ActivityConstraints(t *testing.T) {
	db := openTestDB(t)
	seedSchedule(t, db, "s1", "TST")

	// Invalid activity type should fail.
	_, err := db.Exec(`INSERT INTO activities (id, schedule_id, name, activity_type, created_at, updated_at)
		VALUES ('a1', 's1', 'Task', 'INVALID', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`)
	assert.Error(t, err, "invalid activity type should be rejected by CHECK constraint")

	// Negative duration should fail.
	_, err = db.Exec(`INSERT INTO activities (id, schedule_id, name, activity_type, duration, created_at, updated_at)
		VALUES ('a1', 's1', 'Task', 'task', -1, '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`)
	assert.Error(t, err, "negative duration should be rejected by CHECK constraint")

	// Valid row should succeed.
	_, err = db.Exec(`INSERT INTO activities (id, schedule_id, name, activity_type, duration, created_at, updated_at)
		VALUES ('a1', 's1', 'Task', 'task', 5, '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`)
	assert.NoError(t, err)
}

func TestMigrate_RelationshipsUniqueTriple(t *testing.T) {
	db := openTestDB(t)
	seedSchedule(t, db, "s1", "REL")
	seedActivity(t, db, "a1", "s1")
	seedActivity(t, db, "a2", "s1")

	_, err := db.Exec(`INSERT INTO relationships (id, schedule_id, predecessor_id, successor_id, rel_type, created_at)
		VALUES ('r1', 's1', 'a1', 'a2', 'FS', '2026-01-01T00:00:00Z')`)
	require.NoError(t, err)

	// Same pair, same type: rejected.
	_, err = db.Exec(`INSERT INTO relationships (id, schedule_id, predecessor_id, successor_id, rel_type, created_at)
		VALUES ('r2', 's1', 'a1', 'a2', 'FS', '2026-01-01T00:00:00Z')`)
	assert.Error(t, err, "duplicate (predecessor, successor, type) should violate unique constraint")

	// Same pair, different type: allowed.
	_, err = db.Exec(`INSERT INTO relationships (id, schedule_id, predecessor_id, successor_id, rel_type, created_at)
		VALUES ('r3', 's1', 'a1', 'a2', 'SS', '2026-01-01T00:00:00Z')`)
	assert.NoError(t, err, "same pair with a different type is a distinct relationship")
}

func TestMigrate_AssignmentsUniquePair(t *testing.T) {
	db := openTestDB(t)
	seedSchedule(t, db, "s1", "ASG")
	seedActivity(t, db, "a1", "s1")
	_, err := db.Exec(`INSERT INTO resources (id, schedule_id, code, name, created_at, updated_at)
		VALUES ('r1', 's1', 'ENG', 'Engineers', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO resource_assignments (id, activity_id, resource_id, planned_units, created_at, updated_at)
		VALUES ('g1', 'a1', 'r1', 10, '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO resource_assignments (id, activity_id, resource_id, planned_units, created_at, updated_at)
		VALUES ('g2', 'a1', 'r1', 5, '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`)
	assert.Error(t, err, "duplicate (activity, resource) should violate unique constraint")
}

func TestMigrate_SchedulesCodePartialUniqueIndex(t *testing.T) {
	db := openTestDB(t)

	// Empty codes should be allowed repeatedly due to the partial index predicate.
	seedSchedule(t, db, "s1", "")
	seedSchedule(t, db, "s2", "")

	// Non-empty duplicates should violate the unique index.
	seedSchedule(t, db, "s3", "BRIDGE")
	_, err := db.Exec(`INSERT INTO schedules (id, code, name, start_date, status, created_at, updated_at)
		VALUES ('s4', 'BRIDGE', 'Test', '2026-03-02', 'draft', '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`)
	assert.Error(t, err)
}

func TestMigrate_CascadeDeleteScheduleRemovesChildren(t *testing.T) {
	db := openTestDB(t)
	seedSchedule(t, db, "s1", "CAS")
	seedActivity(t, db, "a1", "s1")
	seedActivity(t, db, "a2", "s1")
	_, err := db.Exec(`INSERT INTO relationships (id, schedule_id, predecessor_id, successor_id, rel_type, created_at)
		VALUES ('r1', 's1', 'a1', 'a2', 'FS', '2026-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM schedules WHERE id = 's1'`)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM activities`).Scan(&count))
	assert.Zero(t, count, "activities should cascade with their schedule")
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM relationships`).Scan(&count))
	assert.Zero(t, count, "relationships should cascade with their schedule")
}
