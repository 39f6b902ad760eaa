package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:gradewise.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/gradewise?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  display_name TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schedules (
  id TEXT PRIMARY KEY,
  course_code TEXT NOT NULL,
  course_name TEXT NOT NULL,
  class_id TEXT NOT NULL,
  teacher_id TEXT NOT NULL,
  academic_year TEXT NOT NULL,
  semester INTEGER NOT NULL,
  credits INTEGER NOT NULL DEFAULT 0,
  starts_at_minutes INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS enrollments (
  schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL,
  UNIQUE (schedule_id, student_id)
);

CREATE TABLE IF NOT EXISTS attendance_sessions (
  id TEXT PRIMARY KEY,
  schedule_id TEXT NOT NULL REFERENCES schedules(id),
  teacher_id TEXT NOT NULL,
  session_date TEXT NOT NULL,             -- YYYY-MM-DD
  token TEXT NOT NULL UNIQUE,
  token_expires_at INTEGER NOT NULL,
  starts_at INTEGER NOT NULL,
  finalized INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_open_session_per_day
  ON attendance_sessions (schedule_id, session_date) WHERE finalized = 0;

CREATE TABLE IF NOT EXISTS attendance_records (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL REFERENCES attendance_sessions(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL,
  status TEXT NOT NULL,
  comment TEXT NOT NULL DEFAULT '',
  recorded_at INTEGER NOT NULL,
  recorded_by TEXT NOT NULL DEFAULT '',
  UNIQUE (session_id, student_id)
);

CREATE TABLE IF NOT EXISTS score_configs (
  id TEXT PRIMARY KEY,
  attendance_pct100 INTEGER NOT NULL,
  assignment_pct100 INTEGER NOT NULL,
  midterm_pct100 INTEGER NOT NULL,
  final_pct100 INTEGER NOT NULL,
  status TEXT NOT NULL,                   -- active|inactive
  created_at INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_single_active_config
  ON score_configs (status) WHERE status = 'active';

CREATE TABLE IF NOT EXISTS score_sessions (
  id TEXT PRIMARY KEY,
  schedule_id TEXT NOT NULL UNIQUE REFERENCES schedules(id),
  teacher_id TEXT NOT NULL,
  reviewer_id TEXT,
  status TEXT NOT NULL,                   -- draft|submitted|approved|rejected|pending
  teacher_comments TEXT NOT NULL DEFAULT '',
  staff_comments TEXT NOT NULL DEFAULT '',
  submitted_at INTEGER,
  reviewed_at INTEGER,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS student_scores (
  id TEXT PRIMARY KEY,
  score_session_id TEXT NOT NULL REFERENCES score_sessions(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL,
  config_id TEXT REFERENCES score_configs(id),
  attendance_score REAL NOT NULL DEFAULT 0,
  assignment_score REAL NOT NULL DEFAULT 0,
  midterm_score REAL NOT NULL DEFAULT 0,
  final_score REAL NOT NULL DEFAULT 0,
  total_score REAL,
  grade TEXT,
  comments TEXT NOT NULL DEFAULT '',
  updated_at INTEGER NOT NULL,
  UNIQUE (score_session_id, student_id)
);

CREATE TABLE IF NOT EXISTS event_log (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,    -- BIGSERIAL in Postgres
  typ TEXT NOT NULL,                        -- e.g., attendance.checkin
  key TEXT NOT NULL,                        -- natural key: session id
  data TEXT NOT NULL,                       -- JSON payload
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  display_name TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS schedules (
  id TEXT PRIMARY KEY,
  course_code TEXT NOT NULL,
  course_name TEXT NOT NULL,
  class_id TEXT NOT NULL,
  teacher_id TEXT NOT NULL,
  academic_year TEXT NOT NULL,
  semester INTEGER NOT NULL,
  credits INTEGER NOT NULL DEFAULT 0,
  starts_at_minutes INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS enrollments (
  schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL,
  UNIQUE (schedule_id, student_id)
);

CREATE TABLE IF NOT EXISTS attendance_sessions (
  id TEXT PRIMARY KEY,
  schedule_id TEXT NOT NULL REFERENCES schedules(id),
  teacher_id TEXT NOT NULL,
  session_date TEXT NOT NULL,
  token TEXT NOT NULL UNIQUE,
  token_expires_at BIGINT NOT NULL,
  starts_at BIGINT NOT NULL,
  finalized BOOLEAN NOT NULL DEFAULT FALSE,
  created_at BIGINT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_open_session_per_day
  ON attendance_sessions (schedule_id, session_date) WHERE NOT finalized;

CREATE TABLE IF NOT EXISTS attendance_records (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL REFERENCES attendance_sessions(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL,
  status TEXT NOT NULL,
  comment TEXT NOT NULL DEFAULT '',
  recorded_at BIGINT NOT NULL,
  recorded_by TEXT NOT NULL DEFAULT '',
  UNIQUE (session_id, student_id)
);

CREATE TABLE IF NOT EXISTS score_configs (
  id TEXT PRIMARY KEY,
  attendance_pct100 INTEGER NOT NULL,
  assignment_pct100 INTEGER NOT NULL,
  midterm_pct100 INTEGER NOT NULL,
  final_pct100 INTEGER NOT NULL,
  status TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_single_active_config
  ON score_configs (status) WHERE status = 'active';

CREATE TABLE IF NOT EXISTS score_sessions (
  id TEXT PRIMARY KEY,
  schedule_id TEXT NOT NULL UNIQUE REFERENCES schedules(id),
  teacher_id TEXT NOT NULL,
  reviewer_id TEXT,
  status TEXT NOT NULL,
  teacher_comments TEXT NOT NULL DEFAULT '',
  staff_comments TEXT NOT NULL DEFAULT '',
  submitted_at BIGINT,
  reviewed_at BIGINT,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS student_scores (
  id TEXT PRIMARY KEY,
  score_session_id TEXT NOT NULL REFERENCES score_sessions(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL,
  config_id TEXT REFERENCES score_configs(id),
  attendance_score DOUBLE PRECISION NOT NULL DEFAULT 0,
  assignment_score DOUBLE PRECISION NOT NULL DEFAULT 0,
  midterm_score DOUBLE PRECISION NOT NULL DEFAULT 0,
  final_score DOUBLE PRECISION NOT NULL DEFAULT 0,
  total_score DOUBLE PRECISION,
  grade TEXT,
  comments TEXT NOT NULL DEFAULT '',
  updated_at BIGINT NOT NULL,
  UNIQUE (score_session_id, student_id)
);

CREATE TABLE IF NOT EXISTS event_log (
  seq BIGSERIAL PRIMARY KEY,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
`
