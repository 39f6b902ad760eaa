package scoreconfig

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gradewise/gradewise-backend/internal/core/errs"
	"github.com/gradewise/gradewise-backend/internal/db"
)

type Store interface {
	// Active returns the single active configuration or errs.NotFound.
	Active(ctx context.Context) (Config, error)
	// Activate deactivates the current active row and inserts cfg as the
	// new active one in a single transaction. A concurrent activation
	// fails with errs.Conflict.
	Activate(ctx context.Context, cfg Config) error
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(d *sql.DB) *SQLStore { return &SQLStore{db: d} }

func (s *SQLStore) Active(ctx context.Context) (Config, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, attendance_pct100, assignment_pct100, midterm_pct100, final_pct100, status, created_at
		 FROM score_configs WHERE status=$1`, StatusActive)
	var c Config
	err := row.Scan(&c.ID, &c.AttendancePct100, &c.AssignmentPct100,
		&c.MidtermPct100, &c.FinalPct100, &c.Status, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Config{}, errs.NotFound("active score configuration", "")
	}
	if err != nil {
		return Config{}, err
	}
	return c, nil
}

func (s *SQLStore) Activate(ctx context.Context, cfg Config) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`UPDATE score_configs SET status=$1 WHERE status=$2`,
		StatusInactive, StatusActive); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO score_configs
		   (id, attendance_pct100, assignment_pct100, midterm_pct100, final_pct100, status, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		cfg.ID, cfg.AttendancePct100, cfg.AssignmentPct100, cfg.MidtermPct100,
		cfg.FinalPct100, cfg.Status, cfg.CreatedAt)
	if db.IsUniqueViolation(err) {
		// Someone else activated between our UPDATE and INSERT.
		return errs.Conflict("another configuration was activated concurrently")
	}
	return err
}
