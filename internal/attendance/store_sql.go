package attendance

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gradewise/gradewise-backend/internal/core/errs"
	"github.com/gradewise/gradewise-backend/internal/db"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(d *sql.DB) *SQLStore { return &SQLStore{db: d} }

func (s *SQLStore) CreateSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance_sessions
		   (id, schedule_id, teacher_id, session_date, token, token_expires_at, starts_at, finalized, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		sess.ID, sess.ScheduleID, sess.TeacherID, sess.SessionDate, sess.Token,
		sess.TokenExpiresAt, sess.StartsAt, sess.Finalized, sess.CreatedAt)
	if db.IsUniqueViolation(err) {
		return errs.Conflict("an open session already exists for this schedule and date")
	}
	return err
}

func (s *SQLStore) GetSession(ctx context.Context, id string) (Session, error) {
	return s.scanSession(s.db.QueryRowContext(ctx,
		`SELECT id, schedule_id, teacher_id, session_date, token, token_expires_at, starts_at, finalized, created_at
		 FROM attendance_sessions WHERE id=$1`, id), "session", id)
}

func (s *SQLStore) GetSessionByToken(ctx context.Context, token string) (Session, error) {
	return s.scanSession(s.db.QueryRowContext(ctx,
		`SELECT id, schedule_id, teacher_id, session_date, token, token_expires_at, starts_at, finalized, created_at
		 FROM attendance_sessions WHERE token=$1`, token), "session token", "")
}

func (s *SQLStore) scanSession(row *sql.Row, resource, id string) (Session, error) {
	var sess Session
	err := row.Scan(&sess.ID, &sess.ScheduleID, &sess.TeacherID, &sess.SessionDate,
		&sess.Token, &sess.TokenExpiresAt, &sess.StartsAt, &sess.Finalized, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, errs.NotFound(resource, id)
	}
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *SQLStore) UpsertRecord(ctx context.Context, r Record) error {
	// Single statement keyed on (session_id, student_id): concurrent
	// check-ins collapse into one row instead of losing an update.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance_records (id, session_id, student_id, status, comment, recorded_at, recorded_by)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (session_id, student_id) DO UPDATE SET
		   status=EXCLUDED.status, comment=EXCLUDED.comment,
		   recorded_at=EXCLUDED.recorded_at, recorded_by=EXCLUDED.recorded_by`,
		r.ID, r.SessionID, r.StudentID, string(r.Status), r.Comment, r.RecordedAt, r.RecordedBy)
	return err
}

func (s *SQLStore) Finalize(ctx context.Context, sessionID string, absentees []Record) (err error) {
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

	for _, r := range absentees {
		// DO NOTHING: a record that landed between roster read and
		// finalize keeps its real status.
		_, err = tx.ExecContext(ctx,
			`INSERT INTO attendance_records (id, session_id, student_id, status, comment, recorded_at, recorded_by)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)
			 ON CONFLICT (session_id, student_id) DO NOTHING`,
			r.ID, r.SessionID, r.StudentID, string(r.Status), r.Comment, r.RecordedAt, r.RecordedBy)
		if err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE attendance_sessions SET finalized=$1 WHERE id=$2`, true, sessionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.NotFound("session", sessionID)
	}
	return nil
}

func (s *SQLStore) Reopen(ctx context.Context, sessionID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE attendance_sessions SET finalized=$1 WHERE id=$2`, false, sessionID)
	if db.IsUniqueViolation(err) {
		// Clearing the flag would make this the second open session for
		// the schedule+date.
		return errs.Conflict("an open session already exists for this schedule and date")
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.NotFound("session", sessionID)
	}
	return nil
}

func (s *SQLStore) ListRecords(ctx context.Context, sessionID string) ([]StudentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.session_id, r.student_id, r.status, r.comment, r.recorded_at, r.recorded_by,
		        COALESCE(u.username,''), COALESCE(u.display_name,'')
		 FROM attendance_records r
		 LEFT JOIN users u ON u.id = r.student_id
		 WHERE r.session_id=$1
		 ORDER BY COALESCE(NULLIF(u.display_name,''), u.username, r.student_id)`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []StudentRecord{}
	for rows.Next() {
		var sr StudentRecord
		var status string
		if err := rows.Scan(&sr.ID, &sr.SessionID, &sr.StudentID, &status, &sr.Comment,
			&sr.RecordedAt, &sr.RecordedBy, &sr.StudentUsername, &sr.StudentDisplayName); err != nil {
			return nil, err
		}
		sr.Status = Status(status)
		out = append(out, sr)
	}
	return out, rows.Err()
}

func (s *SQLStore) FinalizedCounts(ctx context.Context, scheduleID, studentID string, w Window) (attended, total int, err error) {
	from, to := w.From, w.To
	if from == "" {
		from = "0000-00-00"
	}
	if to == "" {
		to = "9999-99-99"
	}
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COUNT(CASE WHEN r.status IN ('PRESENT','LATE') THEN 1 END)
		 FROM attendance_sessions s
		 LEFT JOIN attendance_records r
		   ON r.session_id = s.id AND r.student_id = $2
		 WHERE s.schedule_id = $1
		   AND s.finalized = $3
		   AND s.session_date >= $4 AND s.session_date <= $5`,
		scheduleID, studentID, true, from, to).Scan(&total, &attended)
	return attended, total, err
}
