package scores

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/gradewise/gradewise-backend/internal/core/errs"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(d *sql.DB) *SQLStore { return &SQLStore{db: d} }

func (s *SQLStore) GetOrCreate(ctx context.Context, sess ScoreSession) (ScoreSession, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO score_sessions (id, schedule_id, teacher_id, status, created_at)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (schedule_id) DO NOTHING`,
		sess.ID, sess.ScheduleID, sess.TeacherID, string(sess.Status), sess.CreatedAt)
	if err != nil {
		return ScoreSession{}, err
	}
	row := s.db.QueryRowContext(ctx, selectScoreSession+` WHERE schedule_id=$1`, sess.ScheduleID)
	return scanScoreSession(row, "score session for schedule", sess.ScheduleID)
}

func (s *SQLStore) Get(ctx context.Context, id string) (ScoreSession, error) {
	row := s.db.QueryRowContext(ctx, selectScoreSession+` WHERE id=$1`, id)
	return scanScoreSession(row, "score session", id)
}

const selectScoreSession = `
	SELECT id, schedule_id, teacher_id, reviewer_id, status,
	       teacher_comments, staff_comments, submitted_at, reviewed_at, created_at
	FROM score_sessions`

func scanScoreSession(row *sql.Row, resource, id string) (ScoreSession, error) {
	var sess ScoreSession
	var reviewer sql.NullString
	var status string
	var submittedAt, reviewedAt sql.NullInt64
	err := row.Scan(&sess.ID, &sess.ScheduleID, &sess.TeacherID, &reviewer, &status,
		&sess.TeacherComments, &sess.StaffComments, &submittedAt, &reviewedAt, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ScoreSession{}, errs.NotFound(resource, id)
	}
	if err != nil {
		return ScoreSession{}, err
	}
	sess.Status = State(status)
	if reviewer.Valid {
		sess.ReviewerID = &reviewer.String
	}
	if submittedAt.Valid {
		sess.SubmittedAt = &submittedAt.Int64
	}
	if reviewedAt.Valid {
		sess.ReviewedAt = &reviewedAt.Int64
	}
	return sess, nil
}

func (s *SQLStore) UpdateState(ctx context.Context, sess ScoreSession) error {
	var reviewer any
	if sess.ReviewerID != nil {
		reviewer = *sess.ReviewerID
	}
	var submittedAt, reviewedAt any
	if sess.SubmittedAt != nil {
		submittedAt = *sess.SubmittedAt
	}
	if sess.ReviewedAt != nil {
		reviewedAt = *sess.ReviewedAt
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE score_sessions SET
		   status=$1, reviewer_id=$2, teacher_comments=$3, staff_comments=$4,
		   submitted_at=$5, reviewed_at=$6
		 WHERE id=$7`,
		string(sess.Status), reviewer, sess.TeacherComments, sess.StaffComments,
		submittedAt, reviewedAt, sess.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.NotFound("score session", sess.ID)
	}
	return nil
}

func (s *SQLStore) UpsertComponentScores(ctx context.Context, scoreSessionID string, entries []ScoreEntry, now int64) (err error) {
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

	for _, e := range entries {
		// Any component edit invalidates the derived total until the
		// next recalculation.
		_, err = tx.ExecContext(ctx,
			`INSERT INTO student_scores
			   (id, score_session_id, student_id, assignment_score, midterm_score, final_score, comments, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			 ON CONFLICT (score_session_id, student_id) DO UPDATE SET
			   assignment_score=EXCLUDED.assignment_score,
			   midterm_score=EXCLUDED.midterm_score,
			   final_score=EXCLUDED.final_score,
			   comments=EXCLUDED.comments,
			   total_score=NULL, grade=NULL,
			   updated_at=EXCLUDED.updated_at`,
			uuid.NewString(), scoreSessionID, e.StudentID,
			e.AssignmentScore, e.MidtermScore, e.FinalScore, e.Comments, now)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) SaveComputedScores(ctx context.Context, scoreSessionID string, computed []StudentScore) (err error) {
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

	for _, sc := range computed {
		var configID, grade, total any
		if sc.ConfigID != nil {
			configID = *sc.ConfigID
		}
		if sc.Grade != nil {
			grade = *sc.Grade
		}
		if sc.TotalScore != nil {
			total = *sc.TotalScore
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO student_scores
			   (id, score_session_id, student_id, config_id, attendance_score,
			    assignment_score, midterm_score, final_score, total_score, grade, comments, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			 ON CONFLICT (score_session_id, student_id) DO UPDATE SET
			   config_id=EXCLUDED.config_id,
			   attendance_score=EXCLUDED.attendance_score,
			   assignment_score=EXCLUDED.assignment_score,
			   midterm_score=EXCLUDED.midterm_score,
			   final_score=EXCLUDED.final_score,
			   total_score=EXCLUDED.total_score,
			   grade=EXCLUDED.grade,
			   updated_at=EXCLUDED.updated_at`,
			sc.ID, scoreSessionID, sc.StudentID, configID, sc.AttendanceScore,
			sc.AssignmentScore, sc.MidtermScore, sc.FinalScore, total, grade,
			sc.Comments, sc.UpdatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) ListScores(ctx context.Context, scoreSessionID string) ([]StudentScore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, score_session_id, student_id, config_id, attendance_score,
		        assignment_score, midterm_score, final_score, total_score, grade, comments, updated_at
		 FROM student_scores WHERE score_session_id=$1 ORDER BY student_id`, scoreSessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []StudentScore{}
	for rows.Next() {
		var sc StudentScore
		var configID, grade sql.NullString
		var total sql.NullFloat64
		if err := rows.Scan(&sc.ID, &sc.ScoreSessionID, &sc.StudentID, &configID,
			&sc.AttendanceScore, &sc.AssignmentScore, &sc.MidtermScore, &sc.FinalScore,
			&total, &grade, &sc.Comments, &sc.UpdatedAt); err != nil {
			return nil, err
		}
		if configID.Valid {
			sc.ConfigID = &configID.String
		}
		if grade.Valid {
			sc.Grade = &grade.String
		}
		if total.Valid {
			sc.TotalScore = &total.Float64
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
