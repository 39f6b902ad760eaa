package roster

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gradewise/gradewise-backend/internal/core/errs"
)

// SQLStore implements Provider on the shared database and carries the
// bulk-upsert write side fed by the upstream system of record.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Schedule(ctx context.Context, id string) (Schedule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, course_code, course_name, class_id, teacher_id, academic_year, semester, credits, starts_at_minutes
		 FROM schedules WHERE id=$1`, id)
	var sc Schedule
	err := row.Scan(&sc.ID, &sc.CourseCode, &sc.CourseName, &sc.ClassID, &sc.TeacherID,
		&sc.AcademicYear, &sc.Semester, &sc.Credits, &sc.StartsAtMinutes)
	if errors.Is(err, sql.ErrNoRows) {
		return Schedule{}, errs.NotFound("schedule", id)
	}
	if err != nil {
		return Schedule{}, err
	}
	return sc, nil
}

func (s *SQLStore) Roster(ctx context.Context, scheduleID string) ([]Student, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.student_id, COALESCE(u.username,''), COALESCE(u.display_name,'')
		 FROM enrollments e
		 LEFT JOIN users u ON u.id = e.student_id
		 WHERE e.schedule_id=$1
		 ORDER BY COALESCE(NULLIF(u.display_name,''), u.username, e.student_id)`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Student{}
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.Username, &st.DisplayName); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLStore) IsEnrolled(ctx context.Context, scheduleID, studentID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM enrollments WHERE schedule_id=$1 AND student_id=$2`,
		scheduleID, studentID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpsertSchedules mirrors schedule facts from the system of record.
func (s *SQLStore) UpsertSchedules(ctx context.Context, schedules []Schedule) (n int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	for _, sc := range schedules {
		if sc.ID == "" || sc.TeacherID == "" {
			return n, errs.Validation("schedule id and teacher_id are required")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO schedules (id, course_code, course_name, class_id, teacher_id, academic_year, semester, credits, starts_at_minutes)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			 ON CONFLICT (id) DO UPDATE SET
			   course_code=EXCLUDED.course_code, course_name=EXCLUDED.course_name,
			   class_id=EXCLUDED.class_id, teacher_id=EXCLUDED.teacher_id,
			   academic_year=EXCLUDED.academic_year, semester=EXCLUDED.semester,
			   credits=EXCLUDED.credits, starts_at_minutes=EXCLUDED.starts_at_minutes`,
			sc.ID, sc.CourseCode, sc.CourseName, sc.ClassID, sc.TeacherID,
			sc.AcademicYear, sc.Semester, sc.Credits, sc.StartsAtMinutes)
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// UpsertEnrollments mirrors roster membership from the system of record.
func (s *SQLStore) UpsertEnrollments(ctx context.Context, enrollments []Enrollment) (n int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	for _, e := range enrollments {
		if e.ScheduleID == "" || e.StudentID == "" {
			return n, errs.Validation("schedule_id and student_id are required")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO enrollments (schedule_id, student_id) VALUES ($1,$2)
			 ON CONFLICT (schedule_id, student_id) DO NOTHING`,
			e.ScheduleID, e.StudentID)
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
