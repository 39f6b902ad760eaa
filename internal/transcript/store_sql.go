package transcript

import (
	"context"
	"database/sql"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(d *sql.DB) *SQLStore { return &SQLStore{db: d} }

func (s *SQLStore) ApprovedRows(ctx context.Context, studentID string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sch.academic_year, sch.semester, sch.course_code, sch.course_name, sch.credits,
		        sc.total_score, sc.grade
		 FROM student_scores sc
		 JOIN score_sessions ss ON ss.id = sc.score_session_id AND ss.status = 'APPROVED'
		 JOIN schedules sch ON sch.id = ss.schedule_id
		 WHERE sc.student_id = $1 AND sch.credits > 0
		 ORDER BY sch.academic_year, sch.semester, sch.course_code`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Row{}
	for rows.Next() {
		var r Row
		var total sql.NullFloat64
		var grade sql.NullString
		if err := rows.Scan(&r.AcademicYear, &r.Semester, &r.CourseCode, &r.CourseName,
			&r.Credits, &total, &grade); err != nil {
			return nil, err
		}
		if total.Valid {
			r.TotalScore = &total.Float64
		}
		if grade.Valid {
			r.Grade = &grade.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
