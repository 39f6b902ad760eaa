// Package roster exposes the schedule, enrollment and student-identity
// facts the attendance and scoring services consume. The facts are
// mirrored locally via bulk upserts; the services only ever see the
// Provider interface.
package roster

// Schedule is one course offering taught by one teacher.
type Schedule struct {
	ID              string `json:"id"`
	CourseCode      string `json:"course_code"`
	CourseName      string `json:"course_name"`
	ClassID         string `json:"class_id"`
	TeacherID       string `json:"teacher_id"`
	AcademicYear    string `json:"academic_year"` // e.g. "2025/2026"
	Semester        int    `json:"semester"`      // 1 or 2
	Credits         int    `json:"credits"`
	StartsAtMinutes int    `json:"starts_at_minutes"` // minutes after midnight, class start
}

// Student is the identity view needed for rosters and record listings.
type Student struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// Enrollment ties a student to a schedule.
type Enrollment struct {
	ScheduleID string `json:"schedule_id"`
	StudentID  string `json:"student_id"`
}
