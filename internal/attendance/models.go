// Package attendance implements time-boxed QR check-in sessions, the
// per-student attendance records they collect, and the aggregation that
// feeds composite scoring.
package attendance

// Status is a per-student attendance outcome.
type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusLate    Status = "LATE"
	StatusAbsent  Status = "ABSENT"
	StatusExcused Status = "EXCUSED"
	StatusNone    Status = "NONE"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent, StatusExcused, StatusNone:
		return true
	}
	return false
}

// Attended reports whether s counts toward attendance percentage.
func (s Status) Attended() bool { return s == StatusPresent || s == StatusLate }

// Session is one time-boxed class meeting collecting check-ins. The
// token is an opaque lookup key; expiry and finalization are enforced
// against stored state, never by decoding the token.
type Session struct {
	ID             string `json:"id"`
	ScheduleID     string `json:"schedule_id"`
	TeacherID      string `json:"teacher_id"`
	SessionDate    string `json:"session_date"` // YYYY-MM-DD
	Token          string `json:"token,omitempty"`
	TokenExpiresAt int64  `json:"token_expires_at"` // unix seconds
	StartsAt       int64  `json:"starts_at"`        // unix seconds, class start
	Finalized      bool   `json:"finalized"`
	CreatedAt      int64  `json:"created_at"`
}

// Record is the single attendance row for (session, student). Check-in
// and manual marks upsert it; it is never deleted.
type Record struct {
	ID         string `json:"id"`
	SessionID  string `json:"session_id"`
	StudentID  string `json:"student_id"`
	Status     Status `json:"status"`
	Comment    string `json:"comment,omitempty"`
	RecordedAt int64  `json:"recorded_at"`
	RecordedBy string `json:"recorded_by"`
}

// StudentRecord is a record joined with student display data for
// listings ordered by display name.
type StudentRecord struct {
	Record
	StudentUsername    string `json:"student_username"`
	StudentDisplayName string `json:"student_display_name"`
}
