// Package scores implements the per-schedule composite score sheet and
// its submit/review workflow.
package scores

import (
	"github.com/gradewise/gradewise-backend/internal/core/errs"
)

// State is the review workflow state of a score session.
type State string

const (
	StateDraft     State = "DRAFT"
	StateSubmitted State = "SUBMITTED"
	StateApproved  State = "APPROVED"
	StateRejected  State = "REJECTED"
	StatePending   State = "PENDING"
)

// Action is a workflow transition trigger.
type Action string

const (
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionPend    Action = "pend"
	ActionReopen  Action = "reopen"
)

// transitions is the full workflow: DRAFT -> SUBMITTED -> one of
// APPROVED/REJECTED/PENDING; the latter two (and, for staff, APPROVED)
// reopen back to DRAFT. Anything absent here is invalid.
var transitions = map[State]map[Action]State{
	StateDraft: {
		ActionSubmit: StateSubmitted,
	},
	StateSubmitted: {
		ActionApprove: StateApproved,
		ActionReject:  StateRejected,
		ActionPend:    StatePending,
	},
	StateApproved: {
		ActionReopen: StateDraft,
	},
	StateRejected: {
		ActionReopen: StateDraft,
	},
	StatePending: {
		ActionReopen: StateDraft,
	},
}

// Next returns the state after applying a, or an
// InvalidStateTransitionError naming the violated rule.
func (s State) Next(a Action) (State, error) {
	if next, ok := transitions[s][a]; ok {
		return next, nil
	}
	return "", &errs.InvalidStateTransitionError{From: string(s), Action: string(a)}
}

// ScoreSession is the one review container per schedule.
type ScoreSession struct {
	ID              string  `json:"id"`
	ScheduleID      string  `json:"schedule_id"`
	TeacherID       string  `json:"teacher_id"`
	ReviewerID      *string `json:"reviewer_id,omitempty"`
	Status          State   `json:"status"`
	TeacherComments string  `json:"teacher_comments,omitempty"`
	StaffComments   string  `json:"staff_comments,omitempty"`
	SubmittedAt     *int64  `json:"submitted_at,omitempty"`
	ReviewedAt      *int64  `json:"reviewed_at,omitempty"`
	CreatedAt       int64   `json:"created_at"`
}

// StudentScore is one student's component scores and the derived total.
// TotalScore and Grade are nil until Recalculate has run after the last
// component edit; ConfigID snapshots the weight set used.
type StudentScore struct {
	ID              string   `json:"id"`
	ScoreSessionID  string   `json:"score_session_id"`
	StudentID       string   `json:"student_id"`
	ConfigID        *string  `json:"config_id,omitempty"`
	AttendanceScore float64  `json:"attendance_score"`
	AssignmentScore float64  `json:"assignment_score"`
	MidtermScore    float64  `json:"midterm_score"`
	FinalScore      float64  `json:"final_score"`
	TotalScore      *float64 `json:"total_score,omitempty"`
	Grade           *string  `json:"grade,omitempty"`
	Comments        string   `json:"comments,omitempty"`
	UpdatedAt       int64    `json:"updated_at"`
}

// ScoreEntry is one row of a teacher's batch upsert. Attendance is
// never part of it; that component is always computed.
type ScoreEntry struct {
	StudentID       string  `json:"student_id" validate:"required"`
	AssignmentScore float64 `json:"assignment_score" validate:"gte=0,lte=100"`
	MidtermScore    float64 `json:"midterm_score" validate:"gte=0,lte=100"`
	FinalScore      float64 `json:"final_score" validate:"gte=0,lte=100"`
	Comments        string  `json:"comments"`
}
