package scores

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gradewise/gradewise-backend/internal/attendance"
	"github.com/gradewise/gradewise-backend/internal/audit"
	"github.com/gradewise/gradewise-backend/internal/core/errs"
	"github.com/gradewise/gradewise-backend/internal/grading"
	"github.com/gradewise/gradewise-backend/internal/roster"
	"github.com/gradewise/gradewise-backend/internal/scoreconfig"
)

// AttendanceSource supplies the computed attendance component.
type AttendanceSource interface {
	Percentage(ctx context.Context, studentID, scheduleID string, w attendance.Window) (attendance.Aggregate, error)
}

// ConfigSource supplies the currently active weight set.
type ConfigSource interface {
	Get(ctx context.Context) (scoreconfig.Config, error)
}

// Workflow drives the score sheet through DRAFT -> SUBMITTED -> review.
type Workflow struct {
	store      Store
	attendance AttendanceSource
	configs    ConfigSource
	roster     roster.Provider
	audit      audit.Recorder
	now        func() time.Time
}

func NewWorkflow(store Store, att AttendanceSource, cfgs ConfigSource, provider roster.Provider, rec audit.Recorder) *Workflow {
	return &Workflow{
		store:      store,
		attendance: att,
		configs:    cfgs,
		roster:     provider,
		audit:      rec,
		now:        time.Now,
	}
}

// WithClock overrides the workflow clock; tests use a fixed time.
func (w *Workflow) WithClock(now func() time.Time) *Workflow {
	w.now = now
	return w
}

// Initialize gets or creates the single score session for a schedule.
// Safe to call repeatedly.
func (w *Workflow) Initialize(ctx context.Context, scheduleID, teacherID string) (ScoreSession, error) {
	sched, err := w.roster.Schedule(ctx, scheduleID)
	if err != nil {
		return ScoreSession{}, err
	}
	if sched.TeacherID != teacherID {
		return ScoreSession{}, errs.Validation("only the assigned teacher may open the score sheet")
	}
	return w.store.GetOrCreate(ctx, ScoreSession{
		ID:         uuid.NewString(),
		ScheduleID: scheduleID,
		TeacherID:  sched.TeacherID,
		Status:     StateDraft,
		CreatedAt:  w.now().Unix(),
	})
}

// Get returns a score session with its per-student rows.
func (w *Workflow) Get(ctx context.Context, scoreSessionID string) (ScoreSession, []StudentScore, error) {
	sess, err := w.store.Get(ctx, scoreSessionID)
	if err != nil {
		return ScoreSession{}, nil, err
	}
	rows, err := w.store.ListScores(ctx, scoreSessionID)
	if err != nil {
		return ScoreSession{}, nil, err
	}
	return sess, rows, nil
}

// BatchUpsertScores writes teacher-entered assignment/midterm/final
// components. Only allowed in DRAFT; attendance is never accepted here.
func (w *Workflow) BatchUpsertScores(ctx context.Context, scoreSessionID string, entries []ScoreEntry, teacherID string) error {
	if len(entries) == 0 {
		return errs.Validation("no score entries provided")
	}
	sess, err := w.store.Get(ctx, scoreSessionID)
	if err != nil {
		return err
	}
	if sess.Status != StateDraft {
		return &errs.InvalidStateTransitionError{From: string(sess.Status), Action: "edit scores"}
	}
	if sess.TeacherID != teacherID {
		return errs.Validation("only the assigned teacher may edit this score sheet")
	}
	for _, e := range entries {
		if e.StudentID == "" {
			return errs.ValidationField("student_id", "required")
		}
		for _, v := range []float64{e.AssignmentScore, e.MidtermScore, e.FinalScore} {
			if v < 0 || v > 100 {
				return errs.ValidationField("score", "must be between 0 and 100")
			}
		}
		enrolled, err := w.roster.IsEnrolled(ctx, sess.ScheduleID, e.StudentID)
		if err != nil {
			return err
		}
		if !enrolled {
			return errs.Validation("student " + e.StudentID + " is not enrolled in this schedule")
		}
	}
	return w.store.UpsertComponentScores(ctx, scoreSessionID, entries, w.now().Unix())
}

// Recalculate recomputes every enrolled student's total under the
// active configuration: attendance comes from the aggregator, the other
// components from the stored rows, and the whole result persists as one
// transaction. Running it twice over unchanged data yields identical
// totals.
func (w *Workflow) Recalculate(ctx context.Context, scoreSessionID, teacherID string) ([]StudentScore, error) {
	sess, err := w.store.Get(ctx, scoreSessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != StateDraft {
		return nil, &errs.InvalidStateTransitionError{From: string(sess.Status), Action: "recalculate"}
	}
	if sess.TeacherID != teacherID {
		return nil, errs.Validation("only the assigned teacher may recalculate this score sheet")
	}

	cfg, err := w.configs.Get(ctx)
	if err != nil {
		return nil, err
	}
	students, err := w.roster.Roster(ctx, sess.ScheduleID)
	if err != nil {
		return nil, err
	}
	existing, err := w.store.ListScores(ctx, scoreSessionID)
	if err != nil {
		return nil, err
	}
	byStudent := make(map[string]StudentScore, len(existing))
	for _, sc := range existing {
		byStudent[sc.StudentID] = sc
	}

	now := w.now().Unix()
	computed := make([]StudentScore, 0, len(students))
	for _, st := range students {
		agg, err := w.attendance.Percentage(ctx, st.ID, sess.ScheduleID, attendance.Window{})
		if err != nil {
			return nil, err
		}
		sc, ok := byStudent[st.ID]
		if !ok {
			sc = StudentScore{ID: uuid.NewString(), ScoreSessionID: scoreSessionID, StudentID: st.ID}
		}
		sc.AttendanceScore = agg.Percentage
		total := grading.Compose(grading.Components{
			Attendance: sc.AttendanceScore,
			Assignment: sc.AssignmentScore,
			Midterm:    sc.MidtermScore,
			Final:      sc.FinalScore,
		}, cfg.Config)
		grade := string(grading.GradeOf(total))
		cfgID := cfg.ID
		sc.TotalScore = &total
		sc.Grade = &grade
		sc.ConfigID = &cfgID
		sc.UpdatedAt = now
		computed = append(computed, sc)
	}

	if err := w.store.SaveComputedScores(ctx, scoreSessionID, computed); err != nil {
		return nil, err
	}
	return computed, nil
}

// SubmitForReview freezes the sheet. Requires DRAFT and a non-nil total
// for every enrolled student, i.e. Recalculate since the last edit.
func (w *Workflow) SubmitForReview(ctx context.Context, scoreSessionID, comments, teacherID string) (ScoreSession, error) {
	sess, err := w.store.Get(ctx, scoreSessionID)
	if err != nil {
		return ScoreSession{}, err
	}
	next, err := sess.Status.Next(ActionSubmit)
	if err != nil {
		return ScoreSession{}, err
	}
	if sess.TeacherID != teacherID {
		return ScoreSession{}, errs.Validation("only the assigned teacher may submit this score sheet")
	}

	students, err := w.roster.Roster(ctx, sess.ScheduleID)
	if err != nil {
		return ScoreSession{}, err
	}
	rows, err := w.store.ListScores(ctx, scoreSessionID)
	if err != nil {
		return ScoreSession{}, err
	}
	totals := make(map[string]bool, len(rows))
	for _, sc := range rows {
		totals[sc.StudentID] = sc.TotalScore != nil
	}
	for _, st := range students {
		if !totals[st.ID] {
			return ScoreSession{}, errs.Validation("recalculate must run for every enrolled student before submission")
		}
	}

	now := w.now().Unix()
	sess.Status = next
	sess.TeacherComments = comments
	sess.SubmittedAt = &now
	if err := w.store.UpdateState(ctx, sess); err != nil {
		return ScoreSession{}, err
	}
	w.audit.Record(ctx, audit.TypeScoresSubmitted, sess.ID, map[string]string{"by": teacherID})
	return sess, nil
}

// Review applies a staff decision to a submitted sheet.
func (w *Workflow) Review(ctx context.Context, scoreSessionID string, decision State, comments, reviewerID string) (ScoreSession, error) {
	var action Action
	switch decision {
	case StateApproved:
		action = ActionApprove
	case StateRejected:
		action = ActionReject
	case StatePending:
		action = ActionPend
	default:
		return ScoreSession{}, errs.ValidationField("decision", "must be APPROVED, REJECTED or PENDING")
	}

	sess, err := w.store.Get(ctx, scoreSessionID)
	if err != nil {
		return ScoreSession{}, err
	}
	next, err := sess.Status.Next(action)
	if err != nil {
		return ScoreSession{}, err
	}

	now := w.now().Unix()
	sess.Status = next
	sess.ReviewerID = &reviewerID
	sess.StaffComments = comments
	sess.ReviewedAt = &now
	if err := w.store.UpdateState(ctx, sess); err != nil {
		return ScoreSession{}, err
	}
	w.audit.Record(ctx, audit.TypeScoresReviewed, sess.ID, map[string]string{
		"decision": string(decision), "by": reviewerID,
	})
	return sess, nil
}

// Reopen sends a reviewed sheet back to DRAFT for revision. REJECTED
// and PENDING reopen for the teacher or staff; APPROVED is terminal
// unless staff explicitly reopens it.
func (w *Workflow) Reopen(ctx context.Context, scoreSessionID, actorID string, isStaff bool) (ScoreSession, error) {
	sess, err := w.store.Get(ctx, scoreSessionID)
	if err != nil {
		return ScoreSession{}, err
	}
	next, err := sess.Status.Next(ActionReopen)
	if err != nil {
		return ScoreSession{}, err
	}
	if sess.Status == StateApproved && !isStaff {
		return ScoreSession{}, errs.Validation("only staff may reopen an approved score sheet")
	}
	if !isStaff && sess.TeacherID != actorID {
		return ScoreSession{}, errs.Validation("only the assigned teacher may reopen this score sheet")
	}

	// A reopened sheet is a fresh draft: the previous review leaves no
	// residue on it (the audit log keeps the history).
	sess.Status = next
	sess.SubmittedAt = nil
	sess.ReviewedAt = nil
	sess.ReviewerID = nil
	sess.StaffComments = ""
	if err := w.store.UpdateState(ctx, sess); err != nil {
		return ScoreSession{}, err
	}
	w.audit.Record(ctx, audit.TypeScoresReopened, sess.ID, map[string]string{"by": actorID})
	return sess, nil
}
