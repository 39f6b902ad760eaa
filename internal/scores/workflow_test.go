package scores

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradewise/gradewise-backend/internal/attendance"
	"github.com/gradewise/gradewise-backend/internal/audit"
	"github.com/gradewise/gradewise-backend/internal/core/errs"
	"github.com/gradewise/gradewise-backend/internal/grading"
	"github.com/gradewise/gradewise-backend/internal/roster"
	"github.com/gradewise/gradewise-backend/internal/scoreconfig"
)

type fakeScoreStore struct {
	sessions map[string]ScoreSession            // by ID
	rows     map[string]map[string]StudentScore // sessionID -> studentID -> row
}

func newFakeScoreStore() *fakeScoreStore {
	return &fakeScoreStore{
		sessions: map[string]ScoreSession{},
		rows:     map[string]map[string]StudentScore{},
	}
}

func (f *fakeScoreStore) GetOrCreate(_ context.Context, sess ScoreSession) (ScoreSession, error) {
	for _, ex := range f.sessions {
		if ex.ScheduleID == sess.ScheduleID {
			return ex, nil
		}
	}
	f.sessions[sess.ID] = sess
	return sess, nil
}

func (f *fakeScoreStore) Get(_ context.Context, id string) (ScoreSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return ScoreSession{}, errs.NotFound("score session", id)
	}
	return s, nil
}

func (f *fakeScoreStore) UpdateState(_ context.Context, sess ScoreSession) error {
	if _, ok := f.sessions[sess.ID]; !ok {
		return errs.NotFound("score session", sess.ID)
	}
	f.sessions[sess.ID] = sess
	return nil
}

func (f *fakeScoreStore) UpsertComponentScores(_ context.Context, sessionID string, entries []ScoreEntry, now int64) error {
	m := f.rows[sessionID]
	if m == nil {
		m = map[string]StudentScore{}
		f.rows[sessionID] = m
	}
	for _, e := range entries {
		row, ok := m[e.StudentID]
		if !ok {
			row = StudentScore{ID: "row-" + e.StudentID, ScoreSessionID: sessionID, StudentID: e.StudentID}
		}
		row.AssignmentScore = e.AssignmentScore
		row.MidtermScore = e.MidtermScore
		row.FinalScore = e.FinalScore
		row.Comments = e.Comments
		row.TotalScore = nil
		row.Grade = nil
		row.UpdatedAt = now
		m[e.StudentID] = row
	}
	return nil
}

func (f *fakeScoreStore) SaveComputedScores(_ context.Context, sessionID string, computed []StudentScore) error {
	m := map[string]StudentScore{}
	for _, sc := range computed {
		m[sc.StudentID] = sc
	}
	f.rows[sessionID] = m
	return nil
}

func (f *fakeScoreStore) ListScores(_ context.Context, sessionID string) ([]StudentScore, error) {
	var out []StudentScore
	for _, sc := range f.rows[sessionID] {
		out = append(out, sc)
	}
	return out, nil
}

type fakeAttendance struct {
	pct map[string]float64 // studentID -> percentage
}

func (f *fakeAttendance) Percentage(_ context.Context, studentID, _ string, _ attendance.Window) (attendance.Aggregate, error) {
	p, ok := f.pct[studentID]
	if !ok {
		return attendance.Aggregate{StudentID: studentID, NoData: true}, nil
	}
	return attendance.Aggregate{StudentID: studentID, Percentage: p, Attended: 1, Total: 1}, nil
}

type fakeConfigs struct{ cfg scoreconfig.Config }

func (f *fakeConfigs) Get(context.Context) (scoreconfig.Config, error) { return f.cfg, nil }

type fakeProvider struct {
	schedules map[string]roster.Schedule
	students  map[string][]roster.Student
}

func (f *fakeProvider) Schedule(_ context.Context, id string) (roster.Schedule, error) {
	s, ok := f.schedules[id]
	if !ok {
		return roster.Schedule{}, errs.NotFound("schedule", id)
	}
	return s, nil
}

func (f *fakeProvider) Roster(_ context.Context, scheduleID string) ([]roster.Student, error) {
	return f.students[scheduleID], nil
}

func (f *fakeProvider) IsEnrolled(_ context.Context, scheduleID, studentID string) (bool, error) {
	for _, st := range f.students[scheduleID] {
		if st.ID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func newTestWorkflow() (*Workflow, *fakeScoreStore) {
	store := newFakeScoreStore()
	provider := &fakeProvider{
		schedules: map[string]roster.Schedule{
			"sched-1": {ID: "sched-1", TeacherID: "teacher-1", CourseCode: "MATH101", Credits: 3},
		},
		students: map[string][]roster.Student{
			"sched-1": {{ID: "stu-1"}, {ID: "stu-2"}},
		},
	}
	att := &fakeAttendance{pct: map[string]float64{"stu-1": 80, "stu-2": 100}}
	cfgs := &fakeConfigs{cfg: scoreconfig.Config{
		ID:     "cfg-1",
		Config: grading.Config{AttendancePct100: 1000, AssignmentPct100: 3000, MidtermPct100: 3000, FinalPct100: 3000},
		Status: scoreconfig.StatusActive,
	}}
	wf := NewWorkflow(store, att, cfgs, provider, audit.Nop{}).
		WithClock(func() time.Time { return time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC) })
	return wf, store
}

func TestInitializeIdempotent(t *testing.T) {
	wf, _ := newTestWorkflow()
	ctx := context.Background()

	first, err := wf.Initialize(ctx, "sched-1", "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, StateDraft, first.Status)

	second, err := wf.Initialize(ctx, "sched-1", "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestInitializeWrongTeacher(t *testing.T) {
	wf, _ := newTestWorkflow()

	_, err := wf.Initialize(context.Background(), "sched-1", "teacher-2")
	assert.True(t, errs.IsValidation(err))
}

func TestBatchUpsertGuards(t *testing.T) {
	wf, store := newTestWorkflow()
	ctx := context.Background()

	sess, err := wf.Initialize(ctx, "sched-1", "teacher-1")
	require.NoError(t, err)

	err = wf.BatchUpsertScores(ctx, sess.ID, nil, "teacher-1")
	assert.True(t, errs.IsValidation(err), "empty batch")

	err = wf.BatchUpsertScores(ctx, sess.ID, []ScoreEntry{{StudentID: "stu-1"}}, "teacher-2")
	assert.True(t, errs.IsValidation(err), "wrong teacher")

	err = wf.BatchUpsertScores(ctx, sess.ID, []ScoreEntry{{StudentID: "stu-1", MidtermScore: 101}}, "teacher-1")
	assert.True(t, errs.IsValidation(err), "score over 100")

	err = wf.BatchUpsertScores(ctx, sess.ID, []ScoreEntry{{StudentID: "stranger", MidtermScore: 50}}, "teacher-1")
	assert.True(t, errs.IsValidation(err), "not enrolled")

	// non-DRAFT sheet rejects edits
	locked := sess
	locked.Status = StateSubmitted
	require.NoError(t, store.UpdateState(ctx, locked))
	err = wf.BatchUpsertScores(ctx, sess.ID, []ScoreEntry{{StudentID: "stu-1"}}, "teacher-1")
	assert.True(t, errs.IsInvalidStateTransition(err))
}

func entriesAll() []ScoreEntry {
	return []ScoreEntry{
		{StudentID: "stu-1", AssignmentScore: 0, MidtermScore: 70, FinalScore: 90},
		{StudentID: "stu-2", AssignmentScore: 95, MidtermScore: 85, FinalScore: 90},
	}
}

func TestRecalculate(t *testing.T) {
	wf, _ := newTestWorkflow()
	ctx := context.Background()

	sess, err := wf.Initialize(ctx, "sched-1", "teacher-1")
	require.NoError(t, err)
	require.NoError(t, wf.BatchUpsertScores(ctx, sess.ID, entriesAll(), "teacher-1"))

	rows, err := wf.Recalculate(ctx, sess.ID, "teacher-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byStudent := map[string]StudentScore{}
	for _, r := range rows {
		byStudent[r.StudentID] = r
	}

	// stu-1: 80×0.10 + 0×0.30 + 70×0.30 + 90×0.30 = 56.00 -> F
	s1 := byStudent["stu-1"]
	require.NotNil(t, s1.TotalScore)
	assert.Equal(t, 56.0, *s1.TotalScore)
	assert.Equal(t, "F", *s1.Grade)
	assert.Equal(t, 80.0, s1.AttendanceScore)
	assert.Equal(t, "cfg-1", *s1.ConfigID)

	// stu-2: 100×0.10 + 95×0.30 + 85×0.30 + 90×0.30 = 91.00 -> A
	s2 := byStudent["stu-2"]
	require.NotNil(t, s2.TotalScore)
	assert.Equal(t, 91.0, *s2.TotalScore)
	assert.Equal(t, "A", *s2.Grade)
}

func TestRecalculateIdempotent(t *testing.T) {
	wf, _ := newTestWorkflow()
	ctx := context.Background()

	sess, err := wf.Initialize(ctx, "sched-1", "teacher-1")
	require.NoError(t, err)
	require.NoError(t, wf.BatchUpsertScores(ctx, sess.ID, entriesAll(), "teacher-1"))

	first, err := wf.Recalculate(ctx, sess.ID, "teacher-1")
	require.NoError(t, err)
	second, err := wf.Recalculate(ctx, sess.ID, "teacher-1")
	require.NoError(t, err)

	totals := func(rows []StudentScore) map[string]float64 {
		m := map[string]float64{}
		for _, r := range rows {
			m[r.StudentID] = *r.TotalScore
		}
		return m
	}
	assert.Equal(t, totals(first), totals(second))
}

func TestSubmitRequiresRecalculation(t *testing.T) {
	wf, _ := newTestWorkflow()
	ctx := context.Background()

	sess, err := wf.Initialize(ctx, "sched-1", "teacher-1")
	require.NoError(t, err)
	require.NoError(t, wf.BatchUpsertScores(ctx, sess.ID, entriesAll(), "teacher-1"))

	// components entered but never recalculated: totals are nil
	_, err = wf.SubmitForReview(ctx, sess.ID, "", "teacher-1")
	assert.True(t, errs.IsValidation(err))

	_, err = wf.Recalculate(ctx, sess.ID, "teacher-1")
	require.NoError(t, err)

	got, err := wf.SubmitForReview(ctx, sess.ID, "ready for review", "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, StateSubmitted, got.Status)
	assert.Equal(t, "ready for review", got.TeacherComments)
	require.NotNil(t, got.SubmittedAt)
}

func TestEditAfterRecalculateInvalidatesTotals(t *testing.T) {
	wf, _ := newTestWorkflow()
	ctx := context.Background()

	sess, err := wf.Initialize(ctx, "sched-1", "teacher-1")
	require.NoError(t, err)
	require.NoError(t, wf.BatchUpsertScores(ctx, sess.ID, entriesAll(), "teacher-1"))
	_, err = wf.Recalculate(ctx, sess.ID, "teacher-1")
	require.NoError(t, err)

	// a later component edit clears the derived total; submit must fail
	// until the sheet is recalculated again
	require.NoError(t, wf.BatchUpsertScores(ctx, sess.ID,
		[]ScoreEntry{{StudentID: "stu-1", AssignmentScore: 100, MidtermScore: 70, FinalScore: 90}}, "teacher-1"))

	_, err = wf.SubmitForReview(ctx, sess.ID, "", "teacher-1")
	assert.True(t, errs.IsValidation(err))
}

func submittedSession(t *testing.T, wf *Workflow) ScoreSession {
	t.Helper()
	ctx := context.Background()
	sess, err := wf.Initialize(ctx, "sched-1", "teacher-1")
	require.NoError(t, err)
	require.NoError(t, wf.BatchUpsertScores(ctx, sess.ID, entriesAll(), "teacher-1"))
	_, err = wf.Recalculate(ctx, sess.ID, "teacher-1")
	require.NoError(t, err)
	got, err := wf.SubmitForReview(ctx, sess.ID, "", "teacher-1")
	require.NoError(t, err)
	return got
}

func TestReviewDecisions(t *testing.T) {
	for _, decision := range []State{StateApproved, StateRejected, StatePending} {
		t.Run(string(decision), func(t *testing.T) {
			wf, _ := newTestWorkflow()
			sess := submittedSession(t, wf)

			got, err := wf.Review(context.Background(), sess.ID, decision, "checked", "staff-1")
			require.NoError(t, err)
			assert.Equal(t, decision, got.Status)
			require.NotNil(t, got.ReviewerID)
			assert.Equal(t, "staff-1", *got.ReviewerID)
			assert.Equal(t, "checked", got.StaffComments)
			require.NotNil(t, got.ReviewedAt)
		})
	}
}

func TestReviewGuards(t *testing.T) {
	wf, _ := newTestWorkflow()
	ctx := context.Background()

	sess, err := wf.Initialize(ctx, "sched-1", "teacher-1")
	require.NoError(t, err)

	_, err = wf.Review(ctx, sess.ID, StateApproved, "", "staff-1")
	assert.True(t, errs.IsInvalidStateTransition(err), "cannot review a draft")

	_, err = wf.Review(ctx, sess.ID, State("MAYBE"), "", "staff-1")
	assert.True(t, errs.IsValidation(err), "unknown decision")
}

func TestReopenRejectedByTeacher(t *testing.T) {
	wf, _ := newTestWorkflow()
	ctx := context.Background()
	sess := submittedSession(t, wf)

	_, err := wf.Review(ctx, sess.ID, StateRejected, "fix stu-2", "staff-1")
	require.NoError(t, err)

	got, err := wf.Reopen(ctx, sess.ID, "teacher-1", false)
	require.NoError(t, err)
	assert.Equal(t, StateDraft, got.Status)
	assert.Nil(t, got.SubmittedAt)
	assert.Nil(t, got.ReviewedAt)
	assert.Nil(t, got.ReviewerID, "reopened draft keeps no reviewer")
	assert.Empty(t, got.StaffComments, "reopened draft keeps no staff comments")
}

func TestReopenApprovedStaffOnly(t *testing.T) {
	wf, _ := newTestWorkflow()
	ctx := context.Background()
	sess := submittedSession(t, wf)

	_, err := wf.Review(ctx, sess.ID, StateApproved, "", "staff-1")
	require.NoError(t, err)

	_, err = wf.Reopen(ctx, sess.ID, "teacher-1", false)
	assert.True(t, errs.IsValidation(err), "approved sheets are terminal for teachers")

	got, err := wf.Reopen(ctx, sess.ID, "staff-1", true)
	require.NoError(t, err)
	assert.Equal(t, StateDraft, got.Status)
}

func TestReopenGuards(t *testing.T) {
	wf, _ := newTestWorkflow()
	ctx := context.Background()

	sess, err := wf.Initialize(ctx, "sched-1", "teacher-1")
	require.NoError(t, err)

	_, err = wf.Reopen(ctx, sess.ID, "teacher-1", false)
	assert.True(t, errs.IsInvalidStateTransition(err), "draft cannot reopen")
}

func TestStateMachineTable(t *testing.T) {
	valid := []struct {
		from State
		act  Action
		want State
	}{
		{StateDraft, ActionSubmit, StateSubmitted},
		{StateSubmitted, ActionApprove, StateApproved},
		{StateSubmitted, ActionReject, StateRejected},
		{StateSubmitted, ActionPend, StatePending},
		{StateApproved, ActionReopen, StateDraft},
		{StateRejected, ActionReopen, StateDraft},
		{StatePending, ActionReopen, StateDraft},
	}
	for _, tt := range valid {
		got, err := tt.from.Next(tt.act)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	invalid := []struct {
		from State
		act  Action
	}{
		{StateDraft, ActionApprove},
		{StateDraft, ActionReopen},
		{StateSubmitted, ActionSubmit},
		{StateApproved, ActionSubmit},
		{StateApproved, ActionApprove},
	}
	for _, tt := range invalid {
		_, err := tt.from.Next(tt.act)
		assert.True(t, errs.IsInvalidStateTransition(err), "%s/%s", tt.from, tt.act)
	}
}
