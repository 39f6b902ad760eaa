package attendance

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/gradewise/gradewise-backend/internal/audit"
	"github.com/gradewise/gradewise-backend/internal/core/errs"
	"github.com/gradewise/gradewise-backend/internal/roster"
)

// Service option knobs. Token TTL and grace offset are deployment
// configuration, not constants.
type Option func(*Service)

func WithTokenTTL(d time.Duration) Option    { return func(s *Service) { s.tokenTTL = d } }
func WithGraceOffset(d time.Duration) Option { return func(s *Service) { s.grace = d } }
func WithClock(now func() time.Time) Option  { return func(s *Service) { s.now = now } }

// Service issues session tokens and records attendance against them.
type Service struct {
	store  Store
	roster roster.Provider
	audit  audit.Recorder

	tokenTTL time.Duration
	grace    time.Duration
	now      func() time.Time
}

func NewService(store Store, provider roster.Provider, rec audit.Recorder, opts ...Option) *Service {
	s := &Service{
		store:    store,
		roster:   provider,
		audit:    rec,
		tokenTTL: 15 * time.Minute,
		grace:    10 * time.Minute,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// newToken returns 128 bits of entropy, hex-encoded. The token carries
// no claims; it is only a lookup key.
func newToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return hex.EncodeToString(b)
}

// CreateSession opens a session for one schedule+date. The assigned
// teacher is the only one allowed to open it, and at most one open
// session may exist per schedule+date.
func (s *Service) CreateSession(ctx context.Context, scheduleID, teacherID, sessionDate string) (Session, error) {
	day, err := time.ParseInLocation("2006-01-02", sessionDate, time.UTC)
	if err != nil {
		return Session{}, errs.ValidationField("session_date", "must be YYYY-MM-DD")
	}
	sched, err := s.roster.Schedule(ctx, scheduleID)
	if err != nil {
		return Session{}, err
	}
	if sched.TeacherID != teacherID {
		return Session{}, errs.Validation("only the assigned teacher may open a session for this schedule")
	}

	startsAt := day.Add(time.Duration(sched.StartsAtMinutes) * time.Minute)
	sess := Session{
		ID:             uuid.NewString(),
		ScheduleID:     scheduleID,
		TeacherID:      teacherID,
		SessionDate:    sessionDate,
		Token:          newToken(),
		TokenExpiresAt: startsAt.Add(s.tokenTTL).Unix(),
		StartsAt:       startsAt.Unix(),
		CreatedAt:      s.now().Unix(),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return Session{}, err
	}
	s.audit.Record(ctx, audit.TypeSessionCreated, sess.ID, map[string]string{
		"schedule_id": scheduleID, "session_date": sessionDate,
	})
	return sess, nil
}

// CheckIn resolves the token and upserts the student's record. A second
// check-in by the same student updates the existing row. One clock read
// covers every comparison in the call.
func (s *Service) CheckIn(ctx context.Context, token, studentID string) (Record, error) {
	now := s.now()

	sess, err := s.store.GetSessionByToken(ctx, token)
	if err != nil {
		return Record{}, err
	}
	if sess.Finalized {
		return Record{}, &errs.AlreadyFinalizedError{SessionID: sess.ID}
	}
	if now.Unix() > sess.TokenExpiresAt {
		return Record{}, &errs.ExpiredTokenError{Token: token}
	}
	enrolled, err := s.roster.IsEnrolled(ctx, sess.ScheduleID, studentID)
	if err != nil {
		return Record{}, err
	}
	if !enrolled {
		return Record{}, errs.Validation("student is not enrolled in this schedule")
	}

	status := StatusPresent
	if now.Unix() > sess.StartsAt+int64(s.grace.Seconds()) {
		status = StatusLate
	}
	rec := Record{
		ID:         uuid.NewString(),
		SessionID:  sess.ID,
		StudentID:  studentID,
		Status:     status,
		RecordedAt: now.Unix(),
		RecordedBy: studentID,
	}
	if err := s.store.UpsertRecord(ctx, rec); err != nil {
		return Record{}, err
	}
	s.audit.Record(ctx, audit.TypeCheckIn, sess.ID, map[string]string{
		"student_id": studentID, "status": string(status),
	})
	return rec, nil
}

// ManualMark is the teacher override that bypasses the token. Same
// finalized and ownership guards as check-in.
func (s *Service) ManualMark(ctx context.Context, sessionID, studentID string, status Status, comment, teacherID string) (Record, error) {
	if !status.Valid() {
		return Record{}, errs.ValidationField("status", "unknown attendance status")
	}
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return Record{}, err
	}
	if sess.Finalized {
		return Record{}, &errs.AlreadyFinalizedError{SessionID: sess.ID}
	}
	if sess.TeacherID != teacherID {
		return Record{}, errs.Validation("only the session's teacher may mark attendance")
	}
	enrolled, err := s.roster.IsEnrolled(ctx, sess.ScheduleID, studentID)
	if err != nil {
		return Record{}, err
	}
	if !enrolled {
		return Record{}, errs.Validation("student is not enrolled in this schedule")
	}

	rec := Record{
		ID:         uuid.NewString(),
		SessionID:  sess.ID,
		StudentID:  studentID,
		Status:     status,
		Comment:    comment,
		RecordedAt: s.now().Unix(),
		RecordedBy: teacherID,
	}
	if err := s.store.UpsertRecord(ctx, rec); err != nil {
		return Record{}, err
	}
	s.audit.Record(ctx, audit.TypeManualMark, sess.ID, map[string]string{
		"student_id": studentID, "status": string(status), "by": teacherID,
	})
	return rec, nil
}

// Finalize freezes the session. Enrolled students with no record get an
// implicit ABSENT row; the insert and the finalized flag commit as one
// transaction.
func (s *Service) Finalize(ctx context.Context, sessionID, teacherID string) error {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.Finalized {
		return &errs.AlreadyFinalizedError{SessionID: sess.ID}
	}
	if sess.TeacherID != teacherID {
		return errs.Validation("only the session's teacher may finalize it")
	}

	students, err := s.roster.Roster(ctx, sess.ScheduleID)
	if err != nil {
		return err
	}
	existing, err := s.store.ListRecords(ctx, sessionID)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		seen[r.StudentID] = true
	}

	now := s.now().Unix()
	var absentees []Record
	for _, st := range students {
		if seen[st.ID] {
			continue
		}
		absentees = append(absentees, Record{
			ID:         uuid.NewString(),
			SessionID:  sessionID,
			StudentID:  st.ID,
			Status:     StatusAbsent,
			RecordedAt: now,
			RecordedBy: teacherID,
		})
	}
	if err := s.store.Finalize(ctx, sessionID, absentees); err != nil {
		return err
	}
	s.audit.Record(ctx, audit.TypeFinalized, sessionID, map[string]int{
		"implicit_absent": len(absentees),
	})
	return nil
}

// Reopen clears the finalized flag without touching records. Staff only
// (enforced by the capability table at the transport layer).
func (s *Service) Reopen(ctx context.Context, sessionID, staffID string) error {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !sess.Finalized {
		return errs.Validation("session is not finalized")
	}
	if err := s.store.Reopen(ctx, sessionID); err != nil {
		return err
	}
	s.audit.Record(ctx, audit.TypeReopened, sessionID, map[string]string{"by": staffID})
	return nil
}

// List returns the session's records ordered by student display name.
func (s *Service) List(ctx context.Context, sessionID string) ([]StudentRecord, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.store.ListRecords(ctx, sessionID)
}
