package attendance

import "context"

// Window bounds an aggregation query by session date, inclusive.
// Zero values leave the corresponding bound open.
type Window struct {
	From string // YYYY-MM-DD
	To   string // YYYY-MM-DD
}

type Store interface {
	// CreateSession inserts a new session. A second open session for the
	// same schedule+date fails with errs.Conflict.
	CreateSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	GetSessionByToken(ctx context.Context, token string) (Session, error)

	// UpsertRecord writes the single record for (session, student) as one
	// atomic statement; a concurrent duplicate becomes an update, never a
	// second row.
	UpsertRecord(ctx context.Context, r Record) error

	// Finalize marks the session finalized and materializes the given
	// absentee records in the same transaction. Records that appeared in
	// the meantime win over the absentee placeholders.
	Finalize(ctx context.Context, sessionID string, absentees []Record) error
	Reopen(ctx context.Context, sessionID string) error

	// ListRecords returns the session's records ordered by student
	// display name (point-in-time read).
	ListRecords(ctx context.Context, sessionID string) ([]StudentRecord, error)

	// FinalizedCounts returns how many finalized sessions the schedule
	// has inside the window and how many of them the student attended.
	FinalizedCounts(ctx context.Context, scheduleID, studentID string, w Window) (attended, total int, err error)
}
