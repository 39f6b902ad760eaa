package scores

import "context"

type Store interface {
	// GetOrCreate returns the single score session for a schedule,
	// inserting it if missing. Idempotent under concurrency: the
	// schedule_id uniqueness makes the loser of a race read the
	// winner's row.
	GetOrCreate(ctx context.Context, sess ScoreSession) (ScoreSession, error)
	Get(ctx context.Context, id string) (ScoreSession, error)

	// UpdateState persists status, comments, reviewer and timestamps.
	UpdateState(ctx context.Context, sess ScoreSession) error

	// UpsertComponentScores writes teacher-entered components in one
	// transaction and clears the derived total+grade of every touched
	// row, so a submit cannot use stale totals.
	UpsertComponentScores(ctx context.Context, scoreSessionID string, entries []ScoreEntry, now int64) error

	// SaveComputedScores persists a full recalculation as one
	// transaction: either every student's row commits or none do.
	SaveComputedScores(ctx context.Context, scoreSessionID string, computed []StudentScore) error

	ListScores(ctx context.Context, scoreSessionID string) ([]StudentScore, error)
}
