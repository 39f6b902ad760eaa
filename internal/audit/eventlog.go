// Package audit appends domain events (check-ins, finalizations, review
// decisions, config activations) to an append-only event_log table.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Event types recorded by the core services.
const (
	TypeSessionCreated  = "attendance.session_created"
	TypeCheckIn         = "attendance.checkin"
	TypeManualMark      = "attendance.manual_mark"
	TypeFinalized       = "attendance.finalized"
	TypeReopened        = "attendance.reopened"
	TypeConfigActivated = "scoreconfig.activated"
	TypeScoresSubmitted = "scores.submitted"
	TypeScoresReviewed  = "scores.reviewed"
	TypeScoresReopened  = "scores.reopened"
)

// Recorder is what the services depend on; tests use a no-op.
type Recorder interface {
	Record(ctx context.Context, typ, key string, data any)
}

// Log writes events to the database. Append failures are swallowed:
// audit is best-effort and never fails the operation it describes.
type Log struct{ db *sql.DB }

func NewLog(db *sql.DB) *Log { return &Log{db: db} }

func (l *Log) Record(ctx context.Context, typ, key string, data any) {
	buf, err := json.Marshal(data)
	if err != nil {
		buf = []byte("{}")
	}
	_, _ = l.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, string(buf), time.Now().Unix())
}

// Nop discards events.
type Nop struct{}

func (Nop) Record(context.Context, string, string, any) {}
