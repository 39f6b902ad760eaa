package roster

import "context"

// Provider is the read surface the core services depend on.
type Provider interface {
	// Schedule returns one schedule or errs.NotFound.
	Schedule(ctx context.Context, id string) (Schedule, error)
	// Roster returns the enrolled students ordered by display name.
	Roster(ctx context.Context, scheduleID string) ([]Student, error)
	// IsEnrolled reports whether the student belongs to the schedule.
	IsEnrolled(ctx context.Context, scheduleID, studentID string) (bool, error)
}
