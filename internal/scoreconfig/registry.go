package scoreconfig

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gradewise/gradewise-backend/internal/audit"
	"github.com/gradewise/gradewise-backend/internal/core/errs"
	"github.com/gradewise/gradewise-backend/internal/grading"
)

// DefaultWeights is installed lazily when no configuration exists yet:
// attendance 10%, assignment 30%, midterm 30%, final 30%.
var DefaultWeights = grading.Config{
	AttendancePct100: 1000,
	AssignmentPct100: 3000,
	MidtermPct100:    3000,
	FinalPct100:      3000,
}

// Registry validates and activates weight sets.
type Registry struct {
	store Store
	audit audit.Recorder
	now   func() time.Time
}

func NewRegistry(store Store, rec audit.Recorder) *Registry {
	return &Registry{store: store, audit: rec, now: time.Now}
}

// CreateOrUpdate activates a new weight set. Each weight must lie in
// [0,100] and the four must total exactly 100.00; the swap with the
// previously active row is one transaction, so there is never a window
// with zero or two active configurations.
func (r *Registry) CreateOrUpdate(ctx context.Context, weights grading.Config) (Config, error) {
	for _, w := range []int{weights.AttendancePct100, weights.AssignmentPct100, weights.MidtermPct100, weights.FinalPct100} {
		if w < 0 || w > grading.TotalPct100 {
			return Config{}, errs.Validation("each percentage must be between 0 and 100")
		}
	}
	if weights.Sum() != grading.TotalPct100 {
		return Config{}, errs.Validation("percentages must total 100")
	}

	cfg := Config{
		ID:        uuid.NewString(),
		Config:    weights,
		Status:    StatusActive,
		CreatedAt: r.now().Unix(),
	}
	if err := r.store.Activate(ctx, cfg); err != nil {
		return Config{}, err
	}
	r.audit.Record(ctx, audit.TypeConfigActivated, cfg.ID, weights)
	return cfg, nil
}

// Get returns the active configuration, installing the default weight
// set on first access.
func (r *Registry) Get(ctx context.Context) (Config, error) {
	cfg, err := r.store.Active(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errs.IsNotFound(err) {
		return Config{}, err
	}
	def := Config{
		ID:        uuid.NewString(),
		Config:    DefaultWeights,
		Status:    StatusActive,
		CreatedAt: r.now().Unix(),
	}
	if aerr := r.store.Activate(ctx, def); aerr != nil {
		if errs.IsConflict(aerr) {
			// Lost the initialization race; the winner's row is active.
			return r.store.Active(ctx)
		}
		return Config{}, aerr
	}
	return def, nil
}
