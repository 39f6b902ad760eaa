package attendance

import (
	"context"

	"github.com/gradewise/gradewise-backend/internal/core/errs"
	"github.com/gradewise/gradewise-backend/internal/grading"
	"github.com/gradewise/gradewise-backend/internal/roster"
)

// Aggregate is one student's attendance summary over finalized sessions.
// NoData distinguishes "no finalized sessions yet" from a real 0%.
type Aggregate struct {
	StudentID  string  `json:"student_id"`
	Attended   int     `json:"attended"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	NoData     bool    `json:"no_data"`
}

// Aggregator computes attendance percentages from finalized sessions
// only; open or reopened sessions never count.
type Aggregator struct {
	store  Store
	roster roster.Provider
}

func NewAggregator(store Store, provider roster.Provider) *Aggregator {
	return &Aggregator{store: store, roster: provider}
}

// Percentage is attended/total × 100 over finalized sessions in the
// window. Zero sessions yields 0 with NoData set, never a division.
// An unknown schedule is NotFound, not NoData.
func (a *Aggregator) Percentage(ctx context.Context, studentID, scheduleID string, w Window) (Aggregate, error) {
	if _, err := a.roster.Schedule(ctx, scheduleID); err != nil {
		return Aggregate{}, err
	}
	return a.percentage(ctx, studentID, scheduleID, w)
}

func (a *Aggregator) percentage(ctx context.Context, studentID, scheduleID string, w Window) (Aggregate, error) {
	attended, total, err := a.store.FinalizedCounts(ctx, scheduleID, studentID, w)
	if err != nil {
		return Aggregate{}, err
	}
	agg := Aggregate{StudentID: studentID, Attended: attended, Total: total}
	if total == 0 {
		agg.NoData = true
		return agg, nil
	}
	agg.Percentage = grading.Round2(float64(attended) / float64(total) * 100)
	return agg, nil
}

// ClassAggregate applies the same formula to every enrolled student.
func (a *Aggregator) ClassAggregate(ctx context.Context, classID, scheduleID string) ([]Aggregate, error) {
	sched, err := a.roster.Schedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if classID != "" && sched.ClassID != classID {
		return nil, errs.Validation("schedule does not belong to this class")
	}
	students, err := a.roster.Roster(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	out := make([]Aggregate, 0, len(students))
	for _, st := range students {
		agg, err := a.percentage(ctx, st.ID, scheduleID, Window{})
		if err != nil {
			return nil, err
		}
		out = append(out, agg)
	}
	return out, nil
}
