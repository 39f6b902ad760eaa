package attendance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradewise/gradewise-backend/internal/audit"
	"github.com/gradewise/gradewise-backend/internal/core/errs"
)

// seedSessions creates and finalizes n sessions, checking stu-1 in for
// the first `attended` of them.
func seedSessions(t *testing.T, svc *Service, n, attended int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		date := fmt.Sprintf("2026-03-%02d", i+2)
		sess, err := svc.CreateSession(ctx, "sched-1", "teacher-1", date)
		require.NoError(t, err)
		if i < attended {
			_, err = svc.CheckIn(ctx, sess.Token, "stu-1")
			require.NoError(t, err)
		}
		require.NoError(t, svc.Finalize(ctx, sess.ID, "teacher-1"))
	}
}

func TestPercentageNoData(t *testing.T) {
	store, rp := testFixtures()
	agg := NewAggregator(store, rp)

	got, err := agg.Percentage(context.Background(), "stu-1", "sched-1", Window{})
	require.NoError(t, err)
	assert.True(t, got.NoData)
	assert.Zero(t, got.Percentage)
	assert.Zero(t, got.Total)
}

func TestPercentageUnknownSchedule(t *testing.T) {
	store, rp := testFixtures()
	agg := NewAggregator(store, rp)

	_, err := agg.Percentage(context.Background(), "stu-1", "sched-missing", Window{})
	assert.True(t, errs.IsNotFound(err), "a bad schedule id must not read as NoData, got %v", err)
}

func TestPercentageCountsFinalizedOnly(t *testing.T) {
	store, rp := testFixtures()
	// clock fixed inside the session window so check-ins are PRESENT
	now := time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC)
	svc := NewService(store, rp, audit.Nop{}, WithClock(fixedClock(now)), WithTokenTTL(24*365*time.Hour))
	agg := NewAggregator(store, rp)
	ctx := context.Background()

	seedSessions(t, svc, 3, 2)

	// one extra session left open must not count
	_, err := svc.CreateSession(ctx, "sched-1", "teacher-1", "2026-03-20")
	require.NoError(t, err)

	got, err := agg.Percentage(ctx, "stu-1", "sched-1", Window{})
	require.NoError(t, err)
	assert.False(t, got.NoData)
	assert.Equal(t, 2, got.Attended)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 66.67, got.Percentage)
}

func TestPercentageLateCountsAsAttended(t *testing.T) {
	store, rp := testFixtures()
	// 09:00 start, grace 10 min, check-in at 09:30 -> LATE
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	svc := NewService(store, rp, audit.Nop{},
		WithClock(fixedClock(now)),
		WithTokenTTL(time.Hour),
		WithGraceOffset(10*time.Minute),
	)
	agg := NewAggregator(store, rp)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, "sched-1", "teacher-1", "2026-03-02")
	require.NoError(t, err)
	rec, err := svc.CheckIn(ctx, sess.Token, "stu-1")
	require.NoError(t, err)
	require.Equal(t, StatusLate, rec.Status)
	require.NoError(t, svc.Finalize(ctx, sess.ID, "teacher-1"))

	got, err := agg.Percentage(ctx, "stu-1", "sched-1", Window{})
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Percentage)
}

func TestClassAggregate(t *testing.T) {
	store, rp := testFixtures()
	now := time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC)
	svc := NewService(store, rp, audit.Nop{}, WithClock(fixedClock(now)), WithTokenTTL(24*365*time.Hour))
	agg := NewAggregator(store, rp)
	ctx := context.Background()

	seedSessions(t, svc, 2, 2)

	out, err := agg.ClassAggregate(ctx, "class-1", "sched-1")
	require.NoError(t, err)
	require.Len(t, out, 3)

	byStudent := map[string]Aggregate{}
	for _, a := range out {
		byStudent[a.StudentID] = a
	}
	assert.Equal(t, 100.0, byStudent["stu-1"].Percentage)
	assert.Equal(t, 0.0, byStudent["stu-2"].Percentage)
	assert.False(t, byStudent["stu-2"].NoData)
}

func TestClassAggregateWrongClass(t *testing.T) {
	store, rp := testFixtures()
	agg := NewAggregator(store, rp)

	_, err := agg.ClassAggregate(context.Background(), "class-other", "sched-1")
	assert.True(t, errs.IsValidation(err))
}
