package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvdberg/klusplan/internal/domain"
	"github.com/mvdberg/klusplan/internal/state"
	"github.com/mvdberg/klusplan/internal/testutil"
)

func fixture(t *testing.T) (*Center, *testutil.MockClock, *testutil.MockBundleCache) {
	t.Helper()
	cache := &testutil.MockBundleCache{}
	store := state.New(cache, domain.NopLogger{})
	task := store.NewTask()
	task.Status = domain.StatusScheduled
	task.Scheduled = domain.Schedule{Start: "2026-03-10T14:00", End: "2026-03-10T17:00"}
	require.NoError(t, store.SaveTask(task))

	clock := &testutil.MockClock{NowTime: time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)}
	return New(store, cache, clock, domain.NopLogger{}), clock, cache
}

func TestCenter_DismissSuppressesUntilRollover(t *testing.T) {
	center, clock, _ := fixture(t)

	got := center.Build()
	require.Len(t, got, 1)
	assert.Equal(t, domain.RuleStartsToday, got[0].Rule)

	center.Dismiss(got[0].Key)
	assert.Empty(t, center.Build())

	// Same day, later: still suppressed.
	clock.Advance(2 * time.Hour)
	assert.Empty(t, center.Build())

	// Next day the dismissal expires. The task is now overdue instead.
	clock.Set(time.Date(2026, 3, 11, 8, 0, 0, 0, time.Local))
	got = center.Build()
	require.Len(t, got, 1)
	assert.Equal(t, domain.RuleOverdue, got[0].Rule)
}

func TestCenter_DismissAll(t *testing.T) {
	center, _, _ := fixture(t)
	require.NotEmpty(t, center.Build())
	center.DismissAll()
	assert.Empty(t, center.Build())
}

func TestCenter_DismissalsPersist(t *testing.T) {
	center, clock, cache := fixture(t)
	got := center.Build()
	require.Len(t, got, 1)
	center.Dismiss(got[0].Key)

	// A fresh Center over the same cache restores today's dismissals.
	restored := New(center.store, cache, clock, domain.NopLogger{})
	assert.Empty(t, restored.Build())

	// But a Center started on a later date ignores them.
	clock.Set(time.Date(2026, 3, 11, 8, 0, 0, 0, time.Local))
	nextDay := New(center.store, cache, clock, domain.NopLogger{})
	assert.NotEmpty(t, nextDay.Build())
}
