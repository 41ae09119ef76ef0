package services

import (
	"testing"
	"time"

	"studysync-engine/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateStreakSameDayNoChange(t *testing.T) {
	now := fixedNow()
	stats := models.DefaultStats(now)
	stats.Streak = 5
	stats.LastActive = now.Add(-3 * time.Hour)

	next, changed := EvaluateStreak(stats, now)
	assert.False(t, changed)
	assert.Equal(t, 5, next.Streak)
}

func TestEvaluateStreakYesterdayIncrements(t *testing.T) {
	now := fixedNow()
	stats := models.DefaultStats(now)
	stats.Streak = 5
	stats.LastActive = now.AddDate(0, 0, -1)

	next, changed := EvaluateStreak(stats, now)
	assert.True(t, changed)
	assert.Equal(t, 6, next.Streak)
	assert.Equal(t, models.Day(now), models.Day(next.LastActive))
}

func TestEvaluateStreakGapResets(t *testing.T) {
	now := fixedNow()
	stats := models.DefaultStats(now)
	stats.Streak = 12
	stats.LastActive = now.AddDate(0, 0, -3)

	next, changed := EvaluateStreak(stats, now)
	assert.True(t, changed)
	assert.Equal(t, 1, next.Streak)
}

func TestEvaluateStreakCrossesMidnightBoundaryOnly(t *testing.T) {
	// 23:59 yesterday to 00:01 today is a one-day step even though
	// almost no wall-clock time passed.
	now := time.Date(2025, 3, 10, 0, 1, 0, 0, time.UTC)
	stats := models.DefaultStats(now)
	stats.Streak = 2
	stats.LastActive = time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC)

	next, changed := EvaluateStreak(stats, now)
	assert.True(t, changed)
	assert.Equal(t, 3, next.Streak)
}

func TestEnsureEvaluatedRunsOncePerSession(t *testing.T) {
	store := newMemStore()
	svc := NewStreakService(store)
	svc.now = fixedNow

	seed := models.DefaultStats(fixedNow())
	seed.Streak = 4
	seed.LastActive = fixedNow().AddDate(0, 0, -1)
	require.NoError(t, store.Save("u1", models.KeyStats, seed))

	first, err := svc.EnsureEvaluated("u1")
	require.NoError(t, err)
	assert.Equal(t, 5, first.Streak)

	// Second call within the same session is a no-op even though the
	// stored lastActive is already today.
	second, err := svc.EnsureEvaluated("u1")
	require.NoError(t, err)
	assert.Equal(t, 5, second.Streak)
}

func TestEnsureEvaluatedRetriesAfterSaveFailure(t *testing.T) {
	store := &flakyStore{memStore: newMemStore(), failSaves: 1}
	svc := NewStreakService(store)
	svc.now = fixedNow

	seed := models.DefaultStats(fixedNow())
	seed.Streak = 4
	seed.LastActive = fixedNow().AddDate(0, 0, -1)
	require.NoError(t, store.memStore.Save("u1", models.KeyStats, seed))

	_, err := svc.EnsureEvaluated("u1")
	require.Error(t, err)

	// The failed save must not close the gate: the same-day retry
	// still credits the day.
	stats, err := svc.EnsureEvaluated("u1")
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Streak)
}

func TestForgetSessionReopensTheGate(t *testing.T) {
	store := newMemStore()
	svc := NewStreakService(store)

	day := fixedNow()
	svc.now = func() time.Time { return day }

	seed := models.DefaultStats(day)
	seed.Streak = 1
	seed.LastActive = day.AddDate(0, 0, -1)
	require.NoError(t, store.Save("u1", models.KeyStats, seed))

	first, err := svc.EnsureEvaluated("u1")
	require.NoError(t, err)
	assert.Equal(t, 2, first.Streak)

	svc.ForgetSession("u1")
	day = day.AddDate(0, 0, 1)

	second, err := svc.EnsureEvaluated("u1")
	require.NoError(t, err)
	assert.Equal(t, 3, second.Streak)
}
