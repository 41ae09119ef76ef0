package services

import (
	"testing"
	"time"

	"studysync-engine/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChallenges(store BlobStore) *ChallengeService {
	prog := newTestProgression(store)
	svc := NewChallengeService(store, prog)
	svc.now = fixedNow
	return svc
}

func TestChallengeProgressBounds(t *testing.T) {
	now := fixedNow()
	c := models.Challenge{Duration: 30, StartDate: models.Day(now)}

	assert.Equal(t, 1, ChallengeProgress(c, now), "day one on the start date")
	assert.Equal(t, 30, ChallengeProgress(c, now.AddDate(0, 0, 29)))
	assert.Equal(t, 30, ChallengeProgress(c, now.AddDate(0, 0, 100)), "clamped past the deadline")
	assert.Equal(t, 0, ChallengeProgress(c, now.AddDate(0, 0, -1)), "not started yet")
}

func TestChallengeProgressBadStartDate(t *testing.T) {
	c := models.Challenge{Duration: 30, StartDate: "soonish"}
	assert.Equal(t, 0, ChallengeProgress(c, fixedNow()))
}

func TestCreateChallengeValidation(t *testing.T) {
	svc := newTestChallenges(newMemStore())

	_, err := svc.Create("u1", "", 30, "")
	assert.Error(t, err)

	_, err = svc.Create("u1", "Daily reading", 0, "")
	assert.Error(t, err)

	_, err = svc.Create("u1", "Daily reading", 30, "10/03/2025")
	assert.Error(t, err)

	c, err := svc.Create("u1", "Daily reading", 30, "")
	require.NoError(t, err)
	assert.Equal(t, models.Day(fixedNow()), c.StartDate, "empty start date defaults to today")
	assert.Equal(t, models.ChallengeStatusActive, c.Status)
	assert.NotNil(t, c.History)
}

func TestCheckInIsIdempotentPerDay(t *testing.T) {
	store := newMemStore()
	svc := newTestChallenges(store)

	c, err := svc.Create("u1", "No sugar", 30, "")
	require.NoError(t, err)

	first, err := svc.CheckIn("u1", c.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, first.CompletedDays)
	assert.Len(t, first.History, 1)

	// Same calendar day again: guaranteed no-op, no extra XP.
	statsAfterFirst := svc.Progression.GetStats("u1")
	second, err := svc.CheckIn("u1", c.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, second.CompletedDays)
	assert.Len(t, second.History, 1)
	assert.Equal(t, statsAfterFirst, svc.Progression.GetStats("u1"))
}

func TestCheckInRewardsAndPenalties(t *testing.T) {
	store := newMemStore()
	svc := newTestChallenges(store)

	c, err := svc.Create("u1", "No sugar", 30, "")
	require.NoError(t, err)

	_, err = svc.CheckIn("u1", c.ID, true)
	require.NoError(t, err)
	stats := svc.Progression.GetStats("u1")
	assert.Equal(t, 10, stats.XP)
	assert.Equal(t, 0, stats.TotalTasksCompleted, "check-ins never touch the task counter")

	// Next day, a failed check-in. The penalty clamps at zero.
	day2 := fixedNow().AddDate(0, 0, 1)
	svc.now = func() time.Time { return day2 }

	updated, err := svc.CheckIn("u1", c.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CompletedDays, "failure does not count a day")
	assert.Len(t, updated.History, 2)
	assert.False(t, updated.History[1].Success)
	assert.Equal(t, 0, svc.Progression.GetStats("u1").XP)
}

func TestCheckInRollsBackWhenXPPersistFails(t *testing.T) {
	store := &keyFailStore{memStore: newMemStore(), failKey: models.KeyStats, fails: 1}
	prog := NewProgressionService(store, nil)
	prog.now = fixedNow
	svc := NewChallengeService(store, prog)
	svc.now = fixedNow

	c, err := svc.Create("u1", "No sugar", 30, "")
	require.NoError(t, err)

	_, err = svc.CheckIn("u1", c.ID, true)
	require.Error(t, err)

	// The day was un-recorded along with the failed credit.
	got := svc.List("u1")[0]
	assert.Empty(t, got.History)
	assert.Equal(t, 0, got.CompletedDays)
	assert.Empty(t, got.LastCheckIn)

	// The retry re-runs both writes and pays the reward exactly once.
	after, err := svc.CheckIn("u1", c.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, after.CompletedDays)
	assert.Len(t, after.History, 1)
	assert.Equal(t, 10, prog.GetStats("u1").XP)
}

func TestCheckInUnknownChallenge(t *testing.T) {
	svc := newTestChallenges(newMemStore())
	_, err := svc.CheckIn("u1", 12345, true)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestDeleteChallenge(t *testing.T) {
	svc := newTestChallenges(newMemStore())

	c, err := svc.Create("u1", "No sugar", 30, "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete("u1", c.ID))
	assert.Empty(t, svc.List("u1"))
	assert.ErrorIs(t, svc.Delete("u1", c.ID), ErrChallengeNotFound)
}

func TestRolloverFlipsElapsedChallenges(t *testing.T) {
	store := newMemStore()
	svc := newTestChallenges(store)

	start := models.Day(fixedNow().AddDate(0, 0, -9))
	done, err := svc.Create("u1", "Ten day sprint", 10, start)
	require.NoError(t, err)
	running, err := svc.Create("u1", "Month of focus", 30, start)
	require.NoError(t, err)

	require.NoError(t, svc.RolloverUser("u1"))

	byID := map[int64]models.Challenge{}
	for _, c := range svc.List("u1") {
		byID[c.ID] = c
	}
	assert.Equal(t, models.ChallengeStatusCompleted, byID[done.ID].Status)
	assert.Equal(t, models.ChallengeStatusActive, byID[running.ID].Status)
}
