package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogoutDropsRunningTimer(t *testing.T) {
	timer := NewTimerService()
	svc := NewSessionService(nil, nil, NewStreakService(newMemStore()), nil, timer)

	started := timer.Toggle("u1")
	require.True(t, started.IsActive)

	require.NoError(t, svc.Logout("u1", ""))

	timer.mu.Lock()
	_, running := timer.timers["u1"]
	timer.mu.Unlock()
	assert.False(t, running, "ticker must not outlive the session")
}

func TestLogoutClearsStreakGate(t *testing.T) {
	store := newMemStore()
	streak := NewStreakService(store)
	streak.now = fixedNow
	svc := NewSessionService(nil, nil, streak, nil, nil)

	_, err := streak.EnsureEvaluated("u1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout("u1", ""))

	streak.mu.Lock()
	_, gated := streak.evaluated["u1"]
	streak.mu.Unlock()
	assert.False(t, gated)
}
