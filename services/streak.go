package services

import (
	"log"
	"sync"
	"time"

	"studysync-engine/models"
)

// EvaluateStreak advances or resets the streak by comparing calendar
// dates only. Same day: no change. Exactly yesterday: streak+1. Anything
// older — or a lastActive in the future — resets to 1. The returned bool
// reports whether stats changed.
func EvaluateStreak(stats models.Stats, now time.Time) (models.Stats, bool) {
	today := models.Day(now)
	last := models.Day(stats.LastActive)

	if today == last {
		return stats, false
	}

	yesterday := models.Day(now.AddDate(0, 0, -1))
	if last == yesterday {
		stats.Streak++
	} else {
		stats.Streak = 1
	}
	stats.LastActive = now
	return stats, true
}

// StreakService runs the once-per-session streak check. The per-user
// gate stops concurrent session bootstraps from double-incrementing.
type StreakService struct {
	Store BlobStore

	mu        sync.Mutex
	evaluated map[string]string // userID → date the check ran

	now func() time.Time
}

func NewStreakService(store BlobStore) *StreakService {
	return &StreakService{
		Store:     store,
		evaluated: make(map[string]string),
		now:       time.Now,
	}
}

// EnsureEvaluated runs the streak check exactly once per user per login
// session. It must run before any other mutation persists during
// bootstrap; callers sequence it right after identity resolution.
func (s *StreakService) EnsureEvaluated(userID string) (models.Stats, error) {
	now := s.now()
	today := models.Day(now)

	s.mu.Lock()
	already := s.evaluated[userID] == today
	s.evaluated[userID] = today
	s.mu.Unlock()

	var stats models.Stats
	loadOr(s.Store, userID, models.KeyStats, &stats, func() {
		stats = models.DefaultStats(now)
	})
	if !stats.Valid() {
		stats = models.DefaultStats(now)
	}

	if already {
		return stats, nil
	}

	next, changed := EvaluateStreak(stats, now)
	if !changed {
		return stats, nil
	}
	if err := s.Store.Save(userID, models.KeyStats, next); err != nil {
		// Reopen the gate so a retry can still credit the day.
		s.mu.Lock()
		delete(s.evaluated, userID)
		s.mu.Unlock()
		return stats, err
	}
	log.Printf("🔥 [STREAK] %s → streak=%d", userID, next.Streak)
	return next, nil
}

// ForgetSession clears the gate so the next login re-evaluates.
func (s *StreakService) ForgetSession(userID string) {
	s.mu.Lock()
	delete(s.evaluated, userID)
	s.mu.Unlock()
}
