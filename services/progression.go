package services

import (
	"fmt"
	"log"
	"time"

	"studysync-engine/models"

	"gorm.io/gorm"
)

// XPRewards define the per-priority task rewards and the challenge
// check-in amounts (tunable via config/env later).
type XPRewards struct {
	HighTaskXP       int
	MediumTaskXP     int
	LowTaskXP        int
	ChallengeReward  int
	ChallengePenalty int
}

var DefaultXPRewards = XPRewards{
	HighTaskXP:       30,
	MediumTaskXP:     20,
	LowTaskXP:        10,
	ChallengeReward:  10,
	ChallengePenalty: 20,
}

// MaxXPGrowth: each level-up raises the threshold to floor(maxXp * 1.5).
const MaxXPGrowth = 1.5

// XPForPriority returns the completion reward for a task priority.
// Unknown priorities fall back to the medium reward.
func XPForPriority(priority string) int {
	switch priority {
	case models.PriorityHigh:
		return DefaultXPRewards.HighTaskXP
	case models.PriorityLow:
		return DefaultXPRewards.LowTaskXP
	default:
		return DefaultXPRewards.MediumTaskXP
	}
}

// ApplyXP applies an XP delta and a completed-task-count delta to stats
// and reports whether a level boundary was crossed. XP never goes
// negative. A single call promotes at most one level, even when the
// delta is large enough to cross two thresholds; the surplus stays
// banked against the next call.
func ApplyXP(stats models.Stats, delta int, taskCountDelta int) (models.Stats, bool) {
	xp := stats.XP + delta
	if xp < 0 {
		xp = 0
	}

	level := stats.Level
	maxXP := stats.MaxXP
	leveledUp := false

	if xp >= maxXP {
		level++
		xp -= maxXP
		maxXP = int(float64(maxXP) * MaxXPGrowth)
		leveledUp = true
	}

	total := stats.TotalTasksCompleted + taskCountDelta
	if total < 0 {
		total = 0
	}

	stats.Level = level
	stats.XP = xp
	stats.MaxXP = maxXP
	stats.TotalTasksCompleted = total
	return stats, leveledUp
}

type ProgressionService struct {
	Store BlobStore
	DB    *gorm.DB

	now func() time.Time
}

func NewProgressionService(store BlobStore, db *gorm.DB) *ProgressionService {
	return &ProgressionService{Store: store, DB: db, now: time.Now}
}

// loadStats returns the stored stats or first-run defaults. Blobs that
// decode but violate the invariants are discarded the same way.
func (s *ProgressionService) loadStats(userID string) models.Stats {
	var stats models.Stats
	loadOr(s.Store, userID, models.KeyStats, &stats, func() {
		stats = models.DefaultStats(s.now())
	})
	if !stats.Valid() {
		stats = models.DefaultStats(s.now())
	}
	return stats
}

// GetStats returns the current progression blob for a user.
func (s *ProgressionService) GetStats(userID string) models.Stats {
	return s.loadStats(userID)
}

// AwardXP applies a delta to the stored stats and persists the result.
// A level-up is recorded as an event row for the SSE stream; the event
// write is fire-and-forget and never re-enters XP application.
func (s *ProgressionService) AwardXP(userID string, delta, taskCountDelta int, source string) (models.Stats, bool, error) {
	stats := s.loadStats(userID)
	stats, leveledUp := ApplyXP(stats, delta, taskCountDelta)

	if err := s.Store.Save(userID, models.KeyStats, stats); err != nil {
		return stats, false, fmt.Errorf("persist stats for %s: %w", userID, err)
	}

	if leveledUp && s.DB != nil {
		event := models.LevelUpEvent{UserID: userID, Level: stats.Level, Source: source}
		if err := s.DB.Create(&event).Error; err != nil {
			log.Printf("⚠️ Failed to record level-up event for %s: %v", userID, err)
		} else {
			log.Printf("🎮 Level up: %s → Lvl=%d, XP=%d/%d (source: %s)",
				userID, stats.Level, stats.XP, stats.MaxXP, source)
		}
	}
	return stats, leveledUp, nil
}

// RecentLevelUps returns the newest level-up events, optionally
// filtered by user.
func (s *ProgressionService) RecentLevelUps(userID string, limit int) ([]models.LevelUpEvent, error) {
	var events []models.LevelUpEvent
	q := s.DB.Order("created_at DESC").Limit(limit)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	err := q.Find(&events).Error
	return events, err
}

// ResetStats wipes progression back to the post-reset state.
func (s *ProgressionService) ResetStats(userID string) (models.Stats, error) {
	stats := models.ResetStats(s.now())
	if err := s.Store.Save(userID, models.KeyStats, stats); err != nil {
		return stats, err
	}
	return stats, nil
}
