package services

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"studysync-engine/models"
)

var ErrChallengeNotFound = errors.New("challenge not found")

// ChallengeProgress returns the elapsed-day counter for a challenge:
// day 1 on the start date, clamped to [0, duration]. 0 means the
// challenge has not started yet (or the start date is unreadable).
func ChallengeProgress(c models.Challenge, today time.Time) int {
	start, err := time.ParseInLocation(models.DateOnly, c.StartDate, time.UTC)
	if err != nil {
		return 0
	}
	day, _ := time.ParseInLocation(models.DateOnly, models.Day(today), time.UTC)
	if day.Before(start) {
		return 0
	}
	diff := int(day.Sub(start).Hours()/24) + 1
	if diff > c.Duration {
		return c.Duration
	}
	return diff
}

// CanCheckIn is true when the challenge has started and today's
// self-report has not been recorded yet.
func CanCheckIn(c models.Challenge, today time.Time) bool {
	return c.LastCheckIn != models.Day(today) && ChallengeProgress(c, today) > 0
}

// ChallengeComplete reports elapsed-time completion: the full duration
// has passed, regardless of how many check-ins succeeded.
func ChallengeComplete(c models.Challenge, today time.Time) bool {
	return ChallengeProgress(c, today) == c.Duration
}

// ChallengeService owns the time-boxed habit challenges and their
// check-in bookkeeping.
type ChallengeService struct {
	Store       BlobStore
	Progression *ProgressionService

	mu     sync.Mutex
	lastID int64

	now func() time.Time
}

func NewChallengeService(store BlobStore, progression *ProgressionService) *ChallengeService {
	return &ChallengeService{Store: store, Progression: progression, now: time.Now}
}

func (s *ChallengeService) load(userID string) []models.Challenge {
	var challenges []models.Challenge
	loadOr(s.Store, userID, models.KeyChallenges, &challenges, func() {
		challenges = nil
	})
	return challenges
}

// List returns all challenges for a user.
func (s *ChallengeService) List(userID string) []models.Challenge {
	return s.load(userID)
}

// nextID mints a time-based id that stays monotonic even when two
// challenges are created within the same millisecond.
func (s *ChallengeService) nextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Create adds a fresh challenge with an empty history.
func (s *ChallengeService) Create(userID, title string, duration int, startDate string) (models.Challenge, error) {
	if title == "" {
		return models.Challenge{}, errors.New("challenge title is required")
	}
	if duration < 1 {
		return models.Challenge{}, errors.New("challenge duration must be at least 1 day")
	}
	if startDate == "" {
		startDate = models.Day(s.now())
	}
	if _, err := time.ParseInLocation(models.DateOnly, startDate, time.UTC); err != nil {
		return models.Challenge{}, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}

	challenge := models.Challenge{
		ID:        s.nextID(),
		Title:     title,
		Duration:  duration,
		StartDate: startDate,
		Status:    models.ChallengeStatusActive,
		History:   []models.CheckInRecord{},
	}

	challenges := append(s.load(userID), challenge)
	if err := s.Store.Save(userID, models.KeyChallenges, challenges); err != nil {
		return models.Challenge{}, err
	}
	return challenge, nil
}

// CheckIn records today's self-report. Re-invocation on the same
// calendar day is a guaranteed no-op: at most one history record exists
// per challenge per day. Success pays the fixed reward, failure the
// fixed penalty; neither touches the completed-task counter.
func (s *ChallengeService) CheckIn(userID string, challengeID int64, success bool) (models.Challenge, error) {
	now := s.now()
	today := models.Day(now)

	challenges := s.load(userID)
	idx := -1
	for i := range challenges {
		if challenges[i].ID == challengeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Challenge{}, ErrChallengeNotFound
	}

	original := challenges[idx]
	c := original
	if !CanCheckIn(c, now) {
		// Already checked in today, or not started yet.
		return c, nil
	}

	c.History = append(c.History, models.CheckInRecord{Date: today, Success: success})
	c.LastCheckIn = today
	delta := -DefaultXPRewards.ChallengePenalty
	if success {
		c.CompletedDays++
		delta = DefaultXPRewards.ChallengeReward
	}

	challenges[idx] = c
	if err := s.Store.Save(userID, models.KeyChallenges, challenges); err != nil {
		return c, err
	}

	if _, _, err := s.Progression.AwardXP(userID, delta, 0, "challenge"); err != nil {
		// Un-record the day so a retry re-runs both writes; otherwise
		// the per-day idempotence would swallow the XP forever.
		challenges[idx] = original
		if rbErr := s.Store.Save(userID, models.KeyChallenges, challenges); rbErr != nil {
			log.Printf("⚠️ Failed to roll back check-in for %s after XP error: %v", userID, rbErr)
		}
		return original, err
	}
	return c, nil
}

// Delete removes a challenge and its entire history irreversibly.
func (s *ChallengeService) Delete(userID string, challengeID int64) error {
	challenges := s.load(userID)
	kept := challenges[:0]
	for _, c := range challenges {
		if c.ID != challengeID {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(challenges) {
		return ErrChallengeNotFound
	}
	return s.Store.Save(userID, models.KeyChallenges, kept)
}

// RolloverUser flips challenges whose duration has fully elapsed to the
// completed status. Completion is time-based: a challenge whose deadline
// has passed counts as complete no matter how its check-ins went.
func (s *ChallengeService) RolloverUser(userID string) error {
	now := s.now()
	challenges := s.load(userID)

	changed := false
	for i, c := range challenges {
		if c.Status == models.ChallengeStatusActive && ChallengeComplete(c, now) {
			challenges[i].Status = models.ChallengeStatusCompleted
			changed = true
			log.Printf("🏁 Challenge complete: %q (user %s)", c.Title, userID)
		}
	}
	if !changed {
		return nil
	}
	return s.Store.Save(userID, models.KeyChallenges, challenges)
}
