package models

import "time"

// Stats is the gamified progression blob stored under the "stats" key.
// Invariant: 0 <= XP < MaxXP except transiently inside a level-up
// computation; MaxXP only ever grows.
type Stats struct {
	Level               int       `json:"level"`
	XP                  int       `json:"xp"`
	MaxXP               int       `json:"maxXp"`
	Streak              int       `json:"streak"`
	LastActive          time.Time `json:"lastActive"`
	TotalTasksCompleted int       `json:"totalTasksCompleted"`
}

// Base difficulty for a fresh account.
const DefaultMaxXP = 500

// ResetMaxXP is the threshold restored by an explicit data wipe.
const ResetMaxXP = 100

// DefaultStats returns the first-run progression state for a new user.
func DefaultStats(now time.Time) Stats {
	return Stats{
		Level:               1,
		XP:                  0,
		MaxXP:               DefaultMaxXP,
		Streak:              1,
		LastActive:          now,
		TotalTasksCompleted: 0,
	}
}

// ResetStats returns the progression state after an explicit full wipe.
func ResetStats(now time.Time) Stats {
	s := DefaultStats(now)
	s.MaxXP = ResetMaxXP
	return s
}

// Valid reports whether a decoded blob has a usable shape. Blobs that
// fail this check are replaced by defaults rather than trusted.
func (s Stats) Valid() bool {
	return s.Level >= 1 && s.XP >= 0 && s.MaxXP > 0 && s.Streak >= 1 && s.TotalTasksCompleted >= 0
}
