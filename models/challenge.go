package models

import "time"

const (
	ChallengeStatusActive    = "active"
	ChallengeStatusCompleted = "completed"
)

// DateOnly is the calendar-day format used for check-in bookkeeping.
// Time of day is deliberately ignored everywhere challenges compare dates.
const DateOnly = "2006-01-02"

// CheckInRecord is one day's self-report. At most one record exists per
// calendar date per challenge.
type CheckInRecord struct {
	Date    string `json:"date"` // DateOnly
	Success bool   `json:"success"`
}

// Challenge is a fixed-duration daily habit challenge ("challenges" key).
// Invariants: LastCheckIn equals the date of the newest history record
// (or empty), and CompletedDays equals the count of successful records.
type Challenge struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Duration      int             `json:"duration"` // days, >= 1
	StartDate     string          `json:"startDate"` // DateOnly
	CompletedDays int             `json:"completedDays"`
	LastCheckIn   string          `json:"lastCheckIn"` // DateOnly, empty when never checked in
	History       []CheckInRecord `json:"history"`
	Status        string          `json:"status"`
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) string {
	return t.UTC().Format(DateOnly)
}
