package models

import "time"

// SubjectNote is a titled note under a subject.
type SubjectNote struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Subject groups study notes under a named topic ("subjects" key).
type Subject struct {
	ID    int64         `json:"id"`
	Name  string        `json:"name"`
	Slug  string        `json:"slug"`
	Color string        `json:"color"`
	Notes []SubjectNote `json:"notes"`
}

// Notes is the daily planner blob ("notes" key): one free-text entry per
// calendar date, overwritten on edit, never auto-deleted.
type Notes map[string]string
