package services

import (
	"fmt"
	"time"

	"studysync-engine/models"
)

// NotesService owns the daily planner notes: one entry per calendar
// date, overwritten on edit, never auto-deleted.
type NotesService struct {
	Store BlobStore
}

func NewNotesService(store BlobStore) *NotesService {
	return &NotesService{Store: store}
}

func (s *NotesService) load(userID string) models.Notes {
	notes := models.Notes{}
	loadOr(s.Store, userID, models.KeyNotes, &notes, func() {
		notes = models.Notes{}
	})
	if notes == nil {
		notes = models.Notes{}
	}
	return notes
}

// All returns the full date→text mapping.
func (s *NotesService) All(userID string) models.Notes {
	return s.load(userID)
}

// Update overwrites the note for one date.
func (s *NotesService) Update(userID, date, content string) error {
	if _, err := time.ParseInLocation(models.DateOnly, date, time.UTC); err != nil {
		return fmt.Errorf("invalid note date %q: %w", date, err)
	}
	notes := s.load(userID)
	notes[date] = content
	return s.Store.Save(userID, models.KeyNotes, notes)
}
