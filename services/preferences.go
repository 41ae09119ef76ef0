package services

import (
	"errors"
	"log"

	"studysync-engine/models"
)

// ErrResetNotConfirmed guards the destructive full wipe; the caller must
// pass an explicit confirmation flag.
var ErrResetNotConfirmed = errors.New("data reset requires explicit confirmation")

// PreferencesService owns the preferences blob and the full data wipe.
type PreferencesService struct {
	Store       BlobStore
	Progression *ProgressionService
}

func NewPreferencesService(store BlobStore, progression *ProgressionService) *PreferencesService {
	return &PreferencesService{Store: store, Progression: progression}
}

// Get returns stored preferences or the defaults.
func (s *PreferencesService) Get(userID string) models.Preferences {
	prefs := models.DefaultPreferences()
	loadOr(s.Store, userID, models.KeyPreferences, &prefs, func() {
		prefs = models.DefaultPreferences()
	})
	return prefs
}

// Update replaces the preferences blob wholesale.
func (s *PreferencesService) Update(userID string, prefs models.Preferences) error {
	return s.Store.Save(userID, models.KeyPreferences, prefs)
}

// ResetAll wipes every container for a user: empty tasks, subjects,
// challenges and notes, cleared focus pointer, post-reset stats. The
// identity itself survives; logging out is a separate, explicit act.
func (s *PreferencesService) ResetAll(userID string, confirmed bool) error {
	if !confirmed {
		return ErrResetNotConfirmed
	}

	if err := s.Store.Save(userID, models.KeyTasks, []models.Task{}); err != nil {
		return err
	}
	if err := s.Store.Save(userID, models.KeyNotes, models.Notes{}); err != nil {
		return err
	}
	if err := s.Store.Save(userID, models.KeySubjects, []models.Subject{}); err != nil {
		return err
	}
	if err := s.Store.Save(userID, models.KeyChallenges, []models.Challenge{}); err != nil {
		return err
	}
	if err := s.Store.Save(userID, models.KeyFocus, nil); err != nil {
		return err
	}
	if _, err := s.Progression.ResetStats(userID); err != nil {
		return err
	}

	log.Printf("🧹 Full data reset for user %s", userID)
	return nil
}
