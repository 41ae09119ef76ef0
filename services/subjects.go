package services

import (
	"errors"
	"strings"
	"sync"
	"time"

	"studysync-engine/models"

	"github.com/gosimple/slug"
	"github.com/gosimple/unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrSubjectNotFound = errors.New("subject not found")
var ErrSubjectNoteNotFound = errors.New("subject note not found")

var titleCaser = cases.Title(language.English, cases.NoLower)

// SubjectService owns the per-subject study notes.
type SubjectService struct {
	Store BlobStore

	mu     sync.Mutex
	lastID int64

	now func() time.Time
}

func NewSubjectService(store BlobStore) *SubjectService {
	return &SubjectService{Store: store, now: time.Now}
}

func (s *SubjectService) load(userID string) []models.Subject {
	var subjects []models.Subject
	loadOr(s.Store, userID, models.KeySubjects, &subjects, func() {
		subjects = nil
	})
	return subjects
}

func (s *SubjectService) nextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// List returns subjects, optionally filtered by a name query. Matching
// is accent-insensitive: "Française" is found by "francaise".
func (s *SubjectService) List(userID, query string) []models.Subject {
	subjects := s.load(userID)
	if query == "" {
		return subjects
	}
	needle := strings.ToLower(unidecode.Unidecode(strings.TrimSpace(query)))
	var matched []models.Subject
	for _, sub := range subjects {
		haystack := strings.ToLower(unidecode.Unidecode(sub.Name))
		if strings.Contains(haystack, needle) {
			matched = append(matched, sub)
		}
	}
	return matched
}

// Create adds a subject. Names are title-cased for display and sluggified
// for stable front-end routing.
func (s *SubjectService) Create(userID, name, color string) (models.Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Subject{}, errors.New("subject name is required")
	}

	subject := models.Subject{
		ID:    s.nextID(),
		Name:  titleCaser.String(name),
		Slug:  slug.Make(name),
		Color: color,
		Notes: []models.SubjectNote{},
	}

	subjects := append(s.load(userID), subject)
	if err := s.Store.Save(userID, models.KeySubjects, subjects); err != nil {
		return models.Subject{}, err
	}
	return subject, nil
}

// Delete removes a subject and all its notes.
func (s *SubjectService) Delete(userID string, subjectID int64) error {
	subjects := s.load(userID)
	kept := subjects[:0]
	for _, sub := range subjects {
		if sub.ID != subjectID {
			kept = append(kept, sub)
		}
	}
	if len(kept) == len(subjects) {
		return ErrSubjectNotFound
	}
	return s.Store.Save(userID, models.KeySubjects, kept)
}

// SaveNote creates a note (noteID 0) or overwrites an existing one.
func (s *SubjectService) SaveNote(userID string, subjectID, noteID int64, title, content string) (models.SubjectNote, error) {
	if title == "" {
		return models.SubjectNote{}, errors.New("note title is required")
	}

	subjects := s.load(userID)
	for i := range subjects {
		if subjects[i].ID != subjectID {
			continue
		}

		now := s.now()
		if noteID == 0 {
			note := models.SubjectNote{
				ID:        s.nextID(),
				Title:     title,
				Content:   content,
				CreatedAt: now,
				UpdatedAt: now,
			}
			subjects[i].Notes = append(subjects[i].Notes, note)
			return note, s.Store.Save(userID, models.KeySubjects, subjects)
		}

		for j := range subjects[i].Notes {
			if subjects[i].Notes[j].ID == noteID {
				subjects[i].Notes[j].Title = title
				subjects[i].Notes[j].Content = content
				subjects[i].Notes[j].UpdatedAt = now
				return subjects[i].Notes[j], s.Store.Save(userID, models.KeySubjects, subjects)
			}
		}
		return models.SubjectNote{}, ErrSubjectNoteNotFound
	}
	return models.SubjectNote{}, ErrSubjectNotFound
}

// DeleteNote removes one note from a subject.
func (s *SubjectService) DeleteNote(userID string, subjectID, noteID int64) error {
	subjects := s.load(userID)
	for i := range subjects {
		if subjects[i].ID != subjectID {
			continue
		}
		notes := subjects[i].Notes
		kept := notes[:0]
		for _, n := range notes {
			if n.ID != noteID {
				kept = append(kept, n)
			}
		}
		if len(kept) == len(notes) {
			return ErrSubjectNoteNotFound
		}
		subjects[i].Notes = kept
		return s.Store.Save(userID, models.KeySubjects, subjects)
	}
	return ErrSubjectNotFound
}
