package services

import (
	"errors"
	"sort"
	"sync"
	"time"

	"studysync-engine/models"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskService owns the task list. Each completion edge applies exactly
// one XP delta through the progression service.
type TaskService struct {
	Store       BlobStore
	Progression *ProgressionService

	mu     sync.Mutex
	lastID int64

	now func() time.Time
}

func NewTaskService(store BlobStore, progression *ProgressionService) *TaskService {
	return &TaskService{Store: store, Progression: progression, now: time.Now}
}

func (s *TaskService) load(userID string) []models.Task {
	var tasks []models.Task
	loadOr(s.Store, userID, models.KeyTasks, &tasks, func() {
		tasks = nil
	})
	return tasks
}

// List returns tasks in display order: incomplete first, then priority
// high→low, then earlier deadline first. The stored order is untouched.
func (s *TaskService) List(userID string) []models.Task {
	tasks := s.load(userID)
	sorted := make([]models.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return models.TaskLess(sorted[i], sorted[j])
	})
	return sorted
}

func (s *TaskService) nextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Add creates an incomplete task with a time-based monotonic id.
// Unrecognized priorities are stored as medium.
func (s *TaskService) Add(userID, text, priority string, deadline *time.Time) (models.Task, error) {
	if text == "" {
		return models.Task{}, errors.New("task text is required")
	}
	switch priority {
	case models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
	default:
		priority = models.PriorityMedium
	}

	task := models.Task{
		ID:       s.nextID(),
		Text:     text,
		Priority: priority,
		Deadline: deadline,
	}

	tasks := append(s.load(userID), task)
	if err := s.Store.Save(userID, models.KeyTasks, tasks); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// Toggle flips a task's completed flag and applies the matching XP
// delta: +reward/+1 on completion, the negated reward/−1 on
// un-completion. Exactly one progression call per toggle.
func (s *TaskService) Toggle(userID string, taskID int64) (models.Task, models.Stats, error) {
	tasks := s.load(userID)
	idx := -1
	for i := range tasks {
		if tasks[i].ID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Task{}, models.Stats{}, ErrTaskNotFound
	}

	tasks[idx].Completed = !tasks[idx].Completed
	if err := s.Store.Save(userID, models.KeyTasks, tasks); err != nil {
		return models.Task{}, models.Stats{}, err
	}

	amount := XPForPriority(tasks[idx].Priority)
	countDelta := 1
	if !tasks[idx].Completed {
		amount = -amount
		countDelta = -1
	}
	stats, _, err := s.Progression.AwardXP(userID, amount, countDelta, "task")
	return tasks[idx], stats, err
}

// Remove deletes a task unconditionally. The focused-task pointer is a
// weak reference: when it pointed at the removed task it is cleared,
// never left dangling.
func (s *TaskService) Remove(userID string, taskID int64) error {
	tasks := s.load(userID)
	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID != taskID {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tasks) {
		return ErrTaskNotFound
	}
	if err := s.Store.Save(userID, models.KeyTasks, kept); err != nil {
		return err
	}

	if focused, ok := s.FocusedTask(userID); ok && focused == taskID {
		if err := s.SetFocus(userID, nil); err != nil {
			return err
		}
	}
	return nil
}

// FocusedTask returns the focused-task pointer, when set.
func (s *TaskService) FocusedTask(userID string) (int64, bool) {
	var focus *int64
	loadOr(s.Store, userID, models.KeyFocus, &focus, func() {
		focus = nil
	})
	if focus == nil {
		return 0, false
	}
	return *focus, true
}

// SetFocus stores (or clears, with nil) the focused-task pointer.
func (s *TaskService) SetFocus(userID string, taskID *int64) error {
	return s.Store.Save(userID, models.KeyFocus, taskID)
}
