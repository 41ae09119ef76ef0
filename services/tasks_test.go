package services

import (
	"testing"
	"time"

	"studysync-engine/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTasks(store BlobStore) *TaskService {
	svc := NewTaskService(store, newTestProgression(store))
	return svc
}

func TestAddTaskDefaultsPriority(t *testing.T) {
	svc := newTestTasks(newMemStore())

	task, err := svc.Add("u1", "read chapter 4", "whenever", nil)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.False(t, task.Completed)

	_, err = svc.Add("u1", "", models.PriorityHigh, nil)
	assert.Error(t, err)
}

func TestTaskIDsAreMonotonic(t *testing.T) {
	svc := newTestTasks(newMemStore())

	a, err := svc.Add("u1", "first", models.PriorityLow, nil)
	require.NoError(t, err)
	b, err := svc.Add("u1", "second", models.PriorityLow, nil)
	require.NoError(t, err)
	assert.Greater(t, b.ID, a.ID)
}

func TestListDisplayOrder(t *testing.T) {
	svc := newTestTasks(newMemStore())

	early := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)

	lowDone, err := svc.Add("u1", "done low", models.PriorityLow, nil)
	require.NoError(t, err)
	highLate, err := svc.Add("u1", "high late", models.PriorityHigh, &late)
	require.NoError(t, err)
	highEarly, err := svc.Add("u1", "high early", models.PriorityHigh, &early)
	require.NoError(t, err)
	highNoDeadline, err := svc.Add("u1", "high open", models.PriorityHigh, nil)
	require.NoError(t, err)
	medium, err := svc.Add("u1", "medium", models.PriorityMedium, nil)
	require.NoError(t, err)

	_, _, err = svc.Toggle("u1", lowDone.ID)
	require.NoError(t, err)

	got := svc.List("u1")
	ids := make([]int64, 0, len(got))
	for _, task := range got {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []int64{highEarly.ID, highLate.ID, highNoDeadline.ID, medium.ID, lowDone.ID}, ids)
}

func TestToggleAppliesSymmetricXP(t *testing.T) {
	store := newMemStore()
	svc := newTestTasks(store)

	task, err := svc.Add("u1", "study", models.PriorityHigh, nil)
	require.NoError(t, err)

	_, stats, err := svc.Toggle("u1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, stats.XP)
	assert.Equal(t, 1, stats.TotalTasksCompleted)

	_, stats, err = svc.Toggle("u1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.XP)
	assert.Equal(t, 0, stats.TotalTasksCompleted)
}

func TestToggleUnknownTask(t *testing.T) {
	svc := newTestTasks(newMemStore())
	_, _, err := svc.Toggle("u1", 999)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestRemoveClearsFocusPointer(t *testing.T) {
	svc := newTestTasks(newMemStore())

	task, err := svc.Add("u1", "study", models.PriorityHigh, nil)
	require.NoError(t, err)
	other, err := svc.Add("u1", "revise", models.PriorityLow, nil)
	require.NoError(t, err)

	require.NoError(t, svc.SetFocus("u1", &task.ID))

	require.NoError(t, svc.Remove("u1", task.ID))
	_, ok := svc.FocusedTask("u1")
	assert.False(t, ok, "focus pointer must not dangle")

	// Removing a non-focused task leaves the pointer alone.
	require.NoError(t, svc.SetFocus("u1", &other.ID))
	third, err := svc.Add("u1", "extra", models.PriorityLow, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Remove("u1", third.ID))
	focused, ok := svc.FocusedTask("u1")
	assert.True(t, ok)
	assert.Equal(t, other.ID, focused)
}
