package services

import (
	"testing"

	"studysync-engine/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSubjectNormalizesName(t *testing.T) {
	svc := NewSubjectService(newMemStore())

	subject, err := svc.Create("u1", "  organic chemistry ", "#10b981")
	require.NoError(t, err)
	assert.Equal(t, "Organic Chemistry", subject.Name)
	assert.Equal(t, "organic-chemistry", subject.Slug)
	assert.NotNil(t, subject.Notes)

	_, err = svc.Create("u1", "   ", "#fff")
	assert.Error(t, err)
}

func TestListSearchIsAccentInsensitive(t *testing.T) {
	svc := NewSubjectService(newMemStore())

	_, err := svc.Create("u1", "Littérature Française", "#6366f1")
	require.NoError(t, err)
	_, err = svc.Create("u1", "Algebra", "#f59e0b")
	require.NoError(t, err)

	got := svc.List("u1", "francaise")
	require.Len(t, got, 1)
	assert.Equal(t, "Littérature Française", got[0].Name)

	assert.Len(t, svc.List("u1", ""), 2)
	assert.Empty(t, svc.List("u1", "biology"))
}

func TestSaveNoteCreateAndOverwrite(t *testing.T) {
	svc := NewSubjectService(newMemStore())

	subject, err := svc.Create("u1", "Physics", "#f43f5e")
	require.NoError(t, err)

	note, err := svc.SaveNote("u1", subject.ID, 0, "Kinematics", "v = u + at")
	require.NoError(t, err)
	assert.NotZero(t, note.ID)

	updated, err := svc.SaveNote("u1", subject.ID, note.ID, "Kinematics", "s = ut + at²/2")
	require.NoError(t, err)
	assert.Equal(t, note.ID, updated.ID)
	assert.Equal(t, "s = ut + at²/2", updated.Content)

	got := svc.List("u1", "")
	require.Len(t, got, 1)
	require.Len(t, got[0].Notes, 1)

	_, err = svc.SaveNote("u1", subject.ID, 999, "Missing", "")
	assert.ErrorIs(t, err, ErrSubjectNoteNotFound)
	_, err = svc.SaveNote("u1", 999, 0, "Missing", "")
	assert.ErrorIs(t, err, ErrSubjectNotFound)
}

func TestDeleteNoteAndSubject(t *testing.T) {
	svc := NewSubjectService(newMemStore())

	subject, err := svc.Create("u1", "Physics", "#f43f5e")
	require.NoError(t, err)
	note, err := svc.SaveNote("u1", subject.ID, 0, "Kinematics", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteNote("u1", subject.ID, note.ID))
	assert.ErrorIs(t, svc.DeleteNote("u1", subject.ID, note.ID), ErrSubjectNoteNotFound)

	require.NoError(t, svc.Delete("u1", subject.ID))
	assert.Empty(t, svc.List("u1", ""))

	var stored []models.Subject
	found, err := svc.Store.Load("u1", models.KeySubjects, &stored)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, stored)
}
