package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tasklist/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return db
}

func sampleTask(title string) model.Task {
	return model.Task{
		Title:               title,
		Description:         "some details",
		CreationTime:        time.Now().Round(time.Millisecond),
		DueTime:             time.Now().Add(2 * time.Hour).Round(time.Millisecond),
		NotificationEnabled: true,
		Category:            "Work",
		Attachments: []model.Attachment{
			{Name: "spec.pdf", Reference: "/data/attachments/spec.pdf"},
			{Name: "notes.txt", Reference: "/data/attachments/notes.txt"},
		},
	}
}

func TestInsertAndGetByID(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t))
	ctx := context.Background()

	task := sampleTask("Buy milk")
	id, err := repo.Insert(ctx, &task)
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, task.Title, got.Title)
	assert.Equal(t, task.Description, got.Description)
	assert.True(t, got.CreationTime.Equal(task.CreationTime))
	assert.True(t, got.DueTime.Equal(task.DueTime))
	assert.False(t, got.IsCompleted)
	assert.True(t, got.NotificationEnabled)
	assert.Equal(t, "Work", got.Category)
	require.Len(t, got.Attachments, 2)
	assert.Equal(t, "spec.pdf", got.Attachments[0].Name)
	assert.Equal(t, "/data/attachments/notes.txt", got.Attachments[1].Reference)
}

func TestGetByIDMissing(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t))

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateReplacesAttachmentSet(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	task := sampleTask("Write report")
	_, err := repo.Insert(ctx, &task)
	require.NoError(t, err)

	task.Title = "Write final report"
	task.Category = "Office"
	task.Attachments = []model.Attachment{
		{Name: "draft.docx", Reference: "/data/attachments/draft.docx"},
	}
	require.NoError(t, repo.Update(ctx, &task))

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write final report", got.Title)
	assert.Equal(t, "Office", got.Category)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "draft.docx", got.Attachments[0].Name)

	// The old rows must be gone, not merely unlinked.
	var count int64
	require.NoError(t, db.Model(&model.Attachment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateDoesNotTouchCreationTime(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t))
	ctx := context.Background()

	task := sampleTask("Original")
	_, err := repo.Insert(ctx, &task)
	require.NoError(t, err)
	created := task.CreationTime

	task.Title = "Renamed"
	task.CreationTime = created.Add(48 * time.Hour)
	require.NoError(t, repo.Update(ctx, &task))

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.CreationTime.Equal(created))
}

func TestUpdateMissingID(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t))

	task := sampleTask("Ghost")
	task.ID = 999
	err := repo.Update(context.Background(), &task)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCascadesAttachments(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	task := sampleTask("Doomed")
	_, err := repo.Insert(ctx, &task)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, task.ID))

	_, err = repo.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&model.Attachment{}).Count(&count).Error)
	assert.Zero(t, count, "no attachment rows may survive their task")
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t))

	assert.NoError(t, repo.Delete(context.Background(), 12345))
}

func TestSetCompletion(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t))
	ctx := context.Background()

	task := sampleTask("Toggle me")
	_, err := repo.Insert(ctx, &task)
	require.NoError(t, err)

	require.NoError(t, repo.SetCompletion(ctx, task.ID, true))

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.Len(t, got.Attachments, 2, "completion toggle must not touch attachments")

	require.NoError(t, repo.SetCompletion(ctx, task.ID, false))
	got, err = repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, got.IsCompleted)

	assert.ErrorIs(t, repo.SetCompletion(ctx, 999, true), ErrNotFound)
}

func TestGetAllEagerLoadsAttachments(t *testing.T) {
	repo := NewTaskRepository(newTestDB(t))
	ctx := context.Background()

	first := sampleTask("First")
	second := sampleTask("Second")
	second.Attachments = nil
	_, err := repo.Insert(ctx, &first)
	require.NoError(t, err)
	_, err = repo.Insert(ctx, &second)
	require.NoError(t, err)

	tasks, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	byTitle := map[string]model.Task{}
	for _, task := range tasks {
		byTitle[task.Title] = task
	}
	assert.Len(t, byTitle["First"].Attachments, 2)
	assert.Empty(t, byTitle["Second"].Attachments)
}
