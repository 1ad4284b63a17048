package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tasklist/internal/model"
)

// TaskRepository handles CRUD for tasks and their attachment rows.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Insert persists the task and all of its attachment rows atomically and
// returns the assigned id. The task's ID field is set as a side effect.
func (r *TaskRepository) Insert(ctx context.Context, task *model.Task) (uint, error) {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return 0, storageErr("insert task", err)
	}
	return task.ID, nil
}

// Update replaces the task's editable scalar fields and its entire
// attachment set in one transaction. CreationTime is immutable and
// IsCompleted changes only through SetCompletion; both are left untouched.
// Returns ErrNotFound when no row has task.ID.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Task{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
			"title":                task.Title,
			"description":          task.Description,
			"due_time":             task.DueTime,
			"notification_enabled": task.NotificationEnabled,
			"category":             task.Category,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		if err := tx.Where("task_id = ?", task.ID).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		if len(task.Attachments) == 0 {
			return nil
		}
		for i := range task.Attachments {
			task.Attachments[i].ID = 0
			task.Attachments[i].TaskID = task.ID
		}
		return tx.Create(&task.Attachments).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	default:
		return storageErr("update task", err)
	}
}

// Delete removes the task row and all of its attachment rows in one
// transaction. Deleting an id with no row is not an error.
func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Task{}, id).Error
	})
	if err != nil {
		return storageErr("delete task", err)
	}
	return nil
}

// SetCompletion flips the completion flag of one task without touching any
// other column. Returns ErrNotFound when no row has the id.
func (r *TaskRepository) SetCompletion(ctx context.Context, id uint, completed bool) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).
		Update("is_completed", completed)
	if res.Error != nil {
		return storageErr("set completion", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAll returns every task with attachments eagerly loaded. Order is
// whatever the engine produced; ordering is a presentation concern.
func (r *TaskRepository) GetAll(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Preload("Attachments").Find(&tasks).Error; err != nil {
		return nil, storageErr("list tasks", err)
	}
	return tasks, nil
}

// GetByID returns one task with its attachments, or ErrNotFound.
func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Preload("Attachments").First(&task, id).Error
	switch {
	case err == nil:
		return &task, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	default:
		return nil, storageErr("get task", err)
	}
}
