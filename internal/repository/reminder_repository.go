package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tasklist/internal/model"
)

// ReminderRepository persists reminder registration records so pending
// reminders survive a process restart.
type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// Put upserts the registration for rem.TaskID, keeping at most one row per
// task.
func (r *ReminderRepository) Put(ctx context.Context, rem model.Reminder) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rem).Error
	if err != nil {
		return storageErr("put reminder", err)
	}
	return nil
}

// Delete drops the registration for taskID; no-op when none exists.
func (r *ReminderRepository) Delete(ctx context.Context, taskID uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Reminder{TaskID: taskID}).Error; err != nil {
		return storageErr("delete reminder", err)
	}
	return nil
}

// All returns every persisted registration.
func (r *ReminderRepository) All(ctx context.Context) ([]model.Reminder, error) {
	var rems []model.Reminder
	if err := r.db.WithContext(ctx).Find(&rems).Error; err != nil {
		return nil, storageErr("list reminders", err)
	}
	return rems, nil
}
