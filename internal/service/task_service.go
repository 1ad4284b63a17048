package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"tasklist/internal/model"
	"tasklist/internal/repository"
	"tasklist/internal/settings"
)

// TaskInput represents data required to create or replace a task.
type TaskInput struct {
	Title               string
	Description         string
	Category            string
	DueTime             time.Time
	NotificationEnabled bool
	Attachments         []model.Attachment
}

// TaskService wires the repository and the reminder scheduler behind the
// commands the UI issues. Completion toggling deliberately leaves the
// reminder alone; only edit and delete touch it.
type TaskService struct {
	tasks     *repository.TaskRepository
	reminders *ReminderService
	settings  *settings.Store
	log       *logrus.Logger
	now       func() time.Time
}

func NewTaskService(tasks *repository.TaskRepository, reminders *ReminderService, settingsStore *settings.Store, log *logrus.Logger) *TaskService {
	return &TaskService{
		tasks:     tasks,
		reminders: reminders,
		settings:  settingsStore,
		log:       log,
		now:       time.Now,
	}
}

// Create validates the input, persists a new task and schedules its
// reminder when notifications are on. When scheduling fails with
// ErrPermissionDenied the task is still returned: it is saved, only the
// reminder needs user action.
func (s *TaskService) Create(ctx context.Context, input TaskInput) (*model.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrEmptyTitle
	}

	task := model.Task{
		Title:               strings.TrimSpace(input.Title),
		Description:         strings.TrimSpace(input.Description),
		CreationTime:        s.now(),
		DueTime:             input.DueTime,
		NotificationEnabled: input.NotificationEnabled,
		Category:            strings.TrimSpace(input.Category),
		Attachments:         input.Attachments,
	}
	if _, err := s.tasks.Insert(ctx, &task); err != nil {
		return nil, err
	}

	if task.NotificationEnabled {
		if err := s.scheduleFor(ctx, &task); err != nil {
			return &task, err
		}
	}
	return &task, nil
}

// Update fully replaces the task's editable fields and attachment set, then
// re-arms the reminder: the old registration is cancelled unconditionally
// and a new one is made from the current due time and lead setting.
func (s *TaskService) Update(ctx context.Context, task *model.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return ErrEmptyTitle
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		return err
	}

	if err := s.reminders.Cancel(ctx, task.ID); err != nil {
		return err
	}
	if task.NotificationEnabled {
		return s.scheduleFor(ctx, task)
	}
	return nil
}

// Delete cancels any pending reminder and removes the task with its
// attachment rows. Deleting an unknown id is not an error.
func (s *TaskService) Delete(ctx context.Context, id uint) error {
	if err := s.reminders.Cancel(ctx, id); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, id)
}

// SetCompletion toggles the completion flag only. The reminder, if any,
// stays armed.
func (s *TaskService) SetCompletion(ctx context.Context, id uint, completed bool) error {
	return s.tasks.SetCompletion(ctx, id, completed)
}

func (s *TaskService) Get(ctx context.Context, id uint) (*model.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	return s.tasks.GetAll(ctx)
}

func (s *TaskService) scheduleFor(ctx context.Context, task *model.Task) error {
	cfg, err := s.settings.Load()
	if err != nil {
		s.log.Warnf("load settings, using defaults: %v", err)
		cfg = settings.Defaults()
	}
	trigger := TriggerTime(task.DueTime, cfg.NotificationLeadMinutes)
	return s.reminders.Schedule(ctx, task.ID, task.Title, trigger)
}
