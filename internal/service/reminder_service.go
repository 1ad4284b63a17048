package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"tasklist/internal/model"
	"tasklist/internal/repository"
)

// Alarms is the platform wake-up contract the scheduler depends on:
// register a one-shot callback keyed by task id, cancel by id. Register may
// fail with ErrPermissionDenied when exact scheduling is not permitted.
type Alarms interface {
	Register(id uint, fireAt time.Time, job func()) error
	Cancel(id uint)
}

// DispatchFunc receives the payload set at schedule time when an alarm
// fires. It must not rely on any other in-memory state.
type DispatchFunc func(taskID uint, title string)

// TriggerTime computes when a reminder for dueTime should fire. Plain
// absolute-time arithmetic, no calendar awareness.
func TriggerTime(dueTime time.Time, leadMinutes int) time.Time {
	return dueTime.Add(-time.Duration(leadMinutes) * time.Minute)
}

// ReminderService schedules and cancels task reminders. Every registration
// is written to the store first so it can be re-armed after a restart.
type ReminderService struct {
	reminders *repository.ReminderRepository
	alarms    Alarms
	dispatch  DispatchFunc
	log       *logrus.Logger
	now       func() time.Time
}

func NewReminderService(reminders *repository.ReminderRepository, alarms Alarms, dispatch DispatchFunc, log *logrus.Logger) *ReminderService {
	return &ReminderService{
		reminders: reminders,
		alarms:    alarms,
		dispatch:  dispatch,
		log:       log,
		now:       time.Now,
	}
}

// Schedule arms a reminder for the task at triggerAt, replacing any pending
// one for the same id. A trigger time not strictly in the future is skipped
// silently: a reminder for a moment already past must never fire.
func (s *ReminderService) Schedule(ctx context.Context, taskID uint, title string, triggerAt time.Time) error {
	if !triggerAt.After(s.now()) {
		s.log.Debugf("reminder for task %d skipped, trigger %s already past", taskID, triggerAt)
		return nil
	}

	if err := s.reminders.Put(ctx, model.Reminder{TaskID: taskID, Title: title, FireAt: triggerAt}); err != nil {
		return err
	}
	return s.alarms.Register(taskID, triggerAt, func() {
		s.fire(taskID, title)
	})
}

// Cancel unregisters any pending reminder for taskID. Legal before any
// Schedule call for the same id.
func (s *ReminderService) Cancel(ctx context.Context, taskID uint) error {
	s.alarms.Cancel(taskID)
	return s.reminders.Delete(ctx, taskID)
}

// RestorePending re-arms reminders persisted by an earlier run. Records
// whose trigger time has passed are dropped, not fired late.
func (s *ReminderService) RestorePending(ctx context.Context) error {
	rems, err := s.reminders.All(ctx)
	if err != nil {
		return err
	}
	now := s.now()
	for _, rem := range rems {
		if !rem.FireAt.After(now) {
			s.log.Infof("dropping stale reminder for task %d (was due %s)", rem.TaskID, rem.FireAt)
			if err := s.reminders.Delete(ctx, rem.TaskID); err != nil {
				s.log.Warnf("drop stale reminder %d: %v", rem.TaskID, err)
			}
			continue
		}
		rem := rem
		if err := s.alarms.Register(rem.TaskID, rem.FireAt, func() {
			s.fire(rem.TaskID, rem.Title)
		}); err != nil {
			return err
		}
	}
	return nil
}

// fire runs on the alarm goroutine: drop the durable record, then hand the
// payload to the dispatcher.
func (s *ReminderService) fire(taskID uint, title string) {
	if err := s.reminders.Delete(context.Background(), taskID); err != nil {
		s.log.Warnf("clear fired reminder %d: %v", taskID, err)
	}
	s.dispatch(taskID, title)
}
