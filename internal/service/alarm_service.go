package service

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// oneShotSchedule activates exactly once, at the stored time.
type oneShotSchedule struct {
	at time.Time
}

func (s oneShotSchedule) Next(t time.Time) time.Time {
	if t.Before(s.at) {
		return s.at
	}
	return time.Time{}
}

// AlarmService is the in-process stand-in for a platform alarm facility: it
// registers one-shot wake-ups keyed by task id on a cron runner, with at
// most one pending entry per id.
type AlarmService struct {
	cron *cron.Cron

	mu      sync.Mutex
	entries map[uint]cron.EntryID
}

func NewAlarmService(loc *time.Location) *AlarmService {
	return &AlarmService{
		cron:    cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		entries: make(map[uint]cron.EntryID),
	}
}

func (s *AlarmService) Start() {
	s.cron.Start()
}

func (s *AlarmService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Register arms a wake-up for id at fireAt, replacing any pending one for
// the same id. The job runs exactly once; the entry forgets itself before
// the job body so a re-registration from inside the job is safe.
func (s *AlarmService) Register(id uint, fireAt time.Time, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[id]; ok {
		s.cron.Remove(old)
	}

	var entryID cron.EntryID
	entryID = s.cron.Schedule(oneShotSchedule{at: fireAt}, cron.FuncJob(func() {
		s.mu.Lock()
		if cur, ok := s.entries[id]; ok && cur == entryID {
			delete(s.entries, id)
			s.cron.Remove(entryID)
		}
		s.mu.Unlock()
		job()
	}))
	s.entries[id] = entryID
	return nil
}

// Cancel drops any pending wake-up for id; no-op when none is armed.
func (s *AlarmService) Cancel(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.entries[id]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, id)
	}
}

// Pending reports whether a wake-up is armed for id.
func (s *AlarmService) Pending(id uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// PendingCount returns the number of armed wake-ups.
func (s *AlarmService) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
