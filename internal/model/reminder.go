package model

import "time"

// Reminder is the durable registration record for a scheduled wake-up.
// At most one exists per task; rows outlive the process so pending
// reminders can be re-armed after a restart.
type Reminder struct {
	TaskID uint `gorm:"primaryKey"`
	Title  string
	FireAt time.Time
}
