package model

import "time"

// Task is a single tracked item together with its attached files.
type Task struct {
	ID                  uint   `gorm:"primaryKey"`
	Title               string `gorm:"not null"`
	Description         string
	CreationTime        time.Time
	DueTime             time.Time
	IsCompleted         bool         `gorm:"default:false"`
	NotificationEnabled bool         `gorm:"default:false"`
	Category            string       `gorm:"index"`
	Attachments         []Attachment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

// Attachment is a file reference owned by exactly one task. Reference is an
// opaque locator; the store never interprets it.
type Attachment struct {
	ID        uint   `gorm:"primaryKey"`
	TaskID    uint   `gorm:"index;not null"`
	Name      string `gorm:"not null"`
	Reference string `gorm:"not null"`
}
