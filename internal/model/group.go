package model

import "time"

// Group is a named discussion category posts may belong to.
// Groups are created out of band (seed CLI, admins) and are immutable
// from the application's point of view.
type Group struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;size:100;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}
