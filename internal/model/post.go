package model

import "time"

// Post is a single authored text entry, optionally grouped and illustrated.
// The author is fixed at creation; the group reference is the only mutable
// relational field.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	Image     string    `json:"image,omitempty" gorm:"size:255"` // media-root relative path, empty when absent
	AuthorID  uint      `json:"author_id" gorm:"not null;index"`
	GroupID   *uint     `json:"group_id,omitempty" gorm:"index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Author User   `json:"author" gorm:"foreignKey:AuthorID"`
	Group  *Group `json:"group,omitempty" gorm:"foreignKey:GroupID"`
}
