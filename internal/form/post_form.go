package form

import "strings"

// PostForm carries the authoring form input for both create and edit mode.
// Image is filled by the handler after it stores the upload; the group
// reference is validated against the database in the service layer.
type PostForm struct {
	Text    string `form:"text" validate:"required"`
	GroupID string `form:"group"`
	Image   string `form:"-"`
}

// Normalize trims surrounding whitespace so "required" means non-empty
// after trim.
func (f *PostForm) Normalize() {
	f.Text = strings.TrimSpace(f.Text)
	f.GroupID = strings.TrimSpace(f.GroupID)
}
