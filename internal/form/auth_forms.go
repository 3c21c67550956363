package form

import "strings"

// SignupForm carries the registration form input.
type SignupForm struct {
	Username string `form:"username" validate:"required,min=3,max=150,alphanum"`
	Password string `form:"password" validate:"required,min=6"`
}

// Normalize trims the username; passwords are taken as typed.
func (f *SignupForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
}

// LoginForm carries the login form input.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// Normalize trims the username; passwords are taken as typed.
func (f *LoginForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
}
