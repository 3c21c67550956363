package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"yatube/internal/auth"
	"yatube/internal/form"
	"yatube/internal/service"
)

// AuthHandler serves the signup, login and logout pages.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignupForm renders the empty registration form.
func (h *AuthHandler) SignupForm(c echo.Context) error {
	return c.Render(http.StatusOK, "signup.html", echo.Map{
		"User": currentUser(c),
		"Form": &form.SignupForm{},
	})
}

// Signup registers a new user. A taken username is a field error on the
// re-rendered form, same as any other validation failure.
func (h *AuthHandler) Signup(c echo.Context) error {
	f := &form.SignupForm{
		Username: c.FormValue("username"),
		Password: c.FormValue("password"),
	}
	f.Normalize()
	errs := form.Validate(f)
	if errs == nil {
		errs = form.Errors{}
	}

	if len(errs) == 0 {
		_, err := h.authService.Signup(c.Request().Context(), f.Username, f.Password)
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			errs["username"] = "username already taken"
		case err != nil:
			return err
		default:
			return c.Redirect(http.StatusFound, auth.LoginPath)
		}
	}

	return c.Render(http.StatusOK, "signup.html", echo.Map{
		"User":   currentUser(c),
		"Form":   f,
		"Errors": errs,
	})
}

// LoginForm renders the login form, carrying the next target through.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", echo.Map{
		"User": currentUser(c),
		"Form": &form.LoginForm{},
		"Next": c.QueryParam("next"),
	})
}

// Login authenticates the user, sets the session cookie and redirects
// to the next target (or the front page).
func (h *AuthHandler) Login(c echo.Context) error {
	f := &form.LoginForm{
		Username: c.FormValue("username"),
		Password: c.FormValue("password"),
	}
	f.Normalize()
	next := c.FormValue("next")

	errs := form.Validate(f)
	if len(errs) == 0 {
		token, _, err := h.authService.Login(c.Request().Context(), f.Username, f.Password)
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			errs = form.Errors{"username": "invalid username or password"}
		case err != nil:
			return err
		default:
			c.SetCookie(&http.Cookie{
				Name:     auth.SessionCookie,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Expires:  time.Now().Add(auth.SessionExpiry),
			})
			return c.Redirect(http.StatusFound, safeNext(next))
		}
	}

	return c.Render(http.StatusOK, "login.html", echo.Map{
		"User":   currentUser(c),
		"Form":   f,
		"Errors": errs,
		"Next":   next,
	})
}

// Logout drops the session and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(auth.SessionCookie); err == nil {
		_ = h.authService.Logout(c.Request().Context(), cookie.Value)
		c.SetCookie(&http.Cookie{
			Name:     auth.SessionCookie,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		})
	}
	return c.Redirect(http.StatusFound, "/")
}

// safeNext keeps redirects on this site: only rooted paths pass.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/"
}
