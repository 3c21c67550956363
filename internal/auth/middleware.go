package auth

import (
	"net/http"
	"net/url"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"yatube/internal/model"
	"yatube/internal/repository"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "yatube_session"

// LoginPath is where anonymous users are sent when a route requires auth.
const LoginPath = "/auth/login/"

const userContextKey = "currentUser"

// Middleware resolves the acting identity for every request.
type Middleware struct {
	jwt      *JWTService
	sessions SessionStoreInterface
	users    repository.UserRepository
}

// NewMiddleware wires the session middleware.
func NewMiddleware(jwt *JWTService, sessions SessionStoreInterface, users repository.UserRepository) *Middleware {
	return &Middleware{jwt: jwt, sessions: sessions, users: users}
}

// ParseSession parses and verifies the session cookie. Requests without
// a cookie, or with a stale one, continue anonymously; gating happens in
// RequireUser.
func (m *Middleware) ParseSession() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "cookie:" + SessionCookie,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return m.jwt.ValidateToken(token)
		},
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
	})
}

// LoadUser turns verified claims into the acting model.User, provided
// the session is still present in the store (logout removes it).
func (m *Middleware) LoadUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("user").(*Claims)
			if !ok {
				return next(c)
			}
			ctx := c.Request().Context()
			if _, _, err := m.sessions.Get(ctx, claims.ID); err != nil {
				return next(c)
			}
			user, err := m.users.FindByID(ctx, claims.UserID)
			if err != nil {
				return next(c)
			}
			SetUser(c, user)
			return next(c)
		}
	}
}

// RequireUser redirects anonymous requests to the login page, keeping
// the original destination in the next parameter.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := UserFrom(c); !ok {
				target := LoginPath + "?next=" + url.QueryEscape(c.Request().URL.Path)
				return c.Redirect(http.StatusFound, target)
			}
			return next(c)
		}
	}
}

// SetUser stores the acting user on the request context.
func SetUser(c echo.Context, user *model.User) {
	c.Set(userContextKey, user)
}

// UserFrom returns the acting user, if any.
func UserFrom(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(userContextKey).(*model.User)
	return user, ok && user != nil
}
