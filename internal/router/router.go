package router

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"yatube/internal/auth"
	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	cacheClient *cache.Client,
	authMW *auth.Middleware,
	postHandler *handler.PostHandler,
	authHandler *handler.AuthHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(authMW.ParseSession())
	e.Use(authMW.LoadUser())

	e.HTTPErrorHandler = htmlErrorHandler

	e.Static("/media", cfg.MediaRoot)

	e.GET("/healthz", func(c echo.Context) error {
		if err := cacheClient.Ping(c.Request().Context()); err != nil {
			return c.String(http.StatusServiceUnavailable, "cache unreachable")
		}
		return c.String(http.StatusOK, "ok")
	})

	// Public listings
	e.GET("/", postHandler.Index)
	e.GET("/group/:slug/", postHandler.GroupPosts)
	e.GET("/profile/:username/", postHandler.Profile)
	e.GET("/posts/:id/", postHandler.Detail)

	// Authoring (requires a logged-in user)
	authed := e.Group("", auth.RequireUser())
	authed.GET("/create/", postHandler.CreateForm)
	authed.POST("/create/", postHandler.Create)
	authed.GET("/posts/:id/edit/", postHandler.EditForm)
	authed.POST("/posts/:id/edit/", postHandler.Edit)

	// Identity
	e.GET("/auth/signup/", authHandler.SignupForm)
	e.POST("/auth/signup/", authHandler.Signup)
	e.GET("/auth/login/", authHandler.LoginForm)
	e.POST("/auth/login/", authHandler.Login)
	e.GET("/auth/logout/", authHandler.Logout)
}

// htmlErrorHandler renders error pages instead of echo's default JSON.
func htmlErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}

	name := "500.html"
	if code == http.StatusNotFound {
		name = "404.html"
	}
	if rerr := c.Render(code, name, echo.Map{"Path": c.Request().URL.Path}); rerr != nil {
		_ = c.String(code, http.StatusText(code))
	}
}
