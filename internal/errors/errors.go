package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrPostNotFound is returned when a post id resolves to nothing.
	ErrPostNotFound = errors.New("post not found")
	// ErrGroupNotFound is returned when a group slug resolves to nothing.
	ErrGroupNotFound = errors.New("group not found")
	// ErrUserNotFound is returned when a username resolves to nothing.
	ErrUserNotFound = errors.New("user not found")
	// ErrNotAuthor is returned when someone other than the author tries to
	// edit a post. Handlers turn this into a silent redirect to the detail
	// view, never into an error page.
	ErrNotAuthor = errors.New("acting user is not the post author")
)

// StatusOf maps domain errors to HTTP status codes.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrPostNotFound),
		errors.Is(err, ErrGroupNotFound),
		errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
