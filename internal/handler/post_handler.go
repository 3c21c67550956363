package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"yatube/internal/auth"
	apperrors "yatube/internal/errors"
	"yatube/internal/form"
	"yatube/internal/model"
	"yatube/internal/paging"
	"yatube/internal/service"
)

// PostHandler serves every post-facing page: listings, detail and the
// authoring form.
type PostHandler struct {
	posts service.PostService
	media string
}

// NewPostHandler creates the handler layer.
func NewPostHandler(posts service.PostService, mediaRoot string) *PostHandler {
	return &PostHandler{posts: posts, media: mediaRoot}
}

// Index renders the front page: all posts, newest first.
func (h *PostHandler) Index(c echo.Context) error {
	number := paging.ParseNumber(c.QueryParam("page"))
	posts, page, err := h.posts.Index(c.Request().Context(), number)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "index.html", echo.Map{
		"User":     currentUser(c),
		"Posts":    posts,
		"Page":     page,
		"PagePath": c.Request().URL.Path,
	})
}

// GroupPosts renders one group's listing.
func (h *PostHandler) GroupPosts(c echo.Context) error {
	number := paging.ParseNumber(c.QueryParam("page"))
	group, posts, page, err := h.posts.GroupPosts(c.Request().Context(), c.Param("slug"), number)
	if err != nil {
		return httpError(err)
	}
	return c.Render(http.StatusOK, "group_list.html", echo.Map{
		"User":     currentUser(c),
		"Group":    group,
		"Posts":    posts,
		"Page":     page,
		"PagePath": c.Request().URL.Path,
	})
}

// Profile renders one author's listing.
func (h *PostHandler) Profile(c echo.Context) error {
	number := paging.ParseNumber(c.QueryParam("page"))
	author, posts, page, err := h.posts.Profile(c.Request().Context(), c.Param("username"), number)
	if err != nil {
		return httpError(err)
	}
	return c.Render(http.StatusOK, "profile.html", echo.Map{
		"User":     currentUser(c),
		"Author":   author,
		"Posts":    posts,
		"Page":     page,
		"PagePath": c.Request().URL.Path,
	})
}

// Detail renders a single post.
func (h *PostHandler) Detail(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	post, err := h.posts.Detail(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.Render(http.StatusOK, "post_detail.html", echo.Map{
		"User": currentUser(c),
		"Post": post,
	})
}

// CreateForm renders the empty authoring form.
func (h *PostHandler) CreateForm(c echo.Context) error {
	return h.renderForm(c, &form.PostForm{}, nil, false, 0)
}

// Create binds and validates the authoring form, persisting a new post
// authored by the acting user.
func (h *PostHandler) Create(c echo.Context) error {
	user, _ := auth.UserFrom(c)
	f := h.bindForm(c)

	_, errs, err := h.posts.Create(c.Request().Context(), user, f)
	if err != nil {
		h.discardImage(f)
		return err
	}
	if len(errs) > 0 {
		h.discardImage(f)
		return h.renderForm(c, f, errs, false, 0)
	}
	return c.Redirect(http.StatusFound, "/profile/"+user.Username+"/")
}

// EditForm renders the authoring form pre-populated from an existing
// post. Non-authors are silently sent to the read-only detail view.
func (h *PostHandler) EditForm(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	post, err := h.posts.Detail(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	user, _ := auth.UserFrom(c)
	if post.AuthorID != user.ID {
		return redirectToDetail(c, id)
	}

	f := &form.PostForm{Text: post.Text, Image: post.Image}
	if post.GroupID != nil {
		f.GroupID = strconv.FormatUint(uint64(*post.GroupID), 10)
	}
	return h.renderForm(c, f, nil, true, id)
}

// Edit applies a validated submission to an existing post. The same
// silent redirect covers non-authors on POST.
func (h *PostHandler) Edit(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	user, _ := auth.UserFrom(c)
	f := h.bindForm(c)

	_, errs, err := h.posts.Edit(c.Request().Context(), user, id, f)
	if err != nil {
		h.discardImage(f)
		if errors.Is(err, apperrors.ErrNotAuthor) {
			return redirectToDetail(c, id)
		}
		return httpError(err)
	}
	if len(errs) > 0 {
		h.discardImage(f)
		return h.renderForm(c, f, errs, true, id)
	}
	return redirectToDetail(c, id)
}

func (h *PostHandler) bindForm(c echo.Context) *form.PostForm {
	f := &form.PostForm{
		Text:    c.FormValue("text"),
		GroupID: c.FormValue("group"),
	}
	f.Image = h.saveImage(c)
	return f
}

// saveImage stores an uploaded image under the media root and returns
// its relative path. Anything short of a usable upload means no image.
func (h *PostHandler) saveImage(c echo.Context) string {
	file, err := c.FormFile("image")
	if err != nil {
		return ""
	}
	src, err := file.Open()
	if err != nil {
		return ""
	}
	defer src.Close()

	rel := filepath.Join("posts", uuid.New().String()+filepath.Ext(file.Filename))
	full := filepath.Join(h.media, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return ""
	}
	dst, err := os.Create(full)
	if err != nil {
		return ""
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return ""
	}
	return filepath.ToSlash(rel)
}

// discardImage removes a stored upload whose submission was rejected.
// A rejected submission must leave nothing under the media root.
func (h *PostHandler) discardImage(f *form.PostForm) {
	if f.Image == "" {
		return
	}
	_ = os.Remove(filepath.Join(h.media, filepath.FromSlash(f.Image)))
	f.Image = ""
}

func (h *PostHandler) renderForm(c echo.Context, f *form.PostForm, errs form.Errors, isEdit bool, postID uint) error {
	groups, err := h.posts.Groups(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "create_post.html", echo.Map{
		"User":   currentUser(c),
		"Form":   f,
		"Errors": errs,
		"IsEdit": isEdit,
		"PostID": postID,
		"Groups": groups,
	})
}

// httpError converts known domain errors into renderable HTTP errors
// and passes everything else through as a 500.
func httpError(err error) error {
	if code := apperrors.StatusOf(err); code != http.StatusInternalServerError {
		return echo.NewHTTPError(code, err.Error())
	}
	return err
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func redirectToDetail(c echo.Context, id uint) error {
	return c.Redirect(http.StatusFound, "/posts/"+strconv.FormatUint(uint64(id), 10)+"/")
}

func currentUser(c echo.Context) *model.User {
	user, _ := auth.UserFrom(c)
	return user
}
