package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"yatube/internal/auth"
	apperrors "yatube/internal/errors"
	"yatube/internal/form"
	"yatube/internal/model"
	"yatube/internal/paging"
	"yatube/internal/service"
)

// MockPostService is a mock implementation of service.PostService.
type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) Index(ctx context.Context, pageNumber int) ([]model.Post, paging.Page, error) {
	args := m.Called(ctx, pageNumber)
	return args.Get(0).([]model.Post), args.Get(1).(paging.Page), args.Error(2)
}

func (m *MockPostService) GroupPosts(ctx context.Context, slug string, pageNumber int) (*model.Group, []model.Post, paging.Page, error) {
	args := m.Called(ctx, slug, pageNumber)
	if args.Get(0) == nil {
		return nil, nil, paging.Page{}, args.Error(3)
	}
	return args.Get(0).(*model.Group), args.Get(1).([]model.Post), args.Get(2).(paging.Page), args.Error(3)
}

func (m *MockPostService) Profile(ctx context.Context, username string, pageNumber int) (*model.User, []model.Post, paging.Page, error) {
	args := m.Called(ctx, username, pageNumber)
	if args.Get(0) == nil {
		return nil, nil, paging.Page{}, args.Error(3)
	}
	return args.Get(0).(*model.User), args.Get(1).([]model.Post), args.Get(2).(paging.Page), args.Error(3)
}

func (m *MockPostService) Detail(ctx context.Context, id uint) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostService) Groups(ctx context.Context) ([]model.Group, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Group), args.Error(1)
}

func (m *MockPostService) Create(ctx context.Context, author *model.User, f *form.PostForm) (*model.Post, form.Errors, error) {
	args := m.Called(ctx, author, f)
	var post *model.Post
	if args.Get(0) != nil {
		post = args.Get(0).(*model.Post)
	}
	var errs form.Errors
	if args.Get(1) != nil {
		errs = args.Get(1).(form.Errors)
	}
	return post, errs, args.Error(2)
}

func (m *MockPostService) Edit(ctx context.Context, actor *model.User, id uint, f *form.PostForm) (*model.Post, form.Errors, error) {
	args := m.Called(ctx, actor, id, f)
	var post *model.Post
	if args.Get(0) != nil {
		post = args.Get(0).(*model.Post)
	}
	var errs form.Errors
	if args.Get(1) != nil {
		errs = args.Get(1).(form.Errors)
	}
	return post, errs, args.Error(2)
}

var _ service.PostService = (*MockPostService)(nil)

// stubRenderer records the template name instead of executing HTML.
type stubRenderer struct {
	lastName string
	lastData interface{}
}

func (r *stubRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	r.lastName = name
	r.lastData = data
	_, err := io.WriteString(w, name)
	return err
}

func newTestContext(t *testing.T, method, target string, body url.Values) (echo.Context, *httptest.ResponseRecorder, *stubRenderer) {
	t.Helper()
	e := echo.New()
	renderer := &stubRenderer{}
	e.Renderer = renderer

	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(body.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec, renderer
}

func newMultipartContext(t *testing.T, target string, fields map[string]string, imageName string, image []byte) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		assert.NoError(t, w.WriteField(k, v))
	}
	fw, err := w.CreateFormFile("image", imageName)
	assert.NoError(t, err)
	_, err = fw.Write(image)
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	e := echo.New()
	e.Renderer = &stubRenderer{}
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func mediaLeftovers(t *testing.T, mediaRoot string) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(mediaRoot, "posts", "*"))
	assert.NoError(t, err)
	return files
}

func TestRequireUserRedirectsAnonymous(t *testing.T) {
	c, rec, _ := newTestContext(t, http.MethodGet, "/create/", nil)

	next := auth.RequireUser()(func(c echo.Context) error {
		return c.String(http.StatusOK, "reached")
	})
	assert.NoError(t, next(c))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login/?next=%2Fcreate%2F", rec.Header().Get(echo.HeaderLocation))
}

func TestRequireUserPassesAuthenticated(t *testing.T) {
	c, rec, _ := newTestContext(t, http.MethodGet, "/create/", nil)
	auth.SetUser(c, &model.User{ID: 7, Username: "leo"})

	next := auth.RequireUser()(func(c echo.Context) error {
		return c.String(http.StatusOK, "reached")
	})
	assert.NoError(t, next(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "reached", rec.Body.String())
}

func TestIndexRendersListing(t *testing.T) {
	posts := []model.Post{{ID: 2, Text: "newer"}, {ID: 1, Text: "older"}}
	mockSvc := new(MockPostService)
	mockSvc.On("Index", mock.Anything, 2).Return(posts, paging.New(16, 2), nil)

	h := NewPostHandler(mockSvc, t.TempDir())
	c, rec, renderer := newTestContext(t, http.MethodGet, "/?page=2", nil)

	assert.NoError(t, h.Index(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "index.html", renderer.lastName)

	data := renderer.lastData.(echo.Map)
	assert.Equal(t, posts, data["Posts"])
	assert.Equal(t, 2, data["Page"].(paging.Page).Number)
	mockSvc.AssertExpectations(t)
}

func TestGroupPostsUnknownSlugIs404(t *testing.T) {
	mockSvc := new(MockPostService)
	mockSvc.On("GroupPosts", mock.Anything, "nope", 1).
		Return(nil, nil, paging.Page{}, apperrors.ErrGroupNotFound)

	h := NewPostHandler(mockSvc, t.TempDir())
	c, _, _ := newTestContext(t, http.MethodGet, "/group/nope/", nil)
	c.SetParamNames("slug")
	c.SetParamValues("nope")

	err := h.GroupPosts(c)
	var he *echo.HTTPError
	if assert.ErrorAs(t, err, &he) {
		assert.Equal(t, http.StatusNotFound, he.Code)
	}
}

func TestDetailUnknownIDIs404(t *testing.T) {
	mockSvc := new(MockPostService)
	mockSvc.On("Detail", mock.Anything, uint(99)).Return(nil, apperrors.ErrPostNotFound)

	h := NewPostHandler(mockSvc, t.TempDir())
	c, _, _ := newTestContext(t, http.MethodGet, "/posts/99/", nil)
	c.SetParamNames("id")
	c.SetParamValues("99")

	err := h.Detail(c)
	var he *echo.HTTPError
	if assert.ErrorAs(t, err, &he) {
		assert.Equal(t, http.StatusNotFound, he.Code)
	}
}

func TestDetailMalformedIDIs404(t *testing.T) {
	h := NewPostHandler(new(MockPostService), t.TempDir())
	c, _, _ := newTestContext(t, http.MethodGet, "/posts/abc/", nil)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := h.Detail(c)
	var he *echo.HTTPError
	if assert.ErrorAs(t, err, &he) {
		assert.Equal(t, http.StatusNotFound, he.Code)
	}
}

func TestCreateRedirectsToProfile(t *testing.T) {
	actor := &model.User{ID: 7, Username: "leo"}
	mockSvc := new(MockPostService)
	mockSvc.On("Create", mock.Anything, actor, mock.AnythingOfType("*form.PostForm")).
		Return(&model.Post{ID: 1, Text: "hello", AuthorID: 7}, nil, nil)

	h := NewPostHandler(mockSvc, t.TempDir())
	c, rec, _ := newTestContext(t, http.MethodPost, "/create/", url.Values{"text": {"hello"}})
	auth.SetUser(c, actor)

	assert.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/leo/", rec.Header().Get(echo.HeaderLocation))
	mockSvc.AssertExpectations(t)
}

func TestCreateInvalidReRendersForm(t *testing.T) {
	actor := &model.User{ID: 7, Username: "leo"}
	mockSvc := new(MockPostService)
	mockSvc.On("Create", mock.Anything, actor, mock.AnythingOfType("*form.PostForm")).
		Return(nil, form.Errors{"text": "this field is required"}, nil)
	mockSvc.On("Groups", mock.Anything).Return([]model.Group{}, nil)

	h := NewPostHandler(mockSvc, t.TempDir())
	c, rec, renderer := newTestContext(t, http.MethodPost, "/create/", url.Values{"text": {""}})
	auth.SetUser(c, actor)

	assert.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "create_post.html", renderer.lastName)

	data := renderer.lastData.(echo.Map)
	assert.Equal(t, false, data["IsEdit"])
	assert.True(t, data["Errors"].(form.Errors).Has("text"))
}

func TestCreateInvalidDiscardsUpload(t *testing.T) {
	actor := &model.User{ID: 7, Username: "leo"}
	mockSvc := new(MockPostService)
	mockSvc.On("Create", mock.Anything, actor, mock.AnythingOfType("*form.PostForm")).
		Return(nil, form.Errors{"text": "this field is required"}, nil)
	mockSvc.On("Groups", mock.Anything).Return([]model.Group{}, nil)

	media := t.TempDir()
	h := NewPostHandler(mockSvc, media)
	c, rec := newMultipartContext(t, "/create/", map[string]string{"text": ""}, "cat.png", []byte("not-really-a-png"))
	auth.SetUser(c, actor)

	assert.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, mediaLeftovers(t, media))
}

func TestEditNonAuthorDiscardsUpload(t *testing.T) {
	actor := &model.User{ID: 8, Username: "nora"}
	mockSvc := new(MockPostService)
	mockSvc.On("Edit", mock.Anything, actor, uint(5), mock.AnythingOfType("*form.PostForm")).
		Return(nil, nil, apperrors.ErrNotAuthor)

	media := t.TempDir()
	h := NewPostHandler(mockSvc, media)
	c, rec := newMultipartContext(t, "/posts/5/edit/", map[string]string{"text": "hijack"}, "cat.png", []byte("not-really-a-png"))
	c.SetParamNames("id")
	c.SetParamValues("5")
	auth.SetUser(c, actor)

	assert.NoError(t, h.Edit(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/posts/5/", rec.Header().Get(echo.HeaderLocation))
	assert.Empty(t, mediaLeftovers(t, media))
}

func TestEditNonAuthorSilentlyRedirects(t *testing.T) {
	actor := &model.User{ID: 8, Username: "nora"}
	mockSvc := new(MockPostService)
	mockSvc.On("Edit", mock.Anything, actor, uint(5), mock.AnythingOfType("*form.PostForm")).
		Return(nil, nil, apperrors.ErrNotAuthor)

	h := NewPostHandler(mockSvc, t.TempDir())
	c, rec, _ := newTestContext(t, http.MethodPost, "/posts/5/edit/", url.Values{"text": {"hijack"}})
	c.SetParamNames("id")
	c.SetParamValues("5")
	auth.SetUser(c, actor)

	assert.NoError(t, h.Edit(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/posts/5/", rec.Header().Get(echo.HeaderLocation))
}

func TestEditFormNonAuthorSilentlyRedirects(t *testing.T) {
	mockSvc := new(MockPostService)
	mockSvc.On("Detail", mock.Anything, uint(5)).
		Return(&model.Post{ID: 5, Text: "t", AuthorID: 7}, nil)

	h := NewPostHandler(mockSvc, t.TempDir())
	c, rec, _ := newTestContext(t, http.MethodGet, "/posts/5/edit/", nil)
	c.SetParamNames("id")
	c.SetParamValues("5")
	auth.SetUser(c, &model.User{ID: 8, Username: "nora"})

	assert.NoError(t, h.EditForm(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/posts/5/", rec.Header().Get(echo.HeaderLocation))
}

func TestEditValidRedirectsToDetail(t *testing.T) {
	actor := &model.User{ID: 7, Username: "leo"}
	mockSvc := new(MockPostService)
	mockSvc.On("Edit", mock.Anything, actor, uint(5), mock.AnythingOfType("*form.PostForm")).
		Return(&model.Post{ID: 5, Text: "rewritten", AuthorID: 7}, nil, nil)

	h := NewPostHandler(mockSvc, t.TempDir())
	c, rec, _ := newTestContext(t, http.MethodPost, "/posts/5/edit/", url.Values{"text": {"rewritten"}})
	c.SetParamNames("id")
	c.SetParamValues("5")
	auth.SetUser(c, actor)

	assert.NoError(t, h.Edit(c))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/posts/5/", rec.Header().Get(echo.HeaderLocation))
}

func TestEditFormPrefillsFromPost(t *testing.T) {
	groupID := uint(3)
	mockSvc := new(MockPostService)
	mockSvc.On("Detail", mock.Anything, uint(5)).
		Return(&model.Post{ID: 5, Text: "original", AuthorID: 7, GroupID: &groupID}, nil)
	mockSvc.On("Groups", mock.Anything).Return([]model.Group{{ID: 3, Title: "g"}}, nil)

	h := NewPostHandler(mockSvc, t.TempDir())
	c, rec, renderer := newTestContext(t, http.MethodGet, "/posts/5/edit/", nil)
	c.SetParamNames("id")
	c.SetParamValues("5")
	auth.SetUser(c, &model.User{ID: 7, Username: "leo"})

	assert.NoError(t, h.EditForm(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "create_post.html", renderer.lastName)

	data := renderer.lastData.(echo.Map)
	assert.Equal(t, true, data["IsEdit"])
	f := data["Form"].(*form.PostForm)
	assert.Equal(t, "original", f.Text)
	assert.Equal(t, "3", f.GroupID)
}
