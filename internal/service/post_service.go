package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	apperrors "yatube/internal/errors"
	"yatube/internal/form"
	"yatube/internal/model"
	"yatube/internal/paging"
	"yatube/internal/repository"
)

// The front page tolerates slightly stale data in exchange for not
// hitting MySQL on every hit.
const indexCacheTTL = 20 * time.Second

// PostService exposes the listing, detail and authoring operations.
// Create and Edit return a non-empty form.Errors instead of persisting
// when the submission is invalid; a Go error means something actually
// broke (or, for Edit, that the actor may not touch the post).
type PostService interface {
	Index(ctx context.Context, pageNumber int) ([]model.Post, paging.Page, error)
	GroupPosts(ctx context.Context, slug string, pageNumber int) (*model.Group, []model.Post, paging.Page, error)
	Profile(ctx context.Context, username string, pageNumber int) (*model.User, []model.Post, paging.Page, error)
	Detail(ctx context.Context, id uint) (*model.Post, error)
	Groups(ctx context.Context) ([]model.Group, error)
	Create(ctx context.Context, author *model.User, f *form.PostForm) (*model.Post, form.Errors, error)
	Edit(ctx context.Context, actor *model.User, id uint, f *form.PostForm) (*model.Post, form.Errors, error)
}

// Cache is the subset of the redis client the post service needs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type postService struct {
	posts  repository.PostRepository
	groups repository.GroupRepository
	users  repository.UserRepository
	cache  Cache
}

// NewPostService builds a PostService over the three repositories.
func NewPostService(posts repository.PostRepository, groups repository.GroupRepository, users repository.UserRepository, cache Cache) PostService {
	return &postService{posts: posts, groups: groups, users: users, cache: cache}
}

func indexCacheKey(pageNumber int) string {
	return fmt.Sprintf("index:page:%d", pageNumber)
}

// Index serves the front page. The cache is keyed on the clamped page
// number, never the raw request value, so the key space stays bounded
// by the number of real pages.
func (s *postService) Index(ctx context.Context, pageNumber int) ([]model.Post, paging.Page, error) {
	total, err := s.posts.CountAll(ctx)
	if err != nil {
		return nil, paging.Page{}, err
	}
	page := paging.New(int(total), pageNumber)

	key := indexCacheKey(page.Number)
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached []model.Post
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, page, nil
		}
	}

	posts, err := s.posts.ListPage(ctx, page.Offset(), page.Limit())
	if err != nil {
		return nil, paging.Page{}, err
	}

	if payload, err := json.Marshal(posts); err == nil {
		_ = s.cache.Set(ctx, key, payload, indexCacheTTL)
	}
	return posts, page, nil
}

func (s *postService) GroupPosts(ctx context.Context, slug string, pageNumber int) (*model.Group, []model.Post, paging.Page, error) {
	group, err := s.groups.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, paging.Page{}, apperrors.ErrGroupNotFound
		}
		return nil, nil, paging.Page{}, err
	}

	total, err := s.posts.CountByGroup(ctx, group.ID)
	if err != nil {
		return nil, nil, paging.Page{}, err
	}
	page := paging.New(int(total), pageNumber)
	posts, err := s.posts.ListByGroupPage(ctx, group.ID, page.Offset(), page.Limit())
	if err != nil {
		return nil, nil, paging.Page{}, err
	}
	return group, posts, page, nil
}

func (s *postService) Profile(ctx context.Context, username string, pageNumber int) (*model.User, []model.Post, paging.Page, error) {
	author, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, paging.Page{}, apperrors.ErrUserNotFound
		}
		return nil, nil, paging.Page{}, err
	}

	total, err := s.posts.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, nil, paging.Page{}, err
	}
	page := paging.New(int(total), pageNumber)
	posts, err := s.posts.ListByAuthorPage(ctx, author.ID, page.Offset(), page.Limit())
	if err != nil {
		return nil, nil, paging.Page{}, err
	}
	return author, posts, page, nil
}

func (s *postService) Detail(ctx context.Context, id uint) (*model.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *postService) Groups(ctx context.Context) ([]model.Group, error) {
	return s.groups.List(ctx)
}

// Create persists a new post. The author always comes from the acting
// identity, never from the submission.
func (s *postService) Create(ctx context.Context, author *model.User, f *form.PostForm) (*model.Post, form.Errors, error) {
	group, errs, err := s.resolveForm(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	if len(errs) > 0 {
		return nil, errs, nil
	}

	post := &model.Post{
		Text:     f.Text,
		Image:    f.Image,
		AuthorID: author.ID,
		Author:   *author,
	}
	if group != nil {
		post.GroupID = &group.ID
		post.Group = group
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, nil, err
	}
	return post, nil, nil
}

// Edit mutates text, group and image of an existing post. The author is
// never altered. A non-author actor gets ErrNotAuthor with no mutation.
func (s *postService) Edit(ctx context.Context, actor *model.User, id uint, f *form.PostForm) (*model.Post, form.Errors, error) {
	post, err := s.Detail(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if post.AuthorID != actor.ID {
		return nil, nil, apperrors.ErrNotAuthor
	}

	group, errs, err := s.resolveForm(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	if len(errs) > 0 {
		return post, errs, nil
	}

	post.Text = f.Text
	if group != nil {
		post.GroupID = &group.ID
		post.Group = group
	} else {
		post.GroupID = nil
		post.Group = nil
	}
	if f.Image != "" {
		post.Image = f.Image
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, nil, err
	}
	return post, nil, nil
}

// resolveForm validates the submission and resolves the optional group
// reference. Field problems come back as form.Errors; only storage
// failures surface as a Go error.
func (s *postService) resolveForm(ctx context.Context, f *form.PostForm) (*model.Group, form.Errors, error) {
	f.Normalize()
	errs := form.Validate(f)
	if errs == nil {
		errs = form.Errors{}
	}

	var group *model.Group
	if f.GroupID != "" {
		id, err := strconv.ParseUint(f.GroupID, 10, 32)
		if err != nil {
			errs["group"] = "unknown group"
		} else {
			group, err = s.groups.FindByID(ctx, uint(id))
			if errors.Is(err, gorm.ErrRecordNotFound) {
				errs["group"] = "unknown group"
			} else if err != nil {
				return nil, nil, err
			}
		}
	}

	if len(errs) == 0 {
		return group, nil, nil
	}
	return nil, errs, nil
}
