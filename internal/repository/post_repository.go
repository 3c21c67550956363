package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yatube/internal/model"
)

// recencyOrder is the listing order every endpoint relies on: newest
// first, with the id as tiebreak so same-second inserts stay monotonic.
const recencyOrder = "created_at DESC, id DESC"

// PostRepository defines persistence operations for posts. Listing
// methods return one page of rows with the author relation populated;
// pairing Count* with List*Page keeps pagination math in the caller.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	Update(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id uint) (*model.Post, error)
	CountAll(ctx context.Context) (int64, error)
	ListPage(ctx context.Context, offset, limit int) ([]model.Post, error)
	CountByGroup(ctx context.Context, groupID uint) (int64, error)
	ListByGroupPage(ctx context.Context, groupID uint, offset, limit int) ([]model.Post, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	ListByAuthorPage(ctx context.Context, authorID uint, offset, limit int) ([]model.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository builds a GORM-backed repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

// Update writes the whole row. Concurrent edits are last-write-wins.
func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id uint) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Preload("Author").Preload("Group").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Post{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *postRepository) ListPage(ctx context.Context, offset, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Order(recencyOrder).
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) CountByGroup(ctx context.Context, groupID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Post{}).Where("group_id = ?", groupID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *postRepository) ListByGroupPage(ctx context.Context, groupID uint, offset, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("group_id = ?", groupID).
		Order(recencyOrder).
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Post{}).Where("author_id = ?", authorID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *postRepository) ListByAuthorPage(ctx context.Context, authorID uint, offset, limit int) ([]model.Post, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").Preload("Group").
		Where("author_id = ?", authorID).
		Order(recencyOrder).
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}
