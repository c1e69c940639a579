package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/pkg/apperror"
)

// PostFilter 选择 feed 的数据来源；全部为空表示全站
type PostFilter struct {
	GroupID    *uint
	AuthorID   *uint
	FollowerID *uint // 该用户关注的作者发布的帖子
}

// PostRepository 帖子仓储
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id uint) (*model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Count(ctx context.Context, filter PostFilter) (int64, error)
	// List 按 created 倒序（同一时刻按 id 倒序）返回一页
	List(ctx context.Context, filter PostFilter, offset, limit int) ([]*model.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("post", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update 仅更新作者可编辑的字段，created 保持不变
func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	res := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", post.ID).
		Select("text", "group_id", "image").
		Updates(map[string]any{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("post", post.ID)
	}
	return nil
}

func (r *postRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	var cnt int64
	err := r.scoped(ctx, filter).Model(&model.Post{}).Count(&cnt).Error
	return cnt, err
}

func (r *postRepository) List(ctx context.Context, filter PostFilter, offset, limit int) ([]*model.Post, error) {
	var res []*model.Post
	err := r.scoped(ctx, filter).
		Preload("Author").
		Preload("Group").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *postRepository) scoped(ctx context.Context, f PostFilter) *gorm.DB {
	q := r.db.WithContext(ctx)
	if f.GroupID != nil {
		q = q.Where("group_id = ?", *f.GroupID)
	}
	if f.AuthorID != nil {
		q = q.Where("author_id = ?", *f.AuthorID)
	}
	if f.FollowerID != nil {
		followed := r.db.WithContext(ctx).
			Model(&model.Follow{}).
			Select("author_id").
			Where("user_id = ?", *f.FollowerID)
		q = q.Where("author_id IN (?)", followed)
	}
	return q
}
