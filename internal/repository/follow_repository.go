package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/yatube/internal/model"
)

type FollowRepository interface {
	Create(ctx context.Context, userID, authorID uint) (*model.Follow, error)
	Delete(ctx context.Context, userID, authorID uint) error
	Exists(ctx context.Context, userID, authorID uint) (bool, error)
	Count(ctx context.Context, userID, authorID uint) (int64, error)
	ListFollowings(ctx context.Context, userID uint, offset, limit int) ([]*model.Follow, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

// Create 幂等：(user_id, author_id) 唯一索引兜底，并发重复关注时返回已存在的那一行。
// 插入与读取之间被并发 unfollow 删除时重试一次；仍读不到说明 unfollow 更晚生效，返回 (nil, nil)
func (r *followRepository) Create(ctx context.Context, userID, authorID uint) (*model.Follow, error) {
	for attempt := 0; attempt < 2; attempt++ {
		f := &model.Follow{ID: uuid.New().String(), UserID: userID, AuthorID: authorID}
		if err := r.db.WithContext(ctx).
			Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(f).Error; err != nil {
			return nil, err
		}

		var existing model.Follow
		err := r.db.WithContext(ctx).
			Where("user_id = ? AND author_id = ?", userID, authorID).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &existing, nil
	}
	return nil, nil
}

func (r *followRepository) Delete(ctx context.Context, userID, authorID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&model.Follow{}).Error
}

func (r *followRepository) Exists(ctx context.Context, userID, authorID uint) (bool, error) {
	cnt, err := r.Count(ctx, userID, authorID)
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *followRepository) Count(ctx context.Context, userID, authorID uint) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&cnt).Error
	return cnt, err
}

func (r *followRepository) ListFollowings(ctx context.Context, userID uint, offset, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}
