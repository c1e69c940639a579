package service

import (
	"context"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
)

// RelationshipService 关注关系：关注幂等，取关不存在的边是空操作
type RelationshipService interface {
	// Follow 自己关注自己，或被并发 unfollow 抢先删除时返回 (nil, nil)
	Follow(ctx context.Context, userID, authorID uint) (*model.Follow, error)
	Unfollow(ctx context.Context, userID, authorID uint) error
	IsFollowing(ctx context.Context, userID, authorID uint) (bool, error)
	ListFollowing(ctx context.Context, userID uint, page, pageSize int) ([]*model.User, error)
	// FollowedFeed 关注的作者发布的帖子，按时间倒序分页
	FollowedFeed(ctx context.Context, userID uint, page int) (*Page, error)
}

type relationshipService struct {
	followRepo repository.FollowRepository
	postRepo   repository.PostRepository
	pageSize   int
}

func NewRelationshipService(followRepo repository.FollowRepository, postRepo repository.PostRepository, pageSize int) RelationshipService {
	if pageSize < 1 {
		pageSize = 10
	}
	return &relationshipService{followRepo: followRepo, postRepo: postRepo, pageSize: pageSize}
}

func (s *relationshipService) Follow(ctx context.Context, userID, authorID uint) (*model.Follow, error) {
	if userID == authorID {
		return nil, nil
	}
	return s.followRepo.Create(ctx, userID, authorID)
}

func (s *relationshipService) Unfollow(ctx context.Context, userID, authorID uint) error {
	return s.followRepo.Delete(ctx, userID, authorID)
}

func (s *relationshipService) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	if userID == authorID {
		return false, nil
	}
	return s.followRepo.Exists(ctx, userID, authorID)
}

func (s *relationshipService) ListFollowing(ctx context.Context, userID uint, page, pageSize int) ([]*model.User, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize
	items, err := s.followRepo.ListFollowings(ctx, userID, offset, pageSize)
	if err != nil {
		return nil, err
	}
	res := make([]*model.User, len(items))
	for i, it := range items {
		res[i] = &it.Author
	}
	return res, nil
}

func (s *relationshipService) FollowedFeed(ctx context.Context, userID uint, page int) (*Page, error) {
	return paginate(ctx, s.postRepo, repository.PostFilter{FollowerID: &userID}, page, s.pageSize)
}
