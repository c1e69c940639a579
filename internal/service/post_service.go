package service

import (
	"context"
	"errors"
	"strings"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/pkg/apperror"
)

// PostInput 新建/编辑帖子的表单；Image 为已保存的媒体相对路径，空表示不改；
// ClearImage 仅编辑时有效，表示去掉现有图片
type PostInput struct {
	Text       string `form:"text" validate:"required"`
	GroupID    *uint  `form:"group"`
	Image      string `form:"-"`
	ClearImage bool   `form:"image-clear"`
}

const clearAndUpload = "Please either submit a file or check the clear checkbox, not both."

// EditOutcome 编辑结果；非作者编辑不是错误，而是 EditDenied
type EditOutcome int

const (
	EditApplied EditOutcome = iota
	EditDenied
)

type PostService interface {
	Create(ctx context.Context, authorID uint, in PostInput) (*model.Post, error)
	Get(ctx context.Context, id uint) (*model.Post, error)
	// GetForEdit 取出帖子并判断 userID 是否为作者
	GetForEdit(ctx context.Context, userID, postID uint) (*model.Post, EditOutcome, error)
	Edit(ctx context.Context, userID, postID uint, in PostInput) (*model.Post, EditOutcome, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
}

type postService struct {
	posts  repository.PostRepository
	groups repository.GroupRepository
}

func NewPostService(posts repository.PostRepository, groups repository.GroupRepository) PostService {
	return &postService{posts: posts, groups: groups}
}

func (s *postService) Create(ctx context.Context, authorID uint, in PostInput) (*model.Post, error) {
	if err := s.check(ctx, &in); err != nil {
		return nil, err
	}
	p := &model.Post{Text: in.Text, AuthorID: authorID, GroupID: in.GroupID, Image: in.Image}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *postService) Get(ctx context.Context, id uint) (*model.Post, error) {
	return s.posts.GetByID(ctx, id)
}

func (s *postService) GetForEdit(ctx context.Context, userID, postID uint) (*model.Post, EditOutcome, error) {
	p, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, EditDenied, err
	}
	if p.AuthorID != userID {
		return p, EditDenied, nil
	}
	return p, EditApplied, nil
}

func (s *postService) Edit(ctx context.Context, userID, postID uint, in PostInput) (*model.Post, EditOutcome, error) {
	p, outcome, err := s.GetForEdit(ctx, userID, postID)
	if err != nil || outcome == EditDenied {
		return p, outcome, err
	}
	if err := s.check(ctx, &in); err != nil {
		return p, EditApplied, err
	}

	if in.ClearImage && in.Image != "" {
		return p, EditApplied, apperror.ValidationFailed("image", clearAndUpload)
	}

	p.Text = in.Text
	p.GroupID = in.GroupID
	switch {
	case in.Image != "":
		p.Image = in.Image
	case in.ClearImage:
		p.Image = ""
	}
	if err := s.posts.Update(ctx, p); err != nil {
		return p, EditApplied, err
	}
	updated, err := s.posts.GetByID(ctx, p.ID)
	return updated, EditApplied, err
}

func (s *postService) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.posts.Count(ctx, repository.PostFilter{AuthorID: &authorID})
}

func (s *postService) check(ctx context.Context, in *PostInput) error {
	in.Text = strings.TrimSpace(in.Text)
	if err := validateStruct(in); err != nil {
		return err
	}
	if in.GroupID != nil {
		if _, err := s.groups.GetByID(ctx, *in.GroupID); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return apperror.ValidationFailed("group", "Select a valid choice. That choice is not one of the available choices.")
			}
			return err
		}
	}
	return nil
}
