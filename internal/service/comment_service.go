package service

import (
	"context"
	"strings"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
)

type CommentInput struct {
	Text string `form:"text" validate:"required"`
}

// CommentService 评论只增不改；调用方需已登录
type CommentService interface {
	Add(ctx context.Context, userID, postID uint, in CommentInput) (*model.Comment, error)
	List(ctx context.Context, postID uint) ([]*model.Comment, error)
}

type commentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository) CommentService {
	return &commentService{comments: comments, posts: posts}
}

func (s *commentService) Add(ctx context.Context, userID, postID uint, in CommentInput) (*model.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	in.Text = strings.TrimSpace(in.Text)
	if err := validateStruct(&in); err != nil {
		return nil, err
	}
	c := &model.Comment{Text: in.Text, AuthorID: userID, PostID: postID}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *commentService) List(ctx context.Context, postID uint) ([]*model.Comment, error) {
	return s.comments.ListByPost(ctx, postID)
}
