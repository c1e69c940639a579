package service

import (
	"context"
	"strings"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
)

type GroupInput struct {
	Title       string `form:"title" validate:"required,max=200"`
	Slug        string `form:"slug" validate:"required,max=50,slug"`
	Description string `form:"description"`
}

type GroupService interface {
	Create(ctx context.Context, in GroupInput) (*model.Group, error)
	GetBySlug(ctx context.Context, slug string) (*model.Group, error)
	List(ctx context.Context) ([]*model.Group, error)
}

type groupService struct {
	groups repository.GroupRepository
}

func NewGroupService(groups repository.GroupRepository) GroupService {
	return &groupService{groups: groups}
}

// Create 重复 slug 返回 apperror.Conflict
func (s *groupService) Create(ctx context.Context, in GroupInput) (*model.Group, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	if err := validateStruct(&in); err != nil {
		return nil, err
	}
	g := &model.Group{Title: in.Title, Slug: in.Slug, Description: in.Description}
	if err := s.groups.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *groupService) GetBySlug(ctx context.Context, slug string) (*model.Group, error) {
	return s.groups.GetBySlug(ctx, slug)
}

func (s *groupService) List(ctx context.Context) ([]*model.Group, error) {
	return s.groups.List(ctx)
}
