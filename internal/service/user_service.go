package service

import (
	"context"
	"errors"
	"strings"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/pkg/apperror"
	"github.com/d60-Lab/yatube/pkg/auth"
)

type RegisterInput struct {
	Username  string `form:"username" validate:"required,min=3,max=150,username"`
	Email     string `form:"email" validate:"omitempty,email"`
	Password  string `form:"password1" validate:"required,min=8,max=72"`
	Password2 string `form:"password2" validate:"required,eqfield=Password"`
}

type LoginInput struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

const badCredentials = "Please enter a correct username and password. Note that both fields may be case-sensitive."

type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Authenticate(ctx context.Context, in LoginInput) (*model.User, error)
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(&in); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		// max=72 按字符计，多字节密码仍可能超过 bcrypt 的 72 字节上限
		return nil, apperror.ValidationFailed("password1", "Ensure this value has at most 72 bytes.")
	}
	if err != nil {
		return nil, err
	}
	u := &model.User{Username: in.Username, Email: in.Email, Password: hash}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.ValidationFailed("username", "A user with that username already exists.")
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, in LoginInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validateStruct(&in); err != nil {
		return nil, err
	}
	u, err := s.users.GetByUsername(ctx, in.Username)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.ValidationFailed("", badCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.Password, in.Password) {
		return nil, apperror.ValidationFailed("", badCredentials)
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, id uint) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.users.GetByUsername(ctx, username)
}
