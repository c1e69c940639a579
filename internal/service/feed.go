package service

import (
	"context"
	"strconv"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
)

// Page 分页结果；Number 从 1 开始，空 feed 也有 1 页
type Page struct {
	Items    []*model.Post
	Number   int
	NumPages int
	PerPage  int
	Total    int64
}

func (p *Page) HasPrevious() bool { return p.Number > 1 }
func (p *Page) HasNext() bool     { return p.Number < p.NumPages }
func (p *Page) PreviousNumber() int {
	if p.HasPrevious() {
		return p.Number - 1
	}
	return p.Number
}
func (p *Page) NextNumber() int {
	if p.HasNext() {
		return p.Number + 1
	}
	return p.Number
}

// PageRange 1..NumPages，模板渲染页码用
func (p *Page) PageRange() []int {
	r := make([]int, p.NumPages)
	for i := range r {
		r[i] = i + 1
	}
	return r
}

// ParsePage 解析 ?page=，非数字或小于 1 时返回 1
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// clampPage 把请求页码夹到 [1, numPages]
func clampPage(requested int, total int64, perPage int) (number, numPages int) {
	numPages = int((total + int64(perPage) - 1) / int64(perPage))
	if numPages < 1 {
		numPages = 1
	}
	number = requested
	if number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}
	return number, numPages
}

func paginate(ctx context.Context, posts repository.PostRepository, filter repository.PostFilter, page, perPage int) (*Page, error) {
	total, err := posts.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	number, numPages := clampPage(page, total, perPage)
	items := []*model.Post{}
	if total > 0 {
		items, err = posts.List(ctx, filter, (number-1)*perPage, perPage)
		if err != nil {
			return nil, err
		}
	}
	return &Page{Items: items, Number: number, NumPages: numPages, PerPage: perPage, Total: total}, nil
}

// FeedService 按来源（全站/分组/作者）分页读取帖子
type FeedService interface {
	All(ctx context.Context, page int) (*Page, error)
	// AllPageNumber 把请求页码夹到全站 feed 的有效范围，只做 count
	AllPageNumber(ctx context.Context, page int) (int, error)
	ByGroup(ctx context.Context, slug string, page int) (*model.Group, *Page, error)
	ByAuthor(ctx context.Context, username string, page int) (*model.User, *Page, error)
}

type feedService struct {
	posts    repository.PostRepository
	groups   repository.GroupRepository
	users    repository.UserRepository
	pageSize int
}

func NewFeedService(posts repository.PostRepository, groups repository.GroupRepository, users repository.UserRepository, pageSize int) FeedService {
	if pageSize < 1 {
		pageSize = 10
	}
	return &feedService{posts: posts, groups: groups, users: users, pageSize: pageSize}
}

func (s *feedService) All(ctx context.Context, page int) (*Page, error) {
	return paginate(ctx, s.posts, repository.PostFilter{}, page, s.pageSize)
}

func (s *feedService) AllPageNumber(ctx context.Context, page int) (int, error) {
	total, err := s.posts.Count(ctx, repository.PostFilter{})
	if err != nil {
		return 0, err
	}
	number, _ := clampPage(page, total, s.pageSize)
	return number, nil
}

func (s *feedService) ByGroup(ctx context.Context, slug string, page int) (*model.Group, *Page, error) {
	g, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	p, err := paginate(ctx, s.posts, repository.PostFilter{GroupID: &g.ID}, page, s.pageSize)
	if err != nil {
		return nil, nil, err
	}
	return g, p, nil
}

func (s *feedService) ByAuthor(ctx context.Context, username string, page int) (*model.User, *Page, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	p, err := paginate(ctx, s.posts, repository.PostFilter{AuthorID: &u.ID}, page, s.pageSize)
	if err != nil {
		return nil, nil, err
	}
	return u, p, nil
}
