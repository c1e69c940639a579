package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
)

// fixture 组装一套基于内存 sqlite 的服务
type fixture struct {
	db       *gorm.DB
	users    repository.UserRepository
	groups   repository.GroupRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository

	feed     FeedService
	postSvc  PostService
	comment  CommentService
	relation RelationshipService
	userSvc  UserService
	groupSvc GroupService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Group{}, &model.Post{}, &model.Comment{}, &model.Follow{},
	))

	f := &fixture{
		db:       db,
		users:    repository.NewUserRepository(db),
		groups:   repository.NewGroupRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
		follows:  repository.NewFollowRepository(db),
	}
	f.feed = NewFeedService(f.posts, f.groups, f.users, 10)
	f.postSvc = NewPostService(f.posts, f.groups)
	f.comment = NewCommentService(f.comments, f.posts)
	f.relation = NewRelationshipService(f.follows, f.posts, 10)
	f.userSvc = NewUserService(f.users)
	f.groupSvc = NewGroupService(f.groups)
	return f
}

func (f *fixture) user(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{Username: name, Password: "x"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) group(t *testing.T, slug string) *model.Group {
	t.Helper()
	g, err := f.groupSvc.Create(context.Background(), GroupInput{Title: "Group " + slug, Slug: slug})
	require.NoError(t, err)
	return g
}

func (f *fixture) post(t *testing.T, author *model.User, group *model.Group, text string) *model.Post {
	t.Helper()
	in := PostInput{Text: text}
	if group != nil {
		in.GroupID = &group.ID
	}
	p, err := f.postSvc.Create(context.Background(), author.ID, in)
	require.NoError(t, err)
	return p
}

func postFilterAll() repository.PostFilter { return repository.PostFilter{} }
