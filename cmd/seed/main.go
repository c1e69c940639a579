package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/yatube/config"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/apperror"
	"github.com/d60-Lab/yatube/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

var groupSeeds = []service.GroupInput{
	{Title: "Cats", Slug: "cats", Description: "Everything about cats"},
	{Title: "Dogs", Slug: "dogs", Description: "Everything about dogs"},
	{Title: "Go", Slug: "go", Description: "Gophers welcome"},
}

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	defer database.Close(db)
	ctx := context.Background()

	users := repository.NewUserRepository(db)
	groups := repository.NewGroupRepository(db)
	posts := repository.NewPostRepository(db)

	userSvc := service.NewUserService(users)
	groupSvc := service.NewGroupService(groups)
	postSvc := service.NewPostService(posts, groups)
	commentSvc := service.NewCommentService(repository.NewCommentRepository(db), posts)
	relSvc := service.NewRelationshipService(repository.NewFollowRepository(db), posts, cfg.Feed.PageSize)

	// params
	USERS := 10
	POSTS := 15 // per user
	PASSWORD := "yatube-demo-pass"
	if s := os.Getenv("USERS"); s != "" {
		if v, e := strconv.Atoi(s); e == nil && v > 0 {
			USERS = v
		}
	}
	if s := os.Getenv("POSTS"); s != "" {
		if v, e := strconv.Atoi(s); e == nil && v > 0 {
			POSTS = v
		}
	}
	if s := os.Getenv("PASSWORD"); s != "" {
		PASSWORD = s
	}

	start := time.Now()
	seededGroups := make([]*model.Group, 0, len(groupSeeds))
	for _, in := range groupSeeds {
		g, err := groupSvc.GetBySlug(ctx, in.Slug)
		if errors.Is(err, apperror.ErrNotFound) {
			g, err = groupSvc.Create(ctx, in)
		}
		seededGroups = append(seededGroups, must(g, err))
	}

	// demo0..demoN-1，已存在的用户直接复用
	seededUsers := make([]*model.User, USERS)
	for i := range seededUsers {
		name := fmt.Sprintf("demo%d", i)
		u, err := userSvc.GetByUsername(ctx, name)
		if errors.Is(err, apperror.ErrNotFound) {
			u, err = userSvc.Register(ctx, service.RegisterInput{
				Username:  name,
				Email:     name + "@example.com",
				Password:  PASSWORD,
				Password2: PASSWORD,
			})
		}
		seededUsers[i] = must(u, err)
	}

	var created, comments, follows int
	for i, u := range seededUsers {
		for j := 0; j < POSTS; j++ {
			in := service.PostInput{Text: fmt.Sprintf("Post %d by %s (%s)", j, u.Username, uuid.NewString()[:8])}
			if j%2 == 0 {
				in.GroupID = &seededGroups[(i+j)%len(seededGroups)].ID
			}
			p := must(postSvc.Create(ctx, u.ID, in))
			created++

			reader := seededUsers[(i+1)%len(seededUsers)]
			if j%5 == 0 {
				must(commentSvc.Add(ctx, reader.ID, p.ID, service.CommentInput{Text: "Nice post, " + u.Username}))
				comments++
			}
		}
		// 每个用户关注后面两位，自己关注自己会被忽略
		for k := 1; k <= 2; k++ {
			author := seededUsers[(i+k)%len(seededUsers)]
			if f := must(relSvc.Follow(ctx, u.ID, author.ID)); f != nil {
				follows++
			}
		}
	}

	fmt.Printf("USERS=%d POSTS=%d groups=%d posts=%d comments=%d follows=%d in %v\n",
		len(seededUsers), POSTS, len(seededGroups), created, comments, follows, time.Since(start))
	fmt.Printf("log in as demo0 .. demo%d with password %q\n", len(seededUsers)-1, PASSWORD)
}
