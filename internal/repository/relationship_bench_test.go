package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/d60-Lab/yatube/internal/model"
)

func BenchmarkFollowWrite(b *testing.B) {
	db := openTestDB(b)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	users := make([]model.User, 500)
	for i := range users {
		users[i] = model.User{Username: fmt.Sprintf("u%04d", i), Password: "p"}
	}
	if err := db.Create(&users).Error; err != nil {
		b.Fatalf("seed users: %v", err)
	}

	rnd := rand.New(rand.NewSource(42))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		from := users[rnd.Intn(len(users))].ID
		to := users[rnd.Intn(len(users))].ID
		if from == to {
			continue
		}
		_, _ = repo.Create(ctx, from, to)
	}
}

// 构造：u0 关注 N 个作者，每个作者发 M 条帖子
func BenchmarkFollowedFeed(b *testing.B) {
	db := openTestDB(b)
	follows := NewFollowRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	const N, M = 200, 10
	u0 := createUser(b, db, "u0")
	for i := 1; i <= N; i++ {
		author := createUser(b, db, fmt.Sprintf("a%d", i))
		_, _ = follows.Create(ctx, u0.ID, author.ID)
		batch := make([]model.Post, M)
		for j := range batch {
			batch[j] = model.Post{Text: fmt.Sprintf("post %d/%d", i, j), AuthorID: author.ID}
		}
		_ = db.Omit("Author", "Group").Create(&batch).Error
	}
	filter := PostFilter{FollowerID: &u0.ID}

	b.ResetTimer()
	b.Run("Count", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = posts.Count(ctx, filter)
		}
	})
	b.Run("FirstPage", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = posts.List(ctx, filter, 0, 10)
		}
	})
}
