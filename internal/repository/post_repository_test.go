package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/pkg/apperror"
)

func TestPostRepository_CreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "author")
	group := createGroup(t, db, "g1")

	p := &model.Post{Text: "hello", AuthorID: author.ID, GroupID: &group.ID, Image: "posts/a.gif"}
	require.NoError(t, repo.Create(ctx, p))
	require.NotZero(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, "author", got.Author.Username)
	require.NotNil(t, got.Group)
	assert.Equal(t, "g1", got.Group.Slug)
	assert.Equal(t, "posts/a.gif", got.Image)

	_, err = repo.GetByID(ctx, p.ID+100)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestPostRepository_UpdateKeepsCreated(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "author")
	g1 := createGroup(t, db, "g1")
	g2 := createGroup(t, db, "g2")
	p := createPost(t, db, author, g1, "v1")

	before, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	p.Text = "v2"
	p.GroupID = &g2.ID
	require.NoError(t, repo.Update(ctx, p))

	after, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", after.Text)
	require.NotNil(t, after.GroupID)
	assert.Equal(t, g2.ID, *after.GroupID)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))

	p.GroupID = nil
	require.NoError(t, repo.Update(ctx, p))
	after, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, after.GroupID)

	err = repo.Update(ctx, &model.Post{ID: 12345, Text: "x"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestPostRepository_ListOrderAndFilters(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	g1 := createGroup(t, db, "g1")
	g2 := createGroup(t, db, "g2")

	var ids []uint
	for i := 0; i < 3; i++ {
		ids = append(ids, createPost(t, db, alice, g1, fmt.Sprintf("alice %d", i)).ID)
	}
	bobPost := createPost(t, db, bob, g2, "bob")
	createPost(t, db, carol, nil, "carol")

	all, err := repo.List(ctx, PostFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "carol", all[0].Text, "newest first")
	assert.Equal(t, ids[0], all[4].ID, "oldest last")

	inG1, err := repo.List(ctx, PostFilter{GroupID: &g1.ID}, 0, 10)
	require.NoError(t, err)
	assert.Len(t, inG1, 3)
	for _, p := range inG1 {
		assert.NotEqual(t, bobPost.ID, p.ID)
	}

	cnt, err := repo.Count(ctx, PostFilter{GroupID: &g2.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, cnt)

	byBob, err := repo.List(ctx, PostFilter{AuthorID: &bob.ID}, 0, 10)
	require.NoError(t, err)
	require.Len(t, byBob, 1)
	assert.Equal(t, bobPost.ID, byBob[0].ID)

	follows := NewFollowRepository(db)
	_, err = follows.Create(ctx, carol.ID, bob.ID)
	require.NoError(t, err)

	feed, err := repo.List(ctx, PostFilter{FollowerID: &carol.ID}, 0, 10)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, bobPost.ID, feed[0].ID)

	cnt, err = repo.Count(ctx, PostFilter{FollowerID: &alice.ID})
	require.NoError(t, err)
	assert.Zero(t, cnt)

	page2, err := repo.List(ctx, PostFilter{}, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, ids[2], page2[0].ID)
}
