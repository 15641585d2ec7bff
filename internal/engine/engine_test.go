package engine

import (
	"context"
	"testing"
	"time"

	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewMemoryStore(utils.NewMetricsCollector(), time.Second)
	t.Cleanup(func() { _ = e.Close(context.Background()) })
	return e
}

func mustUser(t *testing.T, e *Engine, name string) *models.User {
	t.Helper()
	user := &models.User{Username: name}
	require.NoError(t, e.CreateUser(context.Background(), user))
	return user
}

func TestEnginePostLifecycle(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	author := mustUser(t, e, "author")
	group := &models.Group{Title: "News", Slug: "news"}
	require.NoError(t, e.CreateGroup(ctx, group))

	post := &models.Post{Text: "hello world", AuthorID: author.ID, GroupID: &group.ID}
	require.NoError(t, e.SavePost(ctx, post))
	assert.NotEqual(t, uuid.Nil, post.ID)

	comment := &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "nice"}
	require.NoError(t, e.SaveComment(ctx, comment))
	assert.Equal(t, "author", comment.AuthorUsername)

	stored, err := e.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "author", stored.AuthorUsername)
	assert.Equal(t, "news", stored.GroupSlug)
	assert.Equal(t, 1, stored.CommentCount)

	require.NoError(t, e.DeletePost(ctx, post.ID))
	_, err = e.GetPost(ctx, post.ID)
	assert.True(t, utils.IsNotFound(err))
	_, err = e.GetComment(ctx, comment.ID)
	assert.True(t, utils.IsNotFound(err))

	assert.True(t, utils.IsNotFound(e.DeletePost(ctx, post.ID)))
}

func TestEngineSavePostRequiresAuthor(t *testing.T) {
	e := newTestEngine(t)

	err := e.SavePost(context.Background(), &models.Post{Text: "orphan", AuthorID: uuid.New()})
	assert.True(t, utils.IsNotFound(err))
}

func TestEngineSaveCommentRequiresPost(t *testing.T) {
	e := newTestEngine(t)
	author := mustUser(t, e, "author")

	err := e.SaveComment(context.Background(), &models.Comment{PostID: uuid.New(), AuthorID: author.ID, Text: "hi"})
	assert.True(t, utils.IsNotFound(err))
}

func TestEngineFollowFeed(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	reader := mustUser(t, e, "reader")
	followed := mustUser(t, e, "followed")
	stranger := mustUser(t, e, "stranger")

	require.NoError(t, e.SavePost(ctx, &models.Post{Text: "from followed", AuthorID: followed.ID}))
	require.NoError(t, e.SavePost(ctx, &models.Post{Text: "from stranger", AuthorID: stranger.ID}))

	feed := models.PostFilter{FollowerID: &reader.ID}
	count, err := e.CountPosts(ctx, feed)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	created, err := e.CreateFollow(ctx, reader.ID, followed.ID)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = e.CreateFollow(ctx, reader.ID, followed.ID)
	require.NoError(t, err)
	assert.False(t, created)

	posts, err := e.ListPosts(ctx, feed, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "from followed", posts[0].Text)

	both := models.PostFilter{FollowerID: &reader.ID, AuthorID: &stranger.ID}
	count, err = e.CountPosts(ctx, both)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	followers, err := e.CountFollowers(ctx, followed.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, followers)

	deleted, err := e.DeleteFollow(ctx, reader.ID, followed.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = e.DeleteFollow(ctx, reader.ID, followed.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestEngineCanceledContext(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ListUsers(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
