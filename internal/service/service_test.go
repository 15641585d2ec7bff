package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"yatube/internal/engine"
	"yatube/internal/forms"
	"yatube/internal/media"
	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store := engine.NewMemoryStore(utils.NewMetricsCollector(), time.Second)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	storage, err := media.NewLocalStorage(t.TempDir(), "/media/")
	require.NoError(t, err)
	return New(store, storage, WithBcryptCost(bcrypt.MinCost))
}

func mustUser(t *testing.T, s *Service, username string) *models.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), username, "correct-horse", "", "")
	require.NoError(t, err)
	return user
}

func mustPost(t *testing.T, s *Service, author *models.User, text string) *models.Post {
	t.Helper()
	post, err := s.CreatePost(context.Background(), author.ID, &forms.PostForm{Text: text, Errors: forms.Errors{}})
	require.NoError(t, err)
	require.NotNil(t, post)
	return post
}

func TestIndexPagination(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	author := mustUser(t, s, "author")
	for i := 0; i < 13; i++ {
		mustPost(t, s, author, fmt.Sprintf("post %d", i))
	}

	first, err := s.Index(ctx, "")
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, "post 12", first.Items[0].Text)

	second, err := s.Index(ctx, "2")
	require.NoError(t, err)
	assert.Len(t, second.Items, 3)

	last, err := s.Index(ctx, "99")
	require.NoError(t, err)
	assert.Equal(t, 2, last.Number)
}

func TestGroupFeed(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	author := mustUser(t, s, "author")
	group, err := s.CreateGroup(ctx, "Cats", "cats", "all about cats")
	require.NoError(t, err)

	post, err := s.CreatePost(ctx, author.ID, &forms.PostForm{Text: "meow", Group: "cats", Errors: forms.Errors{}})
	require.NoError(t, err)
	require.NotNil(t, post)
	mustPost(t, s, author, "ungrouped")

	got, feed, err := s.GroupFeed(ctx, "cats", "1")
	require.NoError(t, err)
	assert.Equal(t, group.ID, got.ID)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "meow", feed.Items[0].Text)

	_, _, err = s.GroupFeed(ctx, "dogs", "1")
	assert.True(t, utils.IsNotFound(err))
}

func TestCreatePostUnknownGroup(t *testing.T) {
	s := newTestService(t)
	author := mustUser(t, s, "author")

	form := &forms.PostForm{Text: "hello", Group: uuid.NewString(), Errors: forms.Errors{}}
	post, err := s.CreatePost(context.Background(), author.ID, form)
	require.NoError(t, err)
	assert.Nil(t, post)
	assert.Equal(t, msgInvalidGroup, form.Errors.Get("group"))
}

func TestCreatePostStoresImage(t *testing.T) {
	s := newTestService(t)
	author := mustUser(t, s, "author")

	form := &forms.PostForm{
		Text:   "with picture",
		Image:  &forms.Upload{Filename: "pic.png", ContentType: "image/png", Data: []byte("png")},
		Errors: forms.Errors{},
	}
	post, err := s.CreatePost(context.Background(), author.ID, form)
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.NotEmpty(t, post.Image)
	assert.Equal(t, "/media/"+post.Image, s.MediaURL(post.Image))
}

func TestEditPostOwnership(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	owner := mustUser(t, s, "owner")
	other := mustUser(t, s, "other")
	post := mustPost(t, s, owner, "original")

	_, outcome, err := s.EditPost(ctx, other.ID, "owner", post.ID, &forms.PostForm{Text: "hijack", Errors: forms.Errors{}})
	require.NoError(t, err)
	assert.Equal(t, Denied, outcome)

	_, _, err = s.EditPost(ctx, owner.ID, "other", post.ID, &forms.PostForm{Text: "x", Errors: forms.Errors{}})
	assert.True(t, utils.IsNotFound(err))

	form := &forms.PostForm{Text: "", Errors: forms.Errors{}}
	_, outcome, err = s.EditPost(ctx, owner.ID, "owner", post.ID, form)
	require.NoError(t, err)
	assert.Equal(t, Unchanged, outcome)
	assert.True(t, form.Errors.Has("text"))

	edited, outcome, err := s.EditPost(ctx, owner.ID, "owner", post.ID, &forms.PostForm{Text: "edited", Errors: forms.Errors{}})
	require.NoError(t, err)
	assert.Equal(t, Done, outcome)
	assert.Equal(t, "edited", edited.Text)

	view, err := s.PostDetail(ctx, "owner", post.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, "edited", view.Post.Text)
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	owner := mustUser(t, s, "owner")
	other := mustUser(t, s, "other")
	post := mustPost(t, s, owner, "doomed")

	_, err := s.AddComment(ctx, other.ID, "owner", post.ID, &forms.CommentForm{Text: "nice", Errors: forms.Errors{}})
	require.NoError(t, err)

	outcome, err := s.DeletePost(ctx, other.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, Denied, outcome)

	outcome, err = s.DeletePost(ctx, uuid.Nil, post.ID)
	require.NoError(t, err)
	assert.Equal(t, Denied, outcome)

	outcome, err = s.DeletePost(ctx, owner.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, Done, outcome)

	_, err = s.DeletePost(ctx, owner.ID, post.ID)
	assert.True(t, utils.IsNotFound(err))
}

func TestDeleteCommentRights(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	postAuthor := mustUser(t, s, "post_author")
	commenter := mustUser(t, s, "commenter")
	bystander := mustUser(t, s, "bystander")
	post := mustPost(t, s, postAuthor, "discuss")

	addComment := func() *models.Comment {
		comment, err := s.AddComment(ctx, commenter.ID, "post_author", post.ID, &forms.CommentForm{Text: "hi", Errors: forms.Errors{}})
		require.NoError(t, err)
		require.NotNil(t, comment)
		return comment
	}

	first := addComment()
	_, outcome, err := s.DeleteComment(ctx, bystander.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, Denied, outcome)

	returned, outcome, err := s.DeleteComment(ctx, commenter.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, Done, outcome)
	assert.Equal(t, post.ID, returned.ID)

	second := addComment()
	_, outcome, err = s.DeleteComment(ctx, postAuthor.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, Done, outcome)

	_, _, err = s.DeleteComment(ctx, postAuthor.ID, second.ID)
	assert.True(t, utils.IsNotFound(err))
}

func TestAddCommentValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	author := mustUser(t, s, "author")
	post := mustPost(t, s, author, "text")

	form := &forms.CommentForm{Text: "  ", Errors: forms.Errors{}}
	comment, err := s.AddComment(ctx, author.ID, "author", post.ID, form)
	require.NoError(t, err)
	assert.Nil(t, comment)
	assert.True(t, form.Errors.Has("text"))

	_, err = s.AddComment(ctx, author.ID, "nobody", post.ID, &forms.CommentForm{Text: "x", Errors: forms.Errors{}})
	assert.True(t, utils.IsNotFound(err))
}

func TestFollowLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	reader := mustUser(t, s, "reader")
	writer := mustUser(t, s, "writer")
	mustPost(t, s, writer, "followed content")
	mustPost(t, s, reader, "own content")

	_, outcome, err := s.Follow(ctx, reader.ID, "reader")
	require.NoError(t, err)
	assert.Equal(t, Unchanged, outcome)

	_, outcome, err = s.Follow(ctx, reader.ID, "writer")
	require.NoError(t, err)
	assert.Equal(t, Done, outcome)
	_, outcome, err = s.Follow(ctx, reader.ID, "writer")
	require.NoError(t, err)
	assert.Equal(t, Unchanged, outcome)

	feed, err := s.FollowFeed(ctx, reader.ID, "1")
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "followed content", feed.Items[0].Text)

	profile, err := s.Profile(ctx, "writer", reader.ID, "1")
	require.NoError(t, err)
	assert.True(t, profile.IsFollowing)
	assert.Equal(t, 1, profile.Followers)
	assert.Equal(t, 1, profile.PostCount)

	_, outcome, err = s.Unfollow(ctx, reader.ID, "writer")
	require.NoError(t, err)
	assert.Equal(t, Done, outcome)
	_, outcome, err = s.Unfollow(ctx, reader.ID, "writer")
	require.NoError(t, err)
	assert.Equal(t, Unchanged, outcome)

	feed, err = s.FollowFeed(ctx, reader.ID, "1")
	require.NoError(t, err)
	assert.Empty(t, feed.Items)

	_, _, err = s.Follow(ctx, reader.ID, "ghost")
	assert.True(t, utils.IsNotFound(err))

	author, outcome, err := s.Unfollow(ctx, reader.ID, "ghost")
	require.NoError(t, err)
	assert.Nil(t, author)
	assert.Equal(t, Unchanged, outcome)
}

func TestIndexPageNumber(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	author := mustUser(t, s, "writer")
	for i := 0; i < 13; i++ {
		mustPost(t, s, author, fmt.Sprintf("post %d", i))
	}

	for raw, want := range map[string]int{"": 1, "2": 2, "abc": 1, "99": 2, "x7": 1} {
		number, err := s.IndexPageNumber(ctx, raw)
		require.NoError(t, err)
		assert.Equal(t, want, number, raw)
	}
}

func TestProfileAnonymous(t *testing.T) {
	s := newTestService(t)
	mustUser(t, s, "writer")

	profile, err := s.Profile(context.Background(), "writer", uuid.Nil, "")
	require.NoError(t, err)
	assert.False(t, profile.IsFollowing)
	assert.False(t, profile.IsSelf)
	assert.Equal(t, 0, profile.Page.Count)

	_, err = s.Profile(context.Background(), "ghost", uuid.Nil, "")
	assert.True(t, utils.IsNotFound(err))
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	signup := func() *forms.SignupForm {
		return &forms.SignupForm{
			Username:  "leo",
			FirstName: "Leo",
			Password1: "correct-horse",
			Password2: "correct-horse",
			Errors:    forms.Errors{},
		}
	}

	user, err := s.Signup(ctx, signup())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	dup := signup()
	user, err = s.Signup(ctx, dup)
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Equal(t, msgUsernameTaken, dup.Errors.Get("username"))

	good := &forms.LoginForm{Username: "leo", Password: "correct-horse", Errors: forms.Errors{}}
	user, err = s.Login(ctx, good)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "leo", user.Username)

	for _, form := range []*forms.LoginForm{
		{Username: "leo", Password: "wrong-password", Errors: forms.Errors{}},
		{Username: "nobody", Password: "correct-horse", Errors: forms.Errors{}},
	} {
		user, err = s.Login(ctx, form)
		require.NoError(t, err)
		assert.Nil(t, user)
		assert.Equal(t, msgBadLogin, form.Errors.Get(forms.NonField))
	}
}

func TestDeleteGroupKeepsPosts(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	author := mustUser(t, s, "author")
	_, err := s.CreateGroup(ctx, "Temp", "temp", "")
	require.NoError(t, err)

	post, err := s.CreatePost(ctx, author.ID, &forms.PostForm{Text: "grouped", Group: "temp", Errors: forms.Errors{}})
	require.NoError(t, err)
	require.NotNil(t, post)

	require.NoError(t, s.DeleteGroup(ctx, "temp"))

	view, err := s.PostDetail(ctx, "author", post.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Nil(t, view.Post.GroupID)

	groups, err := s.ListGroups(ctx)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestCreateGroupValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	_, err := s.CreateGroup(ctx, "", "slug", "")
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
	_, err = s.CreateGroup(ctx, "Title", "bad slug", "")
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))

	_, err = s.CreateGroup(ctx, "Title", "slug", "")
	require.NoError(t, err)
	_, err = s.CreateGroup(ctx, "Other", "slug", "")
	assert.True(t, utils.IsErrorCode(err, utils.ErrDuplicate))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "done", Done.String())
	assert.Equal(t, "unchanged", Unchanged.String())
	assert.Equal(t, "denied", Denied.String())
}
