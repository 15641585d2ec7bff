// Package engine is the in-memory store: protoactor actors own the data and
// Engine turns Store calls into actor requests.
package engine

import (
	"context"
	"fmt"
	"time"

	"yatube/internal/database"
	"yatube/internal/engine/actors"
	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

const defaultRequestTimeout = 5 * time.Second

var _ database.Store = (*Engine)(nil)

// Engine coordinates the user, post and comment actors.
type Engine struct {
	system       *actor.ActorSystem
	context      *actor.RootContext
	userActor    *actor.PID
	postActor    *actor.PID
	commentActor *actor.PID
	metrics      *utils.MetricsCollector
	timeout      time.Duration
}

// NewEngine spawns the actors on system. A zero timeout uses 5s.
func NewEngine(system *actor.ActorSystem, metrics *utils.MetricsCollector, timeout time.Duration) *Engine {
	if metrics == nil {
		metrics = utils.NewMetricsCollector()
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	root := system.Root
	e := &Engine{
		system:  system,
		context: root,
		metrics: metrics,
		timeout: timeout,
	}

	e.userActor = root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return actors.NewUserActor(metrics)
	}))
	e.postActor = root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return actors.NewPostActor(metrics)
	}))
	e.commentActor = root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return actors.NewCommentActor(metrics)
	}))
	return e
}

// NewMemoryStore builds an Engine on a fresh actor system.
func NewMemoryStore(metrics *utils.MetricsCollector, timeout time.Duration) *Engine {
	return NewEngine(actor.NewActorSystem(), metrics, timeout)
}

// Close stops the actors.
func (e *Engine) Close(ctx context.Context) error {
	for _, pid := range []*actor.PID{e.userActor, e.postActor, e.commentActor} {
		e.context.Stop(pid)
	}
	return nil
}

// request sends msg to pid and unwraps an AppError reply into an error.
func (e *Engine) request(ctx context.Context, name string, pid *actor.PID, msg interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := e.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	result, err := e.context.RequestFuture(pid, msg, timeout).Result()
	if err != nil {
		return nil, utils.NewActorTimeoutError(name, err)
	}
	if appErr, ok := result.(*utils.AppError); ok {
		return nil, appErr
	}
	return result, nil
}

func unexpected(result interface{}) error {
	return utils.NewAppError(utils.ErrDatabase, fmt.Sprintf("unexpected actor reply %T", result), nil)
}

// --- Users ---

func (e *Engine) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	_, err := e.request(ctx, "UserActor", e.userActor, &actors.CreateUserMsg{User: user})
	return err
}

func (e *Engine) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return e.user(ctx, &actors.GetUserMsg{UserID: id})
}

func (e *Engine) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return e.user(ctx, &actors.GetUserByUsernameMsg{Username: username})
}

func (e *Engine) user(ctx context.Context, msg interface{}) (*models.User, error) {
	result, err := e.request(ctx, "UserActor", e.userActor, msg)
	if err != nil {
		return nil, err
	}
	user, ok := result.(*models.User)
	if !ok {
		return nil, unexpected(result)
	}
	return user, nil
}

func (e *Engine) ListUsers(ctx context.Context) ([]*models.User, error) {
	result, err := e.request(ctx, "UserActor", e.userActor, &actors.ListUsersMsg{})
	if err != nil {
		return nil, err
	}
	users, ok := result.([]*models.User)
	if !ok {
		return nil, unexpected(result)
	}
	return users, nil
}

// --- Groups ---

func (e *Engine) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now()
	}
	_, err := e.request(ctx, "PostActor", e.postActor, &actors.CreateGroupMsg{Group: group})
	return err
}

func (e *Engine) GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	return e.group(ctx, &actors.GetGroupMsg{GroupID: id})
}

func (e *Engine) GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	return e.group(ctx, &actors.GetGroupBySlugMsg{Slug: slug})
}

func (e *Engine) group(ctx context.Context, msg interface{}) (*models.Group, error) {
	result, err := e.request(ctx, "PostActor", e.postActor, msg)
	if err != nil {
		return nil, err
	}
	group, ok := result.(*models.Group)
	if !ok {
		return nil, unexpected(result)
	}
	return group, nil
}

func (e *Engine) ListGroups(ctx context.Context) ([]*models.Group, error) {
	result, err := e.request(ctx, "PostActor", e.postActor, &actors.ListGroupsMsg{})
	if err != nil {
		return nil, err
	}
	groups, ok := result.([]*models.Group)
	if !ok {
		return nil, unexpected(result)
	}
	return groups, nil
}

func (e *Engine) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	_, err := e.request(ctx, "PostActor", e.postActor, &actors.DeleteGroupMsg{GroupID: id})
	return err
}

// --- Posts ---

func (e *Engine) SavePost(ctx context.Context, post *models.Post) error {
	author, err := e.GetUser(ctx, post.AuthorID)
	if err != nil {
		return err
	}
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	post.AuthorUsername = author.Username
	_, err = e.request(ctx, "PostActor", e.postActor, &actors.SavePostMsg{Post: post})
	return err
}

func (e *Engine) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	result, err := e.request(ctx, "PostActor", e.postActor, &actors.GetPostMsg{PostID: id})
	if err != nil {
		return nil, err
	}
	post, ok := result.(*models.Post)
	if !ok {
		return nil, unexpected(result)
	}
	if err := e.countComments(ctx, []*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

func (e *Engine) DeletePost(ctx context.Context, id uuid.UUID) error {
	if _, err := e.request(ctx, "PostActor", e.postActor, &actors.DeletePostMsg{PostID: id}); err != nil {
		return err
	}
	_, err := e.request(ctx, "CommentActor", e.commentActor, &actors.DeleteCommentsForPostMsg{PostID: id})
	return err
}

func (e *Engine) CountPosts(ctx context.Context, filter models.PostFilter) (int, error) {
	result, err := e.listPosts(ctx, filter, 0, 0)
	if err != nil {
		return 0, err
	}
	return result.Total, nil
}

func (e *Engine) ListPosts(ctx context.Context, filter models.PostFilter, limit, offset int) ([]*models.Post, error) {
	result, err := e.listPosts(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := e.countComments(ctx, result.Posts); err != nil {
		return nil, err
	}
	return result.Posts, nil
}

func (e *Engine) listPosts(ctx context.Context, filter models.PostFilter, limit, offset int) (*actors.ListPostsResult, error) {
	msg := &actors.ListPostsMsg{
		GroupID: filter.GroupID,
		Limit:   limit,
		Offset:  offset,
	}

	if filter.FollowerID != nil {
		result, err := e.request(ctx, "UserActor", e.userActor, &actors.GetFollowedAuthorsMsg{UserID: *filter.FollowerID})
		if err != nil {
			return nil, err
		}
		authors, ok := result.(map[uuid.UUID]bool)
		if !ok {
			return nil, unexpected(result)
		}
		msg.AuthorIDs = authors
	}
	if filter.AuthorID != nil {
		if msg.AuthorIDs == nil {
			msg.AuthorIDs = map[uuid.UUID]bool{*filter.AuthorID: true}
		} else {
			msg.AuthorIDs = map[uuid.UUID]bool{*filter.AuthorID: msg.AuthorIDs[*filter.AuthorID]}
		}
	}

	result, err := e.request(ctx, "PostActor", e.postActor, msg)
	if err != nil {
		return nil, err
	}
	list, ok := result.(*actors.ListPostsResult)
	if !ok {
		return nil, unexpected(result)
	}
	return list, nil
}

func (e *Engine) countComments(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(posts))
	for i, post := range posts {
		ids[i] = post.ID
	}
	result, err := e.request(ctx, "CommentActor", e.commentActor, &actors.CountCommentsMsg{PostIDs: ids})
	if err != nil {
		return err
	}
	counts, ok := result.(map[uuid.UUID]int)
	if !ok {
		return unexpected(result)
	}
	for _, post := range posts {
		post.CommentCount = counts[post.ID]
	}
	return nil
}

// --- Comments ---

func (e *Engine) SaveComment(ctx context.Context, comment *models.Comment) error {
	if _, err := e.request(ctx, "PostActor", e.postActor, &actors.GetPostMsg{PostID: comment.PostID}); err != nil {
		return err
	}
	author, err := e.GetUser(ctx, comment.AuthorID)
	if err != nil {
		return err
	}
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	comment.AuthorUsername = author.Username
	_, err = e.request(ctx, "CommentActor", e.commentActor, &actors.SaveCommentMsg{Comment: comment})
	return err
}

func (e *Engine) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	result, err := e.request(ctx, "CommentActor", e.commentActor, &actors.GetCommentMsg{CommentID: id})
	if err != nil {
		return nil, err
	}
	comment, ok := result.(*models.Comment)
	if !ok {
		return nil, unexpected(result)
	}
	return comment, nil
}

func (e *Engine) DeleteComment(ctx context.Context, id uuid.UUID) error {
	_, err := e.request(ctx, "CommentActor", e.commentActor, &actors.DeleteCommentMsg{CommentID: id})
	return err
}

func (e *Engine) ListPostComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	result, err := e.request(ctx, "CommentActor", e.commentActor, &actors.GetCommentsForPostMsg{PostID: postID})
	if err != nil {
		return nil, err
	}
	comments, ok := result.([]*models.Comment)
	if !ok {
		return nil, unexpected(result)
	}
	return comments, nil
}

// --- Follows ---

func (e *Engine) CreateFollow(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	return e.boolRequest(ctx, &actors.FollowMsg{UserID: userID, AuthorID: authorID})
}

func (e *Engine) DeleteFollow(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	return e.boolRequest(ctx, &actors.UnfollowMsg{UserID: userID, AuthorID: authorID})
}

func (e *Engine) IsFollowing(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	return e.boolRequest(ctx, &actors.IsFollowingMsg{UserID: userID, AuthorID: authorID})
}

func (e *Engine) CountFollowers(ctx context.Context, authorID uuid.UUID) (int, error) {
	return e.intRequest(ctx, &actors.CountFollowersMsg{AuthorID: authorID})
}

func (e *Engine) CountFollowing(ctx context.Context, userID uuid.UUID) (int, error) {
	return e.intRequest(ctx, &actors.CountFollowingMsg{UserID: userID})
}

func (e *Engine) boolRequest(ctx context.Context, msg interface{}) (bool, error) {
	result, err := e.request(ctx, "UserActor", e.userActor, msg)
	if err != nil {
		return false, err
	}
	value, ok := result.(bool)
	if !ok {
		return false, unexpected(result)
	}
	return value, nil
}

func (e *Engine) intRequest(ctx context.Context, msg interface{}) (int, error) {
	result, err := e.request(ctx, "UserActor", e.userActor, msg)
	if err != nil {
		return 0, err
	}
	value, ok := result.(int)
	if !ok {
		return 0, unexpected(result)
	}
	return value, nil
}

// PostCount reports how many posts the post actor holds.
func (e *Engine) PostCount(ctx context.Context) (int, error) {
	result, err := e.request(ctx, "PostActor", e.postActor, &actors.GetCountsMsg{})
	if err != nil {
		return 0, err
	}
	count, ok := result.(int)
	if !ok {
		return 0, unexpected(result)
	}
	return count, nil
}
