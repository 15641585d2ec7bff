package actors

import (
	"log/slog"
	"sort"
	"time"

	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for Group and Post operations
type (
	CreateGroupMsg struct {
		Group *models.Group
	}

	GetGroupMsg struct {
		GroupID uuid.UUID
	}

	GetGroupBySlugMsg struct {
		Slug string
	}

	ListGroupsMsg struct{}

	DeleteGroupMsg struct {
		GroupID uuid.UUID
	}

	SavePostMsg struct {
		Post *models.Post
	}

	GetPostMsg struct {
		PostID uuid.UUID
	}

	DeletePostMsg struct {
		PostID uuid.UUID
	}

	// ListPostsMsg selects posts newest first. A nil AuthorIDs set means any
	// author; an empty one matches nothing.
	ListPostsMsg struct {
		GroupID   *uuid.UUID
		AuthorIDs map[uuid.UUID]bool
		Limit     int
		Offset    int
	}

	// ListPostsResult carries a page of posts and the total match count.
	ListPostsResult struct {
		Posts []*models.Post
		Total int
	}

	GetCountsMsg struct{}
)

type storedPost struct {
	post *models.Post
	seq  uint64
}

// PostActor owns groups and posts.
type PostActor struct {
	groupsByID   map[uuid.UUID]*models.Group
	groupsBySlug map[string]uuid.UUID
	postsByID    map[uuid.UUID]*storedPost
	nextSeq      uint64
	metrics      *utils.MetricsCollector
}

// NewPostActor creates a new PostActor instance
func NewPostActor(metrics *utils.MetricsCollector) actor.Actor {
	return &PostActor{
		groupsByID:   make(map[uuid.UUID]*models.Group),
		groupsBySlug: make(map[string]uuid.UUID),
		postsByID:    make(map[uuid.UUID]*storedPost),
		metrics:      metrics,
	}
}

// Receive handles incoming messages
func (a *PostActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		slog.Debug("PostActor started")
	case *actor.Stopped:
		slog.Debug("PostActor stopped")
	case *CreateGroupMsg:
		a.handleCreateGroup(context, msg)
	case *GetGroupMsg:
		a.respondGroup(context, a.groupsByID[msg.GroupID])
	case *GetGroupBySlugMsg:
		a.respondGroup(context, a.groupsByID[a.groupsBySlug[msg.Slug]])
	case *ListGroupsMsg:
		a.handleListGroups(context)
	case *DeleteGroupMsg:
		a.handleDeleteGroup(context, msg)
	case *SavePostMsg:
		a.handleSavePost(context, msg)
	case *GetPostMsg:
		a.handleGetPost(context, msg)
	case *DeletePostMsg:
		a.handleDeletePost(context, msg)
	case *ListPostsMsg:
		a.handleListPosts(context, msg)
	case *GetCountsMsg:
		context.Respond(len(a.postsByID))
	default:
		slog.Warn("PostActor: unknown message type", "type", typeName(msg))
	}
}

func (a *PostActor) handleCreateGroup(context actor.Context, msg *CreateGroupMsg) {
	if _, exists := a.groupsBySlug[msg.Group.Slug]; exists {
		context.Respond(utils.NewAppError(utils.ErrDuplicate, "group slug already exists", nil))
		return
	}
	group := *msg.Group
	a.groupsByID[group.ID] = &group
	a.groupsBySlug[group.Slug] = group.ID
	context.Respond(true)
}

func (a *PostActor) respondGroup(context actor.Context, group *models.Group) {
	if group == nil {
		context.Respond(utils.NewNotFoundError("group"))
		return
	}
	copied := *group
	context.Respond(&copied)
}

func (a *PostActor) handleListGroups(context actor.Context) {
	groups := make([]*models.Group, 0, len(a.groupsByID))
	for _, group := range a.groupsByID {
		copied := *group
		groups = append(groups, &copied)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Title < groups[j].Title
	})
	context.Respond(groups)
}

func (a *PostActor) handleDeleteGroup(context actor.Context, msg *DeleteGroupMsg) {
	group, exists := a.groupsByID[msg.GroupID]
	if !exists {
		context.Respond(utils.NewNotFoundError("group"))
		return
	}
	for _, stored := range a.postsByID {
		if stored.post.GroupID != nil && *stored.post.GroupID == group.ID {
			stored.post.GroupID = nil
		}
	}
	delete(a.groupsBySlug, group.Slug)
	delete(a.groupsByID, group.ID)
	context.Respond(true)
}

func (a *PostActor) handleSavePost(context actor.Context, msg *SavePostMsg) {
	startTime := time.Now()
	defer func() { a.metrics.AddOperationLatency("memory_save_post", time.Since(startTime)) }()

	if msg.Post.GroupID != nil {
		if _, exists := a.groupsByID[*msg.Post.GroupID]; !exists {
			context.Respond(utils.NewNotFoundError("group"))
			return
		}
	}

	if stored, exists := a.postsByID[msg.Post.ID]; exists {
		stored.post.Text = msg.Post.Text
		stored.post.Image = msg.Post.Image
		stored.post.GroupID = copyID(msg.Post.GroupID)
		context.Respond(true)
		return
	}

	post := *msg.Post
	post.GroupID = copyID(msg.Post.GroupID)
	a.nextSeq++
	a.postsByID[post.ID] = &storedPost{post: &post, seq: a.nextSeq}
	context.Respond(true)
}

func (a *PostActor) handleGetPost(context actor.Context, msg *GetPostMsg) {
	stored, exists := a.postsByID[msg.PostID]
	if !exists {
		context.Respond(utils.NewNotFoundError("post"))
		return
	}
	context.Respond(a.hydrate(stored.post))
}

func (a *PostActor) handleDeletePost(context actor.Context, msg *DeletePostMsg) {
	if _, exists := a.postsByID[msg.PostID]; !exists {
		context.Respond(utils.NewNotFoundError("post"))
		return
	}
	delete(a.postsByID, msg.PostID)
	context.Respond(true)
}

func (a *PostActor) handleListPosts(context actor.Context, msg *ListPostsMsg) {
	startTime := time.Now()
	defer func() { a.metrics.AddOperationLatency("memory_list_posts", time.Since(startTime)) }()

	matched := make([]*storedPost, 0)
	for _, stored := range a.postsByID {
		post := stored.post
		if msg.GroupID != nil && (post.GroupID == nil || *post.GroupID != *msg.GroupID) {
			continue
		}
		if msg.AuthorIDs != nil && !msg.AuthorIDs[post.AuthorID] {
			continue
		}
		matched = append(matched, stored)
	}

	sort.Slice(matched, func(i, j int) bool {
		ti, tj := matched[i].post.CreatedAt, matched[j].post.CreatedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return matched[i].seq > matched[j].seq
	})

	result := &ListPostsResult{Total: len(matched), Posts: []*models.Post{}}
	if msg.Offset < len(matched) {
		end := len(matched)
		if msg.Limit > 0 && msg.Offset+msg.Limit < end {
			end = msg.Offset + msg.Limit
		}
		for _, stored := range matched[msg.Offset:end] {
			result.Posts = append(result.Posts, a.hydrate(stored.post))
		}
	}
	context.Respond(result)
}

// hydrate returns a copy of post with its group fields filled in.
func (a *PostActor) hydrate(post *models.Post) *models.Post {
	copied := *post
	copied.GroupID = copyID(post.GroupID)
	if copied.GroupID != nil {
		if group, exists := a.groupsByID[*copied.GroupID]; exists {
			copied.GroupSlug = group.Slug
			copied.GroupTitle = group.Title
		}
	}
	return &copied
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	copied := *id
	return &copied
}
