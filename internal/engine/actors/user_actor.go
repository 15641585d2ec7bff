package actors

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for User and Follow operations
type (
	CreateUserMsg struct {
		User *models.User
	}

	GetUserMsg struct {
		UserID uuid.UUID
	}

	GetUserByUsernameMsg struct {
		Username string
	}

	ListUsersMsg struct{}

	FollowMsg struct {
		UserID   uuid.UUID
		AuthorID uuid.UUID
	}

	UnfollowMsg struct {
		UserID   uuid.UUID
		AuthorID uuid.UUID
	}

	IsFollowingMsg struct {
		UserID   uuid.UUID
		AuthorID uuid.UUID
	}

	// GetFollowedAuthorsMsg answers with map[uuid.UUID]bool of author IDs.
	GetFollowedAuthorsMsg struct {
		UserID uuid.UUID
	}

	CountFollowersMsg struct {
		AuthorID uuid.UUID
	}

	CountFollowingMsg struct {
		UserID uuid.UUID
	}
)

// UserActor owns user accounts and the follow graph.
type UserActor struct {
	usersByID   map[uuid.UUID]*models.User
	usersByName map[string]uuid.UUID
	following   map[uuid.UUID]map[uuid.UUID]bool // user -> authors
	followers   map[uuid.UUID]map[uuid.UUID]bool // author -> users
	metrics     *utils.MetricsCollector
}

// NewUserActor creates a new UserActor instance
func NewUserActor(metrics *utils.MetricsCollector) actor.Actor {
	return &UserActor{
		usersByID:   make(map[uuid.UUID]*models.User),
		usersByName: make(map[string]uuid.UUID),
		following:   make(map[uuid.UUID]map[uuid.UUID]bool),
		followers:   make(map[uuid.UUID]map[uuid.UUID]bool),
		metrics:     metrics,
	}
}

// Receive handles incoming messages
func (a *UserActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		slog.Debug("UserActor started")
	case *actor.Stopped:
		slog.Debug("UserActor stopped")
	case *CreateUserMsg:
		a.handleCreateUser(context, msg)
	case *GetUserMsg:
		a.respondUser(context, a.usersByID[msg.UserID])
	case *GetUserByUsernameMsg:
		a.respondUser(context, a.usersByID[a.usersByName[msg.Username]])
	case *ListUsersMsg:
		a.handleListUsers(context)
	case *FollowMsg:
		a.handleFollow(context, msg)
	case *UnfollowMsg:
		a.handleUnfollow(context, msg)
	case *IsFollowingMsg:
		context.Respond(a.following[msg.UserID][msg.AuthorID])
	case *GetFollowedAuthorsMsg:
		authors := make(map[uuid.UUID]bool, len(a.following[msg.UserID]))
		for authorID := range a.following[msg.UserID] {
			authors[authorID] = true
		}
		context.Respond(authors)
	case *CountFollowersMsg:
		context.Respond(len(a.followers[msg.AuthorID]))
	case *CountFollowingMsg:
		context.Respond(len(a.following[msg.UserID]))
	default:
		slog.Warn("UserActor: unknown message type", "type", typeName(msg))
	}
}

func (a *UserActor) handleCreateUser(context actor.Context, msg *CreateUserMsg) {
	if _, exists := a.usersByName[msg.User.Username]; exists {
		context.Respond(utils.NewAppError(utils.ErrDuplicate, "username already taken", nil))
		return
	}
	user := *msg.User
	a.usersByID[user.ID] = &user
	a.usersByName[user.Username] = user.ID
	context.Respond(true)
}

func (a *UserActor) respondUser(context actor.Context, user *models.User) {
	if user == nil {
		context.Respond(utils.NewNotFoundError("user"))
		return
	}
	copied := *user
	context.Respond(&copied)
}

func (a *UserActor) handleListUsers(context actor.Context) {
	users := make([]*models.User, 0, len(a.usersByID))
	for _, user := range a.usersByID {
		copied := *user
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})
	context.Respond(users)
}

func (a *UserActor) handleFollow(context actor.Context, msg *FollowMsg) {
	startTime := time.Now()
	defer func() { a.metrics.AddOperationLatency("memory_follow", time.Since(startTime)) }()

	if _, exists := a.usersByID[msg.UserID]; !exists {
		context.Respond(utils.NewNotFoundError("user"))
		return
	}
	if _, exists := a.usersByID[msg.AuthorID]; !exists {
		context.Respond(utils.NewNotFoundError("author"))
		return
	}
	if a.following[msg.UserID][msg.AuthorID] {
		context.Respond(false)
		return
	}
	if a.following[msg.UserID] == nil {
		a.following[msg.UserID] = make(map[uuid.UUID]bool)
	}
	if a.followers[msg.AuthorID] == nil {
		a.followers[msg.AuthorID] = make(map[uuid.UUID]bool)
	}
	a.following[msg.UserID][msg.AuthorID] = true
	a.followers[msg.AuthorID][msg.UserID] = true
	context.Respond(true)
}

func (a *UserActor) handleUnfollow(context actor.Context, msg *UnfollowMsg) {
	if !a.following[msg.UserID][msg.AuthorID] {
		context.Respond(false)
		return
	}
	delete(a.following[msg.UserID], msg.AuthorID)
	delete(a.followers[msg.AuthorID], msg.UserID)
	context.Respond(true)
}

func typeName(msg interface{}) string {
	return fmt.Sprintf("%T", msg)
}
