package actors

import (
	"log/slog"
	"sort"

	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for Comment operations
type (
	SaveCommentMsg struct {
		Comment *models.Comment
	}

	GetCommentMsg struct {
		CommentID uuid.UUID
	}

	DeleteCommentMsg struct {
		CommentID uuid.UUID
	}

	GetCommentsForPostMsg struct {
		PostID uuid.UUID
	}

	DeleteCommentsForPostMsg struct {
		PostID uuid.UUID
	}

	// CountCommentsMsg answers with map[uuid.UUID]int keyed by post ID.
	CountCommentsMsg struct {
		PostIDs []uuid.UUID
	}
)

type storedComment struct {
	comment *models.Comment
	seq     uint64
}

// CommentActor owns comments, indexed by post.
type CommentActor struct {
	comments     map[uuid.UUID]*storedComment
	postComments map[uuid.UUID]map[uuid.UUID]bool
	nextSeq      uint64
	metrics      *utils.MetricsCollector
}

// NewCommentActor creates a new CommentActor instance
func NewCommentActor(metrics *utils.MetricsCollector) actor.Actor {
	return &CommentActor{
		comments:     make(map[uuid.UUID]*storedComment),
		postComments: make(map[uuid.UUID]map[uuid.UUID]bool),
		metrics:      metrics,
	}
}

// Receive handles incoming messages
func (a *CommentActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		slog.Debug("CommentActor started")
	case *actor.Stopped:
		slog.Debug("CommentActor stopped")
	case *SaveCommentMsg:
		a.handleSaveComment(context, msg)
	case *GetCommentMsg:
		a.handleGetComment(context, msg)
	case *DeleteCommentMsg:
		a.handleDeleteComment(context, msg)
	case *GetCommentsForPostMsg:
		a.handleGetPostComments(context, msg)
	case *DeleteCommentsForPostMsg:
		for commentID := range a.postComments[msg.PostID] {
			delete(a.comments, commentID)
		}
		delete(a.postComments, msg.PostID)
		context.Respond(true)
	case *CountCommentsMsg:
		counts := make(map[uuid.UUID]int, len(msg.PostIDs))
		for _, postID := range msg.PostIDs {
			counts[postID] = len(a.postComments[postID])
		}
		context.Respond(counts)
	default:
		slog.Warn("CommentActor: unknown message type", "type", typeName(msg))
	}
}

func (a *CommentActor) handleSaveComment(context actor.Context, msg *SaveCommentMsg) {
	if stored, exists := a.comments[msg.Comment.ID]; exists {
		stored.comment.Text = msg.Comment.Text
		context.Respond(true)
		return
	}
	comment := *msg.Comment
	a.nextSeq++
	a.comments[comment.ID] = &storedComment{comment: &comment, seq: a.nextSeq}
	if a.postComments[comment.PostID] == nil {
		a.postComments[comment.PostID] = make(map[uuid.UUID]bool)
	}
	a.postComments[comment.PostID][comment.ID] = true
	context.Respond(true)
}

func (a *CommentActor) handleGetComment(context actor.Context, msg *GetCommentMsg) {
	stored, exists := a.comments[msg.CommentID]
	if !exists {
		context.Respond(utils.NewNotFoundError("comment"))
		return
	}
	copied := *stored.comment
	context.Respond(&copied)
}

func (a *CommentActor) handleDeleteComment(context actor.Context, msg *DeleteCommentMsg) {
	stored, exists := a.comments[msg.CommentID]
	if !exists {
		context.Respond(utils.NewNotFoundError("comment"))
		return
	}
	delete(a.postComments[stored.comment.PostID], msg.CommentID)
	delete(a.comments, msg.CommentID)
	context.Respond(true)
}

func (a *CommentActor) handleGetPostComments(context actor.Context, msg *GetCommentsForPostMsg) {
	stored := make([]*storedComment, 0, len(a.postComments[msg.PostID]))
	for commentID := range a.postComments[msg.PostID] {
		stored = append(stored, a.comments[commentID])
	}
	sort.Slice(stored, func(i, j int) bool {
		ti, tj := stored[i].comment.CreatedAt, stored[j].comment.CreatedAt
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return stored[i].seq < stored[j].seq
	})

	comments := make([]*models.Comment, len(stored))
	for i, s := range stored {
		copied := *s.comment
		comments[i] = &copied
	}
	context.Respond(comments)
}
