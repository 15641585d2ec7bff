// internal/database/database.go
package database

import (
	"context"

	"yatube/internal/models"

	"github.com/google/uuid"
)

// Store defines the repository surface used by the service layer.
// PostgreSQL, MongoDB and the in-memory actor engine all implement it.
//
// Lookups of missing rows return a utils.AppError with code ErrNotFound;
// unique constraint violations return ErrDuplicate.
type Store interface {
	// Connection
	Close(ctx context.Context) error

	// User methods
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)

	// Group methods
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error)
	GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error)
	ListGroups(ctx context.Context) ([]*models.Group, error)
	// DeleteGroup removes the group and leaves its posts ungrouped.
	DeleteGroup(ctx context.Context, id uuid.UUID) error

	// Post methods
	// SavePost inserts the post, or updates text, image and group of an
	// existing one.
	SavePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error)
	// DeletePost removes the post together with its comments.
	DeletePost(ctx context.Context, id uuid.UUID) error
	CountPosts(ctx context.Context, filter models.PostFilter) (int, error)
	// ListPosts returns posts newest first.
	ListPosts(ctx context.Context, filter models.PostFilter, limit, offset int) ([]*models.Post, error)

	// Comment methods
	SaveComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) error
	// ListPostComments returns comments oldest first.
	ListPostComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error)

	// Follow methods
	// CreateFollow is idempotent; created is false when the edge existed.
	CreateFollow(ctx context.Context, userID, authorID uuid.UUID) (created bool, err error)
	// DeleteFollow is a no-op when the edge is absent.
	DeleteFollow(ctx context.Context, userID, authorID uuid.UUID) (deleted bool, err error)
	IsFollowing(ctx context.Context, userID, authorID uuid.UUID) (bool, error)
	CountFollowers(ctx context.Context, authorID uuid.UUID) (int, error)
	CountFollowing(ctx context.Context, userID uuid.UUID) (int, error)
}
