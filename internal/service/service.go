// Package service implements the blog's domain operations on top of a
// database.Store. Handlers and the CLI call it; it never writes HTTP.
package service

import (
	"context"
	"log/slog"

	"yatube/internal/database"
	"yatube/internal/media"
	"yatube/internal/models"
	"yatube/internal/pagination"
	"yatube/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Outcome tags the result of a mutation that may be refused.
type Outcome int

const (
	Done Outcome = iota
	Unchanged
	Denied
)

func (o Outcome) String() string {
	switch o {
	case Done:
		return "done"
	case Unchanged:
		return "unchanged"
	case Denied:
		return "denied"
	}
	return "unknown"
}

// FeedPage is one page of posts, newest first.
type FeedPage = pagination.Page[*models.Post]

type Service struct {
	store      database.Store
	media      media.Storage
	logger     *slog.Logger
	bcryptCost int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithBcryptCost lowers the hashing cost, for tests and seeding.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func New(store database.Store, storage media.Storage, opts ...Option) *Service {
	s := &Service{
		store:      store,
		media:      storage,
		logger:     slog.Default(),
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MediaURL resolves a stored image key.
func (s *Service) MediaURL(key string) string {
	if key == "" || s.media == nil {
		return ""
	}
	return s.media.URL(key)
}

func (s *Service) feed(ctx context.Context, filter models.PostFilter, page string) (*FeedPage, error) {
	count, err := s.store.CountPosts(ctx, filter)
	if err != nil {
		return nil, err
	}
	paginator := pagination.New(count, pagination.PerPage)
	return pagination.GetPage(paginator, page, func(limit, offset int) ([]*models.Post, error) {
		return s.store.ListPosts(ctx, filter, limit, offset)
	})
}

// lookupPost resolves /<username>/<post_id>/: the post must exist and
// belong to that user.
func (s *Service) lookupPost(ctx context.Context, username string, postID uuid.UUID) (*models.User, *models.Post, error) {
	author, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	if post.AuthorID != author.ID {
		return nil, nil, utils.NewNotFoundError("post")
	}
	return author, post, nil
}

func anonymous(viewerID uuid.UUID) bool {
	return viewerID == uuid.Nil
}
