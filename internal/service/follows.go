package service

import (
	"context"

	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/google/uuid"
)

// Follow subscribes the viewer to username's posts. Following yourself or
// someone already followed is Unchanged.
func (s *Service) Follow(ctx context.Context, viewerID uuid.UUID, username string) (*models.User, Outcome, error) {
	author, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, Unchanged, err
	}
	if author.ID == viewerID {
		return author, Unchanged, nil
	}

	created, err := s.store.CreateFollow(ctx, viewerID, author.ID)
	if err != nil {
		return nil, Unchanged, err
	}
	if !created {
		return author, Unchanged, nil
	}
	return author, Done, nil
}

// Unfollow is Unchanged when there was nothing to remove. An unknown
// username is also Unchanged, with a nil author.
func (s *Service) Unfollow(ctx context.Context, viewerID uuid.UUID, username string) (*models.User, Outcome, error) {
	author, err := s.store.GetUserByUsername(ctx, username)
	if utils.IsNotFound(err) {
		return nil, Unchanged, nil
	}
	if err != nil {
		return nil, Unchanged, err
	}

	deleted, err := s.store.DeleteFollow(ctx, viewerID, author.ID)
	if err != nil {
		return nil, Unchanged, err
	}
	if !deleted {
		return author, Unchanged, nil
	}
	return author, Done, nil
}
