package service

import (
	"context"

	"yatube/internal/forms"
	"yatube/internal/models"

	"github.com/google/uuid"
)

// AddComment attaches a comment to /<username>/<post_id>/. A nil comment
// with a nil error means the form carries errors.
func (s *Service) AddComment(ctx context.Context, viewerID uuid.UUID, username string, postID uuid.UUID, form *forms.CommentForm) (*models.Comment, error) {
	_, post, err := s.lookupPost(ctx, username, postID)
	if err != nil {
		return nil, err
	}
	if !form.Valid() {
		return nil, nil
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: viewerID,
		Text:     form.Text,
	}
	if err := s.store.SaveComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment lets the comment's author or the post's author remove it.
// The post is returned so callers can link back to it.
func (s *Service) DeleteComment(ctx context.Context, viewerID, commentID uuid.UUID) (*models.Post, Outcome, error) {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, Unchanged, err
	}
	post, err := s.store.GetPost(ctx, comment.PostID)
	if err != nil {
		return nil, Unchanged, err
	}

	if anonymous(viewerID) || (viewerID != comment.AuthorID && viewerID != post.AuthorID) {
		return post, Denied, nil
	}
	if err := s.store.DeleteComment(ctx, commentID); err != nil {
		return nil, Unchanged, err
	}
	return post, Done, nil
}
