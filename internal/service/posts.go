package service

import (
	"context"

	"yatube/internal/forms"
	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/google/uuid"
)

const msgInvalidGroup = "Select a valid choice. That choice is not one of the available choices."

// resolveGroup maps the form's group choice, an ID or a slug, to a group ID.
func (s *Service) resolveGroup(ctx context.Context, form *forms.PostForm) (*uuid.UUID, error) {
	if form.Group == "" {
		return nil, nil
	}

	var group *models.Group
	var err error
	if id, parseErr := uuid.Parse(form.Group); parseErr == nil {
		group, err = s.store.GetGroup(ctx, id)
	} else {
		group, err = s.store.GetGroupBySlug(ctx, form.Group)
	}
	if utils.IsNotFound(err) {
		form.Errors.Add("group", msgInvalidGroup)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group.ID, nil
}

// bindPost validates form and copies it onto post. It reports false when
// the form has errors to show.
func (s *Service) bindPost(ctx context.Context, post *models.Post, form *forms.PostForm) (bool, error) {
	form.Valid()
	groupID, err := s.resolveGroup(ctx, form)
	if err != nil {
		return false, err
	}
	if form.Errors.Any() {
		return false, nil
	}

	if form.Image != nil {
		key, err := s.media.Save(ctx, form.Image.Filename, form.Image.ContentType, form.Image.Data)
		if err != nil {
			return false, utils.NewAppError(utils.ErrDatabase, "failed to store image", err)
		}
		post.Image = key
	}
	post.Text = form.Text
	post.GroupID = groupID
	return true, nil
}

// CreatePost publishes a post by authorID. A nil post with a nil error
// means the form carries errors.
func (s *Service) CreatePost(ctx context.Context, authorID uuid.UUID, form *forms.PostForm) (*models.Post, error) {
	post := &models.Post{AuthorID: authorID}
	ok, err := s.bindPost(ctx, post, form)
	if err != nil || !ok {
		return nil, err
	}
	if err := s.store.SavePost(ctx, post); err != nil {
		return nil, err
	}
	s.logger.Info("post created", "post_id", post.ID, "author_id", authorID)
	return post, nil
}

// EditablePost loads a post for its edit form. Non-owners get Denied.
func (s *Service) EditablePost(ctx context.Context, viewerID uuid.UUID, username string, postID uuid.UUID) (*models.Post, Outcome, error) {
	_, post, err := s.lookupPost(ctx, username, postID)
	if err != nil {
		return nil, Unchanged, err
	}
	if post.AuthorID != viewerID {
		return post, Denied, nil
	}
	return post, Unchanged, nil
}

// EditPost saves form over the post. Outcome is Unchanged when the form
// has errors and Denied for anyone but the author.
func (s *Service) EditPost(ctx context.Context, viewerID uuid.UUID, username string, postID uuid.UUID, form *forms.PostForm) (*models.Post, Outcome, error) {
	post, outcome, err := s.EditablePost(ctx, viewerID, username, postID)
	if err != nil || outcome == Denied {
		return post, outcome, err
	}

	ok, err := s.bindPost(ctx, post, form)
	if err != nil {
		return nil, Unchanged, err
	}
	if !ok {
		return post, Unchanged, nil
	}
	if err := s.store.SavePost(ctx, post); err != nil {
		return nil, Unchanged, err
	}
	return post, Done, nil
}

// DeletePost removes a post and its comments. Only the author may.
func (s *Service) DeletePost(ctx context.Context, viewerID, postID uuid.UUID) (Outcome, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return Unchanged, err
	}
	if anonymous(viewerID) || post.AuthorID != viewerID {
		return Denied, nil
	}
	if err := s.store.DeletePost(ctx, postID); err != nil {
		return Unchanged, err
	}
	s.logger.Info("post deleted", "post_id", postID, "author_id", viewerID)
	return Done, nil
}
