package service

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"yatube/internal/forms"
	"yatube/internal/models"
	"yatube/internal/utils"
)

const maxGroupTitleLength = 200

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// CreateGroup adds a community. Used by the admin CLI.
func (s *Service) CreateGroup(ctx context.Context, title, slug, description string) (*models.Group, error) {
	title = strings.TrimSpace(title)
	slug = strings.TrimSpace(slug)

	switch {
	case title == "":
		return nil, utils.NewAppError(utils.ErrInvalidInput, "group title is required", nil)
	case utf8.RuneCountInString(title) > maxGroupTitleLength:
		return nil, utils.NewAppError(utils.ErrInvalidInput, "group title must be at most 200 characters", nil)
	case !slugPattern.MatchString(slug):
		return nil, utils.NewAppError(utils.ErrInvalidInput, "group slug may contain only letters, numbers, underscores and hyphens", nil)
	}

	group := &models.Group{Title: title, Slug: slug, Description: description}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}
	s.logger.Info("group created", "group_id", group.ID, "slug", slug)
	return group, nil
}

func (s *Service) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return s.store.ListGroups(ctx)
}

// DeleteGroup removes the group by slug. Its posts stay, ungrouped.
func (s *Service) DeleteGroup(ctx context.Context, slug string) error {
	group, err := s.store.GetGroupBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		return err
	}
	s.logger.Info("group deleted", "group_id", group.ID, "slug", slug)
	return nil
}

// CreateUser registers an account without a signup form.
func (s *Service) CreateUser(ctx context.Context, username, password, firstName, lastName string) (*models.User, error) {
	if msg := forms.ValidateUsername(username); msg != "" {
		return nil, utils.NewAppError(utils.ErrInvalidInput, msg, nil)
	}
	if msg := forms.ValidatePassword(password, username); msg != "" {
		return nil, utils.NewAppError(utils.ErrInvalidInput, msg, nil)
	}
	return s.createUser(ctx, username, password, firstName, lastName)
}

func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.store.ListUsers(ctx)
}
