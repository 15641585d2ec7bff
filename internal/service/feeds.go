package service

import (
	"context"

	"yatube/internal/models"
	"yatube/internal/pagination"

	"github.com/google/uuid"
)

// Index pages through every post.
func (s *Service) Index(ctx context.Context, page string) (*FeedPage, error) {
	return s.feed(ctx, models.PostFilter{}, page)
}

// IndexPageNumber resolves a raw ?page= value to the page Index would
// serve for it. Out-of-range and malformed values collapse onto real pages.
func (s *Service) IndexPageNumber(ctx context.Context, raw string) (int, error) {
	count, err := s.store.CountPosts(ctx, models.PostFilter{})
	if err != nil {
		return 0, err
	}
	return pagination.New(count, pagination.PerPage).Number(raw), nil
}

func (s *Service) GroupFeed(ctx context.Context, slug, page string) (*models.Group, *FeedPage, error) {
	group, err := s.store.GetGroupBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	feed, err := s.feed(ctx, models.PostFilter{GroupID: &group.ID}, page)
	if err != nil {
		return nil, nil, err
	}
	return group, feed, nil
}

// FollowFeed pages through posts by authors the viewer follows.
func (s *Service) FollowFeed(ctx context.Context, viewerID uuid.UUID, page string) (*FeedPage, error) {
	return s.feed(ctx, models.PostFilter{FollowerID: &viewerID}, page)
}

// AuthorStats are shown next to a user's posts.
type AuthorStats struct {
	Author    *models.User
	PostCount int
	Followers int
	Following int
	// IsFollowing is whether the viewer follows Author.
	IsFollowing bool
	IsSelf      bool
}

func (s *Service) authorStats(ctx context.Context, author *models.User, viewerID uuid.UUID) (*AuthorStats, error) {
	stats := &AuthorStats{Author: author, IsSelf: viewerID == author.ID}

	var err error
	if stats.PostCount, err = s.store.CountPosts(ctx, models.PostFilter{AuthorID: &author.ID}); err != nil {
		return nil, err
	}
	if stats.Followers, err = s.store.CountFollowers(ctx, author.ID); err != nil {
		return nil, err
	}
	if stats.Following, err = s.store.CountFollowing(ctx, author.ID); err != nil {
		return nil, err
	}
	if !anonymous(viewerID) && !stats.IsSelf {
		if stats.IsFollowing, err = s.store.IsFollowing(ctx, viewerID, author.ID); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

type ProfileView struct {
	*AuthorStats
	Page *FeedPage
}

// Profile pages through one author's posts. viewerID is uuid.Nil for
// anonymous viewers.
func (s *Service) Profile(ctx context.Context, username string, viewerID uuid.UUID, page string) (*ProfileView, error) {
	author, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	stats, err := s.authorStats(ctx, author, viewerID)
	if err != nil {
		return nil, err
	}
	feed, err := s.feed(ctx, models.PostFilter{AuthorID: &author.ID}, page)
	if err != nil {
		return nil, err
	}
	return &ProfileView{AuthorStats: stats, Page: feed}, nil
}

type PostView struct {
	*AuthorStats
	Post     *models.Post
	Comments []*models.Comment
}

func (s *Service) PostDetail(ctx context.Context, username string, postID, viewerID uuid.UUID) (*PostView, error) {
	author, post, err := s.lookupPost(ctx, username, postID)
	if err != nil {
		return nil, err
	}
	stats, err := s.authorStats(ctx, author, viewerID)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.ListPostComments(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return &PostView{AuthorStats: stats, Post: post, Comments: comments}, nil
}
