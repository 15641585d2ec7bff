package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a single entry in the feed. AuthorUsername, GroupSlug, GroupTitle
// and CommentCount are hydrated by the store on read.
type Post struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Text           string     `json:"text" db:"text"`
	Image          string     `json:"image,omitempty" db:"image"`
	AuthorID       uuid.UUID  `json:"authorId" db:"author_id"`
	AuthorUsername string     `json:"authorUsername" db:"author_username"`
	GroupID        *uuid.UUID `json:"groupId,omitempty" db:"group_id"`
	GroupSlug      string     `json:"groupSlug,omitempty" db:"group_slug"`
	GroupTitle     string     `json:"groupTitle,omitempty" db:"group_title"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	CommentCount   int        `json:"commentCount" db:"comment_count"`
}

const postPreviewLength = 15

// String returns the first 15 characters of the text.
func (p *Post) String() string {
	runes := []rune(p.Text)
	if len(runes) > postPreviewLength {
		return string(runes[:postPreviewLength])
	}
	return p.Text
}

func (p *Post) HasGroup() bool {
	return p.GroupID != nil
}

// PostFilter narrows a post listing. Zero value means every post.
type PostFilter struct {
	GroupID    *uuid.UUID
	AuthorID   *uuid.UUID
	FollowerID *uuid.UUID // posts by authors this user follows
}
