package models

import "github.com/google/uuid"

// Follow is a directed edge: UserID follows AuthorID.
type Follow struct {
	UserID   uuid.UUID `json:"userId" db:"user_id"`
	AuthorID uuid.UUID `json:"authorId" db:"author_id"`
}
