package database

import (
	"context"
	"log/slog"
	"time"

	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentDocument represents comment data in MongoDB
type CommentDocument struct {
	ID             string    `bson:"_id"`
	PostID         string    `bson:"postId"`
	AuthorID       string    `bson:"authorId"`
	AuthorUsername string    `bson:"authorUsername"`
	Text           string    `bson:"text"`
	CreatedAt      time.Time `bson:"createdAt"`
	Seq            int64     `bson:"seq"`
}

// SaveComment creates a comment or updates the text of an existing one
func (m *MongoDB) SaveComment(ctx context.Context, comment *models.Comment) error {
	if _, err := m.GetPost(ctx, comment.PostID); err != nil {
		return err
	}
	author, err := m.GetUser(ctx, comment.AuthorID)
	if err != nil {
		return err
	}

	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	comment.AuthorUsername = author.Username

	update := bson.M{
		"$set": bson.M{"text": comment.Text},
		"$setOnInsert": bson.M{
			"postId":         comment.PostID.String(),
			"authorId":       comment.AuthorID.String(),
			"authorUsername": author.Username,
			"createdAt":      comment.CreatedAt,
			"seq":            time.Now().UnixNano(),
		},
	}
	opts := options.Update().SetUpsert(true)
	result, err := m.Comments.UpdateOne(ctx, bson.M{"_id": comment.ID.String()}, update, opts)
	if err != nil {
		slog.Error("error saving comment", "comment_id", comment.ID, "error", err)
		return utils.NewAppError(utils.ErrDatabase, "failed to save comment", err)
	}

	slog.Debug("saved comment",
		"comment_id", comment.ID,
		"matched", result.MatchedCount,
		"upserted", result.UpsertedCount,
	)
	return nil
}

// GetComment retrieves a comment by ID
func (m *MongoDB) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var doc CommentDocument
	if err := m.Comments.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, mongoError(err, "comment", "failed to get comment")
	}
	return convertCommentDocumentToModel(&doc)
}

func (m *MongoDB) DeleteComment(ctx context.Context, id uuid.UUID) error {
	result, err := m.Comments.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to delete comment", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFoundError("comment")
	}
	return nil
}

// ListPostComments retrieves all comments for a post, oldest first
func (m *MongoDB) ListPostComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: 1},
		{Key: "seq", Value: 1},
	})
	cursor, err := m.Comments.Find(ctx, bson.M{"postId": postID.String()}, opts)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to get post comments", err)
	}
	defer cursor.Close(ctx)

	comments := []*models.Comment{}
	for cursor.Next(ctx) {
		var doc CommentDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, utils.NewAppError(utils.ErrDatabase, "failed to decode comment", err)
		}

		comment, err := convertCommentDocumentToModel(&doc)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, cursor.Err()
}

func convertCommentDocumentToModel(doc *CommentDocument) (*models.Comment, error) {
	id, err := parseID(doc.ID, "comment")
	if err != nil {
		return nil, err
	}
	postID, err := parseID(doc.PostID, "post")
	if err != nil {
		return nil, err
	}
	authorID, err := parseID(doc.AuthorID, "author")
	if err != nil {
		return nil, err
	}

	return &models.Comment{
		ID:             id,
		PostID:         postID,
		AuthorID:       authorID,
		AuthorUsername: doc.AuthorUsername,
		Text:           doc.Text,
		CreatedAt:      doc.CreatedAt,
	}, nil
}
