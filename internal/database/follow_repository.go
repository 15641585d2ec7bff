// internal/database/follow_repository.go
package database

import (
	"context"

	"yatube/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// FollowDocument is one edge of the follow graph.
type FollowDocument struct {
	UserID   string `bson:"userId"`
	AuthorID string `bson:"authorId"`
}

// CreateFollow upserts the edge so repeated follows are no-ops.
func (m *MongoDB) CreateFollow(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	for _, id := range []uuid.UUID{userID, authorID} {
		if _, err := m.GetUser(ctx, id); err != nil {
			return false, err
		}
	}

	doc := FollowDocument{UserID: userID.String(), AuthorID: authorID.String()}
	_, err := m.Follows.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, utils.NewAppError(utils.ErrDatabase, "failed to save follow", err)
	}
	return true, nil
}

func (m *MongoDB) DeleteFollow(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	result, err := m.Follows.DeleteOne(ctx, bson.M{"userId": userID.String(), "authorId": authorID.String()})
	if err != nil {
		return false, utils.NewAppError(utils.ErrDatabase, "failed to delete follow", err)
	}
	return result.DeletedCount > 0, nil
}

func (m *MongoDB) IsFollowing(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	count, err := m.Follows.CountDocuments(ctx, bson.M{"userId": userID.String(), "authorId": authorID.String()})
	if err != nil {
		return false, utils.NewAppError(utils.ErrDatabase, "failed to query follow", err)
	}
	return count > 0, nil
}

func (m *MongoDB) CountFollowers(ctx context.Context, authorID uuid.UUID) (int, error) {
	count, err := m.Follows.CountDocuments(ctx, bson.M{"authorId": authorID.String()})
	if err != nil {
		return 0, utils.NewAppError(utils.ErrDatabase, "failed to count followers", err)
	}
	return int(count), nil
}

func (m *MongoDB) CountFollowing(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := m.Follows.CountDocuments(ctx, bson.M{"userId": userID.String()})
	if err != nil {
		return 0, utils.NewAppError(utils.ErrDatabase, "failed to count following", err)
	}
	return int(count), nil
}

// followedAuthorIDs returns the IDs userID follows, as stored strings.
func (m *MongoDB) followedAuthorIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	cursor, err := m.Follows.Find(ctx, bson.M{"userId": userID.String()})
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query follows", err)
	}
	defer cursor.Close(ctx)

	authorIDs := []string{}
	for cursor.Next(ctx) {
		var doc FollowDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, utils.NewAppError(utils.ErrDatabase, "failed to decode follow", err)
		}
		authorIDs = append(authorIDs, doc.AuthorID)
	}
	if err := cursor.Err(); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "cursor error", err)
	}
	return authorIDs, nil
}
