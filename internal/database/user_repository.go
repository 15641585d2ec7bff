// internal/database/user_repository.go
package database

import (
	"context"
	"time"

	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserDocument represents the MongoDB schema for a user
type UserDocument struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	FirstName    string    `bson:"firstName"`
	LastName     string    `bson:"lastName"`
	PasswordHash string    `bson:"passwordHash"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func userToDocument(user *models.User) *UserDocument {
	return &UserDocument{
		ID:           user.ID.String(),
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
}

func (doc *UserDocument) toModel() (*models.User, error) {
	id, err := parseID(doc.ID, "user")
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:           id,
		Username:     doc.Username,
		FirstName:    doc.FirstName,
		LastName:     doc.LastName,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
	}, nil
}

// CreateUser inserts a user; the unique username index reports duplicates.
func (m *MongoDB) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if _, err := m.Users.InsertOne(ctx, userToDocument(user)); err != nil {
		return mongoError(err, "user", "failed to save user")
	}
	return nil
}

// GetUser retrieves a user from MongoDB by their ID
func (m *MongoDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.findUser(ctx, bson.M{"_id": id.String()})
}

func (m *MongoDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.findUser(ctx, bson.M{"username": username})
}

func (m *MongoDB) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc UserDocument
	if err := m.Users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mongoError(err, "user", "failed to query user")
	}
	return doc.toModel()
}

func (m *MongoDB) ListUsers(ctx context.Context) ([]*models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})
	cursor, err := m.Users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query all users", err)
	}
	defer cursor.Close(ctx)

	var docs []UserDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to decode users", err)
	}

	users := make([]*models.User, 0, len(docs))
	for i := range docs {
		user, err := docs[i].toModel()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}
