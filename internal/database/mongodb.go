// internal/database/mongodb.go
package database

import (
	"context"
	"log/slog"
	"time"

	"yatube/internal/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ Store = (*MongoDB)(nil)

const defaultMongoDatabase = "yatube"

type MongoDB struct {
	Client   *mongo.Client
	Users    *mongo.Collection
	Groups   *mongo.Collection
	Posts    *mongo.Collection
	Comments *mongo.Collection
	Follows  *mongo.Collection
}

func NewMongoDB(uri, dbName string) (*MongoDB, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to MongoDB")
	}

	// Ping the database to verify connection
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to ping MongoDB")
	}

	slog.Info("connected to MongoDB")

	if dbName == "" {
		dbName = defaultMongoDatabase
	}
	db := client.Database(dbName)
	m := &MongoDB{
		Client:   client,
		Users:    db.Collection("users"),
		Groups:   db.Collection("groups"),
		Posts:    db.Collection("posts"),
		Comments: db.Collection("comments"),
		Follows:  db.Collection("follows"),
	}

	if err := m.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// EnsureIndexes creates the unique and ordering indexes every collection needs.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		m.Users: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		},
		m.Groups: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		},
		m.Posts: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "seq", Value: -1}}},
			{Keys: bson.D{{Key: "authorId", Value: 1}}},
			{Keys: bson.D{{Key: "groupId", Value: 1}}},
		},
		m.Comments: {
			{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		m.Follows: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "authorId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "authorId", Value: 1}}},
		},
	}

	for collection, idx := range indexes {
		if _, err := collection.Indexes().CreateMany(ctx, idx); err != nil {
			return errors.Wrapf(err, "failed to create indexes on %s", collection.Name())
		}
	}
	return nil
}

// mongoError maps driver errors to AppErrors.
func mongoError(err error, what, action string) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return utils.NewNotFoundError(what)
	case mongo.IsDuplicateKeyError(err):
		return utils.NewAppError(utils.ErrDuplicate, what+" already exists", err)
	}
	return utils.NewAppError(utils.ErrDatabase, action, err)
}

func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, utils.NewAppError(utils.ErrDatabase, "invalid "+what+" ID in database", err)
	}
	return id, nil
}
