// internal/database/group_repository.go
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

// GroupDocument represents how a group is stored in MongoDB
type GroupDocument struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Slug        string    `bson:"slug"`
	Description string    `bson:"description"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func (doc *GroupDocument) toModel() (*models.Group, error) {
	id, err := parseID(doc.ID, "group")
	if err != nil {
		return nil, err
	}
	return &models.Group{
		ID:          id,
		Title:       doc.Title,
		Slug:        doc.Slug,
		Description: doc.Description,
		CreatedAt:   doc.CreatedAt,
	}, nil
}

// CreateGroup creates a new group in MongoDB
func (m *MongoDB) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now()
	}

	doc := GroupDocument{
		ID:          group.ID.String(),
		Title:       group.Title,
		Slug:        group.Slug,
		Description: group.Description,
		CreatedAt:   group.CreatedAt,
	}
	if _, err := m.Groups.InsertOne(ctx, doc); err != nil {
		return mongoError(err, "group", "failed to create group")
	}
	return nil
}

func (m *MongoDB) GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	return m.findGroup(ctx, bson.M{"_id": id.String()})
}

func (m *MongoDB) GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	return m.findGroup(ctx, bson.M{"slug": slug})
}

func (m *MongoDB) findGroup(ctx context.Context, filter bson.M) (*models.Group, error) {
	var doc GroupDocument
	if err := m.Groups.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mongoError(err, "group", "failed to query group")
	}
	return doc.toModel()
}

// ListGroups retrieves all groups ordered by title
func (m *MongoDB) ListGroups(ctx context.Context) ([]*models.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "title", Value: 1}})
	cursor, err := m.Groups.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to list groups", err)
	}
	defer cursor.Close(ctx)

	var docs []GroupDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to decode groups", err)
	}

	groups := make([]*models.Group, 0, len(docs))
	for i := range docs {
		group, err := docs[i].toModel()
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// DeleteGroup ungroups the group's posts before removing it.
func (m *MongoDB) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	if _, err := m.GetGroup(ctx, id); err != nil {
		return err
	}

	_, err := m.Posts.UpdateMany(ctx,
		bson.M{"groupId": id.String()},
		bson.M{"$set": bson.M{"groupId": nil}},
	)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to ungroup posts", err)
	}

	if _, err := m.Groups.DeleteOne(ctx, bson.M{"_id": id.String()}); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to delete group", err)
	}
	return nil
}

// groupsByID loads the groups referenced by a page of posts.
func (m *MongoDB) groupsByID(ctx context.Context, ids []string) (map[string]*GroupDocument, error) {
	groups := make(map[string]*GroupDocument, len(ids))
	if len(ids) == 0 {
		return groups, nil
	}

	cursor, err := m.Groups.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query groups", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc GroupDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, utils.NewAppError(utils.ErrDatabase, "failed to decode group", err)
		}
		groups[doc.ID] = &doc
	}
	return groups, cursor.Err()
}
