// internal/database/post_repository.go
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

// PostDocument represents the MongoDB schema for a post.
type PostDocument struct {
	ID             string    `bson:"_id"`
	Text           string    `bson:"text"`
	Image          string    `bson:"image"`
	AuthorID       string    `bson:"authorId"`
	AuthorUsername string    `bson:"authorUsername"`
	GroupID        *string   `bson:"groupId"`
	CreatedAt      time.Time `bson:"createdAt"`
	Seq            int64     `bson:"seq"` // insertion order tie-break
}

// DocumentToModel converts a MongoDB document to a Post model.
func (m *MongoDB) DocumentToModel(doc *PostDocument) (*models.Post, error) {
	id, err := parseID(doc.ID, "post")
	if err != nil {
		return nil, err
	}
	authorID, err := parseID(doc.AuthorID, "author")
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:             id,
		Text:           doc.Text,
		Image:          doc.Image,
		AuthorID:       authorID,
		AuthorUsername: doc.AuthorUsername,
		CreatedAt:      doc.CreatedAt,
	}
	if doc.GroupID != nil {
		groupID, err := parseID(*doc.GroupID, "group")
		if err != nil {
			return nil, err
		}
		post.GroupID = &groupID
	}
	return post, nil
}

// SavePost creates a post or updates text, image and group of an existing one.
func (m *MongoDB) SavePost(ctx context.Context, post *models.Post) error {
	author, err := m.GetUser(ctx, post.AuthorID)
	if err != nil {
		return err
	}
	var groupID *string
	if post.GroupID != nil {
		if _, err := m.GetGroup(ctx, *post.GroupID); err != nil {
			return err
		}
		id := post.GroupID.String()
		groupID = &id
	}

	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	post.AuthorUsername = author.Username

	update := bson.M{
		"$set": bson.M{
			"text":    post.Text,
			"image":   post.Image,
			"groupId": groupID,
		},
		"$setOnInsert": bson.M{
			"authorId":       post.AuthorID.String(),
			"authorUsername": author.Username,
			"createdAt":      post.CreatedAt,
			"seq":            time.Now().UnixNano(),
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := m.Posts.UpdateOne(ctx, bson.M{"_id": post.ID.String()}, update, opts); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to save post", err)
	}
	return nil
}

// GetPost retrieves a post by its ID.
func (m *MongoDB) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var doc PostDocument
	if err := m.Posts.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, mongoError(err, "post", "failed to query post")
	}
	// hydratePosts skips documents it cannot convert; a single lookup
	// reports the conversion error instead.
	if _, err := m.DocumentToModel(&doc); err != nil {
		return nil, err
	}

	posts, err := m.hydratePosts(ctx, []PostDocument{doc})
	if err != nil {
		return nil, err
	}
	return onlyPost(posts, doc.ID)
}

func onlyPost(posts []*models.Post, id string) (*models.Post, error) {
	if len(posts) != 1 {
		return nil, utils.NewAppError(utils.ErrDatabase, "post "+id+" could not be loaded", nil)
	}
	return posts[0], nil
}

// DeletePost removes the post and then its comments.
func (m *MongoDB) DeletePost(ctx context.Context, id uuid.UUID) error {
	result, err := m.Posts.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to delete post", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFoundError("post")
	}

	if _, err := m.Comments.DeleteMany(ctx, bson.M{"postId": id.String()}); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to delete post comments", err)
	}
	return nil
}

func (m *MongoDB) postFilter(ctx context.Context, filter models.PostFilter) (bson.M, error) {
	var conds []bson.M
	if filter.GroupID != nil {
		conds = append(conds, bson.M{"groupId": filter.GroupID.String()})
	}
	if filter.AuthorID != nil {
		conds = append(conds, bson.M{"authorId": filter.AuthorID.String()})
	}
	if filter.FollowerID != nil {
		authorIDs, err := m.followedAuthorIDs(ctx, *filter.FollowerID)
		if err != nil {
			return nil, err
		}
		conds = append(conds, bson.M{"authorId": bson.M{"$in": authorIDs}})
	}

	switch len(conds) {
	case 0:
		return bson.M{}, nil
	case 1:
		return conds[0], nil
	}
	return bson.M{"$and": conds}, nil
}

func (m *MongoDB) CountPosts(ctx context.Context, filter models.PostFilter) (int, error) {
	query, err := m.postFilter(ctx, filter)
	if err != nil {
		return 0, err
	}
	count, err := m.Posts.CountDocuments(ctx, query)
	if err != nil {
		return 0, utils.NewAppError(utils.ErrDatabase, "failed to count posts", err)
	}
	return int(count), nil
}

// ListPosts returns a page of posts, newest first.
func (m *MongoDB) ListPosts(ctx context.Context, filter models.PostFilter, limit, offset int) ([]*models.Post, error) {
	query, err := m.postFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "seq", Value: -1},
	})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}

	cursor, err := m.Posts.Find(ctx, query, opts)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query posts", err)
	}
	defer cursor.Close(ctx)

	var docs []PostDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to decode posts", err)
	}
	return m.hydratePosts(ctx, docs)
}

// hydratePosts converts documents and fills group and comment-count fields.
func (m *MongoDB) hydratePosts(ctx context.Context, docs []PostDocument) ([]*models.Post, error) {
	var groupIDs []string
	for _, doc := range docs {
		if doc.GroupID != nil {
			groupIDs = append(groupIDs, *doc.GroupID)
		}
	}
	groups, err := m.groupsByID(ctx, groupIDs)
	if err != nil {
		return nil, err
	}

	posts := make([]*models.Post, 0, len(docs))
	for i := range docs {
		post, err := m.DocumentToModel(&docs[i])
		if err != nil {
			slog.Error("error converting post document", "post_id", docs[i].ID, "error", err)
			continue
		}
		if docs[i].GroupID != nil {
			if group, ok := groups[*docs[i].GroupID]; ok {
				post.GroupSlug = group.Slug
				post.GroupTitle = group.Title
			}
		}

		count, err := m.Comments.CountDocuments(ctx, bson.M{"postId": docs[i].ID})
		if err != nil {
			return nil, utils.NewAppError(utils.ErrDatabase, "failed to count comments", err)
		}
		post.CommentCount = int(count)
		posts = append(posts, post)
	}
	return posts, nil
}
