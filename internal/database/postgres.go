// internal/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

var _ Store = (*PostgresDB)(nil)

// PostgresDB represents a PostgreSQL database connection
type PostgresDB struct {
	DB *sqlx.DB
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sqlx.Connect("postgres", connectionString)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to PostgreSQL")
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping PostgreSQL")
	}

	slog.Info("connected to PostgreSQL")

	return &PostgresDB{
		DB: db,
	}, nil
}

// Close closes the database connection
func (p *PostgresDB) Close(ctx context.Context) error {
	slog.Info("closing PostgreSQL connection")
	return p.DB.Close()
}

// mapPQError turns constraint violations into AppErrors.
func mapPQError(err error, what string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return utils.NewAppError(utils.ErrDuplicate, fmt.Sprintf("%s already exists: %v", what, pqErr.Constraint), err)
		case "foreign_key_violation":
			return utils.NewAppError(utils.ErrNotFound, fmt.Sprintf("%s references a missing row: %v", what, pqErr.Constraint), err)
		}
	}
	return utils.NewAppError(utils.ErrDatabase, "failed to save "+what, err)
}

func notFoundOr(err error, what, action string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return utils.NewNotFoundError(what)
	}
	return utils.NewAppError(utils.ErrDatabase, action, err)
}

// --- User Methods ---

const userColumns = `id, username, first_name, last_name, password_hash, created_at`

func (p *PostgresDB) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO users (id, username, first_name, last_name, password_hash, created_at)
		VALUES (:id, :username, :first_name, :last_name, :password_hash, :created_at)
	`
	if _, err := p.DB.NamedExecContext(ctx, query, user); err != nil {
		return mapPQError(err, "user")
	}
	return nil
}

func (p *PostgresDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := p.DB.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, notFoundOr(err, "user", "failed to query user by id")
	}
	return &user, nil
}

func (p *PostgresDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := p.DB.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	if err != nil {
		return nil, notFoundOr(err, "user", "failed to query user by username")
	}
	return &user, nil
}

func (p *PostgresDB) ListUsers(ctx context.Context) ([]*models.User, error) {
	users := []*models.User{}
	err := p.DB.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query all users", err)
	}
	return users, nil
}

// --- Group Methods ---

const groupColumns = `id, title, slug, description, created_at`

func (p *PostgresDB) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO post_groups (id, title, slug, description, created_at)
		VALUES (:id, :title, :slug, :description, :created_at)
	`
	if _, err := p.DB.NamedExecContext(ctx, query, group); err != nil {
		return mapPQError(err, "group")
	}
	return nil
}

func (p *PostgresDB) GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var group models.Group
	err := p.DB.GetContext(ctx, &group, `SELECT `+groupColumns+` FROM post_groups WHERE id = $1`, id)
	if err != nil {
		return nil, notFoundOr(err, "group", "failed to query group by id")
	}
	return &group, nil
}

func (p *PostgresDB) GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	err := p.DB.GetContext(ctx, &group, `SELECT `+groupColumns+` FROM post_groups WHERE slug = $1`, slug)
	if err != nil {
		return nil, notFoundOr(err, "group", "failed to query group by slug")
	}
	return &group, nil
}

func (p *PostgresDB) ListGroups(ctx context.Context) ([]*models.Group, error) {
	groups := []*models.Group{}
	err := p.DB.SelectContext(ctx, &groups, `SELECT `+groupColumns+` FROM post_groups ORDER BY title`)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query all groups", err)
	}
	return groups, nil
}

// DeleteGroup relies on ON DELETE SET NULL to ungroup the posts.
func (p *PostgresDB) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `DELETE FROM post_groups WHERE id = $1`, id)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to delete group", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return utils.NewNotFoundError("group")
	}
	return nil
}

// --- Post Methods ---

const postSelect = `
	SELECT
		p.id, p.text, p.image, p.author_id, p.group_id, p.created_at,
		u.username AS author_username,
		COALESCE(g.slug, '') AS group_slug,
		COALESCE(g.title, '') AS group_title,
		(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN post_groups g ON g.id = p.group_id`

// postWhere renders the filter as a WHERE clause with positional args.
func postWhere(filter models.PostFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if filter.GroupID != nil {
		args = append(args, *filter.GroupID)
		conds = append(conds, fmt.Sprintf("p.group_id = $%d", len(args)))
	}
	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		conds = append(conds, fmt.Sprintf("p.author_id = $%d", len(args)))
	}
	if filter.FollowerID != nil {
		args = append(args, *filter.FollowerID)
		conds = append(conds, fmt.Sprintf("p.author_id IN (SELECT author_id FROM follows WHERE user_id = $%d)", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// SavePost inserts a new post or updates text, image and group of an
// existing one.
func (p *PostgresDB) SavePost(ctx context.Context, post *models.Post) error {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO posts (id, text, image, author_id, group_id, created_at)
		VALUES (:id, :text, :image, :author_id, :group_id, :created_at)
		ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			image = EXCLUDED.image,
			group_id = EXCLUDED.group_id
	`
	// author_id and created_at are never changed on conflict
	if _, err := p.DB.NamedExecContext(ctx, query, post); err != nil {
		return mapPQError(err, "post")
	}

	var username string
	if err := p.DB.GetContext(ctx, &username, `SELECT username FROM users WHERE id = $1`, post.AuthorID); err == nil {
		post.AuthorUsername = username
	}
	return nil
}

func (p *PostgresDB) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := p.DB.GetContext(ctx, &post, postSelect+` WHERE p.id = $1`, id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("error fetching post", "post_id", id, "error", err)
		}
		return nil, notFoundOr(err, "post", "failed to query post by id")
	}
	return &post, nil
}

// DeletePost relies on ON DELETE CASCADE to remove comments.
func (p *PostgresDB) DeletePost(ctx context.Context, id uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to delete post", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return utils.NewNotFoundError("post")
	}
	return nil
}

func (p *PostgresDB) CountPosts(ctx context.Context, filter models.PostFilter) (int, error) {
	where, args := postWhere(filter)
	var count int
	if err := p.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM posts p`+where, args...); err != nil {
		return 0, utils.NewAppError(utils.ErrDatabase, "failed to count posts", err)
	}
	return count, nil
}

func (p *PostgresDB) ListPosts(ctx context.Context, filter models.PostFilter, limit, offset int) ([]*models.Post, error) {
	where, args := postWhere(filter)
	query := postSelect + where + ` ORDER BY p.created_at DESC, p.seq DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	posts := []*models.Post{}
	if err := p.DB.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query posts", err)
	}
	return posts, nil
}

// --- Comment Methods ---

const commentSelect = `
	SELECT c.id, c.post_id, c.author_id, c.text, c.created_at, u.username AS author_username
	FROM comments c
	JOIN users u ON u.id = c.author_id`

func (p *PostgresDB) SaveComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO comments (id, post_id, author_id, text, created_at)
		VALUES (:id, :post_id, :author_id, :text, :created_at)
		ON CONFLICT (id) DO UPDATE SET text = EXCLUDED.text
	`
	if _, err := p.DB.NamedExecContext(ctx, query, comment); err != nil {
		return mapPQError(err, "comment")
	}

	var username string
	if err := p.DB.GetContext(ctx, &username, `SELECT username FROM users WHERE id = $1`, comment.AuthorID); err == nil {
		comment.AuthorUsername = username
	}
	return nil
}

func (p *PostgresDB) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := p.DB.GetContext(ctx, &comment, commentSelect+` WHERE c.id = $1`, id); err != nil {
		return nil, notFoundOr(err, "comment", "failed to query comment by id")
	}
	return &comment, nil
}

func (p *PostgresDB) DeleteComment(ctx context.Context, id uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to delete comment", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return utils.NewNotFoundError("comment")
	}
	return nil
}

func (p *PostgresDB) ListPostComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := p.DB.SelectContext(ctx, &comments, commentSelect+` WHERE c.post_id = $1 ORDER BY c.created_at, c.seq`, postID)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrDatabase, "failed to query post comments", err)
	}
	return comments, nil
}

// --- Follow Methods ---

func (p *PostgresDB) CreateFollow(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	query := `INSERT INTO follows (user_id, author_id) VALUES ($1, $2) ON CONFLICT (user_id, author_id) DO NOTHING`
	result, err := p.DB.ExecContext(ctx, query, userID, authorID)
	if err != nil {
		return false, mapPQError(err, "follow")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, utils.NewAppError(utils.ErrDatabase, "failed to get rows affected after follow", err)
	}
	return rows > 0, nil
}

func (p *PostgresDB) DeleteFollow(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	// DELETE doesn't error if the row doesn't exist
	result, err := p.DB.ExecContext(ctx, `DELETE FROM follows WHERE user_id = $1 AND author_id = $2`, userID, authorID)
	if err != nil {
		return false, utils.NewAppError(utils.ErrDatabase, "failed to delete follow", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, utils.NewAppError(utils.ErrDatabase, "failed to get rows affected after unfollow", err)
	}
	return rows > 0, nil
}

func (p *PostgresDB) IsFollowing(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM follows WHERE user_id = $1 AND author_id = $2)`
	if err := p.DB.GetContext(ctx, &exists, query, userID, authorID); err != nil {
		return false, utils.NewAppError(utils.ErrDatabase, "failed to query follow", err)
	}
	return exists, nil
}

func (p *PostgresDB) CountFollowers(ctx context.Context, authorID uuid.UUID) (int, error) {
	var count int
	if err := p.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM follows WHERE author_id = $1`, authorID); err != nil {
		return 0, utils.NewAppError(utils.ErrDatabase, "failed to count followers", err)
	}
	return count, nil
}

func (p *PostgresDB) CountFollowing(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := p.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM follows WHERE user_id = $1`, userID); err != nil {
		return 0, utils.NewAppError(utils.ErrDatabase, "failed to count following", err)
	}
	return count, nil
}
