package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/pkg/logger"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const postColumns = `id, user_id, title, content, media_urls, status, scheduled_at, published_at, created_at, updated_at`

type PostRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	GetByIDForUser(ctx context.Context, id, userID int64) (*models.Post, error)
	ListByUserID(ctx context.Context, userID int64, status string) ([]*models.Post, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error)
	Update(ctx context.Context, tx *sqlx.Tx, post *models.Post) error
	UpdatePostStatus(ctx context.Context, status string, postID int64) error
	SetPublished(ctx context.Context, postID int64, publishedAt time.Time) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
	Remove(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, tx *sqlx.Tx, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (user_id, title, content, media_urls, status, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := ext(r.db, tx).QueryRowxContext(ctx, query,
		post.UserID, post.Title, post.Content, post.MediaURLs, post.Status, post.ScheduledAt,
	).Scan(&id)
	if err != nil {
		logger.Log.Warn("insert post", zap.Int64("user_id", post.UserID), zap.Error(err))
		return 0, classify(err)
	}
	return id, nil
}

// GetByID returns nil without error when the post does not exist.
func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	found, err := getOne(ctx, r.db, &post, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	if err != nil || !found {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByIDForUser(ctx context.Context, id, userID int64) (*models.Post, error) {
	var post models.Post
	found, err := getOne(ctx, r.db, &post, `SELECT `+postColumns+` FROM posts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil || !found {
		return nil, err
	}
	return &post, nil
}

// ListByUserID lists a user's posts, newest first. An empty status lists all of them.
func (r *postRepository) ListByUserID(ctx context.Context, userID int64, status string) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1`
	args := []interface{}{userID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	var posts []*models.Post
	if err := sqlx.SelectContext(ctx, r.db, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// ListDue returns scheduled posts whose time has come, oldest first.
func (r *postRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE status = $1 AND scheduled_at <= $2
		ORDER BY scheduled_at
		LIMIT $3
	`

	var posts []*models.Post
	if err := sqlx.SelectContext(ctx, r.db, &posts, query, models.PostStatusScheduled, now, limit); err != nil {
		return nil, fmt.Errorf("list due posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, tx *sqlx.Tx, post *models.Post) error {
	query := `
		UPDATE posts
		SET title = $1,
			content = $2,
			media_urls = $3,
			status = $4,
			scheduled_at = $5,
			updated_at = NOW()
		WHERE id = $6
	`
	_, err := ext(r.db, tx).ExecContext(ctx, query,
		post.Title, post.Content, post.MediaURLs, post.Status, post.ScheduledAt, post.ID,
	)
	if err != nil {
		return fmt.Errorf("update post %d: %w", post.ID, err)
	}
	return nil
}

func (r *postRepository) UpdatePostStatus(ctx context.Context, status string, postID int64) error {
	query := `
		UPDATE posts
		SET status = $1,
			updated_at = NOW()
		WHERE id = $2
	`
	if _, err := r.db.ExecContext(ctx, query, status, postID); err != nil {
		return fmt.Errorf("update post %d status: %w", postID, err)
	}
	return nil
}

func (r *postRepository) SetPublished(ctx context.Context, postID int64, publishedAt time.Time) error {
	query := `
		UPDATE posts
		SET status = $1,
			published_at = $2,
			updated_at = NOW()
		WHERE id = $3
	`
	if _, err := r.db.ExecContext(ctx, query, models.PostStatusPublished, publishedAt, postID); err != nil {
		return fmt.Errorf("mark post %d published: %w", postID, err)
	}
	return nil
}

func (r *postRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return countBy(ctx, r.db, `SELECT status, COUNT(*) FROM posts GROUP BY status`)
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return nil
}
