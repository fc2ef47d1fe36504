package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/jmoiron/sqlx"
)

const publicationColumns = `
	pp.id, pp.post_id, pp.social_account_id, sa.platform, pp.status,
	pp.platform_post_id, pp.error_message, pp.published_at, pp.created_at, pp.updated_at
`

type PublicationRepository interface {
	CreateForPost(ctx context.Context, tx *sqlx.Tx, postID int64, accountIDs []int64) error
	DeletePendingByPostID(ctx context.Context, tx *sqlx.Tx, postID int64) error
	ListByPostID(ctx context.Context, postID int64) ([]*models.PostPublication, error)
	ListPublishedByUserID(ctx context.Context, userID int64) ([]*models.PostPublication, error)
	MarkPublished(ctx context.Context, id int64, platformPostID string, publishedAt time.Time) error
	MarkFailed(ctx context.Context, id int64, message string) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type publicationRepository struct {
	db *sqlx.DB
}

func NewPublicationRepository(db *sqlx.DB) PublicationRepository {
	return &publicationRepository{db: db}
}

// CreateForPost adds one PENDING publication per account. Accounts already attached are skipped.
func (r *publicationRepository) CreateForPost(ctx context.Context, tx *sqlx.Tx, postID int64, accountIDs []int64) error {
	query := `
		INSERT INTO post_publications (post_id, social_account_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (post_id, social_account_id) DO NOTHING
	`
	q := ext(r.db, tx)
	for _, accountID := range accountIDs {
		if _, err := q.ExecContext(ctx, query, postID, accountID, models.PublicationStatusPending); err != nil {
			return fmt.Errorf("attach account %d to post %d: %w", accountID, postID, classify(err))
		}
	}
	return nil
}

func (r *publicationRepository) DeletePendingByPostID(ctx context.Context, tx *sqlx.Tx, postID int64) error {
	query := `DELETE FROM post_publications WHERE post_id = $1 AND status = $2`
	if _, err := ext(r.db, tx).ExecContext(ctx, query, postID, models.PublicationStatusPending); err != nil {
		return fmt.Errorf("detach accounts from post %d: %w", postID, err)
	}
	return nil
}

func (r *publicationRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PostPublication, error) {
	query := `
		SELECT ` + publicationColumns + `
		FROM post_publications pp
		JOIN social_accounts sa ON sa.id = pp.social_account_id
		WHERE pp.post_id = $1
		ORDER BY pp.id
	`

	var pubs []*models.PostPublication
	if err := sqlx.SelectContext(ctx, r.db, &pubs, query, postID); err != nil {
		return nil, fmt.Errorf("list publications of post %d: %w", postID, err)
	}
	return pubs, nil
}

func (r *publicationRepository) ListPublishedByUserID(ctx context.Context, userID int64) ([]*models.PostPublication, error) {
	query := `
		SELECT ` + publicationColumns + `
		FROM post_publications pp
		JOIN social_accounts sa ON sa.id = pp.social_account_id
		JOIN posts p ON p.id = pp.post_id
		WHERE p.user_id = $1 AND pp.status = $2 AND pp.platform_post_id <> ''
		ORDER BY pp.published_at DESC
	`

	var pubs []*models.PostPublication
	if err := sqlx.SelectContext(ctx, r.db, &pubs, query, userID, models.PublicationStatusPublished); err != nil {
		return nil, fmt.Errorf("list published publications: %w", err)
	}
	return pubs, nil
}

func (r *publicationRepository) MarkPublished(ctx context.Context, id int64, platformPostID string, publishedAt time.Time) error {
	query := `
		UPDATE post_publications
		SET status = $1,
			platform_post_id = $2,
			error_message = '',
			published_at = $3,
			updated_at = NOW()
		WHERE id = $4
	`
	if _, err := r.db.ExecContext(ctx, query, models.PublicationStatusPublished, platformPostID, publishedAt, id); err != nil {
		return fmt.Errorf("mark publication %d published: %w", id, err)
	}
	return nil
}

func (r *publicationRepository) MarkFailed(ctx context.Context, id int64, message string) error {
	query := `
		UPDATE post_publications
		SET status = $1,
			error_message = $2,
			updated_at = NOW()
		WHERE id = $3
	`
	if _, err := r.db.ExecContext(ctx, query, models.PublicationStatusFailed, message, id); err != nil {
		return fmt.Errorf("mark publication %d failed: %w", id, err)
	}
	return nil
}

func (r *publicationRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return countBy(ctx, r.db, `SELECT status, COUNT(*) FROM post_publications GROUP BY status`)
}
