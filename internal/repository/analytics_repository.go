package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/jmoiron/sqlx"
)

type AnalyticsRepository interface {
	Upsert(ctx context.Context, a *models.PostAnalytics) error
	ListByUserSince(ctx context.Context, userID int64, since time.Time) ([]*models.PostAnalytics, error)
	ListByPostID(ctx context.Context, postID int64) ([]*models.PostAnalytics, error)
}

type analyticsRepository struct {
	db *sqlx.DB
}

func NewAnalyticsRepository(db *sqlx.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// Upsert replaces the snapshot stored for (post, platform).
func (r *analyticsRepository) Upsert(ctx context.Context, a *models.PostAnalytics) error {
	query := `
		INSERT INTO post_analytics (
			post_id, platform, impressions, likes, comments, shares, clicks, views, engagement_rate, fetched_at
		)
		VALUES (
			:post_id, :platform, :impressions, :likes, :comments, :shares, :clicks, :views, :engagement_rate, :fetched_at
		)
		ON CONFLICT (post_id, platform) DO UPDATE
		SET impressions = EXCLUDED.impressions,
			likes = EXCLUDED.likes,
			comments = EXCLUDED.comments,
			shares = EXCLUDED.shares,
			clicks = EXCLUDED.clicks,
			views = EXCLUDED.views,
			engagement_rate = EXCLUDED.engagement_rate,
			fetched_at = EXCLUDED.fetched_at
	`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("upsert analytics of post %d on %s: %w", a.PostID, a.Platform, classify(err))
	}
	return nil
}

// ListByUserSince returns the snapshots of posts the user published at or after since.
func (r *analyticsRepository) ListByUserSince(ctx context.Context, userID int64, since time.Time) ([]*models.PostAnalytics, error) {
	query := `
		SELECT pa.id, pa.post_id, pa.platform, pa.impressions, pa.likes, pa.comments, pa.shares,
			pa.clicks, pa.views, pa.engagement_rate, pa.fetched_at,
			p.title AS post_title, p.content AS post_content
		FROM post_analytics pa
		JOIN posts p ON p.id = pa.post_id
		WHERE p.user_id = $1 AND p.published_at >= $2
	`
	var rows []*models.PostAnalytics
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, userID, since); err != nil {
		return nil, fmt.Errorf("list analytics: %w", err)
	}
	return rows, nil
}

func (r *analyticsRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PostAnalytics, error) {
	query := `
		SELECT id, post_id, platform, impressions, likes, comments, shares, clicks, views, engagement_rate, fetched_at
		FROM post_analytics
		WHERE post_id = $1
		ORDER BY platform
	`
	var rows []*models.PostAnalytics
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, postID); err != nil {
		return nil, fmt.Errorf("list analytics of post %d: %w", postID, err)
	}
	return rows, nil
}
