package repository

import (
	"context"
	"fmt"

	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/jmoiron/sqlx"
)

type UsageRepository interface {
	Increment(ctx context.Context, userID int64, period string, counter models.UsageCounter, delta int) error
	Get(ctx context.Context, userID int64, period string) (*models.UsageTracking, error)
}

type usageRepository struct {
	db *sqlx.DB
}

func NewUsageRepository(db *sqlx.DB) UsageRepository {
	return &usageRepository{db: db}
}

// usageColumns whitelists the counters that may be interpolated into SQL.
var usageColumns = map[models.UsageCounter]string{
	models.UsagePostsCreated:   "posts_created",
	models.UsagePostsPublished: "posts_published",
	models.UsageAIGenerations:  "ai_generations",
}

func (r *usageRepository) Increment(ctx context.Context, userID int64, period string, counter models.UsageCounter, delta int) error {
	col, ok := usageColumns[counter]
	if !ok {
		return fmt.Errorf("unknown usage counter %q", counter)
	}

	query := fmt.Sprintf(`
		INSERT INTO usage_tracking (user_id, period, %[1]s)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, period) DO UPDATE
		SET %[1]s = usage_tracking.%[1]s + EXCLUDED.%[1]s,
			updated_at = NOW()
	`, col)
	if _, err := r.db.ExecContext(ctx, query, userID, period, delta); err != nil {
		return fmt.Errorf("increment %s: %w", col, classify(err))
	}
	return nil
}

// Get returns a zero record when nothing was tracked for the period yet.
func (r *usageRepository) Get(ctx context.Context, userID int64, period string) (*models.UsageTracking, error) {
	query := `
		SELECT id, user_id, period, posts_created, posts_published, ai_generations, created_at, updated_at
		FROM usage_tracking
		WHERE user_id = $1 AND period = $2
	`
	usage := models.UsageTracking{UserID: userID, Period: period}
	if _, err := getOne(ctx, r.db, &usage, query, userID, period); err != nil {
		return nil, fmt.Errorf("get usage: %w", err)
	}
	return &usage, nil
}
