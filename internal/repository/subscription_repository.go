package repository

import (
	"context"
	"fmt"

	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/jmoiron/sqlx"
)

type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Subscription, bool, error)
	Create(ctx context.Context, subscription *models.Subscription) (int64, error)
	UpdateSubscription(ctx context.Context, subscription *models.Subscription) error
	CountActiveByPlan(ctx context.Context) (map[string]int64, error)
}

type subscriptionRepository struct {
	db *sqlx.DB
}

func NewSubscriptionRepository(db *sqlx.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID int64) (*models.Subscription, bool, error) {
	query := `
		SELECT id, user_id, subscription_id, plan, subscription_end_date, status, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1
	`
	var sub models.Subscription
	found, err := getOne(ctx, r.db, &sub, query, userID)
	if err != nil || !found {
		return nil, false, err
	}
	return &sub, true, nil
}

func (r *subscriptionRepository) Create(ctx context.Context, subscription *models.Subscription) (int64, error) {
	query := `
		INSERT INTO subscriptions (user_id, subscription_id, plan, subscription_end_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowxContext(ctx, query,
		subscription.UserID,
		subscription.SubscriptionID,
		subscription.Plan,
		subscription.SubscriptionEndDate,
		subscription.Status,
	).Scan(&id)
	if err != nil {
		return 0, classify(err)
	}
	return id, nil
}

func (r *subscriptionRepository) UpdateSubscription(ctx context.Context, subscription *models.Subscription) error {
	query := `
		UPDATE subscriptions
		SET subscription_id = $1,
			plan = $2,
			subscription_end_date = $3,
			status = $4,
			updated_at = NOW()
		WHERE user_id = $5
	`
	_, err := r.db.ExecContext(ctx, query,
		subscription.SubscriptionID,
		subscription.Plan,
		subscription.SubscriptionEndDate,
		subscription.Status,
		subscription.UserID,
	)
	if err != nil {
		return fmt.Errorf("update subscription of user %d: %w", subscription.UserID, err)
	}
	return nil
}

// CountActiveByPlan counts subscriptions that are active and not yet lapsed.
func (r *subscriptionRepository) CountActiveByPlan(ctx context.Context) (map[string]int64, error) {
	query := `
		SELECT plan, COUNT(*)
		FROM subscriptions
		WHERE status = $1 AND subscription_end_date > NOW()
		GROUP BY plan
	`
	return countBy(ctx, r.db, query, models.SubscriptionStatusActive)
}
