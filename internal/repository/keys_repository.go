package repository

import (
	"context"
	"fmt"

	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/jmoiron/sqlx"
)

type ApiKeyRepository interface {
	GetUserIDByKey(ctx context.Context, apiKey string) (int64, bool, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.ApiKey, error)
	Create(ctx context.Context, apiKey *models.ApiKey) (int64, error)
	CheckByUserID(ctx context.Context, keyID, userID int64) (bool, error)
	Remove(ctx context.Context, id int64) error
}

type apiKeyRepository struct {
	db *sqlx.DB
}

func NewApiKeyRepository(db *sqlx.DB) ApiKeyRepository {
	return &apiKeyRepository{db: db}
}

// GetUserIDByKey resolves the owner of a key and stamps its last use.
func (r *apiKeyRepository) GetUserIDByKey(ctx context.Context, apiKey string) (int64, bool, error) {
	query := `
		UPDATE api_keys
		SET last_used_at = NOW()
		WHERE api_key = $1
		RETURNING user_id
	`
	var userID int64
	found, err := getOne(ctx, r.db, &userID, query, apiKey)
	if err != nil {
		return 0, false, err
	}
	return userID, found, nil
}

func (r *apiKeyRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.ApiKey, error) {
	query := `SELECT id, user_id, name, api_key, last_used_at, created_at FROM api_keys WHERE user_id = $1 ORDER BY created_at`

	var keys []*models.ApiKey
	if err := sqlx.SelectContext(ctx, r.db, &keys, query, userID); err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return keys, nil
}

func (r *apiKeyRepository) Create(ctx context.Context, apiKey *models.ApiKey) (int64, error) {
	query := `INSERT INTO api_keys (user_id, name, api_key) VALUES ($1, $2, $3) RETURNING id`

	var id int64
	if err := r.db.QueryRowxContext(ctx, query, apiKey.UserID, apiKey.Name, apiKey.ApiKey).Scan(&id); err != nil {
		return 0, classify(err)
	}
	return id, nil
}

func (r *apiKeyRepository) CheckByUserID(ctx context.Context, keyID, userID int64) (bool, error) {
	var result int
	return getOne(ctx, r.db, &result, `SELECT 1 FROM api_keys WHERE id = $1 AND user_id = $2`, keyID, userID)
}

func (r *apiKeyRepository) Remove(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete api key %d: %w", id, err)
	}
	return nil
}
