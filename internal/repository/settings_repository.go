package repository

import (
	"context"
	"fmt"

	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/jmoiron/sqlx"
)

type SettingsRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error)
	Upsert(ctx context.Context, s *models.Settings) error
}

type settingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error) {
	query := `
		SELECT id, user_id, posting_time, timezone, category, created_at, updated_at
		FROM settings
		WHERE user_id = $1
	`
	var s models.Settings
	found, err := getOne(ctx, r.db, &s, query, userID)
	if err != nil || !found {
		return nil, false, err
	}
	return &s, true, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, s *models.Settings) error {
	query := `
		INSERT INTO settings (user_id, posting_time, timezone, category)
		VALUES (:user_id, :posting_time, :timezone, :category)
		ON CONFLICT (user_id) DO UPDATE
		SET posting_time = EXCLUDED.posting_time,
			timezone = EXCLUDED.timezone,
			category = EXCLUDED.category,
			updated_at = NOW()
	`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("save settings of user %d: %w", s.UserID, err)
	}
	return nil
}
