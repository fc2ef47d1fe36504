package repository

import (
	"context"
	"fmt"

	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/jmoiron/sqlx"
)

type MediaAssetRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, ma *models.MediaAsset) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.MediaAsset, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.MediaAsset, error)
	Remove(ctx context.Context, id int64) error
}

type mediaAssetRepository struct {
	db *sqlx.DB
}

func NewMediaAssetRepository(db *sqlx.DB) MediaAssetRepository {
	return &mediaAssetRepository{db: db}
}

func (r *mediaAssetRepository) Create(ctx context.Context, tx *sqlx.Tx, ma *models.MediaAsset) (int64, error) {
	query := `
		INSERT INTO media_assets (user_id, file_name, file_type, file_size, file_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	err := ext(r.db, tx).QueryRowxContext(ctx, query, ma.UserID, ma.FileName, ma.FileType, ma.FileSize, ma.FileURL).Scan(&id)
	if err != nil {
		return 0, classify(err)
	}
	return id, nil
}

func (r *mediaAssetRepository) GetByID(ctx context.Context, id int64) (*models.MediaAsset, error) {
	query := `
		SELECT id, user_id, file_name, file_type, file_size, file_url, created_at
		FROM media_assets
		WHERE id = $1
	`
	var ma models.MediaAsset
	found, err := getOne(ctx, r.db, &ma, query, id)
	if err != nil || !found {
		return nil, err
	}
	return &ma, nil
}

func (r *mediaAssetRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.MediaAsset, error) {
	query := `
		SELECT id, user_id, file_name, file_type, file_size, file_url, created_at
		FROM media_assets
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	var assets []*models.MediaAsset
	if err := sqlx.SelectContext(ctx, r.db, &assets, query, userID); err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	return assets, nil
}

func (r *mediaAssetRepository) Remove(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM media_assets WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete media %d: %w", id, err)
	}
	return nil
}
