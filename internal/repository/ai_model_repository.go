package repository

import (
	"context"
	"fmt"

	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/jmoiron/sqlx"
)

const aiModelColumns = `id, provider, model_name, temperature, max_tokens, enabled, is_default, created_at, updated_at`

type AIModelRepository interface {
	List(ctx context.Context) ([]*models.AIModelConfig, error)
	GetByID(ctx context.Context, id int64) (*models.AIModelConfig, error)
	Create(ctx context.Context, m *models.AIModelConfig) (int64, error)
	Update(ctx context.Context, m *models.AIModelConfig) error
	SetDefault(ctx context.Context, id int64) error
}

type aiModelRepository struct {
	db *sqlx.DB
}

func NewAIModelRepository(db *sqlx.DB) AIModelRepository {
	return &aiModelRepository{db: db}
}

func (r *aiModelRepository) List(ctx context.Context) ([]*models.AIModelConfig, error) {
	var configs []*models.AIModelConfig
	if err := sqlx.SelectContext(ctx, r.db, &configs, `SELECT `+aiModelColumns+` FROM ai_model_configs ORDER BY provider, model_name`); err != nil {
		return nil, fmt.Errorf("list ai models: %w", err)
	}
	return configs, nil
}

func (r *aiModelRepository) GetByID(ctx context.Context, id int64) (*models.AIModelConfig, error) {
	var m models.AIModelConfig
	found, err := getOne(ctx, r.db, &m, `SELECT `+aiModelColumns+` FROM ai_model_configs WHERE id = $1`, id)
	if err != nil || !found {
		return nil, err
	}
	return &m, nil
}

func (r *aiModelRepository) Create(ctx context.Context, m *models.AIModelConfig) (int64, error) {
	query := `
		INSERT INTO ai_model_configs (provider, model_name, temperature, max_tokens, enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRowxContext(ctx, query, m.Provider, m.ModelName, m.Temperature, m.MaxTokens, m.Enabled).Scan(&id); err != nil {
		return 0, classify(err)
	}
	return id, nil
}

func (r *aiModelRepository) Update(ctx context.Context, m *models.AIModelConfig) error {
	query := `
		UPDATE ai_model_configs
		SET provider = $1,
			model_name = $2,
			temperature = $3,
			max_tokens = $4,
			enabled = $5,
			updated_at = NOW()
		WHERE id = $6
	`
	if _, err := r.db.ExecContext(ctx, query, m.Provider, m.ModelName, m.Temperature, m.MaxTokens, m.Enabled, m.ID); err != nil {
		return fmt.Errorf("update ai model %d: %w", m.ID, classify(err))
	}
	return nil
}

// SetDefault moves the default flag to id in one transaction.
func (r *aiModelRepository) SetDefault(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE ai_model_configs SET is_default = FALSE, updated_at = NOW() WHERE is_default`); err != nil {
		return fmt.Errorf("clear default ai model: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE ai_model_configs SET is_default = TRUE, updated_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("set default ai model %d: %w", id, err)
	}
	return tx.Commit()
}
