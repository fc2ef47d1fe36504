package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/pkg/logger"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const socialAccountColumns = `
	id, user_id, platform, account_id, account_name, account_username, profile_picture_url,
	access_token, refresh_token, token_secret, token_expires_at, account_status, created_at, updated_at
`

type SocialAccountRepository interface {
	Upsert(ctx context.Context, sa *models.SocialAccount) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.SocialAccount, error)
	ListInfoByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	ListExpiring(ctx context.Context, before time.Time) ([]*models.SocialAccount, error)
	CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error)
	SetToken(ctx context.Context, id int64, sa *models.SocialAccount) error
	SetStatus(ctx context.Context, id int64, status string) error
	CountByPlatform(ctx context.Context) (map[string]int64, error)
	Remove(ctx context.Context, id int64) error
}

type socialAccountRepository struct {
	db *sqlx.DB
}

func NewSocialAccountRepository(db *sqlx.DB) SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

// Upsert stores a connected account, refreshing tokens when the same user reconnects it.
// An account already connected by another user yields ErrDuplicate.
func (r *socialAccountRepository) Upsert(ctx context.Context, sa *models.SocialAccount) (int64, error) {
	query := `
		INSERT INTO social_accounts (
			user_id,
			platform,
			account_id,
			account_name,
			account_username,
			profile_picture_url,
			access_token,
			refresh_token,
			token_secret,
			token_expires_at,
			account_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (platform, account_id) DO UPDATE
		SET account_name = EXCLUDED.account_name,
			account_username = EXCLUDED.account_username,
			profile_picture_url = EXCLUDED.profile_picture_url,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_secret = EXCLUDED.token_secret,
			token_expires_at = EXCLUDED.token_expires_at,
			account_status = EXCLUDED.account_status,
			updated_at = NOW()
		WHERE social_accounts.user_id = EXCLUDED.user_id
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowxContext(ctx, query,
		sa.UserID,
		sa.Platform,
		sa.AccountID,
		sa.AccountName,
		sa.AccountUsername,
		sa.ProfilePicture,
		sa.AccessToken,
		sa.RefreshToken,
		sa.TokenSecret,
		sa.TokenExpiresAt,
		models.AccountStatusActive,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s account %s is linked to another user", ErrDuplicate, sa.Platform, sa.AccountID)
	}
	if err != nil {
		logger.Log.Warn("upsert social account", zap.String("platform", sa.Platform), zap.Error(err))
		return 0, classify(err)
	}
	return id, nil
}

func (r *socialAccountRepository) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	var sa models.SocialAccount
	found, err := getOne(ctx, r.db, &sa, `SELECT `+socialAccountColumns+` FROM social_accounts WHERE id = $1`, id)
	if err != nil || !found {
		return nil, err
	}
	return &sa, nil
}

// ListInfoByUserID returns the public fields only; tokens are left empty.
func (r *socialAccountRepository) ListInfoByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	query := `
		SELECT id, user_id, platform, account_id, account_name, account_username,
			profile_picture_url, token_expires_at, account_status, created_at, updated_at
		FROM social_accounts
		WHERE user_id = $1
		ORDER BY created_at
	`

	var accounts []*models.SocialAccount
	if err := sqlx.SelectContext(ctx, r.db, &accounts, query, userID); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// ListExpiring returns active accounts whose access token expires before the given instant.
func (r *socialAccountRepository) ListExpiring(ctx context.Context, before time.Time) ([]*models.SocialAccount, error) {
	query := `
		SELECT ` + socialAccountColumns + `
		FROM social_accounts
		WHERE token_expires_at < $1 AND account_status = $2
	`

	var accounts []*models.SocialAccount
	if err := sqlx.SelectContext(ctx, r.db, &accounts, query, before, models.AccountStatusActive); err != nil {
		return nil, fmt.Errorf("list expiring accounts: %w", err)
	}
	return accounts, nil
}

func (r *socialAccountRepository) CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error) {
	var result int
	found, err := getOne(ctx, r.db, &result, `SELECT 1 FROM social_accounts WHERE id = $1 AND user_id = $2`, accountID, userID)
	if err != nil {
		return false, err
	}
	return found, nil
}

// SetToken replaces the stored credentials. Empty refresh token and secret keep the old ones.
func (r *socialAccountRepository) SetToken(ctx context.Context, id int64, sa *models.SocialAccount) error {
	query := `
		UPDATE social_accounts
		SET access_token = $1,
			refresh_token = COALESCE(NULLIF($2, ''), refresh_token),
			token_secret = COALESCE(NULLIF($3, ''), token_secret),
			token_expires_at = $4,
			account_status = $5,
			updated_at = NOW()
		WHERE id = $6
	`
	res, err := r.db.ExecContext(ctx, query,
		sa.AccessToken, sa.RefreshToken, sa.TokenSecret, sa.TokenExpiresAt, models.AccountStatusActive, id,
	)
	if err != nil {
		return fmt.Errorf("set token of account %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected != 1 {
		return fmt.Errorf("set token of account %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

func (r *socialAccountRepository) SetStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE social_accounts SET account_status = $1, updated_at = NOW() WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, status, id); err != nil {
		return fmt.Errorf("set status of account %d: %w", id, err)
	}
	return nil
}

func (r *socialAccountRepository) CountByPlatform(ctx context.Context) (map[string]int64, error) {
	return countBy(ctx, r.db, `SELECT platform, COUNT(*) FROM social_accounts GROUP BY platform`)
}

func (r *socialAccountRepository) Remove(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM social_accounts WHERE id = $1`, id); err != nil {
		logger.Log.Warn("delete social account", zap.Int64("account_id", id), zap.Error(err))
		return err
	}
	return nil
}
