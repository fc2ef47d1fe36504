package service

import (
	"context"
	"fmt"

	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/internal/repository"
	"github.com/Ghazanfar1991/syncrio/pkg/logger"
	"go.uber.org/zap"
)

// PlatformService manages the social accounts a user has connected.
type PlatformService interface {
	GetAuthURL(ctx context.Context, platform, state string) (string, error)
	Callback(ctx context.Context, platform, code, state string, userID int64) error
	GetOAuth1URL(ctx context.Context, platform, state string) (string, error)
	OAuth1Callback(ctx context.Context, platform, requestToken, verifier string, userID int64) error
	List(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	Delete(ctx context.Context, userID, accountID int64) error
}

type platformService struct {
	registry Registry
	accounts repository.SocialAccountRepository
}

func NewPlatformService(registry Registry, accounts repository.SocialAccountRepository) PlatformService {
	return &platformService{
		registry: registry,
		accounts: accounts,
	}
}

func (s *platformService) GetAuthURL(ctx context.Context, platform, state string) (string, error) {
	p, err := s.registry.Get(platform)
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, platform)
	}
	return p.AuthURL(ctx, state)
}

func (s *platformService) Callback(ctx context.Context, platform, code, state string, userID int64) error {
	p, err := s.registry.Get(platform)
	if err != nil {
		return fmt.Errorf("%w: %s", err, platform)
	}
	return p.Callback(ctx, code, state, userID)
}

func (s *platformService) oauth1(platform string) (OAuth1Connector, error) {
	p, err := s.registry.Get(platform)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, platform)
	}
	c, ok := p.(OAuth1Connector)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not support oauth1", ErrInvalidInput, platform)
	}
	return c, nil
}

func (s *platformService) GetOAuth1URL(ctx context.Context, platform, state string) (string, error) {
	c, err := s.oauth1(platform)
	if err != nil {
		return "", err
	}
	return c.OAuth1URL(ctx, state)
}

func (s *platformService) OAuth1Callback(ctx context.Context, platform, requestToken, verifier string, userID int64) error {
	c, err := s.oauth1(platform)
	if err != nil {
		return err
	}
	return c.OAuth1Callback(ctx, requestToken, verifier, userID)
}

func (s *platformService) List(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	return s.accounts.ListInfoByUserID(ctx, userID)
}

// Delete revokes the tokens where the platform supports it and removes the account.
// A failed revoke does not block the removal.
func (s *platformService) Delete(ctx context.Context, userID, accountID int64) error {
	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if acc == nil || acc.UserID != userID {
		return fmt.Errorf("%w: social account %d", ErrNotFound, accountID)
	}

	if p, err := s.registry.Get(acc.Platform); err == nil {
		if r, ok := p.(Revoker); ok {
			if err := r.Revoke(ctx, acc); err != nil {
				logger.Log.Warn("revoke token", zap.Int64("account_id", accountID), zap.Error(err))
			}
		}
	}

	return s.accounts.Remove(ctx, accountID)
}
