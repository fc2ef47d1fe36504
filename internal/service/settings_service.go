package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/internal/repository"
	"github.com/Ghazanfar1991/syncrio/internal/transfer"
)

type SettingsService interface {
	GetSettingsInfo(ctx context.Context, userID int64) (*models.Settings, error)
	UpdateSettings(ctx context.Context, userID int64, req *transfer.SettingsUpdate) (*models.Settings, error)
}

type settingsService struct {
	sr repository.SettingsRepository
}

func NewSettingsService(sr repository.SettingsRepository) SettingsService {
	return &settingsService{
		sr: sr,
	}
}

// GetSettingsInfo falls back to defaults for users who never saved settings.
func (s *settingsService) GetSettingsInfo(ctx context.Context, userID int64) (*models.Settings, error) {
	settings, exists, err := s.sr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return &models.Settings{UserID: userID, PostingTime: "09:00", Timezone: "UTC"}, nil
	}
	return settings, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, userID int64, req *transfer.SettingsUpdate) (*models.Settings, error) {
	if _, err := time.Parse("15:04", req.PostingTime); err != nil {
		return nil, fmt.Errorf("%w: posting_time must be HH:MM", ErrInvalidInput)
	}
	tz := req.Timezone
	if tz == "" {
		tz = "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, tz)
	}

	settings := &models.Settings{
		UserID:      userID,
		PostingTime: req.PostingTime,
		Timezone:    tz,
		Category:    req.Category,
	}
	if err := s.sr.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
