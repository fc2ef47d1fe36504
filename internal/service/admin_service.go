package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/internal/repository"
	"github.com/Ghazanfar1991/syncrio/internal/transfer"
)

type AdminService interface {
	SystemMetrics(ctx context.Context) (*transfer.SystemMetrics, error)
	ListAIModels(ctx context.Context) ([]*models.AIModelConfig, error)
	CreateAIModel(ctx context.Context, req *transfer.AIModelRequest) (*models.AIModelConfig, error)
	UpdateAIModel(ctx context.Context, id int64, req *transfer.AIModelRequest) (*models.AIModelConfig, error)
	SetDefaultAIModel(ctx context.Context, id int64) error
}

type adminService struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	pubs     repository.PublicationRepository
	accounts repository.SocialAccountRepository
	subs     repository.SubscriptionRepository
	aiModels repository.AIModelRepository
}

func NewAdminService(
	users repository.UserRepository,
	posts repository.PostRepository,
	pubs repository.PublicationRepository,
	accounts repository.SocialAccountRepository,
	subs repository.SubscriptionRepository,
	aiModels repository.AIModelRepository) AdminService {
	return &adminService{
		users:    users,
		posts:    posts,
		pubs:     pubs,
		accounts: accounts,
		subs:     subs,
		aiModels: aiModels,
	}
}

func (s *adminService) SystemMetrics(ctx context.Context) (*transfer.SystemMetrics, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	pubs, err := s.pubs.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count publications: %w", err)
	}
	accounts, err := s.accounts.CountByPlatform(ctx)
	if err != nil {
		return nil, fmt.Errorf("count accounts: %w", err)
	}
	plans, err := s.subs.CountActiveByPlan(ctx)
	if err != nil {
		return nil, fmt.Errorf("count subscriptions: %w", err)
	}

	return &transfer.SystemMetrics{
		Users:                users,
		PostsByStatus:        posts,
		PublicationsByStatus: pubs,
		AccountsByPlatform:   accounts,
		SubscriptionsByPlan:  plans,
		PublishSuccessRate:   successRate(pubs),
	}, nil
}

// successRate is the share of finished publications that succeeded, in percent.
func successRate(pubs map[string]int64) float64 {
	ok := pubs[models.PublicationStatusPublished]
	done := ok + pubs[models.PublicationStatusFailed]
	if done == 0 {
		return 0
	}
	return float64(ok) / float64(done) * 100
}

func (s *adminService) ListAIModels(ctx context.Context) ([]*models.AIModelConfig, error) {
	return s.aiModels.List(ctx)
}

func validateAIModel(req *transfer.AIModelRequest) error {
	if strings.TrimSpace(req.Provider) == "" || strings.TrimSpace(req.ModelName) == "" {
		return fmt.Errorf("%w: provider and model_name are required", ErrInvalidInput)
	}
	if req.Temperature < 0 || req.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be between 0 and 2", ErrInvalidInput)
	}
	if req.MaxTokens <= 0 {
		return fmt.Errorf("%w: max_tokens must be positive", ErrInvalidInput)
	}
	return nil
}

func (s *adminService) CreateAIModel(ctx context.Context, req *transfer.AIModelRequest) (*models.AIModelConfig, error) {
	if err := validateAIModel(req); err != nil {
		return nil, err
	}

	m := &models.AIModelConfig{
		Provider:    strings.TrimSpace(req.Provider),
		ModelName:   strings.TrimSpace(req.ModelName),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Enabled:     req.Enabled == nil || *req.Enabled,
	}
	id, err := s.aiModels.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	m.ID = id
	return m, nil
}

func (s *adminService) UpdateAIModel(ctx context.Context, id int64, req *transfer.AIModelRequest) (*models.AIModelConfig, error) {
	if err := validateAIModel(req); err != nil {
		return nil, err
	}

	m, err := s.aiModels.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: ai model %d", ErrNotFound, id)
	}

	m.Provider = strings.TrimSpace(req.Provider)
	m.ModelName = strings.TrimSpace(req.ModelName)
	m.Temperature = req.Temperature
	m.MaxTokens = req.MaxTokens
	if req.Enabled != nil {
		m.Enabled = *req.Enabled
	}
	if err := s.aiModels.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *adminService) SetDefaultAIModel(ctx context.Context, id int64) error {
	m, err := s.aiModels.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("%w: ai model %d", ErrNotFound, id)
	}
	if !m.Enabled {
		return fmt.Errorf("%w: a disabled model cannot be the default", ErrInvalidInput)
	}
	return s.aiModels.SetDefault(ctx, id)
}
