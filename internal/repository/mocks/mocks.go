// Package mocks holds testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

type PostRepository struct {
	mock.Mock
}

func (m *PostRepository) Create(ctx context.Context, tx *sqlx.Tx, post *models.Post) (int64, error) {
	args := m.Called(ctx, tx, post)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *PostRepository) GetByIDForUser(ctx context.Context, id, userID int64) (*models.Post, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *PostRepository) ListByUserID(ctx context.Context, userID int64, status string) ([]*models.Post, error) {
	args := m.Called(ctx, userID, status)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *PostRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *PostRepository) Update(ctx context.Context, tx *sqlx.Tx, post *models.Post) error {
	return m.Called(ctx, tx, post).Error(0)
}

func (m *PostRepository) UpdatePostStatus(ctx context.Context, status string, postID int64) error {
	return m.Called(ctx, status, postID).Error(0)
}

func (m *PostRepository) SetPublished(ctx context.Context, postID int64, publishedAt time.Time) error {
	return m.Called(ctx, postID, publishedAt).Error(0)
}

func (m *PostRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *PostRepository) Remove(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type PublicationRepository struct {
	mock.Mock
}

func (m *PublicationRepository) CreateForPost(ctx context.Context, tx *sqlx.Tx, postID int64, accountIDs []int64) error {
	return m.Called(ctx, tx, postID, accountIDs).Error(0)
}

func (m *PublicationRepository) DeletePendingByPostID(ctx context.Context, tx *sqlx.Tx, postID int64) error {
	return m.Called(ctx, tx, postID).Error(0)
}

func (m *PublicationRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PostPublication, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).([]*models.PostPublication), args.Error(1)
}

func (m *PublicationRepository) ListPublishedByUserID(ctx context.Context, userID int64) ([]*models.PostPublication, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.PostPublication), args.Error(1)
}

func (m *PublicationRepository) MarkPublished(ctx context.Context, id int64, platformPostID string, publishedAt time.Time) error {
	return m.Called(ctx, id, platformPostID, publishedAt).Error(0)
}

func (m *PublicationRepository) MarkFailed(ctx context.Context, id int64, message string) error {
	return m.Called(ctx, id, message).Error(0)
}

func (m *PublicationRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]int64), args.Error(1)
}

type SocialAccountRepository struct {
	mock.Mock
}

func (m *SocialAccountRepository) Upsert(ctx context.Context, sa *models.SocialAccount) (int64, error) {
	args := m.Called(ctx, sa)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SocialAccountRepository) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SocialAccount), args.Error(1)
}

func (m *SocialAccountRepository) ListInfoByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.SocialAccount), args.Error(1)
}

func (m *SocialAccountRepository) ListExpiring(ctx context.Context, before time.Time) ([]*models.SocialAccount, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]*models.SocialAccount), args.Error(1)
}

func (m *SocialAccountRepository) CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error) {
	args := m.Called(ctx, accountID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *SocialAccountRepository) SetToken(ctx context.Context, id int64, sa *models.SocialAccount) error {
	return m.Called(ctx, id, sa).Error(0)
}

func (m *SocialAccountRepository) SetStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *SocialAccountRepository) CountByPlatform(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *SocialAccountRepository) Remove(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type AnalyticsRepository struct {
	mock.Mock
}

func (m *AnalyticsRepository) Upsert(ctx context.Context, a *models.PostAnalytics) error {
	return m.Called(ctx, a).Error(0)
}

func (m *AnalyticsRepository) ListByUserSince(ctx context.Context, userID int64, since time.Time) ([]*models.PostAnalytics, error) {
	args := m.Called(ctx, userID, since)
	return args.Get(0).([]*models.PostAnalytics), args.Error(1)
}

func (m *AnalyticsRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PostAnalytics, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).([]*models.PostAnalytics), args.Error(1)
}

type UsageRepository struct {
	mock.Mock
}

func (m *UsageRepository) Increment(ctx context.Context, userID int64, period string, counter models.UsageCounter, delta int) error {
	return m.Called(ctx, userID, period, counter, delta).Error(0)
}

func (m *UsageRepository) Get(ctx context.Context, userID int64, period string) (*models.UsageTracking, error) {
	args := m.Called(ctx, userID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UsageTracking), args.Error(1)
}

type SubscriptionRepository struct {
	mock.Mock
}

func (m *SubscriptionRepository) GetByUserID(ctx context.Context, userID int64) (*models.Subscription, bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Subscription), args.Bool(1), args.Error(2)
}

func (m *SubscriptionRepository) Create(ctx context.Context, s *models.Subscription) (int64, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SubscriptionRepository) UpdateSubscription(ctx context.Context, s *models.Subscription) error {
	return m.Called(ctx, s).Error(0)
}

func (m *SubscriptionRepository) CountActiveByPlan(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]int64), args.Error(1)
}

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.Bool(1), args.Error(2)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.User), args.Bool(1), args.Error(2)
}

func (m *UserRepository) Create(ctx context.Context, tx *sqlx.Tx, user *models.User) (int64, error) {
	args := m.Called(ctx, tx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserRepository) Remove(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type ApiKeyRepository struct {
	mock.Mock
}

func (m *ApiKeyRepository) GetUserIDByKey(ctx context.Context, apiKey string) (int64, bool, error) {
	args := m.Called(ctx, apiKey)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *ApiKeyRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.ApiKey, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.ApiKey), args.Error(1)
}

func (m *ApiKeyRepository) Create(ctx context.Context, apiKey *models.ApiKey) (int64, error) {
	args := m.Called(ctx, apiKey)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ApiKeyRepository) CheckByUserID(ctx context.Context, keyID, userID int64) (bool, error) {
	args := m.Called(ctx, keyID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ApiKeyRepository) Remove(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type SettingsRepository struct {
	mock.Mock
}

func (m *SettingsRepository) GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Settings), args.Bool(1), args.Error(2)
}

func (m *SettingsRepository) Upsert(ctx context.Context, s *models.Settings) error {
	return m.Called(ctx, s).Error(0)
}

type AIModelRepository struct {
	mock.Mock
}

func (m *AIModelRepository) List(ctx context.Context) ([]*models.AIModelConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.AIModelConfig), args.Error(1)
}

func (m *AIModelRepository) GetByID(ctx context.Context, id int64) (*models.AIModelConfig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AIModelConfig), args.Error(1)
}

func (m *AIModelRepository) Create(ctx context.Context, c *models.AIModelConfig) (int64, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(int64), args.Error(1)
}

func (m *AIModelRepository) Update(ctx context.Context, c *models.AIModelConfig) error {
	return m.Called(ctx, c).Error(0)
}

func (m *AIModelRepository) SetDefault(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MediaAssetRepository struct {
	mock.Mock
}

func (m *MediaAssetRepository) Create(ctx context.Context, tx *sqlx.Tx, ma *models.MediaAsset) (int64, error) {
	args := m.Called(ctx, tx, ma)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MediaAssetRepository) GetByID(ctx context.Context, id int64) (*models.MediaAsset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MediaAsset), args.Error(1)
}

func (m *MediaAssetRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.MediaAsset, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*models.MediaAsset), args.Error(1)
}

func (m *MediaAssetRepository) Remove(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
