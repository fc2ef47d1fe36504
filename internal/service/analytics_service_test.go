package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/internal/repository/mocks"
	"github.com/Ghazanfar1991/syncrio/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memoryOverviewCache struct {
	entries     map[int]*transfer.AnalyticsOverview
	invalidated bool
}

func (c *memoryOverviewCache) GetOverview(_ context.Context, _ int64, days int) (*transfer.AnalyticsOverview, bool, error) {
	ov, ok := c.entries[days]
	return ov, ok, nil
}

func (c *memoryOverviewCache) SetOverview(_ context.Context, _ int64, days int, ov *transfer.AnalyticsOverview, _ time.Duration) error {
	if c.entries == nil {
		c.entries = make(map[int]*transfer.AnalyticsOverview)
	}
	c.entries[days] = ov
	return nil
}

func (c *memoryOverviewCache) InvalidateOverview(context.Context, int64) error {
	c.entries = nil
	c.invalidated = true
	return nil
}

type fakeFetcher struct {
	metrics *models.PostAnalytics
	err     error
}

func (f fakeFetcher) FetchMetrics(context.Context, *models.SocialAccount, string) (*models.PostAnalytics, error) {
	if f.err != nil {
		return nil, f.err
	}
	m := *f.metrics
	return &m, nil
}

func TestEngagementRate(t *testing.T) {
	assert.Equal(t, 0.0, EngagementRate(5, 5, 5, 0))
	assert.InDelta(t, 7.5, EngagementRate(50, 20, 5, 1000), 1e-9)
}

func TestSummarizeAndBreakdown(t *testing.T) {
	rows := []*models.PostAnalytics{
		{PostID: 1, Platform: models.PlatformTwitter, Impressions: 1000, Likes: 40, Comments: 5, Shares: 5, Clicks: 3},
		{PostID: 2, Platform: models.PlatformTwitter, Impressions: 0, Likes: 2},
		{PostID: 3, Platform: models.PlatformYouTube, Impressions: 200, Likes: 10, Views: 180},
	}

	total := Summarize(rows)
	assert.Equal(t, int64(1200), total.Impressions)
	assert.Equal(t, int64(52), total.Likes)
	assert.Equal(t, int64(180), total.Views)
	assert.InDelta(t, 62.0/1200*100, total.EngagementRate, 1e-9)

	by := ByPlatform(rows)
	require.Len(t, by, 2)
	assert.Equal(t, int64(42), by[models.PlatformTwitter].Likes)
	assert.InDelta(t, 5.0, by[models.PlatformYouTube].EngagementRate, 1e-9)

	assert.Equal(t, transfer.MetricsSummary{}, Summarize(nil))
}

func TestTopPosts(t *testing.T) {
	rows := []*models.PostAnalytics{
		{PostID: 1, EngagementRate: 2, Impressions: 10},
		{PostID: 2, EngagementRate: 9, Impressions: 10},
		{PostID: 3, EngagementRate: 2, Impressions: 50},
	}

	top := TopPosts(rows, 2)
	require.Len(t, top, 2)
	assert.Equal(t, int64(2), top[0].PostID)
	assert.Equal(t, int64(3), top[1].PostID)
	assert.Equal(t, int64(1), rows[0].PostID)
}

func TestClampDays(t *testing.T) {
	assert.Equal(t, DefaultAnalyticsDays, ClampDays(0))
	assert.Equal(t, DefaultAnalyticsDays, ClampDays(-3))
	assert.Equal(t, 7, ClampDays(7))
	assert.Equal(t, 365, ClampDays(1000))
}

func TestOverviewUsesCache(t *testing.T) {
	now := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	analytics := new(mocks.AnalyticsRepository)
	analytics.On("ListByUserSince", mock.Anything, int64(1), now.AddDate(0, 0, -7)).
		Return([]*models.PostAnalytics{{PostID: 4, Platform: models.PlatformFacebook, Impressions: 100, Likes: 10}}, nil).Once()

	cache := &memoryOverviewCache{}
	s := NewAnalyticsService(analytics, nil, nil, nil, nil, cache).(*analyticsService)
	s.now = func() time.Time { return now }

	first, err := s.Overview(context.Background(), 1, 7)
	require.NoError(t, err)
	second, err := s.Overview(context.Background(), 1, 7)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 7, first.Days)
	assert.InDelta(t, 10.0, first.Totals.EngagementRate, 1e-9)
	analytics.AssertNumberOfCalls(t, "ListByUserSince", 1)
}

func TestPostAnalyticsOwnership(t *testing.T) {
	posts := new(mocks.PostRepository)
	posts.On("GetByIDForUser", mock.Anything, int64(9), int64(1)).Return(nil, nil)

	s := NewAnalyticsService(new(mocks.AnalyticsRepository), posts, nil, nil, nil, nil)

	_, err := s.PostAnalytics(context.Background(), 1, 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRefreshUpsertsAndCountsFailures(t *testing.T) {
	now := time.Date(2026, 5, 31, 8, 0, 0, 0, time.UTC)
	pubs := new(mocks.PublicationRepository)
	pubs.On("ListPublishedByUserID", mock.Anything, int64(1)).Return([]*models.PostPublication{
		{PostID: 1, SocialAccountID: 10, Platform: models.PlatformTwitter, PlatformPostID: "t1"},
		{PostID: 2, SocialAccountID: 11, Platform: models.PlatformLinkedIn, PlatformPostID: "l1"},
		{PostID: 3, SocialAccountID: 12, Platform: "myspace", PlatformPostID: "m1"},
	}, nil)

	accounts := new(mocks.SocialAccountRepository)
	accounts.On("GetByID", mock.Anything, int64(10)).Return(&models.SocialAccount{ID: 10}, nil)
	accounts.On("GetByID", mock.Anything, int64(11)).Return(&models.SocialAccount{ID: 11}, nil)

	analytics := new(mocks.AnalyticsRepository)
	analytics.On("Upsert", mock.Anything, mock.MatchedBy(func(a *models.PostAnalytics) bool {
		return a.PostID == 1 && a.Platform == models.PlatformTwitter && a.EngagementRate == 20 && a.FetchedAt.Equal(now)
	})).Return(nil).Once()

	fetchers := map[string]MetricsFetcher{
		models.PlatformTwitter:  fakeFetcher{metrics: &models.PostAnalytics{Impressions: 50, Likes: 8, Comments: 1, Shares: 1}},
		models.PlatformLinkedIn: fakeFetcher{err: errors.New("linkedin: token revoked (status 401)")},
	}
	cache := &memoryOverviewCache{}

	s := NewAnalyticsService(analytics, nil, pubs, accounts, fetchers, cache).(*analyticsService)
	s.now = func() time.Time { return now }

	res, err := s.Refresh(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, &transfer.RefreshResult{Refreshed: 1, Failed: 2}, res)
	assert.True(t, cache.invalidated)
	analytics.AssertExpectations(t)
}
