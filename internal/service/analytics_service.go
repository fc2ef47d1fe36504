package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/internal/repository"
	"github.com/Ghazanfar1991/syncrio/internal/transfer"
	"github.com/Ghazanfar1991/syncrio/pkg/logger"
	"go.uber.org/zap"
)

const (
	DefaultAnalyticsDays = 30
	maxAnalyticsDays     = 365
	topPostsLimit        = 5
	overviewTTL          = 5 * time.Minute
)

// OverviewCache keeps rendered dashboards per (user, days).
type OverviewCache interface {
	GetOverview(ctx context.Context, userID int64, days int) (*transfer.AnalyticsOverview, bool, error)
	SetOverview(ctx context.Context, userID int64, days int, ov *transfer.AnalyticsOverview, ttl time.Duration) error
	InvalidateOverview(ctx context.Context, userID int64) error
}

// EngagementRate is (likes + comments + shares) / impressions as a percentage.
func EngagementRate(likes, comments, shares, impressions int64) float64 {
	if impressions == 0 {
		return 0
	}
	return float64(likes+comments+shares) / float64(impressions) * 100
}

// Summarize adds up the snapshots and derives the overall engagement rate.
func Summarize(rows []*models.PostAnalytics) transfer.MetricsSummary {
	var m transfer.MetricsSummary
	for _, r := range rows {
		m.Impressions += r.Impressions
		m.Likes += r.Likes
		m.Comments += r.Comments
		m.Shares += r.Shares
		m.Clicks += r.Clicks
		m.Views += r.Views
	}
	m.EngagementRate = EngagementRate(m.Likes, m.Comments, m.Shares, m.Impressions)
	return m
}

func ByPlatform(rows []*models.PostAnalytics) map[string]transfer.MetricsSummary {
	grouped := make(map[string][]*models.PostAnalytics)
	for _, r := range rows {
		grouped[r.Platform] = append(grouped[r.Platform], r)
	}
	out := make(map[string]transfer.MetricsSummary, len(grouped))
	for platform, rs := range grouped {
		out[platform] = Summarize(rs)
	}
	return out
}

// TopPosts ranks snapshots by engagement rate, then impressions.
func TopPosts(rows []*models.PostAnalytics, limit int) []transfer.TopPost {
	ranked := make([]*models.PostAnalytics, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].EngagementRate != ranked[j].EngagementRate {
			return ranked[i].EngagementRate > ranked[j].EngagementRate
		}
		return ranked[i].Impressions > ranked[j].Impressions
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	top := make([]transfer.TopPost, 0, len(ranked))
	for _, r := range ranked {
		top = append(top, transfer.TopPost{
			PostID:         r.PostID,
			Platform:       r.Platform,
			Title:          r.PostTitle,
			Content:        truncate(r.PostContent, 140),
			Impressions:    r.Impressions,
			EngagementRate: r.EngagementRate,
		})
	}
	return top
}

type AnalyticsService interface {
	Overview(ctx context.Context, userID int64, days int) (*transfer.AnalyticsOverview, error)
	PostAnalytics(ctx context.Context, userID, postID int64) ([]*models.PostAnalytics, error)
	Refresh(ctx context.Context, userID int64) (*transfer.RefreshResult, error)
}

type analyticsService struct {
	analytics repository.AnalyticsRepository
	posts     repository.PostRepository
	pubs      repository.PublicationRepository
	accounts  repository.SocialAccountRepository
	fetchers  map[string]MetricsFetcher
	cache     OverviewCache
	now       func() time.Time
}

func NewAnalyticsService(
	analytics repository.AnalyticsRepository,
	posts repository.PostRepository,
	pubs repository.PublicationRepository,
	accounts repository.SocialAccountRepository,
	fetchers map[string]MetricsFetcher,
	cache OverviewCache) AnalyticsService {
	return &analyticsService{
		analytics: analytics,
		posts:     posts,
		pubs:      pubs,
		accounts:  accounts,
		fetchers:  fetchers,
		cache:     cache,
		now:       time.Now,
	}
}

func ClampDays(days int) int {
	if days <= 0 {
		return DefaultAnalyticsDays
	}
	if days > maxAnalyticsDays {
		return maxAnalyticsDays
	}
	return days
}

func (s *analyticsService) Overview(ctx context.Context, userID int64, days int) (*transfer.AnalyticsOverview, error) {
	days = ClampDays(days)

	if s.cache != nil {
		if ov, ok, err := s.cache.GetOverview(ctx, userID, days); err != nil {
			logger.Log.Warn("read analytics cache", zap.Int64("user_id", userID), zap.Error(err))
		} else if ok {
			return ov, nil
		}
	}

	since := s.now().AddDate(0, 0, -days)
	rows, err := s.analytics.ListByUserSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	ov := &transfer.AnalyticsOverview{
		Days:       days,
		Totals:     Summarize(rows),
		ByPlatform: ByPlatform(rows),
		TopPosts:   TopPosts(rows, topPostsLimit),
	}

	if s.cache != nil {
		if err := s.cache.SetOverview(ctx, userID, days, ov, overviewTTL); err != nil {
			logger.Log.Warn("write analytics cache", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	return ov, nil
}

func (s *analyticsService) PostAnalytics(ctx context.Context, userID, postID int64) ([]*models.PostAnalytics, error) {
	post, err := s.posts.GetByIDForUser(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	return s.analytics.ListByPostID(ctx, postID)
}

// Refresh pulls fresh numbers for every published publication of the user.
// A failing platform is counted and logged; the others still refresh.
func (s *analyticsService) Refresh(ctx context.Context, userID int64) (*transfer.RefreshResult, error) {
	pubs, err := s.pubs.ListPublishedByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := &transfer.RefreshResult{}
	for _, pub := range pubs {
		if err := s.refreshOne(ctx, pub); err != nil {
			res.Failed++
			logger.Log.Warn("refresh analytics",
				zap.Int64("post_id", pub.PostID),
				zap.String("platform", pub.Platform),
				zap.Error(err))
			continue
		}
		res.Refreshed++
	}

	if s.cache != nil {
		if err := s.cache.InvalidateOverview(ctx, userID); err != nil {
			logger.Log.Warn("invalidate analytics cache", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	return res, nil
}

func (s *analyticsService) refreshOne(ctx context.Context, pub *models.PostPublication) error {
	fetcher, ok := s.fetchers[pub.Platform]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlatform, pub.Platform)
	}
	acc, err := s.accounts.GetByID(ctx, pub.SocialAccountID)
	if err != nil {
		return err
	}
	if acc == nil {
		return fmt.Errorf("%w: social account %d", ErrNotFound, pub.SocialAccountID)
	}

	m, err := fetcher.FetchMetrics(ctx, acc, pub.PlatformPostID)
	if err != nil {
		return err
	}
	m.PostID = pub.PostID
	m.Platform = pub.Platform
	m.EngagementRate = EngagementRate(m.Likes, m.Comments, m.Shares, m.Impressions)
	m.FetchedAt = s.now().UTC()
	return s.analytics.Upsert(ctx, m)
}
