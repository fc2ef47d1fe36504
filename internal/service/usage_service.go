package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/internal/repository"
	"github.com/Ghazanfar1991/syncrio/internal/transfer"
)

// Unlimited marks plans without a monthly post cap.
const Unlimited = -1

var planPostLimits = map[string]int{
	models.PlanFree:     10,
	models.PlanPro:      100,
	models.PlanBusiness: Unlimited,
}

func PostLimit(plan string) int {
	if limit, ok := planPostLimits[plan]; ok {
		return limit
	}
	return planPostLimits[models.PlanFree]
}

type UsageService interface {
	CheckPostLimit(ctx context.Context, userID int64) error
	Record(ctx context.Context, userID int64, counter models.UsageCounter) error
	Info(ctx context.Context, userID int64) (*transfer.UsageInfo, error)
}

type usageService struct {
	usage repository.UsageRepository
	subs  repository.SubscriptionRepository
	now   func() time.Time
}

func NewUsageService(usage repository.UsageRepository, subs repository.SubscriptionRepository) UsageService {
	return &usageService{usage: usage, subs: subs, now: time.Now}
}

// CheckPostLimit returns ErrLimitReached when the user has used up this month's posts.
func (s *usageService) CheckPostLimit(ctx context.Context, userID int64) error {
	info, err := s.Info(ctx, userID)
	if err != nil {
		return err
	}
	if info.PostsLimit != Unlimited && info.PostsCreated >= info.PostsLimit {
		return fmt.Errorf("%w: %d of %d posts used on the %s plan", ErrLimitReached, info.PostsCreated, info.PostsLimit, info.Plan)
	}
	return nil
}

func (s *usageService) Record(ctx context.Context, userID int64, counter models.UsageCounter) error {
	return s.usage.Increment(ctx, userID, models.UsagePeriod(s.now()), counter, 1)
}

func (s *usageService) Info(ctx context.Context, userID int64) (*transfer.UsageInfo, error) {
	now := s.now()

	sub, _, err := s.subs.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	plan := sub.ActivePlan(now)

	usage, err := s.usage.Get(ctx, userID, models.UsagePeriod(now))
	if err != nil {
		return nil, err
	}

	return &transfer.UsageInfo{
		Period:         usage.Period,
		Plan:           plan,
		PostsCreated:   usage.PostsCreated,
		PostsPublished: usage.PostsPublished,
		AIGenerations:  usage.AIGenerations,
		PostsLimit:     PostLimit(plan),
	}, nil
}
