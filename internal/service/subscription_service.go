package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/internal/repository"
	"github.com/Ghazanfar1991/syncrio/internal/transfer"
	"github.com/Ghazanfar1991/syncrio/pkg/logger"
	"go.uber.org/zap"
)

type SubscriptionService interface {
	HandleSubscription(ctx context.Context, payload *transfer.SubscriptionEvent) error
}

type subscriptionService struct {
	u repository.UserRepository
	s repository.SubscriptionRepository
}

func NewSubscriptionService(u repository.UserRepository, s repository.SubscriptionRepository) SubscriptionService {
	return &subscriptionService{
		u: u,
		s: s,
	}
}

// PlanFromProduct maps a billing product name onto a plan.
func PlanFromProduct(name string) string {
	n := strings.ToUpper(name)
	switch {
	case strings.Contains(n, models.PlanBusiness):
		return models.PlanBusiness
	case strings.Contains(n, models.PlanPro):
		return models.PlanPro
	default:
		return models.PlanFree
	}
}

func (s *subscriptionService) HandleSubscription(ctx context.Context, payload *transfer.SubscriptionEvent) error {
	switch payload.EventType {
	case "subscription.paid", "subscription.active", "subscription.canceled", "subscription.expired":
	default:
		logger.Log.Debug("ignoring payment event", zap.String("event", payload.EventType))
		return nil
	}

	email := payload.Object.Customer.Email
	if email == "" {
		return fmt.Errorf("%w: event without customer email", ErrInvalidInput)
	}

	user, exists, err := s.u.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("fetching user by email failed: %w", err)
	}

	var userID int64
	if exists {
		userID = user.ID
	} else {
		userID, err = s.u.Create(ctx, nil, &models.User{Email: email, Name: payload.Object.Customer.Name})
		if err != nil {
			return err
		}
	}

	sub := &models.Subscription{
		UserID:              userID,
		SubscriptionID:      payload.Object.ID,
		Plan:                PlanFromProduct(payload.Object.Product.Name),
		SubscriptionEndDate: payload.Object.CurrentPeriodEndDate,
		Status:              payload.Object.Status,
	}

	_, found, err := s.s.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if found {
		return s.s.UpdateSubscription(ctx, sub)
	}
	_, err = s.s.Create(ctx, sub)
	return err
}
