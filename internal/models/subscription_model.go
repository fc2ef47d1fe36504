package models

import (
	"time"
)

const (
	PlanFree     = "FREE"
	PlanPro      = "PRO"
	PlanBusiness = "BUSINESS"
)

const SubscriptionStatusActive = "active"

type Subscription struct {
	ID                  int64     `db:"id" json:"id"`
	UserID              int64     `db:"user_id" json:"user_id"`
	SubscriptionID      string    `db:"subscription_id" json:"subscription_id"`
	Plan                string    `db:"plan" json:"plan"`
	SubscriptionEndDate time.Time `db:"subscription_end_date" json:"subscription_end_date"`
	Status              string    `db:"status" json:"status"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// ActivePlan falls back to the free plan once the subscription lapses.
func (s *Subscription) ActivePlan(now time.Time) string {
	if s == nil || s.Status != SubscriptionStatusActive || now.After(s.SubscriptionEndDate) {
		return PlanFree
	}
	return s.Plan
}
