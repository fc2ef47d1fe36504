package transfer

import "time"

// SubscriptionEvent is the payment provider's webhook body. Only the fields the
// billing sync reads are decoded.
type SubscriptionEvent struct {
	ID        string             `json:"id"`
	EventType string             `json:"eventType"`
	CreatedAt int64              `json:"created_at"`
	Object    SubscriptionObject `json:"object"`
}

type SubscriptionObject struct {
	ID                     string          `json:"id"`
	Status                 string          `json:"status"`
	Product                BillingProduct  `json:"product"`
	Customer               BillingCustomer `json:"customer"`
	CurrentPeriodStartDate time.Time       `json:"current_period_start_date"`
	CurrentPeriodEndDate   time.Time       `json:"current_period_end_date"`
	CanceledAt             *time.Time      `json:"canceled_at"`
}

type BillingProduct struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	BillingPeriod string `json:"billing_period"`
}

type BillingCustomer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
