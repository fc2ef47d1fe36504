package transfer

type SystemMetrics struct {
	Users                int64            `json:"users"`
	PostsByStatus        map[string]int64 `json:"posts_by_status"`
	PublicationsByStatus map[string]int64 `json:"publications_by_status"`
	AccountsByPlatform   map[string]int64 `json:"accounts_by_platform"`
	SubscriptionsByPlan  map[string]int64 `json:"subscriptions_by_plan"`
	PublishSuccessRate   float64          `json:"publish_success_rate"`
}

type AIModelRequest struct {
	Provider    string  `json:"provider"`
	ModelName   string  `json:"model_name"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Enabled     *bool   `json:"enabled"`
}
