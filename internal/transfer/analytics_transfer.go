package transfer

type MetricsSummary struct {
	Impressions    int64   `json:"impressions"`
	Likes          int64   `json:"likes"`
	Comments       int64   `json:"comments"`
	Shares         int64   `json:"shares"`
	Clicks         int64   `json:"clicks"`
	Views          int64   `json:"views"`
	EngagementRate float64 `json:"engagement_rate"`
}

type TopPost struct {
	PostID         int64   `json:"post_id"`
	Platform       string  `json:"platform"`
	Title          string  `json:"title"`
	Content        string  `json:"content"`
	Impressions    int64   `json:"impressions"`
	EngagementRate float64 `json:"engagement_rate"`
}

type AnalyticsOverview struct {
	Days       int                       `json:"days"`
	Totals     MetricsSummary            `json:"totals"`
	ByPlatform map[string]MetricsSummary `json:"by_platform"`
	TopPosts   []TopPost                 `json:"top_posts"`
}

type RefreshResult struct {
	Refreshed int `json:"refreshed"`
	Failed    int `json:"failed"`
}
