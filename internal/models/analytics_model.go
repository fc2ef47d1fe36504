package models

import "time"

// PostAnalytics is the latest metrics snapshot of a post on one platform.
type PostAnalytics struct {
	ID             int64     `db:"id" json:"id"`
	PostID         int64     `db:"post_id" json:"post_id"`
	Platform       string    `db:"platform" json:"platform"`
	Impressions    int64     `db:"impressions" json:"impressions"`
	Likes          int64     `db:"likes" json:"likes"`
	Comments       int64     `db:"comments" json:"comments"`
	Shares         int64     `db:"shares" json:"shares"`
	Clicks         int64     `db:"clicks" json:"clicks"`
	Views          int64     `db:"views" json:"views"`
	EngagementRate float64   `db:"engagement_rate" json:"engagement_rate"`
	FetchedAt      time.Time `db:"fetched_at" json:"fetched_at"`

	// Filled by queries that join the post.
	PostTitle   string `db:"post_title" json:"-"`
	PostContent string `db:"post_content" json:"-"`
}
