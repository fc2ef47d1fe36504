package models

import "time"

type UsageCounter string

const (
	UsagePostsCreated   UsageCounter = "posts_created"
	UsagePostsPublished UsageCounter = "posts_published"
	UsageAIGenerations  UsageCounter = "ai_generations"
)

// UsageTracking counts billable actions of one user in one calendar month ("2006-01").
type UsageTracking struct {
	ID             int64     `db:"id" json:"-"`
	UserID         int64     `db:"user_id" json:"user_id"`
	Period         string    `db:"period" json:"period"`
	PostsCreated   int       `db:"posts_created" json:"posts_created"`
	PostsPublished int       `db:"posts_published" json:"posts_published"`
	AIGenerations  int       `db:"ai_generations" json:"ai_generations"`
	CreatedAt      time.Time `db:"created_at" json:"-"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

func UsagePeriod(t time.Time) string {
	return t.UTC().Format("2006-01")
}
