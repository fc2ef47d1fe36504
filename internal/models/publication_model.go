package models

import "time"

const (
	PublicationStatusPending   = "PENDING"
	PublicationStatusPublished = "PUBLISHED"
	PublicationStatusFailed    = "FAILED"
)

// PostPublication is one attempt to publish a post to one connected account.
type PostPublication struct {
	ID              int64      `db:"id" json:"id"`
	PostID          int64      `db:"post_id" json:"post_id"`
	SocialAccountID int64      `db:"social_account_id" json:"social_account_id"`
	Platform        string     `db:"platform" json:"platform"`
	Status          string     `db:"status" json:"status"`
	PlatformPostID  string     `db:"platform_post_id" json:"platform_post_id,omitempty"`
	ErrorMessage    string     `db:"error_message" json:"error_message,omitempty"`
	PublishedAt     *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}
