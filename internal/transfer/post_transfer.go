package transfer

import (
	"time"

	"github.com/Ghazanfar1991/syncrio/internal/models"
)

// PostCreation is accepted as JSON or as multipart form fields.
// In forms, social_account_ids is a JSON array string.
type PostCreation struct {
	Title            string     `json:"title" form:"title"`
	Content          string     `json:"content" form:"content"`
	MediaURLs        []string   `json:"media_urls" form:"-"`
	SocialAccountIDs []int64    `json:"social_account_ids" form:"-"`
	ScheduledAt      *time.Time `json:"scheduled_at" form:"-"`
	PublishNow       bool       `json:"publish_now" form:"publish_now"`
}

// PostUpdate carries the editable fields. Nil fields are left unchanged.
type PostUpdate struct {
	Title            *string    `json:"title"`
	Content          *string    `json:"content"`
	MediaURLs        []string   `json:"media_urls"`
	SocialAccountIDs []int64    `json:"social_account_ids"`
	ScheduledAt      *time.Time `json:"scheduled_at"`
}

type ScheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

type PostDetail struct {
	*models.Post
	Publications []*models.PostPublication `json:"publications"`
	Analytics    []*models.PostAnalytics   `json:"analytics,omitempty"`
}
