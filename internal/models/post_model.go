package models

import (
	"path"
	"strings"
	"time"

	"github.com/lib/pq"
)

const (
	PostStatusDraft     = "DRAFT"
	PostStatusScheduled = "SCHEDULED"
	PostStatusPublished = "PUBLISHED"
	PostStatusFailed    = "FAILED"
	PostStatusApproved  = "APPROVED"
)

type Post struct {
	ID          int64          `db:"id" json:"id"`
	UserID      int64          `db:"user_id" json:"user_id"`
	Title       string         `db:"title" json:"title"`
	Content     string         `db:"content" json:"content"`
	MediaURLs   pq.StringArray `db:"media_urls" json:"media_urls"`
	Status      string         `db:"status" json:"status"`
	ScheduledAt *time.Time     `db:"scheduled_at" json:"scheduled_at,omitempty"`
	PublishedAt *time.Time     `db:"published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// postTransitions lists the statuses a post may move to by user action.
// PUBLISHED and FAILED are only reached through the publisher and are terminal.
var postTransitions = map[string][]string{
	PostStatusDraft:     {PostStatusScheduled, PostStatusApproved},
	PostStatusApproved:  {PostStatusScheduled, PostStatusDraft},
	PostStatusScheduled: {PostStatusDraft, PostStatusScheduled},
}

func CanTransition(from, to string) bool {
	for _, s := range postTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsEditable reports whether the post has not been handed to the publisher yet.
func (p *Post) IsEditable() bool {
	_, ok := postTransitions[p.Status]
	return ok
}

type MediaAsset struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	FileName  string    `db:"file_name" json:"file_name"`
	FileType  string    `db:"file_type" json:"file_type"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	FileURL   string    `db:"file_url" json:"file_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".m4v": {}, ".webm": {},
}

// IsVideoURL guesses the media kind from the URL path extension.
func IsVideoURL(u string) bool {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	_, ok := videoExtensions[strings.ToLower(path.Ext(u))]
	return ok
}
