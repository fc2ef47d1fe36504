package models

import "time"

// Settings are per-user defaults applied when composing posts.
type Settings struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	PostingTime string    `db:"posting_time" json:"posting_time"`
	Timezone    string    `db:"timezone" json:"timezone"`
	Category    string    `db:"category" json:"category"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
