package transfer

// UsageInfo reports the current month. A negative PostsLimit means unlimited.
type UsageInfo struct {
	Period         string `json:"period"`
	Plan           string `json:"plan"`
	PostsCreated   int    `json:"posts_created"`
	PostsPublished int    `json:"posts_published"`
	AIGenerations  int    `json:"ai_generations"`
	PostsLimit     int    `json:"posts_limit"`
}
