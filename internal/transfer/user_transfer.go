package transfer

type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

type SettingsUpdate struct {
	PostingTime string `json:"posting_time"`
	Timezone    string `json:"timezone"`
	Category    string `json:"category"`
}

type ApiKeyCreation struct {
	Name string `json:"name"`
}
