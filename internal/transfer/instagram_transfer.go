package transfer

type InstagramUserInfo struct {
	UserID         string `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture_url"`
}

// InstagramContainer is the reply of the media container endpoints.
type InstagramContainer struct {
	ID         string `json:"id"`
	StatusCode string `json:"status_code"`
}

type InstagramInsights struct {
	Data []struct {
		Name   string `json:"name"`
		Values []struct {
			Value int64 `json:"value"`
		} `json:"values"`
	} `json:"data"`
}
