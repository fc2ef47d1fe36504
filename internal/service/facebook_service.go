package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	config "github.com/Ghazanfar1991/syncrio/configs"
	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/internal/repository"
	"github.com/Ghazanfar1991/syncrio/internal/transfer"
	"github.com/Ghazanfar1991/syncrio/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

const facebookGraphVersion = "v21.0"

type facebookService struct {
	platformBase
	cfg      config.OAuthApp
	oauth    *oauth2.Config
	graphURL string
}

func NewFacebookService(
	cfg config.OAuthApp,
	cipher *utils.TokenCipher,
	accounts repository.SocialAccountRepository,
	client *http.Client) Platform {
	return &facebookService{
		platformBase: newPlatformBase(models.PlatformFacebook, client, cipher, accounts),
		cfg:          cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{"pages_show_list", "pages_manage_posts", "pages_read_engagement", "read_insights"},
			Endpoint:     facebook.Endpoint,
		},
		graphURL: "https://graph.facebook.com/" + facebookGraphVersion,
	}
}

func (s *facebookService) AuthURL(ctx context.Context, state string) (string, error) {
	return s.oauth.AuthCodeURL(state), nil
}

// Callback links the first page the user manages. Page tokens obtained from a
// long lived user token do not expire.
func (s *facebookService) Callback(ctx context.Context, code, state string, userID int64) error {
	if code == "" {
		return fmt.Errorf("%w: missing code", ErrInvalidInput)
	}

	short, err := s.oauth.Exchange(s.oauthContext(ctx), code)
	if err != nil {
		return s.errorf("exchange code: %w", err)
	}

	q := url.Values{
		"grant_type":        {"fb_exchange_token"},
		"client_id":         {s.cfg.ClientID},
		"client_secret":     {s.cfg.ClientSecret},
		"fb_exchange_token": {short.AccessToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.graphURL+"/oauth/access_token?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	var long transfer.TokenResponse
	if _, err := s.do(nil, req, &long); err != nil {
		return err
	}

	q = url.Values{"fields": {"id,name,access_token,picture"}, "access_token": {long.AccessToken}}
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, s.graphURL+"/me/accounts?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	var pages transfer.FacebookPages
	if _, err := s.do(nil, req, &pages); err != nil {
		return err
	}
	if len(pages.Data) == 0 {
		return fmt.Errorf("%w: no facebook page is managed by this account", ErrInvalidInput)
	}
	page := pages.Data[0]

	return s.saveAccount(ctx, &models.SocialAccount{
		UserID:          userID,
		Platform:        models.PlatformFacebook,
		AccountID:       page.ID,
		AccountName:     page.Name,
		AccountUsername: page.Name,
		ProfilePicture:  page.Picture.Data.URL,
		AccessToken:     page.AccessToken,
		TokenExpiresAt:  farFuture,
	})
}

func (s *facebookService) Refresh(ctx context.Context, acc *models.SocialAccount) error {
	return nil
}

// Publish uses /feed for text, /photos for one image, /videos for a video and
// unpublished photos attached to a feed post for several images.
func (s *facebookService) Publish(ctx context.Context, post *models.Post, acc *models.SocialAccount) (string, error) {
	token, err := s.accessToken(acc)
	if err != nil {
		return "", err
	}
	page := acc.AccountID

	var video string
	var images []string
	for _, u := range post.MediaURLs {
		if models.IsVideoURL(u) {
			video = u
		} else {
			images = append(images, u)
		}
	}

	switch {
	case video != "":
		return s.post(ctx, page+"/videos", url.Values{"file_url": {video}, "description": {post.Content}}, token)
	case len(images) == 1:
		return s.post(ctx, page+"/photos", url.Values{"url": {images[0]}, "caption": {post.Content}}, token)
	case len(images) > 1:
		form := url.Values{"message": {post.Content}}
		for i, img := range images {
			id, err := s.post(ctx, page+"/photos", url.Values{"url": {img}, "published": {"false"}}, token)
			if err != nil {
				return "", err
			}
			ref, _ := json.Marshal(map[string]string{"media_fbid": id})
			form.Set(fmt.Sprintf("attached_media[%d]", i), string(ref))
		}
		return s.post(ctx, page+"/feed", form, token)
	default:
		return s.post(ctx, page+"/feed", url.Values{"message": {post.Content}}, token)
	}
}

func (s *facebookService) post(ctx context.Context, path string, form url.Values, token string) (string, error) {
	form.Set("access_token", token)
	req, err := newFormRequest(ctx, s.graphURL+"/"+path, form)
	if err != nil {
		return "", err
	}
	var res transfer.FacebookPostResult
	if _, err := s.do(nil, req, &res); err != nil {
		return "", err
	}
	if res.PostID != "" {
		return res.PostID, nil
	}
	if res.ID == "" {
		return "", s.errorf("%s returned no id", path)
	}
	return res.ID, nil
}

func (s *facebookService) FetchMetrics(ctx context.Context, acc *models.SocialAccount, platformPostID string) (*models.PostAnalytics, error) {
	token, err := s.accessToken(acc)
	if err != nil {
		return nil, err
	}

	q := url.Values{
		"fields":       {"shares,reactions.summary(true).limit(0),comments.summary(true).limit(0),insights.metric(post_impressions,post_clicks)"},
		"access_token": {token},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.graphURL+"/"+platformPostID+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var res transfer.FacebookPostStats
	if _, err := s.do(nil, req, &res); err != nil {
		return nil, err
	}

	a := &models.PostAnalytics{
		Platform: models.PlatformFacebook,
		Likes:    res.Reactions.Summary.TotalCount,
		Comments: res.Comments.Summary.TotalCount,
		Shares:   res.Shares.Count,
	}
	for _, m := range res.Insights.Data {
		if len(m.Values) == 0 {
			continue
		}
		switch m.Name {
		case "post_impressions":
			a.Impressions = m.Values[0].Value
		case "post_clicks":
			a.Clicks = m.Values[0].Value
		}
	}
	return a, nil
}
