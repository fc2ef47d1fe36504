package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/Ghazanfar1991/syncrio/configs"
	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/internal/repository"
	"github.com/Ghazanfar1991/syncrio/internal/transfer"
	"github.com/Ghazanfar1991/syncrio/pkg/utils"
	"golang.org/x/oauth2"
)

const (
	instagramGraphVersion   = "v21.0"
	instagramMaxStatusPolls = 30
	instagramPollInterval   = 5 * time.Second
)

type instagramService struct {
	platformBase
	cfg      config.OAuthApp
	oauth    *oauth2.Config
	graphURL string
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewInstagramService(
	cfg config.OAuthApp,
	cipher *utils.TokenCipher,
	accounts repository.SocialAccountRepository,
	client *http.Client) Platform {
	return &instagramService{
		platformBase: newPlatformBase(models.PlatformInstagram, client, cipher, accounts),
		cfg:          cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			// Instagram expects a comma separated scope list.
			Scopes: []string{"instagram_business_basic,instagram_business_content_publish,instagram_business_manage_insights"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   "https://www.instagram.com/oauth/authorize",
				TokenURL:  "https://api.instagram.com/oauth/access_token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		graphURL: "https://graph.instagram.com",
		sleep:    sleepContext,
	}
}

func (s *instagramService) AuthURL(ctx context.Context, state string) (string, error) {
	return s.oauth.AuthCodeURL(state), nil
}

// Callback swaps the code for a short lived token, then for a 60 day token.
func (s *instagramService) Callback(ctx context.Context, code, state string, userID int64) error {
	if code == "" {
		return fmt.Errorf("%w: missing code", ErrInvalidInput)
	}

	short, err := s.oauth.Exchange(s.oauthContext(ctx), code)
	if err != nil {
		return s.errorf("exchange code: %w", err)
	}

	q := url.Values{
		"grant_type":    {"ig_exchange_token"},
		"client_secret": {s.cfg.ClientSecret},
		"access_token":  {short.AccessToken},
	}
	long, err := s.token(ctx, "/access_token?"+q.Encode())
	if err != nil {
		return err
	}

	q = url.Values{
		"fields":       {"id,username,name,profile_picture_url"},
		"access_token": {long.AccessToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.graphURL+"/me?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	var info transfer.InstagramUserInfo
	if _, err := s.do(nil, req, &info); err != nil {
		return err
	}

	// The long lived token refreshes itself, so it doubles as the refresh token.
	return s.saveAccount(ctx, &models.SocialAccount{
		UserID:          userID,
		Platform:        models.PlatformInstagram,
		AccountID:       info.UserID,
		AccountName:     info.Name,
		AccountUsername: info.Username,
		ProfilePicture:  info.ProfilePicture,
		AccessToken:     long.AccessToken,
		RefreshToken:    long.AccessToken,
		TokenExpiresAt:  GetExpiresAt(long.ExpiresIn),
	})
}

func (s *instagramService) Refresh(ctx context.Context, acc *models.SocialAccount) error {
	current, err := s.accessToken(acc)
	if err != nil {
		return err
	}

	q := url.Values{"grant_type": {"ig_refresh_token"}, "access_token": {current}}
	res, err := s.token(ctx, "/refresh_access_token?"+q.Encode())
	if err != nil {
		return err
	}

	return s.storeToken(ctx, acc.ID, &models.SocialAccount{
		AccessToken:    res.AccessToken,
		RefreshToken:   res.AccessToken,
		TokenExpiresAt: GetExpiresAt(res.ExpiresIn),
	})
}

func (s *instagramService) token(ctx context.Context, path string) (*transfer.TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.graphURL+path, nil)
	if err != nil {
		return nil, err
	}
	var res transfer.TokenResponse
	if _, err := s.do(nil, req, &res); err != nil {
		return nil, err
	}
	if res.AccessToken == "" {
		return nil, s.errorf("token response without access token")
	}
	return &res, nil
}

// Publish creates a media container (single image, reel or carousel) and publishes it.
func (s *instagramService) Publish(ctx context.Context, post *models.Post, acc *models.SocialAccount) (string, error) {
	token, err := s.accessToken(acc)
	if err != nil {
		return "", err
	}

	var containerID string
	switch len(post.MediaURLs) {
	case 0:
		return "", s.errorf("a post needs at least one image or video")
	case 1:
		containerID, err = s.createContainer(ctx, acc.AccountID, token, mediaFields(post.MediaURLs[0], false, post.Content))
	default:
		containerID, err = s.createCarousel(ctx, acc.AccountID, token, post)
	}
	if err != nil {
		return "", err
	}

	form := url.Values{"creation_id": {containerID}, "access_token": {token}}
	req, err := newFormRequest(ctx, s.endpoint(acc.AccountID, "media_publish"), form)
	if err != nil {
		return "", err
	}
	var res transfer.InstagramContainer
	if _, err := s.do(nil, req, &res); err != nil {
		return "", err
	}
	if res.ID == "" {
		return "", s.errorf("media published without id")
	}
	return res.ID, nil
}

func (s *instagramService) createCarousel(ctx context.Context, accountID, token string, post *models.Post) (string, error) {
	children := make([]string, 0, len(post.MediaURLs))
	for _, u := range post.MediaURLs {
		id, err := s.createContainer(ctx, accountID, token, mediaFields(u, true, ""))
		if err != nil {
			return "", err
		}
		children = append(children, id)
	}

	return s.createContainer(ctx, accountID, token, url.Values{
		"media_type": {"CAROUSEL"},
		"caption":    {post.Content},
		"children":   {strings.Join(children, ",")},
	})
}

func mediaFields(mediaURL string, carouselItem bool, caption string) url.Values {
	form := url.Values{}
	if models.IsVideoURL(mediaURL) {
		form.Set("video_url", mediaURL)
		if carouselItem {
			form.Set("media_type", "VIDEO")
		} else {
			form.Set("media_type", "REELS")
		}
	} else {
		form.Set("image_url", mediaURL)
	}
	if carouselItem {
		form.Set("is_carousel_item", "true")
	}
	if caption != "" {
		form.Set("caption", caption)
	}
	return form
}

// createContainer posts the container and, for videos and carousels, waits until it is FINISHED.
func (s *instagramService) createContainer(ctx context.Context, accountID, token string, form url.Values) (string, error) {
	form.Set("access_token", token)
	req, err := newFormRequest(ctx, s.endpoint(accountID, "media"), form)
	if err != nil {
		return "", err
	}
	var res transfer.InstagramContainer
	if _, err := s.do(nil, req, &res); err != nil {
		return "", err
	}
	if res.ID == "" {
		return "", s.errorf("no container id returned")
	}

	if form.Get("image_url") != "" {
		return res.ID, nil
	}
	return res.ID, s.awaitContainer(ctx, res.ID, token)
}

func (s *instagramService) awaitContainer(ctx context.Context, containerID, token string) error {
	q := url.Values{"fields": {"status_code"}, "access_token": {token}}
	for i := 0; i < instagramMaxStatusPolls; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.graphURL+"/"+instagramGraphVersion+"/"+containerID+"?"+q.Encode(), nil)
		if err != nil {
			return err
		}
		var res transfer.InstagramContainer
		if _, err := s.do(nil, req, &res); err != nil {
			return err
		}

		switch res.StatusCode {
		case "FINISHED", "PUBLISHED":
			return nil
		case "ERROR", "EXPIRED":
			return s.errorf("container %s ended in %s", containerID, res.StatusCode)
		}
		if err := s.sleep(ctx, instagramPollInterval); err != nil {
			return err
		}
	}
	return s.errorf("container %s not ready after %d checks", containerID, instagramMaxStatusPolls)
}

func (s *instagramService) FetchMetrics(ctx context.Context, acc *models.SocialAccount, platformPostID string) (*models.PostAnalytics, error) {
	token, err := s.accessToken(acc)
	if err != nil {
		return nil, err
	}

	q := url.Values{"metric": {"reach,likes,comments,shares,views"}, "access_token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint(platformPostID, "insights")+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var res transfer.InstagramInsights
	if _, err := s.do(nil, req, &res); err != nil {
		return nil, err
	}

	a := &models.PostAnalytics{Platform: models.PlatformInstagram}
	for _, m := range res.Data {
		if len(m.Values) == 0 {
			continue
		}
		v := m.Values[0].Value
		switch m.Name {
		case "reach":
			a.Impressions = v
		case "likes":
			a.Likes = v
		case "comments":
			a.Comments = v
		case "shares":
			a.Shares = v
		case "views":
			a.Views = v
		}
	}
	return a, nil
}

func (s *instagramService) endpoint(id, edge string) string {
	return fmt.Sprintf("%s/%s/%s/%s", s.graphURL, instagramGraphVersion, id, edge)
}
