package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	config "github.com/Ghazanfar1991/syncrio/configs"
	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/internal/repository"
	"github.com/Ghazanfar1991/syncrio/internal/transfer"
	"github.com/Ghazanfar1991/syncrio/pkg/utils"
	"golang.org/x/oauth2"
)

const (
	linkedInImageRecipe = "urn:li:digitalmediaRecipe:feedshare-image"
	linkedInVideoRecipe = "urn:li:digitalmediaRecipe:feedshare-video"
)

type linkedInService struct {
	platformBase
	oauth  *oauth2.Config
	apiURL string
}

func NewLinkedInService(
	cfg config.OAuthApp,
	cipher *utils.TokenCipher,
	accounts repository.SocialAccountRepository,
	client *http.Client) Platform {
	return &linkedInService{
		platformBase: newPlatformBase(models.PlatformLinkedIn, client, cipher, accounts),
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{"openid", "profile", "email", "w_member_social"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   "https://www.linkedin.com/oauth/v2/authorization",
				TokenURL:  "https://www.linkedin.com/oauth/v2/accessToken",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiURL: "https://api.linkedin.com/v2",
	}
}

func (s *linkedInService) AuthURL(ctx context.Context, state string) (string, error) {
	return s.oauth.AuthCodeURL(state), nil
}

func (s *linkedInService) Callback(ctx context.Context, code, state string, userID int64) error {
	if code == "" {
		return fmt.Errorf("%w: missing code", ErrInvalidInput)
	}

	token, err := s.oauth.Exchange(s.oauthContext(ctx), code)
	if err != nil {
		return s.errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/userinfo", nil)
	if err != nil {
		return err
	}
	var info transfer.LinkedInUserInfo
	if _, err := s.do(nil, withBearer(req, token.AccessToken), &info); err != nil {
		return err
	}

	return s.saveAccount(ctx, &models.SocialAccount{
		UserID:          userID,
		Platform:        models.PlatformLinkedIn,
		AccountID:       info.Sub,
		AccountName:     info.Name,
		AccountUsername: info.Email,
		ProfilePicture:  info.Picture,
		AccessToken:     token.AccessToken,
		RefreshToken:    token.RefreshToken,
		TokenExpiresAt:  tokenExpiry(token.Expiry),
	})
}

// Refresh needs a refresh token, which LinkedIn only issues to some apps.
// Without one the account is marked expired and has to be reconnected.
func (s *linkedInService) Refresh(ctx context.Context, acc *models.SocialAccount) error {
	refresh, err := s.refreshToken(acc)
	if err != nil {
		return err
	}
	if refresh == "" {
		if err := s.accounts.SetStatus(ctx, acc.ID, models.AccountStatusExpired); err != nil {
			return err
		}
		return s.errorf("account %d must be reconnected", acc.ID)
	}

	token, err := s.oauth.TokenSource(s.oauthContext(ctx), &oauth2.Token{RefreshToken: refresh}).Token()
	if err != nil {
		return s.errorf("refresh token: %w", err)
	}

	return s.storeToken(ctx, acc.ID, &models.SocialAccount{
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		TokenExpiresAt: tokenExpiry(token.Expiry),
	})
}

func (s *linkedInService) Publish(ctx context.Context, post *models.Post, acc *models.SocialAccount) (string, error) {
	token, err := s.accessToken(acc)
	if err != nil {
		return "", err
	}
	author := "urn:li:person:" + acc.AccountID

	category := "NONE"
	var media []map[string]interface{}
	for _, u := range post.MediaURLs {
		recipe, kind := linkedInImageRecipe, "IMAGE"
		if models.IsVideoURL(u) {
			recipe, kind = linkedInVideoRecipe, "VIDEO"
		}
		asset, err := s.uploadAsset(ctx, token, author, recipe, u)
		if err != nil {
			return "", err
		}
		category = kind
		media = append(media, map[string]interface{}{
			"status": "READY",
			"media":  asset,
		})
	}

	content := map[string]interface{}{
		"shareCommentary":    map[string]string{"text": post.Content},
		"shareMediaCategory": category,
	}
	if len(media) > 0 {
		content["media"] = media
	}
	payload := map[string]interface{}{
		"author":         author,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": content,
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	req, err := newJSONRequest(ctx, http.MethodPost, s.apiURL+"/ugcPosts", payload)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	var res struct {
		ID string `json:"id"`
	}
	header, err := s.do(nil, withBearer(req, token), &res)
	if err != nil {
		return "", err
	}
	if id := header.Get("X-RestLi-Id"); id != "" {
		return id, nil
	}
	if res.ID == "" {
		return "", s.errorf("post created without id")
	}
	return res.ID, nil
}

// uploadAsset registers an upload slot and PUTs the media bytes into it.
func (s *linkedInService) uploadAsset(ctx context.Context, token, owner, recipe, mediaURL string) (string, error) {
	payload := map[string]interface{}{
		"registerUploadRequest": map[string]interface{}{
			"recipes": []string{recipe},
			"owner":   owner,
			"serviceRelationships": []map[string]string{{
				"relationshipType": "OWNER",
				"identifier":       "urn:li:userGeneratedContent",
			}},
		},
	}
	req, err := newJSONRequest(ctx, http.MethodPost, s.apiURL+"/assets?action=registerUpload", payload)
	if err != nil {
		return "", err
	}
	var reg transfer.LinkedInRegisterUpload
	if _, err := s.do(nil, withBearer(req, token), &reg); err != nil {
		return "", err
	}
	uploadURL := reg.Value.UploadMechanism.Upload.UploadURL
	if uploadURL == "" || reg.Value.Asset == "" {
		return "", s.errorf("register upload returned no upload url")
	}

	data, contentType, err := s.readMedia(ctx, mediaURL)
	if err != nil {
		return "", err
	}
	put, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	if contentType != "" {
		put.Header.Set("Content-Type", contentType)
	}
	if _, err := s.do(nil, withBearer(put, token), nil); err != nil {
		return "", err
	}
	return reg.Value.Asset, nil
}

func (s *linkedInService) FetchMetrics(ctx context.Context, acc *models.SocialAccount, platformPostID string) (*models.PostAnalytics, error) {
	token, err := s.accessToken(acc)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/socialActions/"+url.PathEscape(platformPostID), nil)
	if err != nil {
		return nil, err
	}
	var res transfer.LinkedInSocialActions
	if _, err := s.do(nil, withBearer(req, token), &res); err != nil {
		return nil, err
	}

	return &models.PostAnalytics{
		Platform: models.PlatformLinkedIn,
		Likes:    res.LikesSummary.TotalLikes,
		Comments: res.CommentsSummary.AggregatedTotalComments,
	}, nil
}
