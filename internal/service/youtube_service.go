package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	config "github.com/Ghazanfar1991/syncrio/configs"
	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/internal/repository"
	"github.com/Ghazanfar1991/syncrio/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// youtubeCategoryPeopleBlogs is the default category for uploads.
const youtubeCategoryPeopleBlogs = "22"

// Revoker is implemented by adapters that can invalidate tokens when an account is removed.
type Revoker interface {
	Revoke(ctx context.Context, acc *models.SocialAccount) error
}

type youtubeService struct {
	platformBase
	oauth     *oauth2.Config
	endpoint  string
	revokeURL string
}

func NewYoutubeService(
	cfg config.OAuthApp,
	cipher *utils.TokenCipher,
	accounts repository.SocialAccountRepository,
	client *http.Client) Platform {
	return &youtubeService{
		platformBase: newPlatformBase(models.PlatformYouTube, client, cipher, accounts),
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes: []string{
				youtube.YoutubeUploadScope,
				youtube.YoutubeReadonlyScope,
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		revokeURL: "https://oauth2.googleapis.com/revoke",
	}
}

// AuthURL asks for offline access so Google hands out a refresh token.
func (s *youtubeService) AuthURL(ctx context.Context, state string) (string, error) {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

func (s *youtubeService) Callback(ctx context.Context, code, state string, userID int64) error {
	if code == "" {
		return fmt.Errorf("%w: missing code", ErrInvalidInput)
	}

	token, err := s.oauth.Exchange(s.oauthContext(ctx), code)
	if err != nil {
		return s.errorf("exchange code: %w", err)
	}
	if token.RefreshToken == "" {
		return s.errorf("google did not return a refresh token")
	}

	svc, err := s.youtube(ctx, token.AccessToken)
	if err != nil {
		return err
	}
	res, err := svc.Channels.List([]string{"snippet"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return s.errorf("list channels: %w", err)
	}
	if len(res.Items) == 0 {
		return fmt.Errorf("%w: the google account has no youtube channel", ErrInvalidInput)
	}
	ch := res.Items[0]

	acc := &models.SocialAccount{
		UserID:         userID,
		Platform:       models.PlatformYouTube,
		AccountID:      ch.Id,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		TokenExpiresAt: tokenExpiry(token.Expiry),
	}
	if ch.Snippet != nil {
		acc.AccountName = ch.Snippet.Title
		acc.AccountUsername = ch.Snippet.CustomUrl
		if ch.Snippet.Thumbnails != nil && ch.Snippet.Thumbnails.Default != nil {
			acc.ProfilePicture = ch.Snippet.Thumbnails.Default.Url
		}
	}
	return s.saveAccount(ctx, acc)
}

func (s *youtubeService) Refresh(ctx context.Context, acc *models.SocialAccount) error {
	refresh, err := s.refreshToken(acc)
	if err != nil {
		return err
	}

	token, err := s.oauth.TokenSource(s.oauthContext(ctx), &oauth2.Token{RefreshToken: refresh}).Token()
	if err != nil {
		return s.errorf("refresh token: %w", err)
	}

	return s.storeToken(ctx, acc.ID, &models.SocialAccount{
		AccessToken:    token.AccessToken,
		TokenExpiresAt: tokenExpiry(token.Expiry),
	})
}

// Publish streams the first video of the post from its URL into Videos.Insert.
func (s *youtubeService) Publish(ctx context.Context, post *models.Post, acc *models.SocialAccount) (string, error) {
	var videoURL string
	for _, u := range post.MediaURLs {
		if models.IsVideoURL(u) {
			videoURL = u
			break
		}
	}
	if videoURL == "" {
		return "", s.errorf("a post needs a video")
	}

	token, err := s.accessToken(acc)
	if err != nil {
		return "", err
	}
	svc, err := s.youtube(ctx, token)
	if err != nil {
		return "", err
	}

	media, err := s.fetchMedia(ctx, videoURL)
	if err != nil {
		return "", err
	}
	defer media.Body.Close()

	title := post.Title
	if title == "" {
		title = truncate(post.Content, 100)
	}
	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       title,
			Description: post.Content,
			CategoryId:  youtubeCategoryPeopleBlogs,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: "public",
		},
	}

	res, err := svc.Videos.Insert([]string{"snippet", "status"}, video).Media(media.Body).Context(ctx).Do()
	if err != nil {
		return "", s.errorf("upload video: %w", err)
	}
	return res.Id, nil
}

func (s *youtubeService) FetchMetrics(ctx context.Context, acc *models.SocialAccount, platformPostID string) (*models.PostAnalytics, error) {
	token, err := s.accessToken(acc)
	if err != nil {
		return nil, err
	}
	svc, err := s.youtube(ctx, token)
	if err != nil {
		return nil, err
	}

	res, err := svc.Videos.List([]string{"statistics"}).Id(platformPostID).Context(ctx).Do()
	if err != nil {
		return nil, s.errorf("video statistics: %w", err)
	}
	if len(res.Items) == 0 || res.Items[0].Statistics == nil {
		return nil, s.errorf("video %s not found", platformPostID)
	}

	st := res.Items[0].Statistics
	return &models.PostAnalytics{
		Platform:    models.PlatformYouTube,
		Impressions: int64(st.ViewCount),
		Views:       int64(st.ViewCount),
		Likes:       int64(st.LikeCount),
		Comments:    int64(st.CommentCount),
	}, nil
}

func (s *youtubeService) Revoke(ctx context.Context, acc *models.SocialAccount) error {
	token, err := s.accessToken(acc)
	if err != nil {
		return err
	}
	req, err := newFormRequest(ctx, s.revokeURL, url.Values{"token": {token}})
	if err != nil {
		return err
	}
	_, err = s.do(nil, req, nil)
	return err
}

func (s *youtubeService) youtube(ctx context.Context, accessToken string) (*youtube.Service, error) {
	client := oauth2.NewClient(s.oauthContext(ctx), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint))
	}
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, s.errorf("create youtube client: %w", err)
	}
	return svc, nil
}
