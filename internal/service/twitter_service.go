package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	config "github.com/Ghazanfar1991/syncrio/configs"
	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/internal/repository"
	"github.com/Ghazanfar1991/syncrio/internal/transfer"
	"github.com/Ghazanfar1991/syncrio/pkg/utils"
	"github.com/dghubble/oauth1"
	oauth1twitter "github.com/dghubble/oauth1/twitter"
	"golang.org/x/oauth2"
)

const pkceTTL = 10 * time.Minute

// StateStore keeps short lived OAuth values, such as PKCE verifiers, between redirect and callback.
type StateStore interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Take(ctx context.Context, key string) (string, error)
}

type twitterService struct {
	platformBase
	oauth     *oauth2.Config
	oauth1    *oauth1.Config
	states    StateStore
	apiURL    string
	uploadURL string
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewTwitterService(
	cfg config.TwitterApp,
	cipher *utils.TokenCipher,
	accounts repository.SocialAccountRepository,
	states StateStore,
	client *http.Client) Platform {
	return &twitterService{
		platformBase: newPlatformBase(models.PlatformTwitter, client, cipher, accounts),
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{"tweet.read", "tweet.write", "users.read", "offline.access", "media.write"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   "https://twitter.com/i/oauth2/authorize",
				TokenURL:  "https://api.twitter.com/2/oauth2/token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		oauth1: &oauth1.Config{
			ConsumerKey:    cfg.ConsumerKey,
			ConsumerSecret: cfg.ConsumerSecret,
			Endpoint:       oauth1twitter.AuthorizeEndpoint,
			HTTPClient:     client,
		},
		states:    states,
		apiURL:    "https://api.twitter.com/2",
		uploadURL: "https://upload.twitter.com/1.1/media/upload.json",
		sleep:     sleepContext,
	}
}

func (s *twitterService) AuthURL(ctx context.Context, state string) (string, error) {
	verifier := oauth2.GenerateVerifier()
	if err := s.states.Put(ctx, pkceKey(state), verifier, pkceTTL); err != nil {
		return "", fmt.Errorf("store pkce verifier: %w", err)
	}
	return s.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), nil
}

func (s *twitterService) Callback(ctx context.Context, code, state string, userID int64) error {
	if code == "" {
		return fmt.Errorf("%w: missing code", ErrInvalidInput)
	}

	verifier, err := s.states.Take(ctx, pkceKey(state))
	if err != nil {
		return fmt.Errorf("%w: pkce verifier not found", ErrInvalidInput)
	}

	token, err := s.oauth.Exchange(s.oauthContext(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return s.errorf("exchange code: %w", err)
	}

	client := oauth2.NewClient(s.oauthContext(ctx), oauth2.StaticTokenSource(token))
	me, err := s.me(ctx, client)
	if err != nil {
		return err
	}

	return s.saveAccount(ctx, &models.SocialAccount{
		UserID:          userID,
		Platform:        models.PlatformTwitter,
		AccountID:       me.Data.ID,
		AccountName:     me.Data.Name,
		AccountUsername: me.Data.Username,
		ProfilePicture:  me.Data.ProfileImageURL,
		AccessToken:     token.AccessToken,
		RefreshToken:    token.RefreshToken,
		TokenExpiresAt:  tokenExpiry(token.Expiry),
	})
}

// OAuth1URL starts the three-legged OAuth 1.0a flow. The request token secret is
// kept until the callback exchanges the verifier.
func (s *twitterService) OAuth1URL(ctx context.Context, state string) (string, error) {
	cfg := *s.oauth1
	cfg.CallbackURL = s.oauth.RedirectURL + "?" + url.Values{"state": {state}}.Encode()

	requestToken, requestSecret, err := cfg.RequestToken()
	if err != nil {
		return "", s.errorf("request token: %w", err)
	}
	if err := s.states.Put(ctx, requestTokenKey(requestToken), requestSecret, pkceTTL); err != nil {
		return "", fmt.Errorf("store request token: %w", err)
	}

	authURL, err := cfg.AuthorizationURL(requestToken)
	if err != nil {
		return "", s.errorf("authorization url: %w", err)
	}
	return authURL.String(), nil
}

func (s *twitterService) OAuth1Callback(ctx context.Context, requestToken, verifier string, userID int64) error {
	if requestToken == "" || verifier == "" {
		return fmt.Errorf("%w: missing oauth_token or oauth_verifier", ErrInvalidInput)
	}

	requestSecret, err := s.states.Take(ctx, requestTokenKey(requestToken))
	if err != nil {
		return fmt.Errorf("%w: request token not found", ErrInvalidInput)
	}

	accessToken, accessSecret, err := s.oauth1.AccessToken(requestToken, requestSecret, verifier)
	if err != nil {
		return s.errorf("access token: %w", err)
	}

	client := s.oauth1.Client(context.WithValue(ctx, oauth1.HTTPClient, s.client), oauth1.NewToken(accessToken, accessSecret))
	me, err := s.me(ctx, client)
	if err != nil {
		return err
	}

	return s.saveAccount(ctx, &models.SocialAccount{
		UserID:          userID,
		Platform:        models.PlatformTwitter,
		AccountID:       me.Data.ID,
		AccountName:     me.Data.Name,
		AccountUsername: me.Data.Username,
		ProfilePicture:  me.Data.ProfileImageURL,
		AccessToken:     accessToken,
		TokenSecret:     accessSecret,
		TokenExpiresAt:  farFuture,
	})
}

func (s *twitterService) me(ctx context.Context, client *http.Client) (*transfer.TwitterUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/users/me?user.fields=profile_image_url", nil)
	if err != nil {
		return nil, err
	}
	var me transfer.TwitterUser
	if _, err := s.do(client, req, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// Refresh renews OAuth2 tokens. Accounts signed with OAuth1 keys do not expire.
func (s *twitterService) Refresh(ctx context.Context, acc *models.SocialAccount) error {
	if acc.TokenSecret != "" {
		return nil
	}

	refresh, err := s.refreshToken(acc)
	if err != nil {
		return err
	}
	if refresh == "" {
		return s.errorf("account %d has no refresh token", acc.ID)
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

// userClient signs requests with OAuth1 when the account carries a token secret,
// and with the OAuth2 bearer token otherwise.
func (s *twitterService) userClient(ctx context.Context, acc *models.SocialAccount) (*http.Client, error) {
	access, err := s.accessToken(acc)
	if err != nil {
		return nil, err
	}

	if acc.TokenSecret != "" {
		secret, err := s.cipher.Decrypt(acc.TokenSecret)
		if err != nil {
			return nil, s.errorf("decrypt token secret: %w", err)
		}
		ctx = context.WithValue(ctx, oauth1.HTTPClient, s.client)
		return s.oauth1.Client(ctx, oauth1.NewToken(access, secret)), nil
	}

	return oauth2.NewClient(s.oauthContext(ctx), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: access})), nil
}

func (s *twitterService) Publish(ctx context.Context, post *models.Post, acc *models.SocialAccount) (string, error) {
	client, err := s.userClient(ctx, acc)
	if err != nil {
		return "", err
	}

	tweet := transfer.TweetRequest{Text: post.Content}
	if len(post.MediaURLs) > 0 {
		ids, err := s.uploadMedia(ctx, client, post.MediaURLs)
		if err != nil {
			return "", err
		}
		tweet.Media = &transfer.TweetMedia{MediaIDs: ids}
	}

	req, err := newJSONRequest(ctx, http.MethodPost, s.apiURL+"/tweets", tweet)
	if err != nil {
		return "", err
	}
	var res transfer.TweetResponse
	if _, err := s.do(client, req, &res); err != nil {
		return "", err
	}
	if res.Data.ID == "" {
		return "", s.errorf("tweet created without id")
	}
	return res.Data.ID, nil
}

func (s *twitterService) uploadMedia(ctx context.Context, client *http.Client, mediaURLs []string) ([]string, error) {
	ids := make([]string, 0, len(mediaURLs))
	for _, u := range mediaURLs {
		var (
			id  string
			err error
		)
		if models.IsVideoURL(u) {
			id, err = s.uploadVideo(ctx, client, u)
		} else {
			id, err = s.uploadImage(ctx, client, u)
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *twitterService) FetchMetrics(ctx context.Context, acc *models.SocialAccount, platformPostID string) (*models.PostAnalytics, error) {
	client, err := s.userClient(ctx, acc)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/tweets/"+platformPostID+"?tweet.fields=public_metrics", nil)
	if err != nil {
		return nil, err
	}
	var res transfer.TweetMetrics
	if _, err := s.do(client, req, &res); err != nil {
		return nil, err
	}

	m := res.Data.PublicMetrics
	return &models.PostAnalytics{
		Platform:    models.PlatformTwitter,
		Impressions: m.ImpressionCount,
		Likes:       m.LikeCount,
		Comments:    m.ReplyCount,
		Shares:      m.RetweetCount + m.QuoteCount,
	}, nil
}

func pkceKey(state string) string {
	return "pkce:twitter:" + state
}

func requestTokenKey(token string) string {
	return "oauth1:twitter:" + token
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var errProcessingFailed = errors.New("media processing failed")
