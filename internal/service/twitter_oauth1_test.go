package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	config "github.com/Ghazanfar1991/syncrio/configs"
	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/internal/repository/mocks"
	"github.com/dghubble/oauth1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memoryStates map[string]string

func (m memoryStates) Put(_ context.Context, key, value string, _ time.Duration) error {
	m[key] = value
	return nil
}

func (m memoryStates) Take(_ context.Context, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", errors.New("state not found")
	}
	delete(m, key)
	return v, nil
}

func newOAuth1Twitter(t *testing.T, srv *httptest.Server, accounts *mocks.SocialAccountRepository, states memoryStates) *twitterService {
	cfg := config.TwitterApp{
		OAuthApp:       config.OAuthApp{RedirectURI: "https://api.syncrio.test/api/social/twitter/callback"},
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
	}
	s := NewTwitterService(cfg, testCipher(t), accounts, states, srv.Client()).(*twitterService)
	s.apiURL = srv.URL + "/2"
	s.oauth1.Endpoint = oauth1.Endpoint{
		RequestTokenURL: srv.URL + "/oauth/request_token",
		AuthorizeURL:    srv.URL + "/oauth/authorize",
		AccessTokenURL:  srv.URL + "/oauth/access_token",
	}
	return s
}

func TestTwitterOAuth1Connect(t *testing.T) {
	var requestAuth, accessAuth, meAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/request_token":
			requestAuth = r.Header.Get("Authorization")
			_, _ = io.WriteString(w, "oauth_token=rt&oauth_token_secret=rs&oauth_callback_confirmed=true")
		case "/oauth/access_token":
			accessAuth = r.Header.Get("Authorization")
			_, _ = io.WriteString(w, "oauth_token=at&oauth_token_secret=as")
		case "/2/users/me":
			meAuth = r.Header.Get("Authorization")
			writeJSON(w, map[string]interface{}{"data": map[string]string{"id": "99", "name": "Syncrio", "username": "syncrio"}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	var saved *models.SocialAccount
	accounts := new(mocks.SocialAccountRepository)
	accounts.On("Upsert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*models.SocialAccount)
	}).Return(int64(1), nil)

	states := memoryStates{}
	s := newOAuth1Twitter(t, srv, accounts, states)

	authURL, err := s.OAuth1URL(context.Background(), "st")
	require.NoError(t, err)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "/oauth/authorize", u.Path)
	assert.Equal(t, "rt", u.Query().Get("oauth_token"))
	assert.Contains(t, requestAuth, `oauth_callback="https%3A%2F%2Fapi.syncrio.test%2Fapi%2Fsocial%2Ftwitter%2Fcallback%3Fstate%3Dst"`)
	assert.Equal(t, "rs", states[requestTokenKey("rt")])

	require.NoError(t, s.OAuth1Callback(context.Background(), "rt", "v1", 5))

	assert.Contains(t, accessAuth, `oauth_verifier="v1"`)
	assert.Contains(t, meAuth, `oauth_token="at"`)
	assert.Empty(t, states)

	require.NotNil(t, saved)
	assert.Equal(t, int64(5), saved.UserID)
	assert.Equal(t, "99", saved.AccountID)
	assert.Equal(t, "syncrio", saved.AccountUsername)
	assert.Equal(t, farFuture, saved.TokenExpiresAt)

	access, err := s.cipher.Decrypt(saved.AccessToken)
	require.NoError(t, err)
	secret, err := s.cipher.Decrypt(saved.TokenSecret)
	require.NoError(t, err)
	assert.Equal(t, "at", access)
	assert.Equal(t, "as", secret)
}

func TestTwitterOAuth1CallbackUnknownRequestToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	s := newOAuth1Twitter(t, srv, new(mocks.SocialAccountRepository), memoryStates{})

	err := s.OAuth1Callback(context.Background(), "rt", "v1", 5)
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = s.OAuth1Callback(context.Background(), "", "", 5)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
