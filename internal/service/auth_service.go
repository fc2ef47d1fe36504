package service

import (
	"context"
	"fmt"
	"net/http"

	config "github.com/Ghazanfar1991/syncrio/configs"
	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/internal/repository"
	"github.com/Ghazanfar1991/syncrio/internal/transfer"
	"github.com/Ghazanfar1991/syncrio/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type AuthService interface {
	LoginURL(state string) string
	LoginCallback(ctx context.Context, code string) (int64, error)
}

type authService struct {
	oauth       *oauth2.Config
	users       repository.UserRepository
	client      *http.Client
	userInfoURL string
}

func NewAuthService(cfg config.OAuthApp, users repository.UserRepository) AuthService {
	return &authService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
		users:       users,
		client:      http.DefaultClient,
		userInfoURL: "https://www.googleapis.com/oauth2/v1/userinfo",
	}
}

func (s *authService) LoginURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// LoginCallback signs a Google user in, creating the account on first login.
func (s *authService) LoginCallback(ctx context.Context, code string) (int64, error) {
	if code == "" {
		return 0, fmt.Errorf("%w: missing code", ErrInvalidInput)
	}
	if s.oauth.ClientID == "" || s.oauth.ClientSecret == "" {
		return 0, fmt.Errorf("google oauth is not configured")
	}

	octx := context.WithValue(ctx, oauth2.HTTPClient, s.client)
	token, err := s.oauth.Exchange(octx, code)
	if err != nil {
		return 0, fmt.Errorf("exchange google code: %w", err)
	}

	info, err := s.userInfo(ctx, s.oauth.Client(octx, token))
	if err != nil {
		return 0, err
	}

	user, exists, err := s.users.GetByEmail(ctx, info.Email)
	if err != nil {
		return 0, err
	}
	if exists {
		if user.GoogleID == "" || user.Name != info.Name || user.ProfilePicture != info.Picture {
			user.GoogleID, user.Name, user.ProfilePicture = info.ID, info.Name, info.Picture
			if err := s.users.Update(ctx, user); err != nil {
				logger.Log.Warn("update user profile", zap.Int64("user_id", user.ID), zap.Error(err))
			}
		}
		return user.ID, nil
	}

	return s.users.Create(ctx, nil, &models.User{
		GoogleID:       info.ID,
		Email:          info.Email,
		Name:           info.Name,
		ProfilePicture: info.Picture,
	})
}

func (s *authService) userInfo(ctx context.Context, client *http.Client) (*transfer.GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	b := platformBase{name: "google", client: client}
	var info transfer.GoogleUserInfo
	if _, err := b.do(nil, req, &info); err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, fmt.Errorf("google: user info without email")
	}
	return &info, nil
}
