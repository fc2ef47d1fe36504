package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/internal/repository"
	"github.com/Ghazanfar1991/syncrio/pkg/utils"
	"golang.org/x/oauth2"
)

// APIError is a non-2xx reply of a platform API.
type APIError struct {
	Platform   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Platform, e.Message, e.StatusCode)
}

// errorMessage extracts the human readable part of the error shapes used by the
// Graph, Twitter and LinkedIn APIs.
func errorMessage(status int, body []byte) string {
	var shape struct {
		Error            json.RawMessage `json:"error"`
		ErrorDescription string          `json:"error_description"`
		Errors           []struct {
			Message string `json:"message"`
		} `json:"errors"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &shape); err == nil {
		var graph struct {
			Message string `json:"message"`
		}
		var plain string
		switch {
		case len(shape.Error) > 0 && json.Unmarshal(shape.Error, &graph) == nil && graph.Message != "":
			return graph.Message
		case shape.ErrorDescription != "":
			return shape.ErrorDescription
		case len(shape.Errors) > 0 && shape.Errors[0].Message != "":
			return shape.Errors[0].Message
		case shape.Detail != "":
			return shape.Detail
		case shape.Message != "":
			return shape.Message
		case len(shape.Error) > 0 && json.Unmarshal(shape.Error, &plain) == nil && plain != "":
			return plain
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return truncate(text, 300)
	}
	return http.StatusText(status)
}

// platformBase carries what every adapter needs to talk to its API and persist accounts.
type platformBase struct {
	name     string
	client   *http.Client
	cipher   *utils.TokenCipher
	accounts repository.SocialAccountRepository
}

func newPlatformBase(name string, client *http.Client, cipher *utils.TokenCipher, accounts repository.SocialAccountRepository) platformBase {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return platformBase{name: name, client: client, cipher: cipher, accounts: accounts}
}

func (b *platformBase) Name() string {
	return b.name
}

// oauthContext makes golang.org/x/oauth2 use the adapter's HTTP client.
func (b *platformBase) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, b.client)
}

func (b *platformBase) errorf(format string, args ...interface{}) error {
	return fmt.Errorf(b.name+": "+format, args...)
}

// do sends req and decodes a 2xx JSON body into out when out is non-nil.
func (b *platformBase) do(client *http.Client, req *http.Request, out interface{}) (http.Header, error) {
	if client == nil {
		client = b.client
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, b.errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, b.errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.Header, &APIError{Platform: b.name, StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
	}
	if out != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.Header, b.errorf("decode response: %w", err)
		}
	}
	return resp.Header, nil
}

func newJSONRequest(ctx context.Context, method, rawURL string, payload interface{}) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func newFormRequest(ctx context.Context, rawURL string, form url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// fetchMedia opens a media URL for streaming. The caller closes the body.
func (b *platformBase) fetchMedia(ctx context.Context, mediaURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, b.errorf("download media: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, b.errorf("download media %s: status %d", mediaURL, resp.StatusCode)
	}
	return resp, nil
}

func (b *platformBase) readMedia(ctx context.Context, mediaURL string) ([]byte, string, error) {
	resp, err := b.fetchMedia(ctx, mediaURL)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", b.errorf("download media: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (b *platformBase) accessToken(acc *models.SocialAccount) (string, error) {
	token, err := b.cipher.Decrypt(acc.AccessToken)
	if err != nil {
		return "", b.errorf("decrypt access token: %w", err)
	}
	return token, nil
}

func (b *platformBase) refreshToken(acc *models.SocialAccount) (string, error) {
	token, err := b.cipher.Decrypt(acc.RefreshToken)
	if err != nil {
		return "", b.errorf("decrypt refresh token: %w", err)
	}
	return token, nil
}

// saveAccount encrypts the plaintext credentials on acc and upserts it.
func (b *platformBase) saveAccount(ctx context.Context, acc *models.SocialAccount) error {
	if err := b.encryptTokens(acc); err != nil {
		return err
	}
	if _, err := b.accounts.Upsert(ctx, acc); err != nil {
		return fmt.Errorf("save %s account: %w", b.name, err)
	}
	return nil
}

// storeToken encrypts and persists refreshed credentials of an existing account.
func (b *platformBase) storeToken(ctx context.Context, id int64, acc *models.SocialAccount) error {
	if err := b.encryptTokens(acc); err != nil {
		return err
	}
	return b.accounts.SetToken(ctx, id, acc)
}

func (b *platformBase) encryptTokens(acc *models.SocialAccount) error {
	var err error
	if acc.AccessToken, err = b.cipher.Encrypt(acc.AccessToken); err != nil {
		return err
	}
	if acc.RefreshToken, err = b.cipher.Encrypt(acc.RefreshToken); err != nil {
		return err
	}
	if acc.TokenSecret, err = b.cipher.Encrypt(acc.TokenSecret); err != nil {
		return err
	}
	return nil
}
