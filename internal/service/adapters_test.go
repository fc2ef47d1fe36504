package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	config "github.com/Ghazanfar1991/syncrio/configs"
	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/internal/repository/mocks"
	"github.com/Ghazanfar1991/syncrio/internal/transfer"
	"github.com/Ghazanfar1991/syncrio/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func testCipher(t *testing.T) *utils.TokenCipher {
	t.Helper()
	c, err := utils.NewTokenCipher(testKey)
	require.NoError(t, err)
	return c
}

func sealed(t *testing.T, c *utils.TokenCipher, plain string) string {
	t.Helper()
	s, err := c.Encrypt(plain)
	require.NoError(t, err)
	return s
}

func noSleep(context.Context, time.Duration) error { return nil }

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestErrorMessageShapes(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"error":{"message":"Invalid OAuth access token","code":190}}`, "Invalid OAuth access token"},
		{`{"errors":[{"message":"duplicate content"}]}`, "duplicate content"},
		{`{"message":"Not enough permissions to access: ugcPosts.CREATE","status":403}`, "Not enough permissions to access: ugcPosts.CREATE"},
		{`{"error":"invalid_grant","error_description":"Value passed for the token was invalid."}`, "Value passed for the token was invalid."},
		{`{"detail":"Too Many Requests","status":429}`, "Too Many Requests"},
		{`{"error":"unauthorized_client"}`, "unauthorized_client"},
		{`upstream connect error`, "upstream connect error"},
		{``, "Bad Gateway"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorMessage(http.StatusBadGateway, []byte(tt.body)), tt.body)
	}
}

func newTwitter(t *testing.T, srv *httptest.Server) *twitterService {
	s := NewTwitterService(config.TwitterApp{ConsumerKey: "ck", ConsumerSecret: "cs"}, testCipher(t), new(mocks.SocialAccountRepository), nil, srv.Client()).(*twitterService)
	s.apiURL = srv.URL + "/2"
	s.uploadURL = srv.URL + "/upload"
	s.sleep = noSleep
	return s
}

func TestTwitterPublishText(t *testing.T) {
	var got struct {
		Text string `json:"text"`
	}
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/2/tweets", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, map[string]interface{}{"data": map[string]string{"id": "1850000000000000001", "text": got.Text}})
	}))
	defer srv.Close()

	s := newTwitter(t, srv)
	acc := &models.SocialAccount{ID: 1, Platform: models.PlatformTwitter, AccessToken: sealed(t, s.cipher, "user-token")}

	id, err := s.Publish(context.Background(), &models.Post{Content: "hello world"}, acc)
	require.NoError(t, err)

	assert.Equal(t, "1850000000000000001", id)
	assert.Equal(t, "hello world", got.Text)
	assert.Equal(t, "Bearer user-token", auth)
}

func TestTwitterPublishSignsWithOAuth1(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeJSON(w, map[string]interface{}{"data": map[string]string{"id": "42"}})
	}))
	defer srv.Close()

	s := newTwitter(t, srv)
	acc := &models.SocialAccount{
		Platform:    models.PlatformTwitter,
		AccessToken: sealed(t, s.cipher, "oauth1-token"),
		TokenSecret: sealed(t, s.cipher, "oauth1-secret"),
	}

	_, err := s.Publish(context.Background(), &models.Post{Content: "signed"}, acc)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(auth, "OAuth "), auth)
	assert.Contains(t, auth, `oauth_consumer_key="ck"`)
	assert.Contains(t, auth, `oauth_token="oauth1-token"`)
}

func TestTwitterChunkedVideoUpload(t *testing.T) {
	video := bytes.Repeat([]byte{0xAB}, 9<<20)

	var (
		mu       sync.Mutex
		commands []string
		segments []string
		received int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/media/clip.mp4":
			w.Header().Set("Content-Type", "video/mp4")
			w.Header().Set("Content-Length", strconv.Itoa(len(video)))
			_, _ = w.Write(video)
		case "/upload":
			if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
				require.NoError(t, r.ParseMultipartForm(16<<20))
			}
			cmd := r.FormValue("command")
			mu.Lock()
			commands = append(commands, cmd)
			mu.Unlock()

			switch cmd {
			case "INIT":
				assert.Equal(t, strconv.Itoa(len(video)), r.FormValue("total_bytes"))
				assert.Equal(t, "video/mp4", r.FormValue("media_type"))
				writeJSON(w, map[string]interface{}{"media_id_string": "777"})
			case "APPEND":
				f, _, err := r.FormFile("media")
				require.NoError(t, err)
				n, _ := io.Copy(io.Discard, f)
				mu.Lock()
				segments = append(segments, r.FormValue("segment_index"))
				received += int(n)
				mu.Unlock()
				w.WriteHeader(http.StatusNoContent)
			case "FINALIZE":
				writeJSON(w, map[string]interface{}{
					"media_id_string": "777",
					"processing_info": map[string]interface{}{"state": "pending", "check_after_secs": 2},
				})
			case "STATUS":
				assert.Equal(t, "777", r.FormValue("media_id"))
				writeJSON(w, map[string]interface{}{
					"media_id_string": "777",
					"processing_info": map[string]interface{}{"state": "succeeded"},
				})
			}
		case "/2/tweets":
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]interface{}{"media_ids": []interface{}{"777"}}, body["media"])
			writeJSON(w, map[string]interface{}{"data": map[string]string{"id": "99"}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := newTwitter(t, srv)
	var waits []time.Duration
	s.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	acc := &models.SocialAccount{Platform: models.PlatformTwitter, AccessToken: sealed(t, s.cipher, "tok")}

	id, err := s.Publish(context.Background(), &models.Post{Content: "clip", MediaURLs: []string{srv.URL + "/media/clip.mp4"}}, acc)
	require.NoError(t, err)

	assert.Equal(t, "99", id)
	assert.Equal(t, []string{"INIT", "APPEND", "APPEND", "APPEND", "FINALIZE", "STATUS"}, commands)
	assert.Equal(t, []string{"0", "1", "2"}, segments)
	assert.Equal(t, len(video), received)
	assert.Equal(t, []time.Duration{2 * time.Second}, waits)
}

func TestTwitterAwaitProcessingFailed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	s := newTwitter(t, srv)

	require.NoError(t, s.awaitProcessing(context.Background(), srv.Client(), "1", nil))

	err := s.awaitProcessing(context.Background(), srv.Client(), "1", &transfer.TwitterProcessingInfo{State: "failed"})
	assert.ErrorIs(t, err, errProcessingFailed)
	assert.Contains(t, err.Error(), "unknown reason")
}

func TestTwitterFetchMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/tweets/123", r.URL.Path)
		assert.Equal(t, "public_metrics", r.URL.Query().Get("tweet.fields"))
		writeJSON(w, map[string]interface{}{"data": map[string]interface{}{"public_metrics": map[string]int{
			"retweet_count": 3, "reply_count": 2, "like_count": 10, "quote_count": 1, "impression_count": 400,
		}}})
	}))
	defer srv.Close()

	s := newTwitter(t, srv)
	acc := &models.SocialAccount{AccessToken: sealed(t, s.cipher, "tok")}

	m, err := s.FetchMetrics(context.Background(), acc, "123")
	require.NoError(t, err)
	assert.Equal(t, int64(400), m.Impressions)
	assert.Equal(t, int64(10), m.Likes)
	assert.Equal(t, int64(2), m.Comments)
	assert.Equal(t, int64(4), m.Shares)
}

func TestTwitterPublishAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"You are not permitted to perform this action.","status":403}`))
	}))
	defer srv.Close()

	s := newTwitter(t, srv)
	acc := &models.SocialAccount{AccessToken: sealed(t, s.cipher, "tok")}

	_, err := s.Publish(context.Background(), &models.Post{Content: "x"}, acc)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "twitter: You are not permitted to perform this action. (status 403)", err.Error())
}

func newLinkedIn(t *testing.T, srv *httptest.Server, accounts *mocks.SocialAccountRepository) *linkedInService {
	s := NewLinkedInService(config.OAuthApp{}, testCipher(t), accounts, srv.Client()).(*linkedInService)
	s.apiURL = srv.URL + "/v2"
	return s
}

func TestLinkedInPublishImage(t *testing.T) {
	var (
		uploaded []byte
		share    map[string]interface{}
	)
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/media/photo.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpeg-bytes"))
		case r.URL.Path == "/v2/assets" && r.URL.Query().Get("action") == "registerUpload":
			writeJSON(w, map[string]interface{}{"value": map[string]interface{}{
				"asset": "urn:li:digitalmediaAsset:C5522",
				"uploadMechanism": map[string]interface{}{
					"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest": map[string]string{"uploadUrl": srv.URL + "/put/C5522"},
				},
			}})
		case r.URL.Path == "/put/C5522":
			assert.Equal(t, http.MethodPut, r.Method)
			uploaded, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusCreated)
		case r.URL.Path == "/v2/ugcPosts":
			assert.Equal(t, "2.0.0", r.Header.Get("X-Restli-Protocol-Version"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&share))
			w.Header().Set("X-RestLi-Id", "urn:li:share:6844785523593134080")
			w.WriteHeader(http.StatusCreated)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := newLinkedIn(t, srv, new(mocks.SocialAccountRepository))
	acc := &models.SocialAccount{AccountID: "abc123", AccessToken: sealed(t, s.cipher, "li-token")}

	id, err := s.Publish(context.Background(), &models.Post{Content: "launch day", MediaURLs: []string{srv.URL + "/media/photo.jpg"}}, acc)
	require.NoError(t, err)

	assert.Equal(t, "urn:li:share:6844785523593134080", id)
	assert.Equal(t, []byte("jpeg-bytes"), uploaded)
	assert.Equal(t, "urn:li:person:abc123", share["author"])
	content := share["specificContent"].(map[string]interface{})["com.linkedin.ugc.ShareContent"].(map[string]interface{})
	assert.Equal(t, "IMAGE", content["shareMediaCategory"])
}

func TestLinkedInRefreshWithoutRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	accounts := new(mocks.SocialAccountRepository)
	accounts.On("SetStatus", mock.Anything, int64(8), models.AccountStatusExpired).Return(nil)
	s := newLinkedIn(t, srv, accounts)

	err := s.Refresh(context.Background(), &models.SocialAccount{ID: 8, AccessToken: sealed(t, s.cipher, "tok")})
	assert.Error(t, err)
	accounts.AssertExpectations(t)
}

func newInstagram(t *testing.T, srv *httptest.Server) *instagramService {
	s := NewInstagramService(config.OAuthApp{}, testCipher(t), new(mocks.SocialAccountRepository), srv.Client()).(*instagramService)
	s.graphURL = srv.URL
	s.sleep = noSleep
	return s
}

func TestInstagramPublishCarousel(t *testing.T) {
	var (
		mu         sync.Mutex
		containers []url.Values
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v21.0/17841400000/media":
			require.NoError(t, r.ParseForm())
			mu.Lock()
			containers = append(containers, r.PostForm)
			id := "c" + strconv.Itoa(len(containers))
			mu.Unlock()
			writeJSON(w, map[string]string{"id": id})
		case r.URL.Path == "/v21.0/c3":
			writeJSON(w, map[string]string{"id": "c3", "status_code": "FINISHED"})
		case r.URL.Path == "/v21.0/17841400000/media_publish":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "c3", r.PostForm.Get("creation_id"))
			writeJSON(w, map[string]string{"id": "18000000000000001"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := newInstagram(t, srv)
	acc := &models.SocialAccount{AccountID: "17841400000", AccessToken: sealed(t, s.cipher, "ig-token")}
	post := &models.Post{Content: "two pics", MediaURLs: []string{"https://cdn.test/a.jpg", "https://cdn.test/b.jpg"}}

	id, err := s.Publish(context.Background(), post, acc)
	require.NoError(t, err)

	assert.Equal(t, "18000000000000001", id)
	require.Len(t, containers, 3)
	assert.Equal(t, "true", containers[0].Get("is_carousel_item"))
	assert.Equal(t, "https://cdn.test/b.jpg", containers[1].Get("image_url"))
	assert.Equal(t, "CAROUSEL", containers[2].Get("media_type"))
	assert.Equal(t, "c1,c2", containers[2].Get("children"))
	assert.Equal(t, "two pics", containers[2].Get("caption"))
}

func TestInstagramReelProcessingError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v21.0/1784/media":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "REELS", r.PostForm.Get("media_type"))
			writeJSON(w, map[string]string{"id": "reel1"})
		case "/v21.0/reel1":
			writeJSON(w, map[string]string{"id": "reel1", "status_code": "ERROR"})
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	s := newInstagram(t, srv)
	acc := &models.SocialAccount{AccountID: "1784", AccessToken: sealed(t, s.cipher, "ig-token")}

	_, err := s.Publish(context.Background(), &models.Post{Content: "reel", MediaURLs: []string{"https://cdn.test/r.mp4"}}, acc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ended in ERROR")
}

func TestInstagramPublishNeedsMedia(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	s := newInstagram(t, srv)

	_, err := s.Publish(context.Background(), &models.Post{Content: "text only"}, &models.SocialAccount{})
	assert.Error(t, err)
}

func newFacebook(t *testing.T, srv *httptest.Server) *facebookService {
	s := NewFacebookService(config.OAuthApp{}, testCipher(t), new(mocks.SocialAccountRepository), srv.Client()).(*facebookService)
	s.graphURL = srv.URL
	return s
}

func TestFacebookPublishMultipleImages(t *testing.T) {
	var (
		mu     sync.Mutex
		photos int
		feed   url.Values
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		switch r.URL.Path {
		case "/page1/photos":
			assert.Equal(t, "false", r.PostForm.Get("published"))
			mu.Lock()
			photos++
			id := "photo" + strconv.Itoa(photos)
			mu.Unlock()
			writeJSON(w, map[string]string{"id": id})
		case "/page1/feed":
			feed = r.PostForm
			writeJSON(w, map[string]string{"id": "page1_post9"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := newFacebook(t, srv)
	acc := &models.SocialAccount{AccountID: "page1", AccessToken: sealed(t, s.cipher, "page-token")}
	post := &models.Post{Content: "album", MediaURLs: []string{"https://cdn.test/1.jpg", "https://cdn.test/2.png"}}

	id, err := s.Publish(context.Background(), post, acc)
	require.NoError(t, err)

	assert.Equal(t, "page1_post9", id)
	assert.Equal(t, 2, photos)
	assert.Equal(t, "album", feed.Get("message"))
	assert.Equal(t, `{"media_fbid":"photo1"}`, feed.Get("attached_media[0]"))
	assert.Equal(t, `{"media_fbid":"photo2"}`, feed.Get("attached_media[1]"))
	assert.Equal(t, "page-token", feed.Get("access_token"))
}

func TestFacebookSinglePhotoPrefersPostID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/page1/photos", r.URL.Path)
		writeJSON(w, map[string]string{"id": "photo1", "post_id": "page1_post1"})
	}))
	defer srv.Close()

	s := newFacebook(t, srv)
	acc := &models.SocialAccount{AccountID: "page1", AccessToken: sealed(t, s.cipher, "page-token")}

	id, err := s.Publish(context.Background(), &models.Post{MediaURLs: []string{"https://cdn.test/1.jpg"}}, acc)
	require.NoError(t, err)
	assert.Equal(t, "page1_post1", id)
}

func TestFacebookGraphError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"(#200) The user hasn't authorized the application to perform this action","type":"OAuthException","code":200}}`))
	}))
	defer srv.Close()

	s := newFacebook(t, srv)
	acc := &models.SocialAccount{AccountID: "page1", AccessToken: sealed(t, s.cipher, "page-token")}

	_, err := s.Publish(context.Background(), &models.Post{Content: "hi"}, acc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "facebook: (#200) The user hasn't authorized")
}
