package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/internal/repository/mocks"
	"github.com/Ghazanfar1991/syncrio/internal/transfer"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubUsage struct {
	limitErr error
	recorded []models.UsageCounter
}

func (u *stubUsage) CheckPostLimit(context.Context, int64) error { return u.limitErr }

func (u *stubUsage) Record(_ context.Context, _ int64, c models.UsageCounter) error {
	u.recorded = append(u.recorded, c)
	return nil
}

func (u *stubUsage) Info(context.Context, int64) (*transfer.UsageInfo, error) {
	return &transfer.UsageInfo{}, nil
}

type stubStorage struct {
	keys []string
}

func (s *stubStorage) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	s.keys = append(s.keys, key)
	return "https://media.syncrio.test/" + key, nil
}

type stubEnqueuer struct {
	ids []int64
}

func (e *stubEnqueuer) EnqueuePublish(_ context.Context, postID int64) error {
	e.ids = append(e.ids, postID)
	return nil
}

type postFixture struct {
	svc      *postService
	sql      sqlmock.Sqlmock
	posts    *mocks.PostRepository
	pubs     *mocks.PublicationRepository
	accounts *mocks.SocialAccountRepository
	assets   *mocks.MediaAssetRepository
	usage    *stubUsage
	storage  *stubStorage
	enqueuer *stubEnqueuer
	now      time.Time
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	db, smock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &postFixture{
		sql:      smock,
		posts:    new(mocks.PostRepository),
		pubs:     new(mocks.PublicationRepository),
		accounts: new(mocks.SocialAccountRepository),
		assets:   new(mocks.MediaAssetRepository),
		usage:    &stubUsage{},
		storage:  &stubStorage{},
		enqueuer: &stubEnqueuer{},
		now:      time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewPostService(sqlx.NewDb(db, "postgres"), f.posts, f.pubs, f.accounts, f.assets,
		new(mocks.AnalyticsRepository), f.usage, f.storage, f.enqueuer).(*postService)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *postFixture) ownAccount(id int64, platform string) {
	f.accounts.On("GetByID", mock.Anything, id).Return(&models.SocialAccount{ID: id, UserID: 1, Platform: platform}, nil)
}

func TestCreateScheduledPost(t *testing.T) {
	f := newPostFixture(t)
	f.ownAccount(7, models.PlatformTwitter)
	f.sql.ExpectBegin()
	f.sql.ExpectCommit()
	f.posts.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
		return p.Status == models.PostStatusScheduled && p.UserID == 1
	})).Return(int64(42), nil)
	f.pubs.On("CreateForPost", mock.Anything, mock.Anything, int64(42), []int64{7}).Return(nil)

	at := time.Date(2026, 6, 2, 14, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	post, err := f.svc.Create(context.Background(), 1, &transfer.PostCreation{
		Content:          "launch",
		SocialAccountIDs: []int64{7},
		ScheduledAt:      &at,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(42), post.ID)
	assert.Equal(t, models.PostStatusScheduled, post.Status)
	assert.Equal(t, time.UTC, post.ScheduledAt.Location())
	assert.True(t, post.ScheduledAt.Equal(at))
	assert.Equal(t, []models.UsageCounter{models.UsagePostsCreated}, f.usage.recorded)
	assert.Empty(t, f.enqueuer.ids)
	require.NoError(t, f.sql.ExpectationsWereMet())
}

func TestCreatePublishNowEnqueues(t *testing.T) {
	f := newPostFixture(t)
	f.ownAccount(7, models.PlatformLinkedIn)
	f.sql.ExpectBegin()
	f.sql.ExpectCommit()
	f.posts.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(int64(5), nil)
	f.pubs.On("CreateForPost", mock.Anything, mock.Anything, int64(5), []int64{7}).Return(nil)

	post, err := f.svc.Create(context.Background(), 1, &transfer.PostCreation{
		Content:          "now",
		SocialAccountIDs: []int64{7},
		PublishNow:       true,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusScheduled, post.Status)
	assert.Equal(t, f.now, *post.ScheduledAt)
	assert.Equal(t, []int64{5}, f.enqueuer.ids)
}

func TestCreateDraftWithoutAccounts(t *testing.T) {
	f := newPostFixture(t)
	f.sql.ExpectBegin()
	f.sql.ExpectCommit()
	f.posts.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(int64(3), nil)
	f.pubs.On("CreateForPost", mock.Anything, mock.Anything, int64(3), []int64(nil)).Return(nil)

	post, err := f.svc.Create(context.Background(), 1, &transfer.PostCreation{Content: "idea"}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusDraft, post.Status)
	assert.Nil(t, post.ScheduledAt)
}

func TestCreateRejects(t *testing.T) {
	past := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		setup   func(f *postFixture)
		req     *transfer.PostCreation
		wantErr error
	}{
		{
			name:    "limit reached",
			setup:   func(f *postFixture) { f.usage.limitErr = ErrLimitReached },
			req:     &transfer.PostCreation{Content: "x"},
			wantErr: ErrLimitReached,
		},
		{
			name:    "past schedule",
			req:     &transfer.PostCreation{Content: "x", SocialAccountIDs: []int64{7}, ScheduledAt: &past},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "scheduled without accounts",
			req:     &transfer.PostCreation{Content: "x", PublishNow: true},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "empty",
			req:     &transfer.PostCreation{},
			wantErr: ErrInvalidInput,
		},
		{
			name: "foreign account",
			setup: func(f *postFixture) {
				f.accounts.On("GetByID", mock.Anything, int64(8)).Return(&models.SocialAccount{ID: 8, UserID: 2, Platform: models.PlatformTwitter}, nil)
			},
			req:     &transfer.PostCreation{Content: "x", SocialAccountIDs: []int64{8}},
			wantErr: ErrNotFound,
		},
		{
			name:    "instagram without media",
			setup:   func(f *postFixture) { f.ownAccount(9, models.PlatformInstagram) },
			req:     &transfer.PostCreation{Content: "x", SocialAccountIDs: []int64{9}},
			wantErr: ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPostFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			_, err := f.svc.Create(context.Background(), 1, tt.req, nil)
			assert.ErrorIs(t, err, tt.wantErr)
			f.posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func fileHeaders(t *testing.T, name string, data []byte) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("files", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["files"]
}

func TestCreateUploadsFiles(t *testing.T) {
	f := newPostFixture(t)
	f.sql.ExpectBegin()
	f.sql.ExpectCommit()
	f.posts.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(int64(11), nil)
	f.pubs.On("CreateForPost", mock.Anything, mock.Anything, int64(11), []int64(nil)).Return(nil)
	f.assets.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(a *models.MediaAsset) bool {
		return a.FileName == "cover.png" && a.FileType == "image/png" && a.UserID == 1
	})).Return(int64(1), nil)

	png := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 32)...)
	post, err := f.svc.Create(context.Background(), 1, &transfer.PostCreation{}, fileHeaders(t, "cover.png", png))
	require.NoError(t, err)

	require.Len(t, f.storage.keys, 1)
	assert.Contains(t, f.storage.keys[0], ".png")
	assert.Equal(t, []string{"https://media.syncrio.test/" + f.storage.keys[0]}, []string(post.MediaURLs))
	f.assets.AssertExpectations(t)
}

func TestCreateRejectsUnknownFileType(t *testing.T) {
	f := newPostFixture(t)

	_, err := f.svc.Create(context.Background(), 1, &transfer.PostCreation{}, fileHeaders(t, "notes.txt", []byte("plain text")))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.storage.keys)
}

func TestUpdatePublishedPost(t *testing.T) {
	f := newPostFixture(t)
	f.posts.On("GetByIDForUser", mock.Anything, int64(4), int64(1)).
		Return(&models.Post{ID: 4, UserID: 1, Status: models.PostStatusPublished}, nil)

	content := "edited"
	_, err := f.svc.Update(context.Background(), 1, 4, &transfer.PostUpdate{Content: &content})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateReplacesAccounts(t *testing.T) {
	f := newPostFixture(t)
	f.posts.On("GetByIDForUser", mock.Anything, int64(4), int64(1)).
		Return(&models.Post{ID: 4, UserID: 1, Status: models.PostStatusDraft, Content: "old"}, nil)
	f.ownAccount(7, models.PlatformFacebook)
	f.sql.ExpectBegin()
	f.sql.ExpectCommit()
	f.posts.On("Update", mock.Anything, mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
		return p.Content == "new"
	})).Return(nil)
	f.pubs.On("DeletePendingByPostID", mock.Anything, mock.Anything, int64(4)).Return(nil)
	f.pubs.On("CreateForPost", mock.Anything, mock.Anything, int64(4), []int64{7}).Return(nil)

	content := "new"
	post, err := f.svc.Update(context.Background(), 1, 4, &transfer.PostUpdate{Content: &content, SocialAccountIDs: []int64{7}})
	require.NoError(t, err)

	assert.Equal(t, "new", post.Content)
	f.pubs.AssertExpectations(t)
	require.NoError(t, f.sql.ExpectationsWereMet())
}

func TestUpdateScheduledPostWithoutAccounts(t *testing.T) {
	f := newPostFixture(t)
	at := f.now.Add(time.Hour)
	f.posts.On("GetByIDForUser", mock.Anything, int64(4), int64(1)).
		Return(&models.Post{ID: 4, UserID: 1, Status: models.PostStatusScheduled, Content: "x", ScheduledAt: &at}, nil)

	_, err := f.svc.Update(context.Background(), 1, 4, &transfer.PostUpdate{SocialAccountIDs: []int64{}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	f.pubs.AssertNotCalled(t, "DeletePendingByPostID", mock.Anything, mock.Anything, mock.Anything)
	f.posts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	require.NoError(t, f.sql.ExpectationsWereMet())
}

func TestUpdateScheduledPostChecksContentRules(t *testing.T) {
	f := newPostFixture(t)
	at := f.now.Add(time.Hour)
	f.posts.On("GetByIDForUser", mock.Anything, int64(4), int64(1)).
		Return(&models.Post{ID: 4, UserID: 1, Status: models.PostStatusScheduled, Content: "x", ScheduledAt: &at}, nil)
	f.pubs.On("ListByPostID", mock.Anything, int64(4)).
		Return([]*models.PostPublication{{ID: 1, PostID: 4, Platform: models.PlatformTwitter}}, nil)

	content := strings.Repeat("a", 281)
	_, err := f.svc.Update(context.Background(), 1, 4, &transfer.PostUpdate{Content: &content})
	assert.ErrorIs(t, err, ErrInvalidInput)
	f.posts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestScheduleNeedsPublications(t *testing.T) {
	f := newPostFixture(t)
	f.posts.On("GetByIDForUser", mock.Anything, int64(4), int64(1)).
		Return(&models.Post{ID: 4, UserID: 1, Status: models.PostStatusDraft, Content: "x"}, nil)
	f.pubs.On("ListByPostID", mock.Anything, int64(4)).Return([]*models.PostPublication{}, nil)

	_, err := f.svc.Schedule(context.Background(), 1, 4, f.now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestScheduleApprovedPost(t *testing.T) {
	f := newPostFixture(t)
	f.posts.On("GetByIDForUser", mock.Anything, int64(4), int64(1)).
		Return(&models.Post{ID: 4, UserID: 1, Status: models.PostStatusApproved, Content: "x"}, nil)
	f.pubs.On("ListByPostID", mock.Anything, int64(4)).
		Return([]*models.PostPublication{{ID: 1, PostID: 4, Platform: models.PlatformTwitter}}, nil)
	f.posts.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	at := f.now.Add(2 * time.Hour)
	post, err := f.svc.Schedule(context.Background(), 1, 4, at)
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusScheduled, post.Status)
	assert.Equal(t, at, *post.ScheduledAt)
}

func TestApproveFailedPost(t *testing.T) {
	f := newPostFixture(t)
	f.posts.On("GetByIDForUser", mock.Anything, int64(4), int64(1)).
		Return(&models.Post{ID: 4, Status: models.PostStatusFailed}, nil)

	_, err := f.svc.Approve(context.Background(), 1, 4)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPublishNow(t *testing.T) {
	f := newPostFixture(t)
	f.posts.On("GetByIDForUser", mock.Anything, int64(4), int64(1)).
		Return(&models.Post{ID: 4, UserID: 1, Status: models.PostStatusDraft, Content: "x"}, nil)
	f.pubs.On("ListByPostID", mock.Anything, int64(4)).
		Return([]*models.PostPublication{{ID: 1, PostID: 4, Platform: models.PlatformLinkedIn}}, nil)
	f.posts.On("Update", mock.Anything, mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
		return p.Status == models.PostStatusScheduled && p.ScheduledAt.Equal(f.now)
	})).Return(nil)

	require.NoError(t, f.svc.PublishNow(context.Background(), 1, 4))
	assert.Equal(t, []int64{4}, f.enqueuer.ids)
}

func TestRemoveOtherUsersPost(t *testing.T) {
	f := newPostFixture(t)
	f.posts.On("GetByIDForUser", mock.Anything, int64(4), int64(2)).Return(nil, nil)

	err := f.svc.Remove(context.Background(), 2, 4)
	assert.ErrorIs(t, err, ErrNotFound)
	f.posts.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
}
