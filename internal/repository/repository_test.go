package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return sqlx.NewDb(db, "postgres"), mock
}

func TestClassify(t *testing.T) {
	err := classify(&pq.Error{Code: "23505", Constraint: "social_accounts_platform_account_id_key"})
	assert.ErrorIs(t, err, ErrDuplicate)

	err = classify(&pq.Error{Code: "23503"})
	assert.ErrorIs(t, err, ErrForeignKey)

	plain := errors.New("boom")
	assert.Equal(t, plain, classify(plain))
}

func TestPostCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostRepository(db)

	at := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO posts")).
		WithArgs(int64(7), "Launch", "hello", sqlmock.AnyArg(), models.PostStatusScheduled, &at).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	id, err := repo.Create(context.Background(), nil, &models.Post{
		UserID:      7,
		Title:       "Launch",
		Content:     "hello",
		MediaURLs:   pq.StringArray{"https://cdn.test/a.jpg"},
		Status:      models.PostStatusScheduled,
		ScheduledAt: &at,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestPostCreateMissingUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO posts")).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "posts_user_id_fkey"})

	_, err := repo.Create(context.Background(), nil, &models.Post{UserID: 99, Status: models.PostStatusDraft})
	assert.ErrorIs(t, err, ErrForeignKey)
}

func TestPostGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM posts WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	post, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, post)
}

func TestPostListDue(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostRepository(db)

	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	due := now.Add(-time.Minute)
	cols := []string{"id", "user_id", "title", "content", "media_urls", "status", "scheduled_at", "published_at", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1 AND scheduled_at <= $2")).
		WithArgs(models.PostStatusScheduled, now, 50).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, 7, "", "first", "{https://cdn.test/a.jpg}", models.PostStatusScheduled, due, nil, now, now).
			AddRow(2, 8, "", "second", "{}", models.PostStatusScheduled, due, nil, now, now))

	posts, err := repo.ListDue(context.Background(), now, 50)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, pq.StringArray{"https://cdn.test/a.jpg"}, posts[0].MediaURLs)
	assert.Empty(t, posts[1].MediaURLs)
	assert.Nil(t, posts[0].PublishedAt)
}

func TestPublicationCreateForPostInTx(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPublicationRepository(db)

	mock.ExpectBegin()
	insert := regexp.QuoteMeta("INSERT INTO post_publications")
	mock.ExpectExec(insert).WithArgs(int64(3), int64(10), models.PublicationStatusPending).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insert).WithArgs(int64(3), int64(11), models.PublicationStatusPending).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	require.NoError(t, repo.CreateForPost(context.Background(), tx, 3, []int64{10, 11}))
	require.NoError(t, tx.Commit())
}

func TestPublicationMarkFailed(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPublicationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE post_publications")).
		WithArgs(models.PublicationStatusFailed, "linkedin: unauthorized", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkFailed(context.Background(), 9, "linkedin: unauthorized"))
}

func TestPublicationCountByStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPublicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) FROM post_publications GROUP BY status")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow(models.PublicationStatusPublished, 12).
			AddRow(models.PublicationStatusFailed, 3))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"PUBLISHED": 12, "FAILED": 3}, counts)
}

func TestSocialAccountUpsertOwnedByAnotherUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSocialAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (platform, account_id) DO UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Upsert(context.Background(), &models.SocialAccount{
		UserID:    2,
		Platform:  models.PlatformTwitter,
		AccountID: "123",
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestSocialAccountSetTokenMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSocialAccountRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE social_accounts")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetToken(context.Background(), 4, &models.SocialAccount{AccessToken: "enc"})
	assert.Error(t, err)
}

func TestUsageIncrement(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUsageRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("SET posts_created = usage_tracking.posts_created + EXCLUDED.posts_created")).
		WithArgs(int64(7), "2026-10", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Increment(context.Background(), 7, "2026-10", models.UsagePostsCreated, 1))

	err := repo.Increment(context.Background(), 7, "2026-10", models.UsageCounter("bogus; DROP TABLE users"), 1)
	assert.Error(t, err)
}

func TestUsageGetEmptyPeriod(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUsageRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM usage_tracking")).
		WithArgs(int64(7), "2026-10").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	usage, err := repo.Get(context.Background(), 7, "2026-10")
	require.NoError(t, err)
	assert.Equal(t, int64(7), usage.UserID)
	assert.Equal(t, "2026-10", usage.Period)
	assert.Zero(t, usage.PostsCreated)
}

func TestAnalyticsUpsert(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAnalyticsRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (post_id, platform) DO UPDATE")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Upsert(context.Background(), &models.PostAnalytics{
		PostID:      1,
		Platform:    models.PlatformTwitter,
		Impressions: 100,
		Likes:       5,
		FetchedAt:   time.Now(),
	})
	require.NoError(t, err)
}

func TestAIModelSetDefault(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAIModelRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SET is_default = FALSE")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET is_default = TRUE")).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SetDefault(context.Background(), 3))
}

func TestApiKeyLookupUnknown(t *testing.T) {
	db, mock := newMock(t)
	repo := NewApiKeyRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE api_keys")).
		WithArgs("sk_missing").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	_, found, err := repo.GetUserIDByKey(context.Background(), "sk_missing")
	require.NoError(t, err)
	assert.False(t, found)
}
