package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/internal/repository"
	"github.com/Ghazanfar1991/syncrio/internal/transfer"
	"github.com/Ghazanfar1991/syncrio/pkg/logger"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

// scheduleGrace tolerates clock skew between the browser and the server.
const scheduleGrace = time.Minute

var allowedMediaTypes = map[string]struct{}{
	"mp4": {}, "mov": {}, "jpg": {}, "png": {}, "gif": {}, "webp": {},
}

// PublishEnqueuer hands a post to the background publisher right away.
type PublishEnqueuer interface {
	EnqueuePublish(ctx context.Context, postID int64) error
}

type PostService interface {
	Create(ctx context.Context, userID int64, pc *transfer.PostCreation, files []*multipart.FileHeader) (*models.Post, error)
	List(ctx context.Context, userID int64, status string) ([]*models.Post, error)
	Get(ctx context.Context, userID, postID int64) (*transfer.PostDetail, error)
	Update(ctx context.Context, userID, postID int64, pu *transfer.PostUpdate) (*models.Post, error)
	Schedule(ctx context.Context, userID, postID int64, at time.Time) (*models.Post, error)
	Approve(ctx context.Context, userID, postID int64) (*models.Post, error)
	PublishNow(ctx context.Context, userID, postID int64) error
	Remove(ctx context.Context, userID, postID int64) error
}

type postService struct {
	db        *sqlx.DB
	posts     repository.PostRepository
	pubs      repository.PublicationRepository
	accounts  repository.SocialAccountRepository
	assets    repository.MediaAssetRepository
	analytics repository.AnalyticsRepository
	usage     UsageService
	storage   MediaStorage
	enqueuer  PublishEnqueuer
	now       func() time.Time
}

func NewPostService(
	db *sqlx.DB,
	posts repository.PostRepository,
	pubs repository.PublicationRepository,
	accounts repository.SocialAccountRepository,
	assets repository.MediaAssetRepository,
	analytics repository.AnalyticsRepository,
	usage UsageService,
	storage MediaStorage,
	enqueuer PublishEnqueuer) PostService {
	return &postService{
		db:        db,
		posts:     posts,
		pubs:      pubs,
		accounts:  accounts,
		assets:    assets,
		analytics: analytics,
		usage:     usage,
		storage:   storage,
		enqueuer:  enqueuer,
		now:       time.Now,
	}
}

func (s *postService) Create(ctx context.Context, userID int64, pc *transfer.PostCreation, files []*multipart.FileHeader) (*models.Post, error) {
	if pc == nil {
		return nil, fmt.Errorf("%w: empty request", ErrInvalidInput)
	}
	if err := s.usage.CheckPostLimit(ctx, userID); err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:    userID,
		Title:     pc.Title,
		Content:   pc.Content,
		MediaURLs: pq.StringArray(pc.MediaURLs),
		Status:    models.PostStatusDraft,
	}

	now := s.now()
	switch {
	case pc.PublishNow:
		post.Status = models.PostStatusScheduled
		post.ScheduledAt = &now
	case pc.ScheduledAt != nil:
		if err := s.checkScheduleTime(*pc.ScheduledAt); err != nil {
			return nil, err
		}
		at := pc.ScheduledAt.UTC()
		post.Status = models.PostStatusScheduled
		post.ScheduledAt = &at
	}

	if post.Status == models.PostStatusScheduled && len(pc.SocialAccountIDs) == 0 {
		return nil, fmt.Errorf("%w: select at least one social account", ErrInvalidInput)
	}
	if pc.Content == "" && len(pc.MediaURLs) == 0 && len(files) == 0 {
		return nil, fmt.Errorf("%w: post has neither text nor media", ErrInvalidInput)
	}

	uploads, err := s.uploadFiles(ctx, userID, files)
	if err != nil {
		return nil, err
	}
	for _, a := range uploads {
		post.MediaURLs = append(post.MediaURLs, a.FileURL)
	}

	if err := s.checkAccounts(ctx, userID, pc.SocialAccountIDs, post); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	post.ID, err = s.posts.Create(ctx, tx, post)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	if err := s.pubs.CreateForPost(ctx, tx, post.ID, pc.SocialAccountIDs); err != nil {
		return nil, err
	}
	for i := range uploads {
		if _, err := s.assets.Create(ctx, tx, &uploads[i]); err != nil {
			return nil, fmt.Errorf("save media: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit post: %w", err)
	}

	if err := s.usage.Record(ctx, userID, models.UsagePostsCreated); err != nil {
		logger.Log.Warn("record usage", zap.Int64("user_id", userID), zap.Error(err))
	}

	if pc.PublishNow {
		s.enqueue(ctx, post.ID)
	}
	return post, nil
}

// uploadFiles sniffs every file, rejects unsupported types and stores the rest.
func (s *postService) uploadFiles(ctx context.Context, userID int64, files []*multipart.FileHeader) ([]models.MediaAsset, error) {
	uploads := make([]models.MediaAsset, 0, len(files))
	for _, fh := range files {
		data, err := readFileHeader(fh)
		if err != nil {
			return nil, err
		}

		kind, err := filetype.Match(data)
		if err != nil || kind == types.Unknown {
			return nil, fmt.Errorf("%w: %s has an unknown file type", ErrInvalidInput, fh.Filename)
		}
		if _, ok := allowedMediaTypes[kind.Extension]; !ok {
			return nil, fmt.Errorf("%w: file type %s is not allowed", ErrInvalidInput, kind.Extension)
		}

		id, err := gonanoid.New()
		if err != nil {
			return nil, err
		}
		key := id + "." + kind.Extension

		fileURL, err := s.storage.Upload(ctx, key, data, kind.MIME.Value)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, models.MediaAsset{
			UserID:   userID,
			FileName: fh.Filename,
			FileType: kind.MIME.Value,
			FileSize: int64(len(data)),
			FileURL:  fileURL,
		})
	}
	return uploads, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return data, nil
}

// checkAccounts verifies ownership of every account and the content limits of its platform.
func (s *postService) checkAccounts(ctx context.Context, userID int64, accountIDs []int64, post *models.Post) error {
	for _, id := range accountIDs {
		acc, err := s.accounts.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if acc == nil || acc.UserID != userID {
			return fmt.Errorf("%w: social account %d", ErrNotFound, id)
		}
		if err := ValidateContent(acc.Platform, post.Content, post.MediaURLs); err != nil {
			return err
		}
	}
	return nil
}

func (s *postService) checkPublications(ctx context.Context, post *models.Post) error {
	pubs, err := s.pubs.ListByPostID(ctx, post.ID)
	if err != nil {
		return err
	}
	if len(pubs) == 0 {
		return fmt.Errorf("%w: select at least one social account", ErrInvalidInput)
	}
	for _, p := range pubs {
		if err := ValidateContent(p.Platform, post.Content, post.MediaURLs); err != nil {
			return err
		}
	}
	return nil
}

func (s *postService) checkScheduleTime(at time.Time) error {
	if at.Before(s.now().Add(-scheduleGrace)) {
		return fmt.Errorf("%w: scheduled time is in the past", ErrInvalidInput)
	}
	return nil
}

func (s *postService) owned(ctx context.Context, userID, postID int64) (*models.Post, error) {
	post, err := s.posts.GetByIDForUser(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
	}
	return post, nil
}

func (s *postService) List(ctx context.Context, userID int64, status string) ([]*models.Post, error) {
	return s.posts.ListByUserID(ctx, userID, status)
}

func (s *postService) Get(ctx context.Context, userID, postID int64) (*transfer.PostDetail, error) {
	post, err := s.owned(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	pubs, err := s.pubs.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	stats, err := s.analytics.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &transfer.PostDetail{Post: post, Publications: pubs, Analytics: stats}, nil
}

func (s *postService) Update(ctx context.Context, userID, postID int64, pu *transfer.PostUpdate) (*models.Post, error) {
	post, err := s.owned(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsEditable() {
		return nil, fmt.Errorf("%w: %s posts cannot be edited", ErrInvalidTransition, post.Status)
	}

	if pu.Title != nil {
		post.Title = *pu.Title
	}
	if pu.Content != nil {
		post.Content = *pu.Content
	}
	if pu.MediaURLs != nil {
		post.MediaURLs = pq.StringArray(pu.MediaURLs)
	}
	if pu.ScheduledAt != nil {
		if post.Status != models.PostStatusScheduled {
			return nil, fmt.Errorf("%w: use the schedule action for %s posts", ErrInvalidTransition, post.Status)
		}
		if err := s.checkScheduleTime(*pu.ScheduledAt); err != nil {
			return nil, err
		}
		at := pu.ScheduledAt.UTC()
		post.ScheduledAt = &at
	}
	if post.Content == "" && len(post.MediaURLs) == 0 {
		return nil, fmt.Errorf("%w: post has neither text nor media", ErrInvalidInput)
	}

	if pu.SocialAccountIDs != nil {
		if len(pu.SocialAccountIDs) == 0 && post.Status == models.PostStatusScheduled {
			return nil, fmt.Errorf("%w: a scheduled post needs at least one social account", ErrInvalidInput)
		}
		if err := s.checkAccounts(ctx, userID, pu.SocialAccountIDs, post); err != nil {
			return nil, err
		}
	} else if post.Status == models.PostStatusScheduled {
		if err := s.checkPublications(ctx, post); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.posts.Update(ctx, tx, post); err != nil {
		return nil, err
	}
	if pu.SocialAccountIDs != nil {
		if err := s.pubs.DeletePendingByPostID(ctx, tx, post.ID); err != nil {
			return nil, err
		}
		if err := s.pubs.CreateForPost(ctx, tx, post.ID, pu.SocialAccountIDs); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit post: %w", err)
	}
	return post, nil
}

func (s *postService) Schedule(ctx context.Context, userID, postID int64, at time.Time) (*models.Post, error) {
	post, err := s.owned(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(post.Status, models.PostStatusScheduled) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, post.Status, models.PostStatusScheduled)
	}
	if err := s.checkScheduleTime(at); err != nil {
		return nil, err
	}
	if err := s.checkPublications(ctx, post); err != nil {
		return nil, err
	}

	at = at.UTC()
	post.Status = models.PostStatusScheduled
	post.ScheduledAt = &at
	if err := s.posts.Update(ctx, nil, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Approve(ctx context.Context, userID, postID int64) (*models.Post, error) {
	post, err := s.owned(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(post.Status, models.PostStatusApproved) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, post.Status, models.PostStatusApproved)
	}
	if err := s.posts.UpdatePostStatus(ctx, models.PostStatusApproved, post.ID); err != nil {
		return nil, err
	}
	post.Status = models.PostStatusApproved
	return post, nil
}

// PublishNow schedules the post for the current instant and enqueues it. If the
// enqueue fails the next scheduler tick still picks the post up.
func (s *postService) PublishNow(ctx context.Context, userID, postID int64) error {
	post, err := s.owned(ctx, userID, postID)
	if err != nil {
		return err
	}
	if !models.CanTransition(post.Status, models.PostStatusScheduled) {
		return fmt.Errorf("%w: %s posts cannot be published", ErrInvalidTransition, post.Status)
	}
	if err := s.checkPublications(ctx, post); err != nil {
		return err
	}

	now := s.now().UTC()
	post.Status = models.PostStatusScheduled
	post.ScheduledAt = &now
	if err := s.posts.Update(ctx, nil, post); err != nil {
		return err
	}

	s.enqueue(ctx, post.ID)
	return nil
}

func (s *postService) enqueue(ctx context.Context, postID int64) {
	if s.enqueuer == nil {
		return
	}
	if err := s.enqueuer.EnqueuePublish(ctx, postID); err != nil {
		logger.Log.Warn("enqueue publish, leaving it to the scheduler", zap.Int64("post_id", postID), zap.Error(err))
	}
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	if _, err := s.owned(ctx, userID, postID); err != nil {
		return err
	}
	return s.posts.Remove(ctx, postID)
}
