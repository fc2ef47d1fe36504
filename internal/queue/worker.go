package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Ghazanfar1991/syncrio/internal/cache"
	"github.com/Ghazanfar1991/syncrio/internal/metrics"
	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/pkg/logger"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func (p *Publisher) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	_, err := p.PublishPost(ctx, payload.PostID)
	if errors.Is(err, ErrPostLocked) {
		return nil
	}
	return err
}

func lockKey(postID int64) string {
	return fmt.Sprintf("lock:publish:%d", postID)
}

// PublishPost sends a scheduled post to every selected account, one after the other,
// and derives the post status from the outcomes. Posts that are no longer SCHEDULED
// are skipped.
func (p *Publisher) PublishPost(ctx context.Context, postID int64) (*PublishResult, error) {
	lock, err := p.locker.Acquire(ctx, lockKey(postID), p.lockTTL())
	if errors.Is(err, cache.ErrLockHeld) {
		return nil, ErrPostLocked
	}
	if err != nil {
		return nil, fmt.Errorf("lock post %d: %w", postID, err)
	}
	defer lock.Release()

	post, err := p.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("post %d not found", postID)
	}

	result := &PublishResult{PostID: postID, Status: post.Status}
	if post.Status != models.PostStatusScheduled {
		result.Skipped = true
		return result, nil
	}

	publications, err := p.pubs.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	for _, pub := range publications {
		if pub.Status == models.PublicationStatusPublished {
			result.Published++
			continue
		}

		// Pending rows are left for whoever holds the lock now.
		if err := lock.Extend(ctx, p.lockTTL()); err != nil {
			return result, fmt.Errorf("keep lock on post %d: %w", postID, err)
		}

		platformPostID, err := p.publishOne(ctx, post, pub)
		if err != nil {
			result.Failed++
			msg := err.Error()
			if msg == "" {
				msg = "publish failed"
			}
			logger.Log.Warn("publication failed",
				zap.Int64("post_id", postID),
				zap.Int64("publication_id", pub.ID),
				zap.String("platform", pub.Platform),
				zap.Error(err))
			if err := p.pubs.MarkFailed(ctx, pub.ID, msg); err != nil {
				logger.Log.Error("mark publication failed", zap.Int64("publication_id", pub.ID), zap.Error(err))
			}
			metrics.RecordPublication(pub.Platform, models.PublicationStatusFailed)
			continue
		}

		result.Published++
		if err := p.pubs.MarkPublished(ctx, pub.ID, platformPostID, p.now()); err != nil {
			logger.Log.Error("mark publication published", zap.Int64("publication_id", pub.ID), zap.Error(err))
		}
		metrics.RecordPublication(pub.Platform, models.PublicationStatusPublished)
	}

	if result.Published > 0 {
		result.Status = models.PostStatusPublished
		if err := p.posts.SetPublished(ctx, postID, p.now()); err != nil {
			return result, fmt.Errorf("set post %d published: %w", postID, err)
		}
		if err := p.usage.Record(ctx, post.UserID, models.UsagePostsPublished); err != nil {
			logger.Log.Warn("record usage", zap.Int64("user_id", post.UserID), zap.Error(err))
		}
	} else {
		result.Status = models.PostStatusFailed
		if err := p.posts.UpdatePostStatus(ctx, models.PostStatusFailed, postID); err != nil {
			return result, fmt.Errorf("set post %d failed: %w", postID, err)
		}
	}
	metrics.RecordPostFinished(result.Status)

	logger.Log.Info("post processed",
		zap.Int64("post_id", postID),
		zap.String("status", result.Status),
		zap.Int("published", result.Published),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (p *Publisher) publishOne(ctx context.Context, post *models.Post, pub *models.PostPublication) (platformPostID string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("publisher panic: %v", r)
		}
	}()

	acc, err := p.accounts.GetByID(ctx, pub.SocialAccountID)
	if err != nil {
		return "", fmt.Errorf("load social account: %w", err)
	}
	if acc == nil {
		return "", fmt.Errorf("social account %d no longer exists", pub.SocialAccountID)
	}

	publisher, ok := p.publishers[acc.Platform]
	if !ok {
		return "", fmt.Errorf("unsupported platform %q", acc.Platform)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return publisher.Publish(ctx, post, acc)
}
