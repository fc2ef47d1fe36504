package job

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/Ghazanfar1991/syncrio/internal/metrics"
	"github.com/Ghazanfar1991/syncrio/internal/queue"
	"github.com/Ghazanfar1991/syncrio/internal/repository"
	"github.com/Ghazanfar1991/syncrio/pkg/logger"
	"go.uber.org/zap"
)

type PostPublisher interface {
	PublishPost(ctx context.Context, postID int64) (*queue.PublishResult, error)
}

// SchedulerJob publishes the posts whose scheduled time has passed.
type SchedulerJob struct {
	posts     repository.PostRepository
	publisher PostPublisher
	batchSize int
	running   atomic.Bool
	now       func() time.Time
}

func NewSchedulerJob(posts repository.PostRepository, publisher PostPublisher, batchSize int) *SchedulerJob {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SchedulerJob{
		posts:     posts,
		publisher: publisher,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Run is the cron entry point. A tick that starts while the previous one is
// still publishing does nothing.
func (j *SchedulerJob) Run() {
	if !j.running.CompareAndSwap(false, true) {
		logger.Log.Debug("scheduler tick skipped, previous tick still running")
		return
	}
	defer j.running.Store(false)

	if _, err := j.RunOnce(context.Background()); err != nil {
		logger.Log.Error("scheduler tick", zap.Error(err))
	}
}

// RunOnce processes one batch of due posts sequentially and returns how many were handled.
func (j *SchedulerJob) RunOnce(ctx context.Context) (int, error) {
	start := j.now()
	due, err := j.posts.ListDue(ctx, start, j.batchSize)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, post := range due {
		if _, err := j.publisher.PublishPost(ctx, post.ID); err != nil {
			if errors.Is(err, queue.ErrPostLocked) {
				continue
			}
			logger.Log.Error("publish due post", zap.Int64("post_id", post.ID), zap.Error(err))
			continue
		}
		processed++
	}

	metrics.ObserveSchedulerTick(time.Since(start), len(due))
	if len(due) > 0 {
		logger.Log.Info("scheduler tick", zap.Int("due", len(due)), zap.Int("processed", processed))
	}
	return processed, nil
}
