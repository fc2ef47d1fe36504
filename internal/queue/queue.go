package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Ghazanfar1991/syncrio/pkg/logger"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Client puts publish-now tasks on the asynq queue.
type Client struct {
	client *asynq.Client
}

func NewClient(client *asynq.Client) *Client {
	return &Client{client: client}
}

func publishTaskID(postID int64) string {
	return fmt.Sprintf("publish:%d", postID)
}

func NewPublishTask(postID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(PublishPostPayload{PostID: postID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypePublishPost, payload, asynq.TaskID(publishTaskID(postID)), asynq.MaxRetry(0)), nil
}

// EnqueuePublish is a no-op when a task for the post is already queued.
func (c *Client) EnqueuePublish(ctx context.Context, postID int64) error {
	task, err := NewPublishTask(postID)
	if err != nil {
		return err
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		logger.Log.Debug("publish task already queued", zap.Int64("post_id", postID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue publish task: %w", err)
	}

	logger.Log.Info("publish task enqueued", zap.Int64("post_id", postID), zap.String("task_id", info.ID))
	return nil
}
