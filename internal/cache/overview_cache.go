package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Ghazanfar1991/syncrio/internal/transfer"
	"github.com/redis/go-redis/v9"
)

// OverviewCache stores dashboard overviews in one hash per user, one field per day range.
type OverviewCache struct {
	rdb *redis.Client
}

func NewOverviewCache(rdb *redis.Client) *OverviewCache {
	return &OverviewCache{rdb: rdb}
}

func overviewKey(userID int64) string {
	return fmt.Sprintf("analytics:overview:%d", userID)
}

func (c *OverviewCache) GetOverview(ctx context.Context, userID int64, days int) (*transfer.AnalyticsOverview, bool, error) {
	raw, err := c.rdb.HGet(ctx, overviewKey(userID), strconv.Itoa(days)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var o transfer.AnalyticsOverview
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, false, err
	}
	return &o, true, nil
}

func (c *OverviewCache) SetOverview(ctx context.Context, userID int64, days int, o *transfer.AnalyticsOverview, ttl time.Duration) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return err
	}

	key := overviewKey(userID)
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, key, strconv.Itoa(days), raw)
	pipe.Expire(ctx, key, ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *OverviewCache) InvalidateOverview(ctx context.Context, userID int64) error {
	return c.rdb.Del(ctx, overviewKey(userID)).Err()
}
