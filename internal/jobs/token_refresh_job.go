package job

import (
	"context"
	"sync"
	"time"

	"github.com/Ghazanfar1991/syncrio/internal/metrics"
	"github.com/Ghazanfar1991/syncrio/internal/models"
	"github.com/Ghazanfar1991/syncrio/internal/repository"
	"github.com/Ghazanfar1991/syncrio/internal/service"
	"github.com/Ghazanfar1991/syncrio/pkg/logger"
	"go.uber.org/zap"
)

const (
	refreshWindow      = 30 * time.Minute
	refreshConcurrency = 10
	refreshTimeout     = time.Minute
)

type TokenRefreshJob struct {
	sr         repository.SocialAccountRepository
	connectors map[string]service.Connector
	now        func() time.Time
}

func NewTokenRefreshJob(sr repository.SocialAccountRepository, connectors map[string]service.Connector) *TokenRefreshJob {
	return &TokenRefreshJob{
		sr:         sr,
		connectors: connectors,
		now:        time.Now,
	}
}

// RefreshTokens renews every active token that expires within the next 30 minutes.
func (c *TokenRefreshJob) RefreshTokens() {
	c.RefreshOnce(context.Background())
}

func (c *TokenRefreshJob) RefreshOnce(ctx context.Context) (refreshed, failed int) {
	accounts, err := c.sr.ListExpiring(ctx, c.now().Add(refreshWindow))
	if err != nil {
		logger.Log.Error("list expiring accounts", zap.Error(err))
		return 0, 0
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	semaphore := make(chan struct{}, refreshConcurrency)

	for _, acc := range accounts {
		conn, ok := c.connectors[acc.Platform]
		if !ok {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount, conn service.Connector) {
			defer wg.Done()
			defer func() { <-semaphore }()

			rctx, cancel := context.WithTimeout(ctx, refreshTimeout)
			defer cancel()

			err := conn.Refresh(rctx, acc)
			metrics.RecordTokenRefresh(acc.Platform, err)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				logger.Log.Warn("refresh token",
					zap.Int64("account_id", acc.ID),
					zap.String("platform", acc.Platform),
					zap.Error(err))
				return
			}
			refreshed++
		}(acc, conn)
	}

	wg.Wait()
	return refreshed, failed
}
