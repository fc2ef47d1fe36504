package queue

import (
	"errors"
	"time"

	"github.com/Ghazanfar1991/syncrio/internal/cache"
	"github.com/Ghazanfar1991/syncrio/internal/repository"
	"github.com/Ghazanfar1991/syncrio/internal/service"
)

const (
	defaultPublishTimeout = 5 * time.Minute
	lockMargin            = 2 * time.Minute
)

var ErrPostLocked = errors.New("post is already being published")

// Publisher runs the publishing pipeline of one post at a time.
type Publisher struct {
	posts      repository.PostRepository
	pubs       repository.PublicationRepository
	accounts   repository.SocialAccountRepository
	publishers map[string]service.Publisher
	usage      service.UsageService
	locker     cache.Locker
	timeout    time.Duration
	now        func() time.Time
}

func NewPublisher(
	posts repository.PostRepository,
	pubs repository.PublicationRepository,
	accounts repository.SocialAccountRepository,
	publishers map[string]service.Publisher,
	usage service.UsageService,
	locker cache.Locker,
	timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	if locker == nil {
		locker = cache.NopLocker{}
	}
	return &Publisher{
		posts:      posts,
		pubs:       pubs,
		accounts:   accounts,
		publishers: publishers,
		usage:      usage,
		locker:     locker,
		timeout:    timeout,
		now:        time.Now,
	}
}

// lockTTL covers one publication. The lock is extended before each one.
func (p *Publisher) lockTTL() time.Duration {
	return p.timeout + lockMargin
}

const TaskTypePublishPost = "publish:post"

type PublishPostPayload struct {
	PostID int64 `json:"post_id"`
}

// PublishResult summarises one run of the pipeline.
type PublishResult struct {
	PostID    int64  `json:"post_id"`
	Status    string `json:"status"`
	Published int    `json:"published"`
	Failed    int    `json:"failed"`
	Skipped   bool   `json:"skipped"`
}
