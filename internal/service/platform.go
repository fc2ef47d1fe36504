package service

import (
	"context"
	"sort"

	"github.com/Ghazanfar1991/syncrio/internal/models"
)

// Publisher sends a post to one connected account and returns the platform's id for it.
type Publisher interface {
	Publish(ctx context.Context, post *models.Post, acc *models.SocialAccount) (string, error)
}

// MetricsFetcher reads engagement numbers of an already published post.
type MetricsFetcher interface {
	FetchMetrics(ctx context.Context, acc *models.SocialAccount, platformPostID string) (*models.PostAnalytics, error)
}

// Connector runs the OAuth flow that links an account and keeps its tokens fresh.
type Connector interface {
	AuthURL(ctx context.Context, state string) (string, error)
	Callback(ctx context.Context, code, state string, userID int64) error
	Refresh(ctx context.Context, acc *models.SocialAccount) error
}

// OAuth1Connector links accounts with OAuth 1.0a user tokens, which sign requests
// with a token secret instead of expiring.
type OAuth1Connector interface {
	OAuth1URL(ctx context.Context, state string) (string, error)
	OAuth1Callback(ctx context.Context, requestToken, verifier string, userID int64) error
}

type Platform interface {
	Name() string
	Publisher
	MetricsFetcher
	Connector
}

// Registry indexes the platform adapters by name.
type Registry map[string]Platform

func NewRegistry(platforms ...Platform) Registry {
	r := make(Registry, len(platforms))
	for _, p := range platforms {
		r[p.Name()] = p
	}
	return r
}

func (r Registry) Get(name string) (Platform, error) {
	p, ok := r[name]
	if !ok {
		return nil, ErrUnknownPlatform
	}
	return p, nil
}

func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r Registry) Publishers() map[string]Publisher {
	out := make(map[string]Publisher, len(r))
	for name, p := range r {
		out[name] = p
	}
	return out
}

func (r Registry) MetricsFetchers() map[string]MetricsFetcher {
	out := make(map[string]MetricsFetcher, len(r))
	for name, p := range r {
		out[name] = p
	}
	return out
}

func (r Registry) Connectors() map[string]Connector {
	out := make(map[string]Connector, len(r))
	for name, p := range r {
		out[name] = p
	}
	return out
}
