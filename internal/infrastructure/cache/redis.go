// Package cache fronts the dashboard aggregate with Redis. All failures are
// soft: a broken cache degrades to recomputation, never to an error.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"goldloan-engine/internal/domain/dashboard"
)

const metricsKey = "goldloan:dashboard:metrics"

type DashboardCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ dashboard.Cache = (*DashboardCache)(nil)

func NewDashboardCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *DashboardCache {
	return &DashboardCache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "DashboardCache"),
	}
}

func (c *DashboardCache) GetMetrics(ctx context.Context) (*dashboard.Metrics, bool) {
	payload, err := c.client.Get(ctx, metricsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "Dashboard cache read failed", "error", err)
		}
		return nil, false
	}

	var m dashboard.Metrics
	if err := json.Unmarshal(payload, &m); err != nil {
		c.logger.WarnContext(ctx, "Dashboard cache entry corrupt, discarding", "error", err)
		c.client.Del(ctx, metricsKey)
		return nil, false
	}
	return &m, true
}

func (c *DashboardCache) SetMetrics(ctx context.Context, m *dashboard.Metrics) {
	payload, err := json.Marshal(m)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to encode dashboard metrics for cache", "error", err)
		return
	}
	if err := c.client.Set(ctx, metricsKey, payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "Dashboard cache write failed", "error", err)
	}
}
