package dashboardstats

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "hr-backoffice/internal/common/errors"
	"hr-backoffice/internal/common/logger"
	"hr-backoffice/internal/common/metrics"
	"hr-backoffice/internal/models"

	"github.com/redis/go-redis/v9"
)

const OperationName = "dashboard-stats"

type JobCounter interface {
	Count(ctx context.Context) (int64, error)
}

type ApplicationCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Handler serves job and application totals, read through a Redis cache.
type Handler struct {
	config *Config
	jobs   JobCounter
	apps   ApplicationCounter
	redis  redis.Cmdable
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, jobs JobCounter, apps ApplicationCounter, rdb redis.Cmdable, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Handler{
		config: config,
		jobs:   jobs,
		apps:   apps,
		redis:  rdb,
		logger: log.WithFields(map[string]interface{}{"operation": OperationName}),
		now:    time.Now,
	}
}

func (h *Handler) Execute(ctx context.Context) (*models.DashboardStats, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	if stats, ok := h.cached(ctx); ok {
		return stats, nil
	}

	totalJobs, err := h.jobs.Count(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("count jobs", err)
	}
	totalApps, err := h.apps.Count(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("count applications", err)
	}

	stats := &models.DashboardStats{
		TotalJobs:         totalJobs,
		TotalApplications: totalApps,
		GeneratedAt:       h.now().UTC(),
	}
	h.store(ctx, stats)
	return stats, nil
}

// Invalidate drops the cached totals so the next read recomputes them.
func (h *Handler) Invalidate(ctx context.Context) error {
	if h.redis == nil {
		return nil
	}
	return h.redis.Del(ctx, CacheKey).Err()
}

func (h *Handler) cached(ctx context.Context) (*models.DashboardStats, bool) {
	if h.redis == nil {
		return nil, false
	}
	raw, err := h.redis.Get(ctx, CacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			h.logger.Warn("stats cache read failed, using database", map[string]interface{}{"error": err})
		}
		metrics.CacheLookups.WithLabelValues(OperationName, "miss").Inc()
		return nil, false
	}

	var stats models.DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		h.logger.Warn("discarding unreadable stats cache entry", map[string]interface{}{"error": err})
		metrics.CacheLookups.WithLabelValues(OperationName, "miss").Inc()
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues(OperationName, "hit").Inc()
	return &stats, true
}

func (h *Handler) store(ctx context.Context, stats *models.DashboardStats) {
	if h.redis == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := h.redis.Set(ctx, CacheKey, raw, h.config.CacheTTL).Err(); err != nil {
		h.logger.Warn("stats cache write failed", map[string]interface{}{"error": err})
	}
}
