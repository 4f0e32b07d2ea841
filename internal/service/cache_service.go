package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/wallsetting-api/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService is a namespaced read-through cache. Failures are logged and
// reported as misses so that callers always fall back to the database.
type CacheService struct {
	repo      CacheRepository
	metrics   *MetricsService
	namespace string
	ttl       time.Duration
	logger    *zap.Logger
	enabled   bool
}

// NewCacheService constructs a cache service for one key namespace.
func NewCacheService(repo CacheRepository, metrics *MetricsService, namespace string, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{
		repo:      repo,
		metrics:   metrics,
		namespace: namespace,
		ttl:       ttl,
		logger:    logger,
		enabled:   enabled,
	}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Key joins parts under the service namespace.
func (s *CacheService) Key(parts ...string) string {
	if s == nil {
		return strings.Join(parts, ":")
	}
	return s.namespace + ":" + strings.Join(parts, ":")
}

// Get loads key into dest and reports whether it was a hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(s.namespace, err == nil, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}
	return err == nil
}

// Set stores value under key with the service TTL.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) {
	if !s.Enabled() {
		return
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, s.ttl)
	s.metrics.ObserveCacheWrite(s.namespace, time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops every key in the namespace.
func (s *CacheService) Invalidate(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	pattern := s.namespace + ":*"
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
	}
}
