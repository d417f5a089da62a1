package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skolaris/timetable-api/internal/models"
	appErrors "github.com/skolaris/timetable-api/pkg/errors"
)

type timetableVersionReader interface {
	ListByPlan(ctx context.Context, planID string) ([]models.TimetableVersion, error)
	FindByID(ctx context.Context, id string) (*models.TimetableVersion, error)
	SetCurrent(ctx context.Context, exec sqlx.ExtContext, planID, versionID string) error
}

type timetableEntryReader interface {
	ListByVersion(ctx context.Context, versionID string) ([]models.TimetableEntry, error)
}

type entryCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

// TimetableQueryService serves read access to generated timetables and version
// promotion. Entry listings are cached: a version's entries never change after
// generation, so cached payloads cannot go stale.
type TimetableQueryService struct {
	versions timetableVersionReader
	entries  timetableEntryReader
	tx       txProvider
	cache    entryCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewTimetableQueryService wires query dependencies. Cache may be nil; reads
// then go straight to the database.
func NewTimetableQueryService(
	versions timetableVersionReader,
	entries timetableEntryReader,
	tx txProvider,
	cache entryCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *TimetableQueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &TimetableQueryService{
		versions: versions,
		entries:  entries,
		tx:       tx,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// ListVersions returns a plan's versions, newest first.
func (s *TimetableQueryService) ListVersions(ctx context.Context, planID string) ([]models.TimetableVersion, error) {
	if planID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "plan id is required")
	}
	versions, err := s.versions.ListByPlan(ctx, planID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable versions")
	}
	return versions, nil
}

// GetEntries returns a version's entries ordered by day, slot, then class.
func (s *TimetableQueryService) GetEntries(ctx context.Context, versionID string) ([]models.TimetableEntry, error) {
	if versionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "version id is required")
	}

	cacheKey := "timetable:entries:" + versionID
	if s.cache != nil {
		if payload, ok := s.cache.Get(ctx, cacheKey); ok {
			var entries []models.TimetableEntry
			if err := json.Unmarshal([]byte(payload), &entries); err == nil {
				return entries, nil
			}
		}
	}

	if _, err := s.versions.FindByID(ctx, versionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable version not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable version")
	}
	entries, err := s.entries.ListByVersion(ctx, versionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable entries")
	}

	if s.cache != nil {
		if payload, err := json.Marshal(entries); err == nil {
			s.cache.Set(ctx, cacheKey, string(payload), s.cacheTTL)
		}
	}
	return entries, nil
}

// Promote marks a version as its plan's current timetable, demoting any sibling.
func (s *TimetableQueryService) Promote(ctx context.Context, versionID string) error {
	if versionID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "version id is required")
	}
	version, err := s.versions.FindByID(ctx, versionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable version not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable version")
	}
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin promotion transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.versions.SetCurrent(ctx, tx, version.PlanID, version.ID); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to promote timetable version")
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit promotion transaction")
		return err
	}

	s.logger.Info("timetable version promoted",
		zap.String("plan_id", version.PlanID),
		zap.String("version_id", version.ID),
	)
	return nil
}

// RedisEntryCache adapts a redis client to the entry cache contract. Cache
// failures degrade to database reads and are logged, never surfaced.
type RedisEntryCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisEntryCache wraps a redis client.
func NewRedisEntryCache(client *redis.Client, logger *zap.Logger) *RedisEntryCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisEntryCache{client: client, logger: logger}
}

// Get returns the cached payload and whether it was present.
func (c *RedisEntryCache) Get(ctx context.Context, key string) (string, bool) {
	payload, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return payload, true
}

// Set stores a payload with the given TTL.
func (c *RedisEntryCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
