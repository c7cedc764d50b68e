package redis

import (
	"context"
	"errors"
	"time"

	"GameMasterService/internal/models"
	"GameMasterService/pkg/apperrors"
	"GameMasterService/pkg/database"
	"GameMasterService/pkg/server"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ResilientCacheRepository добавляет к кэшу таймауты, circuit breaker и метрики.
// Ошибки записи и удаления только логируются: кэш не должен ломать запрос.
type ResilientCacheRepository struct {
	repo          *CacheRepository
	logger        *zap.Logger
	healthChecker *database.HealthChecker
}

// NewResilientCacheRepository создает новый экземпляр отказоустойчивого кэш-репозитория
func NewResilientCacheRepository(client *redis.Client, healthChecker *database.HealthChecker, logger *zap.Logger) *ResilientCacheRepository {
	return &ResilientCacheRepository{
		repo:          NewCacheRepository(client),
		logger:        logger,
		healthChecker: healthChecker,
	}
}

func (r *ResilientCacheRepository) run(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.healthChecker.RedisTimeout())
	defer cancel()

	err := r.healthChecker.WithRedisResilience(ctx, operation, func(ctx context.Context) error {
		return database.SafeRedisOperation(ctx, r.logger, operation, fn)
	})

	// Промах не считается ошибкой в метриках
	metricErr := err
	if errors.Is(err, redis.Nil) {
		metricErr = nil
	}
	server.RecordCacheOperation(operation, time.Since(startTime), metricErr)
	return err
}

// GetUser получает пользователя; любой сбой кэша выглядит как промах
func (r *ResilientCacheRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user *models.User
	err := r.run(ctx, "get_user_cache", func(ctx context.Context) error {
		var err error
		user, err = r.repo.GetUser(ctx, id)
		return err
	})
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("User cache read failed, falling back to store", zap.String("user_id", id), zap.Error(err))
		}
		return nil, apperrors.ErrCacheMiss
	}
	return user, nil
}

// SetUser кэширует пользователя
func (r *ResilientCacheRepository) SetUser(ctx context.Context, user *models.User) error {
	err := r.run(ctx, "set_user_cache", func(ctx context.Context) error {
		return r.repo.SetUser(ctx, user)
	})
	if err != nil {
		r.logger.Warn("Failed to cache user, continuing without caching", zap.String("user_id", user.ID), zap.Error(err))
	}
	return nil
}

// DeleteUsers инвалидирует профили после изменения
func (r *ResilientCacheRepository) DeleteUsers(ctx context.Context, ids ...string) error {
	err := r.run(ctx, "delete_user_cache", func(ctx context.Context) error {
		return r.repo.DeleteUsers(ctx, ids...)
	})
	if err != nil {
		r.logger.Warn("Failed to invalidate user cache", zap.Strings("user_ids", ids), zap.Error(err))
	}
	return nil
}

// GetEvent получает событие; любой сбой кэша выглядит как промах
func (r *ResilientCacheRepository) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var event *models.Event
	err := r.run(ctx, "get_event_cache", func(ctx context.Context) error {
		var err error
		event, err = r.repo.GetEvent(ctx, id)
		return err
	})
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("Event cache read failed, falling back to store", zap.String("event_id", id), zap.Error(err))
		}
		return nil, apperrors.ErrCacheMiss
	}
	return event, nil
}

// SetEvent кэширует событие
func (r *ResilientCacheRepository) SetEvent(ctx context.Context, event *models.Event) error {
	err := r.run(ctx, "set_event_cache", func(ctx context.Context) error {
		return r.repo.SetEvent(ctx, event)
	})
	if err != nil {
		r.logger.Warn("Failed to cache event", zap.String("event_id", event.ID), zap.Error(err))
	}
	return nil
}

// DeleteEvent инвалидирует событие
func (r *ResilientCacheRepository) DeleteEvent(ctx context.Context, id string) error {
	err := r.run(ctx, "delete_event_cache", func(ctx context.Context) error {
		return r.repo.DeleteEvent(ctx, id)
	})
	if err != nil {
		r.logger.Warn("Failed to invalidate event cache", zap.String("event_id", id), zap.Error(err))
	}
	return nil
}

// NoopCache используется при выключенном Redis: всегда промах
type NoopCache struct{}

func (NoopCache) GetUser(ctx context.Context, id string) (*models.User, error) {
	return nil, apperrors.ErrCacheMiss
}

func (NoopCache) SetUser(ctx context.Context, user *models.User) error { return nil }

func (NoopCache) DeleteUsers(ctx context.Context, ids ...string) error { return nil }

func (NoopCache) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return nil, apperrors.ErrCacheMiss
}

func (NoopCache) SetEvent(ctx context.Context, event *models.Event) error { return nil }

func (NoopCache) DeleteEvent(ctx context.Context, id string) error { return nil }
