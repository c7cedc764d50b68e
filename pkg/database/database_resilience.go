package database

import (
	"context"
	"errors"
	"time"

	"GameMasterService/config"
	"GameMasterService/pkg/apperrors"
	"GameMasterService/pkg/resilience"
	"GameMasterService/pkg/server"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthChecker предоставляет функции для проверки состояния баз данных
type HealthChecker struct {
	db           *gorm.DB
	redisClient  *redis.Client
	logger       *zap.Logger
	cfg          config.ResilienceConfig
	pgCircuit    *resilience.CircuitBreaker
	redisCircuit *resilience.CircuitBreaker
}

// NewDatabaseHealthChecker создает новый экземпляр проверки состояния баз данных.
// redisClient может быть nil, если кэш отключен.
func NewDatabaseHealthChecker(db *gorm.DB, redisClient *redis.Client, cfg config.ResilienceConfig, logger *zap.Logger) *HealthChecker {
	failureThreshold := cfg.CircuitBreaker.FailureThreshold
	resetTimeout := cfg.CircuitBreaker.ResetTimeout
	if failureThreshold <= 0 || resetTimeout <= 0 {
		failureThreshold, resetTimeout = resilience.DefaultCircuitBreakerOptions()
	}

	c := &HealthChecker{
		db:           db,
		redisClient:  redisClient,
		logger:       logger,
		cfg:          cfg,
		pgCircuit:    resilience.NewCircuitBreaker("postgres", failureThreshold, resetTimeout, logger, apperrors.IgnoredErrors...),
		redisCircuit: resilience.NewCircuitBreaker("redis", failureThreshold, resetTimeout, logger, apperrors.IgnoredErrors...),
	}
	c.pgCircuit.OnStateChange(recordBreakerState)
	c.redisCircuit.OnStateChange(recordBreakerState)

	return c
}

// recordBreakerState переводит состояние в шкалу метрики: 0 closed, 1 half-open, 2 open
func recordBreakerState(name string, state resilience.CircuitState) {
	value := 0
	switch state {
	case resilience.CircuitHalfOpen:
		value = 1
	case resilience.CircuitOpen:
		value = 2
	}
	server.RecordCircuitBreakerStateChange(name, value)
}

// RetryOptions возвращает настройки повторов для чтения из базы
func (c *HealthChecker) RetryOptions() resilience.RetryOptions {
	options := resilience.DefaultRetryOptions()
	if c.cfg.Retry.MaxRetries > 0 {
		options.MaxRetries = c.cfg.Retry.MaxRetries
		options.InitialBackoff = c.cfg.Retry.InitialBackoff
		options.MaxBackoff = c.cfg.Retry.MaxBackoff
		options.BackoffFactor = c.cfg.Retry.BackoffFactor
		options.Jitter = c.cfg.Retry.Jitter
	}
	options.NonRetryableErrors = apperrors.IgnoredErrors
	return options
}

// DatabaseTimeout возвращает таймаут для команды базы данных
func (c *HealthChecker) DatabaseTimeout() time.Duration {
	if c.cfg.Database.CommandTimeout > 0 {
		return c.cfg.Database.CommandTimeout
	}
	return 3 * time.Second
}

// RedisTimeout возвращает таймаут для команды Redis
func (c *HealthChecker) RedisTimeout() time.Duration {
	if c.cfg.Redis.CommandTimeout > 0 {
		return c.cfg.Redis.CommandTimeout
	}
	return time.Second
}

// IsDatabaseHealthy проверяет здоровье базы данных
func (c *HealthChecker) IsDatabaseHealthy(ctx context.Context) bool {
	if c.db == nil {
		return true
	}

	var result int
	err := c.pgCircuit.Execute(ctx, "postgres_health_check", func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		sqlDB, err := c.db.DB()
		if err != nil {
			return err
		}

		return sqlDB.QueryRowContext(ctx, "SELECT 1").Scan(&result)
	})

	return err == nil && result == 1
}

// IsRedisHealthy проверяет здоровье Redis
func (c *HealthChecker) IsRedisHealthy(ctx context.Context) bool {
	if c.redisClient == nil {
		return false
	}

	err := c.redisCircuit.Execute(ctx, "redis_health_check", func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
		defer cancel()

		return c.redisClient.Ping(ctx).Err()
	})

	return err == nil
}

// WithDatabaseResilience выполняет операцию в базе данных с механизмами отказоустойчивости
func (c *HealthChecker) WithDatabaseResilience(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	err := c.pgCircuit.Execute(ctx, operation, fn)

	// Отсутствие записи и ошибки бизнес-логики не считаются сбоем базы
	if apperrors.IsNotFound(err) || apperrors.IsConflict(err) || apperrors.IsValidation(err) {
		c.logger.Debug("Ошибка бизнес-логики, не учитывается circuit breaker",
			zap.String("operation", operation),
			zap.Error(err))
	}

	return err
}

// WithRedisResilience выполняет операцию в Redis с механизмами отказоустойчивости
func (c *HealthChecker) WithRedisResilience(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	err := c.redisCircuit.Execute(ctx, operation, fn)

	if errors.Is(err, redis.Nil) {
		c.logger.Debug("Ключ не найден в Redis, это не ошибка для circuit breaker",
			zap.String("operation", operation))
	}

	return err
}

// SafeDBOperation выполняет операцию в базе данных, логируя ошибки и добавляя контекст
func SafeDBOperation(ctx context.Context, logger *zap.Logger, operation string, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	if err == nil {
		return nil
	}

	// Ошибки бизнес-логики логируются на уровне сервиса
	if apperrors.IsNotFound(err) || apperrors.IsConflict(err) || apperrors.IsValidation(err) {
		return err
	}

	logger.Error("Database operation failed",
		zap.String("operation", operation),
		zap.Error(err))

	if errors.Is(err, gorm.ErrInvalidTransaction) {
		logger.Error("Database transaction failed due to invalid transaction",
			zap.String("operation", operation))
	}

	return err
}

// SafeRedisOperation выполняет операцию в Redis, логируя ошибки и добавляя контекст
func SafeRedisOperation(ctx context.Context, logger *zap.Logger, operation string, fn func(ctx context.Context) error) error {
	// Устанавливаем таймаут для контекста, если его еще нет
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
	}

	err := fn(ctx)
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}

	logger.Error("Redis operation failed",
		zap.String("operation", operation),
		zap.Error(err))

	if errors.Is(err, context.DeadlineExceeded) {
		logger.Error("Redis operation timed out", zap.String("operation", operation))
	} else if errors.Is(err, redis.ErrClosed) {
		logger.Error("Redis connection closed", zap.String("operation", operation))
	}

	return err
}
