package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RetryOptions настройки повторов поверх экспоненциальной задержки
type RetryOptions struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	Jitter         float64
	// RetryableErrors ограничивает повторы перечисленными ошибками; пустой список разрешает все
	RetryableErrors []error
	// NonRetryableErrors прерывают повторы сразу, например "не найдено"
	NonRetryableErrors []error
}

// DefaultRetryOptions возвращает настройки по умолчанию
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxRetries:     3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.2,
	}
}

// newBackOff строит политику задержек без ограничения по общему времени
func newBackOff(options RetryOptions) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = options.InitialBackoff
	b.MaxInterval = options.MaxBackoff
	b.Multiplier = options.BackoffFactor
	b.RandomizationFactor = options.Jitter
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// WithRetry выполняет fn, повторяя временные ошибки с экспоненциальной задержкой.
// Возвращает последнюю ошибку fn либо ошибку контекста.
func WithRetry(ctx context.Context, logger *zap.Logger, operation string, options RetryOptions, fn func(context.Context) error) error {
	attempt := 0
	op := func() error {
		attempt++
		err := fn(ctx)
		if err != nil && !isRetryable(err, options.RetryableErrors, options.NonRetryableErrors) {
			logger.Warn("Non-retryable error occurred",
				zap.String("operation", operation),
				zap.Error(err))
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		logger.Info("Retrying operation after error",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err))
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(newBackOff(options), uint64(max(options.MaxRetries, 0))), ctx)
	err := backoff.RetryNotify(op, policy, notify)

	switch {
	case err == nil:
		if attempt > 1 {
			logger.Info("Operation succeeded after retries",
				zap.String("operation", operation),
				zap.Int("attempt", attempt))
		}
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		logger.Warn("Context cancelled during retry",
			zap.String("operation", operation),
			zap.Error(err))
	case attempt > options.MaxRetries:
		logger.Warn("All retry attempts failed",
			zap.String("operation", operation),
			zap.Int("attempts", attempt),
			zap.Error(err))
	}
	return err
}

// isRetryable проверяет, нужно ли повторять операцию для данной ошибки
func isRetryable(err error, retryableErrors, nonRetryableErrors []error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrCircuitOpen) {
		return false
	}
	for _, target := range nonRetryableErrors {
		if errors.Is(err, target) {
			return false
		}
	}
	if len(retryableErrors) == 0 {
		return true
	}
	for _, target := range retryableErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
