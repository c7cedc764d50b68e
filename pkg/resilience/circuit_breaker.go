package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CircuitState состояние выключателя
type CircuitState int

const (
	// CircuitClosed запросы проходят, ошибки подсчитываются
	CircuitClosed CircuitState = iota
	// CircuitOpen запросы отклоняются до истечения resetTimeout
	CircuitOpen
	// CircuitHalfOpen пропускается один пробный запрос
	CircuitHalfOpen
)

// ErrCircuitOpen возвращается, пока выключатель не пропускает запросы
var ErrCircuitOpen = errors.New("circuit breaker is open")

// StateListener получает уведомления о смене состояния
type StateListener func(name string, state CircuitState)

// CircuitBreaker отсекает обращения к хранилищу после серии подряд идущих сбоев.
// Ошибки из ignoredErrors (бизнес-ошибки) не считаются сбоями.
type CircuitBreaker struct {
	name             string
	failureThreshold int
	resetTimeout     time.Duration
	ignoredErrors    []error
	logger           *zap.Logger
	now              func() time.Time

	mu       sync.Mutex
	state    CircuitState
	failures int
	openedAt time.Time
	probing  bool
	listener StateListener
}

// NewCircuitBreaker создает выключатель в закрытом состоянии
func NewCircuitBreaker(name string, failureThreshold int, resetTimeout time.Duration, logger *zap.Logger, ignoredErrors ...error) *CircuitBreaker {
	return &CircuitBreaker{
		name:             name,
		failureThreshold: max(failureThreshold, 1),
		resetTimeout:     resetTimeout,
		ignoredErrors:    ignoredErrors,
		logger:           logger,
		now:              time.Now,
		state:            CircuitClosed,
	}
}

// DefaultCircuitBreakerOptions порог в 5 сбоев и сброс через 30 секунд
func DefaultCircuitBreakerOptions() (int, time.Duration) {
	return 5, 30 * time.Second
}

// OnStateChange регистрирует обработчик и сразу сообщает ему текущее состояние
func (cb *CircuitBreaker) OnStateChange(listener StateListener) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.listener = listener
	if listener != nil {
		listener(cb.name, cb.state)
	}
}

func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Execute выполняет fn, если выключатель пропускает запрос
func (cb *CircuitBreaker) Execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	probe, err := cb.admit(operation)
	if err != nil {
		cb.logger.Warn("Circuit breaker preventing operation execution",
			zap.String("breaker", cb.name),
			zap.String("operation", operation))
		return err
	}

	err = fn(ctx)
	cb.record(operation, probe, err)
	return err
}

// admit решает, пропустить ли запрос; probe означает пробный запрос полуоткрытого состояния
func (cb *CircuitBreaker) admit(operation string) (probe bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen && cb.now().Sub(cb.openedAt) >= cb.resetTimeout {
		cb.setState(CircuitHalfOpen)
		cb.logger.Info("Circuit breaker half-opened",
			zap.String("breaker", cb.name),
			zap.String("operation", operation))
	}

	switch cb.state {
	case CircuitClosed:
		return false, nil
	case CircuitHalfOpen:
		if cb.probing {
			return false, ErrCircuitOpen
		}
		cb.probing = true
		return true, nil
	}
	return false, ErrCircuitOpen
}

func (cb *CircuitBreaker) record(operation string, probe bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if probe {
		cb.probing = false
	}

	failed := err != nil && !cb.ignored(err)
	if err != nil && !failed {
		cb.logger.Debug("Ignoring business error for circuit breaker",
			zap.String("operation", operation),
			zap.Error(err))
	}

	switch {
	case probe && failed:
		cb.trip(operation)
	case probe:
		cb.failures = 0
		cb.setState(CircuitClosed)
		cb.logger.Info("Circuit breaker closed",
			zap.String("breaker", cb.name),
			zap.String("operation", operation))
	case cb.state != CircuitClosed:
		// ответ запроса, начатого до размыкания
	case failed:
		cb.failures++
		if cb.failures >= cb.failureThreshold {
			cb.trip(operation)
		}
	case err == nil:
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) trip(operation string) {
	cb.openedAt = cb.now()
	cb.setState(CircuitOpen)
	cb.logger.Warn("Circuit breaker opened",
		zap.String("breaker", cb.name),
		zap.String("operation", operation),
		zap.Int("failures", cb.failures),
		zap.Duration("reset_timeout", cb.resetTimeout))
}

// setState вызывается под мьютексом
func (cb *CircuitBreaker) setState(state CircuitState) {
	if cb.state == state {
		return
	}
	cb.state = state
	if cb.listener != nil {
		cb.listener(cb.name, state)
	}
}

func (cb *CircuitBreaker) ignored(err error) bool {
	for _, target := range cb.ignoredErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// GetState возвращает текущее состояние; истекший таймаут открытого состояния
// отражается при следующем запросе
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) String() string {
	return cb.GetState().String()
}

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "CLOSED"
	case CircuitOpen:
		return "OPEN"
	case CircuitHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}
