package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestCircuitBreaker_States(t *testing.T) {
	logger := zap.NewNop()

	failureThreshold := 3
	resetTimeout := 200 * time.Millisecond
	cb := NewCircuitBreaker("postgres", failureThreshold, resetTimeout, logger)

	if state := cb.GetState(); state != CircuitClosed {
		t.Errorf("Expected initial state to be CLOSED, got %v", cb)
	}

	testErr := errors.New("connection refused")
	ctx := context.Background()

	// Шаг 1: circuit breaker открывается после серии ошибок
	for i := 0; i < failureThreshold; i++ {
		err := cb.Execute(ctx, "lock_users", func(ctx context.Context) error {
			return testErr
		})
		if !errors.Is(err, testErr) {
			t.Errorf("Expected test error, got: %v", err)
		}
	}
	if state := cb.GetState(); state != CircuitOpen {
		t.Errorf("Expected circuit to be OPEN after %d failures, got %v", failureThreshold, cb)
	}

	// Шаг 2: при открытом circuit breaker функция не выполняется
	called := false
	err := cb.Execute(ctx, "lock_users", func(ctx context.Context) error {
		called = true
		return nil
	})
	if called {
		t.Error("Operation was called when circuit is open")
	}
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Expected ErrCircuitOpen, got: %v", err)
	}

	// Шаг 3: после таймаута пробный запрос закрывает circuit breaker
	time.Sleep(resetTimeout + 50*time.Millisecond)
	err = cb.Execute(ctx, "lock_users", func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Errorf("Expected no error in half-open state, got: %v", err)
	}
	if state := cb.GetState(); state != CircuitClosed {
		t.Errorf("Expected circuit to be CLOSED after successful probe, got %v", cb)
	}

	// Шаг 4: ошибка в полуоткрытом состоянии снова открывает circuit breaker
	for i := 0; i < failureThreshold; i++ {
		_ = cb.Execute(ctx, "lock_users", func(ctx context.Context) error {
			return testErr
		})
	}
	time.Sleep(resetTimeout + 50*time.Millisecond)
	_ = cb.Execute(ctx, "lock_users", func(ctx context.Context) error {
		return testErr
	})
	if state := cb.GetState(); state != CircuitOpen {
		t.Errorf("Expected circuit to be OPEN after failure in half-open state, got %v", cb)
	}
}

func TestCircuitBreaker_IgnoredErrors(t *testing.T) {
	notFound := errors.New("user not found")
	cb := NewCircuitBreaker("postgres", 1, time.Second, zap.NewNop(), notFound)

	for i := 0; i < 5; i++ {
		err := cb.Execute(context.Background(), "get_user", func(ctx context.Context) error {
			return notFound
		})
		if !errors.Is(err, notFound) {
			t.Fatalf("Expected not found error to be returned, got %v", err)
		}
	}

	if state := cb.GetState(); state != CircuitClosed {
		t.Errorf("Expected ignored errors to keep circuit CLOSED, got %v", cb)
	}
}

func TestCircuitBreaker_StateListener(t *testing.T) {
	var mu sync.Mutex
	var seen []CircuitState

	cb := NewCircuitBreaker("redis", 1, 10*time.Millisecond, zap.NewNop())
	cb.OnStateChange(func(name string, state CircuitState) {
		if name != "redis" {
			t.Errorf("Expected breaker name redis, got %s", name)
		}
		mu.Lock()
		seen = append(seen, state)
		mu.Unlock()
	})

	ctx := context.Background()
	_ = cb.Execute(ctx, "get_user_cache", func(ctx context.Context) error { return errors.New("timeout") })
	time.Sleep(20 * time.Millisecond)
	_ = cb.Execute(ctx, "get_user_cache", func(ctx context.Context) error { return nil })

	mu.Lock()
	defer mu.Unlock()
	want := []CircuitState{CircuitClosed, CircuitOpen, CircuitHalfOpen, CircuitClosed}
	if len(seen) != len(want) {
		t.Fatalf("Expected transitions %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("Expected transition %d to be %v, got %v", i, want[i], seen[i])
		}
	}
}

func TestCircuitBreaker_Concurrency(t *testing.T) {
	cb := NewCircuitBreaker("postgres", 5, time.Second, zap.NewNop())
	ctx := context.Background()

	const numGoroutines = 10
	const numRequests = 20

	var wg sync.WaitGroup
	ready := make(chan struct{})
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ready
			for j := 0; j < numRequests; j++ {
				_ = cb.Execute(ctx, "concurrent_test", func(ctx context.Context) error {
					if j > numRequests/2 {
						return errors.New("deliberate test error")
					}
					return nil
				})
			}
		}()
	}
	close(ready)
	wg.Wait()

	if state := cb.GetState(); state != CircuitOpen {
		t.Errorf("Expected circuit to be OPEN after concurrent failures, got %v", cb)
	}
}

func TestCircuitState_String(t *testing.T) {
	cases := map[CircuitState]string{
		CircuitClosed:    "CLOSED",
		CircuitOpen:      "OPEN",
		CircuitHalfOpen:  "HALF_OPEN",
		CircuitState(42): "UNKNOWN",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("Expected %s, got %s", want, got)
		}
	}
}
