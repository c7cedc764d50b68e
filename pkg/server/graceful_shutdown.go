package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

type shutdownStep struct {
	name string
	fn   func(context.Context) error
}

// GracefulShutdown останавливает компоненты сервиса в обратном порядке регистрации
type GracefulShutdown struct {
	logger         *zap.Logger
	timeout        time.Duration
	steps          []shutdownStep
	mu             sync.Mutex
	shutdownSignal chan os.Signal
	done           chan struct{}
	once           sync.Once
}

// NewGracefulShutdown создает новый экземпляр GracefulShutdown
func NewGracefulShutdown(logger *zap.Logger, timeout time.Duration) *GracefulShutdown {
	gs := &GracefulShutdown{
		logger:         logger,
		timeout:        timeout,
		shutdownSignal: make(chan os.Signal, 1),
		done:           make(chan struct{}),
	}

	signal.Notify(gs.shutdownSignal, syscall.SIGINT, syscall.SIGTERM)

	return gs
}

// AddShutdownFunc регистрирует именованный шаг завершения
func (gs *GracefulShutdown) AddShutdownFunc(name string, f func(context.Context) error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.steps = append(gs.steps, shutdownStep{name: name, fn: f})
}

// Wait блокирует выполнение до получения сигнала завершения
func (gs *GracefulShutdown) Wait() {
	gs.WaitWithContext(context.Background())
}

// WaitWithContext блокирует выполнение до получения сигнала или отмены контекста
func (gs *GracefulShutdown) WaitWithContext(ctx context.Context) {
	select {
	case sig := <-gs.shutdownSignal:
		gs.logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case <-ctx.Done():
		gs.logger.Info("Context cancelled, initiating shutdown")
	}

	gs.once.Do(func() {
		signal.Stop(gs.shutdownSignal)
		gs.shutdown()
		close(gs.done)
	})
}

// Done закрывается после выполнения всех шагов
func (gs *GracefulShutdown) Done() <-chan struct{} {
	return gs.done
}

// Shutdown инициирует завершение и ждет его окончания
func (gs *GracefulShutdown) Shutdown() {
	select {
	case gs.shutdownSignal <- syscall.SIGTERM:
	default:
	}
	<-gs.done
}

func (gs *GracefulShutdown) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), gs.timeout)
	defer cancel()

	gs.mu.Lock()
	steps := append([]shutdownStep(nil), gs.steps...)
	gs.mu.Unlock()

	// LIFO: сначала транспорт, потом хранилища
	for i := len(steps) - 1; i >= 0; i-- {
		if err := steps[i].fn(ctx); err != nil {
			gs.logger.Error("Error during shutdown", zap.String("step", steps[i].name), zap.Error(err))
		}
	}

	gs.logger.Info("Graceful shutdown completed")
}
