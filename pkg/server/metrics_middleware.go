package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// grpcRequestDuration измеряет длительность gRPC запросов
	grpcRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gamemaster",
			Name:      "grpc_request_duration_seconds",
			Help:      "Duration of gRPC requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	grpcRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamemaster",
			Name:      "grpc_requests_total",
			Help:      "Total number of gRPC requests",
		},
		[]string{"method", "status"},
	)

	// storeOperationDuration измеряет длительность операций хранилища
	storeOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gamemaster",
			Name:      "store_operation_duration_seconds",
			Help:      "Duration of storage operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	storeOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamemaster",
			Name:      "store_operations_total",
			Help:      "Total number of storage operations",
		},
		[]string{"operation", "status"},
	)

	cacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gamemaster",
			Name:      "cache_operation_duration_seconds",
			Help:      "Duration of cache operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	cacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gamemaster",
			Name:      "cache_operations_total",
			Help:      "Total number of cache operations",
		},
		[]string{"operation", "status"},
	)

	// circuitBreakerState 0: closed, 1: half-open, 2: open
	circuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "gamemaster",
			Name:      "circuit_breaker_state",
			Help:      "State of circuit breaker (0: closed, 1: half-open, 2: open)",
		},
		[]string{"name"},
	)
)

// MetricsServer запускает HTTP сервер для Prometheus
func MetricsServer(port int, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           LoggingMiddleware(logger, mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Starting metrics server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			// Недоступные метрики не останавливают основной сервис
			logger.Warn("Metrics server stopped", zap.Error(err))
		}
	}()

	return srv
}

// MetricsUnaryInterceptor создает gRPC перехватчик для сбора метрик
func MetricsUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		startTime := time.Now()

		resp, err := handler(ctx, req)

		code := status.Code(err)
		if err == nil {
			code = codes.OK
		}

		grpcRequestDuration.WithLabelValues(info.FullMethod, code.String()).Observe(time.Since(startTime).Seconds())
		grpcRequestsTotal.WithLabelValues(info.FullMethod, code.String()).Inc()

		return resp, err
	}
}

// RecordDBOperation записывает метрики операции хранилища
func RecordDBOperation(operation string, duration time.Duration, err error) {
	label := outcome(err)
	storeOperationDuration.WithLabelValues(operation, label).Observe(duration.Seconds())
	storeOperationsTotal.WithLabelValues(operation, label).Inc()
}

// RecordCacheOperation записывает метрики операции с кэшем
func RecordCacheOperation(operation string, duration time.Duration, err error) {
	label := outcome(err)
	cacheOperationDuration.WithLabelValues(operation, label).Observe(duration.Seconds())
	cacheOperationsTotal.WithLabelValues(operation, label).Inc()
}

// RecordCircuitBreakerStateChange записывает изменение состояния circuit breaker
func RecordCircuitBreakerStateChange(name string, state int) {
	circuitBreakerState.WithLabelValues(name).Set(float64(state))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
