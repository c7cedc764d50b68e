package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HealthCheckerInterface проверяет состояние внешних зависимостей
type HealthCheckerInterface interface {
	// IsDatabaseHealthy проверяет хранилище
	IsDatabaseHealthy(ctx context.Context) bool

	// IsRedisHealthy проверяет кэш
	IsRedisHealthy(ctx context.Context) bool
}

// ReadinessListener получает результат каждой проверки готовности
type ReadinessListener func(ready bool)

const (
	statusUp       = "up"
	statusDown     = "down"
	statusDegraded = "degraded"
	statusDisabled = "disabled"
	statusUnknown  = "unknown"
)

// HealthCheck отдает состояние сервиса по HTTP и периодически опрашивает зависимости
type HealthCheck struct {
	checker      HealthCheckerInterface
	logger       *zap.Logger
	cacheEnabled bool
	interval     time.Duration

	server    *http.Server
	listeners []ReadinessListener
	stop      chan struct{}
	stopOnce  sync.Once

	statusMutex   sync.RWMutex
	serviceStatus map[string]string
	version       string
}

// HealthResponse представляет ответ эндпоинта проверки здоровья
type HealthResponse struct {
	Status    string            `json:"status"`
	Services  map[string]string `json:"services"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
}

// NewHealthCheck создает новый сервис проверки здоровья.
// При cacheEnabled=false Redis не опрашивается и отображается как disabled.
func NewHealthCheck(checker HealthCheckerInterface, logger *zap.Logger, version string, cacheEnabled bool) *HealthCheck {
	redisStatus := statusUnknown
	if !cacheEnabled {
		redisStatus = statusDisabled
	}

	return &HealthCheck{
		checker:      checker,
		logger:       logger,
		cacheEnabled: cacheEnabled,
		interval:     10 * time.Second,
		stop:         make(chan struct{}),
		version:      version,
		serviceStatus: map[string]string{
			"service": statusUp,
			"store":   statusUnknown,
			"redis":   redisStatus,
		},
	}
}

// OnReadinessChange регистрирует получателя результатов проверки
func (h *HealthCheck) OnReadinessChange(listener ReadinessListener) {
	h.listeners = append(h.listeners, listener)
}

// Handler возвращает маршруты проверки здоровья
func (h *HealthCheck) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", h.livenessHandler)
	mux.HandleFunc("/health/ready", h.readinessHandler)
	mux.HandleFunc("/health", h.healthHandler)
	return mux
}

// StartServer запускает HTTP сервер и фоновый опрос зависимостей
func (h *HealthCheck) StartServer(port int) {
	h.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           LoggingMiddleware(h.logger, h.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		h.logger.Info("Starting health check server", zap.Int("port", port))
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("Health check server failed", zap.Error(err))
		}
	}()

	h.CheckServicesHealth(context.Background())
	go h.monitorHealth()
}

// Stop останавливает опрос и HTTP сервер
func (h *HealthCheck) Stop(ctx context.Context) error {
	h.stopOnce.Do(func() { close(h.stop) })
	if h.server == nil {
		return nil
	}
	return h.server.Shutdown(ctx)
}

func (h *HealthCheck) livenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": statusUp})
}

func (h *HealthCheck) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if !h.isReady() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  statusDown,
			"message": "store is not available",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": statusUp})
}

func (h *HealthCheck) healthHandler(w http.ResponseWriter, r *http.Request) {
	h.statusMutex.RLock()
	services := make(map[string]string, len(h.serviceStatus))
	for k, v := range h.serviceStatus {
		services[k] = v
	}
	h.statusMutex.RUnlock()

	// Кэш не критичен: без Redis сервис работает в деградированном режиме
	status := statusUp
	code := http.StatusOK
	if services["store"] != statusUp {
		status = statusDown
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthResponse{
		Status:    status,
		Services:  services,
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	})
}

func (h *HealthCheck) isReady() bool {
	h.statusMutex.RLock()
	defer h.statusMutex.RUnlock()
	return h.serviceStatus["store"] == statusUp
}

func (h *HealthCheck) monitorHealth() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			h.CheckServicesHealth(context.Background())
		}
	}
}

// CheckServicesHealth опрашивает зависимости и уведомляет подписчиков
func (h *HealthCheck) CheckServicesHealth(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	storeStatus := statusUp
	if !h.checker.IsDatabaseHealthy(ctx) {
		storeStatus = statusDown
		h.logger.Warn("Store health check failed")
	}

	redisStatus := statusDisabled
	if h.cacheEnabled {
		redisStatus = statusUp
		if !h.checker.IsRedisHealthy(ctx) {
			redisStatus = statusDegraded
			h.logger.Warn("Redis health check failed")
		}
	}

	h.statusMutex.Lock()
	h.serviceStatus["store"] = storeStatus
	h.serviceStatus["redis"] = redisStatus
	h.statusMutex.Unlock()

	for _, listener := range h.listeners {
		listener(storeStatus == statusUp)
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
