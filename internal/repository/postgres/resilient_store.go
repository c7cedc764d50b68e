package postgres

import (
	"context"
	"time"

	"GameMasterService/internal/models"
	"GameMasterService/internal/repository"
	"GameMasterService/pkg/database"
	"GameMasterService/pkg/resilience"
	"GameMasterService/pkg/server"

	"go.uber.org/zap"
)

// ResilientStore добавляет к хранилищу таймауты, circuit breaker, повторы чтения и метрики
type ResilientStore struct {
	store         repository.Store
	logger        *zap.Logger
	healthChecker *database.HealthChecker
	retry         resilience.RetryOptions
}

// NewResilientStore создает новый экземпляр отказоустойчивого хранилища
func NewResilientStore(store repository.Store, healthChecker *database.HealthChecker, logger *zap.Logger) *ResilientStore {
	return &ResilientStore{
		store:         store,
		logger:        logger,
		healthChecker: healthChecker,
		retry:         healthChecker.RetryOptions(),
	}
}

// read выполняет чтение с повторами внутри circuit breaker
func (r *ResilientStore) read(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.healthChecker.DatabaseTimeout())
	defer cancel()

	err := r.healthChecker.WithDatabaseResilience(ctx, operation, func(ctx context.Context) error {
		return resilience.WithRetry(ctx, r.logger, operation, r.retry, func(ctx context.Context) error {
			return database.SafeDBOperation(ctx, r.logger, operation, fn)
		})
	})

	server.RecordDBOperation(operation, time.Since(startTime), err)
	return err
}

// write выполняет запись без повторов: повтор неидемпотентной операции может продублировать данные
func (r *ResilientStore) write(ctx context.Context, operation string, timeout time.Duration, fn func(ctx context.Context) error) error {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := r.healthChecker.WithDatabaseResilience(ctx, operation, func(ctx context.Context) error {
		return database.SafeDBOperation(ctx, r.logger, operation, fn)
	})

	server.RecordDBOperation(operation, time.Since(startTime), err)
	return err
}

// CreateUser создает пользователя
func (r *ResilientStore) CreateUser(ctx context.Context, user *models.User) error {
	return r.write(ctx, "create_user", r.healthChecker.DatabaseTimeout(), func(ctx context.Context) error {
		return r.store.CreateUser(ctx, user)
	})
}

// GetUser получает пользователя по ID
func (r *ResilientStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user *models.User
	err := r.read(ctx, "get_user", func(ctx context.Context) error {
		var err error
		user, err = r.store.GetUser(ctx, id)
		return err
	})
	return user, err
}

// ListUsers возвращает всех пользователей
func (r *ResilientStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.read(ctx, "list_users", func(ctx context.Context) error {
		var err error
		users, err = r.store.ListUsers(ctx)
		return err
	})
	return users, err
}

// CreateEvent создает событие
func (r *ResilientStore) CreateEvent(ctx context.Context, event *models.Event) error {
	return r.write(ctx, "create_event", r.healthChecker.DatabaseTimeout(), func(ctx context.Context) error {
		return r.store.CreateEvent(ctx, event)
	})
}

// GetEvent получает событие по ID
func (r *ResilientStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var event *models.Event
	err := r.read(ctx, "get_event", func(ctx context.Context) error {
		var err error
		event, err = r.store.GetEvent(ctx, id)
		return err
	})
	return event, err
}

// ListOpenEvents возвращает незавершенные события
func (r *ResilientStore) ListOpenEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := r.read(ctx, "list_open_events", func(ctx context.Context) error {
		var err error
		events, err = r.store.ListOpenEvents(ctx)
		return err
	})
	return events, err
}

// GetCollection получает коллекцию по ID
func (r *ResilientStore) GetCollection(ctx context.Context, id string) (*models.Collection, error) {
	var collection *models.Collection
	err := r.read(ctx, "get_collection", func(ctx context.Context) error {
		var err error
		collection, err = r.store.GetCollection(ctx, id)
		return err
	})
	return collection, err
}

// SaveCollection создает или заменяет коллекцию
func (r *ResilientStore) SaveCollection(ctx context.Context, collection *models.Collection) error {
	return r.write(ctx, "save_collection", r.healthChecker.DatabaseTimeout(), func(ctx context.Context) error {
		return r.store.SaveCollection(ctx, collection)
	})
}

// Transact выполняет транзакцию; таймаут удвоен, так как внутри несколько запросов
func (r *ResilientStore) Transact(ctx context.Context, fn func(tx repository.Tx) error) error {
	return r.write(ctx, "transact", 2*r.healthChecker.DatabaseTimeout(), func(ctx context.Context) error {
		return r.store.Transact(ctx, fn)
	})
}
