// Package repository описывает контракт хранилища, общий для всех реализаций.
package repository

import (
	"context"

	"GameMasterService/internal/models"
)

// Store хранилище пользователей, событий и коллекций
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListOpenEvents(ctx context.Context) ([]models.Event, error)

	GetCollection(ctx context.Context, id string) (*models.Collection, error)
	SaveCollection(ctx context.Context, collection *models.Collection) error

	// Transact выполняет fn в одной транзакции. Ошибка fn откатывает все изменения.
	Transact(ctx context.Context, fn func(tx Tx) error) error
}

// Tx операции внутри транзакции. Прочитанные через Lock* записи
// остаются заблокированными до конца транзакции.
type Tx interface {
	// LockUsers блокирует существующих пользователей в порядке возрастания id.
	// Отсутствующие id просто не попадают в результат.
	LockUsers(ids ...string) (map[string]*models.User, error)
	LockEvent(id string) (*models.Event, error)
	GetCollection(id string) (*models.Collection, error)
	SaveUser(user *models.User) error
	SaveEvent(event *models.Event) error
}
