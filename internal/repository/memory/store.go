// Package memory содержит потокобезопасное хранилище в памяти.
// Используется для локального запуска без базы и в тестах.
package memory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"GameMasterService/internal/models"
	"GameMasterService/internal/repository"
	"GameMasterService/pkg/apperrors"
)

// ErrDuplicateID возвращается при создании записи с занятым id
var ErrDuplicateID = errors.New("record with this id already exists")

// Store хранилище в памяти
type Store struct {
	mu          sync.Mutex
	users       map[string]*models.User
	events      map[string]*models.Event
	collections map[string]*models.Collection
	userOrder   []string
	seq         int64
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		users:       make(map[string]*models.User),
		events:      make(map[string]*models.Event),
		collections: make(map[string]*models.Collection),
	}
}

// CreateUser сохраняет нового пользователя
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		return errors.New("user id cannot be empty")
	}
	if _, exists := s.users[user.ID]; exists {
		return ErrDuplicateID
	}
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = user.Clone()
	s.userOrder = append(s.userOrder, user.ID)
	return nil
}

// GetUser возвращает копию пользователя
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user.Clone(), nil
}

// ListUsers возвращает пользователей в порядке создания
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, *s.users[id].Clone())
	}
	return out, nil
}

// CreateEvent сохраняет новое событие
func (s *Store) CreateEvent(ctx context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID == "" {
		return errors.New("event id cannot be empty")
	}
	if _, exists := s.events[event.ID]; exists {
		return ErrDuplicateID
	}
	event.CreatedAt = s.now()
	event.UpdatedAt = event.CreatedAt
	s.events[event.ID] = event.Clone()
	return nil
}

// GetEvent возвращает копию события
func (s *Store) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return event.Clone(), nil
}

// ListOpenEvents возвращает незавершенные события по дате
func (s *Store) ListOpenEvents(ctx context.Context) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Event, 0, len(s.events))
	for _, ev := range s.events {
		if ev.IsCompleted {
			continue
		}
		out = append(out, *ev.Clone())
	}
	slices.SortFunc(out, func(a, b models.Event) int {
		if c := a.DateTime.Compare(b.DateTime); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// GetCollection возвращает коллекцию
func (s *Store) GetCollection(ctx context.Context, id string) (*models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getCollection(id)
}

// SaveCollection создает или заменяет коллекцию
func (s *Store) SaveCollection(ctx context.Context, collection *models.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *collection
	c.Creatures = slices.Clone(collection.Creatures)
	s.collections[c.ID] = &c
	return nil
}

// Transact выполняет fn под общей блокировкой хранилища.
// Изменения применяются только при успешном завершении fn.
func (s *Store) Transact(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{
		store:  s,
		users:  make(map[string]*models.User),
		events: make(map[string]*models.Event),
	}
	if err := fn(tx); err != nil {
		return err
	}

	now := s.now()
	for id, user := range tx.users {
		user.UpdatedAt = now
		s.users[id] = user.Clone()
	}
	for id, event := range tx.events {
		event.UpdatedAt = now
		s.events[id] = event.Clone()
	}
	return nil
}

func (s *Store) getCollection(id string) (*models.Collection, error) {
	collection, ok := s.collections[id]
	if !ok {
		return nil, apperrors.ErrCollectionNotFound
	}
	c := *collection
	c.Creatures = slices.Clone(collection.Creatures)
	return &c, nil
}

// now возвращает монотонно возрастающее время, чтобы порядок создания был однозначным
func (s *Store) now() time.Time {
	s.seq++
	return time.Now().UTC().Add(time.Duration(s.seq))
}

// memoryTx буферизует изменения до завершения транзакции
type memoryTx struct {
	store  *Store
	users  map[string]*models.User
	events map[string]*models.Event
}

func (t *memoryTx) LockUsers(ids ...string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	for _, id := range ids {
		if user, ok := t.users[id]; ok {
			out[id] = user.Clone()
			continue
		}
		if user, ok := t.store.users[id]; ok {
			out[id] = user.Clone()
		}
	}
	return out, nil
}

func (t *memoryTx) LockEvent(id string) (*models.Event, error) {
	if event, ok := t.events[id]; ok {
		return event.Clone(), nil
	}
	event, ok := t.store.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return event.Clone(), nil
}

func (t *memoryTx) GetCollection(id string) (*models.Collection, error) {
	return t.store.getCollection(id)
}

func (t *memoryTx) SaveUser(user *models.User) error {
	if _, ok := t.store.users[user.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	t.users[user.ID] = user.Clone()
	return nil
}

func (t *memoryTx) SaveEvent(event *models.Event) error {
	if _, ok := t.store.events[event.ID]; !ok {
		return apperrors.ErrEventNotFound
	}
	t.events[event.ID] = event.Clone()
	return nil
}
