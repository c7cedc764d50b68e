package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"GameMasterService/internal/access"
	"GameMasterService/internal/models"
	"GameMasterService/internal/progression"
	"GameMasterService/internal/repository/memory"
	"GameMasterService/pkg/apperrors"

	"go.uber.org/zap"
)

const testAdminToken = "admin-secret"

// Мок для кэша
type MockCache struct {
	mu      sync.Mutex
	users   map[string]*models.User
	events  map[string]*models.Event
	deleted []string
	failing bool
}

func NewMockCache() *MockCache {
	return &MockCache{
		users:  make(map[string]*models.User),
		events: make(map[string]*models.Event),
	}
}

func (m *MockCache) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing {
		return nil, apperrors.ErrCacheMiss
	}
	user, ok := m.users[id]
	if !ok {
		return nil, apperrors.ErrCacheMiss
	}
	return user.Clone(), nil
}

func (m *MockCache) SetUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing {
		return errors.New("cache unavailable")
	}
	m.users[user.ID] = user.Clone()
	return nil
}

func (m *MockCache) DeleteUsers(ctx context.Context, ids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.users, id)
		m.deleted = append(m.deleted, id)
	}
	return nil
}

func (m *MockCache) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing {
		return nil, apperrors.ErrCacheMiss
	}
	event, ok := m.events[id]
	if !ok {
		return nil, apperrors.ErrCacheMiss
	}
	return event.Clone(), nil
}

func (m *MockCache) SetEvent(ctx context.Context, event *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing {
		return errors.New("cache unavailable")
	}
	m.events[event.ID] = event.Clone()
	return nil
}

func (m *MockCache) DeleteEvent(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.events, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *MockCache) wasDeleted(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.deleted {
		if d == id {
			return true
		}
	}
	return false
}

// testEnv собирает сервисы поверх хранилища в памяти
type testEnv struct {
	store   *memory.Store
	cache   *MockCache
	users   *UserService
	friends *FriendService
	events  *EventService
}

func newTestEnv(t *testing.T, picker CreaturePicker) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	store := memory.NewStore()
	cache := NewMockCache()
	if picker == nil {
		picker = FirstCreaturePicker
	}
	resolver := NewResolver(store, DefaultRewardPolicy(), picker, logger)

	return &testEnv{
		store:   store,
		cache:   cache,
		users:   NewUserService(store, cache, access.NewGuard(testAdminToken), logger),
		friends: NewFriendService(store, cache, logger),
		events:  NewEventService(store, cache, resolver, logger),
	}
}

// addUser создает пользователя с заданным прогрессом
func (e *testEnv) addUser(t *testing.T, id string, level, experience int) *models.User {
	t.Helper()

	stats := progression.NewStats(id + "-hero")
	stats.Level = level
	stats.Experience = experience
	stats.ExperienceToLevelUp = progression.Threshold(level)

	user := &models.User{
		ID:             id,
		Name:           id,
		Username:       id,
		Email:          id + "@example.com",
		CharacterStats: stats,
	}
	user.Normalize()
	if err := e.store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("Failed to setup test: %v", err)
	}
	return user
}

func (e *testEnv) mustGetUser(t *testing.T, id string) *models.User {
	t.Helper()

	user, err := e.store.GetUser(context.Background(), id)
	if err != nil {
		t.Fatalf("Expected user %s in store, got error: %v", id, err)
	}
	return user
}

func strPtr(s string) *string {
	return &s
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
