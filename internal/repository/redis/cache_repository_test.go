package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"GameMasterService/config"
	"GameMasterService/internal/models"
	"GameMasterService/pkg/apperrors"
	"GameMasterService/pkg/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCacheRepository_User(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewCacheRepository(client)
	ctx := context.Background()

	user := &models.User{
		ID:             "u1",
		Username:       "anna",
		CharacterStats: models.CharacterStats{Name: "Hero", Level: 3, Experience: 20, ExperienceToLevelUp: 30},
		Blocked:        []string{"u2"},
	}
	if err := repo.SetUser(ctx, user); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Тест кейс: ключ и TTL
	if !mr.Exists("user:u1:profile") {
		t.Fatalf("Expected key user:u1:profile to exist")
	}
	if ttl := mr.TTL("user:u1:profile"); ttl != userProfileTTL {
		t.Errorf("Expected TTL %v, got %v", userProfileTTL, ttl)
	}

	got, err := repo.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got.CharacterStats != user.CharacterStats || len(got.Blocked) != 1 {
		t.Errorf("Expected cached user to match, got %+v", got)
	}

	if err := repo.DeleteUsers(ctx, "u1", "u2"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := repo.GetUser(ctx, "u1"); !errors.Is(err, redis.Nil) {
		t.Errorf("Expected redis.Nil after delete, got %v", err)
	}
}

func TestCacheRepository_Event(t *testing.T) {
	mr, client := setupRedis(t)
	repo := NewCacheRepository(client)
	ctx := context.Background()

	event := &models.Event{
		ID:           "e1",
		GameType:     "strategy",
		DateTime:     time.Date(2026, 3, 4, 19, 30, 0, 0, time.UTC),
		Duration:     90 * time.Minute,
		Participants: []string{"u1"},
	}
	if err := repo.SetEvent(ctx, event); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got, err := repo.GetEvent(ctx, "e1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !got.DateTime.Equal(event.DateTime) || got.Duration != event.Duration {
		t.Errorf("Expected date and duration to round-trip, got %v %v", got.DateTime, got.Duration)
	}

	// Тест кейс: запись истекает по TTL
	mr.FastForward(eventTTL + time.Second)
	if _, err := repo.GetEvent(ctx, "e1"); !errors.Is(err, redis.Nil) {
		t.Errorf("Expected expired entry, got %v", err)
	}
}

func TestResilientCacheRepository(t *testing.T) {
	mr, client := setupRedis(t)
	checker := database.NewDatabaseHealthChecker(nil, client, config.DefaultResilienceConfig(), zap.NewNop())
	repo := NewResilientCacheRepository(client, checker, zap.NewNop())
	ctx := context.Background()

	// Тест кейс: промах отдается как ErrCacheMiss
	if _, err := repo.GetUser(ctx, "u1"); !errors.Is(err, apperrors.ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}

	_ = repo.SetUser(ctx, &models.User{ID: "u1", Username: "anna"})
	if user, err := repo.GetUser(ctx, "u1"); err != nil || user.Username != "anna" {
		t.Errorf("Expected cached user, got %v %v", user, err)
	}

	// Тест кейс: недоступный Redis не ломает операции
	mr.Close()
	if err := repo.SetEvent(ctx, &models.Event{ID: "e1"}); err != nil {
		t.Errorf("Expected set errors to be swallowed, got %v", err)
	}
	if err := repo.DeleteUsers(ctx, "u1"); err != nil {
		t.Errorf("Expected delete errors to be swallowed, got %v", err)
	}
	if _, err := repo.GetEvent(ctx, "e1"); !errors.Is(err, apperrors.ErrCacheMiss) {
		t.Errorf("Expected failure to look like a miss, got %v", err)
	}
}

func TestNoopCache(t *testing.T) {
	var cache NoopCache
	ctx := context.Background()

	_ = cache.SetUser(ctx, &models.User{ID: "u1"})
	if _, err := cache.GetUser(ctx, "u1"); !errors.Is(err, apperrors.ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
	if _, err := cache.GetEvent(ctx, "e1"); !errors.Is(err, apperrors.ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}
