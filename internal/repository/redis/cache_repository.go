package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"GameMasterService/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	// TTL для разных типов кэша
	userProfileTTL = 30 * time.Minute
	eventTTL       = 10 * time.Minute
)

func userKey(id string) string {
	return fmt.Sprintf("user:%s:profile", id)
}

func eventKey(id string) string {
	return fmt.Sprintf("event:%s", id)
}

// CacheRepository хранит профили пользователей и события в Redis.
// Промах возвращает redis.Nil.
type CacheRepository struct {
	client *redis.Client
}

// NewCacheRepository создает новый экземпляр CacheRepository
func NewCacheRepository(client *redis.Client) *CacheRepository {
	return &CacheRepository{
		client: client,
	}
}

// SetUser кэширует пользователя
func (r *CacheRepository) SetUser(ctx context.Context, user *models.User) error {
	return r.set(ctx, userKey(user.ID), user, userProfileTTL)
}

// GetUser получает пользователя из кэша
func (r *CacheRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.get(ctx, userKey(id), &user); err != nil {
		return nil, err
	}
	user.Normalize()
	return &user, nil
}

// DeleteUsers удаляет профили одним запросом
func (r *CacheRepository) DeleteUsers(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userKey(id)
	}
	return r.client.Del(ctx, keys...).Err()
}

// SetEvent кэширует событие
func (r *CacheRepository) SetEvent(ctx context.Context, event *models.Event) error {
	return r.set(ctx, eventKey(event.ID), event, eventTTL)
}

// GetEvent получает событие из кэша
func (r *CacheRepository) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := r.get(ctx, eventKey(id), &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteEvent удаляет событие из кэша
func (r *CacheRepository) DeleteEvent(ctx context.Context, id string) error {
	return r.client.Del(ctx, eventKey(id)).Err()
}

func (r *CacheRepository) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *CacheRepository) get(ctx context.Context, key string, dest any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
