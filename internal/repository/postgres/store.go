package postgres

import (
	"context"
	"errors"
	"slices"

	"GameMasterService/internal/models"
	"GameMasterService/internal/repository"
	"GameMasterService/pkg/apperrors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store представляет хранилище пользователей, событий и коллекций поверх gorm
type Store struct {
	db *gorm.DB
}

// NewStore создает новый экземпляр Store
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db: db,
	}
}

// CreateUser создает нового пользователя
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.Normalize()
	return s.db.WithContext(ctx).Create(user).Error
}

// GetUser получает пользователя по ID
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	user.Normalize()
	return &user, nil
}

// ListUsers возвращает всех пользователей в порядке создания
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at").Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Normalize()
	}
	return users, nil
}

// CreateEvent создает новое событие
func (s *Store) CreateEvent(ctx context.Context, event *models.Event) error {
	event.Normalize()
	return s.db.WithContext(ctx).Create(event).Error
}

// GetEvent получает событие по ID
func (s *Store) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	event.Normalize()
	return &event, nil
}

// ListOpenEvents возвращает незавершенные события по дате проведения
func (s *Store) ListOpenEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := s.db.WithContext(ctx).
		Where("is_completed = ?", false).
		Order("date_time").
		Order("id").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	for i := range events {
		events[i].Normalize()
	}
	return events, nil
}

// GetCollection получает коллекцию по ID
func (s *Store) GetCollection(ctx context.Context, id string) (*models.Collection, error) {
	return getCollection(s.db.WithContext(ctx), id)
}

// SaveCollection создает или заменяет коллекцию
func (s *Store) SaveCollection(ctx context.Context, collection *models.Collection) error {
	return s.db.WithContext(ctx).Save(collection).Error
}

// Transact выполняет fn в транзакции базы данных
func (s *Store) Transact(ctx context.Context, fn func(tx repository.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&storeTx{db: tx})
	})
}

func getCollection(db *gorm.DB, id string) (*models.Collection, error) {
	var collection models.Collection
	if err := db.Where("id = ?", id).First(&collection).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCollectionNotFound
		}
		return nil, err
	}
	return &collection, nil
}

// storeTx операции внутри открытой транзакции
type storeTx struct {
	db *gorm.DB
}

// LockUsers читает пользователей с блокировкой строк (SELECT ... FOR UPDATE).
// Строки блокируются в порядке id, чтобы параллельные транзакции не взаимоблокировались.
func (t *storeTx) LockUsers(ids ...string) (map[string]*models.User, error) {
	unique := slices.Clone(ids)
	slices.Sort(unique)
	unique = slices.Compact(unique)

	out := make(map[string]*models.User, len(unique))
	if len(unique) == 0 {
		return out, nil
	}

	var users []models.User
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", unique).
		Order("id").
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	for i := range users {
		users[i].Normalize()
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

// LockEvent читает событие с блокировкой строки
func (t *storeTx) LockEvent(id string) (*models.Event, error) {
	var event models.Event
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	event.Normalize()
	return &event, nil
}

func (t *storeTx) GetCollection(id string) (*models.Collection, error) {
	return getCollection(t.db, id)
}

func (t *storeTx) SaveUser(user *models.User) error {
	return t.db.Save(user).Error
}

func (t *storeTx) SaveEvent(event *models.Event) error {
	return t.db.Save(event).Error
}
