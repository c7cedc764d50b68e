package seed

import (
	"context"
	"fmt"
	"time"

	"GameMasterService/internal/models"
	"GameMasterService/internal/progression"
	"GameMasterService/internal/repository"
	"GameMasterService/pkg/apperrors"

	"go.uber.org/zap"
)

// DevEnvironmentSeeder заполняет хранилище демонстрационными данными среды разработки
type DevEnvironmentSeeder struct {
	store   repository.Store
	logger  *zap.Logger
	enabled bool
	now     func() time.Time
}

// NewDevEnvironmentSeeder создает новый объект для заполнения тестовыми данными.
// enabled обычно равен cfg.App.IsDevelopment().
func NewDevEnvironmentSeeder(store repository.Store, logger *zap.Logger, enabled bool) *DevEnvironmentSeeder {
	return &DevEnvironmentSeeder{
		store:   store,
		logger:  logger,
		enabled: enabled,
		now:     time.Now,
	}
}

// Призовые коллекции каталога
var devCollections = []models.Collection{
	{
		ID:       "sea-monsters",
		Name:     "Морские чудовища",
		ImageURL: "https://static.gamemaster.dev/collections/sea.png",
		Creatures: []models.Creature{
			{ID: "kraken", Name: "Kraken", ImageURL: "https://static.gamemaster.dev/creatures/kraken.png"},
			{ID: "leviathan", Name: "Leviathan", ImageURL: "https://static.gamemaster.dev/creatures/leviathan.png"},
			{ID: "siren", Name: "Siren", ImageURL: "https://static.gamemaster.dev/creatures/siren.png"},
		},
	},
	{
		ID:       "mythic-beasts",
		Name:     "Мифические звери",
		ImageURL: "https://static.gamemaster.dev/collections/mythic.png",
		Creatures: []models.Creature{
			{ID: "griffin", Name: "Griffin", ImageURL: "https://static.gamemaster.dev/creatures/griffin.png"},
			{ID: "phoenix", Name: "Phoenix", ImageURL: "https://static.gamemaster.dev/creatures/phoenix.png"},
		},
	},
}

func devUsers() []*models.User {
	return []*models.User{
		{
			ID:             "dev-host",
			Name:           "Uruz",
			Username:       "uruz",
			Email:          "uruz@gamemaster.dev",
			Topics:         []string{"strategy", "coop"},
			CharacterStats: progression.NewStats("Captain Uruz"),
		},
		{
			ID:             "dev-player",
			Name:           "Ansuz",
			Username:       "ansuz",
			Email:          "ansuz@gamemaster.dev",
			Topics:         []string{"strategy"},
			CharacterStats: progression.NewStats("Sailor Ansuz"),
		},
	}
}

func (s *DevEnvironmentSeeder) devEvents() []*models.Event {
	tomorrow := s.now().UTC().Truncate(time.Hour).Add(24 * time.Hour)
	return []*models.Event{
		{
			ID:           "dev-event-strategy",
			GameType:     "strategy",
			GameInfo:     "Catan, базовый набор",
			DateTime:     tomorrow,
			Duration:     2 * time.Hour,
			Capacity:     4,
			Participants: []string{"dev-host", "dev-player"},
			HostID:       "dev-host",
			CollectionID: "sea-monsters",
		},
		{
			ID:           "dev-event-coop",
			GameType:     "coop",
			GameInfo:     "Pandemic",
			DateTime:     tomorrow.Add(48 * time.Hour),
			Duration:     90 * time.Minute,
			Capacity:     4,
			Participants: []string{"dev-host"},
			HostID:       "dev-host",
			CollectionID: "mythic-beasts",
		},
	}
}

// SeedCollections создает призовые коллекции, если их еще нет
func (s *DevEnvironmentSeeder) SeedCollections(ctx context.Context) (int, error) {
	created := 0
	for i := range devCollections {
		c := devCollections[i]
		if _, err := s.store.GetCollection(ctx, c.ID); err == nil {
			continue
		} else if !apperrors.IsNotFound(err) {
			return created, fmt.Errorf("не удалось проверить коллекцию %s: %w", c.ID, err)
		}
		if err := s.store.SaveCollection(ctx, &c); err != nil {
			return created, fmt.Errorf("не удалось создать коллекцию %s: %w", c.ID, err)
		}
		created++
	}
	return created, nil
}

// SeedUsers создает демонстрационных пользователей
func (s *DevEnvironmentSeeder) SeedUsers(ctx context.Context) (int, error) {
	created := 0
	for _, user := range devUsers() {
		if _, err := s.store.GetUser(ctx, user.ID); err == nil {
			continue
		} else if !apperrors.IsNotFound(err) {
			return created, fmt.Errorf("не удалось проверить пользователя %s: %w", user.ID, err)
		}
		user.Normalize()
		if err := s.store.CreateUser(ctx, user); err != nil {
			return created, fmt.Errorf("не удалось создать пользователя %s: %w", user.ID, err)
		}
		created++
	}
	return created, nil
}

// SeedEvents создает открытые демонстрационные события
func (s *DevEnvironmentSeeder) SeedEvents(ctx context.Context) (int, error) {
	created := 0
	for _, event := range s.devEvents() {
		if _, err := s.store.GetEvent(ctx, event.ID); err == nil {
			continue
		} else if !apperrors.IsNotFound(err) {
			return created, fmt.Errorf("не удалось проверить событие %s: %w", event.ID, err)
		}
		event.Normalize()
		if err := s.store.CreateEvent(ctx, event); err != nil {
			return created, fmt.Errorf("не удалось создать событие %s: %w", event.ID, err)
		}
		created++
	}
	return created, nil
}

// SeedAllDevData заполняет все данные для разработки. Повторный запуск ничего не дублирует.
func (s *DevEnvironmentSeeder) SeedAllDevData(ctx context.Context) error {
	if !s.enabled {
		s.logger.Debug("Не в режиме разработки, пропускаем заполнение тестовыми данными")
		return nil
	}

	s.logger.Info("Заполнение тестовыми данными для среды разработки")

	collections, err := s.SeedCollections(ctx)
	if err != nil {
		s.logger.Error("Не удалось заполнить коллекции", zap.Error(err))
		return err
	}
	users, err := s.SeedUsers(ctx)
	if err != nil {
		s.logger.Error("Не удалось заполнить пользователей", zap.Error(err))
		return err
	}
	events, err := s.SeedEvents(ctx)
	if err != nil {
		s.logger.Error("Не удалось заполнить события", zap.Error(err))
		return err
	}

	s.logger.Info("Тестовые данные созданы",
		zap.Int("collections", collections),
		zap.Int("users", users),
		zap.Int("events", events))
	return nil
}
