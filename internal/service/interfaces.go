package service

import (
	"context"

	"GameMasterService/internal/models"
)

// Cache кэш профилей и событий. Промах и недоступность возвращают apperrors.ErrCacheMiss,
// ошибки записи и удаления не прерывают запрос.
type Cache interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	SetUser(ctx context.Context, user *models.User) error
	DeleteUsers(ctx context.Context, ids ...string) error
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	SetEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id string) error
}

// UserServiceInterface определяет интерфейс для сервиса пользователей
type UserServiceInterface interface {
	GetUser(ctx context.Context, req *models.GetUserRequest) (*models.User, error)
	ListUsers(ctx context.Context, req *models.ListUsersRequest) ([]models.User, error)
	CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.InsertResult, error)
	BlockUser(ctx context.Context, req *models.BlockUserRequest) (*models.WriteResult, error)
	AwardExperience(ctx context.Context, req *models.AwardExperienceRequest) (*models.CharacterStats, error)
	ListCreatures(ctx context.Context, userID string) ([]models.Creature, error)
}

// FriendServiceInterface заявки в друзья
type FriendServiceInterface interface {
	Invite(ctx context.Context, req *models.InviteFriendRequest) (*models.WriteResult, error)
	Respond(ctx context.Context, req *models.RespondFriendRequest) (*models.WriteResult, error)
}

// EventServiceInterface события и их завершение
type EventServiceInterface interface {
	ListEvents(ctx context.Context, req *models.ListEventsRequest) ([]models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	CreateEvent(ctx context.Context, req *models.CreateEventRequest) (*models.InsertResult, error)
	ResolveEvent(ctx context.Context, req *models.ResolveEventRequest) (*models.WriteResult, error)
}
