package grpc

import (
	"context"

	"GameMasterService/internal/models"
	"GameMasterService/internal/service"
	"GameMasterService/pkg/apperrors"
	"GameMasterService/pkg/server"

	"go.uber.org/zap"
)

// GameMasterHandler представляет обработчик gRPC запросов
type GameMasterHandler struct {
	users   service.UserServiceInterface
	friends service.FriendServiceInterface
	events  service.EventServiceInterface
	logger  *zap.Logger
}

// NewGameMasterHandler создает новый экземпляр GameMasterHandler
func NewGameMasterHandler(users service.UserServiceInterface, friends service.FriendServiceInterface, events service.EventServiceInterface, logger *zap.Logger) *GameMasterHandler {
	return &GameMasterHandler{
		users:   users,
		friends: friends,
		events:  events,
		logger:  logger,
	}
}

// fail логирует внутренние ошибки и переводит ошибку в статус
func (h *GameMasterHandler) fail(ctx context.Context, method string, err error) error {
	if !apperrors.IsValidation(err) && !apperrors.IsNotFound(err) && !apperrors.IsConflict(err) {
		server.WithRequestID(ctx, h.logger).Error("Request failed", zap.String("method", method), zap.Error(err))
	}
	return toStatus(err)
}

// GetUser возвращает профиль пользователя, видимый запрашивающему
func (h *GameMasterHandler) GetUser(ctx context.Context, req *models.GetUserRequest) (*models.GetUserResponse, error) {
	user, err := h.users.GetUser(ctx, req)
	if err != nil {
		return nil, h.fail(ctx, "GetUser", err)
	}
	return &models.GetUserResponse{User: user}, nil
}

func (h *GameMasterHandler) ListUsers(ctx context.Context, req *models.ListUsersRequest) (*models.ListUsersResponse, error) {
	users, err := h.users.ListUsers(ctx, req)
	if err != nil {
		return nil, h.fail(ctx, "ListUsers", err)
	}
	return &models.ListUsersResponse{Users: users}, nil
}

func (h *GameMasterHandler) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.InsertResult, error) {
	result, err := h.users.CreateUser(ctx, req)
	if err != nil {
		return nil, h.fail(ctx, "CreateUser", err)
	}
	return result, nil
}

func (h *GameMasterHandler) BlockUser(ctx context.Context, req *models.BlockUserRequest) (*models.WriteResult, error) {
	result, err := h.users.BlockUser(ctx, req)
	if err != nil {
		return nil, h.fail(ctx, "BlockUser", err)
	}
	return result, nil
}

// AwardExperience административное начисление опыта
func (h *GameMasterHandler) AwardExperience(ctx context.Context, req *models.AwardExperienceRequest) (*models.AwardExperienceResponse, error) {
	stats, err := h.users.AwardExperience(ctx, req)
	if err != nil {
		return nil, h.fail(ctx, "AwardExperience", err)
	}
	return &models.AwardExperienceResponse{CharacterStats: *stats}, nil
}

func (h *GameMasterHandler) InviteFriend(ctx context.Context, req *models.InviteFriendRequest) (*models.WriteResult, error) {
	result, err := h.friends.Invite(ctx, req)
	if err != nil {
		return nil, h.fail(ctx, "InviteFriend", err)
	}
	return result, nil
}

func (h *GameMasterHandler) RespondToFriendRequest(ctx context.Context, req *models.RespondFriendRequest) (*models.WriteResult, error) {
	result, err := h.friends.Respond(ctx, req)
	if err != nil {
		return nil, h.fail(ctx, "RespondToFriendRequest", err)
	}
	return result, nil
}

func (h *GameMasterHandler) ListCreatures(ctx context.Context, req *models.ListCreaturesRequest) (*models.ListCreaturesResponse, error) {
	creatures, err := h.users.ListCreatures(ctx, req.UserID)
	if err != nil {
		return nil, h.fail(ctx, "ListCreatures", err)
	}
	if creatures == nil {
		creatures = []models.Creature{}
	}
	return &models.ListCreaturesResponse{Creatures: creatures}, nil
}

func (h *GameMasterHandler) ListEvents(ctx context.Context, req *models.ListEventsRequest) (*models.ListEventsResponse, error) {
	events, err := h.events.ListEvents(ctx, req)
	if err != nil {
		return nil, h.fail(ctx, "ListEvents", err)
	}
	return &models.ListEventsResponse{Events: events}, nil
}

func (h *GameMasterHandler) GetEvent(ctx context.Context, req *models.GetEventRequest) (*models.GetEventResponse, error) {
	event, err := h.events.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, h.fail(ctx, "GetEvent", err)
	}
	return &models.GetEventResponse{Event: event}, nil
}

func (h *GameMasterHandler) CreateEvent(ctx context.Context, req *models.CreateEventRequest) (*models.InsertResult, error) {
	result, err := h.events.CreateEvent(ctx, req)
	if err != nil {
		return nil, h.fail(ctx, "CreateEvent", err)
	}
	return result, nil
}

// ResolveEvent завершает событие и раздает награды
func (h *GameMasterHandler) ResolveEvent(ctx context.Context, req *models.ResolveEventRequest) (*models.WriteResult, error) {
	result, err := h.events.ResolveEvent(ctx, req)
	if err != nil {
		return nil, h.fail(ctx, "ResolveEvent", err)
	}
	return result, nil
}
