package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"GameMasterService/internal/access"
	"GameMasterService/internal/models"
	"GameMasterService/internal/progression"
	"GameMasterService/internal/query"
	"GameMasterService/internal/repository"
	"GameMasterService/pkg/apperrors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// UserService представляет сервис для работы с пользователями
type UserService struct {
	store  repository.Store
	cache  Cache
	guard  *access.Guard
	logger *zap.Logger
	newID  func() string
}

// NewUserService создает новый экземпляр UserService
func NewUserService(store repository.Store, cache Cache, guard *access.Guard, logger *zap.Logger) *UserService {
	return &UserService{
		store:  store,
		cache:  cache,
		guard:  guard,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// loadUser читает пользователя через кэш
func (s *UserService) loadUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.cache.GetUser(ctx, id)
	if err == nil {
		s.logger.Debug("User retrieved from cache", zap.String("user_id", id))
		return user, nil
	}

	user, err = s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = s.cache.SetUser(ctx, user)
	return user, nil
}

// GetUser возвращает профиль, если владелец не заблокировал запрашивающего.
// Скрытый профиль неотличим от отсутствующего.
func (s *UserService) GetUser(ctx context.Context, req *models.GetUserRequest) (user *models.User, err error) {
	ctx, span := tracer.Start(ctx, "UserService.GetUser")
	defer func() { finishSpan(span, err) }()

	viewer, err := s.guard.Authorize(req.UserWhoRequested)
	if err != nil {
		return nil, err
	}
	if req.UserID == "" {
		return nil, apperrors.NewValidationError("user_id", "required")
	}
	span.SetAttributes(attribute.String("user.id", req.UserID), attribute.Bool("viewer.admin", viewer.IsAdmin()))

	user, err = s.loadUser(ctx, req.UserID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.Error("Failed to get user", zap.Error(err), zap.String("user_id", req.UserID))
		}
		return nil, err
	}

	if !s.guard.CanView(user, viewer) {
		s.logger.Debug("User hidden from requester", zap.String("user_id", req.UserID))
		return nil, apperrors.ErrUserNotFound
	}

	return user, nil
}

// ListUsers возвращает пользователей с фильтром по темам и сортировкой
func (s *UserService) ListUsers(ctx context.Context, req *models.ListUsersRequest) ([]models.User, error) {
	q, err := query.ParseUserQuery(req)
	if err != nil {
		return nil, err
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, err
	}

	return q.Apply(users), nil
}

// requireField проверяет, что ключ передан. Пустая строка допустима только для allowEmpty.
func requireField(value *string, field string, allowEmpty bool) (string, error) {
	if value == nil {
		return "", apperrors.NewValidationError(field, "required")
	}
	v := strings.TrimSpace(*value)
	if v == "" && !allowEmpty {
		return "", apperrors.NewValidationError(field, "must not be empty")
	}
	return v, nil
}

// CreateUser создает пользователя с персонажем первого уровня
func (s *UserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.InsertResult, error) {
	name, err := requireField(req.Name, "name", false)
	if err != nil {
		return nil, err
	}
	username, err := requireField(req.Username, "username", false)
	if err != nil {
		return nil, err
	}
	email, err := requireField(req.Email, "email", false)
	if err != nil {
		return nil, err
	}
	imageURL, err := requireField(req.ImageURL, "img_url", true)
	if err != nil {
		return nil, err
	}
	characterName, err := requireField(req.CharacterName, "characterName", false)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:             s.newID(),
		Name:           name,
		Username:       username,
		Email:          email,
		ImageURL:       imageURL,
		CharacterStats: progression.NewStats(characterName),
	}
	for _, topic := range req.Topics {
		if topic = strings.TrimSpace(topic); topic != "" {
			models.AppendUnique(&user.Topics, topic)
		}
	}
	user.Normalize()

	if err := s.store.CreateUser(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err), zap.String("username", username))
		return nil, err
	}

	usersCreatedTotal.Inc()
	s.logger.Info("User created", zap.String("user_id", user.ID), zap.String("username", username))
	return &models.InsertResult{Acknowledged: true, InsertedID: user.ID}, nil
}

// BlockUser скрывает профиль user_id от userIdToGetBlocked
func (s *UserService) BlockUser(ctx context.Context, req *models.BlockUserRequest) (*models.WriteResult, error) {
	if req.UserID == "" {
		return nil, apperrors.NewValidationError("user_id", "required")
	}
	if req.UserIDToGetBlocked == "" {
		return nil, apperrors.NewValidationError("userIdToGetBlocked", "required")
	}

	err := s.store.Transact(ctx, func(tx repository.Tx) error {
		users, err := tx.LockUsers(req.UserID)
		if err != nil {
			return err
		}
		user, ok := users[req.UserID]
		if !ok {
			return apperrors.ErrUserNotFound
		}
		access.Block(user, req.UserIDToGetBlocked)
		return tx.SaveUser(user)
	})
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.Error("Failed to block user", zap.Error(err), zap.String("user_id", req.UserID))
		}
		return nil, err
	}

	_ = s.cache.DeleteUsers(ctx, req.UserID)
	s.logger.Info("User blocked",
		zap.String("user_id", req.UserID),
		zap.String("blocked_id", req.UserIDToGetBlocked))
	return &models.WriteResult{Acknowledged: true, ModifiedCount: 1}, nil
}

// AwardExperience административное начисление опыта с переносом уровней
func (s *UserService) AwardExperience(ctx context.Context, req *models.AwardExperienceRequest) (*models.CharacterStats, error) {
	if req.UserID == "" {
		return nil, apperrors.NewValidationError("user_id", "required")
	}
	if !req.Exp.IsSet() {
		return nil, apperrors.NewValidationError("exp", "required")
	}
	exp, err := req.Exp.Int()
	if err != nil {
		return nil, apperrors.NewValidationError("exp", "must be an integer")
	}
	if exp > progression.MaxGain {
		return nil, apperrors.NewValidationError("exp", fmt.Sprintf("must not exceed %d", progression.MaxGain))
	}

	var stats models.CharacterStats
	err = s.store.Transact(ctx, func(tx repository.Tx) error {
		users, err := tx.LockUsers(req.UserID)
		if err != nil {
			return err
		}
		user, ok := users[req.UserID]
		if !ok {
			return apperrors.ErrUserNotFound
		}
		before := user.CharacterStats
		user.CharacterStats = progression.Apply(before, int(exp))
		stats = user.CharacterStats
		levelUpsTotal.Add(float64(progression.LevelsGained(before, stats)))
		return tx.SaveUser(user)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Error("Failed to award experience", zap.Error(err), zap.String("user_id", req.UserID))
		}
		return nil, err
	}

	if exp > 0 {
		experienceAwardedTotal.WithLabelValues("admin").Add(float64(exp))
	}
	_ = s.cache.DeleteUsers(ctx, req.UserID)
	s.logger.Info("Experience awarded",
		zap.String("user_id", req.UserID),
		zap.Int64("exp", exp),
		zap.Int("level", stats.Level))
	return &stats, nil
}

// ListCreatures возвращает существ пользователя в порядке получения
func (s *UserService) ListCreatures(ctx context.Context, userID string) ([]models.Creature, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user_id", "required")
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.MyCreatures, nil
}
