package service

import (
	"context"
	"slices"

	"GameMasterService/internal/models"
	"GameMasterService/internal/repository"
	"GameMasterService/pkg/apperrors"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SelfInviteMessage ответ на попытку пригласить самого себя
const SelfInviteMessage = "can not send friend request to self"

// FriendService ведет заявки в друзья. Обе стороны заявки меняются в одной транзакции.
type FriendService struct {
	store  repository.Store
	cache  Cache
	logger *zap.Logger
}

// NewFriendService создает новый экземпляр FriendService
func NewFriendService(store repository.Store, cache Cache, logger *zap.Logger) *FriendService {
	return &FriendService{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// lockPair блокирует обоих пользователей заявки
func lockPair(tx repository.Tx, a, b string) (map[string]*models.User, error) {
	return tx.LockUsers(a, b)
}

// Invite отправляет заявку от user_id к _id
func (s *FriendService) Invite(ctx context.Context, req *models.InviteFriendRequest) (result *models.WriteResult, err error) {
	ctx, span := tracer.Start(ctx, "FriendService.Invite")
	defer func() { finishSpan(span, err) }()

	if req.UserID == "" {
		return nil, apperrors.NewValidationError("user_id", "required")
	}
	if req.TargetID == "" {
		return nil, apperrors.NewValidationError("_id", "required")
	}
	span.SetAttributes(attribute.String("friend.from", req.UserID), attribute.String("friend.to", req.TargetID))

	if req.UserID == req.TargetID {
		return &models.WriteResult{Msg: SelfInviteMessage}, nil
	}

	result = &models.WriteResult{Acknowledged: true}
	err = s.store.Transact(ctx, func(tx repository.Tx) error {
		result.ModifiedCount = 0
		result.Msg = ""

		users, err := lockPair(tx, req.UserID, req.TargetID)
		if err != nil {
			return err
		}
		sender, ok := users[req.UserID]
		if !ok {
			return apperrors.ErrUserNotFound
		}
		recipient, ok := users[req.TargetID]
		if !ok {
			return apperrors.ErrUserNotFound
		}

		if sender.IsFriendWith(recipient.ID) {
			result.Msg = "already friends"
			return nil
		}

		if models.AppendUnique(&sender.FriendRequestsSent, recipient.ID) {
			if err := tx.SaveUser(sender); err != nil {
				return err
			}
			result.ModifiedCount++
		}
		if models.AppendUnique(&recipient.FriendRequestsReceived, sender.ID) {
			if err := tx.SaveUser(recipient); err != nil {
				return err
			}
			result.ModifiedCount++
		}
		return nil
	})
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.Error("Failed to send friend request", zap.Error(err), zap.String("user_id", req.UserID))
		}
		return nil, err
	}

	if result.ModifiedCount > 0 {
		_ = s.cache.DeleteUsers(ctx, req.UserID, req.TargetID)
		friendRequestsTotal.WithLabelValues("invited").Inc()
	}
	// Подсказка профиля от клиента не сохраняется: карточка строится из записи пользователя
	s.logger.Info("Friend request sent",
		zap.String("from", req.UserID),
		zap.String("to", req.TargetID),
		zap.String("hint_username", req.Username),
		zap.Int("modified", result.ModifiedCount))
	return result, nil
}

// Respond принимает или отклоняет заявку от sentFrom.
// Заявки нет во входящих: успех без изменений.
func (s *FriendService) Respond(ctx context.Context, req *models.RespondFriendRequest) (result *models.WriteResult, err error) {
	ctx, span := tracer.Start(ctx, "FriendService.Respond")
	defer func() { finishSpan(span, err) }()

	if req.UserID == "" {
		return nil, apperrors.NewValidationError("user_id", "required")
	}
	if req.SentFrom == "" {
		return nil, apperrors.NewValidationError("sentFrom", "required")
	}
	if !req.IsAccepted.IsSet() {
		return nil, apperrors.NewValidationError("isAccepted", "required")
	}
	accept, err := req.IsAccepted.Bool()
	if err != nil {
		return nil, apperrors.NewValidationError("isAccepted", err.Error())
	}
	span.SetAttributes(attribute.Bool("friend.accepted", accept))

	result = &models.WriteResult{Acknowledged: true}
	err = s.store.Transact(ctx, func(tx repository.Tx) error {
		result.ModifiedCount = 0

		users, err := lockPair(tx, req.UserID, req.SentFrom)
		if err != nil {
			return err
		}
		user, ok := users[req.UserID]
		if !ok {
			return apperrors.ErrUserNotFound
		}
		if !slices.Contains(user.FriendRequestsReceived, req.SentFrom) {
			return nil
		}

		models.RemoveValue(&user.FriendRequestsReceived, req.SentFrom)
		requester, requesterExists := users[req.SentFrom]
		if requesterExists {
			models.RemoveValue(&requester.FriendRequestsSent, user.ID)
			if accept {
				models.AppendUnique(&user.Friends, requester.ID)
				models.AppendUnique(&requester.Friends, user.ID)
			}
		}

		if err := tx.SaveUser(user); err != nil {
			return err
		}
		result.ModifiedCount++
		if requesterExists {
			if err := tx.SaveUser(requester); err != nil {
				return err
			}
			result.ModifiedCount++
		}
		return nil
	})
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.Error("Failed to respond to friend request", zap.Error(err), zap.String("user_id", req.UserID))
		}
		return nil, err
	}

	if result.ModifiedCount == 0 {
		s.logger.Debug("No pending friend request", zap.String("user_id", req.UserID), zap.String("sent_from", req.SentFrom))
		return result, nil
	}

	_ = s.cache.DeleteUsers(ctx, req.UserID, req.SentFrom)
	action := "declined"
	if accept {
		action = "accepted"
	}
	friendRequestsTotal.WithLabelValues(action).Inc()
	s.logger.Info("Friend request answered",
		zap.String("user_id", req.UserID),
		zap.String("sent_from", req.SentFrom),
		zap.String("action", action))
	return result, nil
}
