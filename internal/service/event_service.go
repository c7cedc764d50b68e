package service

import (
	"context"
	"slices"
	"strings"

	"GameMasterService/internal/models"
	"GameMasterService/internal/query"
	"GameMasterService/internal/repository"
	"GameMasterService/pkg/apperrors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventService представляет сервис для работы с событиями
type EventService struct {
	store    repository.Store
	cache    Cache
	resolver *Resolver
	logger   *zap.Logger
	newID    func() string
}

// NewEventService создает новый экземпляр EventService
func NewEventService(store repository.Store, cache Cache, resolver *Resolver, logger *zap.Logger) *EventService {
	return &EventService{
		store:    store,
		cache:    cache,
		resolver: resolver,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// ListEvents возвращает открытые события с фильтрами и сортировкой
func (s *EventService) ListEvents(ctx context.Context, req *models.ListEventsRequest) ([]models.Event, error) {
	q, err := query.ParseEventQuery(req)
	if err != nil {
		return nil, err
	}

	events, err := s.store.ListOpenEvents(ctx)
	if err != nil {
		s.logger.Error("Failed to list events", zap.Error(err))
		return nil, err
	}

	return q.Apply(events), nil
}

// GetEvent возвращает событие по id
func (s *EventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("event_id", "required")
	}

	if event, err := s.cache.GetEvent(ctx, id); err == nil {
		s.logger.Debug("Event retrieved from cache", zap.String("event_id", id))
		return event, nil
	}

	event, err := s.store.GetEvent(ctx, id)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.Error("Failed to get event", zap.Error(err), zap.String("event_id", id))
		}
		return nil, err
	}

	_ = s.cache.SetEvent(ctx, event)
	return event, nil
}

// CreateEvent создает открытое событие
func (s *EventService) CreateEvent(ctx context.Context, req *models.CreateEventRequest) (*models.InsertResult, error) {
	gameType := strings.TrimSpace(req.GameType)
	if gameType == "" {
		return nil, apperrors.NewValidationError("gameType", "required")
	}
	if strings.TrimSpace(req.DateTime) == "" {
		return nil, apperrors.NewValidationError("dateTime", "required")
	}
	dateTime, err := models.ParseEventTime(req.DateTime)
	if err != nil {
		return nil, apperrors.NewValidationError("dateTime", err.Error())
	}

	event := &models.Event{
		ID:           s.newID(),
		Image:        req.Image,
		GameInfo:     req.GameInfo,
		GameType:     gameType,
		DateTime:     dateTime,
		HostID:       req.HostID,
		CollectionID: strings.TrimSpace(req.CollectionID),
	}

	if req.Duration != "" {
		d, err := models.ParseGameDuration(req.Duration)
		if err != nil {
			return nil, apperrors.NewValidationError("duration", err.Error())
		}
		event.Duration = d
	}
	if req.Capacity.IsSet() {
		v, err := req.Capacity.Int()
		if err != nil || v < 0 {
			return nil, apperrors.NewValidationError("capacity", "must be a non-negative integer")
		}
		event.Capacity = int(v)
	}
	if req.IsGameFull.IsSet() {
		v, err := req.IsGameFull.Bool()
		if err != nil {
			return nil, apperrors.NewValidationError("isGameFull", err.Error())
		}
		event.IsGameFull = v
	}
	for _, id := range req.Participants {
		if id != "" && !slices.Contains(event.Participants, id) {
			event.Participants = append(event.Participants, id)
		}
	}
	event.Normalize()

	if err := s.store.CreateEvent(ctx, event); err != nil {
		s.logger.Error("Failed to create event", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Event created",
		zap.String("event_id", event.ID),
		zap.String("game_type", event.GameType),
		zap.Time("date_time", event.DateTime))
	return &models.InsertResult{Acknowledged: true, InsertedID: event.ID}, nil
}

// ResolveEvent завершает событие. modifiedCount учитывает событие и
// каждого пользователя, чья запись изменилась.
func (s *EventService) ResolveEvent(ctx context.Context, req *models.ResolveEventRequest) (*models.WriteResult, error) {
	result, err := s.resolver.Resolve(ctx, req)
	if err != nil {
		switch {
		case apperrors.IsValidation(err), apperrors.IsNotFound(err):
		case apperrors.IsConflict(err):
			s.logger.Warn("Event already completed", zap.String("event_id", req.EventID))
		default:
			s.logger.Error("Failed to resolve event", zap.Error(err), zap.String("event_id", req.EventID))
		}
		return nil, err
	}

	_ = s.cache.DeleteEvent(ctx, req.EventID)
	if len(result.Updated) > 0 {
		_ = s.cache.DeleteUsers(ctx, result.Updated...)
	}

	fields := []zap.Field{
		zap.String("event_id", req.EventID),
		zap.Strings("updated", result.Updated),
		zap.Strings("skipped", result.Skipped),
	}
	if result.Creature != nil {
		fields = append(fields, zap.String("creature", result.Creature.Name))
	}
	s.logger.Info("Event resolved", fields...)

	return &models.WriteResult{
		Acknowledged:  true,
		ModifiedCount: 1 + len(result.Updated),
		Skipped:       result.Skipped,
	}, nil
}
