package service

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"GameMasterService/config"
	"GameMasterService/internal/models"
	"GameMasterService/internal/progression"
	"GameMasterService/internal/repository"
	"GameMasterService/pkg/apperrors"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RewardPolicy правила начисления опыта за завершенное событие
type RewardPolicy struct {
	ExperiencePerHour float64
	HostMultiplier    float64
}

// DefaultRewardPolicy 25 опыта за час игры, ведущему в полтора раза больше
func DefaultRewardPolicy() RewardPolicy {
	return RewardPolicy{ExperiencePerHour: 25, HostMultiplier: 1.5}
}

// NewRewardPolicy строит политику из конфигурации
func NewRewardPolicy(cfg config.RewardConfig) RewardPolicy {
	return RewardPolicy{ExperiencePerHour: cfg.ExperiencePerHour, HostMultiplier: cfg.HostMultiplier}
}

// ParticipantAward опыт участника за событие длительностью d
func (p RewardPolicy) ParticipantAward(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(p.ExperiencePerHour * d.Hours()))
}

// HostAward опыт ведущего
func (p RewardPolicy) HostAward(d time.Duration) int {
	return int(math.Round(float64(p.ParticipantAward(d)) * p.HostMultiplier))
}

// CreaturePicker выбирает приз из пула коллекции. Пул не изменяется.
type CreaturePicker interface {
	Pick(pool []models.Creature) (models.Creature, bool)
}

// CreaturePickerFunc адаптер функции к CreaturePicker
type CreaturePickerFunc func(pool []models.Creature) (models.Creature, bool)

func (f CreaturePickerFunc) Pick(pool []models.Creature) (models.Creature, bool) {
	return f(pool)
}

// FirstCreaturePicker всегда выдает первое существо пула
var FirstCreaturePicker = CreaturePickerFunc(func(pool []models.Creature) (models.Creature, bool) {
	if len(pool) == 0 {
		return models.Creature{}, false
	}
	return pool[0], true
})

// LastCreaturePicker всегда выдает последнее существо пула
var LastCreaturePicker = CreaturePickerFunc(func(pool []models.Creature) (models.Creature, bool) {
	if len(pool) == 0 {
		return models.Creature{}, false
	}
	return pool[len(pool)-1], true
})

// RandomCreaturePicker равновероятный выбор
type RandomCreaturePicker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomCreaturePicker создает picker; seed делает выбор воспроизводимым в тестах
func NewRandomCreaturePicker(seed uint64) *RandomCreaturePicker {
	return &RandomCreaturePicker{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p *RandomCreaturePicker) Pick(pool []models.Creature) (models.Creature, bool) {
	if len(pool) == 0 {
		return models.Creature{}, false
	}
	p.mu.Lock()
	i := p.rnd.IntN(len(pool))
	p.mu.Unlock()
	return pool[i], true
}

// NewCreaturePicker возвращает стратегию по имени: random, first или last
func NewCreaturePicker(name string) (CreaturePicker, error) {
	switch name {
	case "", "random":
		return NewRandomCreaturePicker(uint64(time.Now().UnixNano())), nil
	case "first":
		return FirstCreaturePicker, nil
	case "last":
		return LastCreaturePicker, nil
	}
	return nil, fmt.Errorf("unknown creature picker %q", name)
}

// ResolveResult итог завершения события
type ResolveResult struct {
	Event *models.Event
	// Updated id пользователей, чьи записи изменены, по возрастанию
	Updated []string
	// Skipped id из запроса, которых нет в хранилище
	Skipped  []string
	Creature *models.Creature
}

// Resolver завершает событие и раздает награды в одной транзакции
type Resolver struct {
	store  repository.Store
	policy RewardPolicy
	picker CreaturePicker
	logger *zap.Logger
}

// NewResolver создает новый экземпляр Resolver
func NewResolver(store repository.Store, policy RewardPolicy, picker CreaturePicker, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:  store,
		policy: policy,
		picker: picker,
		logger: logger,
	}
}

// eventPatch проверенные поля запроса на завершение
type eventPatch struct {
	hostID       string
	participants []string
	winner       string
	duration     *time.Duration
	gameInfo     *string
	image        *string
	capacity     *int
	isGameFull   *bool
}

func parseEventPatch(req *models.ResolveEventRequest) (*eventPatch, error) {
	if req.EventID == "" {
		return nil, apperrors.NewValidationError("event_id", "required")
	}
	if req.HostID == "" {
		return nil, apperrors.NewValidationError("host_id", "required")
	}
	if len(req.Participants) == 0 {
		return nil, apperrors.NewValidationError("participants", "at least one participant is required")
	}

	p := &eventPatch{
		hostID:       req.HostID,
		participants: slices.Clone(req.Participants),
		winner:       req.Winner,
		gameInfo:     req.GameInfo,
		image:        req.Image,
	}

	if req.Duration != "" {
		d, err := models.ParseGameDuration(req.Duration)
		if err != nil {
			return nil, apperrors.NewValidationError("duration", err.Error())
		}
		p.duration = &d
	}
	if req.Capacity.IsSet() {
		v, err := req.Capacity.Int()
		if err != nil || v < 0 {
			return nil, apperrors.NewValidationError("capacity", "must be a non-negative integer")
		}
		c := int(v)
		p.capacity = &c
	}
	if req.IsGameFull.IsSet() {
		v, err := req.IsGameFull.Bool()
		if err != nil {
			return nil, apperrors.NewValidationError("isGameFull", err.Error())
		}
		p.isGameFull = &v
	}

	return p, nil
}

func (p *eventPatch) apply(event *models.Event) {
	event.HostID = p.hostID
	event.Participants = p.participants
	if p.winner != "" {
		event.Winner = p.winner
	}
	if p.duration != nil {
		event.Duration = *p.duration
	}
	if p.gameInfo != nil {
		event.GameInfo = *p.gameInfo
	}
	if p.image != nil {
		event.Image = *p.image
	}
	if p.capacity != nil {
		event.Capacity = *p.capacity
	}
	if p.isGameFull != nil {
		event.IsGameFull = *p.isGameFull
	}
}

// Resolve завершает событие: участники получают опыт, ведущий повышенный,
// победитель получает существо из призовой коллекции. Повторное завершение
// возвращает apperrors.ErrEventCompleted.
func (r *Resolver) Resolve(ctx context.Context, req *models.ResolveEventRequest) (result *ResolveResult, err error) {
	ctx, span := tracer.Start(ctx, "Resolver.Resolve")
	defer func() { finishSpan(span, err) }()
	span.SetAttributes(attribute.String("event.id", req.EventID))

	patch, err := parseEventPatch(req)
	if err != nil {
		return nil, err
	}

	var levelUps, participantXP, hostXP int
	err = r.store.Transact(ctx, func(tx repository.Tx) error {
		result = &ResolveResult{}
		levelUps, participantXP, hostXP = 0, 0, 0

		event, err := tx.LockEvent(req.EventID)
		if err != nil {
			return err
		}
		if event.IsCompleted {
			return apperrors.ErrEventCompleted
		}

		patch.apply(event)
		event.IsCompleted = true
		result.Event = event

		ids := append(slices.Clone(event.Participants), event.HostID)
		if event.Winner != "" {
			ids = append(ids, event.Winner)
		}
		users, err := tx.LockUsers(ids...)
		if err != nil {
			return err
		}

		updated := make(map[string]bool)
		skip := func(id string) {
			if !slices.Contains(result.Skipped, id) {
				result.Skipped = append(result.Skipped, id)
			}
		}
		award := func(id string, amount int) bool {
			user, ok := users[id]
			if !ok {
				skip(id)
				return false
			}
			before := user.CharacterStats
			user.CharacterStats = progression.Apply(before, amount)
			levelUps += progression.LevelsGained(before, user.CharacterStats)
			updated[id] = true
			return true
		}

		participantAward := r.policy.ParticipantAward(event.Duration)
		awarded := make(map[string]bool)
		for _, id := range event.Participants {
			if id == event.HostID || awarded[id] {
				continue
			}
			awarded[id] = true
			if award(id, participantAward) {
				participantXP += participantAward
			}
		}

		hostAward := r.policy.HostAward(event.Duration)
		if award(event.HostID, hostAward) {
			hostXP += hostAward
		}

		if event.Winner != "" {
			winner, ok := users[event.Winner]
			if !ok {
				skip(event.Winner)
			} else if creature, err := r.drawCreature(tx, event.CollectionID); err != nil {
				return err
			} else if creature != nil {
				winner.MyCreatures = append(winner.MyCreatures, *creature)
				updated[winner.ID] = true
				result.Creature = creature
			}
		}

		if err := tx.SaveEvent(event); err != nil {
			return err
		}

		for id := range updated {
			result.Updated = append(result.Updated, id)
		}
		slices.Sort(result.Updated)
		for _, id := range result.Updated {
			if err := tx.SaveUser(users[id]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventsResolvedTotal.Inc()
	experienceAwardedTotal.WithLabelValues("participant").Add(float64(participantXP))
	experienceAwardedTotal.WithLabelValues("host").Add(float64(hostXP))
	levelUpsTotal.Add(float64(levelUps))
	if result.Creature != nil {
		creaturesGrantedTotal.Inc()
	}

	span.SetAttributes(
		attribute.Int("event.users_updated", len(result.Updated)),
		attribute.Int("event.users_skipped", len(result.Skipped)),
	)
	return result, nil
}

// drawCreature выбирает приз; отсутствующая или пустая коллекция дает nil
func (r *Resolver) drawCreature(tx repository.Tx, collectionID string) (*models.Creature, error) {
	if collectionID == "" {
		return nil, nil
	}

	collection, err := tx.GetCollection(collectionID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			r.logger.Warn("Prize collection not found, no creature granted", zap.String("collection_id", collectionID))
			return nil, nil
		}
		return nil, err
	}

	creature, ok := r.picker.Pick(collection.Creatures)
	if !ok {
		return nil, nil
	}
	return &creature, nil
}
