package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"GameMasterService/internal/models"
	"GameMasterService/pkg/apperrors"
)

var testPool = []models.Creature{
	{ID: "c1", Name: "Kraken", ImageURL: "kraken.png"},
	{ID: "c2", Name: "Griffin", ImageURL: "griffin.png"},
	{ID: "c3", Name: "Hydra", ImageURL: "hydra.png"},
}

// addEvent создает открытое событие с призовой коллекцией
func (e *testEnv) addEvent(t *testing.T, id, collectionID string, at time.Time) {
	t.Helper()

	event := &models.Event{
		ID:           id,
		GameType:     "strategy",
		DateTime:     at,
		Duration:     2 * time.Hour,
		Capacity:     4,
		CollectionID: collectionID,
	}
	if err := e.store.CreateEvent(context.Background(), event); err != nil {
		t.Fatalf("Failed to setup test: %v", err)
	}
}

func (e *testEnv) addCollection(t *testing.T, id string, creatures []models.Creature) {
	t.Helper()

	collection := &models.Collection{ID: id, Name: id, Creatures: creatures}
	if err := e.store.SaveCollection(context.Background(), collection); err != nil {
		t.Fatalf("Failed to setup test: %v", err)
	}
}

func TestRewardPolicy(t *testing.T) {
	policy := DefaultRewardPolicy()

	tests := []struct {
		name        string
		duration    time.Duration
		participant int
		host        int
	}{
		{"TwoHours", 2 * time.Hour, 50, 75},
		{"NinetyMinutes", 90 * time.Minute, 38, 57},
		{"Zero", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.ParticipantAward(tt.duration); got != tt.participant {
				t.Errorf("Expected participant award %d, got %d", tt.participant, got)
			}
			if got := policy.HostAward(tt.duration); got != tt.host {
				t.Errorf("Expected host award %d, got %d", tt.host, got)
			}
		})
	}
}

func TestResolveEvent(t *testing.T) {
	ctx := context.Background()

	// Тест кейс: участник и ведущий получают опыт с переносом уровней
	t.Run("Rewards", func(t *testing.T) {
		env := newTestEnv(t, FirstCreaturePicker)
		env.addUser(t, "p", 6, 19)
		env.addUser(t, "h", 7, 29)
		env.addCollection(t, "pool", testPool)
		env.addEvent(t, "e1", "pool", time.Now())

		result, err := env.events.ResolveEvent(ctx, &models.ResolveEventRequest{
			EventID:      "e1",
			HostID:       "h",
			Participants: []string{"p", "h"},
			Winner:       "p",
			Duration:     "2:00:00",
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !result.Acknowledged || result.ModifiedCount != 3 {
			t.Errorf("Expected event and two users modified, got %+v", result)
		}

		p := env.mustGetUser(t, "p").CharacterStats
		if p.Level != 7 || p.Experience != 9 {
			t.Errorf("Expected participant 7/9, got %d/%d", p.Level, p.Experience)
		}
		h := env.mustGetUser(t, "h").CharacterStats
		if h.Level != 8 || h.Experience != 34 {
			t.Errorf("Expected host 8/34, got %d/%d", h.Level, h.Experience)
		}

		creatures := env.mustGetUser(t, "p").MyCreatures
		if len(creatures) != 1 || creatures[0].ID != "c1" {
			t.Errorf("Expected first creature granted, got %v", creatures)
		}

		event, err := env.store.GetEvent(ctx, "e1")
		if err != nil {
			t.Fatalf("Expected event in store, got error: %v", err)
		}
		if !event.IsCompleted || event.HostID != "h" || event.Winner != "p" {
			t.Errorf("Expected completed event with patch applied, got %+v", event)
		}
		if !env.cache.wasDeleted("e1") || !env.cache.wasDeleted("p") {
			t.Errorf("Expected cache invalidation for event and users")
		}
	})

	// Тест кейс: повторное завершение отклоняется без изменений
	t.Run("AlreadyCompleted", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.addUser(t, "p", 1, 0)
		env.addUser(t, "h", 1, 0)
		env.addEvent(t, "e1", "", time.Now())

		req := &models.ResolveEventRequest{EventID: "e1", HostID: "h", Participants: []string{"p"}}
		if _, err := env.events.ResolveEvent(ctx, req); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		before := env.mustGetUser(t, "p").CharacterStats

		_, err := env.events.ResolveEvent(ctx, req)
		if !errors.Is(err, apperrors.ErrEventCompleted) || !apperrors.IsConflict(err) {
			t.Fatalf("Expected conflict, got %v", err)
		}
		if after := env.mustGetUser(t, "p").CharacterStats; after != before {
			t.Errorf("Expected no second award, got %+v then %+v", before, after)
		}
	})

	// Тест кейс: неизвестные участники пропускаются и возвращаются в skipped
	t.Run("SkippedIDs", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.addUser(t, "h", 1, 0)
		env.addEvent(t, "e1", "", time.Now())

		result, err := env.events.ResolveEvent(ctx, &models.ResolveEventRequest{
			EventID:      "e1",
			HostID:       "h",
			Participants: []string{"ghost", "ghost"},
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if !equalStrings(result.Skipped, []string{"ghost"}) {
			t.Errorf("Expected skipped [ghost], got %v", result.Skipped)
		}
		if h := env.mustGetUser(t, "h").CharacterStats; h.Level != 4 || h.Experience != 15 {
			t.Errorf("Expected host 4/15 after 75 XP, got %+v", h)
		}
	})

	// Тест кейс: пустой пул не дает существа, событие все равно завершается
	t.Run("EmptyPool", func(t *testing.T) {
		env := newTestEnv(t, LastCreaturePicker)
		env.addUser(t, "p", 1, 0)
		env.addUser(t, "h", 1, 0)
		env.addCollection(t, "empty", nil)
		env.addEvent(t, "e1", "empty", time.Now())

		_, err := env.events.ResolveEvent(ctx, &models.ResolveEventRequest{
			EventID: "e1", HostID: "h", Participants: []string{"p"}, Winner: "p",
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if creatures := env.mustGetUser(t, "p").MyCreatures; len(creatures) != 0 {
			t.Errorf("Expected no creature, got %v", creatures)
		}
	})

	// Тест кейс: стратегия last выдает последнее существо, пул не истощается
	t.Run("LastPicker", func(t *testing.T) {
		env := newTestEnv(t, LastCreaturePicker)
		env.addUser(t, "p", 1, 0)
		env.addUser(t, "h", 1, 0)
		env.addCollection(t, "pool", testPool)
		env.addEvent(t, "e1", "pool", time.Now())
		env.addEvent(t, "e2", "pool", time.Now())

		for _, id := range []string{"e1", "e2"} {
			_, err := env.events.ResolveEvent(ctx, &models.ResolveEventRequest{
				EventID: id, HostID: "h", Participants: []string{"p"}, Winner: "p",
			})
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
		}

		creatures := env.mustGetUser(t, "p").MyCreatures
		if len(creatures) != 2 || creatures[0].ID != "c3" || creatures[1].ID != "c3" {
			t.Errorf("Expected two copies of c3, got %v", creatures)
		}
	})

	// Тест кейс: патч без участников
	t.Run("Validation", func(t *testing.T) {
		env := newTestEnv(t, nil)
		_, err := env.events.ResolveEvent(ctx, &models.ResolveEventRequest{EventID: "e1", HostID: "h"})
		if !apperrors.IsValidation(err) {
			t.Fatalf("Expected validation error, got %v", err)
		}
	})

	// Тест кейс: длительность, переполняющая счетчик, отклоняется без начислений
	t.Run("DurationTooLong", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.addUser(t, "p", 1, 0)
		env.addUser(t, "h", 1, 0)
		env.addEvent(t, "e1", "", time.Now())

		_, err := env.events.ResolveEvent(ctx, &models.ResolveEventRequest{
			EventID:      "e1",
			HostID:       "h",
			Participants: []string{"p"},
			Duration:     "3000000:00:00",
		})
		if !apperrors.IsValidation(err) {
			t.Fatalf("Expected validation error, got %v", err)
		}

		event, err := env.store.GetEvent(ctx, "e1")
		if err != nil {
			t.Fatalf("Expected event in store, got error: %v", err)
		}
		if event.IsCompleted {
			t.Errorf("Expected event to stay open")
		}
		if stats := env.mustGetUser(t, "p").CharacterStats; stats.Level != 1 || stats.Experience != 0 {
			t.Errorf("Expected participant untouched, got %+v", stats)
		}
	})

	// Тест кейс: событие не существует
	t.Run("UnknownEvent", func(t *testing.T) {
		env := newTestEnv(t, nil)
		_, err := env.events.ResolveEvent(ctx, &models.ResolveEventRequest{
			EventID: "ghost", HostID: "h", Participants: []string{"p"},
		})
		if !apperrors.IsNotFound(err) {
			t.Fatalf("Expected not found, got %v", err)
		}
	})
}

func TestRandomCreaturePicker(t *testing.T) {
	picker := NewRandomCreaturePicker(42)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		c, ok := picker.Pick(testPool)
		if !ok {
			t.Fatalf("Expected creature from non-empty pool")
		}
		seen[c.ID] = true
	}
	if len(seen) != len(testPool) {
		t.Errorf("Expected every creature to be drawn eventually, got %v", seen)
	}

	if _, ok := picker.Pick(nil); ok {
		t.Errorf("Expected no creature from empty pool")
	}
}

func TestNewCreaturePicker(t *testing.T) {
	for _, name := range []string{"", "random", "first", "last"} {
		if _, err := NewCreaturePicker(name); err != nil {
			t.Errorf("Expected picker %q, got error %v", name, err)
		}
	}
	if _, err := NewCreaturePicker("loaded-dice"); err == nil {
		t.Errorf("Expected error for unknown picker")
	}
}

func TestEvents(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	env.addUser(t, "h", 1, 0)

	// Тест кейс: создание и чтение события
	t.Run("CreateAndGet", func(t *testing.T) {
		req := &models.CreateEventRequest{
			GameType:   "coop",
			DateTime:   "2023-09-21 19:30:00",
			Duration:   "1:30:00",
			Capacity:   models.NewFlexInt(5),
			IsGameFull: models.NewFlexBool(false),
		}
		result, err := env.events.CreateEvent(ctx, req)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		event, err := env.events.GetEvent(ctx, result.InsertedID)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if event.Duration != 90*time.Minute || event.Capacity != 5 || event.IsCompleted {
			t.Errorf("Expected open 1:30 event for 5, got %+v", event)
		}
		if _, err := env.cache.GetEvent(ctx, result.InsertedID); err != nil {
			t.Errorf("Expected event to be cached after fetch, got error: %v", err)
		}
	})

	// Тест кейс: некорректная длительность
	t.Run("InvalidDuration", func(t *testing.T) {
		_, err := env.events.CreateEvent(ctx, &models.CreateEventRequest{
			GameType: "coop", DateTime: "2023-09-21 19:30:00", Duration: "two hours",
		})
		if !apperrors.IsValidation(err) {
			t.Fatalf("Expected validation error, got %v", err)
		}
	})

	// Тест кейс: завершенные события не попадают в выборку
	t.Run("CompletedHidden", func(t *testing.T) {
		env.addEvent(t, "done", "", time.Now())
		if _, err := env.events.ResolveEvent(ctx, &models.ResolveEventRequest{
			EventID: "done", HostID: "h", Participants: []string{"h"},
		}); err != nil {
			t.Fatalf("Failed to setup test: %v", err)
		}

		events, err := env.events.ListEvents(ctx, &models.ListEventsRequest{})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		for _, ev := range events {
			if ev.ID == "done" || ev.IsCompleted {
				t.Errorf("Expected completed events to be excluded, got %s", ev.ID)
			}
		}
		if len(events) != 1 {
			t.Errorf("Expected 1 open event, got %d", len(events))
		}
	})

	// Тест кейс: некорректный isGameFull
	t.Run("InvalidIsGameFull", func(t *testing.T) {
		_, err := env.events.ListEvents(ctx, &models.ListEventsRequest{IsGameFull: "maybe"})
		if !apperrors.IsValidation(err) {
			t.Fatalf("Expected validation error, got %v", err)
		}
	})
}
