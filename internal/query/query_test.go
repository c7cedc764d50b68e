package query

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"GameMasterService/internal/models"
	"GameMasterService/pkg/apperrors"
)

func at(day, hour int) time.Time {
	return time.Date(2023, 9, day, hour, 0, 0, 0, time.UTC)
}

func sampleEvents() []models.Event {
	return []models.Event{
		{ID: "1", GameType: "Board Games", DateTime: at(27, 19), Capacity: 5, CollectionID: "1"},
		{ID: "2", GameType: "Board Games", DateTime: at(21, 19), Capacity: 2, IsGameFull: true, CollectionID: "2"},
		{ID: "3", GameType: "Board Games", DateTime: at(23, 20), Capacity: 5, CollectionID: "3"},
		{ID: "4", GameType: "Card Games", DateTime: at(22, 14), Capacity: 8, CollectionID: "1"},
		{ID: "5", GameType: "Card Games", DateTime: at(25, 15), Capacity: 4, IsGameFull: true, CollectionID: "2"},
		{ID: "6", GameType: "Card Games", DateTime: at(20, 18), Capacity: 6, CollectionID: "3"},
		{ID: "7", GameType: "Card Games", DateTime: at(9, 15), Capacity: 6, IsCompleted: true},
	}
}

func ids(events []models.Event) []string {
	out := make([]string, len(events))
	for i := range events {
		out[i] = events[i].ID
	}
	return out
}

func userIDs(users []models.User) []string {
	out := make([]string, len(users))
	for i := range users {
		out[i] = users[i].ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEventQuery(t *testing.T) {
	cases := map[string]struct {
		req  models.ListEventsRequest
		want []string
	}{
		"default ascending by date": {
			req:  models.ListEventsRequest{},
			want: []string{"6", "2", "4", "3", "5", "1"},
		},
		"game type": {
			req:  models.ListEventsRequest{GameType: "Card Games"},
			want: []string{"6", "4", "5"},
		},
		"full games only": {
			req:  models.ListEventsRequest{IsGameFull: "true"},
			want: []string{"2", "5"},
		},
		"capacity descending with id tie-break": {
			req:  models.ListEventsRequest{SortBy: "capacity", Order: "-1"},
			want: []string{"4", "6", "1", "3", "5", "2"},
		},
		"aip order_by": {
			req:  models.ListEventsRequest{OrderBy: "game_type desc, capacity"},
			want: []string{"5", "6", "4", "2", "1", "3"},
		},
		"aip filter": {
			req:  models.ListEventsRequest{Filter: `capacity >= 5 AND game_type = "Board Games"`},
			want: []string{"3", "1"},
		},
		"aip filter with timestamp": {
			req:  models.ListEventsRequest{Filter: `date_time > timestamp("2023-09-24T00:00:00Z")`},
			want: []string{"5", "1"},
		},
		"aip filter with or": {
			req:  models.ListEventsRequest{Filter: `collection_id = "2" OR capacity = 8`},
			want: []string{"2", "4", "5"},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			q, err := ParseEventQuery(&tc.req)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			got := ids(q.Apply(sampleEvents()))
			if !equal(got, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestEventQueryNeverListsCompleted(t *testing.T) {
	q, err := ParseEventQuery(&models.ListEventsRequest{GameType: "Card Games"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for _, ev := range q.Apply(sampleEvents()) {
		if ev.IsCompleted {
			t.Errorf("Expected completed event %s to be excluded", ev.ID)
		}
	}
}

func TestEventQueryValidation(t *testing.T) {
	cases := map[string]models.ListEventsRequest{
		"bad isGameFull":   {IsGameFull: "maybe"},
		"bad sort path":    {SortBy: "participants"},
		"bad order token":  {SortBy: "capacity", Order: "up"},
		"bad filter field": {Filter: `winner = "1"`},
		"bad filter type":  {Filter: `capacity = "five"`},
		"bad order_by":     {OrderBy: "image desc"},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseEventQuery(&req)
			if !errors.Is(err, apperrors.ErrValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestEventQueryIsRepeatable(t *testing.T) {
	q, err := ParseEventQuery(&models.ListEventsRequest{SortBy: "gameType"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	first := ids(q.Apply(sampleEvents()))
	second := ids(q.Apply(sampleEvents()))
	if !equal(first, second) {
		t.Errorf("Expected identical reads, got %v and %v", first, second)
	}
}

func sampleUsers() []models.User {
	return []models.User{
		{ID: "1", Username: "carol", Name: "Carol", Topics: []string{"Strategy"}, CharacterStats: models.CharacterStats{Level: 3, Experience: 5, ExperienceToLevelUp: 30}},
		{ID: "2", Username: "alice", Name: "Alice", Topics: []string{"Strategy", "Cards"}, CharacterStats: models.CharacterStats{Level: 1, Experience: 2, ExperienceToLevelUp: 10}},
		{ID: "3", Username: "bob", Name: "Bob", Topics: []string{"Cards"}, CharacterStats: models.CharacterStats{Level: 5, Experience: 0, ExperienceToLevelUp: 50}},
	}
}

func TestUserQuery(t *testing.T) {
	cases := map[string]struct {
		req  models.ListUsersRequest
		want []string
	}{
		"storage order":           {req: models.ListUsersRequest{}, want: []string{"1", "2", "3"}},
		"topic":                   {req: models.ListUsersRequest{Topics: "Cards"}, want: []string{"2", "3"}},
		"level defaults to desc":  {req: models.ListUsersRequest{SortBy: "characterStats.level"}, want: []string{"3", "1", "2"}},
		"username ascending":      {req: models.ListUsersRequest{SortBy: "username", Order: "1"}, want: []string{"2", "3", "1"}},
		"experience order_by asc": {req: models.ListUsersRequest{OrderBy: "character_stats.experience"}, want: []string{"3", "2", "1"}},
		"topics and sort":         {req: models.ListUsersRequest{Topics: "Strategy", SortBy: "name", Order: "asc"}, want: []string{"2", "1"}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			q, err := ParseUserQuery(&tc.req)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			got := userIDs(q.Apply(sampleUsers()))
			if !equal(got, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestUserQueryValidation(t *testing.T) {
	_, err := ParseUserQuery(&models.ListUsersRequest{SortBy: "email"})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Expected validation error for unknown path, got %v", err)
	}

	_, err = ParseUserQuery(&models.ListUsersRequest{SortBy: "username", Order: "sideways"})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Expected validation error for unknown order, got %v", err)
	}
}

func TestUserQueryLegacyOrderBy(t *testing.T) {
	cases := map[string]struct {
		body string
		want []string
	}{
		"orderBy asc":             {body: `{"sortBy":"username","orderBy":"asc"}`, want: []string{"2", "3", "1"}},
		"orderBy desc":            {body: `{"sortBy":"username","orderBy":"desc"}`, want: []string{"1", "3", "2"}},
		"order wins over orderBy": {body: `{"sortBy":"username","order":"-1","orderBy":"asc"}`, want: []string{"1", "3", "2"}},
		"topics with orderBy":     {body: `{"topics":"Strategy","sortBy":"username","orderBy":"asc"}`, want: []string{"2", "1"}},
		"threshold with orderBy":  {body: `{"sortBy":"characterStats.experienceToLevelUp","orderBy":"asc"}`, want: []string{"2", "1", "3"}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var req models.ListUsersRequest
			if err := json.Unmarshal([]byte(tc.body), &req); err != nil {
				t.Fatalf("Failed to decode request: %v", err)
			}

			q, err := ParseUserQuery(&req)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			got := userIDs(q.Apply(sampleUsers()))
			if !equal(got, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}

	// Тест кейс: неизвестное направление в orderBy
	var req models.ListUsersRequest
	if err := json.Unmarshal([]byte(`{"sortBy":"username","orderBy":"upwards"}`), &req); err != nil {
		t.Fatalf("Failed to decode request: %v", err)
	}
	if _, err := ParseUserQuery(&req); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}
