package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFlexInt(t *testing.T) {
	// Тест кейс: число и строка с числом дают одинаковый результат
	t.Run("NumberAndString", func(t *testing.T) {
		var fromNumber, fromString FlexInt
		if err := json.Unmarshal([]byte(`50`), &fromNumber); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if err := json.Unmarshal([]byte(`"50"`), &fromString); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		a, err := fromNumber.Int()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		b, err := fromString.Int()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if a != 50 || b != 50 {
			t.Errorf("Expected 50 and 50, got %d and %d", a, b)
		}
	})

	// Тест кейс: нечисловая строка откладывает ошибку до Int
	t.Run("InvalidString", func(t *testing.T) {
		var v FlexInt
		if err := json.Unmarshal([]byte(`"lots"`), &v); err != nil {
			t.Fatalf("Expected decode to succeed, got %v", err)
		}
		if !v.IsSet() {
			t.Errorf("Expected value to be marked as set")
		}
		if _, err := v.Int(); err == nil {
			t.Errorf("Expected error for non-numeric value")
		}
	})

	// Тест кейс: отсутствующее поле
	t.Run("Missing", func(t *testing.T) {
		var req AwardExperienceRequest
		if err := json.Unmarshal([]byte(`{"user_id":"1"}`), &req); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if req.Exp.IsSet() {
			t.Errorf("Expected exp to be unset")
		}
	})
}

func TestFlexBool(t *testing.T) {
	cases := map[string]struct {
		input   string
		want    bool
		wantErr bool
	}{
		"native true":  {input: `true`, want: true},
		"string false": {input: `"false"`, want: false},
		"string true":  {input: `"true"`, want: true},
		"garbage":      {input: `"maybe"`, wantErr: true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var v FlexBool
			if err := json.Unmarshal([]byte(tc.input), &v); err != nil {
				t.Fatalf("Expected decode to succeed, got %v", err)
			}
			got, err := v.Bool()
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected error for %s", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got != tc.want {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestGameDuration(t *testing.T) {
	d, err := ParseGameDuration("2:00:00")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if d != 2*time.Hour {
		t.Errorf("Expected 2h, got %v", d)
	}

	d, err = ParseGameDuration("1:30")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if d != 90*time.Minute {
		t.Errorf("Expected 90m, got %v", d)
	}

	if got := FormatGameDuration(150 * time.Minute); got != "2:30:00" {
		t.Errorf("Expected 2:30:00, got %s", got)
	}

	d, err = ParseGameDuration("168:00:00")
	if err != nil {
		t.Fatalf("Expected no error at the limit, got %v", err)
	}
	if d != MaxGameDuration {
		t.Errorf("Expected %v, got %v", MaxGameDuration, d)
	}

	for _, bad := range []string{"", "2", "2:75:00", "a:00:00", "-1:00:00", "168:00:01", "3000000:00:00", "9223372036854775807:00:00"} {
		if _, err := ParseGameDuration(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestParseEventTime(t *testing.T) {
	got, err := ParseEventTime("2023-09-9 15:00:00")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := time.Date(2023, 9, 9, 15, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	got, err = ParseEventTime("2023-09-21T19:30:00Z")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if FormatEventTime(got) != "2023-09-21 19:30:00" {
		t.Errorf("Expected 2023-09-21 19:30:00, got %s", FormatEventTime(got))
	}

	if _, err := ParseEventTime("tomorrow"); err == nil {
		t.Errorf("Expected error for invalid date")
	}
}

func TestEventJSON(t *testing.T) {
	event := Event{
		ID:           "1",
		GameType:     "Board Games",
		DateTime:     time.Date(2023, 9, 27, 19, 0, 0, 0, time.UTC),
		Duration:     2 * time.Hour,
		Capacity:     5,
		Participants: []string{"1", "2"},
		CollectionID: "1",
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if raw["dateTime"] != "2023-09-27 19:00:00" {
		t.Errorf("Expected dateTime 2023-09-27 19:00:00, got %v", raw["dateTime"])
	}
	if raw["duration"] != "2:00:00" {
		t.Errorf("Expected duration 2:00:00, got %v", raw["duration"])
	}
	if _, ok := raw["requestedToParticipate"].([]any); !ok {
		t.Errorf("Expected requestedToParticipate to be an empty array, got %v", raw["requestedToParticipate"])
	}

	var decoded Event
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !decoded.DateTime.Equal(event.DateTime) || decoded.Duration != event.Duration {
		t.Errorf("Expected date and duration to survive decoding, got %v and %v", decoded.DateTime, decoded.Duration)
	}
}
