package models

import (
	"encoding/json"
	"slices"
	"time"
)

// Event представляет игровое событие
type Event struct {
	ID                     string `gorm:"primaryKey;type:varchar(64)"`
	Image                  string
	GameInfo               string
	IsGameFull             bool      `gorm:"default:false"`
	GameType               string    `gorm:"index"`
	DateTime               time.Time `gorm:"index"`
	Duration               time.Duration
	Capacity               int
	Participants           []string `gorm:"type:text;serializer:json"`
	RequestedToParticipate []string `gorm:"type:text;serializer:json"`
	HostID                 string   `gorm:"index"`
	Winner                 string
	CollectionID           string
	IsCompleted            bool `gorm:"index;default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// eventJSON описывает представление события для клиентов
type eventJSON struct {
	ID                     string   `json:"_id"`
	Image                  string   `json:"image"`
	GameInfo               string   `json:"gameInfo"`
	IsGameFull             bool     `json:"isGameFull"`
	GameType               string   `json:"gameType"`
	DateTime               string   `json:"dateTime"`
	Duration               string   `json:"duration"`
	Capacity               int      `json:"capacity"`
	Participants           []string `json:"participants"`
	RequestedToParticipate []string `json:"requestedToParticipate"`
	HostID                 string   `json:"host_id,omitempty"`
	Winner                 string   `json:"winner,omitempty"`
	CollectionID           string   `json:"collection_id,omitempty"`
	IsCompleted            bool     `json:"isCompleted"`
}

// MarshalJSON выводит дату и длительность в клиентском формате
func (e Event) MarshalJSON() ([]byte, error) {
	out := eventJSON{
		ID:                     e.ID,
		Image:                  e.Image,
		GameInfo:               e.GameInfo,
		IsGameFull:             e.IsGameFull,
		GameType:               e.GameType,
		Duration:               FormatGameDuration(e.Duration),
		Capacity:               e.Capacity,
		Participants:           e.Participants,
		RequestedToParticipate: e.RequestedToParticipate,
		HostID:                 e.HostID,
		Winner:                 e.Winner,
		CollectionID:           e.CollectionID,
		IsCompleted:            e.IsCompleted,
	}
	if !e.DateTime.IsZero() {
		out.DateTime = FormatEventTime(e.DateTime)
	}
	if out.Participants == nil {
		out.Participants = []string{}
	}
	if out.RequestedToParticipate == nil {
		out.RequestedToParticipate = []string{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON восстанавливает событие из клиентского формата (используется кэшем)
func (e *Event) UnmarshalJSON(data []byte) error {
	var in eventJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*e = Event{
		ID:                     in.ID,
		Image:                  in.Image,
		GameInfo:               in.GameInfo,
		IsGameFull:             in.IsGameFull,
		GameType:               in.GameType,
		Capacity:               in.Capacity,
		Participants:           in.Participants,
		RequestedToParticipate: in.RequestedToParticipate,
		HostID:                 in.HostID,
		Winner:                 in.Winner,
		CollectionID:           in.CollectionID,
		IsCompleted:            in.IsCompleted,
	}
	if in.DateTime != "" {
		t, err := ParseEventTime(in.DateTime)
		if err != nil {
			return err
		}
		e.DateTime = t
	}
	if in.Duration != "" {
		d, err := ParseGameDuration(in.Duration)
		if err != nil {
			return err
		}
		e.Duration = d
	}
	return nil
}

// Normalize заменяет nil-списки пустыми
func (e *Event) Normalize() {
	if e.Participants == nil {
		e.Participants = []string{}
	}
	if e.RequestedToParticipate == nil {
		e.RequestedToParticipate = []string{}
	}
}

// Clone возвращает глубокую копию события
func (e *Event) Clone() *Event {
	c := *e
	c.Participants = slices.Clone(e.Participants)
	c.RequestedToParticipate = slices.Clone(e.RequestedToParticipate)
	c.Normalize()
	return &c
}
