package models

import (
	"slices"
	"time"
)

// CharacterStats содержит прогресс персонажа пользователя
type CharacterStats struct {
	Name                string `gorm:"column:character_name" json:"name"`
	Level               int    `gorm:"column:character_level;default:1" json:"level"`
	Experience          int    `gorm:"column:character_experience;default:0" json:"experience"`
	ExperienceToLevelUp int    `gorm:"column:character_experience_to_level_up;default:10" json:"experienceToLevelUp"`
}

// Creature представляет существо, полученное пользователем в награду
type Creature struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	ImageURL string `json:"img_url"`
}

// User представляет основную модель пользователя
type User struct {
	ID       string   `gorm:"primaryKey;type:varchar(64)" json:"_id"`
	Name     string   `gorm:"not null" json:"name"`
	Username string   `gorm:"index;not null" json:"username"`
	Email    string   `json:"email"`
	ImageURL string   `json:"img_url"`
	Topics   []string `gorm:"type:text;serializer:json" json:"topics"`

	CharacterStats CharacterStats `gorm:"embedded" json:"characterStats"`
	MyCreatures    []Creature     `gorm:"type:text;serializer:json" json:"myCreatures"`

	// Социальный граф хранится списками идентификаторов
	Friends                []string `gorm:"type:text;serializer:json" json:"friends"`
	FriendRequestsSent     []string `gorm:"type:text;serializer:json" json:"friendRequestsSent"`
	FriendRequestsReceived []string `gorm:"type:text;serializer:json" json:"friendRequestsReceived"`
	Blocked                []string `gorm:"type:text;serializer:json" json:"blocked"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

// Normalize заменяет nil-списки пустыми, чтобы в ответах были [] вместо null
func (u *User) Normalize() {
	if u.Topics == nil {
		u.Topics = []string{}
	}
	if u.MyCreatures == nil {
		u.MyCreatures = []Creature{}
	}
	if u.Friends == nil {
		u.Friends = []string{}
	}
	if u.FriendRequestsSent == nil {
		u.FriendRequestsSent = []string{}
	}
	if u.FriendRequestsReceived == nil {
		u.FriendRequestsReceived = []string{}
	}
	if u.Blocked == nil {
		u.Blocked = []string{}
	}
}

// Clone возвращает глубокую копию пользователя
func (u *User) Clone() *User {
	c := *u
	c.Topics = slices.Clone(u.Topics)
	c.MyCreatures = slices.Clone(u.MyCreatures)
	c.Friends = slices.Clone(u.Friends)
	c.FriendRequestsSent = slices.Clone(u.FriendRequestsSent)
	c.FriendRequestsReceived = slices.Clone(u.FriendRequestsReceived)
	c.Blocked = slices.Clone(u.Blocked)
	c.Normalize()
	return &c
}

// HasTopic проверяет наличие тега интересов
func (u *User) HasTopic(topic string) bool {
	return slices.Contains(u.Topics, topic)
}

// IsFriendWith проверяет наличие дружеской связи
func (u *User) IsFriendWith(id string) bool {
	return slices.Contains(u.Friends, id)
}

// AppendUnique добавляет значение в список, если его там еще нет.
// Возвращает true, если список изменился.
func AppendUnique(list *[]string, value string) bool {
	if slices.Contains(*list, value) {
		return false
	}
	*list = append(*list, value)
	return true
}

// RemoveValue удаляет все вхождения значения из списка, сохраняя порядок остальных.
// Возвращает true, если список изменился.
func RemoveValue(list *[]string, value string) bool {
	before := len(*list)
	*list = slices.DeleteFunc(*list, func(v string) bool { return v == value })
	return len(*list) != before
}
