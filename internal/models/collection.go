package models

import "time"

// Collection представляет каталог существ, используемый как призовой фонд
type Collection struct {
	ID        string     `gorm:"primaryKey;type:varchar(64)" json:"_id"`
	Name      string     `json:"name"`
	ImageURL  string     `json:"img_url"`
	Creatures []Creature `gorm:"type:text;serializer:json" json:"creatures"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}
