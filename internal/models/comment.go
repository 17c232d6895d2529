package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	SongID    uuid.UUID `gorm:"type:uuid;not null;index" json:"songId"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Timestamp *int64    `json:"timestamp,omitempty"` // playback offset supplied by the client
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
