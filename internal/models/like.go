package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TargetSong  = "song"
	TargetAlbum = "album"
)

// Like is the source of truth for engagement; LikesCount on songs and
// albums is a cached projection of it.
type Like struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_target,priority:1" json:"userId"`
	TargetType string    `gorm:"size:10;not null;uniqueIndex:idx_likes_user_target,priority:2" json:"targetType"`
	TargetID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_target,priority:3;index" json:"targetId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
