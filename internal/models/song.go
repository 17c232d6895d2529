package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Song struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title      string     `gorm:"size:255;not null" json:"title"`
	Artist     string     `gorm:"size:255;not null" json:"artist"`
	ArtistID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"artistId"`
	AlbumID    *uuid.UUID `gorm:"type:uuid;index" json:"albumId"`
	ImageURL   string     `gorm:"size:1024" json:"imageUrl"`
	AudioURL   string     `gorm:"size:1024;not null" json:"audioUrl"`
	Duration   int        `gorm:"not null;default:0" json:"duration"`
	LikesCount int        `gorm:"not null;default:0;index" json:"likesCount"`
	IsHidden   bool       `gorm:"not null;default:false" json:"isHidden"`
	CreatedAt  time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (s *Song) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// InAlbum reports whether the song currently points at albumID.
func (s *Song) InAlbum(albumID uuid.UUID) bool {
	return s.AlbumID != nil && *s.AlbumID == albumID
}
