package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Album struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Artist      string         `gorm:"size:255;not null" json:"artist"`
	ArtistID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"artistId"`
	ImageURL    string         `gorm:"size:1024;not null" json:"imageUrl"`
	ReleaseYear int            `gorm:"not null" json:"releaseYear"`
	Songs       pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"songs"` // caller-ordered song ids
	LikesCount  int            `gorm:"not null;default:0;index" json:"likesCount"`
	IsHidden    bool           `gorm:"not null;default:false" json:"isHidden"`
	CreatedAt   time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (a *Album) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Songs == nil {
		a.Songs = pq.StringArray{}
	}
	return nil
}

func (a *Album) HasSong(songID uuid.UUID) bool {
	id := songID.String()
	for _, s := range a.Songs {
		if s == id {
			return true
		}
	}
	return false
}
