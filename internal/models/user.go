package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a listener account; artists are users with IsArtist set.
type User struct {
	ID            uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FullName      string        `gorm:"size:255;not null" json:"fullName"`
	Email         string        `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password      string        `gorm:"not null" json:"-"`
	ImageURL      string        `gorm:"size:1024" json:"imageUrl"`
	IsArtist      bool          `gorm:"default:false;index" json:"isArtist"`
	ArtistProfile ArtistProfile `gorm:"embedded;embeddedPrefix:artist_" json:"artistProfile"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type ArtistProfile struct {
	StageName    string             `gorm:"size:255" json:"stageName"`
	Bio          string             `gorm:"type:text" json:"bio"`
	Subscription ArtistSubscription `gorm:"embedded;embeddedPrefix:subscription_" json:"subscription"`
}

// DisplayName prefers the stage name for artists.
func (u *User) DisplayName() string {
	if u.ArtistProfile.StageName != "" {
		return u.ArtistProfile.StageName
	}
	return u.FullName
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Follow is one edge of the social graph. A single row is both
// follower.following and artist.followers.
type Follow struct {
	FollowerID uuid.UUID `gorm:"type:uuid;primaryKey" json:"followerId"`
	ArtistID   uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"artistId"`
	CreatedAt  time.Time `json:"createdAt"`
}
