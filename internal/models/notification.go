package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationKind string

const (
	KindNewSong      NotificationKind = "NEW_SONG"
	KindNewAlbum     NotificationKind = "NEW_ALBUM"
	KindLikeSong     NotificationKind = "LIKE_SONG"
	KindLikeAlbum    NotificationKind = "LIKE_ALBUM"
	KindCommentSong  NotificationKind = "COMMENT_SONG"
	KindFollowArtist NotificationKind = "FOLLOW_ARTIST"
)

var ErrInvalidMeta = errors.New("invalid notification meta")

// NotificationMeta is a tagged variant: Kind selects which id fields are set.
// Use the constructors below; Validate enforces the shape per kind.
type NotificationMeta struct {
	Kind       NotificationKind `json:"type"`
	SongID     *uuid.UUID       `json:"songId,omitempty"`
	AlbumID    *uuid.UUID       `json:"albumId,omitempty"`
	ActorID    *uuid.UUID       `json:"actorId,omitempty"`
	FollowerID *uuid.UUID       `json:"followerId,omitempty"`
	CommentID  *uuid.UUID       `json:"commentId,omitempty"`
}

func NewSongMeta(songID, artistID uuid.UUID) NotificationMeta {
	return NotificationMeta{Kind: KindNewSong, SongID: &songID, ActorID: &artistID}
}

func NewAlbumMeta(albumID, artistID uuid.UUID) NotificationMeta {
	return NotificationMeta{Kind: KindNewAlbum, AlbumID: &albumID, ActorID: &artistID}
}

func LikeSongMeta(songID, likerID uuid.UUID) NotificationMeta {
	return NotificationMeta{Kind: KindLikeSong, SongID: &songID, ActorID: &likerID}
}

func LikeAlbumMeta(albumID, likerID uuid.UUID) NotificationMeta {
	return NotificationMeta{Kind: KindLikeAlbum, AlbumID: &albumID, ActorID: &likerID}
}

func CommentSongMeta(songID, commentID, authorID uuid.UUID) NotificationMeta {
	return NotificationMeta{Kind: KindCommentSong, SongID: &songID, CommentID: &commentID, ActorID: &authorID}
}

func FollowArtistMeta(followerID uuid.UUID) NotificationMeta {
	return NotificationMeta{Kind: KindFollowArtist, FollowerID: &followerID}
}

func (m NotificationMeta) Validate() error {
	missing := func(field string) error {
		return fmt.Errorf("%w: %s requires %s", ErrInvalidMeta, m.Kind, field)
	}
	switch m.Kind {
	case KindNewSong, KindLikeSong:
		if m.SongID == nil {
			return missing("songId")
		}
		if m.ActorID == nil {
			return missing("actorId")
		}
	case KindNewAlbum, KindLikeAlbum:
		if m.AlbumID == nil {
			return missing("albumId")
		}
		if m.ActorID == nil {
			return missing("actorId")
		}
	case KindCommentSong:
		if m.SongID == nil || m.CommentID == nil {
			return missing("songId and commentId")
		}
	case KindFollowArtist:
		if m.FollowerID == nil {
			return missing("followerId")
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidMeta, m.Kind)
	}
	return nil
}

// Notification is immutable once created.
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"userId"`
	Content   string           `gorm:"type:text;not null" json:"content"`
	ImageURL  string           `gorm:"size:1024" json:"imageUrl,omitempty"`
	At        time.Time        `gorm:"not null;index" json:"at"`
	Kind      NotificationKind `gorm:"size:32;not null;index" json:"kind"`
	Meta      NotificationMeta `gorm:"type:jsonb;serializer:json" json:"meta"`
	CreatedAt time.Time        `json:"createdAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
