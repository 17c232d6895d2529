package dto

import (
	"time"

	"github.com/google/uuid"
)

type FollowResponse struct {
	Following      bool  `json:"following"`
	FollowersCount int64 `json:"followersCount"`
}

type LikeResponse struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

type CreateCommentRequest struct {
	Content   string `json:"content"`
	Timestamp *int64 `json:"timestamp"`
}

type CommentResponse struct {
	ID        uuid.UUID    `json:"id"`
	SongID    uuid.UUID    `json:"songId"`
	Content   string       `json:"content"`
	Timestamp *int64       `json:"timestamp,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	User      *UserSummary `json:"user,omitempty"`
}

type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	ImageURL string    `json:"imageUrl"`
	IsArtist bool      `json:"isArtist"`
}
