package dto

import (
	"time"

	"github.com/google/uuid"
)

type SignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type UpdateProfileRequest struct {
	FullName *string `json:"fullName"`
	ImageURL *string `json:"imageUrl"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// AuthResponse carries a fresh token pair; User is set on signup and login.
type AuthResponse struct {
	User         *UserResponse `json:"user,omitempty"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
}

type UserResponse struct {
	ID            uuid.UUID              `json:"id"`
	FullName      string                 `json:"fullName"`
	Email         string                 `json:"email"`
	ImageURL      string                 `json:"imageUrl"`
	IsArtist      bool                   `json:"isArtist"`
	ArtistProfile *ArtistProfileResponse `json:"artistProfile,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
}

type ArtistProfileResponse struct {
	StageName    string               `json:"stageName"`
	Bio          string               `json:"bio"`
	Subscription SubscriptionResponse `json:"subscription"`
}

type SubscriptionResponse struct {
	Plan             string     `json:"plan"`
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"currentPeriodEnd"`
	LastPaymentAt    *time.Time `json:"lastPaymentAt"`
	Active           bool       `json:"active"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	DB          string `json:"db"`
	OnlineUsers int    `json:"onlineUsers"`
}
