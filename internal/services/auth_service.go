package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/config"
	"github.com/VoHoang203/VibeMelodyBE/internal/dto"
	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/VoHoang203/VibeMelodyBE/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	tokenTypeAccess   = "access"
	tokenTypeRefresh  = "refresh"
)

// ClientMeta is recorded on each session row.
type ClientMeta struct {
	UserAgent string
	IP        string
}

type AuthService struct {
	store repository.Store
	cfg   *config.Config
	now   func() time.Time
}

func NewAuthService(store repository.Store, cfg *config.Config) *AuthService {
	return &AuthService{store: store, cfg: cfg, now: time.Now}
}

func (s *AuthService) Signup(ctx context.Context, req *dto.SignupRequest, meta ClientMeta) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, invalid("fullName is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("a valid email is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, invalid("password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.store.Users().FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:       uuid.New(),
		FullName: fullName,
		Email:    email,
		Password: string(hash),
	}
	user.ArtistProfile.Subscription.Status = models.SubscriptionInactive
	if err := s.store.Users().Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.IssueSession(ctx, &user, meta)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest, meta ClientMeta) (*dto.AuthResponse, error) {
	user, err := s.store.Users().FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.IssueSession(ctx, user, meta)
}

// IssueSession creates a session row and signs a fresh token pair for it.
func (s *AuthService) IssueSession(ctx context.Context, user *models.User, meta ClientMeta) (*dto.AuthResponse, error) {
	return s.issueSession(ctx, s.store, user, meta)
}

func (s *AuthService) issueSession(ctx context.Context, store repository.Store, user *models.User, meta ClientMeta) (*dto.AuthResponse, error) {
	now := s.now()
	jti, err := randomJTI()
	if err != nil {
		return nil, err
	}

	session := models.RefreshToken{
		UserID:    user.ID,
		JTI:       jti,
		UserAgent: truncate(meta.UserAgent, 512),
		IP:        truncate(meta.IP, 64),
		ExpiresAt: now.Add(s.cfg.JWTRefreshExpiry),
	}
	if err := store.Sessions().Create(ctx, &session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	access, err := s.sign(user.ID, uuid.NewString(), tokenTypeAccess, now, s.cfg.JWTAccessExpiry, s.cfg.JWTAccessSecret)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user.ID, jti, tokenTypeRefresh, now, s.cfg.JWTRefreshExpiry, s.cfg.JWTRefreshSecret)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		User:         dto.NewUserResponse(user, now),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Rotate exchanges a live refresh token for a new pair. The presented
// session is revoked; a second rotation with it fails.
func (s *AuthService) Rotate(ctx context.Context, refreshToken string, meta ClientMeta) (*dto.AuthResponse, error) {
	userID, jti, err := s.parse(refreshToken, s.cfg.JWTRefreshSecret, tokenTypeRefresh)
	if err != nil || jti == "" {
		return nil, ErrUnauthorized
	}

	var resp *dto.AuthResponse
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		session, err := tx.Sessions().FindByJTI(ctx, jti)
		if err != nil {
			return err
		}
		now := s.now()
		if session.UserID != userID || session.RevokedAt != nil || now.After(session.ExpiresAt) {
			return ErrUnauthorized
		}
		revoked, err := tx.Sessions().Revoke(ctx, session.ID, now)
		if err != nil {
			return err
		}
		if !revoked {
			return ErrUnauthorized
		}

		user, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return err
		}
		resp, err = s.issueSession(ctx, tx, user, meta)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, ErrUnauthorized) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	resp.User = nil
	return resp, nil
}

// RevokeAllSessions logs the user out everywhere.
func (s *AuthService) RevokeAllSessions(ctx context.Context, userID uuid.UUID) error {
	n, err := s.store.Sessions().RevokeAllForUser(ctx, userID, s.now())
	if err != nil {
		return err
	}
	slog.Info("sessions revoked", "user_id", userID.String(), "count", n)
	return nil
}

// Authenticate validates an access token and loads its user.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	userID, _, err := s.parse(accessToken, s.cfg.JWTAccessSecret, tokenTypeAccess)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return s.ResolveUser(ctx, userID)
}

// ResolveUser loads the subject of an already verified token.
func (s *AuthService) ResolveUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.ResolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user, s.now()), nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	var update repository.ProfileUpdate
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, invalid("fullName cannot be empty")
		}
		update.FullName = &name
	}
	if req.ImageURL != nil {
		url := strings.TrimSpace(*req.ImageURL)
		update.ImageURL = &url
	}
	if err := s.store.Users().UpdateProfile(ctx, userID, update); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return s.Profile(ctx, userID)
}

// ChangePassword verifies the old password, stores the new one and revokes
// every session.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error {
	user, err := s.ResolveUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if len(req.NewPassword) < minPasswordLength {
		return invalid("password must be at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.store.Users().UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	return s.RevokeAllSessions(ctx, userID)
}

func (s *AuthService) sign(userID uuid.UUID, jti, typ string, now time.Time, ttl time.Duration, secret string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"jti": jti,
		"typ": typ,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", typ, err)
	}
	return signed, nil
}

// parse verifies signature, algorithm, expiry and token type.
func (s *AuthService) parse(raw, secret, typ string) (uuid.UUID, string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return uuid.Nil, "", ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", ErrUnauthorized
	}
	if t, _ := claims["typ"].(string); t != typ {
		return uuid.Nil, "", ErrUnauthorized
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", ErrUnauthorized
	}
	jti, _ := claims["jti"].(string)
	return userID, jti, nil
}

// SubjectFromClaims extracts the user id from verified access-token claims.
func SubjectFromClaims(claims jwt.MapClaims) (uuid.UUID, error) {
	if t, _ := claims["typ"].(string); t != tokenTypeAccess {
		return uuid.Nil, ErrUnauthorized
	}
	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}
	return id, nil
}

func randomJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
