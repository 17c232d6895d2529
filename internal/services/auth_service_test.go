package services

import (
	"context"
	"testing"
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/dto"
)

func signupRequest() *dto.SignupRequest {
	return &dto.SignupRequest{FullName: "Lan Anh", Email: " Lan@Example.com ", Password: "secret123"}
}

func TestSignupAndLoginIssueIndependentSessions(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newStore(), testConfig())

	signup, err := svc.Signup(ctx, signupRequest(), ClientMeta{UserAgent: "test"})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if signup.User == nil || signup.User.Email != "lan@example.com" {
		t.Fatalf("Signup() user = %+v, want normalized email", signup.User)
	}

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "lan@example.com", Password: "secret123"}, ClientMeta{})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if login.AccessToken == signup.AccessToken || login.RefreshToken == signup.RefreshToken {
		t.Fatal("Login() reused the signup token pair")
	}

	// The signup session survives a later login.
	if _, err := svc.Rotate(ctx, signup.RefreshToken, ClientMeta{}); err != nil {
		t.Fatalf("Rotate(signup refresh) error = %v", err)
	}
	if _, err := svc.Rotate(ctx, login.RefreshToken, ClientMeta{}); err != nil {
		t.Fatalf("Rotate(login refresh) error = %v", err)
	}
}

func TestSignupValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newStore(), testConfig())

	tests := []struct {
		name string
		req  dto.SignupRequest
	}{
		{"missing name", dto.SignupRequest{Email: "a@example.com", Password: "secret123"}},
		{"bad email", dto.SignupRequest{FullName: "A", Email: "not-an-email", Password: "secret123"}},
		{"short password", dto.SignupRequest{FullName: "A", Email: "a@example.com", Password: "123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, &tt.req, ClientMeta{})
			wantErr(t, err, ErrInvalidInput)
		})
	}

	if _, err := svc.Signup(ctx, signupRequest(), ClientMeta{}); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	_, err := svc.Signup(ctx, &dto.SignupRequest{FullName: "Other", Email: "LAN@example.com", Password: "secret123"}, ClientMeta{})
	wantErr(t, err, ErrEmailTaken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newStore(), testConfig())
	if _, err := svc.Signup(ctx, signupRequest(), ClientMeta{}); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	_, err := svc.Login(ctx, &dto.LoginRequest{Email: "lan@example.com", Password: "wrong-password"}, ClientMeta{})
	wantErr(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"}, ClientMeta{})
	wantErr(t, err, ErrInvalidCredentials)
}

func TestRotateRejectsReuse(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newStore(), testConfig())
	first, err := svc.Signup(ctx, signupRequest(), ClientMeta{})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	second, err := svc.Rotate(ctx, first.RefreshToken, ClientMeta{})
	if err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	if second.User != nil {
		t.Error("Rotate() response should not carry the user")
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("Rotate() returned the same refresh token")
	}

	_, err = svc.Rotate(ctx, first.RefreshToken, ClientMeta{})
	wantErr(t, err, ErrUnauthorized)

	if _, err := svc.Rotate(ctx, second.RefreshToken, ClientMeta{}); err != nil {
		t.Fatalf("Rotate(rotated token) error = %v", err)
	}
}

func TestRotateRejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newStore(), testConfig())
	pair, err := svc.Signup(ctx, signupRequest(), ClientMeta{})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	_, err = svc.Rotate(ctx, pair.AccessToken, ClientMeta{})
	wantErr(t, err, ErrUnauthorized)

	_, err = svc.Authenticate(ctx, pair.RefreshToken)
	wantErr(t, err, ErrUnauthorized)
}

func TestRevokeAllSessionsEndsEveryRefreshToken(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newStore(), testConfig())
	a, err := svc.Signup(ctx, signupRequest(), ClientMeta{})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	b, err := svc.Login(ctx, &dto.LoginRequest{Email: "lan@example.com", Password: "secret123"}, ClientMeta{})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	user, err := svc.Authenticate(ctx, a.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if err := svc.RevokeAllSessions(ctx, user.ID); err != nil {
		t.Fatalf("RevokeAllSessions() error = %v", err)
	}

	for _, token := range []string{a.RefreshToken, b.RefreshToken} {
		_, err := svc.Rotate(ctx, token, ClientMeta{})
		wantErr(t, err, ErrUnauthorized)
	}
}

func TestAuthenticateExpiry(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newStore(), testConfig())
	pair, err := svc.Signup(ctx, signupRequest(), ClientMeta{})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	if _, err := svc.Authenticate(ctx, pair.AccessToken); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = svc.Authenticate(ctx, pair.AccessToken)
	wantErr(t, err, ErrUnauthorized)

	_, err = svc.Authenticate(ctx, pair.AccessToken+"x")
	wantErr(t, err, ErrUnauthorized)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newStore(), testConfig())
	pair, err := svc.Signup(ctx, signupRequest(), ClientMeta{})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	err = svc.ChangePassword(ctx, pair.User.ID, &dto.ChangePasswordRequest{OldPassword: "nope", NewPassword: "newsecret"})
	wantErr(t, err, ErrInvalidCredentials)

	if err := svc.ChangePassword(ctx, pair.User.ID, &dto.ChangePasswordRequest{OldPassword: "secret123", NewPassword: "newsecret"}); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	_, err = svc.Rotate(ctx, pair.RefreshToken, ClientMeta{})
	wantErr(t, err, ErrUnauthorized)

	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "lan@example.com", Password: "newsecret"}, ClientMeta{}); err != nil {
		t.Fatalf("Login(new password) error = %v", err)
	}
}
