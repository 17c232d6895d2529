package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/ai"
	"github.com/VoHoang203/VibeMelodyBE/internal/config"
	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/VoHoang203/VibeMelodyBE/internal/payos"
	"github.com/VoHoang203/VibeMelodyBE/internal/repository"
	"github.com/VoHoang203/VibeMelodyBE/internal/repository/memory"
	"github.com/google/uuid"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTAccessSecret:  "access-secret-for-tests",
		JWTRefreshSecret: "refresh-secret-for-tests",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 720 * time.Hour,
	}
}

func seedUser(t *testing.T, store repository.Store, name string) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.New(), FullName: name, Email: name + "@example.com"}
	if err := store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

// seedArtist creates a user with an active subscription ending in 30 days.
func seedArtist(t *testing.T, store repository.Store, name string) *models.User {
	t.Helper()
	end := time.Now().Add(30 * 24 * time.Hour)
	u := &models.User{ID: uuid.New(), FullName: name, Email: name + "@example.com", IsArtist: true}
	u.ArtistProfile.StageName = name
	u.ArtistProfile.Subscription = models.ArtistSubscription{
		Plan: models.PlanArtist1M, Status: models.SubscriptionActive, CurrentPeriodEnd: &end,
	}
	if err := store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create artist %s: %v", name, err)
	}
	return u
}

func seedSong(t *testing.T, store repository.Store, artist *models.User, title string) *models.Song {
	t.Helper()
	s := &models.Song{
		ID:       uuid.New(),
		Title:    title,
		Artist:   artist.DisplayName(),
		ArtistID: artist.ID,
		AudioURL: "https://cdn.example.com/" + title + ".mp3",
	}
	if err := store.Songs().Create(context.Background(), s); err != nil {
		t.Fatalf("create song %s: %v", title, err)
	}
	return s
}

func mustSong(t *testing.T, store repository.Store, id uuid.UUID) *models.Song {
	t.Helper()
	s, err := store.Songs().FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("find song %s: %v", id, err)
	}
	return s
}

func mustAlbum(t *testing.T, store repository.Store, id uuid.UUID) *models.Album {
	t.Helper()
	a, err := store.Albums().FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("find album %s: %v", id, err)
	}
	return a
}

func wantErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("err = %v, want %v", err, target)
	}
}

type pushed struct {
	userID uuid.UUID
	event  string
}

type fakePusher struct {
	mu   sync.Mutex
	sent []pushed
	err  error
}

func (p *fakePusher) EmitToUser(ctx context.Context, userID uuid.UUID, event string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, pushed{userID: userID, event: event})
	return p.err
}

func (p *fakePusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

type fakeGenerator struct {
	mu    sync.Mutex
	reply string
	err   error
	calls [][]ai.Message
}

func (g *fakeGenerator) Generate(ctx context.Context, messages []ai.Message) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, messages)
	return g.reply, g.err
}

type fakeGateway struct {
	status    string
	statusErr error
	linkErr   error
	event     *payos.WebhookEvent
	links     []payos.CheckoutRequest
}

func (g *fakeGateway) CreatePaymentLink(ctx context.Context, req payos.CheckoutRequest) (json.RawMessage, error) {
	if g.linkErr != nil {
		return nil, g.linkErr
	}
	g.links = append(g.links, req)
	return json.RawMessage(`{"code":"00","data":{"checkoutUrl":"https://pay.example.com/c"}}`), nil
}

func (g *fakeGateway) GetPaymentStatus(ctx context.Context, orderCode string) (*payos.PaymentStatus, error) {
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	return &payos.PaymentStatus{Status: g.status, Raw: json.RawMessage(`{"status":"` + g.status + `"}`)}, nil
}

func (g *fakeGateway) VerifyWebhook(body []byte) (*payos.WebhookEvent, error) {
	if g.event == nil || string(body) != "signed" {
		return nil, payos.ErrInvalidSignature
	}
	return g.event, nil
}

func newStore() *memory.Store {
	return memory.New()
}
