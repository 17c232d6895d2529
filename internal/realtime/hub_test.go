package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/VoHoang203/VibeMelodyBE/internal/services"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type fakeAuth struct {
	users map[string]*models.User
}

func (f *fakeAuth) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, errors.New("unauthorized")
}

type fakeSink struct {
	mu   sync.Mutex
	sent []models.Message
}

func (f *fakeSink) SendDirectMessage(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*models.Message, error) {
	switch content {
	case "":
		return nil, fmt.Errorf("%w: content is required", services.ErrInvalidInput)
	case "boom":
		return nil, errors.New(`pq: relation "messages" does not exist`)
	}
	m := models.Message{ID: uuid.New(), SenderID: senderID.String(), ReceiverID: receiverID.String(), Content: content, CreatedAt: time.Now()}
	f.mu.Lock()
	f.sent = append(f.sent, m)
	f.mu.Unlock()
	return &m, nil
}

// memBroker loops envelopes back to every subscriber.
type memBroker struct {
	mu    sync.Mutex
	subs  []chan Envelope
	ready chan struct{}
	once  sync.Once
}

func newMemBroker() *memBroker {
	return &memBroker{ready: make(chan struct{})}
}

func (b *memBroker) Publish(ctx context.Context, env Envelope) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		ch <- env
	}
	return nil
}

func (b *memBroker) Subscribe(ctx context.Context, fn func(Envelope)) error {
	ch := make(chan Envelope, 64)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	b.once.Do(func() { close(b.ready) })
	for {
		select {
		case <-ctx.Done():
			return nil
		case env := <-ch:
			fn(env)
		}
	}
}

type fixture struct {
	hub   *Hub
	srv   *httptest.Server
	alice *models.User
	bob   *models.User
	sink  *fakeSink
}

func newFixture(t *testing.T, broker Broker) *fixture {
	t.Helper()
	alice := &models.User{ID: uuid.New(), FullName: "Alice"}
	bob := &models.User{ID: uuid.New(), FullName: "Bob"}
	sink := &fakeSink{}
	hub := NewHub(&fakeAuth{users: map[string]*models.User{"alice": alice, "bob": bob}}, sink, broker, "*")

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return &fixture{hub: hub, srv: srv, alice: alice, bob: bob, sink: sink}
}

func (f *fixture) dial(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", token, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitFor(t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("waiting for %s: %v", event, err)
		}
		if f.Event == event {
			return f.Data
		}
	}
}

func waitOnline(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for h.OnlineCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("online = %d, want %d", h.OnlineCount(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHandshakeRejectsBadToken(t *testing.T) {
	f := newFixture(t, nil)
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws?token=nope"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("resp = %v, want 401", resp)
	}
}

func TestEmitToUserDeliversLocally(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.dial(t, "alice")
	waitFor(t, conn, EventUsersOnline)
	waitOnline(t, f.hub, 1)

	if err := f.hub.EmitToUser(context.Background(), f.alice.ID, "notification:new", map[string]string{"content": "hi"}); err != nil {
		t.Fatalf("EmitToUser: %v", err)
	}
	data := waitFor(t, conn, "notification:new")
	if !strings.Contains(string(data), `"hi"`) {
		t.Fatalf("payload = %s", data)
	}

	// Offline users are a silent no-op.
	if err := f.hub.EmitToUser(context.Background(), uuid.New(), "notification:new", nil); err != nil {
		t.Fatalf("EmitToUser offline: %v", err)
	}
}

func TestSendMessageForwardsAndAcks(t *testing.T) {
	f := newFixture(t, nil)
	a := f.dial(t, "alice")
	b := f.dial(t, "bob")
	waitFor(t, a, EventUsersOnline)
	waitFor(t, b, EventUsersOnline)
	waitOnline(t, f.hub, 2)

	err := a.WriteJSON(map[string]interface{}{
		"event": EventSendMessage,
		"data":  map[string]string{"receiverId": f.bob.ID.String(), "content": "xin chào"},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	var got models.Message
	json.Unmarshal(waitFor(t, b, EventReceiveMessage), &got)
	if got.Content != "xin chào" || got.SenderID != f.alice.ID.String() {
		t.Fatalf("receiver got %+v", got)
	}
	waitFor(t, a, EventMessageSent)
}

func TestSendMessageErrorGoesToSender(t *testing.T) {
	f := newFixture(t, nil)
	a := f.dial(t, "alice")
	waitFor(t, a, EventUsersOnline)

	a.WriteJSON(map[string]interface{}{
		"event": EventSendMessage,
		"data":  map[string]string{"receiverId": "not-a-uuid", "content": "x"},
	})
	waitFor(t, a, EventMessageError)

	send := func(content string) string {
		t.Helper()
		a.WriteJSON(map[string]interface{}{
			"event": EventSendMessage,
			"data":  map[string]string{"receiverId": f.bob.ID.String(), "content": content},
		})
		var text string
		if err := json.Unmarshal(waitFor(t, a, EventMessageError), &text); err != nil {
			t.Fatal(err)
		}
		return text
	}
	if got := send(""); !strings.Contains(got, "content is required") {
		t.Errorf("invalid input error = %q", got)
	}
	if got := send("boom"); got != "failed to send message" {
		t.Errorf("internal error leaked to client: %q", got)
	}
}

func TestLatestConnectionWins(t *testing.T) {
	f := newFixture(t, nil)
	first := f.dial(t, "alice")
	waitFor(t, first, EventUsersOnline)
	second := f.dial(t, "alice")
	waitFor(t, second, EventUsersOnline)
	waitOnline(t, f.hub, 1)

	f.hub.EmitToUser(context.Background(), f.alice.ID, "ping", "x")
	waitFor(t, second, "ping")
}

func TestBrokerPathDelivers(t *testing.T) {
	broker := newMemBroker()
	f := newFixture(t, broker)
	select {
	case <-broker.ready:
	case <-time.After(3 * time.Second):
		t.Fatal("hub never subscribed")
	}

	conn := f.dial(t, "bob")
	waitFor(t, conn, EventUsersOnline)
	waitOnline(t, f.hub, 1)

	f.hub.EmitToUser(context.Background(), f.bob.ID, "notification:new", "via-broker")
	data := waitFor(t, conn, "notification:new")
	if string(data) != `"via-broker"` {
		t.Fatalf("payload = %s", data)
	}
}
