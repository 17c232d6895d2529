// Package realtime keeps one WebSocket connection per online user and
// delivers server events to them, optionally across instances via a Broker.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/VoHoang203/VibeMelodyBE/internal/services"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	EventUsersOnline      = "users_online"
	EventUserConnected    = "user_connected"
	EventUserDisconnected = "user_disconnected"
	EventActivities       = "activities"
	EventActivityUpdated  = "activity_updated"
	EventUpdateActivity   = "update_activity"
	EventSendMessage      = "send_message"
	EventReceiveMessage   = "receive_message"
	EventMessageSent      = "message_sent"
	EventMessageError     = "message_error"

	defaultActivity = "Idle"
)

// Frame is the wire shape of every event in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Authenticator resolves an access token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// MessageSink persists a direct message.
type MessageSink interface {
	SendDirectMessage(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*models.Message, error)
}

type Hub struct {
	auth   Authenticator
	sink   MessageSink
	broker Broker

	mu         sync.RWMutex
	clients    map[string]*client
	activities map[string]string

	upgrader websocket.Upgrader
}

// NewHub builds a hub. broker may be nil for single-instance delivery.
func NewHub(auth Authenticator, sink MessageSink, broker Broker, allowedOrigins string) *Hub {
	h := &Hub{
		auth:       auth,
		sink:       sink,
		broker:     broker,
		clients:    make(map[string]*client),
		activities: make(map[string]string),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed string) func(*http.Request) bool {
	if allowed == "" || allowed == "*" {
		return func(*http.Request) bool { return true }
	}
	origins := make(map[string]bool)
	for _, o := range strings.Split(allowed, ",") {
		origins[strings.TrimSpace(o)] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origins[origin]
	}
}

// Run consumes broker envelopes until ctx ends. Without a broker it only
// waits for ctx.
func (h *Hub) Run(ctx context.Context) {
	if h.broker == nil {
		<-ctx.Done()
		return
	}
	backoff := time.Second
	for {
		err := h.broker.Subscribe(ctx, h.deliver)
		if ctx.Err() != nil {
			return
		}
		slog.Error("realtime broker subscription ended", "error", err, "retry_in", backoff.String())
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

// EmitToUser pushes an event to the user's live connection, if any.
func (h *Hub) EmitToUser(ctx context.Context, userID uuid.UUID, event string, payload interface{}) error {
	return h.publish(ctx, userID.String(), event, payload)
}

// Broadcast pushes an event to every live connection.
func (h *Hub) Broadcast(ctx context.Context, event string, payload interface{}) error {
	return h.publish(ctx, "", event, payload)
}

func (h *Hub) publish(ctx context.Context, userID, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	env := Envelope{UserID: userID, Event: event, Data: data}
	if h.broker != nil {
		return h.broker.Publish(ctx, env)
	}
	h.deliver(env)
	return nil
}

// deliver writes env to local connections only.
func (h *Hub) deliver(env Envelope) {
	frame, err := json.Marshal(Frame{Event: env.Event, Data: env.Data})
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if env.UserID != "" {
		if c, ok := h.clients[env.UserID]; ok {
			c.enqueue(frame)
		}
		return
	}
	for _, c := range h.clients {
		c.enqueue(frame)
	}
}

// OnlineCount is the number of users connected to this instance.
func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) onlineUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

func (h *Hub) activityPairs() [][2]string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	pairs := make([][2]string, 0, len(h.activities))
	for id, a := range h.activities {
		pairs = append(pairs, [2]string{id, a})
	}
	return pairs
}

// register makes c the user's connection; an older one is closed.
func (h *Hub) register(c *client) {
	h.mu.Lock()
	old := h.clients[c.userID]
	h.clients[c.userID] = c
	if _, ok := h.activities[c.userID]; !ok {
		h.activities[c.userID] = defaultActivity
	}
	h.mu.Unlock()
	if old != nil {
		old.close()
	}
}

// unregister removes c unless a newer connection already replaced it.
func (h *Hub) unregister(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.userID] != c {
		return false
	}
	delete(h.clients, c.userID)
	delete(h.activities, c.userID)
	return true
}

func (h *Hub) setActivity(userID, activity string) {
	h.mu.Lock()
	h.activities[userID] = activity
	h.mu.Unlock()
}

func (h *Hub) announce(ctx context.Context, c *client) {
	h.Broadcast(ctx, EventUserConnected, c.userID)
	c.sendEvent(EventUsersOnline, h.onlineUsers())
	h.Broadcast(ctx, EventActivities, h.activityPairs())
}

func (h *Hub) handle(ctx context.Context, c *client, in Frame) {
	switch in.Event {
	case EventUserConnected:
		h.announce(ctx, c)

	case EventUpdateActivity:
		var body struct {
			Activity string `json:"activity"`
		}
		if err := json.Unmarshal(in.Data, &body); err != nil || body.Activity == "" {
			return
		}
		h.setActivity(c.userID, body.Activity)
		h.Broadcast(ctx, EventActivityUpdated, map[string]string{"userId": c.userID, "activity": body.Activity})

	case EventSendMessage:
		var body struct {
			ReceiverID string `json:"receiverId"`
			Content    string `json:"content"`
		}
		if err := json.Unmarshal(in.Data, &body); err != nil {
			c.sendEvent(EventMessageError, "invalid message payload")
			return
		}
		receiverID, err := uuid.Parse(body.ReceiverID)
		if err != nil {
			c.sendEvent(EventMessageError, "invalid receiverId")
			return
		}
		msg, err := h.sink.SendDirectMessage(ctx, c.user, receiverID, body.Content)
		if err != nil {
			if errors.Is(err, services.ErrInvalidInput) || errors.Is(err, services.ErrNotFound) {
				c.sendEvent(EventMessageError, err.Error())
				return
			}
			slog.Error("realtime send message failed", "user_id", c.userID, "receiver", receiverID, "error", err)
			c.sendEvent(EventMessageError, "failed to send message")
			return
		}
		if err := h.EmitToUser(ctx, receiverID, EventReceiveMessage, msg); err != nil {
			slog.Warn("realtime forward failed", "receiver", receiverID, "error", err)
		}
		c.sendEvent(EventMessageSent, msg)

	default:
		slog.Debug("realtime unknown event", "event", in.Event, "user_id", c.userID)
	}
}
