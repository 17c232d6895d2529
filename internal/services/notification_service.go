package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/VoHoang203/VibeMelodyBE/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	EventNotificationNew = "notification:new"

	fanOutLimit = 8
)

// Pusher delivers an event to a user's live session, if one exists.
type Pusher interface {
	EmitToUser(ctx context.Context, userID uuid.UUID, event string, payload interface{}) error
}

type NotifyInput struct {
	Content  string
	ImageURL string
	Meta     models.NotificationMeta
}

type NotificationService struct {
	store  repository.Store
	pusher Pusher
	now    func() time.Time
}

// NewNotificationService accepts a nil pusher; rows are still stored.
func NewNotificationService(store repository.Store, pusher Pusher) *NotificationService {
	return &NotificationService{store: store, pusher: pusher, now: time.Now}
}

// Notify stores the notification and then tries a live push. Push errors
// are logged and dropped.
func (s *NotificationService) Notify(ctx context.Context, recipient uuid.UUID, in NotifyInput) (*models.Notification, error) {
	if err := in.Meta.Validate(); err != nil {
		return nil, err
	}
	n := models.Notification{
		UserID:   recipient,
		Content:  in.Content,
		ImageURL: in.ImageURL,
		At:       s.now(),
		Kind:     in.Meta.Kind,
		Meta:     in.Meta,
	}
	if err := s.store.Notifications().Create(ctx, &n); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	if s.pusher != nil {
		if err := s.pusher.EmitToUser(ctx, recipient, EventNotificationNew, n); err != nil {
			slog.Warn("notification push failed", "user_id", recipient.String(), "kind", string(n.Kind), "error", err)
		}
	}
	return &n, nil
}

// NotifyMany sends one independent notification per recipient and waits
// for all of them. Individual failures are logged only.
func (s *NotificationService) NotifyMany(ctx context.Context, recipients []uuid.UUID, in NotifyInput) {
	var g errgroup.Group
	g.SetLimit(fanOutLimit)
	for _, r := range recipients {
		recipient := r
		g.Go(func() error {
			if _, err := s.Notify(ctx, recipient, in); err != nil {
				slog.Warn("notification fan-out failed", "user_id", recipient.String(), "error", err)
			}
			return nil
		})
	}
	g.Wait()
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.Notifications().ListByUser(ctx, userID, limit)
}

// notifyQuietly is for side effects that must not fail the caller.
func (s *NotificationService) notifyQuietly(ctx context.Context, recipient uuid.UUID, in NotifyInput) {
	if s == nil {
		return
	}
	if _, err := s.Notify(ctx, recipient, in); err != nil {
		slog.Warn("notification failed", "user_id", recipient.String(), "kind", string(in.Meta.Kind), "error", err)
	}
}
