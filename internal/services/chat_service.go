package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/VoHoang203/VibeMelodyBE/internal/dto"
	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/VoHoang203/VibeMelodyBE/internal/repository"
	"github.com/google/uuid"
)

const (
	maxMessageLength = 4000
	chatUserLimit    = 50
)

// ChatService backs user-to-user messaging. The realtime hub uses it as
// its message sink.
type ChatService struct {
	store  repository.Store
	filter *ContentFilter
}

func NewChatService(store repository.Store, filter *ContentFilter) *ChatService {
	return &ChatService{store: store, filter: filter}
}

func (s *ChatService) ListUsers(ctx context.Context, me *models.User, q string) ([]dto.UserSummary, error) {
	users, err := s.store.Users().Search(ctx, strings.TrimSpace(q), me.ID, chatUserLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, *dto.NewUserSummary(&users[i]))
	}
	return out, nil
}

// Conversation returns every message between me and other, oldest first.
func (s *ChatService) Conversation(ctx context.Context, me *models.User, otherID uuid.UUID) ([]models.Message, error) {
	if otherID == me.ID {
		return nil, invalid("cannot open a conversation with yourself")
	}
	return s.store.Messages().Conversation(ctx, me.ID.String(), otherID.String(), 0)
}

func (s *ChatService) SendDirectMessage(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("content is required")
	}
	if len([]rune(content)) > maxMessageLength {
		return nil, invalid("content must be at most %d characters", maxMessageLength)
	}
	if senderID == receiverID {
		return nil, invalid("cannot message yourself")
	}
	if err := s.filter.Check(content); err != nil {
		return nil, err
	}
	if _, err := s.store.Users().FindByID(ctx, receiverID); err != nil {
		return nil, lookupError(err, "receiver")
	}

	msg := models.Message{
		SenderID:   senderID.String(),
		ReceiverID: receiverID.String(),
		Content:    content,
	}
	if err := s.store.Messages().Create(ctx, &msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	return &msg, nil
}
