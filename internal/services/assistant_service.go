package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/VoHoang203/VibeMelodyBE/internal/ai"
	"github.com/VoHoang203/VibeMelodyBE/internal/dto"
	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/VoHoang203/VibeMelodyBE/internal/repository"
)

const (
	recommendLimit   = 5
	historyWindow    = 20
	maxPromptMessage = 2000
)

const fallbackGreeting = "Xin chào! Hiện tại AI đang bận một chút, nhưng mình vẫn có thể giúp bạn tìm nhạc và nghệ sĩ trên VibeMelody nhé 🎧"

const generalPersona = "Bạn là trợ lý AI của VibeMelody (web nghe nhạc). Trò chuyện thân thiện, Việt casual (1-4 câu), có thể gợi ý nhạc khi phù hợp."

// AssistantService runs the AI chat: every exchange is stored as a pair of
// messages between the user and models.AssistantID.
type AssistantService struct {
	store repository.Store
	rec   *Recommender
	gen   ai.TextGenerator
}

func NewAssistantService(store repository.Store, rec *Recommender, gen ai.TextGenerator) *AssistantService {
	return &AssistantService{store: store, rec: rec, gen: gen}
}

func (s *AssistantService) Chat(ctx context.Context, me *models.User, message string) (*dto.AIChatResponse, error) {
	text := strings.TrimSpace(message)
	if text == "" {
		return nil, invalid("message is required")
	}
	text = truncate(text, maxPromptMessage)

	if err := s.store.Messages().Create(ctx, &models.Message{
		SenderID:   me.ID.String(),
		ReceiverID: models.AssistantID,
		Content:    text,
	}); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	intent := ClassifyIntent(text)
	songs := []dto.SongCard{}
	var (
		reply string
		err   error
	)
	switch intent.Type {
	case IntentFollowing:
		if songs, err = s.rec.RecommendFromFollowing(ctx, me, recommendLimit); err != nil {
			return nil, err
		}
		reply = s.rec.Summarize(ctx, me, songs, ModeFromFollowing, text)
	case IntentMood:
		if songs, err = s.rec.SearchByMood(ctx, intent.Keyword, recommendLimit); err != nil {
			return nil, err
		}
		reply = s.rec.Summarize(ctx, me, songs, ModeByMood, text)
	default:
		reply = s.converse(ctx, me)
	}

	out := models.Message{
		SenderID:   models.AssistantID,
		ReceiverID: me.ID.String(),
		Content:    reply,
	}
	if err := s.store.Messages().Create(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to store reply: %w", err)
	}
	return &dto.AIChatResponse{Intent: intent.Type, AIMessage: out, Songs: songs}, nil
}

// converse answers free-form chat using the recent history, which already
// includes the message just stored.
func (s *AssistantService) converse(ctx context.Context, me *models.User) string {
	if s.gen == nil {
		return fallbackGreeting
	}
	history, err := s.store.Messages().Conversation(ctx, me.ID.String(), models.AssistantID, historyWindow)
	if err != nil {
		slog.Warn("ai history load failed", "user_id", me.ID.String(), "error", err)
		return fallbackGreeting
	}

	msgs := make([]ai.Message, 0, len(history)+1)
	msgs = append(msgs, ai.Message{Role: "system", Content: generalPersona + "\nUser: " + userContext(me)})
	for _, m := range history {
		role := "user"
		if m.SenderID == models.AssistantID {
			role = "assistant"
		}
		msgs = append(msgs, ai.Message{Role: role, Content: m.Content})
	}

	reply, err := s.gen.Generate(ctx, msgs)
	if err != nil {
		slog.Warn("ai chat failed", "user_id", me.ID.String(), "error", err)
		return fallbackGreeting
	}
	return reply
}

// History returns the assistant conversation, oldest first.
func (s *AssistantService) History(ctx context.Context, me *models.User) ([]models.Message, error) {
	return s.store.Messages().Conversation(ctx, me.ID.String(), models.AssistantID, 0)
}
