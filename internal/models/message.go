package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssistantID is the sender/receiver id used for the AI assistant.
const AssistantID = "ai"

type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SenderID   string    `gorm:"size:64;not null;index:idx_messages_pair,priority:1" json:"senderId"`
	ReceiverID string    `gorm:"size:64;not null;index:idx_messages_pair,priority:2" json:"receiverId"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
