package repository

import (
	"context"

	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, m *models.Message) error
	// Conversation returns messages between a and b in ascending order.
	// With limit > 0 only the most recent limit messages are returned.
	Conversation(ctx context.Context, a, b string, limit int) ([]models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

func (r *messageRepository) Create(ctx context.Context, m *models.Message) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *messageRepository) Conversation(ctx context.Context, a, b string, limit int) ([]models.Message, error) {
	q := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a)

	var msgs []models.Message
	if limit <= 0 {
		err := q.Order("created_at ASC").Find(&msgs).Error
		return msgs, translate(err)
	}
	if err := q.Order("created_at DESC").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, translate(err)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
