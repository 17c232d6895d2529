package repository

import (
	"context"

	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// ListBySong returns comments newest first with their authors loaded.
	ListBySong(ctx context.Context, songID uuid.UUID, limit int) ([]models.Comment, error)
	DeleteBySong(ctx context.Context, songID uuid.UUID) error
}

type commentRepository struct {
	db *gorm.DB
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return translate(r.db.WithContext(ctx).Omit("User").Create(comment).Error)
}

func (r *commentRepository) ListBySong(ctx context.Context, songID uuid.UUID, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	q := r.db.WithContext(ctx).Preload("User").Where("song_id = ?", songID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&comments).Error
	return comments, translate(err)
}

func (r *commentRepository) DeleteBySong(ctx context.Context, songID uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Where("song_id = ?", songID).Delete(&models.Comment{}).Error)
}
