package repository

import (
	"context"

	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LikeRepository interface {
	// Create inserts the like; created is false when it already existed.
	Create(ctx context.Context, like *models.Like) (created bool, err error)
	Delete(ctx context.Context, userID uuid.UUID, targetType string, targetID uuid.UUID) (removed bool, err error)
	Exists(ctx context.Context, userID uuid.UUID, targetType string, targetID uuid.UUID) (bool, error)
	// TargetIDs lists what the user liked, newest first.
	TargetIDs(ctx context.Context, userID uuid.UUID, targetType string) ([]uuid.UUID, error)
	DeleteByTarget(ctx context.Context, targetType string, targetID uuid.UUID) error
}

type likeRepository struct {
	db *gorm.DB
}

func (r *likeRepository) Create(ctx context.Context, like *models.Like) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(like)
	return res.RowsAffected == 1, translate(res.Error)
}

func (r *likeRepository) Delete(ctx context.Context, userID uuid.UUID, targetType string, targetID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
		Delete(&models.Like{})
	return res.RowsAffected > 0, translate(res.Error)
}

func (r *likeRepository) Exists(ctx context.Context, userID uuid.UUID, targetType string, targetID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
		Count(&n).Error
	return n > 0, translate(err)
}

func (r *likeRepository) TargetIDs(ctx context.Context, userID uuid.UUID, targetType string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND target_type = ?", userID, targetType).
		Order("created_at DESC").
		Pluck("target_id", &ids).Error
	return ids, translate(err)
}

func (r *likeRepository) DeleteByTarget(ctx context.Context, targetType string, targetID uuid.UUID) error {
	return translate(r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Delete(&models.Like{}).Error)
}
