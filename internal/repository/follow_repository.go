package repository

import (
	"context"

	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository has set semantics: Add and Remove are idempotent.
type FollowRepository interface {
	Add(ctx context.Context, followerID, artistID uuid.UUID) error
	Remove(ctx context.Context, followerID, artistID uuid.UUID) error
	Exists(ctx context.Context, followerID, artistID uuid.UUID) (bool, error)
	CountFollowers(ctx context.Context, artistID uuid.UUID) (int64, error)
	CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error)
	FollowerIDs(ctx context.Context, artistID uuid.UUID) ([]uuid.UUID, error)
	FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type followRepository struct {
	db *gorm.DB
}

func (r *followRepository) Add(ctx context.Context, followerID, artistID uuid.UUID) error {
	follow := models.Follow{FollowerID: followerID, ArtistID: artistID}
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&follow).Error)
}

func (r *followRepository) Remove(ctx context.Context, followerID, artistID uuid.UUID) error {
	return translate(r.db.WithContext(ctx).
		Where("follower_id = ? AND artist_id = ?", followerID, artistID).
		Delete(&models.Follow{}).Error)
}

func (r *followRepository) Exists(ctx context.Context, followerID, artistID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND artist_id = ?", followerID, artistID).
		Count(&count).Error
	return count > 0, translate(err)
}

func (r *followRepository) CountFollowers(ctx context.Context, artistID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("artist_id = ?", artistID).Count(&count).Error
	return count, translate(err)
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, translate(err)
}

func (r *followRepository) FollowerIDs(ctx context.Context, artistID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("artist_id = ?", artistID).
		Order("created_at ASC").
		Pluck("follower_id", &ids).Error
	return ids, translate(err)
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Order("created_at ASC").
		Pluck("artist_id", &ids).Error
	return ids, translate(err)
}
