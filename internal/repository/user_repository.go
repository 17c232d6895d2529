package repository

import (
	"context"
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	colSubscriptionPlan   = "artist_subscription_plan"
	colSubscriptionStatus = "artist_subscription_status"
	colSubscriptionEnd    = "artist_subscription_current_period_end"
	colSubscriptionPaid   = "artist_subscription_last_payment_at"
	colStageName          = "artist_stage_name"
	colBio                = "artist_bio"
)

// ProfileUpdate names the profile fields to change; nil fields are left alone.
type ProfileUpdate struct {
	FullName  *string
	ImageURL  *string
	StageName *string
	Bio       *string
}

func (p ProfileUpdate) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if p.FullName != nil {
		cols["full_name"] = *p.FullName
	}
	if p.ImageURL != nil {
		cols["image_url"] = *p.ImageURL
	}
	if p.StageName != nil {
		cols[colStageName] = *p.StageName
	}
	if p.Bio != nil {
		cols[colBio] = *p.Bio
	}
	return cols
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error)
	// The writers below touch only their own columns, never the whole row.
	UpdateProfile(ctx context.Context, id uuid.UUID, p ProfileUpdate) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	// ActivateArtist sets is_artist and replaces the subscription columns.
	ActivateArtist(ctx context.Context, id uuid.UUID, sub models.ArtistSubscription) error
	// SearchArtists matches q against stage name, full name and email.
	SearchArtists(ctx context.Context, q string, limit int) ([]models.User, error)
	// Search lists users other than excludeID, newest first.
	Search(ctx context.Context, q string, excludeID uuid.UUID, limit int) ([]models.User, error)
	// ExpireSubscriptions marks active subscriptions that ended before now as inactive.
	ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, translate(err)
}

func (r *userRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) update(ctx context.Context, id uuid.UUID, cols map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, p ProfileUpdate) error {
	cols := p.columns()
	if len(cols) == 0 {
		return nil
	}
	return r.update(ctx, id, cols)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.update(ctx, id, map[string]interface{}{"password": hash})
}

func (r *userRepository) ActivateArtist(ctx context.Context, id uuid.UUID, sub models.ArtistSubscription) error {
	return r.update(ctx, id, map[string]interface{}{
		"is_artist":           true,
		colSubscriptionPlan:   sub.Plan,
		colSubscriptionStatus: sub.Status,
		colSubscriptionEnd:    sub.CurrentPeriodEnd,
		colSubscriptionPaid:   sub.LastPaymentAt,
	})
}

func (r *userRepository) SearchArtists(ctx context.Context, q string, limit int) ([]models.User, error) {
	query := r.db.WithContext(ctx).Where("is_artist = ?", true)
	if q != "" {
		p := likePattern(q)
		query = query.Where(colStageName+" ILIKE ? OR full_name ILIKE ? OR email ILIKE ?", p, p, p)
	}
	var users []models.User
	err := query.Order("created_at DESC").Limit(limit).Find(&users).Error
	return users, translate(err)
}

func (r *userRepository) Search(ctx context.Context, q string, excludeID uuid.UUID, limit int) ([]models.User, error) {
	query := r.db.WithContext(ctx).Where("id <> ?", excludeID)
	if q != "" {
		p := likePattern(q)
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", p, p)
	}
	var users []models.User
	err := query.Order("created_at DESC").Limit(limit).Find(&users).Error
	return users, translate(err)
}

func (r *userRepository) ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where(colSubscriptionStatus+" = ? AND "+colSubscriptionEnd+" < ?", models.SubscriptionActive, now).
		UpdateColumn(colSubscriptionStatus, models.SubscriptionInactive)
	return res.RowsAffected, translate(res.Error)
}
