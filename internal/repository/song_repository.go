package repository

import (
	"context"

	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SongFilter narrows song listings. Zero values mean "no constraint".
type SongFilter struct {
	ArtistIDs    []uuid.UUID
	AlbumIDs     []uuid.UUID
	Unassigned   bool   // only songs without an album
	VisibleOnly  bool   // exclude hidden songs
	TitlePattern string // case-insensitive regular expression on title
	ExcludeIDs   []uuid.UUID
	Order        Order
	Limit        int
}

type SongRepository interface {
	Create(ctx context.Context, song *models.Song) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Song, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Song, error)
	Find(ctx context.Context, f SongFilter) ([]models.Song, error)
	Count(ctx context.Context, f SongFilter) (int64, error)
	Save(ctx context.Context, song *models.Song) error
	Delete(ctx context.Context, id uuid.UUID) error
	// SetAlbum points every song in ids at albumID.
	SetAlbum(ctx context.Context, ids []uuid.UUID, albumID uuid.UUID) error
	// ClearAlbum unsets album_id on songs that still point at albumID.
	// A nil ids slice clears every such song.
	ClearAlbum(ctx context.Context, ids []uuid.UUID, albumID uuid.UUID) error
	// AddLikes applies delta to the counter and returns the stored value.
	AddLikes(ctx context.Context, id uuid.UUID, delta int) (int, error)
}

type songRepository struct {
	db *gorm.DB
}

func (r *songRepository) Create(ctx context.Context, song *models.Song) error {
	return translate(r.db.WithContext(ctx).Create(song).Error)
}

func (r *songRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Song, error) {
	var song models.Song
	if err := r.db.WithContext(ctx).First(&song, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &song, nil
}

func (r *songRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Song, error) {
	var songs []models.Song
	if len(ids) == 0 {
		return songs, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&songs).Error
	return songs, translate(err)
}

func (r *songRepository) scope(ctx context.Context, f SongFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Song{})
	if f.ArtistIDs != nil {
		q = q.Where("artist_id IN ?", nonEmpty(f.ArtistIDs))
	}
	if f.AlbumIDs != nil {
		q = q.Where("album_id IN ?", nonEmpty(f.AlbumIDs))
	}
	if f.Unassigned {
		q = q.Where("album_id IS NULL")
	}
	if f.VisibleOnly {
		q = q.Where("is_hidden = ?", false)
	}
	if f.TitlePattern != "" {
		q = q.Where("title ~* ?", f.TitlePattern)
	}
	if len(f.ExcludeIDs) > 0 {
		q = q.Where("id NOT IN ?", f.ExcludeIDs)
	}
	return q
}

func (r *songRepository) Find(ctx context.Context, f SongFilter) ([]models.Song, error) {
	q := r.scope(ctx, f).Order(f.Order.clause())
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var songs []models.Song
	err := q.Find(&songs).Error
	return songs, translate(err)
}

func (r *songRepository) Count(ctx context.Context, f SongFilter) (int64, error) {
	var n int64
	err := r.scope(ctx, f).Count(&n).Error
	return n, translate(err)
}

func (r *songRepository) Save(ctx context.Context, song *models.Song) error {
	// likes_count is owned by AddLikes.
	return translate(r.db.WithContext(ctx).Omit("likes_count").Save(song).Error)
}

func (r *songRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Song{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *songRepository) SetAlbum(ctx context.Context, ids []uuid.UUID, albumID uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Model(&models.Song{}).
		Where("id IN ?", ids).
		UpdateColumn("album_id", albumID).Error)
}

func (r *songRepository) ClearAlbum(ctx context.Context, ids []uuid.UUID, albumID uuid.UUID) error {
	q := r.db.WithContext(ctx).Model(&models.Song{}).Where("album_id = ?", albumID)
	if ids != nil {
		if len(ids) == 0 {
			return nil
		}
		q = q.Where("id IN ?", ids)
	}
	return translate(q.UpdateColumn("album_id", nil).Error)
}

func (r *songRepository) AddLikes(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	song := models.Song{ID: id}
	res := r.db.WithContext(ctx).Model(&song).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "likes_count"}}}).
		UpdateColumn("likes_count", gorm.Expr("likes_count + ?", delta))
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	return song.LikesCount, nil
}

// nonEmpty keeps "IN ?" valid for an explicitly empty set: it matches nothing.
func nonEmpty(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return []uuid.UUID{uuid.Nil}
	}
	return ids
}
