package repository

import (
	"context"

	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AlbumFilter struct {
	ArtistIDs    []uuid.UUID
	VisibleOnly  bool
	Query        string // substring of title or display artist
	TitlePattern string // case-insensitive regular expression on title
	Order        Order
	Limit        int
}

type AlbumRepository interface {
	Create(ctx context.Context, album *models.Album) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Album, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Album, error)
	Find(ctx context.Context, f AlbumFilter) ([]models.Album, error)
	Count(ctx context.Context, f AlbumFilter) (int64, error)
	Save(ctx context.Context, album *models.Album) error
	Delete(ctx context.Context, id uuid.UUID) error
	// AppendSong adds songID to the end of the album's list unless present.
	AppendSong(ctx context.Context, albumID, songID uuid.UUID) error
	RemoveSong(ctx context.Context, albumID, songID uuid.UUID) error
	// RemoveSongEverywhere strips songID from every album list.
	RemoveSongEverywhere(ctx context.Context, songID uuid.UUID) error
	AddLikes(ctx context.Context, id uuid.UUID, delta int) (int, error)
}

type albumRepository struct {
	db *gorm.DB
}

func (r *albumRepository) Create(ctx context.Context, album *models.Album) error {
	return translate(r.db.WithContext(ctx).Create(album).Error)
}

func (r *albumRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Album, error) {
	var album models.Album
	if err := r.db.WithContext(ctx).First(&album, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &album, nil
}

func (r *albumRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Album, error) {
	var albums []models.Album
	if len(ids) == 0 {
		return albums, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&albums).Error
	return albums, translate(err)
}

func (r *albumRepository) scope(ctx context.Context, f AlbumFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Album{})
	if f.ArtistIDs != nil {
		q = q.Where("artist_id IN ?", nonEmpty(f.ArtistIDs))
	}
	if f.VisibleOnly {
		q = q.Where("is_hidden = ?", false)
	}
	if f.Query != "" {
		p := likePattern(f.Query)
		q = q.Where("title ILIKE ? OR artist ILIKE ?", p, p)
	}
	if f.TitlePattern != "" {
		q = q.Where("title ~* ?", f.TitlePattern)
	}
	return q
}

func (r *albumRepository) Find(ctx context.Context, f AlbumFilter) ([]models.Album, error) {
	q := r.scope(ctx, f).Order(f.Order.clause())
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var albums []models.Album
	err := q.Find(&albums).Error
	return albums, translate(err)
}

func (r *albumRepository) Count(ctx context.Context, f AlbumFilter) (int64, error) {
	var n int64
	err := r.scope(ctx, f).Count(&n).Error
	return n, translate(err)
}

func (r *albumRepository) Save(ctx context.Context, album *models.Album) error {
	// likes_count is owned by AddLikes.
	return translate(r.db.WithContext(ctx).Omit("likes_count").Save(album).Error)
}

func (r *albumRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Album{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *albumRepository) AppendSong(ctx context.Context, albumID, songID uuid.UUID) error {
	sid := songID.String()
	return translate(r.db.WithContext(ctx).Model(&models.Album{}).
		Where("id = ? AND NOT (? = ANY(songs))", albumID, sid).
		UpdateColumn("songs", gorm.Expr("array_append(songs, ?::text)", sid)).Error)
}

func (r *albumRepository) RemoveSong(ctx context.Context, albumID, songID uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Model(&models.Album{}).
		Where("id = ?", albumID).
		UpdateColumn("songs", gorm.Expr("array_remove(songs, ?::text)", songID.String())).Error)
}

func (r *albumRepository) RemoveSongEverywhere(ctx context.Context, songID uuid.UUID) error {
	sid := songID.String()
	return translate(r.db.WithContext(ctx).Model(&models.Album{}).
		Where("? = ANY(songs)", sid).
		UpdateColumn("songs", gorm.Expr("array_remove(songs, ?::text)", sid)).Error)
}

func (r *albumRepository) AddLikes(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	album := models.Album{ID: id}
	res := r.db.WithContext(ctx).Model(&album).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "likes_count"}}}).
		UpdateColumn("likes_count", gorm.Expr("likes_count + ?", delta))
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	return album.LikesCount, nil
}
