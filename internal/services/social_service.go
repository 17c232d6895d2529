package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/VoHoang203/VibeMelodyBE/internal/dto"
	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/VoHoang203/VibeMelodyBE/internal/repository"
	"github.com/google/uuid"
)

type SocialService struct {
	store  repository.Store
	notify *NotificationService
}

func NewSocialService(store repository.Store, notify *NotificationService) *SocialService {
	return &SocialService{store: store, notify: notify}
}

func (s *SocialService) Follow(ctx context.Context, me *models.User, artistID uuid.UUID) (*dto.FollowResponse, error) {
	if me.ID == artistID {
		return nil, invalid("cannot follow yourself")
	}
	artist, err := s.store.Users().FindByID(ctx, artistID)
	if err != nil {
		return nil, lookupError(err, "artist")
	}
	if !artist.IsArtist {
		return nil, notFound("artist")
	}

	if err := s.store.Follows().Add(ctx, me.ID, artistID); err != nil {
		return nil, fmt.Errorf("failed to follow: %w", err)
	}
	count, err := s.store.Follows().CountFollowers(ctx, artistID)
	if err != nil {
		return nil, err
	}

	s.notify.notifyQuietly(ctx, artistID, NotifyInput{
		Content:  fmt.Sprintf("%s đã theo dõi bạn", displayOrSomeone(me)),
		ImageURL: me.ImageURL,
		Meta:     models.FollowArtistMeta(me.ID),
	})
	return &dto.FollowResponse{Following: true, FollowersCount: count}, nil
}

func (s *SocialService) Unfollow(ctx context.Context, me *models.User, artistID uuid.UUID) (*dto.FollowResponse, error) {
	if _, err := s.store.Users().FindByID(ctx, artistID); err != nil {
		return nil, lookupError(err, "artist")
	}
	if err := s.store.Follows().Remove(ctx, me.ID, artistID); err != nil {
		return nil, fmt.Errorf("failed to unfollow: %w", err)
	}
	count, err := s.store.Follows().CountFollowers(ctx, artistID)
	if err != nil {
		return nil, err
	}
	return &dto.FollowResponse{Following: false, FollowersCount: count}, nil
}

func (s *SocialService) FollowStatus(ctx context.Context, me *models.User, artistID uuid.UUID) (*dto.FollowResponse, error) {
	if _, err := s.store.Users().FindByID(ctx, artistID); err != nil {
		return nil, lookupError(err, "artist")
	}
	following, err := s.store.Follows().Exists(ctx, me.ID, artistID)
	if err != nil {
		return nil, err
	}
	count, err := s.store.Follows().CountFollowers(ctx, artistID)
	if err != nil {
		return nil, err
	}
	return &dto.FollowResponse{Following: following, FollowersCount: count}, nil
}

// likeTarget is the part of a song or album the ledger needs.
type likeTarget struct {
	ownerID  uuid.UUID
	title    string
	imageURL string
	count    int
}

func (s *SocialService) loadTarget(ctx context.Context, store repository.Store, targetType string, id uuid.UUID) (*likeTarget, error) {
	switch targetType {
	case models.TargetSong:
		song, err := store.Songs().FindByID(ctx, id)
		if err != nil {
			return nil, lookupError(err, "song")
		}
		return &likeTarget{ownerID: song.ArtistID, title: song.Title, imageURL: song.ImageURL, count: song.LikesCount}, nil
	case models.TargetAlbum:
		album, err := store.Albums().FindByID(ctx, id)
		if err != nil {
			return nil, lookupError(err, "album")
		}
		return &likeTarget{ownerID: album.ArtistID, title: album.Title, imageURL: album.ImageURL, count: album.LikesCount}, nil
	default:
		return nil, invalid("unknown like target %q", targetType)
	}
}

func addLikes(ctx context.Context, store repository.Store, targetType string, id uuid.UUID, delta int) (int, error) {
	if targetType == models.TargetSong {
		return store.Songs().AddLikes(ctx, id, delta)
	}
	return store.Albums().AddLikes(ctx, id, delta)
}

func (s *SocialService) LikeSong(ctx context.Context, me *models.User, songID uuid.UUID) (*dto.LikeResponse, error) {
	return s.like(ctx, me, models.TargetSong, songID)
}

func (s *SocialService) LikeAlbum(ctx context.Context, me *models.User, albumID uuid.UUID) (*dto.LikeResponse, error) {
	return s.like(ctx, me, models.TargetAlbum, albumID)
}

func (s *SocialService) UnlikeSong(ctx context.Context, me *models.User, songID uuid.UUID) (*dto.LikeResponse, error) {
	return s.unlike(ctx, me, models.TargetSong, songID)
}

func (s *SocialService) UnlikeAlbum(ctx context.Context, me *models.User, albumID uuid.UUID) (*dto.LikeResponse, error) {
	return s.unlike(ctx, me, models.TargetAlbum, albumID)
}

// like records the ledger row and bumps the counter together; a repeat
// like changes nothing.
func (s *SocialService) like(ctx context.Context, me *models.User, targetType string, id uuid.UUID) (*dto.LikeResponse, error) {
	var (
		target  *likeTarget
		created bool
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		if target, err = s.loadTarget(ctx, tx, targetType, id); err != nil {
			return err
		}
		created, err = tx.Likes().Create(ctx, &models.Like{UserID: me.ID, TargetType: targetType, TargetID: id})
		if err != nil || !created {
			return err
		}
		target.count, err = addLikes(ctx, tx, targetType, id, 1)
		return err
	})
	if err != nil {
		return nil, err
	}

	if created && target.ownerID != me.ID {
		s.notify.notifyQuietly(ctx, target.ownerID, likeNotification(me, targetType, id, target))
	}
	return &dto.LikeResponse{Liked: true, LikesCount: max(target.count, 0)}, nil
}

func (s *SocialService) unlike(ctx context.Context, me *models.User, targetType string, id uuid.UUID) (*dto.LikeResponse, error) {
	var target *likeTarget
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		if target, err = s.loadTarget(ctx, tx, targetType, id); err != nil {
			return err
		}
		removed, err := tx.Likes().Delete(ctx, me.ID, targetType, id)
		if err != nil || !removed {
			return err
		}
		target.count, err = addLikes(ctx, tx, targetType, id, -1)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.LikeResponse{Liked: false, LikesCount: max(target.count, 0)}, nil
}

func likeNotification(me *models.User, targetType string, id uuid.UUID, t *likeTarget) NotifyInput {
	if targetType == models.TargetAlbum {
		return NotifyInput{
			Content:  fmt.Sprintf("%s đã thích album \"%s\"", displayOrSomeone(me), t.title),
			ImageURL: t.imageURL,
			Meta:     models.LikeAlbumMeta(id, me.ID),
		}
	}
	return NotifyInput{
		Content:  fmt.Sprintf("%s đã thích bài hát \"%s\"", displayOrSomeone(me), t.title),
		ImageURL: t.imageURL,
		Meta:     models.LikeSongMeta(id, me.ID),
	}
}

func (s *SocialService) LikeStatus(ctx context.Context, me *models.User, targetType string, id uuid.UUID) (*dto.LikeResponse, error) {
	target, err := s.loadTarget(ctx, s.store, targetType, id)
	if err != nil {
		return nil, err
	}
	liked, err := s.store.Likes().Exists(ctx, me.ID, targetType, id)
	if err != nil {
		return nil, err
	}
	return &dto.LikeResponse{Liked: liked, LikesCount: max(target.count, 0)}, nil
}

// LikedSongs lists the user's liked songs, most recently liked first.
// Songs that were deleted or hidden are skipped.
func (s *SocialService) LikedSongs(ctx context.Context, me *models.User) ([]dto.SongCard, error) {
	ids, err := s.store.Likes().TargetIDs(ctx, me.ID, models.TargetSong)
	if err != nil {
		return nil, err
	}
	songs, err := s.store.Songs().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Song, len(songs))
	for _, song := range songs {
		byID[song.ID] = song
	}
	ordered := make([]models.Song, 0, len(ids))
	for _, id := range ids {
		if song, ok := byID[id]; ok && !song.IsHidden {
			ordered = append(ordered, song)
		}
	}
	return songCards(ctx, s.store, ordered)
}

func displayOrSomeone(u *models.User) string {
	if u.FullName == "" {
		return "Someone"
	}
	return u.FullName
}

// lookupError maps repository misses to ErrNotFound for the named entity.
func lookupError(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(what)
	}
	return err
}
