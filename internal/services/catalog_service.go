package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/dto"
	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/VoHoang203/VibeMelodyBE/internal/repository"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	homeLimit        = 12
	artistTopLimit   = 4
	artistSearchSize = 20
)

// CatalogService owns songs and albums. Every write keeps Song.AlbumID and
// Album.Songs pointing at each other.
type CatalogService struct {
	store  repository.Store
	notify *NotificationService
	now    func() time.Time
}

func NewCatalogService(store repository.Store, notify *NotificationService) *CatalogService {
	return &CatalogService{store: store, notify: notify, now: time.Now}
}

func (s *CatalogService) requirePublisher(me *models.User) error {
	if !IsActiveArtist(me, s.now()) {
		return ErrNotArtist
	}
	return nil
}

func ownedBy(ownerID uuid.UUID, me *models.User) error {
	if me == nil || ownerID != me.ID {
		return ErrForbidden
	}
	return nil
}

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, invalid("%s must be a valid id", field)
	}
	return id, nil
}

// --- songs ---

func (s *CatalogService) CreateSong(ctx context.Context, me *models.User, req *dto.CreateSongRequest) (*dto.SongCard, error) {
	if err := s.requirePublisher(me); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalid("title is required")
	}
	if req.AudioURL == "" {
		return nil, invalid("audio is required")
	}
	if req.Duration < 0 {
		return nil, invalid("duration must not be negative")
	}

	song := models.Song{
		Title:    title,
		Artist:   me.DisplayName(),
		ArtistID: me.ID,
		ImageURL: req.ImageURL,
		AudioURL: req.AudioURL,
		Duration: req.Duration,
	}

	var album *models.Album
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if req.AlbumID != "" {
			albumID, err := parseID(req.AlbumID, "albumId")
			if err != nil {
				return err
			}
			if album, err = tx.Albums().FindByID(ctx, albumID); err != nil {
				return lookupError(err, "album")
			}
			if err := ownedBy(album.ArtistID, me); err != nil {
				return err
			}
			song.AlbumID = &album.ID
		}
		if err := tx.Songs().Create(ctx, &song); err != nil {
			return fmt.Errorf("failed to create song: %w", err)
		}
		if album != nil {
			return tx.Albums().AppendSong(ctx, album.ID, song.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, me, NotifyInput{
		Content:  fmt.Sprintf("%s vừa đăng bài hát mới: \"%s\"", me.FullName, song.Title),
		ImageURL: song.ImageURL,
		Meta:     models.NewSongMeta(song.ID, me.ID),
	})

	card := dto.NewSongCard(&song, album)
	return &card, nil
}

// announce notifies every follower of the artist. Failures never reach the caller.
func (s *CatalogService) announce(ctx context.Context, artist *models.User, in NotifyInput) {
	if s.notify == nil {
		return
	}
	followers, err := s.store.Follows().FollowerIDs(ctx, artist.ID)
	if err != nil || len(followers) == 0 {
		return
	}
	s.notify.NotifyMany(ctx, followers, in)
}

func (s *CatalogService) UpdateSong(ctx context.Context, me *models.User, songID uuid.UUID, req *dto.UpdateSongRequest) (*dto.SongCard, error) {
	var (
		song  *models.Song
		album *models.Album
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		if song, err = tx.Songs().FindByID(ctx, songID); err != nil {
			return lookupError(err, "song")
		}
		if err := ownedBy(song.ArtistID, me); err != nil {
			return err
		}

		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				return invalid("title must not be empty")
			}
			song.Title = title
		}
		if req.Duration != nil {
			if *req.Duration < 0 {
				return invalid("duration must not be negative")
			}
			song.Duration = *req.Duration
		}
		if req.ImageURL != nil {
			song.ImageURL = *req.ImageURL
		}
		if req.IsHidden != nil {
			song.IsHidden = *req.IsHidden
		}
		if req.AlbumID != nil {
			if album, err = s.moveSong(ctx, tx, me, song, *req.AlbumID); err != nil {
				return err
			}
		} else if song.AlbumID != nil {
			album, _ = tx.Albums().FindByID(ctx, *song.AlbumID)
		}
		return tx.Songs().Save(ctx, song)
	})
	if err != nil {
		return nil, err
	}
	card := dto.NewSongCard(song, album)
	return &card, nil
}

// moveSong re-homes song to the album named by rawAlbumID; empty detaches it.
func (s *CatalogService) moveSong(ctx context.Context, tx repository.Store, me *models.User, song *models.Song, rawAlbumID string) (*models.Album, error) {
	var target *models.Album
	if strings.TrimSpace(rawAlbumID) != "" {
		albumID, err := parseID(rawAlbumID, "albumId")
		if err != nil {
			return nil, err
		}
		if target, err = tx.Albums().FindByID(ctx, albumID); err != nil {
			return nil, lookupError(err, "album")
		}
		if err := ownedBy(target.ArtistID, me); err != nil {
			return nil, err
		}
		if song.InAlbum(target.ID) {
			return target, nil
		}
	}

	if song.AlbumID != nil {
		if err := tx.Albums().RemoveSong(ctx, *song.AlbumID, song.ID); err != nil {
			return nil, err
		}
		song.AlbumID = nil
	}
	if target != nil {
		if err := tx.Albums().AppendSong(ctx, target.ID, song.ID); err != nil {
			return nil, err
		}
		song.AlbumID = &target.ID
	}
	return target, nil
}

func (s *CatalogService) DeleteSong(ctx context.Context, me *models.User, songID uuid.UUID) error {
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		song, err := tx.Songs().FindByID(ctx, songID)
		if err != nil {
			return lookupError(err, "song")
		}
		if err := ownedBy(song.ArtistID, me); err != nil {
			return err
		}
		if err := tx.Albums().RemoveSongEverywhere(ctx, songID); err != nil {
			return err
		}
		if err := tx.Likes().DeleteByTarget(ctx, models.TargetSong, songID); err != nil {
			return err
		}
		if err := tx.Comments().DeleteBySong(ctx, songID); err != nil {
			return err
		}
		return tx.Songs().Delete(ctx, songID)
	})
}

// visibleTo reports whether a hidden item may be shown to viewer.
func visibleTo(hidden bool, ownerID uuid.UUID, viewer *models.User) bool {
	return !hidden || (viewer != nil && viewer.ID == ownerID)
}

func (s *CatalogService) GetSong(ctx context.Context, viewer *models.User, songID uuid.UUID) (*dto.SongCard, error) {
	song, err := s.store.Songs().FindByID(ctx, songID)
	if err != nil {
		return nil, lookupError(err, "song")
	}
	if !visibleTo(song.IsHidden, song.ArtistID, viewer) {
		return nil, notFound("song")
	}
	cards, err := songCards(ctx, s.store, []models.Song{*song})
	if err != nil {
		return nil, err
	}
	return &cards[0], nil
}

// ListArtistSongs returns the artist's songs newest first. Hidden songs are
// only listed for the artist.
func (s *CatalogService) ListArtistSongs(ctx context.Context, viewer *models.User, artistID uuid.UUID, unassigned bool) ([]dto.SongCard, error) {
	songs, err := s.store.Songs().Find(ctx, repository.SongFilter{
		ArtistIDs:   []uuid.UUID{artistID},
		Unassigned:  unassigned,
		VisibleOnly: !visibleTo(true, artistID, viewer),
		Order:       repository.OrderNewest,
	})
	if err != nil {
		return nil, err
	}
	return songCards(ctx, s.store, songs)
}

// songCards maps songs in order, resolving album references in one query.
func songCards(ctx context.Context, store repository.Store, songs []models.Song) ([]dto.SongCard, error) {
	var albumIDs []uuid.UUID
	for _, song := range songs {
		if song.AlbumID != nil {
			albumIDs = append(albumIDs, *song.AlbumID)
		}
	}
	albums := map[uuid.UUID]*models.Album{}
	if len(albumIDs) > 0 {
		found, err := store.Albums().FindByIDs(ctx, albumIDs)
		if err != nil {
			return nil, err
		}
		for i := range found {
			albums[found[i].ID] = &found[i]
		}
	}

	cards := make([]dto.SongCard, 0, len(songs))
	for i := range songs {
		var album *models.Album
		if songs[i].AlbumID != nil {
			album = albums[*songs[i].AlbumID]
		}
		cards = append(cards, dto.NewSongCard(&songs[i], album))
	}
	return cards, nil
}

// --- albums ---

func (s *CatalogService) CreateAlbum(ctx context.Context, me *models.User, req *dto.CreateAlbumRequest) (*dto.AlbumDetail, error) {
	if err := s.requirePublisher(me); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalid("title is required")
	}
	if req.ImageURL == "" {
		return nil, invalid("cover image is required")
	}
	year := req.ReleaseYear
	if year == 0 {
		year = s.now().Year()
	}
	if year < 0 {
		return nil, invalid("releaseYear must be positive")
	}

	album := models.Album{
		Title:       title,
		Artist:      me.DisplayName(),
		ArtistID:    me.ID,
		ImageURL:    req.ImageURL,
		ReleaseYear: year,
		Songs:       pq.StringArray{},
	}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Albums().Create(ctx, &album); err != nil {
			return fmt.Errorf("failed to create album: %w", err)
		}
		if len(req.Songs) == 0 {
			return nil
		}
		if err := replaceTracks(ctx, tx, &album, req.Songs); err != nil {
			return err
		}
		return tx.Albums().Save(ctx, &album)
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, me, NotifyInput{
		Content:  fmt.Sprintf("%s vừa phát hành album: \"%s\"", me.FullName, album.Title),
		ImageURL: album.ImageURL,
		Meta:     models.NewAlbumMeta(album.ID, me.ID),
	})

	detail := dto.NewAlbumDetail(&album)
	return &detail, nil
}

func (s *CatalogService) UpdateAlbum(ctx context.Context, me *models.User, albumID uuid.UUID, req *dto.UpdateAlbumRequest) (*dto.AlbumDetail, error) {
	var album *models.Album
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		if album, err = tx.Albums().FindByID(ctx, albumID); err != nil {
			return lookupError(err, "album")
		}
		if err := ownedBy(album.ArtistID, me); err != nil {
			return err
		}
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				return invalid("title must not be empty")
			}
			album.Title = title
		}
		if req.ReleaseYear != nil {
			if *req.ReleaseYear <= 0 {
				return invalid("releaseYear must be positive")
			}
			album.ReleaseYear = *req.ReleaseYear
		}
		if req.ImageURL != nil && *req.ImageURL != "" {
			album.ImageURL = *req.ImageURL
		}
		if req.Songs != nil {
			if err := replaceTracks(ctx, tx, album, *req.Songs); err != nil {
				return err
			}
		}
		return tx.Albums().Save(ctx, album)
	})
	if err != nil {
		return nil, err
	}
	detail := dto.NewAlbumDetail(album)
	return &detail, nil
}

// ReplaceAlbumTracks sets the album's track list to ids in the given order.
func (s *CatalogService) ReplaceAlbumTracks(ctx context.Context, me *models.User, albumID uuid.UUID, ids []string) (*dto.AlbumDetail, error) {
	return s.UpdateAlbum(ctx, me, albumID, &dto.UpdateAlbumRequest{Songs: &ids})
}

// replaceTracks reconciles both sides of the album/song relation and
// leaves album.Songs in caller order. The caller saves the album.
func replaceTracks(ctx context.Context, tx repository.Store, album *models.Album, rawIDs []string) error {
	ids := make([]uuid.UUID, 0, len(rawIDs))
	seen := make(map[uuid.UUID]bool, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := parseID(raw, "song id")
		if err != nil {
			return err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	songs, err := tx.Songs().FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*models.Song, len(songs))
	for i := range songs {
		byID[songs[i].ID] = &songs[i]
	}

	var adopt []uuid.UUID
	for _, id := range ids {
		song, ok := byID[id]
		if !ok {
			return invalid("song %s does not exist", id)
		}
		if song.ArtistID != album.ArtistID {
			return invalid("song %s belongs to another artist", id)
		}
		if song.InAlbum(album.ID) {
			continue
		}
		if song.AlbumID != nil {
			if err := tx.Albums().RemoveSong(ctx, *song.AlbumID, id); err != nil {
				return err
			}
		}
		adopt = append(adopt, id)
	}

	var dropped []uuid.UUID
	for _, raw := range album.Songs {
		id, err := uuid.Parse(raw)
		if err == nil && !seen[id] {
			dropped = append(dropped, id)
		}
	}
	if len(dropped) > 0 {
		if err := tx.Songs().ClearAlbum(ctx, dropped, album.ID); err != nil {
			return err
		}
	}
	if len(adopt) > 0 {
		if err := tx.Songs().SetAlbum(ctx, adopt, album.ID); err != nil {
			return err
		}
	}

	list := make(pq.StringArray, len(ids))
	for i, id := range ids {
		list[i] = id.String()
	}
	album.Songs = list
	return nil
}

func (s *CatalogService) DeleteAlbum(ctx context.Context, me *models.User, albumID uuid.UUID) error {
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		album, err := tx.Albums().FindByID(ctx, albumID)
		if err != nil {
			return lookupError(err, "album")
		}
		if err := ownedBy(album.ArtistID, me); err != nil {
			return err
		}
		if err := tx.Songs().ClearAlbum(ctx, nil, albumID); err != nil {
			return err
		}
		if err := tx.Likes().DeleteByTarget(ctx, models.TargetAlbum, albumID); err != nil {
			return err
		}
		return tx.Albums().Delete(ctx, albumID)
	})
}

func (s *CatalogService) SetAlbumVisibility(ctx context.Context, me *models.User, albumID uuid.UUID, hidden bool) (*dto.HideAlbumResponse, error) {
	album, err := s.store.Albums().FindByID(ctx, albumID)
	if err != nil {
		return nil, lookupError(err, "album")
	}
	if err := ownedBy(album.ArtistID, me); err != nil {
		return nil, err
	}
	album.IsHidden = hidden
	if err := s.store.Albums().Save(ctx, album); err != nil {
		return nil, err
	}
	msg := "Album is visible"
	if hidden {
		msg = "Album has been hidden"
	}
	return &dto.HideAlbumResponse{Message: msg, Album: dto.NewAlbumDetail(album)}, nil
}

// ListAlbums lists albums newest first. Without an artist only visible
// albums are returned; other artists' hidden albums are never listed.
func (s *CatalogService) ListAlbums(ctx context.Context, viewer *models.User, artistID *uuid.UUID, visibleOnly bool, q string) ([]dto.AlbumCard, error) {
	f := repository.AlbumFilter{
		Query:       strings.TrimSpace(q),
		VisibleOnly: true,
		Order:       repository.OrderNewest,
	}
	if artistID != nil {
		f.ArtistIDs = []uuid.UUID{*artistID}
		f.VisibleOnly = visibleOnly || !visibleTo(true, *artistID, viewer)
	}
	albums, err := s.store.Albums().Find(ctx, f)
	if err != nil {
		return nil, err
	}
	return dto.NewAlbumCards(albums), nil
}

func (s *CatalogService) GetAlbum(ctx context.Context, viewer *models.User, albumID uuid.UUID) (*dto.AlbumDetail, error) {
	album, err := s.store.Albums().FindByID(ctx, albumID)
	if err != nil {
		return nil, lookupError(err, "album")
	}
	if !visibleTo(album.IsHidden, album.ArtistID, viewer) {
		return nil, notFound("album")
	}
	detail := dto.NewAlbumDetail(album)
	return &detail, nil
}

// AlbumMain is the public album page with tracks in album order.
func (s *CatalogService) AlbumMain(ctx context.Context, albumID uuid.UUID) (*dto.AlbumMainResponse, error) {
	album, err := s.store.Albums().FindByID(ctx, albumID)
	if err != nil {
		return nil, lookupError(err, "album")
	}
	if album.IsHidden {
		return nil, notFound("album")
	}

	artist := dto.ArtistSummary{ID: album.ArtistID, Name: album.Artist}
	if u, err := s.store.Users().FindByID(ctx, album.ArtistID); err == nil {
		artist = dto.NewArtistSummary(u)
	}

	ids := make([]uuid.UUID, 0, len(album.Songs))
	for _, raw := range album.Songs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	found, err := s.store.Songs().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.Song, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	songs := make([]dto.SongCard, 0, len(ids))
	for _, id := range ids {
		song, ok := byID[id]
		if !ok || song.IsHidden {
			continue
		}
		card := dto.NewSongCard(song, album)
		if card.ImageURL == "" {
			card.ImageURL = album.ImageURL
		}
		songs = append(songs, card)
	}
	return &dto.AlbumMainResponse{Album: dto.NewAlbumDetail(album), Artist: artist, Songs: songs}, nil
}

// --- discovery ---

func (s *CatalogService) Home(ctx context.Context) (*dto.HomeResponse, error) {
	trending, err := s.store.Songs().Find(ctx, repository.SongFilter{VisibleOnly: true, Order: repository.OrderPopular, Limit: homeLimit})
	if err != nil {
		return nil, err
	}
	newest, err := s.store.Songs().Find(ctx, repository.SongFilter{VisibleOnly: true, Order: repository.OrderNewest, Limit: homeLimit})
	if err != nil {
		return nil, err
	}
	albums, err := s.store.Albums().Find(ctx, repository.AlbumFilter{VisibleOnly: true, Order: repository.OrderPopular, Limit: homeLimit})
	if err != nil {
		return nil, err
	}

	resp := &dto.HomeResponse{TrendingAlbums: dto.NewAlbumCards(albums)}
	if resp.TrendingSongs, err = songCards(ctx, s.store, trending); err != nil {
		return nil, err
	}
	if resp.NewSongs, err = songCards(ctx, s.store, newest); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *CatalogService) ArtistMain(ctx context.Context, artistID uuid.UUID) (*dto.ArtistMainResponse, error) {
	artist, err := s.store.Users().FindByID(ctx, artistID)
	if err != nil {
		return nil, lookupError(err, "artist")
	}
	if !artist.IsArtist {
		return nil, notFound("artist")
	}

	songFilter := repository.SongFilter{ArtistIDs: []uuid.UUID{artistID}, VisibleOnly: true, Order: repository.OrderPopular, Limit: artistTopLimit}
	albumFilter := repository.AlbumFilter{ArtistIDs: []uuid.UUID{artistID}, VisibleOnly: true, Order: repository.OrderPopular, Limit: artistTopLimit}

	resp := &dto.ArtistMainResponse{Artist: dto.NewArtistSummary(artist)}
	top, err := s.store.Songs().Find(ctx, songFilter)
	if err != nil {
		return nil, err
	}
	if resp.TopSongs, err = songCards(ctx, s.store, top); err != nil {
		return nil, err
	}
	albums, err := s.store.Albums().Find(ctx, albumFilter)
	if err != nil {
		return nil, err
	}
	resp.TopAlbums = dto.NewAlbumCards(albums)

	songFilter.Limit, albumFilter.Limit = 0, 0
	if resp.SongsCount, err = s.store.Songs().Count(ctx, songFilter); err != nil {
		return nil, err
	}
	if resp.AlbumsCount, err = s.store.Albums().Count(ctx, albumFilter); err != nil {
		return nil, err
	}
	if resp.FollowersCount, err = s.store.Follows().CountFollowers(ctx, artistID); err != nil {
		return nil, err
	}
	if resp.FollowingCount, err = s.store.Follows().CountFollowing(ctx, artistID); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *CatalogService) SearchArtists(ctx context.Context, q string) ([]dto.ArtistSearchResult, error) {
	artists, err := s.store.Users().SearchArtists(ctx, strings.TrimSpace(q), artistSearchSize)
	if err != nil {
		return nil, err
	}
	results := make([]dto.ArtistSearchResult, 0, len(artists))
	for i := range artists {
		followers, err := s.store.Follows().CountFollowers(ctx, artists[i].ID)
		if err != nil {
			return nil, err
		}
		results = append(results, dto.ArtistSearchResult{
			ArtistSummary:  dto.NewArtistSummary(&artists[i]),
			FollowersCount: followers,
		})
	}
	return results, nil
}
