package dto

import (
	"strings"
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/models"
)

func NewSubscriptionResponse(s models.ArtistSubscription, now time.Time) SubscriptionResponse {
	return SubscriptionResponse{
		Plan:             s.Plan,
		Status:           s.Status,
		CurrentPeriodEnd: s.CurrentPeriodEnd,
		LastPaymentAt:    s.LastPaymentAt,
		Active:           s.ActiveAt(now),
	}
}

func NewUserResponse(u *models.User, now time.Time) *UserResponse {
	resp := &UserResponse{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		ImageURL:  u.ImageURL,
		IsArtist:  u.IsArtist,
		CreatedAt: u.CreatedAt,
	}
	if u.IsArtist {
		resp.ArtistProfile = &ArtistProfileResponse{
			StageName:    u.ArtistProfile.StageName,
			Bio:          u.ArtistProfile.Bio,
			Subscription: NewSubscriptionResponse(u.ArtistProfile.Subscription, now),
		}
	}
	return resp
}

func NewUserSummary(u *models.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, FullName: u.FullName, ImageURL: u.ImageURL, IsArtist: u.IsArtist}
}

func NewArtistSummary(u *models.User) ArtistSummary {
	username := ""
	if u.ArtistProfile.StageName != "" {
		username = "@" + strings.ToLower(strings.Join(strings.Fields(u.ArtistProfile.StageName), ""))
	} else if at := strings.Index(u.Email, "@"); at > 0 {
		username = "@" + u.Email[:at]
	}
	return ArtistSummary{
		ID:        u.ID,
		Name:      u.DisplayName(),
		Username:  username,
		FullName:  u.FullName,
		StageName: u.ArtistProfile.StageName,
		Bio:       u.ArtistProfile.Bio,
		ImageURL:  u.ImageURL,
	}
}

// NewSongCard maps a song; album may be nil when the song is a single or
// its album is not resolved.
func NewSongCard(s *models.Song, album *models.Album) SongCard {
	card := SongCard{
		ID:         s.ID,
		Title:      s.Title,
		Artist:     s.Artist,
		ArtistID:   s.ArtistID,
		ImageURL:   s.ImageURL,
		AudioURL:   s.AudioURL,
		Duration:   s.Duration,
		LikesCount: clampCount(s.LikesCount),
		IsHidden:   s.IsHidden,
		CreatedAt:  s.CreatedAt,
	}
	if album != nil {
		card.Album = &AlbumRef{ID: album.ID, Title: album.Title, ImageURL: album.ImageURL}
	}
	return card
}

func NewAlbumCard(a *models.Album) AlbumCard {
	return AlbumCard{
		ID:          a.ID,
		Title:       a.Title,
		Artist:      a.Artist,
		ArtistID:    a.ArtistID,
		ImageURL:    a.ImageURL,
		ReleaseYear: a.ReleaseYear,
		SongsCount:  len(a.Songs),
		LikesCount:  clampCount(a.LikesCount),
		IsHidden:    a.IsHidden,
		CreatedAt:   a.CreatedAt,
	}
}

func NewAlbumDetail(a *models.Album) AlbumDetail {
	songs := make([]string, len(a.Songs))
	copy(songs, a.Songs)
	return AlbumDetail{AlbumCard: NewAlbumCard(a), Songs: songs}
}

func NewAlbumCards(albums []models.Album) []AlbumCard {
	cards := make([]AlbumCard, 0, len(albums))
	for i := range albums {
		cards = append(cards, NewAlbumCard(&albums[i]))
	}
	return cards
}

func NewCommentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		SongID:    c.SongID,
		Content:   c.Content,
		Timestamp: c.Timestamp,
		CreatedAt: c.CreatedAt,
		User:      NewUserSummary(c.User),
	}
}

func clampCount(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
