package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSongRequest struct {
	Title    string `json:"title" form:"title"`
	AlbumID  string `json:"albumId" form:"albumId"`
	Duration int    `json:"duration" form:"duration"`
	AudioURL string `json:"audioUrl" form:"audioUrl"`
	ImageURL string `json:"imageUrl" form:"imageUrl"`
}

// UpdateSongRequest applies only the fields that are present. An empty
// AlbumID detaches the song from its album.
type UpdateSongRequest struct {
	Title    *string `json:"title" form:"title"`
	Duration *int    `json:"duration" form:"duration"`
	ImageURL *string `json:"imageUrl" form:"imageUrl"`
	IsHidden *bool   `json:"isHidden" form:"isHidden"`
	AlbumID  *string `json:"albumId" form:"albumId"`
}

type CreateAlbumRequest struct {
	Title       string   `json:"title" form:"title"`
	ReleaseYear int      `json:"releaseYear" form:"releaseYear"`
	ImageURL    string   `json:"imageUrl" form:"imageUrl"`
	Songs       []string `json:"songs" form:"-"`
}

// UpdateAlbumRequest replaces the track list when Songs is present.
type UpdateAlbumRequest struct {
	Title       *string   `json:"title" form:"title"`
	ReleaseYear *int      `json:"releaseYear" form:"releaseYear"`
	ImageURL    *string   `json:"imageUrl" form:"imageUrl"`
	Songs       *[]string `json:"songs" form:"-"`
}

type HideAlbumRequest struct {
	IsHidden bool `json:"isHidden"`
}

type AlbumRef struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	ImageURL string    `json:"imageUrl"`
}

// SongCard is the listing shape for a song.
type SongCard struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	ArtistID   uuid.UUID `json:"artistId"`
	ImageURL   string    `json:"imageUrl"`
	AudioURL   string    `json:"audioUrl"`
	Duration   int       `json:"duration"`
	LikesCount int       `json:"likesCount"`
	IsHidden   bool      `json:"isHidden"`
	Album      *AlbumRef `json:"album"`
	CreatedAt  time.Time `json:"createdAt"`
}

type AlbumCard struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	ArtistID    uuid.UUID `json:"artistId"`
	ImageURL    string    `json:"imageUrl"`
	ReleaseYear int       `json:"releaseYear"`
	SongsCount  int       `json:"songsCount"`
	LikesCount  int       `json:"likesCount"`
	IsHidden    bool      `json:"isHidden"`
	CreatedAt   time.Time `json:"createdAt"`
}

type AlbumDetail struct {
	AlbumCard
	Songs []string `json:"songs"`
}

// AlbumMainResponse is the album page: tracks resolved in album order.
type AlbumMainResponse struct {
	Album  AlbumDetail   `json:"album"`
	Artist ArtistSummary `json:"artist"`
	Songs  []SongCard    `json:"songs"`
}

type ArtistSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	StageName string    `json:"stageName"`
	Bio       string    `json:"bio"`
	ImageURL  string    `json:"imageUrl"`
}

type ArtistMainResponse struct {
	Artist         ArtistSummary `json:"artist"`
	FollowersCount int64         `json:"followersCount"`
	FollowingCount int64         `json:"followingCount"`
	SongsCount     int64         `json:"songsCount"`
	AlbumsCount    int64         `json:"albumsCount"`
	TopSongs       []SongCard    `json:"topSongs"`
	TopAlbums      []AlbumCard   `json:"topAlbums"`
}

type HomeResponse struct {
	TrendingSongs  []SongCard  `json:"trendingSongs"`
	TrendingAlbums []AlbumCard `json:"trendingAlbums"`
	NewSongs       []SongCard  `json:"newSongs"`
}

type UpdateArtistProfileRequest struct {
	StageName *string `json:"stageName"`
	Bio       *string `json:"bio"`
	ImageURL  *string `json:"imageUrl"`
}

type ArtistCheckResponse struct {
	IsArtist     bool                 `json:"isArtist"`
	Active       bool                 `json:"active"`
	Subscription SubscriptionResponse `json:"subscription"`
}

type ArtistSearchResult struct {
	ArtistSummary
	FollowersCount int64 `json:"followersCount"`
}

type HideAlbumResponse struct {
	Message string      `json:"message"`
	Album   AlbumDetail `json:"album"`
}
