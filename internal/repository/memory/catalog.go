package memory

import (
	"context"
	"sort"
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/VoHoang203/VibeMelodyBE/internal/repository"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type songs struct{ s *Store }

func (r songs) Create(ctx context.Context, v *models.Song) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.s.stamp(&v.CreatedAt, &v.UpdatedAt)
	r.s.songs = append(r.s.songs, cloneSong(v))
	return nil
}

func (r songs) FindByID(ctx context.Context, id uuid.UUID) (*models.Song, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.songs {
		if v.ID == id {
			return cloneSong(v), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r songs) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Song, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Song
	for _, v := range r.s.songs {
		if containsID(ids, v.ID) {
			out = append(out, *cloneSong(v))
		}
	}
	return out, nil
}

func (r songs) match(f repository.SongFilter) ([]*models.Song, error) {
	re, err := compilePattern(f.TitlePattern)
	if err != nil {
		return nil, err
	}
	var out []*models.Song
	for _, v := range r.s.songs {
		switch {
		case f.ArtistIDs != nil && !containsID(f.ArtistIDs, v.ArtistID):
			continue
		case f.AlbumIDs != nil && (v.AlbumID == nil || !containsID(f.AlbumIDs, *v.AlbumID)):
			continue
		case f.Unassigned && v.AlbumID != nil:
			continue
		case f.VisibleOnly && v.IsHidden:
			continue
		case re != nil && !re.MatchString(v.Title):
			continue
		case containsID(f.ExcludeIDs, v.ID):
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (r songs) Find(ctx context.Context, f repository.SongFilter) ([]models.Song, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matched, err := r.match(f)
	if err != nil {
		return nil, err
	}
	sorted := newestFirst(matched, func(v *models.Song) time.Time { return v.CreatedAt })
	if f.Order == repository.OrderPopular {
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].LikesCount > sorted[j].LikesCount })
	}
	var out []models.Song
	for _, v := range limited(sorted, f.Limit) {
		out = append(out, *cloneSong(v))
	}
	return out, nil
}

func (r songs) Count(ctx context.Context, f repository.SongFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matched, err := r.match(f)
	return int64(len(matched)), err
}

func (r songs) Save(ctx context.Context, v *models.Song) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, existing := range r.s.songs {
		if existing.ID == v.ID {
			r.s.stamp(nil, &v.UpdatedAt)
			v.LikesCount = existing.LikesCount
			r.s.songs[i] = cloneSong(v)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r songs) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, v := range r.s.songs {
		if v.ID == id {
			r.s.songs = append(r.s.songs[:i], r.s.songs[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r songs) SetAlbum(ctx context.Context, ids []uuid.UUID, albumID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.songs {
		if containsID(ids, v.ID) {
			id := albumID
			v.AlbumID = &id
		}
	}
	return nil
}

func (r songs) ClearAlbum(ctx context.Context, ids []uuid.UUID, albumID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.songs {
		if !v.InAlbum(albumID) {
			continue
		}
		if ids == nil || containsID(ids, v.ID) {
			v.AlbumID = nil
		}
	}
	return nil
}

func (r songs) AddLikes(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.songs {
		if v.ID == id {
			v.LikesCount += delta
			return v.LikesCount, nil
		}
	}
	return 0, repository.ErrNotFound
}

type albums struct{ s *Store }

func (r albums) Create(ctx context.Context, v *models.Album) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Songs == nil {
		v.Songs = pq.StringArray{}
	}
	r.s.stamp(&v.CreatedAt, &v.UpdatedAt)
	r.s.albums = append(r.s.albums, cloneAlbum(v))
	return nil
}

func (r albums) FindByID(ctx context.Context, id uuid.UUID) (*models.Album, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.albums {
		if v.ID == id {
			return cloneAlbum(v), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r albums) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Album, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Album
	for _, v := range r.s.albums {
		if containsID(ids, v.ID) {
			out = append(out, *cloneAlbum(v))
		}
	}
	return out, nil
}

func (r albums) match(f repository.AlbumFilter) ([]*models.Album, error) {
	re, err := compilePattern(f.TitlePattern)
	if err != nil {
		return nil, err
	}
	var out []*models.Album
	for _, v := range r.s.albums {
		switch {
		case f.ArtistIDs != nil && !containsID(f.ArtistIDs, v.ArtistID):
			continue
		case f.VisibleOnly && v.IsHidden:
			continue
		case f.Query != "" && !matchFold(v.Title, f.Query) && !matchFold(v.Artist, f.Query):
			continue
		case re != nil && !re.MatchString(v.Title):
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (r albums) Find(ctx context.Context, f repository.AlbumFilter) ([]models.Album, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matched, err := r.match(f)
	if err != nil {
		return nil, err
	}
	sorted := newestFirst(matched, func(v *models.Album) time.Time { return v.CreatedAt })
	if f.Order == repository.OrderPopular {
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].LikesCount > sorted[j].LikesCount })
	}
	var out []models.Album
	for _, v := range limited(sorted, f.Limit) {
		out = append(out, *cloneAlbum(v))
	}
	return out, nil
}

func (r albums) Count(ctx context.Context, f repository.AlbumFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matched, err := r.match(f)
	return int64(len(matched)), err
}

func (r albums) Save(ctx context.Context, v *models.Album) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, existing := range r.s.albums {
		if existing.ID == v.ID {
			r.s.stamp(nil, &v.UpdatedAt)
			v.LikesCount = existing.LikesCount
			r.s.albums[i] = cloneAlbum(v)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r albums) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, v := range r.s.albums {
		if v.ID == id {
			r.s.albums = append(r.s.albums[:i], r.s.albums[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r albums) AppendSong(ctx context.Context, albumID, songID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.albums {
		if v.ID == albumID && !v.HasSong(songID) {
			v.Songs = append(v.Songs, songID.String())
		}
	}
	return nil
}

func removeID(list pq.StringArray, id string) pq.StringArray {
	out := pq.StringArray{}
	for _, s := range list {
		if s != id {
			out = append(out, s)
		}
	}
	return out
}

func (r albums) RemoveSong(ctx context.Context, albumID, songID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.albums {
		if v.ID == albumID {
			v.Songs = removeID(v.Songs, songID.String())
		}
	}
	return nil
}

func (r albums) RemoveSongEverywhere(ctx context.Context, songID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.albums {
		v.Songs = removeID(v.Songs, songID.String())
	}
	return nil
}

func (r albums) AddLikes(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.albums {
		if v.ID == id {
			v.LikesCount += delta
			return v.LikesCount, nil
		}
	}
	return 0, repository.ErrNotFound
}
