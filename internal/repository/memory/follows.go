package memory

import (
	"context"

	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/google/uuid"
)

type follows struct{ s *Store }

func (r follows) index(followerID, artistID uuid.UUID) int {
	for i, f := range r.s.follows {
		if f.FollowerID == followerID && f.ArtistID == artistID {
			return i
		}
	}
	return -1
}

func (r follows) Add(ctx context.Context, followerID, artistID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.index(followerID, artistID) >= 0 {
		return nil
	}
	r.s.follows = append(r.s.follows, models.Follow{FollowerID: followerID, ArtistID: artistID, CreatedAt: r.s.now()})
	return nil
}

func (r follows) Remove(ctx context.Context, followerID, artistID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if i := r.index(followerID, artistID); i >= 0 {
		r.s.follows = append(r.s.follows[:i], r.s.follows[i+1:]...)
	}
	return nil
}

func (r follows) Exists(ctx context.Context, followerID, artistID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.index(followerID, artistID) >= 0, nil
}

func (r follows) collect(match func(models.Follow) (uuid.UUID, bool)) []uuid.UUID {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for _, f := range r.s.follows {
		if id, ok := match(f); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r follows) CountFollowers(ctx context.Context, artistID uuid.UUID) (int64, error) {
	ids, _ := r.FollowerIDs(ctx, artistID)
	return int64(len(ids)), nil
}

func (r follows) CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error) {
	ids, _ := r.FollowingIDs(ctx, userID)
	return int64(len(ids)), nil
}

func (r follows) FollowerIDs(ctx context.Context, artistID uuid.UUID) ([]uuid.UUID, error) {
	return r.collect(func(f models.Follow) (uuid.UUID, bool) { return f.FollowerID, f.ArtistID == artistID }), nil
}

func (r follows) FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return r.collect(func(f models.Follow) (uuid.UUID, bool) { return f.ArtistID, f.FollowerID == userID }), nil
}
