package memory

import (
	"context"
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/VoHoang203/VibeMelodyBE/internal/repository"
	"github.com/google/uuid"
)

type sessions struct{ s *Store }

func (r sessions) Create(ctx context.Context, t *models.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.sessions {
		if existing.JTI == t.JTI {
			return repository.ErrDuplicate
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.s.stamp(&t.CreatedAt, nil)
	c := *t
	r.s.sessions = append(r.s.sessions, &c)
	return nil
}

func (r sessions) FindByJTI(ctx context.Context, jti string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.sessions {
		if t.JTI == jti {
			c := *t
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r sessions) Revoke(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.sessions {
		if t.ID == id && t.RevokedAt == nil {
			ts := at
			t.RevokedAt = &ts
			return true, nil
		}
	}
	return false, nil
}

func (r sessions) RevokeAllForUser(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, t := range r.s.sessions {
		if t.UserID == userID && t.RevokedAt == nil {
			ts := at
			t.RevokedAt = &ts
			n++
		}
	}
	return n, nil
}
