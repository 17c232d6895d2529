package memory

import (
	"context"
	"strings"
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/VoHoang203/VibeMelodyBE/internal/repository"
	"github.com/google/uuid"
)

type users struct{ s *Store }

func (r users) Create(ctx context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicate
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.ArtistProfile.Subscription.Status == "" {
		u.ArtistProfile.Subscription.Status = models.SubscriptionInactive
	}
	r.s.stamp(&u.CreatedAt, &u.UpdatedAt)
	c := *u
	r.s.users = append(r.s.users, &c)
	return nil
}

func (r users) find(pred func(*models.User) bool) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if pred(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r users) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r users) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.User
	for _, u := range r.s.users {
		if containsID(ids, u.ID) {
			out = append(out, *u)
		}
	}
	return out, nil
}

// FindByIDForUpdate needs no lock here; Store.Transaction is serialised.
func (r users) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.FindByID(ctx, id)
}

func (r users) update(id uuid.UUID, fn func(*models.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ID == id {
			fn(u)
			r.s.stamp(nil, &u.UpdatedAt)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r users) UpdateProfile(ctx context.Context, id uuid.UUID, p repository.ProfileUpdate) error {
	return r.update(id, func(u *models.User) {
		if p.FullName != nil {
			u.FullName = *p.FullName
		}
		if p.ImageURL != nil {
			u.ImageURL = *p.ImageURL
		}
		if p.StageName != nil {
			u.ArtistProfile.StageName = *p.StageName
		}
		if p.Bio != nil {
			u.ArtistProfile.Bio = *p.Bio
		}
	})
}

func (r users) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.update(id, func(u *models.User) { u.Password = hash })
}

func (r users) ActivateArtist(ctx context.Context, id uuid.UUID, sub models.ArtistSubscription) error {
	return r.update(id, func(u *models.User) {
		u.IsArtist = true
		u.ArtistProfile.Subscription = sub
	})
}

func (r users) list(pred func(*models.User) bool, limit int) []models.User {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.User
	for _, u := range newestFirst(r.s.users, func(u *models.User) time.Time { return u.CreatedAt }) {
		if pred(u) {
			out = append(out, *u)
		}
	}
	return limited(out, limit)
}

func (r users) SearchArtists(ctx context.Context, q string, limit int) ([]models.User, error) {
	return r.list(func(u *models.User) bool {
		if !u.IsArtist {
			return false
		}
		return q == "" || matchFold(u.ArtistProfile.StageName, q) || matchFold(u.FullName, q) || matchFold(u.Email, q)
	}, limit), nil
}

func (r users) Search(ctx context.Context, q string, excludeID uuid.UUID, limit int) ([]models.User, error) {
	return r.list(func(u *models.User) bool {
		if u.ID == excludeID {
			return false
		}
		return q == "" || matchFold(u.FullName, q) || matchFold(u.Email, q)
	}, limit), nil
}

func (r users) ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.users {
		sub := &u.ArtistProfile.Subscription
		if sub.Status == models.SubscriptionActive && sub.CurrentPeriodEnd != nil && sub.CurrentPeriodEnd.Before(now) {
			sub.Status = models.SubscriptionInactive
			n++
		}
	}
	return n, nil
}
