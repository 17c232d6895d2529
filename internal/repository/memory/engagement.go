package memory

import (
	"context"
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/VoHoang203/VibeMelodyBE/internal/repository"
	"github.com/google/uuid"
)

type likes struct{ s *Store }

func (r likes) index(userID uuid.UUID, targetType string, targetID uuid.UUID) int {
	for i, l := range r.s.likes {
		if l.UserID == userID && l.TargetType == targetType && l.TargetID == targetID {
			return i
		}
	}
	return -1
}

func (r likes) Create(ctx context.Context, l *models.Like) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.index(l.UserID, l.TargetType, l.TargetID) >= 0 {
		return false, nil
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	r.s.stamp(&l.CreatedAt, nil)
	r.s.likes = append(r.s.likes, *l)
	return true, nil
}

func (r likes) Delete(ctx context.Context, userID uuid.UUID, targetType string, targetID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.index(userID, targetType, targetID)
	if i < 0 {
		return false, nil
	}
	r.s.likes = append(r.s.likes[:i], r.s.likes[i+1:]...)
	return true, nil
}

func (r likes) Exists(ctx context.Context, userID uuid.UUID, targetType string, targetID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.index(userID, targetType, targetID) >= 0, nil
}

func (r likes) TargetIDs(ctx context.Context, userID uuid.UUID, targetType string) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for _, l := range newestFirst(r.s.likes, func(l models.Like) time.Time { return l.CreatedAt }) {
		if l.UserID == userID && l.TargetType == targetType {
			ids = append(ids, l.TargetID)
		}
	}
	return ids, nil
}

func (r likes) DeleteByTarget(ctx context.Context, targetType string, targetID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.likes[:0]
	for _, l := range r.s.likes {
		if l.TargetType != targetType || l.TargetID != targetID {
			kept = append(kept, l)
		}
	}
	r.s.likes = kept
	return nil
}

type comments struct{ s *Store }

func (r comments) Create(ctx context.Context, c *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.s.stamp(&c.CreatedAt, nil)
	stored := *c
	stored.User = nil
	r.s.comments = append(r.s.comments, stored)
	return nil
}

func (r comments) ListBySong(ctx context.Context, songID uuid.UUID, limit int) ([]models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Comment
	for _, c := range newestFirst(r.s.comments, func(c models.Comment) time.Time { return c.CreatedAt }) {
		if c.SongID != songID {
			continue
		}
		for _, u := range r.s.users {
			if u.ID == c.UserID {
				author := *u
				c.User = &author
				break
			}
		}
		out = append(out, c)
	}
	return limited(out, limit), nil
}

func (r comments) DeleteBySong(ctx context.Context, songID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.comments[:0]
	for _, c := range r.s.comments {
		if c.SongID != songID {
			kept = append(kept, c)
		}
	}
	r.s.comments = kept
	return nil
}

type notifications struct{ s *Store }

func (r notifications) Create(ctx context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	r.s.stamp(&n.CreatedAt, nil)
	r.s.notifications = append(r.s.notifications, *n)
	return nil
}

func (r notifications) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Notification
	for _, n := range newestFirst(r.s.notifications, func(n models.Notification) time.Time { return n.At }) {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return limited(out, limit), nil
}

type payments struct{ s *Store }

func (r payments) UpsertIntent(ctx context.Context, p *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.payments {
		if existing.OrderCode != p.OrderCode {
			continue
		}
		if existing.Status == models.PaymentPaid {
			return nil
		}
		existing.UserID = p.UserID
		existing.Amount = p.Amount
		existing.Plan = p.Plan
		existing.PeriodMonths = p.PeriodMonths
		existing.Description = p.Description
		existing.Raw = p.Raw
		existing.Status = p.Status
		r.s.stamp(nil, &existing.UpdatedAt)
		return nil
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.s.stamp(&p.CreatedAt, &p.UpdatedAt)
	c := *p
	r.s.payments = append(r.s.payments, &c)
	return nil
}

func (r payments) FindByOrderCode(ctx context.Context, orderCode string) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.OrderCode == orderCode {
			c := *p
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r payments) UpdateRaw(ctx context.Context, id uuid.UUID, raw models.PaymentRaw) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.ID == id {
			p.Raw = raw
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r payments) Transition(ctx context.Context, id uuid.UUID, status string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.ID == id && p.Status != models.PaymentPaid {
			p.Status = status
			r.s.stamp(nil, &p.UpdatedAt)
			return true, nil
		}
	}
	return false, nil
}

type messages struct{ s *Store }

func (r messages) Create(ctx context.Context, m *models.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.s.stamp(&m.CreatedAt, nil)
	r.s.messages = append(r.s.messages, *m)
	return nil
}

func (r messages) Conversation(ctx context.Context, a, b string, limit int) ([]models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Message
	for _, m := range r.s.messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
