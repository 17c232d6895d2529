// Package memory is an in-process repository.Store used by tests and local
// tooling. Transactions are serialised but not rolled back.
package memory

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/VoHoang203/VibeMelodyBE/internal/repository"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users         []*models.User
	sessions      []*models.RefreshToken
	follows       []models.Follow
	songs         []*models.Song
	albums        []*models.Album
	likes         []models.Like
	comments      []models.Comment
	notifications []models.Notification
	payments      []*models.Payment
	messages      []models.Message

	now func() time.Time
}

func New() *Store {
	return &Store{now: time.Now}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Users() repository.UserRepository                 { return users{s} }
func (s *Store) Sessions() repository.SessionRepository           { return sessions{s} }
func (s *Store) Follows() repository.FollowRepository             { return follows{s} }
func (s *Store) Songs() repository.SongRepository                 { return songs{s} }
func (s *Store) Albums() repository.AlbumRepository               { return albums{s} }
func (s *Store) Likes() repository.LikeRepository                 { return likes{s} }
func (s *Store) Comments() repository.CommentRepository           { return comments{s} }
func (s *Store) Notifications() repository.NotificationRepository { return notifications{s} }
func (s *Store) Payments() repository.PaymentRepository           { return payments{s} }
func (s *Store) Messages() repository.MessageRepository           { return messages{s} }

func (s *Store) Transaction(ctx context.Context, fn func(repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(txStore{s})
}

// txStore runs nested transactions inline.
type txStore struct {
	*Store
}

func (t txStore) Transaction(ctx context.Context, fn func(repository.Store) error) error {
	return fn(t)
}

func (s *Store) stamp(created, updated *time.Time) {
	now := s.now()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}

// newestFirst sorts by created desc; ties resolve to the later insertion.
func newestFirst[T any](items []T, created func(T) time.Time) []T {
	out := make([]T, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		out = append(out, items[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return created(out[i]).After(created(out[j])) })
	return out
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func limited[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func matchFold(haystack, q string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(q))
}

func compilePattern(p string) (*regexp.Regexp, error) {
	if p == "" {
		return nil, nil
	}
	return regexp.Compile("(?i)" + p)
}

func cloneSong(v *models.Song) *models.Song {
	c := *v
	if v.AlbumID != nil {
		id := *v.AlbumID
		c.AlbumID = &id
	}
	return &c
}

func cloneAlbum(v *models.Album) *models.Album {
	c := *v
	c.Songs = append(pq.StringArray{}, v.Songs...)
	return &c
}
