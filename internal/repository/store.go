package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store groups the repositories. Transaction runs fn against a store bound
// to a single database transaction.
type Store interface {
	Users() UserRepository
	Sessions() SessionRepository
	Follows() FollowRepository
	Songs() SongRepository
	Albums() AlbumRepository
	Likes() LikeRepository
	Comments() CommentRepository
	Notifications() NotificationRepository
	Payments() PaymentRepository
	Messages() MessageRepository
	Transaction(ctx context.Context, fn func(Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository                 { return &userRepository{db: s.db} }
func (s *gormStore) Sessions() SessionRepository           { return &sessionRepository{db: s.db} }
func (s *gormStore) Follows() FollowRepository             { return &followRepository{db: s.db} }
func (s *gormStore) Songs() SongRepository                 { return &songRepository{db: s.db} }
func (s *gormStore) Albums() AlbumRepository               { return &albumRepository{db: s.db} }
func (s *gormStore) Likes() LikeRepository                 { return &likeRepository{db: s.db} }
func (s *gormStore) Comments() CommentRepository           { return &commentRepository{db: s.db} }
func (s *gormStore) Notifications() NotificationRepository { return &notificationRepository{db: s.db} }
func (s *gormStore) Payments() PaymentRepository           { return &paymentRepository{db: s.db} }
func (s *gormStore) Messages() MessageRepository           { return &messageRepository{db: s.db} }

func (s *gormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// translate maps gorm errors onto repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// likePattern escapes q for use in an ILIKE '%q%' match.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

type Order int

const (
	OrderNewest  Order = iota // created_at desc
	OrderPopular              // likes_count desc, created_at desc
)

func (o Order) clause() string {
	if o == OrderPopular {
		return "likes_count DESC, created_at DESC"
	}
	return "created_at DESC"
}
