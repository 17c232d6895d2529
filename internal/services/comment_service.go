package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/VoHoang203/VibeMelodyBE/internal/dto"
	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/VoHoang203/VibeMelodyBE/internal/repository"
	"github.com/google/uuid"
)

const (
	maxCommentLength = 2000
	commentPageSize  = 100
)

type CommentService struct {
	store  repository.Store
	notify *NotificationService
	filter *ContentFilter
}

func NewCommentService(store repository.Store, notify *NotificationService, filter *ContentFilter) *CommentService {
	return &CommentService{store: store, notify: notify, filter: filter}
}

func (s *CommentService) AddComment(ctx context.Context, me *models.User, songID uuid.UUID, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, invalid("content is required")
	}
	if len([]rune(content)) > maxCommentLength {
		return nil, invalid("content must be at most %d characters", maxCommentLength)
	}
	if req.Timestamp != nil && *req.Timestamp < 0 {
		return nil, invalid("timestamp must not be negative")
	}
	if err := s.filter.Check(content); err != nil {
		return nil, err
	}

	song, err := s.store.Songs().FindByID(ctx, songID)
	if err != nil {
		return nil, lookupError(err, "song")
	}
	if !visibleTo(song.IsHidden, song.ArtistID, me) {
		return nil, notFound("song")
	}

	comment := models.Comment{
		UserID:    me.ID,
		SongID:    songID,
		Content:   content,
		Timestamp: req.Timestamp,
	}
	if err := s.store.Comments().Create(ctx, &comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	comment.User = me

	if song.ArtistID != me.ID {
		s.notify.notifyQuietly(ctx, song.ArtistID, NotifyInput{
			Content:  fmt.Sprintf("%s đã bình luận về bài hát \"%s\"", displayOrSomeone(me), song.Title),
			ImageURL: me.ImageURL,
			Meta:     models.CommentSongMeta(song.ID, comment.ID, me.ID),
		})
	}

	resp := dto.NewCommentResponse(&comment)
	return &resp, nil
}

// ListComments returns the newest comments on a song first.
func (s *CommentService) ListComments(ctx context.Context, songID uuid.UUID) ([]dto.CommentResponse, error) {
	if _, err := s.store.Songs().FindByID(ctx, songID); err != nil {
		return nil, lookupError(err, "song")
	}
	comments, err := s.store.Comments().ListBySong(ctx, songID, commentPageSize)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, dto.NewCommentResponse(&comments[i]))
	}
	return out, nil
}
