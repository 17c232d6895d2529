package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/VoHoang203/VibeMelodyBE/internal/ai"
	"github.com/VoHoang203/VibeMelodyBE/internal/dto"
	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/VoHoang203/VibeMelodyBE/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const (
	IntentFollowing = "following"
	IntentMood      = "mood"
	IntentGeneral   = "general"

	ModeFromFollowing = "recommend_from_following"
	ModeByMood        = "recommend_by_mood"

	moodAlbumLimit = 20
	promptTextCap  = 400
)

type Intent struct {
	Type    string
	Keyword string // normalized input, set for mood
}

var followingVocabulary = []string{
	"follow", "theo dõi", "người mình theo", "nghệ sĩ mình theo", "artist i follow",
}

var moodVocabulary = []string{
	"buồn", "sad", "quên", "buông", "giết", "thất", "muộn màng", "vài lần",
	"vui", "happy", "energetic", "mệt", "tired", "chill", "lofi", "calm",
	"ngủ", "sleep", "tập trung", "focus", "lonely", "broken",
}

// moodGroup maps trigger words to a title pattern. Patterns are shared by
// PostgreSQL (~*) and Go regexp, so they stay within the common subset.
type moodGroup struct {
	triggers []string
	pattern  string
}

var moodGroups = []moodGroup{
	{
		triggers: []string{"buồn", "sad", "quên", "buông", "giết", "thất", "muộn màng", "vài lần", "lonely", "broken"},
		pattern:  "(buồn|buon|quên|quen|buông|buong|giết|giet|thất|that|muộn màng|muon mang|muộn|muon|cô đơn|co don|đơn côi|don coi|tan vỡ|tan vo|vỡ|vo|nhớ|nho|lạc trôi|lac troi|vài lần|vai lan|chênh vênh|chenh venh|u sầu|u sau|sad|broken|lonely)",
	},
	{
		triggers: []string{"vui", "happy", "energetic"},
		pattern:  "(vui|happy|party|dance|sôi động|soi dong|rộn ràng|ron rang|tưng bừng|tung bung)",
	},
	{
		triggers: []string{"mệt", "tired"},
		pattern:  "(mệt|met|tired|uể oải|ue oai|kiệt sức|kiet suc|đuối|duoi|mỏi mệt|moi met)",
	},
	{
		triggers: []string{"chill", "lofi", "calm"},
		pattern:  "(chill|lofi|thư giãn|thu gian|calm|relax|êm dịu|em diu)",
	},
	{
		triggers: []string{"ngủ", "sleep"},
		pattern:  "(ngủ|ngu|sleep|ru ngủ|ru ngu|bedtime|midnight|đêm|dem)",
	},
	{
		triggers: []string{"tập trung", "focus"},
		pattern:  "(tập trung|tap trung|focus|study|work|deep|concentration)",
	},
}

var tokenChars = regexp.MustCompile(`[a-zA-ZÀ-ỹ0-9 ]+`)

func normalizeText(text string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(text)))
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// ClassifyIntent is an ordered keyword test: following first, then mood.
func ClassifyIntent(text string) Intent {
	t := normalizeText(text)
	switch {
	case containsAny(t, followingVocabulary):
		return Intent{Type: IntentFollowing}
	case containsAny(t, moodVocabulary):
		return Intent{Type: IntentMood, Keyword: t}
	default:
		return Intent{Type: IntentGeneral}
	}
}

// MoodPattern returns the title pattern for keyword, or "" when nothing
// searchable remains.
func MoodPattern(keyword string) string {
	t := normalizeText(keyword)
	for _, g := range moodGroups {
		if containsAny(t, g.triggers) {
			return g.pattern
		}
	}
	var tokens []string
	for _, chunk := range tokenChars.FindAllString(t, -1) {
		for _, tok := range strings.Fields(chunk) {
			tokens = append(tokens, regexp.QuoteMeta(tok))
		}
	}
	return strings.Join(tokens, "|")
}

type Recommender struct {
	store repository.Store
	gen   ai.TextGenerator
}

func NewRecommender(store repository.Store, gen ai.TextGenerator) *Recommender {
	return &Recommender{store: store, gen: gen}
}

// RecommendFromFollowing returns the newest visible songs of followed artists.
func (r *Recommender) RecommendFromFollowing(ctx context.Context, user *models.User, limit int) ([]dto.SongCard, error) {
	following, err := r.store.Follows().FollowingIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(following) == 0 {
		return []dto.SongCard{}, nil
	}
	songs, err := r.store.Songs().Find(ctx, repository.SongFilter{
		ArtistIDs:   following,
		VisibleOnly: true,
		Order:       repository.OrderNewest,
		Limit:       limit,
	})
	if err != nil {
		return nil, err
	}
	return songCards(ctx, r.store, songs)
}

// SearchByMood fills up to limit songs from title matches, then songs of
// matching albums, then the most liked songs overall.
func (r *Recommender) SearchByMood(ctx context.Context, keyword string, limit int) ([]dto.SongCard, error) {
	pattern := MoodPattern(keyword)
	var (
		picked []models.Song
		seen   []uuid.UUID
	)
	take := func(songs []models.Song) {
		for _, s := range songs {
			if len(picked) >= limit {
				return
			}
			if containsUUID(seen, s.ID) {
				continue
			}
			seen = append(seen, s.ID)
			picked = append(picked, s)
		}
	}

	if pattern != "" {
		byTitle, err := r.store.Songs().Find(ctx, repository.SongFilter{
			TitlePattern: pattern,
			VisibleOnly:  true,
			Order:        repository.OrderPopular,
			Limit:        limit,
		})
		if err != nil {
			return nil, err
		}
		take(byTitle)

		if len(picked) < limit {
			albums, err := r.store.Albums().Find(ctx, repository.AlbumFilter{
				TitlePattern: pattern,
				VisibleOnly:  true,
				Limit:        moodAlbumLimit,
			})
			if err != nil {
				return nil, err
			}
			if len(albums) > 0 {
				ids := make([]uuid.UUID, len(albums))
				for i := range albums {
					ids[i] = albums[i].ID
				}
				byAlbum, err := r.store.Songs().Find(ctx, repository.SongFilter{
					AlbumIDs:    ids,
					VisibleOnly: true,
					ExcludeIDs:  seen,
					Order:       repository.OrderPopular,
					Limit:       limit,
				})
				if err != nil {
					return nil, err
				}
				take(byAlbum)
			}
		}
	}

	if len(picked) < limit {
		more, err := r.store.Songs().Find(ctx, repository.SongFilter{
			VisibleOnly: true,
			ExcludeIDs:  seen,
			Order:       repository.OrderPopular,
			Limit:       limit - len(picked),
		})
		if err != nil {
			return nil, err
		}
		take(more)
	}
	return songCards(ctx, r.store, picked)
}

func containsUUID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

const assistantPersona = "Bạn là trợ lý âm nhạc của VibeMelody. Trả lời 1-4 câu, tiếng Việt casual, emoji vừa đủ."

// Summarize asks the generator to pitch songs. It never fails; on any
// generator error it returns a canned sentence.
func (r *Recommender) Summarize(ctx context.Context, user *models.User, songs []dto.SongCard, mode, text string) string {
	var list strings.Builder
	for i, s := range songs {
		fmt.Fprintf(&list, "%d. %s - %s", i+1, s.Title, s.Artist)
		if s.Album != nil && s.Album.Title != "" {
			fmt.Fprintf(&list, " (album: %s)", s.Album.Title)
		}
		list.WriteString("\n")
	}
	suggestions := list.String()
	if suggestions == "" {
		suggestions = "(chưa có bài nào)\n"
	}

	prompt := fmt.Sprintf("- Chế độ: %s\n- User: %s\n- Tin nhắn: %q\n- Gợi ý:\n%s\nViết lời gợi ý mời nghe các bài trên.",
		mode, userContext(user), truncate(text, promptTextCap), suggestions)

	if r.gen != nil {
		reply, err := r.gen.Generate(ctx, []ai.Message{
			{Role: "system", Content: assistantPersona},
			{Role: "user", Content: prompt},
		})
		if err == nil {
			return reply
		}
		slog.Warn("ai summarize failed", "mode", mode, "error", err)
	}
	return fallbackSummary(songs)
}

func fallbackSummary(songs []dto.SongCard) string {
	if len(songs) == 0 {
		return "Hình như chưa tìm thấy bài phù hợp. Bạn thử mô tả mood/kiểu nhạc rõ hơn nhé!"
	}
	titles := make([]string, 0, 3)
	for _, s := range songs {
		if len(titles) == 3 {
			break
		}
		titles = append(titles, s.Title)
	}
	return fmt.Sprintf("Bạn thử nghe: %s xem có hợp mood không nha!", strings.Join(titles, ", "))
}

func userContext(user *models.User) string {
	if user == nil {
		return "n/a"
	}
	b, _ := json.Marshal(map[string]interface{}{
		"id":       user.ID,
		"fullName": user.FullName,
		"isArtist": user.IsArtist,
	})
	return string(b)
}
