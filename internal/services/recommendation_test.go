package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/VoHoang203/VibeMelodyBE/internal/dto"
	"github.com/VoHoang203/VibeMelodyBE/internal/models"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		text    string
		want    string
		keyword bool
	}{
		{"mình đang buồn quá", IntentMood, true},
		{"các nghệ sĩ mình follow có bài mới không", IntentFollowing, false},
		{"Bài mới của người mình theo dõi?", IntentFollowing, false},
		{"I'm so TIRED today", IntentMood, true},
		{"cho mình nhạc chill đi", IntentMood, true},
		{"chào bạn", IntentGeneral, false},
		{"", IntentGeneral, false},
	}
	for _, tt := range tests {
		got := ClassifyIntent(tt.text)
		if got.Type != tt.want {
			t.Errorf("ClassifyIntent(%q) = %q, want %q", tt.text, got.Type, tt.want)
		}
		if tt.keyword && got.Keyword == "" {
			t.Errorf("ClassifyIntent(%q) lost the keyword", tt.text)
		}
	}
}

func TestClassifyIntentKeepsLowercasedInput(t *testing.T) {
	got := ClassifyIntent("  Mình đang BUỒN quá ")
	if got.Type != IntentMood || got.Keyword != "mình đang buồn quá" {
		t.Fatalf("ClassifyIntent() = %+v", got)
	}
}

func TestClassifyIntentPrefersFollowing(t *testing.T) {
	got := ClassifyIntent("buồn quá, nghệ sĩ mình theo dõi có gì mới không")
	if got.Type != IntentFollowing {
		t.Fatalf("intent = %q, want following", got.Type)
	}
}

func TestMoodPattern(t *testing.T) {
	sad := MoodPattern("mình đang buồn quá")
	if !strings.Contains(sad, "buồn") || !strings.Contains(sad, "buon") {
		t.Errorf("sad pattern = %q", sad)
	}
	if got := MoodPattern("rock 2024!!"); got != "rock|2024" {
		t.Errorf("MoodPattern(rock 2024!!) = %q", got)
	}
	if got := MoodPattern("a.b"); got != "a|b" {
		t.Errorf("MoodPattern(a.b) = %q", got)
	}
	if got := MoodPattern("!!!"); got != "" {
		t.Errorf("MoodPattern(!!!) = %q, want empty", got)
	}
}

func titles(cards []dto.SongCard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Title
	}
	return out
}

func TestSearchByMoodTiers(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	artist := seedArtist(t, store, "singer")
	catalog := NewCatalogService(store, nil)

	likes := func(title string, n int) *models.Song {
		s := seedSong(t, store, artist, title)
		if n > 0 {
			if _, err := store.Songs().AddLikes(ctx, s.ID, n); err != nil {
				t.Fatal(err)
			}
		}
		return s
	}
	likes("Đêm buồn", 5)
	likes("Buồn của anh", 1)
	hidden := likes("Buồn ẩn", 9)
	hidden = mustSong(t, store, hidden.ID)
	hidden.IsHidden = true
	if err := store.Songs().Save(ctx, hidden); err != nil {
		t.Fatal(err)
	}
	track := likes("Sunrise", 0)
	if _, err := catalog.CreateAlbum(ctx, artist, &dto.CreateAlbumRequest{Title: "Nỗi buồn", ImageURL: "cover.jpg", Songs: []string{track.ID.String()}}); err != nil {
		t.Fatal(err)
	}
	likes("Happy day", 3)
	likes("Morning", 2)
	likes("Jazz", 0)

	rec := NewRecommender(store, nil)
	got, err := rec.SearchByMood(ctx, "mình đang buồn quá", 5)
	if err != nil {
		t.Fatalf("SearchByMood() error = %v", err)
	}
	want := []string{"Đêm buồn", "Buồn của anh", "Sunrise", "Happy day", "Morning"}
	if strings.Join(titles(got), ",") != strings.Join(want, ",") {
		t.Fatalf("SearchByMood() = %v, want %v", titles(got), want)
	}
	if got[2].Album == nil || got[2].Album.Title != "Nỗi buồn" {
		t.Errorf("album track card = %+v", got[2])
	}

	few, err := rec.SearchByMood(ctx, "buồn", 1)
	if err != nil || len(few) != 1 || few[0].Title != "Đêm buồn" {
		t.Fatalf("SearchByMood(limit 1) = %v, %v", titles(few), err)
	}
}

func TestSearchByMoodWithoutMatchesPadsByPopularity(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	artist := seedArtist(t, store, "singer")
	a := seedSong(t, store, artist, "Alpha")
	seedSong(t, store, artist, "Beta")
	if _, err := store.Songs().AddLikes(ctx, a.ID, 2); err != nil {
		t.Fatal(err)
	}

	got, err := NewRecommender(store, nil).SearchByMood(ctx, "!!!", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Title != "Alpha" {
		t.Fatalf("SearchByMood() = %v", titles(got))
	}
}

func TestRecommendFromFollowing(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	followed := seedArtist(t, store, "followed")
	other := seedArtist(t, store, "other")
	fan := seedUser(t, store, "fan")

	rec := NewRecommender(store, nil)
	none, err := rec.RecommendFromFollowing(ctx, fan, 5)
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("no follows = %v, %v; want empty slice", none, err)
	}

	seedSong(t, store, followed, "Old")
	seedSong(t, store, other, "Elsewhere")
	seedSong(t, store, followed, "New")
	if err := store.Follows().Add(ctx, fan.ID, followed.ID); err != nil {
		t.Fatal(err)
	}

	got, err := rec.RecommendFromFollowing(ctx, fan, 5)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(titles(got), ",") != "New,Old" {
		t.Fatalf("RecommendFromFollowing() = %v", titles(got))
	}
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	songs := []dto.SongCard{{Title: "A"}, {Title: "B"}, {Title: "C"}, {Title: "D"}}

	gen := &fakeGenerator{reply: "Nghe thử nha!"}
	rec := NewRecommender(newStore(), gen)
	if got := rec.Summarize(ctx, nil, songs, ModeByMood, "buồn"); got != "Nghe thử nha!" {
		t.Errorf("Summarize() = %q", got)
	}
	if len(gen.calls) != 1 || gen.calls[0][0].Role != "system" || !strings.Contains(gen.calls[0][1].Content, "1. A") {
		t.Errorf("prompt = %+v", gen.calls)
	}

	gen.err = errors.New("quota")
	got := rec.Summarize(ctx, nil, songs, ModeByMood, "buồn")
	if got != "Bạn thử nghe: A, B, C xem có hợp mood không nha!" {
		t.Errorf("fallback = %q", got)
	}
	if got := rec.Summarize(ctx, nil, nil, ModeByMood, "buồn"); !strings.HasPrefix(got, "Hình như") {
		t.Errorf("empty fallback = %q", got)
	}
}
