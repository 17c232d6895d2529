package services

import (
	"context"
	"errors"
	"testing"

	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/google/uuid"
)

func TestFollowIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	pusher := &fakePusher{}
	svc := NewSocialService(store, NewNotificationService(store, pusher))
	fan := seedUser(t, store, "fan")
	artist := seedArtist(t, store, "singer")

	for i := 0; i < 2; i++ {
		resp, err := svc.Follow(ctx, fan, artist.ID)
		if err != nil {
			t.Fatalf("Follow() #%d error = %v", i, err)
		}
		if !resp.Following || resp.FollowersCount != 1 {
			t.Fatalf("Follow() #%d = %+v, want following with 1 follower", i, resp)
		}
	}

	status, err := svc.FollowStatus(ctx, fan, artist.ID)
	if err != nil || !status.Following {
		t.Fatalf("FollowStatus() = %+v, %v", status, err)
	}
	following, _ := store.Follows().CountFollowing(ctx, fan.ID)
	if following != 1 {
		t.Errorf("following count = %d, want 1", following)
	}

	notes, _ := store.Notifications().ListByUser(ctx, artist.ID, 10)
	if len(notes) == 0 || notes[0].Kind != models.KindFollowArtist || *notes[0].Meta.FollowerID != fan.ID {
		t.Fatalf("notifications = %+v", notes)
	}

	for i := 0; i < 2; i++ {
		resp, err := svc.Unfollow(ctx, fan, artist.ID)
		if err != nil {
			t.Fatalf("Unfollow() error = %v", err)
		}
		if resp.Following || resp.FollowersCount != 0 {
			t.Fatalf("Unfollow() = %+v", resp)
		}
	}
}

func TestFollowRejections(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := NewSocialService(store, nil)
	artist := seedArtist(t, store, "singer")
	listener := seedUser(t, store, "listener")

	_, err := svc.Follow(ctx, artist, artist.ID)
	wantErr(t, err, ErrInvalidInput)

	_, err = svc.Follow(ctx, artist, listener.ID)
	wantErr(t, err, ErrNotFound)

	_, err = svc.Follow(ctx, listener, uuid.New())
	wantErr(t, err, ErrNotFound)
}

func TestLikeSongCountsOnce(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	pusher := &fakePusher{}
	svc := NewSocialService(store, NewNotificationService(store, pusher))
	artist := seedArtist(t, store, "singer")
	fan := seedUser(t, store, "fan")
	song := seedSong(t, store, artist, "Mưa")

	for i := 0; i < 2; i++ {
		resp, err := svc.LikeSong(ctx, fan, song.ID)
		if err != nil {
			t.Fatalf("LikeSong() #%d error = %v", i, err)
		}
		if !resp.Liked || resp.LikesCount != 1 {
			t.Fatalf("LikeSong() #%d = %+v, want liked with 1", i, resp)
		}
	}
	if got := mustSong(t, store, song.ID).LikesCount; got != 1 {
		t.Fatalf("stored likes = %d, want 1", got)
	}
	if pusher.count() != 1 {
		t.Errorf("pushes = %d, want 1 for the first like only", pusher.count())
	}

	status, err := svc.LikeStatus(ctx, fan, models.TargetSong, song.ID)
	if err != nil || !status.Liked {
		t.Fatalf("LikeStatus() = %+v, %v", status, err)
	}

	for i := 0; i < 2; i++ {
		resp, err := svc.UnlikeSong(ctx, fan, song.ID)
		if err != nil {
			t.Fatalf("UnlikeSong() error = %v", err)
		}
		if resp.Liked || resp.LikesCount != 0 {
			t.Fatalf("UnlikeSong() #%d = %+v", i, resp)
		}
	}
	if got := mustSong(t, store, song.ID).LikesCount; got != 0 {
		t.Fatalf("stored likes = %d, want 0", got)
	}
}

func TestLikeOwnSongDoesNotNotify(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	pusher := &fakePusher{}
	svc := NewSocialService(store, NewNotificationService(store, pusher))
	artist := seedArtist(t, store, "singer")
	song := seedSong(t, store, artist, "Tự sướng")

	if _, err := svc.LikeSong(ctx, artist, song.ID); err != nil {
		t.Fatal(err)
	}
	notes, _ := store.Notifications().ListByUser(ctx, artist.ID, 10)
	if len(notes) != 0 || pusher.count() != 0 {
		t.Errorf("self like notified: %d rows, %d pushes", len(notes), pusher.count())
	}
}

func TestLikeAlbumAndMissingTargets(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := NewSocialService(store, NewNotificationService(store, nil))
	artist := seedArtist(t, store, "singer")
	fan := seedUser(t, store, "fan")
	album := &models.Album{ID: uuid.New(), Title: "Mùa hè", ArtistID: artist.ID, Artist: artist.DisplayName()}
	if err := store.Albums().Create(ctx, album); err != nil {
		t.Fatal(err)
	}

	resp, err := svc.LikeAlbum(ctx, fan, album.ID)
	if err != nil || resp.LikesCount != 1 {
		t.Fatalf("LikeAlbum() = %+v, %v", resp, err)
	}
	notes, _ := store.Notifications().ListByUser(ctx, artist.ID, 10)
	if len(notes) != 1 || notes[0].Kind != models.KindLikeAlbum {
		t.Fatalf("notifications = %+v", notes)
	}

	_, err = svc.LikeSong(ctx, fan, uuid.New())
	wantErr(t, err, ErrNotFound)

	_, err = svc.LikeStatus(ctx, fan, "playlist", album.ID)
	wantErr(t, err, ErrInvalidInput)
}

func TestLikedSongsSkipsHidden(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := NewSocialService(store, nil)
	artist := seedArtist(t, store, "singer")
	fan := seedUser(t, store, "fan")
	a := seedSong(t, store, artist, "A")
	b := seedSong(t, store, artist, "B")

	for _, id := range []uuid.UUID{a.ID, b.ID} {
		if _, err := svc.LikeSong(ctx, fan, id); err != nil {
			t.Fatal(err)
		}
	}
	hidden := mustSong(t, store, b.ID)
	hidden.IsHidden = true
	if err := store.Songs().Save(ctx, hidden); err != nil {
		t.Fatal(err)
	}

	cards, err := svc.LikedSongs(ctx, fan)
	if err != nil {
		t.Fatalf("LikedSongs() error = %v", err)
	}
	if len(cards) != 1 || cards[0].ID != a.ID {
		t.Fatalf("LikedSongs() = %+v, want only A", cards)
	}
}

func TestNotifyStoresEvenWhenPushFails(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	pusher := &fakePusher{err: errors.New("offline")}
	svc := NewNotificationService(store, pusher)
	user := seedUser(t, store, "u")

	n, err := svc.Notify(ctx, user.ID, NotifyInput{Content: "hi", Meta: models.FollowArtistMeta(uuid.New())})
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if n.Kind != models.KindFollowArtist {
		t.Errorf("kind = %q", n.Kind)
	}
	list, err := svc.List(ctx, user.ID, 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("List() = %d rows, %v", len(list), err)
	}

	_, err = svc.Notify(ctx, user.ID, NotifyInput{Content: "bad", Meta: models.NotificationMeta{Kind: models.KindLikeSong}})
	if !errors.Is(err, models.ErrInvalidMeta) {
		t.Fatalf("Notify(bad meta) err = %v, want ErrInvalidMeta", err)
	}
}

func TestNotifyManyReachesEveryRecipient(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	pusher := &fakePusher{}
	svc := NewNotificationService(store, pusher)

	var recipients []uuid.UUID
	for i := 0; i < 20; i++ {
		recipients = append(recipients, uuid.New())
	}
	svc.NotifyMany(ctx, recipients, NotifyInput{Content: "new song", Meta: models.NewSongMeta(uuid.New(), uuid.New())})

	if pusher.count() != len(recipients) {
		t.Fatalf("pushes = %d, want %d", pusher.count(), len(recipients))
	}
	for _, r := range recipients {
		rows, _ := store.Notifications().ListByUser(ctx, r, 10)
		if len(rows) != 1 {
			t.Fatalf("recipient %s has %d rows", r, len(rows))
		}
	}
}
