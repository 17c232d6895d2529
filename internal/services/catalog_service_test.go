package services

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/dto"
	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/VoHoang203/VibeMelodyBE/internal/repository"
	"github.com/google/uuid"
)

// assertLinked checks that every album lists exactly the songs pointing at it.
func assertLinked(t *testing.T, store repository.Store) {
	t.Helper()
	ctx := context.Background()
	albums, err := store.Albums().Find(ctx, repository.AlbumFilter{})
	if err != nil {
		t.Fatal(err)
	}
	songs, err := store.Songs().Find(ctx, repository.SongFilter{})
	if err != nil {
		t.Fatal(err)
	}
	pointing := map[uuid.UUID]int{}
	for _, s := range songs {
		if s.AlbumID == nil {
			continue
		}
		pointing[*s.AlbumID]++
		album := mustAlbum(t, store, *s.AlbumID)
		if !album.HasSong(s.ID) {
			t.Errorf("song %q points at album %q which does not list it", s.Title, album.Title)
		}
	}
	for _, a := range albums {
		if len(a.Songs) != pointing[a.ID] {
			t.Errorf("album %q lists %d songs, %d point back", a.Title, len(a.Songs), pointing[a.ID])
		}
	}
}

func newCatalog(t *testing.T) (*CatalogService, repository.Store, *models.User) {
	t.Helper()
	store := newStore()
	artist := seedArtist(t, store, "singer")
	return NewCatalogService(store, NewNotificationService(store, nil)), store, artist
}

func createAlbum(t *testing.T, svc *CatalogService, me *models.User, title string, songs ...string) *dto.AlbumDetail {
	t.Helper()
	album, err := svc.CreateAlbum(context.Background(), me, &dto.CreateAlbumRequest{Title: title, ImageURL: "https://cdn/cover.jpg", Songs: songs})
	if err != nil {
		t.Fatalf("CreateAlbum(%s) error = %v", title, err)
	}
	return album
}

func TestCreateSongRequiresActiveArtist(t *testing.T) {
	ctx := context.Background()
	svc, store, artist := newCatalog(t)
	listener := seedUser(t, store, "listener")

	_, err := svc.CreateSong(ctx, listener, &dto.CreateSongRequest{Title: "x", AudioURL: "a.mp3"})
	wantErr(t, err, ErrNotArtist)

	past := time.Now().Add(-time.Minute)
	artist.ArtistProfile.Subscription.CurrentPeriodEnd = &past
	_, err = svc.CreateSong(ctx, artist, &dto.CreateSongRequest{Title: "x", AudioURL: "a.mp3"})
	wantErr(t, err, ErrNotArtist)
}

func TestCreateSongAppendsToAlbum(t *testing.T) {
	ctx := context.Background()
	svc, store, artist := newCatalog(t)
	album := createAlbum(t, svc, artist, "Đêm")

	var ids []string
	for _, title := range []string{"Một", "Hai"} {
		card, err := svc.CreateSong(ctx, artist, &dto.CreateSongRequest{Title: title, AudioURL: title + ".mp3", AlbumID: album.ID.String()})
		if err != nil {
			t.Fatalf("CreateSong(%s) error = %v", title, err)
		}
		if card.Album == nil || card.Album.ID != album.ID {
			t.Fatalf("card album = %+v", card.Album)
		}
		ids = append(ids, card.ID.String())
	}

	got := mustAlbum(t, store, album.ID)
	if !reflect.DeepEqual([]string(got.Songs), ids) {
		t.Fatalf("album songs = %v, want %v", got.Songs, ids)
	}
	assertLinked(t, store)

	_, err := svc.CreateSong(ctx, artist, &dto.CreateSongRequest{Title: " ", AudioURL: "a.mp3"})
	wantErr(t, err, ErrInvalidInput)
	_, err = svc.CreateSong(ctx, artist, &dto.CreateSongRequest{Title: "No audio"})
	wantErr(t, err, ErrInvalidInput)
}

func TestCreateSongNotifiesFollowers(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	artist := seedArtist(t, store, "singer")
	pusher := &fakePusher{}
	svc := NewCatalogService(store, NewNotificationService(store, pusher))
	fans := []*models.User{seedUser(t, store, "fan1"), seedUser(t, store, "fan2")}
	for _, f := range fans {
		if err := store.Follows().Add(ctx, f.ID, artist.ID); err != nil {
			t.Fatal(err)
		}
	}

	card, err := svc.CreateSong(ctx, artist, &dto.CreateSongRequest{Title: "Mới", AudioURL: "new.mp3"})
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range fans {
		notes, _ := store.Notifications().ListByUser(ctx, f.ID, 10)
		if len(notes) != 1 || notes[0].Kind != models.KindNewSong || *notes[0].Meta.SongID != card.ID {
			t.Fatalf("fan %s notifications = %+v", f.FullName, notes)
		}
	}
	if pusher.count() != len(fans) {
		t.Errorf("pushes = %d, want %d", pusher.count(), len(fans))
	}
}

func TestReplaceAlbumTracksReconcilesBothSides(t *testing.T) {
	ctx := context.Background()
	svc, store, artist := newCatalog(t)
	a := seedSong(t, store, artist, "A")
	b := seedSong(t, store, artist, "B")
	c := seedSong(t, store, artist, "C")

	album := createAlbum(t, svc, artist, "First", a.ID.String(), b.ID.String())
	assertLinked(t, store)

	detail, err := svc.ReplaceAlbumTracks(ctx, artist, album.ID, []string{c.ID.String(), a.ID.String(), c.ID.String()})
	if err != nil {
		t.Fatalf("ReplaceAlbumTracks() error = %v", err)
	}
	want := []string{c.ID.String(), a.ID.String()}
	if !reflect.DeepEqual(detail.Songs, want) {
		t.Fatalf("songs = %v, want %v", detail.Songs, want)
	}
	if mustSong(t, store, b.ID).AlbumID != nil {
		t.Error("dropped song still points at the album")
	}
	if !mustSong(t, store, c.ID).InAlbum(album.ID) {
		t.Error("added song does not point at the album")
	}
	assertLinked(t, store)
}

func TestReplaceAlbumTracksMovesSongBetweenAlbums(t *testing.T) {
	ctx := context.Background()
	svc, store, artist := newCatalog(t)
	a := seedSong(t, store, artist, "A")
	b := seedSong(t, store, artist, "B")
	first := createAlbum(t, svc, artist, "First", a.ID.String(), b.ID.String())
	second := createAlbum(t, svc, artist, "Second")

	if _, err := svc.ReplaceAlbumTracks(ctx, artist, second.ID, []string{b.ID.String()}); err != nil {
		t.Fatal(err)
	}
	if got := mustAlbum(t, store, first.ID).Songs; len(got) != 1 || got[0] != a.ID.String() {
		t.Fatalf("first album songs = %v", got)
	}
	if !mustSong(t, store, b.ID).InAlbum(second.ID) {
		t.Error("moved song does not point at the new album")
	}
	assertLinked(t, store)
}

func TestReplaceAlbumTracksRejectsForeignSongs(t *testing.T) {
	ctx := context.Background()
	svc, store, artist := newCatalog(t)
	other := seedArtist(t, store, "other")
	foreign := seedSong(t, store, other, "Theirs")
	album := createAlbum(t, svc, artist, "Mine")

	_, err := svc.ReplaceAlbumTracks(ctx, artist, album.ID, []string{foreign.ID.String()})
	wantErr(t, err, ErrInvalidInput)
	_, err = svc.ReplaceAlbumTracks(ctx, artist, album.ID, []string{uuid.NewString()})
	wantErr(t, err, ErrInvalidInput)
	_, err = svc.ReplaceAlbumTracks(ctx, artist, album.ID, []string{"not-a-uuid"})
	wantErr(t, err, ErrInvalidInput)

	_, err = svc.ReplaceAlbumTracks(ctx, other, album.ID, nil)
	wantErr(t, err, ErrForbidden)
	assertLinked(t, store)
}

func TestUpdateSongMovesAndDetaches(t *testing.T) {
	ctx := context.Background()
	svc, store, artist := newCatalog(t)
	song := seedSong(t, store, artist, "Solo")
	first := createAlbum(t, svc, artist, "First", song.ID.String())
	second := createAlbum(t, svc, artist, "Second")

	target := second.ID.String()
	if _, err := svc.UpdateSong(ctx, artist, song.ID, &dto.UpdateSongRequest{AlbumID: &target}); err != nil {
		t.Fatal(err)
	}
	if len(mustAlbum(t, store, first.ID).Songs) != 0 || !mustSong(t, store, song.ID).InAlbum(second.ID) {
		t.Fatal("song was not moved")
	}
	assertLinked(t, store)

	empty := ""
	title := "Solo (remix)"
	card, err := svc.UpdateSong(ctx, artist, song.ID, &dto.UpdateSongRequest{AlbumID: &empty, Title: &title})
	if err != nil {
		t.Fatal(err)
	}
	if card.Album != nil || card.Title != title {
		t.Fatalf("card = %+v", card)
	}
	assertLinked(t, store)
}

func TestDeleteSongAndAlbumKeepReferencesClean(t *testing.T) {
	ctx := context.Background()
	svc, store, artist := newCatalog(t)
	fan := seedUser(t, store, "fan")
	a := seedSong(t, store, artist, "A")
	b := seedSong(t, store, artist, "B")
	album := createAlbum(t, svc, artist, "Album", a.ID.String(), b.ID.String())

	social := NewSocialService(store, nil)
	if _, err := social.LikeSong(ctx, fan, a.ID); err != nil {
		t.Fatal(err)
	}

	other := seedArtist(t, store, "other")
	wantErr(t, svc.DeleteSong(ctx, other, a.ID), ErrForbidden)

	if err := svc.DeleteSong(ctx, artist, a.ID); err != nil {
		t.Fatalf("DeleteSong() error = %v", err)
	}
	if got := mustAlbum(t, store, album.ID).Songs; len(got) != 1 || got[0] != b.ID.String() {
		t.Fatalf("album songs after delete = %v", got)
	}
	if liked, _ := store.Likes().Exists(ctx, fan.ID, models.TargetSong, a.ID); liked {
		t.Error("like on deleted song survived")
	}
	assertLinked(t, store)

	if err := svc.DeleteAlbum(ctx, artist, album.ID); err != nil {
		t.Fatalf("DeleteAlbum() error = %v", err)
	}
	if mustSong(t, store, b.ID).AlbumID != nil {
		t.Error("song still points at deleted album")
	}
	_, err := svc.GetAlbum(ctx, artist, album.ID)
	wantErr(t, err, ErrNotFound)
}

func TestHiddenContentVisibility(t *testing.T) {
	ctx := context.Background()
	svc, store, artist := newCatalog(t)
	fan := seedUser(t, store, "fan")
	song := seedSong(t, store, artist, "Secret")
	album := createAlbum(t, svc, artist, "Hidden", song.ID.String())

	hidden := true
	if _, err := svc.UpdateSong(ctx, artist, song.ID, &dto.UpdateSongRequest{IsHidden: &hidden}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetSong(ctx, artist, song.ID); err != nil {
		t.Errorf("owner cannot see hidden song: %v", err)
	}
	_, err := svc.GetSong(ctx, fan, song.ID)
	wantErr(t, err, ErrNotFound)

	resp, err := svc.SetAlbumVisibility(ctx, artist, album.ID, true)
	if err != nil || !resp.Album.IsHidden {
		t.Fatalf("SetAlbumVisibility() = %+v, %v", resp, err)
	}
	_, err = svc.AlbumMain(ctx, album.ID)
	wantErr(t, err, ErrNotFound)

	cards, err := svc.ListAlbums(ctx, nil, nil, false, "")
	if err != nil || len(cards) != 0 {
		t.Fatalf("public ListAlbums() = %d cards, %v", len(cards), err)
	}
	cards, err = svc.ListAlbums(ctx, artist, &artist.ID, false, "")
	if err != nil || len(cards) != 1 {
		t.Fatalf("owner ListAlbums() = %d cards, %v", len(cards), err)
	}

	songs, err := svc.ListArtistSongs(ctx, fan, artist.ID, false)
	if err != nil || len(songs) != 0 {
		t.Fatalf("fan ListArtistSongs() = %d, %v", len(songs), err)
	}
}

func TestAlbumMainKeepsTrackOrder(t *testing.T) {
	ctx := context.Background()
	svc, store, artist := newCatalog(t)
	a := seedSong(t, store, artist, "A")
	b := seedSong(t, store, artist, "B")
	album := createAlbum(t, svc, artist, "Ordered", b.ID.String(), a.ID.String())

	page, err := svc.AlbumMain(ctx, album.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Songs) != 2 || page.Songs[0].ID != b.ID || page.Songs[1].ID != a.ID {
		t.Fatalf("tracks = %+v", page.Songs)
	}
	if page.Songs[0].ImageURL == "" {
		t.Error("track without art should fall back to the cover")
	}
	if page.Artist.ID != artist.ID {
		t.Errorf("artist = %+v", page.Artist)
	}
}

func TestHomeAndArtistMain(t *testing.T) {
	ctx := context.Background()
	svc, store, artist := newCatalog(t)
	fan := seedUser(t, store, "fan")
	quiet := seedSong(t, store, artist, "Quiet")
	hit := seedSong(t, store, artist, "Hit")
	if _, err := store.Songs().AddLikes(ctx, hit.ID, 5); err != nil {
		t.Fatal(err)
	}
	if err := store.Follows().Add(ctx, fan.ID, artist.ID); err != nil {
		t.Fatal(err)
	}

	home, err := svc.Home(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(home.TrendingSongs) != 2 || home.TrendingSongs[0].ID != hit.ID {
		t.Fatalf("trending = %+v", home.TrendingSongs)
	}
	if home.NewSongs[0].ID != hit.ID || home.NewSongs[1].ID != quiet.ID {
		t.Fatalf("new songs out of order: %+v", home.NewSongs)
	}

	page, err := svc.ArtistMain(ctx, artist.ID)
	if err != nil {
		t.Fatal(err)
	}
	if page.FollowersCount != 1 || page.SongsCount != 2 || page.TopSongs[0].ID != hit.ID {
		t.Fatalf("artist page = %+v", page)
	}

	_, err = svc.ArtistMain(ctx, fan.ID)
	wantErr(t, err, ErrNotFound)

	results, err := svc.SearchArtists(ctx, "sing")
	if err != nil || len(results) != 1 || results[0].FollowersCount != 1 {
		t.Fatalf("SearchArtists() = %+v, %v", results, err)
	}
}
