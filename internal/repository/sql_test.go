package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/VoHoang203/VibeMelodyBE/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 logger.Discard,
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
	return NewStore(db), mock
}

// sqlLike matches statements containing every fragment, in order.
func sqlLike(fragments ...string) string {
	quoted := make([]string, len(fragments))
	for i, f := range fragments {
		quoted[i] = regexp.QuoteMeta(f)
	}
	return strings.Join(quoted, ".*")
}

func TestUpsertIntentSkipsPaidRows(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(sqlLike(
		`INSERT INTO "payments"`,
		`ON CONFLICT ("order_code") DO UPDATE SET`,
		`"raw"=EXCLUDED.raw`,
		`"status"=EXCLUDED.status`,
		`"user_id"=`,
		`WHERE payments.status <> $`,
		`RETURNING "id"`,
	)).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := store.Payments().UpsertIntent(context.Background(), &models.Payment{
		OrderCode: "1001", UserID: uuid.New(), Amount: 99000, Status: models.PaymentPending, Plan: models.PlanArtist1M, PeriodMonths: 1,
	})
	if err != nil {
		t.Fatalf("UpsertIntent() error = %v", err)
	}
}

func TestTransitionNeverLeavesPaid(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()
	mock.ExpectExec(sqlLike(`UPDATE "payments" SET "status"=$1,"updated_at"=$2 WHERE id = $3 AND status <> $4`)).
		WithArgs(models.PaymentCanceled, sqlmock.AnyArg(), id.String(), models.PaymentPaid).
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err := store.Payments().Transition(context.Background(), id, models.PaymentCanceled)
	if err != nil || won {
		t.Fatalf("Transition() = %v, %v; want false, nil", won, err)
	}
}

func TestAlbumTrackArraySQL(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t)
	albumID, songID := uuid.New(), uuid.New()
	sid := songID.String()

	mock.ExpectExec(sqlLike(
		`UPDATE "albums" SET "songs"=array_append(songs, $1::text)`,
		`WHERE id = $2 AND NOT ($3 = ANY(songs))`,
	)).WithArgs(sid, albumID.String(), sid).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sqlLike(
		`UPDATE "albums" SET "songs"=array_remove(songs, $1::text)`,
		`WHERE id = $2`,
	)).WithArgs(sid, albumID.String()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sqlLike(
		`UPDATE "albums" SET "songs"=array_remove(songs, $1::text)`,
		`WHERE $2 = ANY(songs)`,
	)).WithArgs(sid, sid).WillReturnResult(sqlmock.NewResult(0, 2))

	if err := store.Albums().AppendSong(ctx, albumID, songID); err != nil {
		t.Fatalf("AppendSong() error = %v", err)
	}
	if err := store.Albums().RemoveSong(ctx, albumID, songID); err != nil {
		t.Fatalf("RemoveSong() error = %v", err)
	}
	if err := store.Albums().RemoveSongEverywhere(ctx, songID); err != nil {
		t.Fatalf("RemoveSongEverywhere() error = %v", err)
	}
}

func TestSongAddLikesReturnsCounter(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t)
	id := uuid.New()
	stmt := sqlLike(`UPDATE "songs" SET "likes_count"=likes_count + $1 WHERE`, `"id" = $2`, `RETURNING "likes_count"`)

	mock.ExpectQuery(stmt).WithArgs(1, id.String()).
		WillReturnRows(sqlmock.NewRows([]string{"likes_count"}).AddRow(4))
	mock.ExpectQuery(stmt).WithArgs(-1, id.String()).
		WillReturnRows(sqlmock.NewRows([]string{"likes_count"}))

	n, err := store.Songs().AddLikes(ctx, id, 1)
	if err != nil || n != 4 {
		t.Fatalf("AddLikes() = %d, %v; want 4", n, err)
	}
	if _, err := store.Songs().AddLikes(ctx, id, -1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("AddLikes(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUserWritesTouchOnlyTheirColumns(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t)
	id := uuid.New()
	end := time.Now().Add(30 * 24 * time.Hour)

	mock.ExpectExec(sqlLike(`UPDATE "users" SET "full_name"=$1,"updated_at"=$2 WHERE id = $3`)).
		WithArgs("Hà My", sqlmock.AnyArg(), id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sqlLike(`UPDATE "users" SET "password"=$1,"updated_at"=$2 WHERE id = $3`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(sqlLike(`UPDATE "users" SET "artist_subscription_current_period_end"=$1,"artist_subscription_last_payment_at"=$2,"artist_subscription_plan"=$3,"artist_subscription_status"=$4,"is_artist"=$5,"updated_at"=$6 WHERE id = $7`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	name := "Hà My"
	if err := store.Users().UpdateProfile(ctx, id, ProfileUpdate{FullName: &name}); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if err := store.Users().UpdateProfile(ctx, id, ProfileUpdate{}); err != nil {
		t.Fatalf("empty UpdateProfile() error = %v", err)
	}
	if err := store.Users().UpdatePassword(ctx, id, "hash"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}
	sub := models.ArtistSubscription{Plan: models.PlanArtist1M, Status: models.SubscriptionActive, CurrentPeriodEnd: &end}
	if err := store.Users().ActivateArtist(ctx, id, sub); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ActivateArtist(missing) error = %v, want ErrNotFound", err)
	}
}
