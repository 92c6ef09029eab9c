package repository

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

const bookingTestSchema = `
CREATE TABLE bookings (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id          INTEGER NOT NULL,
    restaurant_id    INTEGER NOT NULL,
    table_id         INTEGER,
    booking_date     TEXT NOT NULL,
    booking_time     TEXT NOT NULL,
    party_size       INTEGER NOT NULL,
    special_requests TEXT,
    status           TEXT NOT NULL DEFAULT 'pending',
    created_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX uniq_bookings_active_slot
    ON bookings (table_id, booking_date, booking_time)
    WHERE status IN ('pending', 'confirmed') AND table_id IS NOT NULL;
`

func newBookingDB(t *testing.T) (*sql.DB, *BookingRepo) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	_, err = db.Exec(bookingTestSchema)
	require.NoError(t, err)
	return db, NewBookingRepo(db)
}

func insertBooking(t *testing.T, repo *BookingRepo, b *model.Booking) *model.Booking {
	t.Helper()
	tx, err := repo.DB().Begin()
	require.NoError(t, err)
	require.NoError(t, repo.CreateTx(context.Background(), tx, b))
	require.NoError(t, tx.Commit())
	return b
}

func tableRef(id uint64) *uint64 { return &id }

func TestBookingCreateAndGet(t *testing.T) {
	_, repo := newBookingDB(t)
	ctx := context.Background()

	notes := "gluten free"
	b := insertBooking(t, repo, &model.Booking{
		UserID: 1, RestaurantID: 1, TableID: tableRef(5),
		BookingDate: "2026-09-10", BookingTime: "19:00",
		PartySize: 2, SpecialRequests: &notes, Status: model.StatusPending,
	})
	assert.NotZero(t, b.ID)
	assert.False(t, b.CreatedAt.IsZero(), "timestamps come back from the insert re-read")

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	require.NotNil(t, got.TableID)
	assert.Equal(t, uint64(5), *got.TableID)
	require.NotNil(t, got.SpecialRequests)
	assert.Equal(t, notes, *got.SpecialRequests)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestBookingCreateDuplicateSlot(t *testing.T) {
	_, repo := newBookingDB(t)
	ctx := context.Background()

	insertBooking(t, repo, &model.Booking{
		UserID: 1, RestaurantID: 1, TableID: tableRef(5),
		BookingDate: "2026-09-10", BookingTime: "19:00",
		PartySize: 2, Status: model.StatusPending,
	})

	tx, err := repo.DB().Begin()
	require.NoError(t, err)
	defer tx.Rollback()
	err = repo.CreateTx(ctx, tx, &model.Booking{
		UserID: 2, RestaurantID: 1, TableID: tableRef(5),
		BookingDate: "2026-09-10", BookingTime: "19:00",
		PartySize: 2, Status: model.StatusPending,
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestFindConflictStatusFiltering(t *testing.T) {
	db, repo := newBookingDB(t)
	ctx := context.Background()

	find := func(tableID uint64, exclude uint64) *model.Booking {
		tx, err := db.Begin()
		require.NoError(t, err)
		defer tx.Rollback()
		b, err := repo.FindConflictTx(ctx, tx, tableID, "2026-09-10", "19:00", exclude)
		require.NoError(t, err)
		return b
	}

	assert.Nil(t, find(5, 0), "empty table has no conflict")

	holder := insertBooking(t, repo, &model.Booking{
		UserID: 1, RestaurantID: 1, TableID: tableRef(5),
		BookingDate: "2026-09-10", BookingTime: "19:00",
		PartySize: 2, Status: model.StatusPending,
	})
	require.NotNil(t, find(5, 0), "pending booking occupies the slot")
	assert.Nil(t, find(5, holder.ID), "own id is excluded")

	// Terminal statuses release the slot.
	for _, status := range []string{model.StatusCancelled, model.StatusCompleted} {
		_, err := db.Exec(`UPDATE bookings SET status = ? WHERE id = ?`, status, holder.ID)
		require.NoError(t, err)
		assert.Nil(t, find(5, 0), status)
	}

	_, err := db.Exec(`UPDATE bookings SET status = ? WHERE id = ?`, model.StatusConfirmed, holder.ID)
	require.NoError(t, err)
	assert.NotNil(t, find(5, 0), "confirmed booking occupies the slot")
}

func TestBookingUpdateTx(t *testing.T) {
	_, repo := newBookingDB(t)
	ctx := context.Background()

	b := insertBooking(t, repo, &model.Booking{
		UserID: 1, RestaurantID: 1, TableID: tableRef(5),
		BookingDate: "2026-09-10", BookingTime: "19:00",
		PartySize: 2, Status: model.StatusPending,
	})

	b.PartySize = 4
	b.Status = model.StatusConfirmed
	b.TableID = nil

	tx, err := repo.DB().Begin()
	require.NoError(t, err)
	require.NoError(t, repo.UpdateTx(ctx, tx, b, "2026-09-01 12:00:00"))
	require.NoError(t, tx.Commit())

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.PartySize)
	assert.Equal(t, model.StatusConfirmed, got.Status)
	assert.Nil(t, got.TableID)
	assert.Equal(t, 2026, got.UpdatedAt.Year())
}

func TestBookingList(t *testing.T) {
	_, repo := newBookingDB(t)
	ctx := context.Background()

	seed := []struct {
		user   uint64
		rest   uint64
		date   string
		status string
	}{
		{1, 1, "2026-09-10", model.StatusPending},
		{1, 2, "2026-09-12", model.StatusConfirmed},
		{2, 1, "2026-09-11", model.StatusCancelled},
	}
	for i, s := range seed {
		insertBooking(t, repo, &model.Booking{
			UserID: s.user, RestaurantID: s.rest, TableID: tableRef(uint64(10 + i)),
			BookingDate: s.date, BookingTime: "19:00",
			PartySize: 2, Status: s.status,
		})
	}

	all, err := repo.List(ctx, BookingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2026-09-12", all[0].BookingDate)
	assert.Equal(t, "2026-09-11", all[1].BookingDate)
	assert.Equal(t, "2026-09-10", all[2].BookingDate)

	mine, err := repo.List(ctx, BookingFilter{UserID: 1})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	confirmed, err := repo.List(ctx, BookingFilter{Status: model.StatusConfirmed})
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, uint64(2), confirmed[0].RestaurantID)

	atFirst, err := repo.List(ctx, BookingFilter{RestaurantID: 1})
	require.NoError(t, err)
	assert.Len(t, atFirst, 2)

	paged, err := repo.List(ctx, BookingFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "2026-09-11", paged[0].BookingDate)

	none, err := repo.List(ctx, BookingFilter{UserID: 42})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
