package booking

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// The in-memory schema mirrors the MySQL one; the partial unique index
// plays the role of the generated active_slot column so slot
// uniqueness is enforced for pending and confirmed bookings only.
const testSchema = `
CREATE TABLE restaurants (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    name         TEXT NOT NULL UNIQUE,
    description  TEXT,
    address      TEXT NOT NULL,
    city         TEXT NOT NULL,
    phone        TEXT,
    email        TEXT,
    cuisine_id   INTEGER,
    image_url    TEXT,
    rating       REAL NOT NULL DEFAULT 0,
    price_range  INTEGER NOT NULL DEFAULT 2,
    opening_time TEXT NOT NULL DEFAULT '09:00',
    closing_time TEXT NOT NULL DEFAULT '23:00',
    is_active    INTEGER NOT NULL DEFAULT 1,
    created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE restaurant_tables (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    restaurant_id INTEGER NOT NULL,
    table_number  INTEGER NOT NULL,
    capacity      INTEGER NOT NULL,
    location      TEXT,
    created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (restaurant_id, table_number)
);

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

type fixture struct {
	db     *sql.DB
	engine *Engine
	restID uint64
	tblID  uint64 // capacity 4
	bigID  uint64 // capacity 8
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	res, err := db.Exec(`INSERT INTO restaurants (name, address, city) VALUES ('Trattoria Nonna', '1 Via Roma', 'Florence')`)
	require.NoError(t, err)
	restID, _ := res.LastInsertId()

	res, err = db.Exec(`INSERT INTO restaurant_tables (restaurant_id, table_number, capacity) VALUES (?, 1, 4)`, restID)
	require.NoError(t, err)
	tblID, _ := res.LastInsertId()

	res, err = db.Exec(`INSERT INTO restaurant_tables (restaurant_id, table_number, capacity) VALUES (?, 2, 8)`, restID)
	require.NoError(t, err)
	bigID, _ := res.LastInsertId()

	engine := NewEngine(db,
		repository.NewBookingRepo(db),
		repository.NewRestaurantRepo(db),
		repository.NewTableRepo(db))
	engine.now = func() time.Time {
		return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	}

	return &fixture{
		db:     db,
		engine: engine,
		restID: uint64(restID),
		tblID:  uint64(tblID),
		bigID:  uint64(bigID),
	}
}

func (f *fixture) create(t *testing.T, actor Actor, tableID *uint64, date, clock string, party int) *model.Booking {
	t.Helper()
	b, err := f.engine.Create(context.Background(), actor, CreateRequest{
		RestaurantID: f.restID,
		TableID:      tableID,
		BookingDate:  date,
		BookingTime:  clock,
		PartySize:    party,
	})
	require.NoError(t, err)
	return b
}

var (
	alice = Actor{UserID: 1, Role: model.RoleUser}
	bob   = Actor{UserID: 2, Role: model.RoleUser}
	staff = Actor{UserID: 9, Role: model.RoleAdmin}
)

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)

	b := f.create(t, alice, &f.tblID, "2026-09-10", "9:30", 2)

	assert.NotZero(t, b.ID)
	assert.Equal(t, alice.UserID, b.UserID)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Equal(t, "09:30", b.BookingTime, "single-digit hour is zero padded")
	assert.Equal(t, "2026-09-10", b.BookingDate)
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"bad date", CreateRequest{RestaurantID: f.restID, BookingDate: "10/09/2026", BookingTime: "19:00", PartySize: 2}, repository.ErrInvalidInput},
		{"bad time", CreateRequest{RestaurantID: f.restID, BookingDate: "2026-09-10", BookingTime: "25:00", PartySize: 2}, repository.ErrInvalidInput},
		{"party too small", CreateRequest{RestaurantID: f.restID, BookingDate: "2026-09-10", BookingTime: "19:00", PartySize: 0}, repository.ErrInvalidInput},
		{"party too large", CreateRequest{RestaurantID: f.restID, BookingDate: "2026-09-10", BookingTime: "19:00", PartySize: 21}, repository.ErrInvalidInput},
		{"missing restaurant", CreateRequest{RestaurantID: 999, BookingDate: "2026-09-10", BookingTime: "19:00", PartySize: 2}, repository.ErrRestaurantNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.Create(ctx, alice, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("boundary party sizes pass", func(t *testing.T) {
		b := f.create(t, alice, nil, "2026-09-10", "19:00", 1)
		assert.Equal(t, 1, b.PartySize)
		b = f.create(t, alice, nil, "2026-09-10", "20:00", 20)
		assert.Equal(t, 20, b.PartySize)
	})
}

func TestCreateBookingInactiveRestaurant(t *testing.T) {
	f := newFixture(t)
	_, err := f.db.Exec(`UPDATE restaurants SET is_active = 0 WHERE id = ?`, f.restID)
	require.NoError(t, err)

	_, err = f.engine.Create(context.Background(), alice, CreateRequest{
		RestaurantID: f.restID, BookingDate: "2026-09-10", BookingTime: "19:00", PartySize: 2,
	})
	assert.ErrorIs(t, err, repository.ErrRestaurantNotFound)
}

func TestCreateBookingTableChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unknown table", func(t *testing.T) {
		missing := uint64(999)
		_, err := f.engine.Create(ctx, alice, CreateRequest{
			RestaurantID: f.restID, TableID: &missing,
			BookingDate: "2026-09-10", BookingTime: "19:00", PartySize: 2,
		})
		assert.ErrorIs(t, err, repository.ErrTableNotFound)
	})

	t.Run("capacity exceeded", func(t *testing.T) {
		_, err := f.engine.Create(ctx, alice, CreateRequest{
			RestaurantID: f.restID, TableID: &f.tblID,
			BookingDate: "2026-09-10", BookingTime: "19:00", PartySize: 6,
		})
		assert.ErrorIs(t, err, repository.ErrCapacityExceeded)
	})
}

func TestSlotConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t, alice, &f.tblID, "2026-09-10", "19:00", 2)

	t.Run("same slot is taken", func(t *testing.T) {
		_, err := f.engine.Create(ctx, bob, CreateRequest{
			RestaurantID: f.restID, TableID: &f.tblID,
			BookingDate: "2026-09-10", BookingTime: "19:00", PartySize: 2,
		})
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("unpadded time hits the same slot", func(t *testing.T) {
		f.create(t, alice, &f.tblID, "2026-09-10", "09:30", 2)
		_, err := f.engine.Create(ctx, bob, CreateRequest{
			RestaurantID: f.restID, TableID: &f.tblID,
			BookingDate: "2026-09-10", BookingTime: "9:30", PartySize: 2,
		})
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("different time is free", func(t *testing.T) {
		f.create(t, bob, &f.tblID, "2026-09-10", "21:00", 2)
	})

	t.Run("different table is free", func(t *testing.T) {
		f.create(t, bob, &f.bigID, "2026-09-10", "19:00", 2)
	})

	t.Run("unassigned bookings never conflict", func(t *testing.T) {
		f.create(t, alice, nil, "2026-09-10", "19:00", 2)
		f.create(t, bob, nil, "2026-09-10", "19:00", 2)
	})
}

func TestCancelledSlotIsFreed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.create(t, alice, &f.tblID, "2026-09-10", "19:00", 2)
	require.NoError(t, f.engine.Cancel(ctx, alice, first.ID))

	// The slot opens up once the holder is cancelled.
	second := f.create(t, bob, &f.tblID, "2026-09-10", "19:00", 2)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestGetBookingOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.create(t, alice, nil, "2026-09-10", "19:00", 2)

	got, err := f.engine.Get(ctx, alice, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = f.engine.Get(ctx, bob, b.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	_, err = f.engine.Get(ctx, staff, b.ID)
	assert.NoError(t, err)

	_, err = f.engine.Get(ctx, alice, 12345)
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
}

func TestUpdateBookingFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.create(t, alice, &f.tblID, "2026-09-10", "19:00", 2)

	party := 3
	notes := "window seat please"
	updated, err := f.engine.Update(ctx, alice, b.ID, UpdateRequest{
		PartySize:       &party,
		SpecialRequests: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.PartySize)
	require.NotNil(t, updated.SpecialRequests)
	assert.Equal(t, notes, *updated.SpecialRequests)
	assert.Equal(t, "19:00", updated.BookingTime, "unpatched fields keep their values")

	cleared, err := f.engine.Update(ctx, alice, b.ID, UpdateRequest{ClearSpecialRequests: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.SpecialRequests)
	assert.Equal(t, 3, cleared.PartySize, "clearing the note leaves other fields alone")
}

func TestUpdateBookingSlotChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.create(t, alice, &f.tblID, "2026-09-10", "19:00", 2)
	f.create(t, bob, &f.tblID, "2026-09-10", "21:00", 2)

	t.Run("own slot does not conflict with itself", func(t *testing.T) {
		party := 4
		_, err := f.engine.Update(ctx, alice, b.ID, UpdateRequest{PartySize: &party})
		assert.NoError(t, err)
	})

	t.Run("moving onto an occupied slot conflicts", func(t *testing.T) {
		clock := "21:00"
		_, err := f.engine.Update(ctx, alice, b.ID, UpdateRequest{BookingTime: &clock})
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("moving to a free slot succeeds", func(t *testing.T) {
		clock := "22:00"
		updated, err := f.engine.Update(ctx, alice, b.ID, UpdateRequest{BookingTime: &clock})
		require.NoError(t, err)
		assert.Equal(t, "22:00", updated.BookingTime)
	})

	t.Run("growing the party past capacity fails", func(t *testing.T) {
		party := 6
		_, err := f.engine.Update(ctx, alice, b.ID, UpdateRequest{PartySize: &party})
		assert.ErrorIs(t, err, repository.ErrCapacityExceeded)
	})

	t.Run("clearing the table skips slot checks", func(t *testing.T) {
		updated, err := f.engine.Update(ctx, alice, b.ID, UpdateRequest{ClearTable: true})
		require.NoError(t, err)
		assert.Nil(t, updated.TableID)
	})
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.create(t, alice, &f.tblID, "2026-09-10", "19:00", 2)

	t.Run("owner cannot confirm", func(t *testing.T) {
		status := model.StatusConfirmed
		_, err := f.engine.Update(ctx, alice, b.ID, UpdateRequest{Status: &status})
		assert.ErrorIs(t, err, repository.ErrForbidden)
	})

	t.Run("stranger cannot touch", func(t *testing.T) {
		status := model.StatusCancelled
		_, err := f.engine.Update(ctx, bob, b.ID, UpdateRequest{Status: &status})
		assert.ErrorIs(t, err, repository.ErrForbidden)
	})

	t.Run("admin confirms", func(t *testing.T) {
		status := model.StatusConfirmed
		updated, err := f.engine.Update(ctx, staff, b.ID, UpdateRequest{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, model.StatusConfirmed, updated.Status)
	})

	t.Run("admin completes", func(t *testing.T) {
		status := model.StatusCompleted
		updated, err := f.engine.Update(ctx, staff, b.ID, UpdateRequest{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, updated.Status)
	})

	t.Run("owner cannot modify a terminal booking", func(t *testing.T) {
		party := 3
		_, err := f.engine.Update(ctx, alice, b.ID, UpdateRequest{PartySize: &party})
		assert.ErrorIs(t, err, repository.ErrInvalidState)
	})

	t.Run("admin cannot leave a terminal status", func(t *testing.T) {
		status := model.StatusPending
		_, err := f.engine.Update(ctx, staff, b.ID, UpdateRequest{Status: &status})
		assert.ErrorIs(t, err, repository.ErrInvalidTransition)
	})

	t.Run("admin edits non-status fields of a completed booking", func(t *testing.T) {
		party := 3
		updated, err := f.engine.Update(ctx, staff, b.ID, UpdateRequest{PartySize: &party})
		require.NoError(t, err)
		assert.Equal(t, 3, updated.PartySize)
		assert.Equal(t, model.StatusCompleted, updated.Status, "status is untouched")
	})
}

func TestCancelIsSoft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.create(t, alice, &f.tblID, "2026-09-10", "19:00", 2)
	require.NoError(t, f.engine.Cancel(ctx, alice, b.ID))

	got, err := f.engine.Get(ctx, alice, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, got.Status, "record survives cancellation")

	// Cancelling twice is not a valid edge for the owner.
	err = f.engine.Cancel(ctx, alice, b.ID)
	assert.ErrorIs(t, err, repository.ErrInvalidState)
}

func TestListScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t, alice, nil, "2026-09-10", "19:00", 2)
	f.create(t, alice, nil, "2026-09-11", "19:00", 2)
	f.create(t, bob, nil, "2026-09-12", "19:00", 2)

	mine, err := f.engine.List(ctx, alice, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, b := range mine {
		assert.Equal(t, alice.UserID, b.UserID)
	}

	// Non-admin filters never widen visibility.
	mine, err = f.engine.List(ctx, alice, ListFilter{RestaurantID: f.restID})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := f.engine.List(ctx, staff, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "2026-09-12", all[0].BookingDate, "newest booking date first")

	_, err = f.engine.List(ctx, staff, ListFilter{Status: "bogus"})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestUniqueIndexBackstop(t *testing.T) {
	f := newFixture(t)

	f.create(t, alice, &f.tblID, "2026-09-10", "19:00", 2)

	// Insert around the engine to simulate a concurrent writer racing
	// past the availability check; the index itself must refuse it.
	_, err := f.db.Exec(
		`INSERT INTO bookings (user_id, restaurant_id, table_id, booking_date, booking_time, party_size, status)
         VALUES (?, ?, ?, '2026-09-10', '19:00', 2, 'pending')`,
		bob.UserID, f.restID, f.tblID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE")
}
