package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ErrBookingNotFound is returned when no booking exists for the
// requested id.
var ErrBookingNotFound = errors.New("booking not found")

// BookingRepo provides CRUD operations for bookings.  All reads and
// writes that participate in a check-then-act sequence expose *Tx
// variants so the engine can run them against a single transaction.
// The bookings table carries a uniqueness backstop over
// (table_id, booking_date, booking_time) restricted to active
// statuses; a violation is surfaced as ErrConflict so two concurrent
// requests can never both commit an active booking for one slot.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for starting transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, user_id, restaurant_id, table_id, booking_date, booking_time,
       party_size, special_requests, status, created_at, updated_at`

// scanner abstracts *sql.Row and *sql.Rows for the shared scan path.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(s scanner) (*model.Booking, error) {
	var (
		b        model.Booking
		tableID  sql.NullInt64
		requests sql.NullString
	)
	err := s.Scan(
		&b.ID, &b.UserID, &b.RestaurantID, &tableID, &b.BookingDate, &b.BookingTime,
		&b.PartySize, &requests, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tableID.Valid {
		id := uint64(tableID.Int64)
		b.TableID = &id
	}
	if requests.Valid {
		sr := requests.String
		b.SpecialRequests = &sr
	}
	return &b, nil
}

// CreateTx inserts a new booking within the scope of an existing
// transaction and reads the full row back to populate timestamps and
// defaults.  The caller must commit or rollback the transaction.  A
// uniqueness violation on the active-slot index is returned as
// ErrConflict.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings
               (user_id, restaurant_id, table_id, booking_date, booking_time, party_size, special_requests, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.UserID, b.RestaurantID, nullableID(b.TableID), b.BookingDate, b.BookingTime,
		b.PartySize, nullableString(b.SpecialRequests), b.Status)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	fresh, err := r.getTx(ctx, tx, b.ID)
	if err != nil {
		return err
	}
	*b = *fresh
	return nil
}

// GetByID returns the booking with the given id or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// GetByIDTx is GetByID within an existing transaction.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	b, err := r.getTx(ctx, tx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

func (r *BookingRepo) getTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	return scanBooking(row)
}

// FindConflictTx implements the availability check: it returns the
// first booking with status pending or confirmed occupying the given
// (table, date, time) slot, excluding the booking being modified when
// excludeID is non-zero.  It returns (nil, nil) when the slot is
// free.  Cancelled and completed bookings free the slot, so the query
// filters by status rather than tuple-matching alone.  Read-only.
func (r *BookingRepo) FindConflictTx(ctx context.Context, tx *sql.Tx, tableID uint64, date, clock string, excludeID uint64) (*model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings
          WHERE table_id = ? AND booking_date = ? AND booking_time = ?
            AND status IN ('pending', 'confirmed')`
	args := []interface{}{tableID, date, clock}
	if excludeID != 0 {
		q += ` AND id <> ?`
		args = append(args, excludeID)
	}
	q += ` LIMIT 1`
	row := tx.QueryRowContext(ctx, q, args...)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

// UpdateTx rewrites all mutable fields of a booking within the given
// transaction and reads the row back.  updated_at is refreshed to the
// supplied UTC timestamp so the behavior is identical across MySQL
// and the SQLite used in tests.  A uniqueness violation on the
// active-slot index is returned as ErrConflict.
func (r *BookingRepo) UpdateTx(ctx context.Context, tx *sql.Tx, b *model.Booking, updatedAt string) error {
	const q = `UPDATE bookings SET
               table_id = ?, booking_date = ?, booking_time = ?, party_size = ?,
               special_requests = ?, status = ?, updated_at = ?
               WHERE id = ?`
	_, err := tx.ExecContext(ctx, q,
		nullableID(b.TableID), b.BookingDate, b.BookingTime, b.PartySize,
		nullableString(b.SpecialRequests), b.Status, updatedAt, b.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	fresh, err := r.getTx(ctx, tx, b.ID)
	if err != nil {
		return err
	}
	*b = *fresh
	return nil
}

// BookingFilter narrows List results.  A zero UserID means no owner
// scoping (admin); zero RestaurantID and empty Status skip those
// filters.  Limit is applied as given; callers cap it.
type BookingFilter struct {
	UserID       uint64
	RestaurantID uint64
	Status       string
	Limit        int
	Offset       int
}

// List returns bookings matching the filter ordered by booking_date
// descending, newest dates first.  ISO dates compare correctly as
// strings.  When no bookings match, an empty slice is returned.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.RestaurantID != 0 {
		where = append(where, "restaurant_id = ?")
		args = append(args, f.RestaurantID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	q := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY booking_date DESC, id DESC`
	if f.Limit > 0 {
		q += ` LIMIT ` + strconv.Itoa(f.Limit)
		if f.Offset > 0 {
			q += ` OFFSET ` + strconv.Itoa(f.Offset)
		}
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullableID(v *uint64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
