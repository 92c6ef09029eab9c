package repository

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ReviewRepo provides persistence for reviews.  The reviews table
// carries a unique index on booking_id so no two reviews can ever
// reference the same booking; a violation is surfaced as ErrConflict.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo returns a new ReviewRepo bound to the given database.
func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// DB exposes the underlying handle for starting transactions.
func (r *ReviewRepo) DB() *sql.DB { return r.db }

const reviewColumns = `id, user_id, restaurant_id, booking_id, rating, comment, created_at`

func scanReview(s scanner) (*model.Review, error) {
	var (
		rev       model.Review
		bookingID sql.NullInt64
		comment   sql.NullString
	)
	err := s.Scan(&rev.ID, &rev.UserID, &rev.RestaurantID, &bookingID, &rev.Rating, &comment, &rev.CreatedAt)
	if err != nil {
		return nil, err
	}
	if bookingID.Valid {
		v := uint64(bookingID.Int64)
		rev.BookingID = &v
	}
	if comment.Valid {
		v := comment.String
		rev.Comment = &v
	}
	return &rev, nil
}

// CreateTx inserts a review within the scope of an existing
// transaction so the caller can recompute the restaurant rating in
// the same unit of work.  A duplicate booking reference is returned
// as ErrConflict.
func (r *ReviewRepo) CreateTx(ctx context.Context, tx *sql.Tx, rev *model.Review) error {
	const q = `INSERT INTO reviews (user_id, restaurant_id, booking_id, rating, comment) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		rev.UserID, rev.RestaurantID, nullableID(rev.BookingID), rev.Rating, nullableString(rev.Comment))
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
	rev.ID = uint64(id)
	row := tx.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, rev.ID)
	fresh, err := scanReview(row)
	if err != nil {
		return err
	}
	*rev = *fresh
	return nil
}

// ExistsForBookingTx reports whether any review already references
// the given booking.
func (r *ReviewRepo) ExistsForBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM reviews WHERE booking_id = ?`, bookingID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ReviewFilter narrows List results.  Zero values skip the filter.
type ReviewFilter struct {
	RestaurantID uint64
	UserID       uint64
	Limit        int
	Offset       int
}

// List returns reviews matching the filter ordered newest first.
func (r *ReviewRepo) List(ctx context.Context, f ReviewFilter) ([]model.Review, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.RestaurantID != 0 {
		where = append(where, "restaurant_id = ?")
		args = append(args, f.RestaurantID)
	}
	if f.UserID != 0 {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	q := `SELECT ` + reviewColumns + ` FROM reviews`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, id DESC`
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
	out := make([]model.Review, 0)
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
