package model

import "time"

// Review mirrors the `reviews` table.  A review may optionally
// reference the booking it resulted from; at most one review can
// reference any given booking, enforced by a unique index on
// booking_id.  When a booking is referenced it must belong to the
// same user and the same restaurant as the review.
type Review struct {
	ID           uint64    // reviews.id
	UserID       uint64    // reviews.user_id
	RestaurantID uint64    // reviews.restaurant_id
	BookingID    *uint64   // reviews.booking_id (nullable, unique)
	Rating       int       // reviews.rating (1–5)
	Comment      *string   // reviews.comment (nullable, ≤1000 chars)
	CreatedAt    time.Time // reviews.created_at
}
