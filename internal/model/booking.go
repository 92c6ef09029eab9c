package model

import "time"

// Booking status values.  A booking starts in StatusPending and moves
// through the transition graph enforced by the booking package.  The
// cancelled and completed states are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// IsBookingStatus reports whether s is one of the four known booking
// statuses.  Handlers use it to reject unknown values before they
// reach the engine.
func IsBookingStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// IsTerminalStatus reports whether s is a terminal booking status.
// Terminal bookings are immutable to non-admin callers.
func IsTerminalStatus(s string) bool {
	return s == StatusCancelled || s == StatusCompleted
}

// IsActiveStatus reports whether a booking in status s occupies its
// slot for conflict purposes.
func IsActiveStatus(s string) bool {
	return s == StatusPending || s == StatusConfirmed
}

// Booking records a table reservation made by a user at a restaurant.
// A booking may be placed without a specific table (TableID nil); only
// bookings with an assigned table participate in slot conflict
// detection.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – user who made the booking (the owner).
//  RestaurantID    – restaurant being booked.
//  TableID         – assigned table, if any (nullable).
//  BookingDate     – calendar date in YYYY-MM-DD form.
//  BookingTime     – wall-clock time in zero-padded HH:MM form.
//  PartySize       – number of diners (1–20).
//  SpecialRequests – free-form note from the diner (nullable, ≤500 chars).
//  Status          – pending, confirmed, cancelled or completed.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Booking struct {
	ID              uint64    // bookings.id
	UserID          uint64    // bookings.user_id
	RestaurantID    uint64    // bookings.restaurant_id
	TableID         *uint64   // bookings.table_id (nullable)
	BookingDate     string    // bookings.booking_date
	BookingTime     string    // bookings.booking_time
	PartySize       int       // bookings.party_size
	SpecialRequests *string   // bookings.special_requests (nullable)
	Status          string    // bookings.status
	CreatedAt       time.Time // bookings.created_at
	UpdatedAt       time.Time // bookings.updated_at
}
