// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a table booking is confirmed
// by staff.  It contains enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary
// database.
type BookingConfirmedEvent struct {
	BookingID      uint64 `json:"booking_id"`
	UserID         uint64 `json:"user_id"`
	RestaurantID   uint64 `json:"restaurant_id"`
	RestaurantName string `json:"restaurant_name"`
	TableNumber    int    `json:"table_number,omitempty"`
	BookingDate    string `json:"booking_date"`
	BookingTime    string `json:"booking_time"`
	PartySize      int    `json:"party_size"`
	ConfirmedAt    string `json:"confirmed_at"`
}
