package model

import "time"

// Restaurant mirrors the `restaurants` table.  The Rating field is a
// derived aggregate: it always holds the mean of all review ratings
// for the restaurant rounded to one decimal place, maintained by the
// rating package.  It is never set by general updates outside an
// explicit admin override.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name.
//  Description – free-form description (nullable).
//  Address     – street address.
//  City        – city name, used for public browse filtering.
//  Phone       – contact phone (nullable).
//  Email       – contact email (nullable).
//  CuisineID   – reference into the cuisines table (nullable).
//  ImageURL    – cover image URL (nullable).
//  Rating      – derived mean review rating, one decimal place.
//  PriceRange  – 1 (cheap) to 4 (expensive).
//  OpeningTime – opening wall-clock time HH:MM.
//  ClosingTime – closing wall-clock time HH:MM.
//  IsActive    – soft-delete flag; inactive restaurants are treated as
//                absent for booking purposes.
type Restaurant struct {
	ID          uint64    // restaurants.id
	Name        string    // restaurants.name
	Description *string   // restaurants.description (nullable)
	Address     string    // restaurants.address
	City        string    // restaurants.city
	Phone       *string   // restaurants.phone (nullable)
	Email       *string   // restaurants.email (nullable)
	CuisineID   *uint64   // restaurants.cuisine_id (nullable)
	ImageURL    *string   // restaurants.image_url (nullable)
	Rating      float64   // restaurants.rating (derived)
	PriceRange  int       // restaurants.price_range
	OpeningTime string    // restaurants.opening_time
	ClosingTime string    // restaurants.closing_time
	IsActive    bool      // restaurants.is_active
	CreatedAt   time.Time // restaurants.created_at
	UpdatedAt   time.Time // restaurants.updated_at
}

// Table mirrors the `restaurant_tables` table.  Every table belongs to
// exactly one restaurant; a booking with an assigned table must
// reference a table of its own restaurant with sufficient capacity.
//
// Fields:
//  ID           – primary key identifier.
//  RestaurantID – owning restaurant.
//  TableNumber  – human-readable table number unique per restaurant.
//  Capacity     – maximum party size the table seats.
//  Location     – optional placement label (window, patio, ...).
type Table struct {
	ID           uint64    // restaurant_tables.id
	RestaurantID uint64    // restaurant_tables.restaurant_id
	TableNumber  int       // restaurant_tables.table_number
	Capacity     int       // restaurant_tables.capacity
	Location     *string   // restaurant_tables.location (nullable)
	CreatedAt    time.Time // restaurant_tables.created_at
}
