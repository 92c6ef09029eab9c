package model

import "time"

// Cuisine mirrors the `cuisines` table.  Cuisine names are unique;
// inserting a duplicate surfaces as a conflict to the caller.
type Cuisine struct {
	ID          uint64    // cuisines.id
	Name        string    // cuisines.name (unique)
	Description *string   // cuisines.description (nullable)
	ImageURL    *string   // cuisines.image_url (nullable)
	CreatedAt   time.Time // cuisines.created_at
}
