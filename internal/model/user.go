package model

import "time"

// Role values carried in the JWT "role" claim.  Anonymous requests
// carry no principal at all and are rejected by middleware before any
// booking operation.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents an application user record as stored in the `users`
// table.  The json tags are omitted because these structs are used
// internally by the repository layer; handlers define separate
// response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  Name         – display name shown next to reviews.
//  PasswordHash – bcrypt hashed password.
//  Role         – USER or ADMIN.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	Name         string    // users.name
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only a
// SHA-256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
