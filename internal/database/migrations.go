package database

import (
	"context"
	"database/sql"
	"strings"
)

// schemaSQL holds the full schema as idempotent CREATE TABLE IF NOT
// EXISTS statements.  The bookings table carries active_slot, a
// generated column that is NULL unless the booking is pending or
// confirmed with an assigned table; the unique index on it is the
// storage-level backstop that makes the engine's check-then-act
// sequence safe under concurrent load.  MySQL unique indexes admit
// any number of NULLs, so unassigned and terminal bookings never
// collide.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
	email VARCHAR(255) NOT NULL,
	name VARCHAR(100) NOT NULL DEFAULT '',
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(16) NOT NULL DEFAULT 'USER',
	is_active TINYINT(1) NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	PRIMARY KEY (id),
	UNIQUE KEY uniq_users_email (email)
);

CREATE TABLE IF NOT EXISTS refresh_tokens (
	id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
	user_id BIGINT UNSIGNED NOT NULL,
	token_hash CHAR(64) NOT NULL,
	expires_at DATETIME NOT NULL,
	revoked_at DATETIME NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (id),
	KEY idx_refresh_tokens_hash (token_hash),
	CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS cuisines (
	id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
	name VARCHAR(100) NOT NULL,
	description TEXT NULL,
	image_url VARCHAR(512) NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (id),
	UNIQUE KEY uniq_cuisines_name (name)
);

CREATE TABLE IF NOT EXISTS restaurants (
	id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
	name VARCHAR(100) NOT NULL,
	description TEXT NULL,
	address VARCHAR(200) NOT NULL,
	city VARCHAR(100) NOT NULL,
	phone VARCHAR(32) NULL,
	email VARCHAR(255) NULL,
	cuisine_id BIGINT UNSIGNED NULL,
	image_url VARCHAR(512) NULL,
	rating DECIMAL(2,1) NOT NULL DEFAULT 0.0,
	price_range TINYINT NOT NULL DEFAULT 2,
	opening_time CHAR(5) NOT NULL DEFAULT '09:00',
	closing_time CHAR(5) NOT NULL DEFAULT '22:00',
	is_active TINYINT(1) NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	PRIMARY KEY (id),
	UNIQUE KEY uniq_restaurants_name (name),
	KEY idx_restaurants_city (city),
	CONSTRAINT fk_restaurants_cuisine FOREIGN KEY (cuisine_id) REFERENCES cuisines(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS restaurant_tables (
	id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
	restaurant_id BIGINT UNSIGNED NOT NULL,
	table_number INT NOT NULL,
	capacity INT NOT NULL,
	location VARCHAR(100) NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (id),
	UNIQUE KEY uniq_tables_restaurant_number (restaurant_id, table_number),
	CONSTRAINT fk_tables_restaurant FOREIGN KEY (restaurant_id) REFERENCES restaurants(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
	user_id BIGINT UNSIGNED NOT NULL,
	restaurant_id BIGINT UNSIGNED NOT NULL,
	table_id BIGINT UNSIGNED NULL,
	booking_date CHAR(10) NOT NULL,
	booking_time CHAR(5) NOT NULL,
	party_size INT NOT NULL,
	special_requests VARCHAR(500) NULL,
	status VARCHAR(16) NOT NULL DEFAULT 'pending',
	active_slot VARCHAR(64) GENERATED ALWAYS AS (
		IF(status IN ('pending','confirmed') AND table_id IS NOT NULL,
		   CONCAT(table_id, '|', booking_date, '|', booking_time), NULL)
	) STORED,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	PRIMARY KEY (id),
	UNIQUE KEY uniq_bookings_active_slot (active_slot),
	KEY idx_bookings_user (user_id),
	KEY idx_bookings_restaurant (restaurant_id),
	CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users(id),
	CONSTRAINT fk_bookings_restaurant FOREIGN KEY (restaurant_id) REFERENCES restaurants(id),
	CONSTRAINT fk_bookings_table FOREIGN KEY (table_id) REFERENCES restaurant_tables(id)
);

CREATE TABLE IF NOT EXISTS reviews (
	id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
	user_id BIGINT UNSIGNED NOT NULL,
	restaurant_id BIGINT UNSIGNED NOT NULL,
	booking_id BIGINT UNSIGNED NULL,
	rating INT NOT NULL,
	comment VARCHAR(1000) NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (id),
	UNIQUE KEY uniq_reviews_booking (booking_id),
	KEY idx_reviews_restaurant (restaurant_id),
	CONSTRAINT fk_reviews_user FOREIGN KEY (user_id) REFERENCES users(id),
	CONSTRAINT fk_reviews_restaurant FOREIGN KEY (restaurant_id) REFERENCES restaurants(id),
	CONSTRAINT fk_reviews_booking FOREIGN KEY (booking_id) REFERENCES bookings(id)
);
`

// Migrate applies the schema statement by statement.  The MySQL
// driver runs with multi-statements disabled, so the script is split
// on semicolons here.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
