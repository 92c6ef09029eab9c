package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ErrTableNotFound is returned when no table exists for the requested
// id, or when the table does not belong to the expected restaurant.
var ErrTableNotFound = errors.New("table not found")

// TableRepo provides persistence for restaurant tables.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a new TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

const tableColumns = `id, restaurant_id, table_number, capacity, location, created_at`

func scanTable(s scanner) (*model.Table, error) {
	var (
		t        model.Table
		location sql.NullString
	)
	err := s.Scan(&t.ID, &t.RestaurantID, &t.TableNumber, &t.Capacity, &location, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if location.Valid {
		v := location.String
		t.Location = &v
	}
	return &t, nil
}

// GetForRestaurantTx resolves a table and verifies in the same query
// that it belongs to the given restaurant.  A table of a different
// restaurant is indistinguishable from a missing one to the caller.
func (r *TableRepo) GetForRestaurantTx(ctx context.Context, tx *sql.Tx, tableID, restaurantID uint64) (*model.Table, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+tableColumns+` FROM restaurant_tables WHERE id = ? AND restaurant_id = ?`,
		tableID, restaurantID)
	t, err := scanTable(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTableNotFound
	}
	return t, err
}

// ListByRestaurant returns all tables of a restaurant ordered by
// table number.
func (r *TableRepo) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]model.Table, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tableColumns+` FROM restaurant_tables WHERE restaurant_id = ? ORDER BY table_number`,
		restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a table for a restaurant.  A duplicate table number
// within the restaurant is surfaced as ErrConflict.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO restaurant_tables (restaurant_id, table_number, capacity, location) VALUES (?, ?, ?, ?)`,
		t.RestaurantID, t.TableNumber, t.Capacity, nullableString(t.Location))
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
	t.ID = uint64(id)
	return nil
}

// Update rewrites a table's number, capacity and location.
func (r *TableRepo) Update(ctx context.Context, t *model.Table) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE restaurant_tables SET table_number = ?, capacity = ?, location = ? WHERE id = ? AND restaurant_id = ?`,
		t.TableNumber, t.Capacity, nullableString(t.Location), t.ID, t.RestaurantID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTableNotFound
	}
	return nil
}

// Delete removes a table when it has no active bookings; otherwise it
// returns ErrConflict so history behind pending or confirmed bookings
// is never orphaned.
func (r *TableRepo) Delete(ctx context.Context, tableID, restaurantID uint64) error {
	var active int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM bookings WHERE table_id = ? AND status IN ('pending', 'confirmed')`,
		tableID).Scan(&active)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM restaurant_tables WHERE id = ? AND restaurant_id = ?`, tableID, restaurantID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTableNotFound
	}
	return nil
}
