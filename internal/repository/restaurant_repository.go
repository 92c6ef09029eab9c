package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ErrRestaurantNotFound is returned when no restaurant exists for the
// requested id, or when the restaurant is inactive and the caller
// asked for an active one.  Inactive restaurants are treated as
// absent for booking purposes.
var ErrRestaurantNotFound = errors.New("restaurant not found")

// RestaurantRepo provides persistence for restaurants.  The rating
// column is derived and is written only by the rating package and by
// explicit admin overrides through Update.
type RestaurantRepo struct {
	db *sql.DB
}

// NewRestaurantRepo returns a new RestaurantRepo bound to the given database.
func NewRestaurantRepo(db *sql.DB) *RestaurantRepo { return &RestaurantRepo{db: db} }

// DB exposes the underlying handle for starting transactions.
func (r *RestaurantRepo) DB() *sql.DB { return r.db }

const restaurantColumns = `id, name, description, address, city, phone, email, cuisine_id,
       image_url, rating, price_range, opening_time, closing_time, is_active, created_at, updated_at`

func scanRestaurant(s scanner) (*model.Restaurant, error) {
	var (
		rest      model.Restaurant
		desc      sql.NullString
		phone     sql.NullString
		email     sql.NullString
		cuisineID sql.NullInt64
		imageURL  sql.NullString
	)
	err := s.Scan(
		&rest.ID, &rest.Name, &desc, &rest.Address, &rest.City, &phone, &email, &cuisineID,
		&imageURL, &rest.Rating, &rest.PriceRange, &rest.OpeningTime, &rest.ClosingTime,
		&rest.IsActive, &rest.CreatedAt, &rest.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		v := desc.String
		rest.Description = &v
	}
	if phone.Valid {
		v := phone.String
		rest.Phone = &v
	}
	if email.Valid {
		v := email.String
		rest.Email = &v
	}
	if cuisineID.Valid {
		v := uint64(cuisineID.Int64)
		rest.CuisineID = &v
	}
	if imageURL.Valid {
		v := imageURL.String
		rest.ImageURL = &v
	}
	return &rest, nil
}

// GetByID returns the restaurant with the given id regardless of its
// active flag, or ErrRestaurantNotFound.
func (r *RestaurantRepo) GetByID(ctx context.Context, id uint64) (*model.Restaurant, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id = ?`, id)
	rest, err := scanRestaurant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRestaurantNotFound
	}
	return rest, err
}

// GetActiveTx returns the restaurant only when it exists and is
// active.  The booking engine uses this inside its transaction so an
// inactive restaurant fails the same way as a missing one.
func (r *RestaurantRepo) GetActiveTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Restaurant, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = ? AND is_active = ?`, id, true)
	rest, err := scanRestaurant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRestaurantNotFound
	}
	return rest, err
}

// RestaurantFilter narrows List results for public browsing.
type RestaurantFilter struct {
	City      string
	CuisineID uint64
	Search    string
	Limit     int
	Offset    int
}

// List returns active restaurants matching the filter ordered by
// rating descending then name.  Search matches name or description
// with a LIKE pattern.
func (r *RestaurantRepo) List(ctx context.Context, f RestaurantFilter) ([]model.Restaurant, error) {
	where := []string{"is_active = ?"}
	args := []interface{}{true}
	if f.City != "" {
		where = append(where, "LOWER(city) = LOWER(?)")
		args = append(args, f.City)
	}
	if f.CuisineID != 0 {
		where = append(where, "cuisine_id = ?")
		args = append(args, f.CuisineID)
	}
	if f.Search != "" {
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)")
		pat := "%" + strings.ToLower(f.Search) + "%"
		args = append(args, pat, pat)
	}
	q := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY rating DESC, name ASC`
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
	out := make([]model.Restaurant, 0)
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rest)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a restaurant and populates the generated id.  A
// duplicate name is surfaced as ErrConflict.
func (r *RestaurantRepo) Create(ctx context.Context, rest *model.Restaurant) error {
	const q = `INSERT INTO restaurants
               (name, description, address, city, phone, email, cuisine_id, image_url,
                price_range, opening_time, closing_time, is_active)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		rest.Name, nullableString(rest.Description), rest.Address, rest.City,
		nullableString(rest.Phone), nullableString(rest.Email), nullableID(rest.CuisineID),
		nullableString(rest.ImageURL), rest.PriceRange, rest.OpeningTime, rest.ClosingTime, true)
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
	rest.ID = uint64(id)
	fresh, err := r.GetByID(ctx, rest.ID)
	if err != nil {
		return err
	}
	*rest = *fresh
	return nil
}

// Update rewrites all mutable columns including the rating override
// and the active flag.  Only admin handlers reach this method.
func (r *RestaurantRepo) Update(ctx context.Context, rest *model.Restaurant) error {
	const q = `UPDATE restaurants SET
               name = ?, description = ?, address = ?, city = ?, phone = ?, email = ?,
               cuisine_id = ?, image_url = ?, rating = ?, price_range = ?,
               opening_time = ?, closing_time = ?, is_active = ?
               WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q,
		rest.Name, nullableString(rest.Description), rest.Address, rest.City,
		nullableString(rest.Phone), nullableString(rest.Email), nullableID(rest.CuisineID),
		nullableString(rest.ImageURL), rest.Rating, rest.PriceRange,
		rest.OpeningTime, rest.ClosingTime, rest.IsActive, rest.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	fresh, err := r.GetByID(ctx, rest.ID)
	if err != nil {
		return err
	}
	*rest = *fresh
	return nil
}

// Deactivate soft-deletes a restaurant so existing bookings and
// reviews keep their history.
func (r *RestaurantRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE restaurants SET is_active = ? WHERE id = ?`, false, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRestaurantNotFound
	}
	return nil
}
