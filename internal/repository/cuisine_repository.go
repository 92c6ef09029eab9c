package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ErrCuisineNotFound is returned when no cuisine exists for the
// requested id.
var ErrCuisineNotFound = errors.New("cuisine not found")

// CuisineRepo provides persistence for the cuisine catalog.
type CuisineRepo struct {
	db *sql.DB
}

// NewCuisineRepo returns a new CuisineRepo bound to the given database.
func NewCuisineRepo(db *sql.DB) *CuisineRepo { return &CuisineRepo{db: db} }

const cuisineColumns = `id, name, description, image_url, created_at`

func scanCuisine(s scanner) (*model.Cuisine, error) {
	var (
		c        model.Cuisine
		desc     sql.NullString
		imageURL sql.NullString
	)
	err := s.Scan(&c.ID, &c.Name, &desc, &imageURL, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		v := desc.String
		c.Description = &v
	}
	if imageURL.Valid {
		v := imageURL.String
		c.ImageURL = &v
	}
	return &c, nil
}

// List returns all cuisines ordered by name.
func (r *CuisineRepo) List(ctx context.Context) ([]model.Cuisine, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+cuisineColumns+` FROM cuisines ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Cuisine, 0)
	for rows.Next() {
		c, err := scanCuisine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns the cuisine with the given id or ErrCuisineNotFound.
func (r *CuisineRepo) GetByID(ctx context.Context, id uint64) (*model.Cuisine, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+cuisineColumns+` FROM cuisines WHERE id = ?`, id)
	c, err := scanCuisine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCuisineNotFound
	}
	return c, err
}

// Create inserts a cuisine.  The name is unique; duplicates are
// surfaced as ErrConflict.
func (r *CuisineRepo) Create(ctx context.Context, c *model.Cuisine) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO cuisines (name, description, image_url) VALUES (?, ?, ?)`,
		c.Name, nullableString(c.Description), nullableString(c.ImageURL))
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
	c.ID = uint64(id)
	return nil
}

// Update rewrites a cuisine's name, description and image.
func (r *CuisineRepo) Update(ctx context.Context, c *model.Cuisine) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cuisines SET name = ?, description = ?, image_url = ? WHERE id = ?`,
		c.Name, nullableString(c.Description), nullableString(c.ImageURL), c.ID)
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
		return ErrCuisineNotFound
	}
	return nil
}

// Delete removes a cuisine.  Restaurants referencing it keep a NULL
// cuisine via the schema's ON DELETE SET NULL.
func (r *CuisineRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cuisines WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCuisineNotFound
	}
	return nil
}
