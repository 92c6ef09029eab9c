// Package rating keeps the derived restaurant rating consistent with
// its source reviews.
package rating

import (
	"context"
	"database/sql"
)

// Aggregator recomputes a restaurant's displayed rating whenever a
// review attaches.  The recomputation is a single SQL statement that
// takes the mean server-side, so the read-modify-write happens in one
// round trip and, when run inside the review-insert transaction, in
// the same unit of work as the insert.  Recomputing the full mean on
// every review is self-correcting under concurrent writers: the last
// committer sees all rows.
type Aggregator struct {
	db *sql.DB
}

// NewAggregator returns an Aggregator bound to the given database.
func NewAggregator(db *sql.DB) *Aggregator {
	if db == nil {
		panic("nil db passed to NewAggregator")
	}
	return &Aggregator{db: db}
}

// recomputeSQL sets the rating to the mean of all review ratings for
// the restaurant rounded to one decimal place.  COALESCE keeps the
// rating at zero when the last review for a restaurant disappears.
const recomputeSQL = `UPDATE restaurants
       SET rating = COALESCE((SELECT ROUND(AVG(rating), 1) FROM reviews WHERE restaurant_id = ?), 0)
       WHERE id = ?`

// RecomputeTx refreshes the rating within an existing transaction.
// Callers run it right after inserting a review so the aggregate and
// its source commit together.
func (a *Aggregator) RecomputeTx(ctx context.Context, tx *sql.Tx, restaurantID uint64) error {
	_, err := tx.ExecContext(ctx, recomputeSQL, restaurantID, restaurantID)
	return err
}

// Recompute refreshes the rating outside any transaction.  Used by
// maintenance paths that need to repair the aggregate in place.
func (a *Aggregator) Recompute(ctx context.Context, restaurantID uint64) error {
	_, err := a.db.ExecContext(ctx, recomputeSQL, restaurantID, restaurantID)
	return err
}
