package rating

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE restaurants (
    id     INTEGER PRIMARY KEY AUTOINCREMENT,
    name   TEXT NOT NULL,
    rating REAL NOT NULL DEFAULT 0
);

CREATE TABLE reviews (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id       INTEGER NOT NULL,
    restaurant_id INTEGER NOT NULL,
    rating        INTEGER NOT NULL
);
`

func newTestDB(t *testing.T) (*sql.DB, uint64) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	res, err := db.Exec(`INSERT INTO restaurants (name) VALUES ('Chez Paul')`)
	require.NoError(t, err)
	id, _ := res.LastInsertId()
	return db, uint64(id)
}

func currentRating(t *testing.T, db *sql.DB, id uint64) float64 {
	t.Helper()
	var r float64
	require.NoError(t, db.QueryRow(`SELECT rating FROM restaurants WHERE id = ?`, id).Scan(&r))
	return r
}

func addReview(t *testing.T, db *sql.DB, restID uint64, stars int) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO reviews (user_id, restaurant_id, rating) VALUES (1, ?, ?)`, restID, stars)
	require.NoError(t, err)
}

func TestRecompute(t *testing.T) {
	db, restID := newTestDB(t)
	agg := NewAggregator(db)
	ctx := context.Background()

	t.Run("no reviews keeps zero", func(t *testing.T) {
		require.NoError(t, agg.Recompute(ctx, restID))
		assert.Equal(t, 0.0, currentRating(t, db, restID))
	})

	t.Run("single review", func(t *testing.T) {
		addReview(t, db, restID, 4)
		require.NoError(t, agg.Recompute(ctx, restID))
		assert.Equal(t, 4.0, currentRating(t, db, restID))
	})

	t.Run("mean rounds to one decimal", func(t *testing.T) {
		addReview(t, db, restID, 5)
		addReview(t, db, restID, 5)
		// 4, 5, 5 -> 4.666... -> 4.7
		require.NoError(t, agg.Recompute(ctx, restID))
		assert.InDelta(t, 4.7, currentRating(t, db, restID), 0.001)
	})

	t.Run("low review pulls the mean down", func(t *testing.T) {
		addReview(t, db, restID, 1)
		// 4, 5, 5, 1 -> 3.75 -> 3.8
		require.NoError(t, agg.Recompute(ctx, restID))
		assert.InDelta(t, 3.8, currentRating(t, db, restID), 0.001)
	})

	t.Run("other restaurants are untouched", func(t *testing.T) {
		res, err := db.Exec(`INSERT INTO restaurants (name, rating) VALUES ('Other', 2.5)`)
		require.NoError(t, err)
		otherID, _ := res.LastInsertId()

		require.NoError(t, agg.Recompute(ctx, restID))
		assert.Equal(t, 2.5, currentRating(t, db, uint64(otherID)))
	})
}

func TestRecomputeTx(t *testing.T) {
	db, restID := newTestDB(t)
	agg := NewAggregator(db)
	ctx := context.Background()

	addReview(t, db, restID, 3)

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, agg.RecomputeTx(ctx, tx, restID))
	require.NoError(t, tx.Commit())

	assert.Equal(t, 3.0, currentRating(t, db, restID))
}

func TestRecomputeTxRollsBackWithTransaction(t *testing.T) {
	db, restID := newTestDB(t)
	agg := NewAggregator(db)
	ctx := context.Background()

	tx, err := db.Begin()
	require.NoError(t, err)
	_, err = tx.Exec(`INSERT INTO reviews (user_id, restaurant_id, rating) VALUES (1, ?, 5)`, restID)
	require.NoError(t, err)
	require.NoError(t, agg.RecomputeTx(ctx, tx, restID))
	require.NoError(t, tx.Rollback())

	// The aggregate never escapes a rolled back review insert.
	assert.Equal(t, 0.0, currentRating(t, db, restID))
}
