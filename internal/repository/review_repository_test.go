package repository

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

const reviewTestSchema = `
CREATE TABLE reviews (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id       INTEGER NOT NULL,
    restaurant_id INTEGER NOT NULL,
    booking_id    INTEGER UNIQUE,
    rating        INTEGER NOT NULL,
    comment       TEXT,
    created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

func newReviewDB(t *testing.T) (*sql.DB, *ReviewRepo) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	_, err = db.Exec(reviewTestSchema)
	require.NoError(t, err)
	return db, NewReviewRepo(db)
}

func addReview(t *testing.T, repo *ReviewRepo, rev *model.Review) *model.Review {
	t.Helper()
	tx, err := repo.DB().Begin()
	require.NoError(t, err)
	require.NoError(t, repo.CreateTx(context.Background(), tx, rev))
	require.NoError(t, tx.Commit())
	return rev
}

func TestReviewCreate(t *testing.T) {
	_, repo := newReviewDB(t)

	comment := "great pasta"
	rev := addReview(t, repo, &model.Review{
		UserID: 1, RestaurantID: 1, BookingID: tableRef(7),
		Rating: 5, Comment: &comment,
	})
	assert.NotZero(t, rev.ID)
	assert.False(t, rev.CreatedAt.IsZero())
	require.NotNil(t, rev.BookingID)
	assert.Equal(t, uint64(7), *rev.BookingID)
}

func TestReviewDuplicateBooking(t *testing.T) {
	_, repo := newReviewDB(t)
	ctx := context.Background()

	addReview(t, repo, &model.Review{UserID: 1, RestaurantID: 1, BookingID: tableRef(7), Rating: 5})

	tx, err := repo.DB().Begin()
	require.NoError(t, err)
	defer tx.Rollback()
	err = repo.CreateTx(ctx, tx, &model.Review{UserID: 1, RestaurantID: 1, BookingID: tableRef(7), Rating: 3})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestReviewsWithoutBookingDoNotCollide(t *testing.T) {
	_, repo := newReviewDB(t)

	// booking_id is nullable; unattached reviews are unlimited.
	addReview(t, repo, &model.Review{UserID: 1, RestaurantID: 1, Rating: 4})
	addReview(t, repo, &model.Review{UserID: 2, RestaurantID: 1, Rating: 2})
}

func TestExistsForBooking(t *testing.T) {
	_, repo := newReviewDB(t)
	ctx := context.Background()

	addReview(t, repo, &model.Review{UserID: 1, RestaurantID: 1, BookingID: tableRef(7), Rating: 5})

	tx, err := repo.DB().Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	taken, err := repo.ExistsForBookingTx(ctx, tx, 7)
	require.NoError(t, err)
	assert.True(t, taken)

	free, err := repo.ExistsForBookingTx(ctx, tx, 8)
	require.NoError(t, err)
	assert.False(t, free)
}

func TestReviewList(t *testing.T) {
	_, repo := newReviewDB(t)
	ctx := context.Background()

	addReview(t, repo, &model.Review{UserID: 1, RestaurantID: 1, Rating: 5})
	addReview(t, repo, &model.Review{UserID: 2, RestaurantID: 1, Rating: 3})
	addReview(t, repo, &model.Review{UserID: 1, RestaurantID: 2, Rating: 4})

	byRestaurant, err := repo.List(ctx, ReviewFilter{RestaurantID: 1})
	require.NoError(t, err)
	assert.Len(t, byRestaurant, 2)

	byUser, err := repo.List(ctx, ReviewFilter{UserID: 1})
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	newestFirst, err := repo.List(ctx, ReviewFilter{})
	require.NoError(t, err)
	require.Len(t, newestFirst, 3)
	assert.Equal(t, uint64(2), newestFirst[0].RestaurantID, "insertion order breaks created_at ties via id desc")
}
