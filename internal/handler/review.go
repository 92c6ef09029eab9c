package handler

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/rating"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

const maxReviewComment = 1000

// ReviewHandler creates and lists restaurant reviews.  Creation and
// the derived rating recompute run in a single transaction so the
// stored rating always reflects the full review set.
type ReviewHandler struct {
	Reviews     *repository.ReviewRepo
	Bookings    *repository.BookingRepo
	Restaurants *repository.RestaurantRepo
	Rating      *rating.Aggregator
}

func NewReviewHandler(reviews *repository.ReviewRepo, bookings *repository.BookingRepo, restaurants *repository.RestaurantRepo, agg *rating.Aggregator) *ReviewHandler {
	if reviews == nil || bookings == nil || restaurants == nil || agg == nil {
		panic("nil dependency passed to NewReviewHandler")
	}
	return &ReviewHandler{Reviews: reviews, Bookings: bookings, Restaurants: restaurants, Rating: agg}
}

type createReviewReq struct {
	RestaurantID uint64  `json:"restaurant_id"`
	BookingID    *uint64 `json:"booking_id"`
	Rating       int     `json:"rating"`
	Comment      *string `json:"comment"`
}

// Create handles POST /v1/reviews.  A review may optionally reference
// one of the caller's bookings at the same restaurant; each booking
// can be reviewed at most once.  The restaurant's rating is recomputed
// inside the same transaction as the insert.
func (h *ReviewHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.RestaurantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "restaurant_id is required"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
	}
	if req.Comment != nil {
		trimmed := strings.TrimSpace(*req.Comment)
		if trimmed == "" {
			req.Comment = nil
		} else {
			if utf8.RuneCountInString(trimmed) > maxReviewComment {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "comment too long"})
			}
			req.Comment = &trimmed
		}
	}

	ctx := c.Request().Context()
	tx, err := h.Reviews.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := h.Restaurants.GetActiveTx(ctx, tx, req.RestaurantID); err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if req.BookingID != nil {
		b, err := h.Bookings.GetByIDTx(ctx, tx, *req.BookingID)
		if err != nil {
			if errors.Is(err, repository.ErrBookingNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if b.UserID != uid {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "booking belongs to another user"})
		}
		if b.RestaurantID != req.RestaurantID {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking is for another restaurant"})
		}
		taken, err := h.Reviews.ExistsForBookingTx(ctx, tx, *req.BookingID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if taken {
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking already reviewed"})
		}
	}

	rev := &model.Review{
		UserID:       uid,
		RestaurantID: req.RestaurantID,
		BookingID:    req.BookingID,
		Rating:       req.Rating,
		Comment:      req.Comment,
	}
	if err := h.Reviews.CreateTx(ctx, tx, rev); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking already reviewed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create review failed"})
	}
	if err := h.Rating.RecomputeTx(ctx, tx, req.RestaurantID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "recompute rating failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	return c.JSON(http.StatusCreated, toReviewResp(rev))
}

// ListForRestaurant handles GET /v1/restaurants/:id/reviews.
func (h *ReviewHandler) ListForRestaurant(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	f := repository.ReviewFilter{
		RestaurantID: id,
		Limit:        queryInt(c, "limit"),
		Offset:       queryInt(c, "offset"),
	}
	items, err := h.Reviews.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]reviewResp, 0, len(items))
	for i := range items {
		out = append(out, toReviewResp(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"reviews": out, "count": len(out)})
}
