package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	queue_publisher "github.com/iliyamo/restaurant-table-reservation/internal/service"
)

// BookingHandler exposes the reservation engine over HTTP.  All
// methods assume that JWT authentication has already been performed by
// middleware; ownership and role checks live in the engine itself so
// that every entry point enforces the same rules.
type BookingHandler struct {
	Engine      *booking.Engine
	Restaurants *repository.RestaurantRepo
	Tables      *repository.TableRepo
}

// NewBookingHandler constructs a BookingHandler.  All dependencies
// must be non-nil.
func NewBookingHandler(engine *booking.Engine, restaurants *repository.RestaurantRepo, tables *repository.TableRepo) *BookingHandler {
	if engine == nil || restaurants == nil || tables == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: engine, Restaurants: restaurants, Tables: tables}
}

// bookingError translates engine and repository sentinels to HTTP
// responses.  Unknown errors become 500 without leaking detail.
func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrRestaurantNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
	case errors.Is(err, repository.ErrTableNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "table is already booked for this slot"})
	case errors.Is(err, repository.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
	case errors.Is(err, repository.ErrCapacityExceeded):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "party size exceeds table capacity"})
	case errors.Is(err, repository.ErrInvalidState):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking can no longer be modified"})
	case errors.Is(err, repository.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid input"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

type createBookingReq struct {
	RestaurantID    uint64  `json:"restaurant_id"`
	TableID         *uint64 `json:"table_id"`
	BookingDate     string  `json:"booking_date"`
	BookingTime     string  `json:"booking_time"`
	PartySize       int     `json:"party_size"`
	SpecialRequests *string `json:"special_requests"`
}

// Create handles POST /v1/bookings.  The booking is created in pending
// status and owned by the caller.
func (h *BookingHandler) Create(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.RestaurantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "restaurant_id is required"})
	}

	b, err := h.Engine.Create(c.Request().Context(), actor, booking.CreateRequest{
		RestaurantID:    req.RestaurantID,
		TableID:         req.TableID,
		BookingDate:     req.BookingDate,
		BookingTime:     req.BookingTime,
		PartySize:       req.PartySize,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingResp(b))
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Engine.Get(c.Request().Context(), actor, id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// List handles GET /v1/bookings.  Non-admin callers always see only
// their own bookings; admins may filter by status and restaurant_id.
func (h *BookingHandler) List(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	f := booking.ListFilter{
		Status:       c.QueryParam("status"),
		RestaurantID: queryUint(c, "restaurant_id"),
		Limit:        queryInt(c, "limit"),
		Offset:       queryInt(c, "offset"),
	}
	items, err := h.Engine.List(c.Request().Context(), actor, f)
	if err != nil {
		return bookingError(c, err)
	}
	out := make([]bookingResp, 0, len(items))
	for i := range items {
		out = append(out, toBookingResp(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out, "count": len(out)})
}

type updateBookingReq struct {
	TableID              *uint64 `json:"table_id"`
	ClearTable           bool    `json:"clear_table"`
	BookingDate          *string `json:"booking_date"`
	BookingTime          *string `json:"booking_time"`
	PartySize            *int    `json:"party_size"`
	SpecialRequests      *string `json:"special_requests"`
	ClearSpecialRequests bool    `json:"clear_special_requests"`
	Status               *string `json:"status"`
}

// Update handles PATCH /v1/bookings/:id.  Absent fields are left
// untouched.  When an admin confirms a booking, a booking.confirmed
// event is published to the broker; publish failures never fail the
// request.
func (h *BookingHandler) Update(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req updateBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	prev, err := h.Engine.Get(c.Request().Context(), actor, id)
	if err != nil {
		return bookingError(c, err)
	}

	b, err := h.Engine.Update(c.Request().Context(), actor, id, booking.UpdateRequest{
		TableID:              req.TableID,
		ClearTable:           req.ClearTable,
		BookingDate:          req.BookingDate,
		BookingTime:          req.BookingTime,
		PartySize:            req.PartySize,
		SpecialRequests:      req.SpecialRequests,
		ClearSpecialRequests: req.ClearSpecialRequests,
		Status:               req.Status,
	})
	if err != nil {
		return bookingError(c, err)
	}

	if prev.Status != model.StatusConfirmed && b.Status == model.StatusConfirmed {
		h.publishConfirmed(b)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// Cancel handles DELETE /v1/bookings/:id.  Cancellation is a soft
// status transition; the record is never physically deleted.
func (h *BookingHandler) Cancel(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	if err := h.Engine.Cancel(c.Request().Context(), actor, id); err != nil {
		return bookingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// publishConfirmed enriches the event with restaurant and table
// details and hands it to the broker in the background.
func (h *BookingHandler) publishConfirmed(b *model.Booking) {
	ev := queue.BookingConfirmedEvent{
		BookingID:    b.ID,
		UserID:       b.UserID,
		RestaurantID: b.RestaurantID,
		BookingDate:  b.BookingDate,
		BookingTime:  b.BookingTime,
		PartySize:    b.PartySize,
		ConfirmedAt:  time.Now().UTC().Format("2006-01-02 15:04:05"),
	}
	tableID := b.TableID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if rest, err := h.Restaurants.GetByID(ctx, ev.RestaurantID); err == nil {
			ev.RestaurantName = rest.Name
		}
		if tableID != nil {
			tables, err := h.Tables.ListByRestaurant(ctx, ev.RestaurantID)
			if err == nil {
				for _, t := range tables {
					if t.ID == *tableID {
						ev.TableNumber = t.TableNumber
						break
					}
				}
			}
		}
		_ = queue_publisher.PublishBookingConfirmed(ctx, ev)
	}()
}
