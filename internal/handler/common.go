package handler // handler defines http handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole returns the role claim stored by the JWT middleware.
func getRole(c echo.Context) string {
	if s, ok := c.Get("role").(string); ok {
		return s
	}
	return ""
}

// actorFrom builds the booking actor for the authenticated request.
func actorFrom(c echo.Context) (booking.Actor, error) {
	uid, err := getUserID(c)
	if err != nil {
		return booking.Actor{}, err
	}
	return booking.Actor{UserID: uid, Role: getRole(c)}, nil
}

// pathID parses a positive uint64 path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// queryUint parses an optional numeric query parameter; absent or
// malformed values yield zero.
func queryUint(c echo.Context, name string) uint64 {
	n, _ := strconv.ParseUint(c.QueryParam(name), 10, 64)
	return n
}

func queryInt(c echo.Context, name string) int {
	n, _ := strconv.Atoi(c.QueryParam(name))
	return n
}

// ----- shared response shapes -----

type bookingResp struct {
	ID              uint64  `json:"id"`
	UserID          uint64  `json:"user_id"`
	RestaurantID    uint64  `json:"restaurant_id"`
	TableID         *uint64 `json:"table_id"`
	BookingDate     string  `json:"booking_date"`
	BookingTime     string  `json:"booking_time"`
	PartySize       int     `json:"party_size"`
	SpecialRequests *string `json:"special_requests,omitempty"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func toBookingResp(b *model.Booking) bookingResp {
	return bookingResp{
		ID:              b.ID,
		UserID:          b.UserID,
		RestaurantID:    b.RestaurantID,
		TableID:         b.TableID,
		BookingDate:     b.BookingDate,
		BookingTime:     b.BookingTime,
		PartySize:       b.PartySize,
		SpecialRequests: b.SpecialRequests,
		Status:          b.Status,
		CreatedAt:       b.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		UpdatedAt:       b.UpdatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}

type restaurantResp struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	CuisineID   *uint64 `json:"cuisine_id,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	Rating      float64 `json:"rating"`
	PriceRange  int     `json:"price_range"`
	OpeningTime string  `json:"opening_time"`
	ClosingTime string  `json:"closing_time"`
	IsActive    bool    `json:"is_active"`
}

func toRestaurantResp(r *model.Restaurant) restaurantResp {
	return restaurantResp{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Address:     r.Address,
		City:        r.City,
		Phone:       r.Phone,
		Email:       r.Email,
		CuisineID:   r.CuisineID,
		ImageURL:    r.ImageURL,
		Rating:      r.Rating,
		PriceRange:  r.PriceRange,
		OpeningTime: r.OpeningTime,
		ClosingTime: r.ClosingTime,
		IsActive:    r.IsActive,
	}
}

type tableResp struct {
	ID           uint64  `json:"id"`
	RestaurantID uint64  `json:"restaurant_id"`
	TableNumber  int     `json:"table_number"`
	Capacity     int     `json:"capacity"`
	Location     *string `json:"location,omitempty"`
}

func toTableResp(t *model.Table) tableResp {
	return tableResp{
		ID:           t.ID,
		RestaurantID: t.RestaurantID,
		TableNumber:  t.TableNumber,
		Capacity:     t.Capacity,
		Location:     t.Location,
	}
}

type reviewResp struct {
	ID           uint64  `json:"id"`
	UserID       uint64  `json:"user_id"`
	RestaurantID uint64  `json:"restaurant_id"`
	BookingID    *uint64 `json:"booking_id,omitempty"`
	Rating       int     `json:"rating"`
	Comment      *string `json:"comment,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

func toReviewResp(r *model.Review) reviewResp {
	return reviewResp{
		ID:           r.ID,
		UserID:       r.UserID,
		RestaurantID: r.RestaurantID,
		BookingID:    r.BookingID,
		Rating:       r.Rating,
		Comment:      r.Comment,
		CreatedAt:    r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}
