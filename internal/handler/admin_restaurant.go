package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// AdminHandler bundles catalogue repositories for staff-only CRUD over
// restaurants, tables and cuisines.  Every route using this handler is
// guarded by the ADMIN role middleware.
type AdminHandler struct {
	Restaurants *repository.RestaurantRepo
	Tables      *repository.TableRepo
	Cuisines    *repository.CuisineRepo
}

// NewAdminHandler constructs an AdminHandler and panics if any
// dependency is nil.
func NewAdminHandler(restaurants *repository.RestaurantRepo, tables *repository.TableRepo, cuisines *repository.CuisineRepo) *AdminHandler {
	if restaurants == nil || tables == nil || cuisines == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Restaurants: restaurants, Tables: tables, Cuisines: cuisines}
}

type restaurantReq struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	Phone       *string  `json:"phone"`
	Email       *string  `json:"email"`
	CuisineID   *uint64  `json:"cuisine_id"`
	ImageURL    *string  `json:"image_url"`
	Rating      *float64 `json:"rating"`
	PriceRange  *int     `json:"price_range"`
	OpeningTime string   `json:"opening_time"`
	ClosingTime string   `json:"closing_time"`
	IsActive    *bool    `json:"is_active"`
}

func (r *restaurantReq) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	r.City = strings.TrimSpace(r.City)
	r.OpeningTime = strings.TrimSpace(r.OpeningTime)
	r.ClosingTime = strings.TrimSpace(r.ClosingTime)
}

// CreateRestaurant handles POST /v1/admin/restaurants.
func (h *AdminHandler) CreateRestaurant(c echo.Context) error {
	var req restaurantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.normalize()
	if req.Name == "" || req.Address == "" || req.City == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, address and city are required"})
	}
	if req.OpeningTime == "" {
		req.OpeningTime = "09:00"
	}
	if req.ClosingTime == "" {
		req.ClosingTime = "23:00"
	}
	priceRange := 2
	if req.PriceRange != nil {
		priceRange = *req.PriceRange
	}
	if priceRange < 1 || priceRange > 4 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_range must be between 1 and 4"})
	}

	rest := &model.Restaurant{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		Phone:       req.Phone,
		Email:       req.Email,
		CuisineID:   req.CuisineID,
		ImageURL:    req.ImageURL,
		PriceRange:  priceRange,
		OpeningTime: req.OpeningTime,
		ClosingTime: req.ClosingTime,
	}
	if err := h.Restaurants.Create(c.Request().Context(), rest); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "restaurant name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create restaurant failed"})
	}
	return c.JSON(http.StatusCreated, toRestaurantResp(rest))
}

// UpdateRestaurant handles PATCH /v1/admin/restaurants/:id.  Absent
// fields keep their current value; a rating in the body overrides the
// derived value until the next review recompute.
func (h *AdminHandler) UpdateRestaurant(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	var req restaurantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.normalize()

	ctx := c.Request().Context()
	rest, err := h.Restaurants.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrRestaurantNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if req.Name != "" {
		rest.Name = req.Name
	}
	if req.Description != nil {
		rest.Description = req.Description
	}
	if req.Address != "" {
		rest.Address = req.Address
	}
	if req.City != "" {
		rest.City = req.City
	}
	if req.Phone != nil {
		rest.Phone = req.Phone
	}
	if req.Email != nil {
		rest.Email = req.Email
	}
	if req.CuisineID != nil {
		rest.CuisineID = req.CuisineID
	}
	if req.ImageURL != nil {
		rest.ImageURL = req.ImageURL
	}
	if req.Rating != nil {
		if *req.Rating < 0 || *req.Rating > 5 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 0 and 5"})
		}
		rest.Rating = *req.Rating
	}
	if req.PriceRange != nil {
		if *req.PriceRange < 1 || *req.PriceRange > 4 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_range must be between 1 and 4"})
		}
		rest.PriceRange = *req.PriceRange
	}
	if req.OpeningTime != "" {
		rest.OpeningTime = req.OpeningTime
	}
	if req.ClosingTime != "" {
		rest.ClosingTime = req.ClosingTime
	}
	if req.IsActive != nil {
		rest.IsActive = *req.IsActive
	}

	if err := h.Restaurants.Update(ctx, rest); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "restaurant name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update restaurant failed"})
	}
	return c.JSON(http.StatusOK, toRestaurantResp(rest))
}

// DeleteRestaurant handles DELETE /v1/admin/restaurants/:id.  The
// restaurant is deactivated, never removed, so booking and review
// history stays intact.
func (h *AdminHandler) DeleteRestaurant(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	if err := h.Restaurants.Deactivate(c.Request().Context(), id); err != nil {
		if err == repository.ErrRestaurantNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete restaurant failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
