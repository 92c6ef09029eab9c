package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// PublicHandler serves the unauthenticated browse surface: restaurant
// listings, restaurant detail with tables and reviews, and the cuisine
// catalogue.  These endpoints sit behind the response cache and the
// rate limiter.
type PublicHandler struct {
	Restaurants *repository.RestaurantRepo
	Tables      *repository.TableRepo
	Cuisines    *repository.CuisineRepo
	Reviews     *repository.ReviewRepo
}

func NewPublicHandler(restaurants *repository.RestaurantRepo, tables *repository.TableRepo, cuisines *repository.CuisineRepo, reviews *repository.ReviewRepo) *PublicHandler {
	if restaurants == nil || tables == nil || cuisines == nil || reviews == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Restaurants: restaurants, Tables: tables, Cuisines: cuisines, Reviews: reviews}
}

// ListRestaurants handles GET /v1/restaurants with optional city,
// cuisine_id and search filters.  Only active restaurants are listed.
func (h *PublicHandler) ListRestaurants(c echo.Context) error {
	f := repository.RestaurantFilter{
		City:      strings.TrimSpace(c.QueryParam("city")),
		CuisineID: queryUint(c, "cuisine_id"),
		Search:    strings.TrimSpace(c.QueryParam("search")),
		Limit:     queryInt(c, "limit"),
		Offset:    queryInt(c, "offset"),
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	items, err := h.Restaurants.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]restaurantResp, 0, len(items))
	for i := range items {
		out = append(out, toRestaurantResp(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"restaurants": out, "count": len(out)})
}

// GetRestaurant handles GET /v1/restaurants/:id and returns the
// restaurant together with its tables and its most recent reviews.
func (h *PublicHandler) GetRestaurant(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	ctx := c.Request().Context()

	rest, err := h.Restaurants.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrRestaurantNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !rest.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
	}

	tables, err := h.Tables.ListByRestaurant(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	reviews, err := h.Reviews.List(ctx, repository.ReviewFilter{RestaurantID: id, Limit: 10})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	tout := make([]tableResp, 0, len(tables))
	for i := range tables {
		tout = append(tout, toTableResp(&tables[i]))
	}
	rout := make([]reviewResp, 0, len(reviews))
	for i := range reviews {
		rout = append(rout, toReviewResp(&reviews[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"restaurant": toRestaurantResp(rest),
		"tables":     tout,
		"reviews":    rout,
	})
}

// ListTables handles GET /v1/restaurants/:id/tables.
func (h *PublicHandler) ListTables(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	tables, err := h.Tables.ListByRestaurant(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]tableResp, 0, len(tables))
	for i := range tables {
		out = append(out, toTableResp(&tables[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": out, "count": len(out)})
}

type cuisineResp struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// ListCuisines handles GET /v1/cuisines.
func (h *PublicHandler) ListCuisines(c echo.Context) error {
	items, err := h.Cuisines.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]cuisineResp, 0, len(items))
	for _, cu := range items {
		out = append(out, cuisineResp{ID: cu.ID, Name: cu.Name, Description: cu.Description, ImageURL: cu.ImageURL})
	}
	return c.JSON(http.StatusOK, echo.Map{"cuisines": out, "count": len(out)})
}

// GetCuisine handles GET /v1/cuisines/:id.
func (h *PublicHandler) GetCuisine(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cuisine id"})
	}
	cu, err := h.Cuisines.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrCuisineNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cuisine not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, cuisineResp{ID: cu.ID, Name: cu.Name, Description: cu.Description, ImageURL: cu.ImageURL})
}
