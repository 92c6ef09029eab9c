package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

type cuisineReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

// CreateCuisine handles POST /v1/admin/cuisines.
func (h *AdminHandler) CreateCuisine(c echo.Context) error {
	var req cuisineReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	cu := &model.Cuisine{Name: req.Name, Description: req.Description, ImageURL: req.ImageURL}
	if err := h.Cuisines.Create(c.Request().Context(), cu); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "cuisine name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create cuisine failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id": cu.ID, "name": cu.Name, "description": cu.Description, "image_url": cu.ImageURL,
	})
}

// UpdateCuisine handles PATCH /v1/admin/cuisines/:id.
func (h *AdminHandler) UpdateCuisine(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cuisine id"})
	}
	var req cuisineReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	cu, err := h.Cuisines.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrCuisineNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cuisine not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		cu.Name = name
	}
	if req.Description != nil {
		cu.Description = req.Description
	}
	if req.ImageURL != nil {
		cu.ImageURL = req.ImageURL
	}
	if err := h.Cuisines.Update(ctx, cu); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "cuisine name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update cuisine failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id": cu.ID, "name": cu.Name, "description": cu.Description, "image_url": cu.ImageURL,
	})
}

// DeleteCuisine handles DELETE /v1/admin/cuisines/:id.  Restaurants
// referencing the cuisine keep working: the foreign key nulls out.
func (h *AdminHandler) DeleteCuisine(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cuisine id"})
	}
	if err := h.Cuisines.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrCuisineNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cuisine not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete cuisine failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
