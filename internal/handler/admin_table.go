package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

type tableReq struct {
	TableNumber *int    `json:"table_number"`
	Capacity    *int    `json:"capacity"`
	Location    *string `json:"location"`
}

// CreateTable handles POST /v1/admin/restaurants/:id/tables.
func (h *AdminHandler) CreateTable(c echo.Context) error {
	restID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.TableNumber == nil || *req.TableNumber <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_number must be positive"})
	}
	if req.Capacity == nil || *req.Capacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}

	ctx := c.Request().Context()
	if _, err := h.Restaurants.GetByID(ctx, restID); err != nil {
		if err == repository.ErrRestaurantNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	t := &model.Table{
		RestaurantID: restID,
		TableNumber:  *req.TableNumber,
		Capacity:     *req.Capacity,
		Location:     req.Location,
	}
	if err := h.Tables.Create(ctx, t); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "table number already exists for this restaurant"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create table failed"})
	}
	return c.JSON(http.StatusCreated, toTableResp(t))
}

// UpdateTable handles PATCH /v1/admin/restaurants/:id/tables/:table_id.
func (h *AdminHandler) UpdateTable(c echo.Context) error {
	restID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	tableID, ok := pathID(c, "table_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	tables, err := h.Tables.ListByRestaurant(ctx, restID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	var current *model.Table
	for i := range tables {
		if tables[i].ID == tableID {
			current = &tables[i]
			break
		}
	}
	if current == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
	}

	if req.TableNumber != nil {
		if *req.TableNumber <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_number must be positive"})
		}
		current.TableNumber = *req.TableNumber
	}
	if req.Capacity != nil {
		if *req.Capacity <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
		}
		current.Capacity = *req.Capacity
	}
	if req.Location != nil {
		current.Location = req.Location
	}

	if err := h.Tables.Update(ctx, current); err != nil {
		switch err {
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "table number already exists for this restaurant"})
		case repository.ErrTableNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update table failed"})
	}
	return c.JSON(http.StatusOK, toTableResp(current))
}

// DeleteTable handles DELETE /v1/admin/restaurants/:id/tables/:table_id.
// Tables referenced by pending or confirmed bookings cannot be
// removed.
func (h *AdminHandler) DeleteTable(c echo.Context) error {
	restID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	tableID, ok := pathID(c, "table_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	if err := h.Tables.Delete(c.Request().Context(), tableID, restID); err != nil {
		switch err {
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "table has active bookings"})
		case repository.ErrTableNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete table failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
