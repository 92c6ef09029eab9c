package router

// This file registers admin-only routes for managing the restaurant
// catalogue.  They are separate from the public and booking routes to
// keep concerns isolated.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
// All routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Restaurants ----
	g.POST("/restaurants", a.CreateRestaurant)
	g.PUT("/restaurants/:id", a.UpdateRestaurant)
	g.PATCH("/restaurants/:id", a.UpdateRestaurant)
	g.DELETE("/restaurants/:id", a.DeleteRestaurant)

	// ---- Tables ----
	g.POST("/restaurants/:id/tables", a.CreateTable)
	g.PUT("/restaurants/:id/tables/:table_id", a.UpdateTable)
	g.PATCH("/restaurants/:id/tables/:table_id", a.UpdateTable)
	g.DELETE("/restaurants/:id/tables/:table_id", a.DeleteTable)

	// ---- Cuisines ----
	g.POST("/cuisines", a.CreateCuisine)
	g.PUT("/cuisines/:id", a.UpdateCuisine)
	g.PATCH("/cuisines/:id", a.UpdateCuisine)
	g.DELETE("/cuisines/:id", a.DeleteCuisine)
}
