package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring systems to verify that the
	// service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout accepts a refresh_token in the body and does not require a
	// JWT; an authenticated call without a body revokes all sessions.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("USER", "ADMIN"))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers unauthenticated browse endpoints.  The routes
// are wrapped with the Redis response cache and the token-bucket rate
// limiter; both middlewares turn into no-ops when Redis is not
// configured.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, r *handler.ReviewHandler, mws ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mws...)
	g.GET("/restaurants", p.ListRestaurants)
	g.GET("/restaurants/:id", p.GetRestaurant)
	g.GET("/restaurants/:id/tables", p.ListTables)
	g.GET("/restaurants/:id/reviews", r.ListForRestaurant)
	g.GET("/cuisines", p.ListCuisines)
	g.GET("/cuisines/:id", p.GetCuisine)
}

// RegisterBookings registers booking and review endpoints under /v1.
// All routes require a valid JWT; ownership and role rules are
// enforced inside the reservation engine so USER and ADMIN share the
// same surface.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, r *handler.ReviewHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("USER", "ADMIN"),
	)

	g.POST("/bookings", b.Create)
	g.GET("/bookings", b.List)
	g.GET("/bookings/:id", b.Get)
	g.PUT("/bookings/:id", b.Update)
	g.PATCH("/bookings/:id", b.Update) // alias for clients that use PATCH
	g.DELETE("/bookings/:id", b.Cancel)

	g.POST("/reviews", r.Create)
}
