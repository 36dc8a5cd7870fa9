package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-seating/internal/handler"
	"github.com/iliyamo/restaurant-seating/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session endpoints. Register, login, refresh and
// logout work without an access token; /v1/auth/me requires one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterRestaurants registers restaurant management and browsing routes.
// The region listing is public and served through the Redis response cache;
// everything else requires an access token. Authorization beyond
// authentication (ownership, association, customer identity) is decided in
// the service layer against the principal.
func RegisterRestaurants(e *echo.Echo, r *handler.RestaurantHandler, s *handler.SeatingHandler, jwtSecret string, rdb *redis.Client) {
	e.GET("/v1/restaurants/region/:region", r.ListByRegion, middleware.NewRedisCache(rdb, time.Minute))

	g := e.Group("/v1/restaurants")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.POST("", r.Create)
	g.GET("/:restaurantId", r.Get)
	g.PATCH("/:restaurantId/visibility", r.UpdateVisibility)

	g.POST("/:restaurantId/seatings", s.Create)
	g.GET("/:restaurantId/seatings", s.List)
	g.PATCH("/:restaurantId/seatings/:seatingId/accept", s.Accept)
	g.DELETE("/:restaurantId/seatings/:seatingId/cancel", s.Cancel)
}
