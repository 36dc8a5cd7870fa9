package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-seating/internal/service"
)

// RestaurantHandler exposes restaurant management and browsing endpoints.
type RestaurantHandler struct {
	svc *service.RestaurantService
}

// NewRestaurantHandler constructs a RestaurantHandler. Panics on a nil
// service.
func NewRestaurantHandler(svc *service.RestaurantService) *RestaurantHandler {
	if svc == nil {
		panic("nil service passed to NewRestaurantHandler")
	}
	return &RestaurantHandler{svc: svc}
}

// Create handles POST /v1/restaurants. The requesting user becomes manager
// of the new restaurant.
func (h *RestaurantHandler) Create(c echo.Context) error {
	p, ok := principalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	var raw map[string]interface{}
	if err := c.Bind(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	restaurant, err := h.svc.CreateRestaurant(c.Request().Context(), p, raw)
	if err != nil {
		return writeServiceError(c, err)
	}
	c.Response().Header().Set("Location", "/v1/restaurants/"+restaurant.ID)
	return c.JSON(http.StatusCreated, echo.Map{"id": restaurant.ID})
}

// Get handles GET /v1/restaurants/:restaurantId under the visibility policy.
func (h *RestaurantHandler) Get(c echo.Context) error {
	p, ok := principalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	restaurant, err := h.svc.GetRestaurant(c.Request().Context(), c.Param("restaurantId"), p)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, restaurant)
}

// UpdateVisibility handles PATCH /v1/restaurants/:restaurantId/visibility.
func (h *RestaurantHandler) UpdateVisibility(c echo.Context) error {
	p, ok := principalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	var req struct {
		Visibility string `json:"visibility"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.svc.UpdateVisibility(c.Request().Context(), c.Param("restaurantId"), p, req.Visibility); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListByRegion handles GET /v1/restaurants/region/:region, a public
// paginated listing of PUBLIC restaurants.
func (h *RestaurantHandler) ListByRegion(c echo.Context) error {
	limit, cursor := pageParams(c)
	items, lastKey, err := h.svc.ListPublicRestaurantsByRegion(c.Request().Context(), c.Param("region"), limit, cursor)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := echo.Map{"items": items}
	if lastKey != "" {
		resp["lastEvaluatedKey"] = lastKey
	}
	return c.JSON(http.StatusOK, resp)
}
