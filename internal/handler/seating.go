package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-seating/internal/service"
)

// SeatingHandler exposes the reservation lifecycle endpoints.
type SeatingHandler struct {
	svc *service.SeatingService
}

// NewSeatingHandler constructs a SeatingHandler. Panics on a nil service.
func NewSeatingHandler(svc *service.SeatingService) *SeatingHandler {
	if svc == nil {
		panic("nil service passed to NewSeatingHandler")
	}
	return &SeatingHandler{svc: svc}
}

// Create handles POST /v1/restaurants/:restaurantId/seatings. The new
// seating starts out PENDING and belongs to the requesting customer.
func (h *SeatingHandler) Create(c echo.Context) error {
	p, ok := principalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	var raw map[string]interface{}
	if err := c.Bind(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	restaurantID := c.Param("restaurantId")
	seating, err := h.svc.CreateSeating(c.Request().Context(), restaurantID, p, raw)
	if err != nil {
		return writeServiceError(c, err)
	}
	c.Response().Header().Set("Location",
		fmt.Sprintf("/v1/restaurants/%s/seatings/%s", restaurantID, seating.ID))
	return c.JSON(http.StatusCreated, echo.Map{"id": seating.ID})
}

// Accept handles PATCH /v1/restaurants/:restaurantId/seatings/:seatingId/accept
// for associated restaurant staff. Re-accepting an accepted seating is a
// no-op 204.
func (h *SeatingHandler) Accept(c echo.Context) error {
	p, ok := principalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	err := h.svc.AcceptSeating(c.Request().Context(), c.Param("restaurantId"), c.Param("seatingId"), p)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Cancel handles DELETE /v1/restaurants/:restaurantId/seatings/:seatingId/cancel
// for the customer who requested the seating. Re-cancelling is a no-op 204.
func (h *SeatingHandler) Cancel(c echo.Context) error {
	p, ok := principalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	err := h.svc.CancelSeating(c.Request().Context(), c.Param("restaurantId"), c.Param("seatingId"), p)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles GET /v1/restaurants/:restaurantId/seatings for associated
// restaurant staff, one page at a time.
func (h *SeatingHandler) List(c echo.Context) error {
	p, ok := principalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	limit, cursor := pageParams(c)
	items, lastKey, err := h.svc.ListUpcomingSeatings(c.Request().Context(), c.Param("restaurantId"), p, limit, cursor)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := echo.Map{"items": items}
	if lastKey != "" {
		resp["lastEvaluatedKey"] = lastKey
	}
	return c.JSON(http.StatusOK, resp)
}
