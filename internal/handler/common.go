package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-seating/internal/middleware"
	"github.com/iliyamo/restaurant-seating/internal/model"
	"github.com/iliyamo/restaurant-seating/internal/service"
)

// principalFrom pulls the authenticated principal the JWT middleware stored
// on the context. The bool is false on routes that skipped authentication.
func principalFrom(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(middleware.PrincipalKey).(model.Principal)
	return p, ok
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Validation failures carry the full field list; anything unrecognized is
// logged with detail and answered with an opaque 500.
func writeServiceError(c echo.Context, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": ve.Fields})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": service.ErrConflict.Error()})
	}
	log.Printf("handler: %s %s failed: %v", c.Request().Method, c.Request().URL.Path, err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// pageParams reads the shared pagination query parameters. The cursor is the
// lastEvaluatedKey echoed back from the previous page.
func pageParams(c echo.Context) (limit int, cursor string) {
	limit = 20
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 100 {
		limit = 100
	}
	return limit, c.QueryParam("lastEvaluatedKey")
}
