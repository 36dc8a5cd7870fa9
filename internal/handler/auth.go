package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-seating/internal/events"
	"github.com/iliyamo/restaurant-seating/internal/identity"
	"github.com/iliyamo/restaurant-seating/internal/model"
	"github.com/iliyamo/restaurant-seating/internal/repository"
	"github.com/iliyamo/restaurant-seating/internal/utils"
)

// AuthHandler owns signup, login and the refresh-token session endpoints.
// Signups land in the identity store and are announced on the event bus so
// the entity-store projection catches up asynchronously.
type AuthHandler struct {
	identity  *identity.Store
	tokens    *repository.TokenRepo
	publisher *events.Publisher

	jwtSecret      string
	accessTTLMin   int
	refreshTTLDays int
	bcryptCost     int
}

// NewAuthHandler constructs an AuthHandler. Panics on nil deps.
func NewAuthHandler(
	ids *identity.Store,
	tokens *repository.TokenRepo,
	publisher *events.Publisher,
	jwtSecret string,
	accessTTLMin, refreshTTLDays, bcryptCost int,
) *AuthHandler {
	if ids == nil || tokens == nil || publisher == nil {
		panic("nil dependency passed to NewAuthHandler")
	}
	return &AuthHandler{
		identity:       ids,
		tokens:         tokens,
		publisher:      publisher,
		jwtSecret:      jwtSecret,
		accessTTLMin:   accessTTLMin,
		refreshTTLDays: refreshTTLDays,
		bcryptCost:     bcryptCost,
	}
}

// Register handles POST /v1/auth/register. Every violated field is reported
// in one response. A taken email is a 409.
func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	var fields []string
	if strings.TrimSpace(req.Username) == "" {
		fields = append(fields, "username is required")
	}
	if !strings.Contains(req.Email, "@") {
		fields = append(fields, "email must be a valid email address")
	}
	if strings.TrimSpace(req.Name) == "" {
		fields = append(fields, "name is required")
	}
	if len(req.Password) < 8 {
		fields = append(fields, "password must be at least 8 characters")
	}
	if len(fields) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
	}

	hash, err := utils.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		return writeServiceError(c, err)
	}
	rec := &identity.Record{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        strings.ToLower(req.Email),
		Name:         req.Name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.identity.Create(c.Request().Context(), rec); err != nil {
		if errors.Is(err, identity.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		return writeServiceError(c, err)
	}

	// Announce the signup so the entity-store projection gets written. The
	// account itself is already durable; a bus outage only delays projection
	// and notifications, so it does not fail the signup.
	ev := events.UserCreatedEvent{User: model.User{
		ID:        rec.ID,
		Username:  rec.Username,
		Email:     rec.Email,
		Name:      rec.Name,
		CreatedAt: rec.CreatedAt,
	}}
	if err := h.publisher.Publish(c.Request().Context(), events.DetailUserCreated, []interface{}{ev}); err != nil {
		log.Printf("auth: publishing USER_CREATED for %s failed: %v", rec.ID, err)
	}

	return h.issueTokens(c, http.StatusCreated, rec)
}

// Login handles POST /v1/auth/login. A bad email and a bad password are
// indistinguishable to the caller.
func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	rec, err := h.identity.GetByEmail(c.Request().Context(), strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return writeServiceError(c, err)
	}
	if !utils.VerifyPassword(rec.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return h.issueTokens(c, http.StatusOK, rec)
}

// Refresh handles POST /v1/auth/refresh. The presented token is rotated:
// the old one is revoked and a fresh pair is issued. Claims are rebuilt from
// the current identity record, so a restaurant association granted since
// login shows up in the new access token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw, ok := bindRefreshToken(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	hash := utils.HashRefreshRaw(raw)
	userID, err := h.tokens.LookupRefresh(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		return writeServiceError(c, err)
	}
	rec, err := h.identity.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		return writeServiceError(c, err)
	}
	if err := h.tokens.RevokeRefresh(ctx, hash); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return writeServiceError(c, err)
	}
	return h.issueTokens(c, http.StatusOK, rec)
}

// Logout handles POST /v1/auth/logout by revoking the presented refresh
// token. Revoking an already dead token still answers 204.
func (h *AuthHandler) Logout(c echo.Context) error {
	raw, ok := bindRefreshToken(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	err := h.tokens.RevokeRefresh(c.Request().Context(), utils.HashRefreshRaw(raw))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /v1/auth/me, returning the current account from the
// identity store rather than echoing token claims, so it reflects an
// association change before the token does.
func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := principalFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	rec, err := h.identity.GetByID(c.Request().Context(), p.ID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, model.User{
		ID:             rec.ID,
		Username:       rec.Username,
		Email:          rec.Email,
		Name:           rec.Name,
		CreatedAt:      rec.CreatedAt,
		RestaurantID:   rec.RestaurantID,
		RestaurantRole: rec.RestaurantRole,
	})
}

// issueTokens mints an access/refresh pair for the account and stores the
// refresh hash.
func (h *AuthHandler) issueTokens(c echo.Context, status int, rec *identity.Record) error {
	p := model.Principal{
		ID:             rec.ID,
		Username:       rec.Username,
		Email:          rec.Email,
		Name:           rec.Name,
		RestaurantID:   rec.RestaurantID,
		RestaurantRole: rec.RestaurantRole,
	}
	access, err := utils.NewAccessToken(h.jwtSecret, p, h.accessTTLMin)
	if err != nil {
		return writeServiceError(c, err)
	}
	refresh, err := utils.NewRefreshToken(h.refreshTTLDays)
	if err != nil {
		return writeServiceError(c, err)
	}
	if err := h.storeRefresh(c.Request().Context(), rec.ID, refresh); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(status, echo.Map{
		"id":           rec.ID,
		"accessToken":  access.Token,
		"refreshToken": refresh.Raw,
		"expiresAt":    access.Exp.Format(time.RFC3339),
	})
}

func (h *AuthHandler) storeRefresh(ctx context.Context, userID string, refresh utils.RefreshToken) error {
	return h.tokens.StoreRefresh(ctx, userID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp)
}

func bindRefreshToken(c echo.Context) (string, bool) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return "", false
	}
	return req.RefreshToken, true
}
