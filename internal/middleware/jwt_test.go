package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-seating/internal/middleware"
	"github.com/iliyamo/restaurant-seating/internal/model"
	"github.com/iliyamo/restaurant-seating/internal/utils"
)

const testSecret = "test-secret"

func authedRequest(t *testing.T, token string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestJWTAuthInjectsPrincipal(t *testing.T) {
	issued := model.Principal{
		ID:             "user-1",
		Username:       "ada",
		Email:          "ada@example.com",
		Name:           "Ada",
		RestaurantID:   "rest-1",
		RestaurantRole: "MANAGER",
	}
	access, err := utils.NewAccessToken(testSecret, issued, 5)
	require.NoError(t, err)

	c, _ := authedRequest(t, access.Token)
	var got model.Principal
	h := middleware.JWTAuth(testSecret)(func(c echo.Context) error {
		got = c.Get(middleware.PrincipalKey).(model.Principal)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, issued, got)
}

func TestJWTAuthOmitsEmptyAssociation(t *testing.T) {
	issued := model.Principal{ID: "user-1", Username: "ada", Email: "ada@example.com", Name: "Ada"}
	access, err := utils.NewAccessToken(testSecret, issued, 5)
	require.NoError(t, err)

	c, _ := authedRequest(t, access.Token)
	var got model.Principal
	h := middleware.JWTAuth(testSecret)(func(c echo.Context) error {
		got = c.Get(middleware.PrincipalKey).(model.Principal)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Empty(t, got.RestaurantID)
	assert.Empty(t, got.RestaurantRole)
}

func TestJWTAuthRejects(t *testing.T) {
	deny := func(t *testing.T, token string) {
		t.Helper()
		c, rec := authedRequest(t, token)
		h := middleware.JWTAuth(testSecret)(func(c echo.Context) error {
			t.Fatal("handler must not run")
			return nil
		})
		require.NoError(t, h(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	t.Run("missing header", func(t *testing.T) { deny(t, "") })
	t.Run("garbage token", func(t *testing.T) { deny(t, "not-a-jwt") })
	t.Run("wrong secret", func(t *testing.T) {
		access, err := utils.NewAccessToken("other-secret", model.Principal{ID: "user-1"}, 5)
		require.NoError(t, err)
		deny(t, access.Token)
	})
	t.Run("expired token", func(t *testing.T) {
		access, err := utils.NewAccessToken(testSecret, model.Principal{ID: "user-1"}, -5)
		require.NoError(t, err)
		deny(t, access.Token)
	})
}
