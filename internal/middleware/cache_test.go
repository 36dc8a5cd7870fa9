package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cacheContext(e *echo.Echo, target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRedisCacheMissStoresResponse(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	e := echo.New()
	c, rec := cacheContext(e, "/v1/restaurants/region/BRONX?limit=5")

	body := `{"items":[]}`
	key := cacheKey(c)
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSetEx(key, []byte(body), time.Minute).SetVal("OK")

	handled := false
	h := NewRedisCache(rdb, time.Minute)(func(c echo.Context) error {
		handled = true
		return c.String(http.StatusOK, body)
	})
	require.NoError(t, h(c))

	assert.True(t, handled)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, body, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheHitSkipsHandler(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	e := echo.New()
	c, rec := cacheContext(e, "/v1/restaurants/region/BRONX?limit=5")

	body := `{"items":[{"id":"rest-1"}]}`
	mock.ExpectGet(cacheKey(c)).SetVal(body)

	h := NewRedisCache(rdb, time.Minute)(func(c echo.Context) error {
		t.Fatal("handler must not run on a cache hit")
		return nil
	})
	require.NoError(t, h(c))

	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheKeyVariesByPathAndQuery(t *testing.T) {
	e := echo.New()
	a, _ := cacheContext(e, "/v1/restaurants/region/BRONX")
	b, _ := cacheContext(e, "/v1/restaurants/region/MANHATTAN")
	d, _ := cacheContext(e, "/v1/restaurants/region/BRONX?limit=5")

	assert.NotEqual(t, cacheKey(a), cacheKey(b))
	assert.NotEqual(t, cacheKey(a), cacheKey(d))
}

func TestRedisCacheNilClientPassesThrough(t *testing.T) {
	e := echo.New()
	c, rec := cacheContext(e, "/v1/restaurants/region/BRONX")

	h := NewRedisCache(nil, time.Minute)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, h(c))
	assert.Equal(t, "ok", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestRedisCacheSkipsNonGET(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/restaurants", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewRedisCache(rdb, time.Minute)(func(c echo.Context) error {
		return c.String(http.StatusCreated, "created")
	})
	require.NoError(t, h(c))
	assert.NoError(t, mock.ExpectationsWereMet()) // no redis traffic at all
}
