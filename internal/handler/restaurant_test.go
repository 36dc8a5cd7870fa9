package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-seating/internal/handler"
	"github.com/iliyamo/restaurant-seating/internal/model"
	"github.com/iliyamo/restaurant-seating/internal/repository"
	"github.com/iliyamo/restaurant-seating/internal/service"
)

type memRestaurantStore struct {
	restaurants map[string]*model.Restaurant
}

func newMemRestaurantStore(restaurants ...*model.Restaurant) *memRestaurantStore {
	m := &memRestaurantStore{restaurants: map[string]*model.Restaurant{}}
	for _, r := range restaurants {
		m.restaurants[r.ID] = r
	}
	return m
}

func (m *memRestaurantStore) Put(_ context.Context, r *model.Restaurant) error {
	cp := *r
	m.restaurants[r.ID] = &cp
	return nil
}

func (m *memRestaurantStore) Get(_ context.Context, id string) (*model.Restaurant, error) {
	r, ok := m.restaurants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRestaurantStore) UpdateVisibility(_ context.Context, id string, v model.RestaurantVisibility) error {
	r, ok := m.restaurants[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.Visibility = v
	return nil
}

func (m *memRestaurantStore) ListByVisibilityAndRegion(_ context.Context, visibility model.RestaurantVisibility, region model.Region, limit int, cursor string) ([]model.Restaurant, string, error) {
	items := []model.Restaurant{}
	for _, r := range m.restaurants {
		if r.Visibility == visibility && r.Region == region {
			items = append(items, *r)
		}
	}
	return items, "", nil
}

type noopIdentity struct{}

func (noopIdentity) AssignRestaurantAssociation(_ context.Context, _, _, _ string) error { return nil }

func restaurantHandlerFixture(restaurants ...*model.Restaurant) *handler.RestaurantHandler {
	svc := service.NewRestaurantService(newMemRestaurantStore(restaurants...), noopIdentity{})
	return handler.NewRestaurantHandler(svc)
}

func TestRestaurantCreateEndpoint(t *testing.T) {
	h := restaurantHandlerFixture()

	rec := do(h.Create, http.MethodPost, "/v1/restaurants",
		`{"name":"Luigi's","description":"Neapolitan pizza","region":"bronx"}`,
		testCustomer, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["id"])
	assert.Equal(t, "/v1/restaurants/"+resp["id"], rec.Header().Get("Location"))
}

func TestRestaurantGetEndpoint(t *testing.T) {
	private := &model.Restaurant{ID: "rest-1", Name: "Luigi's", Visibility: model.VisibilityPrivate, Region: model.RegionBronx}
	h := restaurantHandlerFixture(private)
	params := map[string]string{"restaurantId": "rest-1"}

	t.Run("customer cannot see a private restaurant", func(t *testing.T) {
		rec := do(h.Get, http.MethodGet, "/v1/restaurants/rest-1", "", testCustomer, params)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("owner reads it", func(t *testing.T) {
		owner := model.Principal{ID: "mgr-1", RestaurantID: "rest-1", RestaurantRole: "MANAGER"}
		rec := do(h.Get, http.MethodGet, "/v1/restaurants/rest-1", "", owner, params)
		require.Equal(t, http.StatusOK, rec.Code)

		var r model.Restaurant
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
		assert.Equal(t, "Luigi's", r.Name)
	})
}

func TestRestaurantListByRegionEndpoint(t *testing.T) {
	public := &model.Restaurant{ID: "rest-2", Name: "Blue Door", Visibility: model.VisibilityPublic, Region: model.RegionBronx}
	h := restaurantHandlerFixture(public)

	t.Run("lists public restaurants in the region", func(t *testing.T) {
		rec := do(h.ListByRegion, http.MethodGet, "/v1/restaurants/region/bronx", "",
			model.Principal{}, map[string]string{"region": "bronx"})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Items []model.Restaurant `json:"items"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "rest-2", resp.Items[0].ID)
	})

	t.Run("unknown region is a 400", func(t *testing.T) {
		rec := do(h.ListByRegion, http.MethodGet, "/v1/restaurants/region/atlantis", "",
			model.Principal{}, map[string]string{"region": "atlantis"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRestaurantUpdateVisibilityEndpoint(t *testing.T) {
	private := &model.Restaurant{ID: "rest-1", Visibility: model.VisibilityPrivate, Region: model.RegionBronx}
	owner := model.Principal{ID: "mgr-1", RestaurantID: "rest-1", RestaurantRole: "MANAGER"}
	params := map[string]string{"restaurantId": "rest-1"}

	t.Run("owner publishes", func(t *testing.T) {
		h := restaurantHandlerFixture(private)
		rec := do(h.UpdateVisibility, http.MethodPatch, "/v1/restaurants/rest-1/visibility",
			`{"visibility":"PUBLIC"}`, owner, params)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		h := restaurantHandlerFixture(private)
		rec := do(h.UpdateVisibility, http.MethodPatch, "/v1/restaurants/rest-1/visibility",
			`{"visibility":"PUBLIC"}`, testCustomer, params)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
