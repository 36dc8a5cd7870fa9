package model

// Principal is the authenticated acting user, derived once per request from
// the verified JWT claims. Handlers and services only ever see this typed
// value; the raw claims map never crosses the middleware boundary.
type Principal struct {
	ID             string
	Username       string
	Email          string
	Name           string
	RestaurantID   string
	RestaurantRole string
}

// Associated reports whether the principal has a staff or manager association
// with the given restaurant.
func (p Principal) Associated(restaurantID string) bool {
	return p.RestaurantID != "" && p.RestaurantID == restaurantID
}
