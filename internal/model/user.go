package model

// UserRole describes a user's relationship to a restaurant. Users start out
// as plain customers; creating a restaurant promotes them to MANAGER of that
// restaurant. STAFF is granted operational access (accepting seatings)
// without ownership.
type UserRole string

const (
	RoleManager  UserRole = "MANAGER"
	RoleStaff    UserRole = "STAFF"
	RoleCustomer UserRole = "CUSTOMER"
)

// User is the entity-store projection of an account as stored in the `users`
// table. It is written by the USER_CREATED event consumer and read by the
// notification consumers; the authoritative credential record lives in the
// identity store.
//
// RestaurantID and RestaurantRole are set exactly once per ownership
// assignment and cleared again on rollback. Empty strings mean "no
// association".
type User struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	CreatedAt      string `json:"createdAt"`
	RestaurantID   string `json:"restaurantId,omitempty"`
	RestaurantRole string `json:"restaurantRole,omitempty"`
}
