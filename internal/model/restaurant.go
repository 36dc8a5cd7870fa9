package model

// RestaurantVisibility controls whether a restaurant shows up for customers.
// Restaurants start PRIVATE and only the owning manager may flip visibility.
type RestaurantVisibility string

const (
	VisibilityPrivate RestaurantVisibility = "PRIVATE"
	VisibilityPublic  RestaurantVisibility = "PUBLIC"
)

// ParseVisibility validates a visibility token against the known enum values.
func ParseVisibility(raw string) (RestaurantVisibility, bool) {
	switch RestaurantVisibility(raw) {
	case VisibilityPrivate:
		return VisibilityPrivate, true
	case VisibilityPublic:
		return VisibilityPublic, true
	}
	return "", false
}

// RestaurantApprovalStatus is the admin approval state of a restaurant.
// Auto-approval is the current policy; a manual approval workflow is a
// possible future version and deliberately out of scope.
type RestaurantApprovalStatus string

const ApprovalApproved RestaurantApprovalStatus = "APPROVED"

// Restaurant mirrors the `restaurants` table. ManagerID is the creating
// user's id and is immutable thereafter. ProfilePhotoURLPath is populated by
// an external media pipeline and carried here untouched.
type Restaurant struct {
	ID                  string                   `json:"id"`
	Name                string                   `json:"name"`
	Description         string                   `json:"description"`
	Visibility          RestaurantVisibility     `json:"visibility"`
	Region              Region                   `json:"region"`
	ProfilePhotoURLPath string                   `json:"profilePhotoUrlPath,omitempty"`
	CreatedAt           string                   `json:"createdAt"`
	ManagerID           string                   `json:"managerId"`
	ApprovalStatus      RestaurantApprovalStatus `json:"approvalStatus"`
}
