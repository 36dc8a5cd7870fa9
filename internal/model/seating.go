package model

// SeatingStatus is the governed field of a seating. The lifecycle engine in
// the service layer owns which transitions between these values are legal.
type SeatingStatus string

const (
	SeatingPending   SeatingStatus = "PENDING"
	SeatingAccepted  SeatingStatus = "ACCEPTED"
	SeatingSeated    SeatingStatus = "SEATED"
	SeatingClosed    SeatingStatus = "CLOSED"
	SeatingCancelled SeatingStatus = "CANCELLED"
	SeatingDeclined  SeatingStatus = "DECLINED"
)

// ParseSeatingStatus validates a raw status token. It is used when decoding
// storage change records, where a malformed status must be detected without
// aborting the batch.
func ParseSeatingStatus(raw string) (SeatingStatus, bool) {
	switch SeatingStatus(raw) {
	case SeatingPending, SeatingAccepted, SeatingSeated,
		SeatingClosed, SeatingCancelled, SeatingDeclined:
		return SeatingStatus(raw), true
	}
	return "", false
}

// Seating is a single reservation request tied to one restaurant and one
// customer. Identity is the composite (ID, RestaurantID) pair, matching the
// store key. UserID is the requesting customer and is immutable. Seatings
// are never physically deleted in normal operation; cancellation is a status
// change.
type Seating struct {
	ID           string        `json:"id"`
	RestaurantID string        `json:"restaurantId"`
	UserID       string        `json:"userId"`
	Status       SeatingStatus `json:"status"`
	SeatingTime  string        `json:"seatingTime"`
	NumSeats     int           `json:"numSeats"`
	Notes        string        `json:"notes"`
	CreatedAt    string        `json:"createdAt"`
}
