// Package events bridges storage-layer mutations to asynchronous consumers:
// it publishes typed domain events onto the bus, translates seating change
// records into events, and hosts the consumers that fan events out into
// notification requests.
package events

import (
	"encoding/json"

	"github.com/iliyamo/restaurant-seating/internal/model"
)

// Exchange is the topic exchange all domain events are published to.
// Routing key = detail type.
const Exchange = "ross.events"

// Detail types carried on the bus.
const (
	DetailUserCreated      = "USER_CREATED"
	DetailSeatingCreated   = "SEATING_CREATED"
	DetailSeatingCancelled = "SEATING_CANCELLED"
)

// Queue names for the consumers registered on the bus, plus the storage
// change-stream queue feeding the stream processor.
const (
	QueueSeatingChanges  = "seatings.changes"
	QueueNotifyCreated   = "notify.seating-created"
	QueueNotifyCancelled = "notify.seating-cancelled"
	QueueProcessNewUser  = "users.created"
)

// Envelope is the immutable wire form of a domain event. Events are
// transient; the broker is the durability boundary. ID is assigned at
// publish time and only used for correlation in logs and tests.
type Envelope struct {
	ID         string          `json:"id"`
	DetailType string          `json:"detailType"`
	Detail     json.RawMessage `json:"detail"`
}

// UserCreatedEvent announces a confirmed signup in the identity store.
type UserCreatedEvent struct {
	User model.User `json:"user"`
}

// SeatingCreatedEvent announces a freshly persisted seating.
type SeatingCreatedEvent struct {
	Seating model.Seating `json:"seating"`
}

// SeatingStatusUpdatedEvent carries the new image of a seating whose status
// changed. The detail type (e.g. SEATING_CANCELLED) says which change it
// was.
type SeatingStatusUpdatedEvent struct {
	Seating model.Seating `json:"seating"`
}
