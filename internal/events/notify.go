package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/iliyamo/restaurant-seating/internal/broker"
	"github.com/iliyamo/restaurant-seating/internal/model"
	"github.com/iliyamo/restaurant-seating/internal/notifications"
	"github.com/iliyamo/restaurant-seating/internal/repository"
)

// UserGetter and RestaurantGetter are the read slices of the entity store
// the notification consumers need; satisfied by the repositories.
type UserGetter interface {
	Get(ctx context.Context, id string) (*model.User, error)
}

type RestaurantGetter interface {
	Get(ctx context.Context, id string) (*model.Restaurant, error)
}

// EmailQueuer places a send request on the outbound queue; satisfied by
// *notifications.Queuer.
type EmailQueuer interface {
	QueueEmail(ctx context.Context, req notifications.SendEmailRequest) error
}

// Notifier consumes seating events and fans them out into email requests.
// Re-delivery of an event enqueues duplicate emails; that is accepted, since
// email does not need exactly-once. A missing referenced entity is logged
// and the event is acked, since it would never resolve on redrive and must
// not poison-pill the queue. Every other failure propagates so the broker
// redrives.
type Notifier struct {
	users       UserGetter
	restaurants RestaurantGetter
	queuer      EmailQueuer
	fromAddress string
}

// NewNotifier constructs a Notifier. Panics on nil deps.
func NewNotifier(users UserGetter, restaurants RestaurantGetter, queuer EmailQueuer, fromAddress string) *Notifier {
	if users == nil || restaurants == nil || queuer == nil {
		panic("nil dependency passed to NewNotifier")
	}
	return &Notifier{users: users, restaurants: restaurants, queuer: queuer, fromAddress: fromAddress}
}

// HandleSeatingCreated emails the customer a confirmation and the manager a
// heads-up about the new reservation.
func (n *Notifier) HandleSeatingCreated(ctx context.Context, env Envelope) error {
	var ev SeatingCreatedEvent
	if err := json.Unmarshal(env.Detail, &ev); err != nil {
		log.Printf("[%s] notify-created: dropping undecodable event %s: %v", env.DetailType, env.ID, err)
		return nil
	}
	seating := ev.Seating

	customer, err := n.users.Get(ctx, seating.UserID)
	if err != nil {
		return n.missingOK(env, "customer", err)
	}
	restaurant, err := n.restaurants.Get(ctx, seating.RestaurantID)
	if err != nil {
		return n.missingOK(env, "restaurant", err)
	}

	customerEmail := notifications.SendEmailRequest{
		FromAddress: n.fromAddress,
		Destination: notifications.Destination{ToAddresses: []string{customer.Email}},
		Message: notifications.Message{
			Subject: fmt.Sprintf("[ROSS] [%s] Your reservation at %s", seating.Status, restaurant.Name),
			HTMLBody: fmt.Sprintf(`Thank you for your reservation!<br>
<br>
Current status of your reservation is: %s<br>
<br>
<b>Summary</b><br>
Restaurant name: %s<br>
Reservation date and time: %s<br>
Number of seats: %d<br>
Notes: %s`,
				seating.Status, restaurant.Name, seating.SeatingTime, seating.NumSeats, seating.Notes),
		},
	}
	if err := n.queuer.QueueEmail(ctx, customerEmail); err != nil {
		return err
	}
	log.Printf("[%s] notify-created: email queued for customer", env.ID)

	manager, err := n.users.Get(ctx, restaurant.ManagerID)
	if err != nil {
		return n.missingOK(env, "manager", err)
	}
	managerEmail := notifications.SendEmailRequest{
		FromAddress: n.fromAddress,
		Destination: notifications.Destination{ToAddresses: []string{manager.Email}},
		Message: notifications.Message{
			Subject: fmt.Sprintf("[ROSS] [%s] New reservation for restaurant %s", seating.Status, restaurant.Name),
			HTMLBody: fmt.Sprintf(`A reservation was made for your restaurant.<br>
<br>
Current status: %s<br>
<br>
<b>Summary</b><br>
Restaurant name: %s<br>
Customer name: %s<br>
Reservation date and time: %s<br>
Number of seats: %d<br>
Notes: %s`,
				seating.Status, restaurant.Name, customer.Name, seating.SeatingTime, seating.NumSeats, seating.Notes),
		},
	}
	if err := n.queuer.QueueEmail(ctx, managerEmail); err != nil {
		return err
	}
	log.Printf("[%s] notify-created: email queued for restaurant manager", env.ID)
	return nil
}

// HandleSeatingCancelled emails the manager about a cancelled reservation.
// The customer initiated the cancellation and gets no email.
func (n *Notifier) HandleSeatingCancelled(ctx context.Context, env Envelope) error {
	var ev SeatingStatusUpdatedEvent
	if err := json.Unmarshal(env.Detail, &ev); err != nil {
		log.Printf("[%s] notify-cancelled: dropping undecodable event %s: %v", env.DetailType, env.ID, err)
		return nil
	}
	seating := ev.Seating

	customer, err := n.users.Get(ctx, seating.UserID)
	if err != nil {
		return n.missingOK(env, "customer", err)
	}
	restaurant, err := n.restaurants.Get(ctx, seating.RestaurantID)
	if err != nil {
		return n.missingOK(env, "restaurant", err)
	}
	manager, err := n.users.Get(ctx, restaurant.ManagerID)
	if err != nil {
		return n.missingOK(env, "manager", err)
	}

	managerEmail := notifications.SendEmailRequest{
		FromAddress: n.fromAddress,
		Destination: notifications.Destination{ToAddresses: []string{manager.Email}},
		Message: notifications.Message{
			Subject: fmt.Sprintf("[ROSS] [%s] Reservation for restaurant %s was cancelled", seating.Status, restaurant.Name),
			HTMLBody: fmt.Sprintf(`A reservation for your restaurant was cancelled.<br>
<br>
Current status: %s<br>
<br>
<b>Summary</b><br>
Restaurant name: %s<br>
Customer name: %s<br>
Reservation date and time: %s<br>
Number of seats: %d<br>
Notes: %s`,
				seating.Status, restaurant.Name, customer.Name, seating.SeatingTime, seating.NumSeats, seating.Notes),
		},
	}
	if err := n.queuer.QueueEmail(ctx, managerEmail); err != nil {
		return err
	}
	log.Printf("[%s] notify-cancelled: email queued for restaurant manager", env.ID)
	return nil
}

// missingOK swallows not-found errors on referenced entities (warn + ack)
// and propagates everything else.
func (n *Notifier) missingOK(env Envelope, entity string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		log.Printf("[%s] no %s found for seating event; no email will be sent", env.ID, entity)
		return nil
	}
	return err
}

// RunCreatedConsumer binds the created-notification queue to the bus and
// consumes it until ctx is cancelled.
func (n *Notifier) RunCreatedConsumer(ctx context.Context, b *broker.Broker) error {
	return b.Consume(ctx, Exchange, DetailSeatingCreated, QueueNotifyCreated, envelopeHandler(n.HandleSeatingCreated))
}

// RunCancelledConsumer binds the cancelled-notification queue to the bus and
// consumes it until ctx is cancelled.
func (n *Notifier) RunCancelledConsumer(ctx context.Context, b *broker.Broker) error {
	return b.Consume(ctx, Exchange, DetailSeatingCancelled, QueueNotifyCancelled, envelopeHandler(n.HandleSeatingCancelled))
}

// envelopeHandler adapts an envelope-typed handler to the broker's raw-body
// handler, dropping undecodable envelopes.
func envelopeHandler(h func(ctx context.Context, env Envelope) error) broker.Handler {
	return func(ctx context.Context, body []byte) error {
		var env Envelope
		if err := json.Unmarshal(body, &env); err != nil {
			log.Printf("event-consumer: dropping undecodable envelope: %v", err)
			return nil
		}
		return h(ctx, env)
	}
}
