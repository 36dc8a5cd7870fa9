package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// QueuePublisher is the slice of the broker the queuer needs; satisfied by
// *broker.Broker.
type QueuePublisher interface {
	PublishQueue(ctx context.Context, queue string, body []byte) error
}

// Queuer places outbound email requests on the notifications queue. Sending
// happens asynchronously in the deliver worker.
type Queuer struct {
	bus QueuePublisher
}

// NewQueuer constructs a Queuer. Panics on a nil bus.
func NewQueuer(bus QueuePublisher) *Queuer {
	if bus == nil {
		panic("nil bus passed to NewQueuer")
	}
	return &Queuer{bus: bus}
}

// QueueEmail enqueues one serialized send request.
func (q *Queuer) QueueEmail(ctx context.Context, req SendEmailRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal email request: %w", err)
	}
	if err := q.bus.PublishQueue(ctx, QueueOutbound, body); err != nil {
		return fmt.Errorf("queue email: %w", err)
	}
	log.Printf("email-queuer: queued email to %v", req.Destination.ToAddresses)
	return nil
}
