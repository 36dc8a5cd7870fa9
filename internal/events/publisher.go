package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// PublishError reports that at least one entry of a published batch failed.
// The whole batch must be treated as failed for retry purposes: the
// transport does not tell us reliably which entries landed, so callers
// redrive everything and consumers tolerate duplicates.
type PublishError struct {
	Failed int
	Total  int
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publishing %d of %d event(s) failed", e.Failed, e.Total)
}

// TopicPublisher is the slice of the broker the publisher needs.
type TopicPublisher interface {
	PublishTopic(ctx context.Context, exchange, key string, body []byte) error
}

// Publisher publishes batches of domain events to the bus.
type Publisher struct {
	bus TopicPublisher
}

// NewPublisher constructs a Publisher. Panics on a nil bus.
func NewPublisher(bus TopicPublisher) *Publisher {
	if bus == nil {
		panic("nil bus passed to NewPublisher")
	}
	return &Publisher{bus: bus}
}

// Publish wraps every detail in an envelope and publishes the batch under
// the given detail type. All-or-nothing for retry purposes: any failed
// entry makes the whole call fail with *PublishError, and the error must
// propagate to the invoking trigger so the upstream delivery mechanism
// redrives the batch.
func (p *Publisher) Publish(ctx context.Context, detailType string, details []interface{}) error {
	if len(details) == 0 {
		return nil
	}
	failed := 0
	for _, detail := range details {
		raw, err := json.Marshal(detail)
		if err != nil {
			log.Printf("event-publisher: marshal %s detail failed: %v", detailType, err)
			failed++
			continue
		}
		env := Envelope{ID: uuid.NewString(), DetailType: detailType, Detail: raw}
		body, err := json.Marshal(env)
		if err != nil {
			log.Printf("event-publisher: marshal %s envelope failed: %v", detailType, err)
			failed++
			continue
		}
		if err := p.bus.PublishTopic(ctx, Exchange, detailType, body); err != nil {
			log.Printf("event-publisher: publish %s failed: %v", detailType, err)
			failed++
		}
	}
	if failed > 0 {
		return &PublishError{Failed: failed, Total: len(details)}
	}
	return nil
}
