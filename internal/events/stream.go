package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/iliyamo/restaurant-seating/internal/broker"
	"github.com/iliyamo/restaurant-seating/internal/model"
	"github.com/iliyamo/restaurant-seating/internal/repository"
)

// BrokerChangeStream carries seating change records from the repository onto
// the durable change-stream queue, where the stream processor picks them up.
// It satisfies repository.SeatingChangeStream.
type BrokerChangeStream struct {
	bus interface {
		PublishQueue(ctx context.Context, queue string, body []byte) error
	}
}

// NewBrokerChangeStream constructs the broker-backed change stream.
func NewBrokerChangeStream(b *broker.Broker) *BrokerChangeStream {
	if b == nil {
		panic("nil broker passed to NewBrokerChangeStream")
	}
	return &BrokerChangeStream{bus: b}
}

// Emit serializes the change record onto the change-stream queue.
func (s *BrokerChangeStream) Emit(ctx context.Context, rec repository.SeatingChange) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal change record: %w", err)
	}
	return s.bus.PublishQueue(ctx, QueueSeatingChanges, body)
}

// EventPublisher is what the stream processor publishes through; satisfied
// by *Publisher, faked in tests.
type EventPublisher interface {
	Publish(ctx context.Context, detailType string, details []interface{}) error
}

// StreamProcessor translates storage change records into domain events.
// Only two kinds of change leave the system as notifications: inserts
// (SEATING_CREATED) and status changes landing on CANCELLED
// (SEATING_CANCELLED). Everything else, including PENDING to ACCEPTED, stays
// internal.
type StreamProcessor struct {
	publisher EventPublisher
}

// NewStreamProcessor constructs a StreamProcessor. Panics on a nil
// publisher.
func NewStreamProcessor(publisher EventPublisher) *StreamProcessor {
	if publisher == nil {
		panic("nil publisher passed to NewStreamProcessor")
	}
	return &StreamProcessor{publisher: publisher}
}

// ProcessBatch classifies a batch of change records and publishes the
// resulting events, one publish call per detail type. A publish failure is
// returned so the invoker nacks the batch and the broker redrives it.
func (sp *StreamProcessor) ProcessBatch(ctx context.Context, records []repository.SeatingChange) error {
	var created, cancelled []interface{}

	for _, rec := range records {
		switch rec.EventName {
		case repository.ChangeInsert:
			if rec.NewImage == nil {
				continue
			}
			created = append(created, SeatingCreatedEvent{Seating: *rec.NewImage})
		case repository.ChangeModify:
			if rec.OldImage == nil || rec.NewImage == nil {
				continue
			}
			// A malformed status in either image counts as "no status
			// change": the record is swallowed rather than failing the
			// batch.
			oldStatus, okOld := model.ParseSeatingStatus(string(rec.OldImage.Status))
			newStatus, okNew := model.ParseSeatingStatus(string(rec.NewImage.Status))
			if !okOld || !okNew || oldStatus == newStatus {
				continue
			}
			if newStatus == model.SeatingCancelled {
				cancelled = append(cancelled, SeatingStatusUpdatedEvent{Seating: *rec.NewImage})
			}
		}
	}

	if len(created) > 0 {
		if err := sp.publisher.Publish(ctx, DetailSeatingCreated, created); err != nil {
			return err
		}
		log.Printf("stream-processor: published %d seating created event(s)", len(created))
	}
	if len(cancelled) > 0 {
		if err := sp.publisher.Publish(ctx, DetailSeatingCancelled, cancelled); err != nil {
			return err
		}
		log.Printf("stream-processor: published %d seating cancelled event(s)", len(cancelled))
	}
	return nil
}

// RunStreamWorker consumes the change-stream queue and feeds records through
// the processor. Blocks until ctx is cancelled.
func (sp *StreamProcessor) RunStreamWorker(ctx context.Context, b *broker.Broker) error {
	return b.Consume(ctx, "", "", QueueSeatingChanges, func(ctx context.Context, body []byte) error {
		var rec repository.SeatingChange
		if err := json.Unmarshal(body, &rec); err != nil {
			// An undecodable record can never succeed; drop it rather than
			// redrive forever.
			log.Printf("stream-processor: dropping undecodable change record: %v", err)
			return nil
		}
		return sp.ProcessBatch(ctx, []repository.SeatingChange{rec})
	})
}
