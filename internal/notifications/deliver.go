package notifications

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/iliyamo/restaurant-seating/internal/broker"
)

// DeliverWorker drains the outbound notifications queue through an
// EmailSender. A message is acked (deleted from the queue) only after the
// send succeeded; failed sends are nacked back for the broker's
// redelivery/dead-letter policy, and a per-window failure count is logged as
// one aggregate line so a bad relay shows up as a single signal instead of a
// log flood.
type DeliverWorker struct {
	sender EmailSender

	failures atomic.Int64
}

// NewDeliverWorker constructs a DeliverWorker. Panics on a nil sender.
func NewDeliverWorker(sender EmailSender) *DeliverWorker {
	if sender == nil {
		panic("nil sender passed to NewDeliverWorker")
	}
	return &DeliverWorker{sender: sender}
}

// ProcessMessage handles one queued send request. Undecodable messages are
// dropped (they can never succeed); send failures are returned so the
// message stays queued.
func (w *DeliverWorker) ProcessMessage(body []byte) error {
	var req SendEmailRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Printf("deliver-worker: dropping undecodable email request: %v", err)
		return nil
	}
	if err := w.sender.Send(req); err != nil {
		w.failures.Add(1)
		return err
	}
	return nil
}

// Run consumes the outbound queue until ctx is cancelled, logging the
// aggregate failure count once a minute when non-zero.
func (w *DeliverWorker) Run(ctx context.Context, b *broker.Broker) error {
	go w.reportFailures(ctx)
	return b.Consume(ctx, "", "", QueueOutbound, func(_ context.Context, body []byte) error {
		return w.ProcessMessage(body)
	})
}

func (w *DeliverWorker) reportFailures(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := w.failures.Swap(0); n > 0 {
				log.Printf("deliver-worker: %d send(s) failed in the last window; messages left for redelivery", n)
			}
		}
	}
}
