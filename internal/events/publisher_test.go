package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-seating/internal/events"
	"github.com/iliyamo/restaurant-seating/internal/model"
)

// fakeTopicBus records published bodies and can fail selectively.
type fakeTopicBus struct {
	bodies  [][]byte
	keys    []string
	failAll bool
}

func (f *fakeTopicBus) PublishTopic(_ context.Context, exchange, key string, body []byte) error {
	if f.failAll {
		return errors.New("broker unavailable")
	}
	if exchange != events.Exchange {
		return errors.New("unexpected exchange " + exchange)
	}
	f.keys = append(f.keys, key)
	f.bodies = append(f.bodies, body)
	return nil
}

func TestPublishWrapsDetailsInEnvelopes(t *testing.T) {
	bus := &fakeTopicBus{}
	p := events.NewPublisher(bus)

	details := []interface{}{
		events.SeatingCreatedEvent{Seating: model.Seating{ID: "seat-1"}},
		events.SeatingCreatedEvent{Seating: model.Seating{ID: "seat-2"}},
	}
	require.NoError(t, p.Publish(context.Background(), events.DetailSeatingCreated, details))
	require.Len(t, bus.bodies, 2)
	assert.Equal(t, []string{events.DetailSeatingCreated, events.DetailSeatingCreated}, bus.keys)

	var env events.Envelope
	require.NoError(t, json.Unmarshal(bus.bodies[0], &env))
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, events.DetailSeatingCreated, env.DetailType)

	var ev events.SeatingCreatedEvent
	require.NoError(t, json.Unmarshal(env.Detail, &ev))
	assert.Equal(t, "seat-1", ev.Seating.ID)
}

func TestPublishEmptyBatchIsNoop(t *testing.T) {
	bus := &fakeTopicBus{}
	p := events.NewPublisher(bus)
	assert.NoError(t, p.Publish(context.Background(), events.DetailSeatingCreated, nil))
	assert.Empty(t, bus.bodies)
}

func TestPublishReportsBatchFailure(t *testing.T) {
	bus := &fakeTopicBus{failAll: true}
	p := events.NewPublisher(bus)

	err := p.Publish(context.Background(), events.DetailSeatingCancelled, []interface{}{
		events.SeatingStatusUpdatedEvent{Seating: model.Seating{ID: "seat-1"}},
		events.SeatingStatusUpdatedEvent{Seating: model.Seating{ID: "seat-2"}},
	})

	var pe *events.PublishError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Failed)
	assert.Equal(t, 2, pe.Total)
}
