// Package broker wraps the AMQP connection shared by the event bus, the
// storage change stream and the outbound notification queue. One Broker is
// constructed in the composition root and injected everywhere; publishers
// open short-lived channels on the shared connection, consumers run
// reconnecting loops on their own connections.
package broker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Broker is a lazily-connecting AMQP client. The zero value is not usable;
// construct with New.
type Broker struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
}

// New returns a Broker for the given AMQP URL. No connection is made until
// the first publish or consume; a broker that is down at startup only delays
// delivery, it does not fail the process.
func New(url string) *Broker {
	return &Broker{url: url}
}

// channel returns a fresh channel on the shared connection, dialing it if
// needed. The caller must close the channel.
func (b *Broker) channel() (*amqp.Channel, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil || b.conn.IsClosed() {
		conn, err := amqp.Dial(b.url)
		if err != nil {
			return nil, fmt.Errorf("dial broker: %w", err)
		}
		b.conn = conn
	}
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("channel open: %w", err)
	}
	return ch, nil
}

// PublishQueue publishes a persistent message onto a durable queue via the
// default exchange, declaring the queue first (idempotent).
func (b *Broker) PublishQueue(ctx context.Context, queue string, body []byte) error {
	ch, err := b.channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return ch.PublishWithContext(ctx, "", queue, false, false, persistent(body))
}

// PublishTopic publishes a persistent message to a durable topic exchange
// under the given routing key, declaring the exchange first (idempotent).
func (b *Broker) PublishTopic(ctx context.Context, exchange, key string, body []byte) error {
	ch, err := b.channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	return ch.PublishWithContext(ctx, exchange, key, false, false, persistent(body))
}

func persistent(body []byte) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
}

// Handler processes one delivered message body. A nil return acks (deletes)
// the message; an error nacks it back onto the queue so the broker redrives
// it, preserving at-least-once semantics.
type Handler func(ctx context.Context, body []byte) error

// Consume runs a reconnecting consumer loop on the given durable queue,
// optionally binding it to a topic exchange under a routing key first (pass
// empty exchange to consume a plain queue). It blocks until ctx is
// cancelled; connection failures are retried with exponential backoff.
func (b *Broker) Consume(ctx context.Context, exchange, key, queue string, h Handler) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(b.url)
		if err != nil {
			log.Printf("consumer[%s]: dial failed: %v; retrying in %s", queue, err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := b.consumeLoop(ctx, conn, exchange, key, queue, h); err != nil {
			log.Printf("consumer[%s]: loop ended: %v; reconnecting", queue, err)
		}
		_ = conn.Close()
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (b *Broker) consumeLoop(ctx context.Context, conn *amqp.Connection, exchange, key, queue string, h Handler) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("consumer[%s]: set QoS failed: %v", queue, err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if exchange != "" {
		if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
			return fmt.Errorf("exchange declare: %w", err)
		}
		if err := ch.QueueBind(queue, key, exchange, false, nil); err != nil {
			return fmt.Errorf("queue bind: %w", err)
		}
	}

	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := h(ctx, d.Body); err != nil {
				log.Printf("consumer[%s]: handle message failed: %v", queue, err)
				_ = d.Nack(false, true) // requeue for redelivery
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
