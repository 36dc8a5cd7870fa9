package events

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/iliyamo/restaurant-seating/internal/broker"
	"github.com/iliyamo/restaurant-seating/internal/model"
	"github.com/iliyamo/restaurant-seating/internal/repository"
)

// UserPutter is the write slice of the entity store the signup consumer
// needs; satisfied by *repository.UserRepo.
type UserPutter interface {
	Put(ctx context.Context, u *model.User) error
}

// UserConsumer projects confirmed signups from the identity store into the
// entity store's users collection.
type UserConsumer struct {
	users UserPutter
}

// NewUserConsumer constructs a UserConsumer. Panics on a nil store.
func NewUserConsumer(users UserPutter) *UserConsumer {
	if users == nil {
		panic("nil store passed to NewUserConsumer")
	}
	return &UserConsumer{users: users}
}

// HandleUserCreated persists the announced user. A duplicate id means a
// redelivered event whose write already landed; that is a no-op, not an
// error.
func (c *UserConsumer) HandleUserCreated(ctx context.Context, env Envelope) error {
	var ev UserCreatedEvent
	if err := json.Unmarshal(env.Detail, &ev); err != nil {
		log.Printf("[%s] process-new-user: dropping undecodable event: %v", env.ID, err)
		return nil
	}
	if err := c.users.Put(ctx, &ev.User); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			log.Printf("[%s] process-new-user: user %s already persisted", env.ID, ev.User.ID)
			return nil
		}
		return err
	}
	log.Printf("[%s] process-new-user: persisted user %s", env.ID, ev.User.ID)
	return nil
}

// Run binds the signup queue to the bus and consumes it until ctx is
// cancelled.
func (c *UserConsumer) Run(ctx context.Context, b *broker.Broker) error {
	return b.Consume(ctx, Exchange, DetailUserCreated, QueueProcessNewUser, envelopeHandler(c.HandleUserCreated))
}
