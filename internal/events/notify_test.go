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
	"github.com/iliyamo/restaurant-seating/internal/notifications"
	"github.com/iliyamo/restaurant-seating/internal/repository"
)

type fakeUserGetter struct {
	users map[string]*model.User
}

func (f *fakeUserGetter) Get(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

type fakeRestaurantGetter struct {
	restaurants map[string]*model.Restaurant
}

func (f *fakeRestaurantGetter) Get(_ context.Context, id string) (*model.Restaurant, error) {
	r, ok := f.restaurants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r, nil
}

type fakeQueuer struct {
	queued []notifications.SendEmailRequest
	err    error
}

func (f *fakeQueuer) QueueEmail(_ context.Context, req notifications.SendEmailRequest) error {
	if f.err != nil {
		return f.err
	}
	f.queued = append(f.queued, req)
	return nil
}

func notifierFixture(t *testing.T) (*events.Notifier, *fakeQueuer) {
	t.Helper()
	users := &fakeUserGetter{users: map[string]*model.User{
		"user-1": {ID: "user-1", Name: "Ada Customer", Email: "ada@example.com"},
		"mgr-1":  {ID: "mgr-1", Name: "Max Manager", Email: "max@example.com"},
	}}
	restaurants := &fakeRestaurantGetter{restaurants: map[string]*model.Restaurant{
		"rest-1": {ID: "rest-1", Name: "Luigi's", ManagerID: "mgr-1"},
	}}
	queuer := &fakeQueuer{}
	return events.NewNotifier(users, restaurants, queuer, "noreply@example.com"), queuer
}

func envelope(t *testing.T, detailType string, detail interface{}) events.Envelope {
	t.Helper()
	raw, err := json.Marshal(detail)
	require.NoError(t, err)
	return events.Envelope{ID: "ev-1", DetailType: detailType, Detail: raw}
}

func createdEnvelope(t *testing.T, seating model.Seating) events.Envelope {
	return envelope(t, events.DetailSeatingCreated, events.SeatingCreatedEvent{Seating: seating})
}

func TestHandleSeatingCreated(t *testing.T) {
	seating := model.Seating{
		ID: "seat-1", RestaurantID: "rest-1", UserID: "user-1",
		Status: model.SeatingPending, SeatingTime: "2026-09-01T19:00:00Z", NumSeats: 2,
	}

	t.Run("queues customer and manager emails", func(t *testing.T) {
		n, queuer := notifierFixture(t)

		require.NoError(t, n.HandleSeatingCreated(context.Background(), createdEnvelope(t, seating)))
		require.Len(t, queuer.queued, 2)

		toCustomer := queuer.queued[0]
		assert.Equal(t, []string{"ada@example.com"}, toCustomer.Destination.ToAddresses)
		assert.Contains(t, toCustomer.Message.Subject, "Your reservation at Luigi's")
		assert.Contains(t, toCustomer.Message.Subject, "PENDING")
		assert.Equal(t, "noreply@example.com", toCustomer.FromAddress)

		toManager := queuer.queued[1]
		assert.Equal(t, []string{"max@example.com"}, toManager.Destination.ToAddresses)
		assert.Contains(t, toManager.Message.Subject, "New reservation for restaurant Luigi's")
		assert.Contains(t, toManager.Message.HTMLBody, "Ada Customer")
	})

	t.Run("missing customer acks without emailing", func(t *testing.T) {
		n, queuer := notifierFixture(t)
		ghost := seating
		ghost.UserID = "user-ghost"

		assert.NoError(t, n.HandleSeatingCreated(context.Background(), createdEnvelope(t, ghost)))
		assert.Empty(t, queuer.queued)
	})

	t.Run("missing restaurant acks without emailing", func(t *testing.T) {
		n, queuer := notifierFixture(t)
		orphan := seating
		orphan.RestaurantID = "rest-ghost"

		assert.NoError(t, n.HandleSeatingCreated(context.Background(), createdEnvelope(t, orphan)))
		assert.Empty(t, queuer.queued)
	})

	t.Run("queue failure propagates for redelivery", func(t *testing.T) {
		n, queuer := notifierFixture(t)
		queuer.err = errors.New("broker unavailable")

		assert.Error(t, n.HandleSeatingCreated(context.Background(), createdEnvelope(t, seating)))
	})

	t.Run("undecodable event is dropped", func(t *testing.T) {
		n, queuer := notifierFixture(t)
		env := events.Envelope{ID: "ev-x", DetailType: events.DetailSeatingCreated, Detail: []byte("{broken")}

		assert.NoError(t, n.HandleSeatingCreated(context.Background(), env))
		assert.Empty(t, queuer.queued)
	})
}

func TestHandleSeatingCancelled(t *testing.T) {
	seating := model.Seating{
		ID: "seat-1", RestaurantID: "rest-1", UserID: "user-1",
		Status: model.SeatingCancelled, SeatingTime: "2026-09-01T19:00:00Z", NumSeats: 2,
	}
	env := envelope(t, events.DetailSeatingCancelled, events.SeatingStatusUpdatedEvent{Seating: seating})

	t.Run("queues the manager email only", func(t *testing.T) {
		n, queuer := notifierFixture(t)

		require.NoError(t, n.HandleSeatingCancelled(context.Background(), env))
		require.Len(t, queuer.queued, 1)

		toManager := queuer.queued[0]
		assert.Equal(t, []string{"max@example.com"}, toManager.Destination.ToAddresses)
		assert.Contains(t, toManager.Message.Subject, "was cancelled")
		assert.Contains(t, toManager.Message.HTMLBody, "Ada Customer")
	})

	t.Run("missing manager acks without emailing", func(t *testing.T) {
		users := &fakeUserGetter{users: map[string]*model.User{
			"user-1": {ID: "user-1", Name: "Ada Customer", Email: "ada@example.com"},
		}}
		restaurants := &fakeRestaurantGetter{restaurants: map[string]*model.Restaurant{
			"rest-1": {ID: "rest-1", Name: "Luigi's", ManagerID: "mgr-gone"},
		}}
		queuer := &fakeQueuer{}
		n := events.NewNotifier(users, restaurants, queuer, "noreply@example.com")

		assert.NoError(t, n.HandleSeatingCancelled(context.Background(), env))
		assert.Empty(t, queuer.queued)
	})
}

func TestHandleUserCreated(t *testing.T) {
	t.Run("persists the announced user", func(t *testing.T) {
		store := &fakeUserPutter{}
		c := events.NewUserConsumer(store)
		u := model.User{ID: "user-9", Username: "ada", Email: "ada@example.com", Name: "Ada"}

		env := envelope(t, events.DetailUserCreated, events.UserCreatedEvent{User: u})
		require.NoError(t, c.HandleUserCreated(context.Background(), env))
		require.Len(t, store.puts, 1)
		assert.Equal(t, "user-9", store.puts[0].ID)
	})

	t.Run("redelivered event is a no-op", func(t *testing.T) {
		store := &fakeUserPutter{err: repository.ErrAlreadyExists}
		c := events.NewUserConsumer(store)

		env := envelope(t, events.DetailUserCreated, events.UserCreatedEvent{User: model.User{ID: "user-9"}})
		assert.NoError(t, c.HandleUserCreated(context.Background(), env))
	})

	t.Run("store failure propagates for redelivery", func(t *testing.T) {
		store := &fakeUserPutter{err: errors.New("table unavailable")}
		c := events.NewUserConsumer(store)

		env := envelope(t, events.DetailUserCreated, events.UserCreatedEvent{User: model.User{ID: "user-9"}})
		assert.Error(t, c.HandleUserCreated(context.Background(), env))
	})
}

type fakeUserPutter struct {
	puts []model.User
	err  error
}

func (f *fakeUserPutter) Put(_ context.Context, u *model.User) error {
	if f.err != nil {
		return f.err
	}
	f.puts = append(f.puts, *u)
	return nil
}
