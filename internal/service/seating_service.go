package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-seating/internal/model"
	"github.com/iliyamo/restaurant-seating/internal/repository"
	"github.com/iliyamo/restaurant-seating/internal/validation"
)

// SeatingStore is the slice of the entity store the seating service needs.
// *repository.SeatingRepo satisfies it; tests inject an in-memory fake.
type SeatingStore interface {
	Put(ctx context.Context, s *model.Seating) error
	Get(ctx context.Context, seatingID, restaurantID string) (*model.Seating, error)
	UpdateStatusFrom(ctx context.Context, read *model.Seating, to model.SeatingStatus) error
	ListByRestaurant(ctx context.Context, restaurantID string, limit int, cursor string) ([]model.Seating, string, error)
}

// SeatingService validates and applies seating lifecycle transitions. It
// holds no state of its own; every entity is read fresh per request and the
// conditional writes in the store arbitrate races.
type SeatingService struct {
	seatings SeatingStore

	now   func() time.Time
	newID func() string
}

// NewSeatingService constructs a SeatingService. Panics on a nil store.
func NewSeatingService(seatings SeatingStore) *SeatingService {
	if seatings == nil {
		panic("nil store passed to NewSeatingService")
	}
	return &SeatingService{
		seatings: seatings,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// CreateSeating validates the raw payload and persists a fresh PENDING
// seating for the requesting customer. Every violated field is reported in
// one ValidationError. The fail-if-exists precondition on the fresh id is
// practically unreachable but surfaces as ErrConflict by contract.
func (s *SeatingService) CreateSeating(
	ctx context.Context,
	restaurantID string,
	p model.Principal,
	raw map[string]interface{},
) (*model.Seating, error) {
	payload, fields := validation.Seating(raw)
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	seating := &model.Seating{
		ID:           s.newID(),
		RestaurantID: restaurantID,
		UserID:       p.ID,
		Status:       model.SeatingPending,
		SeatingTime:  payload.SeatingTime,
		NumSeats:     payload.NumSeats,
		Notes:        payload.Notes,
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}
	if err := s.seatings.Put(ctx, seating); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return seating, nil
}

// AcceptSeating moves a PENDING seating to ACCEPTED on behalf of restaurant
// staff. Accepting an already ACCEPTED seating is an idempotent no-op; any
// other status is a conflict. The caller must be associated with the
// restaurant in the path.
func (s *SeatingService) AcceptSeating(ctx context.Context, restaurantID, seatingID string, p model.Principal) error {
	if !p.Associated(restaurantID) {
		return ErrForbidden
	}
	seating, err := s.seatings.Get(ctx, seatingID, restaurantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	// The composite-key get cannot return a foreign seating, but ownership
	// mismatch on an existing seating is modelled as forbidden, not absent.
	if seating.RestaurantID != restaurantID {
		return ErrForbidden
	}
	return s.applyTransition(ctx, seating, OpAccept)
}

// CancelSeating moves a PENDING or ACCEPTED seating to CANCELLED on behalf
// of the customer who requested it. Cancelling an already CANCELLED seating
// is an idempotent no-op; DECLINED, SEATED and CLOSED are conflicts.
func (s *SeatingService) CancelSeating(ctx context.Context, restaurantID, seatingID string, p model.Principal) error {
	seating, err := s.seatings.Get(ctx, seatingID, restaurantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if p.ID != seating.UserID {
		return ErrForbidden
	}
	return s.applyTransition(ctx, seating, OpCancel)
}

// applyTransition runs the lifecycle table against the freshly read seating
// and performs the conditional status write. A lost race (status moved
// between read and write) surfaces as ErrConflict.
func (s *SeatingService) applyTransition(ctx context.Context, seating *model.Seating, op Op) error {
	next, noop, err := ApplyTransition(seating.Status, op)
	if err != nil {
		return err
	}
	if noop {
		return nil
	}
	if err := s.seatings.UpdateStatusFrom(ctx, seating, next); err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleStatus):
			return ErrConflict
		case errors.Is(err, repository.ErrNotFound):
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ListUpcomingSeatings returns one page of seatings for the restaurant the
// requesting staff member is associated with. The cursor is the last-seen
// seating id from the previous page.
func (s *SeatingService) ListUpcomingSeatings(
	ctx context.Context,
	restaurantID string,
	p model.Principal,
	limit int,
	cursor string,
) (items []model.Seating, lastEvaluatedKey string, err error) {
	if !p.Associated(restaurantID) {
		return nil, "", ErrForbidden
	}
	return s.seatings.ListByRestaurant(ctx, restaurantID, limit, cursor)
}
