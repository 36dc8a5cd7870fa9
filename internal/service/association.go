package service

import (
	"context"
	"errors"
	"log"

	"github.com/iliyamo/restaurant-seating/internal/repository"
)

// UserProjection is the entity-store side of an association change;
// satisfied by *repository.UserRepo.
type UserProjection interface {
	SetRestaurantAssociation(ctx context.Context, userID, restaurantID, role string) error
}

// AssociationSyncer applies a restaurant association to the identity store
// and mirrors it onto the entity-store users projection. The identity write
// is authoritative; the projection write is best-effort because the
// projection row may not exist yet (USER_CREATED is consumed asynchronously)
// and the next full sync of the row carries the association anyway.
type AssociationSyncer struct {
	identity IdentityAssigner
	users    UserProjection
}

// NewAssociationSyncer constructs an AssociationSyncer. Panics on nil deps.
func NewAssociationSyncer(identity IdentityAssigner, users UserProjection) *AssociationSyncer {
	if identity == nil || users == nil {
		panic("nil dependency passed to NewAssociationSyncer")
	}
	return &AssociationSyncer{identity: identity, users: users}
}

// AssignRestaurantAssociation writes the association to the identity store
// and then mirrors it. It satisfies IdentityAssigner, so the restaurant
// service's two-phase protocol and its compensation both flow through here.
func (s *AssociationSyncer) AssignRestaurantAssociation(ctx context.Context, userID, restaurantID, role string) error {
	if err := s.identity.AssignRestaurantAssociation(ctx, userID, restaurantID, role); err != nil {
		return err
	}
	if err := s.users.SetRestaurantAssociation(ctx, userID, restaurantID, role); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("association-syncer: projection update for user %s failed: %v", userID, err)
		}
	}
	return nil
}
