package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-seating/internal/model"
	"github.com/iliyamo/restaurant-seating/internal/repository"
	"github.com/iliyamo/restaurant-seating/internal/validation"
)

// RestaurantStore is the slice of the entity store the restaurant service
// needs. *repository.RestaurantRepo satisfies it.
type RestaurantStore interface {
	Put(ctx context.Context, r *model.Restaurant) error
	Get(ctx context.Context, id string) (*model.Restaurant, error)
	UpdateVisibility(ctx context.Context, id string, v model.RestaurantVisibility) error
	ListByVisibilityAndRegion(ctx context.Context, visibility model.RestaurantVisibility, region model.Region, limit int, cursor string) ([]model.Restaurant, string, error)
}

// IdentityAssigner is the identity-provider operation the ownership protocol
// depends on. Passing empty restaurantID and role clears the association.
// *identity.Store satisfies it.
type IdentityAssigner interface {
	AssignRestaurantAssociation(ctx context.Context, userID, restaurantID, role string) error
}

// RestaurantService owns restaurant creation, visibility toggling and the
// privacy-preserving read paths.
type RestaurantService struct {
	restaurants RestaurantStore
	identity    IdentityAssigner

	now   func() time.Time
	newID func() string
}

// NewRestaurantService constructs a RestaurantService. Panics on nil deps.
func NewRestaurantService(restaurants RestaurantStore, identity IdentityAssigner) *RestaurantService {
	if restaurants == nil || identity == nil {
		panic("nil dependency passed to NewRestaurantService")
	}
	return &RestaurantService{
		restaurants: restaurants,
		identity:    identity,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// CreateRestaurant creates a PRIVATE, auto-approved restaurant managed by
// the requesting user. The two steps (assign ownership in the identity
// store, then persist the restaurant) span two systems and are not atomic: when
// persistence fails, the assignment is compensated with a single best-effort
// clear. A failed compensation leaves the user flagged as manager of a
// restaurant that does not exist; that is logged as an operational alert and
// the caller still sees the original failure as ErrInternal.
func (s *RestaurantService) CreateRestaurant(
	ctx context.Context,
	p model.Principal,
	raw map[string]interface{},
) (*model.Restaurant, error) {
	payload, fields := validation.Restaurant(raw)
	var region model.Region
	if payload.Region != "" {
		var ok bool
		if region, ok = model.ParseRegion(payload.Region); !ok {
			fields = append(fields, validation.FieldError("region", "is not a known region"))
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	restaurant := &model.Restaurant{
		ID:             s.newID(),
		Name:           payload.Name,
		Description:    payload.Description,
		Visibility:     model.VisibilityPrivate,
		Region:         region,
		CreatedAt:      s.now().UTC().Format(time.RFC3339),
		ManagerID:      p.ID,
		ApprovalStatus: model.ApprovalApproved,
	}

	// Step 1: make the user manager of the new restaurant.
	if err := s.identity.AssignRestaurantAssociation(ctx, p.ID, restaurant.ID, string(model.RoleManager)); err != nil {
		log.Printf("restaurant-service: ownership assignment failed for user %s: %v", p.ID, err)
		return nil, ErrInternal
	}

	// Step 2: persist the restaurant.
	if err := s.restaurants.Put(ctx, restaurant); err != nil {
		log.Printf("restaurant-service: persisting restaurant %s failed, attempting ownership rollback: %v",
			restaurant.ID, err)
		if rbErr := s.identity.AssignRestaurantAssociation(ctx, p.ID, "", ""); rbErr != nil {
			log.Printf("restaurant-service: ALERT rollback failed; user %s left associated with unpersisted restaurant %s: %v",
				p.ID, restaurant.ID, rbErr)
		} else {
			log.Printf("restaurant-service: rollback done; user %s no longer associated with restaurant %s",
				p.ID, restaurant.ID)
		}
		return nil, ErrInternal
	}
	return restaurant, nil
}

// UpdateVisibility toggles a restaurant between PRIVATE and PUBLIC. Only
// the associated manager may do this, and the restaurant must still exist at
// write time (a vanished row is a retryable not-found).
func (s *RestaurantService) UpdateVisibility(ctx context.Context, restaurantID string, p model.Principal, rawVisibility string) error {
	if p.RestaurantID != restaurantID {
		return ErrForbidden
	}
	visibility, ok := model.ParseVisibility(rawVisibility)
	if !ok {
		return &ValidationError{Fields: []string{validation.FieldError("visibility", "must be PRIVATE or PUBLIC")}}
	}
	if err := s.restaurants.UpdateVisibility(ctx, restaurantID, visibility); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// GetRestaurant returns a restaurant subject to the visibility policy. A
// requester with no restaurant association only ever sees PUBLIC
// restaurants; a private or absent one is reported as not found either way,
// so existence of private restaurants never leaks. An associated requester
// may only fetch their own restaurant; any other id is forbidden.
func (s *RestaurantService) GetRestaurant(ctx context.Context, restaurantID string, p model.Principal) (*model.Restaurant, error) {
	if p.RestaurantID == "" {
		restaurant, err := s.restaurants.Get(ctx, restaurantID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if restaurant.Visibility != model.VisibilityPublic {
			return nil, ErrNotFound
		}
		return restaurant, nil
	}

	if p.RestaurantID != restaurantID {
		return nil, ErrForbidden
	}
	restaurant, err := s.restaurants.Get(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return restaurant, nil
}

// ListPublicRestaurantsByRegion returns one page of PUBLIC restaurants in
// the given region. The region token is matched case-insensitively against
// the known enum.
func (s *RestaurantService) ListPublicRestaurantsByRegion(
	ctx context.Context,
	rawRegion string,
	limit int,
	cursor string,
) (items []model.Restaurant, lastEvaluatedKey string, err error) {
	region, ok := model.ParseRegion(rawRegion)
	if !ok {
		return nil, "", &ValidationError{Fields: []string{validation.FieldError("region", "is not a known region")}}
	}
	return s.restaurants.ListByVisibilityAndRegion(ctx, model.VisibilityPublic, region, limit, cursor)
}
