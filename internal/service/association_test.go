package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-seating/internal/repository"
	"github.com/iliyamo/restaurant-seating/internal/service"
)

type fakeProjection struct {
	assignments []assignment
	err         error
}

func (f *fakeProjection) SetRestaurantAssociation(_ context.Context, userID, restaurantID, role string) error {
	f.assignments = append(f.assignments, assignment{userID, restaurantID, role})
	return f.err
}

func TestAssociationSyncerMirrorsToProjection(t *testing.T) {
	ids := &fakeIdentity{}
	proj := &fakeProjection{}
	s := service.NewAssociationSyncer(ids, proj)

	require.NoError(t, s.AssignRestaurantAssociation(context.Background(), "user-1", "rest-1", "MANAGER"))

	want := assignment{"user-1", "rest-1", "MANAGER"}
	require.Len(t, ids.assignments, 1)
	assert.Equal(t, want, ids.assignments[0])
	require.Len(t, proj.assignments, 1)
	assert.Equal(t, want, proj.assignments[0])
}

func TestAssociationSyncerIdentityFailureStopsSync(t *testing.T) {
	ids := &fakeIdentity{assignErr: errors.New("identity provider down")}
	proj := &fakeProjection{}
	s := service.NewAssociationSyncer(ids, proj)

	assert.Error(t, s.AssignRestaurantAssociation(context.Background(), "user-1", "rest-1", "MANAGER"))
	assert.Empty(t, proj.assignments)
}

func TestAssociationSyncerToleratesLaggingProjection(t *testing.T) {
	ids := &fakeIdentity{}
	proj := &fakeProjection{err: repository.ErrNotFound}
	s := service.NewAssociationSyncer(ids, proj)

	// The projection row may not exist yet; the authoritative write decides.
	assert.NoError(t, s.AssignRestaurantAssociation(context.Background(), "user-1", "rest-1", "MANAGER"))
}
