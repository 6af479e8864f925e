package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "kassa/internal/errors"
	"kassa/internal/models"
)

func newInventoryFixture(t *testing.T) (*InventoryService, *fakeInventory, *fakeCatalog) {
	t.Helper()
	inventory := newFakeInventory()
	catalog := newFakeCatalog()
	catalog.sessions[1] = &models.EventSession{ID: 1, EventID: 10, Capacity: 100}
	catalog.ticketTypes[2] = &models.TicketType{ID: 2, EventID: 10, Name: "standard", Price: 500, TotalStock: 50}
	return NewInventoryService(inventory, catalog), inventory, catalog
}

func TestInventoryCreate(t *testing.T) {
	svc, _, _ := newInventoryFixture(t)

	inv, err := svc.Create(context.Background(), &models.CreateInventoryRequest{
		SessionID: 1, TicketTypeID: 2, Total: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, 40, inv.Total)
	assert.Equal(t, 40, inv.Available)
	// Zero price falls back to the ticket type.
	assert.Equal(t, int64(500), inv.Price)
}

func TestInventoryCreateIdempotent(t *testing.T) {
	svc, inventory, _ := newInventoryFixture(t)

	first, err := svc.Create(context.Background(), &models.CreateInventoryRequest{SessionID: 1, TicketTypeID: 2, Total: 40})
	require.NoError(t, err)

	ok, err := inventory.ReserveUnit(context.Background(), 1, 2)
	require.NoError(t, err)
	require.True(t, ok)

	second, err := svc.Create(context.Background(), &models.CreateInventoryRequest{SessionID: 1, TicketTypeID: 2, Total: 99})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 40, second.Total)
	assert.Equal(t, 39, second.Available)
}

func TestInventoryCreateClampsToCapacity(t *testing.T) {
	svc, _, catalog := newInventoryFixture(t)
	catalog.sessions[1].Capacity = 25

	inv, err := svc.Create(context.Background(), &models.CreateInventoryRequest{SessionID: 1, TicketTypeID: 2, Total: 40})
	require.NoError(t, err)
	assert.Equal(t, 25, inv.Total)
}

func TestInventoryCreateMismatchedTicketType(t *testing.T) {
	svc, _, catalog := newInventoryFixture(t)
	catalog.ticketTypes[3] = &models.TicketType{ID: 3, EventID: 99, Name: "other", Price: 100, TotalStock: 10}

	_, err := svc.Create(context.Background(), &models.CreateInventoryRequest{SessionID: 1, TicketTypeID: 3, Total: 10})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestInventoryUpdateShiftsAvailable(t *testing.T) {
	svc, inventory, _ := newInventoryFixture(t)

	inv, err := svc.Create(context.Background(), &models.CreateInventoryRequest{SessionID: 1, TicketTypeID: 2, Total: 10})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		ok, err := inventory.ReserveUnit(context.Background(), 1, 2)
		require.NoError(t, err)
		require.True(t, ok)
	}

	newTotal := 15
	updated, err := svc.Update(context.Background(), inv.ID, &models.UpdateInventoryRequest{Total: &newTotal})
	require.NoError(t, err)
	assert.Equal(t, 15, updated.Total)
	assert.Equal(t, 11, updated.Available)

	// Shrinking below the sold count floors available at zero.
	newTotal = 2
	updated, err = svc.Update(context.Background(), inv.ID, &models.UpdateInventoryRequest{Total: &newTotal})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Total)
	assert.Equal(t, 0, updated.Available)
}

func TestInventoryUpdatePrice(t *testing.T) {
	svc, _, _ := newInventoryFixture(t)

	inv, err := svc.Create(context.Background(), &models.CreateInventoryRequest{SessionID: 1, TicketTypeID: 2, Total: 10})
	require.NoError(t, err)

	price := int64(750)
	updated, err := svc.Update(context.Background(), inv.ID, &models.UpdateInventoryRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, int64(750), updated.Price)

	negative := int64(-1)
	_, err = svc.Update(context.Background(), inv.ID, &models.UpdateInventoryRequest{Price: &negative})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestInventoryUpdateUnknown(t *testing.T) {
	svc, _, _ := newInventoryFixture(t)

	price := int64(100)
	_, err := svc.Update(context.Background(), 999, &models.UpdateInventoryRequest{Price: &price})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
