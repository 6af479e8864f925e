package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kassa/internal/config"
	apperrors "kassa/internal/errors"
	"kassa/internal/models"
	"kassa/internal/mutex"
	"kassa/internal/qr"
)

type purchaseFixture struct {
	svc       *PurchaseService
	inventory *fakeInventory
	seats     *fakeSeats
	balances  *fakeBalances
	catalog   *fakeCatalog
	tickets   *fakeTickets
	payments  *fakePayments
	publisher *recordPublisher
}

func newPurchaseFixture(t *testing.T) *purchaseFixture {
	t.Helper()

	f := &purchaseFixture{
		inventory: newFakeInventory(),
		seats:     newFakeSeats(),
		balances:  newFakeBalances(),
		catalog:   newFakeCatalog(),
		tickets:   newFakeTickets(),
		payments:  newFakePayments(),
		publisher: &recordPublisher{},
	}

	f.catalog.sessions[1] = &models.EventSession{ID: 1, EventID: 10, Capacity: 100}
	f.catalog.ticketTypes[2] = &models.TicketType{ID: 2, EventID: 10, Name: "standard", Price: 500, TotalStock: 50}

	cfg := config.PurchaseConfig{
		SeatLockTTL:      time.Minute,
		MutexLeaseTTL:    5 * time.Second,
		MutexWaitTimeout: time.Second,
	}
	f.svc = NewPurchaseService(f.inventory, f.seats, f.balances, f.catalog,
		f.tickets, f.payments, passTx{}, mutex.NewNopLocker(), f.publisher,
		qr.NewGenerator("test-secret", "https://tickets.test/verify"), cfg)
	return f
}

func TestPurchaseSettles(t *testing.T) {
	f := newPurchaseFixture(t)
	f.balances.credits[7] = 1000

	resp, err := f.svc.Purchase(context.Background(), 7, &models.PurchaseRequest{SessionID: 1, TicketTypeID: 2})
	require.NoError(t, err)

	assert.Equal(t, models.TicketActive, resp.Ticket.Status)
	assert.Equal(t, int64(7), resp.Ticket.UserID)
	assert.Equal(t, models.PaymentPaid, resp.Payment.Status)
	assert.Equal(t, int64(500), resp.Payment.Amount)
	assert.NotEmpty(t, resp.Payment.TransactionID)
	assert.Equal(t, int64(500), f.balances.balance(7))

	stored, err := f.tickets.GetByID(context.Background(), resp.Ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.QRPayload)

	assert.Equal(t, []string{models.EventTicketPurchased}, f.publisher.published())
}

func TestPurchaseBootstrapsInventory(t *testing.T) {
	f := newPurchaseFixture(t)
	f.balances.credits[7] = 1000

	_, err := f.svc.Purchase(context.Background(), 7, &models.PurchaseRequest{SessionID: 1, TicketTypeID: 2})
	require.NoError(t, err)

	inv, err := f.inventory.GetByKey(context.Background(), 1, 2)
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, 50, inv.Total)
	assert.Equal(t, 49, inv.Available)
	assert.Equal(t, int64(500), inv.Price)
}

func TestPurchaseBootstrapClampsToCapacity(t *testing.T) {
	f := newPurchaseFixture(t)
	f.balances.credits[7] = 1000
	f.catalog.sessions[1].Capacity = 30

	_, err := f.svc.Purchase(context.Background(), 7, &models.PurchaseRequest{SessionID: 1, TicketTypeID: 2})
	require.NoError(t, err)

	inv, _ := f.inventory.GetByKey(context.Background(), 1, 2)
	assert.Equal(t, 30, inv.Total)
	assert.Equal(t, 29, inv.Available)
}

func TestPurchaseOutOfStock(t *testing.T) {
	f := newPurchaseFixture(t)
	f.balances.credits[7] = 1000

	_, err := f.inventory.EnsureRecord(context.Background(), 1, 2, 500, 1)
	require.NoError(t, err)
	ok, err := f.inventory.ReserveUnit(context.Background(), 1, 2)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.Purchase(context.Background(), 7, &models.PurchaseRequest{SessionID: 1, TicketTypeID: 2})
	assert.ErrorIs(t, err, apperrors.ErrOutOfStock)
}

func TestPurchaseInsufficientCredit(t *testing.T) {
	f := newPurchaseFixture(t)
	f.balances.credits[7] = 499

	_, err := f.svc.Purchase(context.Background(), 7, &models.PurchaseRequest{SessionID: 1, TicketTypeID: 2})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientCredit)
	assert.Equal(t, int64(499), f.balances.balance(7))
}

func TestPurchaseUnknownSession(t *testing.T) {
	f := newPurchaseFixture(t)
	f.balances.credits[7] = 1000

	_, err := f.svc.Purchase(context.Background(), 7, &models.PurchaseRequest{SessionID: 99, TicketTypeID: 2})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPurchaseWithSeat(t *testing.T) {
	f := newPurchaseFixture(t)
	f.balances.credits[7] = 1000
	f.seats.add(models.Seat{ID: 1, EventID: 10, Status: models.SeatAvailable})

	seatID := int64(1)
	resp, err := f.svc.Purchase(context.Background(), 7, &models.PurchaseRequest{SessionID: 1, TicketTypeID: 2, SeatID: &seatID})
	require.NoError(t, err)
	require.NotNil(t, resp.Ticket.SeatID)

	seat, _ := f.seats.GetByID(context.Background(), 1)
	assert.Equal(t, models.SeatSold, seat.Status)
	assert.Nil(t, seat.LockedUntil)
}

func TestPurchaseSeatTaken(t *testing.T) {
	f := newPurchaseFixture(t)
	f.balances.credits[7] = 1000
	until := time.Now().Add(time.Minute)
	f.seats.add(models.Seat{ID: 1, EventID: 10, Status: models.SeatLocked, LockedUntil: &until})

	seatID := int64(1)
	_, err := f.svc.Purchase(context.Background(), 7, &models.PurchaseRequest{SessionID: 1, TicketTypeID: 2, SeatID: &seatID})
	assert.ErrorIs(t, err, apperrors.ErrSeatTaken)
	assert.Equal(t, int64(1000), f.balances.balance(7))
}

func TestPurchaseReclaimsExpiredSeatLock(t *testing.T) {
	f := newPurchaseFixture(t)
	f.balances.credits[7] = 1000
	until := time.Now().Add(-time.Second)
	f.seats.add(models.Seat{ID: 1, EventID: 10, Status: models.SeatLocked, LockedUntil: &until})

	seatID := int64(1)
	_, err := f.svc.Purchase(context.Background(), 7, &models.PurchaseRequest{SessionID: 1, TicketTypeID: 2, SeatID: &seatID})
	require.NoError(t, err)

	seat, _ := f.seats.GetByID(context.Background(), 1)
	assert.Equal(t, models.SeatSold, seat.Status)
}

func TestPurchaseSeatFromOtherEvent(t *testing.T) {
	f := newPurchaseFixture(t)
	f.balances.credits[7] = 1000
	f.seats.add(models.Seat{ID: 1, EventID: 99, Status: models.SeatAvailable})

	seatID := int64(1)
	_, err := f.svc.Purchase(context.Background(), 7, &models.PurchaseRequest{SessionID: 1, TicketTypeID: 2, SeatID: &seatID})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPurchaseConcurrentNeverOversells(t *testing.T) {
	f := newPurchaseFixture(t)
	_, err := f.inventory.EnsureRecord(context.Background(), 1, 2, 500, 5)
	require.NoError(t, err)

	const buyers = 20
	for i := int64(1); i <= buyers; i++ {
		f.balances.credits[i] = 1000
	}

	var wg sync.WaitGroup
	results := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.svc.Purchase(context.Background(), int64(i+1),
				&models.PurchaseRequest{SessionID: 1, TicketTypeID: 2})
		}(i)
	}
	wg.Wait()

	settled := 0
	for _, err := range results {
		if err == nil {
			settled++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrOutOfStock)
		}
	}
	assert.Equal(t, 5, settled)

	inv, _ := f.inventory.GetByKey(context.Background(), 1, 2)
	assert.Equal(t, 0, inv.Available)
}

func TestPurchaseConcurrentSingleSeatWinner(t *testing.T) {
	f := newPurchaseFixture(t)
	_, err := f.inventory.EnsureRecord(context.Background(), 1, 2, 500, 50)
	require.NoError(t, err)
	f.seats.add(models.Seat{ID: 1, EventID: 10, Status: models.SeatAvailable})

	const buyers = 10
	for i := int64(1); i <= buyers; i++ {
		f.balances.credits[i] = 1000
	}

	var wg sync.WaitGroup
	results := make([]error, buyers)
	seatID := int64(1)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.svc.Purchase(context.Background(), int64(i+1),
				&models.PurchaseRequest{SessionID: 1, TicketTypeID: 2, SeatID: &seatID})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrSeatTaken)
		}
	}
	assert.Equal(t, 1, winners)

	inv, _ := f.inventory.GetByKey(context.Background(), 1, 2)
	assert.Equal(t, 49, inv.Available)
}
