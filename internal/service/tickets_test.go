package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "kassa/internal/errors"
	"kassa/internal/models"
	"kassa/internal/qr"
)

func newTicketFixture(t *testing.T) (*TicketService, *fakeTickets, *fakePayments) {
	t.Helper()
	tickets := newFakeTickets()
	payments := newFakePayments()
	svc := NewTicketService(tickets, payments, qr.NewGenerator("test-secret", "https://tickets.test/verify"))
	return svc, tickets, payments
}

func TestTicketGetOwnership(t *testing.T) {
	svc, tickets, _ := newTicketFixture(t)
	ticket := &models.Ticket{UserID: 7, SessionID: 1, TicketTypeID: 2, Status: models.TicketActive}
	require.NoError(t, tickets.Create(context.Background(), ticket))

	got, err := svc.Get(context.Background(), 7, false, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)

	_, err = svc.Get(context.Background(), 8, false, ticket.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// Admins see everything.
	_, err = svc.Get(context.Background(), 8, true, ticket.ID)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), 7, false, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTicketListMyFiltersByStatus(t *testing.T) {
	svc, tickets, _ := newTicketFixture(t)
	require.NoError(t, tickets.Create(context.Background(), &models.Ticket{UserID: 7, SessionID: 1, TicketTypeID: 2, Status: models.TicketActive}))
	require.NoError(t, tickets.Create(context.Background(), &models.Ticket{UserID: 7, SessionID: 1, TicketTypeID: 2, Status: models.TicketRefunded}))
	require.NoError(t, tickets.Create(context.Background(), &models.Ticket{UserID: 8, SessionID: 1, TicketTypeID: 2, Status: models.TicketActive}))

	all, err := svc.ListMy(context.Background(), 7, nil, 0, 20)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active := models.TicketActive
	filtered, err := svc.ListMy(context.Background(), 7, &active, 0, 20)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, models.TicketActive, filtered[0].Status)
}

func TestTicketCreateAdminIsPending(t *testing.T) {
	svc, _, _ := newTicketFixture(t)

	ticket, err := svc.CreateAdmin(context.Background(), &models.CreateTicketRequest{UserID: 7, SessionID: 1, TicketTypeID: 2})
	require.NoError(t, err)
	assert.Equal(t, models.TicketPending, ticket.Status)
	assert.Nil(t, ticket.PurchasedAt)
}

func TestTicketQRImage(t *testing.T) {
	svc, tickets, payments := newTicketFixture(t)
	ticket := &models.Ticket{UserID: 7, SessionID: 1, TicketTypeID: 2, Status: models.TicketActive}
	require.NoError(t, tickets.Create(context.Background(), ticket))
	require.NoError(t, payments.Create(context.Background(), &models.Payment{
		TicketID: ticket.ID, UserID: 7, Amount: 500,
		Status: models.PaymentPaid, TransactionID: "txn-1",
	}))

	png, err := svc.QRImage(context.Background(), 7, false, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])

	// The regenerated payload is persisted for next time.
	stored, _ := tickets.GetByID(context.Background(), ticket.ID)
	assert.NotNil(t, stored.QRPayload)

	_, err = svc.QRImage(context.Background(), 8, false, ticket.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestTicketQRImagePendingTicket(t *testing.T) {
	svc, tickets, _ := newTicketFixture(t)
	ticket := &models.Ticket{UserID: 7, SessionID: 1, TicketTypeID: 2, Status: models.TicketPending}
	require.NoError(t, tickets.Create(context.Background(), ticket))

	_, err := svc.QRImage(context.Background(), 7, false, ticket.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}
