package service

import (
	"context"
	"time"

	"kassa/internal/models"
)

// Narrow views of the repository layer, one per ledger. Services depend on
// these so the workflow logic can be exercised against in-memory fakes; the
// concrete repositories satisfy them.

// InventoryLedger holds (total, available) per (session, ticket type) and
// supports conditional decrement/increment.
type InventoryLedger interface {
	ReserveUnit(ctx context.Context, sessionID, ticketTypeID int64) (bool, error)
	ReleaseUnit(ctx context.Context, sessionID, ticketTypeID int64) error
	EnsureRecord(ctx context.Context, sessionID, ticketTypeID, price int64, total int) (*models.Inventory, error)
	GetByKey(ctx context.Context, sessionID, ticketTypeID int64) (*models.Inventory, error)
}

// SeatRegistry holds per-seat status and lock expiry.
type SeatRegistry interface {
	GetByID(ctx context.Context, id int64) (*models.Seat, error)
	TryLock(ctx context.Context, seatID, eventID int64, ttl time.Duration) (bool, error)
	MarkSold(ctx context.Context, seatID int64) error
	Release(ctx context.Context, seatID int64) error
}

// BalanceLedger holds each buyer's spendable credit.
type BalanceLedger interface {
	Debit(ctx context.Context, userID, amount int64) (bool, error)
	Credit(ctx context.Context, userID, amount int64) error
}

// Catalog resolves sessions and ticket types for validation and for
// inventory bootstrap defaults.
type Catalog interface {
	GetSession(ctx context.Context, id int64) (*models.EventSession, error)
	GetTicketType(ctx context.Context, id int64) (*models.TicketType, error)
}

// TicketStore persists tickets.
type TicketStore interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	GetByID(ctx context.Context, id int64) (*models.Ticket, error)
	ListByUser(ctx context.Context, userID int64, status *models.TicketStatus, offset, limit int) ([]models.TicketListItem, error)
	SoldSeatIDs(ctx context.Context, sessionID int64, ticketTypeID *int64) ([]int64, error)
	UpdateStatusFrom(ctx context.Context, id int64, from []models.TicketStatus, to models.TicketStatus) (bool, error)
	SetQRPayload(ctx context.Context, id int64, payload string) error
}

// PaymentStore persists settled payments.
type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	LatestByTicket(ctx context.Context, ticketID int64) (*models.Payment, error)
}

// RefundStore persists refund requests and their decisions.
type RefundStore interface {
	Create(ctx context.Context, refund *models.Refund) error
	GetByID(ctx context.Context, id int64) (*models.Refund, error)
	HasRequested(ctx context.Context, ticketID int64) (bool, error)
	Decide(ctx context.Context, id, reviewerID int64, to models.RefundStatus) (bool, error)
	List(ctx context.Context, status *models.RefundStatus, offset, limit int) ([]models.Refund, error)
}
