package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kassa/internal/config"
	apperrors "kassa/internal/errors"
	"kassa/internal/logger"
	"kassa/internal/metrics"
	"kassa/internal/models"
	"kassa/internal/mutex"
	"kassa/internal/qr"
)

// PurchaseService composes the seat registry, inventory ledger and balance
// ledger into one all-or-nothing purchase workflow.
type PurchaseService struct {
	inventory InventoryLedger
	seats     SeatRegistry
	balances  BalanceLedger
	catalog   Catalog
	tickets   TicketStore
	payments  PaymentStore
	tx        TxRunner
	locker    mutex.Locker
	publisher Publisher
	qrGen     *qr.Generator
	cfg       config.PurchaseConfig
}

func NewPurchaseService(inventory InventoryLedger, seats SeatRegistry, balances BalanceLedger, catalog Catalog, tickets TicketStore, payments PaymentStore, tx TxRunner, locker mutex.Locker, publisher Publisher, qrGen *qr.Generator, cfg config.PurchaseConfig) *PurchaseService {
	return &PurchaseService{
		inventory: inventory,
		seats:     seats,
		balances:  balances,
		catalog:   catalog,
		tickets:   tickets,
		payments:  payments,
		tx:        tx,
		locker:    locker,
		publisher: publisher,
		qrGen:     qrGen,
		cfg:       cfg,
	}
}

// Purchase settles one ticket for the buyer, or fails with a typed error:
// ErrNotFound (session/ticket type/seat missing or mismatched), ErrSeatTaken,
// ErrOutOfStock, ErrInsufficientCredit, ErrLockUnavailable. Every ledger
// mutation of a failed attempt is rolled back; partial states are never
// observable.
func (s *PurchaseService) Purchase(ctx context.Context, userID int64, req *models.PurchaseRequest) (*models.PurchaseResponse, error) {
	// Advisory mutexes only thin the herd in front of the conditional
	// updates; the transaction below is what correctness rests on.
	leases, err := s.acquireLocks(ctx, req)
	if err != nil {
		return nil, err
	}
	defer s.releaseLocks(ctx, leases)

	var (
		ticket  models.Ticket
		payment models.Payment
	)

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		inv, err := s.resolveInventory(ctx, req.SessionID, req.TicketTypeID)
		if err != nil {
			return err
		}

		if req.SeatID != nil {
			if err := s.lockSeat(ctx, *req.SeatID, req.SessionID); err != nil {
				return err
			}
		}

		ok, err := s.inventory.ReserveUnit(ctx, req.SessionID, req.TicketTypeID)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrOutOfStock
		}

		ok, err = s.balances.Debit(ctx, userID, inv.Price)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrInsufficientCredit
		}

		now := time.Now()
		ticket = models.Ticket{
			UserID:       userID,
			SessionID:    req.SessionID,
			TicketTypeID: req.TicketTypeID,
			SeatID:       req.SeatID,
			Status:       models.TicketActive,
			PurchasedAt:  &now,
		}
		if err := s.tickets.Create(ctx, &ticket); err != nil {
			return fmt.Errorf("create ticket: %w", err)
		}

		payment = models.Payment{
			TicketID:      ticket.ID,
			UserID:        userID,
			Amount:        inv.Price,
			Method:        models.PaymentMethodCredit,
			Status:        models.PaymentPaid,
			TransactionID: uuid.New().String(),
			PaidAt:        &now,
		}
		if err := s.payments.Create(ctx, &payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		if req.SeatID != nil {
			if err := s.seats.MarkSold(ctx, *req.SeatID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		metrics.ObservePurchase(purchaseOutcome(err))
		return nil, err
	}

	metrics.ObservePurchase("settled")
	s.attachArtifact(ctx, &ticket, payment.TransactionID)
	s.publishPurchased(ctx, &ticket, &payment)

	return &models.PurchaseResponse{Ticket: ticket, Payment: payment}, nil
}

// resolveInventory loads the inventory row for the key, bootstrapping it from
// ticket-type/session defaults on first purchase. Bootstrap is idempotent
// under concurrent first-purchasers.
func (s *PurchaseService) resolveInventory(ctx context.Context, sessionID, ticketTypeID int64) (*models.Inventory, error) {
	inv, err := s.inventory.GetByKey(ctx, sessionID, ticketTypeID)
	if err != nil {
		return nil, err
	}
	if inv != nil {
		return inv, nil
	}

	tt, err := s.catalog.GetTicketType(ctx, ticketTypeID)
	if err != nil {
		return nil, err
	}
	if tt == nil {
		return nil, fmt.Errorf("ticket type %d: %w", ticketTypeID, apperrors.ErrNotFound)
	}

	session, err := s.catalog.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %d: %w", sessionID, apperrors.ErrNotFound)
	}

	total := tt.TotalStock
	if session.Capacity > 0 && total > session.Capacity {
		total = session.Capacity
	}

	return s.inventory.EnsureRecord(ctx, sessionID, ticketTypeID, tt.Price, total)
}

// lockSeat verifies the seat belongs to the session's event, then takes the
// time-bounded lock. The lock and the rest of the attempt share one
// transaction, so a later failure releases the seat atomically.
func (s *PurchaseService) lockSeat(ctx context.Context, seatID, sessionID int64) error {
	session, err := s.catalog.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("session %d: %w", sessionID, apperrors.ErrNotFound)
	}

	seat, err := s.seats.GetByID(ctx, seatID)
	if err != nil {
		return err
	}
	if seat == nil || seat.EventID != session.EventID {
		return fmt.Errorf("seat %d for session %d: %w", seatID, sessionID, apperrors.ErrNotFound)
	}

	ok, err := s.seats.TryLock(ctx, seatID, session.EventID, s.cfg.SeatLockTTL)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrSeatTaken
	}
	return nil
}

func (s *PurchaseService) acquireLocks(ctx context.Context, req *models.PurchaseRequest) ([]*mutex.Lease, error) {
	keys := []string{fmt.Sprintf("purchase:%d:%d", req.SessionID, req.TicketTypeID)}
	if req.SeatID != nil {
		keys = append(keys, fmt.Sprintf("seat:%d", *req.SeatID))
	}

	var leases []*mutex.Lease
	for _, key := range keys {
		lease, err := s.locker.Acquire(ctx, key, s.cfg.MutexLeaseTTL, s.cfg.MutexWaitTimeout)
		if err != nil {
			metrics.ObserveMutex("timeout")
			logger.WithContext(ctx).Warn("Advisory lock not acquired",
				"key", key, "error", err)
			if s.cfg.MutexRequired {
				s.releaseLocks(ctx, leases)
				return nil, apperrors.ErrLockUnavailable
			}
			continue
		}
		metrics.ObserveMutex("acquired")
		leases = append(leases, lease)
	}
	return leases, nil
}

func (s *PurchaseService) releaseLocks(ctx context.Context, leases []*mutex.Lease) {
	for i := len(leases) - 1; i >= 0; i-- {
		if err := s.locker.Release(ctx, leases[i]); err != nil {
			logger.WithContext(ctx).Warn("Failed to release advisory lock",
				"key", leases[i].Key, "error", err)
		}
	}
}

// attachArtifact stores the verification payload after settlement. The
// payload is regenerable from the ticket identity, so failure here never
// blocks the purchase.
func (s *PurchaseService) attachArtifact(ctx context.Context, ticket *models.Ticket, transactionID string) {
	payload := s.qrGen.Payload(ticket.ID, ticket.UserID, transactionID)
	if err := s.tickets.SetQRPayload(ctx, ticket.ID, payload); err != nil {
		logger.WithContext(ctx).Error("Failed to attach ticket artifact",
			"error", err, "ticket_id", ticket.ID)
		return
	}
	ticket.QRPayload = &payload
}

func (s *PurchaseService) publishPurchased(ctx context.Context, ticket *models.Ticket, payment *models.Payment) {
	event := models.TicketPurchasedEvent{
		TicketID:     ticket.ID,
		PaymentID:    payment.ID,
		UserID:       ticket.UserID,
		SessionID:    ticket.SessionID,
		TicketTypeID: ticket.TicketTypeID,
		SeatID:       ticket.SeatID,
		Amount:       payment.Amount,
		Timestamp:    time.Now(),
	}

	if err := s.publisher.Publish(models.EventTicketPurchased, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish ticket purchased event",
			"error", err, "ticket_id", ticket.ID, "event_type", models.EventTicketPurchased)
	}
}

func purchaseOutcome(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrSeatTaken), errors.Is(err, apperrors.ErrOutOfStock):
		return "conflict"
	case errors.Is(err, apperrors.ErrInsufficientCredit):
		return "payment_required"
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrLockUnavailable):
		return "lock_unavailable"
	default:
		return "error"
	}
}
