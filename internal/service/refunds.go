package service

import (
	"context"
	"fmt"
	"time"

	apperrors "kassa/internal/errors"
	"kassa/internal/logger"
	"kassa/internal/metrics"
	"kassa/internal/models"
)

// RefundService runs the compensating workflow: request, review, and on
// approval the inverse of every purchase mutation.
type RefundService struct {
	refunds   RefundStore
	tickets   TicketStore
	payments  PaymentStore
	inventory InventoryLedger
	seats     SeatRegistry
	balances  BalanceLedger
	tx        TxRunner
	publisher Publisher
}

func NewRefundService(refunds RefundStore, tickets TicketStore, payments PaymentStore, inventory InventoryLedger, seats SeatRegistry, balances BalanceLedger, tx TxRunner, publisher Publisher) *RefundService {
	return &RefundService{
		refunds:   refunds,
		tickets:   tickets,
		payments:  payments,
		inventory: inventory,
		seats:     seats,
		balances:  balances,
		tx:        tx,
		publisher: publisher,
	}
}

// Request files a refund request for the caller's ticket. The refundable
// amount is captured from the settled payment at request time, so later price
// changes never affect it. At most one request per ticket may be open.
func (s *RefundService) Request(ctx context.Context, userID, ticketID int64, reason string) (*models.Refund, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, fmt.Errorf("ticket %d: %w", ticketID, apperrors.ErrNotFound)
	}
	if ticket.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	if !ticket.Status.Refundable() {
		return nil, fmt.Errorf("ticket %d is %s: %w", ticketID, ticket.Status, apperrors.ErrInvalidState)
	}

	open, err := s.refunds.HasRequested(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, fmt.Errorf("ticket %d already has an open refund request: %w", ticketID, apperrors.ErrInvalidState)
	}

	payment, err := s.payments.LatestByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, fmt.Errorf("ticket %d has no settled payment: %w", ticketID, apperrors.ErrInvalidState)
	}

	refund := models.Refund{
		TicketID: ticketID,
		UserID:   userID,
		Amount:   payment.Amount,
		Status:   models.RefundRequested,
	}
	if reason != "" {
		refund.Reason = &reason
	}
	if err := s.refunds.Create(ctx, &refund); err != nil {
		return nil, fmt.Errorf("create refund: %w", err)
	}

	metrics.ObserveRefund("requested")
	s.publish(ctx, models.EventRefundRequested, models.RefundRequestedEvent{
		RefundID:  refund.ID,
		TicketID:  refund.TicketID,
		UserID:    refund.UserID,
		Amount:    refund.Amount,
		Timestamp: time.Now(),
	})
	return &refund, nil
}

// Approve settles a requested refund: the refund flips to approved, the
// ticket to refunded, the inventory unit and seat return to the pool, and the
// amount is credited back. All five mutations share one transaction.
func (s *RefundService) Approve(ctx context.Context, reviewerID, refundID int64) (*models.Refund, error) {
	var refund *models.Refund

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		refund, err = s.loadForDecision(ctx, refundID)
		if err != nil {
			return err
		}

		ok, err := s.refunds.Decide(ctx, refundID, reviewerID, models.RefundApproved)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("refund %d is no longer requested: %w", refundID, apperrors.ErrInvalidState)
		}

		ticket, err := s.tickets.GetByID(ctx, refund.TicketID)
		if err != nil {
			return err
		}
		if ticket == nil {
			return fmt.Errorf("ticket %d: %w", refund.TicketID, apperrors.ErrNotFound)
		}

		ok, err = s.tickets.UpdateStatusFrom(ctx, ticket.ID,
			[]models.TicketStatus{models.TicketActive, models.TicketUsed}, models.TicketRefunded)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("ticket %d is %s: %w", ticket.ID, ticket.Status, apperrors.ErrInvalidState)
		}

		if err := s.inventory.ReleaseUnit(ctx, ticket.SessionID, ticket.TicketTypeID); err != nil {
			return err
		}

		if ticket.SeatID != nil {
			if err := s.seats.Release(ctx, *ticket.SeatID); err != nil {
				return err
			}
		}

		if err := s.balances.Credit(ctx, refund.UserID, refund.Amount); err != nil {
			return err
		}

		refund.Status = models.RefundApproved
		refund.ReviewedBy = &reviewerID
		return nil
	})
	if err != nil {
		metrics.ObserveRefund("approve_failed")
		return nil, err
	}

	metrics.ObserveRefund("approved")
	s.publishDecision(ctx, models.EventRefundApproved, refund, reviewerID)
	return refund, nil
}

// Reject closes a requested refund without compensation.
func (s *RefundService) Reject(ctx context.Context, reviewerID, refundID int64) (*models.Refund, error) {
	refund, err := s.loadForDecision(ctx, refundID)
	if err != nil {
		return nil, err
	}

	ok, err := s.refunds.Decide(ctx, refundID, reviewerID, models.RefundRejected)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("refund %d is no longer requested: %w", refundID, apperrors.ErrInvalidState)
	}

	refund.Status = models.RefundRejected
	refund.ReviewedBy = &reviewerID

	metrics.ObserveRefund("rejected")
	s.publishDecision(ctx, models.EventRefundRejected, refund, reviewerID)
	return refund, nil
}

func (s *RefundService) List(ctx context.Context, status *models.RefundStatus, offset, limit int) ([]models.Refund, error) {
	return s.refunds.List(ctx, status, offset, limit)
}

func (s *RefundService) loadForDecision(ctx context.Context, refundID int64) (*models.Refund, error) {
	refund, err := s.refunds.GetByID(ctx, refundID)
	if err != nil {
		return nil, err
	}
	if refund == nil {
		return nil, fmt.Errorf("refund %d: %w", refundID, apperrors.ErrNotFound)
	}
	if refund.Status != models.RefundRequested {
		return nil, fmt.Errorf("refund %d is %s: %w", refundID, refund.Status, apperrors.ErrInvalidState)
	}
	return refund, nil
}

func (s *RefundService) publishDecision(ctx context.Context, subject string, refund *models.Refund, reviewerID int64) {
	s.publish(ctx, subject, models.RefundDecidedEvent{
		RefundID:   refund.ID,
		TicketID:   refund.TicketID,
		UserID:     refund.UserID,
		Amount:     refund.Amount,
		Status:     refund.Status,
		ReviewedBy: reviewerID,
		Timestamp:  time.Now(),
	})
}

func (s *RefundService) publish(ctx context.Context, subject string, event interface{}) {
	if err := s.publisher.Publish(subject, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish refund event",
			"error", err, "event_type", subject)
	}
}
