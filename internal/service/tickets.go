package service

import (
	"context"
	"fmt"

	apperrors "kassa/internal/errors"
	"kassa/internal/models"
	"kassa/internal/qr"
)

// TicketService serves ticket reads and the admin creation path that skips
// the purchase workflow.
type TicketService struct {
	tickets  TicketStore
	payments PaymentStore
	qrGen    *qr.Generator
}

func NewTicketService(tickets TicketStore, payments PaymentStore, qrGen *qr.Generator) *TicketService {
	return &TicketService{tickets: tickets, payments: payments, qrGen: qrGen}
}

// Get returns a ticket visible to the caller. Non-admins only see their own.
func (s *TicketService) Get(ctx context.Context, callerID int64, isAdmin bool, ticketID int64) (*models.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, fmt.Errorf("ticket %d: %w", ticketID, apperrors.ErrNotFound)
	}
	if !isAdmin && ticket.UserID != callerID {
		return nil, apperrors.ErrForbidden
	}
	return ticket, nil
}

func (s *TicketService) ListMy(ctx context.Context, userID int64, status *models.TicketStatus, offset, limit int) ([]models.TicketListItem, error) {
	return s.tickets.ListByUser(ctx, userID, status, offset, limit)
}

// CreateAdmin inserts a pending ticket outside the purchase workflow. It
// touches no ledger; settling it is a separate concern.
func (s *TicketService) CreateAdmin(ctx context.Context, req *models.CreateTicketRequest) (*models.Ticket, error) {
	ticket := models.Ticket{
		UserID:       req.UserID,
		SessionID:    req.SessionID,
		TicketTypeID: req.TicketTypeID,
		SeatID:       req.SeatID,
		Status:       models.TicketPending,
	}
	if err := s.tickets.Create(ctx, &ticket); err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	return &ticket, nil
}

// QRImage renders the verification code for the caller's ticket as PNG. The
// stored payload is preferred; a missing one is regenerated from the settled
// payment's transaction id.
func (s *TicketService) QRImage(ctx context.Context, callerID int64, isAdmin bool, ticketID int64) ([]byte, error) {
	ticket, err := s.Get(ctx, callerID, isAdmin, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != models.TicketActive && ticket.Status != models.TicketUsed {
		return nil, fmt.Errorf("ticket %d is %s: %w", ticketID, ticket.Status, apperrors.ErrInvalidState)
	}

	payload := ""
	if ticket.QRPayload != nil {
		payload = *ticket.QRPayload
	} else {
		payment, err := s.payments.LatestByTicket(ctx, ticketID)
		if err != nil {
			return nil, err
		}
		if payment == nil {
			return nil, fmt.Errorf("ticket %d has no settled payment: %w", ticketID, apperrors.ErrInvalidState)
		}
		payload = s.qrGen.Payload(ticket.ID, ticket.UserID, payment.TransactionID)
		if err := s.tickets.SetQRPayload(ctx, ticket.ID, payload); err != nil {
			return nil, err
		}
	}

	return s.qrGen.PNG(payload)
}
