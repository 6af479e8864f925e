package consumers

import (
	"encoding/json"

	"github.com/nats-io/stan.go"

	"kassa/internal/logger"
	"kassa/internal/models"
	"kassa/internal/repository"
)

// Handlers consumes the domain event stream. The API treats publication as
// best-effort, so consumers only do work that tolerates gaps: audit logging
// and cross-checks, never ledger mutations.
type Handlers struct {
	repos *repository.Repositories
}

func NewHandlers(repos *repository.Repositories) *Handlers {
	return &Handlers{repos: repos}
}

func (h *Handlers) HandleTicketPurchased(m *stan.Msg) {
	var event models.TicketPurchasedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		logger.Get().Error("Failed to unmarshal ticket purchased event", "error", err)
		return
	}

	logger.Get().Info("Ticket purchased",
		"ticket_id", event.TicketID,
		"payment_id", event.PaymentID,
		"user_id", event.UserID,
		"session_id", event.SessionID,
		"ticket_type_id", event.TicketTypeID,
		"amount", event.Amount)

	m.Ack()
}

func (h *Handlers) HandleRefundRequested(m *stan.Msg) {
	var event models.RefundRequestedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		logger.Get().Error("Failed to unmarshal refund requested event", "error", err)
		return
	}

	logger.Get().Info("Refund requested",
		"refund_id", event.RefundID,
		"ticket_id", event.TicketID,
		"user_id", event.UserID,
		"amount", event.Amount)

	m.Ack()
}

func (h *Handlers) HandleRefundDecided(m *stan.Msg) {
	var event models.RefundDecidedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		logger.Get().Error("Failed to unmarshal refund decided event", "error", err)
		return
	}

	logger.Get().Info("Refund decided",
		"refund_id", event.RefundID,
		"ticket_id", event.TicketID,
		"status", event.Status,
		"reviewed_by", event.ReviewedBy)

	m.Ack()
}

func (h *Handlers) HandleSeatLockExpired(m *stan.Msg) {
	var event models.SeatLockExpiredEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		logger.Get().Error("Failed to unmarshal seat lock expired event", "error", err)
		return
	}

	logger.Get().Info("Seat lock expired",
		"seat_id", event.SeatID,
		"event_id", event.EventID)

	m.Ack()
}
