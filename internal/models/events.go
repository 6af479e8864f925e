package models

import "time"

// NATS subjects for domain events published after commit, best-effort.
const (
	EventTicketPurchased = "ticket.purchased"
	EventRefundRequested = "refund.requested"
	EventRefundApproved  = "refund.approved"
	EventRefundRejected  = "refund.rejected"
	EventSeatLockExpired = "seat.lock_expired"
)

// TicketPurchasedEvent is published once per settled purchase
type TicketPurchasedEvent struct {
	TicketID     int64     `json:"ticket_id"`
	PaymentID    int64     `json:"payment_id"`
	UserID       int64     `json:"user_id"`
	SessionID    int64     `json:"session_id"`
	TicketTypeID int64     `json:"ticket_type_id"`
	SeatID       *int64    `json:"seat_id,omitempty"`
	Amount       int64     `json:"amount"`
	Timestamp    time.Time `json:"timestamp"`
}

// RefundRequestedEvent is published when a buyer files a refund request
type RefundRequestedEvent struct {
	RefundID  int64     `json:"refund_id"`
	TicketID  int64     `json:"ticket_id"`
	UserID    int64     `json:"user_id"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// RefundDecidedEvent is published for both approve and reject outcomes
type RefundDecidedEvent struct {
	RefundID   int64        `json:"refund_id"`
	TicketID   int64        `json:"ticket_id"`
	UserID     int64        `json:"user_id"`
	Amount     int64        `json:"amount"`
	Status     RefundStatus `json:"status"`
	ReviewedBy int64        `json:"reviewed_by"`
	Timestamp  time.Time    `json:"timestamp"`
}

// SeatLockExpiredEvent is published by the reaper when it returns an
// expired-lock seat to the available pool
type SeatLockExpiredEvent struct {
	SeatID    int64     `json:"seat_id"`
	EventID   int64     `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
}
