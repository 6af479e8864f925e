package models

// Closed status sets for the seat, ticket, payment and refund state machines.
// Stored as strings, compared as typed constants.

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatLocked    SeatStatus = "locked"
	SeatSold      SeatStatus = "sold"
	SeatDisabled  SeatStatus = "disabled"
)

type TicketStatus string

const (
	TicketPending   TicketStatus = "pending"
	TicketActive    TicketStatus = "active"
	TicketUsed      TicketStatus = "used"
	TicketCancelled TicketStatus = "cancelled"
	TicketRefunded  TicketStatus = "refunded"
)

// Refundable reports whether a ticket in this status may enter the refund
// workflow. Only settled tickets qualify.
func (s TicketStatus) Refundable() bool {
	switch s {
	case TicketActive, TicketUsed:
		return true
	case TicketPending, TicketCancelled, TicketRefunded:
		return false
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const PaymentMethodCredit PaymentMethod = "credit"

type RefundStatus string

const (
	RefundRequested RefundStatus = "requested"
	RefundApproved  RefundStatus = "approved"
	RefundRejected  RefundStatus = "rejected"
	RefundCompleted RefundStatus = "completed"
)

// CanTransition encodes the refund state machine. The requested state is the
// only one an admin decision may leave; approved→completed belongs to the
// settlement side and is listed for completeness.
func (s RefundStatus) CanTransition(to RefundStatus) bool {
	switch s {
	case RefundRequested:
		return to == RefundApproved || to == RefundRejected
	case RefundApproved:
		return to == RefundCompleted
	case RefundRejected, RefundCompleted:
		return false
	}
	return false
}

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)
