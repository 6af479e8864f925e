package models

import (
	"time"
)

// User represents an account with a spendable credit balance
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	Credit       int64     `json:"credit" db:"credit"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Event represents a sellable event
type Event struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// EventSession represents one scheduled occurrence of an event
type EventSession struct {
	ID        int64     `json:"id" db:"id"`
	EventID   int64     `json:"event_id" db:"event_id"`
	StartsAt  time.Time `json:"starts_at" db:"starts_at"`
	Capacity  int       `json:"capacity" db:"capacity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TicketType carries the price and stock defaults used to bootstrap inventory
type TicketType struct {
	ID         int64     `json:"id" db:"id"`
	EventID    int64     `json:"event_id" db:"event_id"`
	Name       string    `json:"name" db:"name"`
	Price      int64     `json:"price" db:"price"`
	TotalStock int       `json:"total_stock" db:"total_stock"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Seat represents a physical seat of an event
type Seat struct {
	ID          int64      `json:"id" db:"id"`
	EventID     int64      `json:"event_id" db:"event_id"`
	Section     *string    `json:"section" db:"section"`
	Row         *string    `json:"row" db:"row_label"`
	Number      *string    `json:"number" db:"seat_number"`
	Status      SeatStatus `json:"status" db:"status"`
	LockedUntil *time.Time `json:"locked_until,omitempty" db:"locked_until"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Inventory is the capacity/availability counter for one
// (session, ticket type) pair
type Inventory struct {
	ID           int64     `json:"id" db:"id"`
	SessionID    int64     `json:"session_id" db:"session_id"`
	TicketTypeID int64     `json:"ticket_type_id" db:"ticket_type_id"`
	Price        int64     `json:"price" db:"price"`
	Total        int       `json:"total" db:"total"`
	Available    int       `json:"available" db:"available"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Ticket belongs to one buyer and one (session, ticket type), optionally one seat
type Ticket struct {
	ID           int64        `json:"id" db:"id"`
	UserID       int64        `json:"user_id" db:"user_id"`
	SessionID    int64        `json:"session_id" db:"session_id"`
	TicketTypeID int64        `json:"ticket_type_id" db:"ticket_type_id"`
	SeatID       *int64       `json:"seat_id,omitempty" db:"seat_id"`
	Status       TicketStatus `json:"status" db:"status"`
	QRPayload    *string      `json:"-" db:"qr_payload"`
	PurchasedAt  *time.Time   `json:"purchased_at,omitempty" db:"purchased_at"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// Payment is one row per settled purchase, immutable once written
type Payment struct {
	ID            int64         `json:"id" db:"id"`
	TicketID      int64         `json:"ticket_id" db:"ticket_id"`
	UserID        int64         `json:"user_id" db:"user_id"`
	Amount        int64         `json:"amount" db:"amount"`
	Method        PaymentMethod `json:"method" db:"method"`
	Status        PaymentStatus `json:"status" db:"status"`
	TransactionID string        `json:"transaction_id" db:"transaction_id"`
	PaidAt        *time.Time    `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// Refund is a compensation request against one ticket
type Refund struct {
	ID         int64        `json:"id" db:"id"`
	TicketID   int64        `json:"ticket_id" db:"ticket_id"`
	UserID     int64        `json:"user_id" db:"user_id"`
	Amount     int64        `json:"amount" db:"amount"`
	Reason     *string      `json:"reason,omitempty" db:"reason"`
	Status     RefundStatus `json:"status" db:"status"`
	ReviewedBy *int64       `json:"reviewed_by,omitempty" db:"reviewed_by"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" db:"updated_at"`
}
