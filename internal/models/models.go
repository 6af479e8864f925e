package models

// Request/response shapes for the HTTP API.

// PurchaseRequest - body of POST /api/v1/tickets/purchase. The buyer id comes
// from the auth context, never from the body.
type PurchaseRequest struct {
	SessionID    int64  `json:"session_id" binding:"required"`
	TicketTypeID int64  `json:"ticket_type_id" binding:"required"`
	SeatID       *int64 `json:"seat_id,omitempty"`
}

// PurchaseResponse - the settled outcome of a purchase
type PurchaseResponse struct {
	Ticket  Ticket  `json:"ticket"`
	Payment Payment `json:"payment"`
}

// TicketListItem - element of GET /api/v1/tickets/my
type TicketListItem struct {
	ID           int64        `json:"id"`
	SessionID    int64        `json:"session_id"`
	TicketTypeID int64        `json:"ticket_type_id"`
	SeatID       *int64       `json:"seat_id,omitempty"`
	Status       TicketStatus `json:"status"`
	Price        int64        `json:"price"`
}

// CreateTicketRequest - admin plain ticket creation (status pending)
type CreateTicketRequest struct {
	UserID       int64  `json:"user_id" binding:"required"`
	SessionID    int64  `json:"session_id" binding:"required"`
	TicketTypeID int64  `json:"ticket_type_id" binding:"required"`
	SeatID       *int64 `json:"seat_id,omitempty"`
}

// RefundRequestCreate - body of POST /api/v1/tickets/:id/refund-request
type RefundRequestCreate struct {
	Reason string `json:"reason,omitempty"`
}

// CreateInventoryRequest - admin inventory creation
type CreateInventoryRequest struct {
	SessionID    int64 `json:"session_id" binding:"required"`
	TicketTypeID int64 `json:"ticket_type_id" binding:"required"`
	Price        int64 `json:"price"`
	Total        int   `json:"total" binding:"required"`
}

// UpdateInventoryRequest - admin inventory adjustment. A total change shifts
// available by the same delta, floored at zero.
type UpdateInventoryRequest struct {
	Price *int64 `json:"price,omitempty"`
	Total *int   `json:"total,omitempty"`
}

// CreateSeatsRequest - admin seat grid creation for an event
type CreateSeatsRequest struct {
	EventID     int64  `json:"event_id" binding:"required"`
	Section     string `json:"section,omitempty"`
	Rows        int    `json:"rows" binding:"required"`
	SeatsPerRow int    `json:"seats_per_row" binding:"required"`
}

// SeatStats - aggregate counters for a seat state view
type SeatStats struct {
	Total       int `json:"total"`
	Available   int `json:"available"`
	SoldCount   int `json:"soldCount"`
	LockedCount int `json:"lockedCount"`
}

// SeatStateResponse - GET /api/v1/seats/state: sold and currently locked seat
// ids for one (session, ticket type) pair, plus aggregate counts
type SeatStateResponse struct {
	SessionID    int64     `json:"sessionId"`
	TicketTypeID int64     `json:"ticketTypeId"`
	Sold         []int64   `json:"sold"`
	Locked       []int64   `json:"locked"`
	Stats        SeatStats `json:"stats"`
}

// SeatMapItem - one seat with its display status overlay
type SeatMapItem struct {
	ID      int64      `json:"id"`
	Section *string    `json:"section,omitempty"`
	Row     *string    `json:"row,omitempty"`
	Number  *string    `json:"number,omitempty"`
	Status  SeatStatus `json:"status"`
}

// SeatMapRow - seats grouped by row label
type SeatMapRow struct {
	Row   *string       `json:"row"`
	Seats []SeatMapItem `json:"seats"`
}

// SeatMapResponse - GET /api/v1/seats/map
type SeatMapResponse struct {
	EventID   int64        `json:"eventId"`
	SessionID *int64       `json:"sessionId,omitempty"`
	Rows      []SeatMapRow `json:"rows"`
	Stats     SeatStats    `json:"stats"`
}
