package service

import (
	"context"
	"fmt"

	apperrors "kassa/internal/errors"
	"kassa/internal/models"
)

// SeatDirectory is the read/admin view of the seat registry. The concrete
// seat repository satisfies both this and SeatRegistry.
type SeatDirectory interface {
	ListByEvent(ctx context.Context, eventID int64) ([]models.Seat, error)
	LockedSeatIDs(ctx context.Context, eventID int64) ([]int64, error)
	CreateGrid(ctx context.Context, eventID int64, section string, rowCount, seatsPerRow int) (int, error)
}

// SeatService serves the seat state and seat map read views and the admin
// grid bootstrap. The seats table is the single source of truth for which
// seats are locked; lock ids never come from inventory.
type SeatService struct {
	seats   SeatDirectory
	tickets TicketStore
	catalog Catalog
}

func NewSeatService(seats SeatDirectory, tickets TicketStore, catalog Catalog) *SeatService {
	return &SeatService{seats: seats, tickets: tickets, catalog: catalog}
}

// State returns sold and currently-locked seat ids for one
// (session, ticket type) pair. Expired locks are excluded by the query, so a
// lagging reaper never inflates the locked set.
func (s *SeatService) State(ctx context.Context, sessionID, ticketTypeID int64) (*models.SeatStateResponse, error) {
	session, err := s.catalog.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %d: %w", sessionID, apperrors.ErrNotFound)
	}

	sold, err := s.tickets.SoldSeatIDs(ctx, sessionID, &ticketTypeID)
	if err != nil {
		return nil, err
	}
	locked, err := s.seats.LockedSeatIDs(ctx, session.EventID)
	if err != nil {
		return nil, err
	}

	seats, err := s.seats.ListByEvent(ctx, session.EventID)
	if err != nil {
		return nil, err
	}

	stats := models.SeatStats{
		Total:       len(seats),
		SoldCount:   len(sold),
		LockedCount: len(locked),
	}
	if stats.Total > 0 {
		stats.Available = stats.Total - stats.SoldCount - stats.LockedCount
		if stats.Available < 0 {
			stats.Available = 0
		}
	}

	return &models.SeatStateResponse{
		SessionID:    sessionID,
		TicketTypeID: ticketTypeID,
		Sold:         sold,
		Locked:       locked,
		Stats:        stats,
	}, nil
}

// Map returns the event's seats grouped by row, overlaid with per-session
// sold status when a session is given.
func (s *SeatService) Map(ctx context.Context, eventID int64, sessionID *int64) (*models.SeatMapResponse, error) {
	seats, err := s.seats.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(seats) == 0 {
		return nil, fmt.Errorf("event %d has no seats: %w", eventID, apperrors.ErrNotFound)
	}

	soldSet := make(map[int64]bool)
	if sessionID != nil {
		sold, err := s.tickets.SoldSeatIDs(ctx, *sessionID, nil)
		if err != nil {
			return nil, err
		}
		for _, id := range sold {
			soldSet[id] = true
		}
	}

	resp := &models.SeatMapResponse{EventID: eventID, SessionID: sessionID}
	var current *models.SeatMapRow

	for _, seat := range seats {
		status := seat.Status
		if soldSet[seat.ID] {
			status = models.SeatSold
		}
		item := models.SeatMapItem{
			ID:      seat.ID,
			Section: seat.Section,
			Row:     seat.Row,
			Number:  seat.Number,
			Status:  status,
		}

		if current == nil || !sameRow(current.Row, seat.Row) {
			resp.Rows = append(resp.Rows, models.SeatMapRow{Row: seat.Row})
			current = &resp.Rows[len(resp.Rows)-1]
		}
		current.Seats = append(current.Seats, item)

		resp.Stats.Total++
		switch status {
		case models.SeatAvailable:
			resp.Stats.Available++
		case models.SeatSold:
			resp.Stats.SoldCount++
		case models.SeatLocked:
			resp.Stats.LockedCount++
		}
	}

	return resp, nil
}

// CreateGrid provisions section/row/number seats for an event. Admin only,
// enforced at the router.
func (s *SeatService) CreateGrid(ctx context.Context, req *models.CreateSeatsRequest) (int, error) {
	if req.Rows <= 0 || req.SeatsPerRow <= 0 {
		return 0, fmt.Errorf("rows and seats_per_row must be positive: %w", apperrors.ErrInvalidState)
	}
	return s.seats.CreateGrid(ctx, req.EventID, req.Section, req.Rows, req.SeatsPerRow)
}

func sameRow(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
