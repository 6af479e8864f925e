package service

import (
	"context"
	"fmt"

	apperrors "kassa/internal/errors"
	"kassa/internal/models"
)

// InventoryAdmin is the management view of the inventory ledger, on top of
// the purchase-path InventoryLedger methods.
type InventoryAdmin interface {
	InventoryLedger
	GetByID(ctx context.Context, id int64) (*models.Inventory, error)
	List(ctx context.Context, sessionID, ticketTypeID *int64, offset, limit int) ([]models.Inventory, error)
	AdjustTotal(ctx context.Context, id int64, newTotal int) error
	SetPrice(ctx context.Context, id int64, price int64) error
}

// InventoryService serves the admin inventory endpoints. Purchases bootstrap
// inventory on demand, so explicit creation is optional and idempotent.
type InventoryService struct {
	inventory InventoryAdmin
	catalog   Catalog
}

func NewInventoryService(inventory InventoryAdmin, catalog Catalog) *InventoryService {
	return &InventoryService{inventory: inventory, catalog: catalog}
}

func (s *InventoryService) List(ctx context.Context, sessionID, ticketTypeID *int64, offset, limit int) ([]models.Inventory, error) {
	return s.inventory.List(ctx, sessionID, ticketTypeID, offset, limit)
}

// Create provisions an inventory record ahead of the first purchase. A zero
// price falls back to the ticket type's price.
func (s *InventoryService) Create(ctx context.Context, req *models.CreateInventoryRequest) (*models.Inventory, error) {
	session, err := s.catalog.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %d: %w", req.SessionID, apperrors.ErrNotFound)
	}

	tt, err := s.catalog.GetTicketType(ctx, req.TicketTypeID)
	if err != nil {
		return nil, err
	}
	if tt == nil {
		return nil, fmt.Errorf("ticket type %d: %w", req.TicketTypeID, apperrors.ErrNotFound)
	}
	if tt.EventID != session.EventID {
		return nil, fmt.Errorf("ticket type %d does not belong to session %d: %w",
			req.TicketTypeID, req.SessionID, apperrors.ErrNotFound)
	}

	price := req.Price
	if price == 0 {
		price = tt.Price
	}
	total := req.Total
	if session.Capacity > 0 && total > session.Capacity {
		total = session.Capacity
	}

	return s.inventory.EnsureRecord(ctx, req.SessionID, req.TicketTypeID, price, total)
}

// Update adjusts price and/or total. A total change shifts available by the
// same delta so sold units stay accounted for; available never drops below
// zero.
func (s *InventoryService) Update(ctx context.Context, id int64, req *models.UpdateInventoryRequest) (*models.Inventory, error) {
	inv, err := s.inventory.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory %d: %w", id, apperrors.ErrNotFound)
	}

	if req.Total != nil {
		if *req.Total < 0 {
			return nil, fmt.Errorf("total must not be negative: %w", apperrors.ErrInvalidState)
		}
		if err := s.inventory.AdjustTotal(ctx, id, *req.Total); err != nil {
			return nil, err
		}
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("price must not be negative: %w", apperrors.ErrInvalidState)
		}
		if err := s.inventory.SetPrice(ctx, id, *req.Price); err != nil {
			return nil, err
		}
	}

	return s.inventory.GetByID(ctx, id)
}
