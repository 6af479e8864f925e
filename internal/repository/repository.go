package repository

import (
	"kassa/internal/database"
)

type Repositories struct {
	Users     *UserRepository
	Catalog   *CatalogRepository
	Seats     *SeatRepository
	Inventory *InventoryRepository
	Tickets   *TicketRepository
	Payments  *PaymentRepository
	Refunds   *RefundRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Users:     NewUserRepository(db),
		Catalog:   NewCatalogRepository(db),
		Seats:     NewSeatRepository(db),
		Inventory: NewInventoryRepository(db),
		Tickets:   NewTicketRepository(db),
		Payments:  NewPaymentRepository(db),
		Refunds:   NewRefundRepository(db),
	}
}
