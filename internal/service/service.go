package service

import (
	"context"

	"kassa/internal/config"
	"kassa/internal/database"
	"kassa/internal/messaging"
	"kassa/internal/mutex"
	"kassa/internal/qr"
	"kassa/internal/repository"
)

// TxRunner scopes a function to one atomic transaction boundary.
// *database.DB satisfies it; tests substitute a pass-through.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Publisher emits domain events. All publication in this package is
// best-effort: failures are logged, never folded into the request outcome.
type Publisher interface {
	Publish(subject string, data interface{}) error
}

type Services struct {
	Purchase  *PurchaseService
	Refunds   *RefundService
	Tickets   *TicketService
	Seats     *SeatService
	Inventory *InventoryService
}

func NewServices(repos *repository.Repositories, db *database.DB, locker mutex.Locker, natsClient *messaging.NATSClient, qrGen *qr.Generator, cfg config.PurchaseConfig) *Services {
	return &Services{
		Purchase: NewPurchaseService(repos.Inventory, repos.Seats, repos.Users, repos.Catalog,
			repos.Tickets, repos.Payments, db, locker, natsClient, qrGen, cfg),
		Refunds: NewRefundService(repos.Refunds, repos.Tickets, repos.Payments,
			repos.Inventory, repos.Seats, repos.Users, db, natsClient),
		Tickets:   NewTicketService(repos.Tickets, repos.Payments, qrGen),
		Seats:     NewSeatService(repos.Seats, repos.Tickets, repos.Catalog),
		Inventory: NewInventoryService(repos.Inventory, repos.Catalog),
	}
}
