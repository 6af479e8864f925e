package consumers

import (
	"context"
	"time"

	"kassa/internal/config"
	"kassa/internal/database"
	"kassa/internal/logger"
	"kassa/internal/messaging"
	"kassa/internal/models"
	"kassa/internal/repository"
)

// ConsumerService subscribes to the domain event stream and runs the seat
// lock reaper. Purchases already reclaim expired locks in-line; the reaper
// only shortens how long an abandoned seat shows as locked in read views.
type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	repos    *repository.Repositories
	handlers *Handlers

	reaperInterval time.Duration
	stopReaper     chan struct{}
	reaperDone     chan struct{}
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, err
	}

	repos := repository.NewRepositories(db)

	return &ConsumerService{
		db:             db,
		nats:           natsClient,
		repos:          repos,
		handlers:       NewHandlers(repos),
		reaperInterval: cfg.Purchase.ReaperInterval,
		stopReaper:     make(chan struct{}),
		reaperDone:     make(chan struct{}),
	}, nil
}

func (cs *ConsumerService) Start() error {
	logger.Get().Info("Starting NATS consumers")

	_, err := cs.nats.SubscribeQueue(models.EventTicketPurchased, "consumers", cs.handlers.HandleTicketPurchased)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventRefundRequested, "consumers", cs.handlers.HandleRefundRequested)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventRefundApproved, "consumers", cs.handlers.HandleRefundDecided)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventRefundRejected, "consumers", cs.handlers.HandleRefundDecided)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventSeatLockExpired, "consumers", cs.handlers.HandleSeatLockExpired)
	if err != nil {
		return err
	}

	go cs.runReaper()

	logger.Get().Info("All consumers started")
	return nil
}

// runReaper periodically returns expired-lock seats to the available pool
// and announces each one on the event stream.
func (cs *ConsumerService) runReaper() {
	defer close(cs.reaperDone)

	interval := cs.reaperInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-cs.stopReaper:
			return
		case <-ticker.C:
			cs.sweepExpiredLocks()
		}
	}
}

func (cs *ConsumerService) sweepExpiredLocks() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	seats, err := cs.repos.Seats.ReleaseExpired(ctx)
	if err != nil {
		logger.Get().Error("Failed to sweep expired seat locks", "error", err)
		return
	}
	if len(seats) == 0 {
		return
	}

	logger.Get().Info("Released expired seat locks", "count", len(seats))

	for _, seat := range seats {
		event := models.SeatLockExpiredEvent{
			SeatID:    seat.ID,
			EventID:   seat.EventID,
			Timestamp: time.Now(),
		}
		if err := cs.nats.Publish(models.EventSeatLockExpired, event); err != nil {
			logger.Get().Error("Failed to publish seat lock expired event",
				"error", err, "seat_id", seat.ID)
		}
	}
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	logger.Get().Info("Shutting down consumer service")

	close(cs.stopReaper)
	select {
	case <-cs.reaperDone:
	case <-ctx.Done():
	}

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
