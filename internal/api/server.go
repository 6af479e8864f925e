package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"kassa/internal/cache"
	"kassa/internal/config"
	"kassa/internal/database"
	"kassa/internal/handlers"
	"kassa/internal/logger"
	"kassa/internal/messaging"
	"kassa/internal/metrics"
	"kassa/internal/middleware"
	"kassa/internal/mutex"
	"kassa/internal/qr"
	"kassa/internal/repository"
	"kassa/internal/service"
)

// Server wires the HTTP surface to the services and their backing stores.
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	locker   mutex.Locker
	services *service.Services
	repos    *repository.Repositories
	auth     *cache.AuthCache
}

func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Get().Warn("NATS unavailable, domain events disabled", "error", err)
	}

	// Redis backs both the advisory purchase mutex and the auth cache.
	// Neither is load-bearing: without Redis the conditional updates still
	// guarantee correctness and auth falls through to the database.
	var locker mutex.Locker = mutex.NewNopLocker()
	var authCache *cache.AuthCache
	if cfg.Redis.Enabled {
		redisLocker, err := mutex.Connect(cfg.Redis)
		if err != nil {
			logger.Get().Warn("Redis unavailable, advisory locking disabled", "error", err)
		} else {
			locker = redisLocker
			authCache = cache.NewAuthCache(redisLocker.Client(), cfg.AuthCacheTTL)
		}
	}

	repos := repository.NewRepositories(db)
	qrGen := qr.NewGenerator(cfg.Purchase.ArtifactSecret, cfg.Purchase.ArtifactBaseURL)
	services := service.NewServices(repos, db, locker, natsClient, qrGen, cfg.Purchase)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(metrics.Middleware())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		locker:   locker,
		services: services,
		repos:    repos,
		auth:     authCache,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services)

	api := s.router.Group("/api/v1")
	api.Use(middleware.BasicAuth(s.repos.Users, s.auth))
	{
		tickets := api.Group("/tickets")
		{
			tickets.POST("/purchase", h.Purchase)
			tickets.GET("/my", h.ListMyTickets)
			tickets.GET("/:id", h.GetTicket)
			tickets.GET("/:id/qr", h.TicketQR)
			tickets.POST("/:id/refund-request", h.RequestRefund)
		}

		seats := api.Group("/seats")
		{
			seats.GET("/state", h.SeatState)
			seats.GET("/map", h.SeatMap)
		}

		api.GET("/inventory", h.ListInventory)

		admin := api.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/tickets", h.CreateTicket)
			admin.POST("/seats", h.CreateSeats)

			refunds := admin.Group("/refunds")
			{
				refunds.GET("", h.ListRefunds)
				refunds.POST("/:id/approve", h.ApproveRefund)
				refunds.POST("/:id/reject", h.RejectRefund)
			}

			inventory := admin.Group("/inventory")
			{
				inventory.POST("", h.CreateInventory)
				inventory.PATCH("/:id", h.UpdateInventory)
			}
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", metrics.Handler())
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "kassa-api",
	})
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for tests and for the http.Server wrapper.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if l, ok := s.locker.(*mutex.RedisLocker); ok {
		if err := l.Close(); err != nil {
			logger.Get().Error("Error closing Redis connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
