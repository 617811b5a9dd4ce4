package api

import (
	"log/slog"
	"net/http"

	"stagedoor/internal/cache"
	"stagedoor/internal/config"
	"stagedoor/internal/database"
	"stagedoor/internal/external"
	"stagedoor/internal/handlers"
	"stagedoor/internal/messaging"
	"stagedoor/internal/middleware"
	"stagedoor/internal/repository"
	"stagedoor/internal/search"
	"stagedoor/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server собирает все зависимости приложения и HTTP роутер
type Server struct {
	config       *config.Config
	db           *database.DB
	router       *gin.Engine
	natsClient   *messaging.NATSClient
	valkeyClient *cache.ValkeyClient
	esClient     *search.ElasticsearchClient
}

// NewServer wires the full dependency graph. NATS, Valkey and Elasticsearch
// are optional collaborators: the API degrades (no events, no cache, no
// search) rather than refuse to start when one of them is down.
func NewServer(cfg *config.Config, db *database.DB) *Server {
	gin.SetMode(cfg.GinMode)

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		slog.Warn("NATS unavailable, events disabled", "error", err)
		natsClient = nil
	}

	valkeyClient, err := cache.NewValkeyClient(cache.Config{
		Addr:         cfg.Valkey.Addr,
		Password:     cfg.Valkey.Password,
		UsersHashKey: cfg.Valkey.UsersHashKey,
		ShowsTTL:     cfg.Valkey.ShowsTTL,
	})
	if err != nil {
		slog.Warn("Valkey unavailable, caching disabled", "error", err)
		valkeyClient = nil
	}

	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		slog.Warn("Elasticsearch unavailable, search disabled", "error", err)
		esClient = nil
	}

	emailClient := external.NewEmailClient(cfg.Email)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, natsClient, esClient, emailClient)
	h := handlers.NewHandlers(services, valkeyClient)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS())

	server := &Server{
		config:       cfg,
		db:           db,
		router:       router,
		natsClient:   natsClient,
		valkeyClient: valkeyClient,
		esClient:     esClient,
	}

	server.setupRoutes(h, repos)

	return server
}

func (s *Server) setupRoutes(h *handlers.Handlers, repos *repository.Repositories) {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	{
		// Публичные маршруты
		api.POST("/shows", h.CreateShow)
		api.GET("/shows", h.ListShows)
		api.GET("/shows/:id", h.GetShow)
		api.GET("/shows/:id/seats", h.ListSeats)
		api.POST("/reservations", h.ReserveSeats)

		// Маршруты, требующие аутентификации
		authenticated := api.Group("")
		authenticated.Use(middleware.BasicAuth(repos.Users, s.valkeyClient))
		{
			authenticated.POST("/bookings/confirm", h.ConfirmBooking)
			authenticated.GET("/bookings", h.ListBookings)
			authenticated.POST("/tickets/verify", h.VerifyTicket)
			authenticated.POST("/tickets/checkin", h.CheckIn)
		}
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	check := s.db.HealthCheck(c.Request.Context())
	status := http.StatusOK
	if check.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   check.Status,
		"database": check,
	})
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

// Cleanup закрывает все внешние соединения
func (s *Server) Cleanup() {
	if s.natsClient != nil {
		if err := s.natsClient.Close(); err != nil {
			slog.Error("Failed to close NATS connection", "error", err)
		}
	}
	if s.valkeyClient != nil {
		if err := s.valkeyClient.Close(); err != nil {
			slog.Error("Failed to close Valkey connection", "error", err)
		}
	}
}
