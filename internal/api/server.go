// Package api exposes the HTTP and WebSocket surface.
package api

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sepsiscan/sepsiscan/internal/alerts"
	"github.com/sepsiscan/sepsiscan/internal/checkin"
	"github.com/sepsiscan/sepsiscan/internal/config"
	"github.com/sepsiscan/sepsiscan/internal/store"
)

// Server handles the HTTP API and the live alert WebSocket feed.
type Server struct {
	app        *fiber.App
	config     *config.Config
	store      *store.Store
	service    *checkin.Service
	dispatcher *alerts.Dispatcher
	logger     *zap.Logger

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

// New creates the API server and registers all routes.
func New(cfg *config.Config, st *store.Store, service *checkin.Service, dispatcher *alerts.Dispatcher, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	})

	s := &Server{
		app:        app,
		config:     cfg,
		store:      st,
		service:    service,
		dispatcher: dispatcher,
		logger:     logger,
		limiters:   make(map[string]*rate.Limiter),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Middleware
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(s.config.Security.AllowOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Health and metrics
	s.app.Get("/api/health", s.handleHealth)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes
	api := s.app.Group("/api")

	// Public routes
	api.Post("/auth/login", s.handleLogin)

	// Protected routes
	protected := api.Use(s.authMiddleware())

	// Profiles
	protected.Get("/profiles", s.handleListProfiles)
	protected.Post("/profiles", s.handleCreateProfile)
	protected.Get("/profiles/:id", s.handleGetProfile)
	protected.Put("/profiles/:id", s.handleUpdateProfile)
	protected.Delete("/profiles/:id", s.handleDeleteProfile)

	// Check-ins
	protected.Post("/profiles/:id/checkins", s.rateLimitMiddleware(), s.handleCreateCheckin)
	protected.Get("/profiles/:id/checkins", s.handleListCheckins)

	// Recovery coach
	protected.Post("/profiles/:id/recovery/checkins", s.rateLimitMiddleware(), s.handleRecoveryCheckin)
	protected.Get("/profiles/:id/recovery/summary", s.handleRecoverySummary)

	// Live alert feed
	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws/alerts", websocket.New(s.handleAlertStream))
}

// Start starts the server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Address, s.config.Server.Port)
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) authMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if auth == "" {
			return c.Status(401).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenString := strings.TrimPrefix(auth, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(s.config.Security.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			return c.Status(401).JSON(fiber.Map{"error": "invalid token"})
		}

		return c.Next()
	}
}

// rateLimitMiddleware throttles check-in submissions per client IP.
func (s *Server) rateLimitMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.limiter(c.IP()).Allow() {
			return c.Status(429).JSON(fiber.Map{"error": "too many check-ins, slow down"})
		}
		return c.Next()
	}
}

func (s *Server) limiter(ip string) *rate.Limiter {
	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()

	l, ok := s.limiters[ip]
	if !ok {
		l = rate.NewLimiter(rate.Limit(s.config.Server.RateLimit), s.config.Server.RateBurst)
		s.limiters[ip] = l
	}
	return l
}
