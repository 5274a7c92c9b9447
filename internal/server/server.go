// Package server exposes the monitoring HTTP API for the alert bot. The
// API is read-only: it reports state, it never drives the exchange.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"crypto-alert-bot/internal/auth"
	"crypto-alert-bot/internal/events"
	"crypto-alert-bot/internal/exchange"
)

// StatusInfo is the bot status payload served by /api/v1/status.
type StatusInfo struct {
	Running   bool     `json:"running"`
	MockMode  bool     `json:"mock_mode"`
	Symbols   []string `json:"symbols"`
	Intervals []string `json:"intervals"`
	StartedAt string   `json:"started_at"`
}

// BotAPI is what the bot must expose to the monitoring API.
type BotAPI interface {
	Status() StatusInfo
	OpenPositions() []exchange.Position
	ClosedPositions() []exchange.Position
	Stats() exchange.Stats
}

// Config holds server configuration
type Config struct {
	Enabled        bool     `json:"enabled"`
	Host           string   `json:"host"`
	Port           int      `json:"port"`
	AllowedOrigins []string `json:"allowed_origins"`
	AuthEnabled    bool     `json:"auth_enabled"`
	JWTSecret      string   `json:"jwt_secret"`
}

// Server is the monitoring HTTP API server.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	botAPI     BotAPI
	jwtManager *auth.JWTManager
	recent     *eventLog
	hub        *wsHub
	config     Config
	logger     zerolog.Logger
}

// NewServer creates the API server and subscribes it to the event bus.
func NewServer(cfg Config, botAPI BotAPI, bus *events.Bus, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))
	router.Use(requestIDMiddleware())

	s := &Server{
		router: router,
		botAPI: botAPI,
		recent: newEventLog(100),
		hub:    newWSHub(logger),
		config: cfg,
		logger: logger.With().Str("component", "APIServer").Logger(),
	}

	if cfg.AuthEnabled {
		s.jwtManager = auth.NewJWTManager(cfg.JWTSecret, 24*time.Hour)
	}

	go s.hub.run()

	bus.SubscribeAll(func(event events.Event) {
		s.recent.add(event)
		s.hub.broadcastEvent(event)
	})

	s.setupRoutes()
	return s
}

// requestIDMiddleware tags every request with an id for log correlation.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// authMiddleware rejects requests without a valid bearer token.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		subject, err := s.jwtManager.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set("subject", subject)
		c.Next()
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ws", s.handleWebSocket)

	api := s.router.Group("/api/v1")
	if s.config.AuthEnabled {
		api.Use(s.authMiddleware())
	}
	{
		api.GET("/status", s.handleStatus)
		api.GET("/positions", s.handlePositions)
		api.GET("/positions/history", s.handlePositionHistory)
		api.GET("/stats", s.handleStats)
		api.GET("/events", s.handleEvents)
	}
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info().Str("addr", addr).Msg("API server starting")

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("API server failed")
		}
	}()
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
