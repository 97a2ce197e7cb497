package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"tda-observer/src/logger"
	"tda-observer/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------
// Serves the landscape dashboard: price, return, landscape-level and norm
// series per index over REST, plus a WebSocket feed that pushes a fresh
// snapshot after every successful data refresh. The full landscape series
// is computed once per index upstream; level selection here is a slice of
// the precomputed vectors, never a recomputation.

type DashboardServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine

	// WebSocket clients. The map belongs to the hub goroutine; the
	// counter is the only client state read from other goroutines.
	clients     map[*Client]struct{}
	clientCount atomic.Int32
	broadcast   chan *models.MLatestData
	register    chan *Client
	unregister  chan *Client

	// Local cache
	latestState *models.MLatestData
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *models.MConfig, log *logger.Logger) *DashboardServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &DashboardServer{
		Config:  cfg,
		Logger:  log,
		engine:  gin.Default(),
		clients: make(map[*Client]struct{}),
		// Buffered channel so a refresh burst never blocks the pipeline
		broadcast:  make(chan *models.MLatestData, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		latestState: &models.MLatestData{
			Type:       "INITIAL",
			Prices:     make(map[string][]models.MSeriesPoint),
			Returns:    make(map[string][]models.MReturnPoint),
			Landscapes: make(map[string]models.MLandscapeSeries),
			Norms:      make(map[string][]models.MSeriesPoint),
		},
	}

	// CORS middleware for local dashboard front ends
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/metrics", s.getMetrics)
	s.engine.GET("/api/prices/:symbol", s.getPrices)
	s.engine.GET("/api/returns/:symbol", s.getReturns)
	s.engine.GET("/api/landscapes/:symbol", s.getLandscapeLevel)
	s.engine.GET("/api/norms/:symbol", s.getNorms)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *DashboardServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting dashboard server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) Stop() error {
	close(s.broadcast)
	close(s.register)
	close(s.unregister)
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	connections := int(s.clientCount.Load())

	s.stateMutex.RLock()
	timestamp := s.latestState.Timestamp
	s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connections":   connections,
		"latest_update": timestamp,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"symbols":     s.Config.DataSource.Symbols,
		"window":      s.Config.Pipeline.Window,
		"levels":      s.Config.Pipeline.Levels,
		"resolution":  s.Config.Pipeline.Resolution,
		"domain_mode": s.Config.Pipeline.DomainMode,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getMetrics(c *gin.Context) {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, s.latestState.Metrics)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getPrices(c *gin.Context) {
	symbol := c.Param("symbol")

	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	series, ok := s.latestState.Prices[symbol]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown symbol: " + symbol})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "prices": series})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getReturns(c *gin.Context) {
	symbol := c.Param("symbol")

	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	series, ok := s.latestState.Returns[symbol]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown symbol: " + symbol})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "returns": series})
}

// -----------------------------------------------------------------------------

// getLandscapeLevel serves one landscape level's amplitude over time,
// sliced live from the precomputed series.
func (s *DashboardServer) getLandscapeLevel(c *gin.Context) {
	symbol := c.Param("symbol")

	level := 0
	if raw := c.Query("level"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "level must be an integer"})
			return
		}
		level = parsed
	}

	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	series, ok := s.latestState.Landscapes[symbol]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown symbol: " + symbol})
		return
	}
	if level < 0 || level >= series.Levels {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("level %d out of range [0, %d)", level, series.Levels),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":     symbol,
		"level":      level,
		"window":     series.Window,
		"amplitudes": series.Level(level),
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getNorms(c *gin.Context) {
	symbol := c.Param("symbol")

	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()

	series, ok := s.latestState.Landscapes[symbol]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown symbol: " + symbol})
		return
	}

	l1 := make([]models.MSeriesPoint, 0, len(series.Points))
	l2 := make([]models.MSeriesPoint, 0, len(series.Points))
	for _, pt := range series.Points {
		l1 = append(l1, models.MSeriesPoint{Date: pt.EndDate, Value: pt.NormL1})
		l2 = append(l2, models.MSeriesPoint{Date: pt.EndDate, Value: pt.NormL2})
	}

	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "l1": l1, "l2": l2})
}
