package server

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"fincharts-viewer/src/interfaces"
	"fincharts-viewer/src/logger"
	"fincharts-viewer/src/models"
	"fincharts-viewer/src/subscription"
	"fincharts-viewer/src/utils"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// ViewerServer
// -----------------------------------------------------------------------------

// ViewerServer is the browser-facing surface: REST endpoints for subscribing
// and history search, plus a websocket hub pushing chart-series updates.
type ViewerServer struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	History interfaces.IHistoryFetcher
	engine  *gin.Engine

	controller *subscription.Controller

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan interface{} // *models.MChartState or *models.MNotice
	register   chan *Client
	unregister chan *Client

	// Local cache
	latestState *models.MChartState
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewViewerServer(cfg *models.MConfig, history interfaces.IHistoryFetcher, logger *logger.Logger) *ViewerServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &ViewerServer{
		Config:  cfg,
		Logger:  logger,
		History: history,
		engine:  gin.Default(),
		clients: make(map[*Client]struct{}),
		// Buffered queue so tick bursts never block the producers
		broadcast:  make(chan interface{}, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		latestState: &models.MChartState{
			Type:   "INITIAL",
			Series: []models.MPricePoint{},
		},
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------

// AttachController wires the subscription controller after construction
// (the controller broadcasts through this server).
func (s *ViewerServer) AttachController(ctrl *subscription.Controller) {
	s.controller = ctrl
}

// -----------------------------------------------------------------------------

// Router exposes the gin engine (used by tests).
func (s *ViewerServer) Router() *gin.Engine {
	return s.engine
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *ViewerServer) setupRoutes() {
	// REST API endpoints
	s.engine.POST("/api/subscription", s.postSubscription)
	s.engine.GET("/api/history", s.getHistory)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *ViewerServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting viewer server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *ViewerServer) Stop() error {
	// Clean shutdown
	close(s.broadcast)
	close(s.register)
	close(s.unregister)
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

type subscribeRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

// postSubscription switches the live subscription. The switch itself runs in
// the background; the chart state arrives over /ws.
func (s *ViewerServer) postSubscription(c *gin.Context) {
	if s.controller == nil {
		c.JSON(503, gin.H{"error": "subscription controller not ready"})
		return
	}

	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "symbol is required"})
		return
	}

	go func(symbol string) {
		if err := s.controller.SetCurrentSubscription(context.Background(), symbol); err != nil {
			s.Logger.Error("Subscription switch failed: %v", err)
		}
	}(req.Symbol)

	c.JSON(202, gin.H{"status": "subscribing", "symbol": req.Symbol})
}

// -----------------------------------------------------------------------------

// getHistory serves the historical-prices table rows.
func (s *ViewerServer) getHistory(c *gin.Context) {
	instrumentID := c.Query("instrumentId")
	startDate := c.Query("startDate")
	endDate := c.Query("endDate")

	if instrumentID == "" || startDate == "" {
		c.JSON(400, gin.H{"error": "instrumentId and startDate are required"})
		return
	}

	bars, err := s.History.FetchDateRange(instrumentID, startDate, endDate)
	if err != nil {
		s.Notify(fmt.Sprintf("An error occurred! %v", err))
		c.JSON(502, gin.H{"error": err.Error(), "data": []models.MHistoryBar{}})
		return
	}

	if bars == nil {
		bars = []models.MHistoryBar{}
	}
	c.JSON(200, gin.H{"data": bars})
}

// -----------------------------------------------------------------------------

func (s *ViewerServer) getConfig(c *gin.Context) {
	c.JSON(200, gin.H{
		"provider": s.Config.Fincharts.Provider,
	})
}

// -----------------------------------------------------------------------------

func (s *ViewerServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := len(s.clients)
	symbol := s.latestState.Symbol
	timestamp := s.latestState.Timestamp
	s.stateMutex.RUnlock()

	marketOpen := false
	if symbol != "" {
		marketOpen = utils.GetCalendar(symbol, s.Logger).IsOpenOnMinute(time.Now())
	}

	c.JSON(200, gin.H{
		"status":        "ok",
		"connections":   connections,
		"symbol":        symbol,
		"market_open":   marketOpen,
		"latest_update": timestamp,
	})
}
