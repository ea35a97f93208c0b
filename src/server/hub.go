package server

import (
	"context"
	"encoding/json"
	"net/http"

	"fincharts-viewer/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *ViewerServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			// Send current chart state on connect
			s.stateMutex.RLock()
			if s.latestState != nil {
				client.send <- s.latestState
			}
			s.stateMutex.RUnlock()

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}

		case message := <-s.broadcast:
			// Chart states replace the cached snapshot; notices pass through.
			if state, ok := message.(*models.MChartState); ok {
				s.stateMutex.Lock()
				s.latestState = state
				s.stateMutex.Unlock()
			}

			// Broadcast to all clients
			for client := range s.clients {
				select {
				case client.send <- message:
					// Message sent successfully
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// UpdateChartState replaces the cached snapshot without broadcasting.
func (s *ViewerServer) UpdateChartState(state *models.MChartState) {
	s.stateMutex.Lock()
	s.latestState = state
	s.stateMutex.Unlock()
}

// -----------------------------------------------------------------------------

// Broadcast sends a payload to the broadcast queue.
func (s *ViewerServer) Broadcast(message interface{}) {
	s.broadcast <- message
}

// -----------------------------------------------------------------------------
// Notifier Implementation (snackbar equivalent)
// -----------------------------------------------------------------------------

// Notify pushes a non-blocking user notice to every connected client.
func (s *ViewerServer) Notify(message string) {
	s.Logger.Info("Notice: %s", message)

	notice := &models.MNotice{Type: "NOTICE", Message: message}
	select {
	case s.broadcast <- notice:
	default:
		// Queue full; the notice is already logged.
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *ViewerServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan interface{}, 256),
	}

	s.register <- client

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage processes subscribe commands arriving over /ws: the
// browser symbol input maps straight onto the subscription controller.
func (s *ViewerServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" || s.controller == nil {
		return
	}

	go func(symbol string) {
		if err := s.controller.SetCurrentSubscription(context.Background(), symbol); err != nil {
			s.Logger.Error("Subscription switch failed: %v", err)
		}
	}(cmd.Symbol)
}
