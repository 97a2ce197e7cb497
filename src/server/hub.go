package server

import (
	"encoding/json"
	"net/http"

	"tda-observer/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop. The clients map is owned by this
// goroutine; only the connection counter is shared with the REST handlers.
func (s *DashboardServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.clientCount.Store(int32(len(s.clients)))
			// Send current state on connect
			s.stateMutex.RLock()
			if s.latestState != nil {
				client.outbox <- s.latestState
			}
			s.stateMutex.RUnlock()

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.outbox)
				s.clientCount.Store(int32(len(s.clients)))
			}

		case message := <-s.broadcast:
			// Update state and broadcast
			s.stateMutex.Lock()
			s.latestState = message
			s.stateMutex.Unlock()

			for client := range s.clients {
				select {
				case client.outbox <- message:
					// Message sent successfully
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					close(client.outbox)
				}
			}
			s.clientCount.Store(int32(len(s.clients)))
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// UpdateAllDatas replaces the server state without broadcasting, used for
// the initial snapshot before any client connects.
func (s *DashboardServer) UpdateAllDatas(state *models.MLatestData) {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()

	state.Type = "INITIAL"
	s.latestState = state
}

// -----------------------------------------------------------------------------

// Broadcast queues a fresh snapshot for every connected client.
func (s *DashboardServer) Broadcast(state *models.MLatestData) {
	state.Type = "UPDATE"
	s.broadcast <- state
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

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		server: s,
		conn:   conn,
		// Buffered channel to prevent blocking the Hub loop
		outbox: make(chan interface{}, 256),
	}

	s.register <- client

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *DashboardServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	s.stateMutex.RLock()
	response := s.subscribeResponse(cmd.Symbols, cmd.Level)
	s.stateMutex.RUnlock()

	select {
	case client.outbox <- response:
	default:
		// Client buffer full; the Hub loop prunes slow consumers on
		// the next broadcast.
	}
}

// -----------------------------------------------------------------------------
// Response Filtering
// -----------------------------------------------------------------------------

// subscribeResponse returns the latest snapshot filtered down to the
// requested symbols and, when a level is given, with every landscape
// series sliced to that single level. An empty symbol list means every
// tracked index; a nil level means all levels; an out-of-range level
// leaves the series whole.
func (s *DashboardServer) subscribeResponse(symbols []string, level *int) *models.MLatestData {
	if len(symbols) == 0 && level == nil {
		return s.latestState
	}

	selected := symbols
	if len(selected) == 0 {
		seen := make(map[string]bool)
		for sym := range s.latestState.Prices {
			seen[sym] = true
		}
		for sym := range s.latestState.Landscapes {
			seen[sym] = true
		}
		for sym := range seen {
			selected = append(selected, sym)
		}
	}

	filtered := &models.MLatestData{
		Type:       "INITIAL",
		Prices:     make(map[string][]models.MSeriesPoint),
		Returns:    make(map[string][]models.MReturnPoint),
		Landscapes: make(map[string]models.MLandscapeSeries),
		Norms:      make(map[string][]models.MSeriesPoint),
		Timestamp:  s.latestState.Timestamp,
		Metrics:    s.latestState.Metrics,
	}

	for _, sym := range selected {
		if v, ok := s.latestState.Prices[sym]; ok {
			filtered.Prices[sym] = v
		}
		if v, ok := s.latestState.Returns[sym]; ok {
			filtered.Returns[sym] = v
		}
		if v, ok := s.latestState.Landscapes[sym]; ok {
			if level != nil {
				v = v.SliceLevel(*level)
			}
			filtered.Landscapes[sym] = v
		}
		if v, ok := s.latestState.Norms[sym]; ok {
			filtered.Norms[sym] = v
		}
	}

	return filtered
}
