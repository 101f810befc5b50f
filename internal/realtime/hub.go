package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Hub fans game events out over WebSocket. Facilitator connections see
// every event; team connections only see their own team's events plus
// game-wide ones.
type Hub struct {
	teamConnections map[uuid.UUID]map[*Connection]bool
	facilitators    map[*Connection]bool
	mu              sync.RWMutex

	upgrader websocket.Upgrader

	config ConnectionConfig

	broadcastCh chan BroadcastMessage
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID          string
	TeamID      uuid.NullUUID // unset for facilitator connections
	Facilitator bool
	Conn        *websocket.Conn
	Send        chan []byte
	Hub         *Hub

	ConnectedAt time.Time
	LastPing    time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// BroadcastMessage represents a message to broadcast to connections
type BroadcastMessage struct {
	TeamID uuid.NullUUID // unset: game-wide, delivered to every client
	Event  *GameEvent
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024, // 1KB max message size
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// NewHub creates a new WebSocket hub
func NewHub(config ConnectionConfig) *Hub {
	return &Hub{
		teamConnections: make(map[uuid.UUID]map[*Connection]bool),
		facilitators:    make(map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan BroadcastMessage, 1000), // Buffer for high throughput
	}
}

// Start begins processing broadcast messages
func (h *Hub) Start(ctx context.Context) {
	log.Info().Msg("realtime hub started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("realtime hub shutting down")
			return
		case message := <-h.broadcastCh:
			h.handleBroadcast(message)
		}
	}
}

// UpgradeTeamConnection upgrades an HTTP connection to a team WebSocket
func (h *Hub) UpgradeTeamConnection(w http.ResponseWriter, r *http.Request, teamID uuid.UUID) error {
	return h.upgrade(w, r, uuid.NullUUID{UUID: teamID, Valid: true}, false)
}

// UpgradeFacilitatorConnection upgrades an HTTP connection to a
// facilitator WebSocket that receives every event.
func (h *Hub) UpgradeFacilitatorConnection(w http.ResponseWriter, r *http.Request) error {
	return h.upgrade(w, r, uuid.NullUUID{}, true)
}

func (h *Hub) upgrade(w http.ResponseWriter, r *http.Request, teamID uuid.NullUUID, facilitator bool) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		TeamID:      teamID,
		Facilitator: facilitator,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Hub:         h,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}

	h.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Bool("facilitator", facilitator).
		Str("team_id", teamIDString(teamID)).
		Msg("WebSocket connection established")

	return nil
}

func (h *Hub) registerConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn.Facilitator {
		h.facilitators[conn] = true
		log.Debug().
			Str("connection_id", conn.ID).
			Int("facilitator_connections", len(h.facilitators)).
			Msg("facilitator connection registered")
		return
	}

	if h.teamConnections[conn.TeamID.UUID] == nil {
		h.teamConnections[conn.TeamID.UUID] = make(map[*Connection]bool)
	}
	h.teamConnections[conn.TeamID.UUID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("team_id", conn.TeamID.UUID.String()).
		Int("team_connections", len(h.teamConnections[conn.TeamID.UUID])).
		Msg("team connection registered")
}

func (h *Hub) unregisterConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn.Facilitator {
		if _, exists := h.facilitators[conn]; exists {
			delete(h.facilitators, conn)
			close(conn.Send)
			log.Info().
				Str("connection_id", conn.ID).
				Msg("facilitator connection unregistered")
		}
		return
	}

	if connections, exists := h.teamConnections[conn.TeamID.UUID]; exists {
		if _, exists := connections[conn]; exists {
			delete(connections, conn)
			close(conn.Send)

			// Clean up empty team connection pools
			if len(connections) == 0 {
				delete(h.teamConnections, conn.TeamID.UUID)
			}

			log.Info().
				Str("connection_id", conn.ID).
				Str("team_id", conn.TeamID.UUID.String()).
				Msg("team connection unregistered")
		}
	}
}

// Broadcast queues an event for delivery. A nil team ID means the event
// is game-wide and every client receives it.
func (h *Hub) Broadcast(teamID uuid.NullUUID, event *GameEvent) {
	select {
	case h.broadcastCh <- BroadcastMessage{TeamID: teamID, Event: event}:
	default:
		log.Warn().
			Str("team_id", teamIDString(teamID)).
			Msg("broadcast channel full, dropping message")
	}
}

func (h *Hub) handleBroadcast(message BroadcastMessage) {
	h.mu.RLock()
	// Snapshot targets so the lock is not held while writing.
	var targets []*Connection
	for conn := range h.facilitators {
		targets = append(targets, conn)
	}
	if message.TeamID.Valid {
		for conn := range h.teamConnections[message.TeamID.UUID] {
			targets = append(targets, conn)
		}
	} else {
		for _, connections := range h.teamConnections {
			for conn := range connections {
				targets = append(targets, conn)
			}
		}
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	// Marshal the event once
	eventData, err := json.Marshal(message.Event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	for _, conn := range targets {
		select {
		case conn.Send <- eventData:
		default:
			// Connection is slow/dead, close it
			log.Warn().
				Str("connection_id", conn.ID).
				Msg("connection send buffer full, closing connection")
			h.unregisterConnection(conn)
			conn.Conn.Close()
		}
	}

	log.Debug().
		Str("event_type", message.Event.Type).
		Str("team_id", teamIDString(message.TeamID)).
		Int("connections", len(targets)).
		Msg("event broadcasted")
}

// Stats returns statistics about active connections
func (h *Hub) Stats() (teamConns, facilitatorConns, activeTeams int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, connections := range h.teamConnections {
		teamConns += len(connections)
	}
	return teamConns, len(h.facilitators), len(h.teamConnections)
}

func teamIDString(id uuid.NullUUID) string {
	if !id.Valid {
		return ""
	}
	return id.UUID.String()
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Hub.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Hub.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Hub.config.WriteTimeout))
			if !ok {
				// Channel was closed
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Hub.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
			c.LastPing = time.Now()
		}
	}
}

// readPump handles reading messages from the WebSocket connection
func (c *Connection) readPump() {
	defer func() {
		c.Hub.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Hub.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.ReadTimeout))
		c.LastPing = time.Now()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		// Clients only listen; inbound traffic is logged and ignored.
		log.Debug().
			Str("connection_id", c.ID).
			RawJSON("message", message).
			Msg("received client message")
		c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.ReadTimeout))
	}
}
