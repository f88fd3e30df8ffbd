// Package ws provides the WebSocket endpoint for the gateway. The channel
// currently only echoes: each inbound text frame is answered with a
// response envelope wrapping the payload.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/agentbridge/gateway/internal/config"
)

// Connection represents a single WebSocket connection.
type Connection struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	closeOnce sync.Once
}

// Close closes the underlying connection once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.Conn.Close()
	})
}

// response is the echo envelope sent for every inbound frame.
type response struct {
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Server handles WebSocket connections and tracks the active set.
type Server struct {
	cfg      *config.Config
	upgrader websocket.Upgrader

	mu          sync.Mutex
	connections map[string]*Connection
}

// NewServer creates a new WebSocket server.
func NewServer(cfg *config.Config) *Server {
	return &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// CORS is enforced on the REST surface; the socket is open.
				return true
			},
		},
		connections: make(map[string]*Connection),
	}
}

// HandleWebSocket handles WebSocket upgrade and connection lifecycle.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		return err
	}

	conn := &Connection{
		ID:   uuid.New().String(),
		Conn: ws,
		Send: make(chan []byte, 256),
	}
	s.register(conn)
	log.Printf("WebSocket connection established: %s", conn.ID)

	ws.SetReadLimit(s.cfg.MaxMessageSize)

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

// ActiveConnections returns the size of the active connection set.
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.connections)
}

func (s *Server) register(conn *Connection) {
	s.mu.Lock()
	s.connections[conn.ID] = conn
	s.mu.Unlock()
}

func (s *Server) unregister(conn *Connection) {
	s.mu.Lock()
	if _, ok := s.connections[conn.ID]; ok {
		delete(s.connections, conn.ID)
		close(conn.Send)
	}
	s.mu.Unlock()
}

// readPump reads frames from the connection and queues echo responses.
func (s *Server) readPump(conn *Connection) {
	defer func() {
		s.unregister(conn)
		conn.Close()
		log.Printf("WebSocket connection closed: %s", conn.ID)
	}()

	conn.Conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.Conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		reply, err := json.Marshal(response{
			Type:      "response",
			Content:   "Received: " + string(message),
			Timestamp: time.Now(),
		})
		if err != nil {
			continue
		}
		select {
		case conn.Send <- reply:
		default:
			// Buffer full; drop the connection rather than block the reader.
			return
		}
	}
}

// writePump writes queued frames and keeps the connection alive with pings.
func (s *Server) writePump(conn *Connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.Conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Failed to write message: %v", err)
				return
			}

		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
