// Package ws streams machine list updates to dashboard clients.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/iwtcode/oeeMonitor/internal/domain/models"
	"github.com/iwtcode/oeeMonitor/internal/interfaces"
)

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the envelope sent to every client.
type Message struct {
	Type     string                `json:"type"`
	SentAt   time.Time             `json:"sentAt"`
	Machines []models.MachineState `json:"machines"`
}

type Client struct {
	ID   uuid.UUID
	Conn *websocket.Conn
	Send chan []byte
	Done chan struct{}
}

type Hub struct {
	monitoring interfaces.MonitoringUsecase
	log        *zap.Logger

	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
}

func NewHub(monitoring interfaces.MonitoringUsecase, log *zap.Logger) *Hub {
	return &Hub{
		monitoring: monitoring,
		log:        log.Named("ws"),
		clients:    make(map[uuid.UUID]*Client),
	}
}

// Handle upgrades the request and sends the current snapshot first.
func (h *Hub) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		ID:   uuid.New(),
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
		Done: make(chan struct{}),
	}

	if data, err := encode("snapshot", h.monitoring.Snapshot().Machines); err == nil {
		client.Send <- data
	}

	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
	h.log.Debug("client connected", zap.Stringer("id", client.ID))

	go h.writePump(client)
	go h.readPump(client)
}

// Publish broadcasts a changed machine list. Slow clients drop the message.
func (h *Hub) Publish(_ context.Context, machines []models.MachineState) error {
	data, err := encode("machines", machines)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
			h.log.Warn("client buffer full, dropping update", zap.Stringer("id", client.ID))
		}
	}
	return nil
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		client.Conn.Close()
		delete(h.clients, id)
	}
}

func (h *Hub) readPump(client *Client) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, client.ID)
		h.mu.Unlock()
		close(client.Done)
		client.Conn.Close()
		h.log.Debug("client disconnected", zap.Stringer("id", client.ID))
	}()

	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Клиенты только слушают, входящие сообщения игнорируются
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-client.Done:
			return
		}
	}
}

func encode(kind string, machines []models.MachineState) ([]byte, error) {
	if machines == nil {
		machines = []models.MachineState{}
	}
	return json.Marshal(Message{Type: kind, SentAt: time.Now().UTC(), Machines: machines})
}
